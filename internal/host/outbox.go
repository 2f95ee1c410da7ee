package host

import "log"

// outboxCapacity bounds the messages held while the broker is unreachable.
const outboxCapacity = 32

// pendingMsg is an outbound message waiting for the broker to come back.
type pendingMsg struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

// outbox is a fixed-capacity FIFO of pending messages. When full, the oldest
// message is overwritten. Not safe for concurrent use; Bridge holds outMu.
type outbox struct {
	slots   []pendingMsg
	next    int // next write position
	n       int
	dropped bool // set once per fill so the overflow is logged only once
}

func newOutbox(capacity int) *outbox {
	return &outbox{slots: make([]pendingMsg, capacity)}
}

func (o *outbox) push(msg pendingMsg) {
	size := len(o.slots)
	o.slots[o.next] = msg
	o.next = (o.next + 1) % size
	if o.n < size {
		o.n++
		return
	}
	if !o.dropped {
		log.Printf("host: outbox full (%d messages), dropping oldest", size)
		o.dropped = true
	}
}

// drain returns pending messages oldest first and empties the outbox.
func (o *outbox) drain() []pendingMsg {
	if o.n == 0 {
		return nil
	}
	size := len(o.slots)
	first := (o.next - o.n + size) % size
	out := make([]pendingMsg, o.n)
	for i := range out {
		out[i] = o.slots[(first+i)%size]
	}
	o.next, o.n, o.dropped = 0, 0, false
	return out
}

func (o *outbox) len() int {
	return o.n
}
