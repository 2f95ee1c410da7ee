package host

import "sync"

// Notice is a message shown through Notify.
type Notice struct {
	Title string
	Body  string
}

// FakeHost is a test double that returns scripted editor state.
type FakeHost struct {
	mu sync.Mutex

	// Project, Schematic and PCB are returned by the matching query.
	Project   *ProjectInfo
	Schematic *DocumentInfo
	PCB       *DocumentInfo

	// ProjectError, SchematicError and PCBError, if set, are returned instead.
	ProjectError   error
	SchematicError error
	PCBError       error

	// Counts holds per-kind primitive counts. A kind missing from Counts
	// returns ErrPrimitiveUnavailable.
	Counts map[PrimitiveKind]int

	// NotifyError, if set, will be returned by Notify.
	NotifyError error

	// Notices contains every message passed to Notify.
	Notices []Notice

	// StatusEvents contains every event passed to PublishStatus.
	StatusEvents []StatusEvent

	// ProjectCalls counts ProjectInfo invocations.
	ProjectCalls int

	// Connected controls the return value of IsConnected.
	Connected bool

	handlers []func()
}

// NewFakeHost creates a FakeHost with the given project open and no document.
func NewFakeHost(project *ProjectInfo) *FakeHost {
	return &FakeHost{Project: project, Counts: map[PrimitiveKind]int{}}
}

// ProjectInfo returns the scripted project.
func (f *FakeHost) ProjectInfo() (*ProjectInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ProjectCalls++
	if f.ProjectError != nil {
		return nil, f.ProjectError
	}
	return f.Project, nil
}

// SchematicInfo returns the scripted schematic.
func (f *FakeHost) SchematicInfo() (*DocumentInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.SchematicError != nil {
		return nil, f.SchematicError
	}
	return f.Schematic, nil
}

// PCBInfo returns the scripted board.
func (f *FakeHost) PCBInfo() (*DocumentInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.PCBError != nil {
		return nil, f.PCBError
	}
	return f.PCB, nil
}

// Primitives returns the scripted count for kind.
func (f *FakeHost) Primitives(kind PrimitiveKind) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.Counts[kind]
	if !ok {
		return 0, ErrPrimitiveUnavailable
	}
	return n, nil
}

// SetCount scripts the count for kind.
func (f *FakeHost) SetCount(kind PrimitiveKind, n int) {
	f.mu.Lock()
	if f.Counts == nil {
		f.Counts = map[PrimitiveKind]int{}
	}
	f.Counts[kind] = n
	f.mu.Unlock()
}

// Notify records the message.
func (f *FakeHost) Notify(title, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.NotifyError != nil {
		return f.NotifyError
	}
	f.Notices = append(f.Notices, Notice{Title: title, Body: body})
	return nil
}

// OnInteraction registers fn to be called by Interact.
func (f *FakeHost) OnInteraction(fn func()) error {
	f.mu.Lock()
	f.handlers = append(f.handlers, fn)
	f.mu.Unlock()
	return nil
}

// Interact simulates one user interaction.
func (f *FakeHost) Interact() {
	f.mu.Lock()
	handlers := append([]func(){}, f.handlers...)
	f.mu.Unlock()
	for _, fn := range handlers {
		fn()
	}
}

// PublishStatus records the event.
func (f *FakeHost) PublishStatus(event StatusEvent) error {
	f.mu.Lock()
	f.StatusEvents = append(f.StatusEvents, event)
	f.mu.Unlock()
	return nil
}

// IsConnected reports whether the fake host is "connected".
func (f *FakeHost) IsConnected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Connected
}

// NoticeCount returns the number of notices shown so far.
func (f *FakeHost) NoticeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Notices)
}

var (
	_ Host             = (*FakeHost)(nil)
	_ StatusPublisher  = (*FakeHost)(nil)
	_ ConnectionStatus = (*FakeHost)(nil)
)
