// Package scheduler runs the periodic heartbeat cycle: check for recent
// activity, and when there is some, resolve the project, assemble a
// heartbeat and deliver it.
package scheduler

import (
	"context"
	"log"
	"strconv"
	"time"

	"github.com/tobycm/easyeda-wakatime/internal/activity"
	"github.com/tobycm/easyeda-wakatime/internal/credentials"
	"github.com/tobycm/easyeda-wakatime/internal/journal"
	"github.com/tobycm/easyeda-wakatime/internal/logic"
	"github.com/tobycm/easyeda-wakatime/internal/resolve"
	"github.com/tobycm/easyeda-wakatime/internal/status"
	"github.com/tobycm/easyeda-wakatime/internal/store"
	"github.com/tobycm/easyeda-wakatime/internal/wakatime"
)

// ContextResolver identifies the project being worked on.
type ContextResolver interface {
	ProjectContext() (logic.ProjectContext, error)
}

// Assembler builds the heartbeat batch for a context.
type Assembler interface {
	Assemble(ctx logic.ProjectContext) []logic.Heartbeat
}

// Scheduler holds the collaborators for one tick. Tick must not be called
// concurrently; the daemon drives it from a single loop.
type Scheduler struct {
	Signal    *activity.Signal
	Store     store.Store
	Resolver  ContextResolver
	Assembler Assembler
	Sender    wakatime.Sender
	Notifier  credentials.Notifier
	Journal   journal.Journal
	Tracker   *status.Tracker
	Threshold time.Duration
	Now       func() time.Time

	persisted  int64 // unix ms last written to the store
	unresolved bool  // notice already shown for the current failure
}

// Tick performs one check. It never returns an error; every failure is
// logged and reflected in the outcome.
func (s *Scheduler) Tick(ctx context.Context) logic.TickOutcome {
	s.setState(logic.StateChecking)
	outcome := s.check(ctx)
	if s.Tracker != nil {
		s.Tracker.RecordTick(outcome)
	}
	return outcome
}

func (s *Scheduler) check(ctx context.Context) logic.TickOutcome {
	s.persistLastEvent()

	since, seen := s.Signal.Since()
	if !logic.IsActive(since, seen, s.Threshold) {
		return logic.TickInactive
	}

	s.setState(logic.StateReporting)

	creds, ok := credentials.Load(s.Store)
	if s.Tracker != nil {
		s.Tracker.SetCredentials(ok)
	}
	if !ok {
		log.Printf("scheduler: api credentials not set, skipping heartbeat")
		return logic.TickNoCredentials
	}

	pc, err := s.Resolver.ProjectContext()
	if err != nil {
		log.Printf("scheduler: %v", err)
		s.notifyUnresolved()
		return logic.TickNoContext
	}
	s.unresolved = false

	heartbeats := s.Assembler.Assemble(pc)
	out := s.Sender.Send(ctx, heartbeats, creds)

	outcome := logic.TickSent
	if out.OK() {
		log.Printf("scheduler: heartbeat sent: project=%q editor=%s entity=%q status=%d",
			pc.FriendlyName, pc.EditorType, pc.EntityName, out.Status)
	} else {
		outcome = logic.TickFailed
		log.Printf("scheduler: error sending heartbeat: %v", out)
	}

	if s.Tracker != nil {
		s.Tracker.SetHeartbeat(s.now(), pc, out.String())
	}
	if s.Journal != nil {
		if err := s.Journal.Record(ctx, heartbeats, string(outcome)); err != nil {
			log.Printf("scheduler: journal: %v", err)
		}
	}
	return outcome
}

func (s *Scheduler) notifyUnresolved() {
	if s.unresolved {
		return
	}
	s.unresolved = true
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.Notify(credentials.Title, resolve.UnresolvableMessage); err != nil {
		log.Printf("scheduler: notify failed: %v", err)
	}
}

// persistLastEvent writes the signal's timestamp to the store when it has
// moved since the last write.
func (s *Scheduler) persistLastEvent() {
	last, ok := s.Signal.Last()
	if !ok {
		return
	}
	if s.Tracker != nil {
		s.Tracker.SetLastEvent(last)
	}
	ms := last.UnixMilli()
	if ms == s.persisted {
		return
	}
	if err := s.Store.Set(store.KeyLastEventTime, strconv.FormatInt(ms, 10)); err != nil {
		log.Printf("scheduler: persist last event: %v", err)
		return
	}
	s.persisted = ms
}

func (s *Scheduler) setState(st logic.State) {
	if s.Tracker != nil {
		s.Tracker.SetState(st)
	}
}

func (s *Scheduler) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Restore seeds sig from the timestamp persisted by a previous run and
// returns it. A missing or malformed record leaves sig untouched.
func (s *Scheduler) Restore() (time.Time, bool) {
	raw, ok, err := s.Store.Get(store.KeyLastEventTime)
	if err != nil {
		log.Printf("scheduler: read last event: %v", err)
		return time.Time{}, false
	}
	if !ok {
		return time.Time{}, false
	}
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || ms <= 0 {
		return time.Time{}, false
	}
	t := time.UnixMilli(ms)
	if t.After(s.now()) {
		log.Printf("scheduler: ignoring last event %s, later than now", t.UTC().Format(time.RFC3339))
		return time.Time{}, false
	}
	s.Signal.Restore(t)
	s.persisted = ms
	return t, true
}
