// Package heartbeat builds the records sent to the time-tracking backend.
package heartbeat

import (
	"log"
	"strconv"
	"time"

	"github.com/tobycm/easyeda-wakatime/internal/logic"
	"github.com/tobycm/easyeda-wakatime/internal/store"
)

// Fixed identifying fields.
const (
	Category  = "coding"
	Type      = "file"
	Editor    = "EasyEDA"
	Namespace = "EasyEDA"
)

// Metrics counts content on an editor surface.
type Metrics interface {
	ContentMetric(editor logic.EditorType) logic.ContentMetric
}

// Assembler turns a resolved context into heartbeats.
type Assembler struct {
	Metrics   Metrics
	Store     store.Store
	Now       func() time.Time
	UserAgent string
	OS        string
}

// Assemble returns a batch of exactly one heartbeat for ctx.
// When a content metric is computed its count is written back as the next
// baseline before returning, whether or not the batch is later delivered.
func (a *Assembler) Assemble(ctx logic.ProjectContext) []logic.Heartbeat {
	now := time.Now
	if a.Now != nil {
		now = a.Now
	}

	hb := logic.Heartbeat{
		Category:        Category,
		Entity:          ctx.EntityName,
		Type:            Type,
		Language:        Namespace,
		Project:         ctx.FriendlyName,
		Time:            logic.UnixSeconds(now()),
		UserAgent:       a.UserAgent,
		Editor:          Editor,
		OperatingSystem: a.OS,
	}

	if ctx.EditorType.Tracked() && a.Metrics != nil {
		m := a.Metrics.ContentMetric(ctx.EditorType)
		previous := a.previous(m)
		hb.SetLines(m.Count, logic.ComputeDelta(previous, m.Count))
		hb.Language = Namespace + " " + string(m.PredictedType)

		key := store.PreviousLinesKey(m.PredictedType)
		if err := a.Store.Set(key, strconv.Itoa(m.Count)); err != nil {
			log.Printf("heartbeat: store %s: %v", key, err)
		}
	}

	return []logic.Heartbeat{hb}
}

// previous reads the baseline for the metric's detected editor type.
func (a *Assembler) previous(m logic.ContentMetric) int {
	key := store.PreviousLinesKey(m.PredictedType)
	raw, ok, err := a.Store.Get(key)
	if err != nil {
		log.Printf("heartbeat: read %s: %v", key, err)
		return m.Count
	}
	return logic.Baseline(raw, ok, m.Count)
}

// ResetBaselines marks every tracked editor's previous count as not yet
// initialized, so the first heartbeat after enabling carries a zero delta.
func ResetBaselines(s store.Store) error {
	for _, editor := range logic.TrackedEditors {
		if err := s.Set(store.PreviousLinesKey(editor), logic.PreviousSentinel); err != nil {
			return err
		}
	}
	return nil
}
