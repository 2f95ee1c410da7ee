package resolve

import (
	"errors"
	"testing"

	"github.com/tobycm/easyeda-wakatime/internal/host"
	"github.com/tobycm/easyeda-wakatime/internal/logic"
	"github.com/tobycm/easyeda-wakatime/internal/store"
)

func schematicCounts(h *host.FakeHost) {
	h.SetCount(host.PrimitiveComponent, 10)
	h.SetCount(host.PrimitiveWire, 20)
	h.SetCount(host.PrimitiveText, 3)
	h.SetCount(host.PrimitiveBus, 1)
	h.SetCount(host.PrimitivePin, 6)
}

func pcbCounts(h *host.FakeHost) {
	h.SetCount(host.PrimitiveComponent, 10)
	h.SetCount(host.PrimitiveLine, 40)
	h.SetCount(host.PrimitiveArc, 2)
	h.SetCount(host.PrimitiveVia, 8)
	h.SetCount(host.PrimitivePad, 30)
}

func TestProjectContextSchematic(t *testing.T) {
	h := host.NewFakeHost(&host.ProjectInfo{FriendlyName: "Synth"})
	h.Schematic = &host.DocumentInfo{Name: "Main"}
	h.PCB = &host.DocumentInfo{Name: "Board"}
	r := New(h, store.NewMemoryStore(nil))

	ctx, err := r.ProjectContext()
	if err != nil {
		t.Fatalf("ProjectContext: %v", err)
	}
	want := logic.ProjectContext{FriendlyName: "Synth", EditorType: logic.EditorSchematic, EntityName: "Main"}
	if ctx != want {
		t.Errorf("got %+v, want %+v", ctx, want)
	}
}

func TestProjectContextPCB(t *testing.T) {
	h := host.NewFakeHost(&host.ProjectInfo{FriendlyName: "Synth"})
	h.PCB = &host.DocumentInfo{Name: "Board"}
	r := New(h, store.NewMemoryStore(nil))

	ctx, err := r.ProjectContext()
	if err != nil {
		t.Fatalf("ProjectContext: %v", err)
	}
	if ctx.EditorType != logic.EditorPCB || ctx.EntityName != "Board" {
		t.Errorf("got %+v, want PCB/Board", ctx)
	}
}

func TestProjectContextSchematicProbeErrorFallsToPCB(t *testing.T) {
	h := host.NewFakeHost(&host.ProjectInfo{FriendlyName: "Synth"})
	h.SchematicError = errors.New("not supported in this version")
	h.PCB = &host.DocumentInfo{Name: "Board"}
	r := New(h, store.NewMemoryStore(nil))

	ctx, _ := r.ProjectContext()
	if ctx.EditorType != logic.EditorPCB {
		t.Errorf("EditorType: got %s, want PCB", ctx.EditorType)
	}
}

func TestProjectContextNoDocumentIsProject(t *testing.T) {
	h := host.NewFakeHost(&host.ProjectInfo{FriendlyName: "Synth"})
	h.SchematicError = errors.New("unavailable")
	h.PCBError = errors.New("unavailable")
	r := New(h, store.NewMemoryStore(nil))

	ctx, err := r.ProjectContext()
	if err != nil {
		t.Fatalf("ProjectContext: %v", err)
	}
	want := logic.ProjectContext{FriendlyName: "Synth", EditorType: logic.EditorProject, EntityName: "Synth"}
	if ctx != want {
		t.Errorf("got %+v, want %+v", ctx, want)
	}
}

func TestProjectContextStoredNameOnError(t *testing.T) {
	h := host.NewFakeHost(nil)
	h.ProjectError = errors.New("getCurrentProjectInfo threw")
	s := store.NewMemoryStore(map[string]string{store.KeyProjectName: "BoardX"})
	r := New(h, s)

	ctx, err := r.ProjectContext()
	if err != nil {
		t.Fatalf("ProjectContext: %v", err)
	}
	want := logic.ProjectContext{FriendlyName: "BoardX", EditorType: logic.EditorProject, EntityName: "BoardX"}
	if ctx != want {
		t.Errorf("got %+v, want %+v", ctx, want)
	}
}

func TestProjectContextStoredNameOnAbsent(t *testing.T) {
	h := host.NewFakeHost(nil)
	s := store.NewMemoryStore(map[string]string{store.KeyProjectName: "BoardX"})
	r := New(h, s)

	ctx, err := r.ProjectContext()
	if err != nil {
		t.Fatalf("ProjectContext: %v", err)
	}
	if ctx.FriendlyName != "BoardX" || ctx.EditorType != logic.EditorProject {
		t.Errorf("got %+v", ctx)
	}
}

func TestProjectContextUnresolvable(t *testing.T) {
	h := host.NewFakeHost(nil)
	h.ProjectError = errors.New("broken")
	r := New(h, store.NewMemoryStore(nil))

	if _, err := r.ProjectContext(); !errors.Is(err, ErrUnresolvable) {
		t.Errorf("got %v, want ErrUnresolvable", err)
	}
	if h.NoticeCount() != 0 {
		t.Errorf("resolver must not notify, got %d notices", h.NoticeCount())
	}
}

func TestProjectContextStoreErrorUnresolvable(t *testing.T) {
	h := host.NewFakeHost(nil)
	s := store.NewMemoryStore(nil)
	s.GetError = errors.New("locked")
	r := New(h, s)

	if _, err := r.ProjectContext(); !errors.Is(err, ErrUnresolvable) {
		t.Errorf("got %v, want ErrUnresolvable", err)
	}
}

func TestCustomProbeOrder(t *testing.T) {
	h := host.NewFakeHost(&host.ProjectInfo{FriendlyName: "Synth"})
	h.Schematic = &host.DocumentInfo{Name: "Main"}
	h.PCB = &host.DocumentInfo{Name: "Board"}
	r := &Resolver{Host: h, Store: store.NewMemoryStore(nil), Probes: []Probe{PCBProbe, SchematicProbe}}

	ctx, _ := r.ProjectContext()
	if ctx.EditorType != logic.EditorPCB {
		t.Errorf("first probe should win: got %s", ctx.EditorType)
	}
}

func TestContentMetricSchematic(t *testing.T) {
	h := host.NewFakeHost(nil)
	schematicCounts(h)
	r := New(h, store.NewMemoryStore(nil))

	m := r.ContentMetric(logic.EditorSchematic)
	if m.Count != 40 {
		t.Errorf("Count: got %d, want 40", m.Count)
	}
	if m.PredictedType != logic.EditorSchematic {
		t.Errorf("PredictedType: got %s, want Schematic", m.PredictedType)
	}
}

func TestContentMetricPCB(t *testing.T) {
	h := host.NewFakeHost(nil)
	pcbCounts(h)
	r := New(h, store.NewMemoryStore(nil))

	m := r.ContentMetric(logic.EditorPCB)
	if m.Count != 90 || m.PredictedType != logic.EditorPCB {
		t.Errorf("got %+v, want {90 PCB}", m)
	}
}

func TestContentMetricUnclassifiedFallsThroughToPCB(t *testing.T) {
	h := host.NewFakeHost(nil)
	pcbCounts(h) // no Wire/Text/Bus/Pin: schematic surface fails
	r := New(h, store.NewMemoryStore(nil))

	m := r.ContentMetric(logic.EditorProject)
	if m.Count != 90 || m.PredictedType != logic.EditorPCB {
		t.Errorf("got %+v, want {90 PCB}", m)
	}
}

func TestContentMetricUnclassifiedPrefersSchematic(t *testing.T) {
	h := host.NewFakeHost(nil)
	schematicCounts(h)
	pcbCounts(h)
	r := New(h, store.NewMemoryStore(nil))

	m := r.ContentMetric(logic.EditorUnknown)
	if m.PredictedType != logic.EditorSchematic {
		t.Errorf("PredictedType: got %s, want Schematic", m.PredictedType)
	}
}

func TestContentMetricAllFail(t *testing.T) {
	r := New(host.NewFakeHost(nil), store.NewMemoryStore(nil))

	for _, editor := range []logic.EditorType{logic.EditorSchematic, logic.EditorPCB, logic.EditorProject} {
		m := r.ContentMetric(editor)
		if m.Count != 0 || m.PredictedType != logic.EditorProject {
			t.Errorf("%s: got %+v, want {0 Project}", editor, m)
		}
	}
}

func TestContentMetricKnownTypeDoesNotCrossSurfaces(t *testing.T) {
	h := host.NewFakeHost(nil)
	pcbCounts(h)
	r := New(h, store.NewMemoryStore(nil))

	m := r.ContentMetric(logic.EditorSchematic)
	if m.PredictedType == logic.EditorPCB {
		t.Error("schematic request must not be answered with board primitives")
	}
}
