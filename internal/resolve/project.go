// Package resolve works out what the user is editing: the project, the
// editor surface, and a primitive count standing in for lines of code.
package resolve

import (
	"errors"
	"log"

	"github.com/tobycm/easyeda-wakatime/internal/host"
	"github.com/tobycm/easyeda-wakatime/internal/logic"
	"github.com/tobycm/easyeda-wakatime/internal/store"
)

// ErrUnresolvable is returned when neither the editor nor the store names a project.
var ErrUnresolvable = errors.New("resolve: project cannot be identified")

// UnresolvableMessage is shown (once per occurrence) when ErrUnresolvable is returned.
const UnresolvableMessage = "Due to a bug in EasyEDA Pro <=2.2.34.6, we're unable to identify your current project. " +
	"To temporarily resolve this, you can manually set your project name with easyeda-wakatime -set-project."

// Probe inspects one editor surface. It returns ok=false when that surface is
// not open or the editor did not answer.
type Probe func(h host.Host, project *host.ProjectInfo) (logic.ProjectContext, bool)

// DefaultProbes tries the schematic editor, then the board editor.
var DefaultProbes = []Probe{SchematicProbe, PCBProbe}

// Resolver answers "what is being worked on" for the scheduler.
type Resolver struct {
	Host   host.Host
	Store  store.Store
	Probes []Probe
}

// New creates a Resolver using DefaultProbes.
func New(h host.Host, s store.Store) *Resolver {
	return &Resolver{Host: h, Store: s, Probes: DefaultProbes}
}

// ProjectContext resolves the current project.
// The editor's project API is known to be intermittently unavailable, so a
// failure there falls back to the project name the user stored.
func (r *Resolver) ProjectContext() (logic.ProjectContext, error) {
	info, err := r.Host.ProjectInfo()
	if err != nil {
		log.Printf("resolve: project info unavailable: %v", err)
		return r.storedProject()
	}
	if info == nil {
		return r.storedProject()
	}

	for _, probe := range r.Probes {
		if ctx, ok := probe(r.Host, info); ok {
			return ctx, nil
		}
	}
	return logic.ProjectContext{
		FriendlyName: info.FriendlyName,
		EditorType:   logic.EditorProject,
		EntityName:   info.FriendlyName,
	}, nil
}

func (r *Resolver) storedProject() (logic.ProjectContext, error) {
	name, ok, err := r.Store.Get(store.KeyProjectName)
	if err != nil {
		log.Printf("resolve: read stored project name: %v", err)
		return logic.ProjectContext{}, ErrUnresolvable
	}
	if !ok || name == "" {
		return logic.ProjectContext{}, ErrUnresolvable
	}
	return logic.ProjectContext{
		FriendlyName: name,
		EditorType:   logic.EditorProject,
		EntityName:   name,
	}, nil
}

// SchematicProbe detects an open schematic.
func SchematicProbe(h host.Host, project *host.ProjectInfo) (logic.ProjectContext, bool) {
	doc, err := h.SchematicInfo()
	return documentContext(doc, err, project, logic.EditorSchematic)
}

// PCBProbe detects an open board.
func PCBProbe(h host.Host, project *host.ProjectInfo) (logic.ProjectContext, bool) {
	doc, err := h.PCBInfo()
	return documentContext(doc, err, project, logic.EditorPCB)
}

func documentContext(doc *host.DocumentInfo, err error, project *host.ProjectInfo, editor logic.EditorType) (logic.ProjectContext, bool) {
	if err != nil {
		log.Printf("resolve: %s info unavailable: %v", editor, err)
		return logic.ProjectContext{}, false
	}
	if doc == nil {
		return logic.ProjectContext{}, false
	}
	return logic.ProjectContext{
		FriendlyName: project.FriendlyName,
		EditorType:   editor,
		EntityName:   doc.Name,
	}, true
}
