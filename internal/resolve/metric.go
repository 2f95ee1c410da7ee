package resolve

import (
	"log"

	"github.com/tobycm/easyeda-wakatime/internal/host"
	"github.com/tobycm/easyeda-wakatime/internal/logic"
)

// Surface is an editor surface and the primitive categories summed for it.
type Surface struct {
	Editor logic.EditorType
	Kinds  []host.PrimitiveKind
}

var (
	SchematicSurface = Surface{
		Editor: logic.EditorSchematic,
		Kinds: []host.PrimitiveKind{
			host.PrimitiveComponent, host.PrimitiveWire, host.PrimitiveText,
			host.PrimitiveBus, host.PrimitivePin,
		},
	}
	PCBSurface = Surface{
		Editor: logic.EditorPCB,
		Kinds: []host.PrimitiveKind{
			host.PrimitiveComponent, host.PrimitiveLine, host.PrimitiveArc,
			host.PrimitiveVia, host.PrimitivePad,
		},
	}
)

// surfacesFor returns the surfaces to try, in order, for an editor classification.
func surfacesFor(editor logic.EditorType) []Surface {
	switch editor {
	case logic.EditorSchematic:
		return []Surface{SchematicSurface}
	case logic.EditorPCB:
		return []Surface{PCBSurface}
	default:
		return []Surface{SchematicSurface, PCBSurface}
	}
}

// ContentMetric counts primitives on the surface matching editor.
// Host failures are absorbed: if no candidate surface can be counted the
// result is a zero count tagged Project, which never disturbs a Schematic or
// PCB baseline.
func (r *Resolver) ContentMetric(editor logic.EditorType) logic.ContentMetric {
	for _, s := range surfacesFor(editor) {
		n, err := r.count(s)
		if err != nil {
			log.Printf("resolve: count %s primitives: %v", s.Editor, err)
			continue
		}
		return logic.ContentMetric{Count: n, PredictedType: s.Editor}
	}
	return logic.ContentMetric{Count: 0, PredictedType: logic.EditorProject}
}

func (r *Resolver) count(s Surface) (int, error) {
	total := 0
	for _, kind := range s.Kinds {
		n, err := r.Host.Primitives(kind)
		if err != nil {
			return 0, err
		}
		total += n
	}
	return total, nil
}
