package canvas

import (
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"
)

// Keys the editor writes onto scene objects. "id" is the object's own
// transient handle, "layerId" is the stable cross-reference stamped at
// save time. The rendering library round-trips both as custom
// properties.
const (
	objectKeyID      = "id"
	objectKeyLayerID = "layerId"
	objectKeyVisible = "visible"
)

// Object is one drawable in the scene graph. All properties the
// rendering library owns are kept verbatim; the editor only reads and
// writes the identity and visibility keys.
type Object map[string]any

func (o Object) strKey(key string) string {
	s, _ := o[key].(string)
	return s
}

// ID returns the object's transient handle id, if present.
func (o Object) ID() string { return o.strKey(objectKeyID) }

// LayerID returns the stamped layer cross-reference, if present.
func (o Object) LayerID() string { return o.strKey(objectKeyLayerID) }

func (o Object) setID(id string)      { o[objectKeyID] = id }
func (o Object) setLayerID(id string) { o[objectKeyLayerID] = id }

// SetVisible toggles the object's visibility property.
func (o Object) SetVisible(v bool) { o[objectKeyVisible] = v }

// Scene is the deserialized scene graph. The object list is explicit;
// every other top-level field of the rendering library's JSON (version,
// background, ...) is carried through untouched.
type Scene struct {
	Objects []Object

	rest map[string]json.RawMessage
}

func (s *Scene) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if objs, ok := raw["objects"]; ok {
		if err := json.Unmarshal(objs, &s.Objects); err != nil {
			return err
		}
		delete(raw, "objects")
	}
	s.rest = raw
	return nil
}

func (s Scene) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(s.rest)+1)
	for k, v := range s.rest {
		out[k] = v
	}
	objs := s.Objects
	if objs == nil {
		objs = []Object{}
	}
	out["objects"] = objs
	return json.Marshal(out)
}

// ParseScene decodes a stored canvas_data document.
func ParseScene(data []byte) (*Scene, error) {
	var s Scene
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Stamp writes each layer's id onto its scene object so that identity
// survives the rendering library's serialization, which does not
// preserve application-level references. Objects without an id yet are
// assigned one. Returns the layer list with object ids filled in.
func Stamp(s *Scene, layers []Layer) []Layer {
	byID := make(map[string]Object, len(s.Objects))
	for _, o := range s.Objects {
		if id := o.ID(); id != "" {
			byID[id] = o
		}
	}

	out := make([]Layer, len(layers))
	copy(out, layers)

	for i := range out {
		if out[i].ObjectID == "" {
			continue
		}
		o, ok := byID[out[i].ObjectID]
		if !ok {
			continue
		}
		o.setLayerID(out[i].ID)
	}
	return out
}

// Rebind re-associates stored layers to the deserialized scene objects
// after a load. Match order per object: the stamped layerId, then the
// object's own transient id, then positional correspondence in creation
// order. Layers that match by no method are dropped with a warning
// instead of failing the load. Visibility is re-applied to the matched
// object.
func Rebind(layers []Layer, s *Scene, logger *slog.Logger) []Layer {
	byLayerID := make(map[string]int, len(s.Objects))
	byObjectID := make(map[string]int, len(s.Objects))
	for i, o := range s.Objects {
		if id := o.LayerID(); id != "" {
			if _, dup := byLayerID[id]; !dup {
				byLayerID[id] = i
			}
		}
		if id := o.ID(); id != "" {
			if _, dup := byObjectID[id]; !dup {
				byObjectID[id] = i
			}
		}
	}

	claimed := make(map[int]bool, len(s.Objects))
	out := make([]Layer, 0, len(layers))

	for idx, l := range layers {
		objIdx, ok := matchObject(l, idx, byLayerID, byObjectID, claimed, len(s.Objects))
		if !ok {
			logger.Warn("dropping layer with no matching scene object",
				slog.String("layer_id", l.ID),
				slog.String("layer_name", l.Name),
			)
			continue
		}
		claimed[objIdx] = true

		o := s.Objects[objIdx]
		if o.ID() == "" {
			o.setID(uuid.NewString())
		}
		o.setLayerID(l.ID)
		o.SetVisible(l.Visible)

		l.ObjectID = o.ID()
		out = append(out, l)
	}
	return out
}

func matchObject(l Layer, pos int, byLayerID, byObjectID map[string]int, claimed map[int]bool, n int) (int, bool) {
	if i, ok := byLayerID[l.ID]; ok && !claimed[i] {
		return i, true
	}
	if l.ObjectID != "" {
		if i, ok := byObjectID[l.ObjectID]; ok && !claimed[i] {
			return i, true
		}
	}
	if pos < n && !claimed[pos] {
		return pos, true
	}
	return 0, false
}
