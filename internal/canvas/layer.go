package canvas

// Kind classifies what a layer draws.
type Kind string

const (
	KindText  Kind = "text"
	KindImage Kind = "image"
	KindShape Kind = "shape"
)

// Layer is the editor-facing handle over one scene object. Only the
// portable fields are serialized; the link to the live object is
// re-established on load, see Rebind.
type Layer struct {
	ID              string `json:"id"`
	Kind            Kind   `json:"type"`
	Name            string `json:"name"`
	DataBinding     string `json:"dataBinding,omitempty"`
	EstateImageType string `json:"estateImageType,omitempty"`
	ObjectID        string `json:"fabricObjectId,omitempty"`
	Visible         bool   `json:"visible"`
}

// LayerPatch carries a partial layer update. Nil fields are left
// untouched.
type LayerPatch struct {
	Name            *string
	DataBinding     *string
	EstateImageType *string
	ObjectID        *string
	Visible         *bool
}

// Document holds the ordered layer list and the current selection for
// one open design. Layer order is creation order and doubles as
// z-order; nothing here ever resorts it. A Document belongs to a
// single editor session and is not safe for concurrent use.
type Document struct {
	layers   []Layer
	selected string
}

func NewDocument() *Document {
	return &Document{}
}

// Layers returns the layer list in creation order.
func (d *Document) Layers() []Layer {
	out := make([]Layer, len(d.layers))
	copy(out, d.layers)
	return out
}

// Len reports the number of layers.
func (d *Document) Len() int {
	return len(d.layers)
}

// Selected returns the currently selected layer, if any.
func (d *Document) Selected() (Layer, bool) {
	if d.selected == "" {
		return Layer{}, false
	}
	for _, l := range d.layers {
		if l.ID == d.selected {
			return l, true
		}
	}
	return Layer{}, false
}

// AddLayer appends a layer. The caller must already have inserted the
// corresponding scene object and recorded its id on the layer.
func (d *Document) AddLayer(l Layer) {
	d.layers = append(d.layers, l)
}

// UpdateLayer merges patch into the matching layer. Unknown ids are a
// no-op.
func (d *Document) UpdateLayer(id string, patch LayerPatch) {
	for i := range d.layers {
		if d.layers[i].ID != id {
			continue
		}
		if patch.Name != nil {
			d.layers[i].Name = *patch.Name
		}
		if patch.DataBinding != nil {
			d.layers[i].DataBinding = *patch.DataBinding
		}
		if patch.EstateImageType != nil {
			d.layers[i].EstateImageType = *patch.EstateImageType
		}
		if patch.ObjectID != nil {
			d.layers[i].ObjectID = *patch.ObjectID
		}
		if patch.Visible != nil {
			d.layers[i].Visible = *patch.Visible
		}
		return
	}
}

// RemoveLayer removes the layer and clears the selection if it was
// selected. Removing the scene object itself is the caller's job.
func (d *Document) RemoveLayer(id string) bool {
	for i := range d.layers {
		if d.layers[i].ID != id {
			continue
		}
		d.layers = append(d.layers[:i], d.layers[i+1:]...)
		if d.selected == id {
			d.selected = ""
		}
		return true
	}
	return false
}

// Select marks the layer as selected. An empty id clears the
// selection. Selecting an unknown id is a no-op.
func (d *Document) Select(id string) bool {
	if id == "" {
		d.selected = ""
		return true
	}
	for _, l := range d.layers {
		if l.ID == id {
			d.selected = id
			return true
		}
	}
	return false
}

// Replace swaps the whole layer list, e.g. after loading a design.
// Selection is cleared.
func (d *Document) Replace(layers []Layer) {
	d.layers = make([]Layer, len(layers))
	copy(d.layers, layers)
	d.selected = ""
}
