package usecase

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/immocanvas/immocanvas/internal/canvas"
)

// DefaultDesignName is used when a design is first saved without a
// name.
const DefaultDesignName = "Untitled Design"

// Design is a persisted social-media template: the scene graph as the
// rendering library serializes it, plus the portable layer list and
// canvas size.
type Design struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	Name       string
	CanvasData json.RawMessage
	CanvasSize *canvas.Preset
	Layers     []canvas.Layer
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// SaveDesignInput carries the fields of a save request. Nil fields are
// not touched on update.
type SaveDesignInput struct {
	Name       *string
	CanvasData json.RawMessage
	CanvasSize *canvas.Preset
	Layers     *[]canvas.Layer
}

// UpdateDesignRequest is the partial update passed to the repository.
type UpdateDesignRequest struct {
	Name       *string
	CanvasData json.RawMessage
	CanvasSize *canvas.Preset
	Layers     *[]canvas.Layer
}

// SaveDesign inserts a new design when designID is nil, otherwise
// updates the existing one after verifying ownership. Layer ids are
// stamped onto the scene objects before persisting so identity
// survives the scene graph's own serialization.
func (u *Usecase) SaveDesign(ctx context.Context, userID uuid.UUID, designID *uuid.UUID, in SaveDesignInput) (Design, error) {
	if in.CanvasData != nil && !json.Valid(in.CanvasData) {
		return Design{}, &ValidationError{Field: "canvasData", Reason: "not valid JSON"}
	}

	canvasData := in.CanvasData
	layers := in.Layers
	if canvasData != nil && layers != nil && len(*layers) > 0 {
		stampedData, stampedLayers, err := stampCanvas(canvasData, *layers)
		if err != nil {
			return Design{}, err
		}
		canvasData = stampedData
		layers = &stampedLayers
	}

	if designID != nil {
		// fails closed when the row is missing or foreign-owned
		if _, err := u.repo.GetDesignByID(ctx, userID, *designID); err != nil {
			return Design{}, err
		}
		return u.repo.UpdateDesign(ctx, userID, *designID, UpdateDesignRequest{
			Name:       in.Name,
			CanvasData: canvasData,
			CanvasSize: in.CanvasSize,
			Layers:     layers,
		})
	}

	name := DefaultDesignName
	if in.Name != nil && *in.Name != "" {
		name = *in.Name
	}

	d := Design{
		UserID:     userID,
		Name:       name,
		CanvasData: canvasData,
		CanvasSize: in.CanvasSize,
	}
	if layers != nil {
		d.Layers = *layers
	}
	return u.repo.CreateDesign(ctx, d)
}

// GetDesign loads a design owned by userID and re-associates each
// stored layer with its scene object: first by the layer id stamped at
// save time, then by the object's transient id, finally by position.
// Layers that match nothing are dropped with a warning.
func (u *Usecase) GetDesign(ctx context.Context, userID, designID uuid.UUID) (Design, error) {
	d, err := u.repo.GetDesignByID(ctx, userID, designID)
	if err != nil {
		return Design{}, err
	}

	if len(d.CanvasData) == 0 || len(d.Layers) == 0 {
		return d, nil
	}

	scene, err := canvas.ParseScene(d.CanvasData)
	if err != nil {
		u.logger.Warn("stored canvas data is not a scene document",
			slog.String("design_id", d.ID.String()),
			slog.String("err", err.Error()),
		)
		return d, nil
	}

	d.Layers = canvas.Rebind(d.Layers, scene, u.logger)
	if data, err := json.Marshal(scene); err == nil {
		d.CanvasData = data
	}
	return d, nil
}

// ListDesigns returns the user's designs, most recently updated first.
func (u *Usecase) ListDesigns(ctx context.Context, userID uuid.UUID) ([]Design, int, error) {
	return u.repo.ListDesigns(ctx, userID)
}

// DeleteDesign removes a design iff it is owned by userID.
func (u *Usecase) DeleteDesign(ctx context.Context, userID, designID uuid.UUID) error {
	return u.repo.DeleteDesign(ctx, userID, designID)
}

func stampCanvas(data json.RawMessage, layers []canvas.Layer) (json.RawMessage, []canvas.Layer, error) {
	scene, err := canvas.ParseScene(data)
	if err != nil {
		return nil, nil, &ValidationError{Field: "canvasData", Reason: "not a scene document"}
	}
	stamped := canvas.Stamp(scene, layers)
	out, err := json.Marshal(scene)
	if err != nil {
		return nil, nil, err
	}
	return out, stamped, nil
}
