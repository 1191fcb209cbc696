package database

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/immocanvas/immocanvas/internal/canvas"
	"github.com/immocanvas/immocanvas/internal/usecase"
)

type Design struct {
	ID         uuid.UUID       `gorm:"column:id;primaryKey;type:uuid;default:uuid_generate_v4()"`
	UserID     uuid.UUID       `gorm:"column:user_id;type:uuid;not null;index"`
	Name       string          `gorm:"column:name;type:varchar(255);not null"`
	CanvasData datatypes.JSON  `gorm:"column:canvas_data"`
	CanvasSize datatypes.JSON  `gorm:"column:canvas_size"`
	Layers     datatypes.JSON  `gorm:"column:layers"`
	CreatedAt  time.Time       `gorm:"column:created_at"`
	UpdatedAt  time.Time       `gorm:"column:updated_at"`
	DeletedAt  *gorm.DeletedAt `gorm:"column:deleted_at"`
}

func (Design) TableName() string {
	return "designs"
}

func (d Design) ConvertToUsecase() (usecase.Design, error) {
	ud := usecase.Design{
		ID:        d.ID,
		UserID:    d.UserID,
		Name:      d.Name,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
	if len(d.CanvasData) > 0 {
		ud.CanvasData = json.RawMessage(d.CanvasData)
	}
	if len(d.CanvasSize) > 0 {
		var size canvas.Preset
		if err := json.Unmarshal(d.CanvasSize, &size); err != nil {
			return usecase.Design{}, err
		}
		ud.CanvasSize = &size
	}
	if len(d.Layers) > 0 {
		if err := json.Unmarshal(d.Layers, &ud.Layers); err != nil {
			return usecase.Design{}, err
		}
	}
	return ud, nil
}

// ListDesigns retrieves the user's designs, most recently updated
// first.
func (s *service) ListDesigns(ctx context.Context, userID uuid.UUID) ([]usecase.Design, int, error) {
	var (
		designs  []Design
		udesigns []usecase.Design
		count    int64
	)

	db := s.db.
		Model(&Design{}).
		WithContext(ctx).
		Where("user_id = ?", userID)

	if err := db.Count(&count).Error; err != nil {
		return nil, 0, err
	}

	if err := db.
		Order("updated_at DESC").
		Find(&designs).
		Error; err != nil {
		return nil, 0, err
	}

	for _, d := range designs {
		ud, err := d.ConvertToUsecase()
		if err != nil {
			return nil, 0, err
		}
		udesigns = append(udesigns, ud)
	}

	return udesigns, int(count), nil
}

// GetDesignByID retrieves a design scoped by both id and owner. A
// foreign-owned row is indistinguishable from a missing one.
func (s *service) GetDesignByID(ctx context.Context, userID, id uuid.UUID) (usecase.Design, error) {
	var design Design

	if err := s.db.
		WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&design).
		Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return usecase.Design{}, usecase.ErrNotFound
		}
		return usecase.Design{}, err
	}

	return design.ConvertToUsecase()
}

// CreateDesign inserts a new design row.
func (s *service) CreateDesign(ctx context.Context, d usecase.Design) (usecase.Design, error) {
	design := Design{
		UserID:     d.UserID,
		Name:       d.Name,
		CanvasData: datatypes.JSON(d.CanvasData),
	}
	if d.CanvasSize != nil {
		size, err := json.Marshal(d.CanvasSize)
		if err != nil {
			return usecase.Design{}, err
		}
		design.CanvasSize = size
	}
	if d.Layers != nil {
		layers, err := json.Marshal(d.Layers)
		if err != nil {
			return usecase.Design{}, err
		}
		design.Layers = layers
	}

	if err := s.db.
		WithContext(ctx).
		Clauses(clause.Returning{}).
		Create(&design).
		Error; err != nil {
		return usecase.Design{}, err
	}

	return design.ConvertToUsecase()
}

// UpdateDesign applies a partial update. Only supplied fields
// overwrite existing values.
func (s *service) UpdateDesign(ctx context.Context, userID, id uuid.UUID, req usecase.UpdateDesignRequest) (usecase.Design, error) {
	updates := map[string]any{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.CanvasData != nil {
		updates["canvas_data"] = datatypes.JSON(req.CanvasData)
	}
	if req.CanvasSize != nil {
		size, err := json.Marshal(req.CanvasSize)
		if err != nil {
			return usecase.Design{}, err
		}
		updates["canvas_size"] = datatypes.JSON(size)
	}
	if req.Layers != nil {
		layers, err := json.Marshal(*req.Layers)
		if err != nil {
			return usecase.Design{}, err
		}
		updates["layers"] = datatypes.JSON(layers)
	}

	if len(updates) > 0 {
		res := s.db.
			WithContext(ctx).
			Model(&Design{}).
			Where("id = ? AND user_id = ?", id, userID).
			Updates(updates)
		if res.Error != nil {
			return usecase.Design{}, res.Error
		}
		if res.RowsAffected == 0 {
			return usecase.Design{}, usecase.ErrNotFound
		}
	}

	return s.GetDesignByID(ctx, userID, id)
}

// DeleteDesign removes a design iff it is owned by userID.
func (s *service) DeleteDesign(ctx context.Context, userID, id uuid.UUID) error {
	res := s.db.
		WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&Design{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return usecase.ErrNotFound
	}
	return nil
}
