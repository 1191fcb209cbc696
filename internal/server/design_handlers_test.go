package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/immocanvas/immocanvas/internal/config"
	"github.com/immocanvas/immocanvas/internal/usecase"
)

type fakeService struct {
	designs map[uuid.UUID]usecase.Design
}

func newFakeService() *fakeService {
	return &fakeService{designs: make(map[uuid.UUID]usecase.Design)}
}

func (f *fakeService) Health() map[string]string { return map[string]string{"status": "up"} }
func (f *fakeService) Close() error              { return nil }

func (f *fakeService) ListDesigns(_ context.Context, userID uuid.UUID) ([]usecase.Design, int, error) {
	var out []usecase.Design
	for _, d := range f.designs {
		if d.UserID == userID {
			out = append(out, d)
		}
	}
	return out, len(out), nil
}

func (f *fakeService) GetDesign(_ context.Context, userID, designID uuid.UUID) (usecase.Design, error) {
	d, ok := f.designs[designID]
	if !ok || d.UserID != userID {
		return usecase.Design{}, usecase.ErrNotFound
	}
	return d, nil
}

func (f *fakeService) SaveDesign(_ context.Context, userID uuid.UUID, designID *uuid.UUID, in usecase.SaveDesignInput) (usecase.Design, error) {
	if designID != nil {
		d, ok := f.designs[*designID]
		if !ok || d.UserID != userID {
			return usecase.Design{}, usecase.ErrNotFound
		}
		if in.Name != nil {
			d.Name = *in.Name
		}
		d.UpdatedAt = time.Now()
		f.designs[*designID] = d
		return d, nil
	}

	name := usecase.DefaultDesignName
	if in.Name != nil && *in.Name != "" {
		name = *in.Name
	}
	d := usecase.Design{
		ID:         uuid.New(),
		UserID:     userID,
		Name:       name,
		CanvasData: in.CanvasData,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
	f.designs[d.ID] = d
	return d, nil
}

func (f *fakeService) DeleteDesign(_ context.Context, userID, designID uuid.UUID) error {
	d, ok := f.designs[designID]
	if !ok || d.UserID != userID {
		return usecase.ErrNotFound
	}
	delete(f.designs, designID)
	return nil
}

func (f *fakeService) TestConnection(context.Context) error { return nil }

func (f *fakeService) ListEstates(context.Context, usecase.ListEstatesOption) ([]usecase.Estate, error) {
	return nil, nil
}

func (f *fakeService) ListEstateImages(context.Context, string) ([]usecase.EstateImage, error) {
	return nil, nil
}

func (f *fakeService) ListEstateImagesBatch(context.Context, []string) (map[string][]usecase.EstateImage, error) {
	return nil, nil
}

func (f *fakeService) EstatePalette(context.Context, string) ([][4]uint8, error) {
	return nil, nil
}

func (f *fakeService) ListAddresses(context.Context, usecase.ListAddressesOption) ([]usecase.Address, error) {
	return nil, nil
}

func newTestServer(svc Service) http.Handler {
	s := &Server{
		server:    svc,
		validator: validator.New(),
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	return s.RegisterRoutes()
}

func decodeRes(t *testing.T, rec *httptest.ResponseRecorder) Res {
	t.Helper()
	var res Res
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	return res
}

func TestDesignsRequireUserIdentity(t *testing.T) {
	h := newTestServer(newFakeService())

	req := httptest.NewRequest(http.MethodGet, "/api/designs", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	res := decodeRes(t, rec)
	assert.False(t, res.Success)
	assert.Equal(t, "Missing user identity", res.Message)
}

func TestDesignsRejectUnparsableUserID(t *testing.T) {
	h := newTestServer(newFakeService())

	req := httptest.NewRequest(http.MethodGet, "/api/designs", nil)
	req.Header.Set(config.HEADER_KEY_X_USER_ID, "not-a-uuid")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid user identity", decodeRes(t, rec).Message)
}

func TestGetDesignByIDNotFound(t *testing.T) {
	h := newTestServer(newFakeService())

	req := httptest.NewRequest(http.MethodGet, "/api/designs/"+uuid.NewString(), nil)
	req.Header.Set(config.HEADER_KEY_X_USER_ID, uuid.NewString())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	res := decodeRes(t, rec)
	assert.False(t, res.Success)
	assert.Contains(t, res.Message, "Design not found")
}

func TestGetDesignByIDHidesForeignDesigns(t *testing.T) {
	svc := newFakeService()
	owner := uuid.New()
	d, err := svc.SaveDesign(context.Background(), owner, nil, usecase.SaveDesignInput{})
	require.NoError(t, err)

	h := newTestServer(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/designs/"+d.ID.String(), nil)
	req.Header.Set(config.HEADER_KEY_X_USER_ID, uuid.NewString())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code, "foreign designs must be indistinguishable from missing ones")
}

func TestSaveDesignCreates(t *testing.T) {
	h := newTestServer(newFakeService())
	userID := uuid.New()

	body := `{"name":"Expose","canvasData":{"objects":[]}}`
	req := httptest.NewRequest(http.MethodPost, "/api/designs", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, "application/json")
	req.Header.Set(config.HEADER_KEY_X_USER_ID, userID.String())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	res := decodeRes(t, rec)
	assert.True(t, res.Success)

	data, err := json.Marshal(res.Data)
	require.NoError(t, err)
	var d Design
	require.NoError(t, json.Unmarshal(data, &d))
	assert.Equal(t, "Expose", d.Name)
	assert.Equal(t, userID.String(), d.UserID)
	assert.NotEmpty(t, d.ID)
}

func TestSaveDesignRejectsMalformedDesignID(t *testing.T) {
	h := newTestServer(newFakeService())

	body := `{"designId":"not-a-uuid","name":"x"}`
	req := httptest.NewRequest(http.MethodPost, "/api/designs", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, "application/json")
	req.Header.Set(config.HEADER_KEY_X_USER_ID, uuid.NewString())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestDeleteDesign(t *testing.T) {
	svc := newFakeService()
	userID := uuid.New()
	d, err := svc.SaveDesign(context.Background(), userID, nil, usecase.SaveDesignInput{})
	require.NoError(t, err)

	h := newTestServer(svc)

	req := httptest.NewRequest(http.MethodDelete, "/api/designs/"+d.ID.String(), nil)
	req.Header.Set(config.HEADER_KEY_X_USER_ID, userID.String())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Design deleted successfully", decodeRes(t, rec).Message)
	assert.Empty(t, svc.designs)
}

func TestListDesignsEnvelope(t *testing.T) {
	svc := newFakeService()
	userID := uuid.New()
	_, err := svc.SaveDesign(context.Background(), userID, nil, usecase.SaveDesignInput{
		CanvasData: json.RawMessage(`{"objects":[]}`),
	})
	require.NoError(t, err)

	h := newTestServer(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/designs", nil)
	req.Header.Set(config.HEADER_KEY_X_USER_ID, userID.String())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	res := decodeRes(t, rec)
	assert.True(t, res.Success)
	require.NotNil(t, res.Meta)
	assert.Equal(t, 1, res.Meta.Total)

	data, err := json.Marshal(res.Data)
	require.NoError(t, err)
	var list []Design
	require.NoError(t, json.Unmarshal(data, &list))
	require.Len(t, list, 1)
	assert.Nil(t, list[0].CanvasData, "list responses omit canvas_data")
}

func TestListPresetsIsPublic(t *testing.T) {
	h := newTestServer(newFakeService())

	req := httptest.NewRequest(http.MethodGet, "/api/presets", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decodeRes(t, rec).Success)
}
