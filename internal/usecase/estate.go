package usecase

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"net/http"
	"sort"
	"sync"

	"github.com/cenkalti/dominantcolor"
	"golang.org/x/sync/errgroup"

	_ "image/jpeg"
	_ "image/png"
)

// Estate is a normalized CRM property record. The provider's field set
// is open-ended, so everything beyond the id stays in Elements.
type Estate struct {
	ID       string
	Elements map[string]any
}

// Title returns the listing title, falling back to the estate id.
func (e Estate) Title() string {
	if t, ok := e.Elements["objekttitel"].(string); ok && t != "" {
		return t
	}
	return fmt.Sprintf("Immobilie #%s", e.ID)
}

// EstateImage is a normalized CRM photo record, always attached to
// exactly one estate.
type EstateImage struct {
	ID               string
	EstateID         string
	Category         string
	Title            string
	URL              string
	OriginalFilename string
	Position         int
}

// Address is a normalized CRM contact record.
type Address struct {
	ID       string
	Elements map[string]any
}

type ListEstatesOption struct {
	// Fields overrides the default field set requested from the CRM.
	Fields []string
	Limit  int
	// Filter overrides the default active-listings-only filter.
	Filter map[string]any
}

type ListAddressesOption struct {
	Fields []string
	Limit  int
}

func (u *Usecase) TestConnection(ctx context.Context) error {
	return u.estate.TestConnection(ctx)
}

func (u *Usecase) ListEstates(ctx context.Context, opt ListEstatesOption) ([]Estate, error) {
	return u.estate.ListEstates(ctx, opt)
}

func (u *Usecase) ListAddresses(ctx context.Context, opt ListAddressesOption) ([]Address, error) {
	return u.estate.ListAddresses(ctx, opt)
}

// ListEstateImages fetches the photos of one estate. Rapid repeated
// calls for the same estate share a single in-flight CRM request.
func (u *Usecase) ListEstateImages(ctx context.Context, estateID string) ([]EstateImage, error) {
	v, err, _ := u.imageCalls.Do(estateID, func() (any, error) {
		return u.estate.ListEstateImages(ctx, estateID)
	})
	if err != nil {
		return nil, err
	}
	return v.([]EstateImage), nil
}

// ListEstateImagesBatch loads images for several estates concurrently.
// One estate's failure is logged and leaves a nil entry; it does not
// abort the siblings.
func (u *Usecase) ListEstateImagesBatch(ctx context.Context, estateIDs []string) (map[string][]EstateImage, error) {
	var (
		mu  sync.Mutex
		out = make(map[string][]EstateImage, len(estateIDs))
	)

	g, ctx := errgroup.WithContext(ctx)
	for _, id := range estateIDs {
		g.Go(func() error {
			images, err := u.ListEstateImages(ctx, id)
			if err != nil {
				u.logger.Warn("failed to load estate images",
					slog.String("estate_id", id),
					slog.String("err", err.Error()),
				)
				return nil
			}
			mu.Lock()
			out[id] = images
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// EstatePalette suggests brand colors for a design by extracting the
// dominant colors of the estate's cover photo.
func (u *Usecase) EstatePalette(ctx context.Context, estateID string) ([][4]uint8, error) {
	images, err := u.ListEstateImages(ctx, estateID)
	if err != nil {
		return nil, err
	}
	if len(images) == 0 {
		return nil, nil
	}

	cover := pickCover(images)
	return extractColors(ctx, cover.URL)
}

// pickCover prefers the CRM's title image, then lowest position.
func pickCover(images []EstateImage) EstateImage {
	sorted := make([]EstateImage, len(images))
	copy(sorted, images)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Position < sorted[j].Position
	})
	for _, img := range sorted {
		if img.Category == "Titelbild" {
			return img
		}
	}
	return sorted[0]
}

func extractColors(ctx context.Context, url string) ([][4]uint8, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	img, _, err := image.Decode(res.Body)
	if err != nil {
		return nil, err
	}

	var colors [][4]uint8
	for _, c := range dominantcolor.FindN(img, 4) {
		colors = append(colors, [4]uint8{c.R, c.G, c.B, c.A})
	}
	return colors, nil
}
