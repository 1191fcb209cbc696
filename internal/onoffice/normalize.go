package onoffice

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/immocanvas/immocanvas/internal/usecase"
)

// The provider wraps result data in different envelopes depending on
// the call. extractRecords tries the known shapes in a fixed priority
// order: a bare record array, the nested results envelope, then a
// top-level data array. No match is an empty result, not an error.
func extractRecords(raw []byte) []json.RawMessage {
	trimmed := bytes.TrimSpace(raw)

	if len(trimmed) > 0 && trimmed[0] == '[' {
		var records []json.RawMessage
		if err := json.Unmarshal(trimmed, &records); err == nil {
			return records
		}
	}

	var nested struct {
		Response struct {
			Results []struct {
				Data struct {
					Records []json.RawMessage `json:"records"`
				} `json:"data"`
			} `json:"results"`
		} `json:"response"`
	}
	if err := json.Unmarshal(trimmed, &nested); err == nil &&
		len(nested.Response.Results) > 0 &&
		nested.Response.Results[0].Data.Records != nil {
		return nested.Response.Results[0].Data.Records
	}

	var flat struct {
		Data []json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(trimmed, &flat); err == nil && flat.Data != nil {
		return flat.Data
	}

	return nil
}

type record struct {
	ID       any            `json:"id"`
	Type     string         `json:"type"`
	Elements map[string]any `json:"elements"`
}

// idString normalizes the provider-assigned id, which arrives as a
// number on some calls and a string on others.
func idString(v any) string {
	switch id := v.(type) {
	case string:
		return id
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	case json.Number:
		return id.String()
	default:
		return ""
	}
}

func decodeEstates(raw []byte) []usecase.Estate {
	records := extractRecords(raw)
	estates := make([]usecase.Estate, 0, len(records))
	for _, r := range records {
		var rec record
		if err := json.Unmarshal(r, &rec); err != nil {
			continue
		}
		elements := rec.Elements
		if elements == nil {
			elements = map[string]any{}
		}
		id := idString(rec.ID)
		if id == "" {
			id = idString(elements["Id"])
		}
		estates = append(estates, usecase.Estate{
			ID:       id,
			Elements: elements,
		})
	}
	return estates
}

func decodeEstateImages(raw []byte, estateID string) []usecase.EstateImage {
	records := extractRecords(raw)
	images := make([]usecase.EstateImage, 0, len(records))
	for _, r := range records {
		var rec record
		if err := json.Unmarshal(r, &rec); err != nil {
			continue
		}
		img := usecase.EstateImage{
			ID:       idString(rec.ID),
			EstateID: estateID,
		}
		if v, ok := rec.Elements["type"].(string); ok {
			img.Category = v
		}
		if v, ok := rec.Elements["title"].(string); ok {
			img.Title = v
		}
		if v, ok := rec.Elements["url"].(string); ok {
			img.URL = v
		} else if v, ok := rec.Elements["imageUrl"].(string); ok {
			img.URL = v
		}
		if v, ok := rec.Elements["name"].(string); ok {
			img.OriginalFilename = v
		}
		if v, ok := rec.Elements["position"].(float64); ok {
			img.Position = int(v)
		}
		images = append(images, img)
	}
	return images
}

func decodeAddresses(raw []byte) []usecase.Address {
	records := extractRecords(raw)
	addresses := make([]usecase.Address, 0, len(records))
	for _, r := range records {
		var rec record
		if err := json.Unmarshal(r, &rec); err != nil {
			continue
		}
		elements := rec.Elements
		if elements == nil {
			elements = map[string]any{}
		}
		addresses = append(addresses, usecase.Address{
			ID:       idString(rec.ID),
			Elements: elements,
		})
	}
	return addresses
}
