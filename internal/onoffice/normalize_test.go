package onoffice

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const imageRecord = `{"id":7,"type":"file","elements":{"type":"Grundriss","title":"Plan","url":"https://img/7.png","name":"plan.png","position":2}}`

func TestExtractRecordsEnvelopeEquivalence(t *testing.T) {
	envelopes := map[string]string{
		"bare array":     fmt.Sprintf(`[%s]`, imageRecord),
		"nested results": fmt.Sprintf(`{"status":{"code":200},"response":{"results":[{"data":{"records":[%s]}}]}}`, imageRecord),
		"top-level data": fmt.Sprintf(`{"data":[%s]}`, imageRecord),
	}

	for name, body := range envelopes {
		t.Run(name, func(t *testing.T) {
			images := decodeEstateImages([]byte(body), "42")
			require.Len(t, images, 1)
			assert.Equal(t, "7", images[0].ID)
			assert.Equal(t, "Grundriss", images[0].Category)
			assert.Equal(t, "Plan", images[0].Title)
			assert.Equal(t, "https://img/7.png", images[0].URL)
			assert.Equal(t, "plan.png", images[0].OriginalFilename)
			assert.Equal(t, 2, images[0].Position)
		})
	}
}

func TestExtractRecordsUnknownShape(t *testing.T) {
	records := extractRecords([]byte(`{"something":"else"}`))
	assert.Nil(t, records, "unknown envelope is an empty result, not an error")
}

func TestExtractRecordsPriorityOrder(t *testing.T) {
	// a body carrying both shapes resolves through the nested envelope first
	body := fmt.Sprintf(`{"response":{"results":[{"data":{"records":[%s]}}]},"data":[]}`, imageRecord)
	records := extractRecords([]byte(body))
	require.Len(t, records, 1)
}

func TestDecodeEstates(t *testing.T) {
	body := `{"response":{"results":[{"data":{"records":[
		{"id":3,"type":"estate","elements":{"objekttitel":"Altbauwohnung","kaufpreis":"450000","ort":"Berlin"}},
		{"id":"4","type":"estate","elements":{}}
	]}}]}}`

	estates := decodeEstates([]byte(body))
	require.Len(t, estates, 2)
	assert.Equal(t, "3", estates[0].ID)
	assert.Equal(t, "Altbauwohnung", estates[0].Elements["objekttitel"])
	assert.Equal(t, "4", estates[1].ID)
	assert.NotNil(t, estates[1].Elements)
}

func TestDecodeEstatesFallsBackToElementID(t *testing.T) {
	estates := decodeEstates([]byte(`[{"type":"estate","elements":{"Id":12}}]`))
	require.Len(t, estates, 1)
	assert.Equal(t, "12", estates[0].ID)
}
