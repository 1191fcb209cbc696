package onoffice

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/immocanvas/immocanvas/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSignatureIsDeterministic(t *testing.T) {
	sig := Signature(1700000000, "token", "estate", actionRead, "secret")
	assert.Equal(t, sig, Signature(1700000000, "token", "estate", actionRead, "secret"))
	assert.NotEmpty(t, sig)
}

func TestSignatureChangesWithEachInput(t *testing.T) {
	base := Signature(1700000000, "token", "estate", actionRead, "secret")

	assert.NotEqual(t, base, Signature(1700000001, "token", "estate", actionRead, "secret"))
	assert.NotEqual(t, base, Signature(1700000000, "other", "estate", actionRead, "secret"))
	assert.NotEqual(t, base, Signature(1700000000, "token", "address", actionRead, "secret"))
	assert.NotEqual(t, base, Signature(1700000000, "token", "estate", "other-action", "secret"))
	assert.NotEqual(t, base, Signature(1700000000, "token", "estate", actionRead, "other-secret"))
}

func TestSignatureKnownValue(t *testing.T) {
	// HMAC-SHA256("1700000000" + "t" + "estate" + actionRead, "s"), base64
	got := Signature(1700000000, "t", "estate", actionRead, "s")
	assert.Equal(t, "Z9VAW8IZt0R2Kq+r0QN8GwTN3BopIPlLWTpk5czSqV8=", got)
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL, "test-token", "test-secret", discardLogger()), srv
}

func TestListEstatesRequestShape(t *testing.T) {
	var captured requestBody

	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Write([]byte(`{"status":{"code":200},"response":{"results":[{"status":{"code":200},"data":{"records":[]}}]}}`))
	})

	_, err := c.ListEstates(context.Background(), usecase.ListEstatesOption{})
	require.NoError(t, err)

	require.Len(t, captured.Request.Actions, 1)
	a := captured.Request.Actions[0]

	assert.Equal(t, "test-token", captured.Token)
	assert.Equal(t, actionRead, a.ActionID)
	assert.Equal(t, resourceEstate, a.ResourceType)
	assert.Equal(t, hmacVersion, a.HMACVersion)
	assert.Equal(t, Signature(a.Timestamp, "test-token", resourceEstate, actionRead, "test-secret"), a.HMAC)

	// default field set, limit and active-listings filter
	fields := a.Parameters["data"].([]any)
	assert.Len(t, fields, len(defaultEstateFields))
	assert.Equal(t, float64(20), a.Parameters["listlimit"])

	filter := a.Parameters["filter"].(map[string]any)
	status := filter["status"].([]any)[0].(map[string]any)
	assert.Equal(t, "=", status["op"])
	assert.Equal(t, float64(1), status["val"])
}

func TestListEstatesZeroRecords(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":{"code":200},"response":{"results":[{"status":{"code":200},"data":{"records":[]}}]}}`))
	})

	estates, err := c.ListEstates(context.Background(), usecase.ListEstatesOption{})
	require.NoError(t, err, "an empty result is not an error")
	assert.Empty(t, estates)
}

func TestProviderErrorTopLevel(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":{"code":400,"message":"invalid hmac"}}`))
	})

	_, err := c.ListEstates(context.Background(), usecase.ListEstatesOption{})
	var perr *ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 400, perr.Code)
	assert.Equal(t, "invalid hmac", perr.Message)
}

func TestProviderErrorNestedAction(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":{"code":200},"response":{"results":[{"status":{"code":137,"message":"unknown field"}}]}}`))
	})

	_, err := c.ListEstates(context.Background(), usecase.ListEstatesOption{})
	var perr *ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 137, perr.Code)
}

func TestProviderErrorTransportStatus(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	err := c.TestConnection(context.Background())
	var perr *ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, http.StatusInternalServerError, perr.Code)
}

func TestConnectionErrorUnreachable(t *testing.T) {
	c, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})
	srv.Close()

	err := c.TestConnection(context.Background())
	var cerr *ConnectionError
	require.ErrorAs(t, err, &cerr)
}

func TestSingleAttemptNoRetry(t *testing.T) {
	var calls int
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_ = c.TestConnection(context.Background())
	assert.Equal(t, 1, calls)
}

func TestListEstateImages(t *testing.T) {
	var captured requestBody
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Write([]byte(`{"response":{"results":[{"data":{"records":[
			{"id":9,"type":"file","elements":{"type":"Titelbild","title":"Front","url":"https://img/9.jpg","name":"front.jpg","position":1}}
		]}}]}}`))
	})

	images, err := c.ListEstateImages(context.Background(), "42")
	require.NoError(t, err)

	a := captured.Request.Actions[0]
	assert.Equal(t, resourceFile, a.ResourceType)
	assert.Equal(t, []any{"42"}, a.Parameters["parentids"])

	require.Len(t, images, 1)
	assert.Equal(t, "9", images[0].ID)
	assert.Equal(t, "42", images[0].EstateID)
	assert.Equal(t, "Titelbild", images[0].Category)
	assert.Equal(t, "https://img/9.jpg", images[0].URL)
	assert.Equal(t, "front.jpg", images[0].OriginalFilename)
	assert.Equal(t, 1, images[0].Position)
}
