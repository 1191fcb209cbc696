package onoffice

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/immocanvas/immocanvas/internal/usecase"
)

const (
	// DefaultBaseURL is the stable onOffice API endpoint.
	DefaultBaseURL = "https://api.onoffice.de/api/stable/api.php"

	actionRead  = "urn:onoffice-de-ns:smart:2.5:smartml:action:read"
	hmacVersion = 2

	resourceEstate  = "estate"
	resourceFile    = "file"
	resourceAddress = "address"

	defaultListLimit = 20
)

// defaultEstateFields is the baseline field set most onOffice systems
// carry.
var defaultEstateFields = []string{
	"Id",
	"objekttitel",
	"vermarktungsart",
	"wohnflaeche",
	"anzahl_zimmer",
	"ort",
	"kaufpreis",
	"kaltmiete",
	"warmmiete",
	"objektbeschreibung",
	"status",
	"verkauft",
	"reserviert",
}

// Client calls the onOffice remote API with HMAC v2 signed requests.
// Every call is a single attempt; retrying is the caller's decision.
type Client struct {
	baseURL string
	token   string
	secret  string
	hc      *http.Client
	limiter *rate.Limiter
	logger  *slog.Logger
	now     func() time.Time
}

func New(baseURL, token, secret string, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		token:   token,
		secret:  secret,
		hc:      &http.Client{Timeout: 30 * time.Second},
		// onOffice throttles aggressive clients; stay under their limit
		limiter: rate.NewLimiter(rate.Limit(5), 5),
		logger:  logger,
		now:     time.Now,
	}
}

// Signature computes the HMAC v2 request signature: HMAC-SHA256 over
// the concatenation of timestamp, token, resource type and action id,
// base64 encoded.
func Signature(timestamp int64, token, resourceType, actionID, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d%s%s%s", timestamp, token, resourceType, actionID)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

type action struct {
	ActionID     string         `json:"actionid"`
	ResourceID   string         `json:"resourceid"`
	ResourceType string         `json:"resourcetype"`
	Identifier   string         `json:"identifier"`
	Timestamp    int64          `json:"timestamp"`
	HMACVersion  int            `json:"hmac_version"`
	Parameters   map[string]any `json:"parameters"`
	HMAC         string         `json:"hmac"`
}

type requestBody struct {
	Token   string `json:"token"`
	Request struct {
		Actions []action `json:"actions"`
	} `json:"request"`
}

type statusEnvelope struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type apiResponse struct {
	Status   *statusEnvelope `json:"status"`
	Response *struct {
		Results []struct {
			Status *statusEnvelope `json:"status"`
		} `json:"results"`
	} `json:"response"`
}

// call performs one signed read request and returns the raw response
// body after transport and envelope status checks.
func (c *Client) call(ctx context.Context, resourceType string, params map[string]any) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	ts := c.now().Unix()
	if params == nil {
		params = map[string]any{}
	}

	body := requestBody{Token: c.token}
	body.Request.Actions = []action{{
		ActionID:     actionRead,
		ResourceType: resourceType,
		Timestamp:    ts,
		HMACVersion:  hmacVersion,
		Parameters:   params,
		HMAC:         Signature(ts, c.token, resourceType, actionRead, c.secret),
	}}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	c.logger.Debug("onoffice request",
		slog.String("resource_type", resourceType),
		slog.Int64("timestamp", ts),
	)

	res, err := c.hc.Do(req)
	if err != nil {
		return nil, &ConnectionError{Err: err}
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, &ConnectionError{Err: err}
	}

	if res.StatusCode != http.StatusOK {
		return nil, &ProviderError{Code: res.StatusCode, Message: http.StatusText(res.StatusCode)}
	}

	if err := checkEnvelopeStatus(raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// checkEnvelopeStatus surfaces the provider's own status envelope and
// the nested per-action one. Bodies that are not an envelope at all
// (e.g. a bare record array) pass through.
func checkEnvelopeStatus(raw []byte) error {
	var env apiResponse
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil
	}
	if env.Status != nil && env.Status.Code != 0 && env.Status.Code != http.StatusOK {
		return &ProviderError{Code: env.Status.Code, Message: env.Status.Message}
	}
	if env.Response != nil && len(env.Response.Results) > 0 {
		if st := env.Response.Results[0].Status; st != nil && st.Code != 0 && st.Code != http.StatusOK {
			return &ProviderError{Code: st.Code, Message: st.Message}
		}
	}
	return nil
}

// TestConnection performs the most basic read possible and succeeds
// iff the provider answers without an error status.
func (c *Client) TestConnection(ctx context.Context) error {
	_, err := c.call(ctx, resourceEstate, nil)
	return err
}

// ListEstates fetches property listings. Without overrides it requests
// the default field set, limits to 20 records and filters to active
// listings only.
func (c *Client) ListEstates(ctx context.Context, opt usecase.ListEstatesOption) ([]usecase.Estate, error) {
	fields := opt.Fields
	if len(fields) == 0 {
		fields = defaultEstateFields
	}
	limit := opt.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	filter := opt.Filter
	if filter == nil {
		filter = map[string]any{
			"status": []map[string]any{{"op": "=", "val": 1}},
		}
	}

	raw, err := c.call(ctx, resourceEstate, map[string]any{
		"data":      fields,
		"listlimit": limit,
		"filter":    filter,
	})
	if err != nil {
		return nil, err
	}
	return decodeEstates(raw), nil
}

// ListEstateImages fetches the file records attached to one estate.
func (c *Client) ListEstateImages(ctx context.Context, estateID string) ([]usecase.EstateImage, error) {
	raw, err := c.call(ctx, resourceFile, map[string]any{
		"parentids": []string{estateID},
		"data":      []string{"name", "url", "title", "type", "position"},
	})
	if err != nil {
		return nil, err
	}
	return decodeEstateImages(raw, estateID), nil
}

// ListAddresses fetches contact records.
func (c *Client) ListAddresses(ctx context.Context, opt usecase.ListAddressesOption) ([]usecase.Address, error) {
	fields := opt.Fields
	if len(fields) == 0 {
		fields = []string{"Name", "Vorname", "Email", "Telefon1", "Firma"}
	}
	limit := opt.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}

	raw, err := c.call(ctx, resourceAddress, map[string]any{
		"data":      fields,
		"listlimit": limit,
	})
	if err != nil {
		return nil, err
	}
	return decodeAddresses(raw), nil
}
