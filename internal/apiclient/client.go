// Package apiclient is the SDK for the remote camp registration API.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/youthcamp/portal/internal/models"
)

// DefaultTimeout is the fixed client-side deadline for every request.
const DefaultTimeout = 15 * time.Second

// Client talks to the camp API over JSON/HTTPS.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Option configures the client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout sets the client timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithAPIKey sets the bearer token sent with every request.
func WithAPIKey(key string) Option {
	return func(c *Client) {
		c.apiKey = key
	}
}

// New creates a camp API client.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// WebsiteSettings fetches the camp configuration.
func (c *Client) WebsiteSettings(ctx context.Context) (*models.Settings, error) {
	var out models.Settings
	if err := c.get(ctx, "/settings/website", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Search queries member records. An empty result page is a normal response,
// not an error.
func (c *Client) Search(ctx context.Context, p models.SearchParams) (*models.SearchResult, error) {
	q := url.Values{}
	if p.Search != "" {
		q.Set("search", p.Search)
	}
	if p.Gender != "" {
		q.Set("gender", p.Gender)
	}
	if p.ClassLevel != "" {
		q.Set("class_level", p.ClassLevel)
	}
	if p.AreaCouncil != "" {
		q.Set("area_council", p.AreaCouncil)
	}
	if p.PinCategory != "" {
		q.Set("pin_category", p.PinCategory)
	}
	if p.Page > 0 {
		q.Set("page", strconv.Itoa(p.Page))
	}
	if p.Limit > 0 {
		q.Set("limit", strconv.Itoa(p.Limit))
	}

	var out models.SearchResult
	if err := c.get(ctx, "/search", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// NewRegistration submits a first-time registration.
func (c *Client) NewRegistration(ctx context.Context, req *models.RegistrationRequest) (*models.Registration, error) {
	var out models.Registration
	if err := c.post(ctx, "/registration/new", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// FetchRegistration looks up an existing registration by reference or phone.
func (c *Client) FetchRegistration(ctx context.Context, req *models.RegistrationLookup) (*models.Registration, error) {
	var out models.Registration
	if err := c.post(ctx, "/registration/fetch", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ExistingRegistration updates a record for a returning member.
func (c *Client) ExistingRegistration(ctx context.Context, req *models.RegistrationRequest) (*models.Registration, error) {
	var out models.Registration
	if err := c.post(ctx, "/registration/existing", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ReprintSlip requests a fresh copy of a confirmation slip.
func (c *Client) ReprintSlip(ctx context.Context, req *models.SlipRequest) (*models.Slip, error) {
	var out models.Slip
	if err := c.post(ctx, "/slip/reprint", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PaymentCallback verifies a payment reference against a gateway.
func (c *Client) PaymentCallback(ctx context.Context, gateway, reference string) (*models.CallbackResult, error) {
	q := url.Values{}
	q.Set("reference", reference)

	var out models.CallbackResult
	path := fmt.Sprintf("/payment/%s/callback", url.PathEscape(gateway))
	if err := c.get(ctx, path, q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DonationCallback verifies a donation reference.
func (c *Client) DonationCallback(ctx context.Context, reference string) (*models.CallbackResult, error) {
	q := url.Values{}
	q.Set("reference", reference)

	var out models.CallbackResult
	if err := c.get(ctx, "/donations/callback", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Ailments fetches the basic-needs ailment list.
func (c *Client) Ailments(ctx context.Context) ([]models.Ailment, error) {
	var out []models.Ailment
	if err := c.get(ctx, "/basic-needs/ailments", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Councils fetches the area council list.
func (c *Client) Councils(ctx context.Context) ([]models.Council, error) {
	var out []models.Council
	if err := c.get(ctx, "/basic-needs/councils", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values, out interface{}) error {
	if len(q) > 0 {
		path = path + "?" + q.Encode()
	}
	return c.doRequest(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) post(ctx context.Context, path string, in, out interface{}) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}
	return c.doRequest(ctx, http.MethodPost, path, bytes.NewReader(body), out)
}

// doRequest performs an HTTP request and decodes the JSON response into out.
func (c *Client) doRequest(ctx context.Context, method, path string, body io.Reader, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return networkError(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return networkError(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return classify(resp.StatusCode, serverMessage(respBody))
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}

// serverMessage extracts an error message from a JSON error body, if any.
func serverMessage(body []byte) string {
	var envelope struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return ""
	}
	if envelope.Message != "" {
		return envelope.Message
	}
	return envelope.Error
}
