package glowstash

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RemoteRef is a reference to another remote resource by backend id.
type RemoteRef struct {
	ID string `json:"id"`
}

// RemoteTag is a tag as the catalog service serves it.
type RemoteTag struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

// RemoteBag is a bag as the catalog service serves it.
type RemoteBag struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Icon  string `json:"icon,omitempty"`
	Color string `json:"color,omitempty"`
}

// RemoteProduct is a product as the catalog service serves it, including its
// tag and bag references.
type RemoteProduct struct {
	ID           string      `json:"id"`
	Barcode      string      `json:"barcode,omitempty"`
	Name         string      `json:"name"`
	Brand        string      `json:"brand,omitempty"`
	PurchaseDate string      `json:"purchase_date,omitempty"`
	OpenDate     string      `json:"open_date,omitempty"`
	FinishDate   string      `json:"finish_date,omitempty"`
	Vegan        bool        `json:"vegan"`
	CrueltyFree  bool        `json:"cruelty_free"`
	Favorite     bool        `json:"favorite"`
	ImageURL     string      `json:"image_url,omitempty"`
	Tags         []RemoteRef `json:"tags,omitempty"`
	Bags         []RemoteRef `json:"bags,omitempty"`
}

// ProductPayload is the create-product request body.
type ProductPayload struct {
	Barcode      string `json:"barcode,omitempty"`
	Name         string `json:"name"`
	Brand        string `json:"brand,omitempty"`
	PurchaseDate string `json:"purchase_date,omitempty"`
	OpenDate     string `json:"open_date,omitempty"`
	FinishDate   string `json:"finish_date,omitempty"`
	Vegan        bool   `json:"vegan"`
	CrueltyFree  bool   `json:"cruelty_free"`
	Favorite     bool   `json:"favorite"`
	ImageURL     string `json:"image_url,omitempty"`
}

// createProductResponse is the create-product response body.
type createProductResponse struct {
	ID string `json:"id"`
}

// CatalogClient abstracts HTTP communication with the catalog service.
// Implementations must be safe for concurrent use. All fetches return full
// snapshots, never diffs; the merge engine always does full reconciliation.
type CatalogClient interface {
	// FetchTags returns the user's remote tag snapshot.
	FetchTags(ctx context.Context, userID string) ([]RemoteTag, error)

	// FetchBags returns the user's remote bag snapshot.
	FetchBags(ctx context.Context, userID string) ([]RemoteBag, error)

	// FetchProducts returns the user's remote product snapshot, tag and bag
	// references included.
	FetchProducts(ctx context.Context, userID string) ([]RemoteProduct, error)

	// CreateProduct persists a locally created product remotely and returns
	// the backend id of the created resource.
	CreateProduct(ctx context.Context, userID string, payload ProductPayload) (string, error)

	// Ping validates connectivity to the catalog service.
	Ping(ctx context.Context) error
}

// HTTPCatalogClient implements CatalogClient using net/http.
type HTTPCatalogClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
	log        *zap.Logger
}

// NewHTTPCatalogClient creates a catalog client for the given base URL and
// bearer token.
func NewHTTPCatalogClient(baseURL, token string, log *zap.Logger) *HTTPCatalogClient {
	if log == nil {
		log = zap.NewNop()
	}
	return &HTTPCatalogClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: log,
	}
}

// WithHTTPClient sets a custom http.Client (for testing or custom timeouts).
func (c *HTTPCatalogClient) WithHTTPClient(client *http.Client) *HTTPCatalogClient {
	c.httpClient = client
	return c
}

func (c *HTTPCatalogClient) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("User-Agent", "glowstash-client/1.0")
	req.Header.Set("X-Request-ID", uuid.NewString())
}

func newSyncError(op string, statusCode int, body []byte) *SyncError {
	if statusCode == http.StatusUnauthorized {
		return &SyncError{Operation: op, StatusCode: statusCode, Err: ErrAuthRequired}
	}
	msg := ""
	if len(body) > 0 && statusCode >= 400 {
		if len(body) > 200 {
			msg = string(body[:200]) + "..."
		} else {
			msg = string(body)
		}
	}
	return &SyncError{
		Operation:  op,
		StatusCode: statusCode,
		Err:        fmt.Errorf("HTTP %d: %s", statusCode, msg),
	}
}

func (c *HTTPCatalogClient) userURL(userID, suffix string) string {
	return fmt.Sprintf("%s/users/%s/%s", c.baseURL, url.PathEscape(userID), suffix)
}

// fetchList performs a GET and returns the raw elements of the JSON array
// response. Elements are returned undecoded so callers can skip malformed
// records individually instead of aborting the whole batch.
func (c *HTTPCatalogClient) fetchList(ctx context.Context, op, reqURL string) ([]json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, &SyncError{Operation: op, Err: err}
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &SyncError{Operation: op, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, newSyncError(op, resp.StatusCode, body)
	}

	var raw []json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, &SyncError{Operation: op, Err: err}
	}
	return raw, nil
}

func (c *HTTPCatalogClient) FetchTags(ctx context.Context, userID string) ([]RemoteTag, error) {
	raw, err := c.fetchList(ctx, "fetch_tags", c.userURL(userID, "tags"))
	if err != nil {
		return nil, err
	}

	tags := make([]RemoteTag, 0, len(raw))
	for _, r := range raw {
		var t RemoteTag
		if err := json.Unmarshal(r, &t); err != nil || t.ID == "" {
			c.log.Warn("skipping malformed remote tag", zap.Error(err))
			continue
		}
		tags = append(tags, t)
	}
	return tags, nil
}

func (c *HTTPCatalogClient) FetchBags(ctx context.Context, userID string) ([]RemoteBag, error) {
	raw, err := c.fetchList(ctx, "fetch_bags", c.userURL(userID, "bags"))
	if err != nil {
		return nil, err
	}

	bags := make([]RemoteBag, 0, len(raw))
	for _, r := range raw {
		var b RemoteBag
		if err := json.Unmarshal(r, &b); err != nil || b.ID == "" {
			c.log.Warn("skipping malformed remote bag", zap.Error(err))
			continue
		}
		bags = append(bags, b)
	}
	return bags, nil
}

func (c *HTTPCatalogClient) FetchProducts(ctx context.Context, userID string) ([]RemoteProduct, error) {
	raw, err := c.fetchList(ctx, "fetch_products", c.userURL(userID, "products"))
	if err != nil {
		return nil, err
	}

	products := make([]RemoteProduct, 0, len(raw))
	for _, r := range raw {
		var p RemoteProduct
		if err := json.Unmarshal(r, &p); err != nil || p.ID == "" {
			c.log.Warn("skipping malformed remote product", zap.Error(err))
			continue
		}
		products = append(products, p)
	}
	return products, nil
}

func (c *HTTPCatalogClient) CreateProduct(ctx context.Context, userID string, payload ProductPayload) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", &SyncError{Operation: "create_product", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.userURL(userID, "products"), bytes.NewReader(body))
	if err != nil {
		return "", &SyncError{Operation: "create_product", Err: err}
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &SyncError{Operation: "create_product", Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(resp.Body)
		return "", newSyncError("create_product", resp.StatusCode, respBody)
	}

	// A malformed create response is fatal for this push: without the id the
	// engine cannot assume the remote resource exists.
	var created createProductResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return "", &SyncError{Operation: "create_product", Err: fmt.Errorf("decode response: %w", err)}
	}
	if created.ID == "" {
		return "", &SyncError{Operation: "create_product", Err: fmt.Errorf("response missing resource id")}
	}

	return created.ID, nil
}

func (c *HTTPCatalogClient) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return &SyncError{Operation: "ping", Err: err}
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &SyncError{Operation: "ping", Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return newSyncError("ping", resp.StatusCode, body)
	}
	return nil
}
