package glowstash

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Client is the main entry point for the glowstash inventory.
//
// It owns the local store and, when a catalog service is configured, the
// sync coordinator. All services are explicitly constructed and wired here;
// tests substitute fakes through NewWithCatalog.
type Client struct {
	store       *Store
	coordinator *Coordinator
	gate        AuthGate
	catalog     CatalogClient
	config      Config
	log         *zap.Logger

	mu     sync.Mutex
	closed bool
}

// New creates a glowstash client from configuration. The AuthGate is built
// from Config.UserID and Config.Token.
func New(cfg Config) (*Client, error) {
	cfg = cfg.WithDefaults()
	gate := NewStaticGate(cfg.UserID, cfg.Token)

	var catalog CatalogClient
	if !cfg.IsOffline() {
		catalog = NewHTTPCatalogClient(cfg.CatalogURL, cfg.Token, loggerFor(cfg))
	}

	return NewWithCatalog(cfg, catalog, gate)
}

// NewWithCatalog creates a client with an injected catalog client and auth
// gate. catalog may be nil for offline-only operation.
func NewWithCatalog(cfg Config, catalog CatalogClient, gate AuthGate) (*Client, error) {
	cfg = cfg.WithDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	store, err := NewStore(cfg.LocalPath)
	if err != nil {
		return nil, fmt.Errorf("client: %w", err)
	}

	log := loggerFor(cfg)
	c := &Client{
		store:       store,
		gate:        gate,
		catalog:     catalog,
		config:      cfg,
		log:         log,
		coordinator: NewCoordinator(store, catalog, gate, cfg.PushConcurrency, log),
	}

	return c, nil
}

func loggerFor(cfg Config) *zap.Logger {
	if !cfg.Debug {
		return zap.NewNop()
	}
	log, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return log
}

// Store exposes the local store for read paths the UI layer owns.
func (c *Client) Store() *Store {
	return c.store
}

// Events returns the coordinator's refresh event channel.
func (c *Client) Events() <-chan RefreshEvent {
	return c.coordinator.Events()
}

// AddProduct stores a new local product and, when a catalog is configured and
// a session exists, pushes it immediately.
func (c *Client) AddProduct(ctx context.Context, p Product) (*Product, error) {
	saved, err := c.store.InsertProduct(p)
	if err != nil {
		return nil, err
	}

	if c.catalog != nil {
		if err := c.coordinator.SyncProductImmediately(ctx, saved.ID); err != nil {
			// The product stays a push candidate; background sync retries.
			c.log.Warn("immediate push failed", zap.String("product", saved.ID), zap.Error(err))
		} else {
			return c.store.ProductByID(saved.ID)
		}
	}

	return saved, nil
}

// AddTag stores a new local tag.
func (c *Client) AddTag(ctx context.Context, t Tag) (*Tag, error) {
	return c.store.InsertTag(t)
}

// AddBag stores a new local bag.
func (c *Client) AddBag(ctx context.Context, b Bag) (*Bag, error) {
	return c.store.InsertBag(b)
}

// Products lists the local inventory.
func (c *Client) Products() ([]Product, error) { return c.store.Products() }

// Tags lists the local tags.
func (c *Client) Tags() ([]Tag, error) { return c.store.Tags() }

// Bags lists the local bags.
func (c *Client) Bags() ([]Bag, error) { return c.store.Bags() }

// TagProduct attaches a tag to a product.
func (c *Client) TagProduct(productID, tagID string) error {
	return c.store.AttachTag(productID, tagID)
}

// BagProduct places a product in a bag.
func (c *Client) BagProduct(productID, bagID string) error {
	return c.store.AttachBag(productID, bagID)
}

// Sync runs the initial sync pass for this session.
func (c *Client) Sync(ctx context.Context) error {
	return c.coordinator.RunInitialSync(ctx)
}

// PushUnsynced pushes locally created products that have no remote identity.
func (c *Client) PushUnsynced(ctx context.Context) error {
	return c.coordinator.PushUnsynced(ctx)
}

// ResetSession re-arms the once-per-session sync guard after an identity
// change.
func (c *Client) ResetSession() {
	c.coordinator.ResetSession()
}

// LastSyncStats returns the summary of the most recent sync pass.
func (c *Client) LastSyncStats() SyncStats {
	return c.coordinator.LastSyncStats()
}

// Stats returns store statistics.
func (c *Client) Stats() (*StoreStats, error) {
	return c.store.Stats()
}

// HealthCheck returns the health status of the client.
func (c *Client) HealthCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Healthy: true,
		StoreOK: true,
	}

	if _, err := c.store.Stats(); err != nil {
		status.StoreOK = false
		status.Healthy = false
		status.Error = err.Error()
		return status
	}

	if c.catalog != nil {
		err := c.catalog.Ping(ctx)
		status.CatalogReachable = err == nil
		if err != nil && status.Error == "" {
			status.Error = err.Error()
		}
	}

	return status
}

// Close closes the client.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	return c.store.Close()
}
