package glowstash

import "time"

// Product is a single cosmetic product in the local inventory.
//
// ID is the store-assigned local identifier, stable for the lifetime of the
// device database. BackendID is assigned once the record has been persisted
// on the catalog service; it is nil for records that exist only on-device and
// immutable once set.
type Product struct {
	ID           string     `json:"id"`
	BackendID    *string    `json:"backend_id,omitempty"`
	Barcode      string     `json:"barcode,omitempty"`
	Name         string     `json:"name"`
	Brand        string     `json:"brand,omitempty"`
	PurchaseDate *time.Time `json:"purchase_date,omitempty"`
	OpenDate     *time.Time `json:"open_date,omitempty"`
	FinishDate   *time.Time `json:"finish_date,omitempty"`
	Vegan        bool       `json:"vegan"`
	CrueltyFree  bool       `json:"cruelty_free"`
	Favorite     bool       `json:"favorite"`
	ImageRef     string     `json:"image_ref,omitempty"`
	TagIDs       []string   `json:"tag_ids,omitempty"`
	BagIDs       []string   `json:"bag_ids,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Synced reports whether the product has a confirmed remote identity.
func (p *Product) Synced() bool {
	return p.BackendID != nil && *p.BackendID != ""
}

// Tag is a user-defined label attached to products.
type Tag struct {
	ID        string    `json:"id"`
	BackendID *string   `json:"backend_id,omitempty"`
	Name      string    `json:"name"`
	Color     string    `json:"color,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Bag is a named collection of products (travel bag, shelf, gym kit).
type Bag struct {
	ID        string    `json:"id"`
	BackendID *string   `json:"backend_id,omitempty"`
	Name      string    `json:"name"`
	Icon      string    `json:"icon,omitempty"`
	Color     string    `json:"color,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SyncPhase identifies a step of the sync pass state machine.
type SyncPhase string

const (
	PhaseIdle            SyncPhase = "idle"
	PhasePullingTags     SyncPhase = "pulling_tags"
	PhasePullingBags     SyncPhase = "pulling_bags"
	PhasePullingProducts SyncPhase = "pulling_products"
	PhasePushingUnsynced SyncPhase = "pushing_unsynced"
)

// RefreshEvent signals that a sync phase completed and local data changed.
// The UI layer subscribes to redraw incrementally instead of waiting for the
// whole pass.
type RefreshEvent struct {
	Phase   SyncPhase `json:"phase"`
	Created int       `json:"created"`
	Updated int       `json:"updated"`
	At      time.Time `json:"at"`
}

// SyncStats summarizes one sync pass.
type SyncStats struct {
	TagsPulled     int           `json:"tags_pulled"`
	BagsPulled     int           `json:"bags_pulled"`
	ProductsPulled int           `json:"products_pulled"`
	Pushed         int           `json:"pushed"`
	Errors         int           `json:"errors"`
	Duration       time.Duration `json:"duration"`
}

// StoreStats contains statistics about the local store.
type StoreStats struct {
	ProductCount  int       `json:"product_count"`
	TagCount      int       `json:"tag_count"`
	BagCount      int       `json:"bag_count"`
	PendingSync   int       `json:"pending_sync"`
	LastSync      time.Time `json:"last_sync"`
	SchemaVersion string    `json:"schema_version"`
}

// HealthStatus represents the health of the client.
type HealthStatus struct {
	Healthy          bool   `json:"healthy"`
	StoreOK          bool   `json:"store_ok"`
	CatalogReachable bool   `json:"catalog_reachable"`
	Error            string `json:"error,omitempty"`
}

// Field length limits enforced on local creation.
const (
	MaxNameLength    = 200
	MaxBarcodeLength = 64
)
