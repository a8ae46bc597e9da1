package glowstash

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/glowstash/glowstash/internal/store/migrations"
	"github.com/oklog/ulid/v2"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

const schemaVersion = "2"

// Store manages the local SQLite inventory database.
//
// Every record is dual-keyed: a store-assigned ULID that is stable for the
// lifetime of the device database, and a nullable backend_id stamped once the
// record has round-tripped through the catalog service.
type Store struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool
	path   string
}

// NewStore opens or creates a local inventory store.
func NewStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Enable WAL mode for better concurrent access
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	store := &Store{db: db, path: path}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	return store, nil
}

func (s *Store) migrate() error {
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("store: set goose dialect: %w", err)
	}
	if err := goose.Up(s.db, "."); err != nil {
		return fmt.Errorf("store: run migrations: %w", err)
	}

	_, err := s.db.Exec(`
		INSERT OR IGNORE INTO metadata (key, value) VALUES ('schema_version', ?)
	`, schemaVersion)
	return err
}

// InsertProduct stores a locally created product. The record receives a ULID
// local id and no backend_id; it becomes a push candidate immediately.
func (s *Store) InsertProduct(p Product) (*Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	if err := validateName(p.Name); err != nil {
		return nil, err
	}
	if len(p.Barcode) > MaxBarcodeLength {
		return nil, ErrBarcodeTooLong
	}

	if p.ID == "" {
		p.ID = ulid.Make().String()
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	p.BackendID = nil

	_, err := s.db.Exec(`
		INSERT INTO products (id, backend_id, barcode, name, brand, purchase_date, open_date, finish_date,
		                      vegan, cruelty_free, favorite, image_ref, created_at, updated_at)
		VALUES (?, NULL, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		p.ID, p.Barcode, p.Name, p.Brand,
		fmtTimePtr(p.PurchaseDate), fmtTimePtr(p.OpenDate), fmtTimePtr(p.FinishDate),
		boolInt(p.Vegan), boolInt(p.CrueltyFree), boolInt(p.Favorite), p.ImageRef,
		now.Format(time.RFC3339), now.Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("store: insert product: %w", err)
	}

	return &p, nil
}

// InsertTag stores a locally created tag.
func (s *Store) InsertTag(t Tag) (*Tag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrStoreClosed
	}
	if err := validateName(t.Name); err != nil {
		return nil, err
	}

	if t.ID == "" {
		t.ID = ulid.Make().String()
	}
	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now
	t.BackendID = nil

	_, err := s.db.Exec(`
		INSERT INTO tags (id, backend_id, name, color, created_at, updated_at)
		VALUES (?, NULL, ?, ?, ?, ?)
	`, t.ID, t.Name, t.Color, now.Format(time.RFC3339), now.Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("store: insert tag: %w", err)
	}

	return &t, nil
}

// InsertBag stores a locally created bag.
func (s *Store) InsertBag(b Bag) (*Bag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrStoreClosed
	}
	if err := validateName(b.Name); err != nil {
		return nil, err
	}

	if b.ID == "" {
		b.ID = ulid.Make().String()
	}
	now := time.Now().UTC()
	b.CreatedAt = now
	b.UpdatedAt = now
	b.BackendID = nil

	_, err := s.db.Exec(`
		INSERT INTO bags (id, backend_id, name, icon, color, created_at, updated_at)
		VALUES (?, NULL, ?, ?, ?, ?, ?)
	`, b.ID, b.Name, b.Icon, b.Color, now.Format(time.RFC3339), now.Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("store: insert bag: %w", err)
	}

	return &b, nil
}

// ProductByID retrieves a product by local id, with its edges loaded.
func (s *Store) ProductByID(id string) (*Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}
	return s.productWhere("id = ?", id)
}

// ProductByBackendID retrieves a product by its remote identity.
func (s *Store) ProductByBackendID(backendID string) (*Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}
	return s.productWhere("backend_id = ?", backendID)
}

// ProductByBarcode retrieves the first product with the given barcode, in
// creation order. Duplicate barcodes are legal; callers get the oldest match.
func (s *Store) ProductByBarcode(barcode string) (*Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}
	if barcode == "" {
		return nil, ErrNotFound
	}
	return s.productWhere("barcode = ?", barcode)
}

func (s *Store) productWhere(where string, args ...any) (*Product, error) {
	row := s.db.QueryRow(`
		SELECT id, backend_id, barcode, name, brand, purchase_date, open_date, finish_date,
		       vegan, cruelty_free, favorite, image_ref, created_at, updated_at
		FROM products WHERE `+where+`
		ORDER BY created_at, id LIMIT 1
	`, args...)

	p, err := scanProduct(row)
	if err != nil {
		return nil, err
	}
	if err := s.loadProductEdges(p); err != nil {
		return nil, err
	}
	return p, nil
}

// Products returns the full local product snapshot, edges included, ordered
// by creation time. The personal inventory is small; merge always works from
// a full snapshot.
func (s *Store) Products() ([]Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}
	return s.listProducts("1=1")
}

// UnsyncedProducts returns products that have never been confirmed remotely.
func (s *Store) UnsyncedProducts() ([]Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}
	return s.listProducts("backend_id IS NULL")
}

func (s *Store) listProducts(where string, args ...any) ([]Product, error) {
	rows, err := s.db.Query(`
		SELECT id, backend_id, barcode, name, brand, purchase_date, open_date, finish_date,
		       vegan, cruelty_free, favorite, image_ref, created_at, updated_at
		FROM products WHERE `+where+`
		ORDER BY created_at, id
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("store: query products: %w", err)
	}
	defer rows.Close()

	var results []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range results {
		if err := s.loadProductEdges(&results[i]); err != nil {
			return nil, err
		}
	}
	return results, nil
}

func (s *Store) loadProductEdges(p *Product) error {
	tagRows, err := s.db.Query(`SELECT tag_id FROM product_tags WHERE product_id = ? ORDER BY tag_id`, p.ID)
	if err != nil {
		return fmt.Errorf("store: load product tags: %w", err)
	}
	defer tagRows.Close()
	p.TagIDs = nil
	for tagRows.Next() {
		var id string
		if err := tagRows.Scan(&id); err != nil {
			return err
		}
		p.TagIDs = append(p.TagIDs, id)
	}
	if err := tagRows.Err(); err != nil {
		return err
	}

	bagRows, err := s.db.Query(`SELECT bag_id FROM product_bags WHERE product_id = ? ORDER BY bag_id`, p.ID)
	if err != nil {
		return fmt.Errorf("store: load product bags: %w", err)
	}
	defer bagRows.Close()
	p.BagIDs = nil
	for bagRows.Next() {
		var id string
		if err := bagRows.Scan(&id); err != nil {
			return err
		}
		p.BagIDs = append(p.BagIDs, id)
	}
	return bagRows.Err()
}

// Tags returns the full local tag snapshot.
func (s *Store) Tags() ([]Tag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	rows, err := s.db.Query(`
		SELECT id, backend_id, name, color, created_at, updated_at
		FROM tags ORDER BY created_at, id
	`)
	if err != nil {
		return nil, fmt.Errorf("store: query tags: %w", err)
	}
	defer rows.Close()

	var results []Tag
	for rows.Next() {
		var (
			t         Tag
			backendID sql.NullString
			createdAt string
			updatedAt string
		)
		if err := rows.Scan(&t.ID, &backendID, &t.Name, &t.Color, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		if backendID.Valid {
			t.BackendID = &backendID.String
		}
		t.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		t.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
		results = append(results, t)
	}
	return results, rows.Err()
}

// Bags returns the full local bag snapshot.
func (s *Store) Bags() ([]Bag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	rows, err := s.db.Query(`
		SELECT id, backend_id, name, icon, color, created_at, updated_at
		FROM bags ORDER BY created_at, id
	`)
	if err != nil {
		return nil, fmt.Errorf("store: query bags: %w", err)
	}
	defer rows.Close()

	var results []Bag
	for rows.Next() {
		var (
			b         Bag
			backendID sql.NullString
			createdAt string
			updatedAt string
		)
		if err := rows.Scan(&b.ID, &backendID, &b.Name, &b.Icon, &b.Color, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		if backendID.Valid {
			b.BackendID = &backendID.String
		}
		b.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		b.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
		results = append(results, b)
	}
	return results, rows.Err()
}

// TagByBackendID retrieves a tag by its remote identity.
func (s *Store) TagByBackendID(backendID string) (*Tag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	row := s.db.QueryRow(`
		SELECT id, backend_id, name, color, created_at, updated_at
		FROM tags WHERE backend_id = ?
	`, backendID)

	var (
		t         Tag
		bid       sql.NullString
		createdAt string
		updatedAt string
	)
	if err := row.Scan(&t.ID, &bid, &t.Name, &t.Color, &createdAt, &updatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if bid.Valid {
		t.BackendID = &bid.String
	}
	t.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	t.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &t, nil
}

// BagByBackendID retrieves a bag by its remote identity.
func (s *Store) BagByBackendID(backendID string) (*Bag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	row := s.db.QueryRow(`
		SELECT id, backend_id, name, icon, color, created_at, updated_at
		FROM bags WHERE backend_id = ?
	`, backendID)

	var (
		b         Bag
		bid       sql.NullString
		createdAt string
		updatedAt string
	)
	if err := row.Scan(&b.ID, &bid, &b.Name, &b.Icon, &b.Color, &createdAt, &updatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if bid.Valid {
		b.BackendID = &bid.String
	}
	b.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	b.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &b, nil
}

// AssignBackendID stamps the remote identity onto a local product after the
// first successful create call. The stamp is immutable: re-assigning the same
// id is a no-op, assigning a different one is an error.
func (s *Store) AssignBackendID(localID, backendID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}
	if backendID == "" {
		return fmt.Errorf("store: assign backend id: empty id")
	}

	var existing sql.NullString
	err := s.db.QueryRow(`SELECT backend_id FROM products WHERE id = ?`, localID).Scan(&existing)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if existing.Valid {
		if existing.String == backendID {
			return nil
		}
		return ErrBackendIDSet
	}

	_, err = s.db.Exec(`
		UPDATE products SET backend_id = ?, updated_at = ? WHERE id = ?
	`, backendID, time.Now().UTC().Format(time.RFC3339), localID)
	return err
}

// AttachTag links a product to a tag. Attaching an existing edge is a no-op.
func (s *Store) AttachTag(productID, tagID string) error {
	return s.attachEdge("product_tags", "tag_id", "tags", productID, tagID)
}

// AttachBag links a product to a bag. Attaching an existing edge is a no-op.
func (s *Store) AttachBag(productID, bagID string) error {
	return s.attachEdge("product_bags", "bag_id", "bags", productID, bagID)
}

func (s *Store) attachEdge(table, column, refTable, productID, refID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	var exists int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM products WHERE id = ?`, productID).Scan(&exists); err != nil {
		return err
	}
	if exists == 0 {
		return ErrNotFound
	}
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM `+refTable+` WHERE id = ?`, refID).Scan(&exists); err != nil {
		return err
	}
	if exists == 0 {
		return ErrNotFound
	}

	_, err := s.db.Exec(
		`INSERT OR IGNORE INTO `+table+` (product_id, `+column+`) VALUES (?, ?)`,
		productID, refID,
	)
	return err
}

// DetachTag removes a product-tag edge. Used by the UI-owned flows, never by
// the merge engine.
func (s *Store) DetachTag(productID, tagID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}
	_, err := s.db.Exec(`DELETE FROM product_tags WHERE product_id = ? AND tag_id = ?`, productID, tagID)
	return err
}

// DetachBag removes a product-bag edge.
func (s *Store) DetachBag(productID, bagID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}
	_, err := s.db.Exec(`DELETE FROM product_bags WHERE product_id = ? AND bag_id = ?`, productID, bagID)
	return err
}

// ApplyTagChanges applies a tag merge batch in one transaction.
func (s *Store) ApplyTagChanges(changes []TagChange) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}
	if len(changes) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("store: begin transaction: %w", err)
	}
	defer tx.Rollback() // no-op if committed

	now := time.Now().UTC().Format(time.RFC3339)
	for _, ch := range changes {
		switch ch.Action {
		case ActionCreate:
			_, err = tx.Exec(`
				INSERT INTO tags (id, backend_id, name, color, created_at, updated_at)
				VALUES (?, ?, ?, ?, ?, ?)
			`, ch.Tag.ID, ch.Tag.BackendID, ch.Tag.Name, ch.Tag.Color, now, now)
		case ActionUpdate:
			_, err = tx.Exec(`
				UPDATE tags SET backend_id = ?, name = ?, color = ?, updated_at = ? WHERE id = ?
			`, ch.Tag.BackendID, ch.Tag.Name, ch.Tag.Color, now, ch.Tag.ID)
		case ActionSkip:
			continue
		}
		if err != nil {
			return fmt.Errorf("store: apply tag change: %w", err)
		}
	}

	return tx.Commit()
}

// ApplyBagChanges applies a bag merge batch in one transaction.
func (s *Store) ApplyBagChanges(changes []BagChange) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}
	if len(changes) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("store: begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339)
	for _, ch := range changes {
		switch ch.Action {
		case ActionCreate:
			_, err = tx.Exec(`
				INSERT INTO bags (id, backend_id, name, icon, color, created_at, updated_at)
				VALUES (?, ?, ?, ?, ?, ?, ?)
			`, ch.Bag.ID, ch.Bag.BackendID, ch.Bag.Name, ch.Bag.Icon, ch.Bag.Color, now, now)
		case ActionUpdate:
			_, err = tx.Exec(`
				UPDATE bags SET backend_id = ?, name = ?, icon = ?, color = ?, updated_at = ? WHERE id = ?
			`, ch.Bag.BackendID, ch.Bag.Name, ch.Bag.Icon, ch.Bag.Color, now, ch.Bag.ID)
		case ActionSkip:
			continue
		}
		if err != nil {
			return fmt.Errorf("store: apply bag change: %w", err)
		}
	}

	return tx.Commit()
}

// ApplyProductChanges applies a product merge batch, scalar upserts and edge
// attachments together, in one transaction. A crash mid-merge can never leave
// an edge persisted without its product.
func (s *Store) ApplyProductChanges(changes []ProductChange) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}
	if len(changes) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("store: begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339)
	for _, ch := range changes {
		p := ch.Product
		switch ch.Action {
		case ActionCreate:
			_, err = tx.Exec(`
				INSERT INTO products (id, backend_id, barcode, name, brand, purchase_date, open_date, finish_date,
				                      vegan, cruelty_free, favorite, image_ref, created_at, updated_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			`,
				p.ID, p.BackendID, p.Barcode, p.Name, p.Brand,
				fmtTimePtr(p.PurchaseDate), fmtTimePtr(p.OpenDate), fmtTimePtr(p.FinishDate),
				boolInt(p.Vegan), boolInt(p.CrueltyFree), boolInt(p.Favorite), p.ImageRef,
				now, now,
			)
		case ActionUpdate:
			_, err = tx.Exec(`
				UPDATE products
				SET backend_id = ?, barcode = ?, name = ?, brand = ?,
				    purchase_date = ?, open_date = ?, finish_date = ?,
				    vegan = ?, cruelty_free = ?, favorite = ?, image_ref = ?, updated_at = ?
				WHERE id = ?
			`,
				p.BackendID, p.Barcode, p.Name, p.Brand,
				fmtTimePtr(p.PurchaseDate), fmtTimePtr(p.OpenDate), fmtTimePtr(p.FinishDate),
				boolInt(p.Vegan), boolInt(p.CrueltyFree), boolInt(p.Favorite), p.ImageRef,
				now, p.ID,
			)
		case ActionSkip:
			continue
		}
		if err != nil {
			return fmt.Errorf("store: apply product change: %w", err)
		}

		for _, tagID := range ch.AttachTags {
			if _, err := tx.Exec(
				`INSERT OR IGNORE INTO product_tags (product_id, tag_id) VALUES (?, ?)`,
				p.ID, tagID,
			); err != nil {
				return fmt.Errorf("store: attach tag: %w", err)
			}
		}
		for _, bagID := range ch.AttachBags {
			if _, err := tx.Exec(
				`INSERT OR IGNORE INTO product_bags (product_id, bag_id) VALUES (?, ?)`,
				p.ID, bagID,
			); err != nil {
				return fmt.Errorf("store: attach bag: %w", err)
			}
		}
	}

	return tx.Commit()
}

// GetMetadata returns a metadata value, or empty string when unset.
func (s *Store) GetMetadata(key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return "", ErrStoreClosed
	}

	var value string
	err := s.db.QueryRow(`SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

// SetMetadata stores a metadata value.
func (s *Store) SetMetadata(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	_, err := s.db.Exec(`
		INSERT INTO metadata (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}

// Stats returns store statistics.
func (s *Store) Stats() (*StoreStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	stats := &StoreStats{SchemaVersion: schemaVersion}
	if err := s.db.QueryRow("SELECT COUNT(*) FROM products").Scan(&stats.ProductCount); err != nil {
		return nil, err
	}
	if err := s.db.QueryRow("SELECT COUNT(*) FROM tags").Scan(&stats.TagCount); err != nil {
		return nil, err
	}
	if err := s.db.QueryRow("SELECT COUNT(*) FROM bags").Scan(&stats.BagCount); err != nil {
		return nil, err
	}
	if err := s.db.QueryRow("SELECT COUNT(*) FROM products WHERE backend_id IS NULL").Scan(&stats.PendingSync); err != nil {
		return nil, err
	}

	var lastSyncStr sql.NullString
	_ = s.db.QueryRow("SELECT value FROM metadata WHERE key = 'last_sync'").Scan(&lastSyncStr)
	if lastSyncStr.Valid {
		stats.LastSync, _ = time.Parse(time.RFC3339, lastSyncStr.String)
	}

	return stats, nil
}

// Close closes the store.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.closed = true
	return s.db.Close()
}

// scanner abstracts the Scan method shared by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanProduct(sc scanner) (*Product, error) {
	var (
		p            Product
		backendID    sql.NullString
		purchaseDate sql.NullString
		openDate     sql.NullString
		finishDate   sql.NullString
		vegan        int
		crueltyFree  int
		favorite     int
		createdAt    string
		updatedAt    string
	)

	err := sc.Scan(
		&p.ID,
		&backendID,
		&p.Barcode,
		&p.Name,
		&p.Brand,
		&purchaseDate,
		&openDate,
		&finishDate,
		&vegan,
		&crueltyFree,
		&favorite,
		&p.ImageRef,
		&createdAt,
		&updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if backendID.Valid {
		p.BackendID = &backendID.String
	}
	p.PurchaseDate = parseTimePtr(purchaseDate)
	p.OpenDate = parseTimePtr(openDate)
	p.FinishDate = parseTimePtr(finishDate)
	p.Vegan = vegan != 0
	p.CrueltyFree = crueltyFree != 0
	p.Favorite = favorite != 0
	p.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	p.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)

	return &p, nil
}

func validateName(name string) error {
	if name == "" {
		return ErrEmptyName
	}
	if len(name) > MaxNameLength {
		return ErrNameTooLong
	}
	return nil
}

func fmtTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}

func parseTimePtr(ns sql.NullString) *time.Time {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, ns.String)
	if err != nil {
		return nil
	}
	return &t
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
