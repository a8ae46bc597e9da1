package glowstash

import (
	"context"
	"errors"
	"sync"
	"testing"
)

// mockCatalog implements CatalogClient with overridable function fields.
// Unset fields return empty results.
type mockCatalog struct {
	fetchTags     func(ctx context.Context, userID string) ([]RemoteTag, error)
	fetchBags     func(ctx context.Context, userID string) ([]RemoteBag, error)
	fetchProducts func(ctx context.Context, userID string) ([]RemoteProduct, error)
	createProduct func(ctx context.Context, userID string, payload ProductPayload) (string, error)

	mu       sync.Mutex
	fetches  int
	creates  int
	payloads []ProductPayload
}

func (m *mockCatalog) FetchTags(ctx context.Context, userID string) ([]RemoteTag, error) {
	m.mu.Lock()
	m.fetches++
	m.mu.Unlock()
	if m.fetchTags != nil {
		return m.fetchTags(ctx, userID)
	}
	return nil, nil
}

func (m *mockCatalog) FetchBags(ctx context.Context, userID string) ([]RemoteBag, error) {
	m.mu.Lock()
	m.fetches++
	m.mu.Unlock()
	if m.fetchBags != nil {
		return m.fetchBags(ctx, userID)
	}
	return nil, nil
}

func (m *mockCatalog) FetchProducts(ctx context.Context, userID string) ([]RemoteProduct, error) {
	m.mu.Lock()
	m.fetches++
	m.mu.Unlock()
	if m.fetchProducts != nil {
		return m.fetchProducts(ctx, userID)
	}
	return nil, nil
}

func (m *mockCatalog) CreateProduct(ctx context.Context, userID string, payload ProductPayload) (string, error) {
	m.mu.Lock()
	m.creates++
	m.payloads = append(m.payloads, payload)
	m.mu.Unlock()
	if m.createProduct != nil {
		return m.createProduct(ctx, userID, payload)
	}
	return "created-" + payload.Name, nil
}

func (m *mockCatalog) Ping(ctx context.Context) error { return nil }

func (m *mockCatalog) fetchCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fetches
}

func (m *mockCatalog) createCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.creates
}

func newTestCoordinator(t *testing.T, catalog CatalogClient) (*Coordinator, *Store, *StaticGate) {
	t.Helper()
	store := newTestStore(t)
	gate := NewStaticGate("user-1", "token-1")
	coord := NewCoordinator(store, catalog, gate, 2, nil)
	return coord, store, gate
}

// TestRunInitialSync_PullMergesIntoLocalStore covers the core merge scenario:
// a local unsynced product folds onto its remote counterpart by barcode, the
// pulled tag materializes exactly once, and the relationship edge lands.
func TestRunInitialSync_PullMergesIntoLocalStore(t *testing.T) {
	catalog := &mockCatalog{
		fetchTags: func(ctx context.Context, userID string) ([]RemoteTag, error) {
			return []RemoteTag{{ID: "t1", Name: "Holy Grail"}}, nil
		},
		fetchProducts: func(ctx context.Context, userID string) ([]RemoteProduct, error) {
			return []RemoteProduct{
				{ID: "abc", Barcode: "111", Name: "Lip Mask", Tags: []RemoteRef{{ID: "t1"}}},
			}, nil
		},
	}
	coord, store, _ := newTestCoordinator(t, catalog)

	p1, err := store.InsertProduct(Product{Name: "Lip Mask", Barcode: "111"})
	if err != nil {
		t.Fatalf("InsertProduct failed: %v", err)
	}

	if err := coord.RunInitialSync(context.Background()); err != nil {
		t.Fatalf("RunInitialSync failed: %v", err)
	}

	tags, err := store.Tags()
	if err != nil {
		t.Fatalf("Tags failed: %v", err)
	}
	if len(tags) != 1 {
		t.Fatalf("expected exactly 1 tag, got %d", len(tags))
	}
	if tags[0].Name != "Holy Grail" || tags[0].BackendID == nil || *tags[0].BackendID != "t1" {
		t.Errorf("unexpected tag: %+v", tags[0])
	}

	products, err := store.Products()
	if err != nil {
		t.Fatalf("Products failed: %v", err)
	}
	if len(products) != 1 {
		t.Fatalf("expected exactly 1 product, got %d", len(products))
	}
	got := products[0]
	if got.ID != p1.ID {
		t.Errorf("local id must survive the merge, got %s want %s", got.ID, p1.ID)
	}
	if got.BackendID == nil || *got.BackendID != "abc" {
		t.Errorf("backend id should be stamped, got %v", got.BackendID)
	}
	if len(got.TagIDs) != 1 || got.TagIDs[0] != tags[0].ID {
		t.Errorf("expected tag edge, got %v", got.TagIDs)
	}

	// the fold resolved the product's identity, so nothing needed pushing
	if catalog.createCount() != 0 {
		t.Errorf("expected no create calls, got %d", catalog.createCount())
	}

	if _, err := store.GetMetadata("last_sync"); err != nil {
		t.Errorf("last_sync metadata should be recorded: %v", err)
	}
}

// TestRunInitialSync_OncePerSession verifies the second call is a no-op and
// ResetSession re-arms the guard.
func TestRunInitialSync_OncePerSession(t *testing.T) {
	catalog := &mockCatalog{}
	coord, _, _ := newTestCoordinator(t, catalog)

	if err := coord.RunInitialSync(context.Background()); err != nil {
		t.Fatalf("first sync failed: %v", err)
	}
	first := catalog.fetchCount()
	if first == 0 {
		t.Fatal("first sync should have fetched")
	}

	if err := coord.RunInitialSync(context.Background()); err != nil {
		t.Fatalf("second sync failed: %v", err)
	}
	if catalog.fetchCount() != first {
		t.Errorf("second sync should be a no-op, fetches went %d -> %d", first, catalog.fetchCount())
	}

	coord.ResetSession()
	if err := coord.RunInitialSync(context.Background()); err != nil {
		t.Fatalf("sync after reset failed: %v", err)
	}
	if catalog.fetchCount() <= first {
		t.Error("sync after ResetSession should perform a real pass")
	}
}

// TestRunInitialSync_NoSession verifies the pass is skipped without
// credentials.
func TestRunInitialSync_NoSession(t *testing.T) {
	catalog := &mockCatalog{}
	store := newTestStore(t)
	coord := NewCoordinator(store, catalog, NewStaticGate("", ""), 2, nil)

	if err := coord.RunInitialSync(context.Background()); err != nil {
		t.Fatalf("expected nil without session, got %v", err)
	}
	if catalog.fetchCount() != 0 {
		t.Errorf("no fetches expected without session, got %d", catalog.fetchCount())
	}
}

// TestRunInitialSync_Offline verifies ErrOffline without a catalog client.
func TestRunInitialSync_Offline(t *testing.T) {
	store := newTestStore(t)
	coord := NewCoordinator(store, nil, NewStaticGate("u", "t"), 2, nil)

	if err := coord.RunInitialSync(context.Background()); !errors.Is(err, ErrOffline) {
		t.Errorf("expected ErrOffline, got %v", err)
	}
}

// TestRunInitialSync_AuthRejectionAborts verifies a 401 invalidates the
// session and aborts the pass.
func TestRunInitialSync_AuthRejectionAborts(t *testing.T) {
	authErr := &SyncError{Operation: "fetch tags", StatusCode: 401, Err: ErrAuthRequired}
	catalog := &mockCatalog{
		fetchTags: func(ctx context.Context, userID string) ([]RemoteTag, error) {
			return nil, authErr
		},
	}
	coord, _, gate := newTestCoordinator(t, catalog)

	err := coord.RunInitialSync(context.Background())
	if !errors.Is(err, ErrAuthRequired) {
		t.Fatalf("expected ErrAuthRequired, got %v", err)
	}
	if _, ok := gate.Session(); ok {
		t.Error("gate should be invalidated after auth rejection")
	}
	// only the failing fetch ran
	if catalog.fetchCount() != 1 {
		t.Errorf("pass should abort after auth rejection, got %d fetches", catalog.fetchCount())
	}
}

// TestRunInitialSync_TransportFailureContinues verifies a failed phase is
// skipped while the rest of the pass still runs.
func TestRunInitialSync_TransportFailureContinues(t *testing.T) {
	catalog := &mockCatalog{
		fetchTags: func(ctx context.Context, userID string) ([]RemoteTag, error) {
			return nil, &SyncError{Operation: "fetch tags", StatusCode: 500, Err: errors.New("server error")}
		},
		fetchBags: func(ctx context.Context, userID string) ([]RemoteBag, error) {
			return []RemoteBag{{ID: "b1", Name: "Travel"}}, nil
		},
	}
	coord, store, _ := newTestCoordinator(t, catalog)

	if err := coord.RunInitialSync(context.Background()); err != nil {
		t.Fatalf("transport failure should not abort the pass: %v", err)
	}

	bags, err := store.Bags()
	if err != nil {
		t.Fatalf("Bags failed: %v", err)
	}
	if len(bags) != 1 || bags[0].Name != "Travel" {
		t.Errorf("bag phase should have run despite tag failure: %+v", bags)
	}
}

// TestRunInitialSync_StoreFailureAborts verifies a local write failure is
// fatal to the pass.
func TestRunInitialSync_StoreFailureAborts(t *testing.T) {
	catalog := &mockCatalog{}
	coord, store, _ := newTestCoordinator(t, catalog)

	store.Close()

	err := coord.RunInitialSync(context.Background())
	if !errors.Is(err, ErrStoreClosed) {
		t.Errorf("expected ErrStoreClosed to abort the pass, got %v", err)
	}
}

// TestRunInitialSync_PhaseReturnsToIdle verifies the state machine lands back
// on Idle whether the pass succeeds or fails.
func TestRunInitialSync_PhaseReturnsToIdle(t *testing.T) {
	catalog := &mockCatalog{
		fetchTags: func(ctx context.Context, userID string) ([]RemoteTag, error) {
			return nil, &SyncError{Operation: "fetch tags", StatusCode: 401, Err: ErrAuthRequired}
		},
	}
	coord, _, _ := newTestCoordinator(t, catalog)

	_ = coord.RunInitialSync(context.Background())
	if got := coord.Phase(); got != PhaseIdle {
		t.Errorf("expected PhaseIdle after pass, got %s", got)
	}
}

// TestPushUnsynced_AssignsBackendIDs verifies a push round: every unsynced
// product gets created remotely and stamped locally.
func TestPushUnsynced_AssignsBackendIDs(t *testing.T) {
	catalog := &mockCatalog{}
	coord, store, _ := newTestCoordinator(t, catalog)

	store.InsertProduct(Product{Name: "Toner"})
	store.InsertProduct(Product{Name: "Serum"})

	if err := coord.PushUnsynced(context.Background()); err != nil {
		t.Fatalf("PushUnsynced failed: %v", err)
	}

	if catalog.createCount() != 2 {
		t.Errorf("expected 2 creates, got %d", catalog.createCount())
	}
	unsynced, err := store.UnsyncedProducts()
	if err != nil {
		t.Fatalf("UnsyncedProducts failed: %v", err)
	}
	if len(unsynced) != 0 {
		t.Errorf("expected no unsynced products left, got %d", len(unsynced))
	}

	// replay: nothing to push, no duplicate creates
	if err := coord.PushUnsynced(context.Background()); err != nil {
		t.Fatalf("replay failed: %v", err)
	}
	if catalog.createCount() != 2 {
		t.Errorf("replay pushed again: %d creates", catalog.createCount())
	}
}

// TestPushUnsynced_FailuresAreIndependent verifies that one rejected product
// does not prevent its siblings from landing.
func TestPushUnsynced_FailuresAreIndependent(t *testing.T) {
	catalog := &mockCatalog{
		createProduct: func(ctx context.Context, userID string, payload ProductPayload) (string, error) {
			if payload.Name == "Bad" {
				return "", &SyncError{Operation: "create product", StatusCode: 422, Err: errors.New("rejected")}
			}
			return "remote-" + payload.Name, nil
		},
	}
	coord, store, _ := newTestCoordinator(t, catalog)

	store.InsertProduct(Product{Name: "Bad"})
	good, _ := store.InsertProduct(Product{Name: "Good"})

	err := coord.PushUnsynced(context.Background())
	if err == nil {
		t.Fatal("expected an error from the failed push")
	}

	got, err := store.ProductByID(good.ID)
	if err != nil {
		t.Fatalf("ProductByID failed: %v", err)
	}
	if got.BackendID == nil || *got.BackendID != "remote-Good" {
		t.Errorf("sibling push should succeed, got %v", got.BackendID)
	}

	// the failed product remains a push candidate
	unsynced, _ := store.UnsyncedProducts()
	if len(unsynced) != 1 || unsynced[0].Name != "Bad" {
		t.Errorf("failed product should stay unsynced: %+v", unsynced)
	}
}

// TestSyncProductImmediately verifies the immediate post-save push and that a
// synced product is never re-submitted.
func TestSyncProductImmediately(t *testing.T) {
	catalog := &mockCatalog{
		createProduct: func(ctx context.Context, userID string, payload ProductPayload) (string, error) {
			return "abc", nil
		},
	}
	coord, store, _ := newTestCoordinator(t, catalog)

	p, _ := store.InsertProduct(Product{Name: "Balm"})

	if err := coord.SyncProductImmediately(context.Background(), p.ID); err != nil {
		t.Fatalf("SyncProductImmediately failed: %v", err)
	}
	got, _ := store.ProductByID(p.ID)
	if got.BackendID == nil || *got.BackendID != "abc" {
		t.Errorf("backend id should be stamped, got %v", got.BackendID)
	}

	// already synced: no second create
	if err := coord.SyncProductImmediately(context.Background(), p.ID); err != nil {
		t.Fatalf("second call failed: %v", err)
	}
	if catalog.createCount() != 1 {
		t.Errorf("synced product must not be re-submitted, got %d creates", catalog.createCount())
	}
}

// TestLastSyncStats verifies the pass summary counters.
func TestLastSyncStats(t *testing.T) {
	catalog := &mockCatalog{
		fetchTags: func(ctx context.Context, userID string) ([]RemoteTag, error) {
			return []RemoteTag{{ID: "t1", Name: "New In"}}, nil
		},
		fetchBags: func(ctx context.Context, userID string) ([]RemoteBag, error) {
			return nil, &SyncError{Operation: "fetch_bags", StatusCode: 500, Err: errors.New("down")}
		},
	}
	coord, store, _ := newTestCoordinator(t, catalog)
	store.InsertProduct(Product{Name: "Toner"})

	if err := coord.RunInitialSync(context.Background()); err != nil {
		t.Fatalf("RunInitialSync failed: %v", err)
	}

	stats := coord.LastSyncStats()
	if stats.TagsPulled != 1 {
		t.Errorf("expected 1 tag pulled, got %d", stats.TagsPulled)
	}
	if stats.Errors != 1 {
		t.Errorf("expected 1 phase error, got %d", stats.Errors)
	}
	if stats.Pushed != 1 {
		t.Errorf("expected 1 pushed, got %d", stats.Pushed)
	}
	if stats.Duration <= 0 {
		t.Error("expected a recorded duration")
	}
}

// TestPushGuard verifies the per-product in-flight marker.
func TestPushGuard(t *testing.T) {
	coord, _, _ := newTestCoordinator(t, &mockCatalog{})

	if !coord.beginPush("p1") {
		t.Fatal("first beginPush should succeed")
	}
	if coord.beginPush("p1") {
		t.Error("second beginPush for the same product should fail")
	}
	if !coord.beginPush("p2") {
		t.Error("a different product should not be blocked")
	}
	coord.endPush("p1")
	if !coord.beginPush("p1") {
		t.Error("beginPush should succeed again after endPush")
	}
}

// TestEvents verifies a refresh event is published per completed phase.
func TestEvents(t *testing.T) {
	catalog := &mockCatalog{
		fetchTags: func(ctx context.Context, userID string) ([]RemoteTag, error) {
			return []RemoteTag{{ID: "t1", Name: "New In"}}, nil
		},
	}
	coord, store, _ := newTestCoordinator(t, catalog)

	store.InsertProduct(Product{Name: "Toner"})

	if err := coord.RunInitialSync(context.Background()); err != nil {
		t.Fatalf("RunInitialSync failed: %v", err)
	}

	var phases []SyncPhase
	for {
		select {
		case ev := <-coord.Events():
			phases = append(phases, ev.Phase)
			if ev.Phase == PhasePullingTags && ev.Created != 1 {
				t.Errorf("expected 1 created in tag event, got %d", ev.Created)
			}
			continue
		default:
		}
		break
	}
	if len(phases) != 4 {
		t.Errorf("expected 4 events (one per phase), got %v", phases)
	}
}
