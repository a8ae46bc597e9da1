package glowstash

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Coordinator drives sync passes against the catalog service.
//
// A pass walks an explicit state machine:
//
//	Idle → PullingTags → PullingBags → PullingProducts → PushingUnsynced → Idle
//
// The phases are strictly sequential because product merge resolves tag/bag
// references through backend ids that must already exist locally; a product
// pulled before its tags would have to drop edges silently.
type Coordinator struct {
	store     *Store
	client    CatalogClient
	gate      AuthGate
	log       *zap.Logger
	pushLimit int

	mu         sync.Mutex
	phase      SyncPhase
	ranInitial bool
	inFlight   map[string]struct{} // product local ids with an outstanding create
	lastStats  SyncStats

	events chan RefreshEvent
}

// NewCoordinator creates a sync coordinator. client may be nil for
// offline-only operation; every sync entry point then returns ErrOffline.
func NewCoordinator(store *Store, client CatalogClient, gate AuthGate, pushLimit int, log *zap.Logger) *Coordinator {
	if log == nil {
		log = zap.NewNop()
	}
	if pushLimit <= 0 {
		pushLimit = 4
	}
	return &Coordinator{
		store:     store,
		client:    client,
		gate:      gate,
		log:       log,
		pushLimit: pushLimit,
		phase:     PhaseIdle,
		inFlight:  make(map[string]struct{}),
		events:    make(chan RefreshEvent, 16),
	}
}

// Events returns the refresh event channel. One event is published per
// completed pull phase plus one for the push phase; publishes never block
// (events are dropped if nobody is listening).
func (c *Coordinator) Events() <-chan RefreshEvent {
	return c.events
}

// Phase returns the current sync phase.
func (c *Coordinator) Phase() SyncPhase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// ResetSession re-arms the once-per-session guard. Call when the AuthGate
// reports a new identity so the next RunInitialSync performs a real pass.
func (c *Coordinator) ResetSession() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ranInitial = false
}

// RunInitialSync performs one full sync pass: pull tags, pull bags, pull
// products, then push unsynced products.
//
// Idempotent per session: the second and later calls are no-ops, as are calls
// while a pass is in flight or without an authenticated session. A phase that
// fails on transport is logged and skipped; the remaining phases still run
// best-effort. Auth rejection or a local-store write failure aborts the pass.
// There is no mid-pass cancellation; the guard is released only when the pass
// has run to completion.
func (c *Coordinator) RunInitialSync(ctx context.Context) error {
	if c.client == nil {
		return ErrOffline
	}
	sess, ok := c.gate.Session()
	if !ok {
		c.log.Debug("initial sync skipped: no authenticated session")
		return nil
	}

	c.mu.Lock()
	if c.ranInitial || c.phase != PhaseIdle {
		c.mu.Unlock()
		return nil
	}
	c.ranInitial = true
	c.phase = PhasePullingTags
	c.mu.Unlock()

	defer c.setPhase(PhaseIdle)

	start := time.Now()
	c.log.Info("initial sync started", zap.String("user", sess.UserID))

	var stats SyncStats
	defer func() {
		stats.Duration = time.Since(start)
		c.mu.Lock()
		c.lastStats = stats
		c.mu.Unlock()
	}()

	n, err := c.pullTags(ctx, sess.UserID)
	stats.TagsPulled = n
	if err != nil {
		if fatal := c.classify("pull tags", err); fatal != nil {
			return fatal
		}
		stats.Errors++
	}

	c.setPhase(PhasePullingBags)
	n, err = c.pullBags(ctx, sess.UserID)
	stats.BagsPulled = n
	if err != nil {
		if fatal := c.classify("pull bags", err); fatal != nil {
			return fatal
		}
		stats.Errors++
	}

	c.setPhase(PhasePullingProducts)
	n, err = c.pullProducts(ctx, sess.UserID)
	stats.ProductsPulled = n
	if err != nil {
		if fatal := c.classify("pull products", err); fatal != nil {
			return fatal
		}
		stats.Errors++
	}

	c.setPhase(PhasePushingUnsynced)
	n, err = c.pushUnsynced(ctx, sess)
	stats.Pushed = n
	if err != nil {
		if fatal := c.classify("push unsynced", err); fatal != nil {
			return fatal
		}
		stats.Errors++
	}

	if err := c.store.SetMetadata("last_sync", time.Now().UTC().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("record last sync: %w", err)
	}

	c.log.Info("initial sync finished",
		zap.Int("phase_errors", stats.Errors),
		zap.Duration("duration", time.Since(start)))
	return nil
}

// LastSyncStats returns the summary of the most recent sync pass.
func (c *Coordinator) LastSyncStats() SyncStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastStats
}

// PushUnsynced pushes every product without a backend id. Creates run
// concurrently up to the configured limit; failures are independent, so one
// rejected product does not abort its siblings. A failed push leaves the
// backend id absent, which makes the product a push candidate again later.
func (c *Coordinator) PushUnsynced(ctx context.Context) error {
	if c.client == nil {
		return ErrOffline
	}
	sess, ok := c.gate.Session()
	if !ok {
		return nil
	}
	_, err := c.pushUnsynced(ctx, sess)
	return err
}

// SyncProductImmediately pushes one freshly saved product without waiting for
// a full pass. Products that already carry a backend id are never
// re-submitted.
func (c *Coordinator) SyncProductImmediately(ctx context.Context, localID string) error {
	if c.client == nil {
		return ErrOffline
	}
	sess, ok := c.gate.Session()
	if !ok {
		return nil
	}

	p, err := c.store.ProductByID(localID)
	if err != nil {
		return err
	}
	if p.Synced() {
		return nil
	}
	return c.pushOne(ctx, sess, *p)
}

func (c *Coordinator) setPhase(p SyncPhase) {
	c.mu.Lock()
	c.phase = p
	c.mu.Unlock()
}

// classify maps a phase error to the pass-level policy: auth rejection
// invalidates the session and aborts, store write failures abort (later
// phases depend on durable data), transport errors are logged and the pass
// continues best-effort.
func (c *Coordinator) classify(phase string, err error) error {
	if errors.Is(err, ErrAuthRequired) {
		c.log.Warn("catalog rejected credential, invalidating session", zap.String("phase", phase))
		c.gate.Invalidate()
		return fmt.Errorf("%s: %w", phase, err)
	}

	var syncErr *SyncError
	if errors.As(err, &syncErr) {
		c.log.Warn("phase failed, continuing", zap.String("phase", phase), zap.Error(err))
		return nil
	}

	return fmt.Errorf("%s: %w", phase, err)
}

func (c *Coordinator) pullTags(ctx context.Context, userID string) (int, error) {
	remote, err := c.client.FetchTags(ctx, userID)
	if err != nil {
		return 0, err
	}
	local, err := c.store.Tags()
	if err != nil {
		return 0, err
	}

	changes := PlanTags(remote, local)
	if err := c.store.ApplyTagChanges(changes); err != nil {
		return 0, err
	}

	var created, updated int
	for _, ch := range changes {
		switch ch.Action {
		case ActionCreate:
			created++
		case ActionUpdate:
			updated++
		}
	}
	c.publish(RefreshEvent{Phase: PhasePullingTags, Created: created, Updated: updated, At: time.Now().UTC()})
	c.log.Debug("tags pulled", zap.Int("remote", len(remote)), zap.Int("created", created), zap.Int("updated", updated))
	return created + updated, nil
}

func (c *Coordinator) pullBags(ctx context.Context, userID string) (int, error) {
	remote, err := c.client.FetchBags(ctx, userID)
	if err != nil {
		return 0, err
	}
	local, err := c.store.Bags()
	if err != nil {
		return 0, err
	}

	changes := PlanBags(remote, local)
	if err := c.store.ApplyBagChanges(changes); err != nil {
		return 0, err
	}

	var created, updated int
	for _, ch := range changes {
		switch ch.Action {
		case ActionCreate:
			created++
		case ActionUpdate:
			updated++
		}
	}
	c.publish(RefreshEvent{Phase: PhasePullingBags, Created: created, Updated: updated, At: time.Now().UTC()})
	c.log.Debug("bags pulled", zap.Int("remote", len(remote)), zap.Int("created", created), zap.Int("updated", updated))
	return created + updated, nil
}

func (c *Coordinator) pullProducts(ctx context.Context, userID string) (int, error) {
	remote, err := c.client.FetchProducts(ctx, userID)
	if err != nil {
		return 0, err
	}
	local, err := c.store.Products()
	if err != nil {
		return 0, err
	}
	tags, err := c.store.Tags()
	if err != nil {
		return 0, err
	}
	bags, err := c.store.Bags()
	if err != nil {
		return 0, err
	}

	plan := PlanProducts(remote, local, TagsByBackendID(tags), BagsByBackendID(bags))
	if err := c.store.ApplyProductChanges(plan.Changes); err != nil {
		return 0, err
	}

	if plan.UnresolvedRefs > 0 {
		c.log.Warn("product merge left references unresolved",
			zap.Int("unresolved", plan.UnresolvedRefs))
	}

	var created, updated int
	for _, ch := range plan.Changes {
		switch ch.Action {
		case ActionCreate:
			created++
		case ActionUpdate:
			updated++
		}
	}
	c.publish(RefreshEvent{Phase: PhasePullingProducts, Created: created, Updated: updated, At: time.Now().UTC()})
	c.log.Debug("products pulled", zap.Int("remote", len(remote)), zap.Int("created", created), zap.Int("updated", updated))
	return created + updated, nil
}

func (c *Coordinator) pushUnsynced(ctx context.Context, sess Session) (int, error) {
	products, err := c.store.UnsyncedProducts()
	if err != nil {
		return 0, err
	}
	if len(products) == 0 {
		return 0, nil
	}

	// Plain errgroup, no shared cancellation: the creates target independent
	// remote resources and one failure must not abort the rest.
	var g errgroup.Group
	g.SetLimit(c.pushLimit)

	pushed := 0
	for _, p := range products {
		p := p
		g.Go(func() error {
			if err := c.pushOne(ctx, sess, p); err != nil {
				return err
			}
			c.mu.Lock()
			pushed++
			c.mu.Unlock()
			return nil
		})
	}

	err = g.Wait()
	c.publish(RefreshEvent{Phase: PhasePushingUnsynced, Created: pushed, At: time.Now().UTC()})
	c.log.Info("push finished", zap.Int("candidates", len(products)), zap.Int("pushed", pushed))
	return pushed, err
}

// pushOne issues exactly one create call for a product, guarded by the
// per-product in-flight marker. The marker is released on completion whether
// the call succeeded, failed, or timed out.
func (c *Coordinator) pushOne(ctx context.Context, sess Session, p Product) error {
	if p.Synced() {
		return nil
	}
	if !c.beginPush(p.ID) {
		// another create for this product is outstanding
		return nil
	}
	defer c.endPush(p.ID)

	backendID, err := c.client.CreateProduct(ctx, sess.UserID, payloadFrom(p))
	if err != nil {
		if errors.Is(err, ErrAuthRequired) {
			c.gate.Invalidate()
		}
		c.log.Warn("product push failed", zap.String("product", p.ID), zap.Error(err))
		return err
	}

	if err := c.store.AssignBackendID(p.ID, backendID); err != nil {
		return fmt.Errorf("assign backend id for %s: %w", p.ID, err)
	}

	c.log.Debug("product pushed", zap.String("product", p.ID), zap.String("backend_id", backendID))
	return nil
}

func (c *Coordinator) beginPush(localID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.inFlight[localID]; ok {
		return false
	}
	c.inFlight[localID] = struct{}{}
	return true
}

func (c *Coordinator) endPush(localID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.inFlight, localID)
}

func (c *Coordinator) publish(ev RefreshEvent) {
	select {
	case c.events <- ev:
	default:
	}
}

func payloadFrom(p Product) ProductPayload {
	return ProductPayload{
		Barcode:      p.Barcode,
		Name:         p.Name,
		Brand:        p.Brand,
		PurchaseDate: fmtRemoteDate(p.PurchaseDate),
		OpenDate:     fmtRemoteDate(p.OpenDate),
		FinishDate:   fmtRemoteDate(p.FinishDate),
		Vegan:        p.Vegan,
		CrueltyFree:  p.CrueltyFree,
		Favorite:     p.Favorite,
		ImageURL:     p.ImageRef,
	}
}

func fmtRemoteDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
