package glowstash

import (
	"testing"
	"time"
)

func strPtr(s string) *string { return &s }

// TestResolveTag_BackendIDWins verifies that a backend id match beats the
// natural key.
func TestResolveTag_BackendIDWins(t *testing.T) {
	locals := []Tag{
		{ID: "l1", BackendID: nil, Name: "Holy Grail", Color: "#fff"},
		{ID: "l2", BackendID: strPtr("t9"), Name: "Renamed", Color: "#000"},
	}
	remote := RemoteTag{ID: "t9", Name: "Holy Grail", Color: "#fff"}

	action, match := ResolveTag(remote, locals)
	if action != ActionUpdate {
		t.Fatalf("expected ActionUpdate, got %v", action)
	}
	if match.ID != "l2" {
		t.Errorf("expected backend id match l2, got %s", match.ID)
	}
}

// TestResolveTag_NaturalKey verifies (name, color) fallback for tags created
// before the first sync.
func TestResolveTag_NaturalKey(t *testing.T) {
	locals := []Tag{
		{ID: "l1", Name: "Empties", Color: "#abc"},
	}
	remote := RemoteTag{ID: "t1", Name: "Empties", Color: "#abc"}

	action, match := ResolveTag(remote, locals)
	if action != ActionUpdate {
		t.Fatalf("expected ActionUpdate, got %v", action)
	}
	if match.ID != "l1" {
		t.Errorf("expected natural key match l1, got %s", match.ID)
	}
}

// TestResolveTag_ColorMismatchCreates verifies that the tag natural key
// includes the color.
func TestResolveTag_ColorMismatchCreates(t *testing.T) {
	locals := []Tag{
		{ID: "l1", Name: "Empties", Color: "#abc"},
	}
	remote := RemoteTag{ID: "t1", Name: "Empties", Color: "#def"}

	action, _ := ResolveTag(remote, locals)
	if action != ActionCreate {
		t.Fatalf("expected ActionCreate, got %v", action)
	}
}

// TestResolveBag_NaturalKeyIsNameOnly verifies bags match on name alone.
func TestResolveBag_NaturalKeyIsNameOnly(t *testing.T) {
	locals := []Bag{
		{ID: "l1", Name: "Travel", Icon: "plane", Color: "#abc"},
	}
	remote := RemoteBag{ID: "b1", Name: "Travel", Icon: "suitcase", Color: "#def"}

	action, match := ResolveBag(remote, locals)
	if action != ActionUpdate {
		t.Fatalf("expected ActionUpdate, got %v", action)
	}
	if match.ID != "l1" {
		t.Errorf("expected match l1, got %s", match.ID)
	}
}

// TestResolveProduct_EmptyBarcodeNeverMatches verifies that a remote product
// without a barcode can only link through its backend id.
func TestResolveProduct_EmptyBarcodeNeverMatches(t *testing.T) {
	locals := []Product{
		{ID: "l1", Barcode: ""},
		{ID: "l2", Barcode: ""},
	}
	remote := RemoteProduct{ID: "p1", Barcode: "", Name: "Mystery Cream"}

	action, _ := ResolveProduct(remote, locals)
	if action != ActionCreate {
		t.Fatalf("expected ActionCreate for empty barcode, got %v", action)
	}
}

// TestResolveProduct_DuplicateBarcodeFirstMatch verifies that a barcode shared
// by two local products resolves to the first in slice order.
func TestResolveProduct_DuplicateBarcodeFirstMatch(t *testing.T) {
	locals := []Product{
		{ID: "l1", Barcode: "0123456789"},
		{ID: "l2", Barcode: "0123456789"},
	}
	remote := RemoteProduct{ID: "p1", Barcode: "0123456789"}

	action, match := ResolveProduct(remote, locals)
	if action != ActionUpdate {
		t.Fatalf("expected ActionUpdate, got %v", action)
	}
	if match.ID != "l1" {
		t.Errorf("expected first match l1, got %s", match.ID)
	}
}

// TestPlanTags_ClaimsMatch verifies that two remote tags with the same natural
// key cannot fold onto the same local record.
func TestPlanTags_ClaimsMatch(t *testing.T) {
	locals := []Tag{
		{ID: "l1", Name: "Empties", Color: "#abc"},
	}
	remote := []RemoteTag{
		{ID: "t1", Name: "Empties", Color: "#abc"},
		{ID: "t2", Name: "Empties", Color: "#abc"},
	}

	changes := PlanTags(remote, locals)
	if len(changes) != 2 {
		t.Fatalf("expected 2 changes, got %d", len(changes))
	}
	if changes[0].Action != ActionUpdate || changes[0].Tag.ID != "l1" {
		t.Errorf("first remote should update l1, got %+v", changes[0])
	}
	if changes[1].Action != ActionCreate {
		t.Errorf("second remote should create, got %+v", changes[1])
	}
	if *changes[0].Tag.BackendID != "t1" {
		t.Errorf("expected backend id t1 stamped, got %s", *changes[0].Tag.BackendID)
	}
}

// TestPlanTags_RestampsBackendID verifies that the backend id is written even
// when the local record already carries a different one.
func TestPlanTags_RestampsBackendID(t *testing.T) {
	locals := []Tag{
		{ID: "l1", BackendID: strPtr("old"), Name: "Empties", Color: "#abc"},
	}
	remote := []RemoteTag{
		{ID: "old", Name: "Empties Renamed", Color: "#def"},
	}

	changes := PlanTags(remote, locals)
	if len(changes) != 1 {
		t.Fatalf("expected 1 change, got %d", len(changes))
	}
	ch := changes[0]
	if ch.Action != ActionUpdate {
		t.Fatalf("expected ActionUpdate, got %v", ch.Action)
	}
	if ch.Tag.Name != "Empties Renamed" || ch.Tag.Color != "#def" {
		t.Errorf("remote scalars should win, got %+v", ch.Tag)
	}
}

// TestPlanProducts_RemoteWins verifies that remote scalar values overwrite
// local edits during a pull merge.
func TestPlanProducts_RemoteWins(t *testing.T) {
	opened := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	locals := []Product{
		{ID: "l1", Barcode: "111", Name: "Old Name", Brand: "Old Brand", OpenDate: &opened, Favorite: true},
	}
	remote := []RemoteProduct{
		{ID: "abc", Barcode: "111", Name: "New Name", Brand: "New Brand", Vegan: true},
	}

	plan := PlanProducts(remote, locals, nil, nil)
	if len(plan.Changes) != 1 {
		t.Fatalf("expected 1 change, got %d", len(plan.Changes))
	}
	p := plan.Changes[0].Product
	if p.ID != "l1" {
		t.Errorf("local id must survive, got %s", p.ID)
	}
	if p.Name != "New Name" || p.Brand != "New Brand" {
		t.Errorf("remote scalars should win, got %+v", p)
	}
	if !p.Vegan {
		t.Error("vegan flag should come from remote")
	}
	if p.Favorite {
		t.Error("favorite flag should come from remote")
	}
	if p.OpenDate != nil {
		t.Error("open date should be cleared when remote sends none")
	}
	if p.BackendID == nil || *p.BackendID != "abc" {
		t.Errorf("backend id should be stamped, got %v", p.BackendID)
	}
}

// TestPlanProducts_EdgesAttachIfAbsent verifies that remote relationship
// references become attach operations, deduplicated against local edges.
func TestPlanProducts_EdgesAttachIfAbsent(t *testing.T) {
	locals := []Product{
		{ID: "l1", Barcode: "111", TagIDs: []string{"lt1"}},
	}
	remote := []RemoteProduct{
		{ID: "abc", Barcode: "111", Tags: []RemoteRef{{ID: "t1"}, {ID: "t2"}}, Bags: []RemoteRef{{ID: "b1"}}},
	}
	tags := map[string]Tag{
		"t1": {ID: "lt1", BackendID: strPtr("t1")},
		"t2": {ID: "lt2", BackendID: strPtr("t2")},
	}
	bags := map[string]Bag{
		"b1": {ID: "lb1", BackendID: strPtr("b1")},
	}

	plan := PlanProducts(remote, locals, tags, bags)
	ch := plan.Changes[0]
	if len(ch.AttachTags) != 1 || ch.AttachTags[0] != "lt2" {
		t.Errorf("expected only lt2 to attach, got %v", ch.AttachTags)
	}
	if len(ch.AttachBags) != 1 || ch.AttachBags[0] != "lb1" {
		t.Errorf("expected lb1 to attach, got %v", ch.AttachBags)
	}
	if plan.UnresolvedRefs != 0 {
		t.Errorf("expected no unresolved refs, got %d", plan.UnresolvedRefs)
	}
}

// TestPlanProducts_UnresolvedRefsCounted verifies that references to tags or
// bags missing locally are counted rather than silently dropped.
func TestPlanProducts_UnresolvedRefsCounted(t *testing.T) {
	remote := []RemoteProduct{
		{ID: "abc", Name: "Toner", Tags: []RemoteRef{{ID: "ghost"}}, Bags: []RemoteRef{{ID: "phantom"}}},
	}

	plan := PlanProducts(remote, nil, map[string]Tag{}, map[string]Bag{})
	if plan.UnresolvedRefs != 2 {
		t.Errorf("expected 2 unresolved refs, got %d", plan.UnresolvedRefs)
	}
	if len(plan.Changes[0].AttachTags) != 0 || len(plan.Changes[0].AttachBags) != 0 {
		t.Errorf("unresolved refs must not produce attaches: %+v", plan.Changes[0])
	}
}

// TestPlanProducts_NoTombstones verifies that local products absent from the
// remote snapshot are left alone.
func TestPlanProducts_NoTombstones(t *testing.T) {
	locals := []Product{
		{ID: "l1", Barcode: "111"},
		{ID: "l2", Barcode: "222"},
	}
	remote := []RemoteProduct{
		{ID: "abc", Barcode: "111"},
	}

	plan := PlanProducts(remote, locals, nil, nil)
	if len(plan.Changes) != 1 {
		t.Fatalf("expected 1 change, got %d", len(plan.Changes))
	}
	if plan.Changes[0].Product.ID != "l1" {
		t.Errorf("only l1 should change, got %s", plan.Changes[0].Product.ID)
	}
}

// TestPlanProducts_Idempotent verifies that replaying the same remote snapshot
// over the merged result produces only no-op updates, never creates.
func TestPlanProducts_Idempotent(t *testing.T) {
	remote := []RemoteProduct{
		{ID: "abc", Barcode: "111", Name: "Toner"},
		{ID: "def", Name: "Mystery Cream"},
	}

	first := PlanProducts(remote, nil, nil, nil)
	if len(first.Changes) != 2 {
		t.Fatalf("expected 2 creates, got %d", len(first.Changes))
	}

	merged := make([]Product, 0, len(first.Changes))
	for _, ch := range first.Changes {
		merged = append(merged, ch.Product)
	}

	second := PlanProducts(remote, merged, nil, nil)
	for _, ch := range second.Changes {
		if ch.Action != ActionUpdate {
			t.Errorf("replay should only update, got %v for %s", ch.Action, ch.Product.ID)
		}
	}
}

// TestParseRemoteDate verifies both accepted date formats.
func TestParseRemoteDate(t *testing.T) {
	if got := parseRemoteDate(""); got != nil {
		t.Errorf("empty string should parse to nil, got %v", got)
	}
	if got := parseRemoteDate("2026-03-01"); got == nil || !got.Equal(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("plain date parse failed: %v", got)
	}
	if got := parseRemoteDate("2026-03-01T10:30:00Z"); got == nil || got.Hour() != 10 {
		t.Errorf("RFC3339 parse failed: %v", got)
	}
	if got := parseRemoteDate("not a date"); got != nil {
		t.Errorf("garbage should parse to nil, got %v", got)
	}
}
