package glowstash

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// Action describes how a remote record reconciles against the local store.
type Action int

const (
	// ActionSkip means the remote record requires no local change.
	ActionSkip Action = iota
	// ActionCreate means no local counterpart exists; materialize one with
	// the backend id pre-populated.
	ActionCreate
	// ActionUpdate means a local counterpart was found; remote scalar values
	// overwrite it and the backend id is stamped.
	ActionUpdate
)

// TagChange is one step of a tag merge batch.
type TagChange struct {
	Action Action
	Tag    Tag
}

// BagChange is one step of a bag merge batch.
type BagChange struct {
	Action Action
	Bag    Bag
}

// ProductChange is one step of a product merge batch: a scalar upsert plus
// the relationship edges to attach once the product row exists.
type ProductChange struct {
	Action     Action
	Product    Product
	AttachTags []string // local tag ids
	AttachBags []string // local bag ids
}

// ProductPlan is the outcome of planning a product merge batch.
type ProductPlan struct {
	Changes []ProductChange
	// UnresolvedRefs counts remote tag/bag references that could not be
	// resolved to a local record (their pull phase failed earlier in the
	// pass). They are reported, never silently dropped without trace.
	UnresolvedRefs int
}

// ResolveTag decides how a remote tag folds onto the local tag set.
// Backend id match is the strongest signal; (name, color) is the natural-key
// fallback that prevents duplicating a tag the user created before ever
// syncing. First match wins.
func ResolveTag(remote RemoteTag, locals []Tag) (Action, *Tag) {
	for i := range locals {
		if locals[i].BackendID != nil && *locals[i].BackendID == remote.ID {
			return ActionUpdate, &locals[i]
		}
	}
	for i := range locals {
		if locals[i].BackendID == nil && locals[i].Name == remote.Name && locals[i].Color == remote.Color {
			return ActionUpdate, &locals[i]
		}
	}
	return ActionCreate, nil
}

// ResolveBag decides how a remote bag folds onto the local bag set.
// The natural key for bags is the name alone.
func ResolveBag(remote RemoteBag, locals []Bag) (Action, *Bag) {
	for i := range locals {
		if locals[i].BackendID != nil && *locals[i].BackendID == remote.ID {
			return ActionUpdate, &locals[i]
		}
	}
	for i := range locals {
		if locals[i].BackendID == nil && locals[i].Name == remote.Name {
			return ActionUpdate, &locals[i]
		}
	}
	return ActionCreate, nil
}

// ResolveProduct decides how a remote product folds onto the local set.
// Backend id first, then barcode as the natural key. An empty remote barcode
// never matches anything: manually entered products without a barcode can only
// be linked through their backend id.
//
// A remote barcode matching two local products resolves to the first match in
// slice order; duplicate collapsing is deliberately not attempted.
func ResolveProduct(remote RemoteProduct, locals []Product) (Action, *Product) {
	for i := range locals {
		if locals[i].BackendID != nil && *locals[i].BackendID == remote.ID {
			return ActionUpdate, &locals[i]
		}
	}
	if remote.Barcode != "" {
		for i := range locals {
			if locals[i].BackendID == nil && locals[i].Barcode == remote.Barcode {
				return ActionUpdate, &locals[i]
			}
		}
	}
	return ActionCreate, nil
}

// PlanTags computes the tag merge batch for a remote snapshot.
// Remote wins for scalar fields; the backend id is stamped regardless of
// whether the local record already carried one (self-healing after a store
// reset). Local tags absent remotely are left untouched.
func PlanTags(remote []RemoteTag, locals []Tag) []TagChange {
	changes := make([]TagChange, 0, len(remote))
	pool := append([]Tag(nil), locals...)

	for _, r := range remote {
		action, match := ResolveTag(r, pool)
		backendID := r.ID
		switch action {
		case ActionUpdate:
			merged := *match
			merged.BackendID = &backendID
			merged.Name = r.Name
			merged.Color = r.Color
			changes = append(changes, TagChange{Action: ActionUpdate, Tag: merged})
			// claim the match so a second remote tag cannot fold onto it
			match.BackendID = &backendID
			match.Name = r.Name
			match.Color = r.Color
		case ActionCreate:
			created := Tag{
				ID:        ulid.Make().String(),
				BackendID: &backendID,
				Name:      r.Name,
				Color:     r.Color,
			}
			changes = append(changes, TagChange{Action: ActionCreate, Tag: created})
			pool = append(pool, created)
		}
	}
	return changes
}

// PlanBags computes the bag merge batch for a remote snapshot.
func PlanBags(remote []RemoteBag, locals []Bag) []BagChange {
	changes := make([]BagChange, 0, len(remote))
	pool := append([]Bag(nil), locals...)

	for _, r := range remote {
		action, match := ResolveBag(r, pool)
		backendID := r.ID
		switch action {
		case ActionUpdate:
			merged := *match
			merged.BackendID = &backendID
			merged.Name = r.Name
			merged.Icon = r.Icon
			merged.Color = r.Color
			changes = append(changes, BagChange{Action: ActionUpdate, Bag: merged})
			match.BackendID = &backendID
			match.Name = r.Name
		case ActionCreate:
			created := Bag{
				ID:        ulid.Make().String(),
				BackendID: &backendID,
				Name:      r.Name,
				Icon:      r.Icon,
				Color:     r.Color,
			}
			changes = append(changes, BagChange{Action: ActionCreate, Bag: created})
			pool = append(pool, created)
		}
	}
	return changes
}

// PlanProducts computes the product merge batch for a remote snapshot.
//
// tagsByBackendID and bagsByBackendID must be built from the already-merged
// local tag/bag sets; this is why the sync pass pulls tags and bags before
// products. Edges present locally but absent remotely are preserved: the pull
// merge attaches, it never detaches, and it never deletes records (no
// tombstone propagation).
func PlanProducts(remote []RemoteProduct, locals []Product, tagsByBackendID map[string]Tag, bagsByBackendID map[string]Bag) ProductPlan {
	plan := ProductPlan{Changes: make([]ProductChange, 0, len(remote))}
	pool := append([]Product(nil), locals...)

	for _, r := range remote {
		action, match := ResolveProduct(r, pool)
		backendID := r.ID

		var merged Product
		if action == ActionUpdate {
			merged = *match
		} else {
			merged = Product{ID: ulid.Make().String()}
		}
		merged.BackendID = &backendID
		merged.Barcode = r.Barcode
		merged.Name = r.Name
		merged.Brand = r.Brand
		merged.PurchaseDate = parseRemoteDate(r.PurchaseDate)
		merged.OpenDate = parseRemoteDate(r.OpenDate)
		merged.FinishDate = parseRemoteDate(r.FinishDate)
		merged.Vegan = r.Vegan
		merged.CrueltyFree = r.CrueltyFree
		merged.Favorite = r.Favorite
		merged.ImageRef = r.ImageURL

		change := ProductChange{Action: action, Product: merged}

		existingTags := stringSet(merged.TagIDs)
		for _, ref := range r.Tags {
			tag, ok := tagsByBackendID[ref.ID]
			if !ok {
				plan.UnresolvedRefs++
				continue
			}
			if !existingTags[tag.ID] {
				change.AttachTags = append(change.AttachTags, tag.ID)
				existingTags[tag.ID] = true
			}
		}

		existingBags := stringSet(merged.BagIDs)
		for _, ref := range r.Bags {
			bag, ok := bagsByBackendID[ref.ID]
			if !ok {
				plan.UnresolvedRefs++
				continue
			}
			if !existingBags[bag.ID] {
				change.AttachBags = append(change.AttachBags, bag.ID)
				existingBags[bag.ID] = true
			}
		}

		plan.Changes = append(plan.Changes, change)

		if action == ActionUpdate {
			match.BackendID = &backendID
		} else {
			pool = append(pool, merged)
		}
	}
	return plan
}

// TagsByBackendID indexes merged tags for product edge resolution.
func TagsByBackendID(tags []Tag) map[string]Tag {
	m := make(map[string]Tag, len(tags))
	for _, t := range tags {
		if t.BackendID != nil {
			m[*t.BackendID] = t
		}
	}
	return m
}

// BagsByBackendID indexes merged bags for product edge resolution.
func BagsByBackendID(bags []Bag) map[string]Bag {
	m := make(map[string]Bag, len(bags))
	for _, b := range bags {
		if b.BackendID != nil {
			m[*b.BackendID] = b
		}
	}
	return m
}

func stringSet(ids []string) map[string]bool {
	m := make(map[string]bool, len(ids))
	for _, id := range ids {
		m[id] = true
	}
	return m
}

func parseRemoteDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		// catalog sends plain dates for purchase/open/finish
		t, err = time.Parse("2006-01-02", s)
		if err != nil {
			return nil
		}
	}
	return &t
}
