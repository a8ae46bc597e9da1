package glowstash

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// MergeStrategy defines how to handle records that already exist during a
// backup import.
type MergeStrategy string

const (
	// MergeStrategySkip leaves existing records untouched.
	MergeStrategySkip MergeStrategy = "skip"
	// MergeStrategyReplace overwrites existing records with imported versions.
	MergeStrategyReplace MergeStrategy = "replace"
)

// ImportResult summarizes an import operation.
type ImportResult struct {
	Total   int      `json:"total"`
	Created int      `json:"created"`
	Updated int      `json:"updated"`
	Skipped int      `json:"skipped"`
	Errors  []string `json:"errors,omitempty"`
}

// ImportJSON restores an inventory backup into the store.
//
// Identity resolution follows the same rules as the sync merge engine:
// backend id first, then the natural key (barcode for products, (name, color)
// for tags, name for bags). A malformed or failing record is recorded in
// Errors and skipped; it never aborts the rest of the import.
func (s *Store) ImportJSON(ctx context.Context, r io.Reader, strategy MergeStrategy) (*ImportResult, error) {
	var backup ExportFormat
	if err := json.NewDecoder(r).Decode(&backup); err != nil {
		return nil, fmt.Errorf("decode backup: %w", err)
	}
	if backup.Version != ExportVersion {
		return nil, fmt.Errorf("unsupported backup version %q (expected %q)", backup.Version, ExportVersion)
	}

	result := &ImportResult{}
	tagIDs := make(map[string]string) // backup tag id -> local tag id
	bagIDs := make(map[string]string)

	for _, t := range backup.Tags {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}
		result.Total++

		var existing *Tag
		if t.BackendID != nil {
			found, err := s.TagByBackendID(*t.BackendID)
			if err != nil && !errors.Is(err, ErrNotFound) {
				return result, err
			}
			existing = found
		}
		if existing == nil {
			locals, err := s.Tags()
			if err != nil {
				return result, err
			}
			existing = findTag(locals, t)
		}
		if existing != nil {
			tagIDs[t.ID] = existing.ID
			if strategy == MergeStrategySkip {
				result.Skipped++
				continue
			}
			merged := t
			merged.ID = existing.ID
			if err := s.ApplyTagChanges([]TagChange{{Action: ActionUpdate, Tag: merged}}); err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("update tag %s: %v", t.Name, err))
				continue
			}
			result.Updated++
			continue
		}

		created, err := s.importTag(t)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("import tag %s: %v", t.Name, err))
			continue
		}
		tagIDs[t.ID] = created
		result.Created++
	}

	for _, b := range backup.Bags {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}
		result.Total++

		var existing *Bag
		if b.BackendID != nil {
			found, err := s.BagByBackendID(*b.BackendID)
			if err != nil && !errors.Is(err, ErrNotFound) {
				return result, err
			}
			existing = found
		}
		if existing == nil {
			locals, err := s.Bags()
			if err != nil {
				return result, err
			}
			existing = findBag(locals, b)
		}
		if existing != nil {
			bagIDs[b.ID] = existing.ID
			if strategy == MergeStrategySkip {
				result.Skipped++
				continue
			}
			merged := b
			merged.ID = existing.ID
			if err := s.ApplyBagChanges([]BagChange{{Action: ActionUpdate, Bag: merged}}); err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("update bag %s: %v", b.Name, err))
				continue
			}
			result.Updated++
			continue
		}

		created, err := s.importBag(b)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("import bag %s: %v", b.Name, err))
			continue
		}
		bagIDs[b.ID] = created
		result.Created++
	}

	for _, p := range backup.Products {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}
		result.Total++

		if err := s.importProduct(p, strategy, tagIDs, bagIDs, result); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("import product %s: %v", p.Name, err))
		}
	}

	return result, nil
}

func (s *Store) importTag(t Tag) (string, error) {
	backendID := t.BackendID
	t.BackendID = nil
	t.ID = ""
	saved, err := s.InsertTag(t)
	if err != nil {
		return "", err
	}
	if backendID != nil {
		saved.BackendID = backendID
		if err := s.ApplyTagChanges([]TagChange{{Action: ActionUpdate, Tag: *saved}}); err != nil {
			return "", err
		}
	}
	return saved.ID, nil
}

func (s *Store) importBag(b Bag) (string, error) {
	backendID := b.BackendID
	b.BackendID = nil
	b.ID = ""
	saved, err := s.InsertBag(b)
	if err != nil {
		return "", err
	}
	if backendID != nil {
		saved.BackendID = backendID
		if err := s.ApplyBagChanges([]BagChange{{Action: ActionUpdate, Bag: *saved}}); err != nil {
			return "", err
		}
	}
	return saved.ID, nil
}

func (s *Store) importProduct(p Product, strategy MergeStrategy, tagIDs, bagIDs map[string]string, result *ImportResult) error {
	var existing *Product
	if p.BackendID != nil {
		found, err := s.ProductByBackendID(*p.BackendID)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}
		existing = found
	}
	if existing == nil && p.Barcode != "" {
		found, err := s.ProductByBarcode(p.Barcode)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}
		existing = found
	}

	attachTags := remapEdges(p.TagIDs, tagIDs)
	attachBags := remapEdges(p.BagIDs, bagIDs)

	if existing != nil {
		if strategy == MergeStrategySkip {
			result.Skipped++
			return nil
		}
		merged := p
		merged.ID = existing.ID
		if merged.BackendID == nil {
			merged.BackendID = existing.BackendID
		}
		change := ProductChange{Action: ActionUpdate, Product: merged, AttachTags: attachTags, AttachBags: attachBags}
		if err := s.ApplyProductChanges([]ProductChange{change}); err != nil {
			return err
		}
		result.Updated++
		return nil
	}

	backendID := p.BackendID
	p.BackendID = nil
	p.ID = ""
	p.TagIDs = nil
	p.BagIDs = nil
	saved, err := s.InsertProduct(p)
	if err != nil {
		return err
	}
	saved.BackendID = backendID
	change := ProductChange{Action: ActionUpdate, Product: *saved, AttachTags: attachTags, AttachBags: attachBags}
	if err := s.ApplyProductChanges([]ProductChange{change}); err != nil {
		return err
	}
	result.Created++
	return nil
}

// findTag matches by the tag natural key (name, color).
func findTag(locals []Tag, t Tag) *Tag {
	for i := range locals {
		if locals[i].Name == t.Name && locals[i].Color == t.Color {
			return &locals[i]
		}
	}
	return nil
}

// findBag matches by the bag natural key (name).
func findBag(locals []Bag, b Bag) *Bag {
	for i := range locals {
		if locals[i].Name == b.Name {
			return &locals[i]
		}
	}
	return nil
}

func remapEdges(ids []string, mapping map[string]string) []string {
	var out []string
	for _, id := range ids {
		if local, ok := mapping[id]; ok {
			out = append(out, local)
		}
	}
	return out
}
