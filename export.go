package glowstash

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// ExportVersion is the current version of the backup format.
const ExportVersion = "1.0"

// ExportFormat is the top-level structure for JSON backups.
type ExportFormat struct {
	Version    string    `json:"version"`
	ExportedAt time.Time `json:"exported_at"`
	Profile    string    `json:"profile,omitempty"`
	Tags       []Tag     `json:"tags"`
	Bags       []Bag     `json:"bags"`
	Products   []Product `json:"products"`
}

// ExportJSON writes the whole inventory as a JSON backup to the writer.
// Relationship edges travel on each product as tag_ids/bag_ids.
func (s *Store) ExportJSON(ctx context.Context, profile string, w io.Writer) error {
	tags, err := s.Tags()
	if err != nil {
		return fmt.Errorf("export tags: %w", err)
	}
	bags, err := s.Bags()
	if err != nil {
		return fmt.Errorf("export bags: %w", err)
	}
	products, err := s.Products()
	if err != nil {
		return fmt.Errorf("export products: %w", err)
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	out := ExportFormat{
		Version:    ExportVersion,
		ExportedAt: time.Now().UTC(),
		Profile:    profile,
		Tags:       tags,
		Bags:       bags,
		Products:   products,
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode backup: %w", err)
	}
	return nil
}
