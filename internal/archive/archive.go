// Package archive defines the portable on-disk form of an integrity
// database. A Document round-trips losslessly: exporting a store and
// importing the result with the replace strategy reproduces the same
// records, field for field.
package archive

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"fic-go/internal/model"
)

// Version is the current document schema version.
const Version = 1

// Document is the serialized integrity database.
type Document struct {
	Version    int       `json:"version"`
	SnapshotID string    `json:"snapshot_id"`
	ExportedAt time.Time `json:"exported_at"`
	Records    []Entry   `json:"records"`
}

// Entry is one integrity record in its wire form.
type Entry struct {
	Identity      string    `json:"identity"`
	Digest        string    `json:"digest"`
	Algorithm     string    `json:"algorithm"`
	SizeBytes     int64     `json:"size_bytes"`
	AddedAt       time.Time `json:"added_at"`
	LastCheckedAt time.Time `json:"last_checked_at"`
	Status        string    `json:"status"`
	Description   string    `json:"description,omitempty"`
	CheckCount    int64     `json:"check_count"`
}

// New builds a Document from records. Records are written in identity
// order regardless of input order so exports are byte-stable.
func New(snapshotID string, exportedAt time.Time, records []*model.Record) *Document {
	doc := &Document{
		Version:    Version,
		SnapshotID: snapshotID,
		ExportedAt: exportedAt.UTC(),
		Records:    make([]Entry, 0, len(records)),
	}
	for _, r := range records {
		doc.Records = append(doc.Records, Entry{
			Identity:      r.Identity,
			Digest:        r.Digest,
			Algorithm:     r.Algorithm,
			SizeBytes:     r.SizeBytes,
			AddedAt:       r.AddedAt.UTC(),
			LastCheckedAt: r.LastCheckedAt.UTC(),
			Status:        string(r.Status),
			Description:   r.Description,
			CheckCount:    r.CheckCount,
		})
	}
	sort.Slice(doc.Records, func(i, j int) bool {
		return doc.Records[i].Identity < doc.Records[j].Identity
	})
	return doc
}

// ToRecords converts the document back into store records.
func (d *Document) ToRecords() []*model.Record {
	records := make([]*model.Record, 0, len(d.Records))
	for _, e := range d.Records {
		records = append(records, &model.Record{
			Identity:      e.Identity,
			Digest:        e.Digest,
			Algorithm:     e.Algorithm,
			SizeBytes:     e.SizeBytes,
			AddedAt:       e.AddedAt,
			LastCheckedAt: e.LastCheckedAt,
			Status:        model.ParseStatus(e.Status),
			Description:   e.Description,
			CheckCount:    e.CheckCount,
		})
	}
	return records
}

// Encode writes the document to w as indented JSON.
func Encode(w io.Writer, doc *Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding archive: %w", err)
	}
	return nil
}

// Decode reads a document from r, validating the schema.
func Decode(r io.Reader) (*Document, error) {
	var doc Document
	dec := json.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding archive: %w", err)
	}
	if doc.Version != Version {
		return nil, fmt.Errorf("unsupported archive version %d (want %d)", doc.Version, Version)
	}
	seen := make(map[string]bool, len(doc.Records))
	for _, e := range doc.Records {
		if e.Identity == "" {
			return nil, fmt.Errorf("archive record with empty identity")
		}
		if seen[e.Identity] {
			return nil, fmt.Errorf("archive contains duplicate identity %q", e.Identity)
		}
		seen[e.Identity] = true
		// Unknown is a per-lookup answer, never a stored state, so any
		// status outside the persistable set marks a damaged archive.
		if model.ParseStatus(e.Status) == model.StatusUnknown {
			return nil, fmt.Errorf("archive record %q has invalid status %q", e.Identity, e.Status)
		}
		if e.SizeBytes < 0 {
			return nil, fmt.Errorf("archive record %q has negative size", e.Identity)
		}
		if e.CheckCount < 0 {
			return nil, fmt.Errorf("archive record %q has negative check count", e.Identity)
		}
	}
	return &doc, nil
}
