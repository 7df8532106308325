package archive_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"fic-go/internal/archive"
	"fic-go/internal/model"
)

func sampleRecords() []*model.Record {
	added := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	return []*model.Record{
		{
			Identity:      "/etc/passwd",
			Digest:        "aa11",
			Algorithm:     "sha256",
			SizeBytes:     1024,
			AddedAt:       added,
			LastCheckedAt: added.Add(time.Hour),
			Status:        model.StatusVerified,
			Description:   "system users",
			CheckCount:    3,
		},
		{
			Identity:      "/etc/hosts",
			Digest:        "bb22",
			Algorithm:     "sha256",
			SizeBytes:     64,
			AddedAt:       added,
			LastCheckedAt: added,
			Status:        model.StatusTampered,
			CheckCount:    1,
		},
	}
}

func TestDocument_RoundTrip(t *testing.T) {
	t.Parallel()
	records := sampleRecords()
	doc := archive.New("snap-1", time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), records)

	var buf bytes.Buffer
	if err := archive.Encode(&buf, doc); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	decoded, err := archive.Decode(&buf)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if decoded.Version != archive.Version {
		t.Errorf("Version = %d, want %d", decoded.Version, archive.Version)
	}
	if decoded.SnapshotID != "snap-1" {
		t.Errorf("SnapshotID = %q", decoded.SnapshotID)
	}

	got := decoded.ToRecords()
	if len(got) != 2 {
		t.Fatalf("got %d records, want 2", len(got))
	}
	// New sorts by identity, so /etc/hosts comes first.
	if got[0].Identity != "/etc/hosts" || got[1].Identity != "/etc/passwd" {
		t.Fatalf("order = %q, %q", got[0].Identity, got[1].Identity)
	}
	want := records[0]
	rec := got[1]
	if rec.Digest != want.Digest || rec.Algorithm != want.Algorithm ||
		rec.SizeBytes != want.SizeBytes || rec.Status != want.Status ||
		rec.Description != want.Description || rec.CheckCount != want.CheckCount ||
		!rec.AddedAt.Equal(want.AddedAt) || !rec.LastCheckedAt.Equal(want.LastCheckedAt) {
		t.Errorf("record did not round-trip:\n want %+v\n got  %+v", want, rec)
	}
}

func TestNew_SortsByIdentity(t *testing.T) {
	t.Parallel()
	records := []*model.Record{
		{Identity: "/z"}, {Identity: "/a"}, {Identity: "/m"},
	}
	doc := archive.New("snap", time.Now(), records)
	want := []string{"/a", "/m", "/z"}
	for i, e := range doc.Records {
		if e.Identity != want[i] {
			t.Errorf("Records[%d] = %q, want %q", i, e.Identity, want[i])
		}
	}
}

func TestDecode_Rejections(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		input string
	}{
		{"invalid json", `{ not json`},
		{"wrong version", `{"version": 2, "records": []}`},
		{"missing version", `{"records": []}`},
		{"empty identity", `{"version": 1, "records": [{"identity": ""}]}`},
		{"duplicate identity", `{"version": 1, "records": [{"identity": "/a", "status": "verified"}, {"identity": "/a", "status": "verified"}]}`},
		{"invalid status", `{"version": 1, "records": [{"identity": "/a", "status": "bogus"}]}`},
		{"unknown status", `{"version": 1, "records": [{"identity": "/a", "status": "unknown"}]}`},
		{"missing status", `{"version": 1, "records": [{"identity": "/a"}]}`},
		{"negative size", `{"version": 1, "records": [{"identity": "/a", "status": "verified", "size_bytes": -1}]}`},
		{"negative check count", `{"version": 1, "records": [{"identity": "/a", "status": "verified", "check_count": -1}]}`},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if _, err := archive.Decode(strings.NewReader(tc.input)); err == nil {
				t.Error("Decode() succeeded, want error")
			}
		})
	}
}

