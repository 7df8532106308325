package fic

import (
	"time"

	"fic-go/internal/model"
)

// VerificationResult is the outcome of one verification attempt.
// For StatusTampered both ExpectedDigest and CurrentDigest are set so
// the caller can report what changed.
type VerificationResult struct {
	Identity       string
	Status         model.Status
	ExpectedDigest string // digest stored in the record
	CurrentDigest  string // digest computed this run, empty if unreadable/missing
	CheckedAt      time.Time
	CheckCount     int64
	Err            error // non-nil for a VerifyIO failure; status is then unchanged
}

// VerifySummary aggregates a verify-all run. Results are in identity
// order regardless of how the underlying checks were scheduled.
type VerifySummary struct {
	Results  []*VerificationResult
	Verified int
	Tampered int
	Missing  int
	Errors   int
	// Flagged lists identities that transitioned to Tampered or Missing,
	// the actionable findings of a run.
	Flagged []string
}

func summarize(results []*VerificationResult) *VerifySummary {
	sum := &VerifySummary{Results: results}
	for _, r := range results {
		if r.Err != nil {
			sum.Errors++
			continue
		}
		switch r.Status {
		case model.StatusVerified:
			sum.Verified++
		case model.StatusTampered:
			sum.Tampered++
			sum.Flagged = append(sum.Flagged, r.Identity)
		case model.StatusMissing:
			sum.Missing++
			sum.Flagged = append(sum.Flagged, r.Identity)
		}
	}
	return sum
}
