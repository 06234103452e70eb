package dedupe

import (
	"context"
	"sort"

	"github.com/agext/levenshtein"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/touchbasehq/touchbase-backend/internal/normalization"
)

// Reasons a pair gets flagged.
const (
	ReasonSameEmail   = "same_email"
	ReasonSamePhone   = "same_phone"
	ReasonSimilarName = "similar_name"
)

// ContactRecord is the projection detection runs on.
type ContactRecord struct {
	ID     uuid.UUID
	Name   string
	Emails []string
	Phones []string
}

// CandidatePair flags two contacts as likely duplicates. ContactA/ContactB
// are in canonical order (smaller id first) so an unordered pair has exactly
// one representation.
type CandidatePair struct {
	ContactA   uuid.UUID `json:"contact_a"`
	ContactB   uuid.UUID `json:"contact_b"`
	Reason     string    `json:"reason"`
	Confidence float64   `json:"confidence"`
}

// Detect runs the three detection passes concurrently and unions their
// output. Each unordered pair appears at most once, keeping the
// highest-confidence reason (identifier matches outrank name matches on
// ties). The result ordering is deterministic: confidence descending, then
// pair ids ascending.
func Detect(ctx context.Context, records []ContactRecord) ([]CandidatePair, error) {
	g, ctx := errgroup.WithContext(ctx)

	var emailPairs, phonePairs, namePairs []CandidatePair
	g.Go(func() error {
		emailPairs = identifierPass(records, ReasonSameEmail, func(r ContactRecord) []string {
			return normalization.Emails(r.Emails)
		})
		return nil
	})
	g.Go(func() error {
		phonePairs = identifierPass(records, ReasonSamePhone, func(r ContactRecord) []string {
			return normalization.Phones(r.Phones)
		})
		return nil
	})
	g.Go(func() error {
		var err error
		namePairs, err = similarNamePass(ctx, records)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return unionPairs(emailPairs, phonePairs, namePairs), nil
}

// identifierPass hash-joins records on normalized identifier values and
// pairs every two distinct contacts sharing one. Confidence is always 1.0.
func identifierPass(records []ContactRecord, reason string, keys func(ContactRecord) []string) []CandidatePair {
	index := make(map[string][]uuid.UUID)
	for _, rec := range records {
		seen := make(map[string]struct{})
		for _, key := range keys(rec) {
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			index[key] = append(index[key], rec.ID)
		}
	}

	found := make(map[[2]uuid.UUID]struct{})
	var out []CandidatePair
	for _, ids := range index {
		for i := 0; i < len(ids); i++ {
			for j := i + 1; j < len(ids); j++ {
				if ids[i] == ids[j] {
					continue
				}
				p := newPair(ids[i], ids[j], reason, 1.0)
				k := [2]uuid.UUID{p.ContactA, p.ContactB}
				if _, dup := found[k]; dup {
					continue
				}
				found[k] = struct{}{}
				out = append(out, p)
			}
		}
	}
	return out
}

// similarNamePass compares every pair of normalized display names. The scan
// is quadratic, so it honors ctx cancellation between rows.
func similarNamePass(ctx context.Context, records []ContactRecord) ([]CandidatePair, error) {
	norms := make([]string, len(records))
	for i, r := range records {
		norms[i] = normalization.Name(r.Name)
	}

	var out []CandidatePair
	for i := range records {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if norms[i] == "" {
			continue
		}
		for j := i + 1; j < len(records); j++ {
			if norms[j] == "" || records[i].ID == records[j].ID {
				continue
			}
			score := 1.0
			if norms[i] != norms[j] {
				score = levenshtein.Similarity(norms[i], norms[j], nil)
			}
			if score < NameSimilarityThreshold {
				continue
			}
			out = append(out, newPair(records[i].ID, records[j].ID, ReasonSimilarName, score))
		}
	}
	return out, nil
}

func newPair(a, b uuid.UUID, reason string, confidence float64) CandidatePair {
	if b.String() < a.String() {
		a, b = b, a
	}
	return CandidatePair{ContactA: a, ContactB: b, Reason: reason, Confidence: confidence}
}

func reasonRank(reason string) int {
	switch reason {
	case ReasonSameEmail:
		return 0
	case ReasonSamePhone:
		return 1
	default:
		return 2
	}
}

func unionPairs(passes ...[]CandidatePair) []CandidatePair {
	best := make(map[[2]uuid.UUID]CandidatePair)
	for _, pass := range passes {
		for _, p := range pass {
			k := [2]uuid.UUID{p.ContactA, p.ContactB}
			cur, ok := best[k]
			if !ok ||
				p.Confidence > cur.Confidence ||
				(p.Confidence == cur.Confidence && reasonRank(p.Reason) < reasonRank(cur.Reason)) {
				best[k] = p
			}
		}
	}

	out := make([]CandidatePair, 0, len(best))
	for _, p := range best {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Confidence != out[j].Confidence {
			return out[i].Confidence > out[j].Confidence
		}
		if out[i].ContactA != out[j].ContactA {
			return out[i].ContactA.String() < out[j].ContactA.String()
		}
		return out[i].ContactB.String() < out[j].ContactB.String()
	})
	return out
}
