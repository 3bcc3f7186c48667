// Package ranking turns an unordered question snapshot into the canonical
// display order: pinned questions first, then descending vote count, with
// ties broken by creation time (oldest first) and finally by ID so the
// order is total and repeat calls never reshuffle equal entries.
package ranking

import (
	"sort"

	"askroom/internal/domain/question"
)

// Rank returns a newly allocated, ordered copy of qs. The input slice is
// never mutated.
func Rank(qs []question.Question) []question.Question {
	out := make([]question.Question, len(qs))
	for i, q := range qs {
		out[i] = q.Clone()
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.IsPinned != b.IsPinned {
			return a.IsPinned
		}
		if a.Votes != b.Votes {
			return a.Votes > b.Votes
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID.String() < b.ID.String()
	})

	return out
}
