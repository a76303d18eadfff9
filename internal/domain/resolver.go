package domain

import (
	"sort"

	m "covforge.dev/pkg/covforge/internal/model"
)

// constructor ranking buckets, lower is preferred.
const (
	rankDefault       = 0
	rankDefaultParams = 1
	rankOther         = 2
)

// SelectConstructor picks the most test-friendly constructor of a type.
// Ranking: a true default constructor (or `= default`) first, then
// constructors with default-valued parameters, then any other public
// non-deleted constructor within the parameter cap; ties break on fewest
// parameters, then declaration order. Constructors failing the
// public/non-deleted/max-parameter filters stay in the record but are never
// candidates. With no candidate at all it returns
// model.ErrNoUsableConstructor; callers fall back to bare default
// construction.
func SelectConstructor(record m.TypeRecord, maxParams int) (m.ConstructorRecord, error) {
	type candidate struct {
		ctor  m.ConstructorRecord
		rank  int
		order int
	}

	var candidates []candidate

	for i, ctor := range record.Constructors {
		if ctor.Access != m.AccessPublic || ctor.IsDeleted {
			continue
		}

		if len(ctor.Params) > maxParams {
			continue
		}

		rank := rankOther

		switch {
		case ctor.IsDefault || ctor.IsDefaulted:
			rank = rankDefault
		case ctor.HasDefaultParams:
			rank = rankDefaultParams
		}

		candidates = append(candidates, candidate{ctor: ctor, rank: rank, order: i})
	}

	if len(candidates) == 0 {
		return m.ConstructorRecord{}, m.ErrNoUsableConstructor
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].rank != candidates[j].rank {
			return candidates[i].rank < candidates[j].rank
		}

		if len(candidates[i].ctor.Params) != len(candidates[j].ctor.Params) {
			return len(candidates[i].ctor.Params) < len(candidates[j].ctor.Params)
		}

		return candidates[i].order < candidates[j].order
	})

	return candidates[0].ctor, nil
}
