package loadtest

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/okian/merit/pkg/logger"
)

// Verification errors.
var (
	ErrNoRanks      = errors.New("no ranks to verify")
	ErrRankingOrder = errors.New("ranking out of order")
	ErrRankMismatch = errors.New("rank mismatch")
	ErrTopMismatch  = errors.New("ranking head does not match best composite")
)

// verifyResults checks the ranking page and the individual ranks against each
// other. Ranks follow competition ranking: equal composites share a rank and
// the next distinct composite skips the shared places. When complete is false
// some ranked applications are missing from ranks, so individual ranks cannot
// be recomputed and only the ranking page is checked.
func verifyResults(ctx context.Context, config *Config, ranks, ranking []Entry, complete bool) error {
	log := logger.Get()
	log.Info(ctx, "verifying results")

	if len(ranks) == 0 {
		return ErrNoRanks
	}

	sorted := slices.Clone(ranks)
	slices.SortFunc(sorted, func(a, b Entry) int {
		if c := cmp.Compare(b.Composite, a.Composite); c != 0 {
			return c
		}
		return cmp.Compare(a.ApplicationID, b.ApplicationID)
	})

	if err := verifyRankingOrder(ranking); err != nil {
		return err
	}
	if complete {
		if err := verifyRanks(sorted); err != nil {
			return err
		}
	} else {
		log.Warn(ctx, "ranks incomplete; skipping rank recomputation", logger.Int("retrieved", len(ranks)))
	}
	if len(ranking) > 0 && ranking[0].Composite != sorted[0].Composite {
		return fmt.Errorf("%w: head %s at %.4f, best %s at %.4f", ErrTopMismatch,
			ranking[0].ApplicationID, ranking[0].Composite, sorted[0].ApplicationID, sorted[0].Composite)
	}

	displayTop(ctx, ranking, config.Verbose)
	log.Info(ctx, "result verification completed")
	return nil
}

// verifyRankingOrder checks that a page starting at offset 0 is sorted by
// composite descending and carries competition ranks.
func verifyRankingOrder(ranking []Entry) error {
	for i, e := range ranking {
		want := i + 1
		if i > 0 {
			prev := ranking[i-1]
			if e.Composite > prev.Composite {
				return fmt.Errorf("%w: entry %d (%.4f) above entry %d (%.4f)", ErrRankingOrder, i, e.Composite, i-1, prev.Composite)
			}
			if e.Composite == prev.Composite {
				want = prev.Rank
			}
		}
		if e.Rank != want {
			return fmt.Errorf("%w: %s has rank %d, want %d", ErrRankMismatch, e.ApplicationID, e.Rank, want)
		}
	}
	return nil
}

// verifyRanks checks that every rank equals one plus the number of strictly
// greater composites. sorted must be ordered by composite descending and
// hold every ranked application.
func verifyRanks(sorted []Entry) error {
	above := 0
	for i, e := range sorted {
		if i > 0 && e.Composite != sorted[i-1].Composite {
			above = i
		}
		if e.Rank != above+1 {
			return fmt.Errorf("%w: %s has rank %d, want %d", ErrRankMismatch, e.ApplicationID, e.Rank, above+1)
		}
	}
	return nil
}

// displayTop logs the head of the ranking.
func displayTop(ctx context.Context, ranking []Entry, verbose bool) {
	topN := min(10, len(ranking))
	for _, e := range ranking[:topN] {
		logger.Get().Info(ctx, "top application",
			logger.Int("rank", e.Rank),
			logger.String("application_id", e.ApplicationID),
			logger.Float64("composite", e.Composite))
	}

	if verbose && len(ranking) > 0 {
		logger.Get().Info(ctx, "composite statistics",
			logger.Float64("average", averageComposite(ranking)),
			logger.Float64("maximum", ranking[0].Composite),
			logger.Float64("minimum", ranking[len(ranking)-1].Composite))
	}
}

// averageComposite calculates the average composite of entries.
func averageComposite(entries []Entry) float64 {
	if len(entries) == 0 {
		return 0
	}
	sum := 0.0
	for _, e := range entries {
		sum += e.Composite
	}
	return sum / float64(len(entries))
}
