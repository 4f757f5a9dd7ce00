package search

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// MaxContextSize is the largest number of tokens shown on each side of a hit.
const MaxContextSize = 10

// contextWorkers bounds the concurrent token lookups of one Context call.
const contextWorkers = 4

// KWIC is a hit with the tokens around it. Left and Right always hold
// exactly size values; missing positions are empty strings, padded on the
// outer side.
type KWIC struct {
	Hit   Hit      `json:"hit"`
	Left  []string `json:"left"`
	Right []string `json:"right"`
}

// Context loads up to size tokens before and after each hit.
func (s *Service) Context(ctx context.Context, hits []Hit, size int) ([]KWIC, error) {
	if size < 1 || size > MaxContextSize {
		return nil, fmt.Errorf("%w: context size %d not in 1..%d", ErrInvalidRequest, size, MaxContextSize)
	}

	out := make([]KWIC, len(hits))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(contextWorkers)
	for i, h := range hits {
		g.Go(func() error {
			tokens, err := s.db.Tokens(gctx, h.DocumentID, h.P1-size, h.P2+size)
			if err != nil {
				return fmt.Errorf("%w: context of hit %d: %w", ErrDatabase, h.ID, err)
			}

			var left, right []string
			for _, t := range tokens {
				switch {
				case t.P1 < h.P1:
					left = append(left, t.Value)
				case t.P1 > h.P2:
					right = append(right, t.Value)
				}
			}
			out[i] = KWIC{Hit: h, Left: padLeft(left, size), Right: padRight(right, size)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// padLeft keeps the last size values, prefixed with empty strings.
func padLeft(values []string, size int) []string {
	if len(values) > size {
		values = values[len(values)-size:]
	}
	out := make([]string, size-len(values), size)
	return append(out, values...)
}

// padRight keeps the first size values, followed by empty strings.
func padRight(values []string, size int) []string {
	if len(values) > size {
		values = values[:size]
	}
	out := make([]string, size)
	copy(out, values)
	return out
}
