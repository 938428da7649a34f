package biometric

import (
	"context"
	"math"

	"golang.org/x/sync/errgroup"
)

// Candidate is one enrolled template tagged with the key of its owner.
type Candidate[T any] struct {
	Key      string
	Template T
}

type Match struct {
	Key   string  `json:"key"`
	Score float64 `json:"score"`
}

// Matcher finds the single enrolled template closest to a probe.
// Implementations may index candidates; callers only rely on the contract
// that the returned match is the best one that clears the threshold.
type Matcher[T any] interface {
	BestMatch(ctx context.Context, probe T, candidates []Candidate[T], threshold float64) (Match, bool, error)
}

type ScoreFunc[T any] func(probe, candidate T) float64

type AcceptFunc func(score, threshold float64) bool

// LinearMatcher scores every candidate. Cohorts above parallelAbove are split
// into chunks scored concurrently, and ties always resolve to the earliest
// candidate so results do not depend on scheduling.
type LinearMatcher[T any] struct {
	score         ScoreFunc[T]
	accept        AcceptFunc
	parallelAbove int
	workers       int
}

type Option func(*options)

type options struct {
	parallelAbove int
	workers       int
}

// WithParallelScan enables chunked scanning once the cohort exceeds threshold.
func WithParallelScan(threshold, workers int) Option {
	return func(o *options) {
		o.parallelAbove = threshold
		o.workers = workers
	}
}

func NewLinearMatcher[T any](score ScoreFunc[T], accept AcceptFunc, opts ...Option) *LinearMatcher[T] {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.workers < 1 {
		o.workers = 1
	}
	return &LinearMatcher[T]{
		score:         score,
		accept:        accept,
		parallelAbove: o.parallelAbove,
		workers:       o.workers,
	}
}

// NewFaceMatcher accepts the best cosine score strictly above the threshold.
func NewFaceMatcher(opts ...Option) *LinearMatcher[[]float64] {
	return NewLinearMatcher[[]float64](CosineSimilarity, Exceeds, opts...)
}

// NewFingerprintMatcher accepts the best bit similarity at or above the threshold.
func NewFingerprintMatcher(opts ...Option) *LinearMatcher[[]byte] {
	return NewLinearMatcher[[]byte](TemplateBitSimilarity, Matches, opts...)
}

type best struct {
	index int
	score float64
}

func (m *LinearMatcher[T]) BestMatch(ctx context.Context, probe T, candidates []Candidate[T], threshold float64) (Match, bool, error) {
	if len(candidates) == 0 {
		return Match{}, false, nil
	}

	var top best
	if m.workers > 1 && m.parallelAbove > 0 && len(candidates) > m.parallelAbove {
		var err error
		top, err = m.scanParallel(ctx, probe, candidates)
		if err != nil {
			return Match{}, false, err
		}
	} else {
		top = m.scan(probe, candidates, 0)
	}

	if top.index < 0 || !m.accept(top.score, threshold) {
		return Match{}, false, nil
	}
	return Match{Key: candidates[top.index].Key, Score: top.score}, true, nil
}

func (m *LinearMatcher[T]) scan(probe T, candidates []Candidate[T], offset int) best {
	top := best{index: -1, score: math.Inf(-1)}
	for i, c := range candidates {
		s := m.score(probe, c.Template)
		if s > top.score {
			top = best{index: offset + i, score: s}
		}
	}
	return top
}

func (m *LinearMatcher[T]) scanParallel(ctx context.Context, probe T, candidates []Candidate[T]) (best, error) {
	chunk := (len(candidates) + m.workers - 1) / m.workers
	results := make([]best, 0, m.workers)
	for i := 0; i < len(candidates); i += chunk {
		results = append(results, best{index: -1})
	}

	g, gctx := errgroup.WithContext(ctx)
	for n := range results {
		start := n * chunk
		end := min(start+chunk, len(candidates))
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[n] = m.scan(probe, candidates[start:end], start)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return best{index: -1}, err
	}

	top := best{index: -1, score: math.Inf(-1)}
	for _, r := range results {
		if r.index >= 0 && r.score > top.score {
			top = r
		}
	}
	return top, nil
}
