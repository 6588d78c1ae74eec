// Package resolve canonicalizes free-text region names against a fixed
// set of canonical names. Upstream feeds misspell, abbreviate and split
// names ("Telengana", "A & N Islands", separate "Daman & Diu"), so exact
// lookup is backed by token-similarity scoring and a transliteration
// fallback for common Hindi vowel romanizations.
package resolve

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
)

// DefaultMinConfidence is the similarity score a fuzzy match must reach
// to be accepted, on the metric's [0,1] scale. It balances false accepts
// against false rejects and can be overridden with WithMinConfidence.
const DefaultMinConfidence = 0.5

// substitutions maps romanization variants to their normalized spelling.
// Applied one at a time, recursively; the table size bounds the recursion
// depth, so termination is guaranteed.
var substitutions = []struct{ from, to string }{
	{"aa", "a"},
	{"ee", "i"},
	{"oo", "u"},
	{"y", "i"},
}

// Resolver maps candidate names onto one canonical set. Construct one
// resolver per canonical set; the memoization cache is keyed by exact
// candidate string and is never consulted fuzzily, so results cannot leak
// across differing sets.
type Resolver struct {
	canon    []string
	canonSet map[string]struct{}

	minConfidence float64
	similarity    *metrics.SorensenDice
	distance      *metrics.Levenshtein

	mu    sync.RWMutex
	cache map[string]string

	fuzzyObserver func()
}

// Option applies a configuration option to the Resolver.
type Option func(*Resolver)

// WithMinConfidence overrides the minimum similarity score for accepting
// a fuzzy match. Values outside (0,1] are ignored.
func WithMinConfidence(score float64) Option {
	return func(r *Resolver) {
		if score > 0 && score <= 1 {
			r.minConfidence = score
		}
	}
}

// WithFuzzyObserver registers a callback invoked whenever resolution
// falls through to similarity scoring. Used to feed pipeline metrics.
func WithFuzzyObserver(fn func()) Option {
	return func(r *Resolver) {
		if fn != nil {
			r.fuzzyObserver = fn
		}
	}
}

// New builds a resolver over the given canonical names.
func New(canonical []string, opts ...Option) *Resolver {
	r := &Resolver{
		canon:         append([]string(nil), canonical...),
		canonSet:      make(map[string]struct{}, len(canonical)),
		minConfidence: DefaultMinConfidence,
		similarity:    metrics.NewSorensenDice(),
		distance:      metrics.NewLevenshtein(),
		cache:         make(map[string]string),
	}
	r.similarity.CaseSensitive = false
	r.distance.CaseSensitive = false

	// Sorted scan order makes lexicographic tie-breaking implicit.
	sort.Strings(r.canon)
	for _, name := range r.canon {
		r.canonSet[name] = struct{}{}
	}

	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the canonical form of candidate, or ErrNoMatch when
// every strategy is exhausted. An empty candidate is a caller error.
func (r *Resolver) Resolve(candidate string) (string, error) {
	candidate = strings.TrimSpace(candidate)
	if candidate == "" {
		return "", ErrEmptyCandidate
	}

	r.mu.RLock()
	cached, ok := r.cache[candidate]
	r.mu.RUnlock()
	if ok {
		return cached, nil
	}

	resolved, err := r.resolve(candidate, len(substitutions))
	if err != nil {
		return "", fmt.Errorf("%w for %q", ErrNoMatch, candidate)
	}

	r.mu.Lock()
	r.cache[candidate] = resolved
	r.mu.Unlock()
	return resolved, nil
}

// resolve runs the strategy chain: exact match, similarity scoring, then
// one transliteration substitution and a retry. depth bounds the retries.
func (r *Resolver) resolve(candidate string, depth int) (string, error) {
	if _, ok := r.canonSet[candidate]; ok {
		return candidate, nil
	}

	if best, ok := r.closest(candidate); ok {
		return best, nil
	}

	if depth > 0 {
		for _, sub := range substitutions {
			if strings.Contains(candidate, sub.from) {
				return r.resolve(strings.ReplaceAll(candidate, sub.from, sub.to), depth-1)
			}
		}
	}
	return "", ErrNoMatch
}

// closest scores candidate against every canonical name and returns the
// highest scorer if it clears the confidence threshold. Equal scores are
// broken by smaller edit distance; canon is pre-sorted, so remaining ties
// fall to the lexicographically smaller name.
func (r *Resolver) closest(candidate string) (string, bool) {
	if r.fuzzyObserver != nil {
		r.fuzzyObserver()
	}

	best := ""
	bestScore := 0.0
	bestDist := 0
	for _, name := range r.canon {
		score := strutil.Similarity(candidate, name, r.similarity)
		if score < bestScore || score < r.minConfidence {
			continue
		}
		dist := r.distance.Distance(candidate, name)
		if best == "" || score > bestScore || dist < bestDist {
			best, bestScore, bestDist = name, score, dist
		}
	}
	return best, best != ""
}
