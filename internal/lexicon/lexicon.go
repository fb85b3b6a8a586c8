// Package lexicon provides synonym lookups for keyword matching.
//
// A Resource answers SynonymsOf for a single word. Backends are an in-memory
// Thesaurus (bundled or loaded from YAML) and a SQLite-backed store. Every
// backend is reached through Guarded, which serializes lookups behind one
// process-wide mutex.
package lexicon

import (
	"context"
	"io"
	"sort"
	"sync"

	"github.com/rotisserie/eris"

	"github.com/sells-group/partner-match/internal/config"
)

// Set is a set of lemmas.
type Set map[string]struct{}

// NewSet builds a Set from words.
func NewSet(words ...string) Set {
	s := make(Set, len(words))
	for _, w := range words {
		s[w] = struct{}{}
	}
	return s
}

// Has reports whether w is in the set.
func (s Set) Has(w string) bool {
	_, ok := s[w]
	return ok
}

// Intersects reports whether the two sets share at least one lemma.
func (s Set) Intersects(o Set) bool {
	small, large := s, o
	if len(large) < len(small) {
		small, large = large, small
	}
	for w := range small {
		if _, ok := large[w]; ok {
			return true
		}
	}
	return false
}

// Sorted returns the lemmas in lexical order.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for w := range s {
		out = append(out, w)
	}
	sort.Strings(out)
	return out
}

// Resource looks up the synonym set of a word. A word the dictionary does
// not know yields an empty set and no error.
type Resource interface {
	SynonymsOf(ctx context.Context, word string) (Set, error)
}

// lookupMu serializes every lexicon lookup in the process.
var lookupMu sync.Mutex

// Guarded serializes access to a Resource.
type Guarded struct {
	r Resource
}

// Guard wraps r so that each lookup holds the process-wide lexicon lock.
func Guard(r Resource) *Guarded {
	return &Guarded{r: r}
}

// SynonymsOf holds the lexicon lock for exactly one lookup.
func (g *Guarded) SynonymsOf(ctx context.Context, word string) (Set, error) {
	lookupMu.Lock()
	defer lookupMu.Unlock()
	return g.r.SynonymsOf(ctx, word)
}

// Close closes the underlying resource when it holds one open.
func (g *Guarded) Close() error {
	if c, ok := g.r.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Open builds the configured backend and wraps it in a Guard.
func Open(ctx context.Context, cfg config.LexiconConfig) (*Guarded, error) {
	switch cfg.Driver {
	case config.LexiconEmbedded, "":
		t, err := Embedded(cfg.Stemming)
		if err != nil {
			return nil, err
		}
		return Guard(t), nil
	case config.LexiconYAML:
		t, err := LoadThesaurus(cfg.Path, cfg.Stemming)
		if err != nil {
			return nil, err
		}
		return Guard(t), nil
	case config.LexiconSQLite:
		s, err := OpenSQLite(cfg.Path, cfg.Stemming)
		if err != nil {
			return nil, err
		}
		if err := s.Migrate(ctx); err != nil {
			s.Close()
			return nil, err
		}
		return Guard(s), nil
	default:
		return nil, eris.Errorf("lexicon: unknown driver %q", cfg.Driver)
	}
}
