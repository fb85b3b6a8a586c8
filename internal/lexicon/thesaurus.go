package lexicon

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

//go:embed thesaurus.yaml
var bundledThesaurus []byte

// Group is one synonym set: lemmas that share a meaning.
type Group []string

type thesaurusDoc struct {
	Synsets []Group `yaml:"synsets"`
}

// ParseGroups decodes a thesaurus YAML document of the form
//
//	synsets:
//	  - [car, auto, automobile]
//	  - [run, operate, manage]
func ParseGroups(r io.Reader) ([]Group, error) {
	var doc thesaurusDoc
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, eris.Wrap(err, "lexicon: decode thesaurus")
	}
	return doc.Synsets, nil
}

// Thesaurus is an immutable in-memory synonym dictionary.
type Thesaurus struct {
	groups   [][]string
	byLemma  map[string][]int
	byStem   map[string][]int
	stemming bool
}

// NewThesaurus indexes groups. Lemmas are normalized; empty lemmas and empty
// groups are dropped.
func NewThesaurus(groups []Group, stemming bool) *Thesaurus {
	t := &Thesaurus{
		byLemma:  make(map[string][]int),
		byStem:   make(map[string][]int),
		stemming: stemming,
	}
	for _, g := range groups {
		lemmas := normalizeGroup(g)
		if len(lemmas) == 0 {
			continue
		}

		id := len(t.groups)
		t.groups = append(t.groups, lemmas)
		stems := make(map[string]struct{}, len(lemmas))
		for _, l := range lemmas {
			t.byLemma[l] = append(t.byLemma[l], id)
			s := Stem(l)
			if _, dup := stems[s]; dup {
				continue
			}
			stems[s] = struct{}{}
			t.byStem[s] = append(t.byStem[s], id)
		}
	}
	return t
}

// Embedded returns the thesaurus bundled with the binary.
func Embedded(stemming bool) (*Thesaurus, error) {
	groups, err := ParseGroups(bytes.NewReader(bundledThesaurus))
	if err != nil {
		return nil, eris.Wrap(err, "lexicon: bundled thesaurus")
	}
	return NewThesaurus(groups, stemming), nil
}

// LoadThesaurus reads a thesaurus YAML file.
func LoadThesaurus(path string, stemming bool) (*Thesaurus, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "lexicon: open %s", path)
	}
	defer f.Close()

	groups, err := ParseGroups(f)
	if err != nil {
		return nil, err
	}
	return NewThesaurus(groups, stemming), nil
}

// Len returns the number of synonym groups.
func (t *Thesaurus) Len() int { return len(t.groups) }

// Groups returns a copy of the indexed synonym groups.
func (t *Thesaurus) Groups() []Group {
	out := make([]Group, len(t.groups))
	for i, g := range t.groups {
		out[i] = append(Group(nil), g...)
	}
	return out
}

// SynonymsOf returns the union of every group containing word. When no group
// holds the word itself and stemming is on, groups holding a lemma with the
// same stem are used instead.
func (t *Thesaurus) SynonymsOf(_ context.Context, word string) (Set, error) {
	key := Normalize(word)
	out := Set{}
	if key == "" {
		return out, nil
	}

	ids := t.byLemma[key]
	if len(ids) == 0 && t.stemming {
		ids = t.byStem[Stem(key)]
	}
	for _, id := range ids {
		for _, l := range t.groups[id] {
			out[l] = struct{}{}
		}
	}
	return out, nil
}

// normalizeGroup normalizes lemmas, dropping empty and duplicate entries.
func normalizeGroup(g Group) []string {
	lemmas := make([]string, 0, len(g))
	seen := make(map[string]struct{}, len(g))
	for _, l := range g {
		n := Normalize(l)
		if n == "" {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		lemmas = append(lemmas, n)
	}
	return lemmas
}
