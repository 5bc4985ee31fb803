package patterns

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/derekparker/trie"

	"github.com/MaruTama/Mengshen-pinyin-font-sub000/ot"
)

// Store holds the validated pattern sources.
type Store struct {
	Single     []*SingleRecord // sorted by character and reading index
	Dual       *PhraseTable
	Exceptions *PhraseTable
}

// occurrence is a template seen from one of its suffixes.
type occurrence struct {
	rec    *SingleRecord
	tmpl   *Template
	offset int
}

// NewStore validates pattern sources and combines them into a store. Nil
// tables are replaced by empty ones.
//
// Validation rejects reading indices above MaxReadingIndex, two identical
// templates for one character, a template contained in a longer template of
// the same character selecting a different reading, and a phrase listed by
// more than one of the three sources.
func NewStore(single []*SingleRecord, dual, exceptions *PhraseTable) (*Store, error) {
	if dual == nil {
		dual = NewPhraseTable(Dual)
	}
	if exceptions == nil {
		exceptions = NewPhraseTable(Exception)
	}
	s := &Store{
		Single:     append([]*SingleRecord(nil), single...),
		Dual:       dual,
		Exceptions: exceptions,
	}
	sort.SliceStable(s.Single, func(i, j int) bool {
		if s.Single[i].Character != s.Single[j].Character {
			return s.Single[i].Character < s.Single[j].Character
		}
		return s.Single[i].ReadingIndex < s.Single[j].ReadingIndex
	})
	if err := s.validateSingle(); err != nil {
		return nil, err
	}
	// every phrase is owned by exactly one rule
	seen := make(map[string]string)
	for _, rec := range s.Single {
		for _, t := range rec.Templates {
			if _, ok := seen[string(t.Phrase)]; !ok {
				seen[string(t.Phrase)] = fmt.Sprintf("single-homograph pattern %c/%s", rec.Character, t.Source)
			}
		}
	}
	for _, pt := range []*PhraseTable{dual, exceptions} {
		for _, p := range pt.Phrases {
			if owner, dup := seen[p.String()]; dup {
				return nil, ot.Errorf(ot.PatternAuthoringError, p.String(),
					"phrase of %s table already listed as %s", pt.Kind, owner)
			}
			seen[p.String()] = pt.Kind.String() + " phrase"
		}
	}
	return s, nil
}

func trieKey(char rune, phrase []rune) string {
	return string(char) + "|" + string(phrase)
}

func (s *Store) validateSingle() error {
	suffixes := trie.New()
	templates := make(map[string]*SingleRecord)
	for _, rec := range s.Single {
		if rec.ReadingIndex < 0 || rec.ReadingIndex > MaxReadingIndex {
			return ot.Errorf(ot.PatternAuthoringError, fmt.Sprintf("%c/index %d", rec.Character, rec.ReadingIndex),
				"reading index exceeds %d", MaxReadingIndex)
		}
		for i := range rec.Templates {
			t := &rec.Templates[i]
			key := fmt.Sprintf("%s@%d", trieKey(rec.Character, t.Phrase), t.At)
			if other, dup := templates[key]; dup {
				return ot.Errorf(ot.PatternAuthoringError, fmt.Sprintf("%c/%s", rec.Character, t.Source),
					"duplicate template (readings %d and %d)", other.ReadingIndex, rec.ReadingIndex)
			}
			templates[key] = rec
			for o := range t.Phrase {
				k := trieKey(rec.Character, t.Phrase[o:])
				var occs []occurrence
				if node, ok := suffixes.Find(k); ok {
					occs = node.Meta().([]occurrence)
				}
				suffixes.Add(k, append(occs, occurrence{rec: rec, tmpl: t, offset: o}))
			}
		}
	}
	for _, rec := range s.Single {
		for i := range rec.Templates {
			t := &rec.Templates[i]
			for _, k := range suffixes.PrefixSearch(trieKey(rec.Character, t.Phrase)) {
				node, _ := suffixes.Find(k)
				for _, occ := range node.Meta().([]occurrence) {
					if len(occ.tmpl.Phrase) <= len(t.Phrase) || occ.offset+t.At != occ.tmpl.At {
						continue
					}
					if occ.rec.ReadingIndex != rec.ReadingIndex {
						return ot.Errorf(ot.PatternAuthoringError, fmt.Sprintf("%c/%s", rec.Character, t.Source),
							"template is contained in %s selecting a different reading (%d vs %d)",
							occ.tmpl.Source, rec.ReadingIndex, occ.rec.ReadingIndex)
					}
				}
			}
		}
	}
	return nil
}

// ReadingIndices returns the reading indices used by single-homograph
// patterns, ascending.
func (s *Store) ReadingIndices() []int {
	seen := make(map[int]bool)
	var indices []int
	for _, rec := range s.Single {
		if !seen[rec.ReadingIndex] {
			seen[rec.ReadingIndex] = true
			indices = append(indices, rec.ReadingIndex)
		}
	}
	sort.Ints(indices)
	return indices
}

// Records returns the single-homograph records with a reading index.
func (s *Store) Records(idx int) []*SingleRecord {
	var recs []*SingleRecord
	for _, rec := range s.Single {
		if rec.ReadingIndex == idx {
			recs = append(recs, rec)
		}
	}
	return recs
}

// Len returns the total number of templates and phrases.
func (s *Store) Len() int {
	n := len(s.Dual.Phrases) + len(s.Exceptions.Phrases)
	for _, rec := range s.Single {
		n += len(rec.Templates)
	}
	return n
}

// Load reads pattern sources from files. An empty path stands for an empty
// source.
func Load(singlePath, dualPath, exceptionsPath string) (*Store, error) {
	var single []*SingleRecord
	err := withFile(singlePath, func(r io.Reader) (err error) {
		single, err = LoadSingle(r)
		return
	})
	if err != nil {
		return nil, err
	}
	var dual, exceptions *PhraseTable
	err = withFile(dualPath, func(r io.Reader) (err error) {
		dual, err = LoadPhraseTable(r, Dual)
		return
	})
	if err != nil {
		return nil, err
	}
	err = withFile(exceptionsPath, func(r io.Reader) (err error) {
		exceptions, err = LoadPhraseTable(r, Exception)
		return
	})
	if err != nil {
		return nil, err
	}
	return NewStore(single, dual, exceptions)
}

func withFile(path string, load func(io.Reader) error) error {
	if path == "" {
		return nil
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := load(f); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}
