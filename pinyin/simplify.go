package pinyin

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/unicode/runenames"
)

// letterTokens maps every letter of the pinyin alphabet to its ASCII token.
// Tone-marked vowels carry the tone number as a trailing digit.
//
// Letters are NFC strings. Most are a single code point, but some tone
// marks have no precomposed form, e.g. ê̄ is ê followed by U+0304.
// Plain `v` is not part of the alphabet: it is the token of `ü`.
var letterTokens = map[string]string{
	"ā": "a1", "á": "a2", "ǎ": "a3", "à": "a4",
	"ē": "e1", "é": "e2", "ě": "e3", "è": "e4",
	"ī": "i1", "í": "i2", "ǐ": "i3", "ì": "i4",
	"ō": "o1", "ó": "o2", "ǒ": "o3", "ò": "o4",
	"ū": "u1", "ú": "u2", "ǔ": "u3", "ù": "u4",
	"ü": "v", "ǖ": "v1", "ǘ": "v2", "ǚ": "v3", "ǜ": "v4",
	"ê": "E", "ê̄": "E1", "ế": "E2", "ê̌": "E3", "ề": "E4",
	"n̄": "n1", "ń": "n2", "ň": "n3", "ǹ": "n4",
	"m̄": "m1", "ḿ": "m2", "m̌": "m3", "m̀": "m4",
}

// maxLetterRunes is the length of the longest letter in code points.
const maxLetterRunes = 2

var tokenLetters map[string]string

func init() {
	for r := 'a'; r <= 'z'; r++ {
		if r != 'v' {
			letterTokens[string(r)] = string(r)
		}
	}
	tokenLetters = make(map[string]string, len(letterTokens))
	for l, tok := range letterTokens {
		if l != norm.NFC.String(l) || utf8.RuneCountInString(l) > maxLetterRunes {
			panic(fmt.Sprintf("pinyin: letter %q is not a normalized grapheme", l))
		}
		if _, dup := tokenLetters[tok]; dup {
			panic(fmt.Sprintf("pinyin: token %q assigned twice", tok))
		}
		tokenLetters[tok] = l
	}
}

// LetterToken returns the ASCII token of a single pinyin letter.
func LetterToken(letter string) (string, bool) {
	tok, ok := letterTokens[norm.NFC.String(letter)]
	return tok, ok
}

// Letters returns the supported alphabet in code point order.
func Letters() []string {
	letters := make([]string, 0, len(letterTokens))
	for l := range letterTokens {
		letters = append(letters, l)
	}
	sort.Strings(letters)
	return letters
}

// nextLetter matches the longest letter at the start of s, which must be
// NFC-normalized. It returns the letter and its token.
func nextLetter(s string) (string, string, bool) {
	end, n := 0, 0
	var letter, tok string
	for n < maxLetterRunes && end < len(s) {
		_, size := utf8.DecodeRuneInString(s[end:])
		end += size
		n++
		if t, ok := letterTokens[s[:end]]; ok {
			letter, tok = s[:end], t
		}
	}
	return letter, tok, letter != ""
}

// scan calls emit for every letter of a pronunciation. A letter outside the
// pinyin alphabet is an error; it is never dropped.
func scan(pronunciation string, emit func(letter, token string)) error {
	s := norm.NFC.String(pronunciation)
	for pos := 0; s != ""; pos++ {
		letter, tok, ok := nextLetter(s)
		if !ok {
			r, _ := utf8.DecodeRuneInString(s)
			return fmt.Errorf("unsupported letter %q (U+%04X %s) at position %d of %q",
				r, r, runenames.Name(r), pos, pronunciation)
		}
		emit(letter, tok)
		s = s[len(letter):]
	}
	return nil
}

// Simplify maps a tone-marked pinyin syllable to its ASCII key, e.g.
//
//	wěi → we3i
//	lǜ  → lv4
//	ê̄   → E1
//
// Input is NFC-normalized first, so decomposed tone marks are accepted.
func Simplify(pronunciation string) (string, error) {
	var b strings.Builder
	err := scan(pronunciation, func(_, tok string) {
		b.WriteString(tok)
	})
	if err != nil {
		return "", err
	}
	return b.String(), nil
}

// Tokens splits a pronunciation into the tokens of its letters, in order.
func Tokens(pronunciation string) ([]string, error) {
	var tokens []string
	err := scan(pronunciation, func(_, tok string) {
		tokens = append(tokens, tok)
	})
	if err != nil {
		return nil, err
	}
	if tokens == nil {
		tokens = []string{}
	}
	return tokens, nil
}

// Expand is the inverse of Simplify.
func Expand(key string) (string, error) {
	var b strings.Builder
	for i := 0; i < len(key); {
		// a token is a letter, optionally followed by a tone digit
		if i+1 < len(key) && key[i+1] >= '0' && key[i+1] <= '9' {
			if l, ok := tokenLetters[key[i:i+2]]; ok {
				b.WriteString(l)
				i += 2
				continue
			}
		}
		l, ok := tokenLetters[key[i:i+1]]
		if !ok {
			return "", fmt.Errorf("malformed pronunciation key %q at position %d", key, i)
		}
		b.WriteString(l)
		i++
	}
	return b.String(), nil
}
