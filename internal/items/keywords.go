package items

import (
	"strings"
	"unicode"

	"github.com/cloudflare/ahocorasick"
)

// keywordSet matches whole words case-insensitively with one automaton pass.
type keywordSet struct {
	m *ahocorasick.Matcher
}

func newKeywordSet(words []string) *keywordSet {
	var dict []string
	for _, w := range words {
		if w = strings.TrimSpace(w); w != "" {
			dict = append(dict, " "+strings.ToUpper(w)+" ")
		}
	}
	if len(dict) == 0 {
		return &keywordSet{}
	}
	return &keywordSet{m: ahocorasick.NewStringMatcher(dict)}
}

// ContainsWord reports whether any keyword appears in s as a whole word.
func (k *keywordSet) ContainsWord(s string) bool {
	if k == nil || k.m == nil {
		return false
	}
	norm := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToUpper(r)
		}
		return ' '
	}, s)
	return len(k.m.MatchThreadSafe([]byte(" "+norm+" "))) > 0
}
