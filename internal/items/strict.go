package items

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/joseph-ayodele/po-extractor/constants"
)

// StrictParser matches one rigid multi-line layout. Named capture groups
// become item fields; unnamed groups are ignored.
type StrictParser struct {
	re    *regexp.Regexp
	names []string
}

// NewStrictParser compiles pattern case-insensitively in multi-line mode.
func NewStrictParser(pattern string) (*StrictParser, error) {
	if strings.TrimSpace(pattern) == "" {
		return nil, fmt.Errorf("strict pattern is empty")
	}
	re, err := regexp.Compile(`(?im)` + pattern)
	if err != nil {
		return nil, fmt.Errorf("compile strict pattern: %w", err)
	}
	return &StrictParser{re: re, names: re.SubexpNames()}, nil
}

func (p *StrictParser) Tier() constants.Tier { return constants.TierStrict }

// Parse returns one item per non-overlapping match, in document order.
func (p *StrictParser) Parse(text string) []LineItem {
	var out []LineItem
	for _, m := range p.re.FindAllStringSubmatchIndex(text, -1) {
		fields := make(map[string]string, len(p.names))
		for i, name := range p.names {
			if i == 0 || name == "" {
				continue
			}
			if m[2*i] < 0 {
				fields[name] = ""
				continue
			}
			fields[name] = strings.TrimSpace(text[m[2*i]:m[2*i+1]])
		}
		out = append(out, LineItem{
			Fields:     fields,
			Span:       &Span{Start: m[0], End: m[1]},
			Confidence: 1.0,
			Tier:       constants.TierStrict,
		})
	}
	return out
}
