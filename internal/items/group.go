package items

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/po-extractor/constants"
)

// GroupConfig reads tables whose rows wrap over several lines. A row opens
// at a match of Start and runs to the next opening match, the first Stop
// match or the end of the text.
type GroupConfig struct {
	Start  string      `json:"start"` // named groups become fields
	Stop   string      `json:"stop,omitempty"`
	Fields []FieldRule `json:"fields,omitempty"`
	Number bool        `json:"number,omitempty"` // line_no counts rows when Start gives none
}

// FieldRule fills Field from the row text when Start left it empty. Group 1
// of Pattern is the value. Match picks the occurrence: zero-based, negative
// counts from the end. From searches another field's value instead of the row.
type FieldRule struct {
	Field   string `json:"field"`
	Pattern string `json:"pattern"`
	Match   int    `json:"match,omitempty"`
	From    string `json:"from,omitempty"`
}

type fieldRule struct {
	FieldRule
	re *regexp.Regexp
}

// GroupParser recovers one item per wrapped table row.
type GroupParser struct {
	start  *regexp.Regexp
	stop   *regexp.Regexp
	names  []string
	rules  []fieldRule
	number bool
}

// NewGroupParser compiles cfg. Every pattern is case-insensitive and
// multi-line.
func NewGroupParser(cfg GroupConfig) (*GroupParser, error) {
	if strings.TrimSpace(cfg.Start) == "" {
		return nil, fmt.Errorf("group start pattern is empty")
	}
	start, err := regexp.Compile(`(?im)` + cfg.Start)
	if err != nil {
		return nil, fmt.Errorf("compile group start: %w", err)
	}
	p := &GroupParser{start: start, names: start.SubexpNames(), number: cfg.Number}
	if cfg.Stop != "" {
		if p.stop, err = regexp.Compile(`(?im)` + cfg.Stop); err != nil {
			return nil, fmt.Errorf("compile group stop: %w", err)
		}
	}
	for i, r := range cfg.Fields {
		if strings.TrimSpace(r.Field) == "" {
			return nil, fmt.Errorf("group field %d: name is empty", i)
		}
		re, err := regexp.Compile(`(?im)` + r.Pattern)
		if err != nil {
			return nil, fmt.Errorf("compile group field %q: %w", r.Field, err)
		}
		if re.NumSubexp() < 1 {
			return nil, fmt.Errorf("group field %q: pattern has no capture group", r.Field)
		}
		p.rules = append(p.rules, fieldRule{FieldRule: r, re: re})
	}
	return p, nil
}

func (p *GroupParser) Tier() constants.Tier { return constants.TierStrict }

// Parse returns one item per row, in document order.
func (p *GroupParser) Parse(text string) []LineItem {
	opens := p.start.FindAllStringSubmatchIndex(text, -1)
	var out []LineItem
	for i, m := range opens {
		begin := strings.LastIndexByte(text[:m[0]], '\n') + 1
		if i > 0 && begin < opens[i-1][1] {
			begin = m[0]
		}
		end := len(text)
		if i+1 < len(opens) {
			end = strings.LastIndexByte(text[:opens[i+1][0]], '\n') + 1
			if end < m[1] {
				end = opens[i+1][0]
			}
		}
		if p.stop != nil {
			if loc := p.stop.FindStringIndex(text[m[1]:end]); loc != nil {
				end = m[1] + loc[0]
			}
		}
		row := text[begin:end]

		fields := make(map[string]string, len(p.names)+len(p.rules))
		for g, name := range p.names {
			if g == 0 || name == "" {
				continue
			}
			fields[name] = ""
			if m[2*g] >= 0 {
				fields[name] = strings.TrimSpace(text[m[2*g]:m[2*g+1]])
			}
		}
		for _, r := range p.rules {
			if fields[r.Field] != "" {
				continue
			}
			src := row
			if r.From != "" {
				src = fields[r.From]
			}
			fields[r.Field] = r.pick(src)
		}
		if p.number && fields[constants.FieldLineNo] == "" {
			fields[constants.FieldLineNo] = strconv.Itoa(len(out) + 1)
		}

		out = append(out, LineItem{
			Fields:     fields,
			Span:       &Span{Start: begin, End: end},
			Confidence: 1.0,
			Tier:       constants.TierStrict,
		})
	}
	return out
}

func (r fieldRule) pick(s string) string {
	all := r.re.FindAllStringSubmatch(s, -1)
	i := r.Match
	if i < 0 {
		i += len(all)
	}
	if i < 0 || i >= len(all) {
		return ""
	}
	return strings.TrimSpace(all[i][1])
}
