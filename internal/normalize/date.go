package normalize

import (
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// ISOLayout is the canonical output form of Date.
const ISOLayout = "2006-01-02"

var (
	ordinalRe = regexp.MustCompile(`(?i)(\d)(st|nd|rd|th)\b`)

	// Date-shaped substrings, tried in text order.
	dateCandidateRes = []*regexp.Regexp{
		regexp.MustCompile(`\b\d{4}[-/.]\d{1,2}[-/.]\d{1,2}\b`),
		regexp.MustCompile(`(?i)\b[A-Za-z]{3,9}\.?\s+\d{1,2}(?:st|nd|rd|th)?,?\s+\d{4}\b`),
		regexp.MustCompile(`(?i)\b\d{1,2}(?:st|nd|rd|th)?[\s-]+[A-Za-z]{3,9}\.?,?[\s-]+\d{2,4}\b`),
		regexp.MustCompile(`\b\d{1,2}[-/.]\d{1,2}[-/.]\d{2,4}\b`),
	}

	numericDateRe   = regexp.MustCompile(`^\d{1,2}[-/.]\d{1,2}[-/.]\d{2,4}$`)
	dayFirstLayouts = []string{"02/01/2006", "2/1/2006", "02/01/06", "2/1/06"}
)

// DateOptions tunes ambiguous numeric dates.
type DateOptions struct {
	// DayFirst reads "03/04/2024" as 3 April rather than March 4.
	DayFirst bool
}

// Date parses a free-form, possibly noisy date string into YYYY-MM-DD.
// It returns "" when no date can be recovered.
func Date(s string) string {
	return DateWith(s, DateOptions{})
}

// DateWith is Date with explicit options.
func DateWith(s string, opts DateOptions) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	for _, c := range candidates(s) {
		if t, ok := parseCandidate(c.text, opts); ok {
			return t.Format(ISOLayout)
		}
	}
	return ""
}

// FindDate returns the first date-shaped substring of text, normalized.
func FindDate(text string) (string, bool) {
	d := Date(text)
	return d, d != ""
}

type candidate struct {
	start int
	text  string
}

func candidates(s string) []candidate {
	var out []candidate
	for _, re := range dateCandidateRes {
		for _, loc := range re.FindAllStringIndex(s, -1) {
			out = append(out, candidate{start: loc[0], text: s[loc[0]:loc[1]]})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].start < out[j].start })
	return out
}

func parseCandidate(c string, opts DateOptions) (time.Time, bool) {
	c = ordinalRe.ReplaceAllString(strings.TrimSpace(c), "$1")
	c = strings.TrimRight(c, ",.")

	if opts.DayFirst && numericDateRe.MatchString(c) {
		norm := strings.NewReplacer("-", "/", ".", "/").Replace(c)
		for _, layout := range dayFirstLayouts {
			if t, err := time.Parse(layout, norm); err == nil {
				return t, plausible(t)
			}
		}
		return time.Time{}, false
	}

	t, err := dateparse.ParseAny(c)
	if err != nil {
		// "3 March 2024" and "03-Mar-2024" read better with spaces.
		t, err = dateparse.ParseAny(strings.ReplaceAll(c, "-", " "))
		if err != nil {
			return time.Time{}, false
		}
	}
	return t, plausible(t)
}

func plausible(t time.Time) bool {
	return t.Year() >= 1950 && t.Year() <= 2100
}
