package normalize

import (
	"regexp"
	"strings"
)

var (
	karatRe     = regexp.MustCompile(`(?i)\b\d{1,2}\s?K(?:T\b)?`)
	metalWordRe = regexp.MustCompile(`(?i)\b(PT\d{0,3}|PLAT(?:INUM)?|SILVER|STERLING|925)\b`)
	colorCodeRe = regexp.MustCompile(`(?i)\b(\d{1,2}K)?(WG|YG|RG|PG|TT|W|Y|R)\b`)
	colorWordRe = regexp.MustCompile(`(?i)\b(WHITE|YELLOW|ROSE|PINK|TWO[\s-]?TONE)\b`)
	colorByCode = map[string]string{"WG": "White", "W": "White", "YG": "Yellow", "Y": "Yellow", "RG": "Rose", "R": "Rose", "PG": "Rose", "TT": "Two-Tone"}
	colorByWord = map[string]string{"WHITE": "White", "YELLOW": "Yellow", "ROSE": "Rose", "PINK": "Rose"}
)

// SplitMetal splits a metal descriptor such as "14K WG" or "10KT YELLOW" into
// its metal type and colour. Either part may be "".
func SplitMetal(s string) (metalType, color string) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", ""
	}
	m := karatRe.FindString(s)
	if m == "" {
		m = metalWordRe.FindString(s)
	}
	if m != "" {
		metalType = strings.ToUpper(strings.ReplaceAll(m, " ", ""))
		if strings.HasSuffix(metalType, "KT") {
			metalType = strings.TrimSuffix(metalType, "T")
		}
		if strings.HasPrefix(metalType, "PLAT") {
			metalType = "PT"
		}
	}
	color = InferMetalColor(s)
	if metalType == "" && color == "" {
		return s, ""
	}
	return metalType, color
}

// InferMetalColor finds a gold colour in free text from codes (WG, YG, RG)
// or words (white, yellow, rose).
func InferMetalColor(text string) string {
	if m := colorWordRe.FindString(text); m != "" {
		up := strings.ToUpper(m)
		if strings.HasPrefix(up, "TWO") {
			return "Two-Tone"
		}
		return colorByWord[up]
	}
	for _, sm := range colorCodeRe.FindAllStringSubmatch(text, -1) {
		code := strings.ToUpper(sm[2])
		// Single-letter codes only count when glued to a karat ("14KW").
		if len(code) == 1 && sm[1] == "" {
			continue
		}
		if c, ok := colorByCode[code]; ok {
			return c
		}
	}
	return ""
}
