package items

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/po-extractor/constants"
	"github.com/joseph-ayodele/po-extractor/internal/normalize"
)

// LooseConfig holds the per-vendor heuristics of the block parser.
type LooseConfig struct {
	VendorStyle string   `json:"vendor_style,omitempty"` // group 1 is the code
	MetalSize   string   `json:"metal_size,omitempty"`   // groups: metal, suffix, size
	SKU         string   `json:"sku,omitempty"`          // group 1 is a candidate token
	QtyLabel    string   `json:"qty_label,omitempty"`
	Comments    string   `json:"comments,omitempty"`
	Keywords    []string `json:"keywords,omitempty"`  // lines containing these are not descriptions
	QtyBound    float64  `json:"qty_bound,omitempty"` // fallback quantities above this are rejected
	MinDescLen  int      `json:"min_desc_len,omitempty"`
	BlockGap    int      `json:"block_gap,omitempty"` // blank lines that end a block, default 2
}

// Defaults used when a LooseConfig field is empty.
const (
	DefaultVendorStyle = `\b(IGR[-\s]?\d{2,}|PR[0-9A-Z]{3,}|REF\s*#\s*\d{3,}|\d{5,})\b`
	DefaultMetalSize   = `([A-Za-z0-9]+)\s*[|/-]\s*([A-Za-z0-9]{1,5})\s*[|/-]\s*([0-9]+(?:\.[0-9]+)?)`
	DefaultSKU         = `\b([A-Z0-9]{6,})\b`
	DefaultQtyLabel    = `\b(?:ORDER|QTY|QUANTITY)\b`
	DefaultQtyBound    = 100
	DefaultBlockGap    = 2
)

// DefaultKeywords are header and label words that disqualify a description line.
var DefaultKeywords = []string{"PO", "TRANS", "TOTAL", "PAGE", "FROM", "TO", "SHIP", "REF", "LN", "ORDER", "QTY", "STYLE"}

var (
	numberRe    = regexp.MustCompile(`\b[0-9]+(?:\.[0-9]+)?\b`)
	refPrefixRe = regexp.MustCompile(`(?i)^REF\s*#\s*`)
)

// LooseParser recovers partial items from blank-line separated blocks.
type LooseParser struct {
	cfg         LooseConfig
	blockSplit  *regexp.Regexp
	vendorStyle *regexp.Regexp
	metalSize   *regexp.Regexp
	sku         *regexp.Regexp
	qtyLabel    *regexp.Regexp
	comments    *regexp.Regexp
	keywords    *keywordSet
}

// NewLooseParser compiles cfg, filling defaults for empty fields.
func NewLooseParser(cfg LooseConfig) (*LooseParser, error) {
	if cfg.VendorStyle == "" {
		cfg.VendorStyle = DefaultVendorStyle
	}
	if cfg.MetalSize == "" {
		cfg.MetalSize = DefaultMetalSize
	}
	if cfg.SKU == "" {
		cfg.SKU = DefaultSKU
	}
	if cfg.QtyLabel == "" {
		cfg.QtyLabel = DefaultQtyLabel
	}
	if cfg.QtyBound <= 0 {
		cfg.QtyBound = DefaultQtyBound
	}
	if cfg.MinDescLen <= 0 {
		cfg.MinDescLen = 3
	}
	if cfg.BlockGap <= 0 {
		cfg.BlockGap = DefaultBlockGap
	}
	if cfg.Keywords == nil {
		cfg.Keywords = DefaultKeywords
	}

	p := &LooseParser{
		cfg:        cfg,
		blockSplit: regexp.MustCompile(fmt.Sprintf(`\n(?:[ \t]*\n){%d,}`, cfg.BlockGap)),
		keywords:   newKeywordSet(cfg.Keywords),
	}
	var err error
	// vendor codes and SKUs are upper-case; those patterns stay case-sensitive
	if p.vendorStyle, err = regexp.Compile(cfg.VendorStyle); err != nil {
		return nil, fmt.Errorf("compile vendor style: %w", err)
	}
	if p.metalSize, err = regexp.Compile(`(?i)` + cfg.MetalSize); err != nil {
		return nil, fmt.Errorf("compile metal/size: %w", err)
	}
	if p.sku, err = regexp.Compile(cfg.SKU); err != nil {
		return nil, fmt.Errorf("compile sku: %w", err)
	}
	if p.qtyLabel, err = regexp.Compile(`(?i)` + cfg.QtyLabel); err != nil {
		return nil, fmt.Errorf("compile qty label: %w", err)
	}
	if cfg.Comments != "" {
		if p.comments, err = regexp.Compile(`(?im)` + cfg.Comments); err != nil {
			return nil, fmt.Errorf("compile comments: %w", err)
		}
	}
	return p, nil
}

func (p *LooseParser) Tier() constants.Tier { return constants.TierLoose }

// Parse scans every block and returns deduplicated items. It never fails.
func (p *LooseParser) Parse(text string) []LineItem {
	var out []LineItem
	for _, b := range splitBlocks(p.blockSplit, text) {
		for _, prod := range p.splitProducts(b) {
			if it, ok := p.parseBlock(prod.text, prod.start); ok {
				out = append(out, it)
			}
		}
	}
	return Dedupe(out)
}

type block struct {
	start int
	text  string
}

// splitBlocks splits text at every match of sep, keeping offsets.
func splitBlocks(sep *regexp.Regexp, text string) []block {
	var out []block
	prev := 0
	for _, loc := range sep.FindAllStringIndex(text, -1) {
		out = append(out, block{start: prev, text: text[prev:loc[0]]})
		prev = loc[1]
	}
	out = append(out, block{start: prev, text: text[prev:]})
	return out
}

// styleLeads returns the vendor-style matches that open a line. Numbers
// running on into a decimal part are amounts, not codes.
func (p *LooseParser) styleLeads(b string) [][]int {
	var out [][]int
	for _, m := range p.vendorStyle.FindAllStringSubmatchIndex(b, -1) {
		if m[1] < len(b) && (b[m[1]] == '.' || b[m[1]] == ',') {
			continue
		}
		ls := strings.LastIndexByte(b[:m[0]], '\n') + 1
		if strings.TrimSpace(b[ls:m[0]]) == "" {
			out = append(out, m)
		}
	}
	return out
}

// leadCodes returns the distinct vendor-style codes opening lines of b.
func (p *LooseParser) leadCodes(b string) []string {
	var codes []string
	for _, m := range p.styleLeads(b) {
		s, e := groupOrWhole(m, 1)
		if c := b[s:e]; !isOneOf(c, codes) {
			codes = append(codes, c)
		}
	}
	return codes
}

// splitProducts cuts a block before each line opening with a vendor-style
// code when the block holds more than one distinct code. Lines ahead of the
// first code stay with the first product.
func (p *LooseParser) splitProducts(b block) []block {
	if len(p.leadCodes(b.text)) < 2 {
		return []block{b}
	}
	var out []block
	prev := 0
	for _, m := range p.styleLeads(b.text)[1:] {
		cut := strings.LastIndexByte(b.text[:m[0]], '\n') + 1
		if cut <= prev {
			continue
		}
		out = append(out, block{start: b.start + prev, text: b.text[prev:cut]})
		prev = cut
	}
	return append(out, block{start: b.start + prev, text: b.text[prev:]})
}

// hasSignal requires a vendor style, metal/size or SKU-shaped token.
func (p *LooseParser) hasSignal(b string) bool {
	return p.vendorStyle.MatchString(b) || p.metalSize.MatchString(b) || p.sku.MatchString(b)
}

func (p *LooseParser) parseBlock(b string, offset int) (LineItem, bool) {
	if strings.TrimSpace(b) == "" || !p.hasSignal(b) {
		return LineItem{}, false
	}

	fields := map[string]string{}
	var claimed [][]int // identifier spans excluded from quantity search

	if m := p.vendorStyle.FindStringSubmatchIndex(b); m != nil {
		s, e := groupOrWhole(m, 1)
		fields[constants.FieldVendorStyle] = strings.TrimSpace(refPrefixRe.ReplaceAllString(b[s:e], ""))
		claimed = append(claimed, []int{s, e})
	}

	if m := p.metalSize.FindStringSubmatchIndex(b); m != nil {
		fields[constants.FieldMetal] = group(b, m, 1)
		fields[constants.FieldSuffix] = group(b, m, 2)
		fields[constants.FieldSize] = group(b, m, 3)
		claimed = append(claimed, []int{m[0], m[1]})
	}

	if sku, loc := p.pickSKU(b, append(p.leadCodes(b), fields[constants.FieldVendorStyle])); sku != "" {
		fields[constants.FieldSKU] = sku
		claimed = append(claimed, loc)
	}

	fields[constants.FieldQuantity] = p.pickQuantity(b, claimed)
	fields[constants.FieldDescription] = p.pickDescription(b, fields[constants.FieldVendorStyle], fields[constants.FieldSKU])

	if p.comments != nil {
		if m := p.comments.FindStringSubmatchIndex(b); m != nil {
			s, e := groupOrWhole(m, 1)
			fields[constants.FieldComments] = strings.TrimSpace(b[s:e])
		}
	}

	it := LineItem{
		Fields: fields,
		Block:  &Span{Start: offset, End: offset + len(b)},
		Tier:   constants.TierLoose,
	}
	if !it.HasAnchor() {
		return LineItem{}, false
	}
	it.Confidence = looseConfidence(fields)
	return it, true
}

// pickSKU prefers tokens with both a letter and a digit over pure numbers,
// and never returns a vendor-style code.
func (p *LooseParser) pickSKU(b string, styles []string) (string, []int) {
	var numeric string
	var numericLoc []int
	for _, m := range p.sku.FindAllStringSubmatchIndex(b, -1) {
		s, e := groupOrWhole(m, 1)
		tok := b[s:e]
		if isOneOf(tok, styles) {
			continue
		}
		letter, digit := classify(tok)
		if letter && digit {
			return tok, []int{s, e}
		}
		if digit && !letter && numeric == "" {
			numeric, numericLoc = tok, []int{s, e}
		}
	}
	return numeric, numericLoc
}

// pickQuantity prefers a number on a QTY/ORDER/QUANTITY line, else the last
// number in the block not above the sanity bound.
func (p *LooseParser) pickQuantity(b string, claimed [][]int) string {
	for _, line := range strings.Split(b, "\n") {
		if loc := p.qtyLabel.FindStringIndex(line); loc != nil {
			if n := numberRe.FindString(line[loc[1]:]); n != "" {
				return normalize.Number(n, normalize.DotDecimal)
			}
			if n := numberRe.FindString(line); n != "" {
				return normalize.Number(n, normalize.DotDecimal)
			}
		}
	}

	bound := decimal.NewFromFloat(p.cfg.QtyBound)
	nums := numberRe.FindAllStringIndex(b, -1)
	for i := len(nums) - 1; i >= 0; i-- {
		s, e := nums[i][0], nums[i][1]
		if within(s, e, claimed) || partOfWord(b, s, e) {
			continue
		}
		d, err := decimal.NewFromString(b[s:e])
		if err != nil || d.IsZero() || d.GreaterThan(bound) {
			continue
		}
		return normalize.Format(d)
	}
	return ""
}

// pickDescription returns the first plausible product line. Lines holding
// nothing but an already recovered code are skipped.
func (p *LooseParser) pickDescription(b string, codes ...string) string {
	for _, line := range strings.Split(b, "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if len(line) < p.cfg.MinDescLen || isOneOf(line, codes) {
			continue
		}
		if p.keywords.ContainsWord(line) || p.metalSize.MatchString(line) {
			continue
		}
		if letter, _ := classify(line); !letter {
			continue
		}
		return line
	}
	return ""
}

// looseConfidence scores how complete a recovered item is.
func looseConfidence(f map[string]string) float64 {
	score := 0.2
	if f[constants.FieldVendorStyle] != "" {
		score += 0.2
	}
	if f[constants.FieldSKU] != "" {
		score += 0.2
	}
	if f[constants.FieldSize] != "" {
		score += 0.15
	}
	if f[constants.FieldQuantity] != "" {
		score += 0.15
	}
	if f[constants.FieldDescription] != "" {
		score += 0.1
	}
	if score > 1.0 {
		score = 1.0
	}
	return score
}

func groupOrWhole(m []int, g int) (int, int) {
	if len(m) > 2*g+1 && m[2*g] >= 0 {
		return m[2*g], m[2*g+1]
	}
	return m[0], m[1]
}

func group(s string, m []int, g int) string {
	if len(m) <= 2*g+1 || m[2*g] < 0 {
		return ""
	}
	return strings.TrimSpace(s[m[2*g]:m[2*g+1]])
}

func classify(s string) (letter, digit bool) {
	for _, r := range s {
		switch {
		case unicode.IsLetter(r):
			letter = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return letter, digit
}

func isOneOf(s string, set []string) bool {
	for _, c := range set {
		if c != "" && s == c {
			return true
		}
	}
	return false
}

func within(s, e int, spans [][]int) bool {
	for _, sp := range spans {
		if s >= sp[0] && e <= sp[1] {
			return true
		}
	}
	return false
}

// partOfWord reports whether the number at [s,e) is glued to letters, as in
// "14K" or "PR123".
func partOfWord(b string, s, e int) bool {
	if s > 0 && isLetterByte(b[s-1]) {
		return true
	}
	return e < len(b) && isLetterByte(b[e])
}

func isLetterByte(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}
