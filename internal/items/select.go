package items

import (
	"sort"

	"github.com/joseph-ayodele/po-extractor/constants"
)

// Score rates how much of a priced line an item carries.
func Score(it LineItem) int {
	s := 0
	if it.Get(constants.FieldQuantity) != "" {
		s += 2
	}
	if it.Get(constants.FieldUnitPrice) != "" {
		s += 3
	}
	if it.Get(constants.FieldAmount) != "" {
		s += 3
	}
	if it.Get(constants.FieldLineDate) != "" {
		s++
	}
	if len(it.Get(constants.FieldSKU)) >= 3 {
		s++
	}
	if len(it.Get(constants.FieldDescription)) < 5 {
		s--
	}
	return s
}

// SelectOptions configures SelectBest.
type SelectOptions struct {
	MinScore   int  `json:"min_score,omitempty"`   // default 3
	SingleBest bool `json:"single_best,omitempty"` // keep only the top item
}

// SelectBest keeps items that score at least MinScore or carry both a price
// and a quantity, collapses duplicates keeping the higher score, and orders
// the rest by score, then amount presence, then document position.
func SelectBest(in []LineItem, opts SelectOptions) []LineItem {
	if opts.MinScore == 0 {
		opts.MinScore = 3
	}

	type scored struct {
		it    LineItem
		score int
		pos   int
	}
	byKey := map[Key]int{}
	var kept []scored
	for i, it := range in {
		sc := Score(it)
		priced := it.Get(constants.FieldUnitPrice) != "" && it.Get(constants.FieldQuantity) != ""
		if sc < opts.MinScore && !priced {
			continue
		}
		pos := i
		if at := it.Position(); at >= 0 {
			pos = at
		}
		k := it.Key()
		if j, ok := byKey[k]; ok {
			if sc > kept[j].score {
				kept[j] = scored{it: it, score: sc, pos: pos}
			}
			continue
		}
		byKey[k] = len(kept)
		kept = append(kept, scored{it: it, score: sc, pos: pos})
	}

	sort.SliceStable(kept, func(a, b int) bool {
		if kept[a].score != kept[b].score {
			return kept[a].score > kept[b].score
		}
		ha := kept[a].it.Get(constants.FieldAmount) != ""
		hb := kept[b].it.Get(constants.FieldAmount) != ""
		if ha != hb {
			return ha
		}
		return kept[a].pos < kept[b].pos
	})

	out := make([]LineItem, 0, len(kept))
	for _, s := range kept {
		out = append(out, s.it)
	}
	if opts.SingleBest && len(out) > 1 {
		out = out[:1]
	}
	return out
}

// Selecting wraps a parser and filters its output through SelectBest.
type Selecting struct {
	Parser
	Options SelectOptions
}

func (s Selecting) Parse(text string) []LineItem {
	return SelectBest(s.Parser.Parse(text), s.Options)
}
