package items

import (
	"log/slog"

	"github.com/joseph-ayodele/po-extractor/constants"
)

// Parser recovers line items from document text. An empty result means the
// layout was not recognised; it is not an error.
type Parser interface {
	Parse(text string) []LineItem
	Tier() constants.Tier
}

// Result is Strict(items), Loose(items) or Empty.
type Result struct {
	Tier  constants.Tier
	Items []LineItem
}

func Strict(items []LineItem) Result { return Result{Tier: constants.TierStrict, Items: items} }
func Loose(items []LineItem) Result  { return Result{Tier: constants.TierLoose, Items: items} }
func Empty() Result                  { return Result{Tier: constants.TierEmpty} }

// IsEmpty reports whether no parser produced items.
func (r Result) IsEmpty() bool { return len(r.Items) == 0 }

// Chain tries parsers in order and stops at the first non-empty result.
type Chain struct {
	parsers []Parser
	logger  *slog.Logger
}

func NewChain(logger *slog.Logger, parsers ...Parser) *Chain {
	if logger == nil {
		logger = slog.Default()
	}
	return &Chain{parsers: parsers, logger: logger}
}

// Parse runs the chain over text.
func (c *Chain) Parse(text string) Result {
	for i, p := range c.parsers {
		found := p.Parse(text)
		if len(found) > 0 {
			c.logger.Info("items.parse.ok", "tier", p.Tier(), "items", len(found))
			return Result{Tier: p.Tier(), Items: found}
		}
		if i < len(c.parsers)-1 {
			c.logger.Info("items."+string(p.Tier())+".empty", "next", c.parsers[i+1].Tier())
		}
	}
	c.logger.Info("items.parse.empty", "parsers", len(c.parsers))
	return Empty()
}
