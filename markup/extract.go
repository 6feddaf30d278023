package markup

import (
	"github.com/templet-xyz/go-templet/cfg"
)

// ExtractData parses contract text with a compiled grammar and returns the
// single structured value it derives. The text is normalized exactly like
// the chunk literals the grammar was built from. A fresh parser instance is
// constructed for every call; parsers are never reused.
func ExtractData(text string, g *cfg.Grammar) (any, error) {
	results, err := g.NewParser().Parse(NormalizeText(text))
	if err != nil {
		return nil, err
	}
	if len(results) != 1 {
		return nil, &cfg.AmbiguousParseError{Candidates: len(results)}
	}
	return results[0], nil
}
