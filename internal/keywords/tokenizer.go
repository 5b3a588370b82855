package keywords

import (
	"strings"

	"github.com/jdkato/prose/v2"
)

// Tokenizer splits text into word tokens with punctuation separated out.
type Tokenizer interface {
	Tokenize(text string) []string
}

// ProseTokenizer uses prose's rule-based word tokenizer (contractions such
// as "don't" become "do" + "n't").
type ProseTokenizer struct{}

func NewProseTokenizer() ProseTokenizer { return ProseTokenizer{} }

func (ProseTokenizer) Tokenize(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	doc, err := prose.NewDocument(text,
		prose.WithSegmentation(false),
		prose.WithTagging(false),
		prose.WithExtraction(false),
	)
	if err != nil {
		return strings.Fields(text)
	}
	toks := doc.Tokens()
	out := make([]string, 0, len(toks))
	for _, t := range toks {
		if t.Text != "" {
			out = append(out, t.Text)
		}
	}
	return out
}
