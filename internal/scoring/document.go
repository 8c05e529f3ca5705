// Package scoring turns a résumé and a job description into sub-scores,
// aggregates them into an assessment and assembles the final report.
package scoring

import (
	"strings"
	"sync"

	"github.com/spigell/resume-scorer/internal/lexicon"
)

// Document is one side of a comparison. Token views are derived on first use.
type Document struct {
	text string

	once   sync.Once
	tokens []string
	set    map[string]struct{}
}

func NewDocument(text string) *Document {
	return &Document{text: text}
}

func (d *Document) Text() string {
	return d.text
}

// Lower returns the lowercased raw text.
func (d *Document) Lower() string {
	return strings.ToLower(d.text)
}

func (d *Document) Tokens() []string {
	d.derive()
	return d.tokens
}

func (d *Document) TokenSet() map[string]struct{} {
	d.derive()
	return d.set
}

// Has reports whether token occurs in the document.
func (d *Document) Has(token string) bool {
	_, ok := d.TokenSet()[token]
	return ok
}

func (d *Document) derive() {
	d.once.Do(func() {
		d.tokens = lexicon.Tokenize(d.text)
		d.set = make(map[string]struct{}, len(d.tokens))
		for _, t := range d.tokens {
			d.set[t] = struct{}{}
		}
	})
}
