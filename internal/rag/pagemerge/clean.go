package pagemerge

import (
	"regexp"
	"strings"
)

// punctuation mirrors the ASCII punctuation set the frontends were tuned
// against; every occurrence gets padded with spaces so terms like "usd"
// and "50,000" tokenize apart.
const punctuation = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

var (
	camelRunRe   = regexp.MustCompile(`\B([A-Z][a-z])`)
	bracketRe    = regexp.MustCompile(`[\(\[\{\}\)\]]`)
	whitespaceRe = regexp.MustCompile(`\s+`)

	mojibakeReplacer = strings.NewReplacer(
		"â€™ ", "",
		"\u00a0", " ",
		" '", "",
		"\ufffd", "",
	)

	punctuationReplacer = newPunctuationReplacer()
)

func newPunctuationReplacer() *strings.Replacer {
	pairs := make([]string, 0, 2*len(punctuation))
	for _, r := range punctuation {
		pairs = append(pairs, string(r), " "+string(r)+" ")
	}
	return strings.NewReplacer(pairs...)
}

// NormalizeQuery applies the same punctuation padding and lower-casing as
// Clean so query tokens line up with the indexed corpus. Bracket and
// camel-run rewriting are extractor repairs and are skipped for queries.
func NormalizeQuery(query string) string {
	normalized := punctuationReplacer.Replace(query)
	normalized = whitespaceRe.ReplaceAllString(normalized, " ")
	return strings.ToLower(strings.TrimSpace(normalized))
}

// Clean normalizes raw extractor text: strips mis-encoded artifacts, pads
// punctuation, splits run-together camel-cased OCR output, removes brackets,
// collapses whitespace and lower-cases.
func Clean(data string) string {
	cleaned := mojibakeReplacer.Replace(data)
	cleaned = punctuationReplacer.Replace(cleaned)
	cleaned = camelRunRe.ReplaceAllString(cleaned, " $1")
	cleaned = bracketRe.ReplaceAllString(cleaned, "")
	cleaned = whitespaceRe.ReplaceAllString(cleaned, " ")
	return strings.ToLower(strings.TrimSpace(cleaned))
}
