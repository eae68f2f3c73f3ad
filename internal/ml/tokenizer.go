package ml

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/bbalet/stopwords"
	"github.com/kljensen/snowball"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// TokenizerOptions controls how raw comments are split into terms.
type TokenizerOptions struct {
	Lowercase bool
	// StopWordsLanguage is an ISO 639-1 code understood by bbalet/stopwords ("en", "id", ...).
	StopWordsLanguage string
	// StemLanguage is a snowball language name ("english", "spanish", ...).
	StemLanguage string
}

// DefaultTokenizerOptions matches the term extraction the bundled models are trained with.
func DefaultTokenizerOptions() TokenizerOptions {
	return TokenizerOptions{Lowercase: true}
}

// Tokenizer turns text into terms. It is safe for concurrent use.
type Tokenizer struct {
	opts TokenizerOptions
}

// stopWordLanguages are the base language codes bbalet/stopwords ships a list for.
// Any other code would silently fall back to the English list.
var stopWordLanguages = map[string]bool{
	"ar": true, "bg": true, "cs": true, "da": true, "de": true, "el": true, "en": true,
	"es": true, "fa": true, "fi": true, "fr": true, "hu": true, "id": true, "it": true,
	"ja": true, "km": true, "lv": true, "nl": true, "no": true, "pl": true, "pt": true,
	"ro": true, "ru": true, "sk": true, "sv": true, "th": true, "tr": true,
}

func NewTokenizer(opts TokenizerOptions) (*Tokenizer, error) {
	if opts.StopWordsLanguage != "" {
		tag, err := language.Parse(opts.StopWordsLanguage)
		if err != nil {
			return nil, fmt.Errorf("unsupported stop words language %q: %w", opts.StopWordsLanguage, err)
		}
		base, _ := tag.Base()
		if !stopWordLanguages[base.String()] {
			return nil, fmt.Errorf("unsupported stop words language %q", opts.StopWordsLanguage)
		}
		opts.StopWordsLanguage = base.String()
	}
	if opts.StemLanguage != "" {
		if _, err := snowball.Stem("testing", opts.StemLanguage, false); err != nil {
			return nil, fmt.Errorf("unsupported stem language %q: %w", opts.StemLanguage, err)
		}
	}
	return &Tokenizer{opts: opts}, nil
}

// Tokenize returns the terms of text in order of appearance. A term is a run of
// letters, digits and underscores; terms shorter than two runes are dropped. Stop
// words are removed term by term, so enabling them never changes the shape of the
// remaining terms.
func (t *Tokenizer) Tokenize(text string) []string {
	s := norm.NFKC.String(text)
	if t.opts.Lowercase {
		s = cases.Lower(language.Und).String(s)
	}

	fields := strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	})

	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if utf8.RuneCountInString(f) < 2 {
			continue
		}
		if t.isStopWord(f) {
			continue
		}
		if t.opts.StemLanguage != "" {
			if stemmed, err := snowball.Stem(f, t.opts.StemLanguage, false); err == nil && stemmed != "" {
				f = stemmed
			}
		}
		tokens = append(tokens, f)
	}
	return tokens
}

// isStopWord looks term up in the configured list. Only purely alphabetic terms
// are candidates; the lists hold words, and the library's segmenter would
// otherwise strip digits from mixed terms.
func (t *Tokenizer) isStopWord(term string) bool {
	if t.opts.StopWordsLanguage == "" {
		return false
	}
	for _, r := range term {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return strings.TrimSpace(stopwords.CleanString(term, t.opts.StopWordsLanguage, false)) == ""
}
