package filter

import "strings"

// defaultStopWords is the built-in disallowed term list; STOP_WORDS in the
// environment replaces it entirely.
var defaultStopWords = []string{
	"дурак",
	"идиот",
	"черт",
	"тупой",
	"тварь",
	"придурок",
	"псих",
	"урод",
	"хрен",
	"чмо",
	"лох",
}

type Verdict struct {
	Blocked bool
	Match   string
}

// Filter is read-only after New and safe for concurrent use.
type Filter struct {
	words []string
}

func New(words []string) *Filter {
	if len(words) == 0 {
		words = defaultStopWords
	}
	lowered := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			lowered = append(lowered, w)
		}
	}
	return &Filter{words: lowered}
}

// Check reports whether text contains any stop word, case-insensitively.
func (f *Filter) Check(text string) Verdict {
	lowered := strings.ToLower(text)
	for _, w := range f.words {
		if strings.Contains(lowered, w) {
			return Verdict{Blocked: true, Match: w}
		}
	}
	return Verdict{}
}
