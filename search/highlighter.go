package search

import (
	"sort"
	"strings"
	"unicode"

	goahocorasick "github.com/anknown/ahocorasick"
)

// Highlighter marks every occurrence of the query words in a text,
// ignoring case.
type Highlighter struct {
	matcher *goahocorasick.Machine
}

// NewHighlighter builds the automaton for the words of query. A blank query
// gives a highlighter that leaves texts untouched.
func NewHighlighter(query string) (*Highlighter, error) {
	words := strings.Fields(query)
	if len(words) == 0 {
		return &Highlighter{}, nil
	}
	patterns := make([][]rune, 0, len(words))
	seen := make(map[string]bool, len(words))
	for _, w := range words {
		lower := strings.ToLower(w)
		if seen[lower] {
			continue
		}
		seen[lower] = true
		patterns = append(patterns, []rune(lower))
	}
	// the double-array trie is built from sorted keys
	sort.Slice(patterns, func(i, j int) bool { return string(patterns[i]) < string(patterns[j]) })
	m := new(goahocorasick.Machine)
	if err := m.Build(patterns); err != nil {
		return nil, err
	}
	return &Highlighter{matcher: m}, nil
}

type span struct{ start, end int }

// Highlight wraps each matched region of text with mark.
func (h *Highlighter) Highlight(text string, mark func(string) string) string {
	if h.matcher == nil || text == "" {
		return text
	}
	original := []rune(text)
	lowered := make([]rune, len(original))
	for i, r := range original {
		lowered[i] = unicode.ToLower(r)
	}

	terms := h.matcher.MultiPatternSearch(lowered, false)
	if len(terms) == 0 {
		return text
	}
	spans := make([]span, 0, len(terms))
	for _, t := range terms {
		spans = append(spans, span{start: t.Pos, end: t.Pos + len(t.Word)})
	}
	spans = merge(spans)

	var b strings.Builder
	last := 0
	for _, s := range spans {
		b.WriteString(string(original[last:s.start]))
		b.WriteString(mark(string(original[s.start:s.end])))
		last = s.end
	}
	b.WriteString(string(original[last:]))
	return b.String()
}

// merge sorts spans and joins the overlapping ones.
func merge(spans []span) []span {
	sort.Slice(spans, func(i, j int) bool { return spans[i].start < spans[j].start })
	out := spans[:1]
	for _, s := range spans[1:] {
		tail := &out[len(out)-1]
		if s.start <= tail.end {
			tail.end = max(tail.end, s.end)
			continue
		}
		out = append(out, s)
	}
	return out
}
