package srx

import (
	"iter"
	"log/slog"
	"strings"

	"github.com/dlclark/regexp2"
)

// Rules is the ordered rule list resolved for one language code.
type Rules struct {
	language string
	rules    []*Rule
	logger   *slog.Logger
}

// Language returns the language code the rules were resolved for.
func (r *Rules) Language() string {
	if r == nil {
		return ""
	}
	return r.language
}

// Len returns the number of rules.
func (r *Rules) Len() int {
	if r == nil {
		return 0
	}
	return len(r.rules)
}

// All returns the rules in evaluation order.
func (r *Rules) All() []*Rule {
	if r == nil {
		return nil
	}
	out := make([]*Rule, len(r.rules))
	copy(out, r.rules)
	return out
}

func (r *Rules) String() string {
	var b strings.Builder
	b.WriteString(r.Language())
	b.WriteString(":")
	for _, rule := range r.All() {
		b.WriteString("\n  ")
		b.WriteString(rule.String())
	}
	return b.String()
}

// Split returns the segments of text in order. The sequence is computed
// lazily and can be ranged over any number of times.
//
// Empty text yields one empty segment and an empty rule list yields text
// unchanged. Boundaries are never placed at the start or end of text, so no
// other segment is empty.
func (r *Rules) Split(text string) iter.Seq[string] {
	return func(yield func(string) bool) {
		if text == "" || r.Len() == 0 {
			yield(text)
			return
		}

		runes, offsets := decode(text)
		start := 0
		for pos := 1; pos < len(runes); pos++ {
			if !r.breaksAt(runes, pos) {
				continue
			}
			end := offsets[pos]
			if !yield(text[start:end]) {
				return
			}
			start = end
		}
		yield(text[start:])
	}
}

// Segments returns all segments of text.
func (r *Rules) Segments(text string) []string {
	var out []string
	for seg := range r.Split(text) {
		out = append(out, seg)
	}
	return out
}

// Boundaries returns the byte offsets of the break points in text.
func (r *Rules) Boundaries(text string) []int {
	var out []int
	offset := 0
	for seg := range r.Split(text) {
		offset += len(seg)
		if offset < len(text) {
			out = append(out, offset)
		}
	}
	return out
}

// breaksAt applies the rules at the boundary before runes[pos]. The first
// rule whose before and after patterns both match decides.
func (r *Rules) breaksAt(runes []rune, pos int) bool {
	left, right := runes[:pos], runes[pos:]
	for _, rule := range r.rules {
		if !r.match(rule, rule.before, left) || !r.match(rule, rule.after, right) {
			continue
		}
		return rule.Break
	}
	return false
}

func (r *Rules) match(rule *Rule, re *regexp2.Regexp, input []rune) bool {
	ok, err := re.MatchRunes(input)
	if err != nil {
		r.logger.Debug("rule evaluation failed", "rule", rule.ID(), "error", err)
		return false
	}
	return ok
}

// decode returns the runes of text and the byte offset of each rune, plus
// len(text) as a final entry.
func decode(text string) ([]rune, []int) {
	runes := make([]rune, 0, len(text))
	offsets := make([]int, 0, len(text)+1)
	for i, c := range text {
		runes = append(runes, c)
		offsets = append(offsets, i)
	}
	offsets = append(offsets, len(text))
	return runes, offsets
}
