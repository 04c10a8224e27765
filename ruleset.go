package srx

import (
	"log/slog"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/samber/lo"
	"golang.org/x/text/language"
)

// Ruleset is a parsed SRX document. It is read-only after parsing and safe
// for concurrent use.
type Ruleset struct {
	header Header
	groups map[string]*LanguageRule
	order  []string
	maps   []*LanguageMap
	errors ErrorLog
	logger *slog.Logger

	mu    sync.Mutex
	cache map[string]*Rules
}

// Header returns the document header flags.
func (rs *Ruleset) Header() Header {
	return rs.header
}

// Errors returns the rule compile errors recorded while parsing, keyed by
// rule group.
func (rs *Ruleset) Errors() ErrorLog {
	out := make(ErrorLog, len(rs.errors))
	for k, v := range rs.errors {
		out[k] = slices.Clone(v)
	}
	return out
}

// Groups returns the rule groups in document order.
func (rs *Ruleset) Groups() []*LanguageRule {
	out := make([]*LanguageRule, 0, len(rs.order))
	for _, name := range rs.order {
		out = append(out, rs.groups[name])
	}
	return out
}

// Group returns the rule group with the given name.
func (rs *Ruleset) Group(name string) (*LanguageRule, bool) {
	g, ok := rs.groups[name]
	return g, ok
}

// Maps returns the language map entries in document order.
func (rs *Ruleset) Maps() []*LanguageMap {
	return slices.Clone(rs.maps)
}

// LanguageRules returns the rules for a language code. Results are cached per
// code for the lifetime of the Ruleset.
func (rs *Ruleset) LanguageRules(code string) *Rules {
	key := strings.ToLower(strings.TrimSpace(code))

	rs.mu.Lock()
	defer rs.mu.Unlock()

	if r, ok := rs.cache[key]; ok {
		return r
	}
	r := rs.Resolve(code)
	rs.cache[key] = r
	return r
}

// Resolve computes the rules for a language code without consulting the
// cache.
//
// Map entries are visited in document order. Each entry whose language
// pattern matches contributes its rule group; an entry with Halt set ends the
// walk. A code that matches nothing resolves to an empty rule list.
func (rs *Ruleset) Resolve(code string) *Rules {
	candidates := languageCandidates(code)

	var rules []*Rule
	for _, m := range rs.maps {
		if !m.matches(candidates, rs.logger) {
			continue
		}
		rules = append(rules, rs.groups[m.RuleName].Rules...)
		if m.Halt {
			break
		}
	}

	return &Rules{
		language: strings.TrimSpace(code),
		rules:    lo.Uniq(rules),
		logger:   rs.logger,
	}
}

// CachedLanguages returns the language codes resolved so far.
func (rs *Ruleset) CachedLanguages() []string {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return slices.Sorted(maps.Keys(rs.cache))
}

func (m *LanguageMap) matches(candidates []string, logger *slog.Logger) bool {
	if m.pattern == nil {
		return false
	}
	for _, c := range candidates {
		ok, err := m.pattern.MatchString(c)
		if err != nil {
			logger.Debug("language pattern evaluation failed", "pattern", m.Pattern, "code", c, "error", err)
			continue
		}
		if ok {
			return true
		}
	}
	return false
}

// languageCandidates returns the code as given and, when it parses as a
// BCP 47 tag, its canonical form ("pt_br" also tries "pt-BR").
func languageCandidates(code string) []string {
	code = strings.TrimSpace(code)
	out := []string{code}

	tag, err := language.Parse(code)
	if err != nil {
		return out
	}
	if canonical := tag.String(); !strings.EqualFold(canonical, code) {
		out = append(out, canonical)
	}
	return out
}
