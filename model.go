package srx

import (
	"fmt"
	"slices"

	"github.com/dlclark/regexp2"
	"github.com/samber/lo"
)

// mapRulesKey is the ErrorLog key for language pattern failures.
const mapRulesKey = "maprules"

// Rule is one break or no-break rule of a rule group.
type Rule struct {
	// Group is the name of the languagerule the rule belongs to.
	Group string
	// Index is the position of the rule inside its group, counting rules
	// that failed to compile.
	Index int
	// Before is the source before-break pattern.
	Before string
	// After is the source after-break pattern.
	After string
	// Break reports whether a match is a boundary (true) or an exception (false).
	Break bool

	before *regexp2.Regexp
	after  *regexp2.Regexp
}

// ID returns the stable identity of the rule, "group#index".
func (r *Rule) ID() string {
	return fmt.Sprintf("%s#%d", r.Group, r.Index)
}

func (r *Rule) String() string {
	kind := "break"
	if !r.Break {
		kind = "no-break"
	}
	return fmt.Sprintf("%s %s before=%q after=%q", r.ID(), kind, r.Before, r.After)
}

// LanguageRule is a named, ordered group of rules.
type LanguageRule struct {
	Name  string
	Rules []*Rule
}

// LanguageMap binds a language pattern to a rule group.
type LanguageMap struct {
	// Pattern is the source language pattern.
	Pattern string
	// RuleName is the referenced rule group.
	RuleName string
	// Halt stops language resolution after this entry matched.
	Halt bool

	// pattern is nil when the language pattern failed to compile.
	pattern *regexp2.Regexp
}

// Header holds the flags of the SRX <header> element.
type Header struct {
	SegmentSubflows bool
	// Cascade reports whether language resolution continues past the first
	// matching map entry. It defaults to true.
	Cascade bool
}

// ErrorLog maps a rule group name to the compile errors of its rules.
// Language pattern failures are stored under "maprules".
type ErrorLog map[string][]string

// Keys returns the logged groups in sorted order.
func (e ErrorLog) Keys() []string {
	keys := lo.Keys(e)
	slices.Sort(keys)
	return keys
}

// Len returns the total number of logged errors.
func (e ErrorLog) Len() int {
	n := 0
	for _, errs := range e {
		n += len(errs)
	}
	return n
}

func (e ErrorLog) add(key, msg string) {
	e[key] = append(e[key], msg)
}
