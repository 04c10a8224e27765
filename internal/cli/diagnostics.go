package cli

import (
	"fmt"
	"io"

	srx "github.com/jamesainslie/go-srx"
)

// printDiagnostics writes the parse error log grouped by rule group, then the
// rules resolved for the requested language.
func printDiagnostics(w io.Writer, rs *srx.Ruleset, rules *srx.Rules, s *Styles) {
	log := rs.Errors()
	if log.Len() == 0 {
		_, _ = fmt.Fprintln(w, s.Title.Render("No rule errors"))
	} else {
		_, _ = fmt.Fprintln(w, s.Title.Render(fmt.Sprintf("Rule errors (%d)", log.Len())))
		for _, group := range log.Keys() {
			_, _ = fmt.Fprintln(w, s.Group.Render(group))
			for _, msg := range log[group] {
				_, _ = fmt.Fprintln(w, s.Error.Render(msg))
			}
		}
	}

	_, _ = fmt.Fprintln(w, s.Title.Render(fmt.Sprintf("Rules for %s (%d)", rules.Language(), rules.Len())))
	if rules.Len() == 0 {
		_, _ = fmt.Fprintln(w, s.Muted.Render("  no language map entry matched; text is not split"))
		return
	}
	for _, r := range rules.All() {
		kind := s.Break.Render("break   ")
		if !r.Break {
			kind = s.NoBreak.Render("no-break")
		}
		_, _ = fmt.Fprintf(w, "  %-16s %s %s%q %s%q\n", r.ID(), kind,
			s.Muted.Render("before="), r.Before, s.Muted.Render("after="), r.After)
	}
}
