// Package srx splits text into sentence-like segments using SRX
// (Segmentation Rules eXchange) rulesets.
//
// # Quick Start
//
//	rs, err := srx.LoadFile("segment.srx")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	rules := rs.LanguageRules("en")
//	for seg := range rules.Split("Mr. Smith went home. He left.") {
//	    fmt.Printf("%q\n", seg)
//	}
//
// # Rule Evaluation
//
// Every rune boundary inside the text is a candidate break point. At each
// candidate the resolved rules are tried in order and the first rule whose
// before-break pattern matches the text ending there and whose after-break
// pattern matches the text starting there decides: a break rule inserts a
// boundary, a no-break rule suppresses it. When nothing matches there is no
// boundary. Segments are byte slices of the input, so joining them gives the
// input back.
//
// # Broken Rules
//
// Rule patterns are written in the Java regex dialect. Patterns that cannot
// be compiled are left out of the ruleset and reported by Ruleset.Errors,
// keyed by rule group, instead of failing the whole parse.
//
// # Thread Safety
//
// A Ruleset is read-only once parsed. LanguageRules caches its result per
// language code and is safe for concurrent use, as is Rules.Split.
package srx
