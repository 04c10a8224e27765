package srx

import "errors"

// Sentinel errors for conditions callers may need to handle differently.
var (
	// ErrInvalidDocument indicates the ruleset is not well-formed XML.
	ErrInvalidDocument = errors.New("srx: invalid document")

	// ErrMissingLanguageRules indicates the document has no <languagerules> block.
	ErrMissingLanguageRules = errors.New("srx: missing languagerules")

	// ErrMissingMapRules indicates the document has no <maprules> block.
	ErrMissingMapRules = errors.New("srx: missing maprules")

	// ErrUnknownRuleGroup indicates a language map references a rule group
	// that is not defined.
	ErrUnknownRuleGroup = errors.New("srx: unknown rule group")

	// ErrDuplicateRuleGroup indicates two rule groups share a name.
	ErrDuplicateRuleGroup = errors.New("srx: duplicate rule group")

	// ErrUnsupportedPattern indicates a rule pattern uses Java regex syntax
	// that has no regexp2 equivalent.
	ErrUnsupportedPattern = errors.New("srx: unsupported pattern syntax")
)
