package srx

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding/ianaindex"
)

// srxDocument mirrors the SRX 1.0 and 2.0 document structure. Namespaces are
// ignored.
type srxDocument struct {
	XMLName       xml.Name          `xml:"srx"`
	Header        srxHeader         `xml:"header"`
	LanguageRules *srxLanguageRules `xml:"body>languagerules"`
	MapRules      *srxMapRules      `xml:"body>maprules"`
}

type srxHeader struct {
	SegmentSubflows string `xml:"segmentsubflows,attr"`
	Cascade         string `xml:"cascade,attr"`
}

type srxLanguageRules struct {
	Groups []srxLanguageRule `xml:"languagerule"`
}

type srxLanguageRule struct {
	Name  string    `xml:"languagerulename,attr"`
	Rules []srxRule `xml:"rule"`
}

type srxRule struct {
	Break  string `xml:"break,attr"`
	Before string `xml:"beforebreak"`
	After  string `xml:"afterbreak"`
}

type srxMapRules struct {
	Maps []srxLanguageMap `xml:"languagemap"`
	// SRX 1.0 groups language maps into named maprule elements.
	Legacy []struct {
		Maps []srxLanguageMap `xml:"languagemap"`
	} `xml:"maprule"`
}

type srxLanguageMap struct {
	Pattern  string `xml:"languagepattern,attr"`
	RuleName string `xml:"languagerulename,attr"`
}

// Parse reads an SRX document and builds a Ruleset.
//
// Rules whose patterns do not compile are skipped and recorded in the
// Ruleset's ErrorLog. Structural problems fail the parse.
func Parse(r io.Reader, opts ...Option) (*Ruleset, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	dec := xml.NewDecoder(r)
	dec.CharsetReader = charsetReader

	var doc srxDocument
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}

	return build(&doc, cfg)
}

// ParseString parses an SRX document held in a string.
func ParseString(src string, opts ...Option) (*Ruleset, error) {
	return Parse(strings.NewReader(src), opts...)
}

// LoadFile reads and parses an SRX file.
func LoadFile(path string, opts ...Option) (*Ruleset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open ruleset: %w", err)
	}
	defer func() { _ = f.Close() }()

	rs, err := Parse(f, opts...)
	if err != nil {
		return nil, fmt.Errorf("parse ruleset %s: %w", path, err)
	}
	return rs, nil
}

func charsetReader(label string, input io.Reader) (io.Reader, error) {
	enc, err := ianaindex.IANA.Encoding(label)
	if err != nil {
		return nil, err
	}
	if enc == nil {
		return nil, fmt.Errorf("unsupported charset %q", label)
	}
	return enc.NewDecoder().Reader(input), nil
}

func build(doc *srxDocument, cfg config) (*Ruleset, error) {
	if doc.LanguageRules == nil {
		return nil, ErrMissingLanguageRules
	}
	if doc.MapRules == nil {
		return nil, ErrMissingMapRules
	}

	header := Header{
		SegmentSubflows: parseFlag(doc.Header.SegmentSubflows, true),
		Cascade:         parseFlag(doc.Header.Cascade, true),
	}

	rs := &Ruleset{
		header: header,
		groups: make(map[string]*LanguageRule, len(doc.LanguageRules.Groups)),
		errors: make(ErrorLog),
		logger: cfg.logger,
		cache:  make(map[string]*Rules),
	}

	for _, g := range doc.LanguageRules.Groups {
		if _, dup := rs.groups[g.Name]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateRuleGroup, g.Name)
		}

		group := &LanguageRule{Name: g.Name, Rules: make([]*Rule, 0, len(g.Rules))}
		for i, src := range g.Rules {
			rule, err := compileRule(g.Name, i, src, cfg)
			if err != nil {
				rs.errors.add(g.Name, err.Error())
				cfg.logger.Debug("skipping rule", "group", g.Name, "index", i, "error", err)
				continue
			}
			group.Rules = append(group.Rules, rule)
		}

		rs.groups[g.Name] = group
		rs.order = append(rs.order, g.Name)
	}

	maps := doc.MapRules.Maps
	if len(maps) == 0 && len(doc.MapRules.Legacy) > 0 {
		maps = doc.MapRules.Legacy[0].Maps
	}

	for _, m := range maps {
		if _, ok := rs.groups[m.RuleName]; !ok {
			return nil, fmt.Errorf("%w: %q referenced by languagepattern %q", ErrUnknownRuleGroup, m.RuleName, m.Pattern)
		}

		lm := &LanguageMap{
			Pattern:  m.Pattern,
			RuleName: m.RuleName,
			Halt:     !header.Cascade,
		}
		re, err := compileLanguage(m.Pattern, cfg)
		if err != nil {
			rs.errors.add(mapRulesKey, fmt.Sprintf("languagepattern %q: %v", m.Pattern, err))
			cfg.logger.Debug("language pattern never matches", "pattern", m.Pattern, "error", err)
		} else {
			lm.pattern = re
		}
		rs.maps = append(rs.maps, lm)
	}

	cfg.logger.Debug("parsed ruleset",
		"groups", len(rs.groups),
		"maps", len(rs.maps),
		"errors", rs.errors.Len(),
	)

	return rs, nil
}

func compileRule(group string, index int, src srxRule, cfg config) (*Rule, error) {
	before, err := compileBefore(src.Before, cfg)
	if err != nil {
		return nil, fmt.Errorf("rule %d: beforebreak %q: %w", index, src.Before, err)
	}
	after, err := compileAfter(src.After, cfg)
	if err != nil {
		return nil, fmt.Errorf("rule %d: afterbreak %q: %w", index, src.After, err)
	}

	return &Rule{
		Group:  group,
		Index:  index,
		Before: src.Before,
		After:  src.After,
		Break:  parseFlag(src.Break, true),
		before: before,
		after:  after,
	}, nil
}

// parseFlag reads a yes/no attribute, returning def when it is empty.
func parseFlag(v string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "":
		return def
	case "no", "false", "0":
		return false
	default:
		return true
	}
}
