package srx

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testRulesetPath = "testdata/default.srx"

// srxDoc assembles an SRX 2.0 document from raw header attributes and
// body fragments.
func srxDoc(headerAttrs, languageRules, mapRules string) string {
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<srx xmlns="http://www.lisa.org/srx20" version="2.0">
  <header %s/>
  <body>
    <languagerules>%s</languagerules>
    <maprules>%s</maprules>
  </body>
</srx>`, headerAttrs, languageRules, mapRules)
}

func group(name string, rules ...string) string {
	return fmt.Sprintf(`<languagerule languagerulename="%s">%s</languagerule>`, name, strings.Join(rules, ""))
}

func rule(brk, before, after string) string {
	return fmt.Sprintf(`<rule break="%s"><beforebreak>%s</beforebreak><afterbreak>%s</afterbreak></rule>`, brk, before, after)
}

func langMap(pattern, name string) string {
	return fmt.Sprintf(`<languagemap languagepattern="%s" languagerulename="%s"/>`, pattern, name)
}

func mustParse(t *testing.T, src string, opts ...Option) *Ruleset {
	t.Helper()
	rs, err := ParseString(src, opts...)
	if err != nil {
		t.Fatalf("ParseString() failed: %v", err)
	}
	return rs
}

func TestParse(t *testing.T) {
	src := srxDoc(`segmentsubflows="no" cascade="yes"`,
		group("English",
			rule("no", `Mr\.`, `\s`),
			rule("yes", `\.`, `\s`),
		)+group("Default",
			rule("yes", `[.?!]`, `\s`),
		),
		langMap("en.*", "English")+langMap(".*", "Default"),
	)

	rs := mustParse(t, src)

	h := rs.Header()
	if h.SegmentSubflows {
		t.Error("SegmentSubflows = true, want false")
	}
	if !h.Cascade {
		t.Error("Cascade = false, want true")
	}

	groups := rs.Groups()
	if len(groups) != 2 {
		t.Fatalf("len(Groups()) = %d, want 2", len(groups))
	}
	if groups[0].Name != "English" || groups[1].Name != "Default" {
		t.Errorf("Groups() order = [%s %s], want [English Default]", groups[0].Name, groups[1].Name)
	}

	en, ok := rs.Group("English")
	if !ok {
		t.Fatal("Group(English) not found")
	}
	if len(en.Rules) != 2 {
		t.Fatalf("len(English.Rules) = %d, want 2", len(en.Rules))
	}
	if en.Rules[0].Break {
		t.Error("English#0 Break = true, want false")
	}
	if !en.Rules[1].Break {
		t.Error("English#1 Break = false, want true")
	}
	if got := en.Rules[1].ID(); got != "English#1" {
		t.Errorf("ID() = %q, want %q", got, "English#1")
	}
	if en.Rules[0].Before != `Mr\.` {
		t.Errorf("Before = %q, want %q", en.Rules[0].Before, `Mr\.`)
	}

	ms := rs.Maps()
	if len(ms) != 2 {
		t.Fatalf("len(Maps()) = %d, want 2", len(ms))
	}
	for _, m := range ms {
		if m.Halt {
			t.Errorf("map %q Halt = true with cascade on", m.Pattern)
		}
	}

	if n := rs.Errors().Len(); n != 0 {
		t.Errorf("Errors().Len() = %d, want 0", n)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		wantErr error
	}{
		{
			name:    "not xml",
			src:     "this is not xml",
			wantErr: ErrInvalidDocument,
		},
		{
			name:    "truncated",
			src:     `<srx><header/><body><languagerules>`,
			wantErr: ErrInvalidDocument,
		},
		{
			name:    "wrong root",
			src:     `<segmentation><body/></segmentation>`,
			wantErr: ErrInvalidDocument,
		},
		{
			name:    "missing languagerules",
			src:     `<srx><header/><body><maprules/></body></srx>`,
			wantErr: ErrMissingLanguageRules,
		},
		{
			name:    "missing maprules",
			src:     `<srx><header/><body><languagerules/></body></srx>`,
			wantErr: ErrMissingMapRules,
		},
		{
			name: "unknown group",
			src: srxDoc("",
				group("English", rule("yes", `\.`, `\s`)),
				langMap("en", "French"),
			),
			wantErr: ErrUnknownRuleGroup,
		},
		{
			name: "duplicate group",
			src: srxDoc("",
				group("English", rule("yes", `\.`, `\s`))+group("English"),
				langMap("en", "English"),
			),
			wantErr: ErrDuplicateRuleGroup,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rs, err := ParseString(tt.src)
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
			if rs != nil {
				t.Error("expected nil Ruleset on error")
			}
		})
	}
}

func TestParse_BrokenRulesAreSkipped(t *testing.T) {
	src := srxDoc("",
		group("English",
			rule("no", `(unclosed`, `\s`),
			rule("yes", `\.`, `\s`),
			rule("yes", `!`, `[z-a]`),
		),
		langMap("en", "English"),
	)

	rs := mustParse(t, src)

	en, _ := rs.Group("English")
	if len(en.Rules) != 1 {
		t.Fatalf("len(Rules) = %d, want 1", len(en.Rules))
	}
	if got := en.Rules[0].ID(); got != "English#1" {
		t.Errorf("surviving rule = %s, want English#1", got)
	}

	log := rs.Errors()
	if got := log.Keys(); len(got) != 1 || got[0] != "English" {
		t.Fatalf("Errors().Keys() = %v, want [English]", got)
	}
	errs := log["English"]
	if len(errs) != 2 {
		t.Fatalf("len(Errors()[English]) = %d, want 2", len(errs))
	}
	if !strings.Contains(errs[0], "rule 0: beforebreak") {
		t.Errorf("errs[0] = %q, want beforebreak failure of rule 0", errs[0])
	}
	if !strings.Contains(errs[1], "rule 2: afterbreak") {
		t.Errorf("errs[1] = %q, want afterbreak failure of rule 2", errs[1])
	}
}

func TestParse_ErrorsReturnsCopy(t *testing.T) {
	src := srxDoc("",
		group("English", rule("no", `(`, ``)),
		langMap("en", "English"),
	)
	rs := mustParse(t, src)

	log := rs.Errors()
	log["English"] = nil
	log["extra"] = []string{"x"}

	if got := rs.Errors().Len(); got != 1 {
		t.Errorf("Errors().Len() after mutation = %d, want 1", got)
	}
}

func TestParse_InvalidLanguagePattern(t *testing.T) {
	src := srxDoc("",
		group("Broken", rule("yes", `\.`, `\s`))+group("Default", rule("yes", `!`, `\s`)),
		langMap("(en", "Broken")+langMap(".*", "Default"),
	)

	rs := mustParse(t, src)

	errs := rs.Errors()[mapRulesKey]
	if len(errs) != 1 {
		t.Fatalf("Errors()[maprules] = %v, want one entry", errs)
	}

	rules := rs.LanguageRules("en")
	if rules.Len() != 1 || rules.All()[0].Group != "Default" {
		t.Errorf("LanguageRules(en) = %s, want Default rules only", rules)
	}
}

func TestParse_HeaderDefaults(t *testing.T) {
	tests := []struct {
		name        string
		attrs       string
		wantCascade bool
		wantSubflow bool
	}{
		{name: "absent", attrs: "", wantCascade: true, wantSubflow: true},
		{name: "yes", attrs: `cascade="yes" segmentsubflows="yes"`, wantCascade: true, wantSubflow: true},
		{name: "no", attrs: `cascade="no" segmentsubflows="no"`, wantCascade: false, wantSubflow: false},
		{name: "mixed case", attrs: `cascade="No"`, wantCascade: false, wantSubflow: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rs := mustParse(t, srxDoc(tt.attrs, group("G"), langMap(".*", "G")))
			h := rs.Header()
			if h.Cascade != tt.wantCascade {
				t.Errorf("Cascade = %v, want %v", h.Cascade, tt.wantCascade)
			}
			if h.SegmentSubflows != tt.wantSubflow {
				t.Errorf("SegmentSubflows = %v, want %v", h.SegmentSubflows, tt.wantSubflow)
			}
			for _, m := range rs.Maps() {
				if m.Halt == tt.wantCascade {
					t.Errorf("Halt = %v with cascade %v", m.Halt, tt.wantCascade)
				}
			}
		})
	}
}

func TestParse_BreakAttribute(t *testing.T) {
	tests := []struct {
		attr string
		want bool
	}{
		{"yes", true},
		{"no", false},
		{"NO", false},
		{"", true},
	}

	for _, tt := range tests {
		t.Run(tt.attr, func(t *testing.T) {
			r := fmt.Sprintf(`<rule break="%s"><beforebreak>a</beforebreak><afterbreak>b</afterbreak></rule>`, tt.attr)
			if tt.attr == "" {
				r = `<rule><beforebreak>a</beforebreak><afterbreak>b</afterbreak></rule>`
			}
			rs := mustParse(t, srxDoc("", group("G", r), langMap(".*", "G")))
			g, _ := rs.Group("G")
			if got := g.Rules[0].Break; got != tt.want {
				t.Errorf("Break = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParse_MissingPatternElements(t *testing.T) {
	src := srxDoc("",
		group("G", `<rule break="yes"><beforebreak>\.</beforebreak></rule>`),
		langMap(".*", "G"),
	)
	rs := mustParse(t, src)

	rules := rs.LanguageRules("en")
	got := rules.Segments("a.b")
	want := []string{"a.", "b"}
	if !equalStrings(got, want) {
		t.Errorf("Segments() = %q, want %q", got, want)
	}
}

func TestParse_LegacyMapRule(t *testing.T) {
	src := `<?xml version="1.0"?>
<srx version="1.0">
  <header segmentsubflows="yes"/>
  <body>
    <languagerules>
      <languagerule languagerulename="Default">
        <rule break="yes"><beforebreak>\.</beforebreak><afterbreak>\s</afterbreak></rule>
      </languagerule>
    </languagerules>
    <maprules>
      <maprule maprulename="Default">
        <languagemap languagepattern=".*" languagerulename="Default"/>
      </maprule>
    </maprules>
  </body>
</srx>`

	rs := mustParse(t, src)
	if got := len(rs.Maps()); got != 1 {
		t.Fatalf("len(Maps()) = %d, want 1", got)
	}
	if got := rs.LanguageRules("fr").Len(); got != 1 {
		t.Errorf("LanguageRules(fr).Len() = %d, want 1", got)
	}
}

func TestParse_Charset(t *testing.T) {
	// "Café." encoded as ISO-8859-1
	src := []byte("<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?>\n" +
		`<srx><header/><body><languagerules><languagerule languagerulename="G">` +
		"<rule break=\"no\"><beforebreak>Caf\xe9\\.</beforebreak><afterbreak>\\s</afterbreak></rule>" +
		`</languagerule></languagerules><maprules><languagemap languagepattern=".*" languagerulename="G"/></maprules></body></srx>`)

	rs, err := Parse(bytes.NewReader(src))
	if err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}
	g, _ := rs.Group("G")
	if got := g.Rules[0].Before; got != `Café\.` {
		t.Errorf("Before = %q, want %q", got, `Café\.`)
	}
}

func TestParse_UnknownCharset(t *testing.T) {
	src := `<?xml version="1.0" encoding="x-no-such-charset"?><srx/>`
	_, err := ParseString(src)
	if !errors.Is(err, ErrInvalidDocument) {
		t.Errorf("error = %v, want ErrInvalidDocument", err)
	}
}

func TestParse_WithLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	src := srxDoc("", group("G", rule("no", `(`, ``)), langMap(".*", "G"))
	mustParse(t, src, WithLogger(logger))

	out := buf.String()
	if !strings.Contains(out, "skipping rule") {
		t.Errorf("log output missing skipped rule: %s", out)
	}
	if !strings.Contains(out, "parsed ruleset") {
		t.Errorf("log output missing summary: %s", out)
	}
}

func TestLoadFile(t *testing.T) {
	rs, err := LoadFile(testRulesetPath)
	if err != nil {
		t.Fatalf("LoadFile() failed: %v", err)
	}

	names := make([]string, 0)
	for _, g := range rs.Groups() {
		names = append(names, g.Name)
	}
	want := []string{"English", "German", "Default", "Broken"}
	if !equalStrings(names, want) {
		t.Errorf("Groups() = %v, want %v", names, want)
	}

	if got := rs.Errors().Keys(); !equalStrings(got, []string{"Broken"}) {
		t.Errorf("Errors().Keys() = %v, want [Broken]", got)
	}
}

func TestLoadFile_NotFound(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.srx"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("error = %v, want os.ErrNotExist", err)
	}
}

func TestLoadFile_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.srx")
	if err := os.WriteFile(path, []byte("<srx><body>"), 0o600); err != nil {
		t.Fatal(err)
	}

	_, err := LoadFile(path)
	if !errors.Is(err, ErrInvalidDocument) {
		t.Errorf("error = %v, want ErrInvalidDocument", err)
	}
	if !strings.Contains(err.Error(), path) {
		t.Errorf("error %q does not name the file", err)
	}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
