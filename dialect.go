package srx

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/dlclark/regexp2"
)

// posixClasses maps Java POSIX property names to ASCII class bodies.
var posixClasses = map[string]string{
	"Lower":  `a-z`,
	"Upper":  `A-Z`,
	"ASCII":  `\x00-\x7F`,
	"Alpha":  `a-zA-Z`,
	"Digit":  `0-9`,
	"Alnum":  `a-zA-Z0-9`,
	"Punct":  "!-/:-@\\[-`{-~",
	"Blank":  ` \t`,
	"Space":  ` \t\n\x0B\f\r`,
	"Cntrl":  `\x00-\x1F\x7F`,
	"XDigit": `0-9a-fA-F`,
}

// javaProperties maps Java-only property names to Unicode categories.
var javaProperties = map[string]string{
	"javaLowerCase": "Ll",
	"javaUpperCase": "Lu",
	"javaTitleCase": "Lt",
	"javaDigit":     "Nd",
	"javaLetter":    "L",
	"IsAlphabetic":  "L",
	"IsLetter":      "L",
	"IsLowercase":   "Ll",
	"IsUppercase":   "Lu",
	"IsTitlecase":   "Lt",
	"IsDigit":       "Nd",
	"IsPunctuation": "P",
	"IsControl":     "Cc",
	"IsIdeographic": "Han",
}

// horizontalSpace is the body of Java's \h class.
const horizontalSpace = `\t\x20\u00A0\u1680\u180E\u2000-\u200A\u202F\u205F\u3000`

// classKind records how an open character class was entered.
type classKind int

const (
	classOuter    classKind = iota
	classSubtract           // [X-[Y]]
	classUnion              // [X[Y]], flattened into the enclosing class
	classUnsupported
)

// TranslatePattern converts a pattern written in the Java regex dialect used
// by SRX files into the dialect understood by regexp2.
//
// Constructs without an equivalent are passed through unchanged. Class
// intersection and negated nested classes have no regexp2 form; compiling
// a pattern that uses them fails with ErrUnsupportedPattern.
func TranslatePattern(p string) string {
	expr, _ := translate(p)
	return expr
}

// translate is TranslatePattern that also reports the first construct it
// could not express.
func translate(p string) (string, error) {
	rs := []rune(p)
	var b strings.Builder
	b.Grow(len(p))

	var (
		classes     []classKind // open character classes, innermost last
		unsupported string
	)
	reject := func(construct string) {
		if unsupported == "" {
			unsupported = construct
		}
	}

	for i := 0; i < len(rs); i++ {
		c := rs[i]

		if c == '\\' && i+1 < len(rs) {
			i = translateEscape(&b, rs, i, len(classes) > 0)
			continue
		}

		if len(classes) > 0 {
			switch {
			case c == '&' && hasPrefix(rs, i, "&&[^") && len(classes) == 1:
				// [X&&[^Y]] is class subtraction [X-[Y]]
				b.WriteString("-[")
				classes = append(classes, classSubtract)
				i += 3
			case c == '&' && hasPrefix(rs, i, "&&"):
				reject("class intersection")
				b.WriteString("&&")
				i++
			case c == ']':
				if classes[len(classes)-1] != classUnion {
					b.WriteRune(c)
				}
				classes = classes[:len(classes)-1]
			case c == '[' && i > 0 && rs[i-1] == '-' && len(classes) == 1:
				b.WriteRune(c)
				classes = append(classes, classSubtract)
			case c == '[' && i+1 < len(rs) && rs[i+1] == '^':
				reject("negated nested class")
				b.WriteRune(c)
				classes = append(classes, classUnsupported)
			case c == '[':
				classes = append(classes, classUnion)
			default:
				b.WriteRune(c)
			}
			continue
		}

		switch c {
		case '[':
			b.WriteRune(c)
			classes = append(classes, classOuter)
			// a leading ']' is a literal
			if i+1 < len(rs) && rs[i+1] == '^' {
				b.WriteRune('^')
				i++
			}
			if i+1 < len(rs) && rs[i+1] == ']' {
				b.WriteString(`\]`)
				i++
			}
		case '(':
			i = translateGroupOpen(&b, rs, i)
		case '*', '+', '?':
			b.WriteRune(c)
			i = skipPossessive(rs, i)
		case '{':
			if end := quantifierEnd(rs, i); end > 0 {
				b.WriteString(string(rs[i : end+1]))
				i = skipPossessive(rs, end)
			} else {
				b.WriteRune(c)
			}
		default:
			b.WriteRune(c)
		}
	}

	if unsupported != "" {
		return b.String(), fmt.Errorf("%w: %s", ErrUnsupportedPattern, unsupported)
	}
	return b.String(), nil
}

// translateEscape writes the escape starting at rs[i] and returns the index
// of its last rune.
func translateEscape(b *strings.Builder, rs []rune, i int, inClass bool) int {
	n := rs[i+1]
	switch n {
	case 'Q':
		end := len(rs)
		for j := i + 2; j+1 < len(rs); j++ {
			if rs[j] == '\\' && rs[j+1] == 'E' {
				end = j
				break
			}
		}
		lit := string(rs[i+2 : end])
		if inClass {
			b.WriteString(escapeClassLiteral(lit))
		} else {
			b.WriteString(regexp2.Escape(lit))
		}
		if end == len(rs) {
			return end - 1
		}
		return end + 1
	case 'h', 'H':
		switch {
		case !inClass && n == 'h':
			b.WriteString("[" + horizontalSpace + "]")
		case !inClass:
			b.WriteString("[^" + horizontalSpace + "]")
		case n == 'h':
			b.WriteString(horizontalSpace)
		default:
			b.WriteString(`\H`)
		}
		return i + 1
	case 'p', 'P':
		if i+2 < len(rs) && rs[i+2] == '{' {
			for j := i + 3; j < len(rs); j++ {
				if rs[j] == '}' {
					b.WriteString(translateProperty(string(rs[i+3:j]), n == 'P', inClass))
					return j
				}
			}
		}
	}

	b.WriteRune('\\')
	b.WriteRune(n)
	return i + 1
}

// translateProperty rewrites the body of \p{name} or \P{name}.
func translateProperty(name string, negated, inClass bool) string {
	orig := `\p{` + name + `}`
	prefix := `\p{`
	if negated {
		orig = `\P{` + name + `}`
		prefix = `\P{`
	}

	key := strings.TrimPrefix(name, "Is")
	if body, ok := posixClasses[key]; ok {
		switch {
		case !inClass && negated:
			return "[^" + body + "]"
		case !inClass:
			return "[" + body + "]"
		case !negated:
			return body
		default:
			return orig
		}
	}

	if mapped, ok := javaProperties[name]; ok {
		return prefix + mapped + "}"
	}

	for _, p := range []string{"Is", "sc=", "script=", "general_category=", "gc="} {
		rest, ok := strings.CutPrefix(name, p)
		if !ok {
			continue
		}
		if _, known := unicode.Categories[rest]; known {
			return prefix + rest + "}"
		}
		if _, known := unicode.Scripts[rest]; known {
			return prefix + rest + "}"
		}
	}

	return orig
}

// translateGroupOpen handles "(" and drops inline flags unknown to regexp2.
func translateGroupOpen(b *strings.Builder, rs []rune, i int) int {
	if i+1 >= len(rs) || rs[i+1] != '?' {
		b.WriteRune('(')
		return i
	}

	j := i + 2
	for j < len(rs) && (isASCIILetter(rs[j]) || rs[j] == '-') {
		j++
	}
	if j == i+2 || j >= len(rs) || (rs[j] != ')' && rs[j] != ':') {
		// not an inline flag group: (?:, (?=, (?<name>, ...
		b.WriteString("(?")
		return i + 1
	}

	var flags strings.Builder
	for _, f := range rs[i+2 : j] {
		switch f {
		case 'u', 'U', 'd':
		default:
			flags.WriteRune(f)
		}
	}
	kept := strings.TrimSuffix(flags.String(), "-")

	switch {
	case rs[j] == ':':
		b.WriteString("(?" + kept + ":")
	case kept != "":
		b.WriteString("(?" + kept + ")")
	}
	return j
}

// skipPossessive returns the index of a trailing possessive "+" after the
// quantifier ending at rs[i], or i when there is none.
func skipPossessive(rs []rune, i int) int {
	if i+1 >= len(rs) || rs[i+1] != '+' {
		return i
	}
	switch rs[i] {
	case '*', '+', '?', '}':
		return i + 1
	}
	return i
}

// quantifierEnd returns the index of the "}" closing a {n}, {n,} or {n,m}
// quantifier that starts at rs[i], or -1.
func quantifierEnd(rs []rune, i int) int {
	j := i + 1
	digits := 0
	for j < len(rs) && rs[j] >= '0' && rs[j] <= '9' {
		j++
		digits++
	}
	if digits == 0 || j >= len(rs) {
		return -1
	}
	if rs[j] == ',' {
		j++
		for j < len(rs) && rs[j] >= '0' && rs[j] <= '9' {
			j++
		}
	}
	if j < len(rs) && rs[j] == '}' {
		return j
	}
	return -1
}

func escapeClassLiteral(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '\\', ']', '[', '^', '-':
			b.WriteRune('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func hasPrefix(rs []rune, i int, prefix string) bool {
	return strings.HasPrefix(string(rs[i:min(len(rs), i+len(prefix))]), prefix)
}

func isASCIILetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

// compileBefore compiles a before-break pattern so that it only matches text
// ending at the end of its input. Matching runs right to left, so
// backreferences see groups captured to their right.
//
// Before patterns see only the text left of the break and after patterns
// only the text right of it. A lookahead in a before pattern or a
// lookbehind in an after pattern cannot look across the break, and \b at
// the end of a before pattern holds after any word character.
func compileBefore(p string, cfg config) (*regexp2.Regexp, error) {
	return compile(p, `(?:`, `)\z`, regexp2.RightToLeft, cfg)
}

// compileAfter compiles an after-break pattern so that it only matches text
// starting at the beginning of its input.
func compileAfter(p string, cfg config) (*regexp2.Regexp, error) {
	return compile(p, `\A(?:`, `)`, regexp2.None, cfg)
}

// compileLanguage compiles a language pattern for full, case-insensitive
// matches against a language code.
func compileLanguage(p string, cfg config) (*regexp2.Regexp, error) {
	return compile(p, `\A(?:`, `)\z`, regexp2.IgnoreCase, cfg)
}

func compile(p, open, closing string, opts regexp2.RegexOptions, cfg config) (*regexp2.Regexp, error) {
	expr, err := translate(p)
	if err != nil {
		return nil, err
	}

	// Compile the bare pattern first so unbalanced groups are not hidden by
	// the anchoring wrapper.
	if _, err := regexp2.Compile(expr, opts); err != nil {
		return nil, err
	}

	re, err := regexp2.Compile(open+expr+closing, opts)
	if err != nil {
		return nil, err
	}
	if cfg.matchTimeout > 0 {
		re.MatchTimeout = cfg.matchTimeout
	}
	return re, nil
}
