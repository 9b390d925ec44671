package gen

import (
	"fmt"
	"go/token"
	"strings"
	"text/template"
	"unicode"

	"github.com/go-openapi/inflect"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	// Funcs are the functions available to every text template. The target
	// settings functions (target, filename, policy, ...) are bound per render.
	Funcs = template.FuncMap{
		"snake":      snake,
		"pascal":     pascal,
		"camel":      camel,
		"receiver":   receiver,
		"plural":     Pluralize,
		"label":      DisplayName,
		"lower":      strings.ToLower,
		"upper":      strings.ToUpper,
		"join":       strings.Join,
		"quote":      quote,
		"add":        add,
		"xrange":     xrange,
		"required":   required,
		"hasPrefix":  strings.HasPrefix,
		"hasSuffix":  strings.HasSuffix,
		"trimSuffix": strings.TrimSuffix,
	}
	rules    = ruleset()
	acronyms = make(map[string]struct{})
)

// ruleset returns the pluralization rules. Rules added later take
// precedence, so the suffix rules go first and the named exceptions last.
func ruleset() *inflect.Ruleset {
	rs := inflect.NewRuleset()
	for _, r := range [...][2]string{
		{"y", "ies"},
		{"ay", "ays"},
		{"ey", "eys"},
		{"oy", "oys"},
		{"uy", "uys"},
		{"s", "ses"},
		{"x", "xes"},
		{"z", "zzes"},
		{"sh", "shes"},
		{"ch", "ches"},
	} {
		rs.AddPlural(r[0], r[1])
	}
	// Exceptions are matched on the whole word and are case sensitive.
	for _, r := range [...][2]string{
		{"play", "plays"},
		{"Play", "Plays"},
		{"PLAY", "PLAYS"},
		{"fish", "fishies"},
		{"Fish", "Fishies"},
		{"FISH", "FISHIES"},
		{"person", "people"},
		{"Person", "People"},
		{"PERSON", "PEOPLE"},
	} {
		rs.AddPluralExact(r[0], r[1], true)
	}
	return rs
}

func init() {
	for _, w := range []string{"API", "CPU", "CSS", "DNS", "HTML", "HTTP", "ID", "IP", "JSON", "SQL", "URL", "UUID", "XML"} {
		acronyms[w] = struct{}{}
	}
}

// Pluralize returns the plural form of a noun. Named exceptions are checked
// before the general suffix rules.
func Pluralize(noun string) string {
	return rules.Pluralize(noun)
}

// Singularize returns the singular form of a (table) name.
func Singularize(name string) string {
	return inflect.Singularize(name)
}

// DisplayName returns a human readable, title-cased label for a name:
//
//	budget_amount => Budget Amount
//	ProjectStatus => Project Status
func DisplayName(name string) string {
	words := strings.Fields(strings.ReplaceAll(snake(name), "_", " "))
	title := cases.Title(language.English)
	for i, w := range words {
		if _, ok := acronyms[strings.ToUpper(w)]; ok {
			words[i] = strings.ToUpper(w)
			continue
		}
		words[i] = title.String(w)
	}
	return strings.Join(words, " ")
}

// ValidIdentifier reports whether name matches [A-Za-z][A-Za-z0-9_]*.
func ValidIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r > unicode.MaxASCII:
			return false
		case unicode.IsLetter(r):
		case i > 0 && (unicode.IsDigit(r) || r == '_'):
		default:
			return false
		}
	}
	return true
}

// Snake converts a class name to underscore_case. It fails with
// InvalidIdentifierError if the name is outside the identifier grammar.
//
//	Project    => project
//	UserInfo   => user_info
//	HTTPCode   => http_code
func Snake(name string) (string, error) {
	if !ValidIdentifier(name) {
		return "", NewInvalidIdentifierError("class", "", name)
	}
	return snake(name), nil
}

// snake converts the given struct or field name into a snake_case.
//
//	Username => username
//	FullName => full_name
//	HTTPCode => http_code
func snake(s string) string {
	var (
		j int
		b strings.Builder
	)
	for i := 0; i < len(s); i++ {
		r := rune(s[i])
		// Put '_' if it is not a start or end of a word, current letter is uppercase,
		// and previous is lowercase (cases like: "UserInfo"), or next letter is also
		// a lowercase and previous letter is not "_".
		if i > 0 && i < len(s)-1 && unicode.IsUpper(r) {
			if unicode.IsLower(rune(s[i-1])) ||
				j != i-1 && unicode.IsLower(rune(s[i+1])) && unicode.IsLetter(rune(s[i-1])) {
				j = i
				b.WriteString("_")
			}
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// pascal converts the given name into a PascalCase.
//
//	user_info 	=> UserInfo
//	full_name 	=> FullName
//	user_id   	=> UserID
//	full-admin	=> FullAdmin
func pascal(s string) string {
	words := strings.FieldsFunc(s, func(r rune) bool { return r == '_' || r == '-' })
	for i, w := range words {
		upper := strings.ToUpper(w)
		if _, ok := acronyms[upper]; ok {
			words[i] = upper
		} else {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, "")
}

// camel converts the given name into a camelCase.
//
//	user_info  => userInfo
//	full_name  => fullName
//	user_id    => userID
//	full-admin => fullAdmin
func camel(s string) string {
	words := strings.FieldsFunc(s, func(r rune) bool { return r == '_' || r == '-' })
	if len(words) == 0 {
		return s
	}
	first := strings.ToLower(words[0])
	rest := pascal(strings.Join(words[1:], "_"))
	name := first + rest
	if token.Lookup(name).IsKeyword() {
		name = "_" + name
	}
	return name
}

// receiver returns the receiver name of the given type.
//
//	[]T       => t
//	[1]T      => t
//	User      => u
//	UserQuery => uq
func receiver(s string) (r string) {
	// Trim invalid tokens for identifier prefix.
	s = strings.Trim(s, "[]*&0123456789")
	parts := strings.Split(snake(s), "_")
	min := len(parts[0])
	for _, w := range parts[1:] {
		if len(w) < min {
			min = len(w)
		}
	}
	for i := 1; i < min; i++ {
		r := parts[0][:i]
		for _, w := range parts[1:] {
			r += w[:i]
		}
		if _, ok := globalIdent[r]; !ok {
			s = r
			break
		}
	}
	name := strings.ToLower(s)
	if token.Lookup(name).IsKeyword() {
		name = "_" + name
	}
	return name
}

// quote only strings.
func quote(v any) any {
	if s, ok := v.(string); ok {
		return fmt.Sprintf("%q", s)
	}
	return v
}

// required fails the template execution if v is empty.
func required(name, v string) (string, error) {
	if v == "" {
		return "", fmt.Errorf("%s is required", name)
	}
	return v, nil
}

// add calculates summarize list of variables.
func add(xs ...int) (n int) {
	for _, x := range xs {
		n += x
	}
	return
}

// xrange generates a slice of len n.
func xrange(n int) (a []int) {
	for i := 0; i < n; i++ {
		a = append(a, i)
	}
	return
}

// global identifiers used by generated code that receivers must not shadow.
var globalIdent = func() map[string]struct{} {
	m := make(map[string]struct{})
	for _, id := range []string{"ctx", "db", "err", "q", "row", "rows", "sql", "tx"} {
		m[id] = struct{}{}
	}
	return m
}()
