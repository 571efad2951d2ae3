package console

import (
	"errors"
	"regexp"
	"strings"
	"unicode"
)

var errUnterminatedQuote = errors.New("unterminated quote")

// splitArgs splits a command line on whitespace. Double quoted sections
// keep their spaces and lose their quotes; \" escapes a quote inside them.
func splitArgs(line string) ([]string, error) {
	var (
		args    []string
		cur     strings.Builder
		inQuote bool
		hasTok  bool
	)

	runes := []rune(line)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case inQuote && r == '\\' && i+1 < len(runes) && runes[i+1] == '"':
			cur.WriteRune('"')
			i++
		case r == '"':
			inQuote = !inQuote
			hasTok = true
		case !inQuote && unicode.IsSpace(r):
			if hasTok {
				args = append(args, cur.String())
				cur.Reset()
				hasTok = false
			}
		default:
			cur.WriteRune(r)
			hasTok = true
		}
	}

	if inQuote {
		return nil, errUnterminatedQuote
	}
	if hasTok {
		args = append(args, cur.String())
	}
	return args, nil
}

var callPattern = regexp.MustCompile(`^(\w+)\.(\w+)\((.*)\)$`)

// call is a "<Class>.<method>(<args>)" line.
type call struct {
	class  string
	method string
	args   []string
	// dict holds the JSON object of update("<id>", {...}).
	dict string
}

func parseCall(line string) (call, bool) {
	match := callPattern.FindStringSubmatch(strings.TrimSpace(line))
	if match == nil {
		return call{}, false
	}

	c := call{class: match[1], method: match[2]}
	raw := strings.TrimSpace(match[3])

	if i := strings.Index(raw, "{"); i >= 0 && strings.HasSuffix(raw, "}") {
		c.dict = raw[i:]
		raw = strings.TrimRight(strings.TrimSpace(raw[:i]), ",")
	}

	for _, part := range splitCallArgs(raw) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		c.args = append(c.args, unquote(part))
	}

	return c, true
}

// splitCallArgs splits on commas outside double quotes.
func splitCallArgs(s string) []string {
	var (
		parts   []string
		cur     strings.Builder
		inQuote bool
	)
	for _, r := range s {
		switch {
		case r == '"':
			inQuote = !inQuote
			cur.WriteRune(r)
		case r == ',' && !inQuote:
			parts = append(parts, cur.String())
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	return append(parts, cur.String())
}

func unquote(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
