// internal/browser/parser/value.go
package parser

import (
	"image/color"
	"strconv"
	"strings"

	"github.com/mazznoer/csscolorparser"
)

// Length is a number paired with its unit. Unit is lower-cased and empty
// for bare numbers; percentages use "%".
type Length struct {
	Value float64
	Unit  string
}

// Keyword returns the trimmed, lower-cased value.
func (v Value) Keyword() string {
	return strings.ToLower(strings.TrimSpace(string(v)))
}

// Fields splits the value on whitespace outside parentheses, so that
// "rgb(1, 2, 3) 4px" yields two fields. A '/' is returned as its own field.
func (v Value) Fields() []string {
	var fields []string
	var cur strings.Builder
	depth := 0
	flush := func() {
		if cur.Len() > 0 {
			fields = append(fields, cur.String())
			cur.Reset()
		}
	}
	for _, r := range string(v) {
		switch {
		case r == '(':
			depth++
			cur.WriteRune(r)
		case r == ')':
			if depth > 0 {
				depth--
			}
			cur.WriteRune(r)
		case depth == 0 && (r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\f'):
			flush()
		case depth == 0 && r == '/':
			flush()
			fields = append(fields, "/")
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return fields
}

// Length decodes a single numeric value with an optional unit.
func (v Value) Length() (Length, bool) {
	s := strings.TrimSpace(string(v))
	end := numericPrefix(s)
	if end == 0 {
		return Length{}, false
	}
	n, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return Length{}, false
	}
	unit := strings.ToLower(s[end:])
	for _, r := range unit {
		if r != '%' && (r < 'a' || r > 'z') {
			return Length{}, false
		}
	}
	if strings.Contains(unit, "%") && unit != "%" {
		return Length{}, false
	}
	return Length{Value: n, Unit: unit}, true
}

// Number decodes a bare number.
func (v Value) Number() (float64, bool) {
	l, ok := v.Length()
	if !ok || l.Unit != "" {
		return 0, false
	}
	return l.Value, true
}

// Color decodes any CSS color syntax into a non-premultiplied color.
func (v Value) Color() (color.NRGBA, bool) {
	s := strings.TrimSpace(string(v))
	if s == "" || strings.EqualFold(s, "currentcolor") {
		return color.NRGBA{}, false
	}
	c, err := csscolorparser.Parse(s)
	if err != nil {
		return color.NRGBA{}, false
	}
	r, g, b, a := c.RGBA255()
	return color.NRGBA{R: r, G: g, B: b, A: a}, true
}

func numericPrefix(s string) int {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	digits := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
			digits++
		}
	}
	if digits == 0 {
		return 0
	}
	return i
}
