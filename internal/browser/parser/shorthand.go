// internal/browser/parser/shorthand.go
package parser

import (
	"strings"
)

var sides = [4]string{"top", "right", "bottom", "left"}

var corners = [4]string{"top-left", "top-right", "bottom-right", "bottom-left"}

var borderStyles = map[string]bool{
	"none": true, "hidden": true, "dotted": true, "dashed": true, "solid": true,
	"double": true, "groove": true, "ridge": true, "inset": true, "outset": true,
}

var borderWidthKeywords = map[string]bool{"thin": true, "medium": true, "thick": true}

// ExpandShorthand rewrites a shorthand declaration into its longhands. Any
// other declaration is returned unchanged.
func ExpandShorthand(d Declaration) []Declaration {
	fields := d.Value.Fields()
	switch d.Property {
	case "margin", "padding":
		return expand1To4(d, fields, func(i int) Property {
			return Property(string(d.Property) + "-" + sides[i])
		})
	case "border-width", "border-style", "border-color":
		suffix := strings.TrimPrefix(string(d.Property), "border-")
		return expand1To4(d, fields, func(i int) Property {
			return Property("border-" + sides[i] + "-" + suffix)
		})
	case "border-radius":
		// Elliptical radii keep only the horizontal component.
		if i := indexOf(fields, "/"); i >= 0 {
			fields = fields[:i]
		}
		return expand1To4(d, fields, func(i int) Property {
			return Property("border-" + corners[i] + "-radius")
		})
	case "border":
		var out []Declaration
		for _, side := range sides {
			out = append(out, expandBorderSide(d, side, fields)...)
		}
		return out
	case "border-top", "border-right", "border-bottom", "border-left":
		return expandBorderSide(d, strings.TrimPrefix(string(d.Property), "border-"), fields)
	case "background":
		for _, f := range fields {
			if _, ok := Value(f).Color(); ok {
				return []Declaration{{Property: "background-color", Value: Value(f), Important: d.Important}}
			}
		}
		return nil
	}
	return []Declaration{d}
}

// expand1To4 applies the CSS 1-to-4 value rule (top, right, bottom, left).
func expand1To4(d Declaration, fields []string, name func(int) Property) []Declaration {
	var vals [4]string
	switch len(fields) {
	case 1:
		vals = [4]string{fields[0], fields[0], fields[0], fields[0]}
	case 2:
		vals = [4]string{fields[0], fields[1], fields[0], fields[1]}
	case 3:
		vals = [4]string{fields[0], fields[1], fields[2], fields[1]}
	case 4:
		vals = [4]string{fields[0], fields[1], fields[2], fields[3]}
	default:
		return nil
	}
	out := make([]Declaration, 4)
	for i := range out {
		out[i] = Declaration{Property: name(i), Value: Value(vals[i]), Important: d.Important}
	}
	return out
}

func expandBorderSide(d Declaration, side string, fields []string) []Declaration {
	prefix := "border-" + side + "-"
	width, style, col := "medium", "none", "currentcolor"
	for _, f := range fields {
		lower := strings.ToLower(f)
		switch {
		case borderStyles[lower]:
			style = lower
		case borderWidthKeywords[lower]:
			width = lower
		default:
			if _, ok := Value(f).Length(); ok {
				width = f
			} else {
				col = f
			}
		}
	}
	return []Declaration{
		{Property: Property(prefix + "width"), Value: Value(width), Important: d.Important},
		{Property: Property(prefix + "style"), Value: Value(style), Important: d.Important},
		{Property: Property(prefix + "color"), Value: Value(col), Important: d.Important},
	}
}

func indexOf(fields []string, s string) int {
	for i, f := range fields {
		if f == s {
			return i
		}
	}
	return -1
}
