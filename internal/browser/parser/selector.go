// internal/browser/parser/selector.go
package parser

import (
	"fmt"
	"strings"
)

// Specificity is the (id, class, tag) weight of a selector, compared
// lexicographically with the id count first.
type Specificity struct {
	IDs     int
	Classes int
	Tags    int
}

// Compare returns -1, 0 or 1.
func (s Specificity) Compare(o Specificity) int {
	switch {
	case s.IDs != o.IDs:
		return sign(s.IDs - o.IDs)
	case s.Classes != o.Classes:
		return sign(s.Classes - o.Classes)
	default:
		return sign(s.Tags - o.Tags)
	}
}

// Greater reports whether s strictly outranks o.
func (s Specificity) Greater(o Specificity) bool {
	return s.Compare(o) > 0
}

// Add combines two weights component-wise.
func (s Specificity) Add(o Specificity) Specificity {
	return Specificity{IDs: s.IDs + o.IDs, Classes: s.Classes + o.Classes, Tags: s.Tags + o.Tags}
}

func (s Specificity) String() string {
	return fmt.Sprintf("(%d,%d,%d)", s.IDs, s.Classes, s.Tags)
}

func sign(v int) int {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	}
	return 0
}

// Selector is a compound simple selector: optional tag, classes, optional id.
// An empty TagName or "*" matches any tag.
type Selector struct {
	TagName string
	Classes []string
	ID      string
}

// Specificity calculates the selector's weight. The universal selector adds nothing.
func (s Selector) Specificity() Specificity {
	var sp Specificity
	if s.ID != "" {
		sp.IDs = 1
	}
	sp.Classes = len(s.Classes)
	if s.TagName != "" && s.TagName != "*" {
		sp.Tags = 1
	}
	return sp
}

// IsValid checks if the selector has at least one component.
func (s Selector) IsValid() bool {
	return s.TagName != "" || s.ID != "" || len(s.Classes) > 0
}

// Matches reports whether s selects an element described by target, which is
// normally the element's complete selector. Matching is directional: classes
// on the target that s does not name never disqualify.
func (s Selector) Matches(target Selector) bool {
	if s.TagName != "" && s.TagName != "*" && !strings.EqualFold(s.TagName, target.TagName) {
		return false
	}
	if s.ID != "" && s.ID != target.ID {
		return false
	}
	for _, want := range s.Classes {
		found := false
		for _, have := range target.Classes {
			if have == want {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// String renders the selector in CSS syntax, e.g. "div.a.b#c".
func (s Selector) String() string {
	var b strings.Builder
	if s.TagName != "" {
		b.WriteString(s.TagName)
	}
	for _, c := range s.Classes {
		b.WriteByte('.')
		b.WriteString(c)
	}
	if s.ID != "" {
		b.WriteByte('#')
		b.WriteString(s.ID)
	}
	if b.Len() == 0 {
		return "*"
	}
	return b.String()
}
