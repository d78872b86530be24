// Package selector synthesizes best-effort CSS selectors for captured
// elements, per the id-then-tag-plus-classes-then-ancestors ladder.
// This is a human/AI-facing hint, not a uniqueness guarantee.
package selector

import "strings"

// utilityPrefixes are exact class-name prefixes treated as
// framework-generated utility classes and excluded from selectors.
var utilityPrefixes = []string{
	"flex", "grid", "p-", "m-", "text-", "bg-", "w-", "h-", "col-", "row-", "d-", "css-",
}

// ElementInfo is the minimal shape the synthesizer needs: a tag name,
// optional id, class list, and an ancestor chain ordered from nearest
// parent to furthest (outermost captured ancestor last).
type ElementInfo struct {
	Tag     string
	ID      string
	Classes []string
	Parents []ElementInfo // up to 3, nearest first
}

// Build returns a selector string for el. It never returns an empty
// string and never panics on malformed input.
func Build(el ElementInfo) string {
	if el.ID != "" {
		return "#" + el.ID
	}

	local := localSelector(el.Tag, el.Classes, 2)

	ancestors := el.Parents
	if len(ancestors) > 3 {
		ancestors = ancestors[:3]
	}

	var parts []string
	for i := len(ancestors) - 1; i >= 0; i-- {
		parts = append(parts, ancestorSelector(ancestors[i]))
	}
	parts = append(parts, local)

	return strings.Join(parts, " > ")
}

// localSelector builds "tag.class1.class2" using up to maxClasses
// non-utility classes, preferring earlier (outer-declared) classes.
func localSelector(tag string, classes []string, maxClasses int) string {
	if tag == "" {
		tag = "div"
	}
	sel := tag
	kept := 0
	for _, c := range classes {
		if kept >= maxClasses {
			break
		}
		if isUtilityClass(c) || c == "" {
			continue
		}
		sel += "." + c
		kept++
	}
	return sel
}

// ancestorSelector builds one ancestor segment: id wins outright,
// otherwise tag plus a single non-utility class.
func ancestorSelector(el ElementInfo) string {
	if el.ID != "" {
		return "#" + el.ID
	}
	return localSelector(el.Tag, el.Classes, 1)
}

func isUtilityClass(class string) bool {
	for _, prefix := range utilityPrefixes {
		if strings.HasPrefix(class, prefix) {
			return true
		}
	}
	return false
}
