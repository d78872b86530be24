package selector

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildPrefersID(t *testing.T) {
	got := Build(ElementInfo{Tag: "div", ID: "hero", Classes: []string{"flex", "card"}})
	assert.Equal(t, "#hero", got)
}

func TestBuildFallsBackToTagAndNonUtilityClasses(t *testing.T) {
	got := Build(ElementInfo{Tag: "button", Classes: []string{"flex", "btn-primary", "rounded"}})
	assert.Equal(t, "button.btn-primary.rounded", got)
}

func TestBuildCapsAtTwoLocalClasses(t *testing.T) {
	got := Build(ElementInfo{Tag: "span", Classes: []string{"a", "b", "c"}})
	assert.Equal(t, "span.a.b", got)
}

func TestBuildWithAncestorChain(t *testing.T) {
	el := ElementInfo{
		Tag:     "p",
		Classes: []string{"muted"},
		Parents: []ElementInfo{
			{Tag: "div", Classes: []string{"card-body"}},
			{Tag: "section", ID: "main"},
		},
	}
	got := Build(el)
	assert.Equal(t, "#main > div.card-body > p.muted", got)
}

func TestBuildNeverEmpty(t *testing.T) {
	got := Build(ElementInfo{})
	assert.NotEmpty(t, got)
}

func TestUtilityClassExactPrefixNotSubstring(t *testing.T) {
	// "bold-text" contains "d-" mid-word; only a prefix match marks a
	// class as a utility, so it is kept.
	got := Build(ElementInfo{Tag: "div", Classes: []string{"bold-text"}})
	assert.Equal(t, "div.bold-text", got)
}

func TestAncestorChainCapsAtThree(t *testing.T) {
	el := ElementInfo{
		Tag: "a",
		Parents: []ElementInfo{
			{Tag: "li"},
			{Tag: "ul"},
			{Tag: "nav"},
			{Tag: "header"}, // should be dropped, only 3 ancestors kept
		},
	}
	got := Build(el)
	assert.Equal(t, "nav > ul > li > a", got)
}
