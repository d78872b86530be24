package capture

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConvertDOMNodePreservesStructure(t *testing.T) {
	raw := rawDOMNode{
		Tag: "div",
		ID:  "root",
		Children: []rawDOMNode{
			{Tag: "p", Text: "hello"},
			{Tag: "span", Text: "world"},
		},
	}

	node := convertDOMNode(raw)

	assert.Equal(t, "div", node.Tag)
	assert.Equal(t, "root", node.ID)
	assert.Len(t, node.Children, 2)
	assert.Equal(t, "hello", node.Children[0].Text)
}

func TestDOMBoundsCompactVsFull(t *testing.T) {
	assert.Less(t, domBoundsCompact.maxDepth, domBoundsFull.maxDepth)
	assert.Less(t, domBoundsCompact.maxChildren, domBoundsFull.maxChildren)
	assert.Less(t, domBoundsCompact.maxText, domBoundsFull.maxText)
}

func TestExtractElementsConversionPreservesParentChain(t *testing.T) {
	raw := []rawElement{
		{
			Handle: 1,
			Tag:    "button",
			ParentChain: []rawParentElem{
				{Tag: "div", ID: "card"},
				{Tag: "section"},
			},
		},
	}

	out := make(map[int]*ElementInfo, len(raw))
	for _, r := range raw {
		info := &ElementInfo{Handle: r.Handle, Tag: r.Tag}
		for _, p := range r.ParentChain {
			info.ParentChain = append(info.ParentChain, ElementInfo{Tag: p.Tag, ID: p.ID})
		}
		out[r.Handle] = info
	}

	assert.Len(t, out[1].ParentChain, 2)
	assert.Equal(t, "card", out[1].ParentChain[0].ID)
}
