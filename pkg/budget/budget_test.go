package budget

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEstimateTokensPlainText(t *testing.T) {
	assert.Equal(t, 0, EstimateTokens("", false))
	assert.Equal(t, 3, EstimateTokens("hello world!", false)) // 12 chars / 4
}

func TestEstimateTokensBase64DenserRatio(t *testing.T) {
	s := "QUJDREVGR0hJSktMTU5PUFFSU1RVVldYWVphYmNk" // 40 chars: 10 plain vs 12 base64 tokens
	plain := EstimateTokens(s, false)
	b64 := EstimateTokens(s, true)
	assert.Greater(t, b64, plain)
}

func TestBudgetAddWithinLimit(t *testing.T) {
	b := New(1000)
	err := b.Add("screenshot", 400)
	assert.NoError(t, err)
	assert.Equal(t, 400, b.TotalUsed())
	assert.Equal(t, 600, b.Remaining())
}

func TestBudgetAddExceedsLimit(t *testing.T) {
	b := New(100)
	err := b.Add("dom", 150)
	assert.Error(t, err)
	var exceeded *ErrExceeded
	assert.ErrorAs(t, err, &exceeded)
	assert.Equal(t, "dom", exceeded.Stage)
}

func TestBudgetShouldWarnNearLimit(t *testing.T) {
	b := New(100)
	assert.False(t, b.ShouldWarn())
	_ = b.Add("a11y", 85)
	assert.True(t, b.ShouldWarn())
}

func TestBudgetCanAffordIgnoresSameStageDoubleCount(t *testing.T) {
	b := New(100)
	_ = b.Add("dom", 50)
	assert.True(t, b.CanAfford("dom", 40))
	assert.False(t, b.CanAfford("a11y", 60))
}

func TestFromPresetFallsBackToFullReview(t *testing.T) {
	b := FromPreset("unknown_name")
	assert.Equal(t, Presets["full_review"], b.Limit)
}

func TestBudgetReset(t *testing.T) {
	b := New(1000)
	_ = b.Add("screenshot", 100)
	b.Reset()
	assert.Equal(t, 0, b.TotalUsed())
}
