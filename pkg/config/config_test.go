package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetDefaultValuesBackfillsZeroFields(t *testing.T) {
	c := &Config{}
	setDefaultValues(c)

	assert.Equal(t, 1280, c.ViewportWidth)
	assert.Equal(t, 800, c.ViewportHeight)
	assert.Equal(t, 30, c.NavigationTimeout)
	assert.Equal(t, 5.0, c.PixelThreshold)
	assert.Equal(t, 0.95, c.SSIMThreshold)
	assert.Equal(t, ".canvas/reviews", c.ArtifactRoot)
	assert.NotEmpty(t, c.SpecSearchRoots)
}

func TestSetDefaultValuesPreservesExplicitFields(t *testing.T) {
	c := &Config{ViewportWidth: 1920, PixelThreshold: 2.5}
	setDefaultValues(c)

	assert.Equal(t, 1920, c.ViewportWidth)
	assert.Equal(t, 2.5, c.PixelThreshold)
}

func TestMergeOverrideOnlyAppliesNonZeroFields(t *testing.T) {
	base := &Config{ViewportWidth: 1280, ViewportHeight: 800, ArtifactRoot: ".canvas/reviews"}
	override := &Config{ViewportWidth: 1440}

	merged := mergeOverride(base, override)

	assert.Equal(t, 1440, merged.ViewportWidth)
	assert.Equal(t, 800, merged.ViewportHeight)
	assert.Equal(t, ".canvas/reviews", merged.ArtifactRoot)
}
