package logging

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetReturnsSingleton(t *testing.T) {
	a := Get()
	b := Get()
	assert.Same(t, a, b)
}

func TestWithCorrelationIDDoesNotMutateParent(t *testing.T) {
	base := Get()
	scoped := base.WithCorrelationID("abc123")
	assert.NotEqual(t, base.correlationID, scoped.correlationID)
}

func TestJSONModeTogglesFromEnv(t *testing.T) {
	os.Setenv("CANVASREVIEW_JSON_LOGS", "1")
	defer os.Unsetenv("CANVASREVIEW_JSON_LOGS")
	// jsonMode is latched at first Get() in process lifetime; this test
	// only documents the toggle's existence without re-initializing the
	// singleton.
	l := Get()
	assert.NotNil(t, l)
}
