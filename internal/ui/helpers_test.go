package ui

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "00:00", FormatDuration(0))
	assert.Equal(t, "00:45", FormatDuration(45*time.Second))
	assert.Equal(t, "02:05", FormatDuration(125*time.Second))
	// Minutes keep counting past the hour.
	assert.Equal(t, "61:01", FormatDuration(3661*time.Second))
	assert.Equal(t, "00:00", FormatDuration(-5*time.Second))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "exact", Truncate("exact", 5))
	assert.Equal(t, "long te...", Truncate("long text here", 10))
	assert.Equal(t, "ab", Truncate("abcdef", 2))
	assert.Equal(t, "", Truncate("anything", 0))
}
