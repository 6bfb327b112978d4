package bot

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestFormatBalance(t *testing.T) {
	assert.Equal(t, "0", FormatBalance(0))
	assert.Equal(t, "999", FormatBalance(999))
	assert.Equal(t, "1,000", FormatBalance(1000))
	assert.Equal(t, "1,234,567", FormatBalance(1234567))
	assert.Equal(t, "-1,000", FormatBalance(-1000))
}

func TestTruncateName(t *testing.T) {
	assert.Equal(t, "short", truncateName("short", 18))
	assert.Equal(t, "exactly18chars----", truncateName("exactly18chars----", 18))
	assert.Equal(t, "a-much-longer-n...", truncateName("a-much-longer-name-than-that", 18))

	// Multi-byte nicknames are cut on rune boundaries, never mid-character
	long := strings.Repeat("ü", 25)
	got := truncateName(long, 18)
	assert.Equal(t, strings.Repeat("ü", 15)+"...", got)
	assert.True(t, utf8.ValidString(got))
}
