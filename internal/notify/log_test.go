package notify

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openshelf/openshelf/internal/entities"
)

func TestLog_Append(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "email_logs.txt")
	log, err := NewLog(path)
	require.NoError(t, err)

	require.NoError(t, log.Append("hello %s", "world"))
	require.NoError(t, log.Append("second line"))

	content, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(string(content), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "hello world")
	assert.Contains(t, lines[1], "second line")

	// Each line starts with a bracketed timestamp
	for _, line := range lines {
		assert.Regexp(t, `^\[\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}\] `, line)
	}
}

func TestLog_RequestDecided(t *testing.T) {
	path := filepath.Join(t.TempDir(), "email_logs.txt")
	log, err := NewLog(path)
	require.NoError(t, err)

	require.NoError(t, log.RequestDecided(42, entities.RequestStatusApproved))
	require.NoError(t, log.RequestDecided(43, entities.RequestStatusRejected))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "Borrow request ID 42 was approved.")
	assert.Contains(t, string(content), "Borrow request ID 43 was rejected.")
}

func TestLog_ReviewPosted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "email_logs.txt")
	log, err := NewLog(path)
	require.NoError(t, err)

	require.NoError(t, log.ReviewPosted(7, 3))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "New review posted for book ID 7 by user ID 3.")
}
