// Package notify implements the notification log: an append-only text file
// receiving one timestamped line per state-changing event. It stands in for
// a real notification or email system.
package notify

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/openshelf/openshelf/internal/entities"
)

// Log appends timestamped lines to a single file. Appends are serialized
// so concurrent requests never interleave partial lines.
type Log struct {
	path string
	mu   sync.Mutex
}

// NewLog creates a notification log writing to the given path, creating
// the parent directory if needed.
func NewLog(path string) (*Log, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create notification log directory: %w", err)
	}
	return &Log{path: path}, nil
}

// Append writes one timestamped line to the log.
func (l *Log) Append(format string, args ...any) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open notification log: %w", err)
	}
	defer f.Close()

	line := fmt.Sprintf("[%s] %s\n", time.Now().Format("2006-01-02 15:04:05"), fmt.Sprintf(format, args...))
	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("write notification log: %w", err)
	}
	return nil
}

// RequestDecided records a borrow-request decision.
func (l *Log) RequestDecided(requestID uint, status entities.RequestStatus) error {
	return l.Append("Borrow request ID %d was %s.", requestID, strings.ToLower(string(status)))
}

// ReviewPosted records a newly submitted review.
func (l *Log) ReviewPosted(bookID, userID uint) error {
	return l.Append("New review posted for book ID %d by user ID %d.", bookID, userID)
}

// Path returns the log file path.
func (l *Log) Path() string {
	return l.path
}
