// Package report renders screening results and keeps the run journal.
package report

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

const timestampLayout = "15:04:05"

type Entry struct {
	Time    time.Time `json:"time"`
	Level   Level     `json:"level"`
	Message string    `json:"message"`
}

// Journal is the operator-facing activity log of a session. A nil *Journal
// is a valid empty journal that discards entries.
type Journal struct {
	mu      sync.Mutex
	entries []Entry
	now     func() time.Time
}

func NewJournal() *Journal {
	return &Journal{now: time.Now}
}

func (j *Journal) Info(format string, args ...any) { j.add(LevelInfo, format, args...) }

func (j *Journal) Warn(format string, args ...any) { j.add(LevelWarning, format, args...) }

func (j *Journal) Error(format string, args ...any) { j.add(LevelError, format, args...) }

func (j *Journal) add(level Level, format string, args ...any) {
	if j == nil {
		return
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	now := time.Now
	if j.now != nil {
		now = j.now
	}

	j.entries = append(j.entries, Entry{
		Time:    now(),
		Level:   level,
		Message: fmt.Sprintf(format, args...),
	})
}

// Entries returns a copy of the journal.
func (j *Journal) Entries() []Entry {
	if j == nil {
		return nil
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	out := make([]Entry, len(j.entries))
	copy(out, j.entries)
	return out
}

func (j *Journal) Len() int {
	if j == nil {
		return 0
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	return len(j.entries)
}

func (j *Journal) Clear() {
	if j == nil {
		return
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = nil
}

// WriteTo writes one "[15:04:05] LEVEL: message" line per entry.
func (j *Journal) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for _, e := range j.Entries() {
		n, err := fmt.Fprintf(w, "[%s] %s: %s\n", e.Time.Format(timestampLayout), strings.ToUpper(string(e.Level)), e.Message)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}
