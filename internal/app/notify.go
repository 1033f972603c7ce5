// internal/app/notify.go
package app

import (
	"fmt"
	"io"
	"sync"
)

type Level string

const (
	LevelSuccess Level = "success"
	LevelInfo    Level = "info"
	LevelError   Level = "error"
)

// Notification is one user-facing message, already localized.
type Notification struct {
	Level   Level
	Message string
}

type Notifier interface {
	Notify(n Notification)
}

// WriterNotifier prints notifications one per line. Errors get a prefix so
// they stand out in a terminal.
type WriterNotifier struct {
	mu sync.Mutex
	w  io.Writer
}

func NewWriterNotifier(w io.Writer) *WriterNotifier {
	return &WriterNotifier{w: w}
}

func (n *WriterNotifier) Notify(note Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if note.Level == LevelError {
		fmt.Fprintf(n.w, "error: %s\n", note.Message)
		return
	}
	fmt.Fprintln(n.w, note.Message)
}
