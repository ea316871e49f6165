// Package notify delivers user-facing toast messages.
package notify

import (
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"
)

// Kind is the severity of a notification.
type Kind string

const (
	Success Kind = "success"
	Error   Kind = "error"
	Info    Kind = "info"
	Warning Kind = "warning"
)

// Notifier receives one message per event worth telling the user about.
type Notifier interface {
	Notify(kind Kind, message string)
}

var markers = map[Kind]string{
	Success: "✓",
	Error:   "!",
	Info:    "·",
	Warning: "?",
}

// Console prints notifications as indented, marked lines.
type Console struct {
	Out io.Writer
}

func (c Console) Notify(kind Kind, message string) {
	marker, ok := markers[kind]
	if !ok {
		marker = "-"
	}
	fmt.Fprintf(c.Out, "  %s %s\n", marker, message)
}

// Zap mirrors notifications into the log.
type Zap struct {
	Log *zap.Logger
}

func (z Zap) Notify(kind Kind, message string) {
	if z.Log == nil {
		return
	}
	switch kind {
	case Error:
		z.Log.Warn(message, zap.String("notification", string(kind)))
	default:
		z.Log.Debug(message, zap.String("notification", string(kind)))
	}
}

// Multi fans a notification out to every notifier.
type Multi []Notifier

func (m Multi) Notify(kind Kind, message string) {
	for _, n := range m {
		n.Notify(kind, message)
	}
}

// Message is a recorded notification.
type Message struct {
	Kind Kind
	Text string
}

// Recorder keeps every notification in memory.
type Recorder struct {
	mu       sync.Mutex
	messages []Message
}

func (r *Recorder) Notify(kind Kind, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, Message{Kind: kind, Text: message})
}

// Messages returns a copy of what was recorded.
func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Message, len(r.messages))
	copy(out, r.messages)
	return out
}

// Of returns the texts recorded with the given kind.
func (r *Recorder) Of(kind Kind) []string {
	var out []string
	for _, m := range r.Messages() {
		if m.Kind == kind {
			out = append(out, m.Text)
		}
	}
	return out
}
