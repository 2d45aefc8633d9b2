package services

import (
	"log"
	"sync"
)

// NotificationLevel grades a toast.
type NotificationLevel string

const (
	NotifyInfo    NotificationLevel = "info"
	NotifySuccess NotificationLevel = "success"
	NotifyWarning NotificationLevel = "warning"
	NotifyError   NotificationLevel = "error"
)

// Notification is a single user-facing toast.
type Notification struct {
	Level       NotificationLevel `json:"level"`
	Title       string            `json:"title"`
	Description string            `json:"description,omitempty"`
}

// Notifier delivers user-facing notifications. Flows treat delivery as
// fire-and-forget.
type Notifier interface {
	Notify(level NotificationLevel, title, description string)
}

// LogNotifier writes notifications through the engine logger.
type LogNotifier struct {
	logger *log.Logger
}

// NewLogNotifier creates a notifier backed by the given logger.
func NewLogNotifier(logger *log.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(level NotificationLevel, title, description string) {
	if n.logger == nil {
		return
	}
	if description == "" {
		n.logger.Printf("notify [%s] %s", level, title)
		return
	}
	n.logger.Printf("notify [%s] %s: %s", level, title, description)
}

// CollectingNotifier buffers notifications so the facade can drain them to
// the client, and tests can assert on them.
type CollectingNotifier struct {
	mu      sync.Mutex
	pending []Notification
}

// NewCollectingNotifier creates an empty collecting notifier.
func NewCollectingNotifier() *CollectingNotifier {
	return &CollectingNotifier{}
}

func (n *CollectingNotifier) Notify(level NotificationLevel, title, description string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.pending = append(n.pending, Notification{Level: level, Title: title, Description: description})
}

// Drain returns the buffered notifications and clears the buffer.
func (n *CollectingNotifier) Drain() []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := n.pending
	n.pending = nil
	return out
}

// Peek returns the buffered notifications without clearing them.
func (n *CollectingNotifier) Peek() []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Notification(nil), n.pending...)
}

// TeeNotifier fans a notification out to several notifiers.
type TeeNotifier struct {
	targets []Notifier
}

// NewTeeNotifier creates a notifier that forwards to all targets.
func NewTeeNotifier(targets ...Notifier) *TeeNotifier {
	return &TeeNotifier{targets: targets}
}

func (n *TeeNotifier) Notify(level NotificationLevel, title, description string) {
	for _, t := range n.targets {
		t.Notify(level, title, description)
	}
}
