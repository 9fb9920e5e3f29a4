package store

import (
	"sync"
)

// Severity classifies a notification for display.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
)

// Notification is a transient message queued for the user.
type Notification struct {
	Message  string
	Severity Severity
}

// Notifier is a FIFO queue of transient notifications. There is no
// deduplication and no priority; the consumer shows the front entry and
// dequeues it on dismissal.
type Notifier struct {
	mutex sync.Mutex
	queue []Notification
}

// NewNotifier creates an empty notification queue.
func NewNotifier() *Notifier {
	return &Notifier{}
}

// Enqueue appends a notification to the queue.
func (notifier *Notifier) Enqueue(notification Notification) {
	notifier.mutex.Lock()
	defer notifier.mutex.Unlock()

	notifier.queue = append(notifier.queue, notification)
}

// Dequeue removes and returns the oldest notification.
func (notifier *Notifier) Dequeue() (Notification, bool) {
	notifier.mutex.Lock()
	defer notifier.mutex.Unlock()

	if len(notifier.queue) == 0 {
		return Notification{}, false
	}

	notification := notifier.queue[0]
	notifier.queue = notifier.queue[1:]

	return notification, true
}

// Len returns the number of queued notifications.
func (notifier *Notifier) Len() int {
	notifier.mutex.Lock()
	defer notifier.mutex.Unlock()

	return len(notifier.queue)
}

// Clear drops every queued notification.
func (notifier *Notifier) Clear() {
	notifier.mutex.Lock()
	defer notifier.mutex.Unlock()

	notifier.queue = nil
}

// Error queues an error message.
func (notifier *Notifier) Error(message string) {
	if message == "" {
		message = "unknown error"
	}

	notifier.Enqueue(Notification{Message: message, Severity: SeverityError})
}

// Success queues a success message.
func (notifier *Notifier) Success(message string) {
	notifier.Enqueue(Notification{Message: message, Severity: SeveritySuccess})
}
