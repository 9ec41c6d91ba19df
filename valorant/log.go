package valorant

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/valorantgo/valorant/internal/transport"
)

// DefaultExchangeCapacity is how many exchanges a client remembers unless
// configured otherwise.
const DefaultExchangeCapacity = 50

// Exchange is one remembered API round-trip. Bodies and headers are never
// retained; the log exists for request inspection and debugging, not
// replay.
type Exchange struct {
	ID         uuid.UUID
	Time       time.Time
	Method     string
	URL        string
	StatusCode int
	Duration   time.Duration
	Err        error
}

// ExchangeLog is a bounded, newest-wins record of the client's recent
// exchanges. When full, the oldest entry is dropped. Exchanges that failed
// only because the caller canceled are not recorded; they say nothing about
// the API.
type ExchangeLog struct {
	mu       sync.Mutex
	capacity int
	entries  []Exchange
}

// NewExchangeLog creates a log holding at most capacity entries. A
// non-positive capacity falls back to DefaultExchangeCapacity.
func NewExchangeLog(capacity int) *ExchangeLog {
	if capacity <= 0 {
		capacity = DefaultExchangeCapacity
	}
	return &ExchangeLog{capacity: capacity}
}

// Record stores the outcome of one transport exchange.
func (l *ExchangeLog) Record(exchange transport.Exchange) {
	if errors.Is(exchange.Err, context.Canceled) {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.entries) == l.capacity {
		copy(l.entries, l.entries[1:])
		l.entries = l.entries[:len(l.entries)-1]
	}
	l.entries = append(l.entries, Exchange{
		ID:         uuid.New(),
		Time:       time.Now(),
		Method:     exchange.Method,
		URL:        exchange.URL,
		StatusCode: exchange.StatusCode,
		Duration:   exchange.Duration,
		Err:        exchange.Err,
	})
}

// Recent returns the remembered exchanges, oldest first.
func (l *ExchangeLog) Recent() []Exchange {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Exchange(nil), l.entries...)
}

// Len returns how many exchanges are currently remembered.
func (l *ExchangeLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
