// Package outbox is the transactional-outbox adapter: the OutboxMessage
// model, its state machine, and the Postgres repository the Unit of Work
// and the relay share. Grounded on the teacher's metadata-outbox adapter
// (_examples/LerianStudio-midaz/components/transaction/internal/adapters/postgres/outbox/*_test.go
// — read as a test-only spec since the corresponding source file was
// filtered from the retrieval pack): the PENDING→PROCESSING→{PUBLISHED,
// FAILED→DLQ} state machine, SanitizeErrorMessage, and SecureRandomFloat64
// are reproduced here, adapted from a generic metadata envelope to this
// system's domain-event envelope (spec.md §3 OutboxMessage, §4.6 relay).
package outbox

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/json"
	"errors"
	"regexp"
	"time"

	"github.com/google/uuid"
)

// OutboxStatus is the lifecycle state of one outbox row, layered on top of
// the processed-on/retry-count columns spec.md §3 requires: Status is a
// derived convenience the relay and dashard read, not a replacement for
// those columns.
type OutboxStatus string

const (
	StatusPending    OutboxStatus = "PENDING"
	StatusProcessing OutboxStatus = "PROCESSING"
	StatusPublished  OutboxStatus = "PUBLISHED"
	StatusFailed     OutboxStatus = "FAILED"
	StatusDLQ        OutboxStatus = "DLQ"
)

// ValidOutboxTransitions enumerates the legal state transitions.
var ValidOutboxTransitions = map[OutboxStatus][]OutboxStatus{
	StatusPending:    {StatusProcessing},
	StatusProcessing: {StatusPublished, StatusFailed},
	StatusFailed:     {StatusProcessing, StatusDLQ},
	StatusPublished:  {},
	StatusDLQ:        {},
}

// CanTransitionTo reports whether moving from s to target is legal.
func (s OutboxStatus) CanTransitionTo(target OutboxStatus) bool {
	for _, allowed := range ValidOutboxTransitions[s] {
		if allowed == target {
			return true
		}
	}

	return false
}

// IsTerminal reports whether s accepts no further transitions.
func (s OutboxStatus) IsTerminal() bool {
	return s == StatusPublished || s == StatusDLQ
}

// DefaultMaxRetries is the retry bound spec.md §4.6 mandates (Outbox.MaxRetries).
const DefaultMaxRetries = 3

// errTransition is returned by Advance when the requested move is illegal.
var errTransition = errors.New("illegal outbox status transition")

// Message is a persisted pending domain event (spec.md §3 OutboxMessage).
type Message struct {
	ID         uuid.UUID
	Type       string
	Content    json.RawMessage
	OccurredOn time.Time
	ProcessedOn *time.Time
	RetryCount int
	LastError   *string
	MaxRetries  int
	Status      OutboxStatus
}

// NewMessage builds a pending Message from an encoded event envelope.
func NewMessage(eventType string, payload json.RawMessage, occurredOn time.Time) *Message {
	return &Message{
		ID:          uuid.New(),
		Type:        eventType,
		Content:     payload,
		OccurredOn:  occurredOn,
		RetryCount:  0,
		MaxRetries:  DefaultMaxRetries,
		Status:      StatusPending,
	}
}

// Advance moves the message to target, validating the transition.
func (m *Message) Advance(target OutboxStatus) error {
	if !m.Status.CanTransitionTo(target) {
		return errTransition
	}

	m.Status = target

	return nil
}

// MarkProcessing transitions a picked-up row from PENDING (or a retrying
// FAILED) to PROCESSING; the poller calls this before attempting delivery.
func (m *Message) MarkProcessing() error {
	return m.Advance(StatusProcessing)
}

// MarkPublished records a successful delivery: processed-on is stamped,
// last-error cleared, status set to the terminal PUBLISHED state. Callers
// must already have transitioned the row to PROCESSING via MarkProcessing.
func (m *Message) MarkPublished(now time.Time) {
	m.ProcessedOn = &now
	m.LastError = nil
	_ = m.Advance(StatusPublished)
}

// MarkFailed increments retry-count and stores a sanitized error message.
// Once retry-count reaches MaxRetries the message moves to the dead-letter
// state and is excluded from the poller's query (spec.md §4.6). Callers
// must already have transitioned the row to PROCESSING via MarkProcessing.
func (m *Message) MarkFailed(cause error) {
	m.RetryCount++
	msg := SanitizeErrorMessage(cause.Error())
	m.LastError = &msg

	_ = m.Advance(StatusFailed)

	if m.RetryCount >= m.MaxRetries {
		_ = m.Advance(StatusDLQ)
	}
}

const maxSanitizedLength = 500

var (
	emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	phonePattern = regexp.MustCompile(`\b\d{3}[-.\s]?\d{3}[-.\s]?\d{4}\b`)
	ipPattern    = regexp.MustCompile(`\b(?:\d{1,3}\.){3}\d{1,3}\b`)
)

// SanitizeErrorMessage redacts PII-shaped substrings (emails, phone
// numbers, IPv4 addresses) from a stored error message and truncates it to
// a bounded length before persistence, so the outbox table never becomes an
// incidental PII store.
func SanitizeErrorMessage(msg string) string {
	msg = emailPattern.ReplaceAllString(msg, "[REDACTED]")
	msg = phonePattern.ReplaceAllString(msg, "[REDACTED]")
	msg = ipPattern.ReplaceAllString(msg, "[REDACTED]")

	if len(msg) > maxSanitizedLength {
		msg = msg[:maxSanitizedLength] + "...[truncated]"
	}

	return msg
}

// SecureRandomFloat64 returns a cryptographically random value in [0, 1),
// used by the relay to jitter retry backoff without a math/rand dependency.
func SecureRandomFloat64() float64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0
	}

	return float64(binary.BigEndian.Uint64(buf[:])>>11) / (1 << 53)
}
