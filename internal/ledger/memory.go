package ledger

import (
	"context"
	"sync"
	"time"

	"github.com/relaycore/securemsg/internal/domain"
)

// Memory is the in-memory LedgerStore the test harness supplies to
// exercise every §8 property without a database (§9). A single mutex
// guards all records, and Update does the same compare-and-set on
// Version that the Postgres implementation does on its version column.
type Memory struct {
	mu       sync.Mutex
	records  map[string]*domain.HandshakeRecord
	messages []*domain.MessageRecord
	audit    []*domain.AuditEntry
}

// NewMemory returns an empty in-memory ledger.
func NewMemory() *Memory {
	return &Memory{
		records: make(map[string]*domain.HandshakeRecord),
	}
}

func clone(rec *domain.HandshakeRecord) *domain.HandshakeRecord {
	c := *rec
	return &c
}

func (m *Memory) Create(ctx context.Context, rec *domain.HandshakeRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.records[rec.SessionID]; exists {
		return ErrAlreadyExists
	}
	rec.Version = 1
	m.records[rec.SessionID] = clone(rec)
	return nil
}

func (m *Memory) Get(ctx context.Context, sessionID string) (*domain.HandshakeRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[sessionID]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(rec), nil
}

func (m *Memory) Update(ctx context.Context, rec *domain.HandshakeRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur, ok := m.records[rec.SessionID]
	if !ok {
		return ErrNotFound
	}
	if cur.Version != rec.Version {
		return ErrVersionConflict
	}
	updated := clone(rec)
	updated.Version = cur.Version + 1
	m.records[rec.SessionID] = updated
	return nil
}

func (m *Memory) ListPendingForResponder(ctx context.Context, responderID string) ([]*domain.HandshakeRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*domain.HandshakeRecord
	for _, rec := range m.records {
		if rec.ResponderID == responderID && rec.Status == domain.StatusInitiated {
			out = append(out, clone(rec))
		}
	}
	return out, nil
}

func (m *Memory) ListExpirable(ctx context.Context) ([]*domain.HandshakeRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	var out []*domain.HandshakeRecord
	for _, rec := range m.records {
		if rec.Status != domain.StatusCompleted && !rec.Terminal() && now.After(rec.ExpiresAt) {
			out = append(out, clone(rec))
		}
	}
	return out, nil
}

// SaveMessage appends msg and bumps the sender-direction sequence
// counter on the referenced handshake record under the same lock, so
// the counter update and the message insert are atomic (§4.4 item 7).
func (m *Memory) SaveMessage(ctx context.Context, msg *domain.MessageRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[msg.SessionID]
	if !ok {
		return ErrNotFound
	}

	if msg.From == rec.InitiatorID {
		rec.InitiatorLastSequence = msg.SequenceNumber
	} else {
		rec.ResponderLastSequence = msg.SequenceNumber
	}
	m.messages = append(m.messages, msg)
	return nil
}

func (m *Memory) Conversation(ctx context.Context, userA, userB string) ([]*domain.MessageRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*domain.MessageRecord
	for _, msg := range m.messages {
		if (msg.From == userA && msg.To == userB) || (msg.From == userB && msg.To == userA) {
			out = append(out, msg)
		}
	}
	return out, nil
}

func (m *Memory) AppendAudit(ctx context.Context, entry *domain.AuditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.audit = append(m.audit, entry)
	return nil
}

// Audit exposes recorded audit entries for tests to assert against.
func (m *Memory) Audit() []*domain.AuditEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.AuditEntry, len(m.audit))
	copy(out, m.audit)
	return out
}
