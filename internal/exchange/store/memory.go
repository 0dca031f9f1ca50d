package store

import (
	"context"
	"sort"
	"sync"

	"giftex/internal/exchange/assign"
	"giftex/internal/exchange/models"
	id "giftex/pkg/domain"
	"giftex/pkg/platform/sentinel"
)

type participantKey struct {
	exchangeID id.ExchangeID
	userID     id.UserID
}

// Memory is an in-memory Store for tests and single-node development.
type Memory struct {
	mu           sync.RWMutex
	exchanges    map[id.ExchangeID]models.Exchange
	participants map[participantKey]models.Participant
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		exchanges:    make(map[id.ExchangeID]models.Exchange),
		participants: make(map[participantKey]models.Participant),
	}
}

// Transact snapshots state and restores it when fn fails, mirroring the
// rollback semantics of the PostgreSQL store. The store lock is not held
// across fn, so concurrent writers must be serialized by the caller (the
// service's per-exchange lock does this for assignment).
func (m *Memory) Transact(ctx context.Context, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	exSnap := make(map[id.ExchangeID]models.Exchange, len(m.exchanges))
	for k, v := range m.exchanges {
		exSnap[k] = v
	}
	pSnap := make(map[participantKey]models.Participant, len(m.participants))
	for k, v := range m.participants {
		pSnap[k] = v
	}
	m.mu.Unlock()

	if err := fn(ctx); err != nil {
		m.mu.Lock()
		m.exchanges = exSnap
		m.participants = pSnap
		m.mu.Unlock()
		return err
	}
	return nil
}

func (m *Memory) CreateExchange(ctx context.Context, ex *models.Exchange) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.exchanges[ex.ID]; exists {
		return sentinel.ErrConflict
	}
	m.exchanges[ex.ID] = *ex
	return nil
}

func (m *Memory) GetExchange(ctx context.Context, exID id.ExchangeID) (*models.Exchange, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ex, ok := m.exchanges[exID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &ex, nil
}

func (m *Memory) UpdateExchange(ctx context.Context, ex *models.Exchange) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.exchanges[ex.ID]; !ok {
		return sentinel.ErrNotFound
	}
	m.exchanges[ex.ID] = *ex
	return nil
}

func (m *Memory) DeleteExchange(ctx context.Context, exID id.ExchangeID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.exchanges[exID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(m.exchanges, exID)
	for key := range m.participants {
		if key.exchangeID == exID {
			delete(m.participants, key)
		}
	}
	return nil
}

func (m *Memory) ListExchanges(ctx context.Context) ([]*models.Exchange, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*models.Exchange, 0, len(m.exchanges))
	for _, ex := range m.exchanges {
		ex := ex
		out = append(out, &ex)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

func (m *Memory) AddParticipant(ctx context.Context, p *models.Participant) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := participantKey{exchangeID: p.ExchangeID, userID: p.UserID}
	if _, exists := m.participants[key]; exists {
		return sentinel.ErrConflict
	}
	m.participants[key] = *p
	return nil
}

func (m *Memory) GetParticipant(ctx context.Context, exID id.ExchangeID, userID id.UserID) (*models.Participant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.participants[participantKey{exchangeID: exID, userID: userID}]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &p, nil
}

func (m *Memory) UpdateParticipant(ctx context.Context, p *models.Participant) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := participantKey{exchangeID: p.ExchangeID, userID: p.UserID}
	if _, ok := m.participants[key]; !ok {
		return sentinel.ErrNotFound
	}
	m.participants[key] = *p
	return nil
}

func (m *Memory) RemoveParticipant(ctx context.Context, exID id.ExchangeID, userID id.UserID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := participantKey{exchangeID: exID, userID: userID}
	if _, ok := m.participants[key]; !ok {
		return sentinel.ErrNotFound
	}
	delete(m.participants, key)
	return nil
}

func (m *Memory) ListParticipants(ctx context.Context, exID id.ExchangeID) ([]*models.Participant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*models.Participant, 0)
	for key, p := range m.participants {
		if key.exchangeID != exID {
			continue
		}
		p := p
		out = append(out, &p)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UserID.String() < out[j].UserID.String()
	})
	return out, nil
}

func (m *Memory) CountParticipants(ctx context.Context, exID id.ExchangeID) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := 0
	for key := range m.participants {
		if key.exchangeID == exID {
			n++
		}
	}
	return n, nil
}

func (m *Memory) SetGifter(ctx context.Context, exID id.ExchangeID, recipient id.UserID, gifter id.UserID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := participantKey{exchangeID: exID, userID: recipient}
	p, ok := m.participants[key]
	if !ok {
		return sentinel.ErrNotFound
	}
	g := gifter
	p.GifterID = &g
	m.participants[key] = p
	return nil
}

func (m *Memory) ListByGifter(ctx context.Context, gifter id.UserID) ([]*models.Participant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*models.Participant, 0)
	for _, p := range m.participants {
		if p.GifterID != nil && *p.GifterID == gifter {
			p := p
			out = append(out, &p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UserID.String() < out[j].UserID.String()
	})
	return out, nil
}

func (m *Memory) HistorySnapshot(ctx context.Context, name string) ([]assign.HistoryExchange, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]assign.HistoryExchange, 0)
	for _, ex := range m.exchanges {
		if ex.Name != name {
			continue
		}
		out = append(out, m.historyLocked(ex))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

func (m *Memory) HistoryByIDs(ctx context.Context, exIDs []id.ExchangeID) ([]assign.HistoryExchange, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]assign.HistoryExchange, 0, len(exIDs))
	for _, exID := range exIDs {
		ex, ok := m.exchanges[exID]
		if !ok {
			continue
		}
		out = append(out, m.historyLocked(ex))
	}
	return out, nil
}

// historyLocked builds the history view of one exchange. Caller holds m.mu.
func (m *Memory) historyLocked(ex models.Exchange) assign.HistoryExchange {
	h := assign.HistoryExchange{
		ID:        ex.ID,
		Name:      ex.Name,
		Status:    ex.Status,
		CreatedAt: ex.CreatedAt,
	}
	for key, p := range m.participants {
		if key.exchangeID != ex.ID || p.GifterID == nil {
			continue
		}
		h.Pairs = append(h.Pairs, assign.Pair{Gifter: *p.GifterID, Recipient: p.UserID})
	}
	return h
}
