package ledger

import (
	"context"
	"fmt"
	"sync"
)

// Memory keeps rows in process memory. IDs are 1-based positions.
type Memory struct {
	mx   sync.RWMutex
	rows []Row
}

func NewMemory(rows ...Row) *Memory {
	m := &Memory{}
	for _, r := range rows {
		m.add(r)
	}
	return m
}

func (m *Memory) Append(_ context.Context, row Row) error {
	m.mx.Lock()
	defer m.mx.Unlock()
	m.add(row)
	return nil
}

func (m *Memory) Rows(_ context.Context) ([]Row, error) {
	m.mx.RLock()
	defer m.mx.RUnlock()

	res := make([]Row, len(m.rows))
	copy(res, m.rows)
	return res, nil
}

func (m *Memory) Complete(_ context.Context, id int64, timeLeft, duration string) error {
	m.mx.Lock()
	defer m.mx.Unlock()

	if id < 1 || id > int64(len(m.rows)) {
		return fmt.Errorf("complete row %d: %w", id, ErrRowNotFound)
	}
	m.rows[id-1].TimeLeft = timeLeft
	m.rows[id-1].Duration = duration
	return nil
}

func (m *Memory) add(row Row) {
	row.ID = int64(len(m.rows) + 1)
	m.rows = append(m.rows, row)
}
