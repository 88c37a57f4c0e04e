package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"bloggenie-server/internal/domain"
)

// MemoryStore is a process-local DocumentStore used in tests and demo mode.
type MemoryStore struct {
	mu       sync.RWMutex
	entities map[string]map[string]domain.Record
	order    map[string][]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entities: make(map[string]map[string]domain.Record),
		order:    make(map[string][]string),
	}
}

func (s *MemoryStore) List(ctx context.Context, entity string, q domain.Query, token string) ([]domain.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := s.entities[entity]
	out := make([]domain.Record, 0, len(rows))
	for _, id := range s.order[entity] {
		if r, ok := rows[id]; ok {
			out = append(out, cloneRecord(r))
		}
	}
	return applyQuery(out, q), nil
}

func (s *MemoryStore) Get(ctx context.Context, entity, id string, token string) (domain.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.entities[entity][id]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}
	return cloneRecord(r), nil
}

func (s *MemoryStore) Create(ctx context.Context, entity string, fields domain.Record, token string) (domain.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r := cloneRecord(fields)
	id := getString(r, "id")
	if id == "" {
		id = uuid.NewString()
		r["id"] = id
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rows, ok := s.entities[entity]
	if !ok {
		rows = make(map[string]domain.Record)
		s.entities[entity] = rows
	}
	if _, exists := rows[id]; exists {
		return nil, fmt.Errorf("%s record %s already exists", entity, id)
	}
	rows[id] = r
	s.order[entity] = append(s.order[entity], id)
	return cloneRecord(r), nil
}

func (s *MemoryStore) Update(ctx context.Context, entity, id string, fields domain.Record, token string) (domain.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.entities[entity][id]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}
	for k, v := range fields {
		if k == "id" {
			continue
		}
		r[k] = v
	}
	return cloneRecord(r), nil
}

func (s *MemoryStore) Delete(ctx context.Context, entity, id string, token string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entities[entity][id]; !ok {
		return domain.ErrRecordNotFound
	}
	delete(s.entities[entity], id)
	ids := s.order[entity]
	for i, existing := range ids {
		if existing == id {
			s.order[entity] = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	return nil
}
