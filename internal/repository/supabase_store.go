package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/supabase-community/postgrest-go"

	"bloggenie-server/internal/domain"
)

// SupabaseStore maps DocumentStore calls onto PostgREST tables of the same name.
type SupabaseStore struct {
	supabaseClient domain.SupabaseClient
	logger         domain.Logger
}

func NewSupabaseStore(supabaseClient domain.SupabaseClient, logger domain.Logger) *SupabaseStore {
	return &SupabaseStore{
		supabaseClient: supabaseClient,
		logger:         logger,
	}
}

func (s *SupabaseStore) List(ctx context.Context, entity string, q domain.Query, token string) ([]domain.Record, error) {
	client, err := s.supabaseClient.GetClientWithToken(token)
	if err != nil {
		return nil, fmt.Errorf("failed to get authenticated client: %w", err)
	}

	query := client.From(entity).Select("*", "", false)
	for col, val := range q.Filter {
		query = query.Eq(col, fmt.Sprint(val))
	}
	if q.OrderBy != "" {
		query = query.Order(q.OrderBy, &postgrest.OrderOpts{Ascending: !q.Descending})
	}
	if q.Limit > 0 {
		query = query.Limit(q.Limit, "")
	}

	data, _, err := query.Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", entity, err)
	}
	return decodeRows(data)
}

func (s *SupabaseStore) Get(ctx context.Context, entity, id string, token string) (domain.Record, error) {
	client, err := s.supabaseClient.GetClientWithToken(token)
	if err != nil {
		return nil, fmt.Errorf("failed to get authenticated client: %w", err)
	}

	data, _, err := client.From(entity).
		Select("*", "", false).
		Eq("id", id).
		Limit(1, "").
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to get %s %s: %w", entity, id, err)
	}
	rows, err := decodeRows(data)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, domain.ErrRecordNotFound
	}
	return rows[0], nil
}

func (s *SupabaseStore) Create(ctx context.Context, entity string, fields domain.Record, token string) (domain.Record, error) {
	client, err := s.supabaseClient.GetClientWithToken(token)
	if err != nil {
		return nil, fmt.Errorf("failed to get authenticated client: %w", err)
	}

	data, _, err := client.From(entity).
		Insert(map[string]interface{}(fields), false, "", "representation", "").
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", entity, err)
	}
	rows, err := decodeRows(data)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("failed to create %s: no row returned", entity)
	}
	return rows[0], nil
}

func (s *SupabaseStore) Update(ctx context.Context, entity, id string, fields domain.Record, token string) (domain.Record, error) {
	client, err := s.supabaseClient.GetClientWithToken(token)
	if err != nil {
		return nil, fmt.Errorf("failed to get authenticated client: %w", err)
	}

	update := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		if k != "id" {
			update[k] = v
		}
	}

	data, _, err := client.From(entity).
		Update(update, "representation", "").
		Eq("id", id).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to update %s %s: %w", entity, id, err)
	}
	rows, err := decodeRows(data)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, domain.ErrRecordNotFound
	}
	return rows[0], nil
}

func (s *SupabaseStore) Delete(ctx context.Context, entity, id string, token string) error {
	client, err := s.supabaseClient.GetClientWithToken(token)
	if err != nil {
		return fmt.Errorf("failed to get authenticated client: %w", err)
	}

	data, _, err := client.From(entity).
		Delete("representation", "").
		Eq("id", id).
		Execute()
	if err != nil {
		return fmt.Errorf("failed to delete %s %s: %w", entity, id, err)
	}
	rows, err := decodeRows(data)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return domain.ErrRecordNotFound
	}
	s.logger.Debug("Record deleted", "entity", entity, "id", id)
	return nil
}

func decodeRows(data []byte) ([]domain.Record, error) {
	var rows []map[string]interface{}
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	out := make([]domain.Record, len(rows))
	for i, r := range rows {
		out[i] = domain.Record(r)
	}
	return out, nil
}
