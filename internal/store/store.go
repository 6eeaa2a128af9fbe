package store

import "context"

// tokenKey is the fixed key the persisted session token lives under.
const tokenKey = "authToken"

// TokenStore is the durable client-side home of the session token. An absent
// token is reported as ("", nil), not an error.
type TokenStore interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

// MemStore is an in-memory TokenStore for tests.
type MemStore struct {
	token string
}

func NewMemStore() *MemStore {
	return &MemStore{}
}

func (s *MemStore) Load(ctx context.Context) (string, error) {
	return s.token, nil
}

func (s *MemStore) Save(ctx context.Context, token string) error {
	s.token = token
	return nil
}

func (s *MemStore) Clear(ctx context.Context) error {
	s.token = ""
	return nil
}
