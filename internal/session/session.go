// Package session keeps short-lived JSON state: application drafts, refresh
// sessions and lookup results.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/datara/scholarhub/internal/domain"
)

// Store is a TTL key/value store. Get returns domain.ErrNotFound on a miss or
// an expired key.
type Store interface {
	Get(ctx context.Context, key string, dst interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// GetOrSet retrieves key into dst, calling fetch and storing its result on a miss.
func GetOrSet(ctx context.Context, s Store, key string, dst interface{}, ttl time.Duration, fetch func() (interface{}, error)) error {
	err := s.Get(ctx, key, dst)
	if err == nil {
		return nil
	}
	if err != domain.ErrNotFound {
		return fmt.Errorf("getting from store: %w", err)
	}

	value, err := fetch()
	if err != nil {
		return fmt.Errorf("fetching value: %w", err)
	}

	if err := s.Set(ctx, key, value, ttl); err != nil {
		return fmt.Errorf("storing value: %w", err)
	}

	return assignValue(value, dst)
}

func encode(value interface{}) ([]byte, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("marshaling value: %w", err)
	}
	return data, nil
}

func decode(data []byte, dst interface{}) error {
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("unmarshaling value: %w", err)
	}
	return nil
}

// assignValue copies src into dst through its JSON form.
func assignValue(src, dst interface{}) error {
	data, err := encode(src)
	if err != nil {
		return err
	}
	return decode(data, dst)
}
