// Package memory is an in-process cache backend bounded by entry count and
// optional entry lifetime.
package memory

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// DefaultSize is the entry bound used when none is given.
const DefaultSize = 1024

// Store is an LRU cache. It is not persisted.
type Store struct {
	lru *expirable.LRU[string, string]
}

// New creates a Store holding at most size entries, each living for ttl.
// A non-positive ttl keeps entries until they are evicted.
func New(size int, ttl time.Duration) *Store {
	if size <= 0 {
		size = DefaultSize
	}
	return &Store{lru: expirable.NewLRU[string, string](size, nil, ttl)}
}

func (s *Store) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := s.lru.Get(key)
	return v, ok, nil
}

func (s *Store) Set(_ context.Context, key, value string) error {
	s.lru.Add(key, value)
	return nil
}

// Len returns the number of cached entries.
func (s *Store) Len() int { return s.lru.Len() }

func (s *Store) Close() error {
	s.lru.Purge()
	return nil
}
