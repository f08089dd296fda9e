package cache

import (
	"context"
	"time"
)

// NullStore stores nothing. Every read misses.
type NullStore struct{}

func (NullStore) Get(context.Context, string) ([]byte, bool, error)        { return nil, false, nil }
func (NullStore) Put(context.Context, string, []byte, time.Duration) error { return nil }
func (NullStore) Forget(context.Context, string) error                     { return nil }

var _ Store = NullStore{}
