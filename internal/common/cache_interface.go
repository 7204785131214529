package common

import "time"

// CacheInterface abstracts the report/dashboard cache so the in-memory and
// Redis implementations are interchangeable.
type CacheInterface interface {
	Set(key string, value interface{}, duration time.Duration)
	Get(key string) (interface{}, bool)
	Delete(key string)
	GetOrSet(key string, duration time.Duration, loader func() (any, error)) (interface{}, error)
	Close() error
}
