// Package cache is a generic, in-process, per-worker cache. worker.Service
// uses it to keep a downloaded source file around across the segment jobs
// of one video rather than re-downloading per job (spec.md §4.5).
package cache

import (
	"sync"

	"github.com/livepeer/hlsfrag/log"
)

type Cache[T interface{}] struct {
	cache map[string]T
	mutex sync.Mutex
}

func New[T interface{}]() *Cache[T] {
	return &Cache[T]{
		cache: make(map[string]T),
	}
}

func (c *Cache[T]) Remove(videoID, key string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	delete(c.cache, key)
	log.Log(videoID, "removing from local cache", "key", key)
}

func (c *Cache[T]) Get(key string) T {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	info, ok := c.cache[key]
	if ok {
		return info
	}
	var zero T
	return zero
}

func (c *Cache[T]) Store(key string, value T) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.cache[key] = value
}

func (c *Cache[T]) UnittestIntrospection() *map[string]T {
	return &c.cache
}
