package cache

import (
	"github.com/antonio-alexander/go-employee-dashboard/internal"

	"github.com/antonio-alexander/go-stash/memory"
	"github.com/antonio-alexander/go-stash/redis"
)

const (
	TypeMemory      string = "memory"
	TypeRedis       string = "redis"
	TypeStashMemory string = "stash-memory"
	TypeStashRedis  string = "stash-redis"
)

// New creates the cache named by CACHE_TYPE, it returns nil if no cache
// (or an unknown cache) is configured.
func New(envs map[string]string, parameters ...any) interface {
	internal.Configurer
	internal.Opener
	Cache
} {
	switch envs["CACHE_TYPE"] {
	default:
		return nil
	case TypeMemory:
		return NewMemory(parameters...)
	case TypeRedis:
		return NewRedis(parameters...)
	case TypeStashMemory:
		return NewStash(append(parameters, memory.New())...)
	case TypeStashRedis:
		return NewStash(append(parameters, redis.New())...)
	}
}
