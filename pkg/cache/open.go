package cache

import (
	"context"
	"fmt"
)

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendNone   = "none"
)

// Options selects and configures a backend.
type Options struct {
	Backend string // file, memory, redis or none; empty means file
	Dir     string // FileCache directory
	Redis   RedisOptions
}

// Open creates the cache described by opts.
func Open(ctx context.Context, opts Options) (Cache, error) {
	switch opts.Backend {
	case "", BackendFile:
		if opts.Dir == "" {
			return nil, fmt.Errorf("file cache: no directory")
		}
		c, err := NewFileCache(opts.Dir)
		if err != nil {
			return nil, err
		}
		return c, nil
	case BackendRedis:
		c, err := NewRedisCache(ctx, opts.Redis)
		if err != nil {
			return nil, err
		}
		return c, nil
	case BackendMemory:
		return NewMemoryCache(), nil
	case BackendNone:
		return NewNullCache(), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q (use: %s, %s, %s, %s)",
			opts.Backend, BackendFile, BackendMemory, BackendRedis, BackendNone)
	}
}
