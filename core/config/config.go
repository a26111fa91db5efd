package config

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var (
	mu    sync.Mutex
	cache = make(map[reflect.Type]any)

	loadDotEnv sync.Once
)

// Load parses environment variables into cfg, which must be a non-nil pointer
// to a struct. Each configuration type is parsed once per process; later calls
// for the same type receive the cached value.
func Load(cfg any) error {
	loadDotEnv.Do(func() {
		// Missing .env files are fine; real environments set vars directly.
		_ = godotenv.Load()
	})

	v := reflect.ValueOf(cfg)
	if v.Kind() != reflect.Pointer || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("%w: got %T", ErrInvalidTarget, cfg)
	}

	t := v.Elem().Type()

	mu.Lock()
	defer mu.Unlock()

	if cached, ok := cache[t]; ok {
		v.Elem().Set(reflect.ValueOf(cached))
		return nil
	}

	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("%w: %w", ErrParseFailed, err)
	}

	cache[t] = v.Elem().Interface()
	return nil
}

// MustLoad is Load that panics on failure, for use during startup.
func MustLoad(cfg any) {
	if err := Load(cfg); err != nil {
		panic(err)
	}
}
