// Package config provides type-safe environment variable loading with
// caching. Each configuration type is loaded once and cached for subsequent
// calls.
//
// The package loads a .env file on first use when one exists and uses the
// caarlos0/env library for parsing environment variables into struct fields.
//
// Basic usage:
//
//	type ServerConfig struct {
//		Addr string `env:"SERVER_ADDR" envDefault:":8080"`
//	}
//
//	var cfg ServerConfig
//	if err := config.Load(&cfg); err != nil {
//		log.Fatal(err)
//	}
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// ErrNotStructPointer is returned when Load receives anything other than a
// non-nil pointer to a struct.
var ErrNotStructPointer = errors.New("config: target must be a non-nil struct pointer")

var (
	cache   sync.Map // reflect.Type -> struct value
	envOnce sync.Once
)

// Load populates cfg from the environment. The first call for a given struct
// type parses the environment; later calls for the same type return the
// cached value.
func Load(cfg any) error {
	rv := reflect.ValueOf(cfg)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return ErrNotStructPointer
	}

	envOnce.Do(func() {
		// A missing .env file is not an error; explicit files go through
		// LoadEnvFiles before the first Load call.
		_ = godotenv.Load()
	})

	elem := rv.Elem()
	typ := elem.Type()

	if cached, ok := cache.Load(typ); ok {
		elem.Set(reflect.ValueOf(cached))
		return nil
	}

	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("config: parse %s: %w", typ, err)
	}

	cache.Store(typ, elem.Interface())
	return nil
}

// MustLoad is Load but panics on failure. Useful during startup.
func MustLoad(cfg any) {
	if err := Load(cfg); err != nil {
		panic(err)
	}
}

// LoadEnvFiles loads the named dotenv files into the process environment
// before any configuration is parsed. Missing files are skipped so a default
// path can be passed unconditionally.
func LoadEnvFiles(files ...string) error {
	for _, file := range files {
		if err := godotenv.Load(file); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("config: load %s: %w", file, err)
		}
	}
	return nil
}
