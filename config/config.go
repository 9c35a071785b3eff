// Package config builds retention strategies from declarative configuration.
//
// A file (YAML, JSON or TOML, picked by extension) looks like:
//
//	log_level: info
//	strategy:
//	  kind: ttl          # refcount | lru | ttl | manual
//	  ttl: 30s
//	  cleanup_interval: 10s
//
// Every key can be overridden from the environment with the ASYNCCACHE_
// prefix, e.g. ASYNCCACHE_STRATEGY_KIND=lru ASYNCCACHE_STRATEGY_MAX_SIZE=512.
// Durations accept Go duration strings ("1.5s") or bare numbers, read as
// milliseconds.
package config

import (
	"io"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cast"
	"github.com/spf13/viper"

	"github.com/IvanBrykalov/asynccache/policy"
	"github.com/IvanBrykalov/asynccache/policy/lru"
	"github.com/IvanBrykalov/asynccache/policy/manual"
	"github.com/IvanBrykalov/asynccache/policy/refcount"
	"github.com/IvanBrykalov/asynccache/policy/ttl"
)

// EnvPrefix is prepended to environment overrides.
const EnvPrefix = "ASYNCCACHE"

// Strategy kinds.
const (
	KindRefcount = "refcount"
	KindLRU      = "lru"
	KindTTL      = "ttl"
	KindManual   = "manual"
)

var (
	ErrUnknownStrategy = errors.New("config: unknown strategy kind")
	ErrInvalid         = errors.New("config: invalid value")
)

// Config is the top-level configuration document.
type Config struct {
	LogLevel string // log_level
	Strategy Strategy
}

// Strategy selects one retention variant. Fields that do not apply to Kind
// are ignored. Document keys live under "strategy.".
type Strategy struct {
	Kind            string        // kind
	CleanupInterval time.Duration // cleanup_interval
	GracePeriod     time.Duration // grace_period
	MaxSize         int           // max_size
	TTL             time.Duration // ttl
}

// Load reads the file at path and applies environment overrides.
// An empty path reads the environment only.
func Load(path string) (*Config, error) {
	v := newViper()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "config: read %s", path)
		}
	}
	return decode(v)
}

// LoadReader is Load for an in-memory document; format is a viper config
// type such as "yaml" or "json".
func LoadReader(r io.Reader, format string) (*Config, error) {
	v := newViper()
	v.SetConfigType(format)
	if err := v.ReadConfig(r); err != nil {
		return nil, errors.Wrap(err, "config: read")
	}
	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.SetDefault("log_level", "info")
	v.SetDefault("strategy.kind", KindRefcount)
	return v
}

// decode reads keys one by one rather than through Unmarshal: AutomaticEnv
// only resolves keys that are asked for, and durations need the
// millisecond rule.
func decode(v *viper.Viper) (*Config, error) {
	var (
		c   Config
		err error
	)
	c.LogLevel = strings.ToLower(v.GetString("log_level"))
	c.Strategy.Kind = strings.ToLower(strings.TrimSpace(v.GetString("strategy.kind")))
	if c.Strategy.MaxSize, err = cast.ToIntE(orZero(v.Get("strategy.max_size"))); err != nil {
		return nil, errors.Wrapf(ErrInvalid, "strategy.max_size: %v", err)
	}
	for key, dst := range map[string]*time.Duration{
		"strategy.cleanup_interval": &c.Strategy.CleanupInterval,
		"strategy.grace_period":     &c.Strategy.GracePeriod,
		"strategy.ttl":              &c.Strategy.TTL,
	} {
		if *dst, err = Duration(v.Get(key)); err != nil {
			return nil, errors.Wrapf(err, "%s", key)
		}
	}
	return &c, nil
}

func orZero(val any) any {
	if val == nil {
		return 0
	}
	return val
}

// Duration coerces a configuration value into a time.Duration.
// Numbers (and numeric strings) are milliseconds; other strings are parsed
// as Go durations. nil is zero.
func Duration(val any) (time.Duration, error) {
	switch x := val.(type) {
	case nil:
		return 0, nil
	case time.Duration:
		return x, nil
	case string:
		if strings.TrimSpace(x) == "" {
			return 0, nil
		}
	}
	if ms, err := cast.ToFloat64E(val); err == nil {
		return time.Duration(ms * float64(time.Millisecond)), nil
	}
	d, err := cast.ToDurationE(val)
	if err != nil {
		return 0, errors.Wrapf(ErrInvalid, "duration %v", val)
	}
	return d, nil
}

// Build validates s and constructs the policy it describes.
// An empty Kind selects reference counting.
func (s Strategy) Build() (policy.Policy, error) {
	if s.CleanupInterval < 0 || s.GracePeriod < 0 || s.TTL < 0 || s.MaxSize < 0 {
		return nil, errors.Wrapf(ErrInvalid, "negative setting in %+v", s)
	}
	switch s.Kind {
	case "", KindRefcount:
		return refcount.New(refcount.Options{
			CleanupInterval: s.CleanupInterval,
			GracePeriod:     s.GracePeriod,
		}), nil
	case KindLRU:
		if s.MaxSize < 1 {
			return nil, errors.Wrap(ErrInvalid, "lru: max_size must be >= 1")
		}
		return lru.New(s.MaxSize), nil
	case KindTTL:
		if s.TTL <= 0 {
			return nil, errors.Wrap(ErrInvalid, "ttl: ttl must be > 0")
		}
		return ttl.New(ttl.Options{TTL: s.TTL, CleanupInterval: s.CleanupInterval}), nil
	case KindManual:
		return manual.New(), nil
	default:
		return nil, errors.Wrapf(ErrUnknownStrategy, "%q", s.Kind)
	}
}
