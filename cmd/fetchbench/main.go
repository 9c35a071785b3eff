// Command fetchbench runs a synthetic fetch workload against the store and
// exposes optional pprof/Prometheus endpoints.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"net/http"
	_ "net/http/pprof" // registers /debug/pprof/* on DefaultServeMux
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/atomic"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"github.com/IvanBrykalov/asynccache/cache"
	"github.com/IvanBrykalov/asynccache/config"
	pmet "github.com/IvanBrykalov/asynccache/metrics/prom"
)

func main() {
	// ---- Flags ----
	var (
		cfgPath = flag.String("config", "", "config file (yaml|json|toml); empty = env/defaults only")

		workers     = flag.Int("workers", 2*runtime.GOMAXPROCS(0), "number of worker goroutines")
		duration    = flag.Duration("duration", 10*time.Second, "benchmark duration")
		invalidPct  = flag.Int("invalidate", 2, "invalidate percentage [0..100]")
		latency     = flag.Duration("latency", 2*time.Millisecond, "mean simulated fetch latency")
		failPct     = flag.Int("fail", 1, "simulated organic failure percentage [0..100]")
		keys        = flag.Int("keys", 100_000, "keyspace size")
		zipfS       = flag.Float64("zipf_s", 1.1, "Zipf s > 1 (skew)")
		zipfV       = flag.Float64("zipf_v", 1.0, "Zipf v")
		seed        = flag.Int64("seed", time.Now().UnixNano(), "random seed")
		pprofAddr   = flag.String("pprof", "", "serve pprof at addr (e.g. :6060); empty = disabled")
		metricsAddr = flag.String("http", ":8080", "serve Prometheus metrics at addr; empty = disabled")
	)
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	logger := newLogger(cfg.LogLevel)
	defer func() { _ = logger.Sync() }()

	pol, err := cfg.Strategy.Build()
	if err != nil {
		logger.Fatal("invalid strategy", zap.Error(err))
	}

	// ---- pprof server (on DefaultServeMux) ----
	if *pprofAddr != "" {
		go func() {
			logger.Info("pprof: serving", zap.String("addr", *pprofAddr))
			logger.Warn("pprof: stopped", zap.Error(http.ListenAndServe(*pprofAddr, nil)))
		}()
	}

	// ---- Prometheus metrics (on DefaultServeMux) ----
	metrics := pmet.New(nil, "asynccache", "fetchbench", nil)
	if *metricsAddr != "" {
		http.Handle("/metrics", promhttp.Handler())
		go func() {
			logger.Info("metrics: serving", zap.String("addr", *metricsAddr))
			logger.Warn("metrics: stopped", zap.Error(http.ListenAndServe(*metricsAddr, nil)))
		}()
	}

	s := cache.New[[]byte](cache.Options[[]byte]{
		Policy:  pol,
		Metrics: metrics,
		Logger:  logger,
	})
	defer s.Dispose()

	workersN := *workers
	if workersN <= 0 {
		workersN = 1
	}
	logger.Info("starting",
		zap.String("policy", pol.Name()),
		zap.Int("workers", workersN),
		zap.Int("keys", *keys),
		zap.Duration("duration", *duration),
		zap.Int64("seed", *seed),
	)

	// ---- Load generation ----
	var lookups, invalidations, failures atomic.Uint64
	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	fetch := simulatedFetch(*latency, *failPct, *seed)
	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workersN; w++ {
		id := w
		g.Go(func() error {
			// rand.Rand is not goroutine-safe: one per worker.
			r := rand.New(rand.NewSource(*seed + int64(id)*9973))
			zipf := rand.NewZipf(r, *zipfS, *zipfV, uint64(*keys-1))

			for gctx.Err() == nil {
				key := []any{"item", zipf.Uint64()}
				if int(r.Int31n(100)) < *invalidPct {
					invalidations.Inc()
					s.Invalidate(key)
					continue
				}
				lookups.Inc()
				if _, err := s.Get(gctx, key, fetch).Await(gctx); err != nil && gctx.Err() == nil {
					failures.Inc()
				}
			}
			return nil
		})
	}
	_ = g.Wait()
	elapsed := time.Since(start)

	// ---- Report ----
	st := s.Stats()
	hitRate := 0.0
	if st.Hits+st.Misses > 0 {
		hitRate = float64(st.Hits) / float64(st.Hits+st.Misses) * 100
	}
	fmt.Printf("policy=%s workers=%d keys=%d dur=%v seed=%d\n",
		pol.Name(), workersN, *keys, elapsed, *seed)
	fmt.Printf("lookups=%d (%.0f ops/s)  invalidations=%d  failed-lookups=%d\n",
		lookups.Load(), float64(lookups.Load())/elapsed.Seconds(), invalidations.Load(), failures.Load())
	fmt.Printf("hits=%d  misses=%d  hit-rate=%.2f%%  computations=%d  cancellations=%d  evictions=%d\n",
		st.Hits, st.Misses, hitRate, st.Computations, st.Cancellations, st.Evictions)
	fmt.Printf("Len()=%d\n", st.Entries)
}

var errUpstream = errors.New("fetchbench: upstream error")

// simulatedFetch returns a compute function that sleeps for an exponentially
// distributed latency and fails failPct percent of the time.
func simulatedFetch(mean time.Duration, failPct int, seed int64) cache.ComputeFunc[[]byte] {
	src := rand.New(rand.NewSource(seed))
	var mu sync.Mutex // guards src
	return func(ctx context.Context) ([]byte, error) {
		mu.Lock()
		d := time.Duration(src.ExpFloat64() * float64(mean))
		fail := int(src.Int31n(100)) < failPct
		mu.Unlock()

		t := time.NewTimer(d)
		defer t.Stop()
		select {
		case <-t.C:
		case <-ctx.Done():
			return nil, context.Cause(ctx)
		}
		if fail {
			return nil, errUpstream
		}
		return []byte("payload"), nil
	}
}

func newLogger(level string) *zap.Logger {
	cfg := zap.NewProductionConfig()
	if lvl, err := zapcore.ParseLevel(level); err == nil {
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}
	l, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return l
}
