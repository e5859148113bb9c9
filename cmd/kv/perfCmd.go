package kv

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rcrowley/go-metrics"
	"github.com/replikativ/konserve-lmdb/cmd/util"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	perfTestCmd = &cobra.Command{
		Use:     "perf",
		Short:   "Performance testing tool for konserve stores",
		RunE:    runPerf,
		PreRunE: processPerfConfig,
	}
	perfKeyPrefix    = "__test"
	perfValueSizeKB  = 100
	perfNumThreads   = 10
	perfKeySpread    = 100
	perfOpsPerThread = 1000
	perfSkip         = make([]string, 0)
)

func init() {
	// add flags
	key := "skip"
	perfTestCmd.Flags().String(key, "", util.WrapHelp("Benchmarks to skip (comma separated - e.g. set,get)"))
	key = "threads"
	perfTestCmd.Flags().Int(key, 10, util.WrapHelp("Number of goroutines to use for the benchmark"))
	key = "ops"
	perfTestCmd.Flags().Int(key, 1000, util.WrapHelp("Operations per goroutine"))
	key = "value-size"
	perfTestCmd.Flags().Int(key, 100, util.WrapHelp("How large the value for the set-large test should be (in KB)"))
	key = "keys"
	perfTestCmd.Flags().Int(key, 100, util.WrapHelp("How many different keys to use for the tests"))
	key = "csv"
	perfTestCmd.Flags().String(key, "", util.WrapHelp("Optional path to save benchmark results as CSV"))
}

func processPerfConfig(cmd *cobra.Command, _ []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	// Read the configuration from the command line flags and environment variables
	perfValueSizeKB = viper.GetInt("value-size")
	perfKeySpread = viper.GetInt("keys")
	perfNumThreads = viper.GetInt("threads")
	perfOpsPerThread = viper.GetInt("ops")
	perfSkip = strings.Split(viper.GetString("skip"), ",")

	return nil
}

func shouldSkip(name string) bool {
	for _, s := range perfSkip {
		if s == name {
			return true
		}
	}
	return false
}

// measure runs op from perfNumThreads goroutines and records per-call
// latencies into a histogram.
func measure(h metrics.Histogram, op func(i int) error) error {
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	for t := 0; t < perfNumThreads; t++ {
		wg.Add(1)
		go func(base int) {
			defer wg.Done()
			for i := 0; i < perfOpsPerThread; i++ {
				start := time.Now()
				err := op(base + i)
				h.Update(time.Since(start).Nanoseconds())
				if err != nil {
					mu.Lock()
					if firstErr == nil {
						firstErr = err
					}
					mu.Unlock()
					return
				}
			}
		}(t * perfOpsPerThread)
	}
	wg.Wait()
	return firstErr
}

func printResult(name string, h metrics.Histogram) {
	fmt.Printf("%-10s p50=%8.1fus  p99=%8.1fus  max=%8.1fus  (%d ops)\n",
		name,
		h.Percentile(0.50)/1000,
		h.Percentile(0.99)/1000,
		float64(h.Max())/1000,
		h.Count(),
	)
}

func runPerf(_ *cobra.Command, _ []string) error {

	fmt.Println("Performance testing tool for konserve stores")

	// Print configuration
	fmt.Println()
	fmt.Println("Configuration:")
	fmt.Printf("Store:   %s\n", util.GetStoreDir())
	fmt.Printf("Threads: %d\n", perfNumThreads)
	fmt.Printf("Ops:     %d per thread\n", perfOpsPerThread)
	fmt.Println()

	fmt.Println("starting tests...")

	registry := metrics.NewRegistry()
	newHistogram := func(name string) metrics.Histogram {
		h := metrics.NewHistogram(metrics.NewUniformSample(16384))
		_ = registry.Register(name, h)
		return h
	}
	results := make(map[string]metrics.Histogram)

	testKey := func(i int) string {
		return fmt.Sprintf("%s-%d", perfKeyPrefix, i%perfKeySpread)
	}

	if !shouldSkip("set") {
		h := newHistogram("set")
		if err := measure(h, func(i int) error {
			_, _, err := localStore.Assoc(testKey(i), nil, "test")
			return err
		}); err != nil {
			return err
		}
		results["set"] = h
		printResult("set", h)
	}

	if !shouldSkip("set-large") {
		h := newHistogram("set-large")
		largeValue := make([]byte, perfValueSizeKB*1024)
		if err := measure(h, func(i int) error {
			_, _, err := localStore.BAssoc(testKey(i), nil, largeValue)
			return err
		}); err != nil {
			return err
		}
		results["set-large"] = h
		printResult("set-large", h)
	}

	if !shouldSkip("get") {
		h := newHistogram("get")
		if _, _, err := localStore.Assoc(testKey(0), nil, "test"); err != nil {
			return err
		}
		if err := measure(h, func(i int) error {
			_, _, err := localStore.Get(testKey(0))
			return err
		}); err != nil {
			return err
		}
		results["get"] = h
		printResult("get", h)
	}

	if !shouldSkip("meta") {
		h := newHistogram("meta")
		if err := measure(h, func(i int) error {
			_, err := localStore.GetMeta(testKey(0))
			return err
		}); err != nil {
			return err
		}
		results["meta"] = h
		printResult("meta", h)
	}

	if !shouldSkip("del") {
		h := newHistogram("del")
		if err := measure(h, func(i int) error {
			_, err := localStore.Dissoc(testKey(i))
			return err
		}); err != nil {
			return err
		}
		results["del"] = h
		printResult("del", h)
	}

	// Save results as CSV if requested
	if path := viper.GetString("csv"); path != "" {
		if err := writeCSV(path, results); err != nil {
			return err
		}
		fmt.Printf("results written to %s\n", path)
	}

	return nil
}

func writeCSV(path string, results map[string]metrics.Histogram) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"benchmark", "ops", "p50_ns", "p99_ns", "max_ns", "mean_ns"}); err != nil {
		return err
	}
	for name, h := range results {
		row := []string{
			name,
			fmt.Sprint(h.Count()),
			fmt.Sprintf("%.0f", h.Percentile(0.50)),
			fmt.Sprintf("%.0f", h.Percentile(0.99)),
			fmt.Sprint(h.Max()),
			fmt.Sprintf("%.0f", h.Mean()),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}
