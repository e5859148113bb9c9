// Package testing provides a standardised test suite and benchmarks for
// store implementations that satisfy the store.IStore interface.
//
// The package contains:
//   - testing: A conformance suite covering the wrapped API contract,
//     including atomicity under concurrent writers
//   - benchmark: Performance tests for the common store operations
//
// Example usage:
//
//	// Creating a factory function for your implementation
//	factory := func(tb testing.TB) store.IStore {
//		s, err := store.Connect(tb.TempDir(), nil)
//		if err != nil {
//			tb.Fatal(err)
//		}
//		return s
//	}
//
//	// Running the standard test suite
//	storetesting.RunStoreTests(t, "LMDB", factory)
//
//	// Running performance benchmarks
//	storetesting.RunStoreBenchmarks(b, "LMDB", factory)
package testing
