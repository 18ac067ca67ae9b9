// Package aggregator provides concurrent-safe accumulators that can be fed
// from parallel dataflow stages (e.g. via Collection.ForEach) to compute
// global statistics.
package aggregator

import (
	"math"
	"sync/atomic"
	"unsafe"
)

// Aggregator is implemented by types that provide concurrent-safe
// aggregation primitives (e.g counters, sums, min/max).
type Aggregator interface {
	// Type returns the type of this aggregator.
	Type() string
	// Set the value of the aggregator to the specified value.
	Set(val interface{})
	// Get the current aggregator value.
	Get() interface{}
	// Aggregate updates the aggregator's value based on the provided value.
	Aggregate(val interface{})
	// Delta returns the change in the aggregator's value since the last
	// call to Delta or Set.
	Delta() interface{}
}

func loadFloat64(f *float64) float64 {
	return math.Float64frombits(atomic.LoadUint64((*uint64)(unsafe.Pointer(f))))
}

func storeFloat64(f *float64, v float64) {
	atomic.StoreUint64((*uint64)(unsafe.Pointer(f)), math.Float64bits(v))
}

func casFloat64(f *float64, old, new float64) bool {
	return atomic.CompareAndSwapUint64(
		(*uint64)(unsafe.Pointer(f)),
		math.Float64bits(old),
		math.Float64bits(new),
	)
}
