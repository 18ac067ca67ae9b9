package aggregator

import (
	"math"
	"sync/atomic"
)

var (
	_ Aggregator = (*Float64Accumulator)(nil)
	_ Aggregator = (*Float64Min)(nil)
	_ Aggregator = (*IntAccumulator)(nil)
)

// Float64Accumulator implements a concurrent-safe accumulator for float64 values.
type Float64Accumulator struct {
	prevSum float64
	curSum  float64
}

// Type implements Aggregator.
func (a *Float64Accumulator) Type() string {
	return "Float64Accumulator"
}

// Get returns the current value of the accumulator.
func (a *Float64Accumulator) Get() interface{} {
	return loadFloat64(&a.curSum)
}

// Set the current value of the accumulator.
func (a *Float64Accumulator) Set(v interface{}) {
	v64 := v.(float64)
	storeFloat64(&a.prevSum, v64)
	storeFloat64(&a.curSum, v64)
}

// Aggregate adds a float64 value to the accumulator.
func (a *Float64Accumulator) Aggregate(v interface{}) {
	for v64 := v.(float64); ; {
		oldV := loadFloat64(&a.curSum)
		if casFloat64(&a.curSum, oldV, oldV+v64) {
			return
		}
	}
}

// Delta returns the delta change in the accumulator value since the last
// call to Delta or Set.
func (a *Float64Accumulator) Delta() interface{} {
	for {
		curSum := loadFloat64(&a.curSum)
		prevSum := loadFloat64(&a.prevSum)
		if casFloat64(&a.prevSum, prevSum, curSum) {
			return curSum - prevSum
		}
	}
}

// Float64Min tracks the smallest float64 value it has been fed. Instances
// must be created with NewFloat64Min.
type Float64Min struct {
	prev float64
	cur  float64
}

// NewFloat64Min returns a Float64Min that reports +Inf until a value is
// aggregated.
func NewFloat64Min() *Float64Min {
	return &Float64Min{prev: math.Inf(1), cur: math.Inf(1)}
}

// Type implements Aggregator.
func (m *Float64Min) Type() string {
	return "Float64Min"
}

// Get returns the smallest aggregated value.
func (m *Float64Min) Get() interface{} {
	return loadFloat64(&m.cur)
}

// Set the current minimum.
func (m *Float64Min) Set(v interface{}) {
	v64 := v.(float64)
	storeFloat64(&m.prev, v64)
	storeFloat64(&m.cur, v64)
}

// Aggregate lowers the minimum to v if v is smaller. NaN values are ignored.
func (m *Float64Min) Aggregate(v interface{}) {
	for v64 := v.(float64); ; {
		oldV := loadFloat64(&m.cur)
		if !(v64 < oldV) {
			return
		}
		if casFloat64(&m.cur, oldV, v64) {
			return
		}
	}
}

// Delta returns the change of the minimum since the last call to Delta or Set.
func (m *Float64Min) Delta() interface{} {
	for {
		cur := loadFloat64(&m.cur)
		prev := loadFloat64(&m.prev)
		if casFloat64(&m.prev, prev, cur) {
			return cur - prev
		}
	}
}

// IntAccumulator implements a concurrent-safe accumulator for int values.
type IntAccumulator struct {
	prevSum int64
	curSum  int64
}

// Type implements Aggregator.
func (a *IntAccumulator) Type() string {
	return "IntAccumulator"
}

// Get returns the current value of the accumulator.
func (a *IntAccumulator) Get() interface{} {
	return int(atomic.LoadInt64(&a.curSum))
}

// Set the current value of the accumulator.
func (a *IntAccumulator) Set(v interface{}) {
	v64 := int64(v.(int))
	atomic.StoreInt64(&a.prevSum, v64)
	atomic.StoreInt64(&a.curSum, v64)
}

// Aggregate adds an int value to the accumulator.
func (a *IntAccumulator) Aggregate(v interface{}) {
	atomic.AddInt64(&a.curSum, int64(v.(int)))
}

// Delta returns the delta change in the accumulator value since the last
// call to Delta or Set.
func (a *IntAccumulator) Delta() interface{} {
	for {
		curSum := atomic.LoadInt64(&a.curSum)
		prevSum := atomic.LoadInt64(&a.prevSum)
		if atomic.CompareAndSwapInt64(&a.prevSum, prevSum, curSum) {
			return int(curSum - prevSum)
		}
	}
}
