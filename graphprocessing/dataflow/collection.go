package dataflow

import (
	"context"
	"sync"
)

// Pair is a key-value record. Collections of pairs support the key-based
// operations GroupByKey, ReduceByKey, Join, MapValues, Keys and Values.
type Pair[K comparable, V any] struct {
	Key   K
	Value V
}

// Joined holds a left and a right value that share the same key. It is the
// value type emitted by Join.
type Joined[V, W any] struct {
	Left  V
	Right W
}

type computeFunc[T any] func(ctx context.Context) ([][]T, error)

// Collection is an immutable, partitioned and lazily evaluated sequence of
// records. Transformations return new collections that describe how their
// partitions are derived from their parents; nothing is evaluated until an
// action such as Collect, Count, Reduce, ForEach or Top is invoked.
//
// Partition slices may be shared between collections (e.g. when a parent is
// cached) and must never be modified in place.
type Collection[T any] struct {
	dc      *Context
	name    string
	compute computeFunc[T]
}

func newCollection[T any](dc *Context, name string, fn computeFunc[T]) *Collection[T] {
	return &Collection[T]{dc: dc, name: name, compute: fn}
}

// Parallelize returns a collection whose records are the items of the
// provided slice, split into the context's number of partitions while
// retaining their order.
func Parallelize[T any](dc *Context, name string, items []T) *Collection[T] {
	n := dc.cfg.Partitions
	parts := make([][]T, n)
	for i := 0; i < n; i++ {
		from, to := i*len(items)/n, (i+1)*len(items)/n
		parts[i] = append([]T(nil), items[from:to]...)
	}
	return newCollection(dc, name, func(context.Context) ([][]T, error) {
		return parts, nil
	})
}

// Name returns the name of the stage that produces this collection.
func (c *Collection[T]) Name() string { return c.name }

// Context returns the dataflow context this collection belongs to.
func (c *Collection[T]) Context() *Context { return c.dc }

// Cache returns a collection that evaluates c at most once and keeps the
// resulting partitions in memory for all subsequent reads. Failed
// evaluations are not memoized.
func (c *Collection[T]) Cache() *Collection[T] {
	var (
		mu      sync.Mutex
		parts   [][]T
		compute = c.compute
	)
	return newCollection(c.dc, c.name+".cache", func(ctx context.Context) ([][]T, error) {
		mu.Lock()
		defer mu.Unlock()
		if compute == nil {
			return parts, nil
		}
		res, err := compute(ctx)
		if err != nil {
			return nil, err
		}
		// Release the lineage so that upstream partitions can be collected.
		parts, compute = res, nil
		return parts, nil
	})
}

// Union returns the multiset concatenation of c and other. The partitions of
// c are followed by the partitions of other.
func (c *Collection[T]) Union(other *Collection[T]) *Collection[T] {
	return newCollection(c.dc, "union", func(ctx context.Context) ([][]T, error) {
		left, err := c.compute(ctx)
		if err != nil {
			return nil, err
		}
		right, err := other.compute(ctx)
		if err != nil {
			return nil, err
		}
		parts := make([][]T, 0, len(left)+len(right))
		parts = append(parts, left...)
		return append(parts, right...), nil
	})
}

// Filter returns a collection with the records of c for which keep returns true.
func (c *Collection[T]) Filter(keep func(T) bool) *Collection[T] {
	return mapPartitions(c, "filter", func(in []T) ([]T, error) {
		var out []T
		for _, rec := range in {
			if keep(rec) {
				out = append(out, rec)
			}
		}
		return out, nil
	})
}

// Map returns a collection with the result of applying fn to every record of c.
func Map[T, U any](c *Collection[T], fn func(T) U) *Collection[U] {
	return mapPartitions(c, "map", func(in []T) ([]U, error) {
		out := make([]U, len(in))
		for i, rec := range in {
			out[i] = fn(rec)
		}
		return out, nil
	})
}

// TryMap behaves like Map but fn may fail. The first error aborts the
// evaluation of the collection and is returned by the action that triggered it.
func TryMap[T, U any](c *Collection[T], fn func(T) (U, error)) *Collection[U] {
	return mapPartitions(c, "tryMap", func(in []T) ([]U, error) {
		out := make([]U, len(in))
		for i, rec := range in {
			res, err := fn(rec)
			if err != nil {
				return nil, err
			}
			out[i] = res
		}
		return out, nil
	})
}

// FlatMap returns a collection with the concatenation of the zero-or-more
// records fn emits for every record of c.
func FlatMap[T, U any](c *Collection[T], fn func(T) []U) *Collection[U] {
	return mapPartitions(c, "flatMap", func(in []T) ([]U, error) {
		var out []U
		for _, rec := range in {
			out = append(out, fn(rec)...)
		}
		return out, nil
	})
}

// MapValues applies fn to the value of every pair while retaining its key.
func MapValues[K comparable, V, W any](c *Collection[Pair[K, V]], fn func(V) W) *Collection[Pair[K, W]] {
	return mapPartitions(c, "mapValues", func(in []Pair[K, V]) ([]Pair[K, W], error) {
		out := make([]Pair[K, W], len(in))
		for i, kv := range in {
			out[i] = Pair[K, W]{Key: kv.Key, Value: fn(kv.Value)}
		}
		return out, nil
	})
}

// Keys returns the key of every pair in c.
func Keys[K comparable, V any](c *Collection[Pair[K, V]]) *Collection[K] {
	return mapPartitions(c, "keys", func(in []Pair[K, V]) ([]K, error) {
		out := make([]K, len(in))
		for i, kv := range in {
			out[i] = kv.Key
		}
		return out, nil
	})
}

// Values returns the value of every pair in c.
func Values[K comparable, V any](c *Collection[Pair[K, V]]) *Collection[V] {
	return mapPartitions(c, "values", func(in []Pair[K, V]) ([]V, error) {
		out := make([]V, len(in))
		for i, kv := range in {
			out[i] = kv.Value
		}
		return out, nil
	})
}

// mapPartitions returns a collection whose partitions are obtained by
// applying fn to each partition of c in parallel. Partitioning is retained.
func mapPartitions[T, U any](c *Collection[T], stage string, fn func([]T) ([]U, error)) *Collection[U] {
	return newCollection(c.dc, stage, func(ctx context.Context) ([][]U, error) {
		in, err := c.compute(ctx)
		if err != nil {
			return nil, err
		}
		out := make([][]U, len(in))
		err = c.dc.runPartitions(ctx, stage, len(in), func(_ context.Context, part int) error {
			res, err := fn(in[part])
			if err != nil {
				return err
			}
			out[part] = res
			return nil
		})
		if err != nil {
			return nil, err
		}
		return out, nil
	})
}
