package dataflow

import (
	"context"
	"sort"

	"golang.org/x/xerrors"
)

// ErrEmptyCollection is returned by Reduce when invoked on a collection
// without any records.
var ErrEmptyCollection = xerrors.New("empty collection")

// Collect evaluates c and returns all of its records in partition order.
func (c *Collection[T]) Collect(ctx context.Context) ([]T, error) {
	parts, err := c.compute(ctx)
	if err != nil {
		return nil, xerrors.Errorf("collect %s: %w", c.name, err)
	}
	var out []T
	for _, p := range parts {
		out = append(out, p...)
	}
	return out, nil
}

// Count evaluates c and returns the number of records it contains.
func (c *Collection[T]) Count(ctx context.Context) (int, error) {
	parts, err := c.compute(ctx)
	if err != nil {
		return 0, xerrors.Errorf("count %s: %w", c.name, err)
	}
	var n int
	for _, p := range parts {
		n += len(p)
	}
	return n, nil
}

// Reduce evaluates c and folds its records using the associative and
// commutative function fn. Each partition is reduced in parallel and the
// partial results are combined in partition order.
func (c *Collection[T]) Reduce(ctx context.Context, fn func(T, T) T) (T, error) {
	var zero T
	parts, err := c.compute(ctx)
	if err != nil {
		return zero, xerrors.Errorf("reduce %s: %w", c.name, err)
	}

	partials := make([]T, len(parts))
	found := make([]bool, len(parts))
	err = c.dc.runPartitions(ctx, "reduce", len(parts), func(_ context.Context, part int) error {
		for i, rec := range parts[part] {
			if i == 0 {
				partials[part] = rec
				continue
			}
			partials[part] = fn(partials[part], rec)
		}
		found[part] = len(parts[part]) != 0
		return nil
	})
	if err != nil {
		return zero, xerrors.Errorf("reduce %s: %w", c.name, err)
	}

	var (
		res  T
		seen bool
	)
	for i, partial := range partials {
		if !found[i] {
			continue
		}
		if !seen {
			res, seen = partial, true
			continue
		}
		res = fn(res, partial)
	}
	if !seen {
		return zero, xerrors.Errorf("reduce %s: %w", c.name, ErrEmptyCollection)
	}
	return res, nil
}

// ForEach evaluates c and invokes fn for every record. Partitions are visited
// in parallel so fn must be safe for concurrent use.
func (c *Collection[T]) ForEach(ctx context.Context, fn func(T)) error {
	parts, err := c.compute(ctx)
	if err != nil {
		return xerrors.Errorf("foreach %s: %w", c.name, err)
	}
	return c.dc.runPartitions(ctx, "foreach", len(parts), func(_ context.Context, part int) error {
		for _, rec := range parts[part] {
			fn(rec)
		}
		return nil
	})
}

// Top evaluates c and returns its k largest records according to less, in
// descending order. Records that compare equal keep their partition order.
func (c *Collection[T]) Top(ctx context.Context, k int, less func(a, b T) bool) ([]T, error) {
	if k <= 0 {
		return nil, nil
	}
	parts, err := c.compute(ctx)
	if err != nil {
		return nil, xerrors.Errorf("top %s: %w", c.name, err)
	}

	candidates := make([][]T, len(parts))
	err = c.dc.runPartitions(ctx, "top", len(parts), func(_ context.Context, part int) error {
		candidates[part] = largest(parts[part], k, less)
		return nil
	})
	if err != nil {
		return nil, xerrors.Errorf("top %s: %w", c.name, err)
	}

	var merged []T
	for _, cand := range candidates {
		merged = append(merged, cand...)
	}
	return largest(merged, k, less), nil
}

func largest[T any](in []T, k int, less func(a, b T) bool) []T {
	sorted := append([]T(nil), in...)
	sort.SliceStable(sorted, func(i, j int) bool { return less(sorted[j], sorted[i]) })
	if len(sorted) > k {
		sorted = sorted[:k]
	}
	return sorted
}
