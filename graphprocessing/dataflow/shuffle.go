package dataflow

import (
	"context"

	"golang.org/x/xerrors"
)

// ErrInvalidPartition is returned when the configured Partitioner assigns a
// key to a partition outside the valid range.
var ErrInvalidPartition = xerrors.New("partitioner returned an out of range partition")

// shuffle redistributes the records of parts so that all pairs sharing a key
// end up in the same output partition. Within an output partition, records
// retain the order of their source partitions which makes the result
// deterministic for a given input and partition count.
func shuffle[K comparable, V any](ctx context.Context, dc *Context, stage string, parts [][]Pair[K, V]) ([][]Pair[K, V], error) {
	numOut := dc.cfg.Partitions
	buckets := make([][][]Pair[K, V], len(parts))
	err := dc.runPartitions(ctx, stage+".shuffleWrite", len(parts), func(_ context.Context, src int) error {
		b := make([][]Pair[K, V], numOut)
		for _, kv := range parts[src] {
			dst := dc.cfg.Partitioner.Partition(kv.Key, numOut)
			if dst < 0 || dst >= numOut {
				return xerrors.Errorf("key %v assigned to partition %d: %w", kv.Key, dst, ErrInvalidPartition)
			}
			b[dst] = append(b[dst], kv)
		}
		buckets[src] = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	out := make([][]Pair[K, V], numOut)
	for dst := 0; dst < numOut; dst++ {
		for src := range buckets {
			out[dst] = append(out[dst], buckets[src][dst]...)
		}
	}
	return out, nil
}

// GroupByKey groups the values of each key into a single pair. Values keep
// their multiplicity and their relative input order; keys appear in the order
// of their first occurrence within each output partition.
func GroupByKey[K comparable, V any](c *Collection[Pair[K, V]]) *Collection[Pair[K, []V]] {
	return newCollection(c.dc, "groupByKey", func(ctx context.Context) ([][]Pair[K, []V], error) {
		in, err := c.compute(ctx)
		if err != nil {
			return nil, err
		}
		shuffled, err := shuffle(ctx, c.dc, "groupByKey", in)
		if err != nil {
			return nil, err
		}
		out := make([][]Pair[K, []V], len(shuffled))
		err = c.dc.runPartitions(ctx, "groupByKey", len(shuffled), func(_ context.Context, part int) error {
			index := make(map[K]int)
			var groups []Pair[K, []V]
			for _, kv := range shuffled[part] {
				i, ok := index[kv.Key]
				if !ok {
					i = len(groups)
					index[kv.Key] = i
					groups = append(groups, Pair[K, []V]{Key: kv.Key})
				}
				groups[i].Value = append(groups[i].Value, kv.Value)
			}
			out[part] = groups
			return nil
		})
		if err != nil {
			return nil, err
		}
		return out, nil
	})
}

// ReduceByKey merges the values of each key using the associative and
// commutative reduce function fn. Values are combined within each source
// partition before being shuffled.
func ReduceByKey[K comparable, V any](c *Collection[Pair[K, V]], fn func(V, V) V) *Collection[Pair[K, V]] {
	return newCollection(c.dc, "reduceByKey", func(ctx context.Context) ([][]Pair[K, V], error) {
		in, err := c.compute(ctx)
		if err != nil {
			return nil, err
		}
		combined := make([][]Pair[K, V], len(in))
		err = c.dc.runPartitions(ctx, "reduceByKey.combine", len(in), func(_ context.Context, part int) error {
			combined[part] = combineByKey(in[part], fn)
			return nil
		})
		if err != nil {
			return nil, err
		}
		shuffled, err := shuffle(ctx, c.dc, "reduceByKey", combined)
		if err != nil {
			return nil, err
		}
		out := make([][]Pair[K, V], len(shuffled))
		err = c.dc.runPartitions(ctx, "reduceByKey", len(shuffled), func(_ context.Context, part int) error {
			out[part] = combineByKey(shuffled[part], fn)
			return nil
		})
		if err != nil {
			return nil, err
		}
		return out, nil
	})
}

func combineByKey[K comparable, V any](in []Pair[K, V], fn func(V, V) V) []Pair[K, V] {
	index := make(map[K]int, len(in))
	var out []Pair[K, V]
	for _, kv := range in {
		if i, ok := index[kv.Key]; ok {
			out[i].Value = fn(out[i].Value, kv.Value)
			continue
		}
		index[kv.Key] = len(out)
		out = append(out, kv)
	}
	return out
}

// Distinct returns the distinct records of c. The first occurrence of each
// record is kept.
func Distinct[T comparable](c *Collection[T]) *Collection[T] {
	keyed := Map(c, func(rec T) Pair[T, struct{}] { return Pair[T, struct{}]{Key: rec} })
	return Keys(ReduceByKey(keyed, func(a, _ struct{}) struct{} { return a }))
}

// Join performs an inner join between left and right. For every key present
// in both collections it emits one pair per combination of a left and a right
// value.
func Join[K comparable, V, W any](left *Collection[Pair[K, V]], right *Collection[Pair[K, W]]) *Collection[Pair[K, Joined[V, W]]] {
	return newCollection(left.dc, "join", func(ctx context.Context) ([][]Pair[K, Joined[V, W]], error) {
		lParts, err := left.compute(ctx)
		if err != nil {
			return nil, err
		}
		rParts, err := right.compute(ctx)
		if err != nil {
			return nil, err
		}
		lShuffled, err := shuffle(ctx, left.dc, "join.left", lParts)
		if err != nil {
			return nil, err
		}
		rShuffled, err := shuffle(ctx, left.dc, "join.right", rParts)
		if err != nil {
			return nil, err
		}

		out := make([][]Pair[K, Joined[V, W]], len(lShuffled))
		err = left.dc.runPartitions(ctx, "join", len(lShuffled), func(_ context.Context, part int) error {
			rightValues := make(map[K][]W)
			for _, kv := range rShuffled[part] {
				rightValues[kv.Key] = append(rightValues[kv.Key], kv.Value)
			}
			var joined []Pair[K, Joined[V, W]]
			for _, kv := range lShuffled[part] {
				for _, w := range rightValues[kv.Key] {
					joined = append(joined, Pair[K, Joined[V, W]]{
						Key:   kv.Key,
						Value: Joined[V, W]{Left: kv.Value, Right: w},
					})
				}
			}
			out[part] = joined
			return nil
		})
		if err != nil {
			return nil, err
		}
		return out, nil
	})
}
