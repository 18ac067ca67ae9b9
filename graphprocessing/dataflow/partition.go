package dataflow

import (
	"encoding/binary"
	"fmt"
	"reflect"

	"github.com/cespare/xxhash/v2"
)

// Partitioner is implemented by types that can assign a record key to one of
// a fixed number of partitions.
type Partitioner interface {
	// Partition returns the partition in [0, numPartitions) that owns key.
	Partition(key interface{}, numPartitions int) int
}

// PartitionerFunc is an adapter to allow the use of ordinary functions as
// Partitioners. If f is a function with the appropriate signature,
// PartitionerFunc(f) is a Partitioner that calls f.
type PartitionerFunc func(key interface{}, numPartitions int) int

// Partition calls f(key, numPartitions).
func (f PartitionerFunc) Partition(key interface{}, numPartitions int) int {
	return f(key, numPartitions)
}

// HashPartitioner assigns keys to partitions based on the xxhash digest of
// their value.
type HashPartitioner struct{}

// Partition implements Partitioner.
func (HashPartitioner) Partition(key interface{}, numPartitions int) int {
	if numPartitions <= 1 {
		return 0
	}
	return int(hashKey(key) % uint64(numPartitions))
}

func hashKey(key interface{}) uint64 {
	switch k := key.(type) {
	case string:
		return xxhash.Sum64String(k)
	case fmt.Stringer:
		return xxhash.Sum64String(k.String())
	}

	// Named types (e.g. type Vertex string) fall through the type switch.
	var buf [8]byte
	v := reflect.ValueOf(key)
	switch v.Kind() {
	case reflect.String:
		return xxhash.Sum64String(v.String())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		binary.LittleEndian.PutUint64(buf[:], uint64(v.Int()))
		return xxhash.Sum64(buf[:])
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		binary.LittleEndian.PutUint64(buf[:], v.Uint())
		return xxhash.Sum64(buf[:])
	}
	return xxhash.Sum64String(fmt.Sprintf("%#v", key))
}
