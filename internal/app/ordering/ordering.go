// Package ordering computes insertion positions for ordered child sets.
package ordering

import "context"

const (
	// CollectionFloor is the first position handed out in an empty collection list.
	CollectionFloor = 0
	// LinkFloor is the first position handed out in an empty link list.
	LinkFloor = 1
)

// MaxFunc returns the largest order value in a scope, or ok=false when the
// scope has no rows.
type MaxFunc func(ctx context.Context) (top int, ok bool, err error)

// NextIndex returns a position strictly greater than every existing order in
// the scope, or floor when the scope is empty.
func NextIndex(ctx context.Context, maxOrder MaxFunc, floor int) (int, error) {
	top, ok, err := maxOrder(ctx)
	if err != nil {
		return 0, err
	}
	return Next(top, ok, floor), nil
}

// Next is the pure form of NextIndex.
func Next(top int, ok bool, floor int) int {
	if !ok {
		return floor
	}
	return top + 1
}

// Batch returns n consecutive positions starting at next.
func Batch(next, n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = next + i
	}
	return out
}
