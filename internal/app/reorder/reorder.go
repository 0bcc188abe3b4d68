// Package reorder applies a caller-supplied ordering to a set of owned rows.
//
// The same algorithm serves collections (scoped by owner) and links (scoped
// by parent collection): read the scope, reject anything the caller does not
// own, write only the positions that actually change, and do so atomically.
package reorder

import (
	"context"
	"errors"
	"fmt"

	"github.com/sifan077/LinkShelf/internal/app/model"
)

var (
	// ErrForbidden signals that at least one id is outside the caller's scope.
	ErrForbidden = errors.New("reorder: id not owned by scope")
	// ErrDuplicateID signals that an id appears more than once in the ordering.
	ErrDuplicateID = errors.New("reorder: duplicate id in ordering")
)

// Scope is the ownership-bounded set of rows being reordered.
type Scope interface {
	// Orders returns id and current order for every row in the scope.
	Orders(ctx context.Context) ([]model.OrderEntry, error)
	// ApplyOrders writes all updates in a single transaction and returns the
	// number of rows affected per update, in input order.
	ApplyOrders(ctx context.Context, updates []model.OrderUpdate) ([]int64, error)
}

// ScopeFuncs adapts a pair of closures to Scope.
type ScopeFuncs struct {
	OrdersFn func(ctx context.Context) ([]model.OrderEntry, error)
	ApplyFn  func(ctx context.Context, updates []model.OrderUpdate) ([]int64, error)
}

func (f ScopeFuncs) Orders(ctx context.Context) ([]model.OrderEntry, error) {
	return f.OrdersFn(ctx)
}

func (f ScopeFuncs) ApplyOrders(ctx context.Context, updates []model.OrderUpdate) ([]int64, error) {
	return f.ApplyFn(ctx, updates)
}

// Result reports the rows affected by one applied update.
type Result struct {
	Count int64 `json:"count"`
}

// Plan validates orderedIDs against the scope rows and returns the minimal
// set of updates. No I/O.
func Plan(current []model.OrderEntry, orderedIDs []string) ([]model.OrderUpdate, error) {
	owned := make(map[string]int, len(current))
	for _, e := range current {
		owned[e.ID] = e.Order
	}

	seen := make(map[string]struct{}, len(orderedIDs))
	for _, id := range orderedIDs {
		if _, ok := owned[id]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrForbidden, id)
		}
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateID, id)
		}
		seen[id] = struct{}{}
	}

	var updates []model.OrderUpdate
	for i, id := range orderedIDs {
		if owned[id] != i {
			updates = append(updates, model.OrderUpdate{ID: id, Order: i})
		}
	}
	return updates, nil
}

// Apply reorders the rows of scope so that orderedIDs[i] gets order i.
// Ids omitted from orderedIDs keep their current order. An empty result with
// a nil error means nothing needed to change.
func Apply(ctx context.Context, scope Scope, orderedIDs []string) ([]Result, error) {
	current, err := scope.Orders(ctx)
	if err != nil {
		return nil, fmt.Errorf("load scope: %w", err)
	}

	updates, err := Plan(current, orderedIDs)
	if err != nil {
		return nil, err
	}
	if len(updates) == 0 {
		return []Result{}, nil
	}

	counts, err := scope.ApplyOrders(ctx, updates)
	if err != nil {
		return nil, fmt.Errorf("apply orders: %w", err)
	}

	results := make([]Result, len(counts))
	for i, n := range counts {
		results[i] = Result{Count: n}
	}
	return results, nil
}
