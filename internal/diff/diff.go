package diff

import (
	"errors"
	"fmt"
	"slices"

	"github.com/DaviAndorid/ArchitectureGuide/internal/catalog"
)

// ErrOpOutOfRange indicates an operation whose index does not fit the list it is applied to.
var ErrOpOutOfRange = errors.New("diff: operation index out of range")

// OpKind identifies a list edit.
type OpKind int

const (
	OpRemove OpKind = iota + 1
	OpMove
	OpInsert
	OpUpdate
)

func (k OpKind) String() string {
	switch k {
	case OpRemove:
		return "remove"
	case OpMove:
		return "move"
	case OpInsert:
		return "insert"
	case OpUpdate:
		return "update"
	default:
		return fmt.Sprintf("op(%d)", int(k))
	}
}

// Op is one edit. Index is the position the edit applies to in the list as it
// stands after all preceding ops. For OpMove, From is the position before the
// item is taken out and Index the position it is put back at.
type Op[T any] struct {
	Kind  OpKind
	Index int
	From  int
	Item  T
}

// Compute returns the edits that turn previous into next. Identities must be
// unique within each list. Ops are ordered removals, moves, insertions, updates.
// Items kept in place are chosen as a longest common subsequence so the number
// of moves is minimal.
func Compute[T any, K comparable](previous, next []T, identity func(T) K, same func(a, b T) bool) []Op[T] {
	previousIndex := make(map[K]int, len(previous))
	for i, item := range previous {
		previousIndex[identity(item)] = i
	}
	nextIndex := make(map[K]int, len(next))
	for i, item := range next {
		nextIndex[identity(item)] = i
	}

	var ops []Op[T]
	working := make([]K, 0, len(previous))
	for _, item := range previous {
		working = append(working, identity(item))
	}

	for i := len(previous) - 1; i >= 0; i-- {
		if _, kept := nextIndex[working[i]]; kept {
			continue
		}
		ops = append(ops, Op[T]{Kind: OpRemove, Index: i, Item: previous[i]})
		working = slices.Delete(working, i, i+1)
	}

	anchored := stableIdentities(working, next, identity, previousIndex)
	for i, item := range next {
		key := identity(item)
		if _, existed := previousIndex[key]; !existed {
			continue
		}
		if _, ok := anchored[key]; ok {
			continue
		}
		from := slices.Index(working, key)
		working = slices.Delete(working, from, from+1)
		to := 0
		for j := i - 1; j >= 0; j-- {
			predecessor := identity(next[j])
			if _, existed := previousIndex[predecessor]; existed {
				to = slices.Index(working, predecessor) + 1
				break
			}
		}
		working = slices.Insert(working, to, key)
		ops = append(ops, Op[T]{Kind: OpMove, From: from, Index: to, Item: item})
		anchored[key] = struct{}{}
	}

	for i, item := range next {
		if _, existed := previousIndex[identity(item)]; existed {
			continue
		}
		ops = append(ops, Op[T]{Kind: OpInsert, Index: i, Item: item})
	}

	for i, item := range next {
		j, existed := previousIndex[identity(item)]
		if !existed || same(previous[j], item) {
			continue
		}
		ops = append(ops, Op[T]{Kind: OpUpdate, Index: i, Item: item})
	}
	return ops
}

// stableIdentities returns the longest common subsequence of the surviving
// previous order and the next order, restricted to identities present in both.
func stableIdentities[T any, K comparable](surviving []K, next []T, identity func(T) K, previousIndex map[K]int) map[K]struct{} {
	target := make([]K, 0, len(next))
	for _, item := range next {
		key := identity(item)
		if _, existed := previousIndex[key]; existed {
			target = append(target, key)
		}
	}

	rows, cols := len(surviving), len(target)
	lengths := make([][]int, rows+1)
	for i := range lengths {
		lengths[i] = make([]int, cols+1)
	}
	for i := rows - 1; i >= 0; i-- {
		for j := cols - 1; j >= 0; j-- {
			if surviving[i] == target[j] {
				lengths[i][j] = lengths[i+1][j+1] + 1
			} else {
				lengths[i][j] = max(lengths[i+1][j], lengths[i][j+1])
			}
		}
	}

	stable := make(map[K]struct{}, lengths[0][0])
	for i, j := 0, 0; i < rows && j < cols; {
		switch {
		case surviving[i] == target[j]:
			stable[surviving[i]] = struct{}{}
			i++
			j++
		case lengths[i+1][j] >= lengths[i][j+1]:
			i++
		default:
			j++
		}
	}
	return stable
}

// Apply replays ops against a copy of list.
func Apply[T any](list []T, ops []Op[T]) ([]T, error) {
	out := slices.Clone(list)
	for position, op := range ops {
		switch op.Kind {
		case OpRemove:
			if op.Index < 0 || op.Index >= len(out) {
				return nil, fmt.Errorf("op %d %s at %d: %w", position, op.Kind, op.Index, ErrOpOutOfRange)
			}
			out = slices.Delete(out, op.Index, op.Index+1)
		case OpMove:
			if op.From < 0 || op.From >= len(out) || op.Index < 0 || op.Index >= len(out) {
				return nil, fmt.Errorf("op %d %s from %d to %d: %w", position, op.Kind, op.From, op.Index, ErrOpOutOfRange)
			}
			item := out[op.From]
			out = slices.Delete(out, op.From, op.From+1)
			out = slices.Insert(out, op.Index, item)
		case OpInsert:
			if op.Index < 0 || op.Index > len(out) {
				return nil, fmt.Errorf("op %d %s at %d: %w", position, op.Kind, op.Index, ErrOpOutOfRange)
			}
			out = slices.Insert(out, op.Index, op.Item)
		case OpUpdate:
			if op.Index < 0 || op.Index >= len(out) {
				return nil, fmt.Errorf("op %d %s at %d: %w", position, op.Kind, op.Index, ErrOpOutOfRange)
			}
			out[op.Index] = op.Item
		default:
			return nil, fmt.Errorf("op %d: unknown kind %s", position, op.Kind)
		}
	}
	return out, nil
}

// Products diffs two product snapshots by ID.
func Products(previous, next []catalog.Product) []Op[catalog.Product] {
	return Compute(previous, next,
		func(p catalog.Product) int64 { return p.ID },
		func(a, b catalog.Product) bool { return a.SameContent(b) })
}

// Comments diffs two comment snapshots by ID.
func Comments(previous, next []catalog.Comment) []Op[catalog.Comment] {
	return Compute(previous, next,
		func(c catalog.Comment) int64 { return c.ID },
		func(a, b catalog.Comment) bool { return a.SameContent(b) })
}
