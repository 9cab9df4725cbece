package decode

import (
	"strconv"

	qtpeek "github.com/qtpeek/qtpeek"
)

// Iterator is a bounded lazy enumeration of labeled child elements. It is
// finite, capped at the engine's size ceiling, and not restartable: obtain a
// fresh iterator per enumeration. On a mid-traversal fault it stops at the
// elements already produced and records the fault in Err.
type Iterator struct {
	produce func() (qtpeek.Child, error, bool)
	err     error
	limit   int64
	count   int64
	done    bool
}

func newIterator(limit int64, produce func() (qtpeek.Child, error, bool)) *Iterator {
	return &Iterator{produce: produce, limit: limit}
}

func emptyIterator() *Iterator {
	return &Iterator{done: true}
}

// Next returns the next (label, value) pair. ok is false when the sequence is
// exhausted, the ceiling was reached, or a traversal fault occurred.
func (it *Iterator) Next() (qtpeek.Child, bool) {
	if it.done || it.count >= it.limit {
		it.done = true
		return qtpeek.Child{}, false
	}
	child, err, ok := it.produce()
	if err != nil {
		it.err = err
		it.done = true
		return qtpeek.Child{}, false
	}
	if !ok {
		it.done = true
		return qtpeek.Child{}, false
	}
	it.count++
	return child, true
}

// Err reports the traversal fault that stopped the iteration, if any.
func (it *Iterator) Err() error { return it.err }

// Collect drains the iterator. Used by hosts that want an eager slice.
func (it *Iterator) Collect() []qtpeek.Child {
	var out []qtpeek.Child
	for {
		c, ok := it.Next()
		if !ok {
			return out
		}
		out = append(out, c)
	}
}

// indexLabel renders the canonical "[i]" child label.
func indexLabel(i int64) string {
	return "[" + strconv.FormatInt(i, 10) + "]"
}
