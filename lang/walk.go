package lang

import "iter"

// Walk returns a depth-first sequence over item and every row and container
// nested in it, yielding those for which cond holds (all of them if cond is
// nil). A row is followed by its container values, a template by its
// parameters and then its members. Each call to the returned sequence
// starts a fresh walk.
func Walk(item any, cond func(any) bool) iter.Seq[any] {
	return func(yield func(any) bool) {
		walk(item, cond, yield)
	}
}

func walk(item any, cond func(any) bool, yield func(any) bool) bool {
	if cond == nil || cond(item) {
		if !yield(item) {
			return false
		}
	}

	switch x := item.(type) {
	case Row:
		for _, v := range x.row().cells {
			if c, ok := v.(Container); ok && !walk(c, cond, yield) {
				return false
			}
		}

	case *Template:
		if x.Params != nil && !walk(x.Params, cond, yield) {
			return false
		}

		return walkRows(x, cond, yield)

	case Container:
		return walkRows(x, cond, yield)
	}

	return true
}

func walkRows(c Container, cond func(any) bool, yield func(any) bool) bool {
	for i := range c.Len() {
		if !walk(c.rowAt(i), cond, yield) {
			return false
		}
	}

	return true
}
