package types

import (
	"errors"
	"sort"
	"strconv"
)

// Array is an awk associative array from string keys to scalar values.
type Array struct {
	m map[string]Value
}

// NewArray returns an empty array.
func NewArray() *Array {
	return &Array{m: make(map[string]Value)}
}

// Get returns the element for key and whether it exists.
func (a *Array) Get(key string) (Value, bool) {
	v, ok := a.m[key]
	return v, ok
}

// Ref returns the element for key, creating it uninitialized if absent.
func (a *Array) Ref(key string) Value {
	v, ok := a.m[key]
	if !ok {
		a.m[key] = v
	}
	return v
}

// Set stores v under key.
func (a *Array) Set(key string, v Value) {
	a.m[key] = v
}

// Has reports whether key exists.
func (a *Array) Has(key string) bool {
	_, ok := a.m[key]
	return ok
}

// Delete removes key.
func (a *Array) Delete(key string) {
	delete(a.m, key)
}

// Clear removes every element. Aliases of the array see the change.
func (a *Array) Clear() {
	clear(a.m)
}

// Len returns the number of elements.
func (a *Array) Len() int {
	return len(a.m)
}

// Keys returns a snapshot of the keys. Integer-looking keys come first in
// numeric order, then the rest in string order, so that for-in walks
// split() results in index order.
func (a *Array) Keys() []string {
	keys := make([]string, 0, len(a.m))
	for k := range a.m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		ni, ierr := strconv.Atoi(keys[i])
		nj, jerr := strconv.Atoi(keys[j])
		switch {
		case ierr == nil && jerr == nil:
			return ni < nj
		case ierr == nil:
			return true
		case jerr == nil:
			return false
		default:
			return keys[i] < keys[j]
		}
	})
	return keys
}

// Errors reported when a name is used inconsistently at runtime.
var (
	ErrArrayAsScalar = errors.New("attempt to use array in a scalar context")
	ErrScalarAsArray = errors.New("attempt to use scalar as array")
)

// Cell is the storage behind a variable: either a scalar it owns, an
// array it owns, or a borrowed handle to an array owned by a caller.
// The zero Cell is an uninitialized variable, which may become either.
type Cell struct {
	val      Value
	arr      *Array
	borrowed bool
}

// Borrow returns a cell aliasing a, owned elsewhere.
func Borrow(a *Array) Cell {
	return Cell{arr: a, borrowed: true}
}

// Scalar returns a cell owning v.
func Scalar(v Value) Cell {
	return Cell{val: v}
}

// IsArray reports whether the cell holds or borrows an array.
func (c *Cell) IsArray() bool {
	return c.arr != nil
}

// IsBorrowed reports whether the cell aliases another cell's array.
func (c *Cell) IsBorrowed() bool {
	return c.borrowed
}

// IsUnset reports whether the cell has never been given a value.
func (c *Cell) IsUnset() bool {
	return c.arr == nil && c.val.kind == KindNull
}

// Get returns the scalar value.
func (c *Cell) Get() (Value, error) {
	if c.arr != nil {
		return Value{}, ErrArrayAsScalar
	}
	return c.val, nil
}

// Set stores a scalar value.
func (c *Cell) Set(v Value) error {
	if c.arr != nil {
		return ErrArrayAsScalar
	}
	c.val = v
	return nil
}

// Array returns the array, creating an owned one if the cell is unset.
func (c *Cell) Array() (*Array, error) {
	if c.arr != nil {
		return c.arr, nil
	}
	if c.val.kind != KindNull {
		return nil, ErrScalarAsArray
	}
	c.arr = NewArray()
	return c.arr, nil
}
