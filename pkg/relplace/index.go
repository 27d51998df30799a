package relplace

import "strconv"

// Index is an optional position in one of the engine's lists. The zero
// value is NoIndex.
type Index struct {
	i  int
	ok bool
}

// NoIndex is the undefined index.
var NoIndex = Index{}

// IndexOf returns the defined index i.
func IndexOf(i int) Index { return Index{i: i, ok: true} }

// Get returns the index and whether it is defined.
func (x Index) Get() (int, bool) { return x.i, x.ok }

// Valid reports whether the index is defined.
func (x Index) Valid() bool { return x.ok }

// Int returns the index, or -1 when undefined.
func (x Index) Int() int {
	if !x.ok {
		return -1
	}
	return x.i
}

// String returns the decimal index or "none".
func (x Index) String() string {
	if !x.ok {
		return "none"
	}
	return strconv.Itoa(x.i)
}
