package codec

import (
	"fmt"
	"math/big"
	"strings"
)

// Keyword is a symbolic identifier in the tradition of edn keywords. A keyword
// may carry a namespace, written "ns/name"; a keyword without a slash has no
// namespace.
type Keyword string

// Namespace returns the namespace part of the keyword, or "" if there is none.
func (k Keyword) Namespace() string {
	if i := strings.IndexByte(string(k), '/'); i >= 0 {
		return string(k)[:i]
	}
	return ""
}

// Name returns the name part of the keyword.
func (k Keyword) Name() string {
	if i := strings.IndexByte(string(k), '/'); i >= 0 {
		return string(k)[i+1:]
	}
	return string(k)
}

func (k Keyword) String() string { return ":" + string(k) }

// Symbol is a symbolic identifier encoded like a Keyword but under its own
// tag. The record wrapper fields "meta" and "value" are symbols.
type Symbol string

func (s Symbol) String() string { return string(s) }

// Char is a single UTF-16 code unit.
type Char uint16

// List is an ordered sequence of values.
type List []any

// Map is a mapping from value to value. Only comparable values may be used as
// keys; the codec rejects others at decode time.
type Map map[any]any

// Set is a collection of unique values.
type Set map[any]struct{}

// NewSet builds a Set from the given elements.
func NewSet(elems ...any) Set {
	s := make(Set, len(elems))
	for _, e := range elems {
		s[e] = struct{}{}
	}
	return s
}

// BigDecimal is an arbitrary-precision decimal: Unscaled * 10^-Scale.
type BigDecimal struct {
	Unscaled *big.Int
	Scale    int32
}

func (d BigDecimal) String() string {
	return fmt.Sprintf("%sE-%d", d.Unscaled.String(), d.Scale)
}

// Equal reports whether two decimals have the same scale and unscaled value.
func (d BigDecimal) Equal(o BigDecimal) bool {
	return d.Scale == o.Scale && d.Unscaled.Cmp(o.Unscaled) == 0
}
