// Package tuple prints a heterogeneous sequence of values in "(a, b, c)"
// form, mirroring the recursive print/print_tuple overload set from the
// original C++ demo's utils/print_tuple.h.
package tuple

import (
	"fmt"
	"io"
	"reflect"
	"strings"
)

// Pair mirrors std::pair<First, Second>: printed as "(first, second)"
// instead of falling through to the generic element formatter.
type Pair struct {
	First, Second any
}

// Print writes values to w as a single parenthesised, comma-separated
// tuple. Any element that is itself a Pair or a slice/array recurses into
// the same tuple formatting; an element implementing fmt.Stringer is
// written as its String() result; every other element falls back to the
// generic %v formatter, mirroring the header's operator<< fallback.
func Print(w io.Writer, values ...any) {
	fmt.Fprint(w, Sprint(values...))
}

// Sprint renders values the way Print does, without writing anywhere.
func Sprint(values ...any) string {
	var b strings.Builder
	b.WriteByte('(')
	writeElements(&b, values)
	b.WriteByte(')')
	return b.String()
}

func writeElements(b *strings.Builder, values []any) {
	for i, v := range values {
		if i > 0 {
			b.WriteString(", ")
		}
		writeElement(b, v)
	}
}

func writeElement(b *strings.Builder, v any) {
	switch t := v.(type) {
	case Pair:
		b.WriteByte('(')
		writeElement(b, t.First)
		b.WriteString(", ")
		writeElement(b, t.Second)
		b.WriteByte(')')
		return
	case fmt.Stringer:
		b.WriteString(t.String())
		return
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		elems := make([]any, rv.Len())
		for i := range elems {
			elems[i] = rv.Index(i).Interface()
		}
		b.WriteByte('(')
		writeElements(b, elems)
		b.WriteByte(')')
	default:
		fmt.Fprintf(b, "%v", v)
	}
}
