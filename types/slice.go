// SPDX-License-Identifier: MIT
package types

import (
	"strings"

	"golang.org/x/exp/slices"
)

type (
	// StringSlice for `string`.
	StringSlice []string
)

// String is the `fmt.Stringer` interface implementation for `StringSlice`.
func (sl StringSlice) String() string { return "[" + strings.Join(sl, ",") + "]" }

// Sort for `StringSlice`.
func (sl *StringSlice) Sort() { slices.Sort(*sl) }

// Locate for `StringSlice`.
func (sl *StringSlice) Locate(val string) (resl int) { return slices.Index(*sl, val) }

// UniqueAppend to `StringSlice`.
func (sl *StringSlice) UniqueAppend(values ...string) {
	for index := range values {
		newValue := values[index]
		if sl.Locate(newValue) > -1 {
			continue
		}

		*sl = append(*sl, newValue)
	}
}

// Map applies fn to every value, dropping empty results & duplicates.
func (sl StringSlice) Map(fn func(string) string) (dst StringSlice) {
	dst = make(StringSlice, 0, len(sl))
	for index := range sl {
		if value := fn(sl[index]); value != "" {
			dst.UniqueAppend(value)
		}
	}

	return
}
