// This file is part of c64core.
//
// c64core is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// c64core is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with c64core.  If not, see <https://www.gnu.org/licenses/>.

// Package errors implements "curated" errors: predefined message templates
// that calling code can test against without caring about the exact
// formatted text. The error handling design requires that per-cycle code
// paths never allocate and never fail, so every error kind the core can
// raise is constructed once, ahead of time, at the interface boundary
// (image load, ROM load, snapshot restore) rather than deep in the
// per-cycle hot path.
package errors

import (
	"fmt"
	"strings"
)

// Values is the type used to specify arguments for a curated error.
type Values []interface{}

type curated struct {
	message string
	values  Values
}

// Errorf creates a new curated error from a message template and values to
// interpolate into it with fmt.Errorf-style verbs.
func Errorf(message string, values ...interface{}) error {
	return curated{message: message, values: values}
}

// Error returns the normalised error message. Normalisation removes
// duplicate adjacent message parts that appear when curated errors wrap one
// another.
func (er curated) Error() string {
	s := fmt.Errorf(er.message, er.values...).Error()

	p := strings.SplitN(s, ": ", 3)
	if len(p) > 1 && p[0] == p[1] {
		return strings.Join(p[1:], ": ")
	}
	return strings.Join(p, ": ")
}

// Head returns the leading (template) part of a curated error's message,
// useful in switches. If err isn't a curated error, Head returns Error().
func Head(err error) string {
	if er, ok := err.(curated); ok {
		return er.message
	}
	return err.Error()
}

// IsAny reports whether err was created by this package.
func IsAny(err error) bool {
	if err == nil {
		return false
	}
	_, ok := err.(curated)
	return ok
}

// Is reports whether err is a curated error with the given template head.
func Is(err error, head string) bool {
	if err == nil {
		return false
	}
	if er, ok := err.(curated); ok {
		return er.message == head
	}
	return false
}

// Has reports whether head appears anywhere in err, including in any
// curated errors nested in its Values.
func Has(err error, head string) bool {
	if err == nil || !IsAny(err) {
		return false
	}
	if Is(err, head) {
		return true
	}
	for _, v := range err.(curated).values {
		if e, ok := v.(curated); ok && Has(e, head) {
			return true
		}
	}
	return false
}
