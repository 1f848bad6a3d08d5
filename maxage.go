// Copyright 2012 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cookiejar

import (
	"fmt"
	"math"
	"strconv"
)

// MaxAgeKind distinguishes the states a Max-Age attribute can be in. The
// source material this package is based on overloads a single numeric field
// with magic values; we keep its four states (absent, finite, and the two
// infinities) as an explicit discriminated union instead.
type MaxAgeKind uint8

const (
	// MaxAgeAbsent means no Max-Age attribute was present.
	MaxAgeAbsent MaxAgeKind = iota
	// MaxAgeFinite means Seconds holds a valid (possibly negative or
	// zero) number of seconds.
	MaxAgeFinite
	// MaxAgePositiveInfinity means the cookie never expires via Max-Age.
	MaxAgePositiveInfinity
	// MaxAgeNegativeInfinity means the cookie is already expired via
	// Max-Age.
	MaxAgeNegativeInfinity
)

// MaxAge is the four-state Max-Age attribute of a cookie: absent, a finite
// number of seconds, or one of the two infinities used internally during
// expiry arithmetic (see Cookie.ExpiryTime).
type MaxAge struct {
	Kind    MaxAgeKind
	Seconds int64 // meaningful only when Kind == MaxAgeFinite
}

// Absent reports whether no Max-Age attribute is present.
func (m MaxAge) Absent() bool { return m.Kind == MaxAgeAbsent }

// String renders m the way it would appear as a Max-Age attribute value, or
// the JSON sentinel tokens for the two infinities. The header form never
// emits "Infinity"/"-Infinity" (spec section 4.D); callers serializing a
// header must first check Kind.
func (m MaxAge) String() string {
	switch m.Kind {
	case MaxAgeFinite:
		return strconv.FormatInt(m.Seconds, 10)
	case MaxAgePositiveInfinity:
		return "Infinity"
	case MaxAgeNegativeInfinity:
		return "-Infinity"
	default:
		return ""
	}
}

// parseMaxAge parses a Max-Age attribute value per spec section 4.E: it must
// match -?[0-9]+, otherwise the attribute is ignored (MaxAgeAbsent, false).
// Values outside the native integer range clamp to the matching infinity
// per the Open Question decision in SPEC_FULL.md.
func parseMaxAge(s string) (MaxAge, bool) {
	if s == "" {
		return MaxAge{}, false
	}
	i := 0
	neg := false
	if s[0] == '-' {
		neg = true
		i = 1
	}
	if i == len(s) {
		return MaxAge{}, false
	}
	for j := i; j < len(s); j++ {
		if s[j] < '0' || s[j] > '9' {
			return MaxAge{}, false
		}
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		// overflow: clamp to the matching sentinel infinity.
		if neg {
			return MaxAge{Kind: MaxAgeNegativeInfinity}, true
		}
		return MaxAge{Kind: MaxAgePositiveInfinity}, true
	}
	const clampSeconds = math.MaxInt64 / 1000
	if n > clampSeconds {
		return MaxAge{Kind: MaxAgePositiveInfinity}, true
	}
	if n < -clampSeconds {
		return MaxAge{Kind: MaxAgeNegativeInfinity}, true
	}
	return MaxAge{Kind: MaxAgeFinite, Seconds: n}, true
}

func maxAgeFromJSON(s string) (MaxAge, error) {
	switch s {
	case "":
		return MaxAge{}, nil
	case "Infinity":
		return MaxAge{Kind: MaxAgePositiveInfinity}, nil
	case "-Infinity":
		return MaxAge{Kind: MaxAgeNegativeInfinity}, nil
	default:
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return MaxAge{}, fmt.Errorf("cookiejar: invalid maxAge %q: %w", s, err)
		}
		return MaxAge{Kind: MaxAgeFinite, Seconds: n}, nil
	}
}
