// Copyright 2012 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cookiejar

import "testing"

var parseMaxAgeTests = []struct {
	in   string
	kind MaxAgeKind
	secs int64
	ok   bool
}{
	{"0", MaxAgeFinite, 0, true},
	{"100", MaxAgeFinite, 100, true},
	{"-100", MaxAgeFinite, -100, true},
	{"", MaxAgeAbsent, 0, false},
	{"abc", MaxAgeAbsent, 0, false},
	{"1.5", MaxAgeAbsent, 0, false},
	{"99999999999999999999999999", MaxAgePositiveInfinity, 0, true},
	{"-99999999999999999999999999", MaxAgeNegativeInfinity, 0, true},
}

func TestParseMaxAge(t *testing.T) {
	for i, tt := range parseMaxAgeTests {
		got, ok := parseMaxAge(tt.in)
		if ok != tt.ok {
			t.Errorf("#%d %q: ok = %t, want %t", i, tt.in, ok, tt.ok)
			continue
		}
		if !ok {
			continue
		}
		if got.Kind != tt.kind {
			t.Errorf("#%d %q: kind = %v, want %v", i, tt.in, got.Kind, tt.kind)
		}
		if got.Kind == MaxAgeFinite && got.Seconds != tt.secs {
			t.Errorf("#%d %q: seconds = %d, want %d", i, tt.in, got.Seconds, tt.secs)
		}
	}
}

func TestMaxAgeJSONRoundTrip(t *testing.T) {
	cases := []MaxAge{
		{},
		{Kind: MaxAgeFinite, Seconds: 42},
		{Kind: MaxAgeFinite, Seconds: -7},
		{Kind: MaxAgePositiveInfinity},
		{Kind: MaxAgeNegativeInfinity},
	}
	for i, want := range cases {
		got, err := maxAgeFromJSON(want.String())
		if err != nil {
			t.Errorf("#%d: %v", i, err)
			continue
		}
		if got != want {
			t.Errorf("#%d: got %+v, want %+v", i, got, want)
		}
	}
}
