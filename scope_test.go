// Copyright 2012 Volker Dobler. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cookiejar

import "testing"

var canonicalDomainTests = []struct {
	in, want string
	ok       bool
}{
	{"example.com", "example.com", true},
	{"EXAMPLE.com", "example.com", true},
	{".example.com", "example.com", true},
	{" example.com ", "example.com", true},
	{"www.EXAMPLE.com.", "www.example.com.", true},
}

func TestCanonicalDomain(t *testing.T) {
	for i, tt := range canonicalDomainTests {
		got, err := canonicalDomain(tt.in)
		if (err == nil) != tt.ok {
			t.Errorf("#%d %q: err = %v, want ok=%t", i, tt.in, err, tt.ok)
			continue
		}
		if err == nil && got != tt.want {
			t.Errorf("#%d %q: got %q, want %q", i, tt.in, got, tt.want)
		}
	}
}

var domainMatchTests = []struct {
	host, cookieDomain string
	match              bool
}{
	{"example.com", "example.com", true},
	{"www.example.com", "example.com", true},
	{"example.com", "www.example.com", false},
	{"notexample.com", "example.com", false},
	{"192.168.0.1", "192.168.0.1", true},
	{"192.168.0.1", "0.1", false},
	{"127.0.0.1", "example.com", false},
}

func TestDomainMatch(t *testing.T) {
	for i, tt := range domainMatchTests {
		got := domainMatch(tt.host, tt.cookieDomain, false)
		if got != tt.match {
			t.Errorf("#%d domainMatch(%q,%q) = %t, want %t", i, tt.host, tt.cookieDomain, got, tt.match)
		}
	}
}

var defaultPathTests = []struct{ path, dir string }{
	{"", "/"},
	{"xy", "/"},
	{"xy/z", "/"},
	{"/", "/"},
	{"/abc", "/"},
	{"/ab/xy", "/ab"},
	{"/ab/xy/z", "/ab/xy"},
	{"/ab/", "/ab"},
	{"/ab/xy/z/", "/ab/xy/z"},
}

func TestDefaultPath(t *testing.T) {
	for i, tt := range defaultPathTests {
		got := defaultPath(tt.path)
		if got != tt.dir {
			t.Errorf("#%d %q: want %q, got %q", i, tt.path, tt.dir, got)
		}
	}
}

var pathMatchTests = []struct {
	cookiePath string
	urlPath    string
	match      bool
}{
	{"/", "/", true},
	{"/x", "/x", true},
	{"/", "/abc", true},
	{"/abc", "/foo", false},
	{"/abc", "/foo/", false},
	{"/abc", "/abcd", false},
	{"/abc", "/abc/d", true},
	{"/path", "/", false},
	{"/path", "/path", true},
	{"/path", "/path/x", true},
}

func TestPathMatch(t *testing.T) {
	for i, tt := range pathMatchTests {
		if pathMatch(tt.urlPath, tt.cookiePath) != tt.match {
			t.Errorf("#%d want %t for %q ~ %q", i, tt.match, tt.cookiePath, tt.urlPath)
		}
	}
}

func TestPermuteDomain(t *testing.T) {
	psl := NewStaticPublicSuffixList()
	got := permuteDomain("a.b.example.com", psl)
	want := []string{"a.b.example.com", "b.example.com", "example.com"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("#%d got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestPermuteDomainRejectsSuffix(t *testing.T) {
	psl := NewStaticPublicSuffixList()
	if got := permuteDomain("com", psl); got != nil {
		t.Errorf("permuteDomain(\"com\") = %v, want nil", got)
	}
}

func TestPermutePath(t *testing.T) {
	got := permutePath("/a/b/c")
	want := []string{"/a/b/c", "/a/b", "/a", "/"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("#%d got %q, want %q", i, got[i], want[i])
		}
	}
}
