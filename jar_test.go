// Copyright 2012 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cookiejar

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"testing"
)

func mustURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("url.Parse(%q): %v", raw, err)
	}
	return u
}

func TestJarSetAndGetBasicHostCookie(t *testing.T) {
	jar := New(Config{})
	u := mustURL(t, "http://www.example.com/")
	if _, err := jar.SetCookie(context.Background(), u, "a=1"); err != nil {
		t.Fatalf("SetCookie: %v", err)
	}
	got, err := jar.GetCookies(context.Background(), u)
	if err != nil {
		t.Fatalf("GetCookies: %v", err)
	}
	if len(got) != 1 || got[0].Key != "a" || got[0].Value != "1" {
		t.Fatalf("got %+v, want a single cookie a=1", got)
	}
	if got[0].HostOnly != HostOnlyTrue {
		t.Errorf("HostOnly = %v, want HostOnlyTrue for a no-Domain cookie", got[0].HostOnly)
	}
}

func TestJarDomainCookieVisibleToSubdomain(t *testing.T) {
	jar := New(Config{})
	set := mustURL(t, "http://www.example.com/")
	if _, err := jar.SetCookie(context.Background(), set, "a=1; Domain=example.com"); err != nil {
		t.Fatalf("SetCookie: %v", err)
	}
	sub := mustURL(t, "http://foo.www.example.com/")
	got, err := jar.GetCookies(context.Background(), sub)
	if err != nil {
		t.Fatalf("GetCookies: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d cookies, want 1", len(got))
	}
}

func TestJarHostCookieNotVisibleToSubdomain(t *testing.T) {
	jar := New(Config{})
	set := mustURL(t, "http://www.example.com/")
	if _, err := jar.SetCookie(context.Background(), set, "a=1"); err != nil {
		t.Fatalf("SetCookie: %v", err)
	}
	sub := mustURL(t, "http://foo.www.example.com/")
	got, err := jar.GetCookies(context.Background(), sub)
	if err != nil {
		t.Fatalf("GetCookies: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("got %d cookies, want 0 (host-only must not leak to subdomains)", len(got))
	}
}

func TestJarRejectsPublicSuffixDomainCookie(t *testing.T) {
	jar := New(Config{PublicSuffixList: NewStaticPublicSuffixList()})
	u := mustURL(t, "http://example.co.uk/")
	_, err := jar.SetCookie(context.Background(), u, "a=1; Domain=co.uk")
	if !errors.Is(err, ErrPublicSuffix) {
		t.Fatalf("err = %v, want ErrPublicSuffix", err)
	}
}

func TestJarAllowAllDomainsBypassesRejection(t *testing.T) {
	jar := New(Config{PublicSuffixList: NewStaticPublicSuffixList(), AllowAllDomains: true})
	u := mustURL(t, "http://example.co.uk/")
	if _, err := jar.SetCookie(context.Background(), u, "a=1; Domain=co.uk"); err != nil {
		t.Fatalf("SetCookie: %v", err)
	}
}

func TestJarRejectsCookieForIPWithDomain(t *testing.T) {
	jar := New(Config{})
	u := mustURL(t, "http://192.168.0.1/")
	_, err := jar.SetCookie(context.Background(), u, "a=1; Domain=192.168.0.1")
	if !errors.Is(err, ErrDomainMismatch) {
		t.Fatalf("err = %v, want ErrDomainMismatch", err)
	}
}

func TestJarLaxModeAllowsIPHostCookie(t *testing.T) {
	jar := New(Config{LaxMode: true})
	u := mustURL(t, "http://192.168.0.1/")
	c, err := jar.SetCookie(context.Background(), u, "a=1; Domain=192.168.0.1")
	if err != nil {
		t.Fatalf("SetCookie: %v", err)
	}
	if c == nil || c.HostOnly != HostOnlyTrue {
		t.Fatalf("got %+v, want a host-only cookie", c)
	}
}

func TestJarMaxAgeZeroDeletesCookie(t *testing.T) {
	jar := New(Config{})
	u := mustURL(t, "http://example.com/")
	if _, err := jar.SetCookie(context.Background(), u, "a=1"); err != nil {
		t.Fatalf("SetCookie: %v", err)
	}
	if _, err := jar.SetCookie(context.Background(), u, "a=1; Max-Age=0"); err != nil {
		t.Fatalf("SetCookie (delete): %v", err)
	}
	got, err := jar.GetCookies(context.Background(), u)
	if err != nil {
		t.Fatalf("GetCookies: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("got %+v, want deleted cookie to be gone", got)
	}
}

func TestJarSecureCookieNotSentOverPlainHTTP(t *testing.T) {
	jar := New(Config{})
	https := mustURL(t, "https://example.com/")
	if _, err := jar.SetCookie(context.Background(), https, "a=1; Secure"); err != nil {
		t.Fatalf("SetCookie: %v", err)
	}
	http := mustURL(t, "http://example.com/")
	got, err := jar.GetCookies(context.Background(), http)
	if err != nil {
		t.Fatalf("GetCookies: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("got %+v, want Secure cookie withheld from plain HTTP", got)
	}
	got, err = jar.GetCookies(context.Background(), https)
	if err != nil || len(got) != 1 {
		t.Fatalf("got %+v, %v, want the Secure cookie back over HTTPS", got, err)
	}
}

func TestJarScriptCookiesOmitHTTPOnly(t *testing.T) {
	jar := New(Config{})
	u := mustURL(t, "http://example.com/")
	jar.SetCookie(context.Background(), u, "a=1; HttpOnly")
	jar.SetCookie(context.Background(), u, "b=2")

	all, err := jar.GetCookies(context.Background(), u)
	if err != nil || len(all) != 2 {
		t.Fatalf("GetCookies: %+v, %v", all, err)
	}
	script, err := jar.ScriptCookies(context.Background(), u)
	if err != nil {
		t.Fatalf("ScriptCookies: %v", err)
	}
	if len(script) != 1 || script[0].Key != "b" {
		t.Fatalf("ScriptCookies = %+v, want only the non-HttpOnly cookie", script)
	}
}

func TestJarScriptCannotSetHTTPOnlyCookie(t *testing.T) {
	jar := New(Config{})
	u := mustURL(t, "http://example.com/")
	_, err := jar.SetCookieFromScript(context.Background(), u, "a=1; HttpOnly")
	if !errors.Is(err, ErrHTTPOnlyMismatch) {
		t.Fatalf("err = %v, want ErrHTTPOnlyMismatch", err)
	}
}

func TestJarGetCookiesSortedByPathLengthThenCreation(t *testing.T) {
	jar := New(Config{})
	u := mustURL(t, "http://example.com/app/sub")
	jar.SetCookie(context.Background(), u, "root=1; Path=/")
	jar.SetCookie(context.Background(), u, "app=1; Path=/app")
	jar.SetCookie(context.Background(), u, "appsub=1; Path=/app/sub")

	got, err := jar.GetCookies(context.Background(), u)
	if err != nil {
		t.Fatalf("GetCookies: %v", err)
	}
	want := []string{"appsub", "app", "root"}
	if len(got) != len(want) {
		t.Fatalf("got %d cookies, want %d", len(got), len(want))
	}
	for i, k := range want {
		if got[i].Key != k {
			t.Errorf("#%d got %q, want %q", i, got[i].Key, k)
		}
	}
}

func TestJarSerializeDeserializeRoundTrip(t *testing.T) {
	jar := New(Config{})
	u := mustURL(t, "http://example.com/")
	jar.SetCookie(context.Background(), u, "a=1; Domain=example.com")
	jar.SetCookie(context.Background(), u, "b=2; Path=/app")

	data, err := jar.Serialize()
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	var env jarEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		t.Fatalf("Serialize output isn't the documented envelope object: %v", err)
	}
	if env.Version == "" {
		t.Errorf("envelope missing version")
	}
	if env.StoreType == nil || *env.StoreType != "MemoryCookieStore" {
		t.Errorf("storeType = %v, want \"MemoryCookieStore\"", env.StoreType)
	}
	if !env.RejectPublicSuffixes {
		t.Errorf("rejectPublicSuffixes = false, want true for the default (AllowAllDomains=false) Config")
	}
	if len(env.Cookies) != 2 {
		t.Errorf("got %d cookies in envelope, want 2", len(env.Cookies))
	}

	restored := New(Config{})
	if err := restored.Deserialize(data); err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	got, err := restored.GetCookies(context.Background(), u)
	if err != nil {
		t.Fatalf("GetCookies: %v", err)
	}
	if len(got) != 1 || got[0].Key != "a" {
		// Path=/app cookie isn't visible at "/", only the domain cookie is.
		t.Fatalf("got %+v, want only the root-path domain cookie visible at /", got)
	}
}

func TestJarClone(t *testing.T) {
	jar := New(Config{})
	u := mustURL(t, "http://example.com/")
	jar.SetCookie(context.Background(), u, "a=1")

	clone, err := jar.Clone()
	if err != nil {
		t.Fatalf("Clone: %v", err)
	}
	if _, err := clone.SetCookie(context.Background(), u, "a=2"); err != nil {
		t.Fatalf("SetCookie on clone: %v", err)
	}

	original, err := jar.GetCookies(context.Background(), u)
	if err != nil || len(original) != 1 || original[0].Value != "1" {
		t.Fatalf("original jar mutated by clone: %+v, %v", original, err)
	}
	cloned, err := clone.GetCookies(context.Background(), u)
	if err != nil || len(cloned) != 1 || cloned[0].Value != "2" {
		t.Fatalf("clone not updated: %+v, %v", cloned, err)
	}
}

func TestJarIgnoresNonHTTPURL(t *testing.T) {
	jar := New(Config{})
	u := mustURL(t, "ftp://example.com/")
	c, err := jar.SetCookie(context.Background(), u, "a=1")
	if c != nil || err != nil {
		t.Fatalf("got %+v, %v, want silently ignored for a non-HTTP scheme", c, err)
	}
}

func TestJarHTTPCookieJarCompatibility(t *testing.T) {
	jar := New(Config{})
	u := mustURL(t, "http://example.com/")
	jar.SetCookies(u, []*http.Cookie{{Name: "a", Value: "1"}})
	out := jar.Cookies(u)
	if len(out) != 1 || out[0].Name != "a" || out[0].Value != "1" {
		t.Fatalf("got %+v, want [a=1]", out)
	}
}
