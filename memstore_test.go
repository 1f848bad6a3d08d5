// Copyright 2012 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cookiejar

import (
	"testing"
	"time"
)

func newTestCookie(domain, path, key string, lastAccessed time.Time) *Cookie {
	return &Cookie{
		Key: key, Value: "v", Domain: domain, Path: path,
		Creation: lastAccessed, CreationIndex: nextCreationIndex(),
		LastAccessed: lastAccessed, HostOnly: HostOnlyFalse,
	}
}

func TestMemoryStorePutFindRemove(t *testing.T) {
	m := NewMemoryStore()
	now := time.Now()
	c := newTestCookie("example.com", "/", "a", now)
	if err := m.PutCookie(c); err != nil {
		t.Fatalf("PutCookie: %v", err)
	}
	got, err := m.FindCookie("example.com", "/", "a")
	if err != nil || got == nil {
		t.Fatalf("FindCookie: %v, %v", got, err)
	}
	if got.Value != "v" {
		t.Errorf("Value = %q, want %q", got.Value, "v")
	}
	if err := m.RemoveCookie("example.com", "/", "a"); err != nil {
		t.Fatalf("RemoveCookie: %v", err)
	}
	got, err = m.FindCookie("example.com", "/", "a")
	if err != nil || got != nil {
		t.Errorf("expected cookie to be gone, got %v, %v", got, err)
	}
}

func TestMemoryStoreFindCookiesPathFilter(t *testing.T) {
	m := NewMemoryStore()
	now := time.Now()
	m.PutCookie(newTestCookie("example.com", "/", "root", now))
	m.PutCookie(newTestCookie("example.com", "/app", "app", now))
	m.PutCookie(newTestCookie("example.com", "/other", "other", now))

	got, err := m.FindCookies("example.com", "/app/sub")
	if err != nil {
		t.Fatalf("FindCookies: %v", err)
	}
	keys := map[string]bool{}
	for _, c := range got {
		keys[c.Key] = true
	}
	if !keys["root"] || !keys["app"] || keys["other"] {
		t.Errorf("got keys %v, want root+app but not other", keys)
	}
}

func TestMemoryStoreGetAllCookiesOrdered(t *testing.T) {
	m := NewMemoryStore()
	now := time.Now()
	first := newTestCookie("a.com", "/", "first", now)
	second := newTestCookie("b.com", "/", "second", now)
	m.PutCookie(second)
	m.PutCookie(first)

	all, err := m.GetAllCookies()
	if err != nil {
		t.Fatalf("GetAllCookies: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("got %d cookies, want 2", len(all))
	}
	if all[0].CreationIndex > all[1].CreationIndex {
		t.Errorf("expected ascending CreationIndex order, got %d then %d", all[0].CreationIndex, all[1].CreationIndex)
	}
}

func TestMemoryStoreCleanupRemovesExpired(t *testing.T) {
	m := NewMemoryStore()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	expired := newTestCookie("example.com", "/", "old", now.Add(-time.Hour))
	expired.MaxAge = MaxAge{Kind: MaxAgeFinite, Seconds: 1}
	fresh := newTestCookie("example.com", "/", "new", now)
	m.PutCookie(expired)
	m.PutCookie(fresh)

	removed := m.Cleanup(0, 0, now)
	if removed != 1 {
		t.Fatalf("Cleanup removed %d, want 1", removed)
	}
	all, _ := m.GetAllCookies()
	if len(all) != 1 || all[0].Key != "new" {
		t.Errorf("got %v, want only \"new\" left", all)
	}
}

func TestMemoryStoreCleanupEvictsLeastRecentlyUsedPerDomain(t *testing.T) {
	m := NewMemoryStore()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, key := range []string{"a", "b", "c"} {
		c := newTestCookie("example.com", "/", key, now.Add(time.Duration(i)*time.Minute))
		m.PutCookie(c)
	}
	removed := m.Cleanup(0, 2, now.Add(time.Hour))
	if removed != 1 {
		t.Fatalf("Cleanup removed %d, want 1", removed)
	}
	all, _ := m.GetAllCookies()
	if len(all) != 2 {
		t.Fatalf("got %d cookies left, want 2", len(all))
	}
	for _, c := range all {
		if c.Key == "a" {
			t.Errorf("expected least-recently-used cookie %q to be evicted", c.Key)
		}
	}
}

func TestMemoryStoreGobRoundTrip(t *testing.T) {
	m := NewMemoryStore()
	now := time.Now()
	m.PutCookie(newTestCookie("example.com", "/", "a", now))

	data, err := m.GobEncode()
	if err != nil {
		t.Fatalf("GobEncode: %v", err)
	}
	restored := NewMemoryStore()
	if err := restored.GobDecode(data); err != nil {
		t.Fatalf("GobDecode: %v", err)
	}
	got, err := restored.FindCookie("example.com", "/", "a")
	if err != nil || got == nil {
		t.Fatalf("expected restored cookie, got %v, %v", got, err)
	}
}
