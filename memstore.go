// Copyright 2012 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cookiejar

// MemoryStore is the reference Store implementation: a three-level mapping
// domain -> path -> key -> *Cookie, matching spec section 4.F's "Store
// index" exactly, so FindCookie is an O(1) lookup rather than the teacher's
// linear scan over a flat slice.

import (
	"bytes"
	"container/heap"
	"encoding/gob"
	"sync"
	"time"
)

type MemoryStore struct {
	mu sync.RWMutex
	// domain -> path -> key -> cookie
	byDomain map[string]map[string]map[string]*Cookie
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byDomain: make(map[string]map[string]map[string]*Cookie)}
}

func (m *MemoryStore) FindCookie(domain, path, key string) (*Cookie, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if byPath, ok := m.byDomain[domain]; ok {
		if byKey, ok := byPath[path]; ok {
			return byKey[key], nil
		}
	}
	return nil, nil
}

func (m *MemoryStore) FindCookies(domain, path string) ([]*Cookie, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	byPath, ok := m.byDomain[domain]
	if !ok {
		return nil, nil
	}

	var out []*Cookie
	if path == "" {
		for _, byKey := range byPath {
			for _, c := range byKey {
				out = append(out, c)
			}
		}
		return out, nil
	}
	for storedPath, byKey := range byPath {
		if !pathMatch(path, storedPath) {
			continue
		}
		for _, c := range byKey {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *MemoryStore) PutCookie(c *Cookie) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.put(c)
	return nil
}

func (m *MemoryStore) put(c *Cookie) {
	byPath, ok := m.byDomain[c.Domain]
	if !ok {
		byPath = make(map[string]map[string]*Cookie)
		m.byDomain[c.Domain] = byPath
	}
	byKey, ok := byPath[c.Path]
	if !ok {
		byKey = make(map[string]*Cookie)
		byPath[c.Path] = byKey
	}
	byKey[c.Key] = c
}

func (m *MemoryStore) UpdateCookie(old, next *Cookie) error {
	return m.PutCookie(next)
}

func (m *MemoryStore) RemoveCookie(domain, path, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if byPath, ok := m.byDomain[domain]; ok {
		if byKey, ok := byPath[path]; ok {
			delete(byKey, key)
			if len(byKey) == 0 {
				delete(byPath, path)
			}
		}
		if len(byPath) == 0 {
			delete(m.byDomain, domain)
		}
	}
	return nil
}

func (m *MemoryStore) RemoveCookies(domain, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	byPath, ok := m.byDomain[domain]
	if !ok {
		return nil
	}
	if path == "" {
		delete(m.byDomain, domain)
		return nil
	}
	delete(byPath, path)
	if len(byPath) == 0 {
		delete(m.byDomain, domain)
	}
	return nil
}

func (m *MemoryStore) GetAllCookies() ([]*Cookie, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*Cookie
	for _, byPath := range m.byDomain {
		for _, byKey := range byPath {
			for _, c := range byKey {
				out = append(out, c)
			}
		}
	}
	sortByCreationIndex(out)
	return out, nil
}

func sortByCreationIndex(cookies []*Cookie) {
	// insertion sort is fine here: callers call this on modest jars, and
	// it keeps this file free of a second sort.Interface implementation
	// alongside the one in jar.go.
	for i := 1; i < len(cookies); i++ {
		for j := i; j > 0 && cookies[j].CreationIndex < cookies[j-1].CreationIndex; j-- {
			cookies[j], cookies[j-1] = cookies[j-1], cookies[j]
		}
	}
}

// Cleanup enforces the resource limits spec section 9 (SPEC_FULL §4.F)
// layers on top of the base contract: it removes expired cookies
// unconditionally, then trims the least-recently-accessed cookies per
// domain and in total if total/perDomain are positive. It mirrors the
// teacher's Jar.removeExpiredCookies/removeExcessCookies pairing, moved
// down into the store the way the FancyStorage/FlatStorage split already
// anticipated.
func (m *MemoryStore) Cleanup(total, perDomain int, now time.Time) (removed int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for domain, byPath := range m.byDomain {
		for path, byKey := range byPath {
			for key, c := range byKey {
				if c.IsExpired(now) {
					delete(byKey, key)
					removed++
				}
			}
			if len(byKey) == 0 {
				delete(byPath, path)
			}
		}
		if len(byPath) == 0 {
			delete(m.byDomain, domain)
		}
	}

	if perDomain > 0 {
		for _, byPath := range m.byDomain {
			removed += evictLeastUsed(byPath, perDomain)
		}
	}

	if total > 0 {
		count := 0
		for _, byPath := range m.byDomain {
			for _, byKey := range byPath {
				count += len(byKey)
			}
		}
		if count > total {
			removed += evictLeastUsedTotal(m.byDomain, count-total)
		}
	}

	return removed
}

// evictLeastUsed removes the least-recently-accessed cookies from a single
// domain's path->key map until it holds at most max cookies.
func evictLeastUsed(byPath map[string]map[string]*Cookie, max int) int {
	type ref struct {
		path, key string
		c         *Cookie
	}
	var all []ref
	for path, byKey := range byPath {
		for key, c := range byKey {
			all = append(all, ref{path, key, c})
		}
	}
	if len(all) <= max {
		return 0
	}
	lu := newLeastUsed(len(all) - max)
	for _, r := range all {
		lu.insert(r.c, r)
	}
	removed := 0
	for _, item := range lu.elements() {
		r := item.data.(ref)
		delete(byPath[r.path], r.key)
		if len(byPath[r.path]) == 0 {
			delete(byPath, r.path)
		}
		removed++
	}
	return removed
}

// evictLeastUsedTotal removes n least-recently-accessed cookies across the
// whole store.
func evictLeastUsedTotal(byDomain map[string]map[string]map[string]*Cookie, n int) int {
	type ref struct {
		domain, path, key string
		c                 *Cookie
	}
	var all []ref
	for domain, byPath := range byDomain {
		for path, byKey := range byPath {
			for key, c := range byKey {
				all = append(all, ref{domain, path, key, c})
			}
		}
	}
	if n <= 0 || n > len(all) {
		n = len(all)
	}
	lu := newLeastUsed(n)
	for _, r := range all {
		lu.insert(r.c, r)
	}
	removed := 0
	for _, item := range lu.elements() {
		r := item.data.(ref)
		byPath := byDomain[r.domain]
		delete(byPath[r.path], r.key)
		if len(byPath[r.path]) == 0 {
			delete(byPath, r.path)
		}
		if len(byPath) == 0 {
			delete(byDomain, r.domain)
		}
		removed++
	}
	return removed
}

// -------------------------------------------------------------------------
// leastUsed: a small fixed-capacity max-heap over LastAccessed, adapted
// from the teacher's cookie.go heap so MemoryStore.Cleanup can find the N
// least-recently-used cookies without sorting the whole store.

type heapItem struct {
	cookie *Cookie
	data   interface{}
}

type cookieHeap []heapItem

func (h cookieHeap) Len() int            { return len(h) }
func (h cookieHeap) Less(i, j int) bool  { return h[i].cookie.LastAccessed.After(h[j].cookie.LastAccessed) }
func (h cookieHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *cookieHeap) Push(x interface{}) { *h = append(*h, x.(heapItem)) }
func (h *cookieHeap) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// leastUsed keeps the n cookies with the oldest LastAccessed among every
// cookie inserted, each tagged with caller-supplied data for bookkeeping.
type leastUsed struct {
	n    int
	elem cookieHeap
}

func newLeastUsed(n int) *leastUsed {
	if n < 0 {
		n = 0
	}
	return &leastUsed{n: n, elem: make(cookieHeap, 0, n)}
}

func (lu *leastUsed) insert(cookie *Cookie, data interface{}) {
	if lu.n == 0 {
		return
	}
	heap.Push(&lu.elem, heapItem{cookie, data})
	if len(lu.elem) > lu.n {
		heap.Pop(&lu.elem)
	}
}

func (lu *leastUsed) elements() []heapItem { return lu.elem }

// -------------------------------------------------------------------------
// Gob snapshotting: a store-local bulk save/restore format distinct from
// the jar-level JSON contract (spec section 6). Kept because the teacher's
// stores all implement gob.GobEncoder/GobDecoder for exactly this purpose;
// the Jar's Serialize/Deserialize (jar.go) is the spec'd JSON contract and
// does not use this.

func (m *MemoryStore) GobEncode() ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	flat := make([]*Cookie, 0)
	for _, byPath := range m.byDomain {
		for _, byKey := range byPath {
			for _, c := range byKey {
				flat = append(flat, c)
			}
		}
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(flat); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (m *MemoryStore) GobDecode(data []byte) error {
	var flat []*Cookie
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&flat); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.byDomain = make(map[string]map[string]map[string]*Cookie)
	now := time.Now()
	for _, c := range flat {
		if c.IsExpired(now) {
			continue
		}
		m.put(c)
	}
	return nil
}
