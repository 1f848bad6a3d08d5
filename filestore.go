// Copyright 2012 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cookiejar

// FileStore is a second Store implementation, adapted from the teacher's
// FancyStorage (fancy.go): FancyStorage sharded an in-memory Storage by
// effective-TLD+1 so a domain's cookies could be evicted as a unit. Here
// that same shard key becomes a file name, giving a Jar cross-process
// durability without a database — the practical niche the retrieval pack's
// juju/persistent-cookiejar dependency occupies.
//
// FileStore shards by the public suffix list's registrable domain (psl's
// PublicSuffix result plus one label), same as the teacher's tldPlusOne==
// false mode, and persists each shard as a JSON array of cookieJSON
// records under Dir/<shard>.json.

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
)

type FileStore struct {
	mu  sync.Mutex
	Dir string
	psl PublicSuffixList

	shards map[string][]*Cookie // shard key -> cookies, loaded lazily
}

// NewFileStore returns a FileStore persisting under dir, using psl to
// compute the registrable-domain shard key for a given cookie domain. A
// nil psl falls back to DefaultPublicSuffixList.
func NewFileStore(dir string, psl PublicSuffixList) *FileStore {
	if psl == nil {
		psl = DefaultPublicSuffixList
	}
	return &FileStore{Dir: dir, psl: psl, shards: make(map[string][]*Cookie)}
}

// shardKey mirrors the teacher's FancyStorage.key: the registrable domain
// (public suffix plus one label), falling back to domain itself when the
// suffix list can't resolve one (e.g. domain is itself a suffix). IP
// literals get no special case and are keyed like any other name.
func (f *FileStore) shardKey(domain string) string {
	suffix := f.psl.PublicSuffix(domain)
	if suffix == "" || suffix == domain {
		return domain
	}
	rest := domain[:len(domain)-len(suffix)]
	if i := lastDot(rest[:max(0, len(rest)-1)]); i >= 0 {
		return rest[i+1:] + suffix
	}
	return domain
}

func lastDot(s string) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '.' {
			return i
		}
	}
	return -1
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func (f *FileStore) shardPath(key string) string {
	return filepath.Join(f.Dir, key+".json")
}

// load reads a shard from disk into memory if it is not already cached.
// Caller must hold f.mu.
func (f *FileStore) load(key string) ([]*Cookie, error) {
	if cookies, ok := f.shards[key]; ok {
		return cookies, nil
	}
	data, err := os.ReadFile(f.shardPath(key))
	if os.IsNotExist(err) {
		f.shards[key] = nil
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "cookiejar: reading shard %q", key)
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrapf(err, "cookiejar: decoding shard %q", key)
	}
	cookies := make([]*Cookie, 0, len(raw))
	for _, r := range raw {
		c, err := FromJSON(r)
		if err != nil {
			// A single malformed stored cookie must not corrupt the
			// whole jar (spec section 7); skip it.
			continue
		}
		cookies = append(cookies, c)
	}
	f.shards[key] = cookies
	return cookies, nil
}

// flush writes a shard back to disk. Caller must hold f.mu.
func (f *FileStore) flush(key string) error {
	if err := os.MkdirAll(f.Dir, 0o755); err != nil {
		return errors.Wrapf(err, "cookiejar: creating store dir %q", f.Dir)
	}
	cookies := f.shards[key]
	raw := make([]json.RawMessage, 0, len(cookies))
	for _, c := range cookies {
		data, err := c.ToJSON()
		if err != nil {
			return err
		}
		raw = append(raw, data)
	}
	data, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(f.shardPath(key), data, 0o644)
}

func (f *FileStore) FindCookie(domain, path, key string) (*Cookie, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cookies, err := f.load(f.shardKey(domain))
	if err != nil {
		return nil, err
	}
	for _, c := range cookies {
		if c.Domain == domain && c.Path == path && c.Key == key {
			return c, nil
		}
	}
	return nil, nil
}

func (f *FileStore) FindCookies(domain, path string) ([]*Cookie, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cookies, err := f.load(f.shardKey(domain))
	if err != nil {
		return nil, err
	}
	var out []*Cookie
	for _, c := range cookies {
		if !domainMatch(domain, c.Domain, false) {
			continue
		}
		if path != "" && !pathMatch(path, c.Path) {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (f *FileStore) PutCookie(c *Cookie) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := f.shardKey(c.Domain)
	cookies, err := f.load(key)
	if err != nil {
		return err
	}
	replaced := false
	for i, existing := range cookies {
		if existing.Domain == c.Domain && existing.Path == c.Path && existing.Key == c.Key {
			cookies[i] = c
			replaced = true
			break
		}
	}
	if !replaced {
		cookies = append(cookies, c)
	}
	f.shards[key] = cookies
	return f.flush(key)
}

func (f *FileStore) UpdateCookie(old, next *Cookie) error {
	return f.PutCookie(next)
}

func (f *FileStore) RemoveCookie(domain, path, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	shard := f.shardKey(domain)
	cookies, err := f.load(shard)
	if err != nil {
		return err
	}
	out := cookies[:0]
	for _, c := range cookies {
		if c.Domain == domain && c.Path == path && c.Key == key {
			continue
		}
		out = append(out, c)
	}
	f.shards[shard] = out
	return f.flush(shard)
}

func (f *FileStore) RemoveCookies(domain, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	shard := f.shardKey(domain)
	cookies, err := f.load(shard)
	if err != nil {
		return err
	}
	out := cookies[:0]
	for _, c := range cookies {
		if c.Domain != domain {
			out = append(out, c)
			continue
		}
		if path != "" && c.Path != path {
			out = append(out, c)
			continue
		}
	}
	f.shards[shard] = out
	return f.flush(shard)
}

func (f *FileStore) GetAllCookies() ([]*Cookie, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	entries, err := os.ReadDir(f.Dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "cookiejar: listing store dir %q", f.Dir)
	}
	var all []*Cookie
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		key := e.Name()[:len(e.Name())-len(".json")]
		cookies, err := f.load(key)
		if err != nil {
			return nil, err
		}
		all = append(all, cookies...)
	}
	sortByCreationIndex(all)
	return all, nil
}
