// Copyright 2012 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package cookiejar provides an RFC 6265 conforming cookie jar: parsing,
// domain/path scoping, a pluggable Store, and the setCookie/getCookies state
// machine that decides what gets stored and what gets sent.
//
// A Jar neither stores cookies from SetCookies nor returns cookies from
// Cookies for a non-HTTP URL.
package cookiejar

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// Default limits, used whenever the corresponding Config field is zero.
// These are the minimums RFC 6265 section 6.1 requires a conforming
// implementation to support.
const (
	DefaultMaxCookiesPerDomain = 50
	DefaultMaxCookiesTotal     = 3000
	DefaultMaxBytesPerCookie   = 4096
)

// Config collects a Jar's tunables, generalizing the teacher's bare Jar
// field bag (MaxCookiesPerDomain, MaxCookiesTotal, MaxBytesPerCookie,
// LaxMode, AllowAllDomains) into an explicit options struct passed to New.
type Config struct {
	// MaxCookiesPerDomain caps stored cookies per logical domain. Zero
	// means DefaultMaxCookiesPerDomain.
	MaxCookiesPerDomain int
	// MaxCookiesTotal caps stored cookies across the whole jar. Zero
	// means DefaultMaxCookiesTotal.
	MaxCookiesTotal int
	// MaxBytesPerCookie caps len(Key)+len(Value) of an accepted cookie.
	// Zero means DefaultMaxBytesPerCookie.
	MaxBytesPerCookie int

	// LaxMode lets an IP host set a host cookie naming itself as Domain;
	// without it such a cookie is rejected with ErrDomainMismatch. It
	// relaxes nothing else: a public-suffix Domain becomes a host cookie
	// only when it equals the request host, with or without LaxMode.
	LaxMode bool

	// AllowAllDomains disables public-suffix rejection entirely (spec
	// section 9's RejectPublicSuffixes realized as its inverse, so the
	// zero Config stays on the safe, RFC-conforming side).
	AllowAllDomains bool

	// PublicSuffixList defaults to DefaultPublicSuffixList when nil.
	PublicSuffixList PublicSuffixList
	// Store defaults to a fresh NewMemoryStore() when nil.
	Store Store
	// Logger defaults to a no-op logger when nil.
	Logger Logger
}

// Jar is an RFC 6265 conforming, pluggable-storage cookie jar. The zero
// value is not usable; construct one with New.
type Jar struct {
	cfg    Config
	store  Store
	psl    PublicSuffixList
	logger Logger

	mu sync.Mutex // serializes find-then-put sequences across Store calls
}

// New returns a Jar configured per cfg, filling unset fields with their
// documented defaults.
func New(cfg Config) *Jar {
	if cfg.PublicSuffixList == nil {
		cfg.PublicSuffixList = DefaultPublicSuffixList
	}
	if cfg.Store == nil {
		cfg.Store = NewMemoryStore()
	}
	if cfg.Logger == nil {
		cfg.Logger = discardLogger
	}
	return &Jar{cfg: cfg, store: cfg.Store, psl: cfg.PublicSuffixList, logger: cfg.Logger}
}

func (jar *Jar) maxBytesPerCookie() int {
	if jar.cfg.MaxBytesPerCookie > 0 {
		return jar.cfg.MaxBytesPerCookie
	}
	return DefaultMaxBytesPerCookie
}

func (jar *Jar) maxCookiesPerDomain() int {
	if jar.cfg.MaxCookiesPerDomain > 0 {
		return jar.cfg.MaxCookiesPerDomain
	}
	return DefaultMaxCookiesPerDomain
}

func (jar *Jar) maxCookiesTotal() int {
	if jar.cfg.MaxCookiesTotal > 0 {
		return jar.cfg.MaxCookiesTotal
	}
	return DefaultMaxCookiesTotal
}

// -------------------------------------------------------------------------
// URL helpers (split out of the teacher's url.go into the request-scoped
// concerns that belong with the Jar, as opposed to the pure scoping algebra
// in scope.go).

func isHTTP(u *url.URL) bool {
	return u != nil && (u.Scheme == "http" || u.Scheme == "https")
}

func isSecure(u *url.URL) bool { return u.Scheme == "https" }

func requestHost(u *url.URL) (string, error) {
	host := u.Host
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.TrimSuffix(host, ".")
	return canonicalDomain(host)
}

// -------------------------------------------------------------------------
// setCookie: the state machine behind SetCookie/SetCookies.

// SetCookie implements the jar side of RFC 6265 section 5.3 for a single
// Set-Cookie header value: it parses raw, resolves Domain/Path, decides
// HostOnly, rejects out-of-scope or malformed attempts, and stores or
// deletes the resulting cookie. ctx is accepted for cancellation/tracing
// pass-through to a future asynchronous Store; the bundled stores never
// consult it.
//
// On success it returns the stored *Cookie, or nil when the cookie was a
// deletion request, was oversized, or u is not an HTTP URL. On failure it
// returns a non-nil error satisfying
// errors.Is against one of ErrParse, ErrPublicSuffix, ErrDomainMismatch,
// ErrHTTPOnlyMismatch or ErrStore.
func (jar *Jar) SetCookie(ctx context.Context, u *url.URL, raw string) (*Cookie, error) {
	if !isHTTP(u) {
		return nil, nil
	}
	now := time.Now()
	c, err := ParseSetCookie(raw, now, jar.cfg.LaxMode)
	if err != nil {
		jar.logger.Debugf("cookiejar: dropping malformed Set-Cookie %q: %v", raw, err)
		return nil, err
	}
	return jar.setCookie(ctx, u, c, now, true)
}

// SetCookieFromScript models a non-HTTP writer (e.g. document.cookie): it
// is subject to the same scoping rules as SetCookie but additionally may
// neither create nor modify an HttpOnly cookie (RFC 6265 section 5.3,
// "non-HTTP API").
func (jar *Jar) SetCookieFromScript(ctx context.Context, u *url.URL, raw string) (*Cookie, error) {
	if !isHTTP(u) {
		return nil, nil
	}
	now := time.Now()
	c, err := ParseSetCookie(raw, now, jar.cfg.LaxMode)
	if err != nil {
		return nil, err
	}
	return jar.setCookie(ctx, u, c, now, false)
}

func (jar *Jar) setCookie(_ context.Context, u *url.URL, c *Cookie, now time.Time, fromHTTP bool) (*Cookie, error) {
	if len(c.Key)+len(c.Value) > jar.maxBytesPerCookie() {
		jar.logger.Debugf("cookiejar: dropping oversized cookie %q for %s", c.Key, u.Host)
		return nil, nil
	}

	host, err := requestHost(u)
	if err != nil {
		return nil, errors.Wrapf(ErrParse, "cookiejar: malformed request host %q: %v", u.Host, err)
	}

	domain, hostOnly, err := jar.domainAndType(host, c.Domain)
	if err != nil {
		jar.logger.Warnf("cookiejar: rejecting cookie %q for %s: %v", c.Key, host, err)
		return nil, err
	}
	c.Domain = domain
	if hostOnly {
		c.HostOnly = HostOnlyTrue
	} else {
		c.HostOnly = HostOnlyFalse
	}

	if c.Path == "" || c.Path[0] != '/' {
		c.Path = defaultPath(u.Path)
		c.PathIsDefault = true
	} else {
		c.PathIsDefault = false
	}

	jar.mu.Lock()
	defer jar.mu.Unlock()

	existing, err := jar.store.FindCookie(domain, c.Path, c.Key)
	if err != nil {
		return nil, storeError("FindCookie", err)
	}
	if !fromHTTP && ((existing != nil && existing.HTTPOnly) || c.HTTPOnly) {
		return nil, ErrHTTPOnlyMismatch
	}
	if existing != nil {
		c.Creation = existing.Creation
		c.CreationIndex = existing.CreationIndex
	}

	if c.IsExpired(now) {
		if err := jar.store.RemoveCookie(domain, c.Path, c.Key); err != nil {
			return nil, storeError("RemoveCookie", err)
		}
		return nil, nil
	}

	if existing != nil {
		if err := jar.store.UpdateCookie(existing, c); err != nil {
			return nil, storeError("UpdateCookie", err)
		}
	} else if err := jar.store.PutCookie(c); err != nil {
		return nil, storeError("PutCookie", err)
	}

	if n, err := jar.cleanupLocked(now); err != nil {
		jar.logger.Warnf("cookiejar: cleanup failed: %v", err)
	} else if n > 0 {
		jar.logger.Debugf("cookiejar: cleanup removed %d cookies", n)
	}

	return c, nil
}

// domainAndType implements RFC 6265 section 5.3 steps 2-5: given the
// canonical request host and the raw Domain attribute (possibly empty),
// it returns the domain a cookie should be stored under and whether that
// makes it host-only, or an error if the attempt must be rejected.
func (jar *Jar) domainAndType(host, domainAttr string) (domain string, hostOnly bool, err error) {
	if domainAttr == "" {
		return host, true, nil
	}

	if isIP(host) {
		if jar.cfg.LaxMode && domainAttr == host {
			return host, true, nil
		}
		return "", false, errors.Wrapf(ErrDomainMismatch, "cookiejar: IP host %q cannot set a domain cookie", host)
	}

	domain = domainAttr
	if strings.HasPrefix(domain, ".") {
		domain = domain[1:]
	}
	domain = strings.ToLower(domain)
	if domain == "" || strings.HasPrefix(domain, ".") {
		return "", false, errors.Wrapf(ErrParse, "cookiejar: malformed domain attribute %q", domainAttr)
	}

	if !strings.Contains(domain, ".") {
		if domain == host {
			return host, true, nil
		}
		return "", false, errors.Wrapf(ErrDomainMismatch, "cookiejar: domain attribute %q is a bare label", domainAttr)
	}

	if !jar.cfg.AllowAllDomains && !allowsDomainCookie(domain, jar.psl) {
		if host == domain {
			return host, true, nil
		}
		return "", false, errors.Wrapf(ErrPublicSuffix, "cookiejar: domain %q is a public suffix", domain)
	}

	if host != domain && !strings.HasSuffix(host, "."+domain) {
		return "", false, errors.Wrapf(ErrDomainMismatch, "cookiejar: host %q does not domain-match %q", host, domain)
	}
	return domain, false, nil
}

// -------------------------------------------------------------------------
// getCookies: the state machine behind GetCookies/Cookies.

// GetCookies implements RFC 6265 section 5.4: it returns every stored
// cookie applicable to u, sorted longer-Path-first then by ascending
// Creation (ties broken by CreationIndex), with LastAccessed bumped for
// everything returned.
func (jar *Jar) GetCookies(ctx context.Context, u *url.URL) ([]*Cookie, error) {
	return jar.cookiesForSend(ctx, u, true)
}

// ScriptCookies is GetCookies restricted the way a non-HTTP reader (e.g.
// document.cookie) must be: HttpOnly cookies are omitted.
func (jar *Jar) ScriptCookies(ctx context.Context, u *url.URL) ([]*Cookie, error) {
	return jar.cookiesForSend(ctx, u, false)
}

func (jar *Jar) cookiesForSend(_ context.Context, u *url.URL, includeHTTPOnly bool) ([]*Cookie, error) {
	if !isHTTP(u) {
		return nil, nil
	}
	host, err := requestHost(u)
	if err != nil {
		return nil, errors.Wrapf(ErrParse, "cookiejar: malformed request host %q: %v", u.Host, err)
	}
	reqPath := u.Path
	if reqPath == "" {
		reqPath = "/"
	}
	secure := isSecure(u)
	now := time.Now()

	candidates := permuteDomain(host, jar.psl)
	if len(candidates) == 0 {
		candidates = []string{host}
	}

	jar.mu.Lock()
	defer jar.mu.Unlock()

	seen := make(map[string]bool)
	var selection []*Cookie
	for _, d := range candidates {
		found, err := jar.store.FindCookies(d, "")
		if err != nil {
			return nil, storeError("FindCookies", err)
		}
		for _, c := range found {
			key := c.Domain + "\x00" + c.Path + "\x00" + c.Key
			if seen[key] {
				continue
			}
			seen[key] = true
			if c.IsExpired(now) {
				if err := jar.store.RemoveCookie(c.Domain, c.Path, c.Key); err != nil {
					jar.logger.Warnf("cookiejar: failed to remove expired cookie %q: %v", c.Key, err)
				}
				continue
			}
			if !c.domainMatch(host) || !c.pathMatch(reqPath) {
				continue
			}
			if c.Secure && !secure {
				continue
			}
			if c.HTTPOnly && !includeHTTPOnly {
				continue
			}
			selection = append(selection, c)
		}
	}

	sort.Slice(selection, func(i, j int) bool {
		a, b := selection[i], selection[j]
		if len(a.Path) != len(b.Path) {
			return len(a.Path) > len(b.Path)
		}
		if !a.Creation.Equal(b.Creation) {
			return a.Creation.Before(b.Creation)
		}
		return a.CreationIndex < b.CreationIndex
	})

	for _, c := range selection {
		updated := *c
		updated.LastAccessed = now
		if err := jar.store.UpdateCookie(c, &updated); err != nil {
			jar.logger.Warnf("cookiejar: failed to bump lastAccessed for %q: %v", c.Key, err)
			continue
		}
		*c = updated
		now = now.Add(time.Nanosecond)
	}

	return selection, nil
}

// -------------------------------------------------------------------------
// net/http.CookieJar compatibility: thin adapters so a Jar can be used
// anywhere an *http.Client wants a http.CookieJar, same as the teacher's
// Jar did.

// SetCookies implements http.CookieJar.
func (jar *Jar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	if !isHTTP(u) {
		return
	}
	for _, hc := range cookies {
		jar.SetCookie(context.Background(), u, hc.String())
	}
}

// Cookies implements http.CookieJar.
func (jar *Jar) Cookies(u *url.URL) []*http.Cookie {
	selection, err := jar.GetCookies(context.Background(), u)
	if err != nil || len(selection) == 0 {
		return nil
	}
	out := make([]*http.Cookie, len(selection))
	for i, c := range selection {
		out[i] = &http.Cookie{Name: c.Key, Value: c.Value}
	}
	return out
}

// -------------------------------------------------------------------------
// Cleanup, Serialize/Deserialize, Clone.

// cleaner is implemented by stores that support opportunistic
// resource-bounding maintenance; MemoryStore is one.
type cleaner interface {
	Cleanup(total, perDomain int, now time.Time) int
}

// Cleanup enforces MaxCookiesTotal/MaxCookiesPerDomain and removes expired
// cookies, if the underlying Store supports it. It is safe to call at any
// time; SetCookie already calls it opportunistically.
func (jar *Jar) Cleanup(now time.Time) (removed int, err error) {
	jar.mu.Lock()
	defer jar.mu.Unlock()
	return jar.cleanupLocked(now)
}

func (jar *Jar) cleanupLocked(now time.Time) (int, error) {
	c, ok := jar.store.(cleaner)
	if !ok {
		return 0, nil
	}
	return c.Cleanup(jar.maxCookiesTotal(), jar.maxCookiesPerDomain(), now), nil
}

// serializedJarVersion identifies this package's jar persistence format,
// following the "<name>@<semver>" convention of the format's tough-cookie
// origin (spec section 6).
const serializedJarVersion = "cookiejar@1.0.0"

// jarEnvelope is the on-the-wire shape of Serialize/Deserialize: spec
// section 6's {version, storeType, rejectPublicSuffixes, cookies} object.
type jarEnvelope struct {
	Version              string            `json:"version"`
	StoreType            *string           `json:"storeType"`
	RejectPublicSuffixes bool              `json:"rejectPublicSuffixes"`
	Cookies              []json.RawMessage `json:"cookies"`
}

// storeType returns the identifier serialized in the envelope's storeType
// field for the stores bundled with this package, or nil for any other
// Store implementation (spec section 6: "<identifier or null>").
func storeType(store Store) *string {
	var name string
	switch store.(type) {
	case *MemoryStore:
		name = "MemoryCookieStore"
	case *FileStore:
		name = "FileCookieStore"
	default:
		return nil
	}
	return &name
}

// Serialize exports the jar as the {version, storeType, rejectPublicSuffixes,
// cookies} envelope spec section 6 documents, with each cookie element the
// JSON form produced by Cookie.ToJSON. This is deliberately distinct from a
// Store's own GobEncode/GobDecode, which is a store-local bulk format.
func (jar *Jar) Serialize() ([]byte, error) {
	all, err := jar.store.GetAllCookies()
	if err != nil {
		return nil, storeError("GetAllCookies", err)
	}
	cookies := make([]json.RawMessage, 0, len(all))
	for _, c := range all {
		data, err := c.ToJSON()
		if err != nil {
			return nil, err
		}
		cookies = append(cookies, data)
	}
	env := jarEnvelope{
		Version:              serializedJarVersion,
		StoreType:            storeType(jar.store),
		RejectPublicSuffixes: !jar.cfg.AllowAllDomains,
		Cookies:              cookies,
	}
	return json.MarshalIndent(env, "", "  ")
}

// Deserialize loads cookies previously produced by Serialize, skipping
// (and logging) any individually malformed entry rather than failing the
// whole load. version and storeType are informational and not validated
// against the receiving Jar; rejectPublicSuffixes is likewise not applied
// back onto Config — Deserialize fills an existing, already-configured Jar.
func (jar *Jar) Deserialize(data []byte) error {
	var env jarEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return errors.Wrap(ErrParse, err.Error())
	}
	jar.mu.Lock()
	defer jar.mu.Unlock()
	for _, r := range env.Cookies {
		c, err := FromJSON(r)
		if err != nil {
			jar.logger.Warnf("cookiejar: skipping malformed stored cookie: %v", err)
			continue
		}
		if err := jar.store.PutCookie(c); err != nil {
			return storeError("PutCookie", err)
		}
	}
	return nil
}

// Clone returns an independent Jar carrying the same configuration and an
// independent copy of every stored cookie, always backed by a fresh
// MemoryStore regardless of the original's Store implementation.
func (jar *Jar) Clone() (*Jar, error) {
	data, err := jar.Serialize()
	if err != nil {
		return nil, err
	}
	cfg := jar.cfg
	cfg.Store = NewMemoryStore()
	clone := New(cfg)
	if err := clone.Deserialize(data); err != nil {
		return nil, err
	}
	return clone, nil
}
