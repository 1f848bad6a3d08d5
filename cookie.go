// Copyright 2012 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cookiejar

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// HostOnlyState is the tri-state "is this cookie host-only" flag. A freshly
// parsed record does not yet know: only the Jar, once it has a request host
// to compare against, resolves Unknown to True or False (spec section 9,
// "Tri-state hostOnly").
type HostOnlyState uint8

const (
	HostOnlyUnknown HostOnlyState = iota
	HostOnlyTrue
	HostOnlyFalse
)

// infinity is the clamp RFC 6265 implementations commonly use for a cookie
// that never expires: 2038-01-19T03:14:07Z, the signed 32-bit Unix epoch
// rollover. ExpiryDate returns this value for an unbounded cookie.
var infinity = time.Date(2038, time.January, 19, 3, 14, 7, 0, time.UTC)

var (
	// longAgo is a sentinel "clearly expired" instant used internally by
	// ExpiryTime for MaxAgeNegativeInfinity.
	longAgo = time.Date(1, time.March, 2, 4, 5, 6, 0, time.UTC)

	// farFuture is the internal "never expires" sentinel, distinct from
	// the public 2038 clamp (infinity) returned by ExpiryDate so that
	// ExpiryTime's "+INFINITY" contract is testable by equality and not
	// confused with a real calendar date.
	farFuture = time.Date(9999, time.December, 31, 23, 59, 59, 0, time.UTC)
)

// Cookie is the internal representation of a cookie in a Jar. Fields track
// spec section 3 exactly; see the invariants documented there.
type Cookie struct {
	Key   string
	Value string

	Expires time.Time // zero means "unset"; see ExpiryTime/ExpiryDate
	MaxAge  MaxAge

	Domain string // the Domain attribute as received, or "" if absent
	Path   string // the Path attribute as received, or "" if absent

	Secure   bool
	HTTPOnly bool

	Extensions []string // unrecognized attribute strings, verbatim, in order

	Creation      time.Time
	CreationIndex int64
	LastAccessed  time.Time

	HostOnly      HostOnlyState
	PathIsDefault bool
}

// empty reports whether c has never been given a Key, i.e. it is a freshly
// allocated slot rather than a stored cookie.
func (c *Cookie) empty() bool { return c.Key == "" }

// CookieString renders c the way it appears in a Cookie request header:
// "key=value" only (spec section 4.D).
func (c *Cookie) CookieString() string {
	return c.Key + "=" + c.Value
}

// String renders c in Set-Cookie response-header syntax (spec section 4.D).
// Expires is omitted when the cookie has no concrete expiry. Max-Age is
// omitted when absent; the MaxAge infinities never appear in header form,
// only in JSON (ToJSON).
func (c *Cookie) String() string {
	var b bytes.Buffer
	b.WriteString(c.Key)
	b.WriteByte('=')
	b.WriteString(c.Value)

	if !c.Expires.IsZero() {
		b.WriteString("; Expires=")
		b.WriteString(c.Expires.UTC().Format(time.RFC1123))
	}
	if c.MaxAge.Kind == MaxAgeFinite {
		b.WriteString("; Max-Age=")
		b.WriteString(strconv.FormatInt(c.MaxAge.Seconds, 10))
	}
	if c.Domain != "" {
		b.WriteString("; Domain=")
		b.WriteString(c.Domain)
	}
	if c.Path != "" {
		b.WriteString("; Path=")
		b.WriteString(c.Path)
	}
	if c.Secure {
		b.WriteString("; Secure")
	}
	if c.HTTPOnly {
		b.WriteString("; HttpOnly")
	}
	for _, ext := range c.Extensions {
		b.WriteString("; ")
		b.WriteString(ext)
	}
	return b.String()
}

// ExpiryTime computes the cookie's expiry instant per spec section 4.D:
// Max-Age, when finite, takes precedence over Expires and is computed
// relative to Creation; a finite Max-Age too large for a time.Duration
// counts as never expiring (or, when negative, as already expired). It
// takes no current time: the result depends only on the cookie's fields.
func (c *Cookie) ExpiryTime() time.Time {
	switch c.MaxAge.Kind {
	case MaxAgeFinite:
		const maxDurationSeconds = int64((1<<63 - 1) / time.Second)
		if c.MaxAge.Seconds > maxDurationSeconds {
			return farFuture
		}
		if c.MaxAge.Seconds < -maxDurationSeconds {
			return longAgo
		}
		return c.Creation.Add(time.Duration(c.MaxAge.Seconds) * time.Second)
	case MaxAgeNegativeInfinity:
		return longAgo
	case MaxAgePositiveInfinity:
		return farFuture
	}
	if !c.Expires.IsZero() {
		return c.Expires
	}
	return farFuture
}

// ExpiryDate wraps ExpiryTime, clamping the unbounded case to the 2038
// sentinel documented on infinity instead of the internal farFuture
// bookkeeping value.
func (c *Cookie) ExpiryDate() time.Time {
	t := c.ExpiryTime()
	if t.Equal(farFuture) {
		return infinity
	}
	return t
}

// TTL returns how long c has left to live as of now: a very large duration
// for an unbounded cookie, zero for an expired one, else the remaining
// duration.
func (c *Cookie) TTL(now time.Time) time.Duration {
	exp := c.ExpiryTime()
	if exp.Equal(farFuture) {
		return time.Duration(1<<63 - 1)
	}
	if !exp.After(now) {
		return 0
	}
	return exp.Sub(now)
}

// IsExpired reports whether c has expired as of now.
func (c *Cookie) IsExpired(now time.Time) bool {
	exp := c.ExpiryTime()
	return !exp.Equal(farFuture) && !exp.After(now)
}

// Validate reports whether c's attributes are self-consistent per spec
// section 4.D: a present Path must begin with "/" and Expires must be
// either zero (unset) or a concrete instant, which a Go time.Time always
// is — the check exists for parity with a JSON round-trip where a
// malformed stored value could otherwise slip through FromJSON.
func (c *Cookie) Validate() bool {
	if c.Path != "" && !strings.HasPrefix(c.Path, "/") {
		return false
	}
	return true
}

// serializableProperties is the whitelist of fields exported by ToJSON and
// consumed by FromJSON. It is a module-level seam, not reflection-driven,
// so a caller embedding this package can see exactly what round-trips
// (spec section 9, "serializableProperties whitelist").
var serializableProperties = []string{
	"key", "value", "domain", "path", "secure", "httpOnly",
	"extensions", "hostOnly", "pathIsDefault",
	"creation", "creationIndex", "lastAccessed",
	"expires", "maxAge",
}

type cookieJSON struct {
	Key           string   `json:"key"`
	Value         string   `json:"value"`
	Domain        string   `json:"domain,omitempty"`
	Path          string   `json:"path,omitempty"`
	Secure        bool     `json:"secure,omitempty"`
	HTTPOnly      bool     `json:"httpOnly,omitempty"`
	Extensions    []string `json:"extensions,omitempty"`
	HostOnly      *bool    `json:"hostOnly,omitempty"`
	PathIsDefault bool     `json:"pathIsDefault,omitempty"`
	Creation      string   `json:"creation"`
	CreationIndex int64    `json:"creationIndex"`
	LastAccessed  string   `json:"lastAccessed"`
	Expires       string   `json:"expires,omitempty"`
	MaxAge        string   `json:"maxAge,omitempty"`
}

// ToJSON exports c restricted to serializableProperties: instants become
// ISO-8601 strings, and the MaxAge infinities become the literal tokens
// "Infinity"/"-Infinity" (only ever appearing in this form, never in
// String()'s header syntax).
func (c *Cookie) ToJSON() ([]byte, error) {
	cj := cookieJSON{
		Key:           c.Key,
		Value:         c.Value,
		Domain:        c.Domain,
		Path:          c.Path,
		Secure:        c.Secure,
		HTTPOnly:      c.HTTPOnly,
		Extensions:    c.Extensions,
		PathIsDefault: c.PathIsDefault,
		Creation:      c.Creation.UTC().Format(time.RFC3339Nano),
		CreationIndex: c.CreationIndex,
		LastAccessed:  c.LastAccessed.UTC().Format(time.RFC3339Nano),
	}
	switch c.HostOnly {
	case HostOnlyTrue:
		b := true
		cj.HostOnly = &b
	case HostOnlyFalse:
		b := false
		cj.HostOnly = &b
	}
	if !c.Expires.IsZero() {
		cj.Expires = c.Expires.UTC().Format(time.RFC3339Nano)
	}
	if c.MaxAge.Kind != MaxAgeAbsent {
		cj.MaxAge = c.MaxAge.String()
	}
	return json.Marshal(cj)
}

// FromJSON parses the output of ToJSON back into a Cookie. Unlike the
// attribute parser (component E), instants here are parsed with a general
// RFC 3339 parser, not the lenient RFC 6265 cookie-date grammar, because
// this format is always our own output (spec section 4.D).
func FromJSON(data []byte) (*Cookie, error) {
	var cj cookieJSON
	if err := json.Unmarshal(data, &cj); err != nil {
		return nil, fmt.Errorf("cookiejar: invalid cookie JSON: %w", err)
	}
	c := &Cookie{
		Key:           cj.Key,
		Value:         cj.Value,
		Domain:        cj.Domain,
		Path:          cj.Path,
		Secure:        cj.Secure,
		HTTPOnly:      cj.HTTPOnly,
		Extensions:    cj.Extensions,
		PathIsDefault: cj.PathIsDefault,
		CreationIndex: cj.CreationIndex,
	}
	if cj.HostOnly != nil {
		if *cj.HostOnly {
			c.HostOnly = HostOnlyTrue
		} else {
			c.HostOnly = HostOnlyFalse
		}
	}
	var err error
	if c.Creation, err = time.Parse(time.RFC3339Nano, cj.Creation); err != nil {
		return nil, fmt.Errorf("cookiejar: invalid creation instant %q: %w", cj.Creation, err)
	}
	if c.LastAccessed, err = time.Parse(time.RFC3339Nano, cj.LastAccessed); err != nil {
		return nil, fmt.Errorf("cookiejar: invalid lastAccessed instant %q: %w", cj.LastAccessed, err)
	}
	if cj.Expires != "" {
		if c.Expires, err = time.Parse(time.RFC3339Nano, cj.Expires); err != nil {
			return nil, fmt.Errorf("cookiejar: invalid expires instant %q: %w", cj.Expires, err)
		}
	}
	if c.MaxAge, err = maxAgeFromJSON(cj.MaxAge); err != nil {
		return nil, err
	}
	return c, nil
}

// Clone returns a deep, independent copy of c via the JSON round-trip
// spec section 4.D prescribes (Clone = fromJSON(toJSON(c))).
func (c *Cookie) Clone() (*Cookie, error) {
	data, err := c.ToJSON()
	if err != nil {
		return nil, err
	}
	return FromJSON(data)
}

// domainMatch and pathMatch are thin, cookie-scoped wrappers around the
// scoping algebra in scope.go, kept here so callers comparing a single
// cookie against a request don't need to reach past the record.
func (c *Cookie) domainMatch(host string) bool {
	if c.HostOnly == HostOnlyTrue {
		return c.Domain == host
	}
	return domainMatch(host, c.Domain, false)
}

func (c *Cookie) pathMatch(requestPath string) bool {
	return pathMatch(requestPath, c.Path)
}
