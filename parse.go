// Copyright 2012 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cookiejar

// ParseSetCookie implements spec section 4.E: it turns a single Set-Cookie
// header value into a *Cookie. loose relaxes the name/value grammar the way
// browsers do (an empty key with a nonempty value is otherwise rejected).

import (
	"strings"
	"time"

	"github.com/pkg/errors"
)

// ParseSetCookie parses a single Set-Cookie header value. On success it
// returns a Cookie with Creation/CreationIndex stamped from now/the
// process-wide counter, HostOnly == HostOnlyUnknown and PathIsDefault ==
// false — the Jar resolves both once it knows the request URL. On failure
// it returns an error satisfying errors.Is(err, ErrParse).
func ParseSetCookie(s string, now time.Time, loose bool) (*Cookie, error) {
	nameValue, rest, hasAttrs := cutFirst(s, ';')

	key, value, ok := splitNameValue(nameValue, loose)
	if !ok {
		return nil, errors.Wrapf(ErrParse, "cookiejar: malformed cookie pair %q", nameValue)
	}

	c := &Cookie{
		Key:           key,
		Value:         value,
		Creation:      now,
		CreationIndex: nextCreationIndex(),
		LastAccessed:  now,
		HostOnly:      HostOnlyUnknown,
		PathIsDefault: false,
	}

	if !hasAttrs {
		return c, nil
	}

	for _, pair := range strings.Split(rest, ";") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		attr, val, _ := cutFirst(pair, '=')
		attr = strings.TrimSpace(attr)
		val = strings.TrimSpace(val)
		lower := strings.ToLower(attr)

		switch lower {
		case "expires":
			if t, ok := ParseCookieDate(val); ok {
				c.Expires = t
			}
		case "max-age":
			if ma, ok := parseMaxAge(val); ok {
				c.MaxAge = ma
			}
		case "domain":
			d := val
			if strings.HasPrefix(d, ".") {
				d = d[1:]
			}
			d = strings.ToLower(d)
			if d != "" {
				c.Domain = d
			}
		case "path":
			if strings.HasPrefix(val, "/") {
				c.Path = val
			}
		case "secure":
			c.Secure = true
		case "httponly":
			c.HTTPOnly = true
		default:
			c.Extensions = append(c.Extensions, pair)
		}
	}

	return c, nil
}

// ParseCookieHeader implements the request-side ";"-delimited name=value
// list of spec section 6 / RFC 6265 section 4.2.1, returning pairs in
// order.
func ParseCookieHeader(s string) []struct{ Key, Value string } {
	var out []struct{ Key, Value string }
	for _, part := range strings.Split(s, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, value, ok := splitNameValue(part, true)
		if !ok {
			continue
		}
		out = append(out, struct{ Key, Value string }{key, value})
	}
	return out
}

// splitNameValue implements spec section 4.E step 2. In strict mode a
// missing "=" is rejected outright, and a present "=" with an empty name is
// rejected too. In loose mode a missing "=" is accepted as an empty-key
// cookie carrying the whole token as value.
func splitNameValue(s string, loose bool) (key, value string, ok bool) {
	s = strings.TrimSpace(s)
	name, val, hasEquals := cutFirst(s, '=')
	if !hasEquals {
		if loose && s != "" {
			return "", s, true
		}
		return "", "", false
	}
	name = strings.TrimSpace(name)
	val = strings.TrimSpace(val)
	if name == "" && !loose {
		return "", "", false
	}
	return name, val, true
}

// cutFirst splits s on the first occurrence of sep, reporting whether sep
// was found (mirrors strings.Cut, with a single-byte separator).
func cutFirst(s string, sep byte) (before, after string, found bool) {
	i := strings.IndexByte(s, sep)
	if i < 0 {
		return s, "", false
	}
	return s[:i], s[i+1:], true
}
