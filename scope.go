// Copyright 2012 Volker Dobler. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cookiejar

// The scoping algebra answers two questions a Jar needs answered over and
// over: "does this stored cookie apply to this request" (domainMatch,
// pathMatch) and "what domain/path should we store a new cookie under"
// (canonicalDomain, defaultPath). permuteDomain additionally gives the Jar
// the candidate domains it probes the Store with; permutePath lists a
// path's ancestors and has no caller inside the package.

import (
	"net"
	"strings"
)

// canonicalDomain implements spec section 4.B: trim ASCII whitespace, strip
// a single leading ".", lowercase ASCII, and delegate non-ASCII names to the
// IDN boundary (idn.go).
func canonicalDomain(d string) (string, error) {
	d = strings.TrimFunc(d, isASCIISpace)
	if strings.HasPrefix(d, ".") {
		d = d[1:]
	}
	if isASCII(d) {
		return strings.ToLower(d), nil
	}
	return toASCII(d)
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}

func isASCIISpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}

// isIP reports whether host is formally an IP address literal (v4 or v6).
func isIP(host string) bool {
	return net.ParseIP(strings.Trim(host, "[]")) != nil
}

// domainMatch implements RFC 6265 section 5.1.3 / spec section 4.B.
// canonicalize controls whether host and cookieDomain are canonicalized
// before comparison; callers that already hold canonical forms (the jar,
// after accepting a cookie) pass false to avoid redundant work.
func domainMatch(host, cookieDomain string, canonicalize bool) bool {
	if canonicalize {
		var err error
		if host, err = canonicalDomain(host); err != nil {
			return false
		}
		if cookieDomain, err = canonicalDomain(cookieDomain); err != nil {
			return false
		}
	}
	if host == cookieDomain {
		return true
	}
	if isIP(host) {
		return false
	}
	return strings.HasSuffix(host, "."+cookieDomain)
}

// defaultPath implements RFC 6265 section 5.1.4 / spec section 4.B.
func defaultPath(uriPath string) string {
	if len(uriPath) == 0 || uriPath[0] != '/' {
		return "/"
	}
	i := strings.LastIndex(uriPath, "/")
	if i == 0 {
		return "/"
	}
	return uriPath[:i]
}

// pathMatch implements RFC 6265 section 5.1.4 / spec section 4.B.
func pathMatch(reqPath, cookiePath string) bool {
	if reqPath == cookiePath {
		return true
	}
	if !strings.HasPrefix(reqPath, cookiePath) {
		return false
	}
	if cookiePath == "" {
		return false
	}
	if cookiePath[len(cookiePath)-1] == '/' {
		return true
	}
	return reqPath[len(cookiePath)] == '/'
}

// permuteDomain returns d and each proper parent domain up to (but not
// including) its public suffix, per spec section 4.B. It returns nil when d
// is itself a public suffix (no domain cookie may be scoped there).
func permuteDomain(d string, psl PublicSuffixList) []string {
	suffix := psl.PublicSuffix(d)
	if suffix == d {
		return nil
	}

	var domains []string
	cur := d
	for cur != suffix {
		domains = append(domains, cur)
		i := strings.Index(cur, ".")
		if i == -1 {
			break
		}
		cur = cur[i+1:]
		if len(cur) < len(suffix) {
			break
		}
	}
	return domains
}

// permutePath returns p and each ancestor directory obtained by trimming
// trailing path segments, always ending with "/", per spec section 4.B.
func permutePath(p string) []string {
	if p == "" {
		return []string{"/"}
	}
	paths := []string{p}
	for p != "" {
		i := strings.LastIndex(p, "/")
		if i <= 0 {
			break
		}
		p = p[:i]
		paths = append(paths, p)
	}
	if paths[len(paths)-1] != "/" {
		paths = append(paths, "/")
	}
	return paths
}
