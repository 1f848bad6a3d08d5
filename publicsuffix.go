// Copyright 2012 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cookiejar

// The public-suffix oracle answers one question (spec section 4.C):
// "what is the public suffix of host?" A cookie may be set only on a domain
// strictly below that suffix. The Jar only ever consults it to reject
// ambiguously-scoped cookies and to key permuteDomain; it never needs more
// than PublicSuffixList.

import (
	"strings"
	"sync"

	"golang.org/x/net/publicsuffix"
)

// PublicSuffixList is the boundary contract from spec section 4.C/6: given
// a canonical host, PublicSuffix returns its public suffix, which is the
// host itself when host is a public suffix.
type PublicSuffixList interface {
	// PublicSuffix returns the public suffix of domain, e.g. "com" for
	// "example.com", or "co.uk" for "a.b.example.co.uk" -> "co.uk".
	PublicSuffix(domain string) string
}

// netPublicSuffixList adapts golang.org/x/net/publicsuffix — the dataset
// origin spec section 6 names (publicsuffix.org) — to PublicSuffixList.
// This is the default oracle a Jar uses unless overridden.
type netPublicSuffixList struct{}

func (netPublicSuffixList) PublicSuffix(domain string) string {
	return publicsuffix.PublicSuffix(domain)
}

// DefaultPublicSuffixList is the golang.org/x/net/publicsuffix-backed
// oracle used by New when Config.PublicSuffixList is nil.
var DefaultPublicSuffixList PublicSuffixList = netPublicSuffixList{}

// allowsDomainCookie reports whether domain (already canonical) is
// specific enough for a domain cookie — i.e. it is not itself (or above)
// the public suffix psl reports for it.
func allowsDomainCookie(domain string, psl PublicSuffixList) bool {
	suffix := psl.PublicSuffix(domain)
	return suffix != "" && suffix != domain
}

// -------------------------------------------------------------------------
// StaticPublicSuffixList: an offline rule-table oracle, adapted from the
// teacher's hand-rolled trie (publicsuffixes.go/bst.go) for callers that
// need a frozen, dependency-free suffix list — tests that must not depend
// on the x/net/publicsuffix dataset's bundled snapshot, or embedding a
// project-specific suffix policy.

// domainRule describes one publicsuffix.org rule, stripped of its TLD,
// leading "!" (exception) or "*" (wildcard) marker.
type domainRule struct {
	rule string
	kind ruleKind
}

type ruleKind uint8

const (
	ruleNormal ruleKind = iota
	ruleException
	ruleWildcard
)

// match decides whether r matches domain, where domain has already had its
// TLD stripped. See http://publicsuffix.org/list/ for the matching rule.
func (r *domainRule) match(domain string) bool {
	if !strings.HasSuffix(domain, r.rule) {
		return false
	}
	if len(domain) == len(r.rule) {
		return true
	}
	if len(r.rule) == 0 || domain[len(domain)-len(r.rule)-1] == '.' {
		return true
	}
	return false
}

// StaticPublicSuffixList is a small, curated rule table good enough for
// deterministic tests and offline use. It is not a substitute for the full
// publicsuffix.org dataset that DefaultPublicSuffixList carries.
type StaticPublicSuffixList struct {
	rules map[string][]domainRule // keyed by TLD
	cache ruleCache
}

// NewStaticPublicSuffixList builds a StaticPublicSuffixList seeded with a
// small set of real publicsuffix.org rules exercising each rule kind
// (normal, exception, wildcard) plus AddRule for callers that need more.
func NewStaticPublicSuffixList() *StaticPublicSuffixList {
	s := &StaticPublicSuffixList{
		rules: make(map[string][]domainRule),
		cache: newRuleCache(64),
	}
	for _, seed := range []struct {
		tld  string
		rule string
		kind ruleKind
	}{
		{"com", "", ruleNormal},
		{"biz", "", ruleNormal},
		{"uk", "co", ruleNormal},
		{"jp", "", ruleNormal},
		{"jp", "kyoto", ruleNormal},
		{"jp", "pref.kyoto", ruleException},
		{"jp", "city.kyoto", ruleException},
		{"cy", "", ruleWildcard},
		{"om", "", ruleWildcard},
		{"om", "songfest", ruleException},
		{"us", "", ruleNormal},
		{"us", "ak", ruleNormal},
		{"us", "k12.ak", ruleNormal},
	} {
		s.AddRule(seed.tld, seed.rule, seed.kind)
	}
	return s
}

// AddRule registers an additional publicsuffix.org-style rule for tld.
func (s *StaticPublicSuffixList) AddRule(tld, rule string, kind ruleKind) {
	s.rules[tld] = append(s.rules[tld], domainRule{rule: rule, kind: kind})
}

// findRule picks the prevailing rule for domain per publicsuffix.org's
// algorithm: an exception match always wins; otherwise the most specific
// (longest) matching rule wins. Earlier code here returned the first
// matching rule in registration order, which let a TLD's catch-all "" rule
// shadow every more specific rule registered after it.
func (s *StaticPublicSuffixList) findRule(domain string) *domainRule {
	if rule, found := s.cache.lookup(domain); found {
		return rule
	}

	var tld, stripped string
	if i := strings.LastIndex(domain, "."); i != -1 {
		tld, stripped = domain[i+1:], domain[:i]
	} else {
		tld = domain
	}
	rules, ok := s.rules[tld]
	if !ok {
		s.cache.store(domain, nil)
		return nil
	}

	var best *domainRule
	bestLabels := -1
	for i := range rules {
		r := &rules[i]
		if !r.match(stripped) {
			continue
		}
		if r.kind == ruleException {
			s.cache.store(domain, r)
			return r
		}
		labels := 0
		if r.rule != "" {
			labels = strings.Count(r.rule, ".") + 1
		}
		if labels > bestLabels {
			bestLabels, best = labels, r
		}
	}
	s.cache.store(domain, best)
	return best
}

// PublicSuffix implements PublicSuffixList using the algorithm from
// http://publicsuffix.org/list/: the prevailing rule is the matching
// exception rule if any, else the most specific match, else the implicit
// "*" rule; the suffix is the rule's label count taken from the right.
func (s *StaticPublicSuffixList) PublicSuffix(domain string) string {
	labels := strings.Split(domain, ".")
	rule := s.findRule(domain)

	var n int
	switch {
	case rule == nil:
		n = 1
	case rule.kind == ruleException:
		n = strings.Count(rule.rule, ".") + 1
	case rule.kind == ruleWildcard:
		n = strings.Count(rule.rule, ".") + 3
		if rule.rule == "" {
			n = 2
		}
	default:
		n = strings.Count(rule.rule, ".") + 2
		if rule.rule == "" {
			n = 1
		}
	}
	if n > len(labels) {
		n = len(labels)
	}
	return strings.Join(labels[len(labels)-n:], ".")
}

// -------------------------------------------------------------------------
// ruleCache: a small ring-buffer cache for domainRule lookups, adapted from
// the teacher's ruleCache to be owned per-StaticPublicSuffixList instance
// rather than a single global (the teacher's theRuleCache made every jar in
// a process share one cache regardless of which suffix list it used).

type cacheEntry struct {
	domain string
	rule   *domainRule
}

type ruleCache struct {
	mu    sync.RWMutex
	cache []cacheEntry
	idx   int
}

func newRuleCache(size int) ruleCache {
	return ruleCache{cache: make([]cacheEntry, 0, size)}
}

func (rc *ruleCache) lookup(domain string) (*domainRule, bool) {
	rc.mu.RLock()
	defer rc.mu.RUnlock()
	for _, e := range rc.cache {
		if e.domain == domain {
			return e.rule, true
		}
	}
	return nil, false
}

func (rc *ruleCache) store(domain string, rule *domainRule) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	entry := cacheEntry{domain, rule}
	if len(rc.cache) < cap(rc.cache) {
		rc.cache = append(rc.cache, entry)
		return
	}
	rc.cache[rc.idx] = entry
	rc.idx = (rc.idx + 1) % cap(rc.cache)
}
