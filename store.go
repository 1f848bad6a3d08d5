// Copyright 2012 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cookiejar

// Store is the interface of a low-level cookie store, generalized from the
// teacher's Storage interface to the seven operations spec section 4.F
// names. Cookies are addressed as <domain,path,key> triples; the store owns
// its own indexing but the Jar is responsible for locking, canonicalizing
// domain/path, and stamping bookkeeping fields like LastAccessed.
//
// All operations are synchronous here; nothing in the signatures prevents
// an implementation backed by network I/O from blocking inside these calls
// (spec section 5: "the contract permits an asynchronous store").
type Store interface {
	// FindCookie returns the single record matching (domain, path, key),
	// or (nil, nil) if absent — not finding a cookie is not an error.
	FindCookie(domain, path, key string) (*Cookie, error)

	// FindCookies returns every record where domainMatch(domain,
	// stored.Domain) holds and, when path != "", pathMatch(path,
	// stored.Path) also holds. Implementations may over-return; the Jar
	// filters and sorts the result.
	FindCookies(domain, path string) ([]*Cookie, error)

	// PutCookie inserts c, replacing any existing record with the same
	// (Domain, Path, Key). Must be idempotent under same-tuple
	// replacement (spec section 5: stores are required to make
	// PutCookie idempotent since concurrent jar operations are not
	// atomic across the store boundary).
	PutCookie(c *Cookie) error

	// UpdateCookie is semantically identical to PutCookie(next); it
	// exists so a store can optimize a value-only update when it still
	// has old in hand.
	UpdateCookie(old, next *Cookie) error

	// RemoveCookie drops the record at (domain, path, key). Idempotent:
	// removing an absent cookie is not an error.
	RemoveCookie(domain, path, key string) error

	// RemoveCookies drops every record in domain, and further
	// restricted to path when path != "".
	RemoveCookies(domain, path string) error

	// GetAllCookies returns every stored record ordered by
	// CreationIndex.
	GetAllCookies() ([]*Cookie, error)
}
