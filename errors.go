// Copyright 2012 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cookiejar

import (
	"errors"
	"fmt"

	pkgerrors "github.com/pkg/errors"
)

// Sentinel errors for the policy failures a Jar can report. Callers compare
// against these with errors.Is; the concrete error returned by the jar is
// usually wrapped with context via github.com/pkg/errors so a stack trace is
// available in development builds without polluting Error() text.
var (
	// ErrParse indicates a malformed Set-Cookie or Cookie header.
	ErrParse = errors.New("cookiejar: failed to parse cookie")

	// ErrPublicSuffix indicates a Domain attribute equal to (or covering)
	// a public suffix, rejected per RFC 6265 section 5.3 step 5.
	ErrPublicSuffix = errors.New("cookiejar: cookie has domain set to a public suffix")

	// ErrDomainMismatch indicates a Domain attribute that does not
	// domain-match the request host.
	ErrDomainMismatch = errors.New("cookiejar: cookie not in this host's domain")

	// ErrHTTPOnlyMismatch indicates an HttpOnly cookie being set or
	// updated from a non-HTTP API.
	ErrHTTPOnlyMismatch = errors.New("cookiejar: cookie is HttpOnly and this isn't an HTTP API")

	// ErrStore wraps any non-nil error returned by a Store. It is never
	// swallowed. SetCookie has no option to ignore errors: every error it
	// meets, of any kind, is returned to the caller.
	ErrStore = errors.New("cookiejar: store error")
)

// storeError wraps an underlying Store failure so callers can still
// errors.Is(err, ErrStore) while seeing the original cause in Error().
func storeError(op string, cause error) error {
	return pkgerrors.Wrapf(&wrappedError{ErrStore, cause}, "cookiejar: store.%s", op)
}

// wrappedError lets a concrete failure present as one of the sentinels
// above via errors.Is/errors.Unwrap while keeping its own message.
type wrappedError struct {
	sentinel error
	cause    error
}

func (e *wrappedError) Error() string {
	if e.cause == nil {
		return e.sentinel.Error()
	}
	return fmt.Sprintf("%s: %s", e.sentinel.Error(), e.cause.Error())
}

func (e *wrappedError) Is(target error) bool { return target == e.sentinel }
func (e *wrappedError) Unwrap() error        { return e.cause }
