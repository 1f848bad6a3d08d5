package cookiejar

import "golang.org/x/net/idna"

// IDNProfile is the boundary contract spec section 6 calls "IDN: pure
// function utf8 -> ascii (punycode)". canonicalDomain reaches it only
// through the unexported defaultIDNProfile below; the package exports no
// way to replace that implementation from outside.
type IDNProfile interface {
	ToASCII(string) (string, error)
}

// defaultIDNProfile backs canonicalDomain's non-ASCII path with the
// standard library-adjacent golang.org/x/net/idna implementation, the
// punycode encoder observed paired with golang.org/x/net/publicsuffix
// throughout the retrieval pack's HTTP-client code.
var defaultIDNProfile IDNProfile = idna.Lookup

func toASCII(host string) (string, error) {
	return defaultIDNProfile.ToASCII(host)
}
