package httpadapter

import (
	"net/http"
	"net/http/cookiejar"

	"golang.org/x/net/publicsuffix"
)

// CookieStore tracks cookies across the requests issued through one adapter.
// Any http.CookieJar can serve as a store.
type CookieStore = http.CookieJar

// NewCookieStore returns an in-memory store that accepts all cookies and
// respects public-suffix domain boundaries.
func NewCookieStore() CookieStore {
	// cookiejar.New always returns a nil error.
	jar, _ := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	return jar
}
