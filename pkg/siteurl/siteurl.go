// Package siteurl canonicalizes user-supplied website references into
// absolute, scheme-qualified URLs and derives the domain keys used by
// the context store and credential vault.
package siteurl

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// ErrInvalidURL indicates that user input could not be parsed as a
// website address, even after prepending a default scheme.
var ErrInvalidURL = errors.New("invalid URL format")

// Normalize canonicalizes arbitrary user input into an absolute URL.
//
// Input that already carries an explicit http or https scheme is parsed
// and validated as-is. Anything else is retried with "https://"
// prepended, so bare domains ("example.com"), www-prefixed hosts, and
// fully qualified URLs are all accepted. Still-malformed input returns
// ErrInvalidURL wrapped with a hint listing the accepted forms.
func Normalize(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("%w: empty input (accepted forms: example.com, www.example.com, https://example.com)", ErrInvalidURL)
	}

	if hasExplicitScheme(raw) {
		u, err := url.Parse(raw)
		if err != nil || u.Host == "" {
			return nil, fmt.Errorf("%w: %q", ErrInvalidURL, raw)
		}
		return u, nil
	}

	u, err := url.Parse("https://" + raw)
	if err != nil || u.Host == "" || !strings.Contains(u.Host, ".") {
		return nil, fmt.Errorf("%w: %q (accepted forms: example.com, www.example.com, https://example.com)", ErrInvalidURL, raw)
	}
	return u, nil
}

// IsValid reports whether input would normalize successfully. Intended
// for interactive input validation loops where raising is unhelpful.
func IsValid(raw string) bool {
	_, err := Normalize(raw)
	return err == nil
}

// Domain returns the hostname of a normalized URL, lowercased.
func Domain(u *url.URL) string {
	return strings.ToLower(u.Hostname())
}

// RegistrableDomain returns the effective TLD plus one label for the
// URL's host ("app.example.co.uk" -> "example.co.uk"), falling back to
// the bare hostname when the public suffix list cannot resolve it
// (localhost, IP literals, single-label hosts).
func RegistrableDomain(u *url.URL) string {
	host := Domain(u)
	etld1, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return host
	}
	return etld1
}

// hasExplicitScheme reports whether raw starts with an http or https
// scheme. Other schemes are treated as scheme-less input so that
// "ftp://x" fails validation rather than producing a non-web URL.
func hasExplicitScheme(raw string) bool {
	lower := strings.ToLower(raw)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}
