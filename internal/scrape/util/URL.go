package util

import (
	"net/url"
	"strconv"
	"strings"
)

// JoinURL appends path segments to base without doubling slashes.
func JoinURL(base string, parts ...string) string {
	out := strings.TrimRight(base, "/")
	for _, p := range parts {
		p = strings.Trim(p, "/")
		if p == "" {
			continue
		}
		out += "/" + p
	}
	return out
}

// WithPage sets the page query parameter, keeping any other parameters.
func WithPage(raw string, n int) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw + "?page=" + strconv.Itoa(n)
	}
	q := u.Query()
	q.Set("page", strconv.Itoa(n))
	u.RawQuery = q.Encode()
	return u.String()
}

// RedactQuery masks the values of the named query parameters.
func RedactQuery(raw string, keys ...string) string {
	u, err := url.Parse(raw)
	if err != nil {
		base, _, _ := strings.Cut(raw, "?")
		return base
	}
	q := u.Query()
	changed := false
	for _, k := range keys {
		if q.Has(k) {
			q.Set(k, "REDACTED")
			changed = true
		}
	}
	if changed {
		u.RawQuery = q.Encode()
	}
	return u.String()
}

func Host(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Host)
}
