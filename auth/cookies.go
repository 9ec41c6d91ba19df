package auth

import (
	"encoding/json"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// Cookie is a persistable session cookie record. Losing these across a
// refresh forces a full credential re-login instead of a lightweight
// resumption, so sessions carry them forward verbatim.
type Cookie struct {
	Name     string    `json:"name"`
	Value    string    `json:"value"`
	Domain   string    `json:"domain,omitempty"`
	Path     string    `json:"path,omitempty"`
	Expires  time.Time `json:"expires,omitzero"`
	Secure   bool      `json:"secure,omitempty"`
	HTTPOnly bool      `json:"httpOnly,omitempty"`
}

// UnmarshalJSON accepts the current record schema and falls back to the
// legacy encoding, a raw Set-Cookie header string. Older persisted sessions
// still decode that way.
func (c *Cookie) UnmarshalJSON(data []byte) error {
	type record Cookie // shed the method set to avoid recursion
	var current record
	if err := json.Unmarshal(data, &current); err == nil && current.Name != "" {
		*c = Cookie(current)
		return nil
	}

	var legacy string
	if err := json.Unmarshal(data, &legacy); err == nil {
		parsed, err := http.ParseSetCookie(legacy)
		if err != nil {
			return errors.Wrap(err, "[Cookie.UnmarshalJSON] parsing legacy cookie")
		}
		*c = Cookie{
			Name:     parsed.Name,
			Value:    parsed.Value,
			Domain:   parsed.Domain,
			Path:     parsed.Path,
			Expires:  parsed.Expires,
			Secure:   parsed.Secure,
			HTTPOnly: parsed.HttpOnly,
		}
		return nil
	}

	return errors.New("[Cookie.UnmarshalJSON] unrecognized cookie encoding")
}

// Jar is a minimal cookie jar scoped to the authentication hosts. It
// implements http.CookieJar so it can be plugged straight into an
// http.Client, and it can export and re-import its contents so sessions can
// persist cookies across processes.
type Jar struct {
	mu      sync.Mutex
	cookies map[jarKey]Cookie
}

type jarKey struct {
	name   string
	domain string
	path   string
}

// NewJar creates a jar seeded with the given cookie records.
func NewJar(cookies ...Cookie) *Jar {
	j := &Jar{cookies: make(map[jarKey]Cookie)}
	j.Import(cookies)
	return j
}

// SetCookies implements http.CookieJar.
func (j *Jar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.mu.Lock()
	defer j.mu.Unlock()
	for _, cookie := range cookies {
		record := Cookie{
			Name:     cookie.Name,
			Value:    cookie.Value,
			Domain:   strings.TrimPrefix(cookie.Domain, "."),
			Path:     cookie.Path,
			Expires:  cookie.Expires,
			Secure:   cookie.Secure,
			HTTPOnly: cookie.HttpOnly,
		}
		if record.Domain == "" {
			record.Domain = u.Hostname()
		}
		if record.Path == "" {
			record.Path = "/"
		}
		key := jarKey{name: record.Name, domain: record.Domain, path: record.Path}
		if cookie.MaxAge < 0 {
			delete(j.cookies, key)
			continue
		}
		j.cookies[key] = record
	}
}

// Cookies implements http.CookieJar.
func (j *Jar) Cookies(u *url.URL) []*http.Cookie {
	j.mu.Lock()
	defer j.mu.Unlock()

	now := time.Now()
	matched := make([]Cookie, 0, len(j.cookies))
	for _, record := range j.cookies {
		if !record.Expires.IsZero() && record.Expires.Before(now) {
			continue
		}
		if !domainMatch(u.Hostname(), record.Domain) {
			continue
		}
		if !pathMatch(u.Path, record.Path) {
			continue
		}
		matched = append(matched, record)
	}
	sort.Slice(matched, func(a, b int) bool { return matched[a].Name < matched[b].Name })

	out := make([]*http.Cookie, len(matched))
	for i, record := range matched {
		out[i] = &http.Cookie{Name: record.Name, Value: record.Value}
	}
	return out
}

// Clear drops every cookie. Used when the server reports the existing
// session as broken: a stale partial jar must not be left half-applied.
func (j *Jar) Clear() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.cookies = make(map[jarKey]Cookie)
}

// Import merges the given records into the jar.
func (j *Jar) Import(cookies []Cookie) {
	j.mu.Lock()
	defer j.mu.Unlock()
	for _, record := range cookies {
		if record.Path == "" {
			record.Path = "/"
		}
		j.cookies[jarKey{name: record.Name, domain: record.Domain, path: record.Path}] = record
	}
}

// Export returns the jar's contents in a stable order.
func (j *Jar) Export() []Cookie {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]Cookie, 0, len(j.cookies))
	for _, record := range j.cookies {
		out = append(out, record)
	}
	sort.Slice(out, func(a, b int) bool {
		if out[a].Name != out[b].Name {
			return out[a].Name < out[b].Name
		}
		return out[a].Domain < out[b].Domain
	})
	return out
}

func domainMatch(host, domain string) bool {
	if domain == "" {
		return true
	}
	return host == domain || strings.HasSuffix(host, "."+domain)
}

func pathMatch(requestPath, cookiePath string) bool {
	if requestPath == "" {
		requestPath = "/"
	}
	return strings.HasPrefix(requestPath, cookiePath)
}
