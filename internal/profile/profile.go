// Package profile stores named login profiles (cookies and headers) on disk
// so crawls can reuse an authenticated session across runs.
package profile

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"golang.org/x/net/publicsuffix"
)

// ErrNotFound is returned when a named profile does not exist.
var ErrNotFound = errors.New("profile not found")

var nameRE = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]*$`)

// Cookie is a single stored cookie. Domain may carry a leading dot.
type Cookie struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Domain string `json:"domain"`
	Path   string `json:"path,omitempty"`
}

// Profile is a named set of cookies and extra headers applied to crawl requests.
type Profile struct {
	Name    string            `json:"name"`
	Created time.Time         `json:"created"`
	Cookies []Cookie          `json:"cookies,omitempty"`
	Headers map[string]string `json:"headers,omitempty"`
}

// Manager reads and writes profiles as JSON files under a single directory.
// Writes are whole-file; there is no cross-process locking.
type Manager struct {
	dir string
}

// NewManager creates the profile directory if needed and returns a Manager for it.
func NewManager(dir string) (*Manager, error) {
	if dir == "" {
		return nil, fmt.Errorf("profiles dir is required")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create profiles dir: %w", err)
	}
	return &Manager{dir: dir}, nil
}

func (m *Manager) path(name string) string {
	return filepath.Join(m.dir, name+".json")
}

func validateName(name string) error {
	if !nameRE.MatchString(name) {
		return fmt.Errorf("invalid profile name %q", name)
	}
	return nil
}

// Save writes the profile to disk, overwriting any existing one with the same name.
// A zero Created timestamp is filled in.
func (m *Manager) Save(p *Profile) error {
	if err := validateName(p.Name); err != nil {
		return err
	}
	if p.Created.IsZero() {
		p.Created = time.Now().UTC()
	}
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	if err := os.WriteFile(m.path(p.Name), data, 0o600); err != nil {
		return fmt.Errorf("write profile: %w", err)
	}
	return nil
}

// Get loads a profile by name.
func (m *Manager) Get(name string) (*Profile, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(m.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, fmt.Errorf("read profile: %w", err)
	}
	var p Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode profile %s: %w", name, err)
	}
	return &p, nil
}

// List returns the names of all stored profiles, sorted.
func (m *Manager) List() ([]string, error) {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return nil, fmt.Errorf("read profiles dir: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ".json"))
	}
	return names, nil
}

// Delete removes a stored profile.
func (m *Manager) Delete(name string) error {
	if err := validateName(name); err != nil {
		return err
	}
	if err := os.Remove(m.path(name)); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return fmt.Errorf("delete profile: %w", err)
	}
	return nil
}

// Headers returns the profile's extra headers with cookies folded into a single
// Cookie header, in stored order. The cookie list wins over an explicit Cookie
// header. Suited to clients that take a flat header map.
func (m *Manager) Headers(name string) (map[string]string, error) {
	p, err := m.Get(name)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(p.Headers)+1)
	for k, v := range p.Headers {
		out[k] = v
	}
	if len(p.Cookies) > 0 {
		pairs := make([]string, 0, len(p.Cookies))
		for _, c := range p.Cookies {
			pairs = append(pairs, c.Name+"="+c.Value)
		}
		out["Cookie"] = strings.Join(pairs, "; ")
	}
	return out, nil
}

// Jar builds a cookie jar holding the profile's cookies, for use with a stdlib
// http.Client. Cookies without a domain are skipped.
func (m *Manager) Jar(name string) (http.CookieJar, error) {
	p, err := m.Get(name)
	if err != nil {
		return nil, err
	}
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("new cookie jar: %w", err)
	}
	for _, c := range p.Cookies {
		host := strings.TrimPrefix(c.Domain, ".")
		if host == "" {
			continue
		}
		ck := &http.Cookie{Name: c.Name, Value: c.Value, Path: c.Path}
		// A domain attribute on an IP host is rejected by the jar; leave those
		// as host-only cookies.
		if net.ParseIP(host) == nil {
			ck.Domain = c.Domain
		}
		u := &url.URL{Scheme: "https", Host: host}
		jar.SetCookies(u, []*http.Cookie{ck})
	}
	return jar, nil
}
