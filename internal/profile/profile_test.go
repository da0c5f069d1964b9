package profile

import (
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager(t.TempDir())
	require.NoError(t, err)
	return m
}

func TestManagerRoundTrip(t *testing.T) {
	m := newTestManager(t)

	p := &Profile{
		Name:    "work",
		Cookies: []Cookie{{Name: "session", Value: "abc123", Domain: ".example.com"}},
		Headers: map[string]string{"X-Api-Key": "k"},
	}
	require.NoError(t, m.Save(p))
	assert.False(t, p.Created.IsZero(), "Save should fill in Created")

	got, err := m.Get("work")
	require.NoError(t, err)
	assert.Equal(t, "work", got.Name)
	assert.Equal(t, p.Cookies, got.Cookies)
	assert.Equal(t, p.Headers, got.Headers)

	names, err := m.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"work"}, names)

	require.NoError(t, m.Delete("work"))
	_, err = m.Get("work")
	assert.True(t, errors.Is(err, ErrNotFound))

	err = m.Delete("work")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestManagerRejectsBadNames(t *testing.T) {
	m := newTestManager(t)

	for _, name := range []string{"", ".", "..", ".hidden", "a/b", `a\b`, "../escape"} {
		t.Run(name, func(t *testing.T) {
			err := m.Save(&Profile{Name: name})
			assert.Error(t, err)
			_, err = m.Get(name)
			assert.Error(t, err)
		})
	}
}

func TestHeadersFoldsCookies(t *testing.T) {
	m := newTestManager(t)

	require.NoError(t, m.Save(&Profile{
		Name: "site",
		Cookies: []Cookie{
			{Name: "a", Value: "1", Domain: "example.com"},
			{Name: "b", Value: "2", Domain: "example.com"},
		},
		Headers: map[string]string{
			"X-Custom": "yes",
			"Cookie":   "stale=old",
		},
	}))

	h, err := m.Headers("site")
	require.NoError(t, err)
	assert.Equal(t, "a=1; b=2", h["Cookie"], "cookie list should win over the stored Cookie header")
	assert.Equal(t, "yes", h["X-Custom"])
}

func TestHeadersWithoutCookies(t *testing.T) {
	m := newTestManager(t)

	require.NoError(t, m.Save(&Profile{
		Name:    "plain",
		Headers: map[string]string{"Authorization": "Bearer t"},
	}))

	h, err := m.Headers("plain")
	require.NoError(t, err)
	assert.Equal(t, "Bearer t", h["Authorization"])
	_, ok := h["Cookie"]
	assert.False(t, ok)
}

func TestJarServesStoredCookies(t *testing.T) {
	m := newTestManager(t)

	require.NoError(t, m.Save(&Profile{
		Name: "site",
		Cookies: []Cookie{
			{Name: "session", Value: "abc", Domain: "example.com"},
			{Name: "nodomain", Value: "dropped", Domain: ""},
		},
	}))

	jar, err := m.Jar("site")
	require.NoError(t, err)

	u, _ := url.Parse("https://example.com/")
	cookies := jar.Cookies(u)
	require.Len(t, cookies, 1)
	assert.Equal(t, "session", cookies[0].Name)
	assert.Equal(t, "abc", cookies[0].Value)
}
