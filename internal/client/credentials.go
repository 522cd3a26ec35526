package client

import (
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"

	"notedeck/internal/config"
)

// SessionCookieName is the cookie the backend issues on sign-in.
const SessionCookieName = "access_token"

// CredentialPolicy decides how the session credential travels with every
// request. Exactly one policy is active per client.
type CredentialPolicy interface {
	Name() string
	Attach(req *http.Request)
	Capture(resp *http.Response)
	SetToken(token string)
	Token() string
	Jar() http.CookieJar
}

func NewCredentialPolicy(name, baseURL string) (CredentialPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", config.CredentialsBearer:
		return &bearerCredentials{}, nil
	case config.CredentialsCookie:
		return newCookieCredentials(baseURL)
	default:
		return nil, fmt.Errorf("unknown credential policy %q", name)
	}
}

type bearerCredentials struct {
	mu    sync.RWMutex
	token string
}

func (b *bearerCredentials) Name() string {
	return config.CredentialsBearer
}

func (b *bearerCredentials) Attach(req *http.Request) {
	token := b.Token()
	if token == "" || req == nil {
		return
	}
	req.Header.Set("Authorization", "Bearer "+token)
}

func (b *bearerCredentials) Capture(resp *http.Response) {
	if resp == nil {
		return
	}
	for _, cookie := range resp.Cookies() {
		if cookie.Name != SessionCookieName {
			continue
		}
		if cookie.MaxAge < 0 || cookie.Value == "" {
			b.SetToken("")
			return
		}
		b.SetToken(cookie.Value)
		return
	}
}

func (b *bearerCredentials) SetToken(token string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.token = strings.TrimSpace(token)
}

func (b *bearerCredentials) Token() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.token
}

func (b *bearerCredentials) Jar() http.CookieJar {
	return nil
}

type cookieCredentials struct {
	jar  *cookiejar.Jar
	base *url.URL
}

func newCookieCredentials(baseURL string) (*cookieCredentials, error) {
	base, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	return &cookieCredentials{jar: jar, base: base}, nil
}

func (c *cookieCredentials) Name() string {
	return config.CredentialsCookie
}

// Attach is a no-op: the http.Client sends jar cookies itself.
func (c *cookieCredentials) Attach(*http.Request) {}

func (c *cookieCredentials) Capture(*http.Response) {}

func (c *cookieCredentials) SetToken(token string) {
	cookie := &http.Cookie{Name: SessionCookieName, Value: token, Path: "/"}
	if token == "" {
		cookie.MaxAge = -1
	}
	c.jar.SetCookies(c.base, []*http.Cookie{cookie})
}

func (c *cookieCredentials) Token() string {
	for _, cookie := range c.jar.Cookies(c.base) {
		if cookie.Name == SessionCookieName {
			return cookie.Value
		}
	}
	return ""
}

func (c *cookieCredentials) Jar() http.CookieJar {
	return c.jar
}
