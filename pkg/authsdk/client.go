package authsdk

import (
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"
)

// Cookie names set by the service.
const (
	AccessTokenCookie  = "access_token"
	RefreshTokenCookie = "refresh_token"
	CSRFTokenCookie    = "csrf_token"
	CSRFTokenHeader    = "X-CSRF-Token"
)

// SDKClient is a client for the web template API. Sessions live in cookies,
// so each SDKClient is one browser-like session: its cookie jar holds the
// access, refresh and CSRF cookies the server sets.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewSDKClient creates a client with an empty cookie jar.
func NewSDKClient(baseURL string) *SDKClient {
	jar, _ := cookiejar.New(nil) // never fails with nil options
	return &SDKClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
			Jar:     jar,
		},
	}
}

// Cookie returns the value of the named cookie held for BaseURL, or "".
func (c *SDKClient) Cookie(name string) string {
	if c.HTTPClient.Jar == nil {
		return ""
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return ""
	}
	for _, ck := range c.HTTPClient.Jar.Cookies(u) {
		if ck.Name == name {
			return ck.Value
		}
	}
	return ""
}

// Authenticated reports whether the jar holds an access token cookie.
func (c *SDKClient) Authenticated() bool {
	return c.Cookie(AccessTokenCookie) != ""
}
