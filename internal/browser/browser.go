// Package browser reads Gemini session cookies from local browser
// profiles, for the web backend.
package browser

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/browserutils/kooky"
	_ "github.com/browserutils/kooky/browser/chrome"
	_ "github.com/browserutils/kooky/browser/chromium"
	_ "github.com/browserutils/kooky/browser/edge"
	_ "github.com/browserutils/kooky/browser/firefox"
	_ "github.com/browserutils/kooky/browser/opera"

	"github.com/diogo/mangroveguide/internal/config"
)

// SupportedBrowser names a browser family.
type SupportedBrowser string

const (
	BrowserAuto     SupportedBrowser = "auto"
	BrowserChrome   SupportedBrowser = "chrome"
	BrowserChromium SupportedBrowser = "chromium"
	BrowserFirefox  SupportedBrowser = "firefox"
	BrowserEdge     SupportedBrowser = "edge"
	BrowserOpera    SupportedBrowser = "opera"
)

// ErrNotFound means no profile of the requested browser held the cookies.
var ErrNotFound = errors.New("gemini cookies not found")

// AllSupportedBrowsers lists the browsers tried by BrowserAuto, most
// common first.
func AllSupportedBrowsers() []SupportedBrowser {
	return []SupportedBrowser{BrowserChrome, BrowserFirefox, BrowserEdge, BrowserChromium, BrowserOpera}
}

func (b SupportedBrowser) String() string { return string(b) }

// ParseBrowser parses a browser name, accepting common aliases.
func ParseBrowser(s string) (SupportedBrowser, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "auto", "":
		return BrowserAuto, nil
	case "chrome", "google-chrome":
		return BrowserChrome, nil
	case "chromium":
		return BrowserChromium, nil
	case "firefox", "mozilla", "mozilla-firefox":
		return BrowserFirefox, nil
	case "edge", "microsoft-edge", "msedge":
		return BrowserEdge, nil
	case "opera":
		return BrowserOpera, nil
	default:
		return "", fmt.Errorf("unsupported browser: %s. Supported: chrome, chromium, firefox, edge, opera", s)
	}
}

// ExtractResult is a successful extraction.
type ExtractResult struct {
	Cookies     *config.Cookies
	BrowserName string
}

// ExtractGeminiCookies finds the Gemini cookies in the given browser, or
// in every supported browser for BrowserAuto.
func ExtractGeminiCookies(ctx context.Context, b SupportedBrowser) (*ExtractResult, error) {
	targets := []SupportedBrowser{b}
	if b == BrowserAuto {
		targets = AllSupportedBrowsers()
	}

	stores := kooky.FindAllCookieStores(ctx)
	defer func() {
		for _, s := range stores {
			_ = s.Close()
		}
	}()

	var errs []error
	for _, target := range targets {
		for _, store := range stores {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if !matchesBrowser(store.Browser(), target) {
				continue
			}
			result, err := extractFromStore(ctx, store)
			if err == nil {
				return result, nil
			}
			errs = append(errs, err)
		}
	}

	if len(errs) == 0 {
		return nil, fmt.Errorf("%w: no cookie store for %s", ErrNotFound, b)
	}
	return nil, fmt.Errorf("%w: %w", ErrNotFound, errors.Join(errs...))
}

func matchesBrowser(name string, target SupportedBrowser) bool {
	name = strings.ToLower(name)
	switch target {
	case BrowserChrome:
		return strings.Contains(name, "chrome") && !strings.Contains(name, "chromium")
	case BrowserChromium, BrowserFirefox, BrowserEdge, BrowserOpera:
		return strings.Contains(name, string(target))
	default:
		return false
	}
}

// rawCookie is the subset of a browser cookie the selection needs.
type rawCookie struct {
	Name   string
	Value  string
	Domain string
}

// selectGeminiCookies picks the session cookies, preferring .google.com
// over regional domains.
func selectGeminiCookies(cookies []rawCookie) (psid, psidts string) {
	for _, c := range cookies {
		switch c.Name {
		case config.CookiePSID:
			if psid == "" || c.Domain == ".google.com" {
				psid = c.Value
			}
		case config.CookiePSIDTS:
			if psidts == "" || c.Domain == ".google.com" {
				psidts = c.Value
			}
		}
	}
	return psid, psidts
}

func extractFromStore(ctx context.Context, store kooky.CookieStore) (*ExtractResult, error) {
	name := store.Browser()
	if p := store.Profile(); p != "" {
		name = fmt.Sprintf("%s (profile: %s)", name, p)
	}

	var found []rawCookie
	for cookie := range store.TraverseCookies(kooky.Valid, kooky.DomainContains("google.com")).OnlyCookies() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		found = append(found, rawCookie{Name: cookie.Name, Value: cookie.Value, Domain: cookie.Domain})
	}

	psid, psidts := selectGeminiCookies(found)
	if psid == "" {
		return nil, fmt.Errorf("%s not found in %s; log into gemini.google.com first", config.CookiePSID, name)
	}
	return &ExtractResult{Cookies: config.NewCookies(psid, psidts), BrowserName: name}, nil
}

// ListAvailableBrowsers returns the distinct browsers with cookie stores.
func ListAvailableBrowsers(ctx context.Context) []string {
	var names []string
	seen := make(map[string]bool)
	for _, store := range kooky.FindAllCookieStores(ctx) {
		if name := store.Browser(); !seen[name] {
			names = append(names, name)
			seen[name] = true
		}
		_ = store.Close()
	}
	return names
}
