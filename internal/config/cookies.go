package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	apierrors "github.com/diogo/mangroveguide/internal/errors"
)

// Cookie names used by the web backend.
const (
	CookiePSID   = "__Secure-1PSID"
	CookiePSIDTS = "__Secure-1PSIDTS"
)

var errMissingPSID = fmt.Errorf("missing required cookie: %s", CookiePSID)

// Cookies are the gemini.google.com session cookies. The PSIDTS value is
// rotated in the background, so access goes through the mutex.
type Cookies struct {
	mu            sync.RWMutex
	Secure1PSID   string
	Secure1PSIDTS string
}

// NewCookies creates a cookie set.
func NewCookies(psid, psidts string) *Cookies {
	return &Cookies{Secure1PSID: psid, Secure1PSIDTS: psidts}
}

// Snapshot returns both cookies atomically
func (c *Cookies) Snapshot() (psid, psidts string) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.Secure1PSID, c.Secure1PSIDTS
}

// SetBoth updates both cookies atomically
func (c *Cookies) SetBoth(psid, psidts string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Secure1PSID = psid
	c.Secure1PSIDTS = psidts
}

// Update1PSIDTS replaces the rotating cookie.
func (c *Cookies) Update1PSIDTS(value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Secure1PSIDTS = value
}

// ToMap returns the cookies keyed by name, omitting an empty PSIDTS.
func (c *Cookies) ToMap() map[string]string {
	psid, psidts := c.Snapshot()
	m := map[string]string{CookiePSID: psid}
	if psidts != "" {
		m[CookiePSIDTS] = psidts
	}
	return m
}

// CookieListItem represents a cookie in browser export format
type CookieListItem struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// LoadCookies loads cookies from the cookies file
func LoadCookies() (*Cookies, error) {
	cookiesPath, err := GetCookiesPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(cookiesPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: run `mangroveguide import-cookies <file>` or `mangroveguide auto-login`", apierrors.ErrNoCookies)
		}
		return nil, fmt.Errorf("failed to read cookies file: %w", err)
	}
	return parseCookies(data)
}

// parseCookies accepts a dict {name: value} or a browser export list
// [{name, value}].
func parseCookies(data []byte) (*Cookies, error) {
	var dict map[string]string
	if err := json.Unmarshal(data, &dict); err == nil {
		if dict[CookiePSID] == "" {
			return nil, errMissingPSID
		}
		return NewCookies(dict[CookiePSID], dict[CookiePSIDTS]), nil
	}

	var list []CookieListItem
	if err := json.Unmarshal(data, &list); err == nil {
		c := &Cookies{}
		for _, item := range list {
			switch item.Name {
			case CookiePSID:
				c.Secure1PSID = item.Value
			case CookiePSIDTS:
				c.Secure1PSIDTS = item.Value
			}
		}
		if c.Secure1PSID == "" {
			return nil, errMissingPSID
		}
		return c, nil
	}

	return nil, errors.New("invalid cookies format: expected list [{name, value}] or dict {name: value}")
}

// SaveCookies writes cookies in list format with owner-only permissions.
func SaveCookies(cookies *Cookies) error {
	configDir, err := EnsureConfigDir()
	if err != nil {
		return err
	}

	psid, psidts := cookies.Snapshot()
	list := []CookieListItem{{Name: CookiePSID, Value: psid}}
	if psidts != "" {
		list = append(list, CookieListItem{Name: CookiePSIDTS, Value: psidts})
	}

	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal cookies: %w", err)
	}
	if err := os.WriteFile(filepath.Join(configDir, "cookies.json"), data, 0o600); err != nil {
		return fmt.Errorf("failed to write cookies file: %w", err)
	}
	return nil
}

// ImportCookies copies cookies from a browser export into the config dir.
func ImportCookies(sourcePath string) error {
	data, err := os.ReadFile(sourcePath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("source file not found: %s", sourcePath)
		}
		return fmt.Errorf("could not read file: %w", err)
	}

	cookies, err := parseCookies(data)
	if err != nil {
		return err
	}
	return SaveCookies(cookies)
}

// ValidateCookies checks that the required cookie is present.
func ValidateCookies(cookies *Cookies) error {
	if cookies == nil {
		return errors.New("cookies are nil")
	}
	if psid, _ := cookies.Snapshot(); psid == "" {
		return errMissingPSID
	}
	return nil
}
