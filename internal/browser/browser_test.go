package browser

import (
	"context"
	"errors"
	"testing"
)

func TestParseBrowser(t *testing.T) {
	tests := []struct {
		in      string
		want    SupportedBrowser
		wantErr bool
	}{
		{"", BrowserAuto, false},
		{"auto", BrowserAuto, false},
		{"Chrome", BrowserChrome, false},
		{"google-chrome", BrowserChrome, false},
		{"chromium", BrowserChromium, false},
		{"mozilla", BrowserFirefox, false},
		{"msedge", BrowserEdge, false},
		{" opera ", BrowserOpera, false},
		{"netscape", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseBrowser(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseBrowser(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseBrowser(%q) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}

func TestMatchesBrowser(t *testing.T) {
	tests := []struct {
		name   string
		target SupportedBrowser
		want   bool
	}{
		{"Chrome", BrowserChrome, true},
		{"chromium", BrowserChrome, false},
		{"Chromium", BrowserChromium, true},
		{"firefox", BrowserFirefox, true},
		{"Microsoft Edge", BrowserEdge, true},
		{"opera", BrowserOpera, true},
		{"safari", BrowserChrome, false},
		{"chrome", BrowserAuto, false},
	}
	for _, tt := range tests {
		if got := matchesBrowser(tt.name, tt.target); got != tt.want {
			t.Errorf("matchesBrowser(%q, %s) = %v, want %v", tt.name, tt.target, got, tt.want)
		}
	}
}

func TestSelectGeminiCookies(t *testing.T) {
	cookies := []rawCookie{
		{Name: "NID", Value: "x", Domain: ".google.com"},
		{Name: "__Secure-1PSID", Value: "regional", Domain: ".google.com.br"},
		{Name: "__Secure-1PSID", Value: "main", Domain: ".google.com"},
		{Name: "__Secure-1PSIDTS", Value: "ts", Domain: ".google.de"},
	}

	psid, psidts := selectGeminiCookies(cookies)
	if psid != "main" {
		t.Errorf("psid = %q, want main", psid)
	}
	if psidts != "ts" {
		t.Errorf("psidts = %q, want ts", psidts)
	}

	if psid, _ := selectGeminiCookies(nil); psid != "" {
		t.Errorf("psid from nothing = %q", psid)
	}
}

func TestExtractGeminiCookiesCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ExtractGeminiCookies(ctx, BrowserChrome)
	if err == nil {
		t.Fatal("expected an error")
	}
	if !errors.Is(err, context.Canceled) && !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want cancellation or not found", err)
	}
}

func TestAllSupportedBrowsersExcludesAuto(t *testing.T) {
	for _, b := range AllSupportedBrowsers() {
		if b == BrowserAuto {
			t.Error("AllSupportedBrowsers() must not contain auto")
		}
	}
}
