package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/diogo/mangroveguide/internal/browser"
	"github.com/diogo/mangroveguide/internal/config"
)

func newAutoLoginCmd(deps *Dependencies) *cobra.Command {
	var (
		browserName string
		list        bool
	)

	cmd := &cobra.Command{
		Use:   "auto-login",
		Short: "Read web backend cookies from a local browser",
		Long: `Extract the Gemini session cookies from a browser where you are
logged into gemini.google.com, and save them for the web backend.

The browser should be closed first, since some lock their cookie
database while running.

Examples:
  mangroveguide auto-login
  mangroveguide auto-login -b firefox
  mangroveguide auto-login --list`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if list {
				names := deps.Browsers(cmd.Context())
				if len(names) == 0 {
					fmt.Fprintln(out, "No browser cookie stores found.")
					return nil
				}
				fmt.Fprintln(out, "Browsers with cookie stores:")
				for _, name := range names {
					fmt.Fprintf(out, "  - %s\n", name)
				}
				return nil
			}

			b, err := browser.ParseBrowser(browserName)
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "Looking for Gemini cookies (%s)...\n", b)
			result, err := deps.Extract(cmd.Context(), b)
			if err != nil {
				return err
			}
			if err := config.ValidateCookies(result.Cookies); err != nil {
				return fmt.Errorf("cookies from %s are invalid: %w", result.BrowserName, err)
			}
			if err := config.SaveCookies(result.Cookies); err != nil {
				return fmt.Errorf("failed to save cookies: %w", err)
			}

			psid, psidts := result.Cookies.Snapshot()
			path, _ := config.GetCookiesPath()
			fmt.Fprintf(out, "Found cookies in %s\n", result.BrowserName)
			fmt.Fprintf(out, "  %s: %s\n", config.CookiePSID, truncateValue(psid, 20))
			if psidts != "" {
				fmt.Fprintf(out, "  %s: %s\n", config.CookiePSIDTS, truncateValue(psidts, 20))
			}
			fmt.Fprintf(out, "Saved to %s\n", path)
			return nil
		},
	}

	names := make([]string, 0, len(browser.AllSupportedBrowsers())+1)
	names = append(names, string(browser.BrowserAuto))
	for _, b := range browser.AllSupportedBrowsers() {
		names = append(names, string(b))
	}
	cmd.Flags().StringVarP(&browserName, "browser", "b", string(browser.BrowserAuto), "Browser to read ("+strings.Join(names, ", ")+")")
	cmd.Flags().BoolVar(&list, "list", false, "List browsers with cookie stores")
	return cmd
}

// truncateValue shortens a secret for display.
func truncateValue(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
