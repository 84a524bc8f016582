package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/diogo/mangroveguide/internal/config"
)

func newImportCookiesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import-cookies <path>",
		Short: "Import cookies for the web backend",
		Long: `Import Gemini cookies from a JSON file exported by a browser extension.

Both the list form [{"name": "...", "value": "..."}] and the map form
{"__Secure-1PSID": "..."} are accepted. The cookies are stored in
~/.mangroveguide/cookies.json with owner-only permissions.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.ImportCookies(args[0]); err != nil {
				return fmt.Errorf("failed to import cookies: %w", err)
			}
			path, _ := config.GetCookiesPath()
			fmt.Fprintf(cmd.OutOrStdout(), "Cookies imported to %s\n", path)
			return nil
		},
	}
}
