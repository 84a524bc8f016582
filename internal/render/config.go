package render

import (
	"github.com/diogo/mangroveguide/internal/config"
)

// OptionsFromConfig builds markdown options from the loaded configuration.
// GLAMOUR_STYLE has already been folded into cfg by config.Load.
func OptionsFromConfig(cfg config.Config, width int) Options {
	opts := DefaultOptions()
	md := cfg.Markdown
	if md.Style != "" {
		opts.Style = md.Style
	}
	opts.EnableEmoji = md.EnableEmoji
	opts.PreserveNewLines = md.PreserveNewLines
	opts.TableWrap = md.TableWrap
	opts.InlineTableLinks = md.InlineTableLinks
	if width > 0 {
		opts.Width = width
	}
	return opts
}
