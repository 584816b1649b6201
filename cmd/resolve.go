package cmd

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"folio/internal/resolver"
)

var flagResolveJSON bool

var resolveCmd = &cobra.Command{
	Use:   "resolve <url>",
	Short: "Resolve a URL to sanitized embed HTML",
	Args:  cobra.ExactArgs(1),
	RunE:  resolveRun,
}

func init() {
	resolveCmd.Flags().BoolVarP(&flagResolveJSON, "json", "j", false, "Output as JSON")
}

func resolveRun(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	r, _ := newResolver()
	embed, err := r.Resolve(ctx, args[0])
	if err != nil {
		debugf("resolve failed: kind=%s err=%v", resolver.KindOf(err), err)
		if resolver.Temporary(err) {
			return fmt.Errorf("resolving %s: %w (try again later)", args[0], err)
		}
		return fmt.Errorf("resolving %s: %w", args[0], err)
	}

	if flagResolveJSON {
		out := map[string]any{
			"url":      embed.SourceURL,
			"provider": embed.Provider.String(),
			"html":     embed.HTML,
		}
		return writeJSON(cmd.OutOrStdout(), out)
	}

	fmt.Fprintln(cmd.OutOrStdout(), embed.HTML)
	return nil
}
