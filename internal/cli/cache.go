package cli

import (
	"context"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var clearCacheCmd = &cobra.Command{
	Use:   "clear-cache",
	Short: "Discard cached files, pages and refresh times",
	Long: `Remove the cached hierarchy, the per-project refresh ledger and any
cached page lists. The next listing refetches every project. Starred and
recently visited files are kept.`,
	Run: runClearCache,
}

func runClearCache(cmd *cobra.Command, args []string) {
	c := initContext()
	defer c.Close()

	if err := c.Engine.ClearCache(context.Background()); err != nil {
		exitError("failed to clear cache: %v", err)
	}
	color.New(color.FgGreen).Println("Cache cleared")
}
