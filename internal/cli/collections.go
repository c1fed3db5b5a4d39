package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/kilupskalvis/figfiles/internal/collection"
	"github.com/kilupskalvis/figfiles/internal/models"
	"github.com/spf13/cobra"
)

var starCmd = &cobra.Command{
	Use:   "star <file-key>",
	Short: "Star a file",
	Long: `Add a cached file to the starred list. The most recently starred
file comes first and the list keeps at most 10 entries.`,
	Args: cobra.ExactArgs(1),
	Run:  runStar,
}

var unstarCmd = &cobra.Command{
	Use:   "unstar <file-key>",
	Short: "Remove a file from the starred list",
	Args:  cobra.ExactArgs(1),
	Run:   runUnstar,
}

var starredCmd = &cobra.Command{
	Use:   "starred",
	Short: "List starred files",
	Run:   runStarred,
}

var visitCmd = &cobra.Command{
	Use:   "visit <file-key>",
	Short: "Record a file as recently visited",
	Args:  cobra.ExactArgs(1),
	Run:   runVisit,
}

var recentCmd = &cobra.Command{
	Use:   "recent",
	Short: "List recently visited files",
	Run:   runRecent,
}

var (
	starredClear bool
	recentClear  bool
)

func init() {
	starredCmd.Flags().BoolVar(&starredClear, "clear", false, "Remove every starred file")
	recentCmd.Flags().BoolVar(&recentClear, "clear", false, "Forget every visited file")
}

// lookupFile finds key in the cached hierarchy.
func lookupFile(ctx context.Context, c *cmdContext, key string) models.FileRecord {
	h, _ := c.Engine.Snapshot().Load(ctx)
	f, ok := h.FindFile(key)
	if !ok {
		exitError("file %s is not cached, run 'figfiles files' first", key)
	}
	return f
}

func runStar(cmd *cobra.Command, args []string) {
	ctx := context.Background()
	c := initContext()
	defer c.Close()

	f := lookupFile(ctx, c, args[0])
	if err := c.Starred.Add(ctx, f); err != nil {
		exitError("%v", err)
	}
	color.New(color.FgGreen).Printf("Starred %s\n", f.Name)
}

func runUnstar(cmd *cobra.Command, args []string) {
	ctx := context.Background()
	c := initContext()
	defer c.Close()

	f := models.FileRecord{Key: args[0]}
	if !c.Starred.Contains(ctx, f) {
		exitError("file %s is not starred", args[0])
	}
	if err := c.Starred.Remove(ctx, f); err != nil {
		exitError("%v", err)
	}
	fmt.Printf("Unstarred %s\n", args[0])
}

func runStarred(cmd *cobra.Command, args []string) {
	listCollection(func(c *cmdContext) *collection.Collection { return c.Starred }, starredClear)
}

func runVisit(cmd *cobra.Command, args []string) {
	ctx := context.Background()
	c := initContext()
	defer c.Close()

	f := lookupFile(ctx, c, args[0])
	if err := c.Visited.Add(ctx, f); err != nil {
		exitError("%v", err)
	}
}

func runRecent(cmd *cobra.Command, args []string) {
	listCollection(func(c *cmdContext) *collection.Collection { return c.Visited }, recentClear)
}

func listCollection(pick func(*cmdContext) *collection.Collection, wipe bool) {
	ctx := context.Background()
	c := initContext()
	defer c.Close()

	coll := pick(c)
	if wipe {
		if err := coll.Clear(ctx); err != nil {
			exitError("%v", err)
		}
		fmt.Printf("Cleared %s files\n", coll.Name())
		return
	}

	files := coll.List(ctx)
	if len(files) == 0 {
		fmt.Printf("No %s files\n", coll.Name())
		return
	}
	printFiles(os.Stdout, files)
}
