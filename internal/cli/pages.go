package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var pagesCmd = &cobra.Command{
	Use:   "pages <file-key>",
	Short: "List the pages of a file",
	Args:  cobra.ExactArgs(1),
	Run:   runPages,
}

func runPages(cmd *cobra.Command, args []string) {
	c := initContext()
	defer c.Close()

	res := c.Engine.FilePages(context.Background(), args[0])
	if res.Notice != "" {
		color.New(color.FgYellow).Fprintf(os.Stderr, "%s\n", res.Notice)
	}
	for _, p := range res.Pages {
		fmt.Printf("%s  %s\n", p.ID, p.Name)
	}
}
