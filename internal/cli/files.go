package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/kilupskalvis/figfiles/internal/core"
	"github.com/kilupskalvis/figfiles/internal/metrics"
	"github.com/kilupskalvis/figfiles/internal/models"
	"github.com/kilupskalvis/figfiles/internal/remote"
	"github.com/spf13/cobra"
)

var filesCmd = &cobra.Command{
	Use:   "files",
	Short: "List files by team and project",
	Long: `List every file of the configured teams, grouped by team and project.

Only projects whose cached files have expired are refetched. When the
teams cannot be enumerated, the last cached listing is shown instead.

Filters:
  All                     Every team (default)
  team=<team>             One team
  <team>&$%<project>      One project of one team

Examples:
  figfiles files
  figfiles files --filter "team=Design"
  figfiles files --json`,
	Run: runFiles,
}

var filtersCmd = &cobra.Command{
	Use:   "filters",
	Short: "List the filter values for the cached hierarchy",
	Run:   runFilters,
}

var (
	filesFilter string
	filesJSON   bool
	filesStats  bool
)

func init() {
	filesCmd.Flags().StringVarP(&filesFilter, "filter", "f", core.FilterAll, "Restrict output to a team or project")
	filesCmd.Flags().BoolVar(&filesJSON, "json", false, "Print the hierarchy as JSON")
	filesCmd.Flags().BoolVar(&filesStats, "stats", false, "Print request and cache counters")
}

func runFiles(cmd *cobra.Command, args []string) {
	ctx := context.Background()
	c := initContext()
	defer c.Close()

	if len(remote.ParseTeamIDs(c.Config.TeamIDs)) == 0 {
		exitError("no team ids configured, run 'figfiles init' or set FIGFILES_TEAM_IDS")
	}

	res := c.Engine.ResolveHierarchy(ctx)
	if res.Notice != "" {
		color.New(color.FgYellow).Fprintf(os.Stderr, "%s\n", res.Notice)
	}

	h := core.ParseFilter(filesFilter).Apply(res.Hierarchy)
	if filesJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(h); err != nil {
			exitError("failed to encode hierarchy: %v", err)
		}
	} else {
		starred := make(map[string]bool)
		for _, f := range c.Starred.List(ctx) {
			starred[f.Key] = true
		}
		printHierarchy(os.Stdout, h, starred)
		fmt.Printf("\n%d files (%s)\n", h.FileCount(), res.Source)
	}

	if filesStats {
		printStats(os.Stdout, c.Metrics)
	}
}

func runFilters(cmd *cobra.Command, args []string) {
	c := initContext()
	defer c.Close()

	h, ok := c.Engine.Snapshot().Load(context.Background())
	if !ok {
		exitError("nothing cached yet, run 'figfiles files' first")
	}
	for _, v := range filterValues(h) {
		fmt.Println(v)
	}
}

// filterValues lists every filter accepted by --filter for h.
func filterValues(h models.Hierarchy) []string {
	values := []string{core.FilterAll}
	for _, team := range h {
		values = append(values, core.TeamFilterValue(team.Name))
		for _, p := range team.Projects {
			values = append(values, core.ProjectFilterValue(team.Name, p.Name))
		}
	}
	return values
}

// printHierarchy writes h as an indented tree, marking starred files.
func printHierarchy(w io.Writer, h models.Hierarchy, starred map[string]bool) {
	cyan := color.New(color.FgCyan, color.Bold)
	yellow := color.New(color.FgYellow)

	for _, team := range h {
		cyan.Fprintln(w, team.Name)
		for _, p := range team.Projects {
			fmt.Fprintf(w, "  %s (%d files)\n", p.Name, len(p.Files))
			for _, f := range p.Files {
				mark := " "
				if starred[f.Key] {
					mark = yellow.Sprint("*")
				}
				fmt.Fprintf(w, "  %s %s  %s", mark, f.Key, f.Name)
				if n := len(f.Branches); n > 0 {
					fmt.Fprintf(w, " [%d branches]", n)
				}
				fmt.Fprintln(w)
			}
		}
	}
}

// printFiles writes a flat list of files.
func printFiles(w io.Writer, files []models.FileRecord) {
	for _, f := range files {
		fmt.Fprintf(w, "%s  %s", f.Key, f.Name)
		if f.LastModified != "" {
			fmt.Fprintf(w, "  (%s)", f.LastModified)
		}
		fmt.Fprintln(w)
	}
}

func printStats(w io.Writer, m *metrics.Metrics) {
	samples, err := m.Snapshot()
	if err != nil {
		exitError("failed to gather stats: %v", err)
	}
	fmt.Fprintln(w)
	for _, s := range samples {
		fmt.Fprintf(w, "%s %g\n", s.Name, s.Value)
	}
}
