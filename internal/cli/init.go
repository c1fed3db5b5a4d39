package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/kilupskalvis/figfiles/internal/config"
	"github.com/kilupskalvis/figfiles/internal/remote"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the figfiles configuration",
	Long: `Create a configuration file in $FIGFILES_HOME (default ~/.figfiles).

Team ids and tokens can also be supplied at runtime through
FIGFILES_TEAM_IDS, FIGFILES_PERSONAL_ACCESS_TOKEN and FIGFILES_OAUTH_TOKEN.

Examples:
  figfiles init --team-ids 12345,67890 --token figd_...`,
	Run: runInit,
}

var (
	initTeamIDs string
	initToken   string
)

func init() {
	initCmd.Flags().StringVar(&initTeamIDs, "team-ids", "", "Comma-separated team ids")
	initCmd.Flags().StringVar(&initToken, "token", "", "Personal access token")
}

func runInit(cmd *cobra.Command, args []string) {
	dir, err := config.ResolveHome()
	if err != nil {
		exitError("%v", err)
	}

	if len(remote.ParseTeamIDs(initTeamIDs)) == 0 {
		fmt.Println("Warning: no team ids given, set FIGFILES_TEAM_IDS before listing files")
	}

	cfg, err := config.Initialize(dir, initTeamIDs, initToken)
	if err != nil {
		exitError("failed to initialize config: %v", err)
	}

	green := color.New(color.FgGreen)
	green.Printf("Initialized figfiles in %s\n", cfg.Path())
	fmt.Printf("Store: %s (%s)\n", cfg.StoreBackend, cfg.DatabasePath())
}
