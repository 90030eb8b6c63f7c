package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/specialistvlad/missiongraph/internal/app"
	"github.com/spf13/cobra"
)

// NewRootCommand creates the missiongraph command tree. Command output goes
// to outW; logs go to the command's error stream.
func NewRootCommand(outW io.Writer) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "missiongraph",
		Short: "Inspect mission node kinds, their pins and mission documents",
		Long: `missiongraph loads node kinds, record types and mission documents from an
assets directory and reports what a mission graph editor would show: the
palette of placeable kinds, the pins a node of a kind gets, and whether each
mission document loads and validates.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			if noColor, _ := cmd.Flags().GetBool("no-color"); noColor {
				color.NoColor = true
			}
		},
	}
	rootCmd.SetOut(outW)
	addConfigFlags(rootCmd)

	rootCmd.AddCommand(newPaletteCommand())
	rootCmd.AddCommand(newPinsCommand())
	rootCmd.AddCommand(newValidateCommand())
	rootCmd.AddCommand(newWatchCommand())
	return rootCmd
}

// Execute runs the command tree with args.
func Execute(ctx context.Context, outW, errW io.Writer, args []string) error {
	rootCmd := NewRootCommand(outW)
	rootCmd.SetErr(errW)
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

// setup loads the configuration and the assets. The app's logs go to the
// command's error stream.
func setup(cmd *cobra.Command) (*app.App, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, usageError(err)
	}

	a := app.NewApp(cmd.ErrOrStderr(), cfg)
	if err := a.Load(a.Context()); err != nil {
		return nil, &ExitError{Code: ExitFailure, Message: fmt.Sprintf("failed to load assets: %v", err)}
	}
	return a, nil
}
