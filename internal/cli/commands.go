package cli

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/specialistvlad/missiongraph/internal/app"
	"github.com/specialistvlad/missiongraph/internal/ctxlog"
	"github.com/spf13/cobra"
)

func addFormatFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("format", "f", "text", "Output format. Options: 'text', 'json' or 'yaml'.")
}

func outputFormat(cmd *cobra.Command) (format, error) {
	s, _ := cmd.Flags().GetString("format")
	f, err := parseFormat(s)
	if err != nil {
		return "", usageError(err)
	}
	return f, nil
}

func newPaletteCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "palette",
		Short: "Print the class tree of placeable kinds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := outputFormat(cmd)
			if err != nil {
				return err
			}
			a, err := setup(cmd)
			if err != nil {
				return err
			}
			all, _ := cmd.Flags().GetBool("all")
			entries := a.Palette(a.Context(), all)
			if f == formatText {
				return renderPaletteTree(cmd.OutOrStdout(), entries)
			}
			return encode(cmd.OutOrStdout(), f, entries)
		},
	}
	cmd.Flags().Bool("all", false, "Include abstract, hidden and deprecated kinds.")
	addFormatFlag(cmd)
	return cmd
}

func newPinsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pins KIND",
		Short: "Print the pins a node of KIND gets when placed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := outputFormat(cmd)
			if err != nil {
				return err
			}
			a, err := setup(cmd)
			if err != nil {
				return err
			}
			pins, err := a.Pins(a.Context(), args[0])
			if err != nil {
				code := ExitFailure
				if errors.Is(err, app.ErrUnknownKind) {
					code = ExitUsage
				}
				return &ExitError{Code: code, Message: err.Error()}
			}
			if f == formatText {
				return renderPins(cmd.OutOrStdout(), args[0], pins)
			}
			return encode(cmd.OutOrStdout(), f, pins)
		},
	}
	addFormatFlag(cmd)
	return cmd
}

func newValidateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Load and validate every mission document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := outputFormat(cmd)
			if err != nil {
				return err
			}
			a, err := setup(cmd)
			if err != nil {
				return err
			}
			reports, err := a.CheckMissions(a.Context())
			if err != nil {
				return &ExitError{Code: ExitFailure, Message: err.Error()}
			}

			if f == formatText {
				err = renderReports(cmd.OutOrStdout(), reports)
			} else {
				err = encode(cmd.OutOrStdout(), f, reports)
			}
			if err != nil {
				return err
			}

			failed := 0
			for _, r := range reports {
				if !r.OK() {
					failed++
				}
			}
			if failed > 0 {
				return &ExitError{Code: ExitInvalid, Message: fmt.Sprintf("%d of %d missions failed validation", failed, len(reports))}
			}
			return nil
		},
	}
	addFormatFlag(cmd)
	return cmd
}

func newWatchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch the assets directory and reprint the palette on change",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := setup(cmd)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			ctx = ctxlog.WithLogger(ctx, ctxlog.FromContext(a.Context()))

			out := cmd.OutOrStdout()
			if err := renderPaletteTree(out, a.Palette(ctx, false)); err != nil {
				return err
			}
			return a.Watch(ctx, func(ctx context.Context, pkg string) {
				headerColor.Fprintf(out, "\n# %s changed\n", pkg)
				if err := renderPaletteTree(out, a.Palette(ctx, false)); err != nil {
					ctxlog.FromContext(ctx).Error("Failed to print palette.", "error", err)
				}
			})
		},
	}
	cmd.Flags().Duration("debounce", 0, "How long file events settle before a rescan (0 uses the default).")
	cmd.Flags().Int("status-port", 0, "Port for the HTTP status server. 0 is disabled.")
	return cmd
}
