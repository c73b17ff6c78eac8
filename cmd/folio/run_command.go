package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"folio/internal/config"
	"folio/internal/logging"
	"folio/internal/relocate"
)

type runResult struct {
	SessionID string          `json:"session_id"`
	Totals    relocate.Totals `json:"totals"`
	Report    relocate.Report `json:"report"`
}

func newRunCommand(ctx *commandContext) *cobra.Command {
	var baseDir string
	var destination string
	var sources []string
	var dryRun bool
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Move every source folder entry into the destination folder",
		Long: `Move every entry of each source folder into the destination folder, then
delete source folders left empty. Sources are processed in order; when two
sources hold an entry with the same name, the later one replaces the earlier.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := cfg.Apply(config.Overrides{BaseDir: baseDir, Destination: destination, Sources: sources}); err != nil {
				return fmt.Errorf("apply flags: %w", err)
			}

			logOut := cmd.OutOrStdout()
			if jsonOutput {
				logOut = cmd.ErrOrStderr()
			}
			sessionID := logging.NewSessionID()
			logger, closeLog, err := ctx.newLogger(logOut, sessionID)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			defer func() {
				if err := closeLog(); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "close log file: %v\n", err)
				}
			}()

			report, runErr := relocate.New(logger).Run(cmd.Context(), relocate.Request{
				BaseDir:     cfg.Paths.BaseDir,
				Sources:     cfg.Relocation.Sources,
				Destination: cfg.Relocation.Destination,
				DryRun:      dryRun,
			})
			if runErr != nil && !errors.Is(runErr, context.Canceled) {
				return fmt.Errorf("relocate: %w", runErr)
			}

			if jsonOutput {
				if err := writeJSON(cmd, runResult{SessionID: sessionID, Totals: report.Totals(), Report: report}); err != nil {
					return err
				}
			} else {
				fmt.Fprint(cmd.OutOrStdout(), renderRunSummary(report, cfg.Relocation.Sources))
			}
			return runErr
		},
	}

	cmd.Flags().StringVar(&baseDir, "base", "", "Base data directory (overrides paths.base_dir)")
	cmd.Flags().StringVar(&destination, "dest", "", "Destination folder name (overrides relocation.destination)")
	cmd.Flags().StringArrayVarP(&sources, "source", "s", nil, "Source folder name; repeat to list several, in processing order")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would move without touching the filesystem")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the run report as JSON; diagnostics go to stderr")
	return cmd
}
