package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/carvetools/vaultcarve/internal/profile"
	"github.com/carvetools/vaultcarve/internal/types"
	"github.com/carvetools/vaultcarve/pkg/app"
	"github.com/carvetools/vaultcarve/pkg/app/scan"
)

var (
	scanExtensionIDs []string
	scanTokens       []string
	scanWorkers      int
)

var scanCmd = &cobra.Command{
	Use:   "scan [root-path]",
	Short: "Scan browser storage for vault candidates",
	Long: `Scan browser profile storage for serialized vault objects.

With no argument the OS-conventional browser storage locations are scanned.
With a path argument only that directory tree is scanned.

A run that finds nothing still exits 0; absence of a vault is a normal
outcome. A non-zero exit means the filesystem itself could not be read.

Examples:
  # Scan the default browser locations
  vaultcarve scan

  # Scan a copied profile directory, machine-readable output
  vaultcarve scan /mnt/backup/Profiles/x1a2b3.default -o json

  # Retarget the signature at another secret shape
  vaultcarve scan --token '"vault":' --token '"mnemonic":'`,

	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runScan(args)
	},
}

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().StringSliceVar(&scanExtensionIDs, "ext-id", nil, "Chromium extension ID(s) to look for")
	scanCmd.Flags().StringSliceVar(&scanTokens, "token", nil, "signature token(s) to scan for")
	scanCmd.Flags().IntVar(&scanWorkers, "workers", 0, "worker pool size (0 = automatic)")
}

func runScan(args []string) error {
	req := requestFromConfig()
	req.RootPaths = args
	if len(scanExtensionIDs) > 0 {
		req.ExtensionIDs = scanExtensionIDs
	}
	if len(scanTokens) > 0 {
		req.Tokens = scanTokens
	}
	if scanWorkers > 0 {
		req.Workers = scanWorkers
	}

	// An explicit root that plainly cannot be read is the one fatal case.
	// A root that simply does not exist is not: no profile, no vault,
	// clean exit.
	for _, root := range req.RootPaths {
		if err := profile.CheckAccess(root); err != nil {
			if errors.Is(err, types.ErrFilesystemUnreadable) {
				return app.NewError(app.ErrCodeRootAccess, "cannot read storage root", err)
			}
			if !quiet {
				fmt.Fprintf(os.Stderr, "Note: %v\n", err)
			}
		}
	}

	ctx := app.NewContext()
	ctx.OutputFormat = outputFormat
	ctx.Verbose = verbose
	ctx.Quiet = quiet

	// Interrupt aborts cooperatively between files; candidates already
	// found are still reported.
	runCtx, stop := signal.NotifyContext(ctx.Context, os.Interrupt)
	defer stop()
	ctx.Context = runCtx

	response, err := scan.Handle(ctx, req)
	if err != nil {
		return err
	}

	if err := scan.FormatOutput(response, outputFormat); err != nil {
		return err
	}
	if response.Interrupted && !quiet {
		fmt.Fprintln(os.Stderr, "Scan interrupted; results above are partial.")
	}
	return nil
}
