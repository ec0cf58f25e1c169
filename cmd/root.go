package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global output flags only
	verbose      bool
	quiet        bool
	outputFormat string
	cfgFile      string
)

var rootCmd = &cobra.Command{
	Use:   "vaultcarve",
	Short: "Recover browser-extension vault blobs from profile storage",
	Long: `vaultcarve is a cross-platform, read-only command-line tool that recovers
an extension's encrypted vault (ciphertext, iv, salt) from browser profile
storage on disk, after the vault is no longer reachable through the browser.

It reads Chromium extension storage log segments directly, tolerating
truncated, compacted and corrupted files, and also scans Firefox IndexedDB
sqlite files and snappy-framed storage files. It performs no decryption and
never writes to the scanned storage; recovered blobs are handed to external
decryption tooling.

Commands:
  scan    Scan browser storage for vault candidates
  roots   List candidate storage roots without scanning`,
	Version: "0.1.0-dev",
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Only global output control flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress output except errors")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "text", "output format (text, json, yaml)")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default $HOME/.vaultcarve.yaml)")
}
