package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/carvetools/vaultcarve/internal/profile"
)

var rootsCmd = &cobra.Command{
	Use:   "roots [root-path]",
	Short: "List candidate storage roots without scanning",
	Long: `List the browser storage directories a scan would process, without
reading any of their contents. Useful to check what a scan will cover
before running it on a large backup.`,

	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRoots(args)
	},
}

func init() {
	rootCmd.AddCommand(rootsCmd)
}

func runRoots(args []string) error {
	req := requestFromConfig()
	locator := profile.NewLocator(profile.WithExtensionIDs(req.ExtensionIDs))
	roots := locator.Locate(args...)

	switch outputFormat {
	case "json":
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(roots)
	case "yaml":
		encoder := yaml.NewEncoder(os.Stdout)
		defer encoder.Close()
		return encoder.Encode(roots)
	default:
		if len(roots) == 0 {
			fmt.Println("No candidate storage roots found.")
			return nil
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		defer w.Flush()
		fmt.Fprintf(w, "KIND\tPATH\n")
		fmt.Fprintf(w, "----\t----\n")
		for _, root := range roots {
			fmt.Fprintf(w, "%s\t%s\n", root.Kind, root.Path)
		}
		return nil
	}
}
