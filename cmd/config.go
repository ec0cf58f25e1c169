package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/viper"

	"github.com/carvetools/vaultcarve/pkg/app/scan"
)

// Configuration keys. Signature tokens and window bounds are configuration
// rather than constants so the scanner can be retargeted at other
// serialized-secret shapes without code changes.
const (
	keyTokens       = "scanner.tokens"
	keyWindowBefore = "scanner.window_before"
	keyWindowMax    = "scanner.window_max"
	keyWorkers      = "scan.workers"
	keyMaxFileSize  = "scan.max_file_size"
	keyExtensionIDs = "browser.extension_ids"
)

// initConfig sets defaults and reads the optional config file plus
// VAULTCARVE_* environment overrides.
func initConfig() {
	viper.SetDefault(keyTokens, []string{`"salt":`})
	viper.SetDefault(keyWindowBefore, 5000)
	viper.SetDefault(keyWindowMax, 10000)
	viper.SetDefault(keyWorkers, 0)
	viper.SetDefault(keyMaxFileSize, 256<<20)
	viper.SetDefault(keyExtensionIDs, []string{"nkbihfbeogaeaoehlefnkodbefgpgknn"})

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
			viper.SetConfigName(".vaultcarve")
			viper.SetConfigType("yaml")
		}
	}

	viper.SetEnvPrefix("VAULTCARVE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && verbose && !quiet {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// requestFromConfig builds a scan request from the resolved configuration.
func requestFromConfig() *scan.Request {
	return &scan.Request{
		ExtensionIDs: viper.GetStringSlice(keyExtensionIDs),
		Tokens:       viper.GetStringSlice(keyTokens),
		WindowBefore: viper.GetInt(keyWindowBefore),
		WindowMax:    viper.GetInt(keyWindowMax),
		Workers:      viper.GetInt(keyWorkers),
		MaxFileSize:  viper.GetInt64(keyMaxFileSize),
	}
}
