// Package profile enumerates candidate browser storage directories: Firefox
// profiles and Chromium extension-storage directories. Absence of a profile
// is a normal outcome, never an error; anything unreadable is skipped.
package profile

import "path/filepath"

// RootKind classifies what a storage root is expected to contain, which
// decides how the scan service walks it.
type RootKind string

const (
	// KindChromiumExtension is a Chromium "Local Extension Settings"
	// directory holding LevelDB-style log and table files.
	KindChromiumExtension RootKind = "chromium-extension"
	// KindFirefoxProfile is a Firefox profile directory holding IndexedDB
	// sqlite files and snappy-framed sidecar files.
	KindFirefoxProfile RootKind = "firefox-profile"
	// KindGeneric is a user-supplied directory scanned with every strategy.
	KindGeneric RootKind = "directory"
)

// StorageRoot is a directory hypothesized to contain one profile's storage.
// Roots are created by the locator and never mutated.
type StorageRoot struct {
	Path string   `json:"path" yaml:"path"`
	Kind RootKind `json:"kind" yaml:"kind"`
}

// RootHint is a path template a platform expects browser storage under.
type RootHint struct {
	// Path is the absolute candidate directory.
	Path string
	// Browser is "firefox" or "chromium".
	Browser string
}

// HintProvider maps an OS identity to candidate path templates. It is a
// pure function so platform conventions stay swappable without touching the
// scanning core.
type HintProvider func(goos, home string, env func(string) string) []RootHint

// DefaultHints returns the conventional browser storage locations for an
// operating system.
func DefaultHints(goos, home string, env func(string) string) []RootHint {
	var hints []RootHint

	add := func(browser string, elem ...string) {
		hints = append(hints, RootHint{Path: filepath.Join(elem...), Browser: browser})
	}

	switch goos {
	case "windows":
		if appdata := env("APPDATA"); appdata != "" {
			add("firefox", appdata, "Mozilla", "Firefox")
		}
		if local := env("LOCALAPPDATA"); local != "" {
			add("chromium", local, "Google", "Chrome", "User Data")
			add("chromium", local, "Chromium", "User Data")
			add("chromium", local, "BraveSoftware", "Brave-Browser", "User Data")
			add("chromium", local, "Microsoft", "Edge", "User Data")
		}
	case "darwin":
		add("firefox", home, "Library", "Application Support", "Firefox")
		add("chromium", home, "Library", "Application Support", "Google", "Chrome")
		add("chromium", home, "Library", "Application Support", "Chromium")
		add("chromium", home, "Library", "Application Support", "BraveSoftware", "Brave-Browser")
	default:
		add("firefox", home, ".mozilla", "firefox")
		add("chromium", home, ".config", "google-chrome")
		add("chromium", home, ".config", "chromium")
		add("chromium", home, ".config", "BraveSoftware", "Brave-Browser")
	}

	return hints
}

// DefaultExtensionIDs lists the extension storage namespaces scanned when
// none are configured. The default is the MetaMask extension ID.
func DefaultExtensionIDs() []string {
	return []string{"nkbihfbeogaeaoehlefnkodbefgpgknn"}
}
