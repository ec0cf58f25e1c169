package profile

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"gopkg.in/ini.v1"

	"github.com/carvetools/vaultcarve/internal/types"
)

// Locator enumerates storage roots worth scanning. It performs only
// filesystem reads and silently skips anything absent or unreadable.
type Locator struct {
	hints        HintProvider
	extensionIDs []string
}

// Option configures a Locator.
type Option func(*Locator)

// WithHintProvider replaces the per-OS path convention provider.
func WithHintProvider(p HintProvider) Option {
	return func(l *Locator) { l.hints = p }
}

// WithExtensionIDs replaces the Chromium extension storage namespaces.
func WithExtensionIDs(ids []string) Option {
	return func(l *Locator) {
		if len(ids) > 0 {
			l.extensionIDs = ids
		}
	}
}

// NewLocator creates a locator with the platform default hints.
func NewLocator(opts ...Option) *Locator {
	l := &Locator{
		hints:        DefaultHints,
		extensionIDs: DefaultExtensionIDs(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Locate returns the readable storage roots under the given explicit paths,
// or under the OS-conventional locations when none are given. A root that
// does not exist yields nothing; that is the normal no-profile outcome.
func (l *Locator) Locate(explicit ...string) []StorageRoot {
	if len(explicit) > 0 {
		var roots []StorageRoot
		for _, path := range explicit {
			if !readableDir(path) {
				continue
			}
			roots = append(roots, StorageRoot{Path: path, Kind: KindGeneric})
		}
		return roots
	}

	home, err := os.UserHomeDir()
	if err != nil {
		home = ""
	}

	var roots []StorageRoot
	for _, hint := range l.hints(runtime.GOOS, home, os.Getenv) {
		switch hint.Browser {
		case "firefox":
			roots = append(roots, l.firefoxProfiles(hint.Path)...)
		case "chromium":
			roots = append(roots, l.chromiumExtensionDirs(hint.Path)...)
		}
	}
	return roots
}

// CheckAccess validates that an explicitly supplied root can be read at
// all. A missing path is reported as types.ErrProfileNotFound (recoverable,
// exit 0); a present but unreadable one as types.ErrFilesystemUnreadable.
func CheckAccess(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", types.ErrProfileNotFound, path)
		}
		return fmt.Errorf("%w: %s: %v", types.ErrFilesystemUnreadable, path, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", types.ErrProfileNotFound, path)
	}
	if _, err := os.ReadDir(path); err != nil {
		return fmt.Errorf("%w: %s: %v", types.ErrFilesystemUnreadable, path, err)
	}
	return nil
}

// firefoxProfiles resolves the profile directories under one Firefox
// installation root via profiles.ini, falling back to the *.default* glob
// older installations used.
func (l *Locator) firefoxProfiles(root string) []StorageRoot {
	if !readableDir(root) {
		return nil
	}

	seen := map[string]bool{}
	var roots []StorageRoot
	keep := func(dir string) {
		if dir == "" || seen[dir] || !readableDir(dir) {
			return
		}
		seen[dir] = true
		roots = append(roots, StorageRoot{Path: dir, Kind: KindFirefoxProfile})
	}

	if cfg, err := ini.Load(filepath.Join(root, "profiles.ini")); err == nil {
		for _, section := range cfg.Sections() {
			name := section.Name()
			switch {
			case strings.HasPrefix(name, "Profile"):
				if section.Key("Default").String() != "1" {
					continue
				}
				path := section.Key("Path").String()
				if path == "" {
					continue
				}
				if section.HasKey("IsRelative") && section.Key("IsRelative").String() == "0" {
					keep(path)
				} else {
					keep(filepath.Join(root, path))
				}
			case strings.HasPrefix(name, "Install"):
				if def := section.Key("Default").String(); def != "" {
					keep(filepath.Join(root, def))
				}
			}
		}
	}

	if len(roots) == 0 {
		for _, pattern := range []string{"*.default*", filepath.Join("Profiles", "*.default*")} {
			matches, _ := filepath.Glob(filepath.Join(root, pattern))
			for _, m := range matches {
				keep(m)
			}
		}
	}

	return roots
}

// chromiumExtensionDirs finds "Local Extension Settings/<id>" directories
// for the configured extension IDs across a Chromium user-data dir's
// profiles.
func (l *Locator) chromiumExtensionDirs(userData string) []StorageRoot {
	if !readableDir(userData) {
		return nil
	}

	profiles := []string{"Default"}
	matches, _ := filepath.Glob(filepath.Join(userData, "Profile *"))
	for _, m := range matches {
		profiles = append(profiles, filepath.Base(m))
	}

	var roots []StorageRoot
	for _, prof := range profiles {
		for _, ext := range l.extensionIDs {
			dir := filepath.Join(userData, prof, "Local Extension Settings", ext)
			if readableDir(dir) {
				roots = append(roots, StorageRoot{Path: dir, Kind: KindChromiumExtension})
			}
		}
	}
	return roots
}

func readableDir(path string) bool {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return false
	}
	_, err = os.ReadDir(path)
	return err == nil
}
