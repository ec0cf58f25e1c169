package profile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carvetools/vaultcarve/internal/types"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func hintsFor(hints ...RootHint) HintProvider {
	return func(goos, home string, env func(string) string) []RootHint {
		return hints
	}
}

func TestLocateExplicitRoots(t *testing.T) {
	dir := t.TempDir()

	roots := NewLocator().Locate(dir, filepath.Join(dir, "does-not-exist"))

	require.Len(t, roots, 1)
	assert.Equal(t, dir, roots[0].Path)
	assert.Equal(t, KindGeneric, roots[0].Kind)
}

func TestLocateNonexistentRootYieldsNothing(t *testing.T) {
	roots := NewLocator().Locate(filepath.Join(t.TempDir(), "missing"))

	assert.Empty(t, roots)
}

func TestLocateFirefoxProfilesFromIni(t *testing.T) {
	ffRoot := t.TempDir()
	profileDir := filepath.Join(ffRoot, "x1a2b3.default-release")
	require.NoError(t, os.MkdirAll(profileDir, 0o755))

	absolute := t.TempDir()

	writeFile(t, filepath.Join(ffRoot, "profiles.ini"), `[Profile0]
Name=default
IsRelative=1
Path=x1a2b3.default-release
Default=1

[Profile1]
Name=secondary
IsRelative=1
Path=other.profile

[Profile2]
Name=absolute
IsRelative=0
Path=`+absolute+`
Default=1
`)

	locator := NewLocator(WithHintProvider(hintsFor(RootHint{Path: ffRoot, Browser: "firefox"})))
	roots := locator.Locate()

	require.Len(t, roots, 2)
	assert.Equal(t, profileDir, roots[0].Path)
	assert.Equal(t, KindFirefoxProfile, roots[0].Kind)
	assert.Equal(t, absolute, roots[1].Path)
}

func TestLocateFirefoxGlobFallback(t *testing.T) {
	// No profiles.ini: older layouts are found by the *.default* glob.
	ffRoot := t.TempDir()
	profileDir := filepath.Join(ffRoot, "abcd1234.default")
	require.NoError(t, os.MkdirAll(profileDir, 0o755))

	locator := NewLocator(WithHintProvider(hintsFor(RootHint{Path: ffRoot, Browser: "firefox"})))
	roots := locator.Locate()

	require.Len(t, roots, 1)
	assert.Equal(t, profileDir, roots[0].Path)
}

func TestLocateChromiumExtensionDirs(t *testing.T) {
	userData := t.TempDir()
	extDir := filepath.Join(userData, "Default", "Local Extension Settings", "nkbihfbeogaeaoehlefnkodbefgpgknn")
	require.NoError(t, os.MkdirAll(extDir, 0o755))
	profileExt := filepath.Join(userData, "Profile 2", "Local Extension Settings", "nkbihfbeogaeaoehlefnkodbefgpgknn")
	require.NoError(t, os.MkdirAll(profileExt, 0o755))

	locator := NewLocator(WithHintProvider(hintsFor(RootHint{Path: userData, Browser: "chromium"})))
	roots := locator.Locate()

	require.Len(t, roots, 2)
	assert.Equal(t, KindChromiumExtension, roots[0].Kind)
	assert.ElementsMatch(t, []string{extDir, profileExt}, []string{roots[0].Path, roots[1].Path})
}

func TestLocateCustomExtensionID(t *testing.T) {
	userData := t.TempDir()
	extDir := filepath.Join(userData, "Default", "Local Extension Settings", "abcdefghijklmnopabcdefghijklmnop")
	require.NoError(t, os.MkdirAll(extDir, 0o755))

	locator := NewLocator(
		WithHintProvider(hintsFor(RootHint{Path: userData, Browser: "chromium"})),
		WithExtensionIDs([]string{"abcdefghijklmnopabcdefghijklmnop"}),
	)
	roots := locator.Locate()

	require.Len(t, roots, 1)
	assert.Equal(t, extDir, roots[0].Path)
}

func TestLocateAbsentHintRootsSkipped(t *testing.T) {
	locator := NewLocator(WithHintProvider(hintsFor(
		RootHint{Path: filepath.Join(t.TempDir(), "nope"), Browser: "firefox"},
		RootHint{Path: filepath.Join(t.TempDir(), "nada"), Browser: "chromium"},
	)))

	assert.Empty(t, locator.Locate())
}

func TestCheckAccess(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "plain-file")
	writeFile(t, file, "x")

	assert.NoError(t, CheckAccess(dir))
	assert.ErrorIs(t, CheckAccess(filepath.Join(dir, "missing")), types.ErrProfileNotFound)
	assert.ErrorIs(t, CheckAccess(file), types.ErrProfileNotFound)
}

func TestDefaultHintsPerOS(t *testing.T) {
	env := func(key string) string {
		switch key {
		case "APPDATA":
			return `C:\Users\u\AppData\Roaming`
		case "LOCALAPPDATA":
			return `C:\Users\u\AppData\Local`
		}
		return ""
	}

	tests := []struct {
		goos     string
		browsers map[string]bool
	}{
		{goos: "linux", browsers: map[string]bool{"firefox": true, "chromium": true}},
		{goos: "darwin", browsers: map[string]bool{"firefox": true, "chromium": true}},
		{goos: "windows", browsers: map[string]bool{"firefox": true, "chromium": true}},
	}

	for _, tt := range tests {
		t.Run(tt.goos, func(t *testing.T) {
			hints := DefaultHints(tt.goos, "/home/u", env)
			require.NotEmpty(t, hints)

			seen := map[string]bool{}
			for _, h := range hints {
				seen[h.Browser] = true
				assert.NotEmpty(t, h.Path)
			}
			assert.Equal(t, tt.browsers, seen)
		})
	}
}
