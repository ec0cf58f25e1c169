package sigscan

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const vaultJSON = `{"data":"AAA==","iv":"BBB==","salt":"CCC="}`

func TestScanFindsVaultObject(t *testing.T) {
	s := NewScanner(DefaultConfig())

	found := s.Scan("mem", []byte(vaultJSON))

	require.Len(t, found, 1)
	cand := found[0]
	assert.Equal(t, `"salt":`, cand.Token)
	assert.Equal(t, []byte(vaultJSON), cand.Window)
	require.NotNil(t, cand.Fields)
	assert.Equal(t, "AAA==", cand.Fields.Data)
	assert.Equal(t, "BBB==", cand.Fields.IV)
	assert.Equal(t, "CCC=", cand.Fields.Salt)
	assert.NotEmpty(t, cand.ID)
	assert.Equal(t, "mem", cand.Source)
}

func TestScanVaultEmbeddedInNoise(t *testing.T) {
	s := NewScanner(DefaultConfig())
	buf := []byte(strings.Repeat("x", 300) + vaultJSON + strings.Repeat("y", 300))

	found := s.Scan("mem", buf)

	require.Len(t, found, 1)
	assert.Equal(t, []byte(vaultJSON), found[0].Window)
	require.NotNil(t, found[0].Fields)
	assert.Equal(t, "CCC=", found[0].Fields.Salt)
}

func TestScanVaultInsideWrapperObject(t *testing.T) {
	// The vault often sits inside further container objects; the scanner
	// must still snap to a decodable envelope.
	s := NewScanner(DefaultConfig())
	buf := []byte(`{"engine":{"vault":"` + `x` + `"},"inner":` + vaultJSON + `}`)

	found := s.Scan("mem", buf)

	require.Len(t, found, 1)
	require.NotNil(t, found[0].Fields)
	assert.Equal(t, "AAA==", found[0].Fields.Data)
}

func TestScanNoMatchIsEmpty(t *testing.T) {
	s := NewScanner(DefaultConfig())

	found := s.Scan("mem", []byte(`{"nothing":"of interest"}`))

	assert.Empty(t, found)
}

func TestScanMultipleOccurrences(t *testing.T) {
	s := NewScanner(DefaultConfig())
	buf := []byte(vaultJSON + "garbage" + vaultJSON)

	found := s.Scan("mem", buf)

	// One candidate per marker occurrence; no dedup here.
	require.Len(t, found, 2)
	assert.NotEqual(t, found[0].Offset, found[1].Offset)
}

func TestScanMultipleTokens(t *testing.T) {
	s := NewScanner(Config{Tokens: []string{`"salt":`, `"vault":`}})
	buf := []byte(`{"vault":"opaque"} and ` + vaultJSON)

	found := s.Scan("mem", buf)

	require.Len(t, found, 2)
	tokens := []string{found[0].Token, found[1].Token}
	assert.Contains(t, tokens, `"salt":`)
	assert.Contains(t, tokens, `"vault":`)
}

func TestScanNonJSONMatchStillYieldsWindow(t *testing.T) {
	// A marker in bytes that never parse as JSON still produces a bounded
	// window; the payload may be wrapped in an encoding the scanner does
	// not understand.
	s := NewScanner(DefaultConfig())
	buf := []byte("\x00\x01binary\xff\"salt\":garbage without structure")

	found := s.Scan("mem", buf)

	require.Len(t, found, 1)
	assert.Nil(t, found[0].Fields)
	assert.Contains(t, string(found[0].Window), `"salt":`)
}

func TestScanWindowBounds(t *testing.T) {
	s := NewScanner(Config{Tokens: []string{`"salt":`}, WindowBefore: 10, WindowMax: 30})

	// The opening brace sits beyond WindowBefore, so the window starts at
	// the backtrack bound instead.
	buf := []byte(`{` + strings.Repeat("a", 50) + `"salt":"x"` + strings.Repeat("b", 50))
	found := s.Scan("mem", buf)

	require.Len(t, found, 1)
	assert.LessOrEqual(t, len(found[0].Window), 30)
	assert.Contains(t, string(found[0].Window), `"salt":`)
}

func TestNewScannerDefaults(t *testing.T) {
	s := NewScanner(Config{})

	assert.Equal(t, DefaultConfig().Tokens, s.cfg.Tokens)
	assert.Equal(t, DefaultConfig().WindowBefore, s.cfg.WindowBefore)
	assert.Equal(t, DefaultConfig().WindowMax, s.cfg.WindowMax)
}
