// Package scan is the application layer of the vault scan: request
// validation, orchestration of the scanning core, and result presentation.
// The core emits raw byte-window candidates; the rendering and any
// deduplication a consumer wants happen here.
package scan

import (
	"time"

	"github.com/carvetools/vaultcarve/internal/services"
)

// Request represents one scan invocation.
type Request struct {
	// RootPaths are explicit storage roots to scan. Empty means the
	// OS-conventional browser locations.
	RootPaths []string

	// ExtensionIDs are the Chromium extension storage namespaces to look
	// for. Empty means the default extension.
	ExtensionIDs []string

	// Scanner configuration
	Tokens       []string
	WindowBefore int
	WindowMax    int

	// Execution
	Workers     int
	MaxFileSize int64
}

// Response represents pooled scan results.
type Response struct {
	Candidates  []CandidateResult  `json:"candidates" yaml:"candidates"`
	Roots       []RootInfo         `json:"roots" yaml:"roots"`
	Stats       services.ScanStats `json:"stats" yaml:"stats"`
	ScanTime    time.Duration      `json:"scan_time" yaml:"scan_time"`
	Interrupted bool               `json:"interrupted,omitempty" yaml:"interrupted,omitempty"`
}

// RootInfo describes one storage root that was scanned.
type RootInfo struct {
	Path string `json:"path" yaml:"path"`
	Kind string `json:"kind" yaml:"kind"`
}

// CandidateResult is one recovered vault candidate, rendered for output.
type CandidateResult struct {
	ID            string       `json:"id" yaml:"id"`
	Source        string       `json:"source" yaml:"source"`
	Offset        int          `json:"offset" yaml:"offset"`
	Token         string       `json:"token" yaml:"token"`
	Text          string       `json:"text" yaml:"text"`
	Fields        *VaultRender `json:"fields,omitempty" yaml:"fields,omitempty"`
	LowConfidence bool         `json:"low_confidence,omitempty" yaml:"low_confidence,omitempty"`
	RawFallback   bool         `json:"raw_fallback,omitempty" yaml:"raw_fallback,omitempty"`
}

// VaultRender carries the three expected vault fields (ciphertext,
// initialization vector, salt) when the candidate window parsed as the
// serialized envelope. Field names follow the envelope itself.
type VaultRender struct {
	Data string `json:"data" yaml:"data"`
	IV   string `json:"iv" yaml:"iv"`
	Salt string `json:"salt" yaml:"salt"`
}

// Parsed reports whether the candidate window decoded as a vault envelope.
func (c *CandidateResult) Parsed() bool {
	return c.Fields != nil
}
