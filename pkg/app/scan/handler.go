package scan

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/carvetools/vaultcarve/internal/profile"
	"github.com/carvetools/vaultcarve/internal/services"
	"github.com/carvetools/vaultcarve/internal/sigscan"
	"github.com/carvetools/vaultcarve/pkg/app"
)

// Handle processes a scan request: locate storage roots, run the scanning
// core over them, and render the pooled candidates.
//
// Zero candidates — or zero roots — is a successful outcome. The only error
// surfaced from the pipeline itself is the context's own cancellation;
// everything the core skipped is visible in the response stats instead.
func Handle(ctx *app.Context, req *Request) (*Response, error) {
	startTime := time.Now()

	if err := req.Validate(); err != nil {
		return nil, err
	}

	locator := profile.NewLocator(profile.WithExtensionIDs(req.ExtensionIDs))
	roots := locator.Locate(req.RootPaths...)

	ctx.Log(fmt.Sprintf("located %d storage root(s)", len(roots)))
	for _, root := range roots {
		ctx.Log(fmt.Sprintf("  [%s] %s", root.Kind, root.Path))
	}

	logf := func(string, ...interface{}) {}
	if ctx.Verbose && !ctx.Quiet {
		logf = func(format string, args ...interface{}) {
			ctx.Log(fmt.Sprintf(format, args...))
		}
	}

	service := services.NewScanService(services.ScanConfig{
		Scanner: sigscan.Config{
			Tokens:       req.Tokens,
			WindowBefore: req.WindowBefore,
			WindowMax:    req.WindowMax,
		},
		Workers:     req.Workers,
		MaxFileSize: req.MaxFileSize,
	}, logf)

	result, err := service.Scan(ctx, roots)

	response := &Response{
		Candidates:  make([]CandidateResult, 0, len(result.Candidates)),
		Roots:       make([]RootInfo, 0, len(roots)),
		Stats:       result.Stats,
		ScanTime:    time.Since(startTime),
		Interrupted: err != nil,
	}
	for _, root := range roots {
		response.Roots = append(response.Roots, RootInfo{Path: root.Path, Kind: string(root.Kind)})
	}
	for _, cand := range result.Candidates {
		response.Candidates = append(response.Candidates, renderCandidate(cand))
	}

	ctx.Log(fmt.Sprintf("scan completed: %d candidate(s) in %v",
		len(response.Candidates), response.ScanTime))

	return response, nil
}

// renderCandidate converts a core candidate into its presentation form,
// decoding the window as text with non-printable bytes escaped.
func renderCandidate(cand sigscan.Candidate) CandidateResult {
	result := CandidateResult{
		ID:            cand.ID,
		Source:        cand.Source,
		Offset:        cand.Offset,
		Token:         cand.Token,
		Text:          renderText(cand.Window),
		LowConfidence: cand.LowConfidence,
		RawFallback:   cand.RawFallback,
	}
	if cand.Fields != nil {
		result.Fields = &VaultRender{
			Data: cand.Fields.Data,
			IV:   cand.Fields.IV,
			Salt: cand.Fields.Salt,
		}
	}
	return result
}

// renderText decodes a byte window as text. Printable ASCII, newlines and
// tabs pass through; everything else is hex-escaped.
func renderText(window []byte) string {
	var b strings.Builder
	b.Grow(len(window))
	for _, c := range window {
		switch {
		case c >= 0x20 && c < 0x7f, c == '\n', c == '\t':
			b.WriteByte(c)
		default:
			b.WriteString(`\x`)
			if c < 0x10 {
				b.WriteByte('0')
			}
			b.WriteString(strconv.FormatUint(uint64(c), 16))
		}
	}
	return b.String()
}
