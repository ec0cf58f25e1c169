// Package sigscan locates serialized vault objects in decoded storage
// payloads by byte signature. It is deliberately not a parser of the value
// encoding: the vault JSON may sit inside container formats (structured
// clone, extension state wrappers) that there is no need to understand to
// carve the object out.
package sigscan

import (
	"bytes"
	"encoding/json"

	"github.com/google/uuid"
)

// Config controls what the scanner looks for and how much context it keeps.
// Values come from configuration, not constants, so the scanner can be
// retargeted at other serialized-secret shapes.
type Config struct {
	// Tokens are the marker byte sequences treated as evidence of a vault
	// object. Every occurrence of any token yields one candidate.
	Tokens []string
	// WindowBefore bounds the backtrack from a match to the object's
	// opening delimiter.
	WindowBefore int
	// WindowMax bounds the total extracted window length.
	WindowMax int
}

// DefaultConfig matches the MetaMask vault shape.
func DefaultConfig() Config {
	return Config{
		Tokens:       []string{`"salt":`},
		WindowBefore: 5000,
		WindowMax:    10000,
	}
}

// VaultFields are the three fields of a decrypted-vault envelope when the
// extracted window parses as JSON.
type VaultFields struct {
	Data string `json:"data"`
	IV   string `json:"iv"`
	Salt string `json:"salt"`
}

// Candidate is one extracted byte window believed to contain a complete
// vault object. Candidates are immutable once emitted and are not
// deduplicated here; the reporter may dedupe.
type Candidate struct {
	// ID uniquely identifies the candidate within a run.
	ID string
	// Source is the file the bytes came from.
	Source string
	// Offset is the match position within the scanned buffer.
	Offset int
	// Token is the marker that matched.
	Token string
	// Window is the extracted surrounding byte span.
	Window []byte
	// Fields is set when Window parses as a JSON object carrying the
	// expected field names.
	Fields *VaultFields
	// LowConfidence is inherited from a failed record checksum.
	LowConfidence bool
	// RawFallback marks a match found in undecoded bytes.
	RawFallback bool
}

// Scanner searches byte buffers for the configured signature tokens.
type Scanner struct {
	cfg Config
}

// NewScanner creates a scanner. Zero or negative bounds fall back to the
// defaults; an empty token set falls back to the default token.
func NewScanner(cfg Config) *Scanner {
	def := DefaultConfig()
	if len(cfg.Tokens) == 0 {
		cfg.Tokens = def.Tokens
	}
	if cfg.WindowBefore <= 0 {
		cfg.WindowBefore = def.WindowBefore
	}
	if cfg.WindowMax <= 0 {
		cfg.WindowMax = def.WindowMax
	}
	return &Scanner{cfg: cfg}
}

// Scan searches buf and returns one candidate per token occurrence, in
// buffer order. An empty result is a normal outcome, not an error.
func (s *Scanner) Scan(source string, buf []byte) []Candidate {
	var found []Candidate
	for _, token := range s.cfg.Tokens {
		tok := []byte(token)
		for pos := 0; ; {
			idx := bytes.Index(buf[pos:], tok)
			if idx < 0 {
				break
			}
			idx += pos

			window, fields := s.extract(buf, idx, len(tok))
			found = append(found, Candidate{
				ID:     uuid.NewString(),
				Source: source,
				Offset: idx,
				Token:  token,
				Window: window,
				Fields: fields,
			})

			pos = idx + len(tok)
		}
	}
	return found
}

// extract pulls a bounded window around a match and trims it to the nearest
// plausible object delimiters. When some closing delimiter yields a JSON
// object carrying a "data" field, the window snaps to that object and the
// expected fields are surfaced; otherwise the window is the best-effort
// delimiter span, or the raw bound when no delimiters are in range.
func (s *Scanner) extract(buf []byte, matchIdx, tokenLen int) ([]byte, *VaultFields) {
	lo := matchIdx - s.cfg.WindowBefore
	if lo < 0 {
		lo = 0
	}

	start := bytes.LastIndexByte(buf[lo:matchIdx], '{')
	if start < 0 {
		start = lo
	} else {
		start += lo
	}

	limit := start + s.cfg.WindowMax
	if limit > len(buf) {
		limit = len(buf)
	}

	// Walk successive closing braces looking for a span that decodes as the
	// vault envelope.
	firstEnd := -1
	for j := matchIdx + tokenLen; j < limit; {
		k := bytes.IndexByte(buf[j:limit], '}')
		if k < 0 {
			break
		}
		end := j + k + 1
		if firstEnd < 0 {
			firstEnd = end
		}

		if fields, ok := parseVault(buf[start:end]); ok {
			return clone(buf[start:end]), fields
		}
		j = end
	}

	if firstEnd >= 0 {
		return clone(buf[start:firstEnd]), nil
	}
	return clone(buf[start:limit]), nil
}

// parseVault reports whether the span is a JSON object with the expected
// field names, and decodes them when it is.
func parseVault(span []byte) (*VaultFields, bool) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(span, &probe); err != nil {
		return nil, false
	}
	if _, ok := probe["data"]; !ok {
		return nil, false
	}

	var fields VaultFields
	if err := json.Unmarshal(span, &fields); err != nil {
		return nil, false
	}
	return &fields, true
}

func clone(b []byte) []byte {
	return append([]byte(nil), b...)
}
