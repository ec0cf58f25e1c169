package scan

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequestValidate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Request)
		expectError bool
	}{
		{
			name:   "defaults are valid",
			mutate: func(r *Request) {},
		},
		{
			name: "blank token",
			mutate: func(r *Request) {
				r.Tokens = []string{`"salt":`, "   "}
			},
			expectError: true,
		},
		{
			name: "negative window",
			mutate: func(r *Request) {
				r.WindowBefore = -1
			},
			expectError: true,
		},
		{
			name: "backtrack exceeds window",
			mutate: func(r *Request) {
				r.WindowBefore = 500
				r.WindowMax = 100
			},
			expectError: true,
		},
		{
			name: "too many workers",
			mutate: func(r *Request) {
				r.Workers = 500
			},
			expectError: true,
		},
		{
			name: "malformed extension ID",
			mutate: func(r *Request) {
				r.ExtensionIDs = []string{"SHORT"}
			},
			expectError: true,
		},
		{
			name: "well-formed extension ID",
			mutate: func(r *Request) {
				r.ExtensionIDs = []string{"nkbihfbeogaeaoehlefnkodbefgpgknn"}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := &Request{
				Tokens:       []string{`"salt":`},
				WindowBefore: 5000,
				WindowMax:    10000,
			}
			tt.mutate(req)

			err := req.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
