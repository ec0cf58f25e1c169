package scan

import (
	"strings"

	"github.com/carvetools/vaultcarve/pkg/app"
)

// Validate validates a scan request.
func (r *Request) Validate() error {
	for _, token := range r.Tokens {
		if strings.TrimSpace(token) == "" {
			return app.NewError(app.ErrCodeInvalidInput, "signature tokens must be non-empty", nil)
		}
	}

	if r.WindowBefore < 0 {
		return app.NewError(app.ErrCodeInvalidInput, "window-before must not be negative", nil)
	}
	if r.WindowMax < 0 {
		return app.NewError(app.ErrCodeInvalidInput, "window-max must not be negative", nil)
	}
	if r.WindowMax > 0 && r.WindowBefore > r.WindowMax {
		return app.NewError(app.ErrCodeInvalidInput, "window-before must not exceed window-max", nil)
	}

	if r.Workers < 0 || r.Workers > 64 {
		return app.NewError(app.ErrCodeInvalidInput, "workers must be between 0 and 64", nil)
	}

	for _, id := range r.ExtensionIDs {
		if len(id) != 32 || strings.ToLower(id) != id {
			return app.NewError(app.ErrCodeInvalidInput,
				"extension IDs must be 32 lowercase characters", nil)
		}
	}

	return nil
}
