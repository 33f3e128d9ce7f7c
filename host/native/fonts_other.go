//go:build !linux && !darwin && !windows

package native

import (
	"context"

	"github.com/slashdevops/fingerprint"
)

func listFonts(context.Context, CommandExecutor) ([]string, error) {
	return nil, fingerprint.ErrUnavailable
}
