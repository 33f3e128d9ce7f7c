//go:build linux

package native

import "context"

// listFonts reads the fontconfig catalog.
func listFonts(ctx context.Context, executor CommandExecutor) ([]string, error) {
	output, err := executeCommand(ctx, executor, "fc-list", ":", "family")
	if err != nil {
		return nil, err
	}

	return parseFCList(output), nil
}
