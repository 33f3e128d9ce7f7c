//go:build darwin

package native

import "context"

// listFonts reads the font catalog through system_profiler.
func listFonts(ctx context.Context, executor CommandExecutor) ([]string, error) {
	output, err := executeCommand(ctx, executor, "system_profiler", "SPFontsDataType", "-json")
	if err != nil {
		return nil, err
	}

	return parseSPFonts(output)
}
