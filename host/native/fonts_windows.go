//go:build windows

package native

import "context"

// fontsKey is the registry key listing the fonts installed for all users.
const fontsKey = `HKLM\SOFTWARE\Microsoft\Windows NT\CurrentVersion\Fonts`

// listFonts reads the font registrations from the registry.
func listFonts(ctx context.Context, executor CommandExecutor) ([]string, error) {
	output, err := executeCommand(ctx, executor, "reg", "query", fontsKey)
	if err != nil {
		return nil, err
	}

	return parseRegFonts(output), nil
}
