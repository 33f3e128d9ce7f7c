package native

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

// parseFCList extracts family names from `fc-list : family` output. A line
// may carry several comma-separated localized names of one family.
func parseFCList(output string) []string {
	var families []string
	for line := range strings.SplitSeq(output, "\n") {
		for name := range strings.SplitSeq(line, ",") {
			name = strings.TrimSpace(strings.ReplaceAll(name, `\-`, "-"))
			if name != "" {
				families = append(families, name)
			}
		}
	}

	return dedupe(families)
}

// spFontsDataType represents the JSON output of `system_profiler SPFontsDataType -json`.
type spFontsDataType struct {
	SPFontsDataType []spFontEntry `json:"SPFontsDataType"`
}

type spFontEntry struct {
	Name      string       `json:"_name"`
	Enabled   string       `json:"enabled"`
	Typefaces []spTypeface `json:"typefaces"`
}

type spTypeface struct {
	Family  string `json:"family"`
	Enabled string `json:"enabled"`
}

// parseSPFonts extracts enabled family names from system_profiler output.
func parseSPFonts(output string) ([]string, error) {
	var data spFontsDataType
	if err := json.Unmarshal([]byte(output), &data); err != nil {
		return nil, fmt.Errorf("failed to parse system_profiler JSON: %w", err)
	}

	var families []string
	for _, font := range data.SPFontsDataType {
		if font.Enabled == "no" {
			continue
		}
		for _, face := range font.Typefaces {
			if face.Family != "" && face.Enabled != "no" {
				families = append(families, face.Family)
			}
		}
	}

	return dedupe(families), nil
}

// parseRegFonts extracts family names from `reg query` output of the Fonts
// key. Each value reads "<Face> (TrueType)    REG_SZ    <file>".
func parseRegFonts(output string) []string {
	var families []string
	for line := range strings.SplitSeq(output, "\n") {
		line = strings.TrimSpace(line)
		name, _, ok := strings.Cut(line, "REG_SZ")
		if !ok {
			continue
		}
		name = strings.TrimSpace(name)
		if i := strings.Index(name, " ("); i > 0 {
			name = name[:i]
		}
		// a value may list a collection as "Cambria & Cambria Math"
		for face := range strings.SplitSeq(name, " & ") {
			if face = strings.TrimSpace(face); face != "" {
				families = append(families, face)
			}
		}
	}

	return dedupe(families)
}

func dedupe(names []string) []string {
	slices.Sort(names)
	return slices.Compact(names)
}
