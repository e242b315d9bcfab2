package annotate

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/Lukasvo/cookiedoo-filler/internal/models"
)

// reverseGlyph is the "reverse blade" marker as it appears in scraped or
// translated text. reverseMark is the private-use codepoint the recipe
// platform renders it with. Both are a single character, so swapping one for
// the other never shifts annotation offsets.
const (
	reverseGlyph = "⟲"
	reverseMark  = ""
)

// settingPattern matches appliance-setting notation such as
// "30 sec/snelheid 10", "5-10 min/100°C/speed 2" and
// "20 min/varoma//snelheid 1". Durations and speeds may be ranges,
// temperature and reverse-blade segments are optional, and matching is case
// insensitive.
var settingPattern = regexp.MustCompile(
	`(?i)\d+(?:[.,]\d+)?(?:\s*[-\x{2013}]\s*\d+(?:[.,]\d+)?)?\s*(?:sec|min)\.?` +
		`\s*/\s*` +
		`(?:(?:\d+\s*°?\s*C|varoma)\s*/\s*)?` +
		`(?:[\x{27F2}\x{E003}]\s*/\s*)?` +
		`(?:speed|snelheid)\s*\d+(?:[.,]\d+)?(?:\s*[-\x{2013}]\s*\d+(?:[.,]\d+)?)?`)

// SettingMatch is one appliance-setting notation span found in step text.
type SettingMatch struct {
	Position models.Position
	Text     string
}

// ScanSettings returns every appliance-setting notation span in text, in
// order of appearance. Positions count characters, not bytes.
func ScanSettings(text string) []SettingMatch {
	var matches []SettingMatch
	for _, loc := range settingPattern.FindAllStringIndex(text, -1) {
		matches = append(matches, SettingMatch{
			Position: models.Position{
				Offset: utf8.RuneCountInString(text[:loc[0]]),
				Length: utf8.RuneCountInString(text[loc[0]:loc[1]]),
			},
			Text: text[loc[0]:loc[1]],
		})
	}
	return matches
}

// NormalizeStepText rewrites step text into the form the recipe platform
// stores, replacing the reverse-blade glyph with its private-use marker.
// The character count of the text is preserved.
func NormalizeStepText(text string) string {
	return strings.ReplaceAll(text, reverseGlyph, reverseMark)
}
