package reconcile

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.English, cases.NoLower)

// improveName picks a better canonical name for the surviving work. DAT
// sources disagree on casing, so a shouting or all-lowercase survivor
// name yields to a mixed-case candidate from the same group; with no
// mixed-case candidate available the survivor's name is title-cased.
func improveName(current string, candidates []string) string {
	if isMixedCase(current) {
		return current
	}
	for _, candidate := range candidates {
		if candidate != "" && isMixedCase(candidate) && strings.EqualFold(candidate, current) {
			return candidate
		}
	}
	if current == "" {
		return current
	}
	return titleCaser.String(strings.ToLower(current))
}

// isMixedCase reports whether the name contains both upper and lower
// case letters.
func isMixedCase(name string) bool {
	var hasUpper, hasLower bool
	for _, r := range name {
		if unicode.IsUpper(r) {
			hasUpper = true
		}
		if unicode.IsLower(r) {
			hasLower = true
		}
	}
	return hasUpper && hasLower
}
