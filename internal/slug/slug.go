// Package slug provides text slugification and deterministic entity ID
// derivation for the catalog.
//
// Every entity identity in the catalog is a pure function of slugified free
// text, so the rules here must stay stable across platforms and runs:
// lowercase, alphanumeric runs preserved, runs of anything else collapsed to
// a single hyphen, no leading or trailing hyphen.
package slug

import (
	"crypto/sha1"
	"encoding/hex"
	"strings"
)

// Make converts free text into a stable slug.
func Make(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	pendingHyphen := false
	for _, r := range strings.ToLower(text) {
		isAlnum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if !isAlnum {
			if b.Len() > 0 {
				pendingHyphen = true
			}
			continue
		}
		if pendingHyphen {
			b.WriteByte('-')
			pendingHyphen = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

// WorkID derives the deterministic identifier for a Work from its platform
// and title. Identical titles on the same platform always resolve to the
// same Work.
func WorkID(platformID, title string) string {
	return "w" + digest("work", Make(platformID), Make(title))
}

// ReleaseID derives the deterministic identifier for a Release.
func ReleaseID(workID, platformID, region string) string {
	return "r" + digest("release", workID, Make(platformID), Make(region))
}

// MediaID derives the deterministic identifier for a Media row from its
// parent release and the slugified rom filename.
func MediaID(releaseID, romName string) string {
	return "m" + digest("media", releaseID, Make(romName))
}

// CompanyID derives the deterministic identifier for a Company from its
// canonical name. Alias resolution happens before this is called, so
// variant spellings of the same company never mint a second ID.
func CompanyID(name string) string {
	return "c" + digest("company", Make(name))
}

func digest(parts ...string) string {
	sum := sha1.Sum([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:8])
}
