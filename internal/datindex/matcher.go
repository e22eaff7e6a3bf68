package datindex

import (
	"sort"
	"strings"
)

// Outcome classifies a serial-match attempt.
type Outcome int

const (
	// NotFound means no index entry resolved for any probe form.
	NotFound Outcome = iota
	// Matched means exactly one entry resolved.
	Matched
	// Ambiguous means multiple games share the probe serial and the
	// disc-1 tie-break could not pick one. The caller should fall back to
	// hash matching or flag the candidate for review.
	Ambiguous
)

// SerialResult is the outcome of MatchBySerial.
type SerialResult struct {
	Outcome    Outcome
	Entry      Entry
	Candidates []string
}

// MatchByHash resolves a probe by its hashes. A CRC32 hit must also agree
// on the declared rom size, guarding against incidental CRC collisions
// across differently-sized files; failing that, an exact SHA-1 lookup is
// tried.
func (x *Index) MatchByHash(size uint64, crc32, sha1 string) (Entry, bool) {
	if crc32 = strings.ToLower(strings.TrimSpace(crc32)); crc32 != "" {
		if entry, ok := x.byCRC[crc32]; ok && entry.Rom.Size == size {
			return entry, true
		}
	}
	if sha1 = strings.ToLower(strings.TrimSpace(sha1)); sha1 != "" {
		if entry, ok := x.bySHA1[sha1]; ok {
			return entry, true
		}
	}
	return Entry{}, false
}

// MatchBySerial resolves a probe serial against the normalized serial
// index. The probe is tried as-is, then the caller-supplied game code (a
// shorter canonical form from a device-specific serial dialect), then with
// each decimal digit 0-9 appended as a disc suffix, using the first form
// that resolves.
//
// A raw lookup returning more than one candidate is resolved by the disc-1
// tie-break: when the shared serial plus a "0" suffix exists as its own
// unique index entry, the probe hit a multi-disc set's boot serial and
// disc 1 wins. Otherwise the result is Ambiguous with the deduplicated,
// sorted candidate game names.
func (x *Index) MatchBySerial(serial, gameCode string) SerialResult {
	probe := NormalizeSerial(serial)
	if probe != "" {
		if result, found := x.lookupSerial(probe); found {
			return result
		}
	}
	if code := NormalizeSerial(gameCode); code != "" && code != probe {
		if result, found := x.lookupSerial(code); found {
			return result
		}
	}
	if probe != "" {
		for digit := byte('0'); digit <= '9'; digit++ {
			if result, found := x.lookupSerial(probe + string(digit)); found {
				return result
			}
		}
	}
	return SerialResult{Outcome: NotFound}
}

func (x *Index) lookupSerial(key string) (SerialResult, bool) {
	entries := x.bySerial[key]
	switch len(entries) {
	case 0:
		return SerialResult{}, false
	case 1:
		return SerialResult{Outcome: Matched, Entry: entries[0]}, true
	}

	if discOne := x.bySerial[key+"0"]; len(discOne) == 1 {
		return SerialResult{Outcome: Matched, Entry: discOne[0]}, true
	}

	names := make([]string, 0, len(entries))
	seen := make(map[string]struct{}, len(entries))
	for _, entry := range entries {
		if _, dup := seen[entry.Game.Name]; dup {
			continue
		}
		seen[entry.Game.Name] = struct{}{}
		names = append(names, entry.Game.Name)
	}
	sort.Strings(names)
	return SerialResult{Outcome: Ambiguous, Candidates: names}, true
}
