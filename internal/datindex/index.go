// Package datindex builds in-memory lookup indices over parsed DAT files
// and implements the tiered candidate-matching strategy.
//
// The index is immutable after Build; probes only read it, so matching may
// run from as many goroutines as there are candidate files.
package datindex

import (
	"strings"

	"romcat/internal/datfile"
)

// Entry pairs a game with one of its roms.
type Entry struct {
	Game *datfile.Game
	Rom  *datfile.Rom
}

// Index holds four lookup maps over a shared backing list of games:
// by declared rom size, by CRC32, by SHA-1, and by normalized serial.
type Index struct {
	games    []datfile.Game
	bySize   map[uint64][]Entry
	byCRC    map[string]Entry
	bySHA1   map[string]Entry
	bySerial map[string][]Entry
}

// Build merges the games from one or more parsed DAT files into a single
// index. CRC and SHA-1 lookups are last-write-wins; collisions between
// distinct real dumps are astronomically unlikely, and hash matches are
// size-confirmed anyway.
func Build(files ...*datfile.File) *Index {
	idx := &Index{
		bySize:   make(map[uint64][]Entry),
		byCRC:    make(map[string]Entry),
		bySHA1:   make(map[string]Entry),
		bySerial: make(map[string][]Entry),
	}
	for _, file := range files {
		if file == nil {
			continue
		}
		idx.games = append(idx.games, file.Games...)
	}
	for gi := range idx.games {
		game := &idx.games[gi]
		for ri := range game.Roms {
			rom := &game.Roms[ri]
			entry := Entry{Game: game, Rom: rom}

			idx.bySize[rom.Size] = append(idx.bySize[rom.Size], entry)
			if rom.CRC != "" {
				idx.byCRC[rom.CRC] = entry
			}
			if rom.SHA1 != "" {
				idx.bySHA1[rom.SHA1] = entry
			}
			for _, serial := range splitSerials(rom.Serial) {
				key := NormalizeSerial(serial)
				if key == "" {
					continue
				}
				idx.bySerial[key] = append(idx.bySerial[key], entry)
			}
		}
	}
	return idx
}

// GameCount returns the number of games backing the index.
func (x *Index) GameCount() int {
	return len(x.games)
}

// EntriesBySize returns all entries whose declared rom size matches.
func (x *Index) EntriesBySize(size uint64) []Entry {
	return x.bySize[size]
}

// NormalizeSerial uppercases a serial and strips spaces and hyphens,
// reconciling "SLPS 00700" with "SLPS-00700".
func NormalizeSerial(serial string) string {
	serial = strings.ToUpper(serial)
	var b strings.Builder
	b.Grow(len(serial))
	for i := 0; i < len(serial); i++ {
		switch serial[i] {
		case ' ', '-':
			continue
		}
		b.WriteByte(serial[i])
	}
	return b.String()
}

// splitSerials expands a comma-separated multi-serial field (Redump lists
// every printed product code) into independently indexable parts.
func splitSerials(serial string) []string {
	if serial == "" {
		return nil
	}
	if !strings.Contains(serial, ",") {
		return []string{serial}
	}
	parts := strings.Split(serial, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
