// Package datfile parses reference checksum databases (DAT files).
//
// Two textual encodings are supported and produce the same in-memory shape:
// the XML dialect used by Logiqx-style DATs and the keyword-block dialect
// used by clrmamepro-style DATs. The format is auto-detected from the first
// non-whitespace byte of the document.
package datfile

import (
	"errors"
	"strings"

	"romcat/internal/services"
)

// File is one parsed DAT file.
type File struct {
	Name        string
	Description string
	Version     string
	Games       []Game
}

// Game is one game block with its rom entries.
type Game struct {
	Name   string
	Region string
	Serial string
	Roms   []Rom
}

// Rom is one dump entry. Hex digest fields are stored lowercase.
type Rom struct {
	Name   string
	Size   uint64
	CRC    string
	SHA1   string
	MD5    string
	Serial string
}

// ErrNoGames marks a document that parsed but contains no game entries.
var ErrNoGames = errors.New("dat file contains no games")

// Parse auto-detects the DAT encoding and parses the document. A document
// without any game entries is a format error.
func Parse(data []byte) (*File, error) {
	var (
		file *File
		err  error
	)
	switch firstNonSpace(data) {
	case '<':
		file, err = parseXML(data)
	default:
		file, err = parseKeywordBlocks(data)
	}
	if err != nil {
		return nil, services.Wrap(services.ErrFormat, "datfile", "parse", "", err)
	}
	if len(file.Games) == 0 {
		return nil, services.Wrap(services.ErrFormat, "datfile", "parse", "", ErrNoGames)
	}
	file.normalize()
	return file, nil
}

func firstNonSpace(data []byte) byte {
	for _, c := range data {
		switch c {
		case ' ', '\t', '\r', '\n':
			continue
		}
		return c
	}
	return 0
}

// normalize lowercases hex digests and propagates game-level serials down to
// roms that lack their own.
func (f *File) normalize() {
	for gi := range f.Games {
		game := &f.Games[gi]
		game.Serial = strings.TrimSpace(game.Serial)
		for ri := range game.Roms {
			rom := &game.Roms[ri]
			rom.CRC = strings.ToLower(strings.TrimSpace(rom.CRC))
			rom.SHA1 = strings.ToLower(strings.TrimSpace(rom.SHA1))
			rom.MD5 = strings.ToLower(strings.TrimSpace(rom.MD5))
			rom.Serial = strings.TrimSpace(rom.Serial)
			if rom.Serial == "" {
				rom.Serial = game.Serial
			}
		}
	}
}
