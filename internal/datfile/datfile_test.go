package datfile_test

import (
	"errors"
	"testing"

	"romcat/internal/datfile"
	"romcat/internal/services"
)

const xmlDat = `<?xml version="1.0"?>
<datafile>
  <header>
    <name>Nintendo - NES</name>
    <description>Nintendo Entertainment System</description>
    <version>2026-01-15</version>
  </header>
  <game name="Zelda (USA)">
    <region>USA</region>
    <rom name="Zelda (USA).nes" size="131072" crc="A12D74C1" sha1="DA39A3EE5E6B4B0D3255BFEF95601890AFD80709"/>
  </game>
  <game name="Zelda (USA) (Rev A)">
    <rom name="Zelda (USA) (Rev A).nes" size="131072" crc="CEBD2A31"/>
  </game>
</datafile>
`

const cmpDat = `clrmamepro (
	name "Sony - PlayStation"
	description "Sony PlayStation"
	version "2026-02-01"
)

game (
	name "Final Fantasy VII (USA) (Disc 1)"
	serial "SCUS-94163"
	rom ( name "Final Fantasy VII (USA) (Disc 1).bin" size 747435024 crc 1459CBef )
)

game (
	name "Policenauts (Japan)"
	rom ( name "Policenauts (Japan).bin" size 681811248 crc 63E515E3 serial "SLPS 00700" )
)
`

func TestParseXMLFormat(t *testing.T) {
	file, err := datfile.Parse([]byte(xmlDat))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if file.Name != "Nintendo - NES" || file.Version != "2026-01-15" {
		t.Fatalf("header = %q / %q", file.Name, file.Version)
	}
	if len(file.Games) != 2 {
		t.Fatalf("games = %d", len(file.Games))
	}
	rom := file.Games[0].Roms[0]
	if rom.CRC != "a12d74c1" {
		t.Fatalf("expected lowercase crc, got %q", rom.CRC)
	}
	if rom.SHA1 != "da39a3ee5e6b4b0d3255bfef95601890afd80709" {
		t.Fatalf("expected lowercase sha1, got %q", rom.SHA1)
	}
	if rom.Size != 131072 {
		t.Fatalf("size = %d", rom.Size)
	}
	if file.Games[0].Region != "USA" {
		t.Fatalf("region = %q", file.Games[0].Region)
	}
}

func TestParseKeywordFormat(t *testing.T) {
	file, err := datfile.Parse([]byte(cmpDat))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if file.Name != "Sony - PlayStation" {
		t.Fatalf("name = %q", file.Name)
	}
	if len(file.Games) != 2 {
		t.Fatalf("games = %d", len(file.Games))
	}

	// Quoted rom names keep their parentheses.
	ff7 := file.Games[0]
	if ff7.Roms[0].Name != "Final Fantasy VII (USA) (Disc 1).bin" {
		t.Fatalf("rom name = %q", ff7.Roms[0].Name)
	}
	if ff7.Roms[0].CRC != "1459cbef" {
		t.Fatalf("crc = %q", ff7.Roms[0].CRC)
	}

	// Game-level serial propagates to the rom lacking one.
	if ff7.Roms[0].Serial != "SCUS-94163" {
		t.Fatalf("propagated serial = %q", ff7.Roms[0].Serial)
	}
	// Rom-level serial wins when present.
	if file.Games[1].Roms[0].Serial != "SLPS 00700" {
		t.Fatalf("rom serial = %q", file.Games[1].Roms[0].Serial)
	}
}

func TestParseEmptyOfGamesIsFormatError(t *testing.T) {
	empty := `clrmamepro ( name "Empty" )`
	_, err := datfile.Parse([]byte(empty))
	if !errors.Is(err, services.ErrFormat) {
		t.Fatalf("expected format error, got %v", err)
	}
	if !errors.Is(err, datfile.ErrNoGames) {
		t.Fatalf("expected ErrNoGames, got %v", err)
	}

	_, err = datfile.Parse([]byte(`<datafile><header><name>x</name></header></datafile>`))
	if !errors.Is(err, services.ErrFormat) {
		t.Fatalf("expected format error for empty xml dat, got %v", err)
	}
}

func TestParseMalformedInput(t *testing.T) {
	if _, err := datfile.Parse([]byte(`game ( name "Unterminated`)); !errors.Is(err, services.ErrFormat) {
		t.Fatalf("expected format error, got %v", err)
	}
	if _, err := datfile.Parse([]byte(`<datafile><game name="x">`)); !errors.Is(err, services.ErrFormat) {
		t.Fatalf("expected format error, got %v", err)
	}
}

func TestParseAutodetectLeadingWhitespace(t *testing.T) {
	file, err := datfile.Parse([]byte("\n\t " + xmlDat))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(file.Games) != 2 {
		t.Fatalf("games = %d", len(file.Games))
	}
}
