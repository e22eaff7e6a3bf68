package datfile

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
)

type xmlDatafile struct {
	XMLName xml.Name  `xml:"datafile"`
	Header  xmlHeader `xml:"header"`
	Games   []xmlGame `xml:"game"`
	// MAME-lineage DATs use <machine> instead of <game>.
	Machines []xmlGame `xml:"machine"`
}

type xmlHeader struct {
	Name        string `xml:"name"`
	Description string `xml:"description"`
	Version     string `xml:"version"`
}

type xmlGame struct {
	Name   string   `xml:"name,attr"`
	Region string   `xml:"region"`
	Serial string   `xml:"serial"`
	Roms   []xmlRom `xml:"rom"`
}

type xmlRom struct {
	Name   string `xml:"name,attr"`
	Size   string `xml:"size,attr"`
	CRC    string `xml:"crc,attr"`
	SHA1   string `xml:"sha1,attr"`
	MD5    string `xml:"md5,attr"`
	Serial string `xml:"serial,attr"`
}

func parseXML(data []byte) (*File, error) {
	var doc xmlDatafile
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode xml dat: %w", err)
	}

	file := &File{
		Name:        strings.TrimSpace(doc.Header.Name),
		Description: strings.TrimSpace(doc.Header.Description),
		Version:     strings.TrimSpace(doc.Header.Version),
	}

	entries := append(doc.Games, doc.Machines...)
	for _, entry := range entries {
		game := Game{
			Name:   strings.TrimSpace(entry.Name),
			Region: strings.TrimSpace(entry.Region),
			Serial: entry.Serial,
		}
		for _, rom := range entry.Roms {
			size, err := parseSize(rom.Size)
			if err != nil {
				return nil, fmt.Errorf("rom %q: %w", rom.Name, err)
			}
			game.Roms = append(game.Roms, Rom{
				Name:   strings.TrimSpace(rom.Name),
				Size:   size,
				CRC:    rom.CRC,
				SHA1:   rom.SHA1,
				MD5:    rom.MD5,
				Serial: rom.Serial,
			})
		}
		file.Games = append(file.Games, game)
	}
	return file, nil
}

func parseSize(value string) (uint64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, nil
	}
	size, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse size %q: %w", value, err)
	}
	return size, nil
}
