package analyzer

import (
	"fmt"
	"regexp"
	"sort"

	"romcat/internal/datindex"
	"romcat/internal/services"
)

var registry = map[string]Analyzer{
	"nes":  nesAnalyzer{base{extensions: []string{".nes"}, headerSize: 16}},
	"snes": base{extensions: []string{".sfc", ".smc"}, headerSize: 0},
	"n64":  base{extensions: []string{".z64", ".n64", ".v64"}, headerSize: 0},
	"gb":   base{extensions: []string{".gb", ".gbc"}, headerSize: 0},
	"gba":  base{extensions: []string{".gba"}, headerSize: 0},
	"md":   base{extensions: []string{".md", ".gen", ".bin"}, headerSize: 0},
	"psx":  discAnalyzer{base{extensions: []string{".bin", ".img", ".iso"}, headerSize: 0}},
	"ps2":  discAnalyzer{base{extensions: []string{".iso"}, headerSize: 0}},
}

// For returns the analyzer registered for a platform id.
func For(platformID string) (Analyzer, error) {
	a, ok := registry[platformID]
	if !ok {
		return nil, services.Wrap(services.ErrNotFound, "analyzer", "lookup",
			fmt.Sprintf("no analyzer registered for platform %q", platformID), nil)
	}
	return a, nil
}

// Platforms lists the registered platform ids in sorted order.
func Platforms() []string {
	ids := make([]string, 0, len(registry))
	for id := range registry {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// nesAnalyzer strips the 16-byte iNES container header before hashing,
// since DAT entries describe the bare PRG/CHR payload.
type nesAnalyzer struct {
	base
}

// discAnalyzer scans PlayStation-family images for the boot-line product
// code, e.g. "SLUS_005.94", which becomes both the serial probe and the
// game-code hint.
type discAnalyzer struct {
	base
}

var gameCodePattern = regexp.MustCompile(`(S[CLT][UEPK][SDM])[_-](\d{3})\.(\d{2})`)

func (d discAnalyzer) ExtractGameCode(data []byte) string {
	match := gameCodePattern.FindSubmatch(data)
	if match == nil {
		return ""
	}
	return string(match[1]) + string(match[2]) + string(match[3])
}

func (d discAnalyzer) Analyze(name string, data []byte) (Candidate, error) {
	candidate, err := d.base.Analyze(name, data)
	if err != nil {
		return candidate, err
	}
	if code := d.ExtractGameCode(data); code != "" {
		candidate.GameCodeHint = code
		candidate.Serial = datindex.NormalizeSerial(code)
	}
	return candidate, nil
}
