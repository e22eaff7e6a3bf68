// Package analyzer computes matchable probes from raw dump files.
//
// Platform quirks live behind the Analyzer capability interface and are
// selected at runtime through the registry; nothing outside this package
// knows which platforms strip headers or embed serials.
package analyzer

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"hash/crc32"

	"romcat/internal/services"
)

// Candidate is the probe record handed to the matcher: whatever hashes
// and serial hints could be pulled out of one file.
type Candidate struct {
	Serial       string
	GameCodeHint string
	CRC32        string
	SHA1         string
	Size         uint64
}

// Analyzer is the per-platform capability interface.
type Analyzer interface {
	// Analyze computes a Candidate from raw file contents.
	Analyze(name string, data []byte) (Candidate, error)
	// FileExtensions lists the dump extensions this platform uses,
	// lowercase with leading dot.
	FileExtensions() []string
	// DATHeaderSize is the number of leading bytes DAT hashes exclude.
	DATHeaderSize() int
	// ExtractGameCode pulls an embedded product code out of the dump, or
	// returns the empty string when the platform has none.
	ExtractGameCode(data []byte) string
}

// base hashes file contents the way DAT files do: the platform header is
// excluded before CRC32 and SHA-1 are computed.
type base struct {
	extensions []string
	headerSize int
}

func (b base) FileExtensions() []string { return b.extensions }
func (b base) DATHeaderSize() int       { return b.headerSize }
func (b base) ExtractGameCode(data []byte) string {
	return ""
}

func (b base) Analyze(name string, data []byte) (Candidate, error) {
	if len(data) < b.headerSize {
		return Candidate{}, services.Wrap(services.ErrFormat, "analyzer", "analyze",
			fmt.Sprintf("%s: %d bytes is smaller than the %d byte header", name, len(data), b.headerSize), nil)
	}
	payload := data[b.headerSize:]
	sum := sha1.Sum(payload)
	return Candidate{
		CRC32: fmt.Sprintf("%08x", crc32.ChecksumIEEE(payload)),
		SHA1:  hex.EncodeToString(sum[:]),
		Size:  uint64(len(payload)),
	}, nil
}
