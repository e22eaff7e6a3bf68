package datfile

import (
	"fmt"
	"strings"
)

// The keyword-block dialect is a sequence of named blocks:
//
//	clrmamepro ( name "..." description "..." version "..." )
//	game (
//	    name "Zelda (USA)"
//	    serial "SCUS-94163"
//	    rom ( name "Zelda (USA).bin" size 131072 crc a12d74c1 )
//	)
//
// Values may be double-quoted; a quoted value can itself contain
// parentheses and commas, so tokenization must honor quoting before any
// structural interpretation.

type tokenKind int

const (
	tokenWord tokenKind = iota
	tokenOpen
	tokenClose
)

type cmpToken struct {
	kind tokenKind
	text string
}

func parseKeywordBlocks(data []byte) (*File, error) {
	tokens, err := tokenizeKeywordDat(string(data))
	if err != nil {
		return nil, err
	}

	file := &File{}
	pos := 0
	for pos < len(tokens) {
		token := tokens[pos]
		if token.kind != tokenWord {
			return nil, fmt.Errorf("unexpected %q at top level", tokenText(token))
		}
		blockName := token.text
		pos++
		if pos >= len(tokens) || tokens[pos].kind != tokenOpen {
			return nil, fmt.Errorf("block %q: expected '('", blockName)
		}
		switch blockName {
		case "clrmamepro", "romcenter", "header":
			fields, next, err := parseFlatBlock(tokens, pos)
			if err != nil {
				return nil, fmt.Errorf("block %q: %w", blockName, err)
			}
			pos = next
			if blockName != "romcenter" {
				file.Name = firstNonEmpty(file.Name, fields["name"])
				file.Description = firstNonEmpty(file.Description, fields["description"])
				file.Version = firstNonEmpty(file.Version, fields["version"])
			}
		case "game", "machine", "resource":
			game, next, err := parseGameBlock(tokens, pos)
			if err != nil {
				return nil, fmt.Errorf("game block: %w", err)
			}
			pos = next
			file.Games = append(file.Games, game)
		default:
			next, err := skipBlock(tokens, pos)
			if err != nil {
				return nil, fmt.Errorf("block %q: %w", blockName, err)
			}
			pos = next
		}
	}
	return file, nil
}

// parseFlatBlock consumes "( key value ... )" and returns the key/value map.
// pos points at the opening paren.
func parseFlatBlock(tokens []cmpToken, pos int) (map[string]string, int, error) {
	fields := make(map[string]string)
	pos++ // consume '('
	for pos < len(tokens) {
		token := tokens[pos]
		switch token.kind {
		case tokenClose:
			return fields, pos + 1, nil
		case tokenOpen:
			return nil, 0, fmt.Errorf("unexpected nested block")
		}
		key := token.text
		pos++
		if pos >= len(tokens) {
			return nil, 0, fmt.Errorf("key %q: missing value", key)
		}
		value := tokens[pos]
		if value.kind != tokenWord {
			return nil, 0, fmt.Errorf("key %q: missing value", key)
		}
		if _, exists := fields[key]; !exists {
			fields[key] = value.text
		}
		pos++
	}
	return nil, 0, fmt.Errorf("unterminated block")
}

func parseGameBlock(tokens []cmpToken, pos int) (Game, int, error) {
	var game Game
	pos++ // consume '('
	for pos < len(tokens) {
		token := tokens[pos]
		if token.kind == tokenClose {
			return game, pos + 1, nil
		}
		if token.kind != tokenWord {
			return game, 0, fmt.Errorf("unexpected '('")
		}
		key := token.text
		pos++
		if key == "rom" || key == "disk" {
			if pos >= len(tokens) || tokens[pos].kind != tokenOpen {
				return game, 0, fmt.Errorf("rom entry: expected '('")
			}
			fields, next, err := parseFlatBlock(tokens, pos)
			if err != nil {
				return game, 0, fmt.Errorf("rom entry: %w", err)
			}
			pos = next
			rom, err := romFromFields(fields)
			if err != nil {
				return game, 0, err
			}
			game.Roms = append(game.Roms, rom)
			continue
		}
		if pos >= len(tokens) {
			return game, 0, fmt.Errorf("key %q: missing value", key)
		}
		value := tokens[pos]
		if value.kind == tokenOpen {
			// Unknown nested block (video, sample lists); skip it whole.
			next, err := skipBlock(tokens, pos-1)
			if err != nil {
				return game, 0, err
			}
			pos = next
			continue
		}
		pos++
		switch key {
		case "name":
			game.Name = value.text
		case "region":
			game.Region = value.text
		case "serial":
			game.Serial = value.text
		}
	}
	return game, 0, fmt.Errorf("unterminated game block")
}

func romFromFields(fields map[string]string) (Rom, error) {
	size, err := parseSize(fields["size"])
	if err != nil {
		return Rom{}, fmt.Errorf("rom %q: %w", fields["name"], err)
	}
	return Rom{
		Name:   fields["name"],
		Size:   size,
		CRC:    fields["crc"],
		SHA1:   fields["sha1"],
		MD5:    fields["md5"],
		Serial: fields["serial"],
	}, nil
}

// skipBlock advances past a block whose name token is at pos, balancing
// nested parentheses.
func skipBlock(tokens []cmpToken, pos int) (int, error) {
	pos++ // past block name
	if pos >= len(tokens) || tokens[pos].kind != tokenOpen {
		return 0, fmt.Errorf("expected '('")
	}
	depth := 0
	for ; pos < len(tokens); pos++ {
		switch tokens[pos].kind {
		case tokenOpen:
			depth++
		case tokenClose:
			depth--
			if depth == 0 {
				return pos + 1, nil
			}
		}
	}
	return 0, fmt.Errorf("unterminated block")
}

// tokenizeKeywordDat splits the document into parens, bare words, and
// quoted strings. Inside quotes, backslash escapes the next byte.
func tokenizeKeywordDat(input string) ([]cmpToken, error) {
	var tokens []cmpToken
	i := 0
	for i < len(input) {
		c := input[i]
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			i++
		case c == '(':
			tokens = append(tokens, cmpToken{kind: tokenOpen})
			i++
		case c == ')':
			tokens = append(tokens, cmpToken{kind: tokenClose})
			i++
		case c == '"':
			var b strings.Builder
			i++
			closed := false
			for i < len(input) {
				ch := input[i]
				if ch == '\\' && i+1 < len(input) {
					b.WriteByte(input[i+1])
					i += 2
					continue
				}
				if ch == '"' {
					closed = true
					i++
					break
				}
				b.WriteByte(ch)
				i++
			}
			if !closed {
				return nil, fmt.Errorf("unterminated quoted value")
			}
			tokens = append(tokens, cmpToken{kind: tokenWord, text: b.String()})
		default:
			start := i
			for i < len(input) && !isTokenBoundary(input[i]) {
				i++
			}
			tokens = append(tokens, cmpToken{kind: tokenWord, text: input[start:i]})
		}
	}
	return tokens, nil
}

func isTokenBoundary(c byte) bool {
	switch c {
	case ' ', '\t', '\r', '\n', '(', ')', '"':
		return true
	}
	return false
}

func tokenText(token cmpToken) string {
	switch token.kind {
	case tokenOpen:
		return "("
	case tokenClose:
		return ")"
	}
	return token.text
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}
