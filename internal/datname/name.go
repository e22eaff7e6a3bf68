package datname

import (
	"strconv"
	"strings"
)

// DumpStatus classifies the quality of a dump as declared by the DAT entry.
type DumpStatus string

const (
	StatusNormal    DumpStatus = "normal"
	StatusVerified  DumpStatus = "verified"
	StatusBadDump   DumpStatus = "bad"
	StatusOverdump  DumpStatus = "overdump"
	StatusPrototype DumpStatus = "prototype"
	StatusBeta      DumpStatus = "beta"
	StatusSample    DumpStatus = "sample"
)

// ParsedName is the structured form of a DAT entry name.
type ParsedName struct {
	Title      string
	Regions    []string
	Revision   string
	Version    string
	Languages  []string
	Flags      []string
	DiscNumber int
	DiscLabel  string
	HasDisc    bool
	DumpStatus DumpStatus
}

// Parse splits a DAT entry name into a title and classified tags.
func Parse(name string) ParsedName {
	parsed := ParsedName{DumpStatus: StatusNormal}

	title, tags := splitTags(name)
	parsed.Title = strings.TrimSpace(title)

	seenRegions := make(map[string]struct{})
	for _, tag := range tags {
		if tag.bracketed {
			parsed.classifyBracket(tag.content)
			continue
		}
		parsed.classifyParen(tag.content, seenRegions)
	}
	return parsed
}

type tag struct {
	content   string
	bracketed bool
}

// splitTags separates the leading title from parenthesized and bracketed
// tags. Depth is tracked per tag so a tag containing its own parentheses,
// e.g. "(Taikenban Sample ROM (Disc 2))", is captured whole.
func splitTags(name string) (string, []tag) {
	var title strings.Builder
	var tags []tag
	i := 0
	inTitle := true
	for i < len(name) {
		c := name[i]
		switch c {
		case '(', '[':
			close := byte(')')
			if c == '[' {
				close = ']'
			}
			depth := 1
			j := i + 1
			for j < len(name) && depth > 0 {
				switch name[j] {
				case c:
					depth++
				case close:
					depth--
				}
				j++
			}
			content := name[i+1 : j-1]
			if depth > 0 {
				// Unterminated tag: take the rest verbatim.
				content = name[i+1:]
				j = len(name)
			}
			tags = append(tags, tag{content: strings.TrimSpace(content), bracketed: c == '['})
			inTitle = false
			i = j
		default:
			if inTitle {
				title.WriteByte(c)
			}
			i++
		}
	}
	return title.String(), tags
}

func (p *ParsedName) classifyParen(content string, seenRegions map[string]struct{}) {
	if content == "" {
		return
	}
	if regions, ok := parseRegionList(content); ok {
		for _, region := range regions {
			if _, dup := seenRegions[region]; dup {
				continue
			}
			seenRegions[region] = struct{}{}
			p.Regions = append(p.Regions, region)
		}
		return
	}
	if strings.HasPrefix(content, "Rev ") && len(content) > len("Rev ") {
		p.Revision = content
		return
	}
	if isVersionTag(content) {
		p.Version = content
		return
	}
	if number, label, ok := parseDiscTag(content); ok {
		p.DiscNumber = number
		p.DiscLabel = label
		p.HasDisc = true
		return
	}
	if langs, ok := parseLanguageList(content); ok {
		p.Languages = append(p.Languages, langs...)
		return
	}
	p.Flags = append(p.Flags, content)
}

func (p *ParsedName) classifyBracket(content string) {
	switch content {
	case "!":
		p.DumpStatus = StatusVerified
	case "b":
		p.DumpStatus = StatusBadDump
	case "o":
		p.DumpStatus = StatusOverdump
	default:
		p.Flags = append(p.Flags, "["+content+"]")
	}
}

// parseRegionList accepts the tag only when every comma-separated part is a
// known region name.
func parseRegionList(content string) ([]string, bool) {
	parts := strings.Split(content, ",")
	regions := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" || !IsRegion(part) {
			return nil, false
		}
		regions = append(regions, part)
	}
	return regions, true
}

func isVersionTag(content string) bool {
	if len(content) < 2 {
		return false
	}
	if content[0] != 'v' && content[0] != 'V' {
		return false
	}
	return content[1] >= '0' && content[1] <= '9'
}

// parseDiscTag handles "Disc N" and "Disc N - Label" forms.
func parseDiscTag(content string) (int, string, bool) {
	rest, ok := strings.CutPrefix(content, "Disc ")
	if !ok {
		return 0, "", false
	}
	numberPart := rest
	label := ""
	if idx := strings.Index(rest, " - "); idx >= 0 {
		numberPart = rest[:idx]
		label = strings.TrimSpace(rest[idx+len(" - "):])
	}
	number, err := strconv.ParseUint(strings.TrimSpace(numberPart), 10, 32)
	if err != nil {
		return 0, "", false
	}
	return int(number), label, true
}

// parseLanguageList accepts two or more comma-separated 2-3 letter codes,
// each starting with an uppercase letter followed by lowercase letters
// ("En,Fr,De").
func parseLanguageList(content string) ([]string, bool) {
	parts := strings.Split(content, ",")
	if len(parts) < 2 {
		return nil, false
	}
	langs := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if !isLanguageCode(part) {
			return nil, false
		}
		langs = append(langs, part)
	}
	return langs, true
}

func isLanguageCode(code string) bool {
	if len(code) < 2 || len(code) > 3 {
		return false
	}
	if code[0] < 'A' || code[0] > 'Z' {
		return false
	}
	for i := 1; i < len(code); i++ {
		if code[i] < 'a' || code[i] > 'z' {
			return false
		}
	}
	return true
}

// Status refines the bracket-derived dump status using free-form flags.
// Prototype/beta/sample markers travel as parenthesized flags in modern
// DATs rather than bracket codes.
func (p ParsedName) Status() DumpStatus {
	if p.DumpStatus != StatusNormal {
		return p.DumpStatus
	}
	for _, flag := range p.Flags {
		lowered := strings.ToLower(flag)
		switch {
		case strings.HasPrefix(lowered, "proto"):
			return StatusPrototype
		case strings.HasPrefix(lowered, "beta"):
			return StatusBeta
		case strings.HasPrefix(lowered, "sample"):
			return StatusSample
		}
	}
	return StatusNormal
}
