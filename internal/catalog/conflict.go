package catalog

import "strings"

// FieldDecision is the outcome of comparing a stored value with an
// incoming one.
type FieldDecision int

const (
	// FieldKeep leaves the stored value alone; the incoming value added
	// nothing.
	FieldKeep FieldDecision = iota
	// FieldAdopt fills an empty stored value with the incoming one.
	FieldAdopt
	// FieldConflict records a disagreement; the stored value stays until a
	// curator resolves it.
	FieldConflict
)

// CheckField applies the asymmetric disagreement rule. A missing value on
// either side is absence of information, never a conflict: only two
// present, differing values disagree.
func CheckField(current, incoming string) FieldDecision {
	current = strings.TrimSpace(current)
	incoming = strings.TrimSpace(incoming)
	switch {
	case incoming == "":
		return FieldKeep
	case current == "":
		return FieldAdopt
	case current == incoming:
		return FieldKeep
	default:
		return FieldConflict
	}
}
