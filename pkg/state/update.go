package state

import "strings"

// Parts is a bitmask naming the FormState members a publish carries.
type Parts uint16

const (
	PartValues Parts = 1 << iota
	PartErrors
	PartTouched
	PartDirty
	PartBlurred
	PartValidating
	PartSubmitCount

	// PartFull marks a complete snapshot.
	PartFull = PartValues | PartErrors | PartTouched | PartDirty | PartBlurred | PartValidating | PartSubmitCount
)

// Update is what OnData receives. State is always the coordinator's latest
// view; Parts says which members this publish refreshed.
type Update struct {
	Parts Parts
	State FormState
}

// Has reports whether every part in p was refreshed.
func (u Update) Has(p Parts) bool {
	return u.Parts&p == p
}

// Full reports whether the update is a complete snapshot.
func (u Update) Full() bool {
	return u.Parts == PartFull
}

var partNames = []struct {
	part Parts
	name string
}{
	{PartValues, "values"},
	{PartErrors, "errors"},
	{PartTouched, "touched"},
	{PartDirty, "dirty"},
	{PartBlurred, "blurred"},
	{PartValidating, "isValidating"},
	{PartSubmitCount, "submitCount"},
}

// String renders the mask as "full" or a "|" separated list.
func (p Parts) String() string {
	if p == PartFull {
		return "full"
	}
	var names []string
	for _, pn := range partNames {
		if p&pn.part != 0 {
			names = append(names, pn.name)
		}
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, "|")
}
