package profile

import "math"

const sectionCount = 3

// SectionStates reports per-section completeness alongside the aggregate
// percentage so the UI can highlight what is missing.
type SectionStates struct {
	Personal  bool `json:"personal"`
	Address   bool `json:"address"`
	Documents bool `json:"documents"`
}

// Sections evaluates each profile section.
func Sections(p Profile) SectionStates {
	return SectionStates{
		Personal:  p.Personal.Complete(),
		Address:   p.Address.Complete(),
		Documents: p.Documents.Complete(),
	}
}

// Completion returns the rounded percentage of complete sections. All
// sections weigh the same, so the only possible values are 0, 33, 67
// and 100.
func Completion(p Profile) int {
	states := Sections(p)
	done := 0
	for _, complete := range []bool{states.Personal, states.Address, states.Documents} {
		if complete {
			done++
		}
	}
	return int(math.Round(100 * float64(done) / sectionCount))
}
