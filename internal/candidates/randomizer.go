package candidates

import (
	"applygen-backend/internal/catalog"
	"applygen-backend/resume/model"
)

// Randomizer assigns location, universities and a visual theme. Its choices
// never depend on job description content.
type Randomizer struct {
	src          Source
	universities []string
}

// NewRandomizer builds a randomizer drawing universities from the given pool.
func NewRandomizer(src Source, universities []string) *Randomizer {
	return &Randomizer{src: src, universities: append([]string(nil), universities...)}
}

// Assign returns a copy of c with a location in country and one or two
// distinct universities depending on the education level.
func (r *Randomizer) Assign(c model.Candidate, country catalog.Country, educationLevel string) model.Candidate {
	out := c.Clone()
	if city := Pick(r.src, country.Cities); city != "" {
		out.Location = city + ", " + country.Name
	} else {
		out.Location = country.Name
	}
	out.MastersUniversity = ""
	out.BachelorsUniversity = ""
	if catalog.IsGraduateLevel(educationLevel) {
		picked := Sample(r.src, r.universities, 2)
		if len(picked) > 0 {
			out.MastersUniversity = picked[0]
		}
		if len(picked) > 1 {
			out.BachelorsUniversity = picked[1]
		}
		return out
	}
	out.BachelorsUniversity = Pick(r.src, r.universities)
	return out
}

// Theme samples one theme with independent uniform choices.
func (r *Randomizer) Theme() model.Theme {
	return model.Theme{
		AccentColor:       Pick(r.src, model.Palette),
		NameFont:          Pick(r.src, model.NameFonts),
		NameAlign:         Pick(r.src, model.Alignments),
		HeadingCase:       Pick(r.src, model.HeadingCases),
		CompanyEmphasis:   Pick(r.src, model.Emphases),
		Separator:         Pick(r.src, model.Separators),
		LetterHeaderFont:  Pick(r.src, model.LetterFonts),
		LetterHeaderAlign: Pick(r.src, model.Alignments),
		LetterHeaderColor: Pick(r.src, model.Palette),
	}
}
