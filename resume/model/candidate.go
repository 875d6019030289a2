package model

import "strings"

// Gender values used by the candidate pool.
const (
	GenderFemale = "Female"
	GenderMale   = "Male"
)

// Candidate is a fabricated applicant identity scoped to one batch.
type Candidate struct {
	ID                  string `json:"id" yaml:"id"`
	Name                string `json:"name" yaml:"name"`
	Gender              string `json:"gender" yaml:"gender"`
	Origin              string `json:"origin" yaml:"origin"`
	Email               string `json:"email" yaml:"email"`
	Phone               string `json:"phone" yaml:"phone"`
	Location            string `json:"location,omitempty" yaml:"-"`
	MastersUniversity   string `json:"mastersUniversity,omitempty" yaml:"-"`
	BachelorsUniversity string `json:"bachelorsUniversity,omitempty" yaml:"-"`
}

// Clone returns an independent copy of the candidate.
func (c Candidate) Clone() Candidate {
	return c
}

// Universities returns the assigned universities, graduate first.
func (c Candidate) Universities() []string {
	out := make([]string, 0, 2)
	if u := strings.TrimSpace(c.MastersUniversity); u != "" {
		out = append(out, u)
	}
	if u := strings.TrimSpace(c.BachelorsUniversity); u != "" {
		out = append(out, u)
	}
	return out
}

// PrimaryUniversity returns the most recent university of the candidate.
func (c Candidate) PrimaryUniversity() string {
	if u := c.Universities(); len(u) > 0 {
		return u[0]
	}
	return ""
}
