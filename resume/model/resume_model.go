package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

const (
	// ExperienceCount is the number of experience entries every generated resume carries.
	ExperienceCount = 4
	// ProjectCount is the number of project entries every generated resume carries.
	ProjectCount = 4
)

// ResumeDocument represents the canonical generated resume payload.
type ResumeDocument struct {
	Contact      Contact       `json:"contact"`
	Summary      string        `json:"summary"`
	Education    EducationList `json:"education"`
	Experience   []Experience  `json:"experience"`
	Projects     []Project     `json:"projects"`
	Skills       []string      `json:"skills"`
	Certificates []string      `json:"certificates"`
	Languages    []string      `json:"languages"`
}

// Contact holds the contact fields shown under the name header.
type Contact struct {
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Experience represents a work history entry.
type Experience struct {
	Company     string `json:"company"`
	Role        string `json:"role"`
	Duration    string `json:"duration"`
	Description Lines  `json:"description"`
}

// Project represents a key project entry.
type Project struct {
	Title       string `json:"title"`
	Description Lines  `json:"description"`
}

// Education represents one degree entry.
type Education struct {
	Degree     string `json:"degree"`
	University string `json:"university"`
	Year       Year   `json:"year"`
	Details    string `json:"details,omitempty"`
}

// Year is a graduation year. It also decodes from a JSON number.
type Year string

// UnmarshalJSON accepts either a string or a number.
func (y *Year) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*y = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*y = Year(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("year: %w", err)
	}
	*y = Year(n.String())
	return nil
}

// Lines is a list of description lines. It also decodes from a single string.
type Lines []string

// UnmarshalJSON accepts either a string or an array of strings.
func (l *Lines) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*l = nil
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if strings.TrimSpace(s) == "" {
			*l = nil
			return nil
		}
		*l = Lines{s}
		return nil
	}
	var items []string
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("description: %w", err)
	}
	*l = Lines(items)
	return nil
}

// EducationList is a list of education entries. It also decodes from a single object.
type EducationList []Education

// UnmarshalJSON accepts either one education object or an array of them.
func (e *EducationList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*e = nil
		return nil
	}
	if len(data) > 0 && data[0] == '{' {
		var single Education
		if err := json.Unmarshal(data, &single); err != nil {
			return err
		}
		*e = EducationList{single}
		return nil
	}
	var items []Education
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("education: %w", err)
	}
	*e = EducationList(items)
	return nil
}

// Empty reports whether the document carries no content at all.
func (d ResumeDocument) Empty() bool {
	return strings.TrimSpace(d.Summary) == "" &&
		len(d.Education) == 0 &&
		len(d.Experience) == 0 &&
		len(d.Projects) == 0 &&
		len(d.Skills) == 0 &&
		len(d.Certificates) == 0 &&
		len(d.Languages) == 0
}

// MostRecentEmployer returns the company of the first experience entry.
func (d ResumeDocument) MostRecentEmployer() string {
	for _, exp := range d.Experience {
		if company := strings.TrimSpace(exp.Company); company != "" {
			return company
		}
	}
	return ""
}

// Validate enforces the generated resume shape.
func (d ResumeDocument) Validate() error {
	var errs []error
	if strings.TrimSpace(d.Summary) == "" {
		errs = append(errs, errors.New("summary is required"))
	}
	if len(d.Education) == 0 {
		errs = append(errs, errors.New("education requires at least one entry"))
	}
	if len(d.Experience) != ExperienceCount {
		errs = append(errs, fmt.Errorf("experience must have exactly %d entries, got %d", ExperienceCount, len(d.Experience)))
	}
	for i, exp := range d.Experience {
		if strings.TrimSpace(exp.Role) == "" {
			errs = append(errs, fmt.Errorf("experience[%d].role is required", i))
		}
		if strings.TrimSpace(exp.Company) == "" {
			errs = append(errs, fmt.Errorf("experience[%d].company is required", i))
		}
	}
	if len(d.Projects) != ProjectCount {
		errs = append(errs, fmt.Errorf("projects must have exactly %d entries, got %d", ProjectCount, len(d.Projects)))
	}
	for i, p := range d.Projects {
		if strings.TrimSpace(p.Title) == "" {
			errs = append(errs, fmt.Errorf("projects[%d].title is required", i))
		}
	}
	return errors.Join(errs...)
}
