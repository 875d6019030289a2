package generation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"applygen-backend/internal/candidates"
	"applygen-backend/internal/catalog"
)

const (
	companiesPerPool = 4
	englishEntry     = "English (C1)"
	maxYears         = 40
)

// yearsPattern groups: 1 "at least"/"minimum" prefix, 2 the number,
// 3 and 4 a plus marker, 5 an experience suffix.
var yearsPattern = regexp.MustCompile(`(?i)(?:\b(at\s+least|minimum(?:\s+of)?|min\.?)\s+)?\b(\d{1,2})\s*(\+|plus)?\s*(?:(?:-|–|to)\s*\d{1,2}\s*)?(\+)?\s*(?:years?|yrs?)\b(?:'|’)?(\s+(?:of|experience|exp)\b)?`)

// Plan holds the deterministic constraints for one candidate's resume.
type Plan struct {
	CurrentYear        int      `json:"currentYear"`
	RequiredYears      int      `json:"requiredYears"`
	ExplicitYears      bool     `json:"explicitYears"`
	FullTimeRoles      int      `json:"fullTimeRoles"`
	Internships        int      `json:"internships"`
	GraduationYear     int      `json:"graduationYear"`
	Graduate           bool     `json:"graduate"`
	RequiredLanguages  []string `json:"requiredLanguages"`
	ForbiddenLanguage  string   `json:"forbiddenLanguage,omitempty"`
	SuggestedCompanies []string `json:"suggestedCompanies"`
}

// NewPlan derives the constraints from the job description, education
// level and target country. Company suggestions are drawn from src.
func NewPlan(jd, educationLevel string, country catalog.Country, globalCompanies []string, now time.Time, src candidates.Source) Plan {
	graduate := catalog.IsGraduateLevel(educationLevel)
	years, explicit := RequiredYears(jd, graduate)
	fullTime, internships := ExperienceSplit(years)
	required, forbidden := LanguageRule(jd, country)
	return Plan{
		CurrentYear:        now.Year(),
		RequiredYears:      years,
		ExplicitYears:      explicit,
		FullTimeRoles:      fullTime,
		Internships:        internships,
		GraduationYear:     now.Year() - years,
		Graduate:           graduate,
		RequiredLanguages:  required,
		ForbiddenLanguage:  forbidden,
		SuggestedCompanies: suggestCompanies(country.Companies, globalCompanies, src),
	}
}

// RequiredYears extracts the required experience from phrases such as
// "5+ years", "at least 3 years" or "2-4 years of experience", taking the
// largest lower bound. Mentions like "founded 25 years ago" do not count.
// Without a requirement, a master's implies 2 years and a bachelor's 0.
func RequiredYears(jd string, graduate bool) (int, bool) {
	best := -1
	for _, m := range yearsPattern.FindAllStringSubmatch(jd, -1) {
		if m[1] == "" && m[3] == "" && m[4] == "" && m[5] == "" {
			continue
		}
		n, err := strconv.Atoi(m[2])
		if err != nil || n > maxYears {
			continue
		}
		if n > best {
			best = n
		}
	}
	if best >= 0 {
		return best, true
	}
	if graduate {
		return 2, false
	}
	return 0, false
}

// ExperienceSplit maps required years to full-time and internship counts
// across the four experience entries.
func ExperienceSplit(years int) (fullTime, internships int) {
	switch {
	case years <= 1:
		return 0, 4
	case years <= 4:
		return 2, 2
	default:
		return 3, 1
	}
}

// LanguageRule returns the language entries a resume must list and the
// local language it must not list, if any.
func LanguageRule(jd string, country catalog.Country) (required []string, forbidden string) {
	lang := strings.TrimSpace(country.Language)
	if lang == "" {
		return []string{englishEntry}, ""
	}
	if country.AlwaysIncludeLanguage || strings.Contains(strings.ToLower(jd), strings.ToLower(lang)) {
		return []string{lang + " (C1)", englishEntry}, ""
	}
	return []string{englishEntry}, lang
}

// EnforceLanguages applies the plan's language rule to a generated list.
func (p Plan) EnforceLanguages(langs []string) []string {
	out := make([]string, 0, len(langs)+len(p.RequiredLanguages))
	forbidden := strings.ToLower(p.ForbiddenLanguage)
	for _, l := range langs {
		if strings.TrimSpace(l) == "" {
			continue
		}
		if forbidden != "" && strings.Contains(strings.ToLower(l), forbidden) {
			continue
		}
		out = append(out, l)
	}
	for _, req := range p.RequiredLanguages {
		name := strings.ToLower(languageName(req))
		found := false
		for _, l := range out {
			if strings.Contains(strings.ToLower(l), name) {
				found = true
				break
			}
		}
		if !found {
			out = append(out, req)
		}
	}
	return out
}

// SplitDescription renders the experience split for the instruction.
func (p Plan) SplitDescription() string {
	switch {
	case p.FullTimeRoles == 0:
		return fmt.Sprintf("%d internship or working-student roles", p.Internships)
	default:
		return fmt.Sprintf("%d full-time roles and %d internship", p.FullTimeRoles, p.Internships) + plural(p.Internships)
	}
}

// LanguageInstruction renders the language rule for the instruction.
func (p Plan) LanguageInstruction() string {
	line := "- Include exactly these proficiency entries: " + strings.Join(p.RequiredLanguages, ", ") + "."
	if p.ForbiddenLanguage != "" {
		line += fmt.Sprintf("\n- Do NOT list %s; the job description does not ask for it. Other relevant languages are allowed.", p.ForbiddenLanguage)
	}
	return line
}

func languageName(entry string) string {
	if i := strings.Index(entry, "("); i > 0 {
		return strings.TrimSpace(entry[:i])
	}
	return strings.TrimSpace(entry)
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

func suggestCompanies(local, global []string, src candidates.Source) []string {
	picked := candidates.Sample(src, local, companiesPerPool)
	seen := make(map[string]bool, len(picked))
	for _, c := range picked {
		seen[c] = true
	}
	var rest []string
	for _, c := range global {
		if !seen[c] {
			rest = append(rest, c)
		}
	}
	return append(picked, candidates.Sample(src, rest, companiesPerPool)...)
}
