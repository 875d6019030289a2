package model

import "fmt"

// Alignment controls horizontal placement of header text.
type Alignment string

const (
	AlignLeft   Alignment = "left"
	AlignCenter Alignment = "center"
)

// HeadingCase controls how section headings are cased.
type HeadingCase string

const (
	HeadingUpper HeadingCase = "upper"
	HeadingTitle HeadingCase = "title"
)

// Emphasis controls how company names are highlighted.
type Emphasis string

const (
	EmphasisBold   Emphasis = "bold"
	EmphasisItalic Emphasis = "italic"
)

// Color is a named palette color.
type Color struct {
	Name string `json:"name"`
	R    int    `json:"r"`
	G    int    `json:"g"`
	B    int    `json:"b"`
}

// Hex returns the CSS hex representation of the color.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Palette lists the accent colors themes are drawn from.
var Palette = []Color{
	{Name: "darkblue", R: 0, G: 0, B: 139},
	{Name: "darkslategray", R: 47, G: 79, B: 79},
	{Name: "black", R: 0, G: 0, B: 0},
	{Name: "darkgreen", R: 0, G: 100, B: 0},
	{Name: "darkred", R: 139, G: 0, B: 0},
	{Name: "navy", R: 0, G: 0, B: 128},
	{Name: "midnightblue", R: 25, G: 25, B: 112},
	{Name: "teal", R: 0, G: 128, B: 128},
	{Name: "firebrick", R: 178, G: 34, B: 34},
	{Name: "seagreen", R: 46, G: 139, B: 87},
	{Name: "indigo", R: 75, G: 0, B: 130},
	{Name: "dimgray", R: 105, G: 105, B: 105},
	{Name: "brown", R: 165, G: 42, B: 42},
	{Name: "purple", R: 128, G: 0, B: 128},
	{Name: "darkorange", R: 255, G: 140, B: 0},
}

var (
	// NameFonts are the font families used for the resume name header (always bold).
	NameFonts = []string{"Helvetica", "Times"}
	// LetterFonts are the font families used for the cover letter header (always bold).
	LetterFonts = []string{"Helvetica", "Times", "Courier"}
	// Separators are the contact-line separators.
	Separators = []string{"|", "•", "—"}
	// Alignments are the header alignments.
	Alignments = []Alignment{AlignLeft, AlignCenter}
	// HeadingCases are the section heading cases.
	HeadingCases = []HeadingCase{HeadingUpper, HeadingTitle}
	// Emphases are the company-name emphasis styles.
	Emphases = []Emphasis{EmphasisBold, EmphasisItalic}
)

// Theme bundles the presentation choices applied to one candidate's documents.
type Theme struct {
	AccentColor       Color       `json:"accentColor"`
	NameFont          string      `json:"nameFont"`
	NameAlign         Alignment   `json:"nameAlign"`
	HeadingCase       HeadingCase `json:"headingCase"`
	CompanyEmphasis   Emphasis    `json:"companyEmphasis"`
	Separator         string      `json:"separator"`
	LetterHeaderFont  string      `json:"letterHeaderFont"`
	LetterHeaderAlign Alignment   `json:"letterHeaderAlign"`
	LetterHeaderColor Color       `json:"letterHeaderColor"`
}

// DefaultTheme is a plain theme used by demos and as a fallback.
func DefaultTheme() Theme {
	return Theme{
		AccentColor:       Palette[0],
		NameFont:          "Helvetica",
		NameAlign:         AlignLeft,
		HeadingCase:       HeadingUpper,
		CompanyEmphasis:   EmphasisBold,
		Separator:         "|",
		LetterHeaderFont:  "Helvetica",
		LetterHeaderAlign: AlignLeft,
		LetterHeaderColor: Palette[2],
	}
}
