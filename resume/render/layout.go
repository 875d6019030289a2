package render

import (
	"strings"
	"time"

	"applygen-backend/resume/model"
)

// BlockKind identifies a layout block.
type BlockKind int

const (
	BlockName BlockKind = iota
	BlockContact
	BlockHeading
	BlockParagraph
	BlockMeta
	BlockBullet
	BlockRule
	BlockSpacer
)

// Block is one styled element of a document. Text may carry inline tags.
type Block struct {
	Kind  BlockKind
	Text  string
	Style Style
}

// Layout is the engine-independent description of one document.
type Layout struct {
	Title   string
	Author  string
	Created time.Time
	Blocks  []Block
}

// VisibleText returns the text a reader would see, one block per line.
func (l Layout) VisibleText() string {
	lines := make([]string, 0, len(l.Blocks))
	for _, b := range l.Blocks {
		if b.Kind == BlockRule || b.Kind == BlockSpacer {
			continue
		}
		text := PlainText(b.Text)
		if b.Kind == BlockBullet {
			text = bulletGlyph + " " + text
		}
		lines = append(lines, text)
	}
	return strings.Join(lines, "\n")
}

const bulletGlyph = "•"

// Section headings in title case.
const (
	HeadingSummary    = "Professional Summary"
	HeadingExperience = "Professional Experience"
	HeadingProjects   = "Key Projects"
	HeadingEducation  = "Education"
	HeadingSkills     = "Skills & Certificates"
	HeadingLanguages  = "Languages"
)

type builder struct {
	theme  model.Theme
	blocks []Block
}

func (b *builder) add(kind BlockKind, text string) {
	b.blocks = append(b.blocks, Block{Kind: kind, Text: text, Style: styleFor(kind)})
}

func (b *builder) heading(title string) {
	if len(b.blocks) > 0 {
		b.add(BlockSpacer, "")
	}
	text := title
	if b.theme.HeadingCase != model.HeadingTitle {
		text = strings.ToUpper(title)
	}
	blk := Block{Kind: BlockHeading, Text: text, Style: styleFor(BlockHeading)}
	blk.Style.Color = b.theme.AccentColor
	b.blocks = append(b.blocks, blk)
}

func (b *builder) rule() {
	blk := Block{Kind: BlockRule, Style: styleFor(BlockRule)}
	blk.Style.Color = b.theme.AccentColor
	b.blocks = append(b.blocks, blk)
}

// ResumeLayout arranges a generated resume. Empty sections are omitted.
func ResumeLayout(c model.Candidate, doc model.ResumeDocument, theme model.Theme) Layout {
	b := &builder{theme: theme}

	name := styleFor(BlockName)
	name.Font = fontOr(theme.NameFont)
	name.Align = alignOr(theme.NameAlign)
	name.Color = theme.AccentColor
	b.blocks = append(b.blocks, Block{Kind: BlockName, Text: escapeTags(c.Name), Style: name})

	if line := contactLine(c, doc.Contact, theme.Separator); line != "" {
		contact := styleFor(BlockContact)
		contact.Align = name.Align
		b.blocks = append(b.blocks, Block{Kind: BlockContact, Text: escapeTags(line), Style: contact})
	}
	b.rule()

	if summary := strings.TrimSpace(doc.Summary); summary != "" {
		b.heading(HeadingSummary)
		b.add(BlockParagraph, NormalizeMarkup(summary))
	}

	if len(doc.Experience) > 0 {
		b.heading(HeadingExperience)
		for _, exp := range doc.Experience {
			b.add(BlockParagraph, roleLine(exp, theme.CompanyEmphasis))
			if d := strings.TrimSpace(exp.Duration); d != "" {
				b.add(BlockMeta, escapeTags(d))
			}
			bullets(b, exp.Description)
		}
	}

	if len(doc.Projects) > 0 {
		b.heading(HeadingProjects)
		for _, p := range doc.Projects {
			if t := strings.TrimSpace(p.Title); t != "" {
				b.add(BlockParagraph, "<b>"+escapeTags(t)+"</b>")
			}
			bullets(b, p.Description)
		}
	}

	if len(doc.Education) > 0 {
		b.heading(HeadingEducation)
		for _, edu := range doc.Education {
			if d := strings.TrimSpace(edu.Degree); d != "" {
				b.add(BlockParagraph, "<b>"+escapeTags(d)+"</b>")
			}
			if meta := joinNonEmpty(" | ", edu.University, string(edu.Year)); meta != "" {
				b.add(BlockMeta, escapeTags(meta))
			}
			if det := strings.TrimSpace(edu.Details); det != "" {
				b.add(BlockParagraph, NormalizeMarkup(det))
			}
		}
	}

	skills := joinNonEmpty(", ", doc.Skills...)
	certs := joinNonEmpty(", ", doc.Certificates...)
	if skills != "" || certs != "" {
		b.heading(HeadingSkills)
		if skills != "" {
			b.add(BlockParagraph, "<b>Skills:</b> "+escapeTags(skills))
		}
		if certs != "" {
			b.add(BlockParagraph, "<b>Certificates:</b> "+escapeTags(certs))
		}
	}

	if langs := joinNonEmpty(", ", doc.Languages...); langs != "" {
		b.heading(HeadingLanguages)
		b.add(BlockParagraph, escapeTags(langs))
	}

	return Layout{
		Title:  c.Name + " - Resume",
		Author: c.Name,
		Blocks: b.blocks,
	}
}

// CoverLetterLayout arranges cover letter prose under a dated header.
func CoverLetterLayout(c model.Candidate, text string, theme model.Theme, date time.Time) Layout {
	b := &builder{theme: theme}

	name := styleFor(BlockName)
	name.Font = fontOr(theme.LetterHeaderFont)
	name.Align = alignOr(theme.LetterHeaderAlign)
	name.Color = theme.LetterHeaderColor
	b.blocks = append(b.blocks, Block{Kind: BlockName, Text: escapeTags(c.Name), Style: name})

	dateStyle := styleFor(BlockContact)
	dateStyle.Align = name.Align
	b.blocks = append(b.blocks, Block{Kind: BlockContact, Text: "Date: " + date.Format("02.01.2006"), Style: dateStyle})
	b.rule()
	b.add(BlockSpacer, "")

	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			b.add(BlockParagraph, NormalizeMarkup(line))
		}
	}

	return Layout{
		Title:  c.Name + " - Cover Letter",
		Author: c.Name,
		Blocks: b.blocks,
	}
}

func roleLine(exp model.Experience, emphasis model.Emphasis) string {
	role := escapeTags(strings.TrimSpace(exp.Role))
	company := escapeTags(strings.TrimSpace(exp.Company))
	if company != "" {
		if emphasis == model.EmphasisItalic {
			company = "<i>" + company + "</i>"
		} else {
			company = "<b>" + company + "</b>"
		}
	}
	switch {
	case role == "":
		return company
	case company == "":
		return "<b>" + role + "</b>"
	default:
		return "<b>" + role + "</b> at " + company
	}
}

func bullets(b *builder, lines model.Lines) {
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			b.add(BlockBullet, NormalizeMarkup(line))
		}
	}
}

func contactLine(c model.Candidate, contact model.Contact, sep string) string {
	if sep == "" {
		sep = "|"
	}
	email := firstNonEmpty(c.Email, contact.Email)
	phone := firstNonEmpty(c.Phone, contact.Phone)
	return joinNonEmpty(" "+sep+" ", email, phone, c.Location)
}

// escapeTags breaks up sequences that would otherwise parse as inline tags.
func escapeTags(s string) string {
	if !strings.Contains(s, "<") {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		b.WriteByte(s[i])
		if s[i] == '<' {
			if _, n := matchTag(s[i:]); n > 0 {
				b.WriteByte(' ')
			}
		}
	}
	return b.String()
}

func joinNonEmpty(sep string, parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, sep)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func fontOr(font string) string {
	switch font {
	case "Helvetica", "Times", "Courier":
		return font
	default:
		return bodyFont
	}
}

func alignOr(a model.Alignment) model.Alignment {
	if a == model.AlignCenter {
		return a
	}
	return model.AlignLeft
}
