package render

import "applygen-backend/resume/model"

// Style captures the formatting of one layout block.
type Style struct {
	Font   string
	Size   float64
	Bold   bool
	Italic bool
	Align  model.Alignment
	Color  model.Color
}

const (
	bodyFont    = "Helvetica"
	NameSize    = 22
	HeadingSize = 12
	BodySize    = 10
	MetaSize    = 9
)

var (
	textColor = model.Color{Name: "black", R: 0, G: 0, B: 0}
	metaColor = model.Color{Name: "dimgray", R: 85, G: 85, B: 85}
)

// StyleMap centralizes the base formatting per block kind. Themes override
// fonts, alignment and colors on top of it.
var StyleMap = map[BlockKind]Style{
	BlockName: {
		Font: bodyFont,
		Size: NameSize,
		Bold: true,
	},
	BlockContact: {
		Font:  bodyFont,
		Size:  MetaSize,
		Color: metaColor,
	},
	BlockHeading: {
		Font: bodyFont,
		Size: HeadingSize,
		Bold: true,
	},
	BlockParagraph: {
		Font:  bodyFont,
		Size:  BodySize,
		Color: textColor,
	},
	BlockMeta: {
		Font:   bodyFont,
		Size:   MetaSize,
		Italic: true,
		Color:  metaColor,
	},
	BlockBullet: {
		Font:  bodyFont,
		Size:  BodySize,
		Color: textColor,
	},
}

func styleFor(kind BlockKind) Style {
	s := StyleMap[kind]
	if s.Align == "" {
		s.Align = model.AlignLeft
	}
	return s
}
