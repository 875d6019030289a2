package render

import (
	"bytes"
	"context"

	"github.com/go-pdf/fpdf"

	"applygen-backend/resume/model"
)

const (
	marginMM     = 18.0
	topMarginMM  = 16.0
	bulletIndent = 5.0
)

// PDFEngine draws layouts with fpdf core fonts on A4 paper.
type PDFEngine struct{}

// NewPDFEngine constructs the default engine.
func NewPDFEngine() *PDFEngine {
	return &PDFEngine{}
}

// Name implements Engine.
func (e *PDFEngine) Name() string { return EnginePDF }

// Render implements Engine.
func (e *PDFEngine) Render(ctx context.Context, l Layout) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(true)
	pdf.SetCatalogSort(true)
	if !l.Created.IsZero() {
		pdf.SetCreationDate(l.Created)
		pdf.SetModificationDate(l.Created)
	}
	pdf.SetTitle(l.Title, true)
	pdf.SetAuthor(l.Author, true)
	pdf.SetCreator("applygen", false)
	pdf.SetMargins(marginMM, topMarginMM, marginMM)
	pdf.SetAutoPageBreak(true, topMarginMM)
	pdf.AddPage()

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	for _, b := range l.Blocks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		drawBlock(pdf, tr, b)
		if pdf.Err() {
			return nil, pdf.Error()
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func drawBlock(pdf *fpdf.Fpdf, tr func(string) string, b Block) {
	st := b.Style
	lineHeight := st.Size * 0.5
	pdf.SetTextColor(st.Color.R, st.Color.G, st.Color.B)

	switch b.Kind {
	case BlockName, BlockContact, BlockHeading:
		pdf.SetFont(fontOr(st.Font), fontStyle(st.Bold, st.Italic), st.Size)
		if b.Kind == BlockHeading {
			pdf.Ln(1)
		}
		pdf.CellFormat(0, lineHeight+1, tr(PlainText(b.Text)), "", 1, alignStr(st.Align), false, 0, "")
	case BlockParagraph, BlockMeta:
		writeSpans(pdf, tr, st, lineHeight, ParseInline(b.Text))
		pdf.Ln(lineHeight)
	case BlockBullet:
		left, _, _, _ := pdf.GetMargins()
		pdf.SetFont(fontOr(st.Font), "", st.Size)
		pdf.SetX(left + 1)
		pdf.Write(lineHeight, tr(bulletGlyph+" "))
		pdf.SetLeftMargin(left + bulletIndent)
		writeSpans(pdf, tr, st, lineHeight, ParseInline(b.Text))
		pdf.SetLeftMargin(left)
		pdf.Ln(lineHeight)
	case BlockRule:
		left, _, right, _ := pdf.GetMargins()
		width, _ := pdf.GetPageSize()
		y := pdf.GetY() + 1
		pdf.SetDrawColor(st.Color.R, st.Color.G, st.Color.B)
		pdf.SetLineWidth(0.4)
		pdf.Line(left, y, width-right, y)
		pdf.Ln(3)
	case BlockSpacer:
		pdf.Ln(2.5)
	}
}

func writeSpans(pdf *fpdf.Fpdf, tr func(string) string, st Style, lineHeight float64, spans []Span) {
	for _, sp := range spans {
		if sp.Break {
			pdf.Ln(lineHeight)
			continue
		}
		pdf.SetFont(fontOr(st.Font), fontStyle(st.Bold || sp.Bold, st.Italic || sp.Italic), st.Size)
		pdf.Write(lineHeight, tr(sp.Text))
	}
}

func fontStyle(bold, italic bool) string {
	switch {
	case bold && italic:
		return "BI"
	case bold:
		return "B"
	case italic:
		return "I"
	default:
		return ""
	}
}

func alignStr(a model.Alignment) string {
	if a == model.AlignCenter {
		return "C"
	}
	return "L"
}
