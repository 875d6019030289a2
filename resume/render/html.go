package render

import (
	"fmt"
	"html"
	"strings"
)

const pageCSS = `@page { size: A4; margin: 16mm 18mm; }
body { font-family: Helvetica, Arial, sans-serif; font-size: 10pt; color: #000; margin: 0; }
p { margin: 0 0 2pt 0; line-height: 1.35; }
h2 { margin: 8pt 0 3pt 0; }
hr { border: 0; border-top: 1.2pt solid; margin: 4pt 0 6pt 0; }
ul { margin: 0 0 2pt 0; padding-left: 14pt; }
.spacer { height: 6pt; }`

// HTML renders a layout as a standalone HTML document.
func HTML(l Layout) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html><head><meta charset=\"utf-8\">")
	fmt.Fprintf(&b, "<title>%s</title>", html.EscapeString(l.Title))
	if l.Author != "" {
		fmt.Fprintf(&b, "<meta name=\"author\" content=\"%s\">", html.EscapeString(l.Author))
	}
	fmt.Fprintf(&b, "<style>%s</style></head><body>\n", pageCSS)

	inList := false
	for _, blk := range l.Blocks {
		if blk.Kind == BlockBullet && !inList {
			b.WriteString("<ul>\n")
			inList = true
		} else if blk.Kind != BlockBullet && inList {
			b.WriteString("</ul>\n")
			inList = false
		}
		writeHTMLBlock(&b, blk)
	}
	if inList {
		b.WriteString("</ul>\n")
	}
	b.WriteString("</body></html>\n")
	return b.String()
}

func writeHTMLBlock(b *strings.Builder, blk Block) {
	st := blk.Style
	css := fmt.Sprintf("font-family:%s;font-size:%gpt;color:%s;text-align:%s;",
		cssFont(st.Font), st.Size, st.Color.Hex(), alignOr(st.Align))
	if st.Bold {
		css += "font-weight:bold;"
	}
	if st.Italic {
		css += "font-style:italic;"
	}
	switch blk.Kind {
	case BlockName:
		fmt.Fprintf(b, "<h1 style=\"%smargin:0;\">%s</h1>\n", css, inlineHTML(blk.Text))
	case BlockHeading:
		fmt.Fprintf(b, "<h2 style=\"%s\">%s</h2>\n", css, inlineHTML(blk.Text))
	case BlockBullet:
		fmt.Fprintf(b, "<li style=\"%s\">%s</li>\n", css, inlineHTML(blk.Text))
	case BlockRule:
		fmt.Fprintf(b, "<hr style=\"border-top-color:%s;\">\n", st.Color.Hex())
	case BlockSpacer:
		b.WriteString("<div class=\"spacer\"></div>\n")
	default:
		fmt.Fprintf(b, "<p style=\"%s\">%s</p>\n", css, inlineHTML(blk.Text))
	}
}

func inlineHTML(text string) string {
	var b strings.Builder
	for _, sp := range ParseInline(text) {
		if sp.Break {
			b.WriteString("<br/>")
			continue
		}
		s := html.EscapeString(sp.Text)
		if sp.Italic {
			s = "<i>" + s + "</i>"
		}
		if sp.Bold {
			s = "<b>" + s + "</b>"
		}
		b.WriteString(s)
	}
	return b.String()
}

func cssFont(font string) string {
	switch fontOr(font) {
	case "Times":
		return "'Times New Roman', Times, serif"
	case "Courier":
		return "'Courier New', Courier, monospace"
	default:
		return "Helvetica, Arial, sans-serif"
	}
}
