package mentions

import (
	"html/template"
	"strings"
)

// MentionClass styles a rendered mention chip.
const MentionClass = "inline-flex items-center gap-1 px-1.5 py-0.5 rounded bg-primary/20 text-primary font-medium"

var escaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// Escape replaces &, < and > with entities. Nothing else is touched.
func Escape(s string) string {
	return escaper.Replace(s)
}

// Render turns raw comment text into display markup. All source text is
// escaped before it is written, so the result can be inserted into a page
// as-is. Render is meant for stored text, not for its own output.
func Render(text string) template.HTML {
	var b strings.Builder
	writeSegments(&b, Parse(text))
	return template.HTML(b.String())
}

func writeSegments(b *strings.Builder, segs []Segment) {
	for _, s := range segs {
		switch s.Kind {
		case Literal:
			b.WriteString(Escape(s.Text))
		case MentionLegacy, MentionPlain:
			b.WriteString(`<span class="` + MentionClass + `"><span>@`)
			b.WriteString(Escape(s.Name))
			b.WriteString(`</span></span>`)
		case Bold:
			b.WriteString(`<strong class="font-bold">`)
			writeSegments(b, s.Children)
			b.WriteString(`</strong>`)
		case Italic:
			b.WriteString(`<em class="italic">`)
			writeSegments(b, s.Children)
			b.WriteString(`</em>`)
		}
	}
}
