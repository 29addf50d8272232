package mentions

import (
	"strings"
	"unicode"
)

// Kind tags a parsed segment of comment text.
type Kind int

const (
	Literal Kind = iota
	MentionLegacy
	MentionPlain
	Bold
	Italic
)

func (k Kind) String() string {
	switch k {
	case Literal:
		return "literal"
	case MentionLegacy:
		return "mention_legacy"
	case MentionPlain:
		return "mention"
	case Bold:
		return "bold"
	case Italic:
		return "italic"
	default:
		return "unknown"
	}
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Segment is one node of parsed comment text.
//
// Literal and mention segments carry the source text they were read from.
// Mentions also carry the display Name; legacy mentions keep the bracketed
// image reference in Image, which is parsed but never rendered. Bold and
// Italic segments only carry Children.
type Segment struct {
	Kind     Kind      `json:"kind"`
	Text     string    `json:"text,omitempty"`
	Name     string    `json:"name,omitempty"`
	Image    string    `json:"image,omitempty"`
	Children []Segment `json:"children,omitempty"`
}

func (s Segment) IsMention() bool {
	return s.Kind == MentionLegacy || s.Kind == MentionPlain
}

// Parse scans text left to right into segments. Mentions are read first as
// atomic tokens so their names are never split by emphasis. Bold pairs are
// then matched in literal text on a single line, and italic pairs are matched
// around whole mentions and bold spans, both at the top level and inside each
// bold span. Anything that does not pair up stays literal, so every input
// produces a well-formed tree.
func Parse(text string) []Segment {
	units := tokenize([]rune(text))
	return segmentsOf(italicize(embolden(units)))
}

// Names returns the distinct display names mentioned in text, in order of
// first appearance.
func Names(text string) []string {
	var names []string
	seen := make(map[string]bool)
	var walk func([]Segment)
	walk = func(segs []Segment) {
		for _, s := range segs {
			if s.IsMention() && !seen[s.Name] {
				seen[s.Name] = true
				names = append(names, s.Name)
			}
			walk(s.Children)
		}
	}
	walk(Parse(text))
	return names
}

// unit is a rune of literal text, an atomic mention, or an emphasis group.
type unit struct {
	kind  Kind
	r     rune
	atom  *Segment
	inner []unit
}

func (u unit) is(r rune) bool {
	return u.kind == Literal && u.r == r
}

func tokenize(runes []rune) []unit {
	units := make([]unit, 0, len(runes))
	for i := 0; i < len(runes); {
		if runes[i] == '@' {
			seg, n := scanLegacy(runes, i)
			if n == 0 {
				seg, n = scanPlain(runes, i)
			}
			if n > 0 {
				units = append(units, unit{kind: seg.Kind, atom: &seg})
				i += n
				continue
			}
		}
		units = append(units, unit{r: runes[i]})
		i++
	}
	return units
}

// scanLegacy reads @[image]Name Words at runes[at]. The name runs greedily
// over words of non-space runes other than '@', separated by blanks on the
// same line.
func scanLegacy(runes []rune, at int) (Segment, int) {
	if at+1 >= len(runes) || runes[at+1] != '[' {
		return Segment{}, 0
	}

	closing := -1
	for j := at + 2; j < len(runes); j++ {
		if runes[j] == ']' {
			closing = j
			break
		}
	}
	if closing < 0 {
		return Segment{}, 0
	}

	start := closing + 1
	end := legacyWord(runes, start)
	if end == start {
		return Segment{}, 0
	}
	for {
		next := skipBlanks(runes, end)
		if next == end {
			break
		}
		wordEnd := legacyWord(runes, next)
		if wordEnd == next {
			break
		}
		end = wordEnd
	}

	return Segment{
		Kind:  MentionLegacy,
		Text:  string(runes[at:end]),
		Name:  strings.TrimSpace(string(runes[start:end])),
		Image: string(runes[at+2 : closing]),
	}, end - at
}

func legacyWord(runes []rune, i int) int {
	for i < len(runes) && !unicode.IsSpace(runes[i]) && runes[i] != '@' {
		i++
	}
	return i
}

// scanPlain reads @Name at runes[at]: an ASCII letter and at least one more
// letter or digit, optionally followed by blank-separated capitalized words.
// The longest such name that is properly terminated wins.
func scanPlain(runes []rune, at int) (Segment, int) {
	start := at + 1
	if start+1 >= len(runes) || !isASCIILetter(runes[start]) || !isASCIIAlnum(runes[start+1]) {
		return Segment{}, 0
	}

	ends := []int{alnumRun(runes, start+1)}
	for {
		last := ends[len(ends)-1]
		next := skipBlanks(runes, last)
		if next == last || next >= len(runes) || !isASCIIUpper(runes[next]) {
			break
		}
		ends = append(ends, alnumRun(runes, next+1))
	}

	for i := len(ends) - 1; i >= 0; i-- {
		end := ends[i]
		if terminatesName(runes, end) {
			return Segment{
				Kind: MentionPlain,
				Text: string(runes[at:end]),
				Name: string(runes[start:end]),
			}, end - at
		}
	}
	return Segment{}, 0
}

// terminatesName reports whether a plain name may end right before runes[i]:
// at the end of text, before punctuation, a newline or another '@', or before
// whitespace that leads into a lowercase word, a newline or the end of text.
func terminatesName(runes []rune, i int) bool {
	if i >= len(runes) {
		return true
	}
	switch runes[i] {
	case '.', ',', '!', '?', ';', ':', '\n', '@':
		return true
	}
	if !unicode.IsSpace(runes[i]) {
		return false
	}
	for ; i < len(runes) && unicode.IsSpace(runes[i]); i++ {
		if runes[i] == '\n' {
			return true
		}
	}
	return i == len(runes) || (runes[i] >= 'a' && runes[i] <= 'z')
}

func skipBlanks(runes []rune, i int) int {
	for i < len(runes) && runes[i] != '\n' && unicode.IsSpace(runes[i]) {
		i++
	}
	return i
}

func alnumRun(runes []rune, i int) int {
	for i < len(runes) && isASCIIAlnum(runes[i]) {
		i++
	}
	return i
}

func isASCIIUpper(r rune) bool { return r >= 'A' && r <= 'Z' }

func isASCIILetter(r rune) bool { return isASCIIUpper(r) || (r >= 'a' && r <= 'z') }

func isASCIIAlnum(r rune) bool { return isASCIILetter(r) || (r >= '0' && r <= '9') }

// embolden groups **...** pairs. The closing pair is the nearest one on the
// same line; an opener without one is left literal.
func embolden(in []unit) []unit {
	out := make([]unit, 0, len(in))
	for i := 0; i < len(in); {
		if i+1 < len(in) && in[i].is('*') && in[i+1].is('*') {
			if end := closingBold(in, i+2); end >= 0 {
				out = append(out, unit{kind: Bold, inner: italicize(in[i+2 : end])})
				i = end + 2
				continue
			}
		}
		out = append(out, in[i])
		i++
	}
	return out
}

func closingBold(in []unit, from int) int {
	for j := from; j+1 < len(in); j++ {
		if in[j].is('\n') {
			return -1
		}
		if in[j].is('*') && in[j+1].is('*') {
			return j
		}
	}
	return -1
}

// italicize groups *...* pairs whose stars are not adjacent to another star.
func italicize(in []unit) []unit {
	out := make([]unit, 0, len(in))
	for i := 0; i < len(in); {
		if in[i].is('*') && (i == 0 || !in[i-1].is('*')) {
			if end := closingItalic(in, i+1); end >= 0 {
				out = append(out, unit{kind: Italic, inner: in[i+1 : end]})
				i = end + 1
				continue
			}
		}
		out = append(out, in[i])
		i++
	}
	return out
}

func closingItalic(in []unit, from int) int {
	for j := from; j < len(in); j++ {
		if !in[j].is('*') {
			continue
		}
		if j == from || (j+1 < len(in) && in[j+1].is('*')) {
			return -1
		}
		return j
	}
	return -1
}

func segmentsOf(units []unit) []Segment {
	var segs []Segment
	var lit []rune
	flush := func() {
		if len(lit) > 0 {
			segs = append(segs, Segment{Kind: Literal, Text: string(lit)})
			lit = lit[:0]
		}
	}

	for _, u := range units {
		switch u.kind {
		case Literal:
			lit = append(lit, u.r)
		case MentionLegacy, MentionPlain:
			flush()
			segs = append(segs, *u.atom)
		default:
			flush()
			segs = append(segs, Segment{Kind: u.kind, Children: segmentsOf(u.inner)})
		}
	}
	flush()
	return segs
}
