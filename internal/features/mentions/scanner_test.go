package mentions

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func lit(s string) Segment { return Segment{Kind: Literal, Text: s} }

func plain(name string) Segment {
	return Segment{Kind: MentionPlain, Text: "@" + name, Name: name}
}

func legacy(image, name string) Segment {
	return Segment{Kind: MentionLegacy, Text: "@[" + image + "]" + name, Name: name, Image: image}
}

func TestParse_Mentions(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []Segment
	}{
		{name: "plain at end", text: "Hello @Al", want: []Segment{lit("Hello "), plain("Al")}},
		{name: "trailing space after inserted name", text: "Hi @Ann Lee ", want: []Segment{lit("Hi "), plain("Ann Lee"), lit(" ")}},
		{name: "ends before lowercase word", text: "@Ann said hi", want: []Segment{plain("Ann"), lit(" said hi")}},
		{name: "ends at punctuation", text: "Ping @Ann Lee, please", want: []Segment{lit("Ping "), plain("Ann Lee"), lit(", please")}},
		{name: "three capitalized words", text: "@Ann Lee Smith", want: []Segment{plain("Ann Lee Smith")}},
		{name: "lowercase particle ends the name", text: "Thanks @Jan de Vries!", want: []Segment{lit("Thanks "), plain("Jan"), lit(" de Vries!")}},
		{name: "unterminated name stays literal", text: "@Ann 5 times", want: []Segment{lit("@Ann 5 times")}},
		{name: "single letter is not a name", text: "@A.", want: []Segment{lit("@A.")}},
		{name: "adjacent mentions", text: "@Ann@Bob", want: []Segment{plain("Ann"), plain("Bob")}},
		{name: "name never spans lines", text: "@Ann\nBob", want: []Segment{plain("Ann"), lit("\nBob")}},
		{name: "digits in name", text: "cc @dev42.", want: []Segment{lit("cc "), plain("dev42"), lit(".")}},
		{name: "stray at", text: "a @ b", want: []Segment{lit("a @ b")}},
		{name: "legacy greedy name", text: "@[https://img/a.png]Ann Lee said hi", want: []Segment{legacy("https://img/a.png", "Ann Lee said hi")}},
		{name: "legacy stops at next mention", text: "@[img]Ann Lee @Bob", want: []Segment{legacy("img", "Ann Lee"), lit(" "), plain("Bob")}},
		{name: "legacy stops at newline", text: "@[x]Ann\nnext", want: []Segment{legacy("x", "Ann"), lit("\nnext")}},
		{name: "legacy without closing bracket", text: "@[img Ann", want: []Segment{lit("@[img Ann")}},
		{name: "legacy without name", text: "@[img] hi", want: []Segment{lit("@[img] hi")}},
		{name: "emphasis inside legacy name is kept verbatim", text: "@[x]**Ann**", want: []Segment{legacy("x", "**Ann**")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, Parse(tt.text)); diff != "" {
				t.Errorf("Parse(%q) mismatch (-want +got):\n%s", tt.text, diff)
			}
		})
	}
}

func TestParse_Emphasis(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []Segment
	}{
		{
			name: "bold",
			text: "**bold** text",
			want: []Segment{{Kind: Bold, Children: []Segment{lit("bold")}}, lit(" text")},
		},
		{
			name: "italic",
			text: "an *it* word",
			want: []Segment{lit("an "), {Kind: Italic, Children: []Segment{lit("it")}}, lit(" word")},
		},
		{
			name: "italic inside bold",
			text: "**a *b* c**",
			want: []Segment{{Kind: Bold, Children: []Segment{
				lit("a "), {Kind: Italic, Children: []Segment{lit("b")}}, lit(" c"),
			}}},
		},
		{
			name: "bold inside italic",
			text: "*a **b** c*",
			want: []Segment{{Kind: Italic, Children: []Segment{
				lit("a "), {Kind: Bold, Children: []Segment{lit("b")}}, lit(" c"),
			}}},
		},
		{
			name: "empty bold",
			text: "****",
			want: []Segment{{Kind: Bold}},
		},
		{
			name: "unclosed bold",
			text: "**unclosed",
			want: []Segment{lit("**unclosed")},
		},
		{
			name: "bold does not cross lines",
			text: "**a\nb**",
			want: []Segment{lit("**a\nb**")},
		},
		{
			name: "italic may cross lines",
			text: "*a\nb*",
			want: []Segment{{Kind: Italic, Children: []Segment{lit("a\nb")}}},
		},
		{
			name: "italic never crosses a bold boundary",
			text: "*a **b* c**",
			want: []Segment{lit("*a "), {Kind: Bold, Children: []Segment{lit("b* c")}}},
		},
		{
			name: "adjacent italics",
			text: "*a* *b*",
			want: []Segment{
				{Kind: Italic, Children: []Segment{lit("a")}},
				lit(" "),
				{Kind: Italic, Children: []Segment{lit("b")}},
			},
		},
		{
			name: "bold around mention",
			text: "**hi @Ann.**",
			want: []Segment{{Kind: Bold, Children: []Segment{lit("hi "), plain("Ann"), lit(".")}}},
		},
		{
			name: "star right after name blocks the mention",
			text: "**@Ann Lee**",
			want: []Segment{{Kind: Bold, Children: []Segment{lit("@Ann Lee")}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, Parse(tt.text)); diff != "" {
				t.Errorf("Parse(%q) mismatch (-want +got):\n%s", tt.text, diff)
			}
		})
	}
}

func TestParse_Empty(t *testing.T) {
	require.Empty(t, Parse(""))
}

func TestNames(t *testing.T) {
	require.Equal(t, []string{"Ann", "Bob", "Cy"}, Names("@Ann and @Bob and @Ann. **@Cy!**"))
	require.Empty(t, Names("no mentions here"))
}

func TestKindString(t *testing.T) {
	require.Equal(t, "mention", MentionPlain.String())
	require.Equal(t, "mention_legacy", MentionLegacy.String())
	text, err := Bold.MarshalText()
	require.NoError(t, err)
	require.Equal(t, "bold", string(text))
}
