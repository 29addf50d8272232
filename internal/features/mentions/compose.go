package mentions

import "unicode/utf8"

// MentionSet is the ordered, duplicate-free list of user ids mentioned by a
// comment. It is kept beside the text and never derived from it.
type MentionSet struct {
	ids  []string
	seen map[string]struct{}
}

func NewMentionSet(ids ...string) *MentionSet {
	s := &MentionSet{seen: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

// Add appends id unless it is empty or already present.
func (s *MentionSet) Add(id string) bool {
	if id == "" {
		return false
	}
	if _, ok := s.seen[id]; ok {
		return false
	}
	s.seen[id] = struct{}{}
	s.ids = append(s.ids, id)
	return true
}

func (s *MentionSet) Contains(id string) bool {
	_, ok := s.seen[id]
	return ok
}

func (s *MentionSet) Len() int { return len(s.ids) }

// IDs returns a copy of the ids in insertion order.
func (s *MentionSet) IDs() []string {
	out := make([]string, len(s.ids))
	copy(out, s.ids)
	return out
}

// Draft pairs comment text with its mention ids. The two are eventually
// consistent: text may name people who are not in Mentions and Mentions may
// keep ids whose names were deleted from the text. Neither is validated
// against the other.
type Draft struct {
	Content  string   `json:"content"`
	Mentions []string `json:"mentions"`
}

// TextChange is the result of an edit: the unmodified content and the open
// trigger, if any.
type TextChange struct {
	Content string        `json:"content"`
	Trigger *TriggerState `json:"trigger"`
}

// OnTextChange recomputes the trigger for the current text and caret.
func OnTextChange(text string, caret int, roster []Candidate) TextChange {
	change := TextChange{Content: text}
	if t, ok := DetectTrigger(text, caret, len(roster) > 0); ok {
		change.Trigger = &t
	}
	return change
}

// Selection is the result of picking a candidate from the picker.
type Selection struct {
	NewText   string `json:"content"`
	NewCaret  int    `json:"caret"`
	MentionID string `json:"mentionId"`
}

// OnCandidateSelect replaces the text between the trigger and the caret with
// "@Name " and places the caret after the inserted space. Offsets are runes.
func OnCandidateSelect(c Candidate, text string, triggerOffset, caret int) Selection {
	runes := []rune(text)
	triggerOffset = clamp(triggerOffset, 0, len(runes))
	caret = clamp(caret, triggerOffset, len(runes))

	token := "@" + c.Name + " "
	out := make([]rune, 0, len(runes)+len(token))
	out = append(out, runes[:triggerOffset]...)
	out = append(out, []rune(token)...)
	out = append(out, runes[caret:]...)

	return Selection{
		NewText:   string(out),
		NewCaret:  triggerOffset + utf8.RuneCountInString(token),
		MentionID: c.ID,
	}
}
