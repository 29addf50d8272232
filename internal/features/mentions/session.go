package mentions

import "iter"

// Session tracks one comment being written against a fixed roster. It is not
// safe for concurrent use.
type Session struct {
	roster   []Candidate
	text     string
	caret    int
	trigger  *TriggerState
	mentions *MentionSet
}

// NewSession starts from draft with the caret at the end of its content.
func NewSession(roster []Candidate, draft Draft) *Session {
	s := &Session{
		roster:   roster,
		mentions: NewMentionSet(draft.Mentions...),
	}
	s.Edit(draft.Content, len([]rune(draft.Content)))
	return s
}

// Edit records new text and caret position and recomputes the trigger.
// Caret-only moves go through Edit too.
func (s *Session) Edit(text string, caret int) TextChange {
	change := OnTextChange(text, caret, s.roster)
	s.text = text
	s.caret = clamp(caret, 0, len([]rune(text)))
	s.trigger = change.Trigger
	return change
}

func (s *Session) Trigger() (TriggerState, bool) {
	if s.trigger == nil {
		return TriggerState{}, false
	}
	return *s.trigger, true
}

// Candidates yields the picker entries for the open trigger, or nothing.
func (s *Session) Candidates(limit int) iter.Seq[Candidate] {
	if s.trigger == nil {
		return func(func(Candidate) bool) {}
	}
	return MatchCandidates(s.roster, s.trigger.Query, limit)
}

// Select inserts c at the open trigger and records its id. It reports false
// when no trigger is open.
func (s *Session) Select(c Candidate) (Selection, bool) {
	if s.trigger == nil {
		return Selection{}, false
	}
	sel := OnCandidateSelect(c, s.text, s.trigger.Offset, s.caret)
	s.mentions.Add(sel.MentionID)
	s.text = sel.NewText
	s.caret = sel.NewCaret
	s.trigger = nil
	return sel, true
}

// Dismiss closes the picker until the next edit.
func (s *Session) Dismiss() {
	s.trigger = nil
}

func (s *Session) Caret() int { return s.caret }

func (s *Session) Draft() Draft {
	return Draft{Content: s.text, Mentions: s.mentions.IDs()}
}
