package mentions

import "html/template"

// SuggestRequest is sent on every keystroke or caret move in the composer.
type SuggestRequest struct {
	Text  string `json:"text"`
	Caret int    `json:"caret" example:"9"`
	Limit int    `json:"limit,omitempty" example:"10"`
}

type SuggestResponse struct {
	Trigger    *TriggerState `json:"trigger"`
	Candidates []Candidate   `json:"candidates"`
}

// SelectRequest picks UserID for the trigger open at Caret.
type SelectRequest struct {
	Text     string   `json:"text"`
	Caret    int      `json:"caret" example:"6"`
	UserID   string   `json:"userId" binding:"required"`
	Mentions []string `json:"mentions"`
}

type SelectResponse struct {
	Content  string   `json:"content" example:"Hi @Ann Lee "`
	Caret    int      `json:"caret" example:"12"`
	Mentions []string `json:"mentions"`
}

type PreviewRequest struct {
	Content string `json:"content"`
}

type PreviewResponse struct {
	HTML     template.HTML `json:"html"`
	Names    []string      `json:"names"`
	Segments []Segment     `json:"segments"`
}
