package mentions

import (
	"errors"
	"unicode/utf8"
)

// MaxContentLength bounds composer text accepted over HTTP.
const MaxContentLength = 5000

func ValidateSuggestRequest(req *SuggestRequest) error {
	if utf8.RuneCountInString(req.Text) > MaxContentLength {
		return errors.New("text must be 5000 characters or less")
	}
	if req.Caret < 0 {
		return errors.New("caret must not be negative")
	}
	if req.Limit < 0 || req.Limit > 50 {
		return errors.New("limit must be between 0 and 50")
	}
	return nil
}

func ValidateSelectRequest(req *SelectRequest) error {
	if utf8.RuneCountInString(req.Text) > MaxContentLength {
		return errors.New("text must be 5000 characters or less")
	}
	if req.Caret < 0 {
		return errors.New("caret must not be negative")
	}
	if req.UserID == "" {
		return errors.New("userId is required")
	}
	return nil
}

func ValidatePreviewRequest(req *PreviewRequest) error {
	if utf8.RuneCountInString(req.Content) > MaxContentLength {
		return errors.New("content must be 5000 characters or less")
	}
	return nil
}
