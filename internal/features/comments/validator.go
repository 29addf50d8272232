package comments

import (
	"errors"
	"fmt"
	"strings"

	"github.com/syedhisham/bxtrack/internal/features/mentions"
	"github.com/syedhisham/bxtrack/internal/pkg/validator"
)

// ValidateContent trims content and checks it is present and not too long.
func ValidateContent(content *string, mentionIDs []string) error {
	*content = strings.TrimSpace(*content)
	if *content == "" {
		return errors.New("content is required")
	}
	if !validator.MaxLength(*content, mentions.MaxContentLength) {
		return fmt.Errorf("content cannot exceed %d characters", mentions.MaxContentLength)
	}
	if len(mentionIDs) > MaxMentions {
		return fmt.Errorf("a comment can mention at most %d users", MaxMentions)
	}
	return nil
}

func ValidateListQuery(query *ListQuery) error {
	switch query.Sort {
	case SortNewest, SortOldest:
		return nil
	default:
		return fmt.Errorf("sort must be %s or %s", SortNewest, SortOldest)
	}
}
