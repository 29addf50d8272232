package issues

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/syedhisham/bxtrack/internal/pkg/validator"
)

// ValidateCreateIssue trims the request in place, fills in the default
// priority and status, and parses the assignee.
func ValidateCreateIssue(req *CreateIssueRequest) (*primitive.ObjectID, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)
	if err := validateText(req.Title, req.Description); err != nil {
		return nil, err
	}

	if req.Priority == "" {
		req.Priority = PriorityMedium
	}
	if req.Status == "" {
		req.Status = StatusOpen
	}
	if err := validateEnums(req.Priority, req.Status); err != nil {
		return nil, err
	}
	return parseAssignee(req.Assignee)
}

// ValidateUpdateIssue trims the provided fields in place.
func ValidateUpdateIssue(req *UpdateIssueRequest) (*primitive.ObjectID, error) {
	if req.Title == nil && req.Description == nil && req.Priority == nil && req.Status == nil && !req.Assignee.Set {
		return nil, errors.New("no fields to update")
	}

	if req.Title != nil {
		*req.Title = strings.TrimSpace(*req.Title)
		if err := validateText(*req.Title, "-"); err != nil {
			return nil, err
		}
	}
	if req.Description != nil {
		*req.Description = strings.TrimSpace(*req.Description)
		if err := validateText("-", *req.Description); err != nil {
			return nil, err
		}
	}
	if req.Priority != nil && !slices.Contains(Priorities, *req.Priority) {
		return nil, fmt.Errorf("priority must be one of %s", strings.Join(Priorities, ", "))
	}
	if req.Status != nil && !slices.Contains(Statuses, *req.Status) {
		return nil, fmt.Errorf("status must be one of %s", strings.Join(Statuses, ", "))
	}
	if !req.Assignee.Set {
		return nil, nil
	}
	return parseAssignee(req.Assignee.Value)
}

// ValidateListQuery converts query filters.
func ValidateListQuery(q *ListQuery) (Filter, error) {
	var f Filter
	if q.Status != "" {
		if !slices.Contains(Statuses, q.Status) {
			return f, fmt.Errorf("status must be one of %s", strings.Join(Statuses, ", "))
		}
		f.Status = q.Status
	}
	if q.Priority != "" {
		if !slices.Contains(Priorities, q.Priority) {
			return f, fmt.Errorf("priority must be one of %s", strings.Join(Priorities, ", "))
		}
		f.Priority = q.Priority
	}
	if q.Assignee != "" {
		id, err := primitive.ObjectIDFromHex(q.Assignee)
		if err != nil {
			return f, errors.New("invalid assignee id")
		}
		f.AssigneeID = &id
	}
	return f, nil
}

func validateText(title, description string) error {
	switch {
	case title == "":
		return errors.New("title is required")
	case description == "":
		return errors.New("description is required")
	case !validator.MaxLength(title, MaxTitleLength):
		return fmt.Errorf("title cannot exceed %d characters", MaxTitleLength)
	case !validator.MaxLength(description, MaxDescriptionLength):
		return fmt.Errorf("description cannot exceed %d characters", MaxDescriptionLength)
	}
	return nil
}

func validateEnums(priority, status string) error {
	if !slices.Contains(Priorities, priority) {
		return fmt.Errorf("priority must be one of %s", strings.Join(Priorities, ", "))
	}
	if !slices.Contains(Statuses, status) {
		return fmt.Errorf("status must be one of %s", strings.Join(Statuses, ", "))
	}
	return nil
}

// parseAssignee treats nil and "" as unassigned.
func parseAssignee(raw *string) (*primitive.ObjectID, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	id, err := primitive.ObjectIDFromHex(*raw)
	if err != nil {
		return nil, errors.New("invalid assignee id")
	}
	return &id, nil
}
