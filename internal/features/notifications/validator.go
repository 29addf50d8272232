package notifications

import (
	"fmt"
	"slices"
)

func ValidateListQuery(query *ListQuery) error {
	if query.Type != "" && !slices.Contains(Types, query.Type) {
		return fmt.Errorf("unknown notification type %q", query.Type)
	}
	return nil
}
