package widget

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/n0roo/widget-kit/internal/apperr"
)

// Description and level bounds
const (
	MinDescriptionLen = 3
	MaxDescriptionLen = 1000
	MinLevel          = 1
	MaxLevel          = 100
)

const (
	msgDescriptionRequired = "Description is required"
	msgDescriptionSize     = "Description must be between 3 and 1000 characters"
	msgCategoryRequired    = "Category is required"
	msgLevelRequired       = "Level is required"
	msgLevelMin            = "Level must be at least 1"
	msgLevelMax            = "Level must not exceed 100"
	msgVersionRequired     = "Version is required for optimistic locking"
)

func msgCategoryInvalid() string {
	return "Category must be one of: " + CategoryNames()
}

// ValidateCreate returns every violation in req
func ValidateCreate(req *CreateRequest) []apperr.Violation {
	var v []apperr.Violation

	if req.Description == nil || strings.TrimSpace(*req.Description) == "" {
		v = append(v, violation("description", msgDescriptionRequired, req.Description))
	}
	if req.Description != nil {
		v = append(v, checkDescriptionSize(*req.Description)...)
	}

	if req.Category == nil {
		v = append(v, violation("category", msgCategoryRequired, nil))
	} else {
		v = append(v, checkCategory(*req.Category)...)
	}

	if req.Level == nil {
		v = append(v, violation("level", msgLevelRequired, nil))
	} else {
		v = append(v, checkLevel(*req.Level)...)
	}

	return v
}

// ValidateUpdate returns every violation in req
func ValidateUpdate(req *UpdateRequest) []apperr.Violation {
	var v []apperr.Violation

	if req.Description != nil {
		v = append(v, checkDescriptionSize(*req.Description)...)
	}
	if req.Category != nil {
		v = append(v, checkCategory(*req.Category)...)
	}
	if req.Level != nil {
		v = append(v, checkLevel(*req.Level)...)
	}
	if req.Version == nil {
		v = append(v, violation("version", msgVersionRequired, nil))
	}

	return v
}

func checkDescriptionSize(s string) []apperr.Violation {
	n := utf8.RuneCountInString(s)
	if n < MinDescriptionLen || n > MaxDescriptionLen {
		return []apperr.Violation{violation("description", msgDescriptionSize, &s)}
	}
	return nil
}

func checkCategory(s string) []apperr.Violation {
	if _, err := ParseCategory(s); err != nil {
		return []apperr.Violation{violation("category", msgCategoryInvalid(), &s)}
	}
	return nil
}

func checkLevel(level int) []apperr.Violation {
	value := strconv.Itoa(level)
	switch {
	case level < MinLevel:
		return []apperr.Violation{violation("level", msgLevelMin, &value)}
	case level > MaxLevel:
		return []apperr.Violation{violation("level", msgLevelMax, &value)}
	}
	return nil
}

func violation(field, message string, value *string) apperr.Violation {
	var invalid *string
	if value != nil {
		invalid = apperr.ValueOf(*value)
	}
	return apperr.Violation{Field: field, Message: message, InvalidValue: invalid}
}
