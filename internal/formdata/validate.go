package formdata

import (
	"strings"

	"invitationadmin/internal/domain"
)

// ErrInvalidType is the single error reported for an unknown category.
const ErrInvalidType = "Invalid invitation type"

// Validate checks every present field of data against the rules of category.
// It returns nil when data is valid. Missing fields are not errors.
func Validate(category domain.Category, data domain.FormData) []string {
	if !category.Valid() {
		return []string{ErrInvalidType}
	}
	_, errs := Parse(category, data)
	return errs
}

// requiredFields lists the keys that must be filled for a complete invitation.
var requiredFields = map[domain.Category][]string{
	domain.CategoryWedding:     {"brideName", "groomName", "eventDate", "venueName"},
	domain.CategoryBirthday:    {"celebrantName", "partyDate"},
	domain.CategoryGraduation:  {"graduateName", "graduationDate"},
	domain.CategoryBabyShower:  {"parentNames", "partyDate"},
	domain.CategoryBusiness:    {"eventTitle", "eventDate"},
	domain.CategoryAnniversary: {"eventDate"},
	domain.CategoryParty:       {"eventDate"},
}

// Missing returns one error per required field of category that is absent or empty in data.
// It is used by the publish-time completeness policy.
func Missing(category domain.Category, data domain.FormData) []string {
	if !category.Valid() {
		return []string{ErrInvalidType}
	}
	var errs []string
	for _, key := range requiredFields[category] {
		if isEmpty(data[key]) {
			errs = append(errs, key+" is required")
		}
	}
	return errs
}

func isEmpty(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(x) == ""
	case []any:
		return len(x) == 0
	case []string:
		return len(x) == 0
	}
	return false
}
