// Package formdata decodes the category-dependent form data of an invitation
// into typed variants, validates it, and derives the flat query fields.
package formdata

import (
	"math"
	"strings"
	"time"

	"invitationadmin/internal/domain"
)

// Details is the typed view of an invitation's form data. Each category has
// its own implementation; a nil field means the key was absent or had the
// wrong shape.
type Details interface {
	Category() domain.Category
}

// Wedding is the form data of a wedding invitation.
type Wedding struct {
	GroomName *string
	BrideName *string
	VenueName *string
	EventDate *time.Time
}

// Birthday is the form data of a birthday invitation.
type Birthday struct {
	CelebrantName *string
	Age           *float64
	PartyDate     *time.Time
}

// Graduation is the form data of a graduation invitation.
type Graduation struct {
	GraduateName   *string
	Degree         *string
	School         *string
	GraduationDate *time.Time
}

// BabyShower is the form data of a baby shower invitation.
type BabyShower struct {
	ParentNames []string
	DueDate     *time.Time
	PartyDate   *time.Time
	Gender      *string
}

// Business is the form data of a business event invitation.
type Business struct {
	EventTitle *string
	Company    *string
	EventDate  *time.Time
}

// Anniversary is the form data of an anniversary invitation.
type Anniversary struct {
	EventDate *time.Time
}

// Party is the form data of a generic party invitation.
type Party struct {
	EventDate *time.Time
}

func (Wedding) Category() domain.Category     { return domain.CategoryWedding }
func (Birthday) Category() domain.Category    { return domain.CategoryBirthday }
func (Graduation) Category() domain.Category  { return domain.CategoryGraduation }
func (BabyShower) Category() domain.Category  { return domain.CategoryBabyShower }
func (Business) Category() domain.Category    { return domain.CategoryBusiness }
func (Anniversary) Category() domain.Category { return domain.CategoryAnniversary }
func (Party) Category() domain.Category       { return domain.CategoryParty }

// Gender values accepted for baby showers.
var genders = []string{"boy", "girl", "surprise"}

// Parse decodes data into the variant for category. It returns the variant and
// the ordered list of errors for present fields with the wrong shape. Absent
// fields are never errors. An unknown category yields a nil variant.
func Parse(category domain.Category, data domain.FormData) (Details, []string) {
	d := &decoder{data: data}
	var out Details
	switch category {
	case domain.CategoryWedding:
		out = Wedding{
			GroomName: d.str("groomName"),
			BrideName: d.str("brideName"),
			VenueName: d.str("venueName"),
			EventDate: d.date("eventDate"),
		}
	case domain.CategoryBirthday:
		out = Birthday{
			CelebrantName: d.str("celebrantName"),
			Age:           d.nonNegative("age"),
			PartyDate:     d.date("partyDate"),
		}
	case domain.CategoryGraduation:
		out = Graduation{
			GraduateName:   d.str("graduateName"),
			Degree:         d.str("degree"),
			School:         d.str("school"),
			GraduationDate: d.date("graduationDate"),
		}
	case domain.CategoryBabyShower:
		out = BabyShower{
			ParentNames: d.array("parentNames"),
			DueDate:     d.date("dueDate"),
			PartyDate:   d.date("partyDate"),
			Gender:      d.oneOf("gender", genders),
		}
	case domain.CategoryBusiness:
		out = Business{
			EventTitle: d.str("eventTitle"),
			Company:    d.str("company"),
			EventDate:  d.date("eventDate"),
		}
	case domain.CategoryAnniversary:
		out = Anniversary{EventDate: d.date("eventDate")}
	case domain.CategoryParty:
		out = Party{EventDate: d.date("eventDate")}
	default:
		return nil, []string{ErrInvalidType}
	}
	return out, d.errs
}

// decoder reads typed values out of a raw map and records shape errors in call order.
type decoder struct {
	data domain.FormData
	errs []string
}

func (d *decoder) lookup(key string) (any, bool) {
	if d.data == nil {
		return nil, false
	}
	v, ok := d.data[key]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

func (d *decoder) fail(key, rule string) {
	d.errs = append(d.errs, key+" "+rule)
}

func (d *decoder) str(key string) *string {
	v, ok := d.lookup(key)
	if !ok {
		return nil
	}
	s, ok := v.(string)
	if !ok {
		d.fail(key, "must be a string")
		return nil
	}
	return &s
}

func (d *decoder) date(key string) *time.Time {
	v, ok := d.lookup(key)
	if !ok {
		return nil
	}
	s, ok := v.(string)
	if !ok {
		d.fail(key, "must be a valid date")
		return nil
	}
	t, ok := ParseDate(s)
	if !ok {
		d.fail(key, "must be a valid date")
		return nil
	}
	return &t
}

func (d *decoder) nonNegative(key string) *float64 {
	v, ok := d.lookup(key)
	if !ok {
		return nil
	}
	n, ok := toFloat(v)
	if !ok || n < 0 {
		d.fail(key, "must be a non-negative number")
		return nil
	}
	return &n
}

func (d *decoder) array(key string) []string {
	v, ok := d.lookup(key)
	if !ok {
		return nil
	}
	var out []string
	switch items := v.(type) {
	case []any:
		out = make([]string, 0, len(items))
		for _, item := range items {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
	case []string:
		out = append([]string{}, items...)
	default:
		d.fail(key, "must be an array")
		return nil
	}
	return out
}

func (d *decoder) oneOf(key string, allowed []string) *string {
	v, ok := d.lookup(key)
	if !ok {
		return nil
	}
	s, ok := v.(string)
	if ok {
		for _, a := range allowed {
			if s == a {
				return &s
			}
		}
	}
	d.fail(key, "must be one of: "+strings.Join(allowed, ", "))
	return nil
}

func toFloat(v any) (float64, bool) {
	var n float64
	switch x := v.(type) {
	case float64:
		n = x
	case float32:
		n = float64(x)
	case int:
		n = float64(x)
	case int32:
		n = float64(x)
	case int64:
		n = float64(x)
	default:
		return 0, false
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

// dateLayouts are tried in order; values without a zone are read as UTC.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseDate parses an ISO-8601 date or date-time and reports whether it denotes a concrete instant.
// Empty and malformed strings are rejected.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
