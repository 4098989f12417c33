package formdata

import (
	"time"

	"invitationadmin/internal/domain"
)

// Derived holds the flat, queryable columns computed from form data.
type Derived struct {
	EventDate    *time.Time
	VenueName    *string
	VenueAddress *string
}

// Extract derives the event date and venue from data. It never fails: a
// missing or malformed source yields nil for that field, and an unknown
// category yields only the venue fields.
func Extract(category domain.Category, data domain.FormData) (out Derived) {
	defer func() {
		if recover() != nil {
			out = Derived{}
		}
	}()

	d := &decoder{data: data}
	out.VenueName = d.str("venueName")
	out.VenueAddress = d.str("venueAddress")

	details, _ := Parse(category, data)
	switch v := details.(type) {
	case Wedding:
		out.EventDate = v.EventDate
	case Business:
		out.EventDate = v.EventDate
	case Anniversary:
		out.EventDate = v.EventDate
	case Party:
		out.EventDate = v.EventDate
	case Birthday:
		out.EventDate = v.PartyDate
	case BabyShower:
		out.EventDate = v.PartyDate
	case Graduation:
		out.EventDate = v.GraduationDate
	}
	return out
}

// Apply writes the derived fields of inv's form data back onto inv.
func Apply(inv *domain.Invitation) {
	derived := Extract(inv.Category, inv.FormData)
	inv.EventDate = derived.EventDate
	inv.VenueName = derived.VenueName
	inv.VenueAddress = derived.VenueAddress
}
