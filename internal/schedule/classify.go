package schedule

import (
	"time"

	"github.com/hackgods/clinic-office-scheduling/internal/clinic"
)

// Category is the display bucket an appointment is colored by.
type Category string

const (
	CategoryUnclassified Category = "unclassified"

	CategoryTherapy         Category = "therapy"
	CategoryUrgent          Category = "urgent"
	CategoryFree            Category = "free"
	CategoryDelegated       Category = "delegated"
	CategoryNewConsultation Category = "new-consultation"
	CategoryFollowUp        Category = "follow-up"

	CategoryPhone        Category = "phone"
	CategoryReferralSite Category = "referral-site"
	CategoryEmail        Category = "email"
	CategoryWalkIn       Category = "walk-in"
	CategoryOtherSites   Category = "other-sites"

	CategoryConfirmed Category = "confirmed"
	CategoryPending   Category = "pending"
	CategoryCancelled Category = "cancelled"
	CategoryUnknown   Category = "unknown"
)

// Classify picks the display category. Past appointments are bucketed by the
// channel they came through, upcoming ones by clinical type. Custom and
// absent values fall back to CategoryUnclassified.
func Classify(t clinic.AppointmentType, s clinic.Source, isPast bool) Category {
	if t.IsZero() && s.IsZero() {
		return CategoryUnclassified
	}
	if isPast {
		return SourceCategory(s)
	}
	return TypeCategory(t)
}

func TypeCategory(t clinic.AppointmentType) Category {
	switch t.Kind {
	case clinic.TypeTherapy:
		return CategoryTherapy
	case clinic.TypeUrgent:
		return CategoryUrgent
	case clinic.TypeFree:
		return CategoryFree
	case clinic.TypeDelegated:
		return CategoryDelegated
	case clinic.TypeNewConsultation:
		return CategoryNewConsultation
	case clinic.TypeFollowUp:
		return CategoryFollowUp
	default:
		return CategoryUnclassified
	}
}

func SourceCategory(s clinic.Source) Category {
	switch s.Kind {
	case clinic.SourcePhone:
		return CategoryPhone
	case clinic.SourceReferralSite:
		return CategoryReferralSite
	case clinic.SourceEmail:
		return CategoryEmail
	case clinic.SourceWalkIn:
		return CategoryWalkIn
	case clinic.SourceOther:
		return CategoryOtherSites
	default:
		return CategoryUnclassified
	}
}

func StatusCategory(s clinic.AppointmentStatus) Category {
	switch s {
	case clinic.StatusConfirmed:
		return CategoryConfirmed
	case clinic.StatusPending:
		return CategoryPending
	case clinic.StatusCancelled:
		return CategoryCancelled
	default:
		return CategoryUnknown
	}
}

// IsPast reports whether at is strictly before now.
func IsPast(at, now time.Time) bool {
	return at.Before(now)
}

// ClassifyAppointment is Classify with pastness taken from now.
func ClassifyAppointment(a clinic.Appointment, now time.Time) Category {
	return Classify(a.Type, a.Source, IsPast(a.At, now))
}

var palette = map[Category]string{
	CategoryUnclassified: "bg-gray-100 text-gray-800",

	CategoryTherapy:         "bg-purple-100 text-purple-800",
	CategoryUrgent:          "bg-red-100 text-red-800",
	CategoryFree:            "bg-gray-100 text-gray-800",
	CategoryDelegated:       "bg-yellow-100 text-yellow-800",
	CategoryNewConsultation: "bg-green-100 text-green-800",
	CategoryFollowUp:        "bg-blue-100 text-blue-800",

	CategoryPhone:        "bg-indigo-100 text-indigo-800",
	CategoryReferralSite: "bg-emerald-100 text-emerald-800",
	CategoryEmail:        "bg-sky-100 text-sky-800",
	CategoryWalkIn:       "bg-amber-100 text-amber-800",
	CategoryOtherSites:   "bg-slate-100 text-slate-800",

	CategoryConfirmed: "bg-green-100 text-green-800",
	CategoryPending:   "bg-yellow-100 text-yellow-800",
	CategoryCancelled: "bg-red-100 text-red-800",
	CategoryUnknown:   "bg-gray-100 text-gray-800",
}

// Palette returns the utility classes the web front end renders a category
// with. Unknown categories get the gray pair.
func Palette(c Category) string {
	if p, ok := palette[c]; ok {
		return p
	}
	return palette[CategoryUnclassified]
}

// Channel is the icon family for a booking source.
type Channel string

const (
	ChannelPhone  Channel = "phone"
	ChannelWeb    Channel = "web"
	ChannelPerson Channel = "person"
)

func SourceChannel(s clinic.Source) Channel {
	switch s.Kind {
	case clinic.SourcePhone:
		return ChannelPhone
	case clinic.SourceReferralSite, clinic.SourceOther:
		return ChannelWeb
	default:
		return ChannelPerson
	}
}
