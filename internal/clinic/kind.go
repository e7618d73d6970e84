package clinic

import "strings"

// TypeKind enumerates the consultation types offered by the booking form.
// TypeCustom carries free text typed by staff.
type TypeKind int

const (
	TypeUnset TypeKind = iota
	TypeTherapy
	TypeUrgent
	TypeFree
	TypeDelegated
	TypeNewConsultation
	TypeFollowUp
	TypeCustom
)

var typeLabels = map[TypeKind]string{
	TypeTherapy:         "Thérapie",
	TypeUrgent:          "Urgence",
	TypeFree:            "Gratuit",
	TypeDelegated:       "Délégué",
	TypeNewConsultation: "Nouvelle consultation",
	TypeFollowUp:        "Suivi",
}

// AppointmentType is either a known kind or a custom label.
type AppointmentType struct {
	Kind TypeKind
	Text string
}

func ParseType(s string) AppointmentType {
	s = strings.TrimSpace(s)
	if s == "" {
		return AppointmentType{}
	}
	key := strings.ToLower(s)
	for k, label := range typeLabels {
		if strings.ToLower(label) == key {
			return AppointmentType{Kind: k}
		}
	}
	return AppointmentType{Kind: TypeCustom, Text: s}
}

func KnownTypes() []AppointmentType {
	out := make([]AppointmentType, 0, len(typeLabels))
	for k := TypeTherapy; k <= TypeFollowUp; k++ {
		out = append(out, AppointmentType{Kind: k})
	}
	return out
}

func (t AppointmentType) IsZero() bool { return t.Kind == TypeUnset }

func (t AppointmentType) String() string {
	switch t.Kind {
	case TypeUnset:
		return ""
	case TypeCustom:
		return t.Text
	default:
		return typeLabels[t.Kind]
	}
}

func (t AppointmentType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *AppointmentType) UnmarshalText(b []byte) error {
	*t = ParseType(string(b))
	return nil
}

// SourceKind is the channel a booking came through.
type SourceKind int

const (
	SourceUnset SourceKind = iota
	SourcePhone
	SourceReferralSite
	SourceEmail
	SourceWalkIn
	SourceOther
	SourceCustom
)

var sourceLabels = map[SourceKind]string{
	SourcePhone:        "Téléphone",
	SourceReferralSite: "Site-Satli",
	SourceEmail:        "Email",
	SourceWalkIn:       "Visite directe",
	SourceOther:        "Autres sites",
}

type Source struct {
	Kind SourceKind
	Text string
}

func ParseSource(s string) Source {
	s = strings.TrimSpace(s)
	if s == "" {
		return Source{}
	}
	key := strings.ToLower(s)
	for k, label := range sourceLabels {
		if strings.ToLower(label) == key {
			return Source{Kind: k}
		}
	}
	return Source{Kind: SourceCustom, Text: s}
}

func KnownSources() []Source {
	out := make([]Source, 0, len(sourceLabels))
	for k := SourcePhone; k <= SourceOther; k++ {
		out = append(out, Source{Kind: k})
	}
	return out
}

func (s Source) IsZero() bool { return s.Kind == SourceUnset }

func (s Source) String() string {
	switch s.Kind {
	case SourceUnset:
		return ""
	case SourceCustom:
		return s.Text
	default:
		return sourceLabels[s.Kind]
	}
}

func (s Source) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Source) UnmarshalText(b []byte) error {
	*s = ParseSource(string(b))
	return nil
}
