package dto

// OpeningHoursPeriod is one open/close span, e.g. {MONDAY 09:00 22:00}.
type OpeningHoursPeriod struct {
	Day    string `json:"day" validate:"required,oneof=MONDAY TUESDAY WEDNESDAY THURSDAY FRIDAY SATURDAY SUNDAY"`
	Opens  string `json:"opens" validate:"required"`
	Closes string `json:"closes" validate:"required"`
}

// BusinessData carries the listing fields submitted during onboarding.
type BusinessData struct {
	BusinessName string               `json:"business_name" validate:"required"`
	Phone        string               `json:"phone,omitempty"`
	Website      string               `json:"website,omitempty" validate:"omitempty,url"`
	Address      string               `json:"address,omitempty"`
	Category     string               `json:"category,omitempty"`
	OpeningHours []OpeningHoursPeriod `json:"opening_hours,omitempty" validate:"omitempty,dive"`
}

type CreateBusinessProfilePayload struct {
	PartnerID    string       `json:"partner_id" validate:"required"`
	BusinessData BusinessData `json:"businessData" validate:"required"`
}

// ProfileUpdates lists the fields an update job may touch. Pointers
// distinguish "not provided" from an explicit empty value; the handler
// builds the Google updateMask from the fields that are present.
type ProfileUpdates struct {
	BusinessName *string              `json:"business_name,omitempty"`
	Phone        *string              `json:"phone,omitempty"`
	Website      *string              `json:"website,omitempty"`
	OpeningHours []OpeningHoursPeriod `json:"opening_hours,omitempty" validate:"omitempty,dive"`
}

// Empty reports whether no recognized field is present.
func (u ProfileUpdates) Empty() bool {
	return u.BusinessName == nil && u.Phone == nil && u.Website == nil && len(u.OpeningHours) == 0
}

type UpdateBusinessProfilePayload struct {
	PartnerID string         `json:"partner_id" validate:"required"`
	Updates   ProfileUpdates `json:"updates"`
}
