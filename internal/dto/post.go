package dto

import "time"

type CallToAction struct {
	ActionType string `json:"action_type" validate:"required,oneof=BOOK ORDER LEARN_MORE CALL SIGN_UP"`
	URL        string `json:"url,omitempty" validate:"omitempty,url"`
}

type PostEvent struct {
	Title     string    `json:"title" validate:"required"`
	StartTime time.Time `json:"start_time" validate:"required"`
	EndTime   time.Time `json:"end_time" validate:"required,gtfield=StartTime"`
}

type PublishPostPayload struct {
	PartnerID    string        `json:"partner_id" validate:"required"`
	Summary      string        `json:"summary" validate:"required,max=1500"`
	LanguageCode string        `json:"language_code,omitempty"`
	CallToAction *CallToAction `json:"call_to_action,omitempty"`
	MediaURLs    []string      `json:"media_urls,omitempty" validate:"omitempty,dive,url"`
	Event        *PostEvent    `json:"event,omitempty"`
}
