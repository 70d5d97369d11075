package dto

type GenerateVisibilityReportPayload struct {
	LeadID    string `json:"lead_id" validate:"required"`
	PartnerID string `json:"partner_id" validate:"required"`
}
