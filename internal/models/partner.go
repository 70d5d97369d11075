package models

import (
	"time"

	"gorm.io/datatypes"
)

// OAuthToken stores the Google OAuth credentials for one partner. It is
// owned by the token provider: every successful refresh rewrites
// access_token and expires_at.
type OAuthToken struct {
	UserID       string `gorm:"primaryKey;type:varchar(255)"`
	AccessToken  string `gorm:"type:text;not null"`
	RefreshToken *string
	ExpiresAt    time.Time
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}

// BusinessPartner caches the partner's Google account resource name once
// account discovery has run.
type BusinessPartner struct {
	ID              string  `gorm:"primaryKey;type:varchar(255)"`
	GoogleAccountID *string `gorm:"type:varchar(255)"`
	CreatedAt       time.Time
	UpdatedAt       time.Time `gorm:"autoUpdateTime"`
}

// BusinessProfile mirrors the partner's restaurant listing. GooglePlaceID
// and GoogleConnected are set when the location has been created upstream.
type BusinessProfile struct {
	PartnerID       string         `gorm:"primaryKey;type:varchar(255)"`
	BusinessName    string         `gorm:"type:varchar(255)"`
	Phone           string         `gorm:"type:varchar(64)"`
	Website         string         `gorm:"type:varchar(512)"`
	Address         string         `gorm:"type:text"`
	Category        string         `gorm:"type:varchar(255)"`
	OpeningHours    datatypes.JSON `gorm:"type:jsonb"`
	GooglePlaceID   string         `gorm:"type:varchar(255)"`
	GoogleConnected bool           `gorm:"not null;default:false"`
	CreatedAt       time.Time
	UpdatedAt       time.Time `gorm:"autoUpdateTime"`
}

// VisibilityLead is an analysis request. Reports may only be generated for
// leads whose analysis completed.
type VisibilityLead struct {
	ID           string         `gorm:"primaryKey;type:varchar(255)"`
	PartnerID    string         `gorm:"type:varchar(255);index"`
	Status       string         `gorm:"type:varchar(32);not null;default:'pending'"`
	Analysis     datatypes.JSON `gorm:"type:jsonb"`
	ReportURL    string         `gorm:"type:varchar(512)"`
	ErrorMessage string         `gorm:"type:text"`
	AnalyzedAt   *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}

// AuditLog records one externally visible action taken on behalf of a
// partner.
type AuditLog struct {
	ID        uint           `gorm:"primaryKey;autoIncrement"`
	PartnerID string         `gorm:"type:varchar(255);index"`
	Action    string         `gorm:"type:varchar(128);not null"`
	Details   datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt time.Time      `gorm:"autoCreateTime"`
}

// LeadStatusCompleted is the precondition for report generation.
const LeadStatusCompleted = "completed"
