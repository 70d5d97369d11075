package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/matbakh-app/google-job-worker/internal/dto"
	"github.com/matbakh-app/google-job-worker/internal/google"
	"github.com/matbakh-app/google-job-worker/internal/models"
	"github.com/matbakh-app/google-job-worker/internal/report"
	"github.com/matbakh-app/google-job-worker/internal/storage/postgres"
	"gorm.io/datatypes"
)

// Result is the small success object stored on the finished job row.
type Result struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	LocationID string `json:"location_id,omitempty"`
	PostID     string `json:"post_id,omitempty"`
	ReportURL  string `json:"report_url,omitempty"`
}

// Handlers bundles the shared clients each operation needs.
type Handlers struct {
	google   *google.Client
	partners *postgres.PartnerRepository
	leads    *postgres.LeadRepository
	reports  report.Generator
	log      *slog.Logger
}

func NewHandlers(g *google.Client, partners *postgres.PartnerRepository, leads *postgres.LeadRepository, reports report.Generator, log *slog.Logger) *Handlers {
	return &Handlers{google: g, partners: partners, leads: leads, reports: reports, log: log}
}

// resolveAccountID returns the partner's Google account resource name,
// running account discovery and memoizing the result on a cache miss.
func (h *Handlers) resolveAccountID(ctx context.Context, partnerID string) (string, error) {
	cached, err := h.partners.GetGoogleAccountID(ctx, partnerID)
	if err != nil {
		return "", Permanent(err)
	}
	if cached != "" {
		return cached, nil
	}

	accountID, err := h.google.ListAccounts(ctx, partnerID)
	if err != nil {
		return "", err
	}

	if err := h.partners.SetGoogleAccountID(ctx, partnerID, accountID); err != nil {
		return "", err
	}

	h.log.Info("discovered google account",
		slog.String("partner_id", partnerID),
		slog.String("account_id", accountID))

	return accountID, nil
}

func (h *Handlers) audit(ctx context.Context, partnerID, action string, details map[string]any) {
	buf, _ := json.Marshal(details)
	if err := h.partners.AppendAudit(ctx, partnerID, action, datatypes.JSON(buf)); err != nil {
		h.log.Error("audit log write failed",
			slog.String("partner_id", partnerID),
			slog.String("action", action),
			slog.String("error", err.Error()))
	}
}

// CreateBusinessProfile creates the partner's Google location and connects
// the local profile to it.
func (h *Handlers) CreateBusinessProfile(ctx context.Context, p *dto.CreateBusinessProfilePayload) (*Result, error) {
	accountID, err := h.resolveAccountID(ctx, p.PartnerID)
	if err != nil {
		return nil, err
	}

	loc := buildLocation(p.BusinessData)

	locationName, err := h.google.CreateLocation(ctx, p.PartnerID, accountID, loc)
	if err != nil {
		return nil, err
	}

	if err := h.partners.ConnectProfile(ctx, p.PartnerID, locationName); err != nil {
		return nil, err
	}

	h.audit(ctx, p.PartnerID, "google_profile_created", map[string]any{
		"location_id":   locationName,
		"business_name": p.BusinessData.BusinessName,
	})

	return &Result{
		Success:    true,
		Message:    "business profile created",
		LocationID: locationName,
	}, nil
}

// UpdateBusinessProfile patches the external location with exactly the
// fields present in the updates and mirrors them locally.
func (h *Handlers) UpdateBusinessProfile(ctx context.Context, p *dto.UpdateBusinessProfilePayload) (*Result, error) {
	if p.Updates.Empty() {
		return nil, Permanentf("no recognized field in updates (expected one of business_name, phone, website, opening_hours)")
	}

	profile, err := h.partners.GetProfile(ctx, p.PartnerID)
	if err != nil {
		return nil, Permanent(err)
	}
	if profile.GooglePlaceID == "" {
		return nil, Permanentf("partner %s has no connected google location", p.PartnerID)
	}

	loc, mask, localFields := buildUpdate(p.Updates)

	if err := h.google.PatchLocation(ctx, p.PartnerID, profile.GooglePlaceID, loc, mask); err != nil {
		return nil, err
	}

	if err := h.partners.UpdateProfileFields(ctx, p.PartnerID, localFields); err != nil {
		return nil, err
	}

	h.audit(ctx, p.PartnerID, "google_profile_updated", map[string]any{
		"location_id": profile.GooglePlaceID,
		"fields":      mask,
	})

	return &Result{
		Success:    true,
		Message:    "business profile updated",
		LocationID: profile.GooglePlaceID,
	}, nil
}

// PublishPost publishes a localized post on the partner's location.
func (h *Handlers) PublishPost(ctx context.Context, p *dto.PublishPostPayload) (*Result, error) {
	profile, err := h.partners.GetProfile(ctx, p.PartnerID)
	if err != nil {
		return nil, Permanent(err)
	}
	if profile.GooglePlaceID == "" {
		return nil, Permanentf("partner %s has no connected google location", p.PartnerID)
	}

	post := buildLocalPost(p)

	postName, err := h.google.CreateLocalPost(ctx, p.PartnerID, profile.GooglePlaceID, post)
	if err != nil {
		return nil, err
	}

	h.audit(ctx, p.PartnerID, "google_post_published", map[string]any{
		"location_id": profile.GooglePlaceID,
		"post_id":     postName,
	})

	return &Result{
		Success:    true,
		Message:    "post published",
		LocationID: profile.GooglePlaceID,
		PostID:     postName,
	}, nil
}

// GenerateVisibilityReport builds the report for a completed lead. Failures
// are recorded on the lead row as well as through the job error path.
func (h *Handlers) GenerateVisibilityReport(ctx context.Context, p *dto.GenerateVisibilityReportPayload) (*Result, error) {
	lead, err := h.leads.Get(ctx, p.LeadID)
	if err != nil {
		return nil, Permanent(err)
	}

	if lead.Status != models.LeadStatusCompleted {
		cause := Permanentf("lead %s is %q, report requires a completed analysis", lead.ID, lead.Status)
		if err := h.leads.SetError(ctx, lead.ID, cause.Error()); err != nil {
			h.log.Error("lead error write failed",
				slog.String("lead_id", lead.ID),
				slog.String("error", err.Error()))
		}
		return nil, cause
	}

	url, err := h.reports.Generate(ctx, lead)
	if err != nil {
		genErr := fmt.Errorf("generate report for lead %s: %w", lead.ID, err)
		if werr := h.leads.SetError(ctx, lead.ID, genErr.Error()); werr != nil {
			h.log.Error("lead error write failed",
				slog.String("lead_id", lead.ID),
				slog.String("error", werr.Error()))
		}
		return nil, genErr
	}

	if err := h.leads.SetReportURL(ctx, lead.ID, url); err != nil {
		return nil, err
	}

	h.audit(ctx, p.PartnerID, "visibility_report_generated", map[string]any{
		"lead_id":    lead.ID,
		"report_url": url,
	})

	return &Result{
		Success:   true,
		Message:   "visibility report generated",
		ReportURL: url,
	}, nil
}

func buildLocation(data dto.BusinessData) *google.Location {
	loc := &google.Location{
		Title:      data.BusinessName,
		WebsiteURI: data.Website,
	}

	if data.Phone != "" {
		loc.PhoneNumbers = &google.PhoneNumbers{PrimaryPhone: data.Phone}
	}
	if data.Address != "" {
		loc.StorefrontAddress = &google.PostalAddress{AddressLines: []string{data.Address}}
	}
	if data.Category != "" {
		loc.Categories = &google.Categories{PrimaryCategory: &google.Category{DisplayName: data.Category}}
	}
	if len(data.OpeningHours) > 0 {
		loc.RegularHours = buildRegularHours(data.OpeningHours)
	}

	return loc
}

func buildRegularHours(periods []dto.OpeningHoursPeriod) *google.RegularHours {
	hours := &google.RegularHours{}
	for _, p := range periods {
		hours.Periods = append(hours.Periods, google.TimePeriod{
			OpenDay:   p.Day,
			OpenTime:  p.Opens,
			CloseDay:  p.Day,
			CloseTime: p.Closes,
		})
	}
	return hours
}

// buildUpdate maps the present update fields to the provider body, the
// updateMask entries, and the local profile columns to mirror.
func buildUpdate(u dto.ProfileUpdates) (*google.Location, []string, map[string]any) {
	loc := &google.Location{}
	var mask []string
	localFields := map[string]any{}

	if u.BusinessName != nil {
		loc.Title = *u.BusinessName
		mask = append(mask, "title")
		localFields["business_name"] = *u.BusinessName
	}
	if u.Phone != nil {
		loc.PhoneNumbers = &google.PhoneNumbers{PrimaryPhone: *u.Phone}
		mask = append(mask, "phoneNumbers")
		localFields["phone"] = *u.Phone
	}
	if u.Website != nil {
		loc.WebsiteURI = *u.Website
		mask = append(mask, "websiteUri")
		localFields["website"] = *u.Website
	}
	if len(u.OpeningHours) > 0 {
		loc.RegularHours = buildRegularHours(u.OpeningHours)
		mask = append(mask, "regularHours")
		buf, _ := json.Marshal(u.OpeningHours)
		localFields["opening_hours"] = datatypes.JSON(buf)
	}

	return loc, mask, localFields
}

func buildLocalPost(p *dto.PublishPostPayload) *google.LocalPost {
	lang := p.LanguageCode
	if lang == "" {
		lang = "de"
	}

	post := &google.LocalPost{
		LanguageCode: lang,
		Summary:      p.Summary,
		TopicType:    "STANDARD",
	}

	if p.CallToAction != nil {
		post.CallToAction = &google.CallToAction{
			ActionType: p.CallToAction.ActionType,
			URL:        p.CallToAction.URL,
		}
	}

	for _, u := range p.MediaURLs {
		post.Media = append(post.Media, google.MediaItem{
			MediaFormat: "PHOTO",
			SourceURL:   u,
		})
	}

	if p.Event != nil {
		post.TopicType = "EVENT"
		post.Event = &google.LocalPostEvent{
			Title: p.Event.Title,
			Schedule: &google.TimeInterval{
				StartDate: google.DateTime{
					Year:    p.Event.StartTime.Year(),
					Month:   int(p.Event.StartTime.Month()),
					Day:     p.Event.StartTime.Day(),
					Hours:   p.Event.StartTime.Hour(),
					Minutes: p.Event.StartTime.Minute(),
				},
				EndDate: google.DateTime{
					Year:    p.Event.EndTime.Year(),
					Month:   int(p.Event.EndTime.Month()),
					Day:     p.Event.EndTime.Day(),
					Hours:   p.Event.EndTime.Hour(),
					Minutes: p.Event.EndTime.Minute(),
				},
			},
		}
	}

	return post
}
