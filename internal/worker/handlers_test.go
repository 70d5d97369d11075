package worker

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/matbakh-app/google-job-worker/internal/dto"
	"github.com/matbakh-app/google-job-worker/internal/google"
	"github.com/matbakh-app/google-job-worker/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestCreateBusinessProfile_DiscoversAccountOnCacheMiss(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && strings.HasSuffix(r.URL.Path, "/accounts"):
			w.Write([]byte(`{"accounts":[{"name":"accounts/42","accountName":"Trattoria X"}]}`))
		case r.Method == http.MethodPost && strings.Contains(r.URL.Path, "/locations"):
			assert.Contains(t, r.URL.Path, "accounts/42")
			w.Write([]byte(`{"name":"accounts/42/locations/7"}`))
		default:
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
	})
	env.seedToken(t, "P1")
	env.seedPartner(t, "P1", "") // discovery has not run yet

	payload := createProfilePayload()
	result, err := env.handlers.CreateBusinessProfile(context.Background(), &payload)
	require.NoError(t, err)
	assert.Equal(t, "accounts/42/locations/7", result.LocationID)

	// the discovered account id is memoized
	var partner models.BusinessPartner
	require.NoError(t, env.db.First(&partner, "id = ?", "P1").Error)
	require.NotNil(t, partner.GoogleAccountID)
	assert.Equal(t, "accounts/42", *partner.GoogleAccountID)

	assert.Equal(t, 2, env.apiHits)
}

func TestCreateBusinessProfile_BuildsLocationBody(t *testing.T) {
	var got google.Location
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		w.Write([]byte(`{"name":"accounts/1/locations/99"}`))
	})
	env.seedToken(t, "P1")
	env.seedPartner(t, "P1", "accounts/1")

	payload := dto.CreateBusinessProfilePayload{
		PartnerID: "P1",
		BusinessData: dto.BusinessData{
			BusinessName: "Trattoria X",
			Phone:        "+49301234567",
			Website:      "https://trattoria-x.de",
			Address:      "Invalidenstr. 1, Berlin",
			Category:     "Italian restaurant",
			OpeningHours: []dto.OpeningHoursPeriod{
				{Day: "MONDAY", Opens: "11:00", Closes: "22:00"},
			},
		},
	}

	_, err := env.handlers.CreateBusinessProfile(context.Background(), &payload)
	require.NoError(t, err)

	assert.Equal(t, "Trattoria X", got.Title)
	require.NotNil(t, got.PhoneNumbers)
	assert.Equal(t, "+49301234567", got.PhoneNumbers.PrimaryPhone)
	assert.Equal(t, "https://trattoria-x.de", got.WebsiteURI)
	require.NotNil(t, got.StorefrontAddress)
	assert.Equal(t, []string{"Invalidenstr. 1, Berlin"}, got.StorefrontAddress.AddressLines)
	require.NotNil(t, got.Categories)
	assert.Equal(t, "Italian restaurant", got.Categories.PrimaryCategory.DisplayName)
	require.NotNil(t, got.RegularHours)
	require.Len(t, got.RegularHours.Periods, 1)
	assert.Equal(t, "MONDAY", got.RegularHours.Periods[0].OpenDay)
	assert.Equal(t, "22:00", got.RegularHours.Periods[0].CloseTime)
}

func TestUpdateBusinessProfile_NoRecognizedFields(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {})
	env.seedToken(t, "P1")
	env.seedPartner(t, "P1", "accounts/1")

	payload := dto.UpdateBusinessProfilePayload{PartnerID: "P1"}

	_, err := env.handlers.UpdateBusinessProfile(context.Background(), &payload)
	require.Error(t, err)
	assert.True(t, IsPermanent(err))
	assert.Contains(t, err.Error(), "no recognized field")
	assert.Equal(t, 0, env.apiHits, "must fail before any external call")
}

func TestUpdateBusinessProfile_PatchesAndMirrors(t *testing.T) {
	var gotMask string
	var got google.Location
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		gotMask = r.URL.Query().Get("updateMask")
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		w.Write([]byte(`{}`))
	})
	env.seedToken(t, "P1")
	env.seedPartner(t, "P1", "accounts/1")
	require.NoError(t, env.db.Model(&models.BusinessProfile{}).
		Where("partner_id = ?", "P1").
		Updates(map[string]any{"google_place_id": "accounts/1/locations/99", "google_connected": true}).Error)

	payload := dto.UpdateBusinessProfilePayload{
		PartnerID: "P1",
		Updates: dto.ProfileUpdates{
			BusinessName: strPtr("Trattoria Y"),
			Phone:        strPtr("+49309999999"),
		},
	}

	result, err := env.handlers.UpdateBusinessProfile(context.Background(), &payload)
	require.NoError(t, err)
	assert.True(t, result.Success)

	// mask lists exactly the present fields
	assert.Equal(t, "title,phoneNumbers", gotMask)
	assert.Equal(t, "Trattoria Y", got.Title)
	assert.Equal(t, "+49309999999", got.PhoneNumbers.PrimaryPhone)
	assert.Empty(t, got.WebsiteURI)

	var profile models.BusinessProfile
	require.NoError(t, env.db.First(&profile, "partner_id = ?", "P1").Error)
	assert.Equal(t, "Trattoria Y", profile.BusinessName)
	assert.Equal(t, "+49309999999", profile.Phone)
}

func TestUpdateBusinessProfile_NotConnected(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {})
	env.seedToken(t, "P1")
	env.seedPartner(t, "P1", "accounts/1") // profile exists but no place id

	payload := dto.UpdateBusinessProfilePayload{
		PartnerID: "P1",
		Updates:   dto.ProfileUpdates{Phone: strPtr("+4930")},
	}

	_, err := env.handlers.UpdateBusinessProfile(context.Background(), &payload)
	require.Error(t, err)
	assert.True(t, IsPermanent(err))
	assert.Equal(t, 0, env.apiHits)
}

func TestPublishPost_Standard(t *testing.T) {
	var got google.LocalPost
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "/localPosts")
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		w.Write([]byte(`{"name":"accounts/1/locations/99/localPosts/5"}`))
	})
	env.seedToken(t, "P1")
	env.seedPartner(t, "P1", "accounts/1")
	require.NoError(t, env.db.Model(&models.BusinessProfile{}).
		Where("partner_id = ?", "P1").
		Update("google_place_id", "accounts/1/locations/99").Error)

	payload := dto.PublishPostPayload{
		PartnerID: "P1",
		Summary:   "Neue Herbstkarte ab Montag!",
		CallToAction: &dto.CallToAction{
			ActionType: "LEARN_MORE",
			URL:        "https://trattoria-x.de/karte",
		},
		MediaURLs: []string{"https://cdn.matbakh.app/p1/herbst.jpg"},
	}

	result, err := env.handlers.PublishPost(context.Background(), &payload)
	require.NoError(t, err)
	assert.Equal(t, "accounts/1/locations/99/localPosts/5", result.PostID)

	assert.Equal(t, "de", got.LanguageCode, "language defaults to de")
	assert.Equal(t, "STANDARD", got.TopicType)
	assert.Equal(t, "Neue Herbstkarte ab Montag!", got.Summary)
	require.NotNil(t, got.CallToAction)
	assert.Equal(t, "LEARN_MORE", got.CallToAction.ActionType)
	require.Len(t, got.Media, 1)
	assert.Equal(t, "PHOTO", got.Media[0].MediaFormat)
}

func TestPublishPost_Event(t *testing.T) {
	var got google.LocalPost
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		w.Write([]byte(`{"name":"accounts/1/locations/99/localPosts/6"}`))
	})
	env.seedToken(t, "P1")
	env.seedPartner(t, "P1", "accounts/1")
	require.NoError(t, env.db.Model(&models.BusinessProfile{}).
		Where("partner_id = ?", "P1").
		Update("google_place_id", "accounts/1/locations/99").Error)

	start := time.Date(2026, 10, 3, 18, 0, 0, 0, time.UTC)
	payload := dto.PublishPostPayload{
		PartnerID:    "P1",
		Summary:      "Weinabend mit Live-Musik",
		LanguageCode: "en",
		Event: &dto.PostEvent{
			Title:     "Wine night",
			StartTime: start,
			EndTime:   start.Add(4 * time.Hour),
		},
	}

	_, err := env.handlers.PublishPost(context.Background(), &payload)
	require.NoError(t, err)

	assert.Equal(t, "en", got.LanguageCode)
	assert.Equal(t, "EVENT", got.TopicType)
	require.NotNil(t, got.Event)
	assert.Equal(t, "Wine night", got.Event.Title)
	require.NotNil(t, got.Event.Schedule)
	assert.Equal(t, 2026, got.Event.Schedule.StartDate.Year)
	assert.Equal(t, 18, got.Event.Schedule.StartDate.Hours)
	assert.Equal(t, 22, got.Event.Schedule.EndDate.Hours)
}

func TestGenerateVisibilityReport_LeadNotCompleted(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {})
	require.NoError(t, env.db.Create(&models.VisibilityLead{
		ID:        "L1",
		PartnerID: "P1",
		Status:    "pending",
	}).Error)

	payload := dto.GenerateVisibilityReportPayload{LeadID: "L1", PartnerID: "P1"}

	_, err := env.handlers.GenerateVisibilityReport(context.Background(), &payload)
	require.Error(t, err)
	assert.True(t, IsPermanent(err))
	assert.Equal(t, 0, env.reports.calls)

	// the failure is recorded on the lead as well
	var lead models.VisibilityLead
	require.NoError(t, env.db.First(&lead, "id = ?", "L1").Error)
	assert.Contains(t, lead.ErrorMessage, "completed")
}

func TestGenerateVisibilityReport_Success(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {})
	env.seedPartner(t, "P1", "")
	require.NoError(t, env.db.Create(&models.VisibilityLead{
		ID:        "L1",
		PartnerID: "P1",
		Status:    models.LeadStatusCompleted,
	}).Error)
	env.reports.url = "reports/visibility-report-L1.html"

	payload := dto.GenerateVisibilityReportPayload{LeadID: "L1", PartnerID: "P1"}

	result, err := env.handlers.GenerateVisibilityReport(context.Background(), &payload)
	require.NoError(t, err)
	assert.Equal(t, "reports/visibility-report-L1.html", result.ReportURL)
	assert.Equal(t, 1, env.reports.calls)

	var lead models.VisibilityLead
	require.NoError(t, env.db.First(&lead, "id = ?", "L1").Error)
	assert.Equal(t, "reports/visibility-report-L1.html", lead.ReportURL)

	var audits []models.AuditLog
	require.NoError(t, env.db.Find(&audits).Error)
	require.Len(t, audits, 1)
	assert.Equal(t, "visibility_report_generated", audits[0].Action)
}

func TestGenerateVisibilityReport_GeneratorFailure(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {})
	require.NoError(t, env.db.Create(&models.VisibilityLead{
		ID:        "L1",
		PartnerID: "P1",
		Status:    models.LeadStatusCompleted,
	}).Error)
	env.reports.err = errors.New("pdf renderer crashed")

	payload := dto.GenerateVisibilityReportPayload{LeadID: "L1", PartnerID: "P1"}

	_, err := env.handlers.GenerateVisibilityReport(context.Background(), &payload)
	require.Error(t, err)
	assert.False(t, IsPermanent(err), "renderer failures stay retryable")

	var lead models.VisibilityLead
	require.NoError(t, env.db.First(&lead, "id = ?", "L1").Error)
	assert.Contains(t, lead.ErrorMessage, "pdf renderer crashed")
}
