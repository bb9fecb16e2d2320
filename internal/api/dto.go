package api

import (
	"time"

	"vision-fit-guide/backend/internal/catalog"
	"vision-fit-guide/backend/internal/scoring"
	"vision-fit-guide/backend/internal/store"
)

// ScoreRequest wraps the questionnaire answers posted by the wizard.
type ScoreRequest struct {
	Answers scoring.AnswerSet `json:"answers"`
}

// LoginRequest carries admin credentials.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// SubmissionStatus reports what happened after the result was computed.
type SubmissionStatus struct {
	Saved         bool   `json:"saved"`
	Duplicate     bool   `json:"duplicate"`
	InternalEmail string `json:"internal_email"`
	PastorEmail   string `json:"pastor_email"`
	Error         string `json:"error,omitempty"`
}

// SubmissionResponse is returned from POST /api/fit-guides.
type SubmissionResponse struct {
	ID       string            `json:"id"`
	Result   scoring.Result    `json:"result"`
	Greeting string            `json:"greeting"`
	Sections []catalog.Section `json:"sections"`
	Status   SubmissionStatus  `json:"status"`
}

// FitGuideDTO is the admin representation of a saved fit guide.
type FitGuideDTO struct {
	ID                   string                  `json:"id"`
	ChurchName           string                  `json:"church_name"`
	Denomination         string                  `json:"denomination"`
	ContactName          string                  `json:"contact_name"`
	ContactRole          string                  `json:"contact_role"`
	Email                string                  `json:"email"`
	Attendance           string                  `json:"attendance"`
	GlobalPresenceStatus string                  `json:"global_presence_status"`
	ExistingRegions      string                  `json:"existing_regions"`
	RegionPreference     string                  `json:"region_preference"`
	Sliders              store.Sliders           `json:"sliders"`
	PartnershipPosture   string                  `json:"partnership_posture"`
	Mobilization         []string                `json:"mobilization"`
	MobilizationOther    string                  `json:"mobilization_other"`
	ImpactDNA            []string                `json:"impact_dna"`
	FrontierType         string                  `json:"frontier_type"`
	OtherFactors         string                  `json:"other_factors"`
	Scores               map[scoring.Country]int `json:"scores"`
	Top3                 []scoring.CountryScore  `json:"top3"`
	TopCountry           string                  `json:"top_country"`
	ConfidenceLevel      string                  `json:"confidence_level"`
	ProcessingTimeMs     int64                   `json:"processing_time_ms"`
	InternalEmailStatus  string                  `json:"internal_email_status"`
	PastorEmailStatus    string                  `json:"pastor_email_status"`
	EmailError           string                  `json:"email_error,omitempty"`
	CreatedAt            time.Time               `json:"created_at"`
}

// FitGuideList is one page of admin results.
type FitGuideList struct {
	Items    []FitGuideDTO `json:"items"`
	Total    int64         `json:"total"`
	Page     int           `json:"page"`
	PageSize int           `json:"page_size"`
}

// FromModel converts a persisted fit guide into its API form.
func FromModel(f store.FitGuide) FitGuideDTO {
	mobilization := f.Mobilization()
	if mobilization == nil {
		mobilization = []string{}
	}
	impact := f.ImpactDNA()
	if impact == nil {
		impact = []string{}
	}
	return FitGuideDTO{
		ID:                   f.PublicID,
		ChurchName:           f.ChurchName,
		Denomination:         f.Denomination,
		ContactName:          f.ContactName,
		ContactRole:          f.ContactRole,
		Email:                f.Email,
		Attendance:           f.Attendance,
		GlobalPresenceStatus: f.GlobalPresenceStatus,
		ExistingRegions:      f.ExistingRegions,
		RegionPreference:     f.RegionPreference,
		Sliders:              f.Sliders(),
		PartnershipPosture:   f.PartnershipPosture,
		Mobilization:         mobilization,
		MobilizationOther:    f.MobilizationOther,
		ImpactDNA:            impact,
		FrontierType:         f.FrontierType,
		OtherFactors:         f.OtherFactors,
		Scores:               f.Scores(),
		Top3:                 f.Top3(),
		TopCountry:           f.TopCountry,
		ConfidenceLevel:      f.ConfidenceLevel,
		ProcessingTimeMs:     f.ProcessingTimeMs,
		InternalEmailStatus:  f.InternalEmailStatus,
		PastorEmailStatus:    f.PastorEmailStatus,
		EmailError:           f.EmailError,
		CreatedAt:            f.CreatedAt,
	}
}
