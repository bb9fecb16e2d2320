package store

import (
	"encoding/json"
	"strings"
	"time"

	"vision-fit-guide/backend/internal/scoring"
)

// Email delivery states recorded on a fit guide.
const (
	EmailPending = "pending"
	EmailSent    = "sent"
	EmailLogged  = "logged"
	EmailFailed  = "failed"
	EmailSkipped = "skipped"
)

// Sliders keeps the three importance answers together.
type Sliders struct {
	Cost     string `json:"cost"`
	TimeAway string `json:"time_away"`
	English  string `json:"english"`
}

// FitGuide is one completed questionnaire together with the result shown to the church.
type FitGuide struct {
	ID                   uint      `gorm:"primaryKey" bson:"-"`
	PublicID             string    `gorm:"size:36;uniqueIndex" bson:"public_id"`
	ChurchName           string    `gorm:"size:255;index" bson:"church_name"`
	Denomination         string    `gorm:"size:128" bson:"denomination"`
	ContactName          string    `gorm:"size:255" bson:"contact_name"`
	ContactRole          string    `gorm:"size:128" bson:"contact_role"`
	Email                string    `gorm:"size:255;index" bson:"email"`
	Attendance           string    `gorm:"size:16" bson:"attendance"`
	GlobalPresenceStatus string    `gorm:"size:16" bson:"global_presence_status"`
	ExistingRegions      string    `gorm:"type:text" bson:"existing_regions"`
	RegionPreference     string    `gorm:"size:32" bson:"region_preference"`
	SlidersJSON          string    `gorm:"type:text" bson:"sliders_json"`
	PartnershipPosture   string    `gorm:"size:32" bson:"partnership_posture"`
	MobilizationJSON     string    `gorm:"type:text" bson:"mobilization_json"`
	MobilizationOther    string    `gorm:"type:text" bson:"mobilization_other"`
	ImpactDNAJSON        string    `gorm:"type:text" bson:"impact_dna_json"`
	FrontierType         string    `gorm:"size:32" bson:"frontier_type"`
	OtherFactors         string    `gorm:"type:text" bson:"other_factors"`
	ScoresJSON           string    `gorm:"type:text" bson:"scores_json"`
	Top3JSON             string    `gorm:"type:text" bson:"top3_json"`
	TopCountry           string    `gorm:"size:32;index" bson:"top_country"`
	ConfidenceLevel      string    `gorm:"size:16;index" bson:"confidence_level"`
	ProcessingTimeMs     int64     `bson:"processing_time_ms"`
	InternalEmailStatus  string    `gorm:"size:16" bson:"internal_email_status"`
	PastorEmailStatus    string    `gorm:"size:16" bson:"pastor_email_status"`
	EmailError           string    `gorm:"type:text" bson:"email_error"`
	CreatedAt            time.Time `gorm:"index" bson:"created_at"`
	UpdatedAt            time.Time `bson:"updated_at"`
}

// NewFitGuide flattens a scored submission into a record ready to save.
func NewFitGuide(answers scoring.AnswerSet, result scoring.Result, elapsed time.Duration) *FitGuide {
	f := &FitGuide{
		ChurchName:           strings.TrimSpace(answers.ChurchName),
		Denomination:         strings.TrimSpace(answers.Denomination),
		ContactName:          strings.TrimSpace(answers.ContactName),
		ContactRole:          strings.TrimSpace(answers.ContactRole),
		Email:                strings.ToLower(strings.TrimSpace(answers.Email)),
		Attendance:           string(answers.Attendance),
		GlobalPresenceStatus: string(answers.GlobalPresenceStatus),
		ExistingRegions:      answers.ExistingRegions,
		RegionPreference:     string(answers.RegionPreference),
		PartnershipPosture:   string(answers.PartnershipPosture),
		MobilizationOther:    answers.MobilizationOther,
		FrontierType:         string(answers.FrontierType),
		OtherFactors:         answers.OtherFactors,
		TopCountry:           string(result.Top().Country),
		ConfidenceLevel:      string(result.Confidence),
		ProcessingTimeMs:     elapsed.Milliseconds(),
		InternalEmailStatus:  EmailPending,
		PastorEmailStatus:    EmailPending,
	}
	f.SetSliders(Sliders{
		Cost:     string(answers.CostImportance),
		TimeAway: string(answers.TimeAwayImportance),
		English:  string(answers.EnglishImportance),
	})
	mobilization := make([]string, 0, len(answers.Mobilization))
	for _, tag := range answers.Mobilization {
		mobilization = append(mobilization, string(tag))
	}
	f.SetMobilization(mobilization)
	impact := make([]string, 0, len(answers.ImpactDNA))
	for _, tag := range answers.ImpactDNA {
		impact = append(impact, string(tag))
	}
	f.SetImpactDNA(impact)
	f.SetScores(result.AllScores)
	f.SetTop3(result.Top3)
	return f
}

// Answers rebuilds the answer set the record was created from.
func (f *FitGuide) Answers() scoring.AnswerSet {
	sliders := f.Sliders()
	out := scoring.AnswerSet{
		ChurchName:           f.ChurchName,
		Denomination:         f.Denomination,
		ContactName:          f.ContactName,
		ContactRole:          f.ContactRole,
		Email:                f.Email,
		Attendance:           scoring.Attendance(f.Attendance),
		GlobalPresenceStatus: scoring.GlobalPresence(f.GlobalPresenceStatus),
		RegionPreference:     scoring.RegionPreference(f.RegionPreference),
		ExistingRegions:      f.ExistingRegions,
		CostImportance:       scoring.ImportanceLevel(sliders.Cost),
		TimeAwayImportance:   scoring.ImportanceLevel(sliders.TimeAway),
		EnglishImportance:    scoring.ImportanceLevel(sliders.English),
		PartnershipPosture:   scoring.PartnershipPosture(f.PartnershipPosture),
		MobilizationOther:    f.MobilizationOther,
		FrontierType:         scoring.FrontierType(f.FrontierType),
		OtherFactors:         f.OtherFactors,
	}
	for _, tag := range f.Mobilization() {
		out.Mobilization = append(out.Mobilization, scoring.MobilizationTag(tag))
	}
	for _, tag := range f.ImpactDNA() {
		out.ImpactDNA = append(out.ImpactDNA, scoring.ImpactDNATag(tag))
	}
	return out
}

// SetSliders stores the importance answers as JSON.
func (f *FitGuide) SetSliders(s Sliders) {
	payload, _ := json.Marshal(s)
	f.SlidersJSON = string(payload)
}

// Sliders decodes the stored importance answers.
func (f *FitGuide) Sliders() Sliders {
	var out Sliders
	if strings.TrimSpace(f.SlidersJSON) == "" {
		return out
	}
	_ = json.Unmarshal([]byte(f.SlidersJSON), &out)
	return out
}

// SetMobilization persists the audience tags as JSON.
func (f *FitGuide) SetMobilization(tags []string) {
	f.MobilizationJSON = encodeList(tags)
}

// Mobilization returns the stored audience tags.
func (f *FitGuide) Mobilization() []string {
	return decodeList(f.MobilizationJSON)
}

// SetImpactDNA persists the impact tags as JSON.
func (f *FitGuide) SetImpactDNA(tags []string) {
	f.ImpactDNAJSON = encodeList(tags)
}

// ImpactDNA returns the stored impact tags.
func (f *FitGuide) ImpactDNA() []string {
	return decodeList(f.ImpactDNAJSON)
}

// SetScores stores the raw post-tie-break totals.
func (f *FitGuide) SetScores(scores map[scoring.Country]int) {
	if scores == nil {
		f.ScoresJSON = "{}"
		return
	}
	payload, _ := json.Marshal(scores)
	f.ScoresJSON = string(payload)
}

// Scores returns the raw totals keyed by country.
func (f *FitGuide) Scores() map[scoring.Country]int {
	if strings.TrimSpace(f.ScoresJSON) == "" {
		return nil
	}
	var out map[scoring.Country]int
	if err := json.Unmarshal([]byte(f.ScoresJSON), &out); err != nil {
		return nil
	}
	return out
}

// SetTop3 stores the displayed ranking with its reasons.
func (f *FitGuide) SetTop3(top []scoring.CountryScore) {
	if top == nil {
		f.Top3JSON = "[]"
		return
	}
	payload, _ := json.Marshal(top)
	f.Top3JSON = string(payload)
}

// Top3 decodes the displayed ranking.
func (f *FitGuide) Top3() []scoring.CountryScore {
	if strings.TrimSpace(f.Top3JSON) == "" {
		return nil
	}
	var out []scoring.CountryScore
	if err := json.Unmarshal([]byte(f.Top3JSON), &out); err != nil {
		return nil
	}
	return out
}

// Result reassembles the scoring result stored on the record.
func (f *FitGuide) Result() scoring.Result {
	return scoring.Result{
		Top3:       f.Top3(),
		AllScores:  f.Scores(),
		Confidence: scoring.Confidence(f.ConfidenceLevel),
	}
}

func encodeList(values []string) string {
	if values == nil {
		return "[]"
	}
	payload, _ := json.Marshal(values)
	return string(payload)
}

func decodeList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil
	}
	return out
}
