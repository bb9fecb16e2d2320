package scoring

import (
	"errors"
	"fmt"
	"strings"
)

// Attendance is the weekly attendance bucket selected in the wizard.
type Attendance string

const (
	Attendance0To50      Attendance = "0-50"
	Attendance50To125    Attendance = "50-125"
	Attendance125To300   Attendance = "125-300"
	Attendance300To500   Attendance = "300-500"
	Attendance500To1000  Attendance = "500-1000"
	Attendance1000To2000 Attendance = "1000-2000"
	Attendance2000Plus   Attendance = "2000+"
)

// AttendanceBuckets lists the recognised buckets in ascending order.
var AttendanceBuckets = []Attendance{
	Attendance0To50,
	Attendance50To125,
	Attendance125To300,
	Attendance300To500,
	Attendance500To1000,
	Attendance1000To2000,
	Attendance2000Plus,
}

// GlobalPresence records whether the church already partners internationally.
type GlobalPresence string

const (
	GlobalPresenceNo      GlobalPresence = "no"
	GlobalPresenceYes     GlobalPresence = "yes"
	GlobalPresenceNotSure GlobalPresence = "not_sure"
)

// RegionPreference is only meaningful when GlobalPresence is yes.
type RegionPreference string

const (
	RegionComplementExisting RegionPreference = "complement_existing"
	RegionDifferent          RegionPreference = "different_region"
	RegionNotSure            RegionPreference = "not_sure"
)

// ImportanceLevel is the ordinal form of a 0-100 slider.
type ImportanceLevel string

const (
	ImportanceLow    ImportanceLevel = "low"
	ImportanceMedium ImportanceLevel = "medium"
	ImportanceHigh   ImportanceLevel = "high"
)

// ImportanceFromSlider collapses a slider value: <=33 low, <=66 medium, else high.
func ImportanceFromSlider(value float64) ImportanceLevel {
	switch {
	case value <= 33:
		return ImportanceLow
	case value <= 66:
		return ImportanceMedium
	default:
		return ImportanceHigh
	}
}

func (l ImportanceLevel) valid() bool {
	switch l {
	case ImportanceLow, ImportanceMedium, ImportanceHigh:
		return true
	}
	return false
}

// atLeastMedium reports whether the level is medium or high.
func (l ImportanceLevel) atLeastMedium() bool {
	return l == ImportanceMedium || l == ImportanceHigh
}

// PartnershipPosture describes how the church wants to partner on the ground.
type PartnershipPosture string

const (
	PostureOwnCommunity      PartnershipPosture = "own_community"
	PosturePartnerWithOthers PartnershipPosture = "partner_with_others"
	PostureFlexible          PartnershipPosture = "flexible"
	PostureNotSure           PartnershipPosture = "not_sure"
)

// MobilizationTag names an audience the church expects to send.
type MobilizationTag string

const (
	MobilizeStudentsYoungAdults   MobilizationTag = "students_young_adults"
	MobilizeFamiliesWithChildren  MobilizationTag = "families_with_children"
	MobilizeTeachersEducators     MobilizationTag = "teachers_educators"
	MobilizeMedicalProfessionals  MobilizationTag = "medical_professionals"
	MobilizeAdultsSeniors         MobilizationTag = "adults_seniors"
	MobilizeBroadChurchWide       MobilizationTag = "broad_church_wide"
	MobilizeSmallGroupsSundaySchl MobilizationTag = "small_groups_sunday_school"
	MobilizeConstructionTeams     MobilizationTag = "construction_teams"
	MobilizeSpanishSpeakers       MobilizationTag = "spanish_speakers"
	MobilizeOther                 MobilizationTag = "other"
)

// MaxMobilizationTags is the most audiences a respondent may select.
const MaxMobilizationTags = 4

// ImpactDNATag names a ministry emphasis. Multiple tags may be selected.
type ImpactDNATag string

const (
	ImpactEvangelismDiscipleship ImpactDNATag = "evangelism_discipleship"
	ImpactEducationMedical       ImpactDNATag = "education_medical"
	ImpactEducationSchools       ImpactDNATag = "education_schools"
	ImpactHealthMedical          ImpactDNATag = "health_medical"
	ImpactChurchPlanting         ImpactDNATag = "church_planting"
	ImpactChurchLeadership       ImpactDNATag = "church_leadership"
	ImpactCommunityTransform     ImpactDNATag = "community_transformation"
	ImpactFrontierHardToReach    ImpactDNATag = "frontier_hard_to_reach"
	ImpactYouthDevelopment       ImpactDNATag = "youth_development_leadership"
	ImpactFriendshipModel        ImpactDNATag = "friendship_model"
	ImpactCarePointGraduation    ImpactDNATag = "carepoint_graduation"
)

// FrontierType refines frontier_hard_to_reach.
type FrontierType string

const (
	FrontierMinimalInfrastructure FrontierType = "minimal_infrastructure"
	FrontierMuslimMajority        FrontierType = "muslim_majority_context"
	FrontierNotSure               FrontierType = "not_sure"
)

// AnswerSet is the finalized questionnaire response. Only Attendance and the three
// importance levels are required for scoring; every other field may be left empty.
type AnswerSet struct {
	ChurchName   string `json:"church_name"`
	Denomination string `json:"denomination,omitempty"`
	ContactName  string `json:"contact_name"`
	ContactRole  string `json:"contact_role,omitempty"`
	Email        string `json:"email"`

	Attendance           Attendance       `json:"attendance"`
	GlobalPresenceStatus GlobalPresence   `json:"global_presence_status,omitempty"`
	RegionPreference     RegionPreference `json:"region_preference,omitempty"`
	ExistingRegions      string           `json:"existing_regions,omitempty"`

	CostImportance     ImportanceLevel `json:"cost_importance"`
	TimeAwayImportance ImportanceLevel `json:"time_away_importance"`
	EnglishImportance  ImportanceLevel `json:"english_importance"`

	PartnershipPosture PartnershipPosture `json:"partnership_posture,omitempty"`
	Mobilization       []MobilizationTag  `json:"mobilization,omitempty"`
	MobilizationOther  string             `json:"mobilization_other,omitempty"`
	ImpactDNA          []ImpactDNATag     `json:"impact_dna,omitempty"`
	FrontierType       FrontierType       `json:"frontier_type,omitempty"`
	OtherFactors       string             `json:"other_factors,omitempty"`
}

// SpanishToggle is derived from the mobilization set: true iff Spanish speakers are selected.
func (a AnswerSet) SpanishToggle() bool {
	for _, tag := range a.Mobilization {
		if tag == MobilizeSpanishSpeakers {
			return true
		}
	}
	return false
}

// HasImpact reports whether the impact DNA set contains tag.
func (a AnswerSet) HasImpact(tag ImpactDNATag) bool {
	for _, t := range a.ImpactDNA {
		if t == tag {
			return true
		}
	}
	return false
}

// HasMobilization reports whether the mobilization set contains tag.
func (a AnswerSet) HasMobilization(tag MobilizationTag) bool {
	for _, t := range a.Mobilization {
		if t == tag {
			return true
		}
	}
	return false
}

// ErrInvalidAnswers is wrapped by every ValidationError.
var ErrInvalidAnswers = errors.New("invalid answers")

// ValidationError identifies the answer field that violated the input contract.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("%s: %s (got %q)", e.Field, e.Reason, e.Value)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidAnswers
}

// Validate checks the fields the engine cannot score without. Defaults are never
// substituted for a missing required value.
func (a AnswerSet) Validate() error {
	if a.Attendance == "" {
		return &ValidationError{Field: "attendance", Reason: "is required"}
	}
	if !validAttendance(a.Attendance) {
		return &ValidationError{Field: "attendance", Value: string(a.Attendance), Reason: "is not a recognised bucket"}
	}
	sliders := []struct {
		field string
		level ImportanceLevel
	}{
		{"cost_importance", a.CostImportance},
		{"time_away_importance", a.TimeAwayImportance},
		{"english_importance", a.EnglishImportance},
	}
	for _, s := range sliders {
		if s.level == "" {
			return &ValidationError{Field: s.field, Reason: "is required"}
		}
		if !s.level.valid() {
			return &ValidationError{Field: s.field, Value: string(s.level), Reason: "must be low, medium or high"}
		}
	}
	if n := len(uniqueMobilization(a.Mobilization)); n > MaxMobilizationTags {
		return &ValidationError{Field: "mobilization", Value: fmt.Sprint(n), Reason: fmt.Sprintf("at most %d audiences may be selected", MaxMobilizationTags)}
	}
	return nil
}

// ValidateContact checks the identity fields needed to save and email a fit guide.
func (a AnswerSet) ValidateContact() error {
	if strings.TrimSpace(a.ChurchName) == "" {
		return &ValidationError{Field: "church_name", Reason: "is required"}
	}
	if strings.TrimSpace(a.ContactName) == "" {
		return &ValidationError{Field: "contact_name", Reason: "is required"}
	}
	email := strings.TrimSpace(a.Email)
	if email == "" {
		return &ValidationError{Field: "email", Reason: "is required"}
	}
	at := strings.LastIndex(email, "@")
	if at <= 0 || at == len(email)-1 || strings.ContainsAny(email, " \t\r\n") {
		return &ValidationError{Field: "email", Value: email, Reason: "is not a valid address"}
	}
	return nil
}

func validAttendance(a Attendance) bool {
	for _, bucket := range AttendanceBuckets {
		if a == bucket {
			return true
		}
	}
	return false
}

// uniqueMobilization keeps the first occurrence of each tag, preserving order.
func uniqueMobilization(in []MobilizationTag) []MobilizationTag {
	seen := make(map[MobilizationTag]struct{}, len(in))
	out := make([]MobilizationTag, 0, len(in))
	for _, tag := range in {
		tag = MobilizationTag(strings.TrimSpace(string(tag)))
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}

func uniqueImpact(in []ImpactDNATag) []ImpactDNATag {
	seen := make(map[ImpactDNATag]struct{}, len(in))
	out := make([]ImpactDNATag, 0, len(in))
	for _, tag := range in {
		tag = ImpactDNATag(strings.TrimSpace(string(tag)))
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}
