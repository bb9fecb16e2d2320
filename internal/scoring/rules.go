package scoring

import "strings"

// rule reads only the answers and adds deltas to the tally. Rules never read each
// other's output, so their order affects reason order but not totals.
type rule func(in *input, t *tally)

var rules = []rule{
	attendanceRule,
	globalPresenceRule,
	costRule,
	timeAwayRule,
	englishRule,
	partnershipRule,
	mobilizationRule,
	spanishRule,
	impactDNARule,
}

var (
	latinAmericaTerms = []string{"latin", "central america", "south america", "mexico", "honduras", "guatemala"}
	africaTerms       = []string{"africa", "kenya", "uganda", "ethiopia"}
)

func attendanceRule(in *input, t *tally) {
	switch in.Attendance {
	case Attendance0To50, Attendance50To125:
		t.add(Guatemala, 20, "Perfect size for an intimate, accessible first trip")
	case Attendance125To300:
		t.add(Guatemala, 18, "Great fit for your church size")
	case Attendance300To500:
		t.add(Guatemala, 10, "Accessible option for mid-size churches")
	}
	// Larger churches get no bonus: every country stays viable.
}

func globalPresenceRule(in *input, t *tally) {
	switch in.GlobalPresenceStatus {
	case GlobalPresenceNotSure:
		t.addAll(2, "Open to a first global partnership wherever the fit is strongest")
	case GlobalPresenceYes:
		switch in.RegionPreference {
		case RegionDifferent:
			t.add(Uganda, 8, "Expands your global footprint to a new region")
			t.add(Ethiopia, 8, "Expands your global footprint to a new region")
			antiAffinity(in.ExistingRegions, t)
		case RegionNotSure:
			t.add(Guatemala, 3, "An easy first step while you decide where to expand")
		}
	}
}

// antiAffinity pushes the respondent away from regions they already work in. Both
// checks are independent and may both fire.
func antiAffinity(existing string, t *tally) {
	regions := strings.ToLower(strings.TrimSpace(existing))
	if regions == "" {
		return
	}
	if containsAny(regions, latinAmericaTerms) {
		t.add(Guatemala, -50, "")
		t.add(Uganda, 6, "Complements your Latin America work with African context")
		t.add(Ethiopia, 6, "Complements your Latin America work with African context")
	}
	if containsAny(regions, africaTerms) {
		t.add(Uganda, -50, "")
		t.add(Ethiopia, -50, "")
		t.add(Guatemala, 10, "Adds Central America to your Africa partnerships")
	}
}

func costRule(in *input, t *tally) {
	switch in.CostImportance {
	case ImportanceHigh:
		t.add(Guatemala, 30, "Most budget-friendly option ($1,500–$2,200 per person)")
	case ImportanceMedium:
		t.add(Guatemala, 15, "Lower trip costs make this more accessible")
	}
}

func timeAwayRule(in *input, t *tally) {
	switch in.TimeAwayImportance {
	case ImportanceHigh:
		t.add(Guatemala, 25, "Shortest trip duration (5–6 days total)")
		t.add(Ethiopia, 10, "Direct flights available reduce total travel time")
		t.add(Uganda, -5, "")
	case ImportanceMedium:
		t.add(Guatemala, 12, "Shorter time commitment works well for busy schedules")
		t.add(Ethiopia, 6, "More efficient travel than other African options")
		t.add(Uganda, -3, "")
	}
}

func englishRule(in *input, t *tally) {
	switch in.EnglishImportance {
	case ImportanceHigh:
		t.add(Uganda, 30, "English is widely spoken—easy communication")
	case ImportanceMedium:
		t.add(Uganda, 15, "English fluency makes connection easier")
	}
}

func partnershipRule(in *input, t *tally) {
	switch in.PartnershipPosture {
	case PosturePartnerWithOthers:
		t.add(Uganda, 8, "Strong collaborative opportunities available")
		t.add(Ethiopia, 8, "Strong collaborative opportunities available")
	case PostureFlexible:
		t.addAll(3, "Flexible partnership options fit your open posture")
	case PostureNotSure:
		t.add(Guatemala, 4, "Simple partnership model to start with while you explore")
	}
}

// mobilizationReasons holds the sentence for tags that lift every country.
var mobilizationReasons = map[MobilizationTag]string{
	MobilizeStudentsYoungAdults:   "Meaningful serving roles for students and young adults",
	MobilizeFamiliesWithChildren:  "Welcomes families who want to serve together",
	MobilizeTeachersEducators:     "Natural connections for teachers and educators",
	MobilizeMedicalProfessionals:  "Real health needs your medical professionals can meet",
	MobilizeSmallGroupsSundaySchl: "Room for small groups and Sunday school classes to engage",
	MobilizeConstructionTeams:     "Hands-on projects for construction teams",
}

const defaultMobilizationReason = "Room for every team your church plans to mobilize"

func mobilizationRule(in *input, t *tally) {
	for _, tag := range in.Mobilization {
		switch tag {
		case MobilizeBroadChurchWide:
			t.add(Guatemala, 3, "Excellent for engaging your whole church")
		case MobilizeAdultsSeniors:
			t.add(Guatemala, 2, "Shorter trips accommodate adult and senior teams")
		default:
			// Unrecognised tags deliberately share this bucket.
			reason, ok := mobilizationReasons[tag]
			if !ok {
				reason = defaultMobilizationReason
			}
			t.addAll(2, reason)
		}
	}
}

func spanishRule(in *input, t *tally) {
	if in.spanish {
		t.add(Guatemala, 5, "Your Spanish speakers will thrive here")
	}
}

// impactReasons holds the sentence for impact tags that lift every country.
var impactReasons = map[ImpactDNATag]string{
	ImpactEvangelismDiscipleship: "Gospel-centered discipleship through local churches",
	ImpactEducationMedical:       "Education and health care woven into every CarePoint",
	ImpactEducationSchools:       "School and literacy programs ready for partnership",
	ImpactHealthMedical:          "Health care needs where your support goes far",
	ImpactChurchPlanting:         "Local church partners ready to grow new congregations",
	ImpactCommunityTransform:     "Holistic community development you can invest in",
	ImpactYouthDevelopment:       "Youth development built into the partnership model",
	ImpactFriendshipModel:        "Friendship model built on dignity and mutual relationship",
	ImpactCarePointGraduation:    "CarePoint model designed to graduate communities to independence",
}

const defaultImpactReason = "Aligned with your church's impact priorities"

func impactDNARule(in *input, t *tally) {
	for _, tag := range in.ImpactDNA {
		switch tag {
		case ImpactFrontierHardToReach:
			t.add(Uganda, 15, "High-need frontier context with minimal existing infrastructure")
			t.add(Ethiopia, 10, "Meaningful frontier ministry opportunities")
			frontierRule(in.FrontierType, t)
		case ImpactChurchLeadership:
			t.add(Uganda, 5, "Strong leadership development opportunities")
			t.add(Ethiopia, 5, "Partner with local church leaders")
		default:
			reason, ok := impactReasons[tag]
			if !ok {
				reason = defaultImpactReason
			}
			t.addAll(5, reason)
		}
	}
}

func frontierRule(kind FrontierType, t *tally) {
	switch kind {
	case FrontierMinimalInfrastructure:
		t.add(Uganda, 10, "Remote communities with significant need")
	case FrontierMuslimMajority:
		t.add(Ethiopia, 10, "CarePoints serving Muslim-majority communities")
	case FrontierNotSure:
		t.add(Uganda, 2, "Frontier opportunities you can explore as you learn more")
		t.add(Ethiopia, 2, "Frontier opportunities you can explore as you learn more")
	}
}

func containsAny(haystack string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}
