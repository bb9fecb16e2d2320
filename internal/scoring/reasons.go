package scoring

// MinTopReasons is the fewest reasons the raw leader may be shown with.
const MinTopReasons = 6

var ownCommunityReasons = map[Country]string{
	Guatemala: "Build deep, long-term relationships with your own community",
	Uganda:    "Own a transformational partnership with lasting impact",
	Ethiopia:  "Establish multi-year relationships that change generations",
}

// contextualImpact and contextualMobilization are checked in order; each tag
// contributes at most one sentence.
var contextualImpact = []struct {
	tag    ImpactDNATag
	reason string
}{
	{ImpactFriendshipModel, "Dignity-based relationships honor community leadership"},
	{ImpactCarePointGraduation, "Sustainable model designed for community independence"},
	{ImpactCommunityTransform, "Holistic approach addresses root causes, not just symptoms"},
	{ImpactEducationSchools, "Education programs create lasting generational change"},
	{ImpactYouthDevelopment, "Youth leadership development multiplies long-term impact"},
}

var contextualMobilization = []struct {
	tag    MobilizationTag
	reason string
}{
	{MobilizeFamiliesWithChildren, "Family-friendly environment for meaningful intergenerational impact"},
	{MobilizeConstructionTeams, "Hands-on construction projects create visible, lasting infrastructure"},
	{MobilizeMedicalProfessionals, "Critical healthcare needs where your medical expertise makes real difference"},
}

// fallbackReasons are appended in order until the leader reaches MinTopReasons.
var fallbackReasons = map[Country][]string{
	Guatemala: {
		"Proven track record of successful church partnerships",
		"Often the most accessible first trip (shorter + lower cost)",
		"Great option for broad church-wide involvement",
		"Strong fit for Spanish speakers and immersion",
		"Community-to-community partnerships rooted in Central America",
		"Several 2026 vision trip dates to choose from",
	},
	Uganda: {
		"High community need creates profound ministry opportunities",
		"English is widely spoken across partner communities",
		"Strong frontier context where need is especially high",
		"Church-to-church partnerships with local pastors in East Africa",
		"Ten-day vision trips leave room for deep relationships",
		"Several 2026 vision trip dates to choose from",
	},
	Ethiopia: {
		"Rich cultural heritage enhances cross-cultural learning",
		"Direct flights from select U.S. cities can reduce travel friction",
		"Christian-majority context with meaningful Muslim-area ministry opportunities",
		"Community-to-community partnerships in East Africa",
		"Ten-day vision trips leave room for deep relationships",
		"Several 2026 vision trip dates to choose from",
	},
}

// completeReasons tops up the raw leader's reasons before tie-breaking. Every check
// re-reads the live count so nothing is added once the minimum is met.
func completeReasons(in *input, t *tally) {
	top := t.ranked()[0]
	short := func() bool { return len(t.reasons[top]) < MinTopReasons }

	if short() && in.PartnershipPosture == PostureOwnCommunity {
		t.note(top, ownCommunityReasons[top])
	}
	for _, c := range contextualImpact {
		if short() && in.HasImpact(c.tag) {
			t.note(top, c.reason)
		}
	}
	for _, c := range contextualMobilization {
		if short() && in.HasMobilization(c.tag) {
			t.note(top, c.reason)
		}
	}
	for _, reason := range fallbackReasons[top] {
		if !short() {
			break
		}
		t.note(top, reason)
	}
}
