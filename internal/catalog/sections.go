package catalog

import (
	"strings"

	"vision-fit-guide/backend/internal/scoring"
)

// Section is one personalized paragraph on the results page.
type Section struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type countryText map[scoring.Country]string

var impactSections = []struct {
	tag   scoring.ImpactDNATag
	title string
	text  countryText
}{
	{scoring.ImpactEducationSchools, "Education & Schools Partnership", countryText{
		scoring.Uganda:    "Your heart for education aligns with Uganda. Through CarePoints your church can support vocational training, literacy programs and scholarships that transform children's futures.",
		scoring.Ethiopia:  "Many Ethiopian children lack access to quality education and safe learning environments. Your church can support teacher training, literacy programs and sponsorships that help children finish school.",
		scoring.Guatemala: "Guatemala's rural communities face significant educational challenges. Your church can engage through after-school programs, literacy initiatives, tutoring and scholarships.",
	}},
	{scoring.ImpactHealthMedical, "Medical & Healthcare Ministry", countryText{
		scoring.Uganda:    "Malaria, dehydration and respiratory infections are leading causes of death for children under 5 in Uganda. Your medical professionals can provide screenings, basic care and preventative education.",
		scoring.Ethiopia:  "Ethiopia faces limited access to medical facilities and clean water. Medical teams make profound impact through clinics, health education and training community health workers.",
		scoring.Guatemala: "Guatemala's rural communities have limited access to healthcare. Your team can provide health screenings, dental care, vision services and health education.",
	}},
	{scoring.ImpactChurchLeadership, "Church-to-Church Leadership Development", countryText{
		scoring.Uganda:    "You'll work alongside local church leaders who serve as the backbone of Ugandan CarePoints, helping them grow ministry skills and discipleship programs.",
		scoring.Ethiopia:  "Ethiopia's ancient Christian heritage offers rich church-to-church partnerships. Your church can provide leadership training, pastoral mentorship and discipleship resources.",
		scoring.Guatemala: "Guatemala's vibrant church community welcomes partnership. Your church can mentor local pastors and build long-term relationships that strengthen both congregations.",
	}},
	{scoring.ImpactCommunityTransform, "Holistic Community Transformation", countryText{
		scoring.Uganda:    "Tailoring cooperatives, poultry farming, microfinance and agriculture move Ugandan families from survival to thriving.",
		scoring.Ethiopia:  "Water projects, agricultural training and savings groups lift Ethiopian communities out of poverty through dignified work.",
		scoring.Guatemala: "Agricultural projects, women's cooperatives and skills training create economic opportunity across Guatemalan communities.",
	}},
	{scoring.ImpactFrontierHardToReach, "Reaching Vulnerable Communities", countryText{
		scoring.Uganda:    "Uganda's rural CarePoints reach some of East Africa's most vulnerable populations, where extreme poverty meets minimal infrastructure.",
		scoring.Ethiopia:  "HopeChest serves both Christian-majority and Muslim-majority areas of Ethiopia, reaching isolated communities facing drought and food insecurity.",
		scoring.Guatemala: "Guatemala's mountainous regions and remote villages lack roads and basic services, offering frontier partnerships with indigenous communities.",
	}},
}

var mobilizationText = map[scoring.MobilizationTag]countryText{
	scoring.MobilizeStudentsYoungAdults: {
		scoring.Uganda:    "Students build cross-cultural friendships with Ugandan youth through sports outreach and CarePoint service.",
		scoring.Ethiopia:  "Young adults connect with Ethiopian youth through sports, music and cultural exchange.",
		scoring.Guatemala: "Guatemala's proximity makes it ideal for student trips built around VBS, construction and relationships.",
	},
	scoring.MobilizeFamiliesWithChildren: {
		scoring.Uganda:    "Uganda welcomes families; children play alongside Ugandan kids and see global compassion in action.",
		scoring.Ethiopia:  "Ethiopian communities warmly welcome families to share meals and play together.",
		scoring.Guatemala: "Short travel time makes Guatemala exceptionally family-friendly.",
	},
	scoring.MobilizeTeachersEducators: {
		scoring.Uganda:    "Educators connect through school visits, literacy programs and vocational training centers.",
		scoring.Ethiopia:  "Teachers can support literacy initiatives and encourage local educators.",
		scoring.Guatemala: "Spanish-speaking educators especially thrive partnering with Guatemalan schools.",
	},
	scoring.MobilizeMedicalProfessionals: {
		scoring.Uganda:    "Medical professionals can run screenings and train community health workers.",
		scoring.Ethiopia:  "Medical teams address critical needs through clinics and preventative care education.",
		scoring.Guatemala: "Dental clinics and health screenings meet real needs in Guatemalan communities.",
	},
	scoring.MobilizeAdultsSeniors: {
		scoring.Uganda:    "Adult and senior teams bring wisdom and encouragement to caregivers and community leaders.",
		scoring.Ethiopia:  "Mature believers offer mentorship to local leaders and community members.",
		scoring.Guatemala: "Shorter trips accommodate a range of physical abilities while providing meaningful service.",
	},
	scoring.MobilizeBroadChurchWide: {
		scoring.Uganda:    "Church-wide trips to Uganda give every age a way to serve.",
		scoring.Ethiopia:  "Ethiopia welcomes diverse teams where every age and skill finds meaningful engagement.",
		scoring.Guatemala: "Guatemala's accessibility makes multi-generational church-wide trips practical.",
	},
}

var partnershipText = map[scoring.PartnershipPosture]map[scoring.Country]Section{
	scoring.PostureOwnCommunity: {
		scoring.Uganda:    {"Your Own CarePoint Partnership", "Your church becomes the primary partner for an entire Ugandan village, watching children grow year after year."},
		scoring.Ethiopia:  {"Your Own CarePoint Partnership", "Partnering with your own Ethiopian CarePoint invests your church in one community's journey from poverty to flourishing."},
		scoring.Guatemala: {"Your Own Community Partnership", "Adopt your own Guatemalan community and build intimate, multi-year relationships."},
	},
	scoring.PosturePartnerWithOthers: {
		scoring.Uganda:    {"Joining Existing Partnerships", "Several Ugandan CarePoints have church partnerships you can join, sharing resources and trip costs."},
		scoring.Ethiopia:  {"Collaborative Partnerships", "Join existing Ethiopian partnerships to share resources and learn from experienced churches."},
		scoring.Guatemala: {"Joining Established Partnerships", "Many Guatemalan communities welcome additional partnering churches."},
	},
}

// Sections builds the personalized paragraphs for country. The first matching impact
// emphasis contributes one section, selected audiences are merged into one, and the
// partnership posture adds a final one.
func Sections(country scoring.Country, answers scoring.AnswerSet) []Section {
	var out []Section
	for _, s := range impactSections {
		if answers.HasImpact(s.tag) {
			if text, ok := s.text[country]; ok {
				out = append(out, Section{Title: s.title, Content: text})
			}
			break
		}
	}

	var team []string
	for _, tag := range answers.Mobilization {
		if text, ok := mobilizationText[tag][country]; ok {
			team = append(team, text)
		}
	}
	if len(team) > 0 {
		out = append(out, Section{Title: "Mobilizing Your Team", Content: strings.Join(team, " ")})
	}

	if s, ok := partnershipText[answers.PartnershipPosture][country]; ok {
		out = append(out, s)
	}
	return out
}
