// Package catalog holds the display content shown next to a recommendation. None of it
// feeds the scoring engine.
package catalog

import (
	"fmt"
	"strings"

	"vision-fit-guide/backend/internal/scoring"
)

// VisionTrip is one scheduled 2026 vision trip.
type VisionTrip struct {
	ID              string `json:"id"`
	DateRange       string `json:"date_range"`
	Leader          string `json:"leader"`
	RegistrationURL string `json:"registration_url"`
}

// Profile is the static description of a partner country.
type Profile struct {
	Country        scoring.Country `json:"country"`
	Region         string          `json:"region"`
	MinistryType   string          `json:"ministry_type"`
	About          string          `json:"about"`
	Programs       []string        `json:"programs"`
	Considerations []string        `json:"considerations"`
	TripLength     string          `json:"trip_length"`
	CostRange      string          `json:"cost_range"`
	Language       string          `json:"language"`
	VisionTrips    []VisionTrip    `json:"vision_trips"`
}

var profiles = []Profile{
	{
		Country:      scoring.Guatemala,
		Region:       "Central America",
		MinistryType: "Community-to-Community",
		About: "Guatemala is located in Central America, offering accessible short-term mission opportunities. " +
			"HopeChest partners with communities facing poverty, limited education access and food insecurity. " +
			"CarePoints provide education, nutrition and spiritual development for vulnerable children and families.",
		Programs: []string{"Education Support", "Nutrition Programs", "Family Development", "Discipleship"},
		Considerations: []string{
			"Shorter time commitment (5–6 days total)",
			"Most accessible first trip option",
			"Great for Spanish speakers or immersion learners",
		},
		TripLength: "5–6 days",
		CostRange:  "$1,500–$2,200",
		Language:   "Spanish",
		VisionTrips: []VisionTrip{
			{ID: "guatemala-feb-2026", DateRange: "Feb 23–28", Leader: "TBD", RegistrationURL: "https://www.hopechest.org/vision-trips/gt-feb26/"},
			{ID: "guatemala-apr-2026", DateRange: "Apr 13–18", Leader: "TBD", RegistrationURL: "https://www.hopechest.org/vision-trips/gt-apr26/"},
			{ID: "guatemala-jun-2026", DateRange: "Jun 15–20", Leader: "TBD", RegistrationURL: "https://www.hopechest.org/vision-trips/gt-jun26/"},
			{ID: "guatemala-sep-2026", DateRange: "Sep 7–12", Leader: "TBD", RegistrationURL: "https://www.hopechest.org/vision-trips/gt-sep26/"},
		},
	},
	{
		Country:      scoring.Uganda,
		Region:       "East Africa",
		MinistryType: "Church-to-Church",
		About: "Uganda is a landlocked country in East-Central Africa. Established CarePoints serve more than 2,500 " +
			"children and youth, with tailoring, poultry farming, microfinance and agricultural programs that move " +
			"families toward self-sustainable transformation.",
		Programs: []string{"Tailoring", "Poultry Farming", "Microfinance", "Agricultural Farming", "Vocational Training", "Life Skills"},
		Considerations: []string{
			"Typically requires 2–3 flight connections",
			"10-day commitment including travel time",
			"English is widely spoken—easy communication",
		},
		TripLength: "10 days",
		CostRange:  "$1,800–$2,750",
		Language:   "English",
		VisionTrips: []VisionTrip{
			{ID: "uganda-feb-2026", DateRange: "Feb 10–18", Leader: "TBD", RegistrationURL: "https://www.hopechest.org/vision-trips/ug-feb26/"},
			{ID: "uganda-apr-2026", DateRange: "Apr 7–14", Leader: "TBD", RegistrationURL: "https://www.hopechest.org/vision-trips/ug-apr26/"},
			{ID: "uganda-jul-2026", DateRange: "Jul 27–Aug 4", Leader: "TBD", RegistrationURL: "https://www.hopechest.org/vision-trips/ug-jul26/"},
			{ID: "uganda-sep-2026", DateRange: "Sep 8–15", Leader: "TBD", RegistrationURL: "https://www.hopechest.org/vision-trips/ug-sep26/"},
		},
	},
	{
		Country:      scoring.Ethiopia,
		Region:       "East Africa",
		MinistryType: "Community-to-Community",
		About: "Ethiopia is located in the Horn of Africa and is one of the oldest Christian nations in the world. " +
			"HopeChest works in both Christian-majority and Muslim-majority areas, providing holistic care through " +
			"CarePoints in communities facing drought, food insecurity and limited healthcare access.",
		Programs: []string{"Health Programs", "Water Projects", "Education Support", "Economic Development"},
		Considerations: []string{
			"Direct flights available from select U.S. cities",
			"10-day trip duration",
			"Christian-majority context with meaningful Muslim-area ministry",
		},
		TripLength: "10 days",
		CostRange:  "$1,800–$2,750",
		Language:   "Amharic (interpreters available)",
		VisionTrips: []VisionTrip{
			{ID: "ethiopia-feb-2026", DateRange: "Feb 16–20", Leader: "Peter Y. & Thad S.", RegistrationURL: "https://www.hopechest.org/vision-trips/et-feb26/"},
			{ID: "ethiopia-may-2026", DateRange: "May 6–11", Leader: "TBD", RegistrationURL: "https://www.hopechest.org/vision-trips/et-may26/"},
			{ID: "ethiopia-aug-2026", DateRange: "Aug 12–17", Leader: "TBD", RegistrationURL: "https://www.hopechest.org/vision-trips/et-aug26/"},
		},
	},
}

// All returns every profile in scoring-universe order.
func All() []Profile {
	out := make([]Profile, len(profiles))
	copy(out, profiles)
	return out
}

// Lookup finds the profile for a country, ignoring case.
func Lookup(country string) (Profile, bool) {
	for _, p := range profiles {
		if strings.EqualFold(string(p.Country), strings.TrimSpace(country)) {
			return p, true
		}
	}
	return Profile{}, false
}

// FirstName returns the first word of a contact name.
func FirstName(contactName string) string {
	fields := strings.Fields(contactName)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// Greeting is the headline shown above the personalized results.
func Greeting(contactName, churchName string, country scoring.Country) string {
	first := FirstName(contactName)
	church := strings.TrimSpace(churchName)
	if first == "" {
		first = "Friend"
	}
	if church == "" {
		church = "your church"
	}
	return fmt.Sprintf("%s, based on %s's heart and vision, here's why %s could be your perfect partnership", first, church, country)
}
