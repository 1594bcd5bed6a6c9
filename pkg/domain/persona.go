package domain

import "time"

// Persona is the structured result of LLM analysis of a user's content.
// Field names mirror the JSON schema the model is asked to produce.
type Persona struct {
	Name       string `json:"name"`
	AgeRange   string `json:"age_range"`
	Location   string `json:"location"`
	Occupation string `json:"occupation"`
	Status     string `json:"status"`
	Tier       string `json:"tier"`
	Archetype  string `json:"archetype"`

	Interests           []string `json:"interests"`
	PersonalityTraits   []string `json:"personality_traits"`
	Goals               []string `json:"goals"`
	Frustrations        []string `json:"frustrations"`
	PreferredSubreddits []string `json:"preferred_subreddits"`

	CommunicationStyle  string `json:"communication_style"`
	TechnologyComfort   string `json:"technology_comfort"`
	SocialMediaBehavior string `json:"social_media_behavior"`

	Motivations            map[string]int `json:"motivations"`
	BehaviorHabits         []string       `json:"behavior_habits"`
	PersonalityPercentages map[string]int `json:"personality_percentages"`

	Citations map[string][]string `json:"citations"`
}

// PersonalityAxes are the MBTI-style dimensions the model scores 0-100
var PersonalityAxes = []string{"introversion", "intuition", "feeling", "perceiving"}

// FallbackPersona returns the canonical all-"Unknown" persona used when the
// model response can't be parsed or validated. Every field is populated so
// downstream rendering never sees a partial record.
func FallbackPersona() Persona {
	return Persona{
		Name:                "Unknown User",
		AgeRange:            "Unknown",
		Location:            "Unknown",
		Occupation:          "Unknown",
		Status:              "Unknown",
		Tier:                "Unknown",
		Archetype:           "Unknown",
		Interests:           []string{"Unknown"},
		PersonalityTraits:   []string{"Unknown"},
		Goals:               []string{"Unknown"},
		Frustrations:        []string{"Unknown"},
		PreferredSubreddits: []string{"Unknown"},
		CommunicationStyle:  "Unknown",
		TechnologyComfort:   "Unknown",
		SocialMediaBehavior: "Unknown",
		Motivations:         map[string]int{"unknown": 50},
		BehaviorHabits:      []string{"Unknown"},
		PersonalityPercentages: map[string]int{
			"introversion": 50,
			"intuition":    50,
			"feeling":      50,
			"perceiving":   50,
		},
		Citations: map[string][]string{},
	}
}

// PersonaRecord is an archived persona with run metadata
type PersonaRecord struct {
	ID         int64
	Username   string
	ProfileURL string
	Persona    Persona
	ReportPath string
	ItemCount  int
	Model      string
	CreatedAt  time.Time
}
