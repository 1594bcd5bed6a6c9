package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/personascope/personascope/pkg/domain"
)

// requiredKeys are the fields a persona response must carry. A response
// missing any of them is rejected wholesale, never patched field by field.
var requiredKeys = []string{
	"name", "age_range", "location", "occupation", "status", "tier", "archetype",
	"interests", "personality_traits", "goals", "frustrations", "preferred_subreddits",
	"communication_style", "technology_comfort", "social_media_behavior",
	"motivations", "behavior_habits", "personality_percentages", "citations",
}

// ParsePersona extracts the first top-level JSON object from raw model
// output (greedy, first '{' to last '}') and validates it against the
// persona schema. On any failure it returns the fallback persona, so the
// pipeline always gets a structurally complete record.
func ParsePersona(text string) domain.Persona {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || start >= end {
		log.Printf("[WARN] no json object found in model response, using fallback persona")
		return domain.FallbackPersona()
	}

	persona, err := decodePersona([]byte(text[start : end+1]))
	if err != nil {
		log.Printf("[WARN] persona parsing failed: %v, using fallback persona", err)
		return domain.FallbackPersona()
	}

	return persona
}

// decodePersona decodes and validates a persona JSON object
func decodePersona(data []byte) (domain.Persona, error) {
	// presence check first, struct decode alone can't tell absent from empty
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return domain.Persona{}, fmt.Errorf("decode json: %w", err)
	}
	for _, k := range requiredKeys {
		raw, ok := keys[k]
		if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			return domain.Persona{}, fmt.Errorf("missing required field %q", k)
		}
	}

	var p domain.Persona
	if err := json.Unmarshal(data, &p); err != nil {
		return domain.Persona{}, fmt.Errorf("decode persona: %w", err)
	}

	// shape checks for list and map valued fields
	for name, list := range map[string][]string{
		"interests":            p.Interests,
		"personality_traits":   p.PersonalityTraits,
		"goals":                p.Goals,
		"frustrations":         p.Frustrations,
		"preferred_subreddits": p.PreferredSubreddits,
		"behavior_habits":      p.BehaviorHabits,
	} {
		if len(list) == 0 {
			return domain.Persona{}, fmt.Errorf("field %q must be a non-empty list", name)
		}
	}
	if len(p.Motivations) == 0 {
		return domain.Persona{}, fmt.Errorf("field %q must be a non-empty map", "motivations")
	}
	for _, axis := range domain.PersonalityAxes {
		if _, ok := p.PersonalityPercentages[axis]; !ok {
			return domain.Persona{}, fmt.Errorf("personality_percentages missing axis %q", axis)
		}
	}
	if p.Citations == nil {
		p.Citations = map[string][]string{}
	}

	// keep scores in the 0-100 range
	for k, v := range p.Motivations {
		p.Motivations[k] = clamp(v)
	}
	for k, v := range p.PersonalityPercentages {
		p.PersonalityPercentages[k] = clamp(v)
	}

	return p, nil
}

func clamp(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
