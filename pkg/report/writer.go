package report

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/personascope/personascope/pkg/domain"
)

// Writer renders personas into plain-text report files
type Writer struct {
	outputDir string
	now       func() time.Time
}

// NewWriter creates a report writer targeting the given directory
func NewWriter(outputDir string) *Writer {
	return &Writer{outputDir: outputDir, now: time.Now}
}

// axisAnchor holds the 0%/100% semantic anchors of an MBTI-style axis
type axisAnchor struct {
	name, label, low, high string
}

// axes are rendered in this fixed order
var axes = []axisAnchor{
	{"introversion", "Introversion", "Extremely Extroverted", "Extremely Introverted"},
	{"intuition", "Intuition", "Extremely Sensing", "Extremely Intuitive"},
	{"feeling", "Feeling", "Extremely Thinking", "Extremely Feeling"},
	{"perceiving", "Perceiving", "Extremely Judging", "Extremely Perceiving"},
}

// Write renders the persona into a text document and writes it to
// <outputDir>/<username>_persona.txt, creating the directory if needed.
// Returns the written file's path.
func (w *Writer) Write(persona domain.Persona, username string) (string, error) {
	if err := os.MkdirAll(w.outputDir, 0o750); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	path := filepath.Join(w.outputDir, username+"_persona.txt")
	if err := os.WriteFile(path, []byte(w.Render(persona, username)), 0o644); err != nil { //nolint:gosec // report is not sensitive
		return "", fmt.Errorf("write report: %w", err)
	}

	log.Printf("[INFO] persona report written to %s", path)
	return path, nil
}

// Render produces the report text. Section order is fixed, map-backed
// sections are sorted by key so the output is deterministic.
func (w *Writer) Render(persona domain.Persona, username string) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("USER PERSONA FOR REDDIT USER: %s\n", username))
	sb.WriteString(strings.Repeat("=", 60) + "\n")
	sb.WriteString(fmt.Sprintf("Generated on: %s\n", w.now().Format("2006-01-02 15:04:05")))
	sb.WriteString(strings.Repeat("=", 60) + "\n\n")

	section(&sb, "BASIC DEMOGRAPHICS", 20)
	sb.WriteString(fmt.Sprintf("Name: %s\n", persona.Name))
	sb.WriteString(fmt.Sprintf("Age Range: %s\n", persona.AgeRange))
	sb.WriteString(fmt.Sprintf("Location: %s\n", persona.Location))
	sb.WriteString(fmt.Sprintf("Occupation: %s\n", persona.Occupation))
	sb.WriteString(fmt.Sprintf("Status: %s\n", persona.Status))
	sb.WriteString(fmt.Sprintf("Tier: %s\n", persona.Tier))
	sb.WriteString(fmt.Sprintf("Archetype: %s\n\n", persona.Archetype))

	section(&sb, "INTERESTS", 20)
	bullets(&sb, persona.Interests, "")

	section(&sb, "PERSONALITY TRAITS", 20)
	bullets(&sb, persona.PersonalityTraits, "")

	section(&sb, "PERSONALITY ASSESSMENT (MBTI-Style)", 35)
	for _, a := range axes {
		pct, ok := persona.PersonalityPercentages[a.name]
		if !ok {
			pct = 50
		}
		sb.WriteString(fmt.Sprintf("%s: %d%%\n", a.label, pct))
		sb.WriteString(fmt.Sprintf("  (0%% = %s, 100%% = %s)\n\n", a.low, a.high))
	}

	section(&sb, "GOALS & ASPIRATIONS", 20)
	bullets(&sb, persona.Goals, "")

	section(&sb, "MOTIVATIONS (Intensity Scores)", 30)
	for _, name := range sortedKeys(persona.Motivations) {
		sb.WriteString(fmt.Sprintf("• %s: %d/100\n", titleize(name), persona.Motivations[name]))
	}
	sb.WriteString("\n")

	section(&sb, "FRUSTRATIONS & PAIN POINTS", 30)
	bullets(&sb, persona.Frustrations, "")

	section(&sb, "BEHAVIOR & HABITS", 20)
	bullets(&sb, persona.BehaviorHabits, "")

	section(&sb, "PREFERRED SUBREDDITS", 20)
	bullets(&sb, persona.PreferredSubreddits, "r/")

	section(&sb, "BEHAVIORAL INSIGHTS", 20)
	sb.WriteString(fmt.Sprintf("Communication Style: %s\n\n", persona.CommunicationStyle))
	sb.WriteString(fmt.Sprintf("Technology Comfort: %s\n\n", persona.TechnologyComfort))
	sb.WriteString(fmt.Sprintf("Social Media Behavior: %s\n\n", persona.SocialMediaBehavior))

	sb.WriteString("SUPPORTING EVIDENCE & CITATIONS\n")
	sb.WriteString(strings.Repeat("=", 35) + "\n")
	sb.WriteString("The following quotes from the user's posts and comments support each characteristic:\n\n")

	for _, category := range sortedCitationKeys(persona.Citations) {
		quotes := persona.Citations[category]
		if len(quotes) == 0 {
			// empty categories are omitted entirely
			continue
		}
		sb.WriteString(strings.ToUpper(strings.ReplaceAll(category, "_", " ")) + ":\n")
		for _, quote := range quotes {
			sb.WriteString(fmt.Sprintf("  • %s\n", quote))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

func section(sb *strings.Builder, title string, underline int) {
	sb.WriteString(title + "\n")
	sb.WriteString(strings.Repeat("-", underline) + "\n")
}

func bullets(sb *strings.Builder, items []string, prefix string) {
	for _, item := range items {
		sb.WriteString(fmt.Sprintf("• %s%s\n", prefix, item))
	}
	sb.WriteString("\n")
}

// titleize turns a snake_case key into a human-readable label
func titleize(s string) string {
	words := strings.Split(strings.ReplaceAll(s, "_", " "), " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedCitationKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
