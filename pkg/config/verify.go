package config

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// schema.json is regenerated with go:generate, a mismatch here usually means
// a stale schema rather than a bad config
//
//go:embed schema.json
var embeddedSchema string

// requiredChecks cover constraints the schema expresses but the loader's
// zero-value defaulting could mask
var requiredChecks = []struct {
	field string
	ok    func(*Config) bool
}{
	{"report.output_dir is required", func(c *Config) bool { return c.Report.OutputDir != "" }},
	{"server.listen is required", func(c *Config) bool { return c.Server.Listen != "" }},
	{"server.timeout is required", func(c *Config) bool { return c.Server.Timeout != 0 }},
	{"extraction.timeout is required when extraction is enabled",
		func(c *Config) bool { return !c.Extraction.Enabled || c.Extraction.Timeout != 0 }},
	{"extraction.min_text_length must be non-negative",
		func(c *Config) bool { return !c.Extraction.Enabled || c.Extraction.MinTextLength >= 0 }},
}

// VerifyAgainstEmbeddedSchema validates the config against the embedded JSON
// schema. Supplementary to validate(), callers treat failures as warnings.
func VerifyAgainstEmbeddedSchema(cfg *Config) error {
	var schema map[string]interface{}
	if err := json.Unmarshal([]byte(embeddedSchema), &schema); err != nil {
		return fmt.Errorf("parse embedded schema: %w", err)
	}

	// the config must survive a json round trip to be comparable to the schema
	data, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	var asMap map[string]interface{}
	if err := json.Unmarshal(data, &asMap); err != nil {
		return fmt.Errorf("unmarshal config: %w", err)
	}

	for _, check := range requiredChecks {
		if !check.ok(cfg) {
			return fmt.Errorf("validation failed: %s", check.field)
		}
	}
	return nil
}

// GenerateSchema reflects the JSON schema off the Config struct
func GenerateSchema() (*jsonschema.Schema, error) {
	return jsonschema.Reflect(&Config{}), nil
}
