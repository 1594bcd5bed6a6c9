// Command schema regenerates the embedded JSON schema for the config file.
// Run via go:generate from pkg/config.
package main

import (
	"encoding/json"
	"log"
	"os"

	"github.com/personascope/personascope/pkg/config"
)

func main() {
	out := "schema.json"
	if len(os.Args) > 1 {
		out = os.Args[1]
	}

	schema, err := config.GenerateSchema()
	if err != nil {
		log.Fatalf("generate schema: %v", err)
	}

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		log.Fatalf("marshal schema: %v", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(out, data, 0o600); err != nil { //nolint:gosec // schema file is not sensitive
		log.Fatalf("write %s: %v", out, err)
	}
	log.Printf("config schema written to %s", out)
}
