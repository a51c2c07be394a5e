// Package snapshot reads and writes the project snapshot file the CLI
// operates on. The file stands in for the collaborator's store: loads are
// validated against an embedded JSON Schema before decoding, saves are
// atomic so a failed write never leaves a half-applied schedule.
package snapshot

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/tidwall/gjson"

	"github.com/orga-pm/ganttcore/internal/model"
)

//go:embed schema.json
var schemaJSON string

var schema = jsonschema.MustCompileString("snapshot.schema.json", schemaJSON)

// Info summarizes a raw snapshot document without decoding it.
type Info struct {
	ProjectID  string
	Tasks      int
	Milestones int
	Edges      int
}

// Probe pulls the headline fields out of a raw document. It only needs the
// document to be well-formed JSON, so it works on files the schema would
// reject and gives `check` something to report either way.
func Probe(raw []byte) (*Info, error) {
	if !gjson.ValidBytes(raw) {
		return nil, fmt.Errorf("not valid JSON")
	}
	doc := gjson.ParseBytes(raw)
	return &Info{
		ProjectID:  doc.Get("project.id").String(),
		Tasks:      int(doc.Get("tasks.#").Int()),
		Milestones: int(doc.Get("milestones.#").Int()),
		Edges:      int(doc.Get("edges.#").Int()),
	}, nil
}

// Load reads, schema-validates and decodes a snapshot file, then runs the
// model's own consistency checks.
func Load(path string) (*model.Snapshot, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}
	return Parse(raw)
}

// Parse decodes a raw snapshot document.
func Parse(raw []byte) (*model.Snapshot, error) {
	if !gjson.ValidBytes(raw) {
		return nil, fmt.Errorf("snapshot is not valid JSON")
	}
	if !gjson.GetBytes(raw, "project").Exists() {
		return nil, fmt.Errorf("snapshot has no project section")
	}

	var doc interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decoding snapshot: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("snapshot does not match schema: %w", err)
	}

	var snap model.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("decoding snapshot: %w", err)
	}
	if snap.Project.Mode == "" {
		snap.Project.Mode = model.ModeFlexible
	}
	if err := snap.Validate(); err != nil {
		return nil, fmt.Errorf("invalid snapshot: %w", err)
	}
	return &snap, nil
}

// Save writes the snapshot atomically: marshal to a temp file in the same
// directory, then rename over the target.
func Save(path string, snap *model.Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".snapshot-*.json")
	if err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("writing snapshot: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("writing snapshot: %w", err)
	}
	return nil
}
