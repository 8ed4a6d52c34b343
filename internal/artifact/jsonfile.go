package artifact

import (
	"context"
	"encoding/json"
	"os"

	"gauntlet/internal/faults"
)

// jsonAdapter writes JSON documents and answers the json_* functions.
type jsonAdapter struct{}

func (jsonAdapter) Kind() string { return "json" }

func (jsonAdapter) Generate(_ context.Context, path string, spec *ContentSpec, src *Source) (*Handle, error) {
	doc, rows, err := buildDoc(spec, src)
	if err != nil {
		return nil, err
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, faults.Evalf("", path, "encoding json artifact: %v", err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, faults.Evalf("", path, "writing json artifact: %v", err)
	}
	return &Handle{Kind: "json", Path: path, Rows: rows}, nil
}

func (jsonAdapter) Query(_ context.Context, h *Handle, name string, args []string) (Value, error) {
	data, err := os.ReadFile(h.Path)
	if err != nil {
		return Value{}, faults.Evalf(name, h.Path, "reading artifact: %v", err)
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return Value{}, faults.Evalf(name, h.Path, "decoding artifact: %v", err)
	}
	return queryDoc(name, doc, args)
}

// buildDoc assembles the document for json and yaml artifacts: either the
// explicit data tree, or generated records, optionally wrapped under a
// root key. Returns the record count for handle metadata.
func buildDoc(spec *ContentSpec, src *Source) (any, int, error) {
	if spec.HasData {
		return spec.Data, 0, nil
	}

	records := make([]any, spec.Records)
	for i := range records {
		rec := make(map[string]any, len(spec.Fields))
		for _, f := range spec.Fields {
			cell, err := src.Cell(f.Source, i+1)
			if err != nil {
				return nil, 0, faults.Configf(f.Name, "generating field: %v", err)
			}
			rec[f.Name] = cell
		}
		records[i] = rec
	}
	if spec.RootKey != "" {
		return map[string]any{spec.RootKey: records}, spec.Records, nil
	}
	return records, spec.Records, nil
}
