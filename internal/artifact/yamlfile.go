package artifact

import (
	"context"
	"os"

	"gopkg.in/yaml.v3"

	"gauntlet/internal/faults"
)

// yamlAdapter writes YAML documents and answers the yaml_* functions. It
// shares document assembly and path walking with the json adapter; only
// the encoding differs.
type yamlAdapter struct{}

func (yamlAdapter) Kind() string { return "yaml" }

func (yamlAdapter) Generate(_ context.Context, path string, spec *ContentSpec, src *Source) (*Handle, error) {
	doc, rows, err := buildDoc(spec, src)
	if err != nil {
		return nil, err
	}

	data, err := yaml.Marshal(doc)
	if err != nil {
		return nil, faults.Evalf("", path, "encoding yaml artifact: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, faults.Evalf("", path, "writing yaml artifact: %v", err)
	}
	return &Handle{Kind: "yaml", Path: path, Rows: rows}, nil
}

func (yamlAdapter) Query(_ context.Context, h *Handle, name string, args []string) (Value, error) {
	data, err := os.ReadFile(h.Path)
	if err != nil {
		return Value{}, faults.Evalf(name, h.Path, "reading artifact: %v", err)
	}
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Value{}, faults.Evalf(name, h.Path, "decoding artifact: %v", err)
	}
	return queryDoc(name, doc, args)
}
