package artifact

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func inventoryData() map[string]any {
	return map[string]any{
		"warehouse": "Rotterdam",
		"items": []any{
			map[string]any{"sku": "A-100", "qty": 4, "price": 250},
			map[string]any{"sku": "B-200", "qty": 7, "price": 100},
			map[string]any{"sku": "C-300", "qty": 2, "price": 175},
		},
		"audit": map[string]any{
			"year":   2026,
			"signed": true,
		},
	}
}

func generateDoc(t *testing.T, kind string, spec *ContentSpec, seed int64) (*Handle, Adapter) {
	t.Helper()
	var a Adapter
	if kind == "json" {
		a = jsonAdapter{}
	} else {
		a = yamlAdapter{}
	}
	path := filepath.Join(t.TempDir(), "out."+kind)
	h, err := a.Generate(context.Background(), path, spec, newTestSource(seed))
	if err != nil {
		t.Fatalf("generate %s: %v", kind, err)
	}
	return h, a
}

func docQuery(t *testing.T, a Adapter, h *Handle, name, path string) string {
	t.Helper()
	v, err := a.Query(context.Background(), h, name, []string{path})
	if err != nil {
		t.Fatalf("%s %s: %v", name, path, err)
	}
	return v.Text()
}

func TestDocValueAndCount(t *testing.T) {
	for _, kind := range []string{"json", "yaml"} {
		t.Run(kind, func(t *testing.T) {
			spec := &ContentSpec{Kind: kind, Data: inventoryData(), HasData: true}
			h, a := generateDoc(t, kind, spec, 1)
			fn := kind + "_"

			if got := docQuery(t, a, h, fn+"value", "warehouse"); got != "Rotterdam" {
				t.Errorf("value warehouse = %q", got)
			}
			if got := docQuery(t, a, h, fn+"value", "items.1.sku"); got != "B-200" {
				t.Errorf("value items.1.sku = %q", got)
			}
			if got := docQuery(t, a, h, fn+"value", "audit.year"); got != "2026" {
				t.Errorf("value audit.year = %q", got)
			}
			if got := docQuery(t, a, h, fn+"count", "items"); got != "3" {
				t.Errorf("count items = %q", got)
			}
			if got := docQuery(t, a, h, fn+"count", "audit"); got != "2" {
				t.Errorf("count audit = %q", got)
			}
		})
	}
}

func TestDocAggregates(t *testing.T) {
	for _, kind := range []string{"json", "yaml"} {
		t.Run(kind, func(t *testing.T) {
			spec := &ContentSpec{Kind: kind, Data: inventoryData(), HasData: true}
			h, a := generateDoc(t, kind, spec, 1)
			fn := kind + "_"

			if got := docQuery(t, a, h, fn+"sum", "items.*.qty"); got != "13" {
				t.Errorf("sum qty = %q, want 13", got)
			}
			if got := docQuery(t, a, h, fn+"avg", "items.*.price"); got != "175" {
				t.Errorf("avg price = %q, want 175", got)
			}
			if got := docQuery(t, a, h, fn+"list", "items.*.sku"); got != "A-100, B-200, C-300" {
				t.Errorf("list sku = %q", got)
			}
			if got := docQuery(t, a, h, fn+"keys", "audit"); got != "signed, year" {
				t.Errorf("keys audit = %q", got)
			}
		})
	}
}

func TestDocGeneratedRecords(t *testing.T) {
	for _, kind := range []string{"json", "yaml"} {
		t.Run(kind, func(t *testing.T) {
			spec := &ContentSpec{
				Kind:    kind,
				Records: 9,
				RootKey: "people",
				Fields: []Column{
					{Name: "id", Source: "seq"},
					{Name: "name", Source: "first_name"},
				},
			}
			h, a := generateDoc(t, kind, spec, 8)
			fn := kind + "_"

			if got := docQuery(t, a, h, fn+"count", "people"); got != "9" {
				t.Errorf("count people = %q, want 9", got)
			}
			if got := docQuery(t, a, h, fn+"value", "people.0.id"); got != "1" {
				t.Errorf("first id = %q, want 1", got)
			}
			if got := docQuery(t, a, h, fn+"value", "people.8.id"); got != "9" {
				t.Errorf("last id = %q, want 9", got)
			}
		})
	}
}

func TestDocQueryErrors(t *testing.T) {
	spec := &ContentSpec{Kind: "json", Data: inventoryData(), HasData: true}
	h, a := generateDoc(t, "json", spec, 1)
	ctx := context.Background()

	cases := []struct {
		name string
		fn   string
		path string
	}{
		{"missing key", "json_value", "depot"},
		{"index out of range", "json_value", "items.9.sku"},
		{"value of mapping", "json_value", "audit"},
		{"value of array", "json_value", "items"},
		{"count of scalar", "json_count", "warehouse"},
		{"sum of non-numeric", "json_sum", "items.*.sku"},
		{"keys of array", "json_keys", "items"},
		{"path past scalar", "json_value", "warehouse.name"},
		{"two wildcards", "json_list", "items.*.tags.*"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := a.Query(ctx, h, tc.fn, []string{tc.path}); err == nil {
				t.Errorf("%s %s should fail", tc.fn, tc.path)
			}
		})
	}
}

func TestDocFilesReadableFromDisk(t *testing.T) {
	spec := &ContentSpec{Kind: "json", Data: inventoryData(), HasData: true}
	h, _ := generateDoc(t, "json", spec, 1)

	data, err := os.ReadFile(h.Path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(data) == 0 || data[len(data)-1] != '\n' {
		t.Error("json artifact should end with a newline")
	}
}
