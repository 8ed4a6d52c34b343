package artifact

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func generateCSV(t *testing.T, spec *ContentSpec, seed int64) *Handle {
	t.Helper()
	path := filepath.Join(t.TempDir(), "out.csv")
	h, err := csvAdapter{}.Generate(context.Background(), path, spec, newTestSource(seed))
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	return h
}

func fixedCSV(t *testing.T) *Handle {
	t.Helper()
	return generateCSV(t, &ContentSpec{
		Kind: "csv",
		Columns: []Column{
			{Name: "id", Source: "seq"},
			{Name: "region", Source: "lit:x"},
			{Name: "amount", Source: "lit:0"},
		},
		RowsData: [][]string{
			{"1", "north", "10"},
			{"2", "south", "20"},
			{"3", "north", "30"},
			{"4", "east", "45"},
		},
	}, 1)
}

func csvQuery(t *testing.T, h *Handle, name string, args ...string) string {
	t.Helper()
	v, err := csvAdapter{}.Query(context.Background(), h, name, args)
	if err != nil {
		t.Fatalf("%s: %v", name, err)
	}
	return v.Text()
}

func TestCSVGenerateShape(t *testing.T) {
	h := generateCSV(t, &ContentSpec{
		Kind: "csv",
		Rows: 25,
		Columns: []Column{
			{Name: "id", Source: "seq"},
			{Name: "name", Source: "full_name"},
			{Name: "price", Source: "int:100:2000"},
		},
	}, 42)

	if h.Rows != 25 {
		t.Errorf("handle rows = %d, want 25", h.Rows)
	}
	data, err := os.ReadFile(h.Path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	lines := splitLines(string(data))
	if len(lines) != 26 {
		t.Fatalf("file has %d lines, want 26 (header + 25)", len(lines))
	}
	if lines[0] != "id,name,price" {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "1,") || !strings.HasPrefix(lines[25], "25,") {
		t.Error("seq column should run 1..25 in order")
	}
}

func TestCSVCountMatchesRows(t *testing.T) {
	h := generateCSV(t, &ContentSpec{
		Kind:    "csv",
		Rows:    17,
		Columns: []Column{{Name: "id", Source: "seq"}},
	}, 4)

	if got := csvQuery(t, h, "csv_count", "id"); got != "17" {
		t.Errorf("csv_count = %s, want 17", got)
	}
}

func TestCSVCellAndAggregates(t *testing.T) {
	h := fixedCSV(t)

	if got := csvQuery(t, h, "csv_cell", "region", "2"); got != "south" {
		t.Errorf("csv_cell = %q, want south", got)
	}
	if got := csvQuery(t, h, "csv_sum", "amount"); got != "105" {
		t.Errorf("csv_sum = %s, want 105", got)
	}
	if got := csvQuery(t, h, "csv_avg", "amount"); got != "26.25" {
		t.Errorf("csv_avg = %s, want 26.25", got)
	}
	if got := csvQuery(t, h, "csv_min", "amount"); got != "10" {
		t.Errorf("csv_min = %s, want 10", got)
	}
	if got := csvQuery(t, h, "csv_max", "amount"); got != "45" {
		t.Errorf("csv_max = %s, want 45", got)
	}
}

func TestCSVFiltered(t *testing.T) {
	h := fixedCSV(t)

	if got := csvQuery(t, h, "csv_sum_where", "amount", "region", "north"); got != "40" {
		t.Errorf("csv_sum_where = %s, want 40", got)
	}
	if got := csvQuery(t, h, "csv_avg_where", "amount", "region", "north"); got != "20" {
		t.Errorf("csv_avg_where = %s, want 20", got)
	}
	if got := csvQuery(t, h, "csv_count_where", "region", "north"); got != "2" {
		t.Errorf("csv_count_where = %s, want 2", got)
	}
	if got := csvQuery(t, h, "csv_count_where", "region", "west"); got != "0" {
		t.Errorf("csv_count_where no match = %s, want 0", got)
	}
}

func TestCSVListKeepsFileOrder(t *testing.T) {
	h := fixedCSV(t)

	v, err := csvAdapter{}.Query(context.Background(), h, "csv_list", []string{"region"})
	if err != nil {
		t.Fatalf("csv_list: %v", err)
	}
	if !v.IsSeq() {
		t.Fatal("csv_list should return a sequence")
	}
	want := []string{"north", "south", "north", "east"}
	if len(v.Seq) != len(want) {
		t.Fatalf("sequence length = %d, want %d", len(v.Seq), len(want))
	}
	for i := range want {
		if v.Seq[i] != want[i] {
			t.Errorf("item %d = %q, want %q", i, v.Seq[i], want[i])
		}
	}
	if v.Text() != "north, south, north, east" {
		t.Errorf("joined = %q", v.Text())
	}
}

func TestCSVZeroRowAggregates(t *testing.T) {
	h := generateCSV(t, &ContentSpec{
		Kind:    "csv",
		Columns: []Column{{Name: "amount", Source: "int:1:9"}},
	}, 2)

	if got := csvQuery(t, h, "csv_sum", "amount"); got != "0" {
		t.Errorf("sum over zero rows = %s, want 0", got)
	}
	if _, err := (csvAdapter{}).Query(context.Background(), h, "csv_avg", []string{"amount"}); err == nil {
		t.Error("avg over zero rows should fail")
	}
	if _, err := (csvAdapter{}).Query(context.Background(), h, "csv_min", []string{"amount"}); err == nil {
		t.Error("min over zero rows should fail")
	}
}

func TestCSVErrors(t *testing.T) {
	h := fixedCSV(t)
	ctx := context.Background()

	if _, err := (csvAdapter{}).Query(ctx, h, "csv_sum", []string{"region"}); err == nil {
		t.Error("sum over non-numeric column should fail")
	}
	if _, err := (csvAdapter{}).Query(ctx, h, "csv_cell", []string{"ghost", "1"}); err == nil {
		t.Error("unknown column should fail")
	}
	if _, err := (csvAdapter{}).Query(ctx, h, "csv_cell", []string{"region", "9"}); err == nil {
		t.Error("row past end should fail")
	}
	if _, err := (csvAdapter{}).Query(ctx, h, "csv_frobnicate", []string{"region"}); err == nil {
		t.Error("unknown function should fail")
	}
}

func TestCSVDeterministic(t *testing.T) {
	spec := func() *ContentSpec {
		return &ContentSpec{
			Kind: "csv",
			Rows: 10,
			Columns: []Column{
				{Name: "id", Source: "seq"},
				{Name: "city", Source: "city"},
				{Name: "qty", Source: "int:1:500"},
			},
		}
	}
	a := generateCSV(t, spec(), 55)
	b := generateCSV(t, spec(), 55)

	da, _ := os.ReadFile(a.Path)
	db, _ := os.ReadFile(b.Path)
	if string(da) != string(db) {
		t.Error("same seed produced different csv content")
	}
}
