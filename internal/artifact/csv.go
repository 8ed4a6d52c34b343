package artifact

import (
	"context"
	"encoding/csv"
	"math"
	"os"
	"strconv"
	"strings"

	"gauntlet/internal/faults"
)

// csvAdapter writes CSV files with a header row and answers the csv_*
// functions. Row order in query results always follows file order.
type csvAdapter struct{}

func (csvAdapter) Kind() string { return "csv" }

func (csvAdapter) Generate(_ context.Context, path string, spec *ContentSpec, src *Source) (*Handle, error) {
	header := make([]string, len(spec.Columns))
	for i, c := range spec.Columns {
		header[i] = c.Name
	}

	rows := spec.RowsData
	if rows == nil {
		rows = make([][]string, spec.Rows)
		for r := range rows {
			row := make([]string, len(spec.Columns))
			for c, col := range spec.Columns {
				cell, err := src.Cell(col.Source, r+1)
				if err != nil {
					return nil, faults.Configf(col.Name, "generating column: %v", err)
				}
				row[c] = cell
			}
			rows[r] = row
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, faults.Evalf("", path, "creating csv artifact: %v", err)
	}
	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		f.Close()
		return nil, faults.Evalf("", path, "writing header: %v", err)
	}
	if err := w.WriteAll(rows); err != nil {
		f.Close()
		return nil, faults.Evalf("", path, "writing rows: %v", err)
	}
	if err := f.Close(); err != nil {
		return nil, faults.Evalf("", path, "closing csv artifact: %v", err)
	}
	return &Handle{Kind: "csv", Path: path, Rows: len(rows), Columns: header}, nil
}

func (a csvAdapter) Query(_ context.Context, h *Handle, name string, args []string) (Value, error) {
	header, rows, err := readCSV(h.Path)
	if err != nil {
		return Value{}, faults.Evalf(name, h.Path, "reading artifact: %v", err)
	}
	t := csvTable{path: h.Path, header: header, rows: rows}

	switch name {
	case "csv_cell":
		return t.cell(name, args)
	case "csv_count":
		return t.count(name, args)
	case "csv_sum", "csv_avg", "csv_min", "csv_max":
		return t.aggregate(name, args)
	case "csv_sum_where", "csv_avg_where":
		return t.aggregateWhere(name, args)
	case "csv_count_where":
		return t.countWhere(name, args)
	case "csv_list":
		return t.list(name, args)
	}
	return Value{}, faults.Configf(name, "unknown template function")
}

func readCSV(path string) ([]string, [][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(records) == 0 {
		return nil, nil, nil
	}
	return records[0], records[1:], nil
}

type csvTable struct {
	path   string
	header []string
	rows   [][]string
}

func (t csvTable) column(fn, name string) (int, error) {
	for i, h := range t.header {
		if h == name {
			return i, nil
		}
	}
	return 0, faults.Evalf(fn, t.path, "no column %q", name)
}

func (t csvTable) cell(fn string, args []string) (Value, error) {
	if len(args) != 2 {
		return Value{}, faults.Configf(fn, "takes column, row, and path, got %d arguments", len(args)+1)
	}
	col, err := t.column(fn, args[0])
	if err != nil {
		return Value{}, err
	}
	row, convErr := strconv.Atoi(strings.TrimSpace(args[1]))
	if convErr != nil || row < 1 {
		return Value{}, faults.Evalf(fn, args[1], "row must be a positive integer")
	}
	if row > len(t.rows) {
		return Value{}, faults.Evalf(fn, t.path, "row %d requested, file has %d data rows", row, len(t.rows))
	}
	return Value{Single: t.rows[row-1][col]}, nil
}

func (t csvTable) count(fn string, args []string) (Value, error) {
	if len(args) != 1 {
		return Value{}, faults.Configf(fn, "takes column and path, got %d arguments", len(args)+1)
	}
	if _, err := t.column(fn, args[0]); err != nil {
		return Value{}, err
	}
	return Value{Single: strconv.Itoa(len(t.rows))}, nil
}

func (t csvTable) aggregate(fn string, args []string) (Value, error) {
	if len(args) != 1 {
		return Value{}, faults.Configf(fn, "takes column and path, got %d arguments", len(args)+1)
	}
	col, err := t.column(fn, args[0])
	if err != nil {
		return Value{}, err
	}
	nums, err := t.numericColumn(fn, col)
	if err != nil {
		return Value{}, err
	}
	return reduce(fn, strings.TrimPrefix(fn, "csv_"), t.path, nums)
}

func (t csvTable) aggregateWhere(fn string, args []string) (Value, error) {
	if len(args) != 3 {
		return Value{}, faults.Configf(fn, "takes value column, filter column, filter value, and path, got %d arguments", len(args)+1)
	}
	valCol, err := t.column(fn, args[0])
	if err != nil {
		return Value{}, err
	}
	filterCol, err := t.column(fn, args[1])
	if err != nil {
		return Value{}, err
	}

	var nums []float64
	for i, row := range t.rows {
		if row[filterCol] != args[2] {
			continue
		}
		n, ok := parseNumber(row[valCol])
		if !ok {
			return Value{}, faults.Evalf(fn, t.path, "row %d value %q is not numeric", i+1, row[valCol])
		}
		nums = append(nums, n)
	}
	op := strings.TrimSuffix(strings.TrimPrefix(fn, "csv_"), "_where")
	return reduce(fn, op, t.path, nums)
}

func (t csvTable) countWhere(fn string, args []string) (Value, error) {
	if len(args) != 2 {
		return Value{}, faults.Configf(fn, "takes filter column, filter value, and path, got %d arguments", len(args)+1)
	}
	col, err := t.column(fn, args[0])
	if err != nil {
		return Value{}, err
	}
	n := 0
	for _, row := range t.rows {
		if row[col] == args[1] {
			n++
		}
	}
	return Value{Single: strconv.Itoa(n)}, nil
}

func (t csvTable) list(fn string, args []string) (Value, error) {
	if len(args) != 1 {
		return Value{}, faults.Configf(fn, "takes column and path, got %d arguments", len(args)+1)
	}
	col, err := t.column(fn, args[0])
	if err != nil {
		return Value{}, err
	}
	items := make([]string, len(t.rows))
	for i, row := range t.rows {
		items[i] = row[col]
	}
	return seqValue(items), nil
}

func (t csvTable) numericColumn(fn string, col int) ([]float64, error) {
	nums := make([]float64, len(t.rows))
	for i, row := range t.rows {
		n, ok := parseNumber(row[col])
		if !ok {
			return nil, faults.Evalf(fn, t.path, "row %d value %q is not numeric", i+1, row[col])
		}
		nums[i] = n
	}
	return nums, nil
}

// reduce folds a numeric slice with the named operation. A sum over zero
// rows is zero; an average, minimum, or maximum over zero rows has no
// defined value and fails evaluation.
func reduce(fn, op, subject string, nums []float64) (Value, error) {
	if len(nums) == 0 {
		if op == "sum" {
			return Value{Single: "0"}, nil
		}
		return Value{}, faults.Evalf(fn, subject, "%s over zero rows has no value", op)
	}

	switch op {
	case "sum", "avg":
		total := 0.0
		for _, n := range nums {
			total += n
		}
		if op == "avg" {
			total /= float64(len(nums))
		}
		return Value{Single: formatNumber(total)}, nil
	case "min":
		m := nums[0]
		for _, n := range nums[1:] {
			m = math.Min(m, n)
		}
		return Value{Single: formatNumber(m)}, nil
	case "max":
		m := nums[0]
		for _, n := range nums[1:] {
			m = math.Max(m, n)
		}
		return Value{Single: formatNumber(m)}, nil
	}
	return Value{}, faults.Configf(fn, "unknown aggregate %q", op)
}
