package artifact

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"gauntlet/internal/faults"
)

// ContentSpec is the fully literal description of one artifact's content,
// produced from a component's content map after all template expressions
// have been evaluated. Which fields apply depends on Kind.
type ContentSpec struct {
	Kind string

	// text
	Lines int
	Text  string

	// csv
	Rows     int
	Columns  []Column
	RowsData [][]string

	// json, yaml, xml record generation
	Records int
	Fields  []Column
	RootKey string

	// json, yaml, xml explicit document
	Data    any
	HasData bool

	// xml
	Root    string
	Element string

	// sqlite
	Tables []Table
}

// Column pairs a column or field name with its value source. Sources:
// "seq" for the 1-based row ordinal, "int:MIN:MAX" for a random integer,
// "word" for a filler word, "pool:NAME" for a thematic entity,
// "lit:VALUE" for a constant, or any semantic data type name.
type Column struct {
	Name   string
	Source string
}

// Table describes one sqlite table to create and fill.
type Table struct {
	Name    string
	Rows    int
	Columns []Column
}

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// allowedKeys lists the accepted content map keys per artifact kind.
// Anything else is a configuration error, which catches typos before an
// artifact with silently missing content gets generated.
var allowedKeys = map[string]map[string]bool{
	"text":   {"lines": true, "text": true},
	"csv":    {"rows": true, "columns": true, "rows_data": true},
	"json":   {"data": true, "records": true, "record_fields": true, "root_key": true},
	"yaml":   {"data": true, "records": true, "record_fields": true, "root_key": true},
	"xml":    {"data": true, "records": true, "record_fields": true, "root": true, "element": true},
	"sqlite": {"tables": true},
}

// ParseContentSpec validates a literal content map for the given artifact
// kind. Template evaluation may have turned numbers into strings, so
// scalar fields accept both.
func ParseContentSpec(kind, component string, m map[string]any) (*ContentSpec, error) {
	allowed, ok := allowedKeys[kind]
	if !ok {
		return nil, faults.Configf(component, "unknown artifact kind %q", kind)
	}
	for k := range m {
		if !allowed[k] {
			return nil, faults.Configf(component, "content key %q is not valid for kind %q", k, kind)
		}
	}

	spec := &ContentSpec{Kind: kind}
	var err error
	switch kind {
	case "text":
		err = spec.parseText(component, m)
	case "csv":
		err = spec.parseCSV(component, m)
	case "json", "yaml":
		err = spec.parseDoc(component, m)
	case "xml":
		err = spec.parseXML(component, m)
	case "sqlite":
		err = spec.parseSQLite(component, m)
	}
	if err != nil {
		return nil, err
	}
	return spec, nil
}

func (s *ContentSpec) parseText(component string, m map[string]any) error {
	if v, ok := m["lines"]; ok {
		n, ok := toInt(v)
		if !ok || n < 0 {
			return faults.Configf(component, "lines must be a non-negative integer, got %v", v)
		}
		s.Lines = n
	}
	if v, ok := m["text"]; ok {
		s.Text = toScalarString(v)
	}
	return nil
}

func (s *ContentSpec) parseCSV(component string, m map[string]any) error {
	cols, err := columnList(component, m["columns"])
	if err != nil {
		return err
	}
	if len(cols) == 0 {
		return faults.Configf(component, "csv content needs at least one column")
	}
	s.Columns = cols

	if v, ok := m["rows"]; ok {
		n, ok := toInt(v)
		if !ok || n < 0 {
			return faults.Configf(component, "rows must be a non-negative integer, got %v", v)
		}
		s.Rows = n
	}
	if raw, ok := m["rows_data"]; ok {
		rows, err := rowData(component, raw, len(cols))
		if err != nil {
			return err
		}
		s.RowsData = rows
	}
	return nil
}

func (s *ContentSpec) parseDoc(component string, m map[string]any) error {
	if v, ok := m["data"]; ok {
		s.Data = v
		s.HasData = true
	}
	if v, ok := m["records"]; ok {
		n, ok := toInt(v)
		if !ok || n < 0 {
			return faults.Configf(component, "records must be a non-negative integer, got %v", v)
		}
		s.Records = n
	}
	if v, ok := m["record_fields"]; ok {
		fields, err := columnList(component, v)
		if err != nil {
			return err
		}
		s.Fields = fields
	}
	if v, ok := m["root_key"]; ok {
		s.RootKey = toScalarString(v)
	}
	if s.HasData && len(s.Fields) > 0 {
		return faults.Configf(component, "content takes data or record_fields, not both")
	}
	if !s.HasData && len(s.Fields) == 0 {
		return faults.Configf(component, "%s content needs data or record_fields", s.Kind)
	}
	return nil
}

func (s *ContentSpec) parseXML(component string, m map[string]any) error {
	s.Root = toScalarString(m["root"])
	if s.Root == "" {
		return faults.Configf(component, "xml content needs a root element name")
	}
	if !identRe.MatchString(s.Root) {
		return faults.Configf(component, "root %q is not a valid element name", s.Root)
	}
	if v, ok := m["data"]; ok {
		s.Data = v
		s.HasData = true
	}
	if v, ok := m["element"]; ok {
		s.Element = toScalarString(v)
		if !identRe.MatchString(s.Element) {
			return faults.Configf(component, "element %q is not a valid element name", s.Element)
		}
	}
	if v, ok := m["records"]; ok {
		n, ok := toInt(v)
		if !ok || n < 0 {
			return faults.Configf(component, "records must be a non-negative integer, got %v", v)
		}
		s.Records = n
	}
	if v, ok := m["record_fields"]; ok {
		fields, err := columnList(component, v)
		if err != nil {
			return err
		}
		s.Fields = fields
	}
	if s.HasData && len(s.Fields) > 0 {
		return faults.Configf(component, "content takes data or record_fields, not both")
	}
	if !s.HasData && len(s.Fields) == 0 {
		return faults.Configf(component, "xml content needs data or record_fields")
	}
	if len(s.Fields) > 0 && s.Element == "" {
		return faults.Configf(component, "xml record generation needs an element name")
	}
	return nil
}

func (s *ContentSpec) parseSQLite(component string, m map[string]any) error {
	raw, ok := m["tables"].([]any)
	if !ok || len(raw) == 0 {
		return faults.Configf(component, "sqlite content needs a non-empty tables list")
	}
	for i, tv := range raw {
		tm, ok := tv.(map[string]any)
		if !ok {
			return faults.Configf(component, "tables[%d] is not a mapping", i)
		}
		tbl := Table{Name: toScalarString(tm["name"])}
		if !identRe.MatchString(tbl.Name) {
			return faults.Configf(component, "table name %q is not a valid identifier", tbl.Name)
		}
		if v, ok := tm["rows"]; ok {
			n, ok := toInt(v)
			if !ok || n < 0 {
				return faults.Configf(component, "table %s rows must be a non-negative integer, got %v", tbl.Name, v)
			}
			tbl.Rows = n
		}
		cols, err := columnList(component, tm["columns"])
		if err != nil {
			return err
		}
		if len(cols) == 0 {
			return faults.Configf(component, "table %s needs at least one column", tbl.Name)
		}
		for _, c := range cols {
			if !identRe.MatchString(c.Name) {
				return faults.Configf(component, "column name %q is not a valid identifier", c.Name)
			}
		}
		tbl.Columns = cols
		s.Tables = append(s.Tables, tbl)
	}
	return nil
}

func columnList(component string, raw any) ([]Column, error) {
	if raw == nil {
		return nil, nil
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, faults.Configf(component, "columns must be a list")
	}
	cols := make([]Column, 0, len(list))
	for i, cv := range list {
		cm, ok := cv.(map[string]any)
		if !ok {
			return nil, faults.Configf(component, "columns[%d] is not a mapping", i)
		}
		col := Column{
			Name:   toScalarString(cm["name"]),
			Source: toScalarString(cm["source"]),
		}
		if col.Name == "" {
			return nil, faults.Configf(component, "columns[%d] has no name", i)
		}
		if col.Source == "" {
			return nil, faults.Configf(component, "column %q has no source", col.Name)
		}
		cols = append(cols, col)
	}
	return cols, nil
}

func rowData(component string, raw any, width int) ([][]string, error) {
	list, ok := raw.([]any)
	if !ok {
		return nil, faults.Configf(component, "rows_data must be a list of rows")
	}
	rows := make([][]string, 0, len(list))
	for i, rv := range list {
		cells, ok := rv.([]any)
		if !ok {
			return nil, faults.Configf(component, "rows_data[%d] is not a list", i)
		}
		if len(cells) != width {
			return nil, faults.Configf(component, "rows_data[%d] has %d cells, want %d", i, len(cells), width)
		}
		row := make([]string, len(cells))
		for j, cell := range cells {
			row[j] = toScalarString(cell)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case uint64:
		return int(n), true
	case float64:
		if n == math.Trunc(n) {
			return int(n), true
		}
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err == nil {
			return i, true
		}
	}
	return 0, false
}

// toScalarString renders a scalar content value. Non-scalars render
// through fmt as a last resort; validation upstream keeps them out of
// scalar positions.
func toScalarString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case bool:
		return strconv.FormatBool(s)
	case int:
		return strconv.Itoa(s)
	case int64:
		return strconv.FormatInt(s, 10)
	case uint64:
		return strconv.FormatUint(s, 10)
	case float64:
		return formatNumber(s)
	default:
		return fmt.Sprint(v)
	}
}
