package artifact

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"io"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"gauntlet/internal/faults"
)

var xmlNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.-]*$`)

// xmlAdapter writes XML documents and answers xml_value and xml_count.
// Query paths are dot-delimited element names from the document root; a
// numeric segment selects the Nth occurrence (1-based) of the preceding
// element, and a final @name segment selects an attribute.
type xmlAdapter struct{}

func (xmlAdapter) Kind() string { return "xml" }

func (xmlAdapter) Generate(_ context.Context, path string, spec *ContentSpec, src *Source) (*Handle, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	w := &tokenWriter{enc: xml.NewEncoder(&buf)}
	w.enc.Indent("", "  ")

	rows := 0
	if spec.HasData {
		if err := encodeElem(w, spec.Root, spec.Data); err != nil {
			return nil, faults.Evalf("", path, "encoding xml artifact: %v", err)
		}
	} else {
		rows = spec.Records
		if err := encodeRecords(w, spec, src); err != nil {
			return nil, err
		}
	}
	if w.err != nil {
		return nil, faults.Evalf("", path, "encoding xml artifact: %v", w.err)
	}
	if err := w.enc.Close(); err != nil {
		return nil, faults.Evalf("", path, "encoding xml artifact: %v", err)
	}
	buf.WriteByte('\n')

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return nil, faults.Evalf("", path, "writing xml artifact: %v", err)
	}
	return &Handle{Kind: "xml", Path: path, Rows: rows}, nil
}

func encodeRecords(w *tokenWriter, spec *ContentSpec, src *Source) error {
	for _, f := range spec.Fields {
		if !xmlNameRe.MatchString(f.Name) {
			return faults.Configf(f.Name, "not a valid xml element name")
		}
	}

	root := xml.StartElement{Name: xml.Name{Local: spec.Root}}
	w.token(root)
	for i := 0; i < spec.Records; i++ {
		el := xml.StartElement{Name: xml.Name{Local: spec.Element}}
		w.token(el)
		for _, f := range spec.Fields {
			cell, err := src.Cell(f.Source, i+1)
			if err != nil {
				return faults.Configf(f.Name, "generating field: %v", err)
			}
			fe := xml.StartElement{Name: xml.Name{Local: f.Name}}
			w.token(fe)
			w.token(xml.CharData(cell))
			w.token(fe.End())
		}
		w.token(el.End())
	}
	w.token(root.End())
	return nil
}

// encodeElem writes an explicit data tree. Mapping keys become child
// elements in sorted key order, "@name" keys become attributes, "#text"
// becomes element text, and lists repeat their element name in order.
func encodeElem(w *tokenWriter, name string, v any) error {
	if !xmlNameRe.MatchString(name) {
		return faults.Configf(name, "not a valid xml element name")
	}
	switch t := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		start := xml.StartElement{Name: xml.Name{Local: name}}
		for _, k := range keys {
			if strings.HasPrefix(k, "@") {
				start.Attr = append(start.Attr, xml.Attr{
					Name:  xml.Name{Local: strings.TrimPrefix(k, "@")},
					Value: toScalarString(t[k]),
				})
			}
		}
		w.token(start)
		for _, k := range keys {
			if strings.HasPrefix(k, "@") || k == "#text" {
				continue
			}
			if err := encodeElem(w, k, t[k]); err != nil {
				return err
			}
		}
		if txt, ok := t["#text"]; ok {
			w.token(xml.CharData(toScalarString(txt)))
		}
		w.token(start.End())
	case []any:
		for _, el := range t {
			if err := encodeElem(w, name, el); err != nil {
				return err
			}
		}
	default:
		start := xml.StartElement{Name: xml.Name{Local: name}}
		w.token(start)
		w.token(xml.CharData(toScalarString(v)))
		w.token(start.End())
	}
	return w.err
}

type tokenWriter struct {
	enc *xml.Encoder
	err error
}

func (w *tokenWriter) token(t xml.Token) {
	if w.err == nil {
		w.err = w.enc.EncodeToken(t)
	}
}

func (xmlAdapter) Query(_ context.Context, h *Handle, name string, args []string) (Value, error) {
	if len(args) != 1 {
		return Value{}, faults.Configf(name, "takes a path and an artifact path, got %d arguments", len(args)+1)
	}
	data, err := os.ReadFile(h.Path)
	if err != nil {
		return Value{}, faults.Evalf(name, h.Path, "reading artifact: %v", err)
	}
	doc, err := parseXMLTree(data)
	if err != nil {
		return Value{}, faults.Evalf(name, h.Path, "decoding artifact: %v", err)
	}

	path := strings.TrimSpace(args[0])
	steps, attr, err := parseXMLPath(name, path)
	if err != nil {
		return Value{}, err
	}

	switch name {
	case "xml_value":
		return xmlValue(name, path, doc, steps, attr)
	case "xml_count":
		return xmlCount(name, path, doc, steps, attr)
	}
	return Value{}, faults.Configf(name, "unknown template function")
}

func xmlValue(fn, path string, doc *xmlNode, steps []xmlStep, attr string) (Value, error) {
	node, err := walkXMLTree(fn, path, doc, steps)
	if err != nil {
		return Value{}, err
	}
	if attr != "" {
		v, ok := node.attrs[attr]
		if !ok {
			return Value{}, faults.Evalf(fn, path, "element has no attribute %q", attr)
		}
		return Value{Single: v}, nil
	}
	txt := strings.TrimSpace(node.text)
	if txt == "" && len(node.children) > 0 {
		return Value{}, faults.Evalf(fn, path, "element holds nested elements, not text")
	}
	return Value{Single: txt}, nil
}

func xmlCount(fn, path string, doc *xmlNode, steps []xmlStep, attr string) (Value, error) {
	if attr != "" {
		return Value{}, faults.Configf(fn, "cannot count an attribute")
	}
	last := steps[len(steps)-1]
	if last.index != 0 {
		return Value{}, faults.Configf(fn, "cannot count an indexed element")
	}
	parent, err := walkXMLTree(fn, path, doc, steps[:len(steps)-1])
	if err != nil {
		return Value{}, err
	}
	n := 0
	for _, ch := range parent.children {
		if ch.name == last.name {
			n++
		}
	}
	return Value{Single: strconv.Itoa(n)}, nil
}

type xmlNode struct {
	name     string
	attrs    map[string]string
	text     string
	children []*xmlNode
}

// parseXMLTree decodes a document into a node tree rooted at a synthetic
// document node, so paths address the root element by name like any
// other.
func parseXMLTree(data []byte) (*xmlNode, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	doc := &xmlNode{}
	stack := []*xmlNode{doc}
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			n := &xmlNode{name: t.Name.Local, attrs: make(map[string]string, len(t.Attr))}
			for _, a := range t.Attr {
				n.attrs[a.Name.Local] = a.Value
			}
			parent := stack[len(stack)-1]
			parent.children = append(parent.children, n)
			stack = append(stack, n)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		case xml.CharData:
			stack[len(stack)-1].text += string(t)
		}
	}
	if len(doc.children) == 0 {
		return nil, errors.New("document has no root element")
	}
	return doc, nil
}

type xmlStep struct {
	name string
	// index selects the Nth occurrence, 1-based; 0 means first.
	index int
}

func parseXMLPath(fn, path string) ([]xmlStep, string, error) {
	if path == "" {
		return nil, "", faults.Configf(fn, "path is empty")
	}
	var steps []xmlStep
	attr := ""
	segs := strings.Split(path, ".")
	for i, seg := range segs {
		switch {
		case seg == "":
			return nil, "", faults.Configf(fn, "path %q has an empty segment", path)
		case strings.HasPrefix(seg, "@"):
			if i != len(segs)-1 {
				return nil, "", faults.Configf(fn, "attribute must be the final path segment")
			}
			attr = strings.TrimPrefix(seg, "@")
			if attr == "" {
				return nil, "", faults.Configf(fn, "attribute segment has no name")
			}
		case isDigits(seg):
			if len(steps) == 0 {
				return nil, "", faults.Configf(fn, "path cannot start with an occurrence index")
			}
			n, _ := strconv.Atoi(seg)
			if n < 1 {
				return nil, "", faults.Configf(fn, "occurrence indexes are 1-based")
			}
			if steps[len(steps)-1].index != 0 {
				return nil, "", faults.Configf(fn, "element %q is indexed twice", steps[len(steps)-1].name)
			}
			steps[len(steps)-1].index = n
		default:
			steps = append(steps, xmlStep{name: seg})
		}
	}
	if len(steps) == 0 {
		return nil, "", faults.Configf(fn, "path %q names no element", path)
	}
	return steps, attr, nil
}

func walkXMLTree(fn, path string, doc *xmlNode, steps []xmlStep) (*xmlNode, error) {
	cur := doc
	for _, st := range steps {
		want := st.index
		if want == 0 {
			want = 1
		}
		seen := 0
		var next *xmlNode
		for _, ch := range cur.children {
			if ch.name == st.name {
				seen++
				if seen == want {
					next = ch
					break
				}
			}
		}
		if next == nil {
			return nil, faults.Evalf(fn, path, "no element %q (occurrence %d)", st.name, want)
		}
		cur = next
	}
	return cur, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
