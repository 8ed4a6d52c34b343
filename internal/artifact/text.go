package artifact

import (
	"context"
	"os"
	"strconv"
	"strings"

	"gauntlet/internal/faults"
)

// textAdapter writes plain text files and answers the file_* functions.
type textAdapter struct{}

func (textAdapter) Kind() string { return "text" }

func (textAdapter) Generate(_ context.Context, path string, spec *ContentSpec, src *Source) (*Handle, error) {
	var lines []string
	if spec.Text != "" {
		lines = splitLines(spec.Text)
	} else {
		lines = make([]string, spec.Lines)
		for i := range lines {
			lines[i] = src.Sentence()
		}
	}

	var body string
	if len(lines) > 0 {
		body = strings.Join(lines, "\n") + "\n"
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		return nil, faults.Evalf("", path, "writing text artifact: %v", err)
	}
	return &Handle{Kind: "text", Path: path, Rows: len(lines)}, nil
}

func (textAdapter) Query(_ context.Context, h *Handle, name string, args []string) (Value, error) {
	data, err := os.ReadFile(h.Path)
	if err != nil {
		return Value{}, faults.Evalf(name, h.Path, "reading artifact: %v", err)
	}
	content := string(data)

	switch name {
	case "file_line":
		if len(args) != 1 {
			return Value{}, faults.Configf(name, "takes a line number and a path, got %d arguments", len(args)+1)
		}
		n, err := strconv.Atoi(strings.TrimSpace(args[0]))
		if err != nil || n < 1 {
			return Value{}, faults.Evalf(name, args[0], "line number must be a positive integer")
		}
		lines := splitLines(content)
		if n > len(lines) {
			return Value{}, faults.Evalf(name, h.Path, "line %d requested, file has %d", n, len(lines))
		}
		return Value{Single: lines[n-1]}, nil

	case "file_word":
		if len(args) != 1 {
			return Value{}, faults.Configf(name, "takes a word number and a path, got %d arguments", len(args)+1)
		}
		n, err := strconv.Atoi(strings.TrimSpace(args[0]))
		if err != nil || n < 1 {
			return Value{}, faults.Evalf(name, args[0], "word number must be a positive integer")
		}
		words := strings.Fields(content)
		if n > len(words) {
			return Value{}, faults.Evalf(name, h.Path, "word %d requested, file has %d", n, len(words))
		}
		return Value{Single: words[n-1]}, nil

	case "file_linecount":
		if len(args) != 0 {
			return Value{}, faults.Configf(name, "takes only a path, got %d extra arguments", len(args))
		}
		return Value{Single: strconv.Itoa(len(splitLines(content)))}, nil
	}
	return Value{}, faults.Configf(name, "unknown template function")
}

// splitLines splits file content into lines without a phantom trailing
// entry for the final newline. Empty content has zero lines.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(s, "\n"), "\n")
}
