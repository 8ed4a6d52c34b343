package expr

import (
	"regexp"
	"strconv"
	"strings"

	"gauntlet/internal/faults"
	"gauntlet/internal/vars"
)

var (
	varHeadRe  = regexp.MustCompile(`^(semantic|number|entity)([0-9]+)$`)
	funcNameRe = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)
	targetRe   = regexp.MustCompile(`^TARGET_FILE\[([A-Za-z][A-Za-z0-9_-]*)\]$`)
)

// Parse builds the expression tree for one template string. Malformed
// token shapes and unbalanced braces surface as parse errors; defects in
// variable parameters surface as configuration errors.
func Parse(src string) (*Tree, error) {
	t := &Tree{src: src}
	root, err := t.parseSequence(src, 0)
	if err != nil {
		return nil, err
	}
	t.root = root
	return t, nil
}

// parseSequence scans s, which sits at absolute offset off in the source,
// into an ordered list of literal and expression nodes.
func (t *Tree) parseSequence(s string, off int) ([]int, error) {
	var out []int
	for i := 0; i < len(s); {
		open := strings.Index(s[i:], "{{")
		stray := strings.Index(s[i:], "}}")
		if open == -1 {
			if stray != -1 {
				return nil, faults.Parsef(snippet(s[i:]), off+i+stray, `unexpected "}}"`)
			}
			out = append(out, t.add(Node{Kind: NodeLiteral, Text: s[i:]}))
			break
		}
		if stray != -1 && stray < open {
			return nil, faults.Parsef(snippet(s[i:]), off+i+stray, `unexpected "}}"`)
		}
		if open > 0 {
			out = append(out, t.add(Node{Kind: NodeLiteral, Text: s[i : i+open]}))
		}
		start := i + open
		inner, width, err := matchBraces(s[start:], off+start)
		if err != nil {
			return nil, err
		}
		idx, err := t.parseExpr(inner, off+start+2)
		if err != nil {
			return nil, err
		}
		out = append(out, idx)
		i = start + width
	}
	return out, nil
}

// matchBraces finds the close of the expression opening at s[0:2],
// tracking nested pairs. It returns the inner text and the total width
// consumed, opening and closing braces included.
func matchBraces(s string, off int) (string, int, error) {
	depth := 0
	for i := 0; i+1 < len(s); {
		switch {
		case s[i] == '{' && s[i+1] == '{':
			depth++
			i += 2
		case s[i] == '}' && s[i+1] == '}':
			depth--
			if depth == 0 {
				return s[2:i], i + 2, nil
			}
			i += 2
		default:
			i++
		}
	}
	return "", 0, faults.Parsef(snippet(s), off, "unbalanced braces")
}

// segment is one colon-delimited piece of an expression body, with its
// absolute source offset for error positions.
type segment struct {
	text string
	off  int
}

// splitTop splits s on colons at nesting depth zero. Colons inside nested
// {{...}} pairs do not split. At least one segment is always returned.
func splitTop(s string, off int) []segment {
	var segs []segment
	depth := 0
	start := 0
	for i := 0; i < len(s); {
		switch {
		case i+1 < len(s) && s[i] == '{' && s[i+1] == '{':
			depth++
			i += 2
		case i+1 < len(s) && s[i] == '}' && s[i+1] == '}':
			depth--
			i += 2
		case s[i] == ':' && depth == 0:
			segs = append(segs, segment{s[start:i], off + start})
			start = i + 1
			i++
		default:
			i++
		}
	}
	return append(segs, segment{s[start:], off + start})
}

func (t *Tree) parseExpr(inner string, off int) (int, error) {
	segs := splitTop(inner, off)
	head := strings.TrimSpace(segs[0].text)
	switch {
	case head == "":
		return 0, faults.Parsef(snippet(inner), off, "empty expression")
	case strings.Contains(head, "{{"):
		return 0, faults.Parsef(snippet(head), off, "expression head must be literal")
	}

	if m := varHeadRe.FindStringSubmatch(head); m != nil {
		return t.parseVar(inner, m[1], m[2], segs[1:], off)
	}
	if vars.KindWord(head) {
		return 0, faults.Parsef(head, off, "variable reference is missing its index")
	}
	if !funcNameRe.MatchString(head) {
		return 0, faults.Parsef(head, off, "malformed function name")
	}

	args := make([][]int, 0, len(segs)-1)
	for _, seg := range segs[1:] {
		pieces, err := t.parseArg(seg)
		if err != nil {
			return 0, err
		}
		args = append(args, pieces)
	}
	return t.add(Node{Kind: NodeCall, Text: "{{" + inner + "}}", Name: head, Args: args}), nil
}

func (t *Tree) parseVar(inner, word, digits string, params []segment, off int) (int, error) {
	index, err := strconv.Atoi(digits)
	if err != nil {
		return 0, faults.Parsef(word+digits, off, "variable index overflows")
	}
	lits := make([]string, 0, len(params))
	for _, seg := range params {
		p := strings.TrimSpace(seg.text)
		if strings.Contains(p, "{{") || strings.Contains(p, "TARGET_FILE") {
			return 0, faults.Parsef(snippet(seg.text), seg.off, "variable parameters must be literal")
		}
		lits = append(lits, p)
	}
	ref, err := vars.FromSegments(word, index, lits)
	if err != nil {
		return 0, err
	}
	return t.add(Node{Kind: NodeVar, Text: "{{" + inner + "}}", Ref: ref}), nil
}

// parseArg parses one call argument. A lone TARGET_FILE[name] token
// becomes a target node; anything else is scanned as a nested sequence of
// literals and expressions.
func (t *Tree) parseArg(seg segment) ([]int, error) {
	trimmed := strings.TrimSpace(seg.text)
	if !strings.Contains(trimmed, "{{") && strings.Contains(trimmed, "TARGET_FILE") {
		m := targetRe.FindStringSubmatch(trimmed)
		if m == nil {
			return nil, faults.Parsef(snippet(trimmed), seg.off, "TARGET_FILE must name a component, e.g. TARGET_FILE[data]")
		}
		return []int{t.add(Node{Kind: NodeTarget, Text: trimmed, Name: m[1]})}, nil
	}
	if trimmed == "" {
		return []int{t.add(Node{Kind: NodeLiteral, Text: ""})}, nil
	}
	return t.parseSequence(trimmed, seg.off)
}

func snippet(s string) string {
	const max = 24
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
