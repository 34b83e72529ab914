package fhirview

import (
	"strings"

	diffpatch "github.com/sergi/go-diff/diffmatchpatch"

	"github.com/reoring/fhirview/node"
)

// DiffOp classifies a DiffLine.
type DiffOp int

const (
	DiffEqual DiffOp = iota
	DiffInsert
	DiffDelete
)

// Prefix returns the unified diff marker for op.
func (op DiffOp) Prefix() string {
	switch op {
	case DiffInsert:
		return "+"
	case DiffDelete:
		return "-"
	}
	return " "
}

// DiffLine is one line of a document diff, without its newline.
type DiffLine struct {
	Op   DiffOp
	Text string
}

// Diff compares the indented encodings of a and b line by line. Object key
// order is significant; use node.Equal for semantic comparison.
func Diff(a, b *node.Node) ([]DiffLine, error) {
	from, err := node.MarshalIndent(a, "", "  ")
	if err != nil {
		return nil, err
	}
	to, err := node.MarshalIndent(b, "", "  ")
	if err != nil {
		return nil, err
	}
	dmp := diffpatch.New()
	ca, cb, lines := dmp.DiffLinesToChars(string(from)+"\n", string(to)+"\n")
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(ca, cb, false), lines)

	var out []DiffLine
	for _, d := range diffs {
		op := DiffEqual
		switch d.Type {
		case diffpatch.DiffInsert:
			op = DiffInsert
		case diffpatch.DiffDelete:
			op = DiffDelete
		}
		for _, l := range strings.SplitAfter(d.Text, "\n") {
			if l == "" {
				continue
			}
			out = append(out, DiffLine{Op: op, Text: strings.TrimSuffix(l, "\n")})
		}
	}
	return out, nil
}

// UnifiedDiff renders Diff as text. Equal lines are kept within context lines
// of a change; longer equal runs collapse into a "@@" marker. context < 0
// keeps every line.
func UnifiedDiff(a, b *node.Node, context int) (string, error) {
	lines, err := Diff(a, b)
	if err != nil {
		return "", err
	}
	keep := make([]bool, len(lines))
	for i, l := range lines {
		if context < 0 {
			keep[i] = true
			continue
		}
		if l.Op == DiffEqual {
			continue
		}
		for j := max(0, i-context); j <= min(len(lines)-1, i+context); j++ {
			keep[j] = true
		}
	}
	var b2 strings.Builder
	skipped := false
	for i, l := range lines {
		if !keep[i] {
			skipped = true
			continue
		}
		if skipped {
			b2.WriteString("@@\n")
			skipped = false
		}
		b2.WriteString(l.Op.Prefix())
		b2.WriteString(l.Text)
		b2.WriteByte('\n')
	}
	return b2.String(), nil
}

// Changed reports whether any line differs.
func Changed(lines []DiffLine) bool {
	for _, l := range lines {
		if l.Op != DiffEqual {
			return true
		}
	}
	return false
}
