package lens

import (
	"sort"

	"github.com/ubreblanca/vscode-py-sig-lens/internal/render"
)

// OpKind classifies one label operation sent to the host.
type OpKind string

const (
	OpAdd    OpKind = "add"
	OpUpdate OpKind = "update"
	OpRemove OpKind = "remove"
)

// Op is one add/update/remove instruction for a display label. Text is empty
// for removes; the anchor identifies which label to drop.
type Op struct {
	Kind       OpKind
	AnchorLine int
	Text       string
}

// diffLabels compares the previous and next label sets by anchor line and
// text, returning only the operations needed to move the host from one to
// the other. Identical runs produce no operations. Results are ordered by
// anchor line so output is deterministic.
func diffLabels(prev, next []render.Label) []Op {
	prevByAnchor := make(map[int]render.Label, len(prev))
	for _, l := range prev {
		prevByAnchor[l.AnchorLine] = l
	}

	var ops []Op
	seen := make(map[int]bool, len(next))
	for _, l := range next {
		seen[l.AnchorLine] = true
		old, ok := prevByAnchor[l.AnchorLine]
		switch {
		case !ok:
			ops = append(ops, Op{Kind: OpAdd, AnchorLine: l.AnchorLine, Text: l.Text})
		case old.Text != l.Text:
			ops = append(ops, Op{Kind: OpUpdate, AnchorLine: l.AnchorLine, Text: l.Text})
		}
	}
	for _, l := range prev {
		if !seen[l.AnchorLine] {
			ops = append(ops, Op{Kind: OpRemove, AnchorLine: l.AnchorLine})
		}
	}

	sort.Slice(ops, func(i, j int) bool {
		return ops[i].AnchorLine < ops[j].AnchorLine
	})
	return ops
}

// removeAll turns a label set into the remove operations that clear it.
func removeAll(labels []render.Label) []Op {
	if len(labels) == 0 {
		return nil
	}
	ops := make([]Op, 0, len(labels))
	for _, l := range labels {
		ops = append(ops, Op{Kind: OpRemove, AnchorLine: l.AnchorLine})
	}
	sort.Slice(ops, func(i, j int) bool {
		return ops[i].AnchorLine < ops[j].AnchorLine
	})
	return ops
}
