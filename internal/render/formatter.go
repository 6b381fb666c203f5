package render

import (
	"strings"

	"github.com/ubreblanca/vscode-py-sig-lens/internal/signature"
)

// placeholder stands in for annotations with no recoverable structure. It is
// never empty so a degraded label still shows that an annotation exists.
const placeholder = "?"

// FormatNode renders one annotation node in the canonical display style:
// PEP 604 unions (X | None, A | B), base[A, B] generics, (P1, P2) -> R
// callables, Literal tokens verbatim, forward references quoted as written.
// It is pure and total over every node kind, and deterministic so the
// refresh diff can compare labels as plain strings.
func FormatNode(n *signature.Node) string {
	if n == nil {
		return placeholder
	}

	switch n.Kind {
	case signature.NodeName:
		return n.Name
	case signature.NodeAny:
		return "Any"
	case signature.NodeForwardRef:
		return `"` + n.Name + `"`
	case signature.NodeOptional:
		return unionMember(n.Elem) + " | None"
	case signature.NodeUnion:
		members := make([]string, 0, len(n.Args))
		for _, m := range n.Args {
			members = append(members, unionMember(m))
		}
		return strings.Join(members, " | ")
	case signature.NodeGeneric:
		var sb strings.Builder
		sb.WriteString(FormatNode(n.Base))
		sb.WriteString("[")
		for i, arg := range n.Args {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(FormatNode(arg))
		}
		sb.WriteString("]")
		return sb.String()
	case signature.NodeCallable:
		var sb strings.Builder
		sb.WriteString("(")
		for i, p := range n.Args {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(FormatNode(p))
		}
		sb.WriteString(") -> ")
		sb.WriteString(FormatNode(n.Elem))
		return sb.String()
	case signature.NodeLiteral:
		return "Literal[" + strings.Join(n.Tokens, ", ") + "]"
	}
	return placeholder
}

// unionMember renders a union member, parenthesizing callables whose arrow
// would otherwise bleed into the surrounding union.
func unionMember(n *signature.Node) string {
	if n != nil && n.Kind == signature.NodeCallable {
		return "(" + FormatNode(n) + ")"
	}
	return FormatNode(n)
}
