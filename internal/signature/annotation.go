package signature

import "strings"

// parseAnnotation parses one Python type expression into a Node. It is
// total: an expression with no recoverable structure comes back as
// NodeUnknown, never as an error, so a single bad annotation cannot sink
// the declaration it belongs to.
func parseAnnotation(text string) *Node {
	t := strings.TrimSpace(text)
	if t == "" {
		return NewUnknown()
	}

	// PEP 604 unions bind loosest; splitting them first keeps quotes and
	// brackets inside the members intact.
	if parts := splitTop(t, '|'); len(parts) > 1 {
		members := make([]*Node, 0, len(parts))
		for _, p := range parts {
			members = append(members, parseAnnotation(p))
		}
		return normalizeUnion(members)
	}

	if inner, ok := quotedContent(t); ok {
		return NewForwardRef(inner)
	}

	if open := strings.IndexByte(t, '['); open > 0 && strings.HasSuffix(t, "]") {
		if matchBracket(t, open) == len(t)-1 {
			return parseBracketed(strings.TrimSpace(t[:open]), t[open+1:len(t)-1])
		}
		return NewUnknown()
	}

	switch {
	case t == "Any" || strings.HasSuffix(t, ".Any"):
		return NewAny()
	case t == "...":
		return NewName(t)
	case isDottedName(t):
		return NewName(t)
	}
	return NewUnknown()
}

// parseBracketed parses base[args]. The typing constructs with dedicated
// shapes are matched on the last segment of the base so both Optional and
// typing.Optional land on the same node; everything else with a valid base
// name becomes a plain generic.
func parseBracketed(base, args string) *Node {
	if !isDottedName(base) {
		return NewUnknown()
	}

	switch lastSegment(base) {
	case "Optional":
		if parts := trimmedParts(args); len(parts) == 1 {
			return newOptional(parseAnnotation(parts[0]))
		}
	case "Union":
		parts := trimmedParts(args)
		if len(parts) == 0 {
			return NewUnknown()
		}
		members := make([]*Node, 0, len(parts))
		for _, p := range parts {
			members = append(members, parseAnnotation(p))
		}
		return normalizeUnion(members)
	case "Callable":
		if n := parseCallable(args); n != nil {
			return n
		}
	case "Literal":
		return NewLiteral(trimmedParts(args)...)
	}

	var argNodes []*Node
	for _, p := range trimmedParts(args) {
		argNodes = append(argNodes, parseAnnotation(p))
	}
	return NewGeneric(NewName(base), argNodes...)
}

// parseCallable handles Callable[[P1, P2], R] and Callable[[], R]. The
// ellipsis form Callable[..., R] keeps the ellipsis as its one parameter.
// Returns nil when the argument shape is unrecognized, letting the caller
// fall back to a generic.
func parseCallable(args string) *Node {
	parts := trimmedParts(args)
	if len(parts) != 2 {
		return nil
	}
	ret := parseAnnotation(parts[1])

	first := parts[0]
	if first == "..." {
		return NewCallable([]*Node{NewName("...")}, ret)
	}
	if !strings.HasPrefix(first, "[") || matchBracket(first, 0) != len(first)-1 {
		return nil
	}

	var params []*Node
	for _, p := range trimmedParts(first[1 : len(first)-1]) {
		params = append(params, parseAnnotation(p))
	}
	return NewCallable(params, ret)
}

// trimmedParts splits args on top-level commas, trims the pieces, and drops
// empties, tolerating trailing commas in multi-line annotations.
func trimmedParts(args string) []string {
	var parts []string
	for _, p := range splitTop(args, ',') {
		p = strings.TrimSpace(p)
		if p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

// newOptional wraps elem, collapsing already-optional elements so
// Optional[Optional[X]] and X | None | None share one shape.
func newOptional(elem *Node) *Node {
	if elem != nil && elem.Kind == NodeOptional {
		return elem
	}
	return NewOptional(elem)
}

// normalizeUnion flattens nested unions and optionals, drops exact duplicate
// members, and folds None membership into an Optional wrapper, so
// Optional[X], X | None, and None | X all produce the same node. Member
// order is otherwise preserved.
func normalizeUnion(members []*Node) *Node {
	var flat []*Node
	hasNone := false

	var add func(n *Node)
	add = func(n *Node) {
		switch {
		case n == nil:
			return
		case n.Kind == NodeUnion:
			for _, m := range n.Args {
				add(m)
			}
		case n.Kind == NodeOptional:
			hasNone = true
			add(n.Elem)
		case n.Kind == NodeName && n.Name == "None":
			hasNone = true
		default:
			for _, seen := range flat {
				if seen.Equal(n) {
					return
				}
			}
			flat = append(flat, n)
		}
	}
	for _, m := range members {
		add(m)
	}

	var core *Node
	switch len(flat) {
	case 0:
		core = nil
	case 1:
		core = flat[0]
	default:
		core = NewUnion(flat...)
	}

	if hasNone {
		if core == nil {
			return NewName("None")
		}
		return newOptional(core)
	}
	if core == nil {
		return NewUnknown()
	}
	return core
}
