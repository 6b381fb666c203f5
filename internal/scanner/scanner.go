package scanner

import (
	"strings"
	"unicode/utf8"

	sitter "github.com/tree-sitter/go-tree-sitter"
	python "github.com/tree-sitter/tree-sitter-python/bindings/go"
)

// Scanner finds function, method, and class declarations in Python source.
type Scanner struct {
	language *sitter.Language
}

// New creates a Scanner for the Python grammar.
func New() *Scanner {
	return &Scanner{
		language: sitter.NewLanguage(python.Language()),
	}
}

// Scan returns the declarations found in source, in document order.
// It is total: malformed regions are skipped, invalid or unparseable input
// yields an empty result, and Scan never returns an error.
func (s *Scanner) Scan(source []byte) []*Declaration {
	if len(source) == 0 || !utf8.Valid(source) {
		return nil
	}

	parser := sitter.NewParser()
	defer parser.Close()

	parser.SetLanguage(s.language)

	tree := parser.Parse(source, nil)
	if tree == nil {
		return nil
	}
	defer tree.Close()

	var decls []*Declaration
	s.collect(tree.RootNode(), source, nil, &decls)
	return decls
}

// collect walks node's children, extracting declarations. enclosing is the
// nearest enclosing class declaration or nil; it resets inside function
// bodies so that a def nested in a def is a plain function.
func (s *Scanner) collect(node *sitter.Node, source []byte, enclosing *Declaration, out *[]*Declaration) {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(uint(i))
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "decorated_definition":
			s.collectDecorated(child, source, enclosing, out)
		case "class_definition":
			s.collectClass(child, source, enclosing, nil, 0, out)
		case "function_definition":
			s.collectFunction(child, source, enclosing, nil, 0, out)
		default:
			// Declarations can hide under if/try/with blocks and other
			// compound statements; descend without changing class context.
			s.collect(child, source, enclosing, out)
		}
	}
}

// collectDecorated unwraps a decorated_definition: decorator text is recorded
// verbatim (without the @) and attached to the inner declaration, whose span
// starts at the first decorator line.
func (s *Scanner) collectDecorated(node *sitter.Node, source []byte, enclosing *Declaration, out *[]*Declaration) {
	var decorators []string
	for _, deco := range findChildrenByKind(node, "decorator") {
		text := strings.TrimSpace(nodeText(deco, source))
		decorators = append(decorators, strings.TrimPrefix(text, "@"))
	}

	spanStart := int(node.StartPosition().Row) + 1
	if def := findChildByKind(node, "function_definition"); def != nil {
		s.collectFunction(def, source, enclosing, decorators, spanStart, out)
		return
	}
	if def := findChildByKind(node, "class_definition"); def != nil {
		s.collectClass(def, source, enclosing, decorators, spanStart, out)
	}
}

// collectFunction extracts one def. A def whose nearest enclosing declaration
// is a class becomes a method; decorators refine methods into classmethods
// and staticmethods. Malformed defs (no name or parameter list) are skipped
// and scanning continues.
func (s *Scanner) collectFunction(node *sitter.Node, source []byte, enclosing *Declaration, decorators []string, spanStart int, out *[]*Declaration) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	paramsNode := node.ChildByFieldName("parameters")
	returnNode := node.ChildByFieldName("return_type")

	// The header runs from the name through the return annotation, falling
	// back to the parameter list. Everything between the name and the
	// parameters (a PEP 695 type-parameter list) rides along in the slice.
	endNode := nameNode
	if paramsNode != nil {
		endNode = paramsNode
	}
	if returnNode != nil {
		endNode = returnNode
	}

	decl := &Declaration{
		Name:       nodeText(nameNode, source),
		StartLine:  int(node.StartPosition().Row) + 1,
		EndLine:    int(endNode.EndPosition().Row) + 1,
		Decorators: decorators,
		Header:     string(source[nameNode.StartByte():endNode.EndByte()]),
		Async:      hasAsyncMarker(node),
	}
	if spanStart > 0 {
		decl.StartLine = spanStart
	}
	if enclosing != nil && enclosing.Kind == KindClass {
		decl.Enclosing = enclosing
	}
	decl.Kind = functionKind(decl.Enclosing, decorators, decl.Async)

	*out = append(*out, decl)

	if body := node.ChildByFieldName("body"); body != nil {
		s.collect(body, source, nil, out)
	}
}

// collectClass extracts one class and then scans its body with the class as
// the enclosing declaration, so its defs become methods and nested classes
// qualify through it.
func (s *Scanner) collectClass(node *sitter.Node, source []byte, enclosing *Declaration, decorators []string, spanStart int, out *[]*Declaration) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	bodyNode := node.ChildByFieldName("body")

	regionEnd := node.EndByte()
	if bodyNode != nil {
		regionEnd = bodyNode.StartByte()
	}
	header := trimClassHeader(source[nameNode.StartByte():regionEnd])

	decl := &Declaration{
		Kind:       KindClass,
		Name:       nodeText(nameNode, source),
		StartLine:  int(node.StartPosition().Row) + 1,
		EndLine:    int(nameNode.StartPosition().Row) + 1 + strings.Count(header, "\n"),
		Decorators: decorators,
		Header:     header,
	}
	if spanStart > 0 {
		decl.StartLine = spanStart
	}
	if enclosing != nil && enclosing.Kind == KindClass {
		decl.Enclosing = enclosing
	}

	*out = append(*out, decl)

	if bodyNode != nil {
		s.collect(bodyNode, source, decl, out)
	}
}

// functionKind classifies a def from its context and decorators. Async
// methods keep their method kind; the Async flag carries the marker.
func functionKind(enclosing *Declaration, decorators []string, async bool) Kind {
	if enclosing != nil {
		for _, d := range decorators {
			switch d {
			case "classmethod":
				return KindClassMethod
			case "staticmethod":
				return KindStaticMethod
			}
		}
		return KindMethod
	}
	if async {
		return KindAsyncFunction
	}
	return KindFunction
}

// hasAsyncMarker reports whether a function_definition carries the async
// keyword, which the grammar exposes as a plain child token.
func hasAsyncMarker(node *sitter.Node) bool {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(uint(i))
		if child != nil && child.Kind() == "async" {
			return true
		}
	}
	return false
}

// trimClassHeader cuts a class header region at the block colon. The colon is
// found with bracket-depth and string tracking so colons inside subscripts
// (class Stack[T]), dict literals in base arguments, and quoted bases do not
// end the header early.
func trimClassHeader(region []byte) string {
	depth := 0
	var quote byte
	for i := 0; i < len(region); i++ {
		c := region[i]
		if quote != 0 {
			switch c {
			case '\\':
				i++
			case quote:
				quote = 0
			}
			continue
		}
		switch c {
		case '\'', '"':
			quote = c
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case ':':
			if depth == 0 {
				return strings.TrimSpace(string(region[:i]))
			}
		}
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(string(region)), ":"))
}
