package render

import (
	"strings"

	"github.com/ubreblanca/vscode-py-sig-lens/internal/scanner"
	"github.com/ubreblanca/vscode-py-sig-lens/internal/signature"
)

// Compose builds the display label for one parsed signature. The anchor is
// always the declaration's first span line, multi-line signatures included.
// Functions render as name(params) -> ret, trimmed to (params) -> ret when
// opts.ShowFunctionName is false; methods qualify through their enclosing
// class chain; classmethods, staticmethods, and async callables carry a
// short leading tag. Classes always keep their name, with or without the
// name option, since a bare parameter list says nothing about a class.
func Compose(m signature.Model, opts Options) Label {
	decl := m.Decl

	var sb strings.Builder
	writeTags(&sb, decl)

	if decl.Kind == scanner.KindClass {
		sb.WriteString(decl.QualifiedName())
		sb.WriteString(formatTypeParams(m.TypeParams))
	} else {
		if opts.ShowFunctionName {
			sb.WriteString(decl.QualifiedName())
		}
		sb.WriteString(formatTypeParams(m.TypeParams))
		sb.WriteString("(")
		for i, p := range m.Params {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(formatParameter(p))
		}
		sb.WriteString(")")
		if m.Return != nil {
			sb.WriteString(" -> ")
			sb.WriteString(FormatNode(m.Return))
		}
	}

	return Label{
		AnchorLine: decl.StartLine,
		Text:       sb.String(),
		Identity:   decl.QualifiedName() + "/" + string(decl.Kind),
	}
}

// writeTags prepends the short kind tags: async for coroutine callables,
// class for class declarations, classmethod/staticmethod for decorated
// methods. Plain functions and methods get no tag.
func writeTags(sb *strings.Builder, decl *scanner.Declaration) {
	if decl.Kind == scanner.KindClass {
		sb.WriteString("class ")
		return
	}
	if decl.Async {
		sb.WriteString("async ")
	}
	switch decl.Kind {
	case scanner.KindClassMethod:
		sb.WriteString("classmethod ")
	case scanner.KindStaticMethod:
		sb.WriteString("staticmethod ")
	}
}

// formatTypeParams renders a type-parameter list with its bounds, or nothing
// when the list is empty.
func formatTypeParams(tps []signature.TypeParameter) string {
	if len(tps) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("[")
	for i, tp := range tps {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(tp.Name)
		if tp.Bound != nil {
			sb.WriteString(": ")
			sb.WriteString(FormatNode(tp.Bound))
		}
	}
	sb.WriteString("]")
	return sb.String()
}

// formatParameter renders one parameter: stars for variadics, the annotation
// after a colon when present, and an elided default marker. Annotation and
// default render independently, matching how they parse.
func formatParameter(p signature.Parameter) string {
	var sb strings.Builder
	switch p.Kind {
	case signature.ParamVarPositional:
		sb.WriteString("*")
	case signature.ParamVarKeyword:
		sb.WriteString("**")
	}
	sb.WriteString(p.Name)
	if p.Annotation != nil {
		sb.WriteString(": ")
		sb.WriteString(FormatNode(p.Annotation))
	}
	if p.HasDefault {
		sb.WriteString(" = ...")
	}
	return sb.String()
}
