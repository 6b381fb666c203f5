package signature

import (
	"strings"

	"github.com/ubreblanca/vscode-py-sig-lens/internal/scanner"
)

// Parse builds the structured signature for one scanned declaration. It is
// total: a malformed header yields a model with an empty parameter list and
// Unknown annotations instead of an error, so downstream stages always have
// something to render. Async declarations parse identically to synchronous
// ones; the marker lives on the declaration, not the signature shape.
func Parse(decl *scanner.Declaration) Model {
	m := Model{Decl: decl}

	rest := stripComments(decl.Header)
	rest = strings.TrimSpace(strings.TrimPrefix(rest, decl.Name))

	if strings.HasPrefix(rest, "[") {
		end := matchBracket(rest, 0)
		if end < 0 {
			return m
		}
		m.TypeParams = parseTypeParams(rest[1:end])
		rest = strings.TrimSpace(rest[end+1:])
	}

	if strings.HasPrefix(rest, "(") {
		end := matchBracket(rest, 0)
		if end < 0 {
			return m
		}
		// A class header's parentheses hold base classes, not parameters.
		if decl.Kind != scanner.KindClass {
			m.Params = parseParams(rest[1:end])
		}
		rest = strings.TrimSpace(rest[end+1:])
	}

	if decl.Kind == scanner.KindClass {
		return m
	}

	if strings.HasPrefix(rest, "->") {
		m.Return = parseAnnotation(rest[2:])
	}
	return m
}

// parseTypeParams parses the inside of a bracketed type-parameter list. Each
// entry is name or name: bound; a bound listing a union of capabilities
// comes back as a Union node over the capability names.
func parseTypeParams(text string) []TypeParameter {
	var tps []TypeParameter
	for _, entry := range splitTop(text, ',') {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		name := entry
		var bound *Node
		if idx := indexTop(entry, ':'); idx >= 0 {
			name = strings.TrimSpace(entry[:idx])
			bound = parseAnnotation(entry[idx+1:])
		}
		if name == "" {
			continue
		}
		tps = append(tps, TypeParameter{Name: name, Bound: bound})
	}
	return tps
}

// parseParams parses a parameter list body left to right. A bare * switches
// classification to keyword-only; a bare / (positional-only marker) is
// consumed without producing a parameter; *args and **kwargs keep their
// stars in the kind, not the name.
func parseParams(text string) []Parameter {
	var params []Parameter
	keywordOnly := false
	for _, entry := range splitTop(text, ',') {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		switch entry {
		case "*":
			keywordOnly = true
			continue
		case "/":
			continue
		}

		kind := ParamPositional
		if keywordOnly {
			kind = ParamKeywordOnly
		}
		switch {
		case strings.HasPrefix(entry, "**"):
			kind = ParamVarKeyword
			entry = strings.TrimSpace(entry[2:])
		case strings.HasPrefix(entry, "*"):
			kind = ParamVarPositional
			keywordOnly = true
			entry = strings.TrimSpace(entry[1:])
		}

		p := parseParam(entry, kind)
		if p.Name == "" {
			continue
		}
		params = append(params, p)
	}
	return params
}

// parseParam splits one parameter entry into name, annotation, and default.
// The first top-level colon starts the annotation unless a top-level =
// appears before it: a lambda default carries a colon of its own but no
// annotation. Default presence and annotation presence stay independent.
func parseParam(entry string, kind ParamKind) Parameter {
	colon := indexTop(entry, ':')
	eq := indexTop(entry, '=')

	p := Parameter{Kind: kind}
	switch {
	case colon >= 0 && (eq < 0 || colon < eq):
		p.Name = strings.TrimSpace(entry[:colon])
		annText := entry[colon+1:]
		if eq > colon {
			annText = entry[colon+1 : eq]
			p.HasDefault = true
		}
		p.Annotation = parseAnnotation(annText)
	case eq >= 0:
		p.Name = strings.TrimSpace(entry[:eq])
		p.HasDefault = true
	default:
		p.Name = strings.TrimSpace(entry)
	}

	if !isIdentifier(p.Name) {
		return Parameter{}
	}
	return p
}
