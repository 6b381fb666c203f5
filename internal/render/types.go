package render

// Options control label composition for one pipeline run.
type Options struct {
	// ShowFunctionName prefixes labels with the qualified declaration name.
	ShowFunctionName bool
}

// Label is one rendered signature ready for display. AnchorLine is the first
// line of the owning declaration span (1-based); Identity names the source
// signature (qualified name plus kind) so hosts can track labels across
// re-renders. Labels are ephemeral and replaced wholesale on re-render.
type Label struct {
	AnchorLine int
	Text       string
	Identity   string
}
