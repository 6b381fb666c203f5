package lens

import (
	"github.com/ubreblanca/vscode-py-sig-lens/internal/config"
	"github.com/ubreblanca/vscode-py-sig-lens/internal/render"
	"github.com/ubreblanca/vscode-py-sig-lens/internal/scanner"
	"github.com/ubreblanca/vscode-py-sig-lens/internal/signature"
)

// Pipeline runs the full extraction chain for one document: scan the source
// for declarations, parse each header into a signature model, and compose
// display labels. Pipelines are stateless and safe for concurrent use across
// documents.
type Pipeline struct {
	scanner *scanner.Scanner
}

// NewPipeline creates a Pipeline with a Python scanner.
func NewPipeline() *Pipeline {
	return &Pipeline{
		scanner: scanner.New(),
	}
}

// Run produces the labels for source under cfg, in document order. The
// enabled flag short-circuits the whole run before any scanning happens.
// Run is total: malformed source degrades to fewer or less detailed labels,
// never to an error.
func (p *Pipeline) Run(source []byte, cfg *config.Config) []render.Label {
	if cfg == nil || !cfg.Enabled {
		return nil
	}

	opts := render.Options{ShowFunctionName: cfg.ShowFunctionName}

	decls := p.scanner.Scan(source)
	if len(decls) == 0 {
		return nil
	}

	labels := make([]render.Label, 0, len(decls))
	for _, decl := range decls {
		model := signature.Parse(decl)
		labels = append(labels, render.Compose(model, opts))
	}
	return labels
}
