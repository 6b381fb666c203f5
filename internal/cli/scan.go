package cli

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/ubreblanca/vscode-py-sig-lens/internal/config"
	"github.com/ubreblanca/vscode-py-sig-lens/internal/lens"
	"github.com/ubreblanca/vscode-py-sig-lens/internal/render"
)

var (
	jsonFlag   bool
	noNameFlag bool
	quietFlag  bool
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan [path]",
	Short: "Extract signature labels from Python files",
	Long: `Scan discovers Python files under the given path (current directory by
default), runs the signature pipeline over each, and prints the resulting
labels grouped by file.

Discovery honors the include/ignore globs and the max_file_size cap from
.pysiglens/config.yml.

Examples:
  # Scan the current directory
  pysiglens scan

  # Scan a project, machine-readable output
  pysiglens scan /path/to/project --json

  # Labels without the qualified name prefix
  pysiglens scan --no-name
`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)
	scanCmd.Flags().BoolVar(&jsonFlag, "json", false, "Emit JSON instead of text")
	scanCmd.Flags().BoolVar(&noNameFlag, "no-name", false, "Omit the qualified name prefix from labels")
	scanCmd.Flags().BoolVarP(&quietFlag, "quiet", "q", false, "Disable progress output")
}

// fileLabels is one file's scan result in --json output.
type fileLabels struct {
	File   string       `json:"file"`
	Labels []labelEntry `json:"labels"`
}

type labelEntry struct {
	Line int    `json:"line"`
	Text string `json:"text"`
}

func runScan(cmd *cobra.Command, args []string) error {
	rootDir, err := targetDir(args)
	if err != nil {
		return err
	}

	cfg, err := config.LoadConfigFromDir(rootDir)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if noNameFlag {
		cfg.ShowFunctionName = false
	}

	discovery, err := lens.NewDiscovery(rootDir, cfg.Include, cfg.Ignore, cfg.MaxFileSize)
	if err != nil {
		return fmt.Errorf("failed to set up file discovery: %w", err)
	}

	files, err := discovery.Files()
	if err != nil {
		return fmt.Errorf("file discovery failed: %w", err)
	}

	var bar *progressbar.ProgressBar
	if !quietFlag && !jsonFlag && len(files) > 1 {
		bar = newScanBar(len(files))
	}

	pipeline := lens.NewPipeline()
	results := make([]fileLabels, 0, len(files))
	labelCount := 0

	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			log.Printf("Skipping %s: %v", file, err)
			continue
		}

		labels := pipeline.Run(data, cfg)
		labelCount += len(labels)

		rel, err := filepath.Rel(rootDir, file)
		if err != nil {
			rel = file
		}
		results = append(results, fileLabels{
			File:   filepath.ToSlash(rel),
			Labels: toEntries(labels),
		})

		if bar != nil {
			bar.Add(1)
		}
	}

	if jsonFlag {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	printText(results)
	if !quietFlag {
		fmt.Printf("\n✓ %d labels in %d files\n", labelCount, len(results))
	}
	return nil
}

func toEntries(labels []render.Label) []labelEntry {
	entries := make([]labelEntry, 0, len(labels))
	for _, l := range labels {
		entries = append(entries, labelEntry{Line: l.AnchorLine, Text: l.Text})
	}
	return entries
}

func printText(results []fileLabels) {
	for _, r := range results {
		if len(r.Labels) == 0 {
			continue
		}
		fmt.Printf("%s\n", r.File)
		for _, l := range r.Labels {
			fmt.Printf("  %4d  %s\n", l.Line, l.Text)
		}
	}
}

func newScanBar(total int) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetDescription("Scanning files"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("files/s"),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionOnCompletion(func() {
			fmt.Println()
		}),
	)
}
