package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ubreblanca/vscode-py-sig-lens/internal/config"
	"github.com/ubreblanca/vscode-py-sig-lens/internal/lens"
	"github.com/ubreblanca/vscode-py-sig-lens/internal/watcher"
)

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch [path]",
	Short: "Watch Python files and print label changes as they happen",
	Long: `Watch runs an initial scan over the given path, then monitors the tree
for changes. Each save re-runs the signature pipeline for the changed file
after a debounce window and prints only the label operations that differ
from the previous state (add, update, remove).

Press Ctrl+C to stop.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	rootDir, err := targetDir(args)
	if err != nil {
		return err
	}

	cfg, err := config.LoadConfigFromDir(rootDir)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	discovery, err := lens.NewDiscovery(rootDir, cfg.Include, cfg.Ignore, cfg.MaxFileSize)
	if err != nil {
		return fmt.Errorf("failed to set up file discovery: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	session := lens.NewSession(cfg)
	defer session.Stop()

	subID, events := session.Subscribe()
	defer session.Unsubscribe(subID)

	// Print label operations as the session emits them.
	printerDone := make(chan struct{})
	go func() {
		defer close(printerDone)
		for e := range events {
			rel, err := filepath.Rel(rootDir, e.URI)
			if err != nil {
				rel = e.URI
			}
			switch e.Kind {
			case lens.OpRemove:
				fmt.Printf("%-7s %s:%d\n", e.Kind, filepath.ToSlash(rel), e.AnchorLine)
			default:
				fmt.Printf("%-7s %s:%d  %s\n", e.Kind, filepath.ToSlash(rel), e.AnchorLine, e.Text)
			}
		}
	}()

	// Initial scan: open every discovered file so the baseline labels print.
	files, err := discovery.Files()
	if err != nil {
		return fmt.Errorf("file discovery failed: %w", err)
	}
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			log.Printf("Skipping %s: %v", file, err)
			continue
		}
		session.OpenDocument(file, data)
	}
	log.Printf("Watching %d Python files under %s", len(files), rootDir)

	fw, err := watcher.NewFileWatcher([]string{rootDir}, cfg.SourceExtensions(), cfg.Debounce())
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer fw.Stop()

	onChanges := func(changed []string) {
		for _, file := range changed {
			rel, err := filepath.Rel(rootDir, file)
			if err != nil || !discovery.Matches(rel) {
				continue
			}

			info, statErr := os.Stat(file)
			switch {
			case statErr != nil:
				// Deleted (or unreadable): drop its labels.
				session.CloseDocument(file)
			case cfg.MaxFileSize > 0 && info.Size() > cfg.MaxFileSize:
				log.Printf("Skipping %s: exceeds max_file_size (%d bytes)", file, info.Size())
			default:
				data, readErr := os.ReadFile(file)
				if readErr != nil {
					log.Printf("Skipping %s: %v", file, readErr)
					continue
				}
				session.UpdateDocument(file, data)
			}
		}
	}

	if err := fw.Start(ctx, onChanges); err != nil {
		return fmt.Errorf("failed to start file watcher: %w", err)
	}

	<-ctx.Done()
	log.Println("Shutting down")

	fw.Stop()
	session.Unsubscribe(subID)
	<-printerDone
	return nil
}
