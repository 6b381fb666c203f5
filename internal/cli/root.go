package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var verbose bool

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "pysiglens",
	Short: "Signature labels for Python source files",
	Long: `pysiglens statically extracts function, method, and class signatures
from Python source files and renders each as a compact one-line label
anchored to its declaration line.

Labels include parameter annotations, defaults, return types, PEP 695
type-parameter bounds, and decorator context (classmethod, staticmethod,
async), without importing or executing any analyzed code.

Configuration is read from .pysiglens/config.yml in the scanned directory,
with PYSIGLENS_* environment variable overrides.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// targetDir resolves the positional path argument, defaulting to the current
// directory, and returns it absolute.
func targetDir(args []string) (string, error) {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve path %s: %w", dir, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("failed to access %s: %w", abs, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%s is not a directory", abs)
	}
	return abs, nil
}
