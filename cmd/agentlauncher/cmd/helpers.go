package cmd

import (
	"fmt"
	"io"

	"github.com/barysiuk/agentlauncher/internal/core"
	"github.com/barysiuk/agentlauncher/internal/core/dependency"
)

// yesNo renders a boolean for status output.
func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// printFolderCheck writes the marker summary of an agent folder.
func printFolderCheck(w io.Writer, check core.FolderCheck) {
	manifest := yesNo(check.HasManifest)
	if check.Name != "" {
		manifest += fmt.Sprintf(" (%s %s)", check.Name, check.Version)
	}
	fmt.Fprintf(w, "  %-18s %s\n", "package.json", manifest)
	fmt.Fprintf(w, "  %-18s %s\n", "src/index.js", yesNo(check.HasEntryPoint))
	fmt.Fprintf(w, "  %-18s %s\n", core.PairingCodeFileName, yesNo(check.HasPairingFile))
	fmt.Fprintf(w, "  %-18s %s\n", "node_modules", yesNo(check.HasDependencies))
	for _, warning := range check.Warnings() {
		fmt.Fprintf(w, "  warning: %s\n", warning)
	}
}

// printCheckResults writes one line per dependency presence result and
// returns the number missing.
func printCheckResults(w io.Writer, results []dependency.CheckResult) int {
	missing := 0
	for _, r := range results {
		if r.Installed {
			fmt.Fprintf(w, "  ✓ %s\n", r.Name)
			continue
		}
		missing++
		fmt.Fprintf(w, "  ✗ %s: %s\n", r.Name, r.ErrorMessage)
	}
	return missing
}
