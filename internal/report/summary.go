package report

import (
	"fmt"
	"io"
)

// Summary describes one build pass for rendering.
type Summary struct {
	OutDir           string
	DryRun           bool
	FilesScanned     int
	FilesTransformed int
	Sites            int
	Stylesheets      int
	Warnings         []string
}

// Write renders the summary in the standard layout.
func Write(w io.Writer, s Summary, useColors bool) {
	head := fmt.Sprintf("Transformed %d of %d files", s.FilesTransformed, s.FilesScanned)
	if s.DryRun {
		head += " (dry run)"
	} else if s.OutDir != "" {
		head += " into " + s.OutDir
	}
	fmt.Fprintln(w, Render(StyleGreen, head, useColors))
	fmt.Fprintf(w, "  Template sites: %d\n", s.Sites)
	fmt.Fprintf(w, "  Stylesheets:    %d\n", s.Stylesheets)
	for _, warning := range s.Warnings {
		fmt.Fprintf(w, "  %s %s\n", Render(StyleYellow, "Warning:", useColors), warning)
	}
}
