package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import FILE...",
	Short: "Import image files into the workspace",
	Long: `Import one or more image files. Files that cannot be read or are
not images are skipped with a warning; the rest of the batch still
imports. The first image imported into an empty workspace becomes
the selection.`,
	Args: cobra.MinimumNArgs(1),
	Run:  runImport,
}

func runImport(cmd *cobra.Command, args []string) {
	c := initContext()
	defer c.Close()

	added, failed := c.Editor.ImportFiles(args)

	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)

	for _, img := range added {
		green.Printf("imported: %s (%s, %d bytes)\n", img.Name, img.OriginalMimeType, len(img.OriginalData))
	}
	for _, f := range failed {
		yellow.Printf("skipped:  %s (%v)\n", f.Path, f.Err)
	}

	if len(added) == 0 {
		exitError("no images imported")
	}
	fmt.Printf("\n%d imported, %d skipped\n", len(added), len(failed))
}
