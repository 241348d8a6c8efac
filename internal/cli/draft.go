package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/chenyangcun/aiedit/internal/draft"
)

var draftCmd = &cobra.Command{
	Use:   "draft",
	Short: "Export or import the workspace as a draft file",
	Long: `Drafts are self-contained JSON files carrying every image with its
full history. Importing a draft replaces the entire workspace.`,
}

var draftExportCmd = &cobra.Command{
	Use:   "export [FILE]",
	Short: "Write all images and their histories to a draft file",
	Args:  cobra.MaximumNArgs(1),
	Run:   runDraftExport,
}

var draftImportCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Replace the workspace with a draft file's contents",
	Args:  cobra.ExactArgs(1),
	Run:   runDraftImport,
}

func init() {
	draftCmd.AddCommand(draftExportCmd)
	draftCmd.AddCommand(draftImportCmd)
}

func runDraftExport(cmd *cobra.Command, args []string) {
	c := initContext()
	defer c.Close()

	data, err := draft.Export(c.State.Images())
	if err != nil {
		exitError("%v", err)
	}

	out := fmt.Sprintf("ai-image-editor-draft-%s.json", time.Now().Format("2006-01-02"))
	if len(args) == 1 {
		out = args[0]
	}
	if err := os.WriteFile(out, data, 0644); err != nil {
		exitError("failed to write %s: %v", out, err)
	}
	color.Green("wrote %s (%d images)", out, len(c.State.Images()))
}

func runDraftImport(cmd *cobra.Command, args []string) {
	c := initContext()
	defer c.Close()

	data, err := os.ReadFile(args[0])
	if err != nil {
		exitError("failed to read %s: %v", args[0], err)
	}

	images, err := draft.Import(data)
	if err != nil {
		exitError("%v", err)
	}

	// Import is a full replace, not a merge.
	c.State.ReplaceAll(images)
	color.Green("imported %d images from %s", len(images), args[0])
}
