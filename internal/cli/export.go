package cli

import (
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/chenyangcun/aiedit/internal/editor"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the visible version of the selected image to a file",
	Run:   runExport,
}

var exportOutput string

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default edited-<name>-v<version>.<ext>)")
}

func runExport(cmd *cobra.Command, args []string) {
	c := initContext()
	defer c.Close()

	img := c.State.Selected()
	data, mimeType, ok := c.State.ResolveVisible()
	if !ok {
		exitError("no image selected")
	}

	out := exportOutput
	if out == "" {
		out = editor.ExportName(img.Name, c.State.Cursor(), mimeType)
	}
	if err := os.WriteFile(out, data, 0644); err != nil {
		exitError("failed to write %s: %v", out, err)
	}
	color.Green("wrote %s (%s, %d bytes)", out, mimeType, len(data))
}
