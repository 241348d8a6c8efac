package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/chenyangcun/aiedit/internal/editor"
	"github.com/chenyangcun/aiedit/internal/gemini"
)

var editCmd = &cobra.Command{
	Use:   "edit",
	Short: "AI-edit the selected image",
	Long: `Send the selected image's visible bytes, plus any reference images'
originals, to the editing model. The result is appended to the
image's history; versions after the cursor are discarded first.`,
	Run: runEdit,
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a new image from a prompt",
	Run:   runGenerate,
}

var videoCmd = &cobra.Command{
	Use:   "video",
	Short: "Generate a video clip from a prompt",
	Long: `Generate a video from the prompt. If an image is selected, its
original bytes seed the first frame. The clip is written to a file
and never enters any image's history.`,
	Run: runVideo,
}

var (
	editPrompt     string
	generatePrompt string
	videoPrompt    string
	videoOutput    string
)

func init() {
	editCmd.Flags().StringVarP(&editPrompt, "prompt", "p", "", "edit instruction")
	generateCmd.Flags().StringVarP(&generatePrompt, "prompt", "p", "", "generation prompt")
	videoCmd.Flags().StringVarP(&videoPrompt, "prompt", "p", "", "video prompt")
	videoCmd.Flags().StringVarP(&videoOutput, "output", "o", "", "output file (default generated-video-<timestamp>.mp4)")
}

func runEdit(cmd *cobra.Command, args []string) {
	c := initFullContext()
	defer c.Close()

	cursor, err := c.Editor.Edit(context.Background(), editPrompt)
	if err != nil {
		exitError("%s", editErrorMessage(err))
	}

	img := c.State.Selected()
	color.Green("edited %s, now at v%d (%d versions)", img.Name, cursor+1, len(img.History))
}

func runGenerate(cmd *cobra.Command, args []string) {
	c := initFullContext()
	defer c.Close()

	img, err := c.Editor.Generate(context.Background(), generatePrompt)
	if err != nil {
		exitError("%s", editErrorMessage(err))
	}

	color.Green("generated %s (%d bytes), now selected", img.Name, len(img.OriginalData))
}

func runVideo(cmd *cobra.Command, args []string) {
	c := initFullContext()
	defer c.Close()

	res, err := c.Editor.Video(context.Background(), videoPrompt, func(msg string) {
		fmt.Printf("  %s...\n", msg)
	})
	if err != nil {
		exitError("%s", editErrorMessage(err))
	}

	out := videoOutput
	if out == "" {
		out = fmt.Sprintf("generated-video-%d.mp4", time.Now().UnixMilli())
	}
	if err := os.WriteFile(out, res.Data, 0644); err != nil {
		exitError("failed to write video: %v", err)
	}
	color.Green("wrote %s (%d bytes)", out, len(res.Data))
}

// editErrorMessage turns gateway errors into user-facing wording.
// Classification happens upstream; this is presentation only.
func editErrorMessage(err error) string {
	var verr *editor.ValidationError
	if errors.As(err, &verr) {
		return verr.Message
	}
	var berr *gemini.BackendError
	if errors.As(err, &berr) {
		return berr.Error()
	}
	return err.Error()
}
