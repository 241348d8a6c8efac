package cli

import (
	"image"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/chenyangcun/aiedit/internal/transform"
)

var rotateCmd = &cobra.Command{
	Use:   "rotate",
	Short: "Rotate the visible image 90 degrees",
	Run:   runRotate,
}

var flipCmd = &cobra.Command{
	Use:   "flip",
	Short: "Mirror the visible image",
	Run:   runFlip,
}

var filterCmd = &cobra.Command{
	Use:       "filter grayscale|sepia|invert|blur",
	Short:     "Apply a color filter to the visible image",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"grayscale", "sepia", "invert", "blur"},
	Run:       runFilter,
}

var adjustCmd = &cobra.Command{
	Use:   "adjust",
	Short: "Adjust brightness, contrast, and saturation",
	Long: `Adjust color levels as percentages, where 100 is unchanged.
Adjustments apply in order: brightness, contrast, saturation.`,
	Run: runAdjust,
}

var cropCmd = &cobra.Command{
	Use:   "crop",
	Short: "Crop the visible image to a pixel rectangle",
	Run:   runCrop,
}

var gridCmd = &cobra.Command{
	Use:   "grid",
	Short: "Combine four images into a 2x2 grid",
	Long: `Combine the selected image and the reference set, four distinct
images in all, into a new standalone image. The selected image
contributes its visible bytes; references contribute originals.`,
	Run: runGrid,
}

var (
	rotateLeft  bool
	rotateRight bool
	flipH       bool
	flipV       bool
	adjustVals  = transform.DefaultAdjustments
	cropRect    struct{ X, Y, W, H int }
)

func init() {
	rotateCmd.Flags().BoolVar(&rotateLeft, "left", false, "rotate counterclockwise")
	rotateCmd.Flags().BoolVar(&rotateRight, "right", false, "rotate clockwise")
	flipCmd.Flags().BoolVar(&flipH, "horizontal", false, "mirror left-right")
	flipCmd.Flags().BoolVar(&flipV, "vertical", false, "mirror top-bottom")
	adjustCmd.Flags().IntVar(&adjustVals.Brightness, "brightness", 100, "brightness percent")
	adjustCmd.Flags().IntVar(&adjustVals.Contrast, "contrast", 100, "contrast percent")
	adjustCmd.Flags().IntVar(&adjustVals.Saturation, "saturation", 100, "saturation percent")
	cropCmd.Flags().IntVar(&cropRect.X, "x", 0, "left edge")
	cropCmd.Flags().IntVar(&cropRect.Y, "y", 0, "top edge")
	cropCmd.Flags().IntVar(&cropRect.W, "width", 0, "width in pixels")
	cropCmd.Flags().IntVar(&cropRect.H, "height", 0, "height in pixels")
	cropCmd.MarkFlagRequired("width")
	cropCmd.MarkFlagRequired("height")
}

func runRotate(cmd *cobra.Command, args []string) {
	if rotateLeft == rotateRight {
		exitError("pass exactly one of --left or --right")
	}
	degrees := 90
	if rotateLeft {
		degrees = -90
	}

	c := initContext()
	defer c.Close()
	cursor, err := c.Editor.Rotate(degrees)
	reportEdit(c, cursor, err)
}

func runFlip(cmd *cobra.Command, args []string) {
	if flipH == flipV {
		exitError("pass exactly one of --horizontal or --vertical")
	}
	dir := transform.FlipHorizontal
	if flipV {
		dir = transform.FlipVertical
	}

	c := initContext()
	defer c.Close()
	cursor, err := c.Editor.Flip(dir)
	reportEdit(c, cursor, err)
}

func runFilter(cmd *cobra.Command, args []string) {
	c := initContext()
	defer c.Close()
	cursor, err := c.Editor.Filter(transform.Filter(args[0]))
	reportEdit(c, cursor, err)
}

func runAdjust(cmd *cobra.Command, args []string) {
	c := initContext()
	defer c.Close()
	cursor, err := c.Editor.Adjust(adjustVals)
	reportEdit(c, cursor, err)
}

func runCrop(cmd *cobra.Command, args []string) {
	c := initContext()
	defer c.Close()
	rect := image.Rect(cropRect.X, cropRect.Y, cropRect.X+cropRect.W, cropRect.Y+cropRect.H)
	cursor, err := c.Editor.Crop(rect)
	reportEdit(c, cursor, err)
}

func runGrid(cmd *cobra.Command, args []string) {
	c := initContext()
	defer c.Close()

	img, err := c.Editor.Grid()
	if err != nil {
		exitError("%s", editErrorMessage(err))
	}
	color.Green("combined grid saved as %s, now selected", img.Name)
}

// reportEdit prints the outcome of a history-appending transform.
func reportEdit(c *cmdContext, cursor int, err error) {
	if err != nil {
		exitError("%s", editErrorMessage(err))
	}
	img := c.State.Selected()
	color.Green("%s: %s, now at v%d", img.Name, img.History[cursor].Label, cursor+1)
}
