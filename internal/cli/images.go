package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var imagesCmd = &cobra.Command{
	Use:   "images",
	Short: "List the images in the workspace",
	Run:   runImages,
}

var selectCmd = &cobra.Command{
	Use:   "select ID|INDEX",
	Short: "Select an image",
	Long: `Select an image by id (or unambiguous id prefix) or by its 1-based
position in the list. Selecting moves the history cursor to the
image's latest version and clears the reference set.`,
	Args: cobra.ExactArgs(1),
	Run:  runSelect,
}

var removeCmd = &cobra.Command{
	Use:   "remove ID|INDEX",
	Short: "Delete an image from the workspace",
	Args:  cobra.ExactArgs(1),
	Run:   runRemove,
}

var refCmd = &cobra.Command{
	Use:   "ref ID|INDEX",
	Short: "Toggle an image's reference membership",
	Long: `Reference images are auxiliary inputs to AI edits and the grid
combine. They always contribute their original bytes, regardless of
their own history cursor.`,
	Args: cobra.ExactArgs(1),
	Run:  runRef,
}

func runImages(cmd *cobra.Command, args []string) {
	c := initContext()
	defer c.Close()

	images := c.State.Images()
	if len(images) == 0 {
		fmt.Println("No images. Run 'aiedit import <file>' to add some.")
		return
	}

	refs := make(map[string]bool)
	for _, id := range c.State.ReferenceIDs() {
		refs[id] = true
	}
	selectedID := c.State.SelectedID()

	green := color.New(color.FgGreen)
	cyan := color.New(color.FgCyan)

	for i, img := range images {
		marker := " "
		if img.ID == selectedID {
			marker = "*"
		}
		line := fmt.Sprintf("%s %2d  %-12s  %-30s  %d versions", marker, i+1, shortID(img.ID), img.Name, len(img.History))
		if refs[img.ID] {
			line += "  [ref]"
		}
		if img.ID == selectedID {
			green.Println(line)
		} else {
			fmt.Println(line)
		}
	}

	if selectedID != "" {
		cursor := c.State.Cursor()
		version := "original"
		if cursor >= 0 {
			version = fmt.Sprintf("v%d", cursor+1)
		}
		cyan.Printf("\nselected: %s at %s, mode %s\n", shortID(selectedID), version, c.State.Mode())
	}
}

func runSelect(cmd *cobra.Command, args []string) {
	c := initContext()
	defer c.Close()

	id := resolveImageID(c, args[0])
	if err := c.State.Select(id); err != nil {
		exitError("%v", err)
	}

	img := c.State.Selected()
	color.Green("selected %s (%d versions)", img.Name, len(img.History))
}

func runRemove(cmd *cobra.Command, args []string) {
	c := initContext()
	defer c.Close()

	id := resolveImageID(c, args[0])
	img := c.State.Get(id)
	if err := c.State.DeleteImage(id); err != nil {
		exitError("%v", err)
	}
	color.Red("removed %s", img.Name)
}

func runRef(cmd *cobra.Command, args []string) {
	c := initContext()
	defer c.Close()

	id := resolveImageID(c, args[0])
	member, err := c.State.ToggleReference(id)
	if err != nil {
		exitError("%v", err)
	}
	if member {
		color.Green("added %s to the reference set", shortID(id))
	} else {
		color.Yellow("removed %s from the reference set", shortID(id))
	}
}

// resolveImageID accepts a 1-based list index, an exact image id, or an
// unambiguous id prefix.
func resolveImageID(c *cmdContext, arg string) string {
	images := c.State.Images()

	if n, err := strconv.Atoi(arg); err == nil && n >= 1 && n <= len(images) {
		return images[n-1].ID
	}
	if c.State.Get(arg) != nil {
		return arg
	}

	var matches []string
	for _, img := range images {
		if strings.HasPrefix(img.ID, arg) {
			matches = append(matches, img.ID)
		}
	}
	switch len(matches) {
	case 1:
		return matches[0]
	case 0:
		exitError("no image matches %q", arg)
	default:
		exitError("%q is ambiguous (%d matches)", arg, len(matches))
	}
	return "" // unreachable
}
