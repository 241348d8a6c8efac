package cli

import (
	"fmt"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/chenyangcun/aiedit/internal/models"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the selected image's edit history",
	Run:   runHistory,
}

var historySelectCmd = &cobra.Command{
	Use:   "select N",
	Short: "Move the cursor to version N (0 = original)",
	Long: `Move the history cursor. Version 0 is the original; version k is the
k-th edit. The next edit discards everything after the cursor before
appending.`,
	Args: cobra.ExactArgs(1),
	Run:  runHistorySelect,
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete N",
	Short: "Delete version N and everything after it",
	Args:  cobra.ExactArgs(1),
	Run:   runHistoryDelete,
}

var historyResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Discard all edits, keeping the original",
	Run:   runHistoryReset,
}

func init() {
	historyCmd.AddCommand(historySelectCmd)
	historyCmd.AddCommand(historyDeleteCmd)
	historyCmd.AddCommand(historyResetCmd)
}

func runHistory(cmd *cobra.Command, args []string) {
	c := initContext()
	defer c.Close()

	img := c.State.Selected()
	if img == nil {
		exitError("no image selected")
	}
	cursor := c.State.Cursor()

	fmt.Printf("History of %s:\n\n", img.Name)

	green := color.New(color.FgGreen)
	line := func(active bool, format string, a ...interface{}) {
		marker := "  "
		if active {
			marker = "* "
		}
		if active {
			green.Printf(marker+format+"\n", a...)
		} else {
			fmt.Printf(marker+format+"\n", a...)
		}
	}

	line(cursor == models.OriginalCursor, "v0  original (%s, %d bytes)", img.OriginalMimeType, len(img.OriginalData))
	for i, entry := range img.History {
		line(cursor == i, "v%d  %s (%s, %d bytes)", i+1, entry.Label, entry.MimeType, len(entry.Data))
	}
}

func runHistorySelect(cmd *cobra.Command, args []string) {
	c := initContext()
	defer c.Close()

	version, err := strconv.Atoi(args[0])
	if err != nil {
		exitError("invalid version %q", args[0])
	}

	// v0 is the original, vN is history[N-1].
	if err := c.State.SetCursor(version - 1); err != nil {
		exitError("%v", err)
	}
	color.Green("cursor at v%d", version)
}

func runHistoryDelete(cmd *cobra.Command, args []string) {
	c := initContext()
	defer c.Close()

	img := c.State.Selected()
	if img == nil {
		exitError("no image selected")
	}
	version, err := strconv.Atoi(args[0])
	if err != nil || version < 1 {
		exitError("invalid version %q", args[0])
	}

	cursor, err := c.State.DeleteHistoryEntry(img.ID, version-1)
	if err != nil {
		exitError("%v", err)
	}
	color.Yellow("deleted v%d and later; cursor at v%d", version, cursor+1)
}

func runHistoryReset(cmd *cobra.Command, args []string) {
	c := initContext()
	defer c.Close()

	img := c.State.Selected()
	if img == nil {
		exitError("no image selected")
	}
	if err := c.State.ResetHistory(img.ID); err != nil {
		exitError("%v", err)
	}
	color.Yellow("history cleared; %s is back at the original", img.Name)
}
