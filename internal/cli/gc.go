package cli

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var gcCmd = &cobra.Command{
	Use:   "gc",
	Short: "Remove blobs no longer referenced by the workspace",
	Long: `Deleted images and truncated history entries leave their bytes
behind in the blob store until the next save overwrites the record.
gc scans the store and removes everything the current record does
not reference.`,
	Run: runGC,
}

func runGC(cmd *cobra.Command, args []string) {
	c := initContext()
	defer c.Close()

	// Persist the latest state first so gc sees current references.
	c.Saver.Flush()

	result, err := c.Pipeline.GarbageCollect(context.Background())
	if err != nil {
		exitError("gc failed: %v", err)
	}

	fmt.Printf("scanned %d blobs, %d referenced\n", result.BlobsScanned, result.ReferencedKeys)
	if result.BlobsDeleted == 0 {
		fmt.Println("nothing to collect")
		return
	}
	color.Green("deleted %d orphaned blobs", result.BlobsDeleted)
}
