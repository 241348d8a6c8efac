package cli

import (
	"fmt"

	"github.com/chenyangcun/aiedit/internal/config"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new aiedit workspace",
	Long: `Initialize a new aiedit workspace in the current directory.
This creates a .aiedit directory holding the metadata database, the
blob store, and the workspace configuration.`,
	Run: runInit,
}

var initStorage string

func init() {
	initCmd.Flags().StringVar(&initStorage, "storage", config.StorageSQLite, "blob store backend: sqlite or fs")
}

func runInit(cmd *cobra.Command, args []string) {
	// Check if already initialized
	if _, err := config.FindRoot(); err == nil {
		exitError("aiedit workspace already exists")
	}

	cfg, err := config.Initialize(initStorage)
	if err != nil {
		exitError("failed to initialize workspace: %v", err)
	}

	fmt.Printf("Initialized empty aiedit workspace in .aiedit/\n")
	fmt.Printf("Blob storage: %s\n", cfg.Storage)
	fmt.Printf("\nSet %s and run 'aiedit import <file>' to get started.\n", cfg.APIKeyEnv)
}
