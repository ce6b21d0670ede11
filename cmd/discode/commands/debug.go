package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/opencode-ai/discode/internal/config"
)

var debugCmd = &cobra.Command{
	Use:   "debug",
	Short: "Debug utilities",
	Long:  `Debug utilities for troubleshooting discode configuration and setup.`,
}

var debugConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runDebugConfig,
}

var debugPathsCmd = &cobra.Command{
	Use:   "paths",
	Short: "Show system paths",
	RunE:  runDebugPaths,
}

func init() {
	debugCmd.AddCommand(debugConfigCmd)
	debugCmd.AddCommand(debugPathsCmd)
}

func runDebugConfig(cmd *cobra.Command, args []string) error {
	workDir, err := os.Getwd()
	if err != nil {
		return err
	}

	cfg, files, err := config.Load(workDir)
	if err != nil {
		return err
	}

	if len(files) > 0 {
		fmt.Println("Loaded from:")
		for _, f := range files {
			fmt.Printf("  %s\n", f)
		}
		fmt.Println()
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	fmt.Println(string(data))
	return nil
}

func runDebugPaths(cmd *cobra.Command, args []string) error {
	paths := config.GetPaths()

	fmt.Println("discode System Paths:")
	fmt.Println()
	fmt.Printf("  Config:  %s\n", paths.Config)
	fmt.Printf("  Data:    %s\n", paths.Data)
	fmt.Printf("  Cache:   %s\n", paths.Cache)
	fmt.Printf("  State:   %s\n", paths.State)
	fmt.Println()
	fmt.Printf("  Global config: %s\n", config.GlobalConfigPath())

	return nil
}
