package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information (injected at build time via ldflags)
var (
	AppVersion = "development"
	BuildTime  = "unknown"
	GitCommit  = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("site %s\n", AppVersion)
		fmt.Printf("Build Time: %s\n", BuildTime)
		fmt.Printf("Git Commit: %s\n", GitCommit)

		if os.Getenv("GEMINI_API_KEY") == "" {
			fmt.Println()
			fmt.Println("Hint: GEMINI_API_KEY is not set; the assistant will not start")
		}
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
