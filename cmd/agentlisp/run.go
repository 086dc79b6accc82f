package main

import (
	"fmt"
	"os"

	"github.com/aretw0/agentlisp/internal/cli"
	"github.com/spf13/cobra"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run [program]",
	Short: "Run a program interactively",
	Long: `Evaluates an AgentLisp program, answering its effects on the terminal.
With --session the state is persisted at every boundary, so an interrupted
run can be picked up again with the same session ID.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		configPath, _ := cmd.Flags().GetString("config")
		jsonMode, _ := cmd.Flags().GetBool("json")
		headless, _ := cmd.Flags().GetBool("headless")
		debug, _ := cmd.Flags().GetBool("debug")
		plain, _ := cmd.Flags().GetBool("plain")
		sessionID, _ := cmd.Flags().GetString("session")
		fresh, _ := cmd.Flags().GetBool("fresh")
		keep, _ := cmd.Flags().GetBool("keep")
		store, _ := cmd.Flags().GetString("store")

		if jsonMode && headless {
			fmt.Println("Error: --json and --headless cannot be used together.")
			os.Exit(1)
		}

		opts := cli.RunOptions{
			ProgramPath:   programArg(args),
			JSON:          jsonMode,
			Headless:      headless,
			Debug:         debug,
			Plain:         plain,
			SessionID:     sessionID,
			Fresh:         fresh,
			KeepCompleted: keep,
			ConfigPath:    configPath,
			Store:         store,
		}

		if err := cli.Execute(opts); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().Bool("json", false, "Run in JSON mode (NDJSON input/output)")
	runCmd.Flags().Bool("headless", false, "Run without input; suspend at the first read/ask")
	runCmd.Flags().String("store", "", "Override the session store backend (memory, file, redis)")
	runCmd.Flags().Bool("debug", false, "Enable debug logging and step tracing")
	runCmd.Flags().Bool("plain", false, "Disable markdown rendering and the banner")
	runCmd.Flags().StringP("session", "s", "", "Session ID for persistent state")
	runCmd.Flags().Bool("fresh", false, "Discard any saved state for the session before running")
	runCmd.Flags().Bool("keep", false, "Keep the session state after the program completes")

	// Make 'run' the default if no command is provided
	rootCmd.Run = runCmd.Run
	rootCmd.Args = runCmd.Args
	rootCmd.Flags().AddFlagSet(runCmd.Flags())
}
