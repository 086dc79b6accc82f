package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "agentlisp",
	Short: "AgentLisp is a resumable evaluator for effectful programs",
	Long: `AgentLisp runs small Lisp programs that suspend at their effect boundaries
(read, write, tell, ask) so the host can answer them, persist the session,
and resume later — even in a different process.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "", "Path to the config file (default .agentlisp.yaml)")
}

// programArg resolves the program path from the first positional argument,
// falling back to main.alisp.
func programArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return "main.alisp"
}
