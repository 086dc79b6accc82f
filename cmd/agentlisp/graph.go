package main

import (
	"fmt"
	"os"

	"github.com/aretw0/agentlisp/internal/compiler"
	"github.com/aretw0/agentlisp/internal/presentation/graph"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph [program]",
	Short: "Export the call graph visualization",
	Long: `Inspects the program and outputs a Mermaid diagram (graph TD) of its
functions, calls and effects. Only the syntax needs to be valid: a program
still missing its main function can be graphed while being written.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		output, err := generateGraph(programArg(args))
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Print(output)
	},
}

// generateGraph parses the program file without validating it, so partial
// programs still render.
func generateGraph(path string) (string, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading program: %w", err)
	}

	program, err := compiler.ParseProgram(string(src))
	if err != nil {
		return "", fmt.Errorf("parsing program: %w", err)
	}

	return graph.GenerateMermaid(program, nil), nil
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
