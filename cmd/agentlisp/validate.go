package main

import (
	"fmt"
	"os"

	"github.com/aretw0/agentlisp"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [program]",
	Short: "Check a program for consistency",
	Long:  `Parses the program and reports syntax errors, duplicate definitions, a missing main, or bad arities.`,
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runValidate(args); err != nil {
			fmt.Printf("Validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Program is valid! ✅")
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(args []string) error {
	engine, err := agentlisp.New(programArg(args))
	if err != nil {
		return err
	}

	for _, fn := range engine.Program().Functions {
		fmt.Printf("- %s/%d\n", fn.Name, fn.Arity())
	}
	return nil
}
