package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/agentlisp"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of agentlisp",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("agentlisp version %s\n", strings.TrimSpace(agentlisp.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
