package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/surveylogic"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of surveylogic",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "surveylogic version %s\n", strings.TrimSpace(surveylogic.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
