package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/mdninja"
	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of mdninja",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "mdninja v%s\n", strings.TrimSpace(mdninja.Version))
		},
	}
}
