package main

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/aretw0/weave"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the weave version and the Go runtime it was built with",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		v := strings.TrimSpace(weave.Version)
		if short, _ := cmd.Flags().GetBool("short"); short {
			fmt.Fprintln(cmd.OutOrStdout(), v)
			return
		}
		fmt.Fprintf(cmd.OutOrStdout(), "weave %s (%s %s/%s)\n", v, runtime.Version(), runtime.GOOS, runtime.GOARCH)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.Flags().BoolP("short", "s", false, "Print only the version number")
}
