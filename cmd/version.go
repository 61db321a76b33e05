package cmd

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// version is set via -ldflags at build time.
var version = "(devel)"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the build version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		short, _ := cmd.Flags().GetBool("short")
		fmt.Fprintln(cmd.OutOrStdout(), versionString(short))
	},
}

func init() {
	versionCmd.Flags().Bool("short", false, "Print only the version number")
}

// versionString falls back to module build info when ldflags were not set,
// which is the case for `go install`.
func versionString(short bool) string {
	v := version
	info, ok := debug.ReadBuildInfo()
	if v == "(devel)" && ok && info.Main.Version != "" {
		v = info.Main.Version
	}
	if short || !ok {
		return v
	}
	var rev, dirty string
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			rev = s.Value
		case "vcs.modified":
			if s.Value == "true" {
				dirty = "+dirty"
			}
		}
	}
	out := fmt.Sprintf("skillpath %s (%s)", v, info.GoVersion)
	if rev != "" {
		out += fmt.Sprintf(" commit %.12s%s", rev, dirty)
	}
	return out
}
