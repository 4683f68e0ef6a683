package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"
)

var bannerLines = []struct {
	text  string
	color string
}{
	{`  __      __                    `, "#38bdf8"},
	{` /  \    /  \ ____ _____ ___  __ ____  `, "#22d3ee"},
	{` \   \/\/   // __ \\__  \\  \/ // __ \ `, "#2dd4bf"},
	{`  \        /\  ___/ / __ \\   /\  ___/ `, "#34d399"},
	{`   \__/\  /  \___  >____  /\_/  \___  >`, "#4ade80"},
	{`        \/       \/     \/          \/ `, "#a3e635"},
}

// PrintBanner writes the Weave banner followed by the version to w.
func PrintBanner(w io.Writer, version string) {
	out := termenv.NewOutput(w)
	fmt.Fprintln(w)
	for _, l := range bannerLines {
		fmt.Fprintln(w, out.String(l.text).Foreground(out.Color(l.color)))
	}
	if v := strings.TrimSpace(version); v != "" {
		fmt.Fprintln(w, out.String("  v"+v).Faint())
	}
	fmt.Fprintln(w)
}
