package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the surveylogic banner to w.
func PrintBanner(w io.Writer) {
	p := termenv.ColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{`  ___ _  _ _ ____   _____ _   _    ___   ___ ___ ___ `, "#818cf8"},
		{` / __| || | '_\ \ / / -_) || |  | |  / _ \/ _ |_ _/ __|`, "#a78bfa"},
		{` \__ \ || | |  \ V /\___|\_, |  | |_| (_) \__ || | (__ `, "#e879f9"},
		{` |___/\_,_|_|   \_/      |__/   |____\___/|___/___\___|`, "#fb7185"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}
