// Package cli interprets the browser's startup arguments.
package cli

import (
	"fmt"
	"io"
	"path/filepath"
)

// DefaultURL is opened when no URL is given on the command line.
const DefaultURL = "http://www.ubuntu.com"

const (
	flagHelpShort  = "-h"
	flagHelpLong   = "--help"
	flagChromeless = "--chromeless"
	flagFullscreen = "--fullscreen"
)

// Options is the startup configuration derived from the process arguments.
type Options struct {
	Help       bool
	Chromeless bool
	Fullscreen bool
	URL        string
	// HasURL reports whether URL came from a positional argument.
	HasURL bool
}

// Parse scans args (args[0] is the program name) for the known switches.
// Matching is exact and case-sensitive. Unknown tokens are ignored and the
// first positional token becomes the URL. Help suppresses everything else.
func Parse(args []string) Options {
	opts := Options{URL: DefaultURL}
	if len(args) < 2 {
		return opts
	}

	for _, arg := range args[1:] {
		switch arg {
		case flagHelpShort, flagHelpLong:
			return Options{Help: true, URL: DefaultURL}
		case flagChromeless:
			opts.Chromeless = true
		case flagFullscreen:
			opts.Fullscreen = true
		default:
			if !opts.HasURL && isPositional(arg) {
				opts.URL = arg
				opts.HasURL = true
			}
		}
	}

	return opts
}

// isPositional rejects switch-looking typos so they never become the URL.
func isPositional(arg string) bool {
	return arg != "" && arg[0] != '-'
}

// WriteUsage prints the help text for binary.
func WriteUsage(w io.Writer, binary string) error {
	name := filepath.Base(binary)
	if name == "" || name == "." {
		name = "webbrowser"
	}
	_, err := fmt.Fprintf(w, `Usage: %s [-h|--help] [--chromeless] [--fullscreen] [URL]

Options:
  -h, --help      display this help message and exit
  --chromeless    do not display any chrome (web application mode)
  --fullscreen    display full screen

If no URL is given, %s is opened.
`, name, DefaultURL)

	return err
}
