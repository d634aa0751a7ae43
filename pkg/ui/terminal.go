package ui

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// ASCII logo for the application
const ASCIILogo = `
    ╔═══════════════════════════════════════════════════════╗
    ║   █████╗ ███████╗██████╗     ███████╗ ██████╗██████╗   ║
    ║  ██╔══██╗██╔════╝██╔══██╗    ██╔════╝██╔════╝██╔══██╗  ║
    ║  ███████║█████╗  ██║  ██║    ███████╗██║     ██████╔╝  ║
    ║  ██╔══██║██╔══╝  ██║  ██║    ╚════██║██║     ██╔══██╗  ║
    ║  ██║  ██║██║     ██████╔╝    ███████║╚██████╗██║  ██║  ║
    ║  ╚═╝  ╚═╝╚═╝     ╚═════╝     ╚══════╝ ╚═════╝╚═╝  ╚═╝  ║
    ║          AFDIAN ALBUM TO MARKDOWN EXPORTER             ║
    ╚═══════════════════════════════════════════════════════╝
`

var (
	outputMu sync.Mutex
	output   io.Writer = os.Stdout
	quiet    bool
	noColor  bool
)

// SetOutput redirects terminal output, mainly for tests
func SetOutput(w io.Writer) {
	outputMu.Lock()
	defer outputMu.Unlock()
	output = w
}

// Output returns the writer terminal output goes to
func Output() io.Writer {
	outputMu.Lock()
	defer outputMu.Unlock()
	return output
}

// SetQuietMode suppresses everything except errors
func SetQuietMode(q bool) {
	outputMu.Lock()
	defer outputMu.Unlock()
	quiet = q
}

// IsQuietMode reports whether quiet mode is on
func IsQuietMode() bool {
	outputMu.Lock()
	defer outputMu.Unlock()
	return quiet
}

// SetNoColor disables ANSI colors
func SetNoColor(n bool) {
	outputMu.Lock()
	defer outputMu.Unlock()
	noColor = n
}

// Color functions for terminal output
var (
	Cyan    = colorize("\033[36m%s\033[0m")
	Yellow  = colorize("\033[33m%s\033[0m")
	Red     = colorize("\033[31m%s\033[0m")
	Green   = colorize("\033[32m%s\033[0m")
	Magenta = colorize("\033[35m%s\033[0m")
	Dim     = colorize("\033[2m%s\033[0m")
)

// colorize returns a function that wraps text with ANSI color codes
func colorize(colorString string) func(string) string {
	return func(text string) string {
		outputMu.Lock()
		plain := noColor
		outputMu.Unlock()
		if plain {
			return text
		}
		return fmt.Sprintf(colorString, text)
	}
}

func printf(format string, args ...interface{}) {
	if IsQuietMode() {
		return
	}
	fmt.Fprintf(Output(), format, args...)
}

// PrintLogo prints the ASCII logo with color
func PrintLogo() {
	printf("%s", Cyan(ASCIILogo))
}

// PrintError prints an error message in red. It is shown in quiet mode too.
func PrintError(msg string, args ...interface{}) {
	if len(args) > 0 {
		fmt.Fprintln(Output(), Red(msg+": "+fmt.Sprintf("%v", args[0])))
	} else {
		fmt.Fprintln(Output(), Red(msg))
	}
}

// PrintSuccess prints a success message in green
func PrintSuccess(msg string) {
	printf("%s\n", Green(msg))
}

// PrintInfo prints an info message in cyan
func PrintInfo(label string, value string) {
	printf("%s: %s\n", Cyan(label), Yellow(value))
}

// PrintWarning prints a warning message in yellow
func PrintWarning(msg string, args ...interface{}) {
	if len(args) > 0 {
		printf("%s\n", Yellow(msg+": "+fmt.Sprintf("%v", args[0])))
	} else {
		printf("%s\n", Yellow(msg))
	}
}

// PrintHighlight prints a highlighted message in magenta
func PrintHighlight(msg string) {
	printf("%s\n", Magenta(msg))
}
