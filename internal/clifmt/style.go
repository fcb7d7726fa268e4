package clifmt

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"
)

const (
	ansiReset  = "\x1b[0m"
	ansiBold   = "\x1b[1m"
	ansiDim    = "\x1b[2m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiCyan   = "\x1b[36m"
)

func colorEnabled() bool {
	if strings.TrimSpace(os.Getenv("NO_COLOR")) != "" {
		return false
	}
	return term.IsTerminal(int(os.Stdout.Fd()))
}

func wrapANSI(code, s string) string {
	if !colorEnabled() {
		return s
	}
	return code + s + ansiReset
}

func Headerf(format string, args ...any) string {
	return wrapANSI(ansiBold, fmt.Sprintf(format, args...))
}

func Key(s string) string { return wrapANSI(ansiCyan, s) }

func Success(s string) string { return wrapANSI(ansiGreen, s) }

func Warn(s string) string { return wrapANSI(ansiYellow, s) }

func Dim(s string) string { return wrapANSI(ansiDim, s) }
