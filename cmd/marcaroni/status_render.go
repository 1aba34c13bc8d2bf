package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/mutronic/marcaroni/internal/preflight"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiCyan   = "\x1b[36m"
)

var statusStyles = map[statusKind]struct{ label, color string }{
	statusInfo:  {"INFO", ansiCyan},
	statusOK:    {"OK", ansiGreen},
	statusWarn:  {"WARN", ansiYellow},
	statusError: {"ERROR", ansiRed},
}

// statusLabelWidth fits "Imported from:" and the preflight check names.
const statusLabelWidth = 20

func paint(s, color string, colorize bool) string {
	if !colorize || color == "" {
		return s
	}
	return color + s + ansiReset
}

// renderStatusLine formats "  Label:   [KIND] message", coloured by kind.
func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	style, ok := statusStyles[kind]
	if !ok {
		style = statusStyles[statusInfo]
	}
	status := "[" + style.label + "]"
	if message != "" {
		status += " " + message
	}
	return paint(fmt.Sprintf("  %-*s %s", statusLabelWidth, label+":", status), style.color, colorize)
}

// renderSectionHeader underlines title with dashes.
func renderSectionHeader(title string, colorize bool) []string {
	heading := "== " + strings.TrimSpace(title) + " =="
	return []string{
		paint(heading, ansiCyan, colorize),
		paint(strings.Repeat("-", len(heading)), ansiCyan, colorize),
	}
}

func preflightLines(results []preflight.Result, colorize bool) []string {
	lines := make([]string, len(results))
	for i, r := range results {
		kind := statusOK
		if !r.Passed {
			kind = statusError
		} else if r.Warning {
			kind = statusWarn
		}
		lines[i] = renderStatusLine(r.Name, kind, r.Detail, colorize)
	}
	return lines
}

// shouldColorize is true only for terminals; reports piped to a file stay plain.
func shouldColorize(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
