// Package output provides consistent CLI output formatting.
//
// Color is used only when writing to a terminal and NO_COLOR is unset.
package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

// Writer provides formatted output for CLI.
type Writer struct {
	out      io.Writer
	useColor bool
	styles   Styles
}

// New creates a new output Writer. Color is enabled for terminals.
func New(out io.Writer) *Writer {
	useColor := IsTTY(out) && !DetectNoColor()
	w := &Writer{out: out, useColor: useColor, styles: NoColorStyles()}
	if useColor {
		w.styles = DefaultStyles()
	}
	return w
}

// Out returns the underlying writer.
func (w *Writer) Out() io.Writer {
	return w.out
}

// Status prints a status message with an icon.
// Errors from writing are intentionally ignored for console output.
func (w *Writer) Status(icon, msg string) {
	if icon != "" {
		_, _ = fmt.Fprintf(w.out, "%s %s\n", icon, msg)
	} else {
		_, _ = fmt.Fprintf(w.out, "   %s\n", msg)
	}
}

// Statusf prints a formatted status message with an icon.
func (w *Writer) Statusf(icon, format string, args ...any) {
	w.Status(icon, fmt.Sprintf(format, args...))
}

// Success prints a success message with checkmark.
func (w *Writer) Success(msg string) {
	w.Status(w.render(w.styles.Success, "✓"), msg)
}

// Successf prints a formatted success message.
func (w *Writer) Successf(format string, args ...any) {
	w.Success(fmt.Sprintf(format, args...))
}

// Warning prints a warning message.
func (w *Writer) Warning(msg string) {
	w.Status(w.render(w.styles.Warning, "!"), msg)
}

// Warningf prints a formatted warning message.
func (w *Writer) Warningf(format string, args ...any) {
	w.Warning(fmt.Sprintf(format, args...))
}

// Error prints an error message.
func (w *Writer) Error(msg string) {
	w.Status(w.render(w.styles.Error, "✗"), msg)
}

// Errorf prints a formatted error message.
func (w *Writer) Errorf(format string, args ...any) {
	w.Error(fmt.Sprintf(format, args...))
}

// Header prints a section title.
func (w *Writer) Header(title string) {
	_, _ = fmt.Fprintln(w.out, w.render(w.styles.Header, title))
}

// KV prints aligned "label  value" rows.
func (w *Writer) KV(rows [][2]string) {
	width := 0
	for _, r := range rows {
		width = max(width, len(r[0]))
	}
	for _, r := range rows {
		label := r[0] + ":" + strings.Repeat(" ", width-len(r[0]))
		_, _ = fmt.Fprintf(w.out, "  %s %s\n", w.render(w.styles.Label, label), w.render(w.styles.Value, r[1]))
	}
}

func (w *Writer) render(style lipgloss.Style, s string) string {
	if !w.useColor {
		return s
	}
	return style.Render(s)
}

// Newline prints an empty line.
func (w *Writer) Newline() {
	_, _ = fmt.Fprintln(w.out)
}

// Progress prints a progress bar with message.
func (w *Writer) Progress(current, total int, msg string) {
	if total <= 0 {
		return
	}

	pct := float64(current) / float64(total) * 100
	bar := renderProgressBar(current, total, 30)

	// Use carriage return for in-place updates
	_, _ = fmt.Fprintf(w.out, "\r[%s] %.0f%% %s", bar, pct, msg)

	if current >= total {
		_, _ = fmt.Fprintln(w.out)
	}
}

// renderProgressBar creates a text progress bar.
func renderProgressBar(current, total, width int) string {
	if total <= 0 {
		return strings.Repeat("░", width)
	}

	filled := int(float64(current) / float64(total) * float64(width))
	filled = min(max(filled, 0), width)

	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// Bytes formats n as a human-readable size, e.g. "1.2 MB".
func Bytes(n int) string {
	return humanize.Bytes(uint64(max(n, 0)))
}

// Count formats n with thousands separators, e.g. "1,234,567".
func Count(n int) string {
	return humanize.Comma(int64(n))
}

// Ratio formats a/b as "12.34x", or "-" when b is zero.
func Ratio(a, b int) string {
	if b == 0 {
		return "-"
	}
	return humanize.FormatFloat("#,###.##", float64(a)/float64(b)) + "x"
}
