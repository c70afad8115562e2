package viz

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	Panel = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444466")).
		Padding(0, 1)

	Subtle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#666688"))

	MetricLabel = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888899")).
			Width(16)

	MetricValue = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00ccff")).
			Bold(true)

	KeyHint = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#666688")).
		Italic(true)

	SparkHigh = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ff88"))
	SparkMid  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffcc00"))
	SparkLow  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff4444"))
)

// Title renders a heading in the current theme.
func Title(s string) string {
	return lipgloss.NewStyle().Bold(true).Foreground(CurrentTheme.Primary).Render(s)
}

func ErrorText(s string) string {
	return lipgloss.NewStyle().Foreground(CurrentTheme.Error).Render(s)
}

// KeyValue renders one aligned "label value" row.
func KeyValue(label string, value any) string {
	return MetricLabel.Render(label) + MetricValue.Render(fmt.Sprint(value))
}

// ProgressBar renders a bar filled to percent, coloured by how full it is.
func ProgressBar(percent float64, width int) string {
	filled := min(max(int(percent*float64(width)), 0), width)
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	switch {
	case percent > 0.8:
		return SparkHigh.Render(bar)
	case percent > 0.4:
		return SparkMid.Render(bar)
	}
	return SparkLow.Render(bar)
}

// Sparkline renders values as a row of block characters, sampled to width.
func Sparkline(values []float64, width int) string {
	if len(values) == 0 || width <= 0 {
		return strings.Repeat("─", max(width, 0))
	}
	chars := []rune("▁▂▃▄▅▆▇█")

	lo, hi := values[0], values[0]
	for _, v := range values {
		lo, hi = min(lo, v), max(hi, v)
	}
	span := hi - lo
	if span == 0 {
		span = 1
	}

	step := max(len(values)/width, 1)
	var b strings.Builder
	for i := 0; i < width && i*step < len(values); i++ {
		norm := (values[i*step] - lo) / span
		b.WriteRune(chars[min(max(int(norm*float64(len(chars)-1)), 0), len(chars)-1)])
	}
	return b.String()
}

// Separator draws a muted rule with a centre mark.
func Separator(width int) string {
	mid := width / 2
	return Subtle.Render(strings.Repeat("─", max(mid-3, 0)) + " ◆ " + strings.Repeat("─", max(width-mid-3, 0)))
}
