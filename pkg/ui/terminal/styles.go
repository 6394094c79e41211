package terminal

import "github.com/charmbracelet/lipgloss"

// Colors adapt to light and dark terminals
var (
	successColor = lipgloss.AdaptiveColor{Light: "#28A745", Dark: "#4CDD76"}
	warningColor = lipgloss.AdaptiveColor{Light: "#FFC107", Dark: "#FFD54F"}
	infoColor    = lipgloss.AdaptiveColor{Light: "#17A2B8", Dark: "#4DD0E1"}
	headingColor = lipgloss.AdaptiveColor{Light: "#212529", Dark: "#F8F9FA"}
	mutedColor   = lipgloss.AdaptiveColor{Light: "#6C757D", Dark: "#ADB5BD"}
)

var (
	headingStyle = lipgloss.NewStyle().Foreground(headingColor).Bold(true)
	doneStyle    = lipgloss.NewStyle().Foreground(successColor).Bold(true)
	nextStyle    = lipgloss.NewStyle().Foreground(infoColor).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(mutedColor)
	warningStyle = lipgloss.NewStyle().Foreground(warningColor).Bold(true)
)

// styler renders the shared layout with lipgloss
type styler struct{}

func (styler) Heading(s string) string { return headingStyle.Render(s) }
func (styler) Done(s string) string    { return doneStyle.Render(s) }
func (styler) Pending(s string) string { return s }
func (styler) Next(s string) string    { return nextStyle.Render(s) }
func (styler) Muted(s string) string   { return mutedStyle.Render(s) }
func (styler) Warning(s string) string { return warningStyle.Render(s) }
