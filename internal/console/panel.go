package console

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Tank level marks flagged on the panel.
const (
	HighLevelMark = 6.5
	LowLevelMark  = 3.5
)

var (
	panelStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#00FFFF")).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF0000"))

	alertStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF0000"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFF00"))

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#00FF00"))

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

// LevelFlag classifies a tank level for display.
func LevelFlag(level float64) string {
	switch {
	case level > HighLevelMark:
		return "HIGH"
	case level < LowLevelMark:
		return "LOW"
	default:
		return "normal"
	}
}

// RenderPanel draws the status panel for an operator.
func RenderPanel(username string, emergencyAccess bool, st PanelStatus) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("CRITICAL SYSTEM STATUS"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "Operator: %s\n", username)
	if emergencyAccess {
		b.WriteString(alertStyle.Render("EMERGENCY MODE - LEGACY PRIVILEGED ACCESS"))
		b.WriteString("\n")
	}

	flag := LevelFlag(st.TankLevel)
	var flagText string
	switch flag {
	case "HIGH":
		flagText = alertStyle.Render("HIGH LEVEL")
	case "LOW":
		flagText = warnStyle.Render("LOW LEVEL")
	default:
		flagText = okStyle.Render("normal")
	}
	fmt.Fprintf(&b, "Tank:         %.2f L (max %.2f) %s\n", st.TankLevel, st.TankMax, flagText)
	fmt.Fprintf(&b, "Inlet valve:  %s\n", onOff(st.InletOpen, "OPEN", "CLOSED"))
	fmt.Fprintf(&b, "Outlet valve: %s\n", onOff(st.OutletOpen, "OPEN", "CLOSED"))
	fmt.Fprintf(&b, "Bottle:       %.2f L (max %.2f)\n", st.BottleLevel, st.BottleMax)
	fmt.Fprintf(&b, "Conveyor:     %s", onOff(st.ConveyorOn, "RUNNING", "STOPPED"))

	return panelStyle.Render(b.String())
}

// RenderMenu lists the commands and the control entries.
func RenderMenu() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("EMERGENCY COMMANDS"))
	b.WriteString("\n")
	for _, c := range commands {
		fmt.Fprintf(&b, "%d) %s", int(c.ID), c.Description)
		if c.Destructive {
			b.WriteString(mutedStyle.Render(" (confirm)"))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n0) Refresh\n99) Logout\n")
	return b.String()
}

func onOff(on bool, yes, no string) string {
	if on {
		return okStyle.Render(yes)
	}
	return alertStyle.Render(no)
}
