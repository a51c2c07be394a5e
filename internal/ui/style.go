package ui

import "github.com/fatih/color"

// Sprint color functions for building styled strings.
var (
	Bold        = color.New(color.Bold).SprintFunc()
	Dim         = color.New(color.Faint).SprintFunc()
	Cyan        = color.New(color.FgCyan).SprintFunc()
	Green       = color.New(color.FgGreen).SprintFunc()
	Red         = color.New(color.FgRed).SprintFunc()
	Yellow      = color.New(color.FgYellow).SprintFunc()
	BoldCyan    = color.New(color.Bold, color.FgCyan).SprintFunc()
	BoldGreen   = color.New(color.Bold, color.FgGreen).SprintFunc()
	BoldRed     = color.New(color.Bold, color.FgRed).SprintFunc()
	BoldYellow  = color.New(color.Bold, color.FgYellow).SprintFunc()
	BoldMagenta = color.New(color.Bold, color.FgMagenta).SprintFunc()
	BoldWhite   = color.New(color.Bold, color.FgWhite).SprintFunc()
)

// StatusIcon returns a colored workflow-state icon for compact tables.
func StatusIcon(status string) string {
	switch status {
	case "Completed":
		return Green("✓")
	case "In Progress":
		return Cyan("●")
	case "Review":
		return Yellow("◆")
	case "Cancelled":
		return Dim("⊘")
	default:
		return Dim("◌")
	}
}

// CriticalMark flags zero-slack tasks in schedule tables.
func CriticalMark(critical bool) string {
	if critical {
		return BoldYellow("⚡")
	}
	return " "
}

// BlockedMark flags tasks waiting on incomplete predecessors.
func BlockedMark(blocked bool) string {
	if blocked {
		return Red("⛔")
	}
	return " "
}
