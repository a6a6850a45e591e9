package overlay

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/entrhq/scout/pkg/executor/tui/types"
)

// paletteVisibleLimit is the number of commands shown before the
// "keep typing" hint takes over.
const paletteVisibleLimit = 5

// CommandItem represents a command in the palette. Args holds an optional
// placeholder hint rendered after the name, e.g. "<url>" for /load.
type CommandItem struct {
	Name        string
	Description string
	Args        string
}

// CommandPalette manages command suggestions and selection
type CommandPalette struct {
	commands         []CommandItem
	filteredCommands []CommandItem
	selectedIndex    int
	filter           string
	active           bool
}

// NewCommandPalette creates a new command palette
func NewCommandPalette(commands []CommandItem) *CommandPalette {
	return &CommandPalette{
		commands:         commands,
		filteredCommands: commands,
	}
}

// Activate shows the command palette
func (p *CommandPalette) Activate() {
	p.active = true
	p.filter = ""
	p.selectedIndex = 0
	p.updateFiltered()
}

// Deactivate hides the command palette
func (p *CommandPalette) Deactivate() {
	p.active = false
	p.filter = ""
	p.selectedIndex = 0
}

// UpdateFilter updates the filter string and refreshes filtered commands
func (p *CommandPalette) UpdateFilter(filter string) {
	newFilter := strings.ToLower(strings.TrimSpace(filter))
	// Only reset selection if the filter actually changed
	if newFilter != p.filter {
		p.filter = newFilter
		p.selectedIndex = 0
		p.updateFiltered()
	}
}

// updateFiltered rebuilds the filtered list. Name matches rank before
// description-only matches so typing a command prefix always surfaces the
// intended command at the top.
func (p *CommandPalette) updateFiltered() {
	if p.filter == "" {
		p.filteredCommands = p.commands
		return
	}

	var nameMatches, descMatches []CommandItem
	for _, cmd := range p.commands {
		switch {
		case strings.Contains(strings.ToLower(cmd.Name), p.filter):
			nameMatches = append(nameMatches, cmd)
		case strings.Contains(strings.ToLower(cmd.Description), p.filter):
			descMatches = append(descMatches, cmd)
		}
	}
	p.filteredCommands = append(nameMatches, descMatches...)

	// Keep the selection inside the narrowed list
	switch {
	case len(p.filteredCommands) == 0:
		p.selectedIndex = 0
	case p.selectedIndex >= len(p.filteredCommands):
		p.selectedIndex = len(p.filteredCommands) - 1
	case p.selectedIndex < 0:
		p.selectedIndex = 0
	}
}

// SelectNext moves selection down
func (p *CommandPalette) SelectNext() {
	if len(p.filteredCommands) == 0 {
		return
	}
	p.selectedIndex = (p.selectedIndex + 1) % len(p.filteredCommands)
}

// SelectPrev moves selection up
func (p *CommandPalette) SelectPrev() {
	if len(p.filteredCommands) == 0 {
		return
	}
	p.selectedIndex--
	if p.selectedIndex < 0 {
		p.selectedIndex = len(p.filteredCommands) - 1
	}
}

// GetSelected returns the currently selected command
func (p *CommandPalette) GetSelected() *CommandItem {
	if len(p.filteredCommands) == 0 ||
		p.selectedIndex < 0 ||
		p.selectedIndex >= len(p.filteredCommands) {
		return nil
	}
	return &p.filteredCommands[p.selectedIndex]
}

// renderRow renders a single command line, highlighting the selected row.
func (p *CommandPalette) renderRow(cmd CommandItem, selected bool, width int) string {
	prefix := "  "
	if selected {
		prefix = "> "
	}

	nameStyle := lipgloss.NewStyle().
		Foreground(types.SkyBlue).
		Bold(selected)
	hintStyle := lipgloss.NewStyle().
		Foreground(types.MutedGray).
		Italic(true)
	descStyle := lipgloss.NewStyle().
		Foreground(types.MutedGray)

	line := prefix + nameStyle.Render("/"+cmd.Name)
	if cmd.Args != "" {
		line += " " + hintStyle.Render(cmd.Args)
	}
	line += "  " + descStyle.Render(cmd.Description)

	if selected {
		return lipgloss.NewStyle().
			Background(types.PaletteBg).
			Width(width - 2).
			PaddingLeft(1).
			Render(line)
	}
	return line
}

// Render renders the command palette
func (p *CommandPalette) Render(width int) string {
	if !p.active || len(p.filteredCommands) == 0 {
		return ""
	}

	// 80% of screen, clamped to a readable band
	paletteWidth := width * 80 / 100
	if paletteWidth > 80 {
		paletteWidth = 80
	}
	if paletteWidth < 40 {
		paletteWidth = 40
	}

	var sb strings.Builder

	headerStyle := lipgloss.NewStyle().
		Foreground(types.SkyBlue).
		Bold(true).
		PaddingLeft(1)
	sb.WriteString(headerStyle.Render("Available Commands:"))
	sb.WriteString("\n")

	visible := len(p.filteredCommands)
	if visible > paletteVisibleLimit {
		visible = paletteVisibleLimit
	}
	for i := 0; i < visible; i++ {
		sb.WriteString(p.renderRow(p.filteredCommands[i], i == p.selectedIndex, paletteWidth))
		sb.WriteString("\n")
	}

	if len(p.filteredCommands) > visible {
		footerStyle := lipgloss.NewStyle().
			Foreground(types.MutedGray).
			Italic(true).
			PaddingLeft(1)
		sb.WriteString(footerStyle.Render("... and more. Keep typing to filter."))
		sb.WriteString("\n")
	}

	paletteStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(types.SkyBlue).
		Width(paletteWidth).
		Padding(0, 1)

	return paletteStyle.Render(sb.String())
}

// IsActive returns whether the palette is active
func (p *CommandPalette) IsActive() bool {
	return p.active
}
