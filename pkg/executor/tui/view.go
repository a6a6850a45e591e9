package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/entrhq/scout/pkg/config"
	"github.com/entrhq/scout/pkg/ui"
)

// View renders the entire TUI interface.
// This is called by Bubble Tea whenever the UI needs to be redrawn.
func (m *model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	// Build header and status sections
	header := m.buildHeader()
	tips := m.buildTips()
	topStatus := m.buildTopStatus()
	loadingIndicator := m.buildLoadingIndicator()
	inputBox := m.buildInputBox()
	bottomBar := m.buildBottomBar()

	// Build viewport section
	viewportSection := m.viewport.View()

	// Assemble the base UI
	baseView := m.assembleBaseView(header, tips, topStatus, viewportSection, loadingIndicator, inputBox, bottomBar)

	// Layer overlays
	return m.applyOverlays(baseView)
}

// buildHeader renders the ASCII art header
func (m *model) buildHeader() string {
	if m.header != "" {
		return headerStyle.Render(ui.GenerateASCIIArt(m.header))
	}
	return headerStyle.Render(`
	███████╗ ██████╗ ██████╗ ██╗   ██╗████████╗
	██╔════╝██╔════╝██╔═══██╗██║   ██║╚══██╔══╝
	███████╗██║     ██║   ██║██║   ██║   ██║
	╚════██║██║     ██║   ██║██║   ██║   ██║
	███████║╚██████╗╚██████╔╝╚██████╔╝   ██║
	╚══════╝ ╚═════╝ ╚═════╝  ╚═════╝    ╚═╝`)
}

// buildTips renders usage tips
func (m *model) buildTips() string {
	return tipsStyle.Render(`  Tips: Ask about the page • Alt+Enter for new line • Enter to send • Ctrl+Y to copy reply • Ctrl+K for commands • Ctrl+C to exit`)
}

// buildTopStatus renders the loaded source status bar
func (m *model) buildTopStatus() string {
	if !m.source.loaded {
		return statusBarStyle.Render(" No source loaded. Use /load <url> or /open <path> to begin.")
	}

	label := m.source.title
	if label == "" {
		label = m.source.sourceID
	}
	if maxLabel := m.width - 40; maxLabel > 10 {
		if runes := []rune(label); len(runes) > maxLabel {
			label = string(runes[:maxLabel-3]) + "..."
		}
	}

	status := fmt.Sprintf(" 📄 %s (%d page links, %d file links", label, m.source.linkCount, m.source.fileCount)
	if m.source.truncated {
		status += ", truncated"
	}
	status += ")"
	return statusBarStyle.Render(status)
}

// buildLoadingIndicator renders the loading spinner when agent is busy
func (m *model) buildLoadingIndicator() string {
	if !m.agentBusy {
		return ""
	}
	loadingMsg := fmt.Sprintf("%s %s", m.spinner.View(), m.currentLoadingMessage)
	loadingStyle := lipgloss.NewStyle().
		Foreground(skyBlue).
		Width(m.width-4).
		Padding(0, 2)
	return loadingStyle.Render(loadingMsg)
}

// buildInputBox renders the text input area
func (m *model) buildInputBox() string {
	return inputBoxStyle.Width(m.width - 4).Render(m.textarea.View())
}

// buildBottomBar renders the bottom status bar with token usage
func (m *model) buildBottomBar() string {
	bottomLeft := "scout"
	bottomCenter := "Enter to send • Alt+Enter for new line"
	bottomRight := m.buildTokenDisplay()

	totalUsed := len(bottomLeft) + len(bottomCenter) + len(bottomRight)
	leftPadding := (m.width - totalUsed) / 3
	rightPadding := m.width - totalUsed - leftPadding*2
	if leftPadding < 2 {
		leftPadding = 2
	}
	if rightPadding < 2 {
		rightPadding = 2
	}

	return statusBarStyle.Width(m.width).Render(
		bottomLeft +
			strings.Repeat(" ", leftPadding) +
			bottomCenter +
			strings.Repeat(" ", rightPadding) +
			bottomRight,
	)
}

// buildTokenDisplay renders the token usage statistics
func (m *model) buildTokenDisplay() string {
	if uiCfg := config.GetUI(); uiCfg != nil && !uiCfg.GetShowContextMeter() {
		return "Scout Agent"
	}
	if m.totalTokens == 0 {
		return "Scout Agent"
	}

	contextStr := formatTokenCount(m.currentContextTokens)
	if m.maxContextTokens > 0 {
		contextStr = fmt.Sprintf("%s/%s", contextStr, formatTokenCount(m.maxContextTokens))
		percentage := float64(m.currentContextTokens) / float64(m.maxContextTokens) * 100
		if percentage >= 80 {
			contextStr = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Render(contextStr)
		}
	}

	return fmt.Sprintf("◆ Context: %s | Input: %s | Output: %s | Total: %s",
		contextStr,
		formatTokenCount(m.totalPromptTokens),
		formatTokenCount(m.totalCompletionTokens),
		formatTokenCount(m.totalTokens))
}

// assembleBaseView combines all UI components into the base view
func (m *model) assembleBaseView(header, tips, topStatus, viewportSection, loadingIndicator, inputBox, bottomBar string) string {
	if m.agentBusy {
		return lipgloss.JoinVertical(
			lipgloss.Left,
			header,
			tips,
			topStatus,
			"",
			viewportSection,
			loadingIndicator,
			inputBox,
			bottomBar,
		)
	}
	return lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		tips,
		topStatus,
		"",
		viewportSection,
		inputBox,
		bottomBar,
	)
}

// applyOverlays layers all active overlays on top of the base view
func (m *model) applyOverlays(baseView string) string {
	if m.overlay.isActive() {
		baseView = renderOverlay(baseView, m.overlay.overlay, m.width, m.height)
	}

	if m.commandPalette.IsActive() {
		paletteContent := m.commandPalette.Render(m.width)
		baseView = renderToastOverlay(baseView, paletteContent)
	}

	// Add toast notification as overlay if active and not expired
	if m.toast != nil && m.toast.active && time.Now().Before(m.toast.showUntil) {
		toastContent := m.renderToast()
		baseView = renderToastOverlay(baseView, toastContent)
	}

	return baseView
}

// renderToast renders a toast notification
func (m *model) renderToast() string {
	if m.toast == nil || !m.toast.active || time.Now().After(m.toast.showUntil) {
		return ""
	}

	// Create box with border
	boxWidth := m.width - 4
	if boxWidth < 40 {
		boxWidth = 40
	}

	var content strings.Builder

	// Icon and message
	header := fmt.Sprintf("%s %s", m.toast.icon, m.toast.message)
	content.WriteString(header)
	content.WriteString("\n")

	// Details
	if m.toast.details != "" {
		content.WriteString(m.toast.details)
	}

	// Create styled box
	borderColor := skyBlue
	if m.toast.isError {
		borderColor = lipgloss.Color("203") // Red color for errors
	}

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor).
		Padding(0, 1).
		Width(boxWidth)

	return "\n" + boxStyle.Render(content.String()) + "\n"
}

// showToast displays a toast notification to the user
func (m *model) showToast(message, details, icon string, isError bool) {
	if m.toast == nil {
		m.toast = &toastNotification{}
	}
	m.toast.active = true
	m.toast.message = message
	m.toast.details = details
	m.toast.icon = icon
	m.toast.isError = isError
	m.toast.showUntil = time.Now().Add(3 * time.Second)
}
