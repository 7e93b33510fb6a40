package tui

import "github.com/charmbracelet/lipgloss"

type styles struct {
	tabActive   lipgloss.Style
	tabInactive lipgloss.Style
	heading     lipgloss.Style
	selected    lipgloss.Style
	done        lipgloss.Style
	category    lipgloss.Style
	muted       lipgloss.Style
	warn        lipgloss.Style
	bar         lipgloss.Style
}

// styles returns the palette for the current theme. Dark mode swaps the
// foreground accents; layout stays identical.
func (m *Model) styles() styles {
	if m.st.Settings().DarkMode {
		return styles{
			tabActive:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("117")),
			tabInactive: lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
			heading:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("117")),
			selected:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229")),
			done:        lipgloss.NewStyle().Faint(true).Strikethrough(true),
			category:    lipgloss.NewStyle().Foreground(lipgloss.Color("150")),
			muted:       lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
			warn:        lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
			bar:         lipgloss.NewStyle().Foreground(lipgloss.Color("110")),
		}
	}
	return styles{
		tabActive:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("26")),
		tabInactive: lipgloss.NewStyle().Foreground(lipgloss.Color("243")),
		heading:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("26")),
		selected:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("130")),
		done:        lipgloss.NewStyle().Faint(true).Strikethrough(true),
		category:    lipgloss.NewStyle().Foreground(lipgloss.Color("65")),
		muted:       lipgloss.NewStyle().Foreground(lipgloss.Color("243")),
		warn:        lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("160")),
		bar:         lipgloss.NewStyle().Foreground(lipgloss.Color("67")),
	}
}
