package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// HelpModel is the static key reference screen
type HelpModel struct{}

// NewHelpModel creates a new help model
func NewHelpModel() HelpModel {
	return HelpModel{}
}

// Init initializes the help screen
func (m HelpModel) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m HelpModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	return m, nil
}

// View renders the help screen
func (m HelpModel) View() string {
	sections := []string{
		cardTitleStyle.Render("Ayuda"),
		"",
		metricLabelStyle.Render("  Navegación"),
		"  " + RenderKeyHelp("1-5", "cambiar de pantalla"),
		"  " + RenderKeyHelp("g", "gimnasio"),
		"  " + RenderKeyHelp("j/k", "mover el cursor"),
		"  " + RenderKeyHelp("r", "actualizar datos"),
		"  " + RenderKeyHelp("q", "salir"),
		"",
		metricLabelStyle.Render("  Entrenamiento"),
		"  " + RenderKeyHelp("enter", "registrar la serie actual"),
		"  " + RenderKeyHelp("s", "saltar el descanso"),
		"  " + RenderKeyHelp("p", "pausar el descanso"),
		"  " + RenderKeyHelp("+/-", "ajustar el descanso de a 15s"),
		"  " + RenderKeyHelp("1-4", "descanso de 30/60/90/120s"),
		"  " + RenderKeyHelp("f", "finalizar y enviar"),
		"  " + RenderKeyHelp("c", "cancelar la sesión"),
		"",
		statusStyle.Render("  El progreso se guarda en el dispositivo: si cerrás la app"),
		statusStyle.Render("  durante una sesión, al volver la retomás donde estabas."),
		"",
		statusStyle.Render("  esc para volver"),
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}
