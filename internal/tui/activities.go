package tui

import (
	"context"
	"fmt"

	"villamitre/internal/api"
	"villamitre/internal/service"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ActivitiesModel is the club activities listing screen model
type ActivitiesModel struct {
	club       *service.ClubService
	activities []api.ClubActivity
	cursor     int
	cached     bool
	loading    bool
	err        error
}

// NewActivitiesModel creates a new activities model
func NewActivitiesModel(club *service.ClubService) ActivitiesModel {
	return ActivitiesModel{
		club:    club,
		loading: true,
	}
}

// Init initializes the activities screen
func (m ActivitiesModel) Init() tea.Cmd {
	return m.loadActivities
}

type activitiesLoadedMsg struct {
	activities []api.ClubActivity
	cached     bool
	err        error
}

func (m ActivitiesModel) loadActivities() tea.Msg {
	activities, cached, err := m.club.Activities(context.Background())
	return activitiesLoadedMsg{activities: activities, cached: cached, err: err}
}

// Update handles messages
func (m ActivitiesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case activitiesLoadedMsg:
		m.loading = false
		m.activities = msg.activities
		m.cached = msg.cached
		m.err = msg.err
		if m.cursor >= len(m.activities) {
			m.cursor = 0
		}

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.activities)-1 {
				m.cursor++
			}
		case "r":
			m.loading = true
			return m, m.loadActivities
		}
	}
	return m, nil
}

// View renders the activities listing
func (m ActivitiesModel) View() string {
	if m.loading {
		return "\n  Cargando actividades..."
	}

	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err)) +
			"\n" + statusStyle.Render("  Presioná 'r' para reintentar")
	}

	var sections []string
	sections = append(sections, cardTitleStyle.Render("Actividades del Club"))

	if len(m.activities) == 0 {
		sections = append(sections, "  No hay actividades publicadas")
		return lipgloss.JoinVertical(lipgloss.Left, sections...)
	}

	for i, a := range m.activities {
		line := fmt.Sprintf("%-24s %-12s %s", a.Name, a.Category, a.Schedule)
		if i == m.cursor {
			sections = append(sections, rowSelectedStyle.Render(line))
		} else {
			sections = append(sections, rowStyle.Render(line))
		}
	}

	// Detail of the selected activity
	selected := m.activities[m.cursor]
	detail := []string{
		"",
		RenderMetric("Lugar", selected.Location),
		RenderMetric("Profesor/a", selected.Instructor),
	}
	sections = append(sections, detail...)

	if m.cached {
		sections = append(sections, warningStyle.Render("  Sin conexión: mostrando la última lista guardada"))
	}
	sections = append(sections, statusStyle.Render("  j/k para moverse, 'r' para actualizar"))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}
