package tui

import (
	"context"
	"fmt"

	"villamitre/internal/api"
	"villamitre/internal/service"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
)

// PointsModel is the loyalty points dashboard screen model
type PointsModel struct {
	club    *service.ClubService
	summary *api.PointsSummary
	cached  bool
	loading bool
	err     error
}

// NewPointsModel creates a new points model
func NewPointsModel(club *service.ClubService) PointsModel {
	return PointsModel{
		club:    club,
		loading: true,
	}
}

// Init initializes the points screen
func (m PointsModel) Init() tea.Cmd {
	return m.loadPoints
}

type pointsLoadedMsg struct {
	summary *api.PointsSummary
	cached  bool
	err     error
}

func (m PointsModel) loadPoints() tea.Msg {
	summary, cached, err := m.club.Points(context.Background())
	return pointsLoadedMsg{summary: summary, cached: cached, err: err}
}

// Update handles messages
func (m PointsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case pointsLoadedMsg:
		m.loading = false
		m.summary = msg.summary
		m.cached = msg.cached
		m.err = msg.err

	case tea.KeyMsg:
		if msg.String() == "r" {
			m.loading = true
			m.err = nil
			return m, m.loadPoints
		}
	}
	return m, nil
}

// View renders the points screen
func (m PointsModel) View() string {
	if m.loading {
		return "\n  Cargando puntos..."
	}
	if m.err != nil && m.summary == nil {
		return errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err))
	}

	var sections []string
	sections = append(sections, cardTitleStyle.Render("Mis Puntos"))

	balance := pointsValueStyle.Render(fmt.Sprintf("%d pts", m.summary.Balance))
	sections = append(sections, cardStyle.Render(lipgloss.JoinVertical(lipgloss.Center,
		metricLabelStyle.Render("Saldo actual"),
		balance,
	)))

	if chart := m.renderHistory(); chart != "" {
		sections = append(sections, cardTitleStyle.Render("Evolución"), chart)
	}

	if len(m.summary.History) > 0 {
		sections = append(sections, cardTitleStyle.Render("Movimientos"))
		entries := m.summary.History
		// Newest first, at most ten rows
		shown := 0
		for i := len(entries) - 1; i >= 0 && shown < 10; i-- {
			e := entries[i]
			sections = append(sections, rowStyle.Render(
				fmt.Sprintf("%-12s %6d  %s", e.Date, e.Balance, e.Reason)))
			shown++
		}
	}

	if m.cached {
		sections = append(sections, warningStyle.Render("  Mostrando datos sin conexión"))
	}
	sections = append(sections, statusStyle.Render("  'r' para actualizar"))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *PointsModel) renderHistory() string {
	if len(m.summary.History) < 2 {
		return ""
	}
	data := make([]float64, len(m.summary.History))
	for i, e := range m.summary.History {
		data[i] = float64(e.Balance)
	}
	return asciigraph.Plot(data,
		asciigraph.Height(8),
		asciigraph.Width(60),
		asciigraph.Precision(0),
	)
}
