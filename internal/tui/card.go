package tui

import (
	"context"
	"fmt"

	"villamitre/internal/api"
	"villamitre/internal/service"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// CardModel is the membership card screen model
type CardModel struct {
	club    *service.ClubService
	card    *api.MembershipCard
	cached  bool
	loading bool
	err     error
}

// NewCardModel creates a new card model
func NewCardModel(club *service.ClubService) CardModel {
	return CardModel{
		club:    club,
		loading: true,
	}
}

// Init initializes the card screen
func (m CardModel) Init() tea.Cmd {
	return m.loadCard
}

type cardLoadedMsg struct {
	card   *api.MembershipCard
	cached bool
	err    error
}

func (m CardModel) loadCard() tea.Msg {
	card, cached, err := m.club.MembershipCard(context.Background())
	return cardLoadedMsg{card: card, cached: cached, err: err}
}

// Update handles messages
func (m CardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case cardLoadedMsg:
		m.loading = false
		m.card = msg.card
		m.cached = msg.cached
		m.err = msg.err

	case tea.KeyMsg:
		switch msg.String() {
		case "r":
			m.loading = true
			return m, m.loadCard
		}
	}
	return m, nil
}

// View renders the membership card
func (m CardModel) View() string {
	if m.loading {
		return "\n  Cargando carnet..."
	}

	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err)) +
			"\n" + statusStyle.Render("  Presioná 'r' para reintentar")
	}

	var sections []string

	sections = append(sections, m.renderCard())

	if m.cached {
		sections = append(sections, warningStyle.Render("  Sin conexión: mostrando el último carnet guardado"))
	}

	sections = append(sections, statusStyle.Render("  Presioná 'r' para actualizar"))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m CardModel) renderCard() string {
	c := m.card

	status := successStyle.Render("AL DÍA")
	if c.Status != "al_dia" {
		status = errorStyle.Render("EN DEUDA")
	}

	lines := []string{
		cardTitleStyle.Render("Carnet de Socio"),
		RenderMetric("Socio", c.FullName),
		RenderMetric("N° de socio", c.MemberNumber),
		RenderMetric("DNI", c.DNI),
		RenderMetric("Categoría", c.Category),
		RenderMetric("Estado", status),
		RenderMetric("Válido hasta", c.ValidThru),
	}

	if c.Barcode != "" {
		lines = append(lines, "", renderBarcode(c.Barcode))
	}

	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// renderBarcode draws the card code the way the front desk scanner
// expects it: the digits under a block strip
func renderBarcode(code string) string {
	strip := ""
	for i, r := range code {
		if (int(r)+i)%2 == 0 {
			strip += "█▌"
		} else {
			strip += "▐█"
		}
	}
	return lipgloss.JoinVertical(lipgloss.Center,
		metricValueStyle.Render(strip),
		statusStyle.Render(code),
	)
}
