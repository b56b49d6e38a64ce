package tui

import (
	"context"
	"fmt"

	"villamitre/internal/api"
	"villamitre/internal/service"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// BenefitsModel is the benefits and coupon redemption screen model
type BenefitsModel struct {
	club       *service.ClubService
	benefits   []api.Benefit
	redemption *api.Redemption
	cursor     int
	cached     bool
	loading    bool
	redeeming  bool
	err        error
}

// NewBenefitsModel creates a new benefits model
func NewBenefitsModel(club *service.ClubService) BenefitsModel {
	return BenefitsModel{
		club:    club,
		loading: true,
	}
}

// Init initializes the benefits screen
func (m BenefitsModel) Init() tea.Cmd {
	return m.loadBenefits
}

type benefitsLoadedMsg struct {
	benefits []api.Benefit
	cached   bool
	err      error
}

type benefitRedeemedMsg struct {
	redemption *api.Redemption
	err        error
}

func (m BenefitsModel) loadBenefits() tea.Msg {
	benefits, cached, err := m.club.Benefits(context.Background())
	return benefitsLoadedMsg{benefits: benefits, cached: cached, err: err}
}

func (m BenefitsModel) redeemSelected() tea.Cmd {
	id := m.benefits[m.cursor].ID
	return func() tea.Msg {
		redemption, err := m.club.RedeemBenefit(context.Background(), id)
		return benefitRedeemedMsg{redemption: redemption, err: err}
	}
}

// Update handles messages
func (m BenefitsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case benefitsLoadedMsg:
		m.loading = false
		m.benefits = msg.benefits
		m.cached = msg.cached
		m.err = msg.err
		if m.cursor >= len(m.benefits) {
			m.cursor = 0
		}

	case benefitRedeemedMsg:
		m.redeeming = false
		m.redemption = msg.redemption
		m.err = msg.err

	case tea.KeyMsg:
		if m.redemption != nil {
			// A code is on screen; any key closes it
			m.redemption = nil
			return m, nil
		}
		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.benefits)-1 {
				m.cursor++
			}
		case "enter":
			if !m.redeeming && len(m.benefits) > 0 {
				m.redeeming = true
				m.err = nil
				return m, m.redeemSelected()
			}
		case "r":
			m.loading = true
			m.err = nil
			return m, m.loadBenefits
		}
	}
	return m, nil
}

// View renders the benefits screen
func (m BenefitsModel) View() string {
	if m.loading {
		return "\n  Cargando beneficios..."
	}

	if m.redemption != nil {
		return m.renderRedemption()
	}

	var sections []string
	sections = append(sections, cardTitleStyle.Render("Beneficios"))

	if m.err != nil {
		sections = append(sections, errorStyle.Render(fmt.Sprintf("  Error: %v", m.err)))
	}

	if len(m.benefits) == 0 {
		sections = append(sections, "  No hay beneficios disponibles")
		return lipgloss.JoinVertical(lipgloss.Left, sections...)
	}

	for i, b := range m.benefits {
		line := fmt.Sprintf("%-28s %-10s %s", b.Title, b.Discount, b.Partner)
		if i == m.cursor {
			sections = append(sections, rowSelectedStyle.Render(line))
		} else {
			sections = append(sections, rowStyle.Render(line))
		}
	}

	selected := m.benefits[m.cursor]
	sections = append(sections, "", "  "+selected.Description)
	if selected.ExpiresAt != "" {
		sections = append(sections, statusStyle.Render("  Vence: "+selected.ExpiresAt))
	}

	if m.redeeming {
		sections = append(sections, warningStyle.Render("  Canjeando..."))
	} else {
		sections = append(sections, statusStyle.Render("  Enter para canjear, j/k para moverse, 'r' para actualizar"))
	}
	if m.cached {
		sections = append(sections, warningStyle.Render("  Sin conexión: el canje necesita conexión"))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderRedemption shows the one-time code the partner's staff scans
// (the mobile app renders this same code as a QR)
func (m BenefitsModel) renderRedemption() string {
	r := m.redemption

	code := lipgloss.NewStyle().
		Bold(true).
		Foreground(accentColor).
		Padding(1, 4).
		Render(r.Code)

	box := cardStyle.Render(lipgloss.JoinVertical(lipgloss.Center,
		cardTitleStyle.Render("Código de canje"),
		code,
		statusStyle.Render(fmt.Sprintf("Válido hasta %s", r.ExpiresAt.Format("15:04"))),
	))

	return lipgloss.JoinVertical(lipgloss.Left,
		box,
		statusStyle.Render("  Mostrá este código en el comercio. Cualquier tecla para volver."),
	)
}
