package tui

import (
	"context"
	"fmt"

	"villamitre/internal/api"
	"villamitre/internal/service"
	"villamitre/internal/workout"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// dayNames maps API day keys to display names
var dayNames = map[string]string{
	"monday":    "Lunes",
	"tuesday":   "Martes",
	"wednesday": "Miércoles",
	"thursday":  "Jueves",
	"friday":    "Viernes",
	"saturday":  "Sábado",
	"sunday":    "Domingo",
}

// GymModel is the weekly schedule screen; selecting a template starts a session
type GymModel struct {
	club     *service.ClubService
	engine   *workout.Engine
	schedule []api.ScheduleDay
	// flat cursor over every template across the week
	entries  []scheduleEntry
	cursor   int
	cached   bool
	loading  bool
	starting bool
	err      error
}

type scheduleEntry struct {
	day      string
	template api.TemplateSummary
}

// NewGymModel creates a new gym schedule model
func NewGymModel(club *service.ClubService, engine *workout.Engine) GymModel {
	return GymModel{
		club:    club,
		engine:  engine,
		loading: true,
	}
}

// Init initializes the gym screen
func (m GymModel) Init() tea.Cmd {
	return m.loadSchedule
}

type scheduleLoadedMsg struct {
	schedule []api.ScheduleDay
	cached   bool
	err      error
}

type workoutStartResultMsg struct {
	err error
}

func (m GymModel) loadSchedule() tea.Msg {
	schedule, cached, err := m.club.WeeklySchedule(context.Background())
	return scheduleLoadedMsg{schedule: schedule, cached: cached, err: err}
}

func (m GymModel) startWorkout() tea.Cmd {
	entry := m.entries[m.cursor]
	return func() tea.Msg {
		err := m.engine.Start(context.Background(), entry.template.ID, entry.template.Title)
		return workoutStartResultMsg{err: err}
	}
}

// Update handles messages
func (m GymModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case scheduleLoadedMsg:
		m.loading = false
		m.schedule = msg.schedule
		m.cached = msg.cached
		m.err = msg.err
		m.entries = m.entries[:0]
		for _, day := range m.schedule {
			for _, t := range day.Templates {
				m.entries = append(m.entries, scheduleEntry{day: day.Day, template: t})
			}
		}
		if m.cursor >= len(m.entries) {
			m.cursor = 0
		}

	case workoutStartResultMsg:
		m.starting = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		return m, func() tea.Msg { return WorkoutStartedMsg{} }

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.entries)-1 {
				m.cursor++
			}
		case "enter":
			if m.engine.Active() {
				// Return to the running session instead of starting another
				return m, func() tea.Msg { return WorkoutStartedMsg{} }
			}
			if !m.starting && len(m.entries) > 0 {
				m.starting = true
				m.err = nil
				return m, m.startWorkout()
			}
		case "r":
			m.loading = true
			m.err = nil
			return m, m.loadSchedule
		}
	}
	return m, nil
}

// View renders the gym schedule screen
func (m GymModel) View() string {
	if m.loading {
		return "\n  Cargando rutinas..."
	}

	var sections []string
	sections = append(sections, cardTitleStyle.Render("Gimnasio - Rutina semanal"))

	if m.engine.Active() {
		sections = append(sections, warningStyle.Render("  Tenés una sesión en curso. Enter para retomarla."))
	}
	if m.err != nil {
		sections = append(sections, errorStyle.Render(fmt.Sprintf("  Error: %v", m.err)))
	}
	if len(m.entries) == 0 {
		sections = append(sections, "  No hay rutinas asignadas esta semana")
		return lipgloss.JoinVertical(lipgloss.Left, sections...)
	}

	lastDay := ""
	idx := 0
	for _, day := range m.schedule {
		for _, t := range day.Templates {
			if day.Day != lastDay {
				name := dayNames[day.Day]
				if name == "" {
					name = day.Day
				}
				sections = append(sections, metricLabelStyle.Render("  "+name))
				lastDay = day.Day
			}
			line := fmt.Sprintf("%-30s %2d ejercicios  ~%d min",
				t.Title, t.ExerciseCount, t.EstimatedMinutes)
			if idx == m.cursor {
				sections = append(sections, rowSelectedStyle.Render(line))
			} else {
				sections = append(sections, rowStyle.Render(line))
			}
			idx++
		}
	}

	if m.starting {
		sections = append(sections, warningStyle.Render("  Preparando sesión..."))
	} else {
		sections = append(sections, statusStyle.Render("  Enter para entrenar, j/k para moverse, 'r' para actualizar"))
	}
	if m.cached {
		sections = append(sections, warningStyle.Render("  Mostrando datos sin conexión"))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}
