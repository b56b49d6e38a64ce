package tui

import (
	"villamitre/internal/config"
	"villamitre/internal/service"
	"villamitre/internal/workout"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Screen identifiers
type Screen int

const (
	ScreenCard Screen = iota
	ScreenActivities
	ScreenBenefits
	ScreenPoints
	ScreenGym
	ScreenWorkout
	ScreenHelp
)

// App is the root Bubble Tea model
type App struct {
	screen     Screen
	prevScreen Screen

	// Screen models
	card       CardModel
	activities ActivitiesModel
	benefits   BenefitsModel
	points     PointsModel
	gym        GymModel
	session    WorkoutModel
	help       HelpModel

	// Services
	club   *service.ClubService
	engine *workout.Engine

	// Window dimensions
	width  int
	height int

	// Status message
	status string
}

// NewApp creates a new App with all dependencies
func NewApp(club *service.ClubService, engine *workout.Engine, gymCfg config.GymConfig) *App {
	return &App{
		screen:     ScreenCard,
		club:       club,
		engine:     engine,
		card:       NewCardModel(club),
		activities: NewActivitiesModel(club),
		benefits:   NewBenefitsModel(club),
		points:     NewPointsModel(club),
		gym:        NewGymModel(club, engine),
		session:    NewWorkoutModel(engine, gymCfg),
		help:       NewHelpModel(),
	}
}

// Init initializes the app
func (a *App) Init() tea.Cmd {
	// A persisted draft means a session survived a restart; drop the
	// member straight back into it
	if a.engine.Active() {
		a.screen = ScreenWorkout
		a.status = "Sesión de entrenamiento recuperada"
		return a.session.Init()
	}
	return a.card.Init()
}

// Update handles messages
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		// Global keybindings (the workout screen owns its own keys so
		// typing reps never triggers navigation)
		if a.screen != ScreenWorkout {
			switch msg.String() {
			case "q", "ctrl+c":
				return a, tea.Quit
			case "1":
				a.screen = ScreenCard
				a.card = NewCardModel(a.club)
				return a, a.card.Init()
			case "2":
				a.screen = ScreenActivities
				return a, a.activities.Init()
			case "3":
				a.screen = ScreenBenefits
				return a, a.benefits.Init()
			case "4":
				a.screen = ScreenPoints
				a.points = NewPointsModel(a.club)
				return a, a.points.Init()
			case "5", "g":
				if a.screen != ScreenGym {
					a.screen = ScreenGym
					return a, a.gym.Init()
				}
			case "?":
				a.prevScreen = a.screen
				a.screen = ScreenHelp
				return a, nil
			case "esc":
				if a.screen == ScreenHelp {
					a.screen = a.prevScreen
					return a, nil
				}
			}
		} else if msg.String() == "ctrl+c" {
			// Always available; the draft keeps the session safe
			return a, tea.Quit
		}

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height

	case WorkoutStartedMsg:
		a.status = ""
		a.screen = ScreenWorkout
		a.session = NewWorkoutModel(a.engine, a.session.cfg)
		return a, a.session.Init()

	case WorkoutClosedMsg:
		a.status = msg.Status
		a.screen = ScreenGym
		return a, a.gym.Init()
	}

	// Delegate to current screen
	var cmd tea.Cmd
	switch a.screen {
	case ScreenCard:
		var m tea.Model
		m, cmd = a.card.Update(msg)
		a.card = m.(CardModel)
	case ScreenActivities:
		var m tea.Model
		m, cmd = a.activities.Update(msg)
		a.activities = m.(ActivitiesModel)
	case ScreenBenefits:
		var m tea.Model
		m, cmd = a.benefits.Update(msg)
		a.benefits = m.(BenefitsModel)
	case ScreenPoints:
		var m tea.Model
		m, cmd = a.points.Update(msg)
		a.points = m.(PointsModel)
	case ScreenGym:
		var m tea.Model
		m, cmd = a.gym.Update(msg)
		a.gym = m.(GymModel)
	case ScreenWorkout:
		var m tea.Model
		m, cmd = a.session.Update(msg)
		a.session = m.(WorkoutModel)
	case ScreenHelp:
		var m tea.Model
		m, cmd = a.help.Update(msg)
		a.help = m.(HelpModel)
	}

	return a, cmd
}

// View renders the app
func (a *App) View() string {
	header := a.renderHeader()
	nav := a.renderNav()

	var content string
	switch a.screen {
	case ScreenCard:
		content = a.card.View()
	case ScreenActivities:
		content = a.activities.View()
	case ScreenBenefits:
		content = a.benefits.View()
	case ScreenPoints:
		content = a.points.View()
	case ScreenGym:
		content = a.gym.View()
	case ScreenWorkout:
		content = a.session.View()
	case ScreenHelp:
		content = a.help.View()
	}

	footer := a.renderFooter()

	return lipgloss.JoinVertical(lipgloss.Left, header, nav, content, footer)
}

func (a *App) renderHeader() string {
	return headerStyle.Render("Club Villa Mitre")
}

func (a *App) renderNav() string {
	items := []struct {
		key    string
		label  string
		screen Screen
	}{
		{"1", "Carnet", ScreenCard},
		{"2", "Actividades", ScreenActivities},
		{"3", "Beneficios", ScreenBenefits},
		{"4", "Puntos", ScreenPoints},
		{"5", "Gimnasio", ScreenGym},
		{"?", "Ayuda", ScreenHelp},
	}

	var nav string
	for i, item := range items {
		if i > 0 {
			nav += "  "
		}

		label := "[" + item.key + "] " + item.label
		if a.screen == item.screen || (a.screen == ScreenWorkout && item.screen == ScreenGym) {
			nav += navActiveStyle.Render(label)
		} else {
			nav += navInactiveStyle.Render(label)
		}
	}

	nav += "  " + navInactiveStyle.Render("[q] Salir")

	return navStyle.Render(nav)
}

func (a *App) renderFooter() string {
	if a.status != "" {
		return statusStyle.Render(a.status)
	}
	return ""
}

// WorkoutStartedMsg is sent when the gym screen has started a session
type WorkoutStartedMsg struct{}

// WorkoutClosedMsg is sent when the workout screen finished or abandoned
// its session
type WorkoutClosedMsg struct {
	Status string
}
