package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"villamitre/internal/api"
	"villamitre/internal/config"
	"villamitre/internal/workout"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// workoutView selects which part of the active session is on screen
type workoutView int

const (
	viewOverview workoutView = iota
	viewSetForm
	viewRest
	viewSummary
	viewConfirmCancel
	viewConfirmFinish
	viewDone
)

// Set form input indices
const (
	inputReps = iota
	inputWeight
	inputRPE
	inputNotes
	inputCount
)

// WorkoutModel drives an active workout session: logging sets,
// resting between them and submitting the finished session
type WorkoutModel struct {
	engine *workout.Engine
	cfg    config.GymConfig

	view   workoutView
	inputs [inputCount]textinput.Model
	focus  int

	timer *workout.RestTimer
	// timerID invalidates ticks from a replaced timer
	timerID int

	formErr string
	busy    bool
	err     error
	result  *api.SessionResult
}

// NewWorkoutModel creates the workout screen bound to the engine
func NewWorkoutModel(engine *workout.Engine, cfg config.GymConfig) WorkoutModel {
	m := WorkoutModel{
		engine: engine,
		cfg:    cfg,
	}

	labels := [inputCount]string{"Repeticiones", "Peso (" + cfg.WeightUnit + ")", "RPE (1-10)", "Notas"}
	for i := range m.inputs {
		in := textinput.New()
		in.Prompt = labels[i] + ": "
		in.CharLimit = 64
		m.inputs[i] = in
	}

	// Pick up where a restored session left off, including a rest that
	// was running when the app last exited
	if state := engine.State(); state != nil {
		switch {
		case state.Completed:
			m.view = viewSummary
		case state.Resting && state.RestEndsAt > 0:
			remaining := int((state.RestEndsAt - time.Now().UnixMilli()) / 1000)
			if remaining > 0 {
				m.timer = workout.NewRestTimer(remaining)
				m.view = viewRest
			} else {
				// Rest ran out while the app was closed; advance past
				// the completed set like a live rest ending would
				engine.EndRest()
				engine.MoveToNext()
				if state := engine.State(); state != nil && state.Completed {
					m.view = viewSummary
				}
			}
		}
	}

	return m
}

type restTickMsg struct {
	id int
}

type finishResultMsg struct {
	result *api.SessionResult
	err    error
}

func tickRest(id int) tea.Cmd {
	return tea.Tick(time.Second, func(_ time.Time) tea.Msg {
		return restTickMsg{id: id}
	})
}

// Init starts the countdown if the session resumed mid-rest
func (m WorkoutModel) Init() tea.Cmd {
	if m.view == viewRest {
		return tickRest(m.timerID)
	}
	return nil
}

// Update handles messages
func (m WorkoutModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case restTickMsg:
		if msg.id != m.timerID || m.view != viewRest {
			return m, nil
		}
		if m.timer.Tick() {
			return m.endRest()
		}
		return m, tickRest(m.timerID)

	case finishResultMsg:
		m.busy = false
		if msg.err != nil {
			m.err = msg.err
			m.view = viewSummary
			return m, nil
		}
		m.result = msg.result
		m.view = viewDone
		return m, nil

	case tea.KeyMsg:
		if m.busy {
			return m, nil
		}
		switch m.view {
		case viewOverview:
			return m.updateOverview(msg)
		case viewSetForm:
			return m.updateSetForm(msg)
		case viewRest:
			return m.updateRest(msg)
		case viewSummary:
			return m.updateSummary(msg)
		case viewConfirmCancel, viewConfirmFinish:
			return m.updateConfirm(msg)
		case viewDone:
			status := "Sesión completada"
			if m.result != nil {
				status = fmt.Sprintf("¡Sesión completada! Ganaste %d puntos", m.result.PointsAwarded)
			}
			return m, func() tea.Msg { return WorkoutClosedMsg{Status: status} }
		}
	}
	return m, nil
}

func (m WorkoutModel) updateOverview(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "l":
		return m.openSetForm()
	case "f":
		m.view = viewConfirmFinish
	case "c", "esc":
		m.view = viewConfirmCancel
	}
	return m, nil
}

func (m WorkoutModel) openSetForm() (tea.Model, tea.Cmd) {
	state := m.engine.State()
	if state == nil || state.Completed {
		return m, nil
	}

	prior := state.CurrentSetProgress()
	planned := state.CurrentPlannedSet()
	reps, weight, rpe, notes := workout.Prefill(prior, planned)
	values := [inputCount]string{reps, weight, rpe, notes}
	for i := range m.inputs {
		m.inputs[i].SetValue(values[i])
		m.inputs[i].Blur()
	}
	m.focus = inputReps
	m.inputs[m.focus].Focus()
	m.formErr = ""
	m.view = viewSetForm
	return m, textinput.Blink
}

func (m WorkoutModel) updateSetForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.view = viewOverview
		return m, nil

	case "tab", "down":
		m.inputs[m.focus].Blur()
		m.focus = (m.focus + 1) % inputCount
		m.inputs[m.focus].Focus()
		return m, nil

	case "shift+tab", "up":
		m.inputs[m.focus].Blur()
		m.focus = (m.focus + inputCount - 1) % inputCount
		m.inputs[m.focus].Focus()
		return m, nil

	case "enter":
		return m.submitSet()
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m WorkoutModel) submitSet() (tea.Model, tea.Cmd) {
	patch, err := workout.ParseSetInput(
		m.inputs[inputReps].Value(),
		m.inputs[inputWeight].Value(),
		m.inputs[inputRPE].Value(),
		m.inputs[inputNotes].Value(),
	)
	if err != nil {
		m.formErr = err.Error()
		return m, nil
	}

	state := m.engine.State()
	if state == nil {
		return m, nil
	}
	if err := m.engine.CompleteSet(state.CurrentEx, state.CurrentSet, patch); err != nil {
		m.formErr = err.Error()
		return m, nil
	}

	// No rest after the very last set of the session
	if m.isLastSet(state) {
		m.engine.MoveToNext()
		m.view = viewSummary
		return m, nil
	}

	return m.startRest(m.restSeconds(state.CurrentPlannedSet()))
}

func (m WorkoutModel) isLastSet(state *workout.State) bool {
	return state.CurrentEx == len(state.Exercises)-1 &&
		state.CurrentSet == len(state.Exercises[state.CurrentEx].Sets)-1
}

func (m WorkoutModel) restSeconds(planned *api.PlannedSet) int {
	if planned != nil && planned.RestSeconds > 0 {
		return planned.RestSeconds
	}
	if m.cfg.DefaultRestSecs > 0 {
		return m.cfg.DefaultRestSecs
	}
	return workout.RestPresets[2]
}

func (m WorkoutModel) startRest(seconds int) (tea.Model, tea.Cmd) {
	m.engine.StartRest(seconds)
	m.timer = workout.NewRestTimer(seconds)
	m.timerID++
	m.view = viewRest
	return m, tickRest(m.timerID)
}

func (m WorkoutModel) endRest() (tea.Model, tea.Cmd) {
	m.engine.EndRest()
	m.engine.MoveToNext()
	m.timer = nil
	m.timerID++

	state := m.engine.State()
	if state != nil && state.Completed {
		m.view = viewSummary
	} else {
		m.view = viewOverview
	}
	return m, nil
}

func (m WorkoutModel) updateRest(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "s", "enter":
		return m.endRest()
	case "p", " ":
		m.timer.Toggle()
	case "+", "=":
		m.timer.AddTime(15)
	case "-", "_":
		m.timer.AddTime(-15)
	case "1", "2", "3", "4":
		idx := int(msg.String()[0] - '1')
		m.timer.SetRemaining(workout.RestPresets[idx])
	case "c", "esc":
		m.view = viewConfirmCancel
	}
	return m, nil
}

func (m WorkoutModel) updateSummary(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "f":
		m.busy = true
		m.err = nil
		return m, m.doFinish()
	case "c", "esc":
		m.view = viewConfirmCancel
	}
	return m, nil
}

func (m WorkoutModel) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	finish := m.view == viewConfirmFinish
	switch msg.String() {
	case "y", "s":
		if finish {
			m.view = viewSummary
			m.busy = true
			m.err = nil
			return m, m.doFinish()
		}
		m.engine.Cancel()
		return m, func() tea.Msg { return WorkoutClosedMsg{Status: "Sesión cancelada"} }
	case "n", "esc":
		if m.timer != nil {
			m.view = viewRest
			return m, tickRest(m.timerID)
		}
		state := m.engine.State()
		if state != nil && state.Completed {
			m.view = viewSummary
		} else {
			m.view = viewOverview
		}
	}
	return m, nil
}

func (m WorkoutModel) doFinish() tea.Cmd {
	return func() tea.Msg {
		result, err := m.engine.Finish(context.Background())
		return finishResultMsg{result: result, err: err}
	}
}

// View renders the workout screen
func (m WorkoutModel) View() string {
	state := m.engine.State()
	if state == nil && m.view != viewDone {
		return "\n  No hay sesión activa"
	}

	switch m.view {
	case viewSetForm:
		return m.viewSetForm(state)
	case viewRest:
		return m.viewRest(state)
	case viewSummary:
		return m.viewSummary(state)
	case viewConfirmCancel:
		return m.header(state) + "\n" +
			warningStyle.Render("  ¿Cancelar la sesión? Se pierde el progreso. (y/n)")
	case viewConfirmFinish:
		return m.header(state) + "\n" +
			warningStyle.Render("  ¿Finalizar y enviar la sesión? (y/n)")
	case viewDone:
		return m.viewDone()
	default:
		return m.viewOverview(state)
	}
}

func (m WorkoutModel) header(state *workout.State) string {
	stats := workout.ComputeStats(state, time.Now())
	elapsed := time.Duration(stats.ElapsedSeconds) * time.Second

	return lipgloss.JoinVertical(lipgloss.Left,
		cardTitleStyle.Render(state.TemplateTitle),
		fmt.Sprintf("  %s  •  %d/%d series  •  %s",
			RenderProgressBar(float64(stats.ProgressPercent), 24),
			stats.CompletedSets, stats.TotalSets,
			formatDuration(elapsed)),
	)
}

func (m WorkoutModel) viewOverview(state *workout.State) string {
	var sections []string
	sections = append(sections, m.header(state))

	ex := state.CurrentExercise()
	planned := state.CurrentPlannedSet()
	if ex != nil {
		sections = append(sections, "",
			metricValueStyle.Render("  "+ex.Name),
			fmt.Sprintf("  Serie %d de %d", state.CurrentSet+1, len(ex.Sets)))
		if planned != nil {
			sections = append(sections, m.renderPlan(planned))
		}
	}

	sections = append(sections, "", m.renderExerciseList(state), "")
	sections = append(sections, statusStyle.Render(
		"  "+RenderKeyHelp("enter", "registrar serie")+"  "+
			RenderKeyHelp("f", "finalizar")+"  "+
			RenderKeyHelp("c", "cancelar")))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m WorkoutModel) renderPlan(planned *api.PlannedSet) string {
	parts := []string{}
	if planned.Reps != "" {
		parts = append(parts, "Reps: "+planned.Reps)
	} else if n := workout.SuggestedReps(planned); n > 0 {
		parts = append(parts, fmt.Sprintf("Reps: %d", n))
	}
	if w := planned.TargetWeight(); w != nil {
		parts = append(parts, fmt.Sprintf("Peso: %.1f %s", *w, m.cfg.WeightUnit))
	}
	if planned.RPETarget != nil {
		parts = append(parts, fmt.Sprintf("RPE: %.0f", *planned.RPETarget))
	}
	if planned.Tempo != "" {
		parts = append(parts, "Tempo: "+planned.Tempo)
	}
	if len(parts) == 0 {
		return ""
	}
	return statusStyle.Render("  " + strings.Join(parts, "   "))
}

func (m WorkoutModel) renderExerciseList(state *workout.State) string {
	var rows []string
	for i, ex := range state.Exercises {
		prog := state.Progress[i]
		done := 0
		for _, s := range prog.Sets {
			if s.Completed {
				done++
			}
		}
		mark := "○"
		if prog.Completed {
			mark = "●"
		}
		line := fmt.Sprintf("%s %-30s %d/%d", mark, ex.Name, done, len(ex.Sets))
		if i == state.CurrentEx && !state.Completed {
			rows = append(rows, rowSelectedStyle.Render(line))
		} else {
			rows = append(rows, rowStyle.Render(line))
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m WorkoutModel) viewSetForm(state *workout.State) string {
	var sections []string
	sections = append(sections, m.header(state))

	ex := state.CurrentExercise()
	if ex != nil {
		sections = append(sections, "",
			metricValueStyle.Render("  "+ex.Name),
			fmt.Sprintf("  Serie %d de %d", state.CurrentSet+1, len(ex.Sets)), "")
	}

	for i := range m.inputs {
		sections = append(sections, "  "+m.inputs[i].View())
	}

	if m.formErr != "" {
		sections = append(sections, errorStyle.Render("  "+m.formErr))
	}
	sections = append(sections, "", statusStyle.Render(
		"  "+RenderKeyHelp("tab", "siguiente campo")+"  "+
			RenderKeyHelp("enter", "guardar")+"  "+
			RenderKeyHelp("esc", "volver")))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m WorkoutModel) viewRest(state *workout.State) string {
	var sections []string
	sections = append(sections, m.header(state))

	label := "Descanso"
	if m.timer.Paused() {
		label = "Descanso (pausado)"
	}

	countdown := lipgloss.NewStyle().
		Bold(true).
		Foreground(secondaryColor).
		Render(formatDuration(time.Duration(m.timer.Remaining()) * time.Second))

	sections = append(sections, "", cardStyle.Render(lipgloss.JoinVertical(lipgloss.Center,
		metricLabelStyle.Render(label),
		countdown,
		RenderProgressBar((1-m.timer.Progress())*100, 24),
	)))

	if name, setNum, ok := nextPosition(state); ok {
		sections = append(sections, statusStyle.Render(
			fmt.Sprintf("  Siguiente: %s, serie %d", name, setNum)))
	}

	sections = append(sections, "", statusStyle.Render(
		"  "+RenderKeyHelp("s", "saltar")+"  "+
			RenderKeyHelp("p", "pausa")+"  "+
			RenderKeyHelp("+/-", "±15s")+"  "+
			RenderKeyHelp("1-4", "30/60/90/120s")))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// nextPosition is where the cursor will land once the current rest
// ends: the next set of the same exercise, or the first set of the
// next one. The cursor itself only moves at endRest.
func nextPosition(state *workout.State) (name string, setNum int, ok bool) {
	ex := state.CurrentExercise()
	if ex == nil {
		return "", 0, false
	}
	if state.CurrentSet+1 < len(ex.Sets) {
		return ex.Name, state.CurrentSet + 2, true
	}
	if state.CurrentEx+1 < len(state.Exercises) {
		return state.Exercises[state.CurrentEx+1].Name, 1, true
	}
	return "", 0, false
}

func (m WorkoutModel) viewSummary(state *workout.State) string {
	stats := workout.ComputeStats(state, time.Now())

	var sections []string
	sections = append(sections, cardTitleStyle.Render("Resumen de la sesión"))
	sections = append(sections,
		RenderMetric("Rutina", state.TemplateTitle),
		RenderMetric("Series completadas", fmt.Sprintf("%d de %d", stats.CompletedSets, stats.TotalSets)),
		RenderMetric("Ejercicios", fmt.Sprintf("%d de %d", stats.CompletedExercises, stats.TotalExercises)),
		RenderMetric("Duración", formatDuration(time.Duration(stats.ElapsedSeconds)*time.Second)),
	)

	if m.busy {
		sections = append(sections, "", warningStyle.Render("  Enviando sesión..."))
	} else {
		if m.err != nil {
			sections = append(sections, "",
				errorStyle.Render(fmt.Sprintf("  No se pudo enviar: %v", m.err)),
				statusStyle.Render("  Tu progreso sigue guardado. Enter para reintentar."))
		} else {
			sections = append(sections, "", statusStyle.Render(
				"  "+RenderKeyHelp("enter", "enviar sesión")+"  "+
					RenderKeyHelp("c", "cancelar")))
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m WorkoutModel) viewDone() string {
	msg := "¡Sesión completada!"
	if m.result != nil && m.result.PointsAwarded > 0 {
		msg += fmt.Sprintf(" Ganaste %d puntos.", m.result.PointsAwarded)
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		"",
		successStyle.Render("  "+msg),
		statusStyle.Render("  Cualquier tecla para volver"),
	)
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
