package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/jwebster45206/questmaster/pkg/engine"
	"github.com/jwebster45206/questmaster/pkg/state"
	"github.com/muesli/reflow/wordwrap"
)

const Title = "QUESTMASTER"

// ConsoleUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	ctx       context.Context
	engine    *engine.Engine
	source    engine.GraphSource
	generator engine.StoryGenerator
	logger    *slog.Logger

	storyViewport viewport.Model
	metaViewport  viewport.Model
	spinner       spinner.Model
	ready         bool
	width         int
	height        int

	selected     int    // Highlighted choice
	loading      bool   // A backend request is in flight
	loadingLabel string // What the backend is doing
	resolving    bool   // A chosen option is waiting on the transition delay
	err          error
	status       string

	// Quit confirmation state
	showQuitModal bool

	// Progress bar state
	progressTick int
}

type storyGeneratedMsg struct {
	err error
}

type graphLoadedMsg struct {
	err error
}

type optionResolvedMsg struct {
	accepted bool
	err      error
}

type clipboardMsg struct {
	err error
}

type progressTickMsg struct{}

var (
	storyPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(1).
			PaddingLeft(3).
			PaddingRight(0)

	metaPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(0).
			PaddingLeft(0).
			PaddingRight(2)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	choiceStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // teal

	selectedChoiceStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("0")).
				Background(lipgloss.Color("205")).
				Bold(true)

	winStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")). // green
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	loadingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2).
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255"))

	modalTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			Align(lipgloss.Center)
)

var separatorStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("240")) // dark grey

func NewConsoleUI(ctx context.Context, eng *engine.Engine, source engine.GraphSource, generator engine.StoryGenerator, logger *slog.Logger) ConsoleUI {
	storyVp := viewport.New(50, 20)
	storyVp.MouseWheelEnabled = true

	metaVp := viewport.New(20, 20)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = loadingStyle

	return ConsoleUI{
		ctx:           ctx,
		engine:        eng,
		source:        source,
		generator:     generator,
		logger:        logger,
		storyViewport: storyVp,
		metaViewport:  metaVp,
		spinner:       sp,
	}
}

func (m ConsoleUI) Init() tea.Cmd {
	return nil
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}

	var (
		vpCmd tea.Cmd
		mvCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.MouseMsg:
		m.storyViewport, vpCmd = m.storyViewport.Update(msg)
		m.metaViewport, mvCmd = m.metaViewport.Update(msg)
		return m, tea.Batch(vpCmd, mvCmd)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		m.ready = true
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case storyGeneratedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.status = "New story generated. Press p to play it."
		}
		m.refresh()
		return m, nil

	case graphLoadedMsg:
		m.loading = false
		m.selected = 0
		if msg.err != nil && !errors.Is(msg.err, engine.ErrLoadSuperseded) {
			m.err = msg.err
		}
		m.refresh()
		m.storyViewport.GotoTop()
		return m, nil

	case optionResolvedMsg:
		m.resolving = false
		m.selected = 0
		if msg.err != nil {
			m.err = msg.err
		}
		m.refresh()
		m.storyViewport.GotoTop()
		return m, nil

	case clipboardMsg:
		if msg.err != nil {
			m.logger.Warn("Clipboard unavailable", "error", msg.err)
			m.err = fmt.Errorf("failed to copy passage: %w", msg.err)
		} else {
			m.status = "Passage copied to clipboard."
		}
		m.refresh()
		return m, nil

	case spinner.TickMsg:
		if !m.resolving {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.refresh()
		return m, cmd

	case progressTickMsg:
		if m.loading {
			m.progressTick++
			m.refresh()
			return m, progressTick()
		}
		return m, nil
	}

	m.storyViewport, vpCmd = m.storyViewport.Update(msg)
	m.metaViewport, mvCmd = m.metaViewport.Update(msg)
	return m, tea.Batch(vpCmd, mvCmd)
}

func (m ConsoleUI) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		m.showQuitModal = true
		return m, nil
	case tea.KeyPgUp, tea.KeyPgDown:
		var cmd tea.Cmd
		m.storyViewport, cmd = m.storyViewport.Update(msg)
		return m, cmd
	}

	// Backend requests and transitions finish before anything else is accepted.
	if m.loading || m.resolving {
		return m, nil
	}

	v := m.engine.View()
	key := msg.String()

	switch key {
	case "g":
		if v.Phase == state.PhasePlaying {
			return m, nil
		}
		return m.startRequest("Generating a new story...", m.generateStory())
	case "y":
		if v.Phase == state.PhaseIdle {
			return m, nil
		}
		return m, copyPassage(v.RawDescription)
	}

	switch v.Phase {
	case state.PhaseIdle:
		if key == "p" || msg.Type == tea.KeyEnter {
			return m.startRequest("Loading the story...", m.loadGraph())
		}

	case state.PhasePlaying:
		switch {
		case msg.Type == tea.KeyUp || key == "k":
			if m.selected > 0 {
				m.selected--
			}
		case msg.Type == tea.KeyDown || key == "j":
			if m.selected < len(v.Choices)-1 {
				m.selected++
			}
		case msg.Type == tea.KeyEnter:
			if m.selected < len(v.Choices) {
				return m.choose(v.Choices[m.selected])
			}
		case len(key) == 1 && key >= "1" && key <= "9":
			if i := int(key[0] - '1'); i < len(v.Choices) {
				m.selected = i
				return m.choose(v.Choices[i])
			}
		case key == "r":
			m.engine.Restart()
			m.selected = 0
		}

	case state.PhaseEnded:
		if key == "r" || msg.Type == tea.KeyEnter {
			m.engine.Restart()
			m.selected = 0
		}
	}

	m.refresh()
	return m, nil
}

func (m ConsoleUI) startRequest(label string, cmd tea.Cmd) (tea.Model, tea.Cmd) {
	m.loading = true
	m.loadingLabel = label
	m.progressTick = 0
	m.err = nil
	m.status = ""
	m.refresh()
	return m, tea.Batch(cmd, progressTick())
}

func (m ConsoleUI) choose(c engine.Choice) (tea.Model, tea.Cmd) {
	m.resolving = true
	m.err = nil
	m.status = ""
	m.refresh()
	return m, tea.Batch(m.selectOption(c.Key), m.spinner.Tick)
}

func (m ConsoleUI) generateStory() tea.Cmd {
	return func() tea.Msg {
		return storyGeneratedMsg{err: m.engine.Generate(m.ctx, m.generator)}
	}
}

func (m ConsoleUI) loadGraph() tea.Cmd {
	return func() tea.Msg {
		return graphLoadedMsg{err: m.engine.Load(m.ctx, m.source)}
	}
}

func (m ConsoleUI) selectOption(key string) tea.Cmd {
	return func() tea.Msg {
		accepted, err := m.engine.SelectOption(m.ctx, key)
		return optionResolvedMsg{accepted: accepted, err: err}
	}
}

func copyPassage(rawDescription string) tea.Cmd {
	return func() tea.Msg {
		return clipboardMsg{err: clipboard.WriteAll(plainFormatter.Format(rawDescription))}
	}
}

// resize lays out the story panel at three quarters of the width.
func (m *ConsoleUI) resize() {
	storyWidth := int(float64(m.width)*0.75) - 4
	metaWidth := m.width - storyWidth - 6

	m.storyViewport.Width = storyWidth - 2
	m.storyViewport.Height = m.height - 4
	m.metaViewport.Width = metaWidth - 2
	m.metaViewport.Height = m.height - 4
}

// refresh rebuilds both panels from the engine view.
func (m *ConsoleUI) refresh() {
	if !m.ready {
		return
	}
	v := m.engine.View()
	m.storyViewport.SetContent(m.writeStoryContent(v))
	m.metaViewport.SetContent(writeMetadata(v))
}

func (m ConsoleUI) writeStoryContent(v engine.View) string {
	width := max(m.storyViewport.Width-6, 20)

	var content strings.Builder
	content.WriteString(titleStyle.Render(Title) + "\n\n")

	switch v.Phase {
	case state.PhaseIdle:
		content.WriteString(wordwrap.String("An adventure generated for you, one choice at a time.", width) + "\n\n")
		content.WriteString(promptStyle.Render("p: play the current story   g: generate a new story") + "\n\n")
	default:
		content.WriteString(separatorStyle.Render(strings.Repeat("─", width)) + "\n\n")
		content.WriteString(wordwrap.String(v.Description, width) + "\n\n")
	}

	switch v.Phase {
	case state.PhasePlaying:
		if len(v.Choices) == 0 {
			content.WriteString(promptStyle.Render("There is nowhere left to go. Press r to start over.") + "\n\n")
		}
		for i, c := range v.Choices {
			line := wordwrap.String(fmt.Sprintf("%d. %s", i+1, c.Label), width-2)
			if i == m.selected {
				content.WriteString(selectedChoiceStyle.Render("▶ "+line) + "\n")
			} else {
				content.WriteString(choiceStyle.Render("  "+line) + "\n")
			}
		}
		content.WriteString("\n")
		if m.resolving {
			content.WriteString(m.spinner.View() + loadingStyle.Render(" ...") + "\n\n")
		}

	case state.PhaseEnded:
		if v.Outcome == state.OutcomeWin {
			content.WriteString(winStyle.Render("VICTORY! You completed the quest.") + "\n\n")
		} else {
			content.WriteString(errorStyle.Render("GAME OVER. Your adventure ends here.") + "\n\n")
		}
		content.WriteString(promptStyle.Render("r: play again   g: generate a new story") + "\n\n")
	}

	if m.loading {
		content.WriteString(loadingStyle.Render(m.loadingLabel) + "\n")
		content.WriteString(m.renderProgressBar() + "\n\n")
	}
	if m.err != nil {
		content.WriteString(errorStyle.Render(wordwrap.String("Error: "+m.err.Error(), width)) + "\n\n")
	} else if v.LastError != "" {
		content.WriteString(errorStyle.Render(wordwrap.String(v.LastError, width)) + "\n\n")
	}
	if m.status != "" {
		content.WriteString(promptStyle.Render(m.status) + "\n")
	}
	return content.String()
}

func writeMetadata(v engine.View) string {
	var content strings.Builder
	content.WriteString(titleStyle.Render("GAME") + "\n\n")

	content.WriteString("Status:\n")
	content.WriteString(string(v.Phase) + "\n\n")

	if v.Phase != state.PhaseIdle {
		content.WriteString("Game ID:\n")
		content.WriteString(v.SessionID.String()[:8] + "...\n\n")

		content.WriteString("Location:\n")
		content.WriteString(v.CurrentNodeID + "\n\n")

		content.WriteString("Turns:\n")
		content.WriteString(fmt.Sprintf("%d\n\n", v.Turns))
	}

	if v.Outcome != state.OutcomeNone {
		content.WriteString("Outcome:\n")
		content.WriteString(string(v.Outcome) + "\n\n")
	}

	content.WriteString("Commands:\n")
	switch v.Phase {
	case state.PhaseIdle:
		content.WriteString("• p: Play\n")
		content.WriteString("• g: Generate\n")
	case state.PhasePlaying:
		content.WriteString("• ↑/↓: Choose\n")
		content.WriteString("• Enter/1-9: Go\n")
		content.WriteString("• y: Copy text\n")
		content.WriteString("• r: Restart\n")
	case state.PhaseEnded:
		content.WriteString("• r: Restart\n")
		content.WriteString("• g: Generate\n")
		content.WriteString("• y: Copy text\n")
	}
	content.WriteString("• Esc: Quit\n")

	return content.String()
}

func (m ConsoleUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc, tea.KeyEnter:
			return m, tea.Quit
		default:
			switch msg.String() {
			case "y", "Y":
				return m, tea.Quit
			case "n", "N":
				m.showQuitModal = false
				m.refresh()
				return m, nil
			}
		}

	default:
		// Results of in-flight commands still need to land.
		m.showQuitModal = false
		model, cmd := m.Update(msg)
		next := model.(ConsoleUI)
		next.showQuitModal = true
		return next, cmd
	}

	return m, nil
}

func (m ConsoleUI) renderQuitModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Quit Game?"))
	content.WriteString("\n\n")
	content.WriteString("Are you sure you want to quit your adventure?")
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to quit, N to continue, or Ctrl+C to force quit"))

	modal := modalStyle.Width(50).Render(content.String())

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) View() string {
	if m.showQuitModal {
		return m.renderQuitModal()
	}

	if !m.ready {
		return "\n  Initializing..."
	}

	storyWidth := int(float64(m.width)*0.75) - 4
	metaWidth := m.width - storyWidth - 6

	storyPanel := storyPanelStyle.Width(storyWidth).Height(m.height - 3).Render(
		m.storyViewport.View(),
	)

	metaPanel := metaPanelStyle.Width(metaWidth).Height(m.height - 2).Render(
		m.metaViewport.View(),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, storyPanel, metaPanel)
}

// renderProgressBar creates an animated progress bar for loading states
func (m ConsoleUI) renderProgressBar() string {
	usable := m.storyViewport.Width - 6
	if usable <= 0 {
		usable = 30 // fallback before sizing
	}

	if usable > 80 {
		usable = 80
	} else if usable < 10 {
		usable = 10
	}

	const totalFrames = 40
	frame := m.progressTick % totalFrames
	filled := (frame * usable) / totalFrames

	var bar strings.Builder
	for i := 0; i < usable; i++ {
		if i < filled {
			bar.WriteString("█")
		} else if i == filled && frame%4 < 2 {
			bar.WriteString("▓") // Blinking effect at the progress point
		} else {
			bar.WriteString("░")
		}
	}
	return separatorStyle.Render(bar.String())
}

// progressTick creates a command that sends a progress tick message
func progressTick() tea.Cmd {
	return tea.Tick(time.Millisecond*200, func(time.Time) tea.Msg {
		return progressTickMsg{}
	})
}
