package cli

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/skm16/skmdigital/pkg/inquiry"
	"github.com/skm16/skmdigital/pkg/wizard"
)

const submitTimeout = 30 * time.Second

type wizardStep int

const (
	stepMenu wizardStep = iota
	stepBooking
	stepQuestion
	stepReview
	stepDone
)

type optionItem struct {
	title string
	desc  string
	value string
}

func (i optionItem) Title() string       { return i.title }
func (i optionItem) Description() string { return i.desc }
func (i optionItem) FilterValue() string { return i.title }

// autoAdvanceMsg fires AutoAdvanceDelay after a choice is picked. A stale
// token means the user moved on before it fired.
type autoAdvanceMsg struct {
	token int
	value string
}

type submitResultMsg struct {
	err error
}

// Options configures RunWizard.
type Options struct {
	Schema        *inquiry.Schema
	Submitter     Submitter
	SchedulingURL string
	Logger        *zap.Logger
	Now           func() time.Time
}

type wizardModel struct {
	step          wizardStep
	schema        *inquiry.Schema
	session       wizard.Session
	submitter     Submitter
	schedulingURL string
	log           *zap.Logger
	now           func() time.Time

	list     list.Model
	input    textinput.Model
	area     textarea.Model
	spinner  spinner.Model
	progress progress.Model

	advanceToken int
	cancelled    bool
	width        int
	height       int
}

var (
	styleTitle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	styleSubtitle  = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	styleError     = lipgloss.NewStyle().Foreground(lipgloss.Color("160")).Bold(true)
	stylePrompt    = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	styleSummary   = lipgloss.NewStyle().Foreground(lipgloss.Color("81"))
	styleHighlight = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
)

// RunWizard runs the interactive project inquiry in the terminal.
func RunWizard(opts Options) error {
	prog := tea.NewProgram(newWizardModel(opts), tea.WithAltScreen())
	result, err := prog.Run()
	if err != nil {
		return err
	}

	final, ok := result.(wizardModel)
	if !ok {
		return fmt.Errorf("wizard failed to return results")
	}
	if final.session.Succeeded {
		fmt.Println(final.doneMessage())
	}
	return nil
}

func newWizardModel(opts Options) wizardModel {
	if opts.Schema == nil {
		opts.Schema = inquiry.Default()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styleHighlight

	m := wizardModel{
		step:          stepMenu,
		schema:        opts.Schema,
		session:       wizard.New(opts.Schema),
		submitter:     opts.Submitter,
		schedulingURL: opts.SchedulingURL,
		log:           opts.Logger,
		now:           opts.Now,
		input:         textinput.New(),
		area:          textarea.New(),
		spinner:       sp,
		progress:      progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
	}
	m.list = newList("SKM.digital", menuItems())
	return m
}

func newList(title string, items []list.Item) list.Model {
	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = true
	delegate.Styles.NormalTitle = delegate.Styles.NormalTitle.Foreground(lipgloss.Color("252"))
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.Foreground(lipgloss.Color("205")).Bold(true)
	delegate.Styles.NormalDesc = delegate.Styles.NormalDesc.Foreground(lipgloss.Color("244")).Italic(true)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.Foreground(lipgloss.Color("212")).Italic(true)
	l := list.New(items, delegate, 0, 0)
	l.Title = styleTitle.Render(title)
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowPagination(false)
	l.DisableQuitKeybindings()
	return l
}

func menuItems() []list.Item {
	return []list.Item{
		optionItem{title: "Start a project inquiry", desc: "A few quick questions, about two minutes", value: "inquire"},
		optionItem{title: "Book a 20-minute call", desc: "No sales routine. Just technical clarity", value: "book"},
		optionItem{title: "Quit", desc: "Maybe later", value: "quit"},
	}
}

func choiceItems(q inquiry.Question) []list.Item {
	items := make([]list.Item, 0, len(q.Options))
	for _, o := range q.Options {
		desc := ""
		if o.Summary != "" && o.Summary != o.Label {
			desc = o.Summary
		}
		items = append(items, optionItem{title: o.Label, desc: desc, value: o.Value})
	}
	return items
}

func (m wizardModel) Init() tea.Cmd {
	return nil
}

func (m wizardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.applySizes()
		return m, nil
	case autoAdvanceMsg:
		if m.step != stepQuestion || msg.token != m.advanceToken {
			return m, nil
		}
		return m.dispatch(wizard.Advance{Value: msg.value})
	case submitResultMsg:
		return m.handleSubmitResult(msg)
	case spinner.TickMsg:
		if !m.session.Submitting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.cancelled = true
			return m, tea.Quit
		}
	}

	switch m.step {
	case stepMenu:
		return m.updateMenu(msg)
	case stepBooking:
		if key, ok := msg.(tea.KeyMsg); ok {
			switch key.String() {
			case "q":
				m.cancelled = true
				return m, tea.Quit
			case "enter", "esc":
				m.toMenu()
			}
		}
		return m, nil
	case stepQuestion:
		return m.updateQuestion(msg)
	case stepReview:
		return m.updateReview(msg)
	case stepDone:
		if key, ok := msg.(tea.KeyMsg); ok {
			switch key.String() {
			case "q", "esc":
				return m, tea.Quit
			case "enter":
				m.toMenu()
			}
		}
		return m, nil
	}
	return m, nil
}

func (m wizardModel) updateMenu(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "q", "esc":
			m.cancelled = true
			return m, tea.Quit
		case "enter":
			item, ok := m.list.SelectedItem().(optionItem)
			if !ok {
				return m, nil
			}
			switch item.value {
			case "inquire":
				m.session = wizard.New(m.schema)
				m.loadQuestion()
			case "book":
				m.step = stepBooking
			case "quit":
				m.cancelled = true
				return m, tea.Quit
			}
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m wizardModel) updateQuestion(msg tea.Msg) (tea.Model, tea.Cmd) {
	q, ok := m.session.Current()
	if !ok {
		return m, nil
	}

	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "esc":
			m.toMenu()
			return m, nil
		case "ctrl+b", "shift+tab":
			return m.dispatch(wizard.Retreat{})
		}
	}

	switch q.Kind {
	case inquiry.KindChoice:
		key, ok := msg.(tea.KeyMsg)
		if !ok || key.String() != "enter" {
			var cmd tea.Cmd
			m.list, cmd = m.list.Update(msg)
			return m, cmd
		}
		item, ok := m.list.SelectedItem().(optionItem)
		if !ok {
			return m, nil
		}
		if !q.AutoAdvance {
			return m.dispatch(wizard.Advance{Value: item.value})
		}
		m.session = wizard.Reduce(m.session, wizard.Update{Value: item.value})
		m.advanceToken++
		token, value := m.advanceToken, item.value
		return m, tea.Tick(wizard.AutoAdvanceDelay, func(time.Time) tea.Msg {
			return autoAdvanceMsg{token: token, value: value}
		})

	case inquiry.KindTextarea:
		if key, ok := msg.(tea.KeyMsg); ok {
			switch key.String() {
			case "ctrl+d", "alt+enter":
				return m.dispatch(wizard.Advance{Value: m.area.Value()})
			}
		}
		var cmd tea.Cmd
		m.area, cmd = m.area.Update(msg)
		m.syncValue(m.area.Value())
		return m, cmd

	default:
		if key, ok := msg.(tea.KeyMsg); ok && key.Type == tea.KeyEnter {
			return m.dispatch(wizard.Advance{Value: m.input.Value()})
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		m.syncValue(m.input.Value())
		return m, cmd
	}
}

func (m wizardModel) updateReview(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	if m.session.Submitting {
		// Nothing but ctrl+c while the request is out.
		return m, nil
	}

	switch s := key.String(); s {
	case "esc":
		m.toMenu()
		return m, nil
	case "ctrl+b", "shift+tab":
		return m.dispatch(wizard.Retreat{})
	case "r":
		return m.dispatch(wizard.Restart{})
	case "enter":
		prev := m.session
		m.session = wizard.Reduce(prev, wizard.Submit{})
		if wizard.SubmitStarted(prev, m.session) {
			inq := m.session.Inquiry(m.now())
			m.log.Info("Submitting inquiry", zap.String("projectType", string(inq.ProjectType)))
			return m, tea.Batch(m.spinner.Tick, m.submitCmd(inq))
		}
		m.loadQuestion()
		return m, nil
	default:
		if len(s) == 1 && s[0] >= '1' && s[0] <= '9' {
			items := m.session.ReviewItems()
			if n := int(s[0] - '1'); n < len(items) {
				return m.dispatch(wizard.JumpTo{Step: items[n].Index})
			}
		}
	}
	return m, nil
}

func (m wizardModel) submitCmd(inq inquiry.Inquiry) tea.Cmd {
	submitter := m.submitter
	return func() tea.Msg {
		if submitter == nil {
			return submitResultMsg{err: fmt.Errorf("no submitter configured")}
		}
		ctx, cancel := context.WithTimeout(context.Background(), submitTimeout)
		defer cancel()
		return submitResultMsg{err: submitter.Submit(ctx, inq)}
	}
}

func (m wizardModel) handleSubmitResult(msg submitResultMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.log.Warn("Inquiry submission failed", zap.Error(msg.err))
		m.session = wizard.Reduce(m.session, wizard.SubmitFailed{Message: submitMessage(msg.err)})
		return m, nil
	}
	m.session = wizard.Reduce(m.session, wizard.SubmitSucceeded{})
	if m.session.Succeeded {
		m.log.Info("Inquiry submitted")
		m.step = stepDone
	}
	return m, nil
}

// dispatch applies a navigation action and rebuilds the screen for wherever
// the session ends up.
func (m wizardModel) dispatch(a wizard.Action) (tea.Model, tea.Cmd) {
	m.session = wizard.Reduce(m.session, a)
	m.loadQuestion()
	return m, nil
}

// syncValue records a keystroke edit; unchanged values keep their error.
func (m *wizardModel) syncValue(value string) {
	if value != m.session.Value() {
		m.session = wizard.Reduce(m.session, wizard.Update{Value: value})
	}
}

func (m *wizardModel) toMenu() {
	m.step = stepMenu
	m.session = wizard.New(m.schema)
	m.advanceToken++
	m.list = newList("SKM.digital", menuItems())
	m.applySizes()
}

// loadQuestion builds the input widget for the current question, seeded with
// the stored answer, or switches to review.
func (m *wizardModel) loadQuestion() {
	m.advanceToken++
	q, ok := m.session.Current()
	if !ok {
		m.step = stepReview
		return
	}
	m.step = stepQuestion
	value := m.session.Value()

	switch q.Kind {
	case inquiry.KindChoice:
		m.list = newList(m.session.Prompt(), choiceItems(q))
		if i := q.OptionIndex(value); i >= 0 {
			m.list.Select(i)
		}
	case inquiry.KindTextarea:
		m.area = textarea.New()
		m.area.Placeholder = q.Placeholder
		m.area.ShowLineNumbers = false
		m.area.CharLimit = 0
		m.area.SetValue(value)
		m.area.Focus()
	default:
		m.input = textinput.New()
		m.input.Prompt = stylePrompt.Render("> ")
		m.input.Placeholder = q.Placeholder
		m.input.SetValue(value)
		m.input.Focus()
	}
	m.applySizes()
}

func (m *wizardModel) applySizes() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	m.list.SetSize(m.width, max(m.height-8, 4))
	m.input.Width = m.width - 4
	m.area.SetWidth(m.width - 4)
	m.area.SetHeight(5)
	m.progress.Width = min(m.width-4, 60)
}

func (m wizardModel) View() string {
	switch m.step {
	case stepMenu:
		return m.list.View() + "\n\n" + stylePrompt.Render("Use ↑/↓ to move, Enter to select, q to quit.")
	case stepBooking:
		return styleTitle.Render("Book a 20-minute call") + "\n\n" +
			styleSubtitle.Render("20 minutes. No sales routine. Just technical clarity - and a straight answer.") + "\n\n" +
			styleSummary.Render(m.schedulingURL) + "\n\n" +
			stylePrompt.Render("Press Enter to go back, q to quit.")
	case stepQuestion:
		return m.questionView()
	case stepReview:
		return m.reviewView()
	case stepDone:
		return styleHighlight.Render(m.doneMessage()) + "\n\n" +
			styleSubtitle.Render(fmt.Sprintf("We'll reply within 24 hours at %s.", m.session.Answers[inquiry.FieldEmail])) + "\n\n" +
			stylePrompt.Render("Press Enter for the menu, q to quit.")
	}
	return ""
}

func (m wizardModel) questionView() string {
	q, ok := m.session.Current()
	if !ok {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.progress.ViewAs(m.session.Progress()))
	b.WriteString("\n")
	b.WriteString(styleSubtitle.Render(fmt.Sprintf("Question %d of %d", m.session.Step+1, m.session.Len())))
	b.WriteString("\n\n")

	var hint string
	switch q.Kind {
	case inquiry.KindChoice:
		b.WriteString(m.list.View())
		hint = "Use ↑/↓ to move, Enter to select."
	case inquiry.KindTextarea:
		b.WriteString(styleTitle.Render(m.session.Prompt()))
		b.WriteString("\n\n")
		b.WriteString(m.area.View())
		if limit := q.Rules.MaxLength; limit > 0 {
			b.WriteString("\n")
			b.WriteString(styleSubtitle.Render(fmt.Sprintf("%d/%d", utf8.RuneCountInString(strings.TrimSpace(m.area.Value())), limit)))
		}
		hint = "Ctrl+D or Alt+Enter to continue, Enter for a new line."
	default:
		b.WriteString(styleTitle.Render(m.session.Prompt()))
		b.WriteString("\n\n")
		b.WriteString(m.input.View())
		hint = "Press Enter to continue."
	}

	if msg := m.session.Error(q.ID); msg != "" {
		b.WriteString("\n\n")
		b.WriteString(styleError.Render(msg))
	}
	if !q.Rules.Required {
		hint += " Optional, leave blank to skip."
	}
	b.WriteString("\n\n")
	b.WriteString(stylePrompt.Render(hint + " Ctrl+B back, Esc menu."))
	return b.String()
}

func (m wizardModel) reviewView() string {
	var b strings.Builder
	b.WriteString(m.progress.ViewAs(m.session.Progress()))
	b.WriteString("\n\n")
	b.WriteString(styleHighlight.Render("Review your details"))
	b.WriteString("\n\n")
	for i, item := range m.session.ReviewItems() {
		b.WriteString(styleSubtitle.Render(fmt.Sprintf("%d. %s", i+1, item.Prompt)))
		b.WriteString("\n   ")
		b.WriteString(styleSummary.Render(item.Answer))
		b.WriteString("\n")
	}

	if msg := m.session.SubmitError(); msg != "" {
		b.WriteString("\n")
		b.WriteString(styleError.Render(msg))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	if m.session.Submitting {
		b.WriteString(m.spinner.View() + " Sending...")
		return b.String()
	}
	b.WriteString(stylePrompt.Render("Enter to send, 1-9 to edit an answer, r to start over, Esc for the menu."))
	return b.String()
}

func (m wizardModel) doneMessage() string {
	return fmt.Sprintf("Thanks %s - we've got your details.", m.session.Answers[inquiry.FieldName])
}
