package views

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/adammpkins/hreq/internal/output"
	"github.com/adammpkins/hreq/internal/parser"
	"github.com/adammpkins/hreq/internal/planner"
	"github.com/adammpkins/hreq/internal/runtime"
	"github.com/adammpkins/hreq/internal/types"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			Padding(1, 2)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Padding(0, 2)

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Padding(0, 2)

	itemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Padding(0, 2)

	outputStyle = lipgloss.NewStyle().
			Padding(1, 2).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62"))
)

// View represents a TUI view interface.
type View interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (View, tea.Cmd)
	View() string
}

// BuilderView is an interactive request builder. A form collects the
// method and URL, then request items are typed one at a time and checked
// as they are entered. The viewport shows the planned request until it is
// sent, and the response afterwards.
type BuilderView struct {
	form     *huh.Form
	input    textinput.Model
	viewport viewport.Model
	opts     planner.Options

	method string
	url    string
	items  []string
	comps  []types.RequestComponent

	inputErr error
	err      error
	status   string
	sending  bool
	sent     bool

	width  int
	height int
}

// NewBuilderView creates a new builder view.
func NewBuilderView(opts planner.Options) View {
	return newBuilderView(opts)
}

func newBuilderView(opts planner.Options) *BuilderView {
	input := textinput.New()
	input.Placeholder = "name=value, key:=json, q==search or Header:value"
	input.Prompt = "item> "

	b := &BuilderView{
		input:    input,
		viewport: viewport.New(80, 20),
		opts:     opts,
		width:    80,
		height:   20,
	}

	b.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Method").
				Description("Leave on auto to use POST with a body, GET otherwise").
				Options(
					huh.NewOption("auto", ""),
					huh.NewOption("GET", "GET"),
					huh.NewOption("POST", "POST"),
					huh.NewOption("PUT", "PUT"),
					huh.NewOption("PATCH", "PATCH"),
					huh.NewOption("DELETE", "DELETE"),
					huh.NewOption("HEAD", "HEAD"),
				).
				Value(&b.method).
				Key("method"),

			huh.NewInput().
				Title("URL").
				Description("Enter the target URL; :3000/path targets localhost").
				Placeholder("api.example.com/users").
				Value(&b.url).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("URL is required")
					}
					return nil
				}).
				Key("url"),
		),
	)
	return b
}

// Init initializes the view.
func (b *BuilderView) Init() tea.Cmd {
	return b.form.Init()
}

// Update handles messages.
func (b *BuilderView) Update(msg tea.Msg) (View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		b.width = msg.Width
		b.height = msg.Height
		if b.width == 0 {
			b.width = 80
		}
		if b.height == 0 {
			b.height = 20
		}
		b.updateViewportSize()
	case ErrorMsg:
		b.sending = false
		b.err = msg.Err
		return b, nil
	case SuccessMsg:
		b.sending = false
		b.sent = true
		b.err = nil
		b.status = msg.Message
		b.viewport.SetContent(msg.ResponseBody)
		b.viewport.GotoTop()
		return b, nil
	}

	if b.form.State != huh.StateCompleted {
		if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "esc" {
			return b, tea.Quit
		}
		form, cmd := b.form.Update(msg)
		if f, ok := form.(*huh.Form); ok {
			b.form = f
		}
		if b.form.State == huh.StateCompleted {
			b.refreshPreview()
			return b, tea.Batch(cmd, b.input.Focus())
		}
		return b, cmd
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "esc":
			return b, tea.Quit
		case "enter":
			b.inputErr = b.AddItem(b.input.Value())
			if b.inputErr == nil {
				b.input.SetValue("")
			}
			return b, nil
		case "ctrl+d":
			b.RemoveLast()
			return b, nil
		case "ctrl+s":
			if b.sending {
				return b, nil
			}
			plan, err := b.Plan()
			if err != nil {
				b.err = err
				return b, nil
			}
			b.sending = true
			b.status = "Sending..."
			return b, executePlan(plan)
		case "pgup", "ctrl+u":
			b.viewport.LineUp(b.viewport.Height / 2)
			return b, nil
		case "pgdown":
			b.viewport.LineDown(b.viewport.Height / 2)
			return b, nil
		}
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	b.input, cmd = b.input.Update(msg)
	cmds = append(cmds, cmd)
	b.viewport, cmd = b.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return b, tea.Batch(cmds...)
}

// AddItem parses token and appends it to the request. Blank input is
// ignored.
func (b *BuilderView) AddItem(token string) error {
	if strings.TrimSpace(token) == "" {
		return nil
	}
	comp, err := parser.ParseComponent(token)
	if err != nil {
		return err
	}
	b.items = append(b.items, token)
	b.comps = append(b.comps, comp)
	b.refreshPreview()
	return nil
}

// RemoveLast drops the most recently added item.
func (b *BuilderView) RemoveLast() {
	if len(b.items) == 0 {
		return
	}
	b.items = b.items[:len(b.items)-1]
	b.comps = b.comps[:len(b.comps)-1]
	b.refreshPreview()
}

// Plan builds the execution plan for the current method, URL and items.
func (b *BuilderView) Plan() (*planner.ExecutionPlan, error) {
	cmd := &types.Command{
		Method:     b.method,
		URL:        b.url,
		Components: b.comps,
	}
	return planner.Plan(cmd, b.opts)
}

// Preview renders the planned request, or the planning error.
func (b *BuilderView) Preview() string {
	plan, err := b.Plan()
	if err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v", err))
	}

	var s strings.Builder
	fmt.Fprintf(&s, "%s %s\n", plan.Method, plan.URL)
	for _, q := range plan.Query {
		fmt.Fprintf(&s, "  ?%s=%s\n", q.Name, q.Value)
	}
	for _, h := range plan.Headers {
		fmt.Fprintf(&s, "%s: %s\n", h.Name, h.Value)
	}
	if plan.Body != nil {
		s.WriteString("\n")
		s.WriteString(output.FormatBody([]byte(plan.Body.Content), true))
		s.WriteString("\n")
	}
	return s.String()
}

func (b *BuilderView) refreshPreview() {
	b.err = nil
	b.sent = false
	b.status = ""
	b.viewport.SetContent(b.Preview())
}

// executePlan sends the planned request.
func executePlan(plan *planner.ExecutionPlan) tea.Cmd {
	return func() tea.Msg {
		executor, err := runtime.NewExecutor(plan)
		if err != nil {
			return ErrorMsg{Err: err}
		}

		resp, err := executor.Execute(context.Background(), plan)
		if err != nil {
			return ErrorMsg{Err: err}
		}

		var body strings.Builder
		body.WriteString(output.FormatHeaders(resp, true))
		body.WriteString("\n")
		body.WriteString(output.FormatBody(resp.Body, true))

		return SuccessMsg{
			Message:      fmt.Sprintf("%s in %s", resp.Status, resp.Elapsed.Round(time.Millisecond)),
			ResponseBody: body.String(),
		}
	}
}

// View renders the view.
func (b *BuilderView) View() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("hreq - Interactive Request Builder"))
	s.WriteString("\n\n")

	if b.form.State != huh.StateCompleted {
		s.WriteString(b.form.View())
		s.WriteString("\n")
		s.WriteString(hintStyle.Render("Press 'esc' to quit, 'ctrl+c' to exit"))
		s.WriteString("\n")
		return s.String()
	}

	for _, item := range b.items {
		s.WriteString(itemStyle.Render(wrapText(item, b.width-4)))
		s.WriteString("\n")
	}
	s.WriteString(b.input.View())
	s.WriteString("\n")

	if b.inputErr != nil {
		s.WriteString(errorStyle.Render(b.inputErr.Error()))
		s.WriteString("\n")
		var ce *parser.ComponentError
		if errors.As(b.inputErr, &ce) && ce.Hint() != "" {
			s.WriteString(hintStyle.Render(ce.Hint()))
			s.WriteString("\n")
		}
	}
	if b.err != nil {
		s.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", b.err)))
		s.WriteString("\n")
	}
	if b.status != "" {
		s.WriteString(itemStyle.Render(b.status))
		s.WriteString("\n")
	}

	s.WriteString("\n")
	s.WriteString(outputStyle.Width(b.contentWidth() + 4).Render(b.viewport.View()))
	s.WriteString("\n")
	s.WriteString(hintStyle.Render("enter add item, ctrl+d remove last, ctrl+s send, pgup/pgdn scroll, esc quit"))
	s.WriteString("\n")

	return s.String()
}

// ErrorMsg represents an error message.
type ErrorMsg struct {
	Err error
}

// SuccessMsg represents a success message.
type SuccessMsg struct {
	Message      string
	ResponseBody string
}

func (b *BuilderView) contentWidth() int {
	width := b.width - 6 // Account for border and padding
	if width < 20 {
		width = 20
	}
	return width
}

// updateViewportSize updates the viewport dimensions based on available space.
func (b *BuilderView) updateViewportSize() {
	height := b.height - 12 - len(b.items) // Reserve space for other UI elements
	if height < 5 {
		height = 5
	}
	b.viewport.Width = b.contentWidth()
	b.viewport.Height = height
}

// wrapText wraps text to the specified width, breaking at word boundaries.
func wrapText(text string, width int) string {
	if width <= 0 || len(text) <= width {
		return text
	}

	var result strings.Builder
	currentLine := ""

	for _, word := range strings.Fields(text) {
		testLine := currentLine
		if testLine != "" {
			testLine += " "
		}
		testLine += word

		if len(testLine) > width {
			if currentLine != "" {
				result.WriteString(currentLine)
				result.WriteString("\n")
				currentLine = word
			} else {
				// Word is longer than width, just add it
				result.WriteString(word)
				result.WriteString("\n")
				currentLine = ""
			}
		} else {
			currentLine = testLine
		}
	}

	if currentLine != "" {
		result.WriteString(currentLine)
	}

	return result.String()
}
