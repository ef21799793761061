package views

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"github.com/tgienger/taskdash/internal/api"
	"github.com/tgienger/taskdash/internal/models"
	"github.com/tgienger/taskdash/internal/ui/keys"
	"github.com/tgienger/taskdash/internal/ui/styles"
)

// FocusArea represents which part of the dashboard has focus
type FocusArea int

const (
	FocusLogout FocusArea = iota
	FocusTitle
	FocusDescription
	FocusCategory
	FocusStatus
	FocusSubmit
	FocusCancel // only reachable in edit mode
	FocusTaskList

	focusCount
)

// DashboardView is the task form and list shown after login
type DashboardView struct {
	tasksAPI api.TaskService
	auth     api.AuthService
	store    TokenStore
	token    string
	logger   log.Logger
	styles   *styles.Styles
	keys     keys.KeyMap

	width  int
	height int

	// Task list, replaced wholesale on every successful fetch
	tasks   []models.Task
	loaded  bool
	cursor  int
	scrollY int

	// Form
	draft      models.Draft
	titleIn    textinput.Model
	descIn     textarea.Model
	focus      FocusArea
	saving     bool
	loggingOut bool
}

// NewDashboardView creates a dashboard bound to token
func NewDashboardView(tasks api.TaskService, auth api.AuthService, store TokenStore, token string, logger log.Logger) *DashboardView {
	title := textinput.New()
	title.Placeholder = "Task Title"
	title.CharLimit = 200

	desc := textarea.New()
	desc.Placeholder = "Task Description"
	desc.CharLimit = 1000
	desc.SetWidth(50)
	desc.SetHeight(3)
	desc.ShowLineNumbers = false

	v := &DashboardView{
		tasksAPI: tasks,
		auth:     auth,
		store:    store,
		token:    token,
		logger:   log.With(logger, "view", "dashboard"),
		styles:   styles.NewStyles(),
		keys:     keys.DefaultKeyMap(),
		draft:    models.NewDraft(),
		titleIn:  title,
		descIn:   desc,
		focus:    FocusTitle,
	}
	v.updateFocus()
	return v
}

// Results are stamped with the dashboard that issued the call
type tasksLoadedMsg struct {
	view  *DashboardView
	tasks []models.Task
	err   error
}

type taskSavedMsg struct {
	view *DashboardView
	err  error
}

type taskDeletedMsg struct {
	view *DashboardView
	id   string
	err  error
}

type logoutDoneMsg struct {
	view      *DashboardView
	tokenErr  error
	logoutErr error
	removeErr error
}

func (m tasksLoadedMsg) Target() tea.Model { return m.view }
func (m taskSavedMsg) Target() tea.Model   { return m.view }
func (m taskDeletedMsg) Target() tea.Model { return m.view }
func (m logoutDoneMsg) Target() tea.Model  { return m.view }

// Init fetches the task list
func (v *DashboardView) Init() tea.Cmd {
	return v.loadTasks
}

func (v *DashboardView) loadTasks() tea.Msg {
	tasks, err := v.tasksAPI.ListTasks(context.Background(), v.token)
	return tasksLoadedMsg{view: v, tasks: tasks, err: err}
}

// Tasks returns the currently displayed list
func (v *DashboardView) Tasks() []models.Task {
	return v.tasks
}

// Draft returns the form state
func (v *DashboardView) Draft() models.Draft {
	d := v.draft
	d.Title = v.titleIn.Value()
	d.Description = v.descIn.Value()
	return d
}

// Focus returns the focused element
func (v *DashboardView) Focus() FocusArea {
	return v.focus
}

// Update handles messages
func (v *DashboardView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Drop results issued by an earlier dashboard
	if r, ok := msg.(Result); ok && r.Target() != tea.Model(v) {
		return v, nil
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		contentWidth := styles.ContentWidth(v.width)
		v.descIn.SetWidth(clamp(contentWidth-10, 20, 50))
		return v, nil

	case tasksLoadedMsg:
		if msg.err != nil {
			level.Error(v.logger).Log("msg", "fetch tasks", "err", msg.err)
			return v, nil
		}
		v.tasks = msg.tasks
		v.loaded = true
		if v.cursor >= len(v.tasks) {
			v.cursor = max(0, len(v.tasks)-1)
		}
		v.ensureVisible()
		// The task being edited may have been deleted
		if v.draft.Editing && !v.hasTask(v.draft.EditID) {
			v.resetForm()
		}
		return v, nil

	case taskSavedMsg:
		v.saving = false
		if msg.err != nil {
			level.Error(v.logger).Log("msg", "save task", "err", msg.err)
			return v, nil
		}
		v.resetForm()
		return v, v.loadTasks

	case taskDeletedMsg:
		if msg.err != nil {
			level.Error(v.logger).Log("msg", "delete task", "id", msg.id, "err", msg.err)
			return v, nil
		}
		return v, v.loadTasks

	case logoutDoneMsg:
		v.loggingOut = false
		if msg.tokenErr != nil {
			level.Error(v.logger).Log("msg", "read stored token", "err", msg.tokenErr)
		}
		if msg.logoutErr != nil {
			level.Error(v.logger).Log("msg", "logout", "err", msg.logoutErr)
		}
		if msg.removeErr != nil {
			level.Error(v.logger).Log("msg", "remove stored token", "err", msg.removeErr)
		}
		return v, emit(LoggedOut{})

	case tea.KeyMsg:
		return v.updateKeys(msg)
	}

	return v, nil
}

func (v *DashboardView) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Logout):
		return v, v.logout()

	case key.Matches(msg, v.keys.Submit):
		return v, v.submit()

	case key.Matches(msg, v.keys.Tab):
		v.cycleFocus(1)
		return v, nil

	case key.Matches(msg, v.keys.ShiftTab):
		v.cycleFocus(-1)
		return v, nil

	case key.Matches(msg, v.keys.Back):
		if v.draft.Editing {
			v.resetForm()
		}
		return v, nil
	}

	switch v.focus {
	case FocusTitle:
		if key.Matches(msg, v.keys.Enter) {
			v.cycleFocus(1)
			return v, nil
		}
		var cmd tea.Cmd
		v.titleIn, cmd = v.titleIn.Update(msg)
		return v, cmd

	case FocusDescription:
		// enter inserts a newline
		var cmd tea.Cmd
		v.descIn, cmd = v.descIn.Update(msg)
		return v, cmd

	case FocusCategory:
		switch {
		case key.Matches(msg, v.keys.Left):
			v.draft.Category = v.draft.Category.Prev()
		case key.Matches(msg, v.keys.Right), key.Matches(msg, v.keys.Enter):
			v.draft.Category = v.draft.Category.Next()
		}
		return v, nil

	case FocusStatus:
		switch {
		case key.Matches(msg, v.keys.Left):
			v.draft.Status = v.draft.Status.Prev()
		case key.Matches(msg, v.keys.Right), key.Matches(msg, v.keys.Enter):
			v.draft.Status = v.draft.Status.Next()
		}
		return v, nil

	case FocusSubmit:
		if key.Matches(msg, v.keys.Enter) {
			return v, v.submit()
		}

	case FocusCancel:
		if key.Matches(msg, v.keys.Enter) {
			v.resetForm()
		}

	case FocusLogout:
		if key.Matches(msg, v.keys.Enter) {
			return v, v.logout()
		}

	case FocusTaskList:
		return v.updateTaskList(msg)
	}

	return v, nil
}

func (v *DashboardView) updateTaskList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.String() == "q":
		return v, tea.Quit

	case key.Matches(msg, v.keys.Up):
		if v.cursor > 0 {
			v.cursor--
			v.ensureVisible()
		}

	case key.Matches(msg, v.keys.Down):
		if v.cursor < len(v.tasks)-1 {
			v.cursor++
			v.ensureVisible()
		}

	case key.Matches(msg, v.keys.Edit), key.Matches(msg, v.keys.Enter):
		if len(v.tasks) > 0 {
			v.startEdit(v.tasks[v.cursor])
			return v, textinput.Blink
		}

	case key.Matches(msg, v.keys.Delete):
		if len(v.tasks) > 0 {
			return v, v.deleteTask(v.tasks[v.cursor].ID)
		}
	}
	return v, nil
}

func (v *DashboardView) cycleFocus(dir int) {
	for {
		v.focus = FocusArea((int(v.focus) + dir + int(focusCount)) % int(focusCount))
		if v.focus != FocusCancel || v.draft.Editing {
			break
		}
	}
	v.updateFocus()
}

func (v *DashboardView) updateFocus() {
	v.titleIn.Blur()
	v.descIn.Blur()

	switch v.focus {
	case FocusTitle:
		v.titleIn.Focus()
	case FocusDescription:
		v.descIn.Focus()
	}
}

func (v *DashboardView) ensureVisible() {
	visibleItems := v.visibleItems()
	if v.cursor < v.scrollY {
		v.scrollY = v.cursor
	} else if v.cursor >= v.scrollY+visibleItems {
		v.scrollY = v.cursor - visibleItems + 1
	}
}

// visibleItems is how many task items fit below the form. Each item is 3 lines + 1 margin.
func (v *DashboardView) visibleItems() int {
	availableHeight := v.height - 26
	if availableHeight < 4 {
		availableHeight = 4
	}
	return max(availableHeight/4, 1)
}

func (v *DashboardView) hasTask(id string) bool {
	for _, t := range v.tasks {
		if t.ID == id {
			return true
		}
	}
	return false
}

func (v *DashboardView) startEdit(task models.Task) {
	v.draft = models.DraftFromTask(task)
	v.titleIn.SetValue(task.Title)
	v.descIn.SetValue(task.Description)
	v.focus = FocusTitle
	v.updateFocus()
}

// resetForm clears the form and returns it to create mode
func (v *DashboardView) resetForm() {
	v.draft.Reset()
	v.titleIn.Reset()
	v.descIn.Reset()
	if v.focus == FocusCancel {
		v.focus = FocusSubmit
	}
	v.updateFocus()
}

// submit creates or updates a task from the form
func (v *DashboardView) submit() tea.Cmd {
	if v.saving {
		return nil
	}
	draft := v.Draft()
	if err := draft.Validate(); err != nil {
		v.focus = FocusTitle
		v.updateFocus()
		return nil
	}
	v.saving = true

	tasks, token := v.tasksAPI, v.token
	return func() tea.Msg {
		var err error
		if draft.Editing {
			_, err = tasks.UpdateTask(context.Background(), token, draft.EditID, draft.Task())
		} else {
			_, err = tasks.CreateTask(context.Background(), token, draft.Task())
		}
		return taskSavedMsg{view: v, err: err}
	}
}

func (v *DashboardView) deleteTask(id string) tea.Cmd {
	tasks, token := v.tasksAPI, v.token
	return func() tea.Msg {
		return taskDeletedMsg{view: v, id: id, err: tasks.DeleteTask(context.Background(), token, id)}
	}
}

// logout revokes the stored token and removes it locally even if revocation fails
func (v *DashboardView) logout() tea.Cmd {
	if v.loggingOut {
		return nil
	}
	v.loggingOut = true

	auth, store, fallback := v.auth, v.store, v.token
	return func() tea.Msg {
		done := logoutDoneMsg{view: v}
		token, err := store.Token()
		if err != nil {
			done.tokenErr = err
			token = fallback
		}
		done.logoutErr = auth.Logout(context.Background(), token)
		done.removeErr = store.RemoveToken()
		return done
	}
}

// View renders the view
func (v *DashboardView) View() string {
	var b strings.Builder

	b.WriteString(v.renderHeader())
	b.WriteString("\n\n")
	b.WriteString(v.renderForm())
	b.WriteString("\n\n")
	b.WriteString(v.renderTaskList())
	b.WriteString("\n")
	b.WriteString(v.renderHelp())

	return styles.CenterView(b.String(), v.width, v.height)
}

func (v *DashboardView) logoutStyle() lipgloss.Style {
	if v.focus == FocusLogout {
		return v.styles.ButtonDangerFocused
	}
	return v.styles.ButtonDanger
}

func (v *DashboardView) renderHeader() string {
	return lipgloss.JoinHorizontal(lipgloss.Center,
		v.styles.Title.Render("Task Dashboard"),
		"  ",
		v.logoutStyle().Render("Logout"),
	)
}

func (v *DashboardView) renderForm() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)
	inputWidth := clamp(contentWidth-10, 20, 50)

	heading, button := "Add New Task", "Add Task"
	if v.draft.Editing {
		heading, button = "Edit Task", "Update Task"
	}

	titleStyle, descStyle := s.Input, s.Input
	catStyle, statusStyle := s.Button, s.Button
	submitStyle, cancelStyle := s.Button, s.Button
	switch v.focus {
	case FocusTitle:
		titleStyle = s.InputFocused
	case FocusDescription:
		descStyle = s.InputFocused
	case FocusCategory:
		catStyle = s.ButtonFocused
	case FocusStatus:
		statusStyle = s.ButtonFocused
	case FocusSubmit:
		submitStyle = s.ButtonFocused
	case FocusCancel:
		cancelStyle = s.ButtonFocused
	}

	catLabel := lipgloss.NewStyle().Foreground(styles.CategoryColor(v.draft.Category)).Render(string(v.draft.Category))
	statusLabel := lipgloss.NewStyle().Foreground(styles.StatusColor(v.draft.Status)).Render(string(v.draft.Status))

	selectors := lipgloss.JoinHorizontal(lipgloss.Center,
		catStyle.Render("◀ "+catLabel+" ▶"),
		"  ",
		statusStyle.Render("◀ "+statusLabel+" ▶"),
	)

	buttons := submitStyle.Render(button)
	if v.draft.Editing {
		buttons = lipgloss.JoinHorizontal(lipgloss.Center, buttons, "  ", cancelStyle.Render("Cancel"))
	}

	form := lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render(heading),
		titleStyle.Width(inputWidth).Render(v.titleIn.View()),
		descStyle.Render(v.descIn.View()),
		selectors,
		buttons,
	)

	panel := s.Panel
	if v.focus != FocusTaskList && v.focus != FocusLogout {
		panel = s.PanelFocused
	}
	return panel.Render(form)
}

func (v *DashboardView) renderTaskList() string {
	s := v.styles

	if len(v.tasks) == 0 {
		if !v.loaded {
			return s.TitleMuted.Render("Loading tasks...")
		}
		return s.TitleMuted.Render("No tasks yet. Add one above.")
	}

	var items []string
	endIdx := min(v.scrollY+v.visibleItems(), len(v.tasks))
	for i := v.scrollY; i < endIdx; i++ {
		items = append(items, v.renderTaskItem(v.tasks[i], i == v.cursor && v.focus == FocusTaskList))
	}

	return lipgloss.JoinVertical(lipgloss.Left, items...)
}

func (v *DashboardView) renderTaskItem(task models.Task, selected bool) string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)
	width := max(contentWidth-4, 30)

	itemStyle := s.ListItem.Width(width)
	if selected {
		itemStyle = s.ListSelected.Width(width)
	}

	desc := task.Description
	if desc == "" {
		desc = s.TitleMuted.Render("No description")
	}

	meta := fmt.Sprintf("Category: %s  Status: %s",
		lipgloss.NewStyle().Foreground(styles.CategoryColor(task.Category)).Render(string(task.Category)),
		lipgloss.NewStyle().Foreground(styles.StatusColor(task.Status)).Render(string(task.Status)),
	)

	return itemStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		s.TaskTitle.Render(task.Title),
		desc,
		s.TaskMeta.Render(meta),
	)) + "\n"
}

func (v *DashboardView) renderHelp() string {
	s := v.styles
	if v.focus == FocusTaskList {
		return s.Help.Render(
			fmt.Sprintf("%s/%s edit • %s delete • %s form • %s logout • %s quit",
				s.HelpKey.Render("e"),
				s.HelpKey.Render("↵"),
				s.HelpKey.Render("d"),
				s.HelpKey.Render("tab"),
				s.HelpKey.Render("ctrl+x"),
				s.HelpKey.Render("q"),
			),
		)
	}

	cancel := ""
	if v.draft.Editing {
		cancel = " • " + s.HelpKey.Render("esc") + " cancel"
	}
	return s.Help.Render(
		fmt.Sprintf("%s next • %s option • %s save%s • %s logout",
			s.HelpKey.Render("tab"),
			s.HelpKey.Render("←/→"),
			s.HelpKey.Render("ctrl+s"),
			cancel,
			s.HelpKey.Render("ctrl+x"),
		),
	)
}
