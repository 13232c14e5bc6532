package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/alexanderramin/estimator/internal/cli/formatter"
	"github.com/alexanderramin/estimator/internal/domain"
	"github.com/alexanderramin/estimator/internal/estimate"
	"github.com/alexanderramin/estimator/internal/session"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

type browseKeyMap struct {
	Up        key.Binding
	Down      key.Binding
	ShiftUp   key.Binding
	ShiftDown key.Binding
	Delete    key.Binding
	Undo      key.Binding
	Help      key.Binding
	Quit      key.Binding
}

func defaultBrowseKeys() browseKeyMap {
	return browseKeyMap{
		Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		ShiftUp:   key.NewBinding(key.WithKeys("K", "shift+up"), key.WithHelp("K", "move up")),
		ShiftDown: key.NewBinding(key.WithKeys("J", "shift+down"), key.WithHelp("J", "move down")),
		Delete:    key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "delete")),
		Undo:      key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "undo")),
		Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:      key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k browseKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.ShiftUp, k.ShiftDown, k.Delete, k.Undo, k.Help, k.Quit}
}

func (k browseKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down},
		{k.ShiftUp, k.ShiftDown},
		{k.Delete, k.Undo},
		{k.Help, k.Quit},
	}
}

// browseResultMsg carries the outcome of an edit made from the browser.
type browseResultMsg struct {
	verb string
	res  estimate.Result
}

// browseModel is a keyboard-driven view of one estimate tree. Edits go
// through the session, so they are persisted and undoable like any other.
type browseModel struct {
	sess     *session.Session
	estimate *domain.Estimate
	currency string
	readOnly bool

	keys   browseKeyMap
	help   help.Model
	cursor int
	status string
}

func newBrowseModel(sess *session.Session, e *domain.Estimate, currency string) browseModel {
	return browseModel{
		sess:     sess,
		estimate: e,
		currency: currency,
		readOnly: e.IsLocked(),
		keys:     defaultBrowseKeys(),
		help:     help.New(),
	}
}

func (m browseModel) Init() tea.Cmd { return nil }

// refs lists node refs in display order, matching EstimateTreeItems.
func (m browseModel) refs() []domain.NodeRef {
	var out []domain.NodeRef
	estimate.Walk(m.sess.Tree(), func(n domain.Node, _ int) bool {
		out = append(out, n.Ref())
		return true
	})
	return out
}

func (m browseModel) selected() (domain.NodeRef, bool) {
	refs := m.refs()
	if m.cursor < 0 || m.cursor >= len(refs) {
		return domain.NodeRef{}, false
	}
	return refs[m.cursor], true
}

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil

	case browseResultMsg:
		m.status = describeResult(msg.verb, msg.res)
		if msg.res.Node != nil && msg.verb != "delete" {
			for i, ref := range m.refs() {
				if ref == msg.res.Node.Ref() {
					m.cursor = i
				}
			}
		}
		m.cursor = min(m.cursor, max(len(m.refs())-1, 0))
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		case key.Matches(msg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, m.keys.Down):
			if m.cursor < len(m.refs())-1 {
				m.cursor++
			}
		case key.Matches(msg, m.keys.ShiftUp):
			return m, m.edit("move", func(ctx context.Context, ref domain.NodeRef) estimate.Result {
				return m.sess.Shift(ctx, ref, -1)
			})
		case key.Matches(msg, m.keys.ShiftDown):
			return m, m.edit("move", func(ctx context.Context, ref domain.NodeRef) estimate.Result {
				return m.sess.Shift(ctx, ref, 1)
			})
		case key.Matches(msg, m.keys.Delete):
			return m, m.edit("delete", func(ctx context.Context, ref domain.NodeRef) estimate.Result {
				return m.sess.DeleteNode(ctx, ref)
			})
		case key.Matches(msg, m.keys.Undo):
			if m.readOnly {
				m.status = domain.ErrLocked.Error()
				return m, nil
			}
			sess := m.sess
			return m, func() tea.Msg {
				return browseResultMsg{verb: "undo", res: sess.Undo(context.Background())}
			}
		}
	}
	return m, nil
}

func (m browseModel) edit(verb string, fn func(ctx context.Context, ref domain.NodeRef) estimate.Result) tea.Cmd {
	if m.readOnly {
		return func() tea.Msg {
			return browseResultMsg{verb: verb, res: estimate.Result{Outcome: estimate.Rejected, Reason: domain.ErrLocked.Error()}}
		}
	}
	ref, ok := m.selected()
	if !ok {
		return nil
	}
	return func() tea.Msg {
		return browseResultMsg{verb: verb, res: fn(context.Background(), ref)}
	}
}

func describeResult(verb string, res estimate.Result) string {
	switch res.Outcome {
	case estimate.Rejected:
		return formatter.StyleRed.Render(fmt.Sprintf("%s rejected: %s", verb, res.Reason))
	case estimate.NoOp:
		return formatter.Dim(res.Reason)
	}
	if res.PersistErr != nil {
		return formatter.StyleRed.Render(fmt.Sprintf("%s not saved: %v", verb, res.PersistErr))
	}
	if verb == "undo" {
		return formatter.StyleGreen.Render("Undone")
	}
	return formatter.StyleGreen.Render(pastTense(verb))
}

func (m browseModel) View() string {
	var b strings.Builder

	b.WriteString(formatter.Bold(m.estimate.Title) + "  " + formatter.StatusPill(m.estimate.Status) + "\n\n")

	snap := m.sess.Snapshot()
	items := formatter.EstimateTreeItems(snap.Tree, formatter.TreeOptions{Currency: m.currency})
	if len(items) == 0 {
		b.WriteString(formatter.Dim("No groups or items yet.") + "\n")
	} else {
		lines := strings.Split(strings.TrimSuffix(formatter.RenderTree(items), "\n"), "\n")
		for i, line := range lines {
			if i == m.cursor {
				b.WriteString(formatter.StyleHeader.Render("▸ ") + line + "\n")
			} else {
				b.WriteString("  " + line + "\n")
			}
		}
	}

	b.WriteString("\n" + formatter.FormatTotals(snap.Totals, m.currency))
	if m.status != "" {
		b.WriteString("\n" + m.status + "\n")
	}
	b.WriteString("\n" + m.help.View(m.keys))
	return b.String()
}

func newEstimateBrowseCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "browse ID",
		Short: "Browse and rearrange an estimate tree interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !app.interactive() {
				return fmt.Errorf("browse needs an interactive terminal; use 'estimate show' instead")
			}
			ctx := context.Background()
			id, err := resolveEstimateID(ctx, app, args[0])
			if err != nil {
				return err
			}
			e, err := app.Estimates.GetByID(ctx, id)
			if err != nil {
				return err
			}
			sess, err := app.Estimates.Open(ctx, id)
			if err != nil {
				return err
			}
			defer sess.Close()

			_, err = tea.NewProgram(newBrowseModel(sess, e, app.currency()), tea.WithAltScreen()).Run()
			return err
		},
	}
}
