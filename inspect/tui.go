package inspect

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/lookbusy1344/bitcore/regbus"
)

// TUI is the terminal inspector: a register list, a detail panel for the
// selected register, an output log and a command line, wired the way the
// teacher's debugger.TUI wires its panels and key bindings.
type TUI struct {
	Registry *regbus.Registry
	App      *tview.Application

	MainLayout *tview.Flex
	ListView   *tview.TextView
	DetailView *tview.TextView
	OutputView *tview.TextView
	CommandInput *tview.InputField

	selected string
}

// NewTUI creates an inspector over registry.
func NewTUI(registry *regbus.Registry) *TUI {
	t := &TUI{
		Registry: registry,
		App:      tview.NewApplication(),
	}
	t.initializeViews()
	t.buildLayout()
	t.setupKeyBindings()
	t.RefreshAll()
	return t
}

func (t *TUI) initializeViews() {
	t.ListView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWrap(false)
	t.ListView.SetBorder(true).SetTitle(" Registers ")

	t.DetailView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(false)
	t.DetailView.SetBorder(true).SetTitle(" Detail ")

	t.OutputView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWrap(true)
	t.OutputView.SetBorder(true).SetTitle(" Output ")

	t.CommandInput = tview.NewInputField().
		SetLabel("> ").
		SetFieldWidth(0)
	t.CommandInput.SetBorder(true).SetTitle(" Command ")
	t.CommandInput.SetDoneFunc(t.handleCommand)
}

func (t *TUI) buildLayout() {
	top := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(t.ListView, 0, 2, false).
		AddItem(t.DetailView, 0, 1, false)

	t.MainLayout = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(top, 0, 3, false).
		AddItem(t.OutputView, 8, 0, false).
		AddItem(t.CommandInput, 3, 0, true)
}

func (t *TUI) setupKeyBindings() {
	t.App.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch {
		case event.Rune() == 'q' && t.App.GetFocus() != t.CommandInput:
			t.App.Stop()
			return nil
		case event.Key() == tcell.KeyTab:
			t.cycleFocus()
			return nil
		case event.Key() == tcell.KeyCtrlL:
			t.RefreshAll()
			return nil
		}
		return event
	})
}

func (t *TUI) cycleFocus() {
	switch t.App.GetFocus() {
	case t.CommandInput:
		t.App.SetFocus(t.ListView)
	case t.ListView:
		t.App.SetFocus(t.DetailView)
	default:
		t.App.SetFocus(t.CommandInput)
	}
}

func (t *TUI) handleCommand(key tcell.Key) {
	if key != tcell.KeyEnter {
		return
	}
	line := t.CommandInput.GetText()
	if line == "" {
		return
	}
	t.CommandInput.SetText("")

	out, err := ExecuteLine(t.Registry, line)
	if err != nil {
		t.writeOutput(fmt.Sprintf("[red]error:[white] %v\n", err))
	} else if out != "" {
		t.writeOutput(out + "\n")
		t.trackSelection(line)
	}
	t.RefreshAll()
}

// trackSelection updates the detail panel's subject when a command names
// a register (new/set/flip/slice all take the name as their first arg).
func (t *TUI) trackSelection(line string) {
	var verb, name string
	_, _ = fmt.Sscanf(line, "%s %s", &verb, &name)
	if name != "" {
		t.selected = name
	}
}

func (t *TUI) writeOutput(text string) {
	_, _ = t.OutputView.Write([]byte(text))
	t.OutputView.ScrollToEnd()
}

// RefreshAll redraws the list and detail panels from current registry
// state.
func (t *TUI) RefreshAll() {
	t.ListView.Clear()
	for _, name := range t.Registry.Names() {
		reg, err := t.Registry.Get(name)
		if err != nil {
			continue
		}
		fmt.Fprintln(t.ListView, SummaryLine(name, reg))
	}

	t.DetailView.Clear()
	if t.selected != "" {
		if reg, err := t.Registry.Get(t.selected); err == nil {
			fmt.Fprint(t.DetailView, DetailText(t.selected, reg.Current()))
		}
	}
}

// Run starts the terminal event loop; it blocks until the user quits.
func (t *TUI) Run() error {
	t.App.SetRoot(t.MainLayout, true).SetFocus(t.CommandInput)
	return t.App.Run()
}
