package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/san-kum/clothsim/internal/config"
	"github.com/san-kum/clothsim/internal/sim"
)

var presetInfo = map[string]string{
	"hang":  "curtain pinned at two corners",
	"drape": "sheet dropped onto the ball",
	"stiff": "heavy canvas",
	"silk":  "light, strain limited",
}

const (
	stateMenu = iota
	stateConfig
	stateSim
)

var menuParamNames = []string{"structural", "shear", "bending", "damping", "mass", "density"}

func menuParams() []config.Param {
	out := make([]config.Param, 0, len(menuParamNames))
	for _, name := range menuParamNames {
		if p, err := config.LookupParam(name); err == nil {
			out = append(out, p)
		}
	}
	return out
}

type menuModel struct {
	state       int
	cursor      int
	presets     []string
	params      []config.Param
	cfg         *config.Config
	paramCursor int
	log         *zap.Logger
	err         error
	live        Model
}

func newMenu(log *zap.Logger) menuModel {
	return menuModel{state: stateMenu, presets: config.ListPresets(), params: menuParams(), log: log}
}

func (m menuModel) Init() tea.Cmd { return nil }

func (m menuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.state == stateSim {
		next, cmd := m.live.Update(msg)
		m.live = next.(Model)
		return m, cmd
	}
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	if m.state == stateMenu {
		return m.menuKey(key)
	}
	return m.configKey(key)
}

func (m menuModel) menuKey(msg tea.KeyMsg) (menuModel, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.presets)-1 {
			m.cursor++
		}
	case "enter", " ":
		m.cfg = config.GetPreset(m.presets[m.cursor])
		m.state, m.paramCursor, m.err = stateConfig, 0, nil
	}
	return m, nil
}

func (m menuModel) configKey(msg tea.KeyMsg) (menuModel, tea.Cmd) {
	p := m.params[m.paramCursor]
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc", "q":
		m.state = stateMenu
	case "up", "k":
		if m.paramCursor > 0 {
			m.paramCursor--
		}
	case "down", "j":
		if m.paramCursor < len(m.params)-1 {
			m.paramCursor++
		}
	case "right", "l":
		p.Set(m.cfg, p.Get(m.cfg)*1.1)
	case "left", "h":
		p.Set(m.cfg, p.Get(m.cfg)/1.1)
	case "s", "enter":
		scene, err := sim.NewScene(m.cfg, m.log)
		if err != nil {
			m.err = err
			return m, nil
		}
		m.live = NewModel(scene, m.log)
		m.state = stateSim
		return m, m.live.Init()
	}
	return m, nil
}

func (m menuModel) View() string {
	switch m.state {
	case stateConfig:
		return m.viewConfig()
	case stateSim:
		return m.live.View()
	}
	return m.viewMenu()
}

func (m menuModel) viewMenu() string {
	st := currentStyles()
	sel := lipgloss.NewStyle().Foreground(CurrentTheme.Text).Bold(true)
	var b strings.Builder
	b.WriteString("\n  " + st.header.Render("CLOTHSIM") + "\n")
	for i, name := range m.presets {
		line := fmt.Sprintf("%-8s %s", name, presetInfo[name])
		if i == m.cursor {
			b.WriteString("  " + st.key.Render("▸ ") + sel.Render(line) + "\n")
		} else {
			b.WriteString("    " + st.label.UnsetWidth().Render(line) + "\n")
		}
	}
	b.WriteString("\n  " + st.keyHints("j/k", "navigate", "enter", "select", "q", "quit") + "\n")
	return b.String()
}

func (m menuModel) viewConfig() string {
	st := currentStyles()
	sel := lipgloss.NewStyle().Foreground(CurrentTheme.Accent).Bold(true)
	var b strings.Builder
	b.WriteString("\n  " + st.header.Render(strings.ToUpper(m.presets[m.cursor])) + "\n")
	for i, p := range m.params {
		line := fmt.Sprintf("%-11s %10.3f", p.Name, p.Get(m.cfg))
		if i == m.paramCursor {
			b.WriteString("  " + st.key.Render("▸ ") + sel.Render(line) + "\n")
		} else {
			b.WriteString("    " + st.label.UnsetWidth().Render(line) + "\n")
		}
	}
	if m.err != nil {
		b.WriteString("\n  " + st.err.Render(m.err.Error()) + "\n")
	}
	b.WriteString("\n  " + st.keyHints("j/k", "select", "h/l", "adjust", "s", "start", "esc", "back") + "\n")
	return b.String()
}

// RunMenu shows the preset picker, then the live view of the chosen scene.
func RunMenu(log *zap.Logger) error {
	_, err := tea.NewProgram(newMenu(log), tea.WithAltScreen()).Run()
	return err
}
