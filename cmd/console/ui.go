package main

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/muesli/reflow/wordwrap"

	"github.com/jwebster45206/tale-engine/pkg/engine"
	"github.com/jwebster45206/tale-engine/pkg/state"
)

const PlaceHolderText = "Type a command (help for a list)..."

// ConsoleUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	config       *ConsoleConfig
	client       *http.Client
	sessionID    uuid.UUID
	gameState    *state.GameState
	lastReply    *engine.Reply
	log          []string
	logViewport  viewport.Model
	metaViewport viewport.Model
	textarea     textarea.Model
	ready        bool
	width        int
	height       int
	loading      bool

	showQuitModal bool
}

type replyMsg struct {
	resp *SessionResponse
	err  error
}

var (
	logPanelStyle = lipgloss.NewStyle().
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

	speakerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")). // purple
			Bold(true)

	narrationStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // teal

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	battleStyle = lipgloss.NewStyle().
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

	separatorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey
)

func NewConsoleUI(cfg *ConsoleConfig, client *http.Client, sessionID uuid.UUID, reply *engine.Reply) ConsoleUI {
	ta := textarea.New()
	ta.Placeholder = PlaceHolderText
	ta.Focus()
	ta.Prompt = promptStyle.Render(":: ")
	ta.CharLimit = 200
	ta.SetWidth(50)
	ta.SetHeight(1)
	ta.ShowLineNumbers = false

	logVp := viewport.New(50, 20)
	logVp.MouseWheelEnabled = true

	metaVp := viewport.New(20, 20)

	ui := ConsoleUI{
		config:       cfg,
		client:       client,
		sessionID:    sessionID,
		textarea:     ta,
		logViewport:  logVp,
		metaViewport: metaVp,
	}
	ui.log = append(ui.log, titleStyle.Render("TALE ENGINE"), "")
	if reply != nil {
		ui.gameState = reply.State
		ui.lastReply = reply
		ui.log = append(ui.log, renderReply(reply)...)
	}
	return ui
}

func (m ConsoleUI) Init() tea.Cmd {
	return textarea.Blink
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}

	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
		mvCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.MouseMsg:
		m.logViewport, vpCmd = m.logViewport.Update(msg)
		return m, vpCmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		logWidth := int(float64(m.width)*0.75) - 4
		metaWidth := m.width - logWidth - 6

		m.logViewport.Width = logWidth - 2
		m.logViewport.Height = m.height - 7
		m.metaViewport.Width = metaWidth - 2
		m.metaViewport.Height = m.height - 4
		m.textarea.SetWidth(logWidth - 4)
		m.ready = true

		m.writeLogContent()
		m.metaViewport.SetContent(m.writeMetadata())

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil
		case tea.KeyEnter:
			if m.loading {
				return m, nil
			}

			input := strings.TrimSpace(m.textarea.Value())
			m.textarea.Reset()

			if strings.EqualFold(input, "help") {
				m.log = append(m.log, helpText(), "")
				m.writeLogContent()
				return m, nil
			}
			if strings.EqualFold(input, "quit") {
				m.showQuitModal = true
				return m, nil
			}

			cmd, err := m.parseInput(input)
			if err != nil {
				m.log = append(m.log, errorStyle.Render(err.Error()), "")
				m.writeLogContent()
				return m, nil
			}

			if input != "" {
				m.log = append(m.log, infoStyle.Render("> "+input))
			}
			m.loading = true
			m.writeLogContent()
			return m, m.sendCommand(cmd)
		}

	case replyMsg:
		m.loading = false
		if msg.err != nil {
			m.log = append(m.log, errorStyle.Render("Error: "+msg.err.Error()), "")
		} else {
			m.lastReply = msg.resp.Reply
			if msg.resp.Reply != nil {
				m.gameState = msg.resp.Reply.State
				m.log = append(m.log, renderReply(msg.resp.Reply)...)
			}
			m.metaViewport.SetContent(m.writeMetadata())
		}
		m.writeLogContent()
		return m, nil
	}

	m.textarea, tiCmd = m.textarea.Update(msg)
	m.logViewport, vpCmd = m.logViewport.Update(msg)
	m.metaViewport, mvCmd = m.metaViewport.Update(msg)
	return m, tea.Batch(tiCmd, vpCmd, mvCmd)
}

// parseInput maps the player's text onto a game command. An empty input
// advances pending narration.
func (m ConsoleUI) parseInput(input string) (state.Command, error) {
	if input == "" {
		return state.Command{Type: state.CmdContinue}, nil
	}

	fields := strings.Fields(strings.ToLower(input))
	verb := fields[0]
	rest := strings.Join(fields[1:], " ")

	switch verb {
	case "go", "move":
		if rest == "" {
			return state.Command{}, fmt.Errorf("Go where? Try: go north")
		}
		return state.Command{Type: state.CmdMove, Direction: rest}, nil
	case "north", "south", "east", "west", "up", "down":
		return state.Command{Type: state.CmdMove, Direction: verb}, nil
	case "take", "get":
		if rest == "" {
			return state.Command{}, fmt.Errorf("Take what?")
		}
		return state.Command{Type: state.CmdTakeItem, Item: itemID(rest)}, nil
	case "use":
		if rest == "" {
			return state.Command{}, fmt.Errorf("Use what?")
		}
		if m.inBattle() {
			return state.Command{Type: state.CmdBattleAction, Action: state.ActionItem, Subchoice: itemID(rest)}, nil
		}
		return state.Command{Type: state.CmdUseItem, Item: itemID(rest)}, nil
	case "equip":
		if rest == "" {
			return state.Command{}, fmt.Errorf("Equip what?")
		}
		return state.Command{Type: state.CmdEquip, Item: itemID(rest)}, nil
	case "shop":
		return state.Command{Type: state.CmdOpenShop}, nil
	case "buy":
		n, err := strconv.Atoi(rest)
		if err != nil {
			return state.Command{}, fmt.Errorf("Buy which number? Try: buy 1")
		}
		return state.Command{Type: state.CmdBuyItem, Index: n - 1}, nil
	case "choose":
		n, err := strconv.Atoi(rest)
		if err != nil {
			return state.Command{}, fmt.Errorf("Choose which number? Try: choose 1")
		}
		return state.Command{Type: state.CmdSelectChoice, Index: n - 1}, nil
	case "fight":
		return state.Command{Type: state.CmdBattleAction, Action: state.ActionFight}, nil
	case "act":
		return state.Command{Type: state.CmdBattleAction, Action: state.ActionAct, Subchoice: rest}, nil
	case "spare":
		return state.Command{Type: state.CmdBattleAction, Action: state.ActionMercy, Subchoice: state.MercySpare}, nil
	case "flee", "run":
		return state.Command{Type: state.CmdBattleAction, Action: state.ActionMercy, Subchoice: state.MercyFlee}, nil
	case "save":
		return state.Command{Type: state.CmdSave}, nil
	case "load":
		return state.Command{Type: state.CmdLoad}, nil
	case "look":
		return state.Command{Type: state.CmdLookAround}, nil
	default:
		// Bare numbers select a pending choice.
		if n, err := strconv.Atoi(verb); err == nil {
			return state.Command{Type: state.CmdSelectChoice, Index: n - 1}, nil
		}
		return state.Command{}, fmt.Errorf("Unknown command %q. Type help for a list.", verb)
	}
}

// itemID normalizes "butterscotch pie" to the butterscotch_pie content ID.
func itemID(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
}

func (m ConsoleUI) inBattle() bool {
	return m.lastReply != nil && m.lastReply.Battle != nil
}

func (m ConsoleUI) sendCommand(cmd state.Command) tea.Cmd {
	return func() tea.Msg {
		resp, err := sendCommand(m.client, m.config.APIBaseURL, m.sessionID, cmd)
		return replyMsg{resp, err}
	}
}

// renderReply turns one engine reply into log lines.
func renderReply(r *engine.Reply) []string {
	var lines []string

	if r.Info != "" {
		lines = append(lines, infoStyle.Render(r.Info), "")
	}

	if r.BattleResult != nil {
		for _, l := range r.BattleResult.Lines {
			lines = append(lines, battleStyle.Render("* "+l))
		}
		lines = append(lines, "")
	}

	d := r.Directive
	switch d.Type {
	case engine.DirectiveShowText:
		for _, l := range d.Lines {
			if d.Speaker != "" {
				lines = append(lines, speakerStyle.Render(d.Speaker+": ")+narrationStyle.Render(l))
			} else {
				lines = append(lines, narrationStyle.Render(l))
			}
		}
		lines = append(lines, "", promptStyle.Render("(Enter to continue)"), "")
	case engine.DirectiveChoices:
		for _, c := range d.Choices {
			lines = append(lines, infoStyle.Render(fmt.Sprintf("  %d. %s", c.Index+1, c.Text)))
		}
		lines = append(lines, "", promptStyle.Render("(choose a number)"), "")
	case engine.DirectiveTerminal:
		lines = append(lines, titleStyle.Render(d.Message), "")
	case engine.DirectiveScreenChange:
		lines = append(lines, promptStyle.Render("~ "+d.Target+" ~"), "")
	}

	if r.Battle != nil {
		b := r.Battle
		lines = append(lines, battleStyle.Render(fmt.Sprintf("%s  HP %d/%d", b.EnemyName, b.EnemyHP, b.EnemyMaxHP)))
		opts := []string{"fight", "act <" + strings.ToLower(strings.Join(b.Acts, "|")) + ">", "use <item>"}
		if b.CanSpare {
			opts = append(opts, "spare")
		}
		if b.CanFlee {
			opts = append(opts, "flee")
		}
		lines = append(lines, promptStyle.Render("  "+strings.Join(opts, "  ")), "")
	}

	if r.Shop != nil {
		lines = append(lines, titleStyle.Render(r.Shop.Name))
		if r.Shop.Greeting != "" {
			lines = append(lines, narrationStyle.Render(r.Shop.Greeting))
		}
		for _, it := range r.Shop.Items {
			lines = append(lines, infoStyle.Render(fmt.Sprintf("  %d. %s - %dG", it.Index+1, it.Name, it.Price)))
		}
		lines = append(lines, "", promptStyle.Render("(buy <number>)"), "")
	}

	return lines
}

func (m *ConsoleUI) writeLogContent() {
	logWidth := m.logViewport.Width - 6
	if logWidth < 10 {
		logWidth = 10
	}

	var content strings.Builder
	for _, line := range m.log {
		content.WriteString(wordwrap.String(line, logWidth) + "\n")
	}
	if m.loading {
		content.WriteString(promptStyle.Render("...") + "\n")
	}

	m.logViewport.SetContent(content.String())
	m.logViewport.GotoBottom()
}

func (m ConsoleUI) writeMetadata() string {
	var content strings.Builder
	content.WriteString(titleStyle.Render("STATUS") + "\n\n")

	if m.gameState == nil {
		content.WriteString("No game state yet.\n")
		return content.String()
	}
	gs := m.gameState

	content.WriteString(fmt.Sprintf("%s  LV %d\n", gs.Player.Name, gs.Player.Level))
	content.WriteString(fmt.Sprintf("HP %d/%d\n", gs.Player.HP, gs.Player.MaxHP))
	content.WriteString(fmt.Sprintf("EXP %d  Gold %d\n\n", gs.Player.EXP, gs.Player.Gold))

	content.WriteString("Location:\n" + gs.Location + "\n\n")
	content.WriteString("Route:\n" + string(gs.Route) + "\n\n")

	if gs.Player.Weapon != "" {
		content.WriteString("Weapon: " + gs.Player.Weapon + "\n")
	}
	if gs.Player.Armor != "" {
		content.WriteString("Armor: " + gs.Player.Armor + "\n")
	}

	content.WriteString("\nInventory:\n")
	if len(gs.Player.Inventory) == 0 {
		content.WriteString("(empty)\n")
	} else {
		for _, id := range gs.Player.Inventory {
			content.WriteString("• " + id + "\n")
		}
	}

	content.WriteString("\nCommands:\n")
	content.WriteString("• Ctrl+C: Quit\n")
	content.WriteString("• help: Help\n")

	return content.String()
}

func helpText() string {
	return titleStyle.Render("Commands:") + `
• go <direction>, look, take <item>
• use <item>, equip <item>
• shop, buy <number>
• choose <number> (or a bare number)
• fight, act <verb>, spare, flee
• save, load
• Enter on an empty line continues text`
}

func (m ConsoleUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

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
				m.textarea.Focus()
				return m, textarea.Blink
			}
		}
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
	content.WriteString("Unsaved progress will be lost.")
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to quit, N to continue"))

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

	logWidth := int(float64(m.width)*0.75) - 4
	metaWidth := m.width - logWidth - 6

	logPanel := logPanelStyle.Width(logWidth).Height(m.height - 3).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			m.logViewport.View(),
			"",
			separatorStyle.Render(strings.Repeat("─", logWidth-4)),
			m.textarea.View(),
		),
	)

	metaPanel := metaPanelStyle.Width(metaWidth).Height(m.height - 2).Render(
		m.metaViewport.View(),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, logPanel, metaPanel)
}
