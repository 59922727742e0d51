package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/fd1az/p2p-arbitrage/business/arbitrage/app"
	"github.com/fd1az/p2p-arbitrage/business/arbitrage/domain"
	"github.com/fd1az/p2p-arbitrage/internal/asset"
	"github.com/fd1az/p2p-arbitrage/pkg/ui/components"
)

// Phase represents the current UI phase.
type Phase string

const (
	PhaseWelcome Phase = "welcome" // Initial welcome screen
	PhaseForm    Phase = "form"    // Calculator form and results
)

// WelcomeDuration is how long the welcome screen shows before auto-advancing.
const WelcomeDuration = 1500 * time.Millisecond

// DefaultTimeout bounds one calculation started from the form.
const DefaultTimeout = 30 * time.Second

// Form fields, in focus order.
const (
	fieldAsset = iota
	fieldAmount
	fieldBuyCurrency
	fieldSellCurrency
	fieldCount
)

var fieldLabels = [fieldCount]string{
	fieldAsset:        "Asset",
	fieldAmount:       "Amount",
	fieldBuyCurrency:  "Buy currency",
	fieldSellCurrency: "Sell currency",
}

// Model is the main Bubble Tea model for the TUI.
type Model struct {
	ctx      context.Context
	svc      app.Service
	defaults domain.Request
	timeout  time.Duration

	// Components
	keys    KeyMap
	help    help.Model
	spinner spinner.Model
	inputs  []textinput.Model
	result  *components.ResultComponent
	history *components.HistoryComponent
	stats   *components.StatsComponent

	// State
	phase        Phase
	welcomeStart time.Time
	focus        int
	computing    bool
	formErr      string
	quitting     bool
	width        int
	height       int
}

// New creates the calculator model. defaults pre-fills the form and supplies
// the payment methods.
func New(ctx context.Context, svc app.Service, defaults domain.Request) Model {
	inputs := make([]textinput.Model, fieldCount)
	values := [fieldCount]string{
		fieldAsset:        defaults.Asset,
		fieldAmount:       defaults.BuyAmount.String(),
		fieldBuyCurrency:  defaults.BuyCurrency,
		fieldSellCurrency: defaults.SellCurrency,
	}
	for i := range inputs {
		ti := textinput.New()
		ti.Prompt = ""
		ti.CharLimit = 20
		ti.Width = 20
		ti.SetValue(values[i])
		inputs[i] = ti
	}
	inputs[fieldAmount].Placeholder = "150"
	inputs[fieldAsset].Focus()

	return Model{
		ctx:          ctx,
		svc:          svc,
		defaults:     defaults,
		timeout:      DefaultTimeout,
		keys:         DefaultKeyMap(),
		help:         help.New(),
		spinner:      spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(lipgloss.NewStyle().Foreground(ColorSecondary))),
		inputs:       inputs,
		result:       components.NewResultComponent(),
		history:      components.NewHistoryComponent(8),
		stats:        components.NewStatsComponent(),
		phase:        PhaseWelcome,
		welcomeStart: time.Now(),
	}
}

// WithSuggestions enables completion of the asset field from assets and of
// both currency fields from currencies. Right arrow accepts a suggestion.
func (m Model) WithSuggestions(assets, currencies []string) Model {
	accept := key.NewBinding(key.WithKeys("right"))
	for i, list := range map[int][]string{
		fieldAsset:        assets,
		fieldBuyCurrency:  currencies,
		fieldSellCurrency: currencies,
	} {
		m.inputs[i].ShowSuggestions = true
		m.inputs[i].KeyMap.AcceptSuggestion = accept
		m.inputs[i].SetSuggestions(list)
	}
	return m
}

// Init initializes the TUI model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, tickCmd())
}

// tickCmd returns a command that sends a tick every 100ms for the welcome animation.
func tickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg{}
	})
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		// Always allow quit
		if key.Matches(msg, m.keys.Quit) {
			m.quitting = true
			return m, tea.Quit
		}
		// During welcome phase, any other key skips to the form
		if m.phase == PhaseWelcome {
			m.phase = PhaseForm
			return m, nil
		}
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case TickMsg:
		if m.phase != PhaseWelcome {
			return m, nil
		}
		if time.Since(m.welcomeStart) >= WelcomeDuration {
			m.phase = PhaseForm
			return m, nil
		}
		return m, tickCmd()

	case spinner.TickMsg:
		if !m.computing {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case CalculatedMsg:
		m.computing = false
		m.record(msg)
		return m, nil
	}

	return m.updateFocused(msg)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Submit):
		if m.computing {
			return m, nil
		}
		req, err := m.buildRequest()
		if err != nil {
			m.formErr = app.NormalizeError(err).CompactText
			return m, nil
		}
		m.formErr = ""
		m.computing = true
		return m, tea.Batch(m.spinner.Tick, m.calculate(req))

	case key.Matches(msg, m.keys.Next):
		cmd := m.setFocus((m.focus + 1) % fieldCount)
		return m, cmd

	case key.Matches(msg, m.keys.Prev):
		cmd := m.setFocus((m.focus + fieldCount - 1) % fieldCount)
		return m, cmd

	case key.Matches(msg, m.keys.Clear):
		m.history.Clear()
		return m, nil

	case key.Matches(msg, m.keys.Extended):
		m.result.ToggleExtended()
		return m, nil

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}

	return m.updateFocused(msg)
}

func (m Model) updateFocused(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m *Model) setFocus(i int) tea.Cmd {
	m.inputs[m.focus].Blur()
	m.focus = i
	return m.inputs[i].Focus()
}

// buildRequest reads the form into a validated request.
func (m Model) buildRequest() (domain.Request, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(m.inputs[fieldAmount].Value()))
	if err != nil {
		amount = decimal.Zero
	}

	req := domain.Request{
		Asset:             m.inputs[fieldAsset].Value(),
		BuyAmount:         amount,
		BuyCurrency:       m.inputs[fieldBuyCurrency].Value(),
		SellCurrency:      m.inputs[fieldSellCurrency].Value(),
		PaymentMethodBuy:  m.defaults.PaymentMethodBuy,
		PaymentMethodSell: m.defaults.PaymentMethodSell,
	}.WithDefaults()

	if err := req.Validate(); err != nil {
		return domain.Request{}, err
	}
	return req, nil
}

func (m Model) calculate(req domain.Request) tea.Cmd {
	ctx, svc, timeout := m.ctx, m.svc, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		start := time.Now()
		outcome := svc.Calculate(ctx, req)
		return CalculatedMsg{Request: req, Outcome: outcome, Duration: time.Since(start)}
	}
}

func (m Model) record(msg CalculatedMsg) {
	req := msg.Request
	row := components.HistoryRow{
		Time:     time.Now().Format("15:04:05"),
		Route:    fmt.Sprintf("%s %s→%s", req.Asset, req.BuyCurrency, req.SellCurrency),
		Amount:   req.BuyAmount.StringFixed(2),
		Currency: req.SellCurrency,
	}

	if msg.Outcome.Failed() {
		rec := msg.Outcome.Error
		m.result.SetError(components.ErrorData{
			Code:     rec.Code,
			Compact:  rec.CompactText,
			Extended: rec.ExtendedText,
		})
		row.Failed = true
		row.Code = rec.Code
		m.history.Add(row)
		m.stats.Record(true, false, msg.Duration)
		return
	}

	res := msg.Outcome.Result
	m.result.SetResult(components.ResultData{
		Asset:          res.Asset,
		BuyCurrency:    res.BuyCurrency,
		SellCurrency:   res.SellCurrency,
		BuyAmount:      res.BuyAmount,
		BuyPrice:       res.BuyPrice,
		BuyAdvertiser:  res.BuyAdvertiser(),
		Bought:         res.BoughtAssetAmount,
		SellPrice:      res.SellPrice,
		SellAdvertiser: res.SellAdvertiser(),
		Sold:           res.SoldCurrencyAmount,
		Rate:           res.FiatRate,
		FiatTotal:      res.FiatTotalAmount,
		Profit:         res.Profit,
		Duration:       msg.Duration,
	})
	row.Profit = res.Profit
	m.history.Add(row)
	m.stats.Record(false, res.IsProfitable(), msg.Duration)
}

// View renders the TUI.
func (m Model) View() string {
	if m.quitting {
		return "\n  Goodbye!\n\n"
	}
	if m.phase == PhaseWelcome {
		return m.renderWelcomeScreen()
	}

	var b strings.Builder

	b.WriteString(TitleStyle.Render(" P2P Fiat Arbitrage "))
	b.WriteString("\n\n")

	formCol := m.renderForm()
	resultCol := m.result.View()

	// Side by side if enough width
	if m.width > 100 {
		left := BoxStyle.Width(m.width/3 - 2).Render(formCol)
		right := BoxStyle.Width(m.width*2/3 - 4).Render(resultCol)
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, right))
	} else {
		b.WriteString(BoxStyle.Render(formCol))
		b.WriteString("\n")
		b.WriteString(BoxStyle.Render(resultCol))
	}

	b.WriteString("\n\n")
	b.WriteString(m.history.View())
	b.WriteString("\n\n")
	b.WriteString(m.stats.View())
	b.WriteString("\n\n")
	b.WriteString(HelpStyle.Render(m.help.View(m.keys)))

	return b.String()
}

func (m Model) renderForm() string {
	var sb strings.Builder

	sb.WriteString(HeaderStyle.Render("CALCULATE"))
	sb.WriteString("\n\n")

	for i, input := range m.inputs {
		label := LabelStyle.Render(fieldLabels[i])
		if i == m.focus {
			label = FocusedLabelStyle.Render("› " + fieldLabels[i])
		}
		sb.WriteString(label)
		sb.WriteString(input.View())
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(MutedValue.Render(fmt.Sprintf("Pay with %s, receive via %s",
		m.defaults.PaymentMethodBuy, m.defaults.PaymentMethodSell)))
	sb.WriteString("\n")

	switch {
	case m.computing:
		sb.WriteString("\n" + m.spinner.View() + " Querying rates and order books...")
	case m.formErr != "":
		sb.WriteString("\n" + ErrorStyle.Render(m.formErr))
	}

	return sb.String()
}

// renderWelcomeScreen renders the animated welcome screen.
func (m Model) renderWelcomeScreen() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorPrimary)

	goldStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorWarning)

	// Animated dots based on time
	elapsed := time.Since(m.welcomeStart)
	dotCount := int(elapsed.Milliseconds()/300) % 4
	dots := strings.Repeat(".", dotCount)

	var sb strings.Builder

	sb.WriteString("\n\n\n\n")

	logo := `
   ██████╗ ██████╗ ██████╗
   ██╔══██╗╚════██╗██╔══██╗
   ██████╔╝ █████╔╝██████╔╝
   ██╔═══╝ ██╔═══╝ ██╔═══╝
   ██║     ███████╗██║
   ╚═╝     ╚══════╝╚═╝
`
	sb.WriteString(titleStyle.Render(logo))
	sb.WriteString("\n")
	sb.WriteString(MutedValue.Render("   F I A T   A R B I T R A G E"))
	sb.WriteString("\n\n\n")
	sb.WriteString(goldStyle.Render("   buy with one currency, sell for another"))
	sb.WriteString("\n\n")
	sb.WriteString(PositiveValue.Render(fmt.Sprintf("   Loading%s", dots)))
	sb.WriteString("\n\n")
	sb.WriteString(MutedValue.Render("   Press any key to skip, or wait..."))
	sb.WriteString("\n")

	return sb.String()
}

// Run starts the Bubble Tea program and blocks until it exits. Symbols known
// to registry are offered as completions.
func Run(ctx context.Context, svc app.Service, defaults domain.Request, registry *asset.Registry) error {
	m := New(ctx, svc, defaults).WithSuggestions(
		registry.Symbols(asset.KindCrypto),
		registry.Symbols(asset.KindFiat),
	)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
