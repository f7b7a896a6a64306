package tui

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/space-dodge/internal/backend"
	"github.com/vovakirdan/space-dodge/internal/core"
	"github.com/vovakirdan/space-dodge/internal/storage"
)

// MenuChoice identifies a home menu entry.
type MenuChoice int

const (
	ChoiceNone MenuChoice = iota
	ChoicePlay
	ChoiceLeaderboard
	ChoiceBuyHeart
	ChoiceQuit
)

// MenuItem represents a selectable entry in the home menu.
type MenuItem struct {
	Choice MenuChoice
	Title  string
}

var menuItems = []MenuItem{
	{Choice: ChoicePlay, Title: "Play"},
	{Choice: ChoiceLeaderboard, Title: "Leaderboard"},
	{Choice: ChoiceBuyHeart, Title: "Buy heart"},
	{Choice: ChoiceQuit, Title: "Quit"},
}

const walletTimeout = 5 * time.Second

// walletMsg carries a wallet balance read or purchase result.
type walletMsg struct {
	coins  int
	hearts int
	err    error
	bought bool
}

// MenuModel is the Bubble Tea model for the home screen.
type MenuModel struct {
	items     []MenuItem
	cursor    int
	width     int
	height    int
	wallet    Wallet // nil hides the coins line and the shop entry
	coins     int
	hearts    int
	loaded    bool
	status    string
	config    core.RuntimeConfig
	keyMapper *KeyMapper
	quitting  bool
	selected  MenuChoice
}

// NewMenuModel creates a new menu model.
func NewMenuModel(wallet Wallet, cfg core.RuntimeConfig) MenuModel {
	items := make([]MenuItem, 0, len(menuItems))
	for _, it := range menuItems {
		if it.Choice == ChoiceBuyHeart && wallet == nil {
			continue
		}
		items = append(items, it)
	}

	return MenuModel{
		items:     items,
		width:     cfg.ScreenW,
		height:    cfg.ScreenH,
		wallet:    wallet,
		config:    cfg,
		keyMapper: NewKeyMapper(),
	}
}

// Init loads the wallet balance.
func (m MenuModel) Init() tea.Cmd {
	return m.loadWallet()
}

func (m MenuModel) loadWallet() tea.Cmd {
	w := m.wallet
	if w == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), walletTimeout)
		defer cancel()

		coins, err := w.Coins(ctx)
		if err != nil {
			return walletMsg{err: err}
		}
		hearts, err := w.Hearts(ctx)
		return walletMsg{coins: coins, hearts: hearts, err: err}
	}
}

func (m MenuModel) buyHeart() tea.Cmd {
	w := m.wallet
	if w == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), walletTimeout)
		defer cancel()

		hearts, err := w.BuyHeart(ctx)
		if err != nil {
			return walletMsg{err: err, bought: true}
		}
		coins, err := w.Coins(ctx)
		return walletMsg{coins: coins, hearts: hearts, err: err, bought: true}
	}
}

// insufficientCoins reports a purchase refused for a low balance, locally or
// by the backend.
func insufficientCoins(err error) bool {
	if errors.Is(err, storage.ErrInsufficientCoins) {
		return true
	}
	var apiErr *backend.APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusConflict
}

// Update handles messages for the menu.
func (m MenuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case walletMsg:
		switch {
		case insufficientCoins(msg.err):
			m.status = "Not enough coins"
		case msg.err != nil && msg.bought:
			m.status = "Purchase failed: " + msg.err.Error()
		case msg.err != nil:
			m.status = "Wallet unavailable"
		default:
			m.coins = msg.coins
			m.hearts = msg.hearts
			m.loaded = true
			if msg.bought {
				m.status = "Extra heart bought"
			}
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.config.ScreenW = msg.Width
		m.config.ScreenH = msg.Height
		return m, nil
	}

	return m, nil
}

// handleKey processes keyboard input for menu navigation.
func (m MenuModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.keyMapper.MapKeyToMenuAction(msg) {
	case MenuActionQuit:
		m.quitting = true
		return m, tea.Quit

	case MenuActionUp:
		if m.cursor > 0 {
			m.cursor--
		}

	case MenuActionDown:
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}

	case MenuActionSelect:
		if len(m.items) == 0 {
			return m, nil
		}
		switch choice := m.items[m.cursor].Choice; choice {
		case ChoiceQuit:
			m.quitting = true
			return m, tea.Quit
		case ChoiceBuyHeart:
			m.status = "Buying..."
			return m, m.buyHeart()
		default:
			m.selected = choice
		}
	}

	return m, nil
}

// View renders the menu.
func (m MenuModel) View() string {
	if m.quitting {
		return ""
	}

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(centerText(titleStyle.Render("  S P A C E   D O D G E  "), m.width))
	b.WriteString("\n\n")

	if m.wallet != nil {
		wallet := "Coins: ...  Hearts: ..."
		if m.loaded {
			wallet = fmt.Sprintf("Coins: %d  Extra hearts: %d", m.coins, m.hearts)
		}
		b.WriteString(centerText(wallet, m.width))
		b.WriteString("\n\n")
	}

	for i, item := range m.items {
		cursor := "  "
		if i == m.cursor {
			cursor = "> "
		}
		b.WriteString(centerText(cursor+item.Title, m.width))
		b.WriteString("\n")
	}

	if m.status != "" {
		b.WriteString("\n")
		b.WriteString(centerText(dimStyle.Render(m.status), m.width))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	controls := "Up/Down: Navigate  |  Enter: Select  |  Q: Quit"
	b.WriteString(centerText(dimStyle.Render(controls), m.width))
	b.WriteString("\n")

	return b.String()
}

// Selected returns the chosen entry, or ChoiceNone.
func (m MenuModel) Selected() MenuChoice {
	return m.selected
}

// Hearts returns the purchased extra hearts last read from the wallet.
func (m MenuModel) Hearts() int {
	return m.hearts
}

// IsQuitting returns true if user requested to quit.
func (m MenuModel) IsQuitting() bool {
	return m.quitting
}

// Config returns the current runtime config (may have been updated by resize).
func (m MenuModel) Config() core.RuntimeConfig {
	return m.config
}
