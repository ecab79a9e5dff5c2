package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Styling
var (
	docStyle = lipgloss.NewStyle().Margin(1, 2)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#0a84ff")).
			Padding(0, 1)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#30d158")).
			Padding(0, 1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#ff453a")).
			Padding(0, 1)
)

// Model defines the application state
type Model struct {
	mainMenu    list.Model
	menuList    list.Model
	cartView    table.Model
	chatLog     []string
	textInput   textinput.Model
	spinner     spinner.Model
	client      *ApiClient
	cart        *CartView
	receipt     *Receipt
	currentView string
	error       string
}

// item represents a list item
type item struct {
	title, desc string
	id          string
}

// FilterValue implements list.Item interface
func (i item) FilterValue() string { return i.title }

// Title implements list.Item interface
func (i item) Title() string { return i.title }

// Description implements list.Item interface
func (i item) Description() string { return i.desc }

// Initialize the model
func initialModel() Model {
	// Initialize spinner
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	// Initialize main menu items
	items := []list.Item{
		item{title: "Browse Menu", desc: "See what SiipCoffee serves"},
		item{title: "Chat", desc: "Order by talking to the barista bot"},
		item{title: "Cart", desc: "Review your cart and check out"},
		item{title: "Order History", desc: "Past orders and receipts"},
		item{title: "Exit", desc: "Exit the application"},
	}

	// Initialize main menu
	mainMenu := list.New(items, list.NewDefaultDelegate(), 0, 0)
	mainMenu.Title = "SiipCoffee"

	// Initialize menu browser
	menuList := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	menuList.Title = "Menu"

	// Initialize cart table
	columns := []table.Column{
		{Title: "Item", Width: 24},
		{Title: "Qty", Width: 5},
		{Title: "Price", Width: 10},
		{Title: "Line Total", Width: 12},
	}
	cartTable := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(7),
	)

	// Initialize text input
	ti := textinput.New()
	ti.Placeholder = "Say something..."
	ti.CharLimit = 156
	ti.Width = 40

	// Initialize API client
	client := NewApiClient()

	return Model{
		mainMenu:    mainMenu,
		menuList:    menuList,
		cartView:    cartTable,
		spinner:     s,
		textInput:   ti,
		client:      client,
		currentView: "main",
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, tea.EnterAltScreen)
}

// Update handles UI updates
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		h, v := docStyle.GetFrameSize()
		m.mainMenu.SetSize(msg.Width-h, msg.Height-v)
		m.menuList.SetSize(msg.Width-h, msg.Height-v)
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "q":
			if !m.textInput.Focused() {
				return m, tea.Quit
			}
		case "enter":
			switch m.currentView {
			case "main":
				selected, ok := m.mainMenu.SelectedItem().(item)
				if ok {
					switch selected.title {
					case "Exit":
						return m, tea.Quit
					case "Browse Menu":
						m.currentView = "menu"
						return m, fetchMenu(m.client)
					case "Chat":
						m.currentView = "chat"
						m.textInput.Focus()
						return m, nil
					case "Cart":
						m.currentView = "cart"
						return m, fetchCart(m.client)
					case "Order History":
						m.currentView = "orders"
						return m, fetchOrders(m.client)
					}
				}
			case "menu":
				if selected, ok := m.menuList.SelectedItem().(item); ok {
					return m, addToCart(m.client, selected.id)
				}
			case "chat":
				text := strings.TrimSpace(m.textInput.Value())
				if text != "" {
					m.chatLog = append(m.chatLog, "you: "+text)
					m.textInput.SetValue("")
					return m, sendChat(m.client, text)
				}
			}
		case "esc":
			if m.currentView != "main" {
				m.currentView = "main"
				m.textInput.Blur()
				m.error = ""
				m.receipt = nil
			}
		case "x":
			if m.currentView == "cart" {
				return m, doCheckout(m.client)
			}
		}
	case menuMsg:
		m.menuList.SetItems(convertMenuToItems(msg.menu))
		return m, nil
	case cartMsg:
		m.cart = msg.cart
		m.cartView.SetRows(convertCartToRows(msg.cart))
		if m.currentView == "menu" {
			m.error = successStyle.Render(fmt.Sprintf("Added. Cart now holds %d items.", msg.cart.TotalItems))
		}
		return m, nil
	case chatMsg:
		m.chatLog = append(m.chatLog, "bot: "+msg.reply.Text)
		return m, nil
	case receiptMsg:
		m.receipt = msg.receipt
		return m, fetchCart(m.client)
	case ordersMsg:
		m.mainMenu.NewStatusMessage(fmt.Sprintf("%d stored orders", len(msg.orders)))
		m.chatLog = nil
		for _, r := range msg.orders {
			m.chatLog = append(m.chatLog, fmt.Sprintf("%s  total %.0f  tax %.0f", r.OrderID, r.TotalPrice, r.Tax))
		}
		return m, nil
	case errorMsg:
		m.error = errorStyle.Render(msg.err)
		return m, nil
	}

	var cmd tea.Cmd
	switch m.currentView {
	case "main":
		m.mainMenu, cmd = m.mainMenu.Update(msg)
	case "menu":
		m.menuList, cmd = m.menuList.Update(msg)
	case "cart":
		m.cartView, cmd = m.cartView.Update(msg)
	case "chat":
		m.textInput, cmd = m.textInput.Update(msg)
	}

	return m, cmd
}

// View renders the UI
func (m Model) View() string {
	switch m.currentView {
	case "main":
		return docStyle.Render(m.mainMenu.View())
	case "menu":
		help := "\nPress 'enter' to add the selected item to your cart, 'esc' to go back\n"
		if m.error != "" {
			help += m.error + "\n"
		}
		return docStyle.Render(titleStyle.Render("Menu") + "\n\n" + m.menuList.View() + help)
	case "cart":
		view := titleStyle.Render("Your Cart") + "\n\n" + m.cartView.View() + "\n"
		if m.cart != nil {
			view += infoStyle.Render(fmt.Sprintf("Total: %.0f", m.cart.TotalPrice)) + "\n"
		}
		if m.receipt != nil {
			view += successStyle.Render(fmt.Sprintf("Order %s confirmed! Total %.0f (tax %.0f)",
				m.receipt.OrderID, m.receipt.TotalPrice, m.receipt.Tax)) + "\n"
		}
		if m.error != "" {
			view += m.error + "\n"
		}
		view += "\nPress 'x' to check out, 'esc' to go back"
		return docStyle.Render(view)
	case "chat":
		view := titleStyle.Render("Barista Chat") + "\n\n"
		for _, line := range m.chatLog {
			view += line + "\n"
		}
		view += "\n" + m.textInput.View()
		if m.error != "" {
			view += "\n" + m.error
		}
		view += "\nPress 'esc' to go back"
		return docStyle.Render(view)
	case "orders":
		view := titleStyle.Render("Order History") + "\n\n"
		if len(m.chatLog) == 0 {
			view += "No stored orders yet\n"
		}
		for _, line := range m.chatLog {
			view += line + "\n"
		}
		view += "\nPress 'esc' to go back"
		return docStyle.Render(view)
	default:
		return "Loading..."
	}
}

// Custom message types for the tea.Model
type menuMsg struct {
	menu map[string][]MenuItem
}

type cartMsg struct {
	cart *CartView
}

type chatMsg struct {
	reply *ChatMessage
}

type receiptMsg struct {
	receipt *Receipt
}

type ordersMsg struct {
	orders []Receipt
}

type errorMsg struct {
	err string
}

// fetchMenu retrieves the menu from the gateway
func fetchMenu(client *ApiClient) tea.Cmd {
	return func() tea.Msg {
		menu, err := client.GetMenu()
		if err != nil {
			return errorMsg{err: fmt.Sprintf("Error fetching menu: %v", err)}
		}
		return menuMsg{menu: menu}
	}
}

// fetchCart retrieves the live cart
func fetchCart(client *ApiClient) tea.Cmd {
	return func() tea.Msg {
		cart, err := client.GetCart()
		if err != nil {
			return errorMsg{err: fmt.Sprintf("Error fetching cart: %v", err)}
		}
		return cartMsg{cart: cart}
	}
}

// addToCart merges one item into the cart
func addToCart(client *ApiClient, id string) tea.Cmd {
	return func() tea.Msg {
		cart, err := client.AddItem(id, 1)
		if err != nil {
			return errorMsg{err: fmt.Sprintf("Error adding item: %v", err)}
		}
		return cartMsg{cart: cart}
	}
}

// sendChat runs one chat turn
func sendChat(client *ApiClient, text string) tea.Cmd {
	return func() tea.Msg {
		reply, err := client.SendChat(text)
		if err != nil {
			return errorMsg{err: fmt.Sprintf("Error sending message: %v", err)}
		}
		return chatMsg{reply: reply}
	}
}

// doCheckout submits the cart
func doCheckout(client *ApiClient) tea.Cmd {
	return func() tea.Msg {
		receipt, err := client.Checkout()
		if err != nil {
			return errorMsg{err: fmt.Sprintf("Checkout failed: %v", err)}
		}
		return receiptMsg{receipt: receipt}
	}
}

// fetchOrders retrieves stored receipts
func fetchOrders(client *ApiClient) tea.Cmd {
	return func() tea.Msg {
		orders, err := client.GetOrders()
		if err != nil {
			return errorMsg{err: fmt.Sprintf("Error fetching orders: %v", err)}
		}
		return ordersMsg{orders: orders}
	}
}

// convertMenuToItems flattens the categorized menu into list items
func convertMenuToItems(menu map[string][]MenuItem) []list.Item {
	categories := make([]string, 0, len(menu))
	for category := range menu {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	var items []list.Item
	for _, category := range categories {
		for _, mi := range menu[category] {
			items = append(items, item{
				title: mi.Name,
				desc:  fmt.Sprintf("%s - %.0f", strings.ReplaceAll(category, "_", " "), mi.Price),
				id:    mi.ID,
			})
		}
	}
	return items
}

// convertCartToRows maps cart lines onto table rows
func convertCartToRows(cart *CartView) []table.Row {
	rows := make([]table.Row, 0, len(cart.Items))
	for _, line := range cart.Items {
		rows = append(rows, table.Row{
			line.Name,
			fmt.Sprintf("%d", line.Quantity),
			fmt.Sprintf("%.0f", line.Price),
			fmt.Sprintf("%.0f", line.Price*float64(line.Quantity)),
		})
	}
	return rows
}

func main() {
	p := tea.NewProgram(initialModel())
	if _, err := p.Run(); err != nil {
		fmt.Printf("Error running program: %v", err)
		os.Exit(1)
	}
}
