package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// ApiClient handles requests to the SiipCoffee ordering gateway
type ApiClient struct {
	httpClient *http.Client
	BaseURL    string
	SessionID  string
	UseMock    bool
}

// NewApiClient creates a new API client
func NewApiClient() *ApiClient {
	baseURL := os.Getenv("SIIPCOFFEE_API_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	client := &ApiClient{
		httpClient: &http.Client{
			Timeout: time.Second * 10,
		},
		BaseURL:   baseURL,
		SessionID: fmt.Sprintf("cli-%d", time.Now().Unix()),
		UseMock:   false, // Default to trying the real server first
	}

	// Verify connectivity - if server is not available, use mock data
	if !client.ping() {
		fmt.Printf("Warning: gateway at %s is not available. Using mock data.\n", baseURL)
		client.UseMock = true
	}

	return client
}

// ping checks if the gateway is available
func (c *ApiClient) ping() bool {
	resp, err := c.httpClient.Get(c.BaseURL + "/api/health")
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// MenuItem is one purchasable item on the menu
type MenuItem struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
}

// CartLine is one row of the live cart
type CartLine struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
	Notes    string  `json:"notes,omitempty"`
}

// CartView is the gateway's view of a session cart
type CartView struct {
	Items      []CartLine `json:"items"`
	TotalItems int        `json:"total_items"`
	TotalPrice float64    `json:"total_price"`
}

// ChatMessage is one bot reply from the gateway
type ChatMessage struct {
	Text   string `json:"text"`
	Intent string `json:"intent,omitempty"`
}

// Receipt is the record of a completed checkout
type Receipt struct {
	OrderID    string  `json:"order_id"`
	TotalPrice float64 `json:"total_price"`
	Tax        float64 `json:"tax,omitempty"`
	Message    string  `json:"message,omitempty"`
}

// GetMenu retrieves the categorized menu
func (c *ApiClient) GetMenu() (map[string][]MenuItem, error) {
	if c.UseMock {
		return c.getMockMenu(), nil
	}

	resp, err := c.httpClient.Get(c.BaseURL + "/api/menu")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to get menu with status code: %d", resp.StatusCode)
	}

	var menu map[string][]MenuItem
	if err := json.NewDecoder(resp.Body).Decode(&menu); err != nil {
		return nil, err
	}

	return menu, nil
}

// SendChat sends one chat turn and returns the bot reply
func (c *ApiClient) SendChat(message string) (*ChatMessage, error) {
	if c.UseMock {
		return &ChatMessage{Text: "Here is our menu!", Intent: "view_menu"}, nil
	}

	payload := map[string]string{
		"message":    message,
		"session_id": c.SessionID,
	}
	body, err := c.postJSON("/api/chat", payload)
	if err != nil {
		return nil, err
	}

	var response struct {
		Message ChatMessage `json:"message"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, err
	}
	return &response.Message, nil
}

// GetCart retrieves the session's cart
func (c *ApiClient) GetCart() (*CartView, error) {
	if c.UseMock {
		return c.getMockCart(), nil
	}

	resp, err := c.httpClient.Get(fmt.Sprintf("%s/api/cart/%s", c.BaseURL, c.SessionID))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return &CartView{}, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to get cart with status code: %d", resp.StatusCode)
	}

	var view CartView
	if err := json.NewDecoder(resp.Body).Decode(&view); err != nil {
		return nil, err
	}
	return &view, nil
}

// AddItem merges one menu item into the cart
func (c *ApiClient) AddItem(id string, quantity int) (*CartView, error) {
	if c.UseMock {
		return c.getMockCart(), nil
	}

	payload := map[string]any{"id": id, "quantity": quantity}
	body, err := c.postJSON(fmt.Sprintf("/api/cart/%s/items", c.SessionID), payload)
	if err != nil {
		return nil, err
	}

	var view CartView
	if err := json.Unmarshal(body, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

// SetCustomer updates the session's checkout details
func (c *ApiClient) SetCustomer(name, orderType, tableNumber string) error {
	if c.UseMock {
		return nil
	}

	payload := map[string]string{
		"customer_name": name,
		"order_type":    orderType,
		"table_number":  tableNumber,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequest("PUT", fmt.Sprintf("%s/api/cart/%s/customer", c.BaseURL, c.SessionID), bytes.NewBuffer(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("failed to update customer: %s", string(body))
	}
	return nil
}

// Checkout submits the cart and returns the receipt
func (c *ApiClient) Checkout() (*Receipt, error) {
	if c.UseMock {
		return &Receipt{OrderID: "MOCK-1", TotalPrice: 24000, Tax: 2400}, nil
	}

	body, err := c.postJSON(fmt.Sprintf("/api/checkout/%s", c.SessionID), nil)
	if err != nil {
		return nil, err
	}

	var response struct {
		Receipt Receipt `json:"receipt"`
		Error   string  `json:"error"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, err
	}
	if response.Error != "" {
		return nil, fmt.Errorf("%s", response.Error)
	}
	return &response.Receipt, nil
}

// GetOrders retrieves stored receipts for this session's user
func (c *ApiClient) GetOrders() ([]Receipt, error) {
	if c.UseMock {
		return c.getMockOrders(), nil
	}

	resp, err := c.httpClient.Get(fmt.Sprintf("%s/api/orders/user/%s", c.BaseURL, c.SessionID))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var response struct {
		Orders []Receipt `json:"orders"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, err
	}
	return response.Orders, nil
}

func (c *ApiClient) postJSON(path string, payload any) ([]byte, error) {
	var buf bytes.Buffer
	if payload != nil {
		if err := json.NewEncoder(&buf).Encode(payload); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequest("POST", c.BaseURL+path, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	return io.ReadAll(resp.Body)
}

// Mock data generators

func (c *ApiClient) getMockMenu() map[string][]MenuItem {
	return map[string][]MenuItem{
		"espresso_based": {
			{ID: "E001", Name: "Espresso", Price: 12000},
			{ID: "E002", Name: "Cappuccino", Price: 18000},
		},
		"iced_coffee": {
			{ID: "C001", Name: "Iced Coffee Original", Price: 15000},
		},
		"pastry": {
			{ID: "P001", Name: "Butter Croissant", Price: 18000},
		},
	}
}

func (c *ApiClient) getMockCart() *CartView {
	return &CartView{
		Items: []CartLine{
			{ID: "E001", Name: "Espresso", Price: 12000, Quantity: 2},
		},
		TotalItems: 2,
		TotalPrice: 24000,
	}
}

func (c *ApiClient) getMockOrders() []Receipt {
	return []Receipt{
		{OrderID: "MOCK-1", TotalPrice: 24000, Tax: 2400},
		{OrderID: "MOCK-2", TotalPrice: 30000, Tax: 3000},
	}
}
