// Package paymentprovider реализует узкий клиент внешнего платёжного
// провайдера: создание продукта, цены и сессии оплаты, запрос статуса сессии.
// Ключ API передаётся при конструировании клиента, глобального состояния нет.
package paymentprovider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Client клиент платёжного провайдера.
type Client struct {
	apiKey     string
	apiURL     string
	httpClient *http.Client
}

// NewClient создаёт новый клиент провайдера.
func NewClient(apiKey, apiURL string) *Client {
	return &Client{
		apiKey:     apiKey,
		apiURL:     apiURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// API провайдера принимает form-encoded тела.
func (c *Client) newRequest(ctx context.Context, method, path string, form url.Values) (*http.Request, error) {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequestWithContext(ctx, method, c.apiURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	return req, nil
}

func (c *Client) do(req *http.Request, result any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		var apiErr apiError
		if err := json.Unmarshal(raw, &apiErr); err == nil && apiErr.Error.Message != "" {
			return fmt.Errorf("provider error: %s", apiErr.Error.Message)
		}
		return fmt.Errorf("provider error: unexpected status %s", resp.Status)
	}
	return json.Unmarshal(raw, result)
}

// CreateProduct создаёт продукт у провайдера и возвращает его идентификатор.
func (c *Client) CreateProduct(ctx context.Context, name, description string) (string, error) {
	form := url.Values{}
	form.Set("name", name)
	form.Set("description", description)

	req, err := c.newRequest(ctx, http.MethodPost, "/products", form)
	if err != nil {
		return "", err
	}
	var product Product
	if err := c.do(req, &product); err != nil {
		return "", err
	}
	return product.ID, nil
}

// CreatePrice создаёт цену для продукта. Сумма передаётся в минорных
// единицах валюты.
func (c *Client) CreatePrice(ctx context.Context, productID string, unitAmount int64, currency string) (string, error) {
	form := url.Values{}
	form.Set("product", productID)
	form.Set("unit_amount", strconv.FormatInt(unitAmount, 10))
	form.Set("currency", currency)

	req, err := c.newRequest(ctx, http.MethodPost, "/prices", form)
	if err != nil {
		return "", err
	}
	var price Price
	if err := c.do(req, &price); err != nil {
		return "", err
	}
	return price.ID, nil
}

// CreateCheckoutSession создаёт сессию оплаты и возвращает её вместе со
// ссылкой на оплату.
func (c *Client) CreateCheckoutSession(ctx context.Context, params SessionParams) (*Session, error) {
	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("line_items[0][price]", params.PriceID)
	form.Set("line_items[0][quantity]", strconv.Itoa(params.Quantity))
	form.Set("success_url", params.SuccessURL)
	form.Set("cancel_url", params.CancelURL)
	if params.CustomerEmail != "" {
		form.Set("customer_email", params.CustomerEmail)
	}
	form.Set("metadata[payment_id]", params.PaymentID)

	req, err := c.newRequest(ctx, http.MethodPost, "/checkout/sessions", form)
	if err != nil {
		return nil, err
	}
	var session Session
	if err := c.do(req, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// RetrieveSession запрашивает у провайдера текущий статус сессии оплаты.
func (c *Client) RetrieveSession(ctx context.Context, sessionID string) (*Session, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/checkout/sessions/"+sessionID, nil)
	if err != nil {
		return nil, err
	}
	var session Session
	if err := c.do(req, &session); err != nil {
		return nil, err
	}
	return &session, nil
}
