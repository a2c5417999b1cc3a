// Package client is the storefront's API façade: the single integration
// surface a presentation layer calls. It attaches the session's access
// token to authenticated requests, normalizes every response into the
// status envelope, and classifies failures without leaking transport
// details to the caller.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/outfitly/storefront-api/pkg/global"
	"github.com/outfitly/storefront-api/pkg/models"
)

// TransportError wraps any network or parse failure: the request never
// produced a usable envelope.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return fmt.Sprintf("transport: %v", e.Err) }
func (e *TransportError) Unwrap() error { return e.Err }

// APIError is a server-side rejection carried in the error envelope.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %d %s", e.StatusCode, e.Message)
}

type Client struct {
	baseURL string
	http    *http.Client
	session *Session
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
		session: NewSession(),
	}
}

func (c *Client) Session() *Session { return c.session }

// Register creates an account. It does not log in.
func (c *Client) Register(ctx context.Context, fullname, email, password string) (*models.User, error) {
	var user models.User
	err := c.do(ctx, http.MethodPost, "/auth/register", models.RegisterRequest{
		Fullname: fullname,
		Email:    email,
		Password: password,
	}, false, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Login initializes the session: it stores the access token and caches
// the user profile for subsequent calls.
func (c *Client) Login(ctx context.Context, email, password string) error {
	var payload struct {
		AccessToken string      `json:"accessToken"`
		User        models.User `json:"user"`
	}
	err := c.do(ctx, http.MethodPost, "/auth/login", models.LoginRequest{
		Email:    email,
		Password: password,
	}, false, &payload)
	if err != nil {
		return err
	}
	c.session.setToken(payload.AccessToken)
	c.session.setUser(&payload.User)
	return nil
}

// Logout tears the session down locally. There is no server-side session
// to destroy; the token simply expires.
func (c *Client) Logout() {
	c.session.clear()
}

// FetchUserDetails refreshes the cached profile from the server.
func (c *Client) FetchUserDetails(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := c.do(ctx, http.MethodGet, "/users/me", nil, true, &user); err != nil {
		return nil, err
	}
	c.session.setUser(&user)
	return &user, nil
}

// ProductPage is one page of a catalog listing.
type ProductPage struct {
	Products   []models.Product `json:"products"`
	TotalCount int64            `json:"totalCount"`
}

func (c *Client) FetchProducts(ctx context.Context, category string, newArrivals bool, page, limit int) (*ProductPage, error) {
	query := url.Values{}
	query.Set("new", strconv.FormatBool(newArrivals))
	if category != "" {
		query.Set("category", category)
	}
	if page > 0 {
		query.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}

	var result ProductPage
	if err := c.do(ctx, http.MethodGet, "/products?"+query.Encode(), nil, false, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) FetchProduct(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	if err := c.do(ctx, http.MethodGet, "/products/"+url.PathEscape(id), nil, false, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (c *Client) FetchCategories(ctx context.Context) ([]string, error) {
	var categories []string
	if err := c.do(ctx, http.MethodGet, "/categories", nil, false, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

func (c *Client) CreateUserCart(ctx context.Context, products []models.CartItemRequest) (*models.Cart, error) {
	body := models.CreateCartRequest{}
	if len(products) > 0 {
		body.Products = products
	}
	var cart models.Cart
	if err := c.do(ctx, http.MethodPost, "/carts", body, true, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

// GetUserCart fetches the session user's cart with live product details
// joined in.
func (c *Client) GetUserCart(ctx context.Context) (*models.CartView, error) {
	userID, err := c.sessionUserID()
	if err != nil {
		return nil, err
	}
	var view models.CartView
	if err := c.do(ctx, http.MethodGet, "/carts/"+userID, nil, true, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

func (c *Client) AddProductsToCart(ctx context.Context, products []models.CartItemRequest) (*models.Cart, error) {
	userID, err := c.sessionUserID()
	if err != nil {
		return nil, err
	}
	var cart models.Cart
	if err := c.do(ctx, http.MethodPut, "/carts/"+userID, models.ReplaceCartRequest{Products: products}, true, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

func (c *Client) PatchCart(ctx context.Context, productID string, quantity int) (*models.Cart, error) {
	userID, err := c.sessionUserID()
	if err != nil {
		return nil, err
	}
	var cart models.Cart
	err = c.do(ctx, http.MethodPatch, "/carts/"+userID, models.PatchCartRequest{
		ProductID: productID,
		Quantity:  &quantity,
	}, true, &cart)
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// RemoveProductFromCart is PatchCart with quantity 0: the API spells
// removal as a zero-quantity patch.
func (c *Client) RemoveProductFromCart(ctx context.Context, productID string) (*models.Cart, error) {
	return c.PatchCart(ctx, productID, 0)
}

func (c *Client) ClearCart(ctx context.Context) (*models.Cart, error) {
	var cart models.Cart
	if err := c.do(ctx, http.MethodPost, "/carts/clear", nil, true, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

func (c *Client) CreateOrder(ctx context.Context, products []models.CartItemRequest, amount float64, address string) (*models.Order, error) {
	var order models.Order
	err := c.do(ctx, http.MethodPost, "/orders", models.CreateOrderRequest{
		Products: products,
		Amount:   amount,
		Address:  address,
	}, true, &order)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *Client) FetchAllOrders(ctx context.Context) ([]models.Order, error) {
	userID, err := c.sessionUserID()
	if err != nil {
		return nil, err
	}
	var orders []models.Order
	if err := c.do(ctx, http.MethodGet, "/orders/user/"+userID, nil, true, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (c *Client) FetchOrderDetails(ctx context.Context, orderID string) (*models.Order, error) {
	var order models.Order
	if err := c.do(ctx, http.MethodGet, "/orders/"+url.PathEscape(orderID), nil, true, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *Client) sessionUserID() (string, error) {
	user := c.session.User()
	if user == nil {
		return "", models.ErrUnauthenticated
	}
	return user.ID.Hex(), nil
}

// do issues one request and decodes the envelope into out. Authenticated
// calls without a token are rejected locally, before any network I/O.
func (c *Client) do(ctx context.Context, method, path string, body interface{}, authenticated bool, out interface{}) error {
	if authenticated && !c.session.Authenticated() {
		return models.ErrUnauthenticated
	}

	var reqBody *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return &TransportError{Err: err}
		}
		reqBody = bytes.NewReader(raw)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return &TransportError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	if authenticated {
		req.Header.Set("x-access-token", c.session.Token())
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &TransportError{Err: err}
	}
	defer resp.Body.Close()

	contentType := resp.Header.Get("Content-Type")
	if !strings.Contains(contentType, "application/json") {
		return &TransportError{Err: fmt.Errorf("unexpected content type %q", contentType)}
	}

	var envelope struct {
		Status string          `json:"status"`
		Data   json.RawMessage `json:"data"`
		Error  string          `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return &TransportError{Err: err}
	}

	if envelope.Status != global.StatusOK {
		message := envelope.Error
		if message == "" {
			message = http.StatusText(resp.StatusCode)
		}
		return &APIError{StatusCode: resp.StatusCode, Message: message}
	}
	if out != nil && len(envelope.Data) > 0 {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return &TransportError{Err: err}
		}
	}
	return nil
}
