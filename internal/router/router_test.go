package router

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/outfitly/storefront-api/pkg/models"
	"github.com/outfitly/storefront-api/pkg/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type envelope struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
	Error  string          `json:"error"`
}

func newTestAPI(t *testing.T) (*gin.Engine, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := NewHandler(mem.All(), nil, "test-secret", nil, log)
	r := gin.New()
	h.RegisterRoutes(r)
	return r, mem
}

func do(t *testing.T, r *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("x-access-token", token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v (body %s)", err, w.Body.String())
	}
	return env
}

// signUp registers and logs in a fresh user, returning the access token and
// the user's ID.
func signUp(t *testing.T, r *gin.Engine, email string) (string, bson.ObjectID) {
	t.Helper()
	w := do(t, r, http.MethodPost, "/auth/register", "", gin.H{
		"fullname": "Test Shopper",
		"email":    email,
		"password": "secret123",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d: %s", w.Code, w.Body.String())
	}

	w = do(t, r, http.MethodPost, "/auth/login", "", gin.H{
		"email":    email,
		"password": "secret123",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var data struct {
		AccessToken string      `json:"accessToken"`
		User        models.User `json:"user"`
	}
	if err := json.Unmarshal(decode(t, w).Data, &data); err != nil {
		t.Fatalf("decode login data: %v", err)
	}
	if data.AccessToken == "" {
		t.Fatal("login returned an empty access token")
	}
	return data.AccessToken, data.User.ID
}

func seedProducts(t *testing.T, mem *store.Memory, prices ...float64) []bson.ObjectID {
	t.Helper()
	products := make([]*models.Product, len(prices))
	for i, price := range prices {
		products[i] = &models.Product{
			Title:      "Linen Shirt",
			Price:      price,
			Categories: []string{"Clothing"},
			InStock:    true,
		}
	}
	if err := mem.CreateProducts(context.Background(), products); err != nil {
		t.Fatalf("seed products: %v", err)
	}
	ids := make([]bson.ObjectID, len(products))
	for i, p := range products {
		ids[i] = p.ID
	}
	return ids
}

func TestHealth(t *testing.T) {
	r, _ := newTestAPI(t)
	w := do(t, r, http.MethodGet, "/health", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestAuth_RegisterLoginMe(t *testing.T) {
	r, _ := newTestAPI(t)
	token, userID := signUp(t, r, "shopper@example.com")

	w := do(t, r, http.MethodGet, "/users/me", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("me: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var me models.User
	if err := json.Unmarshal(decode(t, w).Data, &me); err != nil {
		t.Fatalf("decode me: %v", err)
	}
	if me.ID != userID || me.Email != "shopper@example.com" {
		t.Fatalf("unexpected profile: %+v", me)
	}
	if bytes.Contains(w.Body.Bytes(), []byte("password")) {
		t.Fatal("password leaked in profile response")
	}
}

func TestAuth_DuplicateEmail(t *testing.T) {
	r, _ := newTestAPI(t)
	signUp(t, r, "twice@example.com")
	w := do(t, r, http.MethodPost, "/auth/register", "", gin.H{
		"fullname": "Second Try",
		"email":    "twice@example.com",
		"password": "secret123",
	})
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", w.Code, w.Body.String())
	}
}

func TestAuth_BadCredentialsAreUniform(t *testing.T) {
	r, _ := newTestAPI(t)
	signUp(t, r, "known@example.com")

	wrongPass := do(t, r, http.MethodPost, "/auth/login", "", gin.H{
		"email": "known@example.com", "password": "wrongwrong",
	})
	unknownUser := do(t, r, http.MethodPost, "/auth/login", "", gin.H{
		"email": "nobody@example.com", "password": "wrongwrong",
	})
	if wrongPass.Code != http.StatusUnauthorized || unknownUser.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401/401, got %d/%d", wrongPass.Code, unknownUser.Code)
	}
	if decode(t, wrongPass).Error != decode(t, unknownUser).Error {
		t.Fatal("login failures must be indistinguishable")
	}
}

func TestAuth_MissingOrBadToken(t *testing.T) {
	r, _ := newTestAPI(t)
	if w := do(t, r, http.MethodGet, "/users/me", "", nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("no token: expected 401, got %d", w.Code)
	}
	if w := do(t, r, http.MethodGet, "/users/me", "not-a-jwt", nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("bad token: expected 401, got %d", w.Code)
	}
}

func TestProducts_ListAndPagination(t *testing.T) {
	r, mem := newTestAPI(t)
	seedProducts(t, mem, 10, 20, 30, 40, 50)

	w := do(t, r, http.MethodGet, "/products?page=1&limit=2", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if got := w.Header().Get("X-Total-Count"); got != "5" {
		t.Fatalf("expected X-Total-Count 5, got %q", got)
	}
	var data struct {
		Products   []models.Product `json:"products"`
		TotalCount int64            `json:"totalCount"`
	}
	if err := json.Unmarshal(decode(t, w).Data, &data); err != nil {
		t.Fatalf("decode products: %v", err)
	}
	if len(data.Products) != 2 || data.TotalCount != 5 {
		t.Fatalf("expected 2 of 5, got %d of %d", len(data.Products), data.TotalCount)
	}
}

func TestProducts_GetByID(t *testing.T) {
	r, mem := newTestAPI(t)
	ids := seedProducts(t, mem, 19.99)

	w := do(t, r, http.MethodGet, "/products/"+ids[0].Hex(), "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	if w := do(t, r, http.MethodGet, "/products/"+bson.NewObjectID().Hex(), "", nil); w.Code != http.StatusNotFound {
		t.Fatalf("missing product: expected 404, got %d", w.Code)
	}
	if w := do(t, r, http.MethodGet, "/products/not-a-hex-id", "", nil); w.Code != http.StatusBadRequest {
		t.Fatalf("malformed ID: expected 400, got %d", w.Code)
	}
}

func TestCart_Lifecycle(t *testing.T) {
	r, mem := newTestAPI(t)
	ids := seedProducts(t, mem, 10.00, 5.50)
	token, userID := signUp(t, r, "cart@example.com")

	w := do(t, r, http.MethodPost, "/carts", token, gin.H{"products": []gin.H{}})
	if w.Code != http.StatusCreated {
		t.Fatalf("create cart: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if w := do(t, r, http.MethodPost, "/carts", token, gin.H{"products": []gin.H{}}); w.Code != http.StatusConflict {
		t.Fatalf("second cart: expected 409, got %d", w.Code)
	}

	w = do(t, r, http.MethodPut, "/carts/"+userID.Hex(), token, gin.H{
		"products": []gin.H{
			{"productID": ids[0].Hex(), "quantity": 2},
			{"productID": ids[1].Hex(), "quantity": 1},
		},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("replace cart: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	// The GET view joins lines against the live catalog.
	w = do(t, r, http.MethodGet, "/carts/"+userID.Hex(), token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get cart: expected 200, got %d", w.Code)
	}
	var view models.CartView
	if err := json.Unmarshal(decode(t, w).Data, &view); err != nil {
		t.Fatalf("decode cart view: %v", err)
	}
	if len(view.Products) != 2 {
		t.Fatalf("expected 2 joined lines, got %+v", view.Products)
	}
	for _, line := range view.Products {
		if line.Title == "" || line.Price == 0 {
			t.Fatalf("line not joined with catalog data: %+v", line)
		}
	}

	// Patch to zero removes the line.
	w = do(t, r, http.MethodPatch, "/carts/"+userID.Hex(), token, gin.H{
		"productID": ids[1].Hex(), "quantity": 0,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("patch cart: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var cart models.Cart
	if err := json.Unmarshal(decode(t, w).Data, &cart); err != nil {
		t.Fatalf("decode cart: %v", err)
	}
	if len(cart.Items) != 1 || cart.Items[0].ProductID != ids[0] {
		t.Fatalf("expected only the first product left, got %+v", cart.Items)
	}

	w = do(t, r, http.MethodPost, "/carts/clear", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("clear cart: expected 200, got %d", w.Code)
	}
	if err := json.Unmarshal(decode(t, w).Data, &cart); err != nil {
		t.Fatalf("decode cleared cart: %v", err)
	}
	if !cart.IsEmpty() {
		t.Fatalf("expected empty cart, got %+v", cart.Items)
	}
}

func TestCart_OwnershipEnforced(t *testing.T) {
	r, _ := newTestAPI(t)
	tokenA, _ := signUp(t, r, "alice@example.com")
	_, bobID := signUp(t, r, "bob@example.com")

	if w := do(t, r, http.MethodGet, "/carts/"+bobID.Hex(), tokenA, nil); w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d: %s", w.Code, w.Body.String())
	}
}

func TestCart_NegativeQuantityRejected(t *testing.T) {
	r, mem := newTestAPI(t)
	ids := seedProducts(t, mem, 10)
	token, userID := signUp(t, r, "neg@example.com")

	do(t, r, http.MethodPost, "/carts", token, gin.H{"products": []gin.H{}})
	w := do(t, r, http.MethodPatch, "/carts/"+userID.Hex(), token, gin.H{
		"productID": ids[0].Hex(), "quantity": -1,
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestOrders_CheckoutFlow(t *testing.T) {
	r, mem := newTestAPI(t)
	ids := seedProducts(t, mem, 10.00, 5.00)
	token, userID := signUp(t, r, "buyer@example.com")

	do(t, r, http.MethodPost, "/carts", token, gin.H{"products": []gin.H{
		{"productID": ids[0].Hex(), "quantity": 2},
		{"productID": ids[1].Hex(), "quantity": 1},
	}})

	// Tampered amount is rejected and leaves the cart intact.
	w := do(t, r, http.MethodPost, "/orders", token, gin.H{
		"amount": 1.00, "address": "1 Main St",
	})
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("mismatch: expected 422, got %d: %s", w.Code, w.Body.String())
	}

	w = do(t, r, http.MethodPost, "/orders", token, gin.H{
		"amount": 25.00, "address": "1 Main St",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("checkout: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var order models.Order
	if err := json.Unmarshal(decode(t, w).Data, &order); err != nil {
		t.Fatalf("decode order: %v", err)
	}
	if order.Amount != 25.00 || len(order.Items) != 2 {
		t.Fatalf("unexpected order: %+v", order)
	}

	// Checkout drains the cart, so an immediate retry has nothing to buy.
	w = do(t, r, http.MethodPost, "/orders", token, gin.H{
		"amount": 25.00, "address": "1 Main St",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("empty cart checkout: expected 400, got %d: %s", w.Code, w.Body.String())
	}

	w = do(t, r, http.MethodGet, "/orders/user/"+userID.Hex(), token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list orders: expected 200, got %d", w.Code)
	}
	var orders []models.Order
	if err := json.Unmarshal(decode(t, w).Data, &orders); err != nil {
		t.Fatalf("decode orders: %v", err)
	}
	if len(orders) != 1 || orders[0].ID != order.ID {
		t.Fatalf("expected the one created order, got %+v", orders)
	}

	if w := do(t, r, http.MethodGet, "/orders/"+order.ID.Hex(), token, nil); w.Code != http.StatusOK {
		t.Fatalf("get order: expected 200, got %d", w.Code)
	}
}

func TestOrders_OwnershipEnforced(t *testing.T) {
	r, mem := newTestAPI(t)
	ids := seedProducts(t, mem, 8.00)
	tokenA, _ := signUp(t, r, "owner@example.com")
	tokenB, _ := signUp(t, r, "intruder@example.com")

	do(t, r, http.MethodPost, "/carts", tokenA, gin.H{"products": []gin.H{
		{"productID": ids[0].Hex(), "quantity": 1},
	}})
	w := do(t, r, http.MethodPost, "/orders", tokenA, gin.H{
		"amount": 8.00, "address": "1 Main St",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("checkout: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var order models.Order
	if err := json.Unmarshal(decode(t, w).Data, &order); err != nil {
		t.Fatalf("decode order: %v", err)
	}

	if w := do(t, r, http.MethodGet, "/orders/"+order.ID.Hex(), tokenB, nil); w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d: %s", w.Code, w.Body.String())
	}
}
