package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/akbarovs/go-storefront-bot/internal/catalog"
	"github.com/akbarovs/go-storefront-bot/internal/domain"
	"github.com/akbarovs/go-storefront-bot/internal/services"
)

func init() { gin.SetMode(gin.TestMode) }

// ----- Fakes -----

type fakeCatalog struct {
	products []catalog.Product
	cats     []string
	err      error
}

func (f *fakeCatalog) Products(ctx context.Context) ([]catalog.Product, error) {
	return f.products, f.err
}

func (f *fakeCatalog) Categories(ctx context.Context, allNames []string) ([]string, error) {
	return f.cats, f.err
}

type fakeCarts struct {
	savedChatID int64
	savedItems  domain.CartItems
	saveErr     error

	items  domain.CartItems
	getErr error
}

func (f *fakeCarts) Save(ctx context.Context, chatID int64, items domain.CartItems) error {
	f.savedChatID, f.savedItems = chatID, items
	return f.saveErr
}

func (f *fakeCarts) Get(ctx context.Context, chatID int64) (domain.CartItems, error) {
	return f.items, f.getErr
}

type fakeOrders struct {
	placeIn  services.PlaceOrderInput
	placeOut *services.PlaceOrderResult
	placeErr error

	views   []services.OrderView
	listErr error

	cleared bool
}

func (f *fakeOrders) PlaceOrder(ctx context.Context, in services.PlaceOrderInput) (*services.PlaceOrderResult, error) {
	f.placeIn = in
	return f.placeOut, f.placeErr
}

func (f *fakeOrders) ListOrders(ctx context.Context, chatID int64) ([]services.OrderView, error) {
	return f.views, f.listErr
}

func (f *fakeOrders) ClearOrders(ctx context.Context, chatID int64) (int64, int64, error) {
	f.cleared = true
	return 3, 1, nil
}

func newRouter(cat CatalogProvider, carts CartStore, orders OrderPlacer) *gin.Engine {
	r := gin.New()
	h := New(cat, carts, orders)
	r.GET("/api/products", h.ListProducts)
	r.GET("/api/categories", h.ListCategories)
	r.POST("/save-cart", h.SaveCart)
	r.GET("/get-car", h.GetCart)
	r.GET("/get-orders", h.ListOrders)
	r.POST("/clear-orders", h.ClearOrders)
	r.POST("/create-click-order", h.CreateClickOrder)
	r.POST("/create-payme-order", h.CreatePaymeOrder)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var out map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return w, out
}

// ----- Catalog -----

func TestListProducts_CategoryFilterAndAllBypass(t *testing.T) {
	cat := &fakeCatalog{products: []catalog.Product{
		{ID: "p1", Name: "tea", Categories: []string{"Чай"}},
		{ID: "p2", Name: "coffee", Categories: []string{"Кофе"}},
	}}
	r := newRouter(cat, &fakeCarts{}, &fakeOrders{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/products?category=%D0%A7%D0%B0%D0%B9", nil))
	var filtered []catalog.Product
	if err := json.Unmarshal(w.Body.Bytes(), &filtered); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(filtered) != 1 || filtered[0].ID != "p1" {
		t.Fatalf("expected only the tea product, got %+v", filtered)
	}

	// The "all" category names bypass filtering.
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/products?category=%D0%92%D1%81%D0%B5", nil))
	var all []catalog.Product
	if err := json.Unmarshal(w.Body.Bytes(), &all); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected unfiltered list, got %+v", all)
	}
}

func TestListProducts_UpstreamFailureIs500(t *testing.T) {
	cat := &fakeCatalog{err: errors.New("billz down")}
	r := newRouter(cat, &fakeCarts{}, &fakeOrders{})

	w, out := doJSON(t, r, http.MethodGet, "/api/products", nil)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	if out["success"] != false || out["code"] != ErrCodeCatalogFailed {
		t.Fatalf("unexpected envelope: %v", out)
	}
}

func TestListCategories(t *testing.T) {
	cat := &fakeCatalog{cats: []string{"Все", "Hammasi", "Чай"}}
	r := newRouter(cat, &fakeCarts{}, &fakeOrders{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/categories", nil))
	var cats []string
	if err := json.Unmarshal(w.Body.Bytes(), &cats); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(cats) != 3 || cats[0] != "Все" {
		t.Fatalf("unexpected categories: %v", cats)
	}
}

// ----- Cart -----

func TestSaveCart_Success(t *testing.T) {
	carts := &fakeCarts{}
	r := newRouter(&fakeCatalog{}, carts, &fakeOrders{})

	w, out := doJSON(t, r, http.MethodPost, "/save-cart", gin.H{
		"chat_id": 42,
		"cart":    []gin.H{{"id": "p1", "quantity": 2}},
	})
	if w.Code != http.StatusOK || out["success"] != true {
		t.Fatalf("expected success, got %d %v", w.Code, out)
	}
	if carts.savedChatID != 42 || len(carts.savedItems) != 1 {
		t.Fatalf("save not forwarded: chat=%d items=%+v", carts.savedChatID, carts.savedItems)
	}
}

func TestSaveCart_MissingFieldsIs400(t *testing.T) {
	r := newRouter(&fakeCatalog{}, &fakeCarts{}, &fakeOrders{})

	w, out := doJSON(t, r, http.MethodPost, "/save-cart", gin.H{"cart": []gin.H{}})
	if w.Code != http.StatusBadRequest || out["code"] != ErrCodeBadRequest {
		t.Fatalf("expected 400 bad_request, got %d %v", w.Code, out)
	}

	w, _ = doJSON(t, r, http.MethodPost, "/save-cart", gin.H{"chat_id": 42})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("missing cart: expected 400, got %d", w.Code)
	}
}

func TestGetCart_RequiresChatID(t *testing.T) {
	r := newRouter(&fakeCatalog{}, &fakeCarts{}, &fakeOrders{})

	w, out := doJSON(t, r, http.MethodGet, "/get-car", nil)
	if w.Code != http.StatusBadRequest || out["success"] != false {
		t.Fatalf("expected 400 envelope, got %d %v", w.Code, out)
	}

	w, _ = doJSON(t, r, http.MethodGet, "/get-car?chat_id=abc", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("non-numeric chat_id: expected 400, got %d", w.Code)
	}
}

func TestGetCart_Success(t *testing.T) {
	carts := &fakeCarts{items: domain.CartItems{{ProductID: "p1", Quantity: 2}}}
	r := newRouter(&fakeCatalog{}, carts, &fakeOrders{})

	w, out := doJSON(t, r, http.MethodGet, "/get-car?chat_id=42", nil)
	if w.Code != http.StatusOK || out["success"] != true {
		t.Fatalf("expected success, got %d %v", w.Code, out)
	}
	if _, ok := out["cart"]; !ok {
		t.Fatalf("expected cart field, got %v", out)
	}
}

// ----- Orders -----

func TestListOrders_Success(t *testing.T) {
	orders := &fakeOrders{views: []services.OrderView{
		{Order: domain.Order{MerchantTransID: "click_1"}, StatusText: "В очереди"},
	}}
	r := newRouter(&fakeCatalog{}, &fakeCarts{}, orders)

	w, out := doJSON(t, r, http.MethodGet, "/get-orders?chat_id=42", nil)
	if w.Code != http.StatusOK || out["success"] != true {
		t.Fatalf("expected success, got %d %v", w.Code, out)
	}
	if _, ok := out["orders"]; !ok {
		t.Fatalf("expected orders field, got %v", out)
	}
}

func TestClearOrders(t *testing.T) {
	orders := &fakeOrders{}
	r := newRouter(&fakeCatalog{}, &fakeCarts{}, orders)

	w, out := doJSON(t, r, http.MethodPost, "/clear-orders", gin.H{"chat_id": 42})
	if w.Code != http.StatusOK || out["success"] != true {
		t.Fatalf("expected success, got %d %v", w.Code, out)
	}
	if !orders.cleared {
		t.Fatal("clear not forwarded to the service")
	}

	w, _ = doJSON(t, r, http.MethodPost, "/clear-orders", gin.H{})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("missing chat_id: expected 400, got %d", w.Code)
	}
}

// ----- Checkout -----

func checkoutBody() gin.H {
	return gin.H{
		"chat_id":      42,
		"cart":         []gin.H{{"id": "p1", "sku": "A1", "price": 1000, "quantity": 2}},
		"phone_number": "+998901234567",
		"name":         "Anna",
		"lang":         "ru",
	}
}

func TestCreateClickOrder_Success(t *testing.T) {
	orders := &fakeOrders{placeOut: &services.PlaceOrderResult{PaymentURL: "https://shop.example/pay/77"}}
	r := newRouter(&fakeCatalog{}, &fakeCarts{}, orders)

	w, out := doJSON(t, r, http.MethodPost, "/create-click-order", checkoutBody())
	if w.Code != http.StatusOK || out["success"] != true {
		t.Fatalf("expected success, got %d %v", w.Code, out)
	}
	if out["clickLink"] != "https://shop.example/pay/77" {
		t.Fatalf("expected clickLink, got %v", out)
	}
	if orders.placeIn.Gateway != domain.GatewayClick {
		t.Fatalf("gateway not set, got %q", orders.placeIn.Gateway)
	}
	// The buyer name reaches the billing synthesis.
	if orders.placeIn.Name != "Anna" {
		t.Fatalf("name not forwarded, got %q", orders.placeIn.Name)
	}
}

func TestCreatePaymeOrder_UsesPaymeLinkKey(t *testing.T) {
	orders := &fakeOrders{placeOut: &services.PlaceOrderResult{PaymentURL: "https://shop.example/pay/78"}}
	r := newRouter(&fakeCatalog{}, &fakeCarts{}, orders)

	_, out := doJSON(t, r, http.MethodPost, "/create-payme-order", checkoutBody())
	if out["paymeLink"] != "https://shop.example/pay/78" {
		t.Fatalf("expected paymeLink, got %v", out)
	}
	if orders.placeIn.Gateway != domain.GatewayPayme {
		t.Fatalf("gateway not set, got %q", orders.placeIn.Gateway)
	}
}

func TestCreateOrder_ErrorMapping(t *testing.T) {
	cases := []struct {
		err      error
		status   int
		wantCode string
	}{
		{services.ErrInvalidInput, http.StatusBadRequest, ErrCodeBadRequest},
		{services.ErrNoResolvableItems, http.StatusBadRequest, ErrCodeEmptyOrder},
		{services.ErrOrderBackend, http.StatusInternalServerError, ErrCodeCheckoutFailed},
	}
	for _, c := range cases {
		orders := &fakeOrders{placeErr: c.err}
		r := newRouter(&fakeCatalog{}, &fakeCarts{}, orders)

		w, out := doJSON(t, r, http.MethodPost, "/create-click-order", checkoutBody())
		if w.Code != c.status || out["code"] != c.wantCode {
			t.Errorf("%v: expected %d/%s, got %d/%v", c.err, c.status, c.wantCode, w.Code, out["code"])
		}
	}
}

func TestCreateOrder_MissingChatIDIs400(t *testing.T) {
	r := newRouter(&fakeCatalog{}, &fakeCarts{}, &fakeOrders{})

	body := checkoutBody()
	delete(body, "chat_id")
	w, _ := doJSON(t, r, http.MethodPost, "/create-click-order", body)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}
