package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/akbarovs/go-storefront-bot/internal/commerce"
	"github.com/akbarovs/go-storefront-bot/internal/domain"
)

// ----- Fakes -----

type fakeOrderRepo struct {
	mu      sync.Mutex
	created []domain.Order

	createErr error
	listOut   []domain.Order
	listErr   error
}

func (r *fakeOrderRepo) CreateOrder(ctx context.Context, db *gorm.DB, o *domain.Order) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.mu.Lock()
	r.created = append(r.created, *o)
	r.mu.Unlock()
	return nil
}

func (r *fakeOrderRepo) ListOrders(ctx context.Context, db *gorm.DB, chatID int64) ([]domain.Order, error) {
	return r.listOut, r.listErr
}

func (r *fakeOrderRepo) ClearOrders(ctx context.Context, db *gorm.DB, chatID int64) (int64, int64, error) {
	return int64(len(r.created)), 0, nil
}

func (r *fakeOrderRepo) UpdateOrderStatus(ctx context.Context, db *gorm.DB, transID, status string) error {
	return nil
}

type fakeBackend struct {
	// products maps SKU to the backend product id; missing SKUs resolve to
	// no match.
	products map[string]int64
	findErr  map[string]error

	orderResult *commerce.OrderResult
	orderErr    error

	mu        sync.Mutex
	submitted []commerce.OrderRequest
}

func (b *fakeBackend) FindProductBySKU(ctx context.Context, sku string) (*commerce.ProductRef, error) {
	if err := b.findErr[sku]; err != nil {
		return nil, err
	}
	id, ok := b.products[sku]
	if !ok {
		return nil, nil
	}
	return &commerce.ProductRef{ID: id, SKU: sku}, nil
}

func (b *fakeBackend) CreateOrder(ctx context.Context, req commerce.OrderRequest) (*commerce.OrderResult, error) {
	b.mu.Lock()
	b.submitted = append(b.submitted, req)
	b.mu.Unlock()
	if b.orderErr != nil {
		return nil, b.orderErr
	}
	return b.orderResult, nil
}

func (b *fakeBackend) PaymentURL(orderID int64, orderKey string) string {
	return fmt.Sprintf("https://shop.example/checkout/order-pay/%d/?key=%s&order_pay=%d", orderID, orderKey, orderID)
}

type fakeNotifier struct {
	ch chan string
}

func (n *fakeNotifier) Notify(chatID int64, text string) error {
	n.ch <- text
	return nil
}

func newOrderService(repo *fakeOrderRepo, backend *fakeBackend, n Notifier) *OrderService {
	return NewOrderService(nil, repo, backend, n, zerolog.Nop())
}

func validInput() PlaceOrderInput {
	return PlaceOrderInput{
		ChatID:  42,
		Cart:    domain.CartItems{{ProductID: "p1", SKU: "A1", Name: "tea", Price: 1000, Quantity: 2}},
		Phone:   "+998901234567",
		Name:    "Anna",
		Lang:    "ru",
		Gateway: domain.GatewayClick,
	}
}

// ----- Tests -----

func TestPlaceOrder_RejectsEmptyCartAndMissingPhone(t *testing.T) {
	repo := &fakeOrderRepo{}
	svc := newOrderService(repo, &fakeBackend{}, nil)

	in := validInput()
	in.Cart = nil
	if _, err := svc.PlaceOrder(context.Background(), in); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("empty cart: expected ErrInvalidInput, got %v", err)
	}

	in = validInput()
	in.Phone = "  "
	if _, err := svc.PlaceOrder(context.Background(), in); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("missing phone: expected ErrInvalidInput, got %v", err)
	}

	if len(repo.created) != 0 {
		t.Fatalf("no order must be written on invalid input, got %d", len(repo.created))
	}
}

func TestPlaceOrder_UnknownGateway(t *testing.T) {
	svc := newOrderService(&fakeOrderRepo{}, &fakeBackend{}, nil)

	in := validInput()
	in.Gateway = "paypal"
	if _, err := svc.PlaceOrder(context.Background(), in); !errors.Is(err, ErrUnknownGateway) {
		t.Fatalf("expected ErrUnknownGateway, got %v", err)
	}
}

func TestPlaceOrder_DropsUnresolvableItemsFromOrderAndTotal(t *testing.T) {
	repo := &fakeOrderRepo{}
	backend := &fakeBackend{
		products:    map[string]int64{"A1": 77},
		findErr:     map[string]error{"C3": errors.New("backend timeout")},
		orderResult: &commerce.OrderResult{ID: 77, OrderKey: "wc_key"},
	}
	svc := newOrderService(repo, backend, nil)

	in := validInput()
	in.Cart = domain.CartItems{
		{ProductID: "p1", SKU: "A1", Name: "tea", Price: 1000, Quantity: 2},
		{ProductID: "p2", SKU: "B2", Name: "coffee", Price: 9000, Quantity: 1}, // no backend match
		{ProductID: "p3", SKU: "", Name: "sugar", Price: 500, Quantity: 1},    // no SKU
		{ProductID: "p4", SKU: "C3", Name: "milk", Price: 700, Quantity: 1},   // lookup error
	}

	res, err := svc.PlaceOrder(context.Background(), in)
	if err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}

	if len(res.Dropped) != 3 {
		t.Fatalf("expected 3 dropped items, got %v", res.Dropped)
	}
	if res.Order.TotalAmount != 2000 {
		t.Fatalf("total must cover resolved items only, got %v", res.Order.TotalAmount)
	}
	if len(res.Order.Items) != 1 || res.Order.Items[0].SKU != "A1" {
		t.Fatalf("frozen snapshot must hold resolved items only, got %+v", res.Order.Items)
	}
	if len(backend.submitted) != 1 || len(backend.submitted[0].LineItems) != 1 {
		t.Fatalf("backend order must carry resolved line items only, got %+v", backend.submitted)
	}
}

func TestPlaceOrder_ZeroResolvableItems(t *testing.T) {
	repo := &fakeOrderRepo{}
	backend := &fakeBackend{products: map[string]int64{}}
	svc := newOrderService(repo, backend, nil)

	in := validInput()
	if _, err := svc.PlaceOrder(context.Background(), in); !errors.Is(err, ErrNoResolvableItems) {
		t.Fatalf("expected ErrNoResolvableItems, got %v", err)
	}
	if len(backend.submitted) != 0 || len(repo.created) != 0 {
		t.Fatal("nothing must be submitted or persisted")
	}
}

func TestPlaceOrder_BackendFailureNoPersist(t *testing.T) {
	repo := &fakeOrderRepo{}
	backend := &fakeBackend{
		products: map[string]int64{"A1": 77},
		orderErr: errors.New("woocommerce 500"),
	}
	svc := newOrderService(repo, backend, nil)

	_, err := svc.PlaceOrder(context.Background(), validInput())
	if !errors.Is(err, ErrOrderBackend) {
		t.Fatalf("expected ErrOrderBackend, got %v", err)
	}
	if len(repo.created) != 0 {
		t.Fatal("order must not be persisted when backend submission fails")
	}
}

func TestPlaceOrder_EndToEnd(t *testing.T) {
	repo := &fakeOrderRepo{}
	backend := &fakeBackend{
		products:    map[string]int64{"A1": 77},
		orderResult: &commerce.OrderResult{ID: 77, OrderKey: "wc_key_abc"},
	}
	notifier := &fakeNotifier{ch: make(chan string, 1)}
	svc := newOrderService(repo, backend, notifier)

	in := validInput() // chat 42, SKU A1, price 1000 x 2
	res, err := svc.PlaceOrder(context.Background(), in)
	if err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}

	if res.Order.ChatID != 42 || res.Order.TotalAmount != 2000 {
		t.Fatalf("unexpected order: %+v", res.Order)
	}
	if !regexp.MustCompile(`^click_\d+$`).MatchString(res.Order.MerchantTransID) {
		t.Fatalf("merchant trans id must be click_<digits>, got %q", res.Order.MerchantTransID)
	}
	if res.Order.Status != domain.StatusCreated {
		t.Fatalf("expected CREATED, got %s", res.Order.Status)
	}
	if !strings.Contains(res.PaymentURL, "/77/") || !strings.Contains(res.PaymentURL, "wc_key_abc") {
		t.Fatalf("payment URL must reference the backend order, got %q", res.PaymentURL)
	}
	if len(repo.created) != 1 {
		t.Fatalf("expected one persisted order, got %d", len(repo.created))
	}

	select {
	case text := <-notifier.ch:
		if !strings.Contains(text, res.Order.MerchantTransID) || !strings.Contains(text, "2000") || !strings.Contains(text, res.PaymentURL) {
			t.Fatalf("notification missing details: %q", text)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("notification was never sent")
	}
}

func TestPlaceOrder_NotificationListsDroppedItems(t *testing.T) {
	backend := &fakeBackend{
		products:    map[string]int64{"A1": 77},
		orderResult: &commerce.OrderResult{ID: 77, OrderKey: "k"},
	}
	notifier := &fakeNotifier{ch: make(chan string, 1)}
	svc := newOrderService(&fakeOrderRepo{}, backend, notifier)

	in := validInput()
	in.Cart = append(in.Cart, domain.CartItem{ProductID: "p2", SKU: "ZZ", Name: "coffee", Price: 100, Quantity: 1})

	if _, err := svc.PlaceOrder(context.Background(), in); err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}

	select {
	case text := <-notifier.ch:
		if !strings.Contains(text, "coffee") {
			t.Fatalf("notification must name dropped items, got %q", text)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("notification was never sent")
	}
}

func TestPlaceOrder_ConcurrentTransIDsAreDistinct(t *testing.T) {
	repo := &fakeOrderRepo{}
	backend := &fakeBackend{
		products:    map[string]int64{"A1": 77},
		orderResult: &commerce.OrderResult{ID: 77, OrderKey: "k"},
	}
	svc := newOrderService(repo, backend, nil)

	const n = 50
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			if _, err := svc.PlaceOrder(context.Background(), validInput()); err != nil {
				t.Errorf("PlaceOrder: %v", err)
			}
		}()
	}
	wg.Wait()

	seen := make(map[string]struct{}, n)
	for _, o := range repo.created {
		if _, dup := seen[o.MerchantTransID]; dup {
			t.Fatalf("duplicate merchant trans id %q", o.MerchantTransID)
		}
		seen[o.MerchantTransID] = struct{}{}
	}
	if len(seen) != n {
		t.Fatalf("expected %d distinct ids, got %d", n, len(seen))
	}
}

func TestTransIDSource_Monotonic(t *testing.T) {
	var src transIDSource
	base := time.UnixMilli(1_700_000_000_000)

	a := src.next(base)
	b := src.next(base) // same wall clock must still advance
	c := src.next(base.Add(-time.Second))
	if !(a < b && b < c) {
		t.Fatalf("ids must be strictly increasing: %d %d %d", a, b, c)
	}
}

func TestListOrders_AnnotatesLocalizedStatus(t *testing.T) {
	repo := &fakeOrderRepo{listOut: []domain.Order{
		{MerchantTransID: "click_1", Status: domain.StatusCreated, Lang: "ru"},
		{MerchantTransID: "payme_2", Status: domain.StatusPaid, Lang: "uz"},
		{MerchantTransID: "click_3", Status: "WEIRD", Lang: "ru"},
	}}
	svc := newOrderService(repo, &fakeBackend{}, nil)

	views, err := svc.ListOrders(context.Background(), 42)
	if err != nil {
		t.Fatalf("ListOrders: %v", err)
	}
	if views[0].StatusText != "В очереди" {
		t.Fatalf("ru CREATED label: got %q", views[0].StatusText)
	}
	if views[1].StatusText != "To'langan" {
		t.Fatalf("uz PAID label: got %q", views[1].StatusText)
	}
	// Unknown statuses pass through verbatim.
	if views[2].StatusText != "WEIRD" {
		t.Fatalf("unknown status label: got %q", views[2].StatusText)
	}
}
