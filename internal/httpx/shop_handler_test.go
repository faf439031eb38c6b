package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/ariefcatur/go-pokestore.git/internal/cart"
	"github.com/ariefcatur/go-pokestore.git/internal/catalog"
	"github.com/ariefcatur/go-pokestore.git/internal/orders"
	"github.com/ariefcatur/go-pokestore.git/internal/payments"
	"github.com/go-chi/chi/v5"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---- fakes ----

type fakeCatalog struct {
	products map[string]*catalog.Product // by id
	cats     []catalog.Category
}

func (f *fakeCatalog) Featured(ctx context.Context, n int) ([]catalog.Product, error) {
	out := []catalog.Product{}
	for _, p := range f.products {
		if p.Available && len(out) < n {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeCatalog) ListCategories(ctx context.Context) ([]catalog.Category, error) {
	return f.cats, nil
}

func (f *fakeCatalog) GetCategoryBySlug(ctx context.Context, slug string) (catalog.Category, error) {
	for _, c := range f.cats {
		if c.Slug == slug {
			return c, nil
		}
	}
	return catalog.Category{}, catalog.ErrNotFound
}

func (f *fakeCatalog) ListProducts(ctx context.Context, fl catalog.Filter) ([]catalog.Product, int, error) {
	out := []catalog.Product{}
	for _, p := range f.products {
		if p.Available {
			out = append(out, *p)
		}
	}
	return out, len(out), nil
}

func (f *fakeCatalog) GetProductBySlug(ctx context.Context, slug string) (catalog.Product, error) {
	for _, p := range f.products {
		if p.Slug == slug && p.Available {
			return *p, nil
		}
	}
	return catalog.Product{}, catalog.ErrNotFound
}

func (f *fakeCatalog) GetProductByID(ctx context.Context, id string) (catalog.Product, error) {
	if p, ok := f.products[id]; ok {
		return *p, nil
	}
	return catalog.Product{}, catalog.ErrNotFound
}

// fakeLedger mengikuti kontrak CreateOrderTx: order + item selalu dibuat,
// stok hanya turun kalau cukup.
type fakeLedger struct {
	products map[string]*catalog.Product // share dengan fakeCatalog
	orders   []fakeOrder
	payments []orders.BitcoinPayment
	err      error
}

type fakeOrder struct {
	ID         string
	FullName   string
	Email      string
	Address    string
	TotalCents int
	Items      []orders.ItemInput
}

func (f *fakeLedger) CreateOrderTx(ctx context.Context, fullName, email, address string, items []orders.ItemInput) (string, int, error) {
	if f.err != nil {
		return "", 0, f.err
	}
	total := 0
	for _, it := range items {
		total += it.PriceCents * it.Qty
		if p, ok := f.products[it.ProductID]; ok && p.Stock >= it.Qty {
			p.Stock -= it.Qty
		}
	}
	id := "ord-1"
	f.orders = append(f.orders, fakeOrder{ID: id, FullName: fullName, Email: email, Address: address, TotalCents: total, Items: items})
	return id, total, nil
}

func (f *fakeLedger) RecordBitcoinPayment(ctx context.Context, p orders.BitcoinPayment) error {
	f.payments = append(f.payments, p)
	return nil
}

type fakeMailer struct {
	subjects []string
	bodies   []string
	err      error
}

func (f *fakeMailer) Send(ctx context.Context, subject, body string) error {
	if f.err != nil {
		return f.err
	}
	f.subjects = append(f.subjects, subject)
	f.bodies = append(f.bodies, body)
	return nil
}

type fakeInvoicer struct {
	req payments.InvoiceRequest
	url string
	err error
}

func (f *fakeInvoicer) CreateInvoice(ctx context.Context, req payments.InvoiceRequest) (string, error) {
	f.req = req
	if f.err != nil {
		return "", f.err
	}
	return f.url, nil
}

type fakePublisher struct{ published int }

func (f *fakePublisher) Publish(key, value []byte, headers ...kafkago.Header) { f.published++ }

// ---- harness ----

type fixture struct {
	router   *chi.Mux
	catalog  *fakeCatalog
	ledger   *fakeLedger
	mailer   *fakeMailer
	invoicer *fakeInvoicer
	producer *fakePublisher
	store    *cart.MemStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	products := map[string]*catalog.Product{
		"pA": {ID: "pA", Name: "Charizard", Slug: "charizard", PriceCents: 1000, Currency: "$", Available: true, Stock: 5},
		"pB": {ID: "pB", Name: "Booster Box", Slug: "booster-box", PriceCents: 500, Currency: "$", Available: true, Stock: 3},
	}
	f := &fixture{
		catalog:  &fakeCatalog{products: products},
		ledger:   &fakeLedger{products: products},
		mailer:   &fakeMailer{},
		invoicer: &fakeInvoicer{url: "https://pay.example/inv/1"},
		producer: &fakePublisher{},
		store:    cart.NewMemStore(),
	}
	h := &ShopHandler{
		Catalog:  f.catalog,
		Ledger:   f.ledger,
		Carts:    f.store,
		Mailer:   f.mailer,
		Invoicer: f.invoicer,
		Producer: f.producer,
		Service:  "storefront-test",
		BaseURL:  "http://store.test",
	}
	f.router = chi.NewRouter()
	h.Register(f.router)
	return f
}

const testSID = "sess-test"

func (f *fixture) do(method, path string, form url.Values) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	req.AddCookie(&http.Cookie{Name: "sid", Value: testSID})
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func (f *fixture) seedCart(t *testing.T, productID string, qty int) {
	t.Helper()
	c := cart.New(f.store, testSID)
	p := f.catalog.products[productID]
	require.NoError(t, c.Add(context.Background(), p.ID, p.PriceCents, qty))
}

func (f *fixture) cartLen(t *testing.T) int {
	t.Helper()
	n, err := cart.New(f.store, testSID).Len(context.Background())
	require.NoError(t, err)
	return n
}

var checkoutForm = url.Values{
	"full_name": {"Ash Ketchum"},
	"email":     {"ash@example.com"},
	"address":   {"Pallet Town 1"},
}

// ---- cart routes ----

func TestCartAddRedirects(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodGet, "/cart/add/pA/", nil)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/cart/", rec.Header().Get("Location"))
	assert.Equal(t, 1, f.cartLen(t)) // GET default qty 1
}

func TestCartAddPostQuantity(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodPost, "/cart/add/pA/", url.Values{"quantity": {"3"}})
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, 3, f.cartLen(t))
}

func TestCartAddUnknownProduct(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodGet, "/cart/add/nope/", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCartAddInvalidQuantity(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodPost, "/cart/add/pA/", url.Values{"quantity": {"abc"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCartRemoveNotInCartIsNoop(t *testing.T) {
	f := newFixture(t)
	f.seedCart(t, "pA", 2)

	// pB ada di katalog tapi tidak di cart
	rec := f.do(http.MethodGet, "/cart/remove/pB/", nil)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, 2, f.cartLen(t))
}

func TestCartRemoveUnknownProduct(t *testing.T) {
	f := newFixture(t)
	f.seedCart(t, "pA", 2)

	rec := f.do(http.MethodGet, "/cart/remove/nope/", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, 2, f.cartLen(t))
}

func TestCartDetailTotals(t *testing.T) {
	f := newFixture(t)
	f.seedCart(t, "pA", 2) // 10.00 x2
	f.seedCart(t, "pB", 3) // 5.00 x3

	rec := f.do(http.MethodGet, "/cart/", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		TotalCents int    `json:"total_cents"`
		Total      string `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 3500, resp.TotalCents)
	assert.Equal(t, "35.00", resp.Total)
}

// ---- checkout ----

func TestCheckoutEmptyCartRedirects(t *testing.T) {
	f := newFixture(t)

	for _, method := range []string{http.MethodGet, http.MethodPost} {
		rec := f.do(method, "/checkout/", checkoutForm)
		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/shop/", rec.Header().Get("Location"))
	}
	assert.Empty(t, f.ledger.orders)
}

func TestCheckoutGhostCartRedirects(t *testing.T) {
	f := newFixture(t)
	f.seedCart(t, "pA", 2)

	// produk hilang dari katalog setelah masuk cart: jangan sampai jadi
	// order kosong bertotal nol
	delete(f.catalog.products, "pA")

	rec := f.do(http.MethodPost, "/checkout/", checkoutForm)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/shop/", rec.Header().Get("Location"))
	assert.Empty(t, f.ledger.orders)
}

func TestCheckoutMissingFields(t *testing.T) {
	f := newFixture(t)
	f.seedCart(t, "pA", 1)

	rec := f.do(http.MethodPost, "/checkout/", url.Values{"full_name": {"Ash"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, f.ledger.orders)
}

func TestCheckoutCreatesOrderAndDecrementsStock(t *testing.T) {
	f := newFixture(t)
	f.seedCart(t, "pA", 2) // stok 5

	rec := f.do(http.MethodPost, "/checkout/", checkoutForm)
	require.Equal(t, http.StatusCreated, rec.Code)

	require.Len(t, f.ledger.orders, 1)
	o := f.ledger.orders[0]
	assert.Equal(t, "Ash Ketchum", o.FullName)
	assert.Equal(t, 2000, o.TotalCents)
	require.Len(t, o.Items, 1)
	assert.Equal(t, 1000, o.Items[0].PriceCents)
	assert.Equal(t, 2, o.Items[0].Qty)

	assert.Equal(t, 3, f.catalog.products["pA"].Stock)
	assert.Equal(t, 0, f.cartLen(t), "cart harus kosong setelah checkout")
	assert.Equal(t, 1, f.producer.published)
	require.Len(t, f.mailer.bodies, 1)
	assert.Contains(t, f.mailer.bodies[0], "2 x Charizard at 10.00 $")
}

func TestCheckoutSnapshotPriceImmuneToPriceChange(t *testing.T) {
	f := newFixture(t)
	f.seedCart(t, "pA", 2)

	// harga produk naik setelah item masuk cart
	f.catalog.products["pA"].PriceCents = 9999

	rec := f.do(http.MethodPost, "/checkout/", checkoutForm)
	require.Equal(t, http.StatusCreated, rec.Code)

	require.Len(t, f.ledger.orders, 1)
	require.Len(t, f.ledger.orders[0].Items, 1)
	assert.Equal(t, 1000, f.ledger.orders[0].Items[0].PriceCents)
	assert.Equal(t, 2000, f.ledger.orders[0].TotalCents)
}

func TestCheckoutInsufficientStockSkipsDecrement(t *testing.T) {
	f := newFixture(t)
	f.seedCart(t, "pB", 10) // stok cuma 3

	rec := f.do(http.MethodPost, "/checkout/", checkoutForm)
	require.Equal(t, http.StatusCreated, rec.Code)

	// order + item tetap dibuat, stok tidak berubah, tanpa sinyal error
	require.Len(t, f.ledger.orders, 1)
	assert.Equal(t, 3, f.catalog.products["pB"].Stock)
}

func TestCheckoutConfirmationOmitsEmail(t *testing.T) {
	f := newFixture(t)
	f.seedCart(t, "pA", 1)

	rec := f.do(http.MethodPost, "/checkout/", checkoutForm)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.NotContains(t, rec.Body.String(), "ash@example.com")
}

func TestCheckoutMailFailurePropagates(t *testing.T) {
	f := newFixture(t)
	f.seedCart(t, "pA", 1)
	f.mailer.err = errors.New("smtp: connection refused")

	rec := f.do(http.MethodPost, "/checkout/", checkoutForm)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	// order sudah terlanjur commit; tidak ada kompensasi
	assert.Len(t, f.ledger.orders, 1)
}

// ---- payment ----

func TestPayBitcoinRedirectsToInvoice(t *testing.T) {
	f := newFixture(t)
	f.seedCart(t, "pA", 2)
	f.seedCart(t, "pB", 3)

	rec := f.do(http.MethodGet, "/pay/bitcoin/", nil)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "https://pay.example/inv/1", rec.Header().Get("Location"))

	req := f.invoicer.req
	assert.Equal(t, 35.00, req.PriceAmount)
	assert.Equal(t, "usd", req.PriceCurrency)
	assert.Equal(t, "btc", req.PayCurrency)
	assert.Equal(t, "order_"+testSID, req.OrderID)
	assert.Equal(t, "http://store.test/payment-success/", req.SuccessURL)
	assert.Equal(t, "http://store.test/cart/", req.CancelURL)
}

func TestPayBitcoinEmptyCartRedirects(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodGet, "/pay/bitcoin/", nil)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/cart/", rec.Header().Get("Location"))
}

func TestPayBitcoinErrorShownVerbatim(t *testing.T) {
	f := newFixture(t)
	f.seedCart(t, "pA", 1)
	f.invoicer.err = errors.New("dial tcp: connection refused")

	rec := f.do(http.MethodGet, "/pay/bitcoin/", nil)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/plain")
	assert.Equal(t, "Error contacting NowPayments: dial tcp: connection refused", rec.Body.String())
}

// Endpoint success tidak memverifikasi apapun: siapapun yg mampir cart-nya
// dikosongkan. Regression test utk defect yg terdokumentasi.
func TestPaymentSuccessClearsCartUnconditionally(t *testing.T) {
	f := newFixture(t)
	f.seedCart(t, "pA", 2)

	rec := f.do(http.MethodGet, "/payment-success/", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, f.cartLen(t))
}

func TestPaymentSuccessRecordsIPN(t *testing.T) {
	f := newFixture(t)
	f.seedCart(t, "pA", 1)

	// payment_id numerik 10 digit harus tersimpan utuh, bukan notasi eksponen
	body := `{"order_id":"order_sess-test","payment_id":5077125231,"price_amount":10.00,"payment_status":"finished"}`
	req := httptest.NewRequest(http.MethodPost, "/payment-success/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(&http.Cookie{Name: "sid", Value: testSID})
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, f.ledger.payments, 1)
	p := f.ledger.payments[0]
	assert.Equal(t, "order_sess-test", p.OrderID)
	assert.Equal(t, "5077125231", p.ChargeID)
	assert.Equal(t, 1000, p.AmountCents)
	assert.Equal(t, "finished", p.Status)
	assert.Equal(t, 0, f.cartLen(t))
}

// ---- catalog routes ----

func TestProductDetailNotFound(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodGet, "/product/nope/", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProductDetail(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodGet, "/product/charizard/", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var p catalog.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.Equal(t, "Charizard", p.Name)
	assert.Equal(t, 1000, p.PriceCents)
}

func TestCategoryListingUnknownSlug(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodGet, "/shop/category/nope/", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
