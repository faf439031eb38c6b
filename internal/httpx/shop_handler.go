package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/ariefcatur/go-pokestore.git/internal/cart"
	"github.com/ariefcatur/go-pokestore.git/internal/catalog"
	kafkax "github.com/ariefcatur/go-pokestore.git/internal/kafka"
	"github.com/ariefcatur/go-pokestore.git/internal/mail"
	"github.com/ariefcatur/go-pokestore.git/internal/orders"
	"github.com/ariefcatur/go-pokestore.git/internal/payments"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
)

// Collaborator seams. Produksi pakai struct concrete (catalog.Repo,
// orders.Repo, payments.Client, kafka.Producer), test pakai fake.

type ProductCatalog interface {
	Featured(ctx context.Context, n int) ([]catalog.Product, error)
	ListCategories(ctx context.Context) ([]catalog.Category, error)
	GetCategoryBySlug(ctx context.Context, slug string) (catalog.Category, error)
	ListProducts(ctx context.Context, f catalog.Filter) ([]catalog.Product, int, error)
	GetProductBySlug(ctx context.Context, slug string) (catalog.Product, error)
	GetProductByID(ctx context.Context, id string) (catalog.Product, error)
}

type OrderLedger interface {
	CreateOrderTx(ctx context.Context, fullName, email, address string, items []orders.ItemInput) (orderID string, totalCents int, err error)
	RecordBitcoinPayment(ctx context.Context, p orders.BitcoinPayment) error
}

type Invoicer interface {
	CreateInvoice(ctx context.Context, req payments.InvoiceRequest) (string, error)
}

type Publisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

type ShopHandler struct {
	Catalog  ProductCatalog
	Ledger   OrderLedger
	Carts    cart.Store
	Mailer   mail.Mailer
	Invoicer Invoicer
	Producer Publisher
	Service  string
	BaseURL  string // absolute, utk callback URL payment
}

func (h *ShopHandler) Register(r *chi.Mux) {
	r.Get("/", h.home)
	r.Get("/shop/", h.productList)
	r.Get("/shop/category/{slug}/", h.productList)
	r.Get("/product/{slug}/", h.productDetail)
	r.Get("/cart/", h.cartDetail)
	r.Post("/cart/add/{id}/", h.cartAdd)
	r.Get("/cart/add/{id}/", h.cartAdd)
	r.Get("/cart/remove/{id}/", h.cartRemove)
	r.Get("/checkout/", h.checkout)
	r.Post("/checkout/", h.checkout)
	r.Get("/pay/bitcoin/", h.payBitcoin)
	r.Get("/payment-success/", h.paymentSuccess)
	r.Post("/payment-success/", h.paymentSuccess)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// ---- catalog ----

func (h *ShopHandler) home(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	featured, err := h.Catalog.Featured(ctx, 6)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	cats, err := h.Catalog.ListCategories(ctx)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"featured": featured, "categories": cats})
}

func (h *ShopHandler) productList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	f := catalog.Filter{
		Query:    r.URL.Query().Get("q"),
		PageSize: catalog.DefaultPageSize,
	}
	if p, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil {
		f.Page = p
	}

	resp := map[string]any{"query": f.Query}
	if slug := chi.URLParam(r, "slug"); slug != "" {
		cat, err := h.Catalog.GetCategoryBySlug(ctx, slug)
		if errors.Is(err, catalog.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
			return
		}
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		f.CategorySlug = slug
		resp["category"] = cat
	}

	products, total, err := h.Catalog.ListProducts(ctx, f)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	cats, err := h.Catalog.ListCategories(ctx)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	resp["products"] = products
	resp["categories"] = cats
	resp["total"] = total
	resp["page"] = max(f.Page, 1)
	resp["pages"] = (total + f.PageSize - 1) / f.PageSize
	writeJSON(w, http.StatusOK, resp)
}

func (h *ShopHandler) productDetail(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	p, err := h.Catalog.GetProductBySlug(ctx, chi.URLParam(r, "slug"))
	if errors.Is(err, catalog.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// ---- cart ----

type cartLine struct {
	Product    catalog.Product `json:"product"`
	PriceCents int             `json:"price_cents"` // harga saat add, bukan harga live
	Qty        int             `json:"qty"`
	Subtotal   int             `json:"subtotal_cents"`
}

// resolveCart: tiap entry di-join dengan produk live; entry yg produknya
// sudah hilang dari katalog dilewati.
func (h *ShopHandler) resolveCart(ctx context.Context, c *cart.Cart) ([]cartLine, int, error) {
	entries, err := c.Entries(ctx)
	if err != nil {
		return nil, 0, err
	}
	lines := make([]cartLine, 0, len(entries))
	total := 0
	for _, e := range entries {
		p, err := h.Catalog.GetProductByID(ctx, e.ProductID)
		if errors.Is(err, catalog.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, 0, err
		}
		lines = append(lines, cartLine{
			Product:    p,
			PriceCents: e.PriceCents,
			Qty:        e.Qty,
			Subtotal:   e.PriceCents * e.Qty,
		})
		total += e.PriceCents * e.Qty
	}
	return lines, total, nil
}

func (h *ShopHandler) cartDetail(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	c := cart.New(h.Carts, sessionID(w, r))
	lines, total, err := h.resolveCart(ctx, c)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items":       lines,
		"total_cents": total,
		"total":       catalog.FormatCents(total),
	})
}

func (h *ShopHandler) cartAdd(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	p, err := h.Catalog.GetProductByID(ctx, chi.URLParam(r, "id"))
	if errors.Is(err, catalog.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	qty := 1
	if r.Method == http.MethodPost {
		if v := r.PostFormValue("quantity"); v != "" {
			qty, err = strconv.Atoi(v)
			if err != nil || qty <= 0 {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid quantity"})
				return
			}
		}
	}

	c := cart.New(h.Carts, sessionID(w, r))
	if err := c.Add(ctx, p.ID, p.PriceCents, qty); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	http.Redirect(w, r, "/cart/", http.StatusFound)
}

func (h *ShopHandler) cartRemove(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	// id yg tidak dikenal katalog = 404; produk dikenal tapi tidak ada
	// di cart = no-op
	p, err := h.Catalog.GetProductByID(ctx, chi.URLParam(r, "id"))
	if errors.Is(err, catalog.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	c := cart.New(h.Carts, sessionID(w, r))
	if err := c.Remove(ctx, p.ID); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	http.Redirect(w, r, "/cart/", http.StatusFound)
}

// ---- checkout ----

func (h *ShopHandler) checkout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	c := cart.New(h.Carts, sessionID(w, r))

	// Gate kekosongan pakai hasil resolve, bukan raw entries: entry yg
	// produknya sudah hilang dari katalog jangan sampai lolos jadi order
	// kosong bertotal nol.
	lines, total, err := h.resolveCart(ctx, c)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	n := 0
	for _, l := range lines {
		n += l.Qty
	}
	if n == 0 {
		http.Redirect(w, r, "/shop/", http.StatusFound)
		return
	}

	if r.Method == http.MethodGet {
		writeJSON(w, http.StatusOK, map[string]any{
			"items":       lines,
			"total_cents": total,
			"total":       catalog.FormatCents(total),
		})
		return
	}

	fullName := r.PostFormValue("full_name")
	email := r.PostFormValue("email")
	address := r.PostFormValue("address")
	if fullName == "" || email == "" || address == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing fields"})
		return
	}

	items := make([]orders.ItemInput, 0, len(lines))
	mailItems := make([]mail.NotificationItem, 0, len(lines))
	evItems := make([]orders.ItemPrice, 0, len(lines))
	for _, l := range lines {
		items = append(items, orders.ItemInput{ProductID: l.Product.ID, PriceCents: l.PriceCents, Qty: l.Qty})
		mailItems = append(mailItems, mail.NotificationItem{Name: l.Product.Name, PriceCents: l.PriceCents, Qty: l.Qty})
		evItems = append(evItems, orders.ItemPrice{ProductID: l.Product.ID, Qty: l.Qty, PriceCents: l.PriceCents})
	}

	orderID, totalCents, err := h.Ledger.CreateOrderTx(ctx, fullName, email, address, items)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	// Notifikasi ke mailbox toko. Gagal kirim = request gagal; order yg
	// sudah commit dibiarkan (tidak ada kompensasi).
	subject, body := mail.ComposeOrderNotification(orderID, fullName, email, address, mailItems, totalCents)
	if err := h.Mailer.Send(ctx, subject, body); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	if h.Producer != nil {
		ev := orders.Envelope{
			EventID:       uuid.NewString(),
			EventType:     orders.EventOrderCreated,
			EventVersion:  1,
			OccurredAt:    time.Now().UTC(),
			Producer:      h.Service,
			TraceID:       r.Header.Get("X-Request-Id"),
			CorrelationID: orderID,
		}
		ev.Payload = kafkax.MustMarshal(orders.OrderCreatedPayload{
			OrderID:    orderID,
			FullName:   fullName,
			Items:      evItems,
			TotalCents: totalCents,
		})
		h.Producer.Publish(orders.PartitionKey(orderID), kafkax.MustMarshal(ev),
			kafkago.Header{Key: "x-event-type", Value: []byte(orders.EventOrderCreated)},
			kafkago.Header{Key: "x-event-version", Value: []byte("1")},
		)
	}

	if err := c.Clear(ctx); err != nil {
		log.Printf("clear cart after checkout: %v", err)
	}

	// konfirmasi tanpa email customer
	writeJSON(w, http.StatusCreated, map[string]any{
		"order_id":    orderID,
		"full_name":   fullName,
		"total_cents": totalCents,
		"total":       catalog.FormatCents(totalCents),
		"status":      "confirmed",
	})
}

// ---- payment ----

func (h *ShopHandler) payBitcoin(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	sid := sessionID(w, r)

	// total dihitung langsung dari session store, bukan lewat Cart
	entries, err := h.Carts.Enumerate(ctx, sid)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if len(entries) == 0 {
		http.Redirect(w, r, "/cart/", http.StatusFound)
		return
	}
	totalCents := 0
	for _, e := range entries {
		totalCents += e.PriceCents * e.Qty
	}

	invoiceURL, err := h.Invoicer.CreateInvoice(ctx, payments.InvoiceRequest{
		PriceAmount:      float64(totalCents) / 100,
		PriceCurrency:    "usd",
		PayCurrency:      "btc",
		OrderID:          "order_" + sid,
		OrderDescription: "PokeStore Order",
		IPNCallbackURL:   h.BaseURL + "/payment-success/",
		SuccessURL:       h.BaseURL + "/payment-success/",
		CancelURL:        h.BaseURL + "/cart/",
	})
	if err != nil {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusBadGateway)
		fmt.Fprintf(w, "Error contacting NowPayments: %v", err)
		return
	}
	http.Redirect(w, r, invoiceURL, http.StatusFound)
}

// paymentSuccess mengosongkan cart TANPA verifikasi apapun — endpoint ini
// terbuka dan tidak mengecek signature provider. Body POST yg kebaca
// sebagai IPN direkam best-effort, tidak menggerbangi apapun.
func (h *ShopHandler) paymentSuccess(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	sid := sessionID(w, r)

	if r.Method == http.MethodPost && h.Ledger != nil {
		var ipn payments.IPN
		if err := json.NewDecoder(r.Body).Decode(&ipn); err == nil && ipn.OrderID != "" {
			rec := orders.BitcoinPayment{
				OrderID:     ipn.OrderID,
				ChargeID:    ipn.PaymentID.String(),
				AmountCents: int(math.Round(ipn.PriceAmount * 100)),
				Currency:    "USD",
				Status:      ipn.Status,
			}
			if err := h.Ledger.RecordBitcoinPayment(ctx, rec); err != nil {
				log.Printf("record bitcoin payment: %v", err)
			}
		}
	}

	if err := h.Carts.Clear(ctx, sid); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "payment success"})
}
