package cart

import (
	"context"
	"time"
)

// Cart: view per-session di atas Store. Semua operasi langsung tembus ke
// store, tidak ada state di struct ini selain session id.
type Cart struct {
	Store Store
	SID   string
}

func New(store Store, sid string) *Cart { return &Cart{Store: store, SID: sid} }

// Add: produk baru masuk dengan harga saat ini (snapshot) + qty;
// produk yg sudah ada cuma ditambah qty-nya, harga & posisi tetap.
// Tidak ada batas atas qty dan tidak ada cek stok di sini.
func (c *Cart) Add(ctx context.Context, productID string, priceCents, qty int) error {
	e, ok, err := c.Store.Get(ctx, c.SID, productID)
	if err != nil {
		return err
	}
	if !ok {
		e = Entry{
			ProductID:  productID,
			PriceCents: priceCents,
			Qty:        qty,
			AddedAt:    time.Now().UnixNano(),
		}
	} else {
		e.Qty += qty
	}
	return c.Store.Put(ctx, c.SID, e)
}

// Remove: no-op kalau produk tidak ada di cart.
func (c *Cart) Remove(ctx context.Context, productID string) error {
	return c.Store.Delete(ctx, c.SID, productID)
}

// Entries: urut sesuai urutan add.
func (c *Cart) Entries(ctx context.Context) ([]Entry, error) {
	return c.Store.Enumerate(ctx, c.SID)
}

// TotalCents: sum(price * qty) seluruh entries.
func (c *Cart) TotalCents(ctx context.Context) (int, error) {
	entries, err := c.Entries(ctx)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, e := range entries {
		total += e.PriceCents * e.Qty
	}
	return total, nil
}

// Len: jumlah seluruh quantity (dipakai utk cek cart kosong sebelum checkout).
func (c *Cart) Len(ctx context.Context) (int, error) {
	entries, err := c.Entries(ctx)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, e := range entries {
		n += e.Qty
	}
	return n, nil
}

func (c *Cart) Clear(ctx context.Context) error {
	return c.Store.Clear(ctx, c.SID)
}
