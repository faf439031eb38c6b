package cart

import "context"

// Entry: isi cart per product. Harga di-capture saat add (snapshot),
// bukan harga produk live. AddedAt (unix nano) menjaga urutan insert
// karena backing store (redis hash) tidak punya ordering.
type Entry struct {
	ProductID  string `json:"product_id"`
	PriceCents int    `json:"price_cents"`
	Qty        int    `json:"qty"`
	AddedAt    int64  `json:"added_at"`
}

// Store: keyed store per session utk isi cart. Implementasi bebas
// (redis di produksi, memory di test); semua mutasi harus "menyentuh"
// session supaya state bertahan melewati response cycle.
type Store interface {
	Get(ctx context.Context, sid, productID string) (Entry, bool, error)
	Put(ctx context.Context, sid string, e Entry) error
	Delete(ctx context.Context, sid, productID string) error
	Clear(ctx context.Context, sid string) error
	// Enumerate mengembalikan entries terurut sesuai urutan add.
	Enumerate(ctx context.Context, sid string) ([]Entry, error)
}
