package orders

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ItemInput: satu baris cart yg mau di-checkout; harga adalah snapshot
// dari cart, bukan harga produk sekarang.
type ItemInput struct {
	ProductID  string `json:"product_id"`
	PriceCents int    `json:"price_cents"`
	Qty        int    `json:"qty"`
}

type Repo struct{ DB *pgxpool.Pool }

// CreateOrderTx: seluruh checkout dalam SATU transaksi —
// insert order, insert items (harga snapshot), lalu decrement stok.
// Stok di-lock per produk (FOR UPDATE) supaya checkout paralel tidak
// bisa lolos dari cek stok. Kalau stok < qty, decrement di-skip tanpa
// error (order & item tetap dibuat). Commit semua atau tidak sama sekali.
func (r *Repo) CreateOrderTx(ctx context.Context, fullName, email, address string, items []ItemInput) (orderID string, totalCents int, err error) {
	for _, it := range items {
		totalCents += it.PriceCents * it.Qty
	}

	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return "", 0, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	orderID = uuid.NewString()
	_, err = tx.Exec(ctx, `
		INSERT INTO orders(id, full_name, email, address, total_cents, paid)
		VALUES ($1, $2, $3, $4, $5, FALSE)
	`, orderID, fullName, email, address, totalCents)
	if err != nil {
		return "", 0, err
	}

	for _, it := range items {
		_, err = tx.Exec(ctx, `
			INSERT INTO order_items(id, order_id, product_id, price_cents, qty)
			VALUES ($1, $2, $3, $4, $5)`,
			uuid.NewString(), orderID, it.ProductID, it.PriceCents, it.Qty,
		)
		if err != nil {
			return "", 0, err
		}

		var stock int
		if err = tx.QueryRow(ctx, `SELECT stock FROM products WHERE id=$1 FOR UPDATE`, it.ProductID).Scan(&stock); err != nil {
			return "", 0, err
		}
		if stock >= it.Qty {
			if _, err = tx.Exec(ctx, `UPDATE products SET stock = stock - $2, updated_at = now() WHERE id=$1`, it.ProductID, it.Qty); err != nil {
				return "", 0, err
			}
		}
		// stok kurang: biarkan apa adanya, tanpa sinyal ke pembeli
	}

	if err = tx.Commit(ctx); err != nil {
		return "", 0, err
	}
	return orderID, totalCents, nil
}

func (r *Repo) GetOrder(ctx context.Context, orderID string) (Order, []OrderItem, error) {
	var o Order
	err := r.DB.QueryRow(ctx, `SELECT id, full_name, email, address, total_cents, paid, created_at
		FROM orders WHERE id=$1`, orderID).
		Scan(&o.ID, &o.FullName, &o.Email, &o.Address, &o.TotalCents, &o.Paid, &o.CreatedAt)
	if err != nil {
		return Order{}, nil, err
	}

	rows, err := r.DB.Query(ctx, `SELECT id, order_id, product_id, price_cents, qty
		FROM order_items WHERE order_id=$1`, orderID)
	if err != nil {
		return Order{}, nil, err
	}
	defer rows.Close()

	var items []OrderItem
	for rows.Next() {
		var it OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.PriceCents, &it.Qty); err != nil {
			return Order{}, nil, err
		}
		items = append(items, it)
	}
	return o, items, rows.Err()
}

// RecordBitcoinPayment: insert rekaman IPN apa adanya.
func (r *Repo) RecordBitcoinPayment(ctx context.Context, p BitcoinPayment) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Currency == "" {
		p.Currency = "USD"
	}
	_, err := r.DB.Exec(ctx, `
		INSERT INTO bitcoin_payments(id, order_id, charge_id, amount_cents, currency, status)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		p.ID, p.OrderID, p.ChargeID, p.AmountCents, p.Currency, p.Status)
	return err
}
