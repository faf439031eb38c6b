package orders

import "time"

type Order struct {
	ID         string
	FullName   string
	Email      string
	Address    string
	TotalCents int
	// Paid tidak pernah di-set oleh flow manapun; kolomnya ada utk
	// rekonsiliasi manual di back office.
	Paid      bool
	CreatedAt time.Time
}

type OrderItem struct {
	ID         string
	OrderID    string
	ProductID  string
	PriceCents int // snapshot harga dari cart saat order dibuat
	Qty        int
}

// BitcoinPayment: rekaman IPN dari payment provider. Diisi best-effort
// oleh callback payment-success, tidak dipakai utk verifikasi apapun.
type BitcoinPayment struct {
	ID          string
	OrderID     string
	ChargeID    string
	AmountCents int
	Currency    string
	Status      string
	CreatedAt   time.Time
}
