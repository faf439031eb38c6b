package mail

import (
	"fmt"
	"strings"

	"github.com/ariefcatur/go-pokestore.git/internal/catalog"
)

type NotificationItem struct {
	Name       string
	PriceCents int // snapshot dari cart, bukan harga live
	Qty        int
}

// ComposeOrderNotification menyusun subject + body plain text utk mailbox
// toko. Harga yg ditulis adalah harga snapshot saat item masuk cart.
func ComposeOrderNotification(orderID, fullName, email, address string, items []NotificationItem, totalCents int) (subject, body string) {
	subject = fmt.Sprintf("New Order #%s from %s", orderID, fullName)

	var lines strings.Builder
	for _, it := range items {
		fmt.Fprintf(&lines, "%d x %s at %s $\n", it.Qty, it.Name, catalog.FormatCents(it.PriceCents))
	}

	body = fmt.Sprintf(`You have a new order!

Order ID: %s
Customer Name: %s
Customer Email: %s
Customer Address: %s

Order Items:
%s
Total: %s $
`, orderID, fullName, email, address, lines.String(), catalog.FormatCents(totalCents))
	return subject, body
}
