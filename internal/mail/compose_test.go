package mail

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComposeOrderNotification(t *testing.T) {
	items := []NotificationItem{
		{Name: "Charizard", PriceCents: 1000, Qty: 2},
		{Name: "Booster Box", PriceCents: 500, Qty: 3},
	}
	subject, body := ComposeOrderNotification("ord-1", "Ash Ketchum", "ash@example.com", "Pallet Town 1", items, 3500)

	assert.Equal(t, "New Order #ord-1 from Ash Ketchum", subject)
	assert.Contains(t, body, "2 x Charizard at 10.00 $")
	assert.Contains(t, body, "3 x Booster Box at 5.00 $")
	assert.Contains(t, body, "Total: 35.00 $")
	// email customer ikut di notifikasi toko (bukan di response ke customer)
	assert.Contains(t, body, "ash@example.com")
	assert.Contains(t, body, "Pallet Town 1")
}
