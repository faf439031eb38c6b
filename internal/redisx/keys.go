package redisx

import "time"

const (
	// Cart per session: hash cart:{session_id}, field = product_id,
	// value = JSON {price_cents, qty, added_at}
	KeyCart = "cart:%s"
)

var (
	// Tiap mutasi cart refresh TTL-nya (session dianggap "modified").
	TTLCart = 7 * 24 * time.Hour
)
