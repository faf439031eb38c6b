package orders

const (
	TopicOrderCreated = "order.created"
)

// Partition key = order_id, supaya event utk 1 order maintain urutan.
func PartitionKey(orderID string) []byte { return []byte(orderID) }
