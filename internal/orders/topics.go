package orders

const TopicOrderPlaced = "orders.placed"

// Partition key = order id so replays of one order stay ordered.
func PartitionKey(orderID string) []byte { return []byte(orderID) }
