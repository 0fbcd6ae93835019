package events

const (
	TopicOrderCreated = "cafe.order.created"
	TopicOrderStatus  = "cafe.order.status"
)

// PartitionKey keys messages by order code so all events for one order
// stay in order on the stream.
func PartitionKey(code string) []byte { return []byte(code) }
