package events

// Every storefront activity event goes to one topic; the event type rides in
// the x-event-type header.
const TopicActivity = "storefront.activity"

// Partition key = correlation id, so all events of one checkout/order keep order.
func PartitionKey(id string) []byte { return []byte(id) }
