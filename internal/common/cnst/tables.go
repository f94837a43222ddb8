package cnst

// Logical table names carried in realtime fanout payloads. Subscribers
// register interest by table and re-query the authoritative store on receipt.
const (
	TableMessages       = "chat_messages"
	TableTopics         = "chat_topics"
	TableCategories     = "chat_categories"
	TableCalendarEvents = "calendar_events"
	TableHandovers      = "handovers"
)

// Realtime event kinds
const (
	EventInsert = "INSERT"
	EventUpdate = "UPDATE"
	EventDelete = "DELETE"
)
