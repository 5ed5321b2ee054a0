package dto

type KafkaMessage struct {
	ID        string      `json:"id"`
	EventType string      `json:"event_type"`
	Data      interface{} `json:"data"`
}

type WelcomeEmailEvent struct {
	EmailAddress *string `json:"email_address"`
	EmailType    string  `json:"email_type"`
}

type AuditEvent struct {
	EventType string                 `json:"event_type"`
	EventData map[string]interface{} `json:"event_data"`
}
