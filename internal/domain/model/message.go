package model

// MessageKind identifies the purpose of an outbound notification.
type MessageKind string

const (
	MessageKindWelcome  MessageKind = "welcome"
	MessageKindRecovery MessageKind = "recovery"
)

// Message is an outbound notification. Body is markdown; adapters decide how
// to render it for their medium.
type Message struct {
	Kind    MessageKind
	Subject string
	Body    string
}
