package a2a

import (
	"strings"

	"github.com/google/uuid"
)

const (
	RoleUser  = "user"
	RoleAgent = "agent"

	KindMessage = "message"
	KindTask    = "task"
)

/*
Message represents all non‑artifact communication between client & agent.
*/
type Message struct {
	Kind      string         `json:"kind"`
	MessageID string         `json:"messageId"`
	Role      string         `json:"role"` // "user" or "agent"
	Parts     []Part         `json:"parts"`
	ContextID string         `json:"contextId,omitempty"`
	TaskID    string         `json:"taskId,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

func NewTextMessage(role string, text string) Message {
	return Message{
		Kind:      KindMessage,
		MessageID: uuid.NewString(),
		Role:      role,
		Parts:     []Part{NewTextPart(text)},
	}
}

// String joins the text parts of the message.
func (msg *Message) String() string {
	var sb strings.Builder

	for _, part := range msg.Parts {
		if part.IsText() {
			sb.WriteString(part.Text)
		}
	}

	return sb.String()
}
