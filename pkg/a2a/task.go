package a2a

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/cohesivestack/valgo"
	"github.com/google/uuid"
)

type Task struct {
	Kind      string         `json:"kind"`
	ID        string         `json:"id"`
	ContextID string         `json:"contextId,omitempty"`
	Status    TaskStatus     `json:"status"`
	History   []Message      `json:"history,omitempty"`
	Artifacts []Artifact     `json:"artifacts,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

/*
NewTask starts a task in the submitted state from the message that asked
for it. The message joins the history and inherits the task's ids.
*/
func NewTask(msg Message) *Task {
	contextID := msg.ContextID

	if contextID == "" {
		contextID = uuid.NewString()
	}

	task := &Task{
		Kind:      KindTask,
		ID:        uuid.NewString(),
		ContextID: contextID,
	}

	msg.ContextID = contextID
	msg.TaskID = task.ID
	task.History = append(task.History, msg)
	task.ToStatus(TaskStateSubmitted, nil)

	return task
}

/*
ParseTask decodes a task snapshot received from a peer and checks the
fields every consumer relies on are present.
*/
func ParseTask(raw []byte) (*Task, error) {
	var task Task

	if err := json.Unmarshal(raw, &task); err != nil {
		return nil, err
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return &task, nil
}

func (task *Task) Validate() error {
	v := valgo.Is(
		valgo.String(task.ID, "id").Not().Blank(),
	).Is(
		valgo.String(string(task.Status.State), "status.state").Not().Blank(),
	)

	if task.Kind != "" {
		v = v.Is(valgo.String(task.Kind, "kind").EqualTo(KindTask))
	}

	if !v.Valid() {
		return v.Error()
	}

	return nil
}

func (task *Task) ToStatus(state TaskState, message *Message) {
	log.Debug("task status update", "task", task.ID, "state", state)

	task.Status.State = state
	task.Status.Timestamp = time.Now().UTC().Format(time.RFC3339Nano)
	task.Status.Message = message
}

func (task *Task) AddArtifact(artifact Artifact) {
	task.Artifacts = append(task.Artifacts, artifact)
}

func (task *Task) LastMessage() *Message {
	if len(task.History) == 0 {
		return nil
	}

	return &task.History[len(task.History)-1]
}

/*
Clone returns a copy that shares nothing mutable with the original at the
slice level, so stores can hand out snapshots safely.
*/
func (task *Task) Clone() *Task {
	clone := *task

	clone.History = append([]Message(nil), task.History...)
	clone.Artifacts = append([]Artifact(nil), task.Artifacts...)

	if task.Status.Message != nil {
		msg := *task.Status.Message
		clone.Status.Message = &msg
	}

	if task.Metadata != nil {
		clone.Metadata = make(map[string]any, len(task.Metadata))

		for k, v := range task.Metadata {
			clone.Metadata[k] = v
		}
	}

	return &clone
}

// MessageSendConfiguration is the optional configuration of message/send.
type MessageSendConfiguration struct {
	AcceptedOutputModes []string `json:"acceptedOutputModes,omitempty"`
	HistoryLength       *int     `json:"historyLength,omitempty"`
	Blocking            bool     `json:"blocking,omitempty"`
}

// MessageSendParams represents the parameters of message/send.
type MessageSendParams struct {
	Message       Message                   `json:"message"`
	Configuration *MessageSendConfiguration `json:"configuration,omitempty"`
	Metadata      map[string]any            `json:"metadata,omitempty"`
}

// TaskIDParams represents the base parameters for task ID-based operations
type TaskIDParams struct {
	// ID is the unique identifier of the task
	ID string `json:"id"`
	// Metadata is optional metadata to include with the operation
	Metadata map[string]any `json:"metadata,omitempty"`
}

// TaskQueryParams represents the parameters for querying task information
type TaskQueryParams struct {
	TaskIDParams
	// HistoryLength is an optional parameter to specify how much history to retrieve
	HistoryLength *int `json:"historyLength,omitempty"`
}

func (task *Task) String() string {
	var sb strings.Builder

	// Styles
	headerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("212")).
		Bold(true)

	labelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("39")).
		Bold(true)

	valueStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("252"))

	sectionStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("99")).
		Bold(true)

	indent := "   "
	bullet := "│ "

	sb.WriteString(headerStyle.Render("Task") + "\n")
	sb.WriteString(bullet + labelStyle.Render("ID: ") + valueStyle.Render(task.ID) + "\n")

	if task.ContextID != "" {
		sb.WriteString(bullet + labelStyle.Render("Context ID: ") + valueStyle.Render(task.ContextID) + "\n")
	}

	sb.WriteString("\n" + sectionStyle.Render("Status") + "\n")
	sb.WriteString(bullet + labelStyle.Render("State: ") + valueStyle.Render(string(task.Status.State)) + "\n")

	if reason := task.Status.Reason(); reason != "" {
		sb.WriteString(bullet + labelStyle.Render("Message: ") + valueStyle.Render(reason) + "\n")
	}

	if task.Status.Timestamp != "" {
		sb.WriteString(bullet + labelStyle.Render("Timestamp: ") + valueStyle.Render(task.Status.Timestamp) + "\n")
	}

	if len(task.History) > 0 {
		sb.WriteString("\n" + sectionStyle.Render("History") + "\n")

		for i, message := range task.History {
			sb.WriteString(bullet + labelStyle.Render(fmt.Sprintf("Message %d", i+1)) + "\n")
			sb.WriteString(bullet + indent + labelStyle.Render("Role: ") + valueStyle.Render(message.Role) + "\n")
			sb.WriteString(bullet + indent + labelStyle.Render("Content: ") + valueStyle.Render(message.String()) + "\n")
		}
	}

	if len(task.Artifacts) > 0 {
		sb.WriteString("\n" + sectionStyle.Render("Artifacts") + "\n")

		for i, artifact := range task.Artifacts {
			sb.WriteString(bullet + labelStyle.Render(fmt.Sprintf("Artifact %d", i+1)) + "\n")

			if artifact.Name != nil {
				sb.WriteString(bullet + indent + labelStyle.Render("Name: ") + valueStyle.Render(*artifact.Name) + "\n")
			}

			for j, part := range artifact.Parts {
				content := part.Text

				if !part.IsText() {
					content = fmt.Sprintf("<%s part>", part.Kind)
				}

				sb.WriteString(bullet + indent + labelStyle.Render(fmt.Sprintf("Part %d: ", j+1)) + valueStyle.Render(content) + "\n")
			}
		}
	}

	if len(task.Metadata) > 0 {
		sb.WriteString("\n" + sectionStyle.Render("Metadata") + "\n")

		keys := make([]string, 0, len(task.Metadata))

		for k := range task.Metadata {
			keys = append(keys, k)
		}

		sort.Strings(keys)

		for _, k := range keys {
			sb.WriteString(bullet + labelStyle.Render(k+": ") + valueStyle.Render(fmt.Sprintf("%v", task.Metadata[k])) + "\n")
		}
	}

	return sb.String()
}
