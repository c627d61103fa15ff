package a2a

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	fiberClient "github.com/gofiber/fiber/v3/client"
	"github.com/google/uuid"
	"github.com/theapemachine/a2a-helpdesk/pkg/errors"
	"github.com/theapemachine/a2a-helpdesk/pkg/jsonrpc"
	"github.com/theapemachine/a2a-helpdesk/pkg/utils"
)

const (
	MethodMessageSend = "message/send"
	MethodTasksGet    = "tasks/get"
	MethodTasksCancel = "tasks/cancel"

	// Methods of the protocol this agent does not offer.
	MethodMessageStream       = "message/stream"
	MethodTasksResubscribe    = "tasks/resubscribe"
	MethodPushNotificationSet = "tasks/pushNotificationConfig/set"
	MethodPushNotificationGet = "tasks/pushNotificationConfig/get"

	AgentCardPath       = "/.well-known/agent.json"
	AgentCardLegacyPath = "/.well-known/agent-card.json"
)

/*
Client represents an A2A protocol client bound to one remote agent. It
holds no task state of its own, so a fresh one per call is fine.
*/
type Client struct {
	baseURL string
	rpc     *jsonrpc.RPCClient
	conn    *fiberClient.Client
	retry   *errors.RetryConfig
}

type ClientOption func(*Client)

// WithRetry sets the backoff used when the remote cannot be reached.
func WithRetry(config *errors.RetryConfig) ClientOption {
	return func(client *Client) {
		client.retry = config
	}
}

// WithTimeout bounds every individual request.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(client *Client) {
		client.rpc = jsonrpc.NewRPCClient(client.baseURL, jsonrpc.WithTimeout(timeout))
		client.conn.SetTimeout(timeout)
	}
}

/*
NewClient creates a new A2A client.
*/
func NewClient(baseURL string, opts ...ClientOption) *Client {
	client := &Client{
		baseURL: baseURL,
		rpc:     jsonrpc.NewRPCClient(baseURL),
		conn:    fiberClient.New(),
		retry:   &errors.RetryConfig{MaxAttempts: 1, BackoffFactor: 1},
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

func (client *Client) BaseURL() string {
	return client.baseURL
}

/*
Submit sends query to the remote agent as a single text message from the
user and returns the task the agent created for it.
*/
func (client *Client) Submit(ctx context.Context, query string) (*Task, error) {
	return client.SendMessage(ctx, NewTextMessage(RoleUser, query))
}

/*
SendMessage performs message/send. Agents may answer with a Message
instead of a Task when they reply immediately; that reply is wrapped into
a completed task whose only artifact carries the message parts, so every
caller deals with one shape.
*/
func (client *Client) SendMessage(ctx context.Context, msg Message) (*Task, error) {
	log.Debug("sending message", "agent", client.baseURL, "messageId", msg.MessageID)

	var raw json.RawMessage

	if err := client.call(ctx, MethodMessageSend, MessageSendParams{Message: msg}, &raw); err != nil {
		return nil, err
	}

	var probe struct {
		Kind string `json:"kind"`
	}

	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, &errors.MalformedResponseError{Method: MethodMessageSend, Reason: "result is not an object", Err: err}
	}

	if probe.Kind == KindMessage {
		return wrapMessage(raw)
	}

	return client.parseTask(MethodMessageSend, raw)
}

/*
GetTask performs tasks/get and returns the full current snapshot.
*/
func (client *Client) GetTask(ctx context.Context, id string) (*Task, error) {
	var raw json.RawMessage

	params := TaskQueryParams{TaskIDParams: TaskIDParams{ID: id}}

	if err := client.call(ctx, MethodTasksGet, params, &raw); err != nil {
		return nil, err
	}

	return client.parseTask(MethodTasksGet, raw)
}

/*
CancelTask performs tasks/cancel. The remote answers with the task in its
canceled state, or an error when it already finished.
*/
func (client *Client) CancelTask(ctx context.Context, id string) (*Task, error) {
	var raw json.RawMessage

	if err := client.call(ctx, MethodTasksCancel, TaskIDParams{ID: id}, &raw); err != nil {
		return nil, err
	}

	return client.parseTask(MethodTasksCancel, raw)
}

/*
FetchAgentCard retrieves the remote agent's card from its well-known
location, falling back to the older file name.
*/
func (client *Client) FetchAgentCard(ctx context.Context) (*AgentCard, error) {
	var lastErr error

	for _, path := range []string{AgentCardPath, AgentCardLegacyPath} {
		url := utils.JoinURL(client.baseURL, path)

		res, err := client.conn.Get(url, fiberClient.Config{Ctx: ctx})

		if err != nil {
			return nil, &errors.ConnectionError{URL: url, Err: err}
		}

		if res.StatusCode() != http.StatusOK {
			lastErr = &errors.MalformedResponseError{
				Method: "agent card",
				Reason: fmt.Sprintf("%s returned %d", url, res.StatusCode()),
			}

			res.Close()
			continue
		}

		var card AgentCard

		err = json.Unmarshal(res.Body(), &card)
		res.Close()

		if err != nil {
			return nil, &errors.MalformedResponseError{Method: "agent card", Reason: "cannot decode card", Err: err}
		}

		return &card, nil
	}

	return nil, lastErr
}

func (client *Client) call(ctx context.Context, method string, params any, result any) error {
	return errors.RetryWithBackoff(ctx, client.retry, func() error {
		err := client.rpc.Call(ctx, method, params, result)

		if errors.Retryable(err) {
			log.Warn("remote agent unreachable", "agent", client.baseURL, "method", method, "error", err)
		}

		return err
	})
}

func (client *Client) parseTask(method string, raw json.RawMessage) (*Task, error) {
	task, err := ParseTask(raw)

	if err != nil {
		return nil, &errors.MalformedResponseError{Method: method, Reason: "result is not a valid task", Err: err}
	}

	return task, nil
}

func wrapMessage(raw json.RawMessage) (*Task, error) {
	var msg Message

	if err := json.Unmarshal(raw, &msg); err != nil {
		return nil, &errors.MalformedResponseError{Method: MethodMessageSend, Reason: "result is not a valid message", Err: err}
	}

	task := &Task{
		Kind:      KindTask,
		ID:        msg.TaskID,
		ContextID: msg.ContextID,
		Artifacts: []Artifact{{
			ArtifactID: uuid.NewString(),
			Parts:      msg.Parts,
		}},
	}

	if task.ID == "" {
		task.ID = uuid.NewString()
	}

	task.ToStatus(TaskStateCompleted, nil)

	return task, nil
}
