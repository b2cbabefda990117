// Package protocol defines the messages exchanged over the control socket.
//
// Every message is a single line holding a JSON [Envelope]. A client sends
// one request envelope per connection and receives one response envelope,
// whose command is either [CmdOK] or [CmdError].
package protocol

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/pkg/errors"
)

var ErrProtocol = errors.New("malformed control message")

// Names a request or response.
type Command string

const (
	CmdStatus   Command = "status"   // Report daemon and channel state.
	CmdReload   Command = "reload"   // Reload the configuration file.
	CmdShutdown Command = "shutdown" // Stop the daemon.
	CmdOK       Command = "ok"       // Successful response.
	CmdError    Command = "error"    // Failed response, payload is an [ErrorResult].
)

// Wire format of every message.
type Envelope struct {
	Command Command         `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Payload of [CmdError] responses.
type ErrorResult struct {
	Message string `json:"message"`
}

// Per-channel part of a [StatusResult].
type ChannelStatus struct {
	Name        string    `json:"name"`
	LogFile     string    `json:"log_file"`
	Lines       uint64    `json:"lines"`
	LastEvent   time.Time `json:"last_event,omitzero"`
	LastCommand string    `json:"last_command,omitempty"`
}

// Payload of a successful [CmdStatus] response.
type StatusResult struct {
	Running   bool            `json:"running"`
	Version   string          `json:"version"`
	Pid       int             `json:"pid"`
	Uptime    string          `json:"uptime"`
	Connected bool            `json:"connected"`
	Reloads   int             `json:"reloads"`
	Requests  int             `json:"requests"` // Control commands served, this one included.
	Channels  []ChannelStatus `json:"channels"`
}

// Payload of a successful [CmdReload] response.
type ReloadResult struct {
	Added    []string `json:"added,omitempty"`
	Removed  []string `json:"removed,omitempty"`
	Channels []string `json:"channels"`
}

// Encodes a command and its payload as an envelope. A nil payload is
// omitted.
func Encode(cmd Command, payload any) ([]byte, error) {
	env := Envelope{Command: cmd}

	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, errors.Wrapf(err, "encoding %s payload", cmd)
		}
		env.Payload = raw
	}

	return json.Marshal(env)
}

// Decodes an envelope and returns it along with its raw payload.
func Decode(data []byte) (*Envelope, json.RawMessage, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrProtocol, err)
	}
	if env.Command == "" {
		return nil, nil, errors.Wrap(ErrProtocol, "missing command")
	}
	return &env, env.Payload, nil
}

// Decodes a payload into T.
func DecodePayload[T any](payload json.RawMessage) (*T, error) {
	var v T
	if len(payload) == 0 {
		return &v, nil
	}
	if err := json.Unmarshal(payload, &v); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProtocol, err)
	}
	return &v, nil
}
