package chatlog

import (
	"bytes"
	"encoding/json"
	"time"
)

// Layout of the time field.
const TimeLayout = time.RFC3339Nano

// Command name of the record written when a log file is opened.
const CommandOpen = "OPEN"

// One line of a channel log.
//
// Only Command and Time are always present. Tags are encoded with sorted
// keys; tags sent without a value are recorded with an empty string.
type Record struct {
	Command         string            `json:"command"`
	Sender          string            `json:"sender,omitempty"`            // PRIVMSG author.
	User            string            `json:"user,omitempty"`              // CLEARCHAT target user.
	Message         string            `json:"message,omitempty"`           // Chat text, if the command carries one.
	TargetMessageID string            `json:"target_message_id,omitempty"` // CLEARMSG deleted message ID.
	Tags            map[string]string `json:"tags,omitempty"`
	Time            string            `json:"time"`
}

// Encodes the record as a single newline-terminated JSON line.
//
// HTML characters are left unescaped so chat text stays readable.
func (r Record) MarshalLine() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(r); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Parses one log line.
func ParseLine(line []byte) (Record, error) {
	var r Record
	err := json.Unmarshal(line, &r)
	return r, err
}

// Returns the record time, or the zero time if it cannot be parsed.
func (r Record) Timestamp() time.Time {
	t, err := time.Parse(TimeLayout, r.Time)
	if err != nil {
		return time.Time{}
	}
	return t
}
