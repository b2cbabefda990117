package ghost

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/purpleghost/purple-ghost/internal/chatlog"
	"github.com/purpleghost/purple-ghost/internal/irc"
)

func parse(t *testing.T, line string) irc.Message {
	t.Helper()
	msg, err := irc.Parse(line)
	if err != nil {
		t.Fatalf("Parse(%q): %v", line, err)
	}
	return msg
}

func TestRecordFor(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		channel string
		want    chatlog.Record
	}{
		{
			name:    "privmsg",
			line:    "@color=#FF0000;mod=0 :viewer!viewer@viewer.tmi.twitch.tv PRIVMSG #Chan :hi all",
			channel: "#chan",
			want: chatlog.Record{
				Command: "PRIVMSG",
				Sender:  "viewer",
				Message: "hi all",
				Tags:    map[string]string{"color": "#FF0000", "mod": "0"},
			},
		},
		{
			name:    "privmsg without source",
			line:    "PRIVMSG #chan :who am i",
			channel: "#chan",
			want:    chatlog.Record{Command: "PRIVMSG", Sender: unknownSender, Message: "who am i", Tags: map[string]string{}},
		},
		{
			name:    "clearchat whole room",
			line:    "@room-id=1;tmi-sent-ts=2 :tmi.twitch.tv CLEARCHAT #chan",
			channel: "#chan",
			want: chatlog.Record{
				Command: "CLEARCHAT",
				Tags:    map[string]string{"room-id": "1", "tmi-sent-ts": "2"},
			},
		},
		{
			name:    "clearchat user",
			line:    "@ban-duration=600 :tmi.twitch.tv CLEARCHAT #chan :baduser",
			channel: "#chan",
			want: chatlog.Record{
				Command: "CLEARCHAT",
				User:    "baduser",
				Tags:    map[string]string{"ban-duration": "600"},
			},
		},
		{
			name:    "clearmsg",
			line:    "@login=baduser;target-msg-id=abc-123 :tmi.twitch.tv CLEARMSG #chan :deleted text",
			channel: "#chan",
			want: chatlog.Record{
				Command:         "CLEARMSG",
				Message:         "deleted text",
				TargetMessageID: "abc-123",
				Tags:            map[string]string{"login": "baduser", "target-msg-id": "abc-123"},
			},
		},
		{
			name:    "roomstate",
			line:    "@slow=10 :tmi.twitch.tv ROOMSTATE #chan",
			channel: "#chan",
			want:    chatlog.Record{Command: "ROOMSTATE", Tags: map[string]string{"slow": "10"}},
		},
		{
			name:    "usernotice with text",
			line:    "@msg-id=resub :tmi.twitch.tv USERNOTICE #chan :great stream",
			channel: "#chan",
			want: chatlog.Record{
				Command: "USERNOTICE",
				Message: "great stream",
				Tags:    map[string]string{"msg-id": "resub"},
			},
		},
		{
			name:    "usernotice without text",
			line:    "@msg-id=raid :tmi.twitch.tv USERNOTICE #chan",
			channel: "#chan",
			want:    chatlog.Record{Command: "USERNOTICE", Tags: map[string]string{"msg-id": "raid"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			channel, rec, err := recordFor(parse(t, tt.line))
			if err != nil {
				t.Fatal(err)
			}
			if channel != tt.channel {
				t.Fatalf("channel = %q, want %q", channel, tt.channel)
			}
			assertRecord(t, rec, tt.want)
		})
	}
}

func assertRecord(t *testing.T, got, want chatlog.Record) {
	t.Helper()

	if got.Command != want.Command || got.Sender != want.Sender || got.User != want.User ||
		got.Message != want.Message || got.TargetMessageID != want.TargetMessageID {
		t.Fatalf("record = %+v, want %+v", got, want)
	}
	if len(got.Tags) != len(want.Tags) {
		t.Fatalf("tags = %v, want %v", got.Tags, want.Tags)
	}
	for k, v := range want.Tags {
		if got.Tags[k] != v {
			t.Fatalf("tags[%q] = %q, want %q", k, got.Tags[k], v)
		}
	}
}

func TestRecordForErrors(t *testing.T) {
	tests := []struct {
		name string
		line string
		want error
	}{
		{name: "clearchat too many params", line: ":tmi.twitch.tv CLEARCHAT #chan user extra", want: ErrUnexpectedParams},
		{name: "clearchat no channel", line: ":tmi.twitch.tv CLEARCHAT", want: ErrUnexpectedParams},
		{name: "clearmsg without text", line: ":tmi.twitch.tv CLEARMSG #chan", want: ErrUnexpectedParams},
		{name: "privmsg without text", line: ":u!u@u PRIVMSG #chan", want: ErrUnexpectedParams},
		{name: "roomstate without channel", line: ":tmi.twitch.tv ROOMSTATE", want: ErrUnexpectedParams},
		{name: "join", line: ":u!u@u JOIN #chan", want: errUnhandled},
		{name: "numeric", line: ":tmi.twitch.tv 001 justinfan1 :Welcome, GLHF!", want: errUnhandled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := recordFor(parse(t, tt.line)); !errors.Is(err, tt.want) {
				t.Fatalf("recordFor error = %v, want %v", err, tt.want)
			}
		})
	}
}
