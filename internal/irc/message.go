package irc

import (
	"maps"
	"strings"

	"github.com/ergochat/irc-go/ircmsg"
)

// Twitch capabilities.
const (
	CapTags     = "twitch.tv/tags"     // IRCv3 tags on chat messages.
	CapCommands = "twitch.tv/commands" // CLEARCHAT, CLEARMSG, ROOMSTATE, USERNOTICE and friends.
)

// A parsed IRC line.
type Message = ircmsg.Message

// Builds a message with no tags and no source.
func NewMessage(command string, params ...string) Message {
	return ircmsg.MakeMessage(nil, "", command, params...)
}

// Parses a raw IRC line. Trailing CR/LF are ignored.
func Parse(line string) (Message, error) {
	return ircmsg.ParseLine(strings.TrimRight(line, "\r\n"))
}

// Returns a copy of the message tags. Tags without a value map to "".
func Tags(msg Message) map[string]string {
	tags := msg.AllTags()
	if tags == nil {
		return map[string]string{}
	}
	return maps.Clone(tags)
}

// Returns the i-th parameter, or "" if there is none.
func Param(msg Message, i int) string {
	if i < 0 || i >= len(msg.Params) {
		return ""
	}
	return msg.Params[i]
}
