package ghost

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/purpleghost/purple-ghost/internal/chatlog"
	"github.com/purpleghost/purple-ghost/internal/irc"
)

// Sender recorded when a PRIVMSG has no usable source.
const unknownSender = "???"

// Twitch tag naming the message removed by a CLEARMSG.
const targetMessageTag = "target-msg-id"

// Returned by [recordFor] for commands that are not logged per channel.
var errUnhandled = errors.New("unhandled command")

// Builds the log record for msg and returns the channel it belongs to.
func recordFor(msg irc.Message) (string, chatlog.Record, error) {
	switch msg.Command {
	case "PRIVMSG":
		return privMsgRecord(msg)
	case "CLEARCHAT":
		return clearChatRecord(msg)
	case "CLEARMSG":
		return clearMsgRecord(msg)
	case "ROOMSTATE", "USERNOTICE":
		return noticeRecord(msg)
	}
	return "", chatlog.Record{}, errUnhandled
}

// PRIVMSG <channel> :<text>
func privMsgRecord(msg irc.Message) (string, chatlog.Record, error) {
	if len(msg.Params) != 2 {
		return "", chatlog.Record{}, unexpectedParams(msg)
	}

	sender := msg.Nick()
	if sender == "" {
		sender = unknownSender
	}

	return channelOf(msg), chatlog.Record{
		Command: msg.Command,
		Sender:  sender,
		Message: msg.Params[1],
		Tags:    irc.Tags(msg),
	}, nil
}

// CLEARCHAT <channel> [:<user>]
//
// Without a user the whole chat was cleared; with one, that user was banned
// or timed out.
func clearChatRecord(msg irc.Message) (string, chatlog.Record, error) {
	rec := chatlog.Record{Command: msg.Command, Tags: irc.Tags(msg)}

	switch len(msg.Params) {
	case 1:
	case 2:
		rec.User = msg.Params[1]
	default:
		return "", chatlog.Record{}, unexpectedParams(msg)
	}

	return channelOf(msg), rec, nil
}

// CLEARMSG <channel> :<deleted text>
func clearMsgRecord(msg irc.Message) (string, chatlog.Record, error) {
	if len(msg.Params) != 2 {
		return "", chatlog.Record{}, unexpectedParams(msg)
	}

	_, target := msg.GetTag(targetMessageTag)

	return channelOf(msg), chatlog.Record{
		Command:         msg.Command,
		Message:         msg.Params[1],
		TargetMessageID: target,
		Tags:            irc.Tags(msg),
	}, nil
}

// ROOMSTATE <channel>
// USERNOTICE <channel> [:<text>]
func noticeRecord(msg irc.Message) (string, chatlog.Record, error) {
	if len(msg.Params) < 1 || len(msg.Params) > 2 {
		return "", chatlog.Record{}, unexpectedParams(msg)
	}

	return channelOf(msg), chatlog.Record{
		Command: msg.Command,
		Message: irc.Param(msg, 1),
		Tags:    irc.Tags(msg),
	}, nil
}

// Channel targeted by msg, in the form used as log key.
func channelOf(msg irc.Message) string {
	return strings.ToLower(irc.Param(msg, 0))
}

func unexpectedParams(msg irc.Message) error {
	return errors.Wrapf(ErrUnexpectedParams, "%s: %q", msg.Command, strings.Join(msg.Params, " "))
}
