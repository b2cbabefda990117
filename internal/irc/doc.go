// Package irc is a small IRC client tailored to Twitch chat.
//
// A [Client] wraps one connection: it writes commands, answers server PINGs
// and parses every inbound line into a [Message] delivered on a channel.
// Parsing, including IRCv3 message tags, is done by ergochat's ircmsg.
//
// A [Session] keeps a client connected. When the connection drops, or the
// server asks clients to reconnect, it dials again with exponential backoff,
// negotiates capabilities, registers and re-joins the channels it tracks.
//
// Example usage:
//
//	s := irc.NewSession(irc.SessionConfig{
//	    Options: irc.Options{Address: "irc.chat.twitch.tv:6697", TLS: true, Nickname: "justinfan12345"},
//	    Caps:    []string{irc.CapTags, irc.CapCommands},
//	}, []string{"#forsen"})
//
//	go s.Run(ctx)
//
//	for msg := range s.Messages() {
//	    fmt.Println(msg.Command, msg.Params)
//	}
package irc
