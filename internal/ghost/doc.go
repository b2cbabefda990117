// Package ghost is the chat logging daemon.
//
// A [Ghost] consumes the messages of an IRC session and appends the chat
// and moderation events of every configured channel to that channel's log:
//
//	PRIVMSG     chat messages, with the sender's nickname
//	CLEARCHAT   bans, timeouts and full chat clears
//	CLEARMSG    deletion of a single message
//	ROOMSTATE   room mode changes (slow mode, followers-only, ...)
//	USERNOTICE  subscriptions, raids and similar announcements
//
// Other traffic is only logged to the process log. All work happens on a
// single goroutine ([Ghost.Run]), so a configuration reload never
// interleaves with writes.
//
// [RunDaemon] wires a Ghost together with its IRC session, statistics
// store, control socket, SIGHUP handler and config file watcher.
package ghost
