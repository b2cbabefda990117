// Package config loads and watches the daemon configuration.
//
// The configuration is a YAML document naming the channels to log, the
// directory the per-channel log files are written to, and the IRC endpoint:
//
//	channels:
//	  - some_streamer
//	  - another
//	log_path: logs
//	server: irc.chat.twitch.tv:6697
//	nickname: justinfan12345
//	tls: true
//	reconnect:
//	  initial_interval: 1s
//	  max_interval: 2m
//
// Only channels and log_path are required in practice; everything else has
// a default. A server without a port gets 6697 with TLS and 6667 without.
// Channel names are normalized to the IRC form ("#" followed by
// the lowercase name) when the file is loaded, so the rest of the daemon
// never sees the raw spelling.
//
// A [Watcher] reports changes to the file so the daemon can reload without
// a SIGHUP.
package config
