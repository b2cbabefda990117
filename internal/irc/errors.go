package irc

import "github.com/pkg/errors"

var (
	ErrDial         = errors.New("irc dial failed")
	ErrDisconnected = errors.New("irc connection closed by server")
	ErrClosed       = errors.New("irc client closed")
	ErrReconnect    = errors.New("server requested reconnect")
)
