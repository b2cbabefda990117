package ghost

import "github.com/pkg/errors"

var (
	ErrReload           = errors.New("reload failed")
	ErrUnexpectedParams = errors.New("unexpected parameters")
	ErrStopped          = errors.New("daemon is not running")
	ErrSessionEnded     = errors.New("irc session ended")
)
