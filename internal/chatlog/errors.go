package chatlog

import "github.com/pkg/errors"

var (
	ErrNoLogFile = errors.New("no log file opened for channel")
	ErrLogFile   = errors.New("log file operation failed")
)
