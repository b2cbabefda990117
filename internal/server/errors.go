package server

import "github.com/pkg/errors"

var (
	ErrServer  = errors.New("control server error")
	ErrRequest = errors.New("control request failed")
)
