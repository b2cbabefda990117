package config

import "github.com/pkg/errors"

var (
	ErrConfig         = errors.New("invalid configuration")
	ErrInvalidChannel = errors.New("invalid channel name")
	ErrWatch          = errors.New("config watch failed")
)
