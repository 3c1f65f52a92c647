package transport

import "errors"

var (
	// ErrInvalidProxyAddress is returned when the proxy address is not
	// "host:port" or "socks5://host:port".
	ErrInvalidProxyAddress = errors.New("invalid proxy address: expected host:port or socks5://host:port")

	// ErrClosed is returned by Fetch after Close.
	ErrClosed = errors.New("transport is closed")
)
