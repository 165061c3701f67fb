package service

import "errors"

var (
	// ErrNoCachedDataOffline is returned by the cache layer when the client
	// is offline and no cached entry exists for the requested key.
	ErrNoCachedDataOffline = errors.New("offline and no cached data available")

	// ErrInvalidOperation is returned by the sync engine when an enqueue
	// request carries an operation outside create/update/delete.
	ErrInvalidOperation = errors.New("invalid queue operation")

	// ErrEngineClosed is returned by sync engine entry points after Close.
	ErrEngineClosed = errors.New("sync engine is closed")
)
