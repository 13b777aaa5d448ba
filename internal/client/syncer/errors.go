package syncer

import "errors"

var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrOffline          = errors.New("remote store is offline")
)
