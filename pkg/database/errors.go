package database

import "errors"

// ErrNotReady indicates the database could not be reached during startup.
var ErrNotReady = errors.New("database not ready")
