package storage

import "errors"

// ErrUnsupportedDriver indicates a driver other than pgx or sqlite.
var ErrUnsupportedDriver = errors.New("storage: unsupported driver")
