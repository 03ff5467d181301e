package search

import "errors"

var ErrUnknownQuery = errors.New("unknown query strategy")
