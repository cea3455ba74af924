package binding

import "errors"

var ErrNotFound = errors.New("binding not found")
