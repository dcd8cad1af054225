package consent

import "errors"

// ErrDeclined is returned when the operator does not accept the usage terms.
var ErrDeclined = errors.New("usage terms declined")
