package field

import "errors"

// #region errors

// ErrConfig reports invalid construction parameters (non-positive
// frequency, negative depth, self-entanglement, bad fractal shape).
var ErrConfig = errors.New("invalid configuration")

// ErrState reports an illegal state transition, such as entangling an
// oscillator that has already been observed.
var ErrState = errors.New("illegal state transition")

// #endregion errors
