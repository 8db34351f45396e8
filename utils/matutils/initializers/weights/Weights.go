// Package weights defines interfaces for weight initializations. In
// this module, weights are the initial successor features of newly
// seen states.
package weights

import "gonum.org/v1/gonum/mat"

// Initializer initializes weights
type Initializer interface {
	Initialize(weights *mat.Dense) // initializes weights
}
