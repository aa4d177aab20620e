//go:build !rp2040

package main

import "ledmatrix-go/drivers/matrix"

// Off-target the walk sticks to the default bit-banged column path.
func matrixOptions() []matrix.Option { return nil }
