//go:build !cgo

// Package glcore implements gpu.Backend on an OpenGL 4.1 core profile
// context through github.com/go-gl/gl. When cgo is disabled this stub is
// compiled instead, returning an error from New().
package glcore

import (
	"errors"

	"github.com/chazu/primmesh/pkg/gpu"
)

// New returns an error indicating OpenGL is not available.
// Build with CGO_ENABLED=1 to enable.
func New() (gpu.Backend, error) {
	return nil, errors.New("glcore not available: build with CGO_ENABLED=1")
}
