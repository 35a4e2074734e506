//go:build !tinygo && !cgo

package hal

import (
	"context"
	"errors"
)

func runWindow(context.Context, HostConfig, func(HAL)) (HostResult, error) {
	return HostResult{}, errors.New("window mode requires cgo (build/run with CGO_ENABLED=1)")
}
