package renderer

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrSurfaceLost reports that the presentation surface was lost and must be
	// reconfigured before the next frame can be acquired. Recoverable: call
	// Resize with the last known dimensions and try again next frame.
	ErrSurfaceLost = errors.New("renderer: surface lost")

	// ErrSurfaceOutdated reports that the surface no longer matches the window,
	// typically mid-resize. The frame is skipped; the resize callback is
	// expected to reconfigure the surface before the next frame.
	ErrSurfaceOutdated = errors.New("renderer: surface outdated")

	// ErrSurfaceTimeout reports that acquiring the next surface texture timed
	// out. The frame is skipped; the next acquisition is expected to succeed.
	ErrSurfaceTimeout = errors.New("renderer: surface acquisition timed out")

	// ErrOutOfMemory reports that the GPU is out of memory. Fatal: the frame
	// loop must stop rather than retry.
	ErrOutOfMemory = errors.New("renderer: out of GPU memory")
)

// classifySurfaceError maps a surface acquisition failure onto the package
// sentinels so callers can branch with errors.Is. The WebGPU binding flattens
// the acquisition status enum into error text, so classification matches on
// the status name. Unrecognized errors pass through unchanged.
func classifySurfaceError(err error) error {
	if err == nil {
		return nil
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "out of memory") || strings.Contains(msg, "outofmemory"):
		return fmt.Errorf("%w: %v", ErrOutOfMemory, err)
	case strings.Contains(msg, "lost"):
		return fmt.Errorf("%w: %v", ErrSurfaceLost, err)
	case strings.Contains(msg, "outdated"):
		return fmt.Errorf("%w: %v", ErrSurfaceOutdated, err)
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "timed out"):
		return fmt.Errorf("%w: %v", ErrSurfaceTimeout, err)
	}
	return err
}
