package hide

import (
	"log/slog"

	"github.com/xqrs/vcontent/virtual"
)

// Capabilities lists the hiding mechanisms a host's elements support.
type Capabilities struct {
	Locking     bool
	Containment bool
	Color       bool
}

// Probe reports the capabilities of a sample element.
func Probe(sample any) Capabilities {
	var caps Capabilities
	if l, ok := sample.(Lockable); ok && l.DisplayLock() != nil {
		caps.Locking = true
	}
	_, caps.Containment = sample.(Containable)
	_, caps.Color = sample.(Colorable)
	return caps
}

// Select picks the hiding strategy once, from the configuration and the
// probed capabilities. It returns nil only when nothing is supported.
func Select(cfg virtual.Config, caps Capabilities, logger *slog.Logger) virtual.Hider {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.UseColorDebug && !cfg.UseLocking && caps.Color {
		logger.Info("hide: using debug colours")
		return NewColorDebugHider()
	}
	if cfg.UseLocking {
		if caps.Locking {
			return NewLockingHider(logger)
		}
		logger.Warn("hide: no display locking, disabling locking")
	}
	if caps.Containment {
		return NewContainmentHider()
	}
	if caps.Color {
		logger.Warn("hide: no containment either, falling back to debug colours")
		return NewColorDebugHider()
	}
	logger.Error("hide: elements support no hiding strategy")
	return nil
}
