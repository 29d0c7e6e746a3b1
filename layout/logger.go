package layout

import (
	"sync"

	"go.uber.org/zap"
)

var (
	pkgLogger  *zap.Logger
	loggerOnce sync.Once
)

// Logger returns the package's logger instance.
// It uses a no-op logger by default.
func Logger() *zap.Logger {
	loggerOnce.Do(func() {
		if pkgLogger == nil {
			pkgLogger = zap.NewNop()
		}
	})
	return pkgLogger
}

// SetLogger configures the package's logger.
// This must be called before any layout operations.
func SetLogger(l *zap.Logger) {
	pkgLogger = l
}
