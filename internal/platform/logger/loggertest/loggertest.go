// Package loggertest da un logger.Logger que escribe en el output de testing.T.
package loggertest

import (
	"testing"

	"preop-drug-check/internal/platform/logger"

	"go.uber.org/zap/zaptest"
)

func New(t testing.TB) logger.Logger {
	return logger.NewZap(zaptest.NewLogger(t))
}
