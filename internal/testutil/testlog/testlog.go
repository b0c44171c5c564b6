// Package testlog quiets structured logging during tests.
package testlog

import (
	"testing"

	"github.com/rs/zerolog"
)

func Start(t *testing.T) {
	t.Helper()
	zerolog.SetGlobalLevel(zerolog.WarnLevel)
}
