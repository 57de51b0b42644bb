// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name      string
		verbose   bool
		wantDebug bool
		wantInfo  bool
	}{
		{name: "default logs warnings only", verbose: false},
		{name: "verbose logs debug", verbose: true, wantDebug: true, wantInfo: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.verbose)
			require.NoError(t, err)

			core := logger.Core()
			assert.Equal(t, tt.wantDebug, core.Enabled(zapcore.DebugLevel))
			assert.Equal(t, tt.wantInfo, core.Enabled(zapcore.InfoLevel))
			assert.True(t, core.Enabled(zapcore.WarnLevel))
		})
	}
}
