package sandcore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultLogger_DebugGating(t *testing.T) {
	l := NewDefaultLogger("test", false)
	assert.False(t, l.DebugEnabled())

	l.SetDebug(true)
	assert.True(t, l.DebugEnabled())

	assert.NotPanics(t, func() {
		l.Debugf("debug %d", 1)
		l.Infof("info %d", 2)
		l.Warnf("warn %d", 3)
		l.Errorf("error %d", 4)
	})
}

func TestNopLogger_NeverPanics(t *testing.T) {
	l := NewNopLogger()
	assert.False(t, l.DebugEnabled())
	assert.NotPanics(t, func() {
		l.Debugf("x")
		l.Infof("x")
		l.Warnf("x")
		l.Errorf("x")
	})
}
