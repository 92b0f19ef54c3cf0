package meshloop

import (
	"bytes"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultLogger_Levels(t *testing.T) {
	var out, errOut bytes.Buffer
	l := NewDefaultLogger("meshrt", false)
	l.out = log.New(&out, "", 0)
	l.err = log.New(&errOut, "", 0)

	l.Debugf("hidden %d", 1)
	l.Infof("frame %d", 2)
	l.Warnf("skipped")
	assert.Equal(t, "[meshrt] INFO: frame 2\n", out.String())
	assert.Equal(t, "[meshrt] WARN: skipped\n", errOut.String())

	out.Reset()
	l.SetDebug(true)
	assert.True(t, l.DebugEnabled())
	l.Debugf("shown %d", 3)
	assert.Equal(t, "[meshrt] DEBUG: shown 3\n", out.String())
}

func TestDefaultLogger_NoPrefix(t *testing.T) {
	var errOut bytes.Buffer
	l := NewDefaultLogger("", false)
	l.err = log.New(&errOut, "", 0)

	l.Errorf("no device")
	assert.Equal(t, "ERROR: no device\n", errOut.String())
}

func TestOrNop(t *testing.T) {
	nop := OrNop(nil)
	assert.NotNil(t, nop)
	assert.False(t, nop.DebugEnabled())
	nop.SetDebug(true)
	assert.False(t, nop.DebugEnabled())

	l := NewDefaultLogger("x", false)
	assert.Same(t, l, OrNop(l))
}
