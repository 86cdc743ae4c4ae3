package safe_close

import (
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSafeCloseWaitsForWorkers(t *testing.T) {
	sc := NewSafeClose()
	var stopped atomic.Int32

	for i := 0; i < 3; i++ {
		sc.Attach(func(done func(), closeSignal <-chan struct{}) {
			defer done()
			<-closeSignal
			stopped.Add(1)
		})
	}

	boom := errors.New("boom")
	sc.SendCloseSignal(boom)
	sc.SendCloseSignal(errors.New("second"))

	assert.ErrorIs(t, sc.WaitClosed(), boom)
	assert.Equal(t, int32(3), stopped.Load())
}

func TestSafeCloseNilError(t *testing.T) {
	sc := NewSafeClose()
	sc.SendCloseSignal(nil)

	assert.NoError(t, sc.WaitClosed())
	select {
	case <-sc.CloseSignal():
	default:
		t.Fatal("close signal should be closed")
	}
}
