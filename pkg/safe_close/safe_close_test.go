package safe_close

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSafeClose_WaitForAllComponents(t *testing.T) {
	sc := NewSafeClose()

	finished := make(chan int, 2)
	for i := 0; i < 2; i++ {
		i := i
		sc.Attach(func(done func(), closeSignal <-chan struct{}) {
			defer done()
			<-closeSignal
			finished <- i
		})
	}

	sc.SendCloseSignal(nil)
	assert.Nil(t, sc.WaitClosed())
	assert.Len(t, finished, 2)
}

func TestSafeClose_FirstErrorWins(t *testing.T) {
	sc := NewSafeClose()

	sc.Attach(func(done func(), closeSignal <-chan struct{}) {
		defer done()
		<-closeSignal
	})

	first := errors.New("listen error")
	sc.SendCloseSignal(first)
	// 第二次关闭信号应被忽略
	sc.SendCloseSignal(errors.New("late error"))

	assert.Equal(t, first, sc.WaitClosed())
}

func TestSafeClose_DoneIsIdempotent(t *testing.T) {
	sc := NewSafeClose()

	sc.Attach(func(done func(), closeSignal <-chan struct{}) {
		<-closeSignal
		done()
		done() // 重复调用不应 panic 或提前返回
	})

	sc.SendCloseSignal(nil)

	waited := make(chan struct{})
	go func() {
		_ = sc.WaitClosed()
		close(waited)
	}()

	select {
	case <-waited:
	case <-time.After(time.Second):
		t.Fatal("WaitClosed did not return")
	}
}
