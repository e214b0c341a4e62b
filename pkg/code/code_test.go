package code

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 注册的 Code 对象全局共享，WithData/WithDetails 必须返回副本
func TestWithDataDoesNotMutateShared(t *testing.T) {
	out := Success.WithData("payload")

	require.NotSame(t, Success, out)
	assert.True(t, out.HaveData())
	assert.Equal(t, "payload", out.Data())

	// 全局对象保持干净
	assert.False(t, Success.HaveData())
	assert.Nil(t, Success.Data())
}

func TestWithDetailsChainKeepsData(t *testing.T) {
	out := ErrorInvalidParams.WithDetails("field: required").WithData(map[string]string{"field": "required"})

	assert.True(t, out.HaveDetails())
	assert.Equal(t, []string{"field: required"}, out.Details())
	assert.True(t, out.HaveData())

	assert.False(t, ErrorInvalidParams.HaveDetails())
	assert.False(t, ErrorInvalidParams.HaveData())
}

func TestWithDataConcurrent(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			want := fmt.Sprintf("data-%d", n)
			out := Success.WithData(want)
			assert.Equal(t, want, out.Data())
		}(i)
	}
	wg.Wait()

	assert.False(t, Success.HaveData())
}
