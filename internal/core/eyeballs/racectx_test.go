package eyeballs

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// closeRecorder 记录关闭的描述符，检测重复关闭
type closeRecorder struct {
	t      *testing.T
	closed map[int]int
	err    error
}

func newCloseRecorder(t *testing.T) *closeRecorder {
	return &closeRecorder{t: t, closed: make(map[int]int)}
}

func (c *closeRecorder) Close(fd int) error {
	c.closed[fd]++
	if c.closed[fd] > 1 {
		c.t.Errorf("fd %d closed %d times", fd, c.closed[fd])
	}
	return c.err
}

func TestRaceContext_New(t *testing.T) {
	rc := NewRaceContext(nil)
	assert.Equal(t, 0, rc.Len())
	assert.Equal(t, MinCapacity, rc.Cap())
	assert.Equal(t, 0, rc.Live())

	_, ok := rc.Winner()
	assert.False(t, ok)
}

// TestRaceContext_Grow 测试容量翻倍增长且已有条目不变
func TestRaceContext_Grow(t *testing.T) {
	rc := NewRaceContext(nil)

	const n = 11
	caps := []int{}
	for i := 0; i < n; i++ {
		h, err := rc.Append(100+i, i, 0x2|i<<8)
		require.NoError(t, err)
		assert.Equal(t, Handle(i), h)
		caps = append(caps, rc.Cap())
	}

	assert.Equal(t, []int{4, 4, 4, 4, 8, 8, 8, 8, 16, 16, 16}, caps)
	assert.Equal(t, n, rc.Len())
	assert.Equal(t, n, rc.Live())

	for i := 0; i < n; i++ {
		a, err := rc.At(Handle(i))
		require.NoError(t, err)
		assert.Equal(t, 100+i, a.FD)
		assert.Equal(t, i, a.Candidate)
		assert.Equal(t, 0x2|i<<8, a.OrigFlags)
		assert.Equal(t, StatusPending, a.Status)
	}
}

// TestRaceContext_Neutralize 测试中和保留槽位
func TestRaceContext_Neutralize(t *testing.T) {
	rc := NewRaceContext(nil)
	h0, _ := rc.Append(10, 0, 0)
	h1, _ := rc.Append(11, 1, 0)

	cause := errors.New("refused")
	require.NoError(t, rc.Neutralize(h0, cause))

	a, err := rc.At(h0)
	require.NoError(t, err)
	assert.Equal(t, StatusNeutralized, a.Status)
	assert.Equal(t, 10, a.FD)
	assert.Equal(t, cause, a.Err)
	assert.Equal(t, 1, rc.Live())
	assert.Equal(t, []Handle{h1}, rc.Pending())

	assert.ErrorIs(t, rc.Neutralize(h0, cause), ErrInvalidHandle)
	assert.ErrorIs(t, rc.Neutralize(Handle(7), cause), ErrInvalidHandle)
}

// TestRaceContext_Winner 测试胜者只能设置一次
func TestRaceContext_Winner(t *testing.T) {
	rc := NewRaceContext(nil)
	h0, _ := rc.Append(10, 0, 0)
	h1, _ := rc.Append(11, 1, 0)

	require.NoError(t, rc.SetWinner(h1))
	w, ok := rc.Winner()
	assert.True(t, ok)
	assert.Equal(t, h1, w)
	assert.Equal(t, 1, rc.Live())

	assert.ErrorIs(t, rc.SetWinner(h0), ErrWinnerAlreadySet)
	assert.ErrorIs(t, rc.SetWinner(InvalidHandle), ErrInvalidHandle)

	a, _ := rc.At(h1)
	assert.Equal(t, StatusReady, a.Status)
}

// TestRaceContext_Cancel 测试显式取消
func TestRaceContext_Cancel(t *testing.T) {
	rec := newCloseRecorder(t)
	rc := NewRaceContext(rec.Close)
	h0, _ := rc.Append(10, 0, 0)
	h1, _ := rc.Append(11, 1, 0)
	require.NoError(t, rc.SetWinner(h1))

	require.NoError(t, rc.Cancel(h0))
	assert.Equal(t, 1, rec.closed[10])
	assert.Equal(t, 0, rc.Live())

	// 重复取消不会重复关闭
	require.NoError(t, rc.Cancel(h0))
	assert.Equal(t, 1, rec.closed[10])

	assert.ErrorIs(t, rc.Cancel(h1), ErrCancelWinner)
	assert.Zero(t, rec.closed[11])

	a, _ := rc.At(h0)
	assert.Equal(t, StatusClosed, a.Status)
}

// TestRaceContext_TeardownKeepsWinner 测试销毁关闭 N-1 个描述符并保留胜者
func TestRaceContext_TeardownKeepsWinner(t *testing.T) {
	rec := newCloseRecorder(t)
	rc := NewRaceContext(rec.Close)

	const n, winner = 6, 3
	for i := 0; i < n; i++ {
		_, err := rc.Append(20+i, i, 0)
		require.NoError(t, err)
	}
	require.NoError(t, rc.Neutralize(Handle(1), errors.New("refused")))
	require.NoError(t, rc.Cancel(Handle(5)))
	require.NoError(t, rc.SetWinner(Handle(winner)))

	require.NoError(t, rc.Teardown())

	for i := 0; i < n; i++ {
		if i == winner {
			assert.Zero(t, rec.closed[20+i], "winner fd must stay open")
			continue
		}
		assert.Equal(t, 1, rec.closed[20+i], "fd %d", 20+i)
	}

	assert.Equal(t, 0, rc.Len())
	_, err := rc.Append(99, 0, 0)
	assert.ErrorIs(t, err, ErrContextDestroyed)
	_, err = rc.At(Handle(winner))
	assert.ErrorIs(t, err, ErrInvalidHandle)

	require.NoError(t, rc.Teardown())
	assert.Len(t, rec.closed, n-1)
}

// TestRaceContext_TeardownNoWinner 测试无胜者时全部关闭
func TestRaceContext_TeardownNoWinner(t *testing.T) {
	rec := newCloseRecorder(t)
	rc := NewRaceContext(rec.Close)
	for i := 0; i < 3; i++ {
		_, _ = rc.Append(30+i, i, 0)
	}
	require.NoError(t, rc.Teardown())
	assert.Len(t, rec.closed, 3)
}

// TestRaceContext_TeardownEmpty 测试空上下文销毁
func TestRaceContext_TeardownEmpty(t *testing.T) {
	rc := NewRaceContext(nil)
	assert.NoError(t, rc.Teardown())
	assert.NoError(t, rc.Teardown())
}

// TestRaceContext_TeardownAggregatesErrors 测试关闭错误聚合
func TestRaceContext_TeardownAggregatesErrors(t *testing.T) {
	rec := newCloseRecorder(t)
	rec.err = errors.New("ebadf")
	rc := NewRaceContext(rec.Close)
	_, _ = rc.Append(40, 0, 0)
	_, _ = rc.Append(41, 1, 0)

	err := rc.Teardown()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ebadf; ebadf")
	assert.Len(t, rec.closed, 2)
}

func TestAttemptStatus_String(t *testing.T) {
	assert.Equal(t, "pending", StatusPending.String())
	assert.Equal(t, "ready", StatusReady.String())
	assert.Equal(t, "neutralized", StatusNeutralized.String())
	assert.Equal(t, "closed", StatusClosed.String())
	assert.Equal(t, "status(9)", AttemptStatus(9).String())
}
