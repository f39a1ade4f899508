package sim

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestClockLockstep(t *testing.T) {
	var ticks []int
	c := NewClock(5, func(tick int) { ticks = append(ticks, tick) })
	parties := []*Party{c.Join(), c.Join(), c.Join()}

	steps := make([]int, len(parties))
	var wg sync.WaitGroup
	for i, p := range parties {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for p.Step() {
				steps[i]++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, []int{5, 5, 5}, steps)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, ticks)
	assert.Equal(t, 5, c.Tick())
}

func TestClockLeave(t *testing.T) {
	c := NewClock(10, nil)
	a, b := c.Join(), c.Join()

	done := make(chan int)
	go func() {
		n := 0
		for a.Step() {
			n++
		}
		done <- n
	}()
	require.True(t, b.Step())
	require.True(t, b.Step())
	b.Leave()
	b.Leave()
	assert.False(t, b.Step())

	assert.Equal(t, 10, <-done)
}

func TestClockStop(t *testing.T) {
	c := NewClock(100, nil)
	a := c.Join()
	c.Join() // never steps

	done := make(chan bool)
	go func() { done <- a.Step() }()
	c.Stop()
	c.Stop()
	assert.False(t, <-done)
	assert.Zero(t, c.Tick())
}

func TestEtherDelivery(t *testing.T) {
	e := NewEther(2)
	rootAngles := e.Radio("module_1_0", 1)
	sibling := e.Radio("module_1_1", 1)
	other := e.Radio("module_2_0", 2)
	tx := e.Emitter("module_1_1")

	require.NoError(t, tx.Send(1, "a"))
	assert.Zero(t, rootAngles.QueueLength(), "nothing arrives before the tick ends")
	e.Deliver()
	assert.Equal(t, 1, rootAngles.QueueLength())
	assert.Zero(t, sibling.QueueLength(), "a module does not hear itself")
	assert.Zero(t, other.QueueLength())

	for _, msg := range []string{"b", "c"} {
		require.NoError(t, tx.Send(1, msg))
	}
	e.Deliver()
	assert.Equal(t, 1, e.Dropped())
	assert.Equal(t, 3, e.Traffic(1))
	msg, ok := rootAngles.Next()
	require.True(t, ok)
	assert.Equal(t, "a", msg)
	msg, _ = rootAngles.Next()
	assert.Equal(t, "b", msg)
	_, ok = rootAngles.Next()
	assert.False(t, ok)

	rootAngles.Disable()
	require.NoError(t, tx.Send(1, "d"))
	e.Deliver()
	rootAngles.Enable()
	assert.Zero(t, rootAngles.QueueLength())
	assert.Equal(t, 1, rootAngles.Channel())
}

func TestBodyFollowsMotorTravel(t *testing.T) {
	b := NewBody(r3.Vec{X: 1}, math.Pi/2, 0.5)
	m1, m2 := NewMotors(2), NewMotors(2)
	b.Mount(m1)
	b.Mount(m2)

	b.Advance()
	assert.Equal(t, r3.Vec{X: 1}, b.Position())

	m1.SetAngle(0, 1)
	m2.SetAngle(1, -3) // clamped to -1
	b.Advance()
	p := b.Position()
	assert.InDelta(t, 1, p.X, 1e-12)
	assert.InDelta(t, 0.25, p.Z, 1e-12)

	// holding still does not move
	b.Advance()
	assert.Equal(t, p, b.Position())
}
