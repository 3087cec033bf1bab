package signal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSlidingLimiter_BlocksOverLimit(t *testing.T) {
	rl := NewSlidingLimiter(2, time.Minute)

	assert.True(t, rl.Allow("sid"))
	assert.True(t, rl.Allow("sid"))
	assert.False(t, rl.Allow("sid"))

	// Other sessions have their own window.
	assert.True(t, rl.Allow("other"))
}

func TestSlidingLimiter_WindowSlides(t *testing.T) {
	rl := NewSlidingLimiter(1, 10*time.Millisecond)

	assert.True(t, rl.Allow("sid"))
	assert.False(t, rl.Allow("sid"))

	time.Sleep(15 * time.Millisecond)
	assert.True(t, rl.Allow("sid"))
}

func TestSlidingLimiter_Forget(t *testing.T) {
	rl := NewSlidingLimiter(1, time.Minute)

	assert.True(t, rl.Allow("sid"))
	assert.False(t, rl.Allow("sid"))

	rl.Forget("sid")
	assert.True(t, rl.Allow("sid"))
}
