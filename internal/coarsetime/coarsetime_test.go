package coarsetime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNow(t *testing.T) {
	before := time.Now().Add(-Resolution)
	now := Now()
	assert.False(t, now.Before(before.Add(-Resolution)), "coarse time too far behind")
	assert.False(t, now.After(time.Now().Add(time.Millisecond)), "coarse time ahead of wall clock")
}

func TestNowAdvances(t *testing.T) {
	first := Now()
	assert.Eventually(t, func() bool {
		return Now().After(first)
	}, time.Second, Resolution/2)
}

func TestDeadline(t *testing.T) {
	assert.True(t, Deadline(0).IsZero())
	assert.True(t, Deadline(-time.Second).IsZero())

	d := Deadline(time.Minute)
	assert.WithinDuration(t, time.Now().Add(time.Minute), d, 2*Resolution)
}

func BenchmarkNow(b *testing.B) {
	var t time.Time

	b.Run("time", func(b *testing.B) {
		for b.Loop() {
			t = time.Now()
		}
	})

	b.Run("coarsetime", func(b *testing.B) {
		for b.Loop() {
			t = Now()
		}
	})

	_ = t
}
