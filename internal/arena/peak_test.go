package arena

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPeakTrackerAverageEmpty(t *testing.T) {
	var p peakTracker
	assert.EqualValues(t, 0, p.average())
}

func TestPeakTrackerAverageSimple(t *testing.T) {
	var p peakTracker
	p.record(100)
	p.record(200)
	p.record(300)
	assert.EqualValues(t, 200, p.average())
}

func TestPeakTrackerEvictsOldestBeyondWindow(t *testing.T) {
	var p peakTracker
	for i := 0; i < PeakHistoryLength; i++ {
		p.record(10)
	}
	assert.EqualValues(t, 10, p.average())

	// one huge outlier shouldn't dominate forever: once it ages out of
	// the window the average returns to the steady-state value
	p.record(1_000_000)
	assert.Greater(t, p.average(), uint32(10))

	for i := 0; i < PeakHistoryLength; i++ {
		p.record(10)
	}
	assert.EqualValues(t, 10, p.average())
}
