package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDailyRefresherNextRun(t *testing.T) {
	r := &DailyRefresher{hour: 3}

	before := time.Date(2026, 5, 10, 1, 30, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 5, 10, 3, 0, 0, 0, time.UTC), r.nextRun(before))

	exactly := time.Date(2026, 5, 10, 3, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 5, 11, 3, 0, 0, 0, time.UTC), r.nextRun(exactly))

	after := time.Date(2026, 12, 31, 22, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2027, 1, 1, 3, 0, 0, 0, time.UTC), r.nextRun(after))
}
