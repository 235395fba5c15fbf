package main

import (
	"sync"
	"testing"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type orderLog struct {
	mu     sync.Mutex
	events []string
}

func (o *orderLog) add(event string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, event)
}

func (o *orderLog) Wait() {
	o.add("notifications drained")
}

func TestDrainWaitsForRunningJobBeforeNotifications(t *testing.T) {
	log := &orderLog{}
	started := make(chan struct{})

	c := cron.New(cron.WithSeconds())
	_, err := c.AddFunc("* * * * * *", func() {
		select {
		case <-started:
			return
		default:
			close(started)
		}
		time.Sleep(50 * time.Millisecond)
		log.add("job finished")
	})
	require.NoError(t, err)
	c.Start()

	select {
	case <-started:
	case <-time.After(3 * time.Second):
		t.Fatal("job never started")
	}
	drain(c, log)

	assert.Equal(t, []string{"job finished", "notifications drained"}, log.events)
}
