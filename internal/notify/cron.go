package notify

import (
	"fmt"

	"github.com/robfig/cron/v3"
)

// CronRunner wraps the cron scheduler driving the daily reminder rescan.
type CronRunner struct {
	cron *cron.Cron
}

func NewCronRunner() *CronRunner {
	return &CronRunner{cron: cron.New(cron.WithSeconds())}
}

// ScheduleDaily registers a job at the given wall-clock time every day.
func (c *CronRunner) ScheduleDaily(hour, minute int, job func()) (cron.EntryID, error) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("invalid time %02d:%02d", hour, minute)
	}
	spec := fmt.Sprintf("0 %d %d * * *", minute, hour)
	return c.cron.AddFunc(spec, job)
}

func (c *CronRunner) Start() {
	c.cron.Start()
}

// Stop halts the scheduler and waits for running jobs to finish.
func (c *CronRunner) Stop() {
	ctx := c.cron.Stop()
	<-ctx.Done()
}
