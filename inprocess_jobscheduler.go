package blocksci

import (
	"sync"

	"github.com/couchbaselabs/logg"
)

// Run worker jobs in a goroutine in the httpd process (as opposed to using nsq)
type InProcessJobScheduler struct {
	Configuration Configuration
}

func NewInProcessJobScheduler(c Configuration) *InProcessJobScheduler {
	return &InProcessJobScheduler{
		Configuration: c,
	}
}

func (j InProcessJobScheduler) ScheduleJob(jobDescriptor JobDescriptor) error {

	// create job locally and fire off go-routine
	logg.LogTo("JOB_SCHEDULER", "In process scheduler called with: %+v", jobDescriptor)

	job, err := CreateJob(j.Configuration, jobDescriptor)
	if err != nil {
		return err
	}

	wg := &sync.WaitGroup{}
	wg.Add(1)
	go job.Run(wg)

	return nil
}
