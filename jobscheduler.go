package blocksci

// By swapping out the job scheduler, jobs can either be placed on NSQ
// for a worker pool to pick up, or run in a local goroutine inside the
// httpd process.  The latter makes single node deployments and certain
// testing easier.
type JobScheduler interface {
	ScheduleJob(job JobDescriptor) error
}
