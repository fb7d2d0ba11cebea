package jobs

import (
	"sync"

	mapset "github.com/deckarep/golang-set/v2"
	cron "github.com/robfig/cron"
	"github.com/sirupsen/logrus"
)

type Job interface {
	// Schedule returns the cron expression the job runs on.
	Schedule() string
	Run()
}

// Runner schedules background jobs on a shared cron, skipping a tick when the
// previous run of the same job is still going.
type Runner struct {
	cron    *cron.Cron
	jobs    []Job
	running mapset.Set[Job]
	mu      sync.Mutex
}

func NewRunner(jobs ...Job) *Runner {
	return &Runner{
		cron:    cron.New(),
		jobs:    jobs,
		running: mapset.NewSet[Job](),
	}
}

func (r *Runner) Start() {
	for _, job := range r.jobs {
		err := r.cron.AddFunc(job.Schedule(), func() {
			r.mu.Lock()
			if r.running.Contains(job) {
				r.mu.Unlock()
				logrus.Warn("job is still running, skipping tick")
				return
			}
			r.running.Add(job)
			r.mu.Unlock()

			defer func() {
				r.mu.Lock()
				defer r.mu.Unlock()
				r.running.Remove(job)
			}()

			job.Run()
		})
		if err != nil {
			logrus.Errorf("failed to schedule job: %v", err)
			panic(err)
		}
	}

	r.cron.Start()
}

func (r *Runner) Stop() {
	logrus.Infof("stopping background jobs")
	r.cron.Stop()
}
