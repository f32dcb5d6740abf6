package cron

import (
	"context"
	"fmt"
	"slices"

	"go.uber.org/multierr"
)

// Job is one reconciliation task run by the cron worker. Names label logs
// and metrics, so a registry refuses duplicates.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

type Registry struct {
	jobs []Job
}

// NewRegistry registers jobs in order, skipping nils. Every duplicate name is
// reported in the returned error; the registry keeps the first of each.
func NewRegistry(jobs ...Job) (*Registry, error) {
	registry := &Registry{}
	var err error
	for _, job := range jobs {
		err = multierr.Append(err, registry.Register(job))
	}
	return registry, err
}

func (r *Registry) Register(job Job) error {
	if job == nil {
		return nil
	}
	name := job.Name()
	if slices.ContainsFunc(r.jobs, func(existing Job) bool { return existing.Name() == name }) {
		return fmt.Errorf("cron job %q already registered", name)
	}
	r.jobs = append(r.jobs, job)
	return nil
}

// Jobs returns the jobs in registration order. The slice is a copy.
func (r *Registry) Jobs() []Job {
	return slices.Clone(r.jobs)
}
