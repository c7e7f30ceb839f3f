package tasks

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Override tunes one worker's promotion timing without a rebuild. Pointer
// fields distinguish "not set" from an explicit zero.
type Override struct {
	DelaySeconds *int `yaml:"delay_seconds"`
	RetrySeconds *int `yaml:"retry_seconds"`
	Disabled     bool `yaml:"disabled"`
}

// Overrides is the optional operator-supplied worker tuning file:
//
//	workers:
//	  delete_db_table:
//	    retry_seconds: 600
//	  object_storage_ingestion:
//	    disabled: true
type Overrides struct {
	Workers map[string]Override `yaml:"workers"`
}

// LoadOverrides reads and parses the overrides file. An empty path yields
// empty overrides; a missing file is an error so a typo in the path does not
// silently run with defaults.
func LoadOverrides(path string) (Overrides, error) {
	if path == "" {
		return Overrides{}, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Overrides{}, fmt.Errorf("read worker overrides %q: %w", path, err)
	}
	var o Overrides
	if err := yaml.Unmarshal(raw, &o); err != nil {
		return Overrides{}, fmt.Errorf("parse worker overrides %q: %w", path, err)
	}
	for name, ov := range o.Workers {
		if ov.RetrySeconds != nil && *ov.RetrySeconds <= 0 {
			return Overrides{}, errors.Join(ErrInvalidRetrySeconds, fmt.Errorf("override for %q", name))
		}
		if ov.DelaySeconds != nil && *ov.DelaySeconds < 0 {
			return Overrides{}, errors.Join(ErrInvalidDelaySeconds, fmt.Errorf("override for %q", name))
		}
	}
	return o, nil
}

// Apply returns the worker list with overrides folded in: disabled workers
// are dropped, timing overrides wrap the original worker. Order is kept.
func (o Overrides) Apply(workers ...Worker) []Worker {
	if len(o.Workers) == 0 {
		return workers
	}
	out := make([]Worker, 0, len(workers))
	for _, w := range workers {
		ov, ok := o.Workers[w.QueueName()]
		if !ok {
			out = append(out, w)
			continue
		}
		if ov.Disabled {
			continue
		}
		ow := &overriddenWorker{Worker: w, delay: w.DelaySeconds(), retry: w.RetrySeconds()}
		if ov.DelaySeconds != nil {
			ow.delay = *ov.DelaySeconds
		}
		if ov.RetrySeconds != nil {
			ow.retry = *ov.RetrySeconds
		}
		out = append(out, ow)
	}
	return out
}

// ApplyPolicy folds the overrides into a timing policy snapshot. The queuer
// uses this form: it schedules promotions for every known queue name without
// being able to run any worker. Disabled workers lose their entry and fall
// back to the default pacing for unknown names.
func (o Overrides) ApplyPolicy(p Policy) Policy {
	if len(o.Workers) == 0 {
		return p
	}
	out := make(Policy, len(p))
	for name, timing := range p {
		ov, ok := o.Workers[name]
		if !ok {
			out[name] = timing
			continue
		}
		if ov.Disabled {
			continue
		}
		if ov.DelaySeconds != nil {
			timing.DelaySeconds = *ov.DelaySeconds
		}
		if ov.RetrySeconds != nil {
			timing.RetrySeconds = *ov.RetrySeconds
		}
		out[name] = timing
	}
	return out
}

type overriddenWorker struct {
	Worker
	delay int
	retry int
}

func (w *overriddenWorker) DelaySeconds() int { return w.delay }
func (w *overriddenWorker) RetrySeconds() int { return w.retry }
