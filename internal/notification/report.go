package notification

import (
	"context"
	"log"

	"golang.org/x/sync/errgroup"
)

// Delivery is the outcome of one email in a flow.
type Delivery struct {
	Name    string `json:"name"`
	Primary bool   `json:"primary"`
	Sent    bool   `json:"sent"`
	Error   string `json:"error,omitempty"`

	err error
}

// Report collects the deliveries of a flow. A failed primary delivery fails
// the flow; a failed secondary one only degrades it.
type Report struct {
	Deliveries []Delivery `json:"deliveries"`
}

func (r *Report) add(d Delivery) {
	r.Deliveries = append(r.Deliveries, d)
}

// Err returns the first failed primary delivery's error.
func (r *Report) Err() error {
	for _, d := range r.Deliveries {
		if d.Primary && !d.Sent {
			return d.err
		}
	}
	return nil
}

func (r *Report) Degraded() bool {
	for _, d := range r.Deliveries {
		if !d.Primary && !d.Sent {
			return true
		}
	}
	return false
}

// Step is one email of a flow.
type Step struct {
	Name    string
	Primary bool
	Send    func(ctx context.Context) error
}

func run(ctx context.Context, s Step) Delivery {
	d := Delivery{Name: s.Name, Primary: s.Primary}
	if err := s.Send(ctx); err != nil {
		d.err = err
		d.Error = err.Error()
		if s.Primary {
			log.Printf("[Notification] %s failed: %v", s.Name, err)
		} else {
			log.Printf("[Notification] %s failed (ignored): %v", s.Name, err)
		}
		return d
	}
	d.Sent = true
	return d
}

// Sequential runs steps in order and stops after the first failed primary
// step. Steps after it are not attempted.
func Sequential(ctx context.Context, steps ...Step) *Report {
	report := &Report{}
	for _, s := range steps {
		d := run(ctx, s)
		report.add(d)
		if s.Primary && !d.Sent {
			break
		}
	}
	return report
}

// Parallel runs all steps concurrently and waits for every one of them. A
// failing step never cancels the others.
func Parallel(ctx context.Context, steps ...Step) *Report {
	results := make([]Delivery, len(steps))

	var g errgroup.Group
	for i, s := range steps {
		i, s := i, s
		g.Go(func() error {
			results[i] = run(ctx, s)
			return nil
		})
	}
	_ = g.Wait()

	return &Report{Deliveries: results}
}
