// Package draft holds the in-progress booking a patient builds step by step
// before confirming it into an appointment.
package draft

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/wolfman30/therapy-booking/internal/catalog"
	"github.com/wolfman30/therapy-booking/internal/persistence"
	"github.com/wolfman30/therapy-booking/internal/pricing"
	"github.com/wolfman30/therapy-booking/pkg/logging"
)

// ErrIncomplete is returned by Validate when the draft cannot be confirmed yet.
var ErrIncomplete = errors.New("draft: incomplete")

// Draft is the partially filled booking. Every field is optional until confirmation.
type Draft struct {
	Therapist    *catalog.Therapist `json:"therapist"`
	Package      *catalog.Package   `json:"package"`
	Date         *string            `json:"date"`
	Time         *string            `json:"time"`
	IsAssessment bool               `json:"isAssessment"`
}

// Empty reports whether nothing worth resuming has been chosen.
func (d Draft) Empty() bool {
	return d.Therapist == nil && d.Package == nil
}

// Validate reports what is still missing before confirmation. Therapist, date
// and time are always required; a package only for paid sessions.
func (d Draft) Validate() error {
	var missing []string
	if d.Therapist == nil {
		missing = append(missing, "therapist")
	}
	if !d.IsAssessment && d.Package == nil {
		missing = append(missing, "package")
	}
	if d.Date == nil || *d.Date == "" {
		missing = append(missing, "date")
	}
	if d.Time == nil || *d.Time == "" {
		missing = append(missing, "time")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %v", ErrIncomplete, missing)
	}
	return nil
}

// PackageSource resolves package keys to their canonical records.
type PackageSource interface {
	Package(key catalog.PackageKey) (catalog.Package, error)
}

// Service owns the single booking draft and writes it through the persistence port.
type Service struct {
	mu       sync.Mutex
	current  Draft
	port     persistence.Port
	packages PackageSource
	logger   *logging.Logger
}

// NewService resumes a persisted draft if one exists. An unreadable draft is
// deleted and the service starts empty.
func NewService(ctx context.Context, port persistence.Port, packages PackageSource, logger *logging.Logger) (*Service, error) {
	if port == nil {
		panic("draft: persistence port required")
	}
	if packages == nil {
		panic("draft: package source required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	s := &Service{port: port, packages: packages, logger: logger}

	raw, ok, err := port.Load(ctx, persistence.KeyBookingDraft)
	if err != nil {
		return nil, fmt.Errorf("draft: load: %w", err)
	}
	if !ok {
		return s, nil
	}
	var d Draft
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		logger.Warn("persisted booking draft unreadable, discarding", "error", err)
		if err := port.Delete(ctx, persistence.KeyBookingDraft); err != nil {
			return nil, fmt.Errorf("draft: discard: %w", err)
		}
		return s, nil
	}
	s.current = d
	logger.Info("booking draft resumed", "has_therapist", d.Therapist != nil, "has_package", d.Package != nil)
	return s, nil
}

// Current returns a copy of the draft.
func (s *Service) Current() Draft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneDraft(s.current)
}

// SetTherapist records the chosen therapist.
func (s *Service) SetTherapist(ctx context.Context, t catalog.Therapist) error {
	return s.mutate(ctx, func(d *Draft) error {
		d.Therapist = &t
		return nil
	})
}

// SetPackage selects a package by key, storing the canonical catalog record.
func (s *Service) SetPackage(ctx context.Context, key catalog.PackageKey) error {
	pkg, err := s.packages.Package(key)
	if err != nil {
		return err
	}
	return s.mutate(ctx, func(d *Draft) error {
		d.Package = &pkg
		return nil
	})
}

// SetDateTime records the chosen slot.
func (s *Service) SetDateTime(ctx context.Context, date, clock string) error {
	return s.mutate(ctx, func(d *Draft) error {
		d.Date = &date
		d.Time = &clock
		return nil
	})
}

// SetIsAssessment toggles the free assessment flag.
func (s *Service) SetIsAssessment(ctx context.Context, v bool) error {
	return s.mutate(ctx, func(d *Draft) error {
		d.IsAssessment = v
		return nil
	})
}

// Clear resets the draft and erases the persisted record.
func (s *Service) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.port.Delete(ctx, persistence.KeyBookingDraft); err != nil {
		return fmt.Errorf("draft: clear: %w", err)
	}
	s.current = Draft{}
	return nil
}

// Quote prices the current selection.
func (s *Service) Quote() pricing.Quote {
	d := s.Current()
	if d.Package == nil {
		return pricing.Quote{}
	}
	return pricing.Calculate(*d.Package, d.IsAssessment)
}

// TotalAmount is the pre-tax price.
func (s *Service) TotalAmount() int64 { return s.Quote().Subtotal }

// TaxAmount is GST on TotalAmount.
func (s *Service) TaxAmount() int64 { return s.Quote().Tax }

// FinalAmount is what the patient pays.
func (s *Service) FinalAmount() int64 { return s.Quote().Total }

func (s *Service) mutate(ctx context.Context, apply func(*Draft) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := cloneDraft(s.current)
	if err := apply(&next); err != nil {
		return err
	}
	if !next.Empty() {
		data, err := json.Marshal(next)
		if err != nil {
			return fmt.Errorf("draft: encode: %w", err)
		}
		if err := s.port.Save(ctx, persistence.KeyBookingDraft, string(data)); err != nil {
			return fmt.Errorf("draft: persist: %w", err)
		}
	}
	s.current = next
	return nil
}

func cloneDraft(d Draft) Draft {
	out := Draft{IsAssessment: d.IsAssessment}
	if d.Therapist != nil {
		t := *d.Therapist
		t.Specializations = append([]string(nil), t.Specializations...)
		t.Languages = append([]catalog.Language(nil), t.Languages...)
		out.Therapist = &t
	}
	if d.Package != nil {
		p := *d.Package
		out.Package = &p
	}
	if d.Date != nil {
		v := *d.Date
		out.Date = &v
	}
	if d.Time != nil {
		v := *d.Time
		out.Time = &v
	}
	return out
}
