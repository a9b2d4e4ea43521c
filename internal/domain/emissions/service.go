package emissions

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"carbonyx/internal/core/apperror"
	"carbonyx/pkg/logger"
)

var tracer = otel.Tracer("carbonyx/emissions")

// DefaultYears is the length of the main reporting window.
const DefaultYears = 5

// Recorder receives report build observations.
type Recorder interface {
	ObserveReport(duration time.Duration, err error)
}

type nopRecorder struct{}

func (nopRecorder) ObserveReport(time.Duration, error) {}

// Service builds emission reports for an organization.
type Service struct {
	repo     Repository
	palette  func() Palette
	now      func() time.Time
	timeout  time.Duration
	years    int
	recorder Recorder
}

// Option configures a Service.
type Option func(*Service)

// WithPalette overrides the chart palette.
func WithPalette(p Palette) Option {
	return func(s *Service) { s.palette = func() Palette { return p } }
}

// WithPaletteSource reads the palette on every build, for reloadable config.
func WithPaletteSource(fn func() Palette) Option {
	return func(s *Service) {
		if fn != nil {
			s.palette = fn
		}
	}
}

// WithClock overrides the reference clock.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithTimeout bounds a whole report build. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) { s.timeout = d }
}

// WithYears sets the number of years in the main window.
func WithYears(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.years = n
		}
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(s *Service) {
		if r != nil {
			s.recorder = r
		}
	}
}

// NewService creates a new emissions service.
func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{
		repo:     repo,
		palette:  DefaultPalette,
		now:      time.Now,
		years:    DefaultYears,
		recorder: nopRecorder{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Windows returns the three report windows for the current clock.
func (s *Service) Windows() (main, prevMonth, prevYear Range) {
	now := s.now()
	return LastNYearsRange(now, s.years), PreviousMonthRange(now), PreviousYearRange(now)
}

// BuildReport queries the main, previous-month and previous-year windows
// concurrently and assembles the chart output. Any failed read fails the report.
func (s *Service) BuildReport(ctx context.Context, orgID string) (out *DataOutput, err error) {
	orgID = strings.TrimSpace(orgID)
	if orgID == "" {
		return nil, apperror.NewValidation("organization is required").WithDetail("field", "org")
	}

	start := time.Now()
	ctx, span := tracer.Start(ctx, "emissions.BuildReport")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		s.recorder.ObserveReport(time.Since(start), err)
	}()
	span.SetAttributes(attribute.String("org.id", orgID))

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	mainRange, prevMonthRange, prevYearRange := s.Windows()
	w := windows{mainRange: mainRange, prevMonthRange: prevMonthRange, prevYearRange: prevYearRange}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		w.main, err = QueryEmissions(gctx, s.repo, orgID, mainRange)
		return wrapWindow("main", err)
	})
	g.Go(func() (err error) {
		w.prevMonth, err = QueryEmissions(gctx, s.repo, orgID, prevMonthRange)
		return wrapWindow("previous month", err)
	})
	g.Go(func() (err error) {
		w.prevYear, err = QueryEmissions(gctx, s.repo, orgID, prevYearRange)
		return wrapWindow("previous year", err)
	})

	if err := g.Wait(); err != nil {
		logger.Error(ctx, "report build failed", "org_id", orgID, "error", err)
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, apperror.NewTimeout("report build", err)
		}
		return nil, apperror.NewInternal(fmt.Errorf("build report: %w", err))
	}

	out = assembleReport(w, s.palette())
	if drift := windowDrift(w, out); len(drift) > 0 {
		logger.Warn(ctx, "previous window totals disagree with main window", "org_id", orgID, "scalars", drift)
	}
	logger.Debug(ctx, "report built",
		"org_id", orgID,
		"months", len(out.Monthly.Labels),
		"years", len(out.Yearly.Labels),
		"duration", time.Since(start))
	return out, nil
}

func wrapWindow(name string, err error) error {
	if err != nil {
		return fmt.Errorf("%s window: %w", name, err)
	}
	return nil
}
