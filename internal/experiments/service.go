// Package experiments ties stored experiments to the statistics engine: it
// imports datasets, computes reports from stored counts and keeps their history.
package experiments

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/emiliopalmerini/abtest/internal/domain"
	"github.com/emiliopalmerini/abtest/internal/ports"
	"github.com/emiliopalmerini/abtest/internal/stats"
)

var (
	ErrNotFound      = errors.New("experiment not found")
	ErrAlreadyExists = errors.New("experiment already exists")
	ErrNoReports     = errors.New("no saved reports")
	ErrNoSource      = errors.New("archived source not found")
)

// Service provides experiment business logic over the storage ports.
type Service struct {
	experiments ports.ExperimentRepository
	trials      ports.TrialRepository
	reports     ports.ReportRepository
	exporter    ports.MetricsExporter
	archive     ports.DatasetArchive
	logger      *slog.Logger
	now         func() time.Time
}

// NewService creates a service. A nil exporter disables metric export.
func NewService(
	er ports.ExperimentRepository,
	tr ports.TrialRepository,
	rr ports.ReportRepository,
	exporter ports.MetricsExporter,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		experiments: er,
		trials:      tr,
		reports:     rr,
		exporter:    exporter,
		logger:      logger,
		now:         time.Now,
	}
}

// WithArchive keeps a copy of every imported source file.
func (s *Service) WithArchive(archive ports.DatasetArchive) *Service {
	s.archive = archive
	return s
}

// CreateParams describes a new experiment. Empty labels fall back to ad/psa.
type CreateParams struct {
	Name           string
	Description    string
	Hypothesis     string
	TreatmentLabel string
	ControlLabel   string
}

func (s *Service) Create(ctx context.Context, p CreateParams) (*domain.Experiment, error) {
	if p.Name == "" {
		return nil, fmt.Errorf("experiment name is required")
	}
	existing, err := s.experiments.GetByName(ctx, p.Name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: %q", ErrAlreadyExists, p.Name)
	}

	exp := &domain.Experiment{
		ID:             uuid.NewString(),
		Name:           p.Name,
		TreatmentLabel: p.TreatmentLabel,
		ControlLabel:   p.ControlLabel,
		CreatedAt:      s.now().UTC(),
	}
	if exp.TreatmentLabel == "" {
		exp.TreatmentLabel = domain.DefaultTreatmentLabel
	}
	if exp.ControlLabel == "" {
		exp.ControlLabel = domain.DefaultControlLabel
	}
	if exp.TreatmentLabel == exp.ControlLabel {
		return nil, fmt.Errorf("treatment and control labels must differ, both are %q", exp.TreatmentLabel)
	}
	if p.Description != "" {
		exp.Description = &p.Description
	}
	if p.Hypothesis != "" {
		exp.Hypothesis = &p.Hypothesis
	}

	if err := s.experiments.Create(ctx, exp); err != nil {
		return nil, err
	}
	s.logger.Info("experiment created", "name", exp.Name, "id", exp.ID)
	return exp, nil
}

// Get returns the named experiment or ErrNotFound.
func (s *Service) Get(ctx context.Context, name string) (*domain.Experiment, error) {
	exp, err := s.experiments.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if exp == nil {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return exp, nil
}

func (s *Service) List(ctx context.Context) ([]*domain.Experiment, error) {
	return s.experiments.List(ctx)
}

// Summary is an experiment with the number of records stored for it.
type Summary struct {
	domain.Experiment `yaml:",inline"`
	Records           int64 `json:"records" yaml:"records"`
}

// Summaries lists every experiment with its stored record count.
func (s *Service) Summaries(ctx context.Context) ([]Summary, error) {
	exps, err := s.experiments.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Summary, 0, len(exps))
	for _, exp := range exps {
		n, err := s.trials.Count(ctx, exp.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to count records of %q: %w", exp.Name, err)
		}
		out = append(out, Summary{Experiment: *exp, Records: n})
	}
	return out, nil
}

func (s *Service) Delete(ctx context.Context, name string) error {
	exp, err := s.Get(ctx, name)
	if err != nil {
		return err
	}
	if err := s.experiments.Delete(ctx, exp.ID); err != nil {
		return err
	}
	if s.archive != nil {
		if err := s.archive.Delete(ctx, exp.ID); err != nil {
			s.logger.Warn("failed to delete archived datasets", "experiment", name, "error", err)
		}
	}
	s.logger.Info("experiment deleted", "name", name)
	return nil
}

// Import appends the dataset's records to the experiment.
func (s *Service) Import(ctx context.Context, name string, ds *domain.Dataset) (int64, error) {
	exp, err := s.Get(ctx, name)
	if err != nil {
		return 0, err
	}
	n, err := s.trials.InsertBatch(ctx, exp.ID, ds.Records)
	if err != nil {
		return 0, err
	}
	s.logger.Info("records imported", "experiment", name, "source", ds.Name, "records", n)
	return n, nil
}

// Dataset loads every stored record of the experiment. The dataset is named
// after the experiment.
func (s *Service) Dataset(ctx context.Context, name string) (*domain.Experiment, *domain.Dataset, error) {
	exp, err := s.Get(ctx, name)
	if err != nil {
		return nil, nil, err
	}
	records, err := s.trials.Records(ctx, exp.ID)
	if err != nil {
		return nil, nil, err
	}
	return exp, &domain.Dataset{Name: exp.Name, Records: records}, nil
}

// ArchiveSource stores a copy of an imported file. It returns an empty path
// when no archive is configured.
func (s *Service) ArchiveSource(ctx context.Context, name, path string) (string, error) {
	if s.archive == nil {
		return "", nil
	}
	exp, err := s.Get(ctx, name)
	if err != nil {
		return "", err
	}
	stored, err := s.archive.Store(ctx, exp.ID, path)
	if err != nil {
		return "", err
	}
	s.logger.Debug("dataset archived", "experiment", name, "path", stored)
	return stored, nil
}

// Sources lists the archived source files of an experiment, oldest first.
func (s *Service) Sources(ctx context.Context, name string) ([]string, error) {
	exp, err := s.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	if s.archive == nil {
		return nil, nil
	}
	return s.archive.List(ctx, exp.ID)
}

// OpenSource opens an archived source file of the experiment for reading. The
// source is matched by its stored path or by its file name.
func (s *Service) OpenSource(ctx context.Context, name, source string) (*domain.Experiment, io.ReadCloser, error) {
	exp, err := s.Get(ctx, name)
	if err != nil {
		return nil, nil, err
	}
	if s.archive == nil {
		return nil, nil, fmt.Errorf("%w: %q", ErrNoSource, source)
	}
	paths, err := s.archive.List(ctx, exp.ID)
	if err != nil {
		return nil, nil, err
	}
	for _, p := range paths {
		if p != source && filepath.Base(p) != source {
			continue
		}
		rc, err := s.archive.Open(ctx, p)
		if err != nil {
			return nil, nil, err
		}
		return exp, rc, nil
	}
	return nil, nil, fmt.Errorf("%w: %q", ErrNoSource, source)
}

// Report computes the bundle and decision from the stored per-arm counts.
// When save is set the run is appended to the history and exported.
func (s *Service) Report(ctx context.Context, name string, alpha float64, save bool) (*domain.ReportRun, error) {
	exp, err := s.Get(ctx, name)
	if err != nil {
		return nil, err
	}

	counts, err := s.trials.Counts(ctx, exp.ID)
	if err != nil {
		return nil, err
	}
	bundle, err := stats.FromCounts(counts.TreatmentConversions, counts.TreatmentTotal, counts.ControlConversions, counts.ControlTotal)
	if err != nil {
		return nil, fmt.Errorf("experiment %q: %w", name, err)
	}
	for _, w := range bundle.Warnings {
		s.logger.Warn("degenerate conversion rate", "experiment", name, "group", w.Group, "rate", w.Rate)
	}
	report, err := stats.NewReport(exp.Name, bundle, alpha)
	if err != nil {
		return nil, err
	}

	run := &domain.ReportRun{
		ID:           uuid.NewString(),
		ExperimentID: exp.ID,
		CreatedAt:    s.now().UTC(),
		Report:       *report,
	}
	if !save {
		return run, nil
	}

	if err := s.reports.Save(ctx, run); err != nil {
		return nil, err
	}
	if s.exporter != nil {
		if err := s.exporter.ExportReport(ctx, exp.Name, report); err != nil {
			s.logger.Warn("failed to export report metrics", "experiment", name, "error", err)
		}
	}
	s.logger.Debug("report saved", "experiment", name, "run", run.ID, "recommendation", report.Decision.Recommendation)
	return run, nil
}

// History lists saved runs, newest first.
func (s *Service) History(ctx context.Context, name string, limit int) ([]*domain.ReportRun, error) {
	exp, err := s.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	return s.reports.ListByExperiment(ctx, exp.ID, limit)
}

// Latest returns the most recent saved run or ErrNoReports.
func (s *Service) Latest(ctx context.Context, name string) (*domain.ReportRun, error) {
	exp, err := s.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	run, err := s.reports.Latest(ctx, exp.ID)
	if err != nil {
		return nil, err
	}
	if run == nil {
		return nil, fmt.Errorf("%w for %q", ErrNoReports, name)
	}
	return run, nil
}
