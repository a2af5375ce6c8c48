package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/felixgeelhaar/clinicflow/internal/scheduling/domain"
)

// BatchPatient is one patient of a batch. Empty Procedures fall back to the
// batch default.
type BatchPatient struct {
	PatientID  string
	Procedures []string
}

// BatchRequest asks for appointments of several patients in one run.
type BatchRequest struct {
	RunOptions
	Patients          []BatchPatient
	DefaultProcedures []string
}

// GenerateScheduleBatch schedules every patient against one shared RNG,
// ledger and availability cache, then validates the combined result once.
// Any error aborts the whole batch.
func (e *AssignmentEngine) GenerateScheduleBatch(ctx context.Context, req BatchRequest) ([]domain.AppointmentRecord, error) {
	if len(req.Patients) == 0 {
		return nil, fmt.Errorf("%w: batch has no patients", domain.ErrConfiguration)
	}
	plan, err := e.plan(req.RunOptions)
	if err != nil {
		return nil, err
	}

	run := e.NewRun(req.Seed)
	var all []domain.AppointmentRecord
	for _, p := range req.Patients {
		raw := p.Procedures
		if len(raw) == 0 {
			raw = req.DefaultProcedures
		}
		if len(raw) == 0 {
			return nil, fmt.Errorf("%w: procedures are required for patient %s", domain.ErrConfiguration, p.PatientID)
		}
		procs, err := e.sc.Catalog().NormalizeProcedures(raw)
		if err != nil {
			return nil, fmt.Errorf("patient %s: %w", p.PatientID, err)
		}
		records, err := e.schedulePatient(ctx, run, plan, p.PatientID, procs)
		if err != nil {
			return nil, fmt.Errorf("patient %s: %w", p.PatientID, err)
		}
		all = append(all, records...)
	}

	e.logger.Info("batch scheduled",
		"patients", len(req.Patients),
		"records", len(all),
		"availability_lookups", run.oracle.CacheSize(),
	)
	return e.finish(all)
}

// ParseBatchLines reads batch entries written as "patient_id;procedures".
// Procedures are optional. Blank lines and lines starting with # are skipped.
func ParseBatchLines(catalog *domain.Catalog, lines []string) ([]BatchPatient, error) {
	var patients []BatchPatient
	for n, line := range lines {
		raw := strings.TrimSpace(line)
		if raw == "" || strings.HasPrefix(raw, "#") {
			continue
		}
		id, procs, _ := strings.Cut(raw, ";")
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		p := BatchPatient{PatientID: id}
		if procs = strings.TrimSpace(strings.Trim(strings.TrimSpace(procs), ";")); procs != "" {
			list, err := catalog.ParseProcedures(procs)
			if err != nil {
				return nil, fmt.Errorf("batch line %d: %w", n+1, err)
			}
			p.Procedures = list
		}
		patients = append(patients, p)
	}
	return patients, nil
}
