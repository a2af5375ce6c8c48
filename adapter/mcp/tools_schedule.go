package mcp

import (
	"bytes"
	"context"
	"strings"

	"github.com/felixgeelhaar/mcp-go"

	"github.com/felixgeelhaar/clinicflow/internal/scheduling/application/commands"
	"github.com/felixgeelhaar/clinicflow/internal/scheduling/application/services"
	"github.com/felixgeelhaar/clinicflow/internal/scheduling/infrastructure/export"
)

type scheduleGenerateInput struct {
	PatientID   string   `json:"patient_id" jsonschema:"required"`
	Procedures  []string `json:"procedures" jsonschema:"required"`
	Start       string   `json:"start" jsonschema:"required"`
	End         string   `json:"end,omitempty"`
	Slots       string   `json:"slots,omitempty"`
	SlotKind    string   `json:"slot_kind,omitempty"`
	Seed        uint64   `json:"seed,omitempty"`
	UseAllSlots bool     `json:"use_all_slots,omitempty"`
}

func (in scheduleGenerateInput) run() runInput {
	return runInput{Start: in.Start, End: in.End, Slots: in.Slots, SlotKind: in.SlotKind, Seed: in.Seed, UseAllSlots: in.UseAllSlots}
}

type scheduleBatchInput struct {
	Patients    []string `json:"patients" jsonschema:"required"`
	Procedures  []string `json:"procedures" jsonschema:"required"`
	Start       string   `json:"start" jsonschema:"required"`
	End         string   `json:"end,omitempty"`
	Slots       string   `json:"slots,omitempty"`
	SlotKind    string   `json:"slot_kind,omitempty"`
	Seed        uint64   `json:"seed,omitempty"`
	UseAllSlots bool     `json:"use_all_slots,omitempty"`
}

func (in scheduleBatchInput) run() runInput {
	return runInput{Start: in.Start, End: in.End, Slots: in.Slots, SlotKind: in.SlotKind, Seed: in.Seed, UseAllSlots: in.UseAllSlots}
}

type scheduleValidateInput struct {
	CSV           string `json:"csv" jsonschema:"required"`
	IncludeManual bool   `json:"include_manual,omitempty"`
}

// scheduleOutput carries a generated dataset in both export formats.
type scheduleOutput struct {
	RunID   string              `json:"run_id"`
	Records []export.JSONRecord `json:"records"`
	CSV     string              `json:"csv"`
}

type conflictOutput struct {
	Staff   string `json:"staff"`
	Message string `json:"message"`
}

type validateOutput struct {
	Valid     bool             `json:"valid"`
	Records   int              `json:"records"`
	Conflicts []conflictOutput `json:"conflicts"`
}

func registerScheduleTools(srv *mcp.Server, t *tools) {
	srv.Tool("schedule.generate").
		Description("Generate the appointments of one patient between two dates").
		Handler(t.generateSchedule)

	srv.Tool("schedule.batch").
		Description("Generate the appointments of several patients in one run without double-booking staff").
		Handler(t.generateBatch)

	srv.Tool("schedule.validate").
		Description("Check a schedule CSV for group A staff booked twice at the same time").
		Handler(t.validateSchedule)
}

func (t *tools) generateSchedule(ctx context.Context, input scheduleGenerateInput) (*scheduleOutput, error) {
	if t.app.GenerateHandler == nil {
		return nil, errNoStore
	}
	opts, err := input.run().options(t.app)
	if err != nil {
		return nil, err
	}
	res, err := t.app.GenerateHandler.Handle(ctx, commands.GenerateScheduleCommand{
		PatientID:  strings.TrimSpace(input.PatientID),
		Procedures: input.Procedures,
		Options:    opts,
	})
	if err != nil {
		return nil, err
	}
	return newScheduleOutput(res)
}

func (t *tools) generateBatch(ctx context.Context, input scheduleBatchInput) (*scheduleOutput, error) {
	if t.app.GenerateHandler == nil {
		return nil, errNoStore
	}
	opts, err := input.run().options(t.app)
	if err != nil {
		return nil, err
	}
	patients := make([]services.BatchPatient, 0, len(input.Patients))
	for _, id := range input.Patients {
		patients = append(patients, services.BatchPatient{PatientID: strings.TrimSpace(id)})
	}
	res, err := t.app.GenerateHandler.HandleBatch(ctx, commands.GenerateBatchCommand{
		Patients:          patients,
		DefaultProcedures: input.Procedures,
		Options:           opts,
	})
	if err != nil {
		return nil, err
	}
	return newScheduleOutput(res)
}

func (t *tools) validateSchedule(ctx context.Context, input scheduleValidateInput) (*validateOutput, error) {
	if t.app.ValidateHandler == nil {
		return nil, errNoStore
	}
	report, err := t.app.ValidateHandler.Handle(ctx, commands.ValidateDatasetCommand{
		Source:        strings.NewReader(input.CSV),
		IncludeManual: input.IncludeManual,
	})
	if err != nil {
		return nil, err
	}
	return newValidateOutput(report), nil
}

func newScheduleOutput(res *commands.GenerateResult) (*scheduleOutput, error) {
	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, res.Records, res.Context.Roster()); err != nil {
		return nil, err
	}
	return &scheduleOutput{
		RunID:   res.RunID,
		Records: export.ToJSONRecords(res.Records),
		CSV:     buf.String(),
	}, nil
}

func newValidateOutput(report *commands.ValidationReport) *validateOutput {
	out := &validateOutput{
		Valid:     report.Valid(),
		Records:   len(report.Records),
		Conflicts: make([]conflictOutput, 0, len(report.Conflicts)),
	}
	for _, c := range report.Conflicts {
		out.Conflicts = append(out.Conflicts, conflictOutput{Staff: c.StaffKey, Message: c.Message()})
	}
	return out
}
