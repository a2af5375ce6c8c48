package mcp

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/felixgeelhaar/mcp-go"
)

type procedureResource struct {
	Name            string `json:"name"`
	DurationMinutes int    `json:"duration_minutes"`
	Role            string `json:"role"`
}

type catalogResource struct {
	Procedures []procedureResource `json:"procedures"`
	Doctors    []string            `json:"doctors_by_weekday"`
	Slots      []string            `json:"default_slots"`
	SlotKind   string              `json:"slot_kind"`
}

// RegisterResources registers read-only views of the clinic configuration.
func RegisterResources(srv *mcp.Server, deps ToolDependencies) error {
	if srv == nil {
		return errors.New("server is required")
	}
	app := deps.App

	srv.Resource("clinicflow://catalog").
		Name("Clinic catalog").
		Description("Procedures with durations and roles, diagnosing doctor per weekday and default slots").
		MimeType("application/json").
		Handler(func(ctx context.Context, uri string, params map[string]string) (*mcp.ResourceContent, error) {
			if app == nil || app.Clinic == nil {
				return nil, errNoStore
			}
			clinic := app.Clinic
			res := catalogResource{SlotKind: string(clinic.SlotKind)}
			for _, spec := range clinic.Catalog.Specs() {
				res.Procedures = append(res.Procedures, procedureResource{
					Name:            spec.Name,
					DurationMinutes: int(spec.Duration.Minutes()),
					Role:            string(spec.Role),
				})
			}
			res.Doctors = append(res.Doctors, clinic.Doctors[:]...)
			for _, s := range clinic.Slots {
				res.Slots = append(res.Slots, s.String())
			}
			return jsonContent(uri, res)
		})

	srv.Resource("clinicflow://health").
		Name("Health").
		Description("Store, leave lookup, event outbox and cache health").
		MimeType("application/json").
		Handler(func(ctx context.Context, uri string, params map[string]string) (*mcp.ResourceContent, error) {
			if app == nil || app.Health == nil {
				return nil, errNoStore
			}
			return jsonContent(uri, app.Health.Check(ctx))
		})

	return nil
}

func jsonContent(uri string, v any) (*mcp.ResourceContent, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return &mcp.ResourceContent{
		URI:      uri,
		MimeType: "application/json",
		Text:     string(data),
	}, nil
}
