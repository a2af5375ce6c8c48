package cli

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/clinicflow/internal/scheduling/domain"
	"github.com/felixgeelhaar/clinicflow/internal/scheduling/infrastructure/export"
	"github.com/felixgeelhaar/clinicflow/internal/shared/infrastructure/security"
	staffing "github.com/felixgeelhaar/clinicflow/internal/staffing/domain"
	"github.com/felixgeelhaar/clinicflow/pkg/observability"
)

// Output formats.
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
	FormatXLSX = "xlsx"
)

// ResolveFormat returns the explicit format, or the one implied by the output
// file extension, defaulting to CSV.
func ResolveFormat(format, path string) (string, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".json":
			return FormatJSON, nil
		case ".xlsx":
			return FormatXLSX, nil
		default:
			return FormatCSV, nil
		}
	}
	switch format {
	case FormatCSV, FormatJSON, FormatXLSX:
		return format, nil
	default:
		return "", fmt.Errorf("unknown output format %q (valid: csv, json, xlsx)", format)
	}
}

// WriteRecords writes records to path, or to the command output when path is
// empty or "-".
func WriteRecords(cmd *cobra.Command, a *App, format, path string, records []domain.AppointmentRecord, roster *staffing.Roster) (err error) {
	format, err = ResolveFormat(format, path)
	if err != nil {
		return err
	}

	var w io.Writer = cmd.OutOrStdout()
	if path != "" && path != "-" {
		f, createErr := security.SafeCreate(path)
		if createErr != nil {
			return fmt.Errorf("failed to create output: %w", createErr)
		}
		defer func() {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}()
		w = f
	}

	switch format {
	case FormatJSON:
		err = export.WriteJSON(w, records)
	case FormatXLSX:
		err = export.WriteXLSX(w, records)
	default:
		err = export.WriteCSV(w, records, roster)
	}
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", format, err)
	}
	if a != nil && a.Metrics != nil {
		a.Metrics.Counter(observability.MetricRecordsExported, int64(len(records)), observability.T("format", format))
	}
	return nil
}

// PrintConflicts lists double bookings, one block per conflict.
func PrintConflicts(w io.Writer, conflicts []domain.Conflict) {
	for i, c := range conflicts {
		fmt.Fprintf(w, "%d. %s\n", i+1, c.Message())
	}
}
