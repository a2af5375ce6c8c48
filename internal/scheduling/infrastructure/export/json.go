package export

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/felixgeelhaar/clinicflow/internal/scheduling/domain"
)

// SpaceToken replaces the blank between date and time in exported datetimes.
const SpaceToken = "{SPACE}"

// JSONProcedure is one procedure in the inspection format.
type JSONProcedure struct {
	Name      string `json:"Ten"`
	Doctor    string `json:"BS CD"`
	Diagnosis string `json:"Ngay CD"`
	Start     string `json:"Ngay BD TH"`
	End       string `json:"Ngay KQ"`
	Staff     string `json:"Nguoi Thuc Hien"`
}

// JSONRecord is one appointment in the inspection format.
type JSONRecord struct {
	ID         string          `json:"id"`
	IsFirst    bool            `json:"isFirst"`
	Date       string          `json:"ngay"`
	Procedures []JSONProcedure `json:"thu_thuats"`
}

// FormatDateTime renders t as DD-MM-YYYY{SPACE}HH:MM.
func FormatDateTime(t time.Time) string {
	return t.Format(domain.DateLayout) + SpaceToken + t.Format("15:04")
}

// ToJSONRecords converts records to the inspection format.
func ToJSONRecords(records []domain.AppointmentRecord) []JSONRecord {
	out := make([]JSONRecord, 0, len(records))
	for _, rec := range records {
		jr := JSONRecord{
			ID:         rec.PatientID,
			IsFirst:    rec.IsFirst,
			Date:       rec.Date.Format(domain.DateLayout),
			Procedures: make([]JSONProcedure, 0, len(rec.Procedures)),
		}
		for _, p := range rec.Procedures {
			jr.Procedures = append(jr.Procedures, JSONProcedure{
				Name:      p.Procedure,
				Doctor:    p.Doctor,
				Diagnosis: FormatDateTime(p.Diagnosis),
				Start:     FormatDateTime(p.Start),
				End:       FormatDateTime(p.End),
				Staff:     p.Staff,
			})
		}
		out = append(out, jr)
	}
	return out
}

// WriteJSON writes records as an indented JSON array.
func WriteJSON(w io.Writer, records []domain.AppointmentRecord) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(ToJSONRecords(records)); err != nil {
		return fmt.Errorf("encode records: %w", err)
	}
	return nil
}
