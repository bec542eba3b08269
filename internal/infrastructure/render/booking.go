package render

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"strings"

	"github.com/haiminh-dev/visadossier/internal/core/domain"
)

//go:embed booking.html.tmpl
var bookingTemplate string

// HTMLRenderer renders a provisional booking selection as a printable
// A4 HTML document for embassy submission.
type HTMLRenderer struct {
	tmpl *template.Template
}

func NewHTMLRenderer() (*HTMLRenderer, error) {
	tmpl, err := template.New("booking").Funcs(template.FuncMap{
		"join": func(items []string) string { return strings.Join(items, ", ") },
		"stars": func(n int) string {
			if n <= 0 {
				return ""
			}
			return strings.Repeat("★", n)
		},
	}).Parse(bookingTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse booking template: %w", err)
	}
	return &HTMLRenderer{tmpl: tmpl}, nil
}

type bookingView struct {
	Trip      domain.TripInfo
	Selection domain.BookingSelection
	HasFlight bool
	HasReturn bool
}

func (r *HTMLRenderer) RenderBookingDossier(trip domain.TripInfo, selection domain.BookingSelection) ([]byte, error) {
	view := bookingView{
		Trip:      trip,
		Selection: selection,
		HasFlight: selection.Flight.Outbound.FlightNumber != "" || selection.Flight.Outbound.DepartureAirport != "",
		HasReturn: selection.Flight.Return.FlightNumber != "" || selection.Flight.Return.DepartureAirport != "",
	}

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, view); err != nil {
		return nil, fmt.Errorf("render booking dossier: %w", err)
	}
	return buf.Bytes(), nil
}
