package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/haiminh-dev/visadossier/internal/core/domain"
)

// BuildItinerary generates the printable day-by-day itinerary from the
// summary profile and the proposed bookings. The result is cached; force
// regenerates it.
func (uc *BookingUseCase) BuildItinerary(ctx context.Context, force bool) (string, error) {
	if !force {
		data, found, err := uc.cache.LoadBlob(ctx, blobItinerary)
		if err != nil {
			return "", fmt.Errorf("load itinerary cache: %w", err)
		}
		if found {
			return string(data), nil
		}
	}

	summary, err := uc.itinerarySummary(ctx)
	if err != nil {
		return "", err
	}
	if summary == "" {
		return "", &domain.PrerequisiteError{Missing: domain.StepSummary}
	}

	data, found, err := uc.cache.LoadBlob(ctx, blobBookingData)
	if err != nil {
		return "", fmt.Errorf("load booking cache: %w", err)
	}
	if !found {
		return "", domain.WrapError(domain.ErrInvalidInput, "build itinerary", errors.New("no proposed bookings to build from"))
	}
	var selection domain.BookingSelection
	if err := json.Unmarshal(data, &selection); err != nil {
		return "", fmt.Errorf("decode booking cache: %w", err)
	}

	prompt := systemBase + "\n" + fmt.Sprintf(
		itineraryPrompt,
		FormatFlightText(selection.Flight),
		FormatHotelText(selection.Hotels),
		summary,
	)
	itinerary, err := uc.model.Generate(ctx, prompt)
	if err != nil {
		return "", domain.WrapError(domain.ErrExternalCall, "build itinerary", err)
	}

	if err := uc.cache.SaveBlob(ctx, blobItinerary, []byte(itinerary)); err != nil {
		return "", fmt.Errorf("save itinerary cache: %w", err)
	}
	return itinerary, nil
}

// LatestItinerary returns the cached itinerary without regenerating it.
func (uc *BookingUseCase) LatestItinerary(ctx context.Context) (string, error) {
	data, found, err := uc.cache.LoadBlob(ctx, blobItinerary)
	if err != nil {
		return "", fmt.Errorf("load itinerary cache: %w", err)
	}
	if !found {
		return "", domain.WrapError(domain.ErrFileNotFound, "latest itinerary", errors.New("no itinerary generated yet"))
	}
	return string(data), nil
}

// itinerarySummary prefers the user-saved context summary over the pipeline
// summary profile.
func (uc *BookingUseCase) itinerarySummary(ctx context.Context) (string, error) {
	data, found, err := uc.cache.LoadBlob(ctx, blobItinerarySummary)
	if err != nil {
		return "", fmt.Errorf("load itinerary context: %w", err)
	}
	if found && strings.TrimSpace(string(data)) != "" {
		return strings.TrimSpace(string(data)), nil
	}

	state, _, err := uc.cache.LoadState(ctx)
	if err != nil {
		return "", fmt.Errorf("load pipeline state: %w", err)
	}
	return strings.TrimSpace(state.SummaryProfile), nil
}

// SaveItineraryContext renders a summary from user form fields and caches
// it next to its source data. All-empty form data is rejected.
func (uc *BookingUseCase) SaveItineraryContext(ctx context.Context, fields map[string]string) (string, error) {
	summary := buildItinerarySummary(fields)
	if summary == "" {
		return "", domain.WrapError(domain.ErrInvalidInput, "save itinerary context", errors.New("form data has no usable fields"))
	}

	if err := uc.cache.SaveBlob(ctx, blobItinerarySummary, []byte(summary)); err != nil {
		return "", fmt.Errorf("save itinerary context: %w", err)
	}
	meta, err := json.MarshalIndent(map[string]any{"form_data": fields}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode itinerary context meta: %w", err)
	}
	if err := uc.cache.SaveBlob(ctx, blobItinerarySummaryMeta, meta); err != nil {
		return "", fmt.Errorf("save itinerary context meta: %w", err)
	}
	return summary, nil
}

// ItineraryContext returns the saved context summary, empty when none was
// saved yet.
func (uc *BookingUseCase) ItineraryContext(ctx context.Context) (string, error) {
	data, _, err := uc.cache.LoadBlob(ctx, blobItinerarySummary)
	if err != nil {
		return "", fmt.Errorf("load itinerary context: %w", err)
	}
	return string(data), nil
}

func buildItinerarySummary(fields map[string]string) string {
	participants := strings.TrimSpace(fields["participants"])
	purpose := strings.TrimSpace(fields["travel_purpose"])
	startDate := strings.TrimSpace(fields["travel_start_date"])
	endDate := strings.TrimSpace(fields["travel_end_date"])
	if participants == "" && purpose == "" && startDate == "" && endDate == "" {
		return ""
	}

	lines := []string{"Core itinerary inputs:"}
	if participants != "" {
		lines = append(lines, "- Participant(s): "+participants)
	}
	switch {
	case startDate != "" && endDate != "":
		lines = append(lines, fmt.Sprintf("- Travel period: From %s to %s", startDate, endDate))
	case startDate != "":
		lines = append(lines, "- travel_start_date: "+startDate)
	case endDate != "":
		lines = append(lines, "- travel_end_date: "+endDate)
	}
	if purpose != "" {
		lines = append(lines, "- Purpose of travel: "+purpose)
	}
	return strings.Join(lines, "\n")
}

// FormatFlightText renders a flight booking as the plain-text block the
// itinerary prompt expects.
func FormatFlightText(flight domain.FlightBooking) string {
	var b strings.Builder
	if flight.Airline != "" {
		fmt.Fprintf(&b, "Airline: %s\n", flight.Airline)
	}
	if flight.BookingReference != "" {
		fmt.Fprintf(&b, "Booking reference: %s\n", flight.BookingReference)
	}
	for _, p := range flight.Passengers {
		fmt.Fprintf(&b, "Passenger: %s (%s)\n", p.Name, p.Type)
	}
	writeLeg := func(label string, leg domain.FlightLeg) {
		if leg.FlightNumber == "" && leg.DepartureAirport == "" {
			return
		}
		fmt.Fprintf(&b, "%s: %s %s %s (%s) -> %s %s (%s), duration %s\n",
			label, leg.FlightNumber,
			leg.DepartureDate, leg.DepartureTime, leg.DepartureAirport,
			leg.ArrivalDate, leg.ArrivalTime, leg.ArrivalAirport,
			leg.Duration,
		)
	}
	writeLeg("Outbound", flight.Outbound)
	writeLeg("Return", flight.Return)
	if flight.Baggage != "" {
		fmt.Fprintf(&b, "Baggage: %s\n", flight.Baggage)
	}
	return strings.TrimSpace(b.String())
}

// FormatHotelText renders hotel bookings as the plain-text block the
// itinerary prompt expects.
func FormatHotelText(hotels []domain.HotelBooking) string {
	var b strings.Builder
	for i, h := range hotels {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "Hotel: %s, %s, %s\n", h.HotelName, h.City, h.Country)
		if h.HotelAddress != "" {
			fmt.Fprintf(&b, "Address: %s\n", h.HotelAddress)
		}
		if h.HotelPhone != "" {
			fmt.Fprintf(&b, "Phone: %s\n", h.HotelPhone)
		}
		fmt.Fprintf(&b, "Stay: %s to %s (%d nights), %s\n", h.CheckInDate, h.CheckOutDate, h.NumNights, h.RoomType)
	}
	return strings.TrimSpace(b.String())
}
