package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/haiminh-dev/visadossier/internal/core/domain"
	"github.com/haiminh-dev/visadossier/internal/core/ports"
	"github.com/haiminh-dev/visadossier/internal/refdata"
)

const (
	blobTripInfo             = "booking_trip_info.json"
	blobBookingData          = "ai_booking_data.json"
	blobItinerary            = "itinerary.html"
	blobItinerarySummary     = "itinerary_summary.txt"
	blobItinerarySummaryMeta = "itinerary_summary_meta.json"
)

// Filename prefixes that mark a document as relevant for trip extraction.
var tripFilePrefixes = []string{
	"THONG TIN CHUYEN DI",
	"HO SO CA NHAN",
	"MUC DICH CHUYEN DI",
}

// BookingUseCase gathers trip info from the input documents and asks the
// model to propose real hotels and flights for it. Both results are cached
// as blobs; editing the trip info invalidates the proposed bookings.
type BookingUseCase struct {
	cache     ports.CacheStore
	extractor ports.TextExtractor
	model     ports.ModelClient
	inputDir  string
	logger    *slog.Logger
}

func NewBookingUseCase(
	cache ports.CacheStore,
	extractor ports.TextExtractor,
	model ports.ModelClient,
	inputDir string,
	logger *slog.Logger,
) *BookingUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &BookingUseCase{
		cache:     cache,
		extractor: extractor,
		model:     model,
		inputDir:  inputDir,
		logger:    logger,
	}
}

func (uc *BookingUseCase) TripInfo(ctx context.Context, force bool) (domain.TripInfo, error) {
	if !force {
		if cached, found, err := uc.loadTripBlob(ctx); err != nil {
			return domain.TripInfo{}, err
		} else if found {
			return cached, nil
		}
	}

	text, err := uc.collectTripText(ctx)
	if err != nil {
		return domain.TripInfo{}, err
	}

	var trip domain.TripInfo
	if text != "" {
		reply, err := uc.model.GenerateJSON(ctx, systemBase+"\n"+fmt.Sprintf(tripInfoPrompt, text))
		if err != nil {
			return domain.TripInfo{}, domain.WrapError(domain.ErrExternalCall, "extract trip info", err)
		}
		if err := json.Unmarshal([]byte(reply), &trip); err != nil {
			uc.logger.Warn("trip info reply not valid JSON, starting from defaults")
			trip = domain.TripInfo{}
		}
	}

	normalizeTripInfo(&trip)
	if err := uc.saveTripBlob(ctx, trip); err != nil {
		return domain.TripInfo{}, err
	}
	// Recomputed trip info makes any previously proposed bookings stale.
	if err := uc.cache.DeleteBlob(ctx, blobBookingData); err != nil {
		return domain.TripInfo{}, fmt.Errorf("invalidate booking cache: %w", err)
	}
	return trip, nil
}

func (uc *BookingUseCase) UpdateTripInfo(ctx context.Context, trip domain.TripInfo) (domain.TripInfo, error) {
	normalizeTripInfo(&trip)
	if err := uc.saveTripBlob(ctx, trip); err != nil {
		return domain.TripInfo{}, err
	}
	if err := uc.cache.DeleteBlob(ctx, blobBookingData); err != nil {
		return domain.TripInfo{}, fmt.Errorf("invalidate booking cache: %w", err)
	}
	return trip, nil
}

func (uc *BookingUseCase) ProposeBookings(ctx context.Context, force bool) (domain.BookingSelection, error) {
	if !force {
		data, found, err := uc.cache.LoadBlob(ctx, blobBookingData)
		if err != nil {
			return domain.BookingSelection{}, fmt.Errorf("load booking cache: %w", err)
		}
		if found {
			var cached domain.BookingSelection
			if err := json.Unmarshal(data, &cached); err == nil {
				return cached, nil
			}
			uc.logger.Warn("booking cache unreadable, recomputing")
		}
	}

	trip, err := uc.TripInfo(ctx, false)
	if err != nil {
		return domain.BookingSelection{}, err
	}
	if trip.DestinationCountry == "" && len(trip.CitiesToVisit) == 0 {
		return domain.BookingSelection{}, domain.WrapError(domain.ErrInvalidInput, "propose bookings", errors.New("trip info has no destination"))
	}

	encoded, err := json.Marshal(trip)
	if err != nil {
		return domain.BookingSelection{}, fmt.Errorf("encode trip info: %w", err)
	}

	reply, err := uc.model.GenerateJSON(ctx, fmt.Sprintf(bookingExpertPrompt, encoded, refdata.FlightTable()))
	if err != nil {
		return domain.BookingSelection{}, domain.WrapError(domain.ErrExternalCall, "propose bookings", err)
	}

	var selection domain.BookingSelection
	if err := json.Unmarshal([]byte(reply), &selection); err != nil {
		return domain.BookingSelection{}, domain.WrapError(domain.ErrExternalCall, "propose bookings", fmt.Errorf("reply is not valid JSON: %w", err))
	}
	normalizeSelection(&selection)

	data, err := json.MarshalIndent(selection, "", "  ")
	if err != nil {
		return domain.BookingSelection{}, fmt.Errorf("encode booking selection: %w", err)
	}
	if err := uc.cache.SaveBlob(ctx, blobBookingData, data); err != nil {
		return domain.BookingSelection{}, fmt.Errorf("save booking cache: %w", err)
	}
	return selection, nil
}

// LatestBookings serves the cached selection only.
func (uc *BookingUseCase) LatestBookings(ctx context.Context) (domain.BookingSelection, error) {
	data, found, err := uc.cache.LoadBlob(ctx, blobBookingData)
	if err != nil {
		return domain.BookingSelection{}, fmt.Errorf("load booking cache: %w", err)
	}
	if !found {
		return domain.BookingSelection{}, domain.WrapError(domain.ErrFileNotFound, "latest bookings", errors.New("no bookings generated yet"))
	}
	var selection domain.BookingSelection
	if err := json.Unmarshal(data, &selection); err != nil {
		return domain.BookingSelection{}, fmt.Errorf("decode booking cache: %w", err)
	}
	return selection, nil
}

func (uc *BookingUseCase) loadTripBlob(ctx context.Context) (domain.TripInfo, bool, error) {
	data, found, err := uc.cache.LoadBlob(ctx, blobTripInfo)
	if err != nil {
		return domain.TripInfo{}, false, fmt.Errorf("load trip info cache: %w", err)
	}
	if !found {
		return domain.TripInfo{}, false, nil
	}
	var trip domain.TripInfo
	if err := json.Unmarshal(data, &trip); err != nil {
		uc.logger.Warn("trip info cache unreadable, recomputing")
		return domain.TripInfo{}, false, nil
	}
	return trip, true, nil
}

func (uc *BookingUseCase) saveTripBlob(ctx context.Context, trip domain.TripInfo) error {
	data, err := json.MarshalIndent(trip, "", "  ")
	if err != nil {
		return fmt.Errorf("encode trip info: %w", err)
	}
	if err := uc.cache.SaveBlob(ctx, blobTripInfo, data); err != nil {
		return fmt.Errorf("save trip info cache: %w", err)
	}
	return nil
}

// collectTripText extracts text from every input file whose name carries a
// trip-related prefix.
func (uc *BookingUseCase) collectTripText(ctx context.Context) (string, error) {
	var parts []string
	err := filepath.WalkDir(uc.inputDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		if !isTripInfoFilename(d.Name()) {
			return nil
		}
		text, err := uc.extractor.Extract(ctx, path)
		if err != nil {
			return fmt.Errorf("extract text from %s: %w", d.Name(), err)
		}
		if text != "" {
			parts = append(parts, text)
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("scan input dir: %w", err)
	}
	return strings.Join(parts, "\n\n"), nil
}

func isTripInfoFilename(name string) bool {
	upper := strings.ToUpper(name)
	for _, prefix := range tripFilePrefixes {
		if strings.HasPrefix(upper, prefix) {
			return true
		}
	}
	return false
}

func normalizeTripInfo(trip *domain.TripInfo) {
	trip.GuestNames = cleanList(trip.GuestNames)
	trip.CitiesToVisit = cleanList(trip.CitiesToVisit)

	trip.OriginAirport = strings.ToUpper(strings.TrimSpace(trip.OriginAirport))
	trip.DestinationAirportHint = strings.ToUpper(strings.TrimSpace(trip.DestinationAirportHint))
	trip.ReturnAirportHint = strings.ToUpper(strings.TrimSpace(trip.ReturnAirportHint))

	if trip.OriginAirport == "" {
		trip.OriginAirport = refdata.AirportForCity(trip.OriginCity)
	}
	if trip.OriginAirport == "" {
		trip.OriginAirport = refdata.AirportForCountry("vietnam")
	}
	if trip.DestinationAirportHint == "" && len(trip.CitiesToVisit) > 0 {
		trip.DestinationAirportHint = refdata.AirportForCity(trip.CitiesToVisit[0])
	}
	if trip.DestinationAirportHint == "" {
		trip.DestinationAirportHint = refdata.AirportForCountry(trip.DestinationCountry)
	}
	if trip.ReturnAirportHint == "" && trip.ReturnPoint != "" {
		trip.ReturnAirportHint = refdata.AirportForCity(trip.ReturnPoint)
		if trip.ReturnAirportHint == "" {
			trip.ReturnAirportHint = refdata.AirportForCountry(trip.ReturnPoint)
		}
	}
	if trip.ReturnAirportHint == "" {
		trip.ReturnAirportHint = trip.OriginAirport
	}

	if trip.NumNights == 0 && trip.TravelStartDate != "" && trip.TravelEndDate != "" {
		start, errStart := time.Parse("2006-01-02", trip.TravelStartDate)
		end, errEnd := time.Parse("2006-01-02", trip.TravelEndDate)
		if errStart == nil && errEnd == nil && end.After(start) {
			trip.NumNights = int(end.Sub(start).Hours() / 24)
		}
	}

	trip.CityStays = normalizeCityStays(trip.CitiesToVisit, trip.CityStays, trip.NumNights)
}

// normalizeCityStays keeps stays aligned with the visited cities and
// distributes unallocated nights, giving the remainder to the first city.
func normalizeCityStays(cities []string, stays []domain.CityStay, totalNights int) []domain.CityStay {
	if len(cities) == 0 {
		return nil
	}

	byCity := make(map[string]int, len(stays))
	for _, s := range stays {
		if s.Nights > 0 {
			byCity[refdata.NormalizeKey(s.City)] = s.Nights
		}
	}

	out := make([]domain.CityStay, len(cities))
	allocated := 0
	for i, city := range cities {
		nights := byCity[refdata.NormalizeKey(city)]
		out[i] = domain.CityStay{City: city, Nights: nights}
		allocated += nights
	}

	if remaining := totalNights - allocated; remaining > 0 {
		base := remaining / len(cities)
		extra := remaining % len(cities)
		for i := range out {
			out[i].Nights += base
		}
		out[0].Nights += extra
	}
	return out
}

func normalizeSelection(sel *domain.BookingSelection) {
	if sel.Flight.Airline == "" {
		sel.Flight.Airline = refdata.Airline()
	}
	normalizeLeg(&sel.Flight.Outbound)
	normalizeLeg(&sel.Flight.Return)
	for i := range sel.Flight.Passengers {
		sel.Flight.Passengers[i].Name = strings.ToUpper(strings.TrimSpace(sel.Flight.Passengers[i].Name))
		if sel.Flight.Passengers[i].Type == "" {
			sel.Flight.Passengers[i].Type = "Adult"
		}
	}
	for i := range sel.Hotels {
		if sel.Hotels[i].NumRooms == 0 {
			sel.Hotels[i].NumRooms = 1
		}
		if sel.Hotels[i].NumAdults == 0 {
			sel.Hotels[i].NumAdults = 1
		}
	}
}

func normalizeLeg(leg *domain.FlightLeg) {
	leg.DepartureAirport = strings.ToUpper(strings.TrimSpace(leg.DepartureAirport))
	leg.ArrivalAirport = strings.ToUpper(strings.TrimSpace(leg.ArrivalAirport))
	leg.FlightNumber = strings.Join(strings.Fields(strings.ToUpper(leg.FlightNumber)), " ")
}

func cleanList(values []string) []string {
	var out []string
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		key := refdata.NormalizeKey(v)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, v)
	}
	return out
}
