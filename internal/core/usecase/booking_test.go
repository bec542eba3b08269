package usecase

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/haiminh-dev/visadossier/internal/core/domain"
)

func newTestBooking(t *testing.T, cache *fakeCache, model *fakeModel) (*BookingUseCase, string, *fakeExtractor) {
	t.Helper()
	dir := t.TempDir()
	extractor := &fakeExtractor{}
	uc := NewBookingUseCase(cache, extractor, model, dir, nil)
	return uc, dir, extractor
}

func TestTripInfoUsesCacheUntilForced(t *testing.T) {
	cache := newFakeCache()
	model := &fakeModel{reply: func(string) string {
		return `{"destination_country":"Australia","cities_to_visit":["Sydney"],"travel_start_date":"2026-03-10","travel_end_date":"2026-03-17","origin_city":"Hanoi"}`
	}}
	uc, dir, _ := newTestBooking(t, cache, model)
	writeInputFile(t, dir, "THONG TIN CHUYEN DI.txt")

	ctx := context.Background()
	trip, err := uc.TripInfo(ctx, false)
	if err != nil {
		t.Fatalf("trip info: %v", err)
	}
	if trip.OriginAirport != "HAN" {
		t.Fatalf("origin airport = %q, want HAN", trip.OriginAirport)
	}
	if trip.DestinationAirportHint != "SYD" {
		t.Fatalf("destination hint = %q, want SYD", trip.DestinationAirportHint)
	}
	if trip.NumNights != 7 {
		t.Fatalf("num nights = %d, want 7", trip.NumNights)
	}

	calls, _ := model.calls()
	if _, err := uc.TripInfo(ctx, false); err != nil {
		t.Fatalf("cached trip info: %v", err)
	}
	if after, _ := model.calls(); after != calls {
		t.Fatal("cached trip info still called the model")
	}

	if _, err := uc.TripInfo(ctx, true); err != nil {
		t.Fatalf("forced trip info: %v", err)
	}
	if after, _ := model.calls(); after != calls+1 {
		t.Fatal("forced trip info did not call the model")
	}
}

func TestTripInfoDistributesCityStays(t *testing.T) {
	cache := newFakeCache()
	model := &fakeModel{reply: func(string) string {
		return `{"destination_country":"Australia","cities_to_visit":["Sydney","Melbourne"],"num_nights":7}`
	}}
	uc, dir, _ := newTestBooking(t, cache, model)
	writeInputFile(t, dir, "MUC DICH CHUYEN DI.txt")

	trip, err := uc.TripInfo(context.Background(), false)
	if err != nil {
		t.Fatalf("trip info: %v", err)
	}
	if len(trip.CityStays) != 2 {
		t.Fatalf("city stays = %+v", trip.CityStays)
	}
	if trip.CityStays[0].Nights+trip.CityStays[1].Nights != 7 {
		t.Fatalf("nights not fully allocated: %+v", trip.CityStays)
	}
	if trip.CityStays[0].Nights < trip.CityStays[1].Nights {
		t.Fatalf("first city must absorb the remainder: %+v", trip.CityStays)
	}
}

func TestUpdateTripInfoInvalidatesBookings(t *testing.T) {
	cache := newFakeCache()
	cache.blobs[blobBookingData] = []byte(`{"hotels":[],"flight":{},"reasoning":""}`)
	uc, _, _ := newTestBooking(t, cache, &fakeModel{})

	_, err := uc.UpdateTripInfo(context.Background(), domain.TripInfo{
		DestinationCountry: "Japan",
		CitiesToVisit:      []string{"Tokyo", "tokyo", " "},
	})
	if err != nil {
		t.Fatalf("update trip info: %v", err)
	}

	if _, ok := cache.blobs[blobBookingData]; ok {
		t.Fatal("editing trip info must drop cached bookings")
	}
	var saved domain.TripInfo
	if err := json.Unmarshal(cache.blobs[blobTripInfo], &saved); err != nil {
		t.Fatalf("decode saved trip info: %v", err)
	}
	if len(saved.CitiesToVisit) != 1 || saved.CitiesToVisit[0] != "Tokyo" {
		t.Fatalf("cities not deduplicated: %v", saved.CitiesToVisit)
	}
}

func TestProposeBookingsParsesAndCaches(t *testing.T) {
	cache := newFakeCache()
	model := &fakeModel{reply: func(prompt string) string {
		if strings.Contains(prompt, "CHUYÊN GIA BOOKING") {
			return `{"hotels":[{"hotel_name":"Sydney Harbour Hotel","city":"Sydney","num_nights":7}],
			         "flight":{"outbound":{"flight_number":"vn 787","departure_airport":"han","arrival_airport":"syd"},
			                   "return":{"flight_number":"VN 788","departure_airport":"SYD","arrival_airport":"HAN"},
			                   "passengers":[{"name":"nguyen van a"}]},
			         "reasoning":"close to the harbour"}`
		}
		return `{"destination_country":"Australia","cities_to_visit":["Sydney"],"num_nights":7}`
	}}
	uc, dir, _ := newTestBooking(t, cache, model)
	writeInputFile(t, dir, "THONG TIN CHUYEN DI.txt")

	ctx := context.Background()
	sel, err := uc.ProposeBookings(ctx, false)
	if err != nil {
		t.Fatalf("propose bookings: %v", err)
	}
	if sel.Flight.Outbound.FlightNumber != "VN 787" {
		t.Fatalf("flight number not normalized: %q", sel.Flight.Outbound.FlightNumber)
	}
	if sel.Flight.Outbound.DepartureAirport != "HAN" {
		t.Fatalf("airport not upcased: %q", sel.Flight.Outbound.DepartureAirport)
	}
	if sel.Flight.Passengers[0].Name != "NGUYEN VAN A" || sel.Flight.Passengers[0].Type != "Adult" {
		t.Fatalf("passenger not normalized: %+v", sel.Flight.Passengers[0])
	}
	if sel.Flight.Airline == "" {
		t.Fatal("airline not defaulted from reference data")
	}

	calls, _ := model.calls()
	if _, err := uc.ProposeBookings(ctx, false); err != nil {
		t.Fatalf("cached bookings: %v", err)
	}
	if after, _ := model.calls(); after != calls {
		t.Fatal("cached bookings still called the model")
	}
}

func TestProposeBookingsRejectsUnparseableReply(t *testing.T) {
	cache := newFakeCache()
	model := &fakeModel{reply: func(prompt string) string {
		if strings.Contains(prompt, "CHUYÊN GIA BOOKING") {
			return "no json here"
		}
		return `{"destination_country":"Australia","cities_to_visit":["Sydney"]}`
	}}
	uc, dir, _ := newTestBooking(t, cache, model)
	writeInputFile(t, dir, "THONG TIN CHUYEN DI.txt")

	_, err := uc.ProposeBookings(context.Background(), false)
	if !domain.IsKind(err, domain.ErrExternalCall) {
		t.Fatalf("want ErrExternalCall, got %v", err)
	}
}

func TestBuildItineraryRequiresSummaryAndBookings(t *testing.T) {
	cache := newFakeCache()
	uc, _, _ := newTestBooking(t, cache, &fakeModel{})

	_, err := uc.BuildItinerary(context.Background(), false)
	if !domain.IsKind(err, domain.ErrMissingPrerequisite) {
		t.Fatalf("want missing prerequisite without summary, got %v", err)
	}

	state := domain.PipelineState{SummaryProfile: "Thông tin định danh:\n- full_name: A"}
	if err := cache.SaveState(context.Background(), state); err != nil {
		t.Fatal(err)
	}
	_, err = uc.BuildItinerary(context.Background(), false)
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("want ErrInvalidInput without bookings, got %v", err)
	}
}

func TestBuildItineraryCachesResult(t *testing.T) {
	cache := newFakeCache()
	model := &fakeModel{reply: func(string) string { return "<!DOCTYPE html><html></html>" }}
	uc, _, _ := newTestBooking(t, cache, model)

	ctx := context.Background()
	if err := cache.SaveState(ctx, domain.PipelineState{SummaryProfile: "profile"}); err != nil {
		t.Fatal(err)
	}
	cache.blobs[blobBookingData] = []byte(`{"hotels":[],"flight":{},"reasoning":""}`)

	html, err := uc.BuildItinerary(ctx, false)
	if err != nil {
		t.Fatalf("build itinerary: %v", err)
	}
	if !strings.Contains(html, "<!DOCTYPE html>") {
		t.Fatalf("itinerary = %q", html)
	}

	_, calls := model.calls()
	if _, err := uc.BuildItinerary(ctx, false); err != nil {
		t.Fatalf("cached itinerary: %v", err)
	}
	if _, after := model.calls(); after != calls {
		t.Fatal("cached itinerary still called the model")
	}
}

func TestSaveItineraryContextRendersSummary(t *testing.T) {
	cache := newFakeCache()
	uc, _, _ := newTestBooking(t, cache, &fakeModel{})
	ctx := context.Background()

	_, err := uc.SaveItineraryContext(ctx, map[string]string{"participants": "  "})
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("want ErrInvalidInput for empty form, got %v", err)
	}

	summary, err := uc.SaveItineraryContext(ctx, map[string]string{
		"participants":      "NGUYEN VAN A",
		"travel_start_date": "2026-10-01",
		"travel_end_date":   "2026-10-08",
		"travel_purpose":    "tourism",
	})
	if err != nil {
		t.Fatalf("save itinerary context: %v", err)
	}
	want := "Core itinerary inputs:\n" +
		"- Participant(s): NGUYEN VAN A\n" +
		"- Travel period: From 2026-10-01 to 2026-10-08\n" +
		"- Purpose of travel: tourism"
	if summary != want {
		t.Fatalf("summary = %q, want %q", summary, want)
	}

	loaded, err := uc.ItineraryContext(ctx)
	if err != nil {
		t.Fatalf("load itinerary context: %v", err)
	}
	if loaded != want {
		t.Fatalf("loaded context = %q", loaded)
	}
	if _, ok := cache.blobs[blobItinerarySummaryMeta]; !ok {
		t.Fatal("form data meta blob not saved")
	}
}

func TestBuildItineraryPrefersSavedContext(t *testing.T) {
	cache := newFakeCache()
	var captured string
	model := &fakeModel{reply: func(prompt string) string {
		captured = prompt
		return "<html></html>"
	}}
	uc, _, _ := newTestBooking(t, cache, model)
	ctx := context.Background()

	if err := cache.SaveState(ctx, domain.PipelineState{SummaryProfile: "pipeline profile"}); err != nil {
		t.Fatal(err)
	}
	cache.blobs[blobBookingData] = []byte(`{"hotels":[],"flight":{},"reasoning":""}`)
	if _, err := uc.SaveItineraryContext(ctx, map[string]string{"participants": "NGUYEN VAN A"}); err != nil {
		t.Fatal(err)
	}

	if _, err := uc.BuildItinerary(ctx, false); err != nil {
		t.Fatalf("build itinerary: %v", err)
	}
	if !strings.Contains(captured, "Participant(s): NGUYEN VAN A") {
		t.Fatalf("prompt missing saved context: %q", captured)
	}
	if strings.Contains(captured, "pipeline profile") {
		t.Fatal("saved context should replace the pipeline summary")
	}
}
