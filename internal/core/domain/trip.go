package domain

// TripInfo describes the journey used for provisional bookings. It is
// gathered from trip-related input files, independently of the pipeline state.
type TripInfo struct {
	GuestNames             []string   `json:"guest_names"`
	DestinationCountry     string     `json:"destination_country"`
	CitiesToVisit          []string   `json:"cities_to_visit"`
	CityStays              []CityStay `json:"city_stays"`
	TravelStartDate        string     `json:"travel_start_date"`
	TravelEndDate          string     `json:"travel_end_date"`
	NumNights              int        `json:"num_nights"`
	OriginCity             string     `json:"origin_city"`
	OriginAirport          string     `json:"origin_airport"`
	ReturnPoint            string     `json:"return_point"`
	DestinationAirportHint string     `json:"destination_airport_hint"`
	ReturnAirportHint      string     `json:"return_airport_hint"`
	TravelPurpose          string     `json:"travel_purpose"`
	TravelerProfile        string     `json:"traveler_profile"`
}

// CityStay allocates nights to one visited city.
type CityStay struct {
	City   string `json:"city"`
	Nights int    `json:"nights"`
}

// BookingSelection is the model-proposed set of hotels and flights for a trip.
type BookingSelection struct {
	Hotels    []HotelBooking `json:"hotels"`
	Flight    FlightBooking  `json:"flight"`
	Reasoning string         `json:"reasoning"`
}

type HotelBooking struct {
	HotelName          string `json:"hotel_name"`
	HotelAddress       string `json:"hotel_address"`
	HotelPhone         string `json:"hotel_phone"`
	StarRating         int    `json:"star_rating"`
	City               string `json:"city"`
	Country            string `json:"country"`
	CheckInDate        string `json:"check_in_date"`
	CheckOutDate       string `json:"check_out_date"`
	CheckInDateShort   string `json:"check_in_date_short"`
	CheckOutDateShort  string `json:"check_out_date_short"`
	NumNights          int    `json:"num_nights"`
	RoomType           string `json:"room_type"`
	NumRooms           int    `json:"num_rooms"`
	NumAdults          int    `json:"num_adults"`
	NumChildren        int    `json:"num_children"`
	PricePerNight      string `json:"price_per_night"`
	TotalPrice         string `json:"total_price"`
	Currency           string `json:"currency"`
	GuestName          string `json:"guest_name"`
	Benefits           string `json:"benefits"`
	CancellationPolicy string `json:"cancellation_policy"`
}

type FlightBooking struct {
	Airline          string      `json:"airline"`
	BookingReference string      `json:"booking_reference"`
	Passengers       []Passenger `json:"passengers"`
	Outbound         FlightLeg   `json:"outbound"`
	Return           FlightLeg   `json:"return"`
	Baggage          string      `json:"baggage"`
}

type Passenger struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type FlightLeg struct {
	FlightNumber      string `json:"flight_number"`
	DepartureDate     string `json:"departure_date"`
	DepartureTime     string `json:"departure_time"`
	DepartureAirport  string `json:"departure_airport"`
	DepartureCity     string `json:"departure_city"`
	DepartureTerminal string `json:"departure_terminal"`
	ArrivalDate       string `json:"arrival_date"`
	ArrivalTime       string `json:"arrival_time"`
	ArrivalAirport    string `json:"arrival_airport"`
	ArrivalCity       string `json:"arrival_city"`
	ArrivalTerminal   string `json:"arrival_terminal"`
	Duration          string `json:"duration"`
}
