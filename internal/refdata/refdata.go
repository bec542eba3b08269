package refdata

import (
	"fmt"
	"strings"
	"sync"
	"unicode"

	_ "embed"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

// Static aviation reference data used to ground model-proposed bookings:
// airport codes per city/country and verified flight numbers per route.

//go:embed airports.yaml
var airportsYAML []byte

//go:embed airlines.yaml
var airlinesYAML []byte

type airportData struct {
	ByCity    map[string]string `yaml:"by_city"`
	ByCountry map[string]string `yaml:"by_country"`
}

type route struct {
	From         string `yaml:"from"`
	To           string `yaml:"to"`
	FlightNumber string `yaml:"flight_number"`
	Note         string `yaml:"note,omitempty"`
}

type airlineData struct {
	Airline string  `yaml:"airline"`
	Routes  []route `yaml:"routes"`
}

var (
	loadOnce sync.Once
	loadErr  error
	airports airportData
	airlines airlineData
)

func load() error {
	loadOnce.Do(func() {
		if err := yaml.Unmarshal(airportsYAML, &airports); err != nil {
			loadErr = fmt.Errorf("parse airports reference: %w", err)
			return
		}
		if err := yaml.Unmarshal(airlinesYAML, &airlines); err != nil {
			loadErr = fmt.Errorf("parse airlines reference: %w", err)
		}
	})
	return loadErr
}

// AirportForCity returns the IATA code for a city name, tolerating
// Vietnamese diacritics and loose formatting. Empty when unknown.
func AirportForCity(city string) string {
	if load() != nil {
		return ""
	}
	return airports.ByCity[NormalizeKey(city)]
}

// AirportForCountry returns the IATA code of a country's main gateway.
func AirportForCountry(country string) string {
	if load() != nil {
		return ""
	}
	return airports.ByCountry[NormalizeKey(country)]
}

// FlightTable renders the verified flight-number table for inclusion in a
// booking prompt.
func FlightTable() string {
	if load() != nil {
		return ""
	}
	var b strings.Builder
	for _, r := range airlines.Routes {
		fmt.Fprintf(&b, "  - %s → %s: %s", r.From, r.To, r.FlightNumber)
		if r.Note != "" {
			b.WriteString(" (" + r.Note + ")")
		}
		b.WriteByte('\n')
	}
	return strings.TrimRight(b.String(), "\n")
}

// Airline returns the carrier the flight table belongs to.
func Airline() string {
	if load() != nil {
		return ""
	}
	return airlines.Airline
}

// KnownFlightNumber reports whether a flight number appears in the verified
// route table.
func KnownFlightNumber(number string) bool {
	if load() != nil {
		return false
	}
	want := strings.ToUpper(strings.Join(strings.Fields(number), " "))
	for _, r := range airlines.Routes {
		if strings.EqualFold(strings.Join(strings.Fields(r.FlightNumber), " "), want) {
			return true
		}
	}
	return false
}

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeKey folds diacritics and casing so "Hà Nội", "HANOI" and "ha noi"
// all resolve to the same lookup key.
func NormalizeKey(text string) string {
	folded, _, err := transform.String(stripMarks, text)
	if err != nil {
		folded = text
	}
	folded = strings.ToLower(folded)
	var b strings.Builder
	lastSpace := true
	for _, r := range folded {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastSpace = false
		default:
			if !lastSpace {
				b.WriteByte(' ')
				lastSpace = true
			}
		}
	}
	return strings.TrimSpace(b.String())
}
