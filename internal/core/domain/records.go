package domain

// RecordOf wraps the outcome of one domain extraction: a parsed record, or
// the raw model reply when the reply was not valid JSON. RawOutput being set
// marks the degraded case; callers must check it before trusting Record.
type RecordOf[T any] struct {
	Record    T      `json:"record"`
	RawOutput string `json:"raw_output,omitempty"`
}

func (r RecordOf[T]) Degraded() bool {
	return r.RawOutput != ""
}

// ExtractedRecords holds exactly one record per recognized domain. The zero
// value is the documented empty default for every domain, so a completed
// extraction step can never leave a domain without a record.
type ExtractedRecords struct {
	Personal      RecordOf[PersonalRecord]      `json:"personal"`
	TravelHistory RecordOf[TravelHistoryRecord] `json:"travel_history"`
	Employment    RecordOf[EmploymentRecord]    `json:"employment"`
	Financial     RecordOf[FinancialRecord]     `json:"financial"`
	Purpose       RecordOf[PurposeRecord]       `json:"purpose"`
}

type PersonalRecord struct {
	FullName           string   `json:"full_name"`
	DateOfBirth        string   `json:"date_of_birth"`
	PlaceOfBirth       string   `json:"place_of_birth"`
	Nationality        string   `json:"nationality"`
	PassportNumber     string   `json:"passport_number"`
	PassportIssueDate  string   `json:"passport_issue_date"`
	PassportExpiryDate string   `json:"passport_expiry_date"`
	CurrentAddress     string   `json:"current_address"`
	MaritalStatus      string   `json:"marital_status"`
	SpouseName         string   `json:"spouse_name"`
	FamilyMembersInVN  []string `json:"family_members_in_vn"`
	ContactPhone       string   `json:"contact_phone"`
	ContactEmail       string   `json:"contact_email"`
	Note               string   `json:"note"`
}

type TravelHistoryRecord struct {
	PreviousCountriesVisited []string `json:"previous_countries_visited"`
	PreviousVisaTypes        []string `json:"previous_visa_types"`
	LastTravelYear           string   `json:"last_travel_year"`
	TravelFrequency          string   `json:"travel_frequency"`
	OverstayHistory          string   `json:"overstay_history"`
	OldPassportAvailable     string   `json:"old_passport_available"`
	Note                     string   `json:"note"`
}

type EmploymentRecord struct {
	EmploymentType             string   `json:"employment_type"`
	CompanyName                string   `json:"company_name"`
	CompanyAddress             string   `json:"company_address"`
	JobTitle                   string   `json:"job_title"`
	EmploymentStartDate        string   `json:"employment_start_date"`
	EmploymentStatus           string   `json:"employment_status"`
	MonthlyIncome              string   `json:"monthly_income"`
	ApprovedLeaveStart         string   `json:"approved_leave_start"`
	ApprovedLeaveEnd           string   `json:"approved_leave_end"`
	ReturnToWorkConfirmation   string   `json:"return_to_work_confirmation"`
	BusinessName               string   `json:"business_name"`
	BusinessRegistrationYear   string   `json:"business_registration_year"`
	BusinessField              string   `json:"business_field"`
	RoleInBusiness             string   `json:"role_in_business"`
	MonthlyOrYearlyIncome      string   `json:"monthly_or_yearly_income"`
	TaxComplianceStatus        string   `json:"tax_compliance_status"`
	BusinessOperationStatus    string   `json:"business_operation_status"`
	MainIncomeSources          []string `json:"main_income_sources"`
	AverageMonthlyIncome       string   `json:"average_monthly_income"`
	IncomeStabilityLevel       string   `json:"income_stability_level"`
	PersonalExplanationPresent string   `json:"personal_explanation_present"`
	Note                       string   `json:"note"`
}

type FinancialRecord struct {
	BankStatementMonths       string   `json:"bank_statement_months"`
	AverageMonthlyBalance     string   `json:"average_monthly_balance"`
	CurrentAccountBalance     string   `json:"current_account_balance"`
	SavingsBalance            string   `json:"savings_balance"`
	AssetList                 []string `json:"asset_list"`
	TotalEstimatedAssetsValue string   `json:"total_estimated_assets_value"`
	FinancialSponsor          string   `json:"financial_sponsor"`
	SponsorRelationship       string   `json:"sponsor_relationship"`
	Note                      string   `json:"note"`
}

type PurposeRecord struct {
	TravelPurpose             string   `json:"travel_purpose"`
	DestinationCountry        string   `json:"destination_country"`
	CitiesToVisit             []string `json:"cities_to_visit"`
	TravelStartDate           string   `json:"travel_start_date"`
	TravelEndDate             string   `json:"travel_end_date"`
	TotalTripDuration         string   `json:"total_trip_duration"`
	DailyItineraryAvailable   string   `json:"daily_itinerary_available"`
	FlightBookingStatus       string   `json:"flight_booking_status"`
	HotelBookingStatus        string   `json:"hotel_booking_status"`
	TravelInsuranceStatus     string   `json:"travel_insurance_status"`
	AccompanyingPersons       []string `json:"accompanying_persons"`
	RelationshipWithCompanion string   `json:"relationship_with_companion"`
	Note                      string   `json:"note"`
}

// RiskPoint is a single reviewer concern derived from the full record set.
type RiskPoint struct {
	RiskType                      string `json:"risk_type"`
	Description                   string `json:"description"`
	Severity                      string `json:"severity"`
	SuggestedExplanationDirection string `json:"suggested_explanation_direction"`
}

const (
	SeverityLow    = "low"
	SeverityMedium = "medium"
	SeverityHigh   = "high"
)
