package usecase

import (
	"strings"

	"github.com/haiminh-dev/visadossier/internal/core/domain"
)

// BuildSummaryProfile renders the extracted records as the Vietnamese
// sectioned profile the letter writer consumes. Purely deterministic: no
// model calls. A section is omitted when its record contributes no lines,
// which also covers degraded records.
func BuildSummaryProfile(extracted domain.ExtractedRecords) string {
	var lines []string

	appendSection := func(heading string, fields []fieldLine) {
		var body []string
		for _, f := range fields {
			if f.value == "" {
				continue
			}
			body = append(body, "- "+f.key+": "+f.value)
		}
		if len(body) == 0 {
			return
		}
		lines = append(lines, heading)
		lines = append(lines, body...)
	}

	p := extracted.Personal.Record
	appendSection("Thông tin định danh:", []fieldLine{
		{"full_name", p.FullName},
		{"date_of_birth", p.DateOfBirth},
		{"nationality", p.Nationality},
		{"passport_number", p.PassportNumber},
		{"passport_issue_date", p.PassportIssueDate},
		{"passport_expiry_date", p.PassportExpiryDate},
		{"current_address", p.CurrentAddress},
		{"marital_status", p.MaritalStatus},
		{"spouse_name", p.SpouseName},
		{"contact_phone", p.ContactPhone},
		{"contact_email", p.ContactEmail},
		{"family_members_in_vn", joinList(p.FamilyMembersInVN)},
		{"note", p.Note},
	})

	e := extracted.Employment.Record
	appendSection("Công việc & thu nhập:", []fieldLine{
		{"employment_type", e.EmploymentType},
		{"company_name", e.CompanyName},
		{"company_address", e.CompanyAddress},
		{"job_title", e.JobTitle},
		{"employment_start_date", e.EmploymentStartDate},
		{"employment_status", e.EmploymentStatus},
		{"monthly_income", e.MonthlyIncome},
		{"approved_leave_start", e.ApprovedLeaveStart},
		{"approved_leave_end", e.ApprovedLeaveEnd},
		{"return_to_work_confirmation", e.ReturnToWorkConfirmation},
		{"business_name", e.BusinessName},
		{"business_registration_year", e.BusinessRegistrationYear},
		{"business_field", e.BusinessField},
		{"role_in_business", e.RoleInBusiness},
		{"monthly_or_yearly_income", e.MonthlyOrYearlyIncome},
		{"tax_compliance_status", e.TaxComplianceStatus},
		{"business_operation_status", e.BusinessOperationStatus},
		{"average_monthly_income", e.AverageMonthlyIncome},
		{"income_stability_level", e.IncomeStabilityLevel},
		{"personal_explanation_present", e.PersonalExplanationPresent},
		{"main_income_sources", joinList(e.MainIncomeSources)},
		{"note", e.Note},
	})

	f := extracted.Financial.Record
	appendSection("Tài chính & tài sản:", []fieldLine{
		{"bank_statement_months", f.BankStatementMonths},
		{"average_monthly_balance", f.AverageMonthlyBalance},
		{"current_account_balance", f.CurrentAccountBalance},
		{"savings_balance", f.SavingsBalance},
		{"total_estimated_assets_value", f.TotalEstimatedAssetsValue},
		{"financial_sponsor", f.FinancialSponsor},
		{"sponsor_relationship", f.SponsorRelationship},
		{"asset_list", joinList(f.AssetList)},
		{"note", f.Note},
	})

	t := extracted.TravelHistory.Record
	appendSection("Lịch sử du lịch & visa:", []fieldLine{
		{"last_travel_year", t.LastTravelYear},
		{"travel_frequency", t.TravelFrequency},
		{"overstay_history", t.OverstayHistory},
		{"old_passport_available", t.OldPassportAvailable},
		{"previous_countries_visited", joinList(t.PreviousCountriesVisited)},
		{"previous_visa_types", joinList(t.PreviousVisaTypes)},
		{"note", t.Note},
	})

	u := extracted.Purpose.Record
	appendSection("Mục đích chuyến đi:", []fieldLine{
		{"travel_purpose", u.TravelPurpose},
		{"destination_country", u.DestinationCountry},
		{"travel_start_date", u.TravelStartDate},
		{"travel_end_date", u.TravelEndDate},
		{"total_trip_duration", u.TotalTripDuration},
		{"daily_itinerary_available", u.DailyItineraryAvailable},
		{"flight_booking_status", u.FlightBookingStatus},
		{"hotel_booking_status", u.HotelBookingStatus},
		{"travel_insurance_status", u.TravelInsuranceStatus},
		{"relationship_with_companion", u.RelationshipWithCompanion},
		{"cities_to_visit", joinList(u.CitiesToVisit)},
		{"accompanying_persons", joinList(u.AccompanyingPersons)},
		{"note", u.Note},
	})

	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// BuildVisaRelevance distills the fields a reviewer cross-checks into short
// "Label: k=v" argument items.
func BuildVisaRelevance(extracted domain.ExtractedRecords) []string {
	var items []string

	appendItem := func(label string, fields []fieldLine) {
		var parts []string
		for _, f := range fields {
			if f.value == "" {
				continue
			}
			parts = append(parts, f.key+"="+f.value)
		}
		if len(parts) > 0 {
			items = append(items, label+": "+strings.Join(parts, ", "))
		}
	}

	p := extracted.Personal.Record
	appendItem("Identity", []fieldLine{
		{"full_name", p.FullName},
		{"passport_number", p.PassportNumber},
		{"nationality", p.Nationality},
	})

	e := extracted.Employment.Record
	appendItem("Employment", []fieldLine{
		{"employment_type", e.EmploymentType},
		{"company_name", e.CompanyName},
		{"business_name", e.BusinessName},
		{"job_title", e.JobTitle},
	})

	f := extracted.Financial.Record
	appendItem("Financial", []fieldLine{
		{"current_account_balance", f.CurrentAccountBalance},
		{"savings_balance", f.SavingsBalance},
		{"asset_list", joinList(f.AssetList)},
	})

	t := extracted.TravelHistory.Record
	appendItem("TravelHistory", []fieldLine{
		{"previous_countries_visited", joinList(t.PreviousCountriesVisited)},
		{"overstay_history", t.OverstayHistory},
	})

	u := extracted.Purpose.Record
	appendItem("PurposeOfTravel", []fieldLine{
		{"travel_purpose", u.TravelPurpose},
		{"destination_country", u.DestinationCountry},
		{"travel_start_date", u.TravelStartDate},
		{"travel_end_date", u.TravelEndDate},
	})

	return items
}

type fieldLine struct {
	key   string
	value string
}

func joinList(values []string) string {
	var kept []string
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			continue
		}
		kept = append(kept, v)
	}
	return strings.Join(kept, ", ")
}
