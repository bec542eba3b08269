package usecase

import (
	"strings"
	"testing"

	"github.com/haiminh-dev/visadossier/internal/core/domain"
)

func TestBuildSummaryProfileOmitsEmptySections(t *testing.T) {
	extracted := domain.ExtractedRecords{
		Personal: domain.RecordOf[domain.PersonalRecord]{Record: domain.PersonalRecord{
			FullName:       "Nguyen Van A",
			PassportNumber: "C1234567",
		}},
		Employment: domain.RecordOf[domain.EmploymentRecord]{Record: domain.EmploymentRecord{
			EmploymentType: "employee",
			CompanyName:    "Quasar Software",
		}},
	}

	profile := BuildSummaryProfile(extracted)

	if !strings.Contains(profile, "Thông tin định danh:") {
		t.Fatalf("missing identity section:\n%s", profile)
	}
	if !strings.Contains(profile, "Công việc & thu nhập:") {
		t.Fatalf("missing employment section:\n%s", profile)
	}
	if strings.Contains(profile, "Tài chính & tài sản:") {
		t.Fatalf("all-empty financial record must not render a section:\n%s", profile)
	}
	if strings.Contains(profile, "Lịch sử du lịch & visa:") {
		t.Fatalf("all-empty travel record must not render a section:\n%s", profile)
	}
	if !strings.Contains(profile, "- full_name: Nguyen Van A") {
		t.Fatalf("field line missing:\n%s", profile)
	}
	if again := BuildSummaryProfile(extracted); again != profile {
		t.Fatalf("profile not byte-identical across calls:\n%s\n----\n%s", profile, again)
	}
}

func TestBuildSummaryProfileListFields(t *testing.T) {
	extracted := domain.ExtractedRecords{
		Financial: domain.RecordOf[domain.FinancialRecord]{Record: domain.FinancialRecord{
			AssetList: []string{"apartment in Hanoi", "", "car"},
		}},
	}

	profile := BuildSummaryProfile(extracted)
	if !strings.Contains(profile, "- asset_list: apartment in Hanoi, car") {
		t.Fatalf("list field rendered wrong:\n%s", profile)
	}
}

func TestBuildSummaryProfileDegradedRecordRendersNothing(t *testing.T) {
	extracted := domain.ExtractedRecords{
		Purpose: domain.RecordOf[domain.PurposeRecord]{RawOutput: "not json"},
	}

	profile := BuildSummaryProfile(extracted)
	if strings.Contains(profile, "Mục đích chuyến đi:") {
		t.Fatalf("degraded record must not render a section:\n%s", profile)
	}
}

func TestBuildVisaRelevance(t *testing.T) {
	extracted := domain.ExtractedRecords{
		Personal: domain.RecordOf[domain.PersonalRecord]{Record: domain.PersonalRecord{
			FullName:    "Nguyen Van A",
			Nationality: "Vietnamese",
		}},
		Purpose: domain.RecordOf[domain.PurposeRecord]{Record: domain.PurposeRecord{
			TravelPurpose:      "Tourism",
			DestinationCountry: "Australia",
		}},
	}

	items := BuildVisaRelevance(extracted)
	if len(items) != 2 {
		t.Fatalf("items = %v, want 2 entries", items)
	}
	if items[0] != "Identity: full_name=Nguyen Van A, nationality=Vietnamese" {
		t.Fatalf("identity item = %q", items[0])
	}
	if items[1] != "PurposeOfTravel: travel_purpose=Tourism, destination_country=Australia" {
		t.Fatalf("purpose item = %q", items[1])
	}
}

func TestFormatRiskReport(t *testing.T) {
	report := FormatRiskReport(nil)
	if !strings.Contains(report, "risk_points trống") {
		t.Fatalf("empty report = %q", report)
	}

	report = FormatRiskReport([]domain.RiskPoint{{
		RiskType:                      "income_gap",
		Severity:                      domain.SeverityMedium,
		Description:                   "three-month gap in statements",
		SuggestedExplanationDirection: "explain the career break",
	}})
	if !strings.Contains(report, "1. income_gap | medium") {
		t.Fatalf("report title wrong:\n%s", report)
	}
	if !strings.Contains(report, "- Mô tả: three-month gap in statements") {
		t.Fatalf("report description wrong:\n%s", report)
	}
}
