package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/haiminh-dev/visadossier/internal/core/domain"
)

// runSummary is purely deterministic: it renders the extracted records into
// the profile and relevance arguments without any model call.
func (uc *PipelineUseCase) runSummary(_ context.Context, state domain.PipelineState) (domain.PipelineState, []byte, error) {
	next := state.Clone()
	next.SummaryProfile = BuildSummaryProfile(state.Extracted)
	next.VisaRelevance = strings.Join(BuildVisaRelevance(state.Extracted), "\n")
	return next, []byte(next.SummaryProfile), nil
}

func (uc *PipelineUseCase) runRisk(ctx context.Context, state domain.PipelineState) (domain.PipelineState, []byte, error) {
	inputs := map[string]any{
		"Identity":        recordOrRaw(state.Extracted.Personal),
		"TravelHistory":   recordOrRaw(state.Extracted.TravelHistory),
		"Employment":      recordOrRaw(state.Extracted.Employment),
		"Financial":       recordOrRaw(state.Extracted.Financial),
		"PurposeOfTravel": recordOrRaw(state.Extracted.Purpose),
	}
	encoded, err := json.Marshal(inputs)
	if err != nil {
		return state, nil, fmt.Errorf("encode risk inputs: %w", err)
	}

	reply, err := uc.model.GenerateJSON(ctx, systemBase+"\n"+fmt.Sprintf(riskPrompt, encoded))
	if err != nil {
		return state, nil, domain.WrapError(domain.ErrExternalCall, "find risk points", err)
	}

	var parsed struct {
		RiskPoints []domain.RiskPoint `json:"risk_points"`
	}
	if err := json.Unmarshal([]byte(reply), &parsed); err != nil {
		// An unparseable reply degrades to "no concerns found" instead of
		// blocking the letter writer.
		uc.logger.Warn("risk reply not valid JSON, treating as empty")
	}
	if parsed.RiskPoints == nil {
		parsed.RiskPoints = []domain.RiskPoint{}
	}

	next := state.Clone()
	next.RiskPoints = parsed.RiskPoints

	artifact, err := marshalArtifact(next.RiskPoints)
	if err != nil {
		return state, nil, err
	}
	return next, artifact, nil
}

func (uc *PipelineUseCase) runWriter(ctx context.Context, state domain.PipelineState) (domain.PipelineState, []byte, error) {
	report := FormatRiskReport(state.RiskPoints)
	prompt := systemBase + "\n" + fmt.Sprintf(letterWriterPrompt, state.SummaryProfile, state.VisaRelevance, report)
	if extra := strings.TrimSpace(state.WriterContext); extra != "" {
		prompt += "\n\nTHÔNG TIN BỔ SUNG TỪ NGƯỜI DÙNG (ƯU TIÊN SỬ DỤNG NẾU KHÔNG MÂU THUẪN INPUT):\n" + extra + "\n"
	}

	letter, err := uc.model.Generate(ctx, prompt)
	if err != nil {
		return state, nil, domain.WrapError(domain.ErrExternalCall, "write letter", err)
	}

	next := state.Clone()
	next.Letter = letter
	return next, []byte(letter), nil
}

// FormatRiskReport renders risk points as the numbered Vietnamese report
// embedded in the letter prompt.
func FormatRiskReport(points []domain.RiskPoint) string {
	if len(points) == 0 {
		return "Chưa có dữ liệu rủi ro (risk_points trống)."
	}

	lines := []string{
		"BÁO CÁO RỦI RO (ĐIỂM CẦN GIẢI TRÌNH)",
		"(Tự động tạo từ bước 'Điểm cần giải trình')",
		"",
	}
	for i, item := range points {
		title := strings.TrimSpace(item.RiskType)
		if sev := strings.TrimSpace(item.Severity); sev != "" {
			if title != "" {
				title += " | " + sev
			} else {
				title = sev
			}
		}
		if title == "" {
			title = fmt.Sprintf("Risk #%d", i+1)
		}
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, title))
		if desc := strings.TrimSpace(item.Description); desc != "" {
			lines = append(lines, "   - Mô tả: "+desc)
		}
		if dir := strings.TrimSpace(item.SuggestedExplanationDirection); dir != "" {
			lines = append(lines, "   - Hướng giải trình gợi ý: "+dir)
		}
		lines = append(lines, "")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func recordOrRaw[T any](rec domain.RecordOf[T]) any {
	if rec.Degraded() {
		return map[string]string{"raw_output": rec.RawOutput}
	}
	return rec.Record
}
