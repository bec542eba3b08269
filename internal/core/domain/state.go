package domain

// Step identifies one stage of the document pipeline.
type Step string

const (
	StepIngest  Step = "ingest"
	StepExtract Step = "extract"
	StepSummary Step = "summary"
	StepRisk    Step = "risk"
	StepWriter  Step = "writer"
)

// Steps returns the canonical execution order. Callers must not mutate the
// returned slice.
func Steps() []Step {
	return []Step{StepIngest, StepExtract, StepSummary, StepRisk, StepWriter}
}

// StepIndex reports the position of s in the canonical order.
func StepIndex(s Step) (int, bool) {
	for i, step := range Steps() {
		if step == s {
			return i, true
		}
	}
	return 0, false
}

// Downstream returns every step strictly after s in the canonical order.
// An unknown step has no downstream.
func Downstream(s Step) []Step {
	idx, ok := StepIndex(s)
	if !ok {
		return nil
	}
	return Steps()[idx+1:]
}

// Upstream returns every step strictly before s in the canonical order.
func Upstream(s Step) []Step {
	idx, ok := StepIndex(s)
	if !ok {
		return nil
	}
	return Steps()[:idx]
}

// InputFile is one absorbed source document. Content holds the extracted
// plain text, not the raw bytes.
type InputFile struct {
	Path     string `json:"path"`
	FileName string `json:"file_name"`
	Domain   Domain `json:"domain"`
	Content  string `json:"content"`
}

// PipelineState aggregates everything the pipeline has produced so far.
// Operations treat it as a value: they clone, modify the clone and return it,
// so a failed step never leaves a half-updated state behind.
type PipelineState struct {
	Files          []InputFile      `json:"files"`
	Extracted      ExtractedRecords `json:"extracted"`
	SummaryProfile string           `json:"summary_profile"`
	VisaRelevance  string           `json:"visa_relevance"`
	RiskPoints     []RiskPoint      `json:"risk_points"`
	Letter         string           `json:"letter"`
	WriterContext  string           `json:"writer_context,omitempty"`
}

// Clone returns a deep copy. Slices are copied so mutations of the clone
// never leak into the receiver.
func (s PipelineState) Clone() PipelineState {
	out := s
	if s.Files != nil {
		out.Files = make([]InputFile, len(s.Files))
		copy(out.Files, s.Files)
	}
	if s.RiskPoints != nil {
		out.RiskPoints = make([]RiskPoint, len(s.RiskPoints))
		copy(out.RiskPoints, s.RiskPoints)
	}
	out.Extracted = s.Extracted.clone()
	return out
}

func (e ExtractedRecords) clone() ExtractedRecords {
	out := e
	out.Personal.Record.FamilyMembersInVN = cloneStrings(e.Personal.Record.FamilyMembersInVN)
	out.TravelHistory.Record.PreviousCountriesVisited = cloneStrings(e.TravelHistory.Record.PreviousCountriesVisited)
	out.TravelHistory.Record.PreviousVisaTypes = cloneStrings(e.TravelHistory.Record.PreviousVisaTypes)
	out.Employment.Record.MainIncomeSources = cloneStrings(e.Employment.Record.MainIncomeSources)
	out.Financial.Record.AssetList = cloneStrings(e.Financial.Record.AssetList)
	out.Purpose.Record.CitiesToVisit = cloneStrings(e.Purpose.Record.CitiesToVisit)
	out.Purpose.Record.AccompanyingPersons = cloneStrings(e.Purpose.Record.AccompanyingPersons)
	return out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

// FilesByDomain groups absorbed files by recognized domain. Files classified
// as unknown are left out; extraction has nothing to do with them.
func (s PipelineState) FilesByDomain() map[Domain][]InputFile {
	grouped := make(map[Domain][]InputFile)
	for _, f := range s.Files {
		if !f.Domain.Recognized() {
			continue
		}
		grouped[f.Domain] = append(grouped[f.Domain], f)
	}
	return grouped
}
