package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/haiminh-dev/visadossier/internal/core/domain"
)

// runExtract asks the model for one structured record per domain that has
// absorbed files. The five calls run concurrently. A domain with no files is
// short-circuited to its empty record without touching the model, so a
// sparse dossier costs only as many calls as it has populated domains.
func (uc *PipelineUseCase) runExtract(ctx context.Context, state domain.PipelineState) (domain.PipelineState, []byte, error) {
	grouped := state.FilesByDomain()
	texts := func(d domain.Domain) []string {
		var out []string
		for _, f := range grouped[d] {
			if f.Content != "" {
				out = append(out, f.Content)
			}
		}
		return out
	}

	next := state.Clone()
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rec, err := extractDomain[domain.PersonalRecord](gctx, uc, domain.DomainPersonal, identityExtractPrompt, texts(domain.DomainPersonal))
		next.Extracted.Personal = rec
		return err
	})
	g.Go(func() error {
		rec, err := extractDomain[domain.TravelHistoryRecord](gctx, uc, domain.DomainTravelHistory, travelHistoryExtractPrompt, texts(domain.DomainTravelHistory))
		next.Extracted.TravelHistory = rec
		return err
	})
	g.Go(func() error {
		rec, err := extractDomain[domain.EmploymentRecord](gctx, uc, domain.DomainEmployment, employmentExtractPrompt, texts(domain.DomainEmployment))
		next.Extracted.Employment = rec
		return err
	})
	g.Go(func() error {
		rec, err := extractDomain[domain.FinancialRecord](gctx, uc, domain.DomainFinancial, financialExtractPrompt, texts(domain.DomainFinancial))
		next.Extracted.Financial = rec
		return err
	})
	g.Go(func() error {
		rec, err := extractDomain[domain.PurposeRecord](gctx, uc, domain.DomainPurpose, purposeExtractPrompt, texts(domain.DomainPurpose))
		next.Extracted.Purpose = rec
		return err
	})
	if err := g.Wait(); err != nil {
		return state, nil, err
	}

	artifact, err := marshalArtifact(next.Extracted)
	if err != nil {
		return state, nil, err
	}
	return next, artifact, nil
}

// extractDomain runs one domain extraction. A reply that is not valid JSON
// is preserved verbatim as a degraded record instead of failing the step.
func extractDomain[T any](ctx context.Context, uc *PipelineUseCase, d domain.Domain, prompt string, texts []string) (domain.RecordOf[T], error) {
	var out domain.RecordOf[T]
	if len(texts) == 0 {
		return out, nil
	}

	content := strings.Join(texts, "\n\n")
	reply, err := uc.model.GenerateJSON(ctx, systemBase+"\n"+fmt.Sprintf(prompt, content))
	if err != nil {
		return out, domain.WrapError(domain.ErrExternalCall, "extract "+string(d), err)
	}

	if err := json.Unmarshal([]byte(reply), &out.Record); err != nil {
		uc.logger.Warn("model reply not valid JSON, keeping raw output", "domain", d)
		out.Record = *new(T)
		out.RawOutput = reply
	}
	return out, nil
}
