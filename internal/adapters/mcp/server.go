package mcpadapter

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/haiminh-dev/visadossier/internal/core/domain"
	"github.com/haiminh-dev/visadossier/internal/core/ports"
)

// Server exposes the pipeline operations as MCP tools so an agent host can
// drive dossier preparation step by step.
type Server struct {
	pipeline ports.PipelineRunner
	absorber ports.FileAbsorber
	reader   ports.PipelineReader
	planner  ports.ItineraryPlanner
	bookings ports.BookingService
}

func NewServer(
	pipeline ports.PipelineRunner,
	absorber ports.FileAbsorber,
	reader ports.PipelineReader,
	planner ports.ItineraryPlanner,
	bookings ports.BookingService,
) *Server {
	return &Server{
		pipeline: pipeline,
		absorber: absorber,
		reader:   reader,
		planner:  planner,
		bookings: bookings,
	}
}

// MCPServer builds the tool server. Serve it over stdio with
// server.ServeStdio.
func (s *Server) MCPServer(version string) *server.MCPServer {
	srv := server.NewMCPServer("visadossier", version, server.WithToolCapabilities(false))

	srv.AddTool(mcp.NewTool("run_step",
		mcp.WithDescription("Run one pipeline step (ingest, extract, summary, risk, writer). Completed steps are skipped unless force is set; forcing invalidates everything downstream."),
		mcp.WithString("step", mcp.Required(), mcp.Description("Step name: ingest, extract, summary, risk or writer.")),
		mcp.WithBoolean("force", mcp.Description("Recompute even when the step is already done.")),
	), s.runStep)

	srv.AddTool(mcp.NewTool("run_all",
		mcp.WithDescription("Run the full pipeline in canonical order and return the generated letter."),
		mcp.WithBoolean("force", mcp.Description("Recompute every step from scratch.")),
	), s.runAll)

	srv.AddTool(mcp.NewTool("add_file",
		mcp.WithDescription("Absorb one new or changed input file without re-ingesting the rest. Steps after ingest re-run and the letter is regenerated."),
		mcp.WithString("path", mcp.Required(), mcp.Description("File path, relative to the input directory.")),
	), s.addFile)

	srv.AddTool(mcp.NewTool("get_status",
		mcp.WithDescription("Completion markers for every pipeline step plus the absorbed input files."),
	), s.getStatus)

	srv.AddTool(mcp.NewTool("get_artifact",
		mcp.WithDescription("Raw cached artifact of a completed step."),
		mcp.WithString("step", mcp.Required(), mcp.Description("Step name: ingest, extract, summary, risk or writer.")),
	), s.getArtifact)

	srv.AddTool(mcp.NewTool("set_writer_context",
		mcp.WithDescription("Save extra user guidance for letter generation, applied on the next writer run."),
		mcp.WithString("text", mcp.Required(), mcp.Description("Guidance text, free form.")),
	), s.setWriterContext)

	srv.AddTool(mcp.NewTool("get_trip_info",
		mcp.WithDescription("Trip details extracted from the input documents, cached between calls."),
		mcp.WithBoolean("force", mcp.Description("Re-extract even when cached.")),
	), s.getTripInfo)

	srv.AddTool(mcp.NewTool("propose_bookings",
		mcp.WithDescription("Propose provisional hotel and flight bookings for the extracted trip."),
		mcp.WithBoolean("force", mcp.Description("Regenerate even when cached.")),
	), s.proposeBookings)

	srv.AddTool(mcp.NewTool("build_itinerary",
		mcp.WithDescription("Render the printable day-by-day itinerary from the proposed bookings."),
		mcp.WithBoolean("force", mcp.Description("Regenerate even when cached.")),
	), s.buildItinerary)

	return srv
}

func (s *Server) runStep(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	step, err := request.RequireString("step")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	force := request.GetBool("force", false)

	state, err := s.pipeline.RunStep(ctx, domain.Step(step), force)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(stateSummary(state))
}

func (s *Server) runAll(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	state, err := s.pipeline.RunAll(ctx, request.GetBool("force", false))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(stateSummary(state))
}

func (s *Server) addFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	state, err := s.absorber.AddFile(ctx, path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(stateSummary(state))
}

func (s *Server) getStatus(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	status, err := s.reader.StepStatus(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	state, err := s.reader.State(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	steps := make(map[string]bool, len(status))
	for step, done := range status {
		steps[string(step)] = done
	}
	files := make([]map[string]string, 0, len(state.Files))
	for _, f := range state.Files {
		files = append(files, map[string]string{"path": f.Path, "domain": string(f.Domain)})
	}
	return jsonResult(map[string]any{"steps": steps, "files": files})
}

func (s *Server) getArtifact(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	step, err := request.RequireString("step")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	data, err := s.reader.Artifact(ctx, domain.Step(step))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) setWriterContext(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := request.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.pipeline.SetWriterContext(ctx, text); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText("writer context saved"), nil
}

func (s *Server) getTripInfo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	trip, err := s.bookings.TripInfo(ctx, request.GetBool("force", false))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(trip)
}

func (s *Server) proposeBookings(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	selection, err := s.bookings.ProposeBookings(ctx, request.GetBool("force", false))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(selection)
}

func (s *Server) buildItinerary(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	itinerary, err := s.planner.BuildItinerary(ctx, request.GetBool("force", false))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(itinerary), nil
}

func stateSummary(state domain.PipelineState) map[string]any {
	return map[string]any{
		"files":           len(state.Files),
		"summary_profile": state.SummaryProfile,
		"risk_points":     state.RiskPoints,
		"letter":          state.Letter,
	}
}

func jsonResult(payload any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode tool result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}
