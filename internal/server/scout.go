package server

import (
	"context"
	"errors"
	"net/http"
	"valorant-scout/internal/domain"
	"valorant-scout/internal/service"
	"valorant-scout/internal/vlr"

	"connectrpc.com/connect"
	"github.com/rs/zerolog"
)

const ScoutServicePath = "/scout.v1.ScoutService/"

const (
	PingProcedure            = ScoutServicePath + "Ping"
	GetMapStatsProcedure     = ScoutServicePath + "GetMapStats"
	GetTeamMapStatsProcedure = ScoutServicePath + "GetTeamMapStats"
	SetDateWindowProcedure   = ScoutServicePath + "SetDateWindow"
	ResolveTeamProcedure     = ScoutServicePath + "ResolveTeam"
)

type StatsLinker interface {
	StatsURL(teamID string, window domain.DateWindow) (string, error)
}

type ScoutServer struct {
	scout  *service.Scout
	links  StatsLinker
	logger zerolog.Logger
}

func NewScoutServer(scout *service.Scout, links StatsLinker, logger zerolog.Logger) *ScoutServer {
	return &ScoutServer{scout: scout, links: links, logger: logger.With().Str("component", "server").Logger()}
}

// Handler routes every ScoutService procedure and returns the path prefix to
// mount it under.
func (s *ScoutServer) Handler(opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{WithJSON()}, opts...)

	mux := http.NewServeMux()
	mux.Handle(PingProcedure, connect.NewUnaryHandler(PingProcedure, s.Ping, opts...))
	mux.Handle(GetMapStatsProcedure, connect.NewUnaryHandler(GetMapStatsProcedure, s.GetMapStats, opts...))
	mux.Handle(GetTeamMapStatsProcedure, connect.NewUnaryHandler(GetTeamMapStatsProcedure, s.GetTeamMapStats, opts...))
	mux.Handle(SetDateWindowProcedure, connect.NewUnaryHandler(SetDateWindowProcedure, s.SetDateWindow, opts...))
	mux.Handle(ResolveTeamProcedure, connect.NewUnaryHandler(ResolveTeamProcedure, s.ResolveTeam, opts...))

	return ScoutServicePath, mux
}

func (s *ScoutServer) Ping(ctx context.Context, req *connect.Request[PingRequest]) (*connect.Response[PingResponse], error) {
	return connect.NewResponse(&PingResponse{Message: "scout service is working"}), nil
}

func (s *ScoutServer) GetMapStats(ctx context.Context, req *connect.Request[GetMapStatsRequest]) (*connect.Response[GetMapStatsResponse], error) {
	teamID, err := s.teamID(req.Msg.TeamID)
	if err != nil {
		return nil, err
	}
	window, err := s.resolveWindow(ctx, req.Msg.Window)
	if err != nil {
		return nil, err
	}

	record, err := s.scout.MapStats(ctx, teamID, req.Msg.MapName, window)
	resp := &GetMapStatsResponse{Window: window.Key()}
	switch {
	case err == nil:
		resp.Found = true
		resp.Stats = record
	case errors.Is(err, service.ErrNotFound):
	default:
		return nil, s.toConnectError(err)
	}

	return connect.NewResponse(resp), nil
}

func (s *ScoutServer) GetTeamMapStats(ctx context.Context, req *connect.Request[GetTeamMapStatsRequest]) (*connect.Response[GetTeamMapStatsResponse], error) {
	teamID, err := s.teamID(req.Msg.TeamID)
	if err != nil {
		return nil, err
	}
	window, err := s.resolveWindow(ctx, req.Msg.Window)
	if err != nil {
		return nil, err
	}

	results := s.scout.TeamMapStats(ctx, teamID, req.Msg.Maps, window)

	resp := &GetTeamMapStatsResponse{
		TeamID:  teamID,
		Window:  window.Key(),
		Results: make([]MapStatsResult, 0, len(results)),
	}
	for _, r := range results {
		item := MapStatsResult{
			MapName: r.MapName,
			Status:  string(r.Status),
			Stats:   r.Record,
		}
		if r.Status == service.StatusUnavailable && r.Err != nil {
			item.Error = r.Err.Error()
		}
		resp.Results = append(resp.Results, item)
	}

	return connect.NewResponse(resp), nil
}

func (s *ScoutServer) SetDateWindow(ctx context.Context, req *connect.Request[SetDateWindowRequest]) (*connect.Response[SetDateWindowResponse], error) {
	cleared, err := s.scout.SetWindow(ctx, req.Msg.Window)
	if err != nil {
		return nil, s.toConnectError(err)
	}
	return connect.NewResponse(&SetDateWindowResponse{
		Window:  req.Msg.Window.Key(),
		Cleared: cleared,
	}), nil
}

func (s *ScoutServer) ResolveTeam(ctx context.Context, req *connect.Request[ResolveTeamRequest]) (*connect.Response[ResolveTeamResponse], error) {
	teamID, err := s.teamID(req.Msg.URL)
	if err != nil {
		return nil, err
	}
	link, err := s.links.StatsURL(teamID, s.scout.Window())
	if err != nil {
		return nil, s.toConnectError(err)
	}
	return connect.NewResponse(&ResolveTeamResponse{TeamID: teamID, StatsURL: link}), nil
}

func (s *ScoutServer) teamID(raw string) (string, error) {
	id, ok := vlr.TeamIDFromURL(raw)
	if !ok {
		return "", connect.NewError(connect.CodeInvalidArgument, errors.New("team id or team link is required"))
	}
	return id, nil
}

// resolveWindow fixes the window a request runs in: the requested one, which
// also becomes the active window, else a snapshot of the active one. The
// result is used for the whole request even if the active window changes.
func (s *ScoutServer) resolveWindow(ctx context.Context, window *domain.DateWindow) (domain.DateWindow, error) {
	if window == nil || window.IsZero() {
		return s.scout.Window(), nil
	}
	if _, err := s.scout.SetWindow(ctx, *window); err != nil {
		return domain.DateWindow{}, s.toConnectError(err)
	}
	return *window, nil
}

func (s *ScoutServer) toConnectError(err error) error {
	var transportErr *vlr.TransportError
	switch {
	case errors.Is(err, service.ErrInvalidArgument), errors.Is(err, vlr.ErrInvalidRequest):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.As(err, &transportErr):
		return connect.NewError(connect.CodeUnavailable, err)
	case errors.Is(err, context.DeadlineExceeded):
		return connect.NewError(connect.CodeDeadlineExceeded, err)
	case errors.Is(err, context.Canceled):
		return connect.NewError(connect.CodeCanceled, err)
	default:
		s.logger.Error().Err(err).Msg("unexpected scout error")
		return connect.NewError(connect.CodeInternal, err)
	}
}
