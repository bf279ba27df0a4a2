package server

import "valorant-scout/internal/domain"

type PingRequest struct{}

type PingResponse struct {
	Message string `json:"message"`
}

type GetMapStatsRequest struct {
	TeamID  string             `json:"team_id"`
	MapName string             `json:"map_name"`
	Window  *domain.DateWindow `json:"window,omitempty"`
}

type GetMapStatsResponse struct {
	Found  bool                         `json:"found"`
	Window string                       `json:"window"`
	Stats  *domain.MapPerformanceRecord `json:"stats,omitempty"`
}

type GetTeamMapStatsRequest struct {
	TeamID string             `json:"team_id"`
	Maps   []string           `json:"maps,omitempty"`
	Window *domain.DateWindow `json:"window,omitempty"`
}

type MapStatsResult struct {
	MapName string                       `json:"map_name"`
	Status  string                       `json:"status"`
	Stats   *domain.MapPerformanceRecord `json:"stats,omitempty"`
	Error   string                       `json:"error,omitempty"`
}

type GetTeamMapStatsResponse struct {
	TeamID  string           `json:"team_id"`
	Window  string           `json:"window"`
	Results []MapStatsResult `json:"results"`
}

type SetDateWindowRequest struct {
	Window domain.DateWindow `json:"window"`
}

type SetDateWindowResponse struct {
	Window  string `json:"window"`
	Cleared bool   `json:"cleared"`
}

type ResolveTeamRequest struct {
	URL string `json:"url"`
}

type ResolveTeamResponse struct {
	TeamID   string `json:"team_id"`
	StatsURL string `json:"stats_url"`
}
