package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dogancanbaris/WPP-mcp-servers-sub001/internal/metrics"
)

type StatsInput struct{}

type StatsOutput struct {
	Name    string `json:"name"`
	Version string `json:"version"`

	Metrics metrics.Snapshot `json:"metrics"`

	// PendingApprovals is the live count of unconsumed, unexpired tokens.
	PendingApprovals int `json:"pendingApprovals"`
	// SnapshotCount is the number of retained pre-mutation snapshots.
	SnapshotCount int `json:"snapshotCount"`
}

func (s *Server) handleStats(ctx context.Context, req *mcp.CallToolRequest, input StatsInput) (_ *mcp.CallToolResult, output StatsOutput, err error) {
	ctx, done := s.begin(ctx, "stats", input)
	defer func() { done(output, err) }()

	output = StatsOutput{
		Name:             s.cfg.Server.Name,
		Version:          s.cfg.Server.Version,
		Metrics:          s.metrics.Snapshot(),
		PendingApprovals: s.store.Pending(ctx),
		SnapshotCount:    s.snapshots.Count(),
	}
	return nil, output, nil
}
