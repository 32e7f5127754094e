// Package mcp exposes the GA4 Admin tools over the Model Context Protocol.
//
// Read-only tools enumerate accounts, properties, and data streams. Mutating
// tools run a guarded pipeline: discovery when parameters are missing,
// vagueness screening, a dry-run preview bound to a single-use confirmation
// token, and execution only when the caller echoes that token back.
package mcp

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dogancanbaris/WPP-mcp-servers-sub001/internal/analytics"
	"github.com/dogancanbaris/WPP-mcp-servers-sub001/internal/approval"
	"github.com/dogancanbaris/WPP-mcp-servers-sub001/internal/auth"
	"github.com/dogancanbaris/WPP-mcp-servers-sub001/internal/config"
	cerrors "github.com/dogancanbaris/WPP-mcp-servers-sub001/internal/errors"
	"github.com/dogancanbaris/WPP-mcp-servers-sub001/internal/logging"
	"github.com/dogancanbaris/WPP-mcp-servers-sub001/internal/metrics"
	"github.com/dogancanbaris/WPP-mcp-servers-sub001/internal/snapshot"
	"github.com/dogancanbaris/WPP-mcp-servers-sub001/internal/vagueness"
)

const serviceAnalytics = "analytics"

// Deps are the collaborators a Server needs. Zero-value fields get production
// defaults in NewServer; tests inject fakes.
type Deps struct {
	Admin     analytics.AdminAPI
	Store     approval.Store
	Extractor *auth.Extractor
	Logger    logging.Logger
}

type Server struct {
	cfg       *config.Config
	admin     analytics.AdminAPI
	store     approval.Store
	enforcer  *approval.Enforcer
	detector  *vagueness.Detector
	extractor *auth.Extractor
	snapshots *snapshot.Manager
	metrics   *metrics.Metrics
	logger    logging.Logger

	mcp *mcp.Server
}

// NewServer wires the tool set against the given config and collaborators.
func NewServer(cfg *config.Config, deps Deps) *Server {
	if cfg == nil {
		cfg = config.Default()
	}

	logger := deps.Logger
	if logger == nil {
		logger = logging.GetLogger()
	}

	admin := deps.Admin
	if admin == nil {
		admin = analytics.NewClient(analytics.ClientOptions{
			BaseURL:           cfg.Analytics.BaseURL,
			Timeout:           cfg.Analytics.Timeout(),
			RequestsPerSecond: cfg.Analytics.RequestsPerSecond,
			Burst:             cfg.Analytics.Burst,
			Logger:            logger,
		})
	}

	store := deps.Store
	if store == nil {
		if cfg.Approval.RedisAddr != "" {
			store = approval.NewRedisStoreFromConfig(
				cfg.Approval.RedisAddr, cfg.Approval.RedisPassword, cfg.Approval.RedisDB,
				approval.StoreOptions{TTL: cfg.Approval.TTL(), MaxPending: cfg.Approval.MaxPending})
		} else {
			store = approval.NewMemoryStore(approval.StoreOptions{
				TTL:        cfg.Approval.TTL(),
				MaxPending: cfg.Approval.MaxPending,
			})
		}
	}

	extractor := deps.Extractor
	if extractor == nil {
		extractor = auth.NewExtractor(cfg.Analytics.TokenFile, logger)
	}

	s := &Server{
		cfg:       cfg,
		admin:     admin,
		store:     store,
		enforcer:  approval.NewEnforcer(store, cfg.Approval.TTL(), logger),
		detector:  vagueness.NewDetector(logger),
		extractor: extractor,
		snapshots: snapshot.NewManager(0, logger),
		metrics:   metrics.New(),
		logger:    logger,
	}

	s.mcp = mcp.NewServer(&mcp.Implementation{
		Name:    cfg.Server.Name,
		Version: cfg.Server.Version,
	}, nil)

	s.registerTools()
	return s
}

// MCP returns the underlying protocol server (for custom transports).
func (s *Server) MCP() *mcp.Server { return s.mcp }

// Run serves over stdio until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	if ms, ok := s.store.(*approval.MemoryStore); ok {
		if iv := s.cfg.Approval.SweepInterval(); iv > 0 {
			ms.StartSweep(ctx, iv)
		}
	}
	s.logger.Info("server starting",
		"name", s.cfg.Server.Name,
		"version", s.cfg.Server.Version,
		"approval_ttl_seconds", s.cfg.Approval.TTLSeconds)
	return s.mcp.Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) registerTools() {
	readOnly := &mcp.ToolAnnotations{ReadOnlyHint: true, IdempotentHint: true}
	// Guarded tools mutate external state and are not idempotent: each
	// confirmation token authorizes exactly one execution.
	mutating := &mcp.ToolAnnotations{DestructiveHint: boolPtr(true), OpenWorldHint: boolPtr(true)}

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "list_analytics_accounts",
		Description: "List the Google Analytics accounts the credential can access.",
		Annotations: readOnly,
	}, s.handleListAccounts)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "list_analytics_properties",
		Description: "List GA4 properties under an account. Called without accountId it enumerates the accounts to choose from.",
		Annotations: readOnly,
	}, s.handleListProperties)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "list_data_streams",
		Description: "List data streams under a GA4 property. Called without propertyId it walks account and property discovery first.",
		Annotations: readOnly,
	}, s.handleListDataStreams)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "create_analytics_property",
		Description: guardedDescription("Create a GA4 property under an account."),
		Annotations: mutating,
		InputSchema: buildCreatePropertyInputSchema(),
	}, s.handleCreateProperty)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "create_data_stream",
		Description: guardedDescription("Create a WEB, ANDROID_APP, or IOS_APP data stream under a GA4 property."),
		Annotations: mutating,
		InputSchema: buildCreateDataStreamInputSchema(),
	}, s.handleCreateDataStream)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "create_custom_dimension",
		Description: guardedDescription("Create a custom dimension on a GA4 property."),
		Annotations: mutating,
		InputSchema: buildCreateCustomDimensionInputSchema(),
	}, s.handleCreateCustomDimension)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "create_custom_metric",
		Description: guardedDescription("Create a custom metric on a GA4 property."),
		Annotations: mutating,
		InputSchema: buildCreateCustomMetricInputSchema(),
	}, s.handleCreateCustomMetric)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "create_conversion_event",
		Description: guardedDescription("Mark an event name as a conversion event on a GA4 property."),
		Annotations: mutating,
		InputSchema: buildCreateConversionEventInputSchema(),
	}, s.handleCreateConversionEvent)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "create_google_ads_link",
		Description: guardedDescription("Link a Google Ads customer to a GA4 property."),
		Annotations: mutating,
		InputSchema: buildCreateGoogleAdsLinkInputSchema(),
	}, s.handleCreateGoogleAdsLink)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "stats",
		Description: "Server statistics: request counters, error counts, approval pipeline activity.",
		Annotations: readOnly,
	}, s.handleStats)
}

func guardedDescription(what string) string {
	return what + ` This is a guarded mutation: the first fully-specified call returns a dry-run preview and a single-use confirmation token instead of executing. Review the preview, then call again with confirmationToken to execute. Tokens expire, authorize exactly one execution, and only the exact previewed change.`
}

func boolPtr(b bool) *bool { return &b }

// begin opens the request-scoped logging context and returns the completion
// hook every handler defers: response logging plus metrics.
func (s *Server) begin(ctx context.Context, toolName string, input any) (context.Context, func(output any, err error)) {
	ctx, _ = logging.NewRequestContext(ctx, toolName)
	logging.LogRequest(ctx, input)
	start := time.Now()
	return ctx, func(output any, err error) {
		logging.LogResponse(ctx, output, err)
		s.metrics.RecordRequest(toolName, err == nil, time.Since(start))
		if err != nil {
			var cerr *cerrors.Error
			if stderrors.As(err, &cerr) {
				s.metrics.RecordError(cerr.Code.Name())
			} else {
				s.metrics.RecordError(cerrors.InternalError.Name())
			}
		}
	}
}

// runGuarded executes the preview/confirm phase shared by all mutating tools.
//
// Without a confirmation token it stores the dry-run and returns the preview.
// With one it validates and executes, classifying authorization rejections
// for the approval metrics.
func (s *Server) runGuarded(ctx context.Context, confirmationToken string, dryRun *approval.DryRunResult, effect approval.EffectFunc) (*Approval, any, error) {
	if confirmationToken == "" {
		tokenID, err := s.enforcer.CreateDryRun(ctx, dryRun)
		if err != nil {
			return nil, nil, err
		}
		s.metrics.RecordPreviewIssued()
		return &Approval{
			ConfirmationToken: tokenID,
			Preview:           s.enforcer.FormatDryRunForDisplay(dryRun),
			ExpiresInSeconds:  int(s.enforcer.TTL().Seconds()),
		}, nil, nil
	}

	result, err := s.enforcer.ValidateAndExecute(ctx, confirmationToken, dryRun, effect)
	if err != nil {
		var cerr *cerrors.Error
		if stderrors.As(err, &cerr) {
			switch cerr.Code {
			case cerrors.TokenNotFound, cerrors.TokenExpired,
				cerrors.TokenAlreadyConsumed, cerrors.DryRunMismatch:
				s.metrics.RecordApprovalRejected()
			}
		}
		return nil, nil, err
	}
	s.metrics.RecordApprovalExecuted()
	return nil, result, nil
}

// checkMutationsEnabled fails every guarded tool when the server is deployed
// read-only.
func (s *Server) checkMutationsEnabled() error {
	if s.cfg.Security.DisableMutations {
		return cerrors.New(cerrors.InvalidParams, "mutations are disabled by server configuration")
	}
	return nil
}
