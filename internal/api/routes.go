package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"vision-fit-guide/backend/internal/auth"
	"vision-fit-guide/backend/internal/cache"
	"vision-fit-guide/backend/internal/catalog"
	"vision-fit-guide/backend/internal/notify"
	"vision-fit-guide/backend/internal/scoring"
	"vision-fit-guide/backend/internal/store"
	"vision-fit-guide/backend/internal/util"
)

// Config defines server dependencies.
type Config struct {
	Repository     store.Repository
	StoreDriver    string
	Notifier       *notify.Notifier
	Guard          cache.SubmissionGuard
	Auth           *auth.Service
	AllowedOrigins []string
}

// Server wires HTTP handlers with persistence, scoring and email.
type Server struct {
	repo           store.Repository
	storeDriver    string
	notifier       *notify.Notifier
	guard          cache.SubmissionGuard
	auth           *auth.Service
	allowedOrigins []string
	leadNotifier   *LeadNotifier
}

// NewServer constructs the API server.
func NewServer(cfg Config) (*Server, error) {
	if cfg.Repository == nil {
		return nil, errors.New("repository required")
	}
	guard := cfg.Guard
	if guard == nil {
		guard = cache.NopGuard{}
	}
	authSvc := cfg.Auth
	if authSvc == nil {
		authSvc = auth.NewService(auth.Config{})
	}
	if !authSvc.Enabled() {
		logrus.Info("admin routes disabled - no JWT secret or credentials configured")
	}
	if !cfg.Notifier.Enabled() {
		logrus.Info("lead emails disabled - no sender configured")
	}

	driver := strings.TrimSpace(cfg.StoreDriver)
	if driver == "" {
		driver = store.DriverSQLite
	}

	return &Server{
		repo:           cfg.Repository,
		storeDriver:    driver,
		notifier:       cfg.Notifier,
		guard:          guard,
		auth:           authSvc,
		allowedOrigins: cfg.AllowedOrigins,
		leadNotifier:   NewLeadNotifier(),
	}, nil
}

// Router configures gin routes.
func (s *Server) Router() (*gin.Engine, error) {
	r := gin.Default()

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowCredentials = true
	if len(s.allowedOrigins) == 0 {
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	} else {
		corsCfg.AllowOrigins = s.allowedOrigins
	}
	corsCfg.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	corsCfg.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	r.Use(cors.New(corsCfg))

	r.GET("/api/healthz", s.handleHealth)
	r.GET("/api/config", s.handleConfig)

	api := r.Group("/api")
	{
		api.GET("/countries", s.handleCountries)
		api.POST("/score", s.handleScore)
		api.POST("/fit-guides", s.handleCreateFitGuide)
		api.POST("/admin/login", s.handleLogin)
	}

	admin := r.Group("/api", s.auth.Middleware())
	{
		admin.GET("/fit-guides", s.handleListFitGuides)
		admin.GET("/fit-guides/:id", s.handleGetFitGuide)
		admin.GET("/export.csv", s.handleExportCSV)
		admin.GET("/export.json", s.handleExportJSON)
		admin.GET("/leads/stream", s.handleLeadStream)
	}

	return r, nil
}

// Leads exposes the websocket fan-out so callers can observe new submissions.
func (s *Server) Leads() *LeadNotifier {
	return s.leadNotifier
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleConfig(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"store_driver":        s.storeDriver,
		"email_enabled":       s.notifier.Enabled(),
		"dedupe_enabled":      s.guard.Enabled(),
		"admin_enabled":       s.auth.Enabled(),
		"countries":           len(scoring.Countries),
		"lead_stream_clients": s.leadNotifier.Clients(),
	})
}

func (s *Server) handleCountries(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"items": catalog.All()})
}

func (s *Server) handleScore(c *gin.Context) {
	var req ScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.renderError(c, http.StatusBadRequest, err)
		return
	}
	result, err := scoring.Score(req.Answers)
	if err != nil {
		s.renderValidation(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleCreateFitGuide(c *gin.Context) {
	var req ScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.renderError(c, http.StatusBadRequest, err)
		return
	}
	answers := req.Answers
	if err := answers.ValidateContact(); err != nil {
		s.renderValidation(c, err)
		return
	}

	sw := util.StartStopwatch()
	result, err := scoring.Score(answers)
	if err != nil {
		s.renderValidation(c, err)
		return
	}
	elapsed := sw.Elapsed()

	ctx := c.Request.Context()
	top := result.Top()
	resp := SubmissionResponse{
		Result:   result,
		Greeting: catalog.Greeting(answers.ContactName, answers.ChurchName, top.Country),
		Sections: catalog.Sections(top.Country, answers),
	}

	guide := store.NewFitGuide(answers, result, elapsed)
	guide.PublicID = uuid.NewString()
	resp.ID = guide.PublicID

	key, err := cache.SubmissionKey(answers)
	if err != nil {
		logrus.WithError(err).Warn("submission key")
	} else {
		existingID, claimed, claimErr := s.guard.Claim(ctx, key, guide.PublicID)
		switch {
		case claimErr != nil:
			logrus.WithError(claimErr).Warn("submission guard unavailable, continuing without dedupe")
		case !claimed:
			s.renderDuplicate(c, resp, existingID)
			return
		}
	}

	fields := logrus.Fields{
		"id":         guide.PublicID,
		"church":     guide.ChurchName,
		"top":        guide.TopCountry,
		"confidence": guide.ConfidenceLevel,
	}

	var problems []string
	if err := s.repo.SaveFitGuide(ctx, guide); err != nil {
		logrus.WithFields(fields).WithError(err).Error("save fit guide")
		problems = append(problems, "save: "+err.Error())
		if key != "" {
			if relErr := s.guard.Release(ctx, key); relErr != nil {
				logrus.WithError(relErr).Warn("release submission key")
			}
		}
	} else {
		resp.Status.Saved = true
	}

	report := s.notifier.NotifyLead(ctx, notify.Lead{PublicID: guide.PublicID, Answers: answers, Result: result})
	resp.Status.InternalEmail = string(report.Internal)
	resp.Status.PastorEmail = string(report.Pastor)
	if msg := report.Error(); msg != "" {
		problems = append(problems, msg)
	}

	guide.InternalEmailStatus = emailStatus(report.Internal)
	guide.PastorEmailStatus = emailStatus(report.Pastor)
	guide.EmailError = report.Error()
	if resp.Status.Saved {
		status := store.NotificationStatus{Internal: guide.InternalEmailStatus, Pastor: guide.PastorEmailStatus, Error: guide.EmailError}
		if err := s.repo.UpdateNotificationStatus(ctx, guide.PublicID, status); err != nil {
			logrus.WithFields(fields).WithError(err).Warn("record email status")
		}
		if guide.CreatedAt.IsZero() {
			guide.CreatedAt = time.Now().UTC()
		}
		dto := FromModel(*guide)
		s.leadNotifier.Broadcast(LeadEvent{Type: "lead", Lead: &dto})
	}

	resp.Status.Error = strings.Join(problems, "; ")
	logrus.WithFields(fields).WithFields(logrus.Fields{
		"saved":          resp.Status.Saved,
		"internal_email": resp.Status.InternalEmail,
		"pastor_email":   resp.Status.PastorEmail,
		"elapsed_ms":     guide.ProcessingTimeMs,
	}).Info("fit guide submitted")

	c.JSON(http.StatusCreated, resp)
}

// renderDuplicate answers a repeated submission with the guide that was already saved.
func (s *Server) renderDuplicate(c *gin.Context, resp SubmissionResponse, existingID string) {
	resp.ID = existingID
	resp.Status = SubmissionStatus{
		Duplicate:     true,
		InternalEmail: store.EmailSkipped,
		PastorEmail:   store.EmailSkipped,
	}
	existing, err := s.repo.GetFitGuide(c.Request.Context(), existingID)
	switch {
	case err == nil:
		resp.Result = existing.Result()
		resp.Status.Saved = true
		resp.Status.InternalEmail = existing.InternalEmailStatus
		resp.Status.PastorEmail = existing.PastorEmailStatus
	case errors.Is(err, store.ErrNotFound):
		// The first submission is still in flight; the recomputed result is identical.
	default:
		logrus.WithError(err).WithField("id", existingID).Warn("load duplicate fit guide")
	}
	logrus.WithField("id", existingID).Info("duplicate fit guide submission")
	c.JSON(http.StatusOK, resp)
}

// emailStatus maps a delivery outcome onto the status stored with the guide.
func emailStatus(status notify.Status) string {
	switch status {
	case notify.StatusSent:
		return store.EmailSent
	case notify.StatusLogged:
		return store.EmailLogged
	case notify.StatusFailed:
		return store.EmailFailed
	case notify.StatusSkipped:
		return store.EmailSkipped
	default:
		return store.EmailPending
	}
}

func (s *Server) handleLogin(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.renderError(c, http.StatusBadRequest, err)
		return
	}
	token, err := s.auth.Login(req.Username, req.Password)
	switch {
	case errors.Is(err, auth.ErrDisabled):
		s.renderError(c, http.StatusServiceUnavailable, err)
		return
	case errors.Is(err, auth.ErrInvalidCredentials):
		logrus.WithField("username", req.Username).Warn("admin login rejected")
		s.renderError(c, http.StatusUnauthorized, err)
		return
	case err != nil:
		s.renderError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

func (s *Server) renderValidation(c *gin.Context, err error) {
	var verr *scoring.ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error(), "field": verr.Field})
		return
	}
	s.renderError(c, http.StatusBadRequest, err)
}

func (s *Server) renderError(c *gin.Context, status int, err error) {
	c.JSON(status, gin.H{"error": err.Error()})
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
