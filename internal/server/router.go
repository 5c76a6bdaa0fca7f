package server

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mannskor/ovingslogg/internal/entry"
	"github.com/mannskor/ovingslogg/internal/logbook"
	"go.uber.org/zap"
)

const requestIDContextKey = "ovingslogg_request_id"

var (
	errMissingLogbook     = errors.New("logbook service dependency required")
	errMissingIssueNumber = errors.New("issue number must be positive")
)

// Dependencies wires the handler to the rest of the application.
type Dependencies struct {
	Logbook     *logbook.Service
	IssueNumber int
	Logger      *zap.Logger
}

// NewHTTPHandler builds the gin router serving the form, the log views and
// the JSON API.
func NewHTTPHandler(deps Dependencies) (http.Handler, error) {
	if deps.Logbook == nil {
		return nil, errMissingLogbook
	}
	if deps.IssueNumber <= 0 {
		return nil, errMissingIssueNumber
	}

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestIDMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{"Content-Type"},
		MaxAge:       12 * time.Hour,
	}))
	router.SetHTMLTemplate(pageTemplates())

	handler := &httpHandler{
		logbook:     deps.Logbook,
		issueNumber: deps.IssueNumber,
		logger:      logger,
	}

	router.GET("/", handler.handleForm)
	router.POST("/submit", handler.handleSubmit)
	router.GET("/log/:member", handler.handleMemberLog)
	router.GET("/leaderboard", handler.handleLeaderboard)

	api := router.Group("/api")
	api.POST("/entries", handler.handleCreateEntry)
	api.GET("/entries", handler.handleListEntries)
	api.GET("/leaderboard", handler.handleLeaderboardJSON)

	router.GET("/healthz", handler.handleHealth)

	return router, nil
}

// requestIDMiddleware tags every request with a UUIDv7 correlation id,
// echoed in the response header and attached to error logs.
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.NewV7()
		if err != nil {
			id = uuid.New()
		}
		c.Set(requestIDContextKey, id.String())
		c.Header("X-Request-ID", id.String())
		c.Next()
	}
}

type httpHandler struct {
	logbook     *logbook.Service
	issueNumber int
	logger      *zap.Logger
}

type entryPayload struct {
	Version   int      `json:"v"`
	Timestamp string   `json:"ts"`
	Date      string   `json:"date"`
	Group     string   `json:"group,omitempty"`
	Member    string   `json:"member"`
	Minutes   int      `json:"minutes"`
	Practiced []string `json:"practiced"`
}

func toPayload(e entry.PracticeEntry) entryPayload {
	practiced := e.Practiced
	if practiced == nil {
		practiced = []string{}
	}
	return entryPayload{
		Version:   e.Version,
		Timestamp: e.Timestamp.Format(entry.TimestampLayout),
		Date:      e.Date,
		Group:     e.Group,
		Member:    e.Member,
		Minutes:   e.Minutes,
		Practiced: practiced,
	}
}

type createEntryRequest struct {
	Member    string   `json:"member"`
	Minutes   int      `json:"minutes"`
	Practiced []string `json:"practiced"`
}

func (h *httpHandler) handleCreateEntry(c *gin.Context) {
	var request createEntryRequest
	if err := c.ShouldBindJSON(&request); err != nil || strings.TrimSpace(request.Member) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	submitted, err := h.logbook.Submit(c.Request.Context(), h.issueNumber, logbook.SubmitRequest{
		Member:    strings.TrimSpace(request.Member),
		Minutes:   request.Minutes,
		Practiced: request.Practiced,
	})
	if err != nil {
		h.respondSubmitError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toPayload(submitted))
}

func (h *httpHandler) handleListEntries(c *gin.Context) {
	snapshot, err := h.logbook.Load(c.Request.Context(), h.issueNumber)
	if err != nil {
		h.logError("log load failed", err, c)
		c.JSON(http.StatusBadGateway, gin.H{"error": "log_unavailable"})
		return
	}

	entries := snapshot.Entries
	if member := strings.TrimSpace(c.Query("member")); member != "" {
		entries = snapshot.MemberLog(member)
	}

	payloads := make([]entryPayload, 0, len(entries))
	for _, e := range entries {
		payloads = append(payloads, toPayload(e))
	}
	c.JSON(http.StatusOK, gin.H{"entries": payloads})
}

type leaderboardRowPayload struct {
	Member       string `json:"member"`
	Group        string `json:"group,omitempty"`
	TotalMinutes int    `json:"total_minutes"`
	Sessions     int    `json:"sessions"`
}

func (h *httpHandler) handleLeaderboardJSON(c *gin.Context) {
	snapshot, err := h.logbook.Load(c.Request.Context(), h.issueNumber)
	if err != nil {
		h.logError("log load failed", err, c)
		c.JSON(http.StatusBadGateway, gin.H{"error": "log_unavailable"})
		return
	}

	board := snapshot.Leaderboard()
	rows := make([]leaderboardRowPayload, 0, len(board))
	for _, summary := range board {
		rows = append(rows, leaderboardRowPayload{
			Member:       summary.Member,
			Group:        summary.Group,
			TotalMinutes: summary.TotalMinutes,
			Sessions:     summary.Sessions,
		})
	}

	totals := snapshot.Totals()
	c.JSON(http.StatusOK, gin.H{
		"leaderboard":   rows,
		"total_minutes": totals.TotalMinutes,
		"sessions":      totals.Sessions,
	})
}

func (h *httpHandler) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// respondSubmitError maps service failures per the error taxonomy: bad
// input is the submitter's problem, a rejected append is the remote's, and
// anything else is a generic failure. Nothing here is fatal to the process.
func (h *httpHandler) respondSubmitError(c *gin.Context, err error) {
	switch {
	case isValidationFailure(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": serviceCode(err, "invalid_request")})
	case isAppendFailure(err):
		h.logError("append rejected by remote", err, c)
		c.JSON(http.StatusBadGateway, gin.H{"error": "append_failed"})
	default:
		h.logError("submission failed", err, c)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "submit_failed"})
	}
}

func isAppendFailure(err error) bool {
	var serviceErr *logbook.ServiceError
	if !errors.As(err, &serviceErr) {
		return false
	}
	return strings.HasSuffix(serviceErr.Code(), "append_failed")
}

func serviceCode(err error, fallback string) string {
	var serviceErr *logbook.ServiceError
	if errors.As(err, &serviceErr) {
		return serviceErr.Code()
	}
	return fallback
}

func (h *httpHandler) logError(message string, err error, c *gin.Context) {
	h.logger.Error(message,
		zap.Error(err),
		zap.String("request_id", c.GetString(requestIDContextKey)),
		zap.String("path", c.Request.URL.Path))
}

func redirectQuery(values map[string]string) string {
	query := url.Values{}
	for key, value := range values {
		query.Set(key, value)
	}
	return query.Encode()
}

func parseMinutes(raw string) int {
	parsed, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0
	}
	return parsed
}
