package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"tvshow-api/internal/metrics"
	"tvshow-api/internal/models"
	"tvshow-api/internal/validation"
)

const basePath = "/tvshows"

// TVShowStore is the persistence the handlers need
type TVShowStore interface {
	Create(ctx context.Context, show *models.TVShow) (bool, error)
	GetByID(ctx context.Context, id int) (*models.TVShow, error)
	GetAll(ctx context.Context) ([]models.TVShow, error)
	GetByGenre(ctx context.Context, genre string) ([]models.TVShow, error)
	GetByShowType(ctx context.Context, showType string) ([]models.TVShow, error)
	GetByFavourite(ctx context.Context) ([]models.TVShow, error)
	SearchByTitle(ctx context.Context, term string) ([]models.TVShow, error)
	SearchActorsByTitle(ctx context.Context, term string) ([]string, error)
	Update(ctx context.Context, show *models.TVShow) (bool, error)
	Delete(ctx context.Context, id int) (bool, error)
	Count(ctx context.Context) (int, error)
	Ping(ctx context.Context) error
}

// BackupReporter tells when the newest database backup was taken
type BackupReporter interface {
	LastBackupTime() (time.Time, error)
}

// HTTPHandler handles HTTP requests for the TV show API
type HTTPHandler struct {
	store   TVShowStore
	backups BackupReporter
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

// NewHTTPHandler creates a new HTTPHandler. backups may be nil, in which case /health leaves out last_backup.
func NewHTTPHandler(store TVShowStore, backups BackupReporter, m *metrics.Metrics, logger zerolog.Logger) *HTTPHandler {
	return &HTTPHandler{
		store:   store,
		backups: backups,
		metrics: m,
		logger:  logger.With().Str("component", "http").Logger(),
	}
}

// RegisterRoutes registers all HTTP routes
func (h *HTTPHandler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.Health)
	r.GET("/metrics", gin.WrapH(h.metrics.Handler()))

	r.GET("/favouriteShows", h.GetFavourites)

	shows := r.Group(basePath)
	shows.POST("", h.CreateTVShow)
	shows.GET("", h.GetTVShows)
	shows.GET("/:id", h.GetTVShow)
	shows.PUT("/:id", h.UpdateTVShow)
	shows.DELETE("/:id", h.DeleteTVShow)
}

// CreateTVShow stores a new show
// POST /tvshows
func (h *HTTPHandler) CreateTVShow(c *gin.Context) {
	var show models.TVShow
	if err := c.ShouldBindJSON(&show); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if violations := validation.ValidateTVShow(&show); !violations.Valid() {
		h.logger.Debug().Err(violations).Int("id", show.ID).Msg("Rejected tv show")
		h.metrics.ObserveOperation("create", metrics.OutcomeInvalid)
		c.JSON(http.StatusBadRequest, violations)
		return
	}

	created, err := h.store.Create(c.Request.Context(), &show)
	if err != nil {
		h.serverError(c, "create", err)
		return
	}
	if !created {
		h.metrics.ObserveOperation("create", metrics.OutcomeDuplicate)
		c.JSON(http.StatusBadRequest, validation.DuplicateID())
		return
	}

	h.metrics.ObserveOperation("create", metrics.OutcomeOK)
	c.Header("Location", showLocation(show.ID))
	c.JSON(http.StatusCreated, show)
}

// GetTVShows lists shows, or searches them when a query parameter is given.
// Only the first non-blank of title, genre, showType, actorsFromTitle is used.
// GET /tvshows
func (h *HTTPHandler) GetTVShows(c *gin.Context) {
	ctx := c.Request.Context()

	if title := queryValue(c, "title"); title != "" {
		h.respondList(c, "search_title", func() (any, error) { return h.store.SearchByTitle(ctx, title) })
		return
	}
	if genre := queryValue(c, "genre"); genre != "" {
		h.respondList(c, "by_genre", func() (any, error) { return h.store.GetByGenre(ctx, genre) })
		return
	}
	if showType := queryValue(c, "showType"); showType != "" {
		h.respondList(c, "by_show_type", func() (any, error) { return h.store.GetByShowType(ctx, showType) })
		return
	}
	if actorsTitle := queryValue(c, "actorsFromTitle", "getActorsFromTitle"); actorsTitle != "" {
		h.respondList(c, "search_actors", func() (any, error) { return h.store.SearchActorsByTitle(ctx, actorsTitle) })
		return
	}

	h.respondList(c, "list", func() (any, error) { return h.store.GetAll(ctx) })
}

// GetFavourites lists shows flagged as favourite
// GET /favouriteShows
func (h *HTTPHandler) GetFavourites(c *gin.Context) {
	h.respondList(c, "favourites", func() (any, error) { return h.store.GetByFavourite(c.Request.Context()) })
}

// GetTVShow returns one show
// GET /tvshows/:id
func (h *HTTPHandler) GetTVShow(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		c.Status(http.StatusNotFound)
		return
	}

	show, err := h.store.GetByID(c.Request.Context(), id)
	if err != nil {
		h.serverError(c, "get", err)
		return
	}
	if show == nil {
		h.metrics.ObserveOperation("get", metrics.OutcomeNotFound)
		c.Status(http.StatusNotFound)
		return
	}

	h.metrics.ObserveOperation("get", metrics.OutcomeOK)
	c.JSON(http.StatusOK, show)
}

// UpdateTVShow replaces every mutable field of a show. The path id wins over the body id.
// PUT /tvshows/:id
func (h *HTTPHandler) UpdateTVShow(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		c.Status(http.StatusNotFound)
		return
	}

	var show models.TVShow
	if err := c.ShouldBindJSON(&show); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	show.ID = id

	if violations := validation.ValidateTVShow(&show); !violations.Valid() {
		h.logger.Debug().Err(violations).Int("id", show.ID).Msg("Rejected tv show update")
		h.metrics.ObserveOperation("update", metrics.OutcomeInvalid)
		c.JSON(http.StatusBadRequest, violations)
		return
	}

	updated, err := h.store.Update(c.Request.Context(), &show)
	if err != nil {
		h.serverError(c, "update", err)
		return
	}
	if !updated {
		h.metrics.ObserveOperation("update", metrics.OutcomeNotFound)
		c.Status(http.StatusNotFound)
		return
	}

	h.metrics.ObserveOperation("update", metrics.OutcomeOK)
	c.JSON(http.StatusOK, show)
}

// DeleteTVShow removes a show
// DELETE /tvshows/:id
func (h *HTTPHandler) DeleteTVShow(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		c.Status(http.StatusNotFound)
		return
	}

	deleted, err := h.store.Delete(c.Request.Context(), id)
	if err != nil {
		h.serverError(c, "delete", err)
		return
	}
	if !deleted {
		h.metrics.ObserveOperation("delete", metrics.OutcomeNotFound)
		c.Status(http.StatusNotFound)
		return
	}

	h.metrics.ObserveOperation("delete", metrics.OutcomeOK)
	c.Status(http.StatusNoContent)
}

// Health reports database reachability, the number of stored shows and the last backup
// GET /health
func (h *HTTPHandler) Health(c *gin.Context) {
	ctx := c.Request.Context()

	if err := h.store.Ping(ctx); err != nil {
		h.logger.Warn().Err(err).Msg("Health check failed: database unreachable")
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}

	n, err := h.store.Count(ctx)
	if err != nil {
		h.logger.Warn().Err(err).Msg("Health check failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}

	resp := gin.H{"status": "ok", "shows": n}
	if h.backups != nil {
		resp["last_backup"] = h.lastBackup()
	}
	c.JSON(http.StatusOK, resp)
}

// Helper functions

// lastBackup returns the newest backup time as RFC 3339, or nil when there is none or it cannot be read
func (h *HTTPHandler) lastBackup() any {
	last, err := h.backups.LastBackupTime()
	if err != nil {
		h.logger.Warn().Err(err).Msg("Failed to read last backup time")
		return nil
	}
	if last.IsZero() {
		return nil
	}
	return last.Format(time.RFC3339)
}

func (h *HTTPHandler) respondList(c *gin.Context, operation string, fetch func() (any, error)) {
	result, err := fetch()
	if err != nil {
		h.serverError(c, operation, err)
		return
	}
	h.metrics.ObserveOperation(operation, metrics.OutcomeOK)
	c.JSON(http.StatusOK, result)
}

func (h *HTTPHandler) serverError(c *gin.Context, operation string, err error) {
	h.metrics.ObserveOperation(operation, metrics.OutcomeError)
	h.logger.Error().Err(err).
		Str("operation", operation).
		Str("path", c.Request.URL.Path).
		Msg("Storage operation failed")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}

// queryValue returns the first non-blank value among the given query keys
func queryValue(c *gin.Context, keys ...string) string {
	for _, key := range keys {
		if value := strings.TrimSpace(c.Query(key)); value != "" {
			return c.Query(key)
		}
	}
	return ""
}

// pathID parses the :id segment; anything but an int is treated as an unknown route
func pathID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return 0, false
	}
	return id, true
}

func showLocation(id int) string {
	return fmt.Sprintf("%s/%d", basePath, id)
}
