package mockstore

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"caretaker/internal/service"
)

// DefaultPrefix is the route prefix the hosted store uses.
const DefaultPrefix = "/api/v1/todo"

type handler struct {
	store  *Store
	logger zerolog.Logger
}

// NewRouter returns a gin engine serving store under prefix.
func NewRouter(store *Store, prefix string, logger zerolog.Logger) *gin.Engine {
	h := &handler{store: store, logger: logger}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(h.logRequests)

	tasks := router.Group(prefix)
	tasks.GET("", h.HandleGetTasks)
	tasks.POST("", h.HandleCreateTask)
	tasks.PUT("/:id", h.HandleUpdateTask)
	tasks.DELETE("/:id", h.HandleDeleteTask)
	return router
}

func (h *handler) logRequests(c *gin.Context) {
	start := time.Now()
	c.Next()
	h.logger.Debug().
		Str("method", c.Request.Method).
		Str("path", c.Request.URL.Path).
		Int("status", c.Writer.Status()).
		Dur("took", time.Since(start)).
		Msg("handled request")
}

func (h *handler) HandleGetTasks(c *gin.Context) {
	tasks := h.store.List()
	h.logger.Debug().
		Int("count", len(tasks)).
		Msg("listed tasks")
	c.JSON(http.StatusOK, tasks)
}

func (h *handler) HandleCreateTask(c *gin.Context) {
	var task service.Task
	if err := c.ShouldBindJSON(&task); err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if task.CreatedAt.IsZero() {
		task.CreatedAt = time.Now().UTC()
	}

	created := h.store.Create(task)
	h.logger.Info().
		Str("id", created.ID).
		Msg("created task")
	c.JSON(http.StatusCreated, created)
}

func (h *handler) HandleUpdateTask(c *gin.Context) {
	var task service.Task
	if err := c.ShouldBindJSON(&task); err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id := c.Param("id")
	updated, ok := h.store.Update(id, task)
	if !ok {
		h.logger.Warn().
			Str("id", id).
			Msg("task not found")
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	h.logger.Info().
		Str("id", id).
		Msg("updated task")
	c.JSON(http.StatusOK, updated)
}

func (h *handler) HandleDeleteTask(c *gin.Context) {
	id := c.Param("id")
	deleted, ok := h.store.Delete(id)
	if !ok {
		h.logger.Warn().
			Str("id", id).
			Msg("task not found")
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	h.logger.Info().
		Str("id", id).
		Msg("deleted task")
	c.JSON(http.StatusOK, deleted)
}
