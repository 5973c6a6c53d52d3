package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ad-tracker/video-engagement-sim/internal/db/repository"
	"github.com/ad-tracker/video-engagement-sim/internal/jobs"
	dto "github.com/ad-tracker/video-engagement-sim/internal/models"
	"github.com/ad-tracker/video-engagement-sim/internal/service"
)

const enqueueSource = "api"

// JobHandler serves /jobs.
type JobHandler struct {
	jobs *service.JobService
}

// NewJobHandler creates a JobHandler.
func NewJobHandler(jobs *service.JobService) *JobHandler {
	return &JobHandler{jobs: jobs}
}

// Names lists the registered jobs.
func (h *JobHandler) Names(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"jobs": h.jobs.Names()})
}

func params(req dto.JobRequest) jobs.Params {
	return jobs.Params{VideoID: req.VideoID, Count: req.Count, Category: req.Category}
}

// Run executes one attempt of a job synchronously and returns its run record.
// Failed runs are not retried here; the enqueue endpoint applies retries.
func (h *JobHandler) Run(c *gin.Context) {
	var req dto.JobRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	run, err := h.jobs.RunOnce(c.Request.Context(), c.Param("name"), params(req))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, run)
}

// Enqueue hands a job to the worker.
func (h *JobHandler) Enqueue(c *gin.Context) {
	var req dto.JobRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	name := c.Param("name")
	id, err := h.jobs.Enqueue(c.Request.Context(), name, params(req), enqueueSource)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, dto.EnqueueResponse{TaskID: id, Task: name, Status: "enqueued"})
}

// Runs lists recorded runs, newest first.
func (h *JobHandler) Runs(c *gin.Context) {
	filters := repository.JobRunFilters{
		Task:   c.Query("task"),
		Status: c.Query("status"),
		Limit:  queryLimit(c),
		Offset: queryOffset(c),
	}
	runs, total, err := h.jobs.ListRuns(c.Request.Context(), filters)
	if err != nil {
		handleError(c, err)
		return
	}
	list(c, runs, len(runs), total, filters.Limit, filters.Offset)
}
