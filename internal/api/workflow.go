package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.temporal.io/sdk/client"

	"github.com/yourorg/market-metrics/internal/types"
)

type WorkflowHandler struct {
	temporalClient client.Client
	taskQueue      string
}

func NewWorkflowHandler(temporalClient client.Client, taskQueue string) *WorkflowHandler {
	return &WorkflowHandler{temporalClient: temporalClient, taskQueue: taskQueue}
}

type StartMetricsRequest struct {
	Categories  []types.CategoryParams `json:"categories" binding:"required"`
	KeepScratch bool                   `json:"keep_scratch"`
}

type StartFetchRequest struct {
	Fetches []types.FetchParams `json:"fetches" binding:"required"`
}

type StartWorkflowResponse struct {
	WorkflowID string `json:"workflow_id"`
	RunID      string `json:"run_id"`
}

// StartMetricsWorkflow kicks off a multi-category aggregation run.
func (h *WorkflowHandler) StartMetricsWorkflow(c *gin.Context) {
	var req StartMetricsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	params := types.RunParams{Categories: req.Categories, KeepScratch: req.KeepScratch}
	options := client.StartWorkflowOptions{TaskQueue: h.taskQueue}

	run, err := h.temporalClient.ExecuteWorkflow(
		c.Request.Context(),
		options,
		"MarketMetricsWorkflow", // must match the registered workflow name
		params,
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start workflow: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, StartWorkflowResponse{WorkflowID: run.GetID(), RunID: run.GetRunID()})
}

// StartFetchWorkflow kicks off market list retrieval.
func (h *WorkflowHandler) StartFetchWorkflow(c *gin.Context) {
	var req StartFetchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	options := client.StartWorkflowOptions{TaskQueue: h.taskQueue}
	run, err := h.temporalClient.ExecuteWorkflow(
		c.Request.Context(),
		options,
		"FetchMarketsWorkflow",
		req.Fetches,
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start workflow: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, StartWorkflowResponse{WorkflowID: run.GetID(), RunID: run.GetRunID()})
}

// GetWorkflowStatus reports a workflow's state, with the result once complete.
func (h *WorkflowHandler) GetWorkflowStatus(c *gin.Context) {
	workflowID := c.Param("id")
	if workflowID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Workflow ID is required"})
		return
	}

	run := h.temporalClient.GetWorkflow(c.Request.Context(), workflowID, "")

	var result types.RunResult
	if err := run.Get(c.Request.Context(), &result); err != nil {
		// Still running or failed; describe instead.
		describe, descErr := h.temporalClient.DescribeWorkflowExecution(c.Request.Context(), workflowID, "")
		if descErr != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to describe workflow: " + descErr.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"workflow_id": workflowID,
			"status":      describe.WorkflowExecutionInfo.Status.String(),
			"start_time":  describe.WorkflowExecutionInfo.StartTime,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"workflow_id": workflowID,
		"status":      "COMPLETED",
		"result":      result,
	})
}
