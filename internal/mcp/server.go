// Package mcp provides an MCP (Model Context Protocol) server that exposes
// the task engine as MCP tools, so assistants can read and edit the task
// list.
package mcp

import (
	"context"
	"fmt"
	"sync"
	"time"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/valter-silva-au/todo-list/internal/core"
	"github.com/valter-silva-au/todo-list/internal/observability"
	"github.com/valter-silva-au/todo-list/pkg/models"
)

// Server wraps the task engine and exposes it as MCP tools. The engine is not
// safe for concurrent use, so every handler holds mu while touching it.
type Server struct {
	server      *gomcp.Server
	mu          sync.Mutex
	taskMgr     core.TaskManager
	metricsCalc observability.MetricsCalculator
	alertEngine observability.AlertEngine
	now         func() time.Time
}

// NewServer creates a new MCP server over taskMgr. metricsCalc and
// alertEngine may be nil if observability is disabled.
func NewServer(taskMgr core.TaskManager, metricsCalc observability.MetricsCalculator, alertEngine observability.AlertEngine, version string) *Server {
	if version == "" {
		version = "dev"
	}

	s := &Server{
		taskMgr:     taskMgr,
		metricsCalc: metricsCalc,
		alertEngine: alertEngine,
		now:         time.Now,
	}

	s.server = gomcp.NewServer(
		&gomcp.Implementation{Name: "todo", Version: version},
		nil,
	)

	s.registerTools()

	return s
}

// Run serves MCP over stdio, blocking until the client disconnects or the
// context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &gomcp.StdioTransport{})
}

// MCPServer returns the underlying mcp.Server for testing purposes.
func (s *Server) MCPServer() *gomcp.Server {
	return s.server
}

// --- Tool input/output types ---

type taskIDInput struct {
	ID int `json:"id" jsonschema:"the numeric task id"`
}

type taskOutput struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`
	Priority    string `json:"priority"`
	DueDate     string `json:"due_date,omitempty"`
	Status      string `json:"status"`
	Overdue     bool   `json:"overdue"`
	Created     string `json:"created"`
	Updated     string `json:"updated"`
}

type listTasksInput struct {
	Status   string `json:"status,omitempty" jsonschema:"only tasks with this status (NotStarted, InProgress, Completed, Postponed)"`
	Category string `json:"category,omitempty" jsonschema:"only tasks in this category"`
	Priority string `json:"priority,omitempty" jsonschema:"only tasks with this priority (High, Medium, Low)"`
	Sort     string `json:"sort,omitempty" jsonschema:"sort key: dueDate, priority, creationDate or title"`
	Reverse  bool   `json:"reverse,omitempty" jsonschema:"reverse the sort order"`
}

type listTasksOutput struct {
	Tasks []taskOutput `json:"tasks"`
	Count int          `json:"count"`
	Total int          `json:"total"`
}

type createTaskInput struct {
	Title       string `json:"title" jsonschema:"task title, at most 200 characters"`
	Description string `json:"description,omitempty" jsonschema:"free-form description, at most 2000 characters"`
	Category    string `json:"category,omitempty" jsonschema:"category label, e.g. Work, Personal, Health, Learning, Home, Other"`
	Priority    string `json:"priority,omitempty" jsonschema:"High, Medium or Low; defaults to the configured priority"`
	DueDate     string `json:"due_date,omitempty" jsonschema:"due date as YYYY-MM-DD, not in the past"`
}

type updateTaskInput struct {
	ID          int     `json:"id" jsonschema:"the numeric task id"`
	Title       *string `json:"title,omitempty" jsonschema:"new title"`
	Description *string `json:"description,omitempty" jsonschema:"new description"`
	Category    *string `json:"category,omitempty" jsonschema:"new category; empty clears it"`
	Priority    *string `json:"priority,omitempty" jsonschema:"new priority (High, Medium, Low)"`
	DueDate     *string `json:"due_date,omitempty" jsonschema:"new due date as YYYY-MM-DD; empty clears it"`
}

type changeStatusInput struct {
	ID     int    `json:"id" jsonschema:"the numeric task id"`
	Status string `json:"status" jsonschema:"the new status (NotStarted, InProgress, Completed, Postponed)"`
}

type changeStatusOutput struct {
	Task    taskOutput `json:"task"`
	Changed bool       `json:"changed"`
	Message string     `json:"message"`
}

type deleteTaskOutput struct {
	Deleted bool   `json:"deleted"`
	Message string `json:"message"`
}

type getStatsInput struct{}

type statsOutput struct {
	Total     int            `json:"total"`
	Filtered  int            `json:"filtered"`
	Completed int            `json:"completed"`
	Overdue   int            `json:"overdue"`
	DueSoon   int            `json:"due_soon"`
	ByStatus  map[string]int `json:"by_status"`
}

type getMetricsInput struct {
	Since string `json:"since,omitempty" jsonschema:"time window for metrics (e.g. 7d, 30d, 24h). Defaults to 7d."`
}

type metricsOutput struct {
	TasksCreated   int            `json:"tasks_created"`
	TasksCompleted int            `json:"tasks_completed"`
	TasksDeleted   int            `json:"tasks_deleted"`
	TasksUpdated   int            `json:"tasks_updated"`
	StatusChanges  map[string]int `json:"status_changes"`
	SaveFailures   int            `json:"save_failures"`
	EventCount     int            `json:"event_count"`
	OldestEvent    string         `json:"oldest_event,omitempty"`
	NewestEvent    string         `json:"newest_event,omitempty"`
}

type getAlertsInput struct{}

type alertOutput struct {
	ID          string `json:"id"`
	Condition   string `json:"condition"`
	Severity    string `json:"severity"`
	Message     string `json:"message"`
	TaskID      int    `json:"task_id,omitempty"`
	TriggeredAt string `json:"triggered_at"`
}

type getAlertsOutput struct {
	Alerts []alertOutput `json:"alerts"`
	Count  int           `json:"count"`
}

// --- Tool registration ---

func (s *Server) registerTools() {
	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "list_tasks",
		Description: "List tasks, optionally filtered by status, category and priority (combined with AND) and sorted.",
	}, s.handleListTasks)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_task",
		Description: "Get a task by its numeric id.",
	}, s.handleGetTask)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "create_task",
		Description: "Create a task. New tasks start as NotStarted.",
	}, s.handleCreateTask)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "update_task",
		Description: "Update some fields of a task. Omitted fields are left unchanged.",
	}, s.handleUpdateTask)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "change_task_status",
		Description: "Move a task to another status. Any transition is allowed; setting the current status is a no-op.",
	}, s.handleChangeStatus)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "delete_task",
		Description: "Delete a task by id. Deleting a missing task is not an error.",
	}, s.handleDeleteTask)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_stats",
		Description: "Count tasks: total, in the current view, completed, overdue, due soon, and per status.",
	}, s.handleGetStats)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_metrics",
		Description: "Get aggregated metrics from the event log: tasks created, completed, updated, deleted, and status transitions.",
	}, s.handleGetMetrics)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_alerts",
		Description: "Evaluate and return active alerts (overdue, due soon, stale in progress, too many open tasks).",
	}, s.handleGetAlerts)
}

// --- Tool handlers ---

func (s *Server) handleListTasks(_ context.Context, _ *gomcp.CallToolRequest, input listTasksInput) (*gomcp.CallToolResult, listTasksOutput, error) {
	var criteria core.FilterCriteria
	if input.Status != "" {
		status, err := models.ParseStatus(input.Status)
		if err != nil {
			return errorResult(err.Error()), listTasksOutput{}, nil
		}
		criteria.Status = status
	}
	if input.Priority != "" {
		priority, err := models.ParsePriority(input.Priority)
		if err != nil {
			return errorResult(err.Error()), listTasksOutput{}, nil
		}
		criteria.Priority = priority
	}
	criteria.Category = models.ParseCategory(input.Category)

	s.mu.Lock()
	defer s.mu.Unlock()

	tasks := s.taskMgr.ApplyFilters(criteria)
	if input.Sort != "" {
		tasks = s.taskMgr.SortTasks(core.SortKey(input.Sort), input.Reverse)
	}

	today := models.DateOf(s.now())
	out := listTasksOutput{
		Tasks: make([]taskOutput, len(tasks)),
		Count: len(tasks),
		Total: len(s.taskMgr.GetAll()),
	}
	for i, t := range tasks {
		out.Tasks[i] = taskToOutput(t, today)
	}
	return nil, out, nil
}

func (s *Server) handleGetTask(_ context.Context, _ *gomcp.CallToolRequest, input taskIDInput) (*gomcp.CallToolResult, taskOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.taskMgr.FindByID(input.ID)
	if !ok {
		return errorResult(fmt.Sprintf("task %d not found", input.ID)), taskOutput{}, nil
	}
	return nil, taskToOutput(task, models.DateOf(s.now())), nil
}

func (s *Server) handleCreateTask(_ context.Context, _ *gomcp.CallToolRequest, input createTaskInput) (*gomcp.CallToolResult, taskOutput, error) {
	fields := core.TaskFields{Title: &input.Title}
	if input.Description != "" {
		fields.Description = &input.Description
	}
	if input.Category != "" {
		category := models.ParseCategory(input.Category)
		fields.Category = &category
	}
	if input.Priority != "" {
		priority, err := models.ParsePriority(input.Priority)
		if err != nil {
			return errorResult(err.Error()), taskOutput{}, nil
		}
		fields.Priority = &priority
	}
	if input.DueDate != "" {
		due, err := core.ParseDueDate(input.DueDate)
		if err != nil {
			return errorResult(err.Error()), taskOutput{}, nil
		}
		fields.DueDate = &due
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	task, err := s.taskMgr.Create(fields)
	if err != nil {
		return errorResult(err.Error()), taskOutput{}, nil
	}
	return nil, taskToOutput(task, models.DateOf(s.now())), nil
}

func (s *Server) handleUpdateTask(_ context.Context, _ *gomcp.CallToolRequest, input updateTaskInput) (*gomcp.CallToolResult, taskOutput, error) {
	fields := core.TaskFields{
		Title:       input.Title,
		Description: input.Description,
	}
	if input.Category != nil {
		category := models.ParseCategory(*input.Category)
		fields.Category = &category
	}
	if input.Priority != nil {
		priority, err := models.ParsePriority(*input.Priority)
		if err != nil {
			return errorResult(err.Error()), taskOutput{}, nil
		}
		fields.Priority = &priority
	}
	if input.DueDate != nil {
		due, err := core.ParseDueDate(*input.DueDate)
		if err != nil {
			return errorResult(err.Error()), taskOutput{}, nil
		}
		fields.DueDate = &due
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	task, err := s.taskMgr.Update(input.ID, fields)
	if err != nil {
		return errorResult(err.Error()), taskOutput{}, nil
	}
	return nil, taskToOutput(task, models.DateOf(s.now())), nil
}

func (s *Server) handleChangeStatus(_ context.Context, _ *gomcp.CallToolRequest, input changeStatusInput) (*gomcp.CallToolResult, changeStatusOutput, error) {
	status, err := models.ParseStatus(input.Status)
	if err != nil {
		return errorResult(err.Error()), changeStatusOutput{}, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	task, changed, err := s.taskMgr.ChangeStatus(input.ID, status)
	if err != nil {
		return errorResult(err.Error()), changeStatusOutput{}, nil
	}

	msg := fmt.Sprintf("task %d status changed to %s", task.ID, status.Label())
	if !changed {
		msg = fmt.Sprintf("task %d already has status %s", task.ID, status.Label())
	}
	return nil, changeStatusOutput{
		Task:    taskToOutput(task, models.DateOf(s.now())),
		Changed: changed,
		Message: msg,
	}, nil
}

func (s *Server) handleDeleteTask(_ context.Context, _ *gomcp.CallToolRequest, input taskIDInput) (*gomcp.CallToolResult, deleteTaskOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.taskMgr.Delete(input.ID) {
		return nil, deleteTaskOutput{Message: fmt.Sprintf("task %d does not exist", input.ID)}, nil
	}
	return nil, deleteTaskOutput{Deleted: true, Message: fmt.Sprintf("task %d deleted", input.ID)}, nil
}

func (s *Server) handleGetStats(_ context.Context, _ *gomcp.CallToolRequest, _ getStatsInput) (*gomcp.CallToolResult, statsOutput, error) {
	s.mu.Lock()
	stats := s.taskMgr.Stats()
	s.mu.Unlock()

	out := statsOutput{
		Total:     stats.Total,
		Filtered:  stats.Filtered,
		Completed: stats.Completed,
		Overdue:   stats.Overdue,
		DueSoon:   stats.DueSoon,
		ByStatus:  make(map[string]int, len(stats.ByStatus)),
	}
	for status, n := range stats.ByStatus {
		out.ByStatus[status.Label()] = n
	}
	return nil, out, nil
}

func (s *Server) handleGetMetrics(_ context.Context, _ *gomcp.CallToolRequest, input getMetricsInput) (*gomcp.CallToolResult, metricsOutput, error) {
	if s.metricsCalc == nil {
		return errorResult("metrics calculator not available (event logging may be disabled)"), emptyMetricsOutput(), nil
	}

	sinceStr := input.Since
	if sinceStr == "" {
		sinceStr = "7d"
	}

	sinceTime, err := observability.ParseSince(sinceStr, s.now())
	if err != nil {
		return errorResult(fmt.Sprintf("parsing since duration: %s", err)), emptyMetricsOutput(), nil
	}

	metrics, err := s.metricsCalc.Calculate(sinceTime)
	if err != nil {
		return errorResult(fmt.Sprintf("calculating metrics: %s", err)), emptyMetricsOutput(), nil
	}

	out := metricsOutput{
		TasksCreated:   metrics.TasksCreated,
		TasksCompleted: metrics.TasksCompleted,
		TasksDeleted:   metrics.TasksDeleted,
		TasksUpdated:   metrics.TasksUpdated,
		StatusChanges:  metrics.StatusChanges,
		SaveFailures:   metrics.SaveFailures,
		EventCount:     metrics.EventCount,
	}
	if metrics.OldestEvent != nil {
		out.OldestEvent = metrics.OldestEvent.Format(time.RFC3339)
	}
	if metrics.NewestEvent != nil {
		out.NewestEvent = metrics.NewestEvent.Format(time.RFC3339)
	}

	return nil, out, nil
}

func (s *Server) handleGetAlerts(_ context.Context, _ *gomcp.CallToolRequest, _ getAlertsInput) (*gomcp.CallToolResult, getAlertsOutput, error) {
	if s.alertEngine == nil {
		return errorResult("alert engine not available"), getAlertsOutput{}, nil
	}

	// The alert engine reads the task list through the engine.
	s.mu.Lock()
	alerts, err := s.alertEngine.Evaluate()
	s.mu.Unlock()
	if err != nil {
		return errorResult(fmt.Sprintf("evaluating alerts: %s", err)), getAlertsOutput{}, nil
	}

	out := getAlertsOutput{
		Alerts: make([]alertOutput, len(alerts)),
		Count:  len(alerts),
	}
	for i, a := range alerts {
		out.Alerts[i] = alertOutput{
			ID:          a.ID,
			Condition:   a.Condition,
			Severity:    string(a.Severity),
			Message:     a.Message,
			TaskID:      a.TaskID,
			TriggeredAt: a.TriggeredAt.Format(time.RFC3339),
		}
	}

	return nil, out, nil
}

// --- Helpers ---

func taskToOutput(t models.Task, today models.Date) taskOutput {
	return taskOutput{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Category:    t.Category.Label(),
		Priority:    t.Priority.Label(),
		DueDate:     t.DueDate.String(),
		Status:      t.Status.Label(),
		Overdue:     t.IsOverdue(today),
		Created:     t.Created.Format(time.RFC3339),
		Updated:     t.Updated.Format(time.RFC3339),
	}
}

func emptyMetricsOutput() metricsOutput {
	return metricsOutput{
		StatusChanges: make(map[string]int),
	}
}

func errorResult(msg string) *gomcp.CallToolResult {
	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: msg}},
		IsError: true,
	}
}
