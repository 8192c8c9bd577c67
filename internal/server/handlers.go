package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/TheorieLearn/TheorieLearn-sub000/internal/automaton"
	"github.com/TheorieLearn/TheorieLearn-sub000/internal/grading"
	"github.com/TheorieLearn/TheorieLearn-sub000/internal/validate"
)

// Handler holds HTTP handlers for the grading API.
type Handler struct {
	bank         *QuestionBank
	grader       *grading.Grader
	logger       *slog.Logger
	gradeTimeout time.Duration
}

// NewHandler creates a Handler backed by the given bank and grader. A zero
// gradeTimeout leaves grading bounded only by the request context.
func NewHandler(bank *QuestionBank, grader *grading.Grader, gradeTimeout time.Duration, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{bank: bank, grader: grader, logger: logger, gradeTimeout: gradeTimeout}
}

// RegisterRoutes registers all API routes on r.
func (h *Handler) RegisterRoutes(r gin.IRouter) {
	v1 := r.Group("/v1")

	// Question bank.
	v1.GET("/questions", h.handleListQuestions)
	v1.POST("/questions", h.handleCreateQuestion)
	v1.GET("/questions/:id", h.handleGetQuestion)
	v1.DELETE("/questions/:id", h.handleDeleteQuestion)

	// Grading.
	v1.POST("/questions/:id/grade", h.handleGradeStored)
	v1.POST("/grade", h.handleGradeInline)
	v1.POST("/grade/batch", h.handleGradeBatch)

	// Structural validation only.
	v1.POST("/validate", h.handleValidate)
}

// --- Question Bank ---

func (h *Handler) handleListQuestions(c *gin.Context) {
	ids := h.bank.List()

	infos := make([]map[string]interface{}, 0, len(ids))
	for _, id := range ids {
		q, err := h.bank.Get(id)
		if err != nil {
			continue
		}
		infos = append(infos, questionInfo(q))
	}

	writeJSON(c, http.StatusOK, gin.H{"questions": infos})
}

func (h *Handler) handleCreateQuestion(c *gin.Context) {
	var q grading.Question
	if err := c.ShouldBindJSON(&q); err != nil {
		writeError(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	compiled, err := h.bank.Create(q)
	if err != nil {
		if errors.Is(err, ErrQuestionExists) {
			writeError(c, http.StatusConflict, err.Error())
			return
		}
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(c, http.StatusCreated, questionInfo(compiled))
}

func (h *Handler) handleGetQuestion(c *gin.Context) {
	q, err := h.bank.Get(c.Param("id"))
	if err != nil {
		writeError(c, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(c, http.StatusOK, questionInfo(q))
}

func (h *Handler) handleDeleteQuestion(c *gin.Context) {
	id := c.Param("id")
	if err := h.bank.Delete(id); err != nil {
		writeError(c, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"status": "deleted", "id": id})
}

// --- Grading ---

func (h *Handler) handleGradeStored(c *gin.Context) {
	q, err := h.bank.Get(c.Param("id"))
	if err != nil {
		writeError(c, http.StatusNotFound, err.Error())
		return
	}

	var ans grading.Answer
	if err := c.ShouldBindJSON(&ans); err != nil {
		writeError(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	h.grade(c, q, ans)
}

func (h *Handler) handleGradeInline(c *gin.Context) {
	var req struct {
		Question grading.Question `json:"question"`
		Answer   grading.Answer   `json:"answer"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	q, err := grading.Compile(req.Question)
	if err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}

	h.grade(c, q, req.Answer)
}

func (h *Handler) grade(c *gin.Context, q *grading.Compiled, ans grading.Answer) {
	ctx := c.Request.Context()
	if h.gradeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.gradeTimeout)
		defer cancel()
	}

	res, err := h.grader.Grade(ctx, q, ans)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			writeError(c, http.StatusGatewayTimeout, "grading timed out")
			return
		}
		if errors.Is(err, context.Canceled) {
			writeError(c, http.StatusServiceUnavailable, "grading canceled")
			return
		}
		h.logger.Error("grading failed", "question_id", q.Question.ID, "error", err)
		writeError(c, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(c, http.StatusOK, res)
}

func (h *Handler) handleGradeBatch(c *gin.Context) {
	var req struct {
		Items []struct {
			QuestionID string         `json:"question_id" binding:"required"`
			Answer     grading.Answer `json:"answer"`
		} `json:"items" binding:"required,min=1,dive"`
		Parallelism int `json:"parallelism" binding:"gte=0"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	items := make([]grading.BatchItem, len(req.Items))
	for i, it := range req.Items {
		q, err := h.bank.Get(it.QuestionID)
		items[i] = grading.BatchItem{Question: q, Answer: it.Answer, Err: err}
	}

	ctx := c.Request.Context()
	if h.gradeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.gradeTimeout)
		defer cancel()
	}

	out, err := h.grader.GradeBatch(ctx, items, req.Parallelism)
	if err != nil && !errors.Is(err, grading.ErrAllGradesFailed) {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(c, http.StatusOK, out)
}

// --- Validation ---

func (h *Handler) handleValidate(c *gin.Context) {
	var req struct {
		Kind                string               `json:"kind" binding:"required,oneof=dfa nfa"`
		AllowNoAcceptStates bool                 `json:"allow_no_accept_states"`
		Submission          *validate.Submission `json:"submission" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	opts := validate.Options{AllowNoAcceptStates: req.AllowNoAcceptStates}
	var (
		normalized validate.Submission
		states     int
		err        error
	)
	if req.Kind == grading.KindDFA {
		var def automaton.DFADefinition
		def, err = validate.ConvertDFA(*req.Submission, opts)
		normalized, states = validate.SubmissionFromDFA(def), len(def.States)
	} else {
		var def automaton.NFADefinition
		def, err = validate.ConvertNFA(*req.Submission, opts)
		normalized, states = validate.SubmissionFromNFA(def, req.Submission.EpsilonSymbol), len(def.States)
	}
	if err != nil {
		fb, ok := grading.FeedbackForError(err)
		if !ok {
			writeError(c, http.StatusBadRequest, err.Error())
			return
		}
		writeJSON(c, http.StatusUnprocessableEntity, gin.H{"valid": false, "feedback": fb})
		return
	}

	writeJSON(c, http.StatusOK, gin.H{
		"valid":      true,
		"num_states": states,
		"automaton":  normalized,
	})
}

// --- Helpers ---

func writeJSON(c *gin.Context, status int, v interface{}) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"error": gin.H{
			"message": message,
		},
	})
}
