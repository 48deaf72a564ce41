package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/feedback-backend/internal/domain/feedback"
	"github.com/yungbote/feedback-backend/internal/http/response"
	"github.com/yungbote/feedback-backend/internal/platform/apierr"
	"github.com/yungbote/feedback-backend/internal/platform/logger"
	"github.com/yungbote/feedback-backend/internal/services"
)

type SubmissionHandlerDeps struct {
	Log         *logger.Logger
	Submissions services.SubmissionService
}

type SubmissionHandler struct {
	log         *logger.Logger
	submissions services.SubmissionService
}

func NewSubmissionHandlerWithDeps(deps SubmissionHandlerDeps) *SubmissionHandler {
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}
	return &SubmissionHandler{
		log:         log.With("handler", "SubmissionHandler"),
		submissions: deps.Submissions,
	}
}

type formPage struct {
	Ratings     []int
	Rating      int
	Review      string
	MaxReview   int
	Errors      map[string]string
	Reply       string
	Stored      bool
	Submitted   bool
	Unavailable bool
}

func newFormPage() formPage {
	return formPage{
		Ratings:   []int{5, 4, 3, 2, 1},
		Rating:    feedback.MaxRating,
		MaxReview: feedback.MaxReviewRunes,
	}
}

// GET /
func (h *SubmissionHandler) Form(c *gin.Context) {
	c.HTML(http.StatusOK, "form.html", newFormPage())
}

// POST /feedback
func (h *SubmissionHandler) SubmitForm(c *gin.Context) {
	page := newFormPage()
	rating, _ := strconv.Atoi(strings.TrimSpace(c.PostForm("rating")))
	in := feedback.Input{Rating: rating, Review: c.PostForm("review")}
	page.Rating = rating
	page.Review = in.Review

	res, err := h.submissions.Submit(c.Request.Context(), in)
	if err != nil {
		var verr *feedback.ValidationError
		if !errors.As(err, &verr) {
			_ = c.Error(err)
			page.Unavailable = true
			c.HTML(http.StatusInternalServerError, "form.html", page)
			return
		}
		page.Errors = map[string]string{}
		for _, f := range verr.Fields {
			page.Errors[f.Field] = f.Msg
		}
		status, _ := apierr.StatusOf(err)
		c.HTML(status, "form.html", page)
		return
	}

	page.Submitted = true
	page.Reply = res.Reply
	page.Stored = res.Stored
	page.Review = ""
	page.Rating = feedback.MaxRating
	c.HTML(http.StatusOK, "form.html", page)
}

// POST /api/submissions
func (h *SubmissionHandler) Create(c *gin.Context) {
	var in feedback.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	res, err := h.submissions.Submit(c.Request.Context(), in)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, res)
}
