package main

import (
	"errors"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/civicsolver/civicsolver_backend/config"
	"github.com/civicsolver/civicsolver_backend/models"
	"github.com/civicsolver/civicsolver_backend/models/reports"
	"github.com/civicsolver/civicsolver_backend/utils"
	"github.com/civicsolver/civicsolver_backend/workflow"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// respondProblemError maps store/workflow sentinels onto the HTTP contract.
// Internal details stay in the server log; clients get static messages.
func respondProblemError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, utils.ErrorRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "problem not found"})
	case errors.Is(err, utils.ErrorAlreadyVoted):
		c.JSON(http.StatusConflict, gin.H{"error": "already voted"})
	case errors.Is(err, utils.ErrorForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	case errors.Is(err, utils.ErrorInvalidStatus):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
	case errors.Is(err, utils.ErrorInvalidTransition):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status transition"})
	case errors.Is(err, utils.ErrorValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		config.LogError(config.GetLogger(), "problems", "respondProblemError", c.FullPath(), nil, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func problemIdParam(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "problem not found"})
		return 0, false
	}
	return id, true
}

func listProblemsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		problems, err := workflow.ListProblems(c.Request.Context())
		if err != nil {
			respondProblemError(c, err)
			return
		}
		if problems == nil {
			problems = []*models.Problem{}
		}
		c.JSON(http.StatusOK, problems)
	}
}

func getProblemHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := problemIdParam(c)
		if !ok {
			return
		}
		problem, err := workflow.GetProblemDetail(c.Request.Context(), id)
		if err != nil {
			respondProblemError(c, err)
			return
		}
		c.JSON(http.StatusOK, problem)
	}
}

// deleteProblemImageHandler lets the reporter (or a head) withdraw the photo
// attached to a report. The stored object is removed as well.
func deleteProblemImageHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := problemIdParam(c)
		if !ok {
			return
		}
		problem, err := workflow.WithdrawReportImage(c.Request.Context(), id)
		if err != nil {
			respondProblemError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "problem": problem})
	}
}

// createProblemHandler accepts multipart form reports (the web client sends
// the image alongside the text fields) and plain JSON bodies without one.
func createProblemHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		input := models.NewProblem{}

		contentType := c.ContentType()
		if strings.HasPrefix(contentType, "multipart/form-data") {
			input.Title = strings.TrimSpace(c.PostForm("title"))
			input.Description = strings.TrimSpace(c.PostForm("description"))
			input.Location = strings.TrimSpace(c.PostForm("location"))
			input.Date = strings.TrimSpace(c.PostForm("date"))

			file, header, err := c.Request.FormFile("image")
			if err == nil {
				defer file.Close()
				if header.Size > maxUploadSizeBytes {
					c.JSON(http.StatusBadRequest, gin.H{"error": "file size exceeds 5MB limit"})
					return
				}
				objectKey := path.Join("problems", uuid.New().String()+imageExtension(header.Filename))
				if _, err := utils.UploadFileToGCS(c.Request.Context(), objectKey, file); err != nil {
					config.LogError(config.GetLogger(), "problems", "createProblemHandler", c.FullPath(),
						gin.H{"object_key": objectKey}, err)
					c.JSON(http.StatusInternalServerError, gin.H{"error": "image upload failed"})
					return
				}
				input.ImageUrl = utils.BuildObjectAccessURL(objectKey)
				input.ImagePublicId = objectKey
			}
		} else {
			if err := c.ShouldBindJSON(&input); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "title, description, location and date are required"})
				return
			}
		}

		problem, err := workflow.SubmitReport(c.Request.Context(), &input)
		if err != nil {
			respondProblemError(c, err)
			return
		}
		c.JSON(http.StatusCreated, problem)
	}
}

func voteProblemHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := problemIdParam(c)
		if !ok {
			return
		}
		votes, err := workflow.CastVote(c.Request.Context(), id)
		if err != nil {
			respondProblemError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "votes": votes})
	}
}

type setStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func setProblemStatusHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := problemIdParam(c)
		if !ok {
			return
		}
		var req setStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "status is required"})
			return
		}
		problem, err := workflow.ReviewAndSetStatus(c.Request.Context(), id, req.Status)
		if err != nil {
			respondProblemError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "problem": problem})
	}
}

func exportProblemsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		problems, err := workflow.ListProblems(c.Request.Context())
		if err != nil {
			respondProblemError(c, err)
			return
		}
		f, err := reports.BuildProblemWorkbook(problems)
		if err != nil {
			respondProblemError(c, err)
			return
		}
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Header("Content-Disposition", "attachment; filename=problems.xlsx")
		if err := f.Write(c.Writer); err != nil {
			config.LogError(config.GetLogger(), "problems", "exportProblemsHandler", c.FullPath(), nil, err)
		}
	}
}
