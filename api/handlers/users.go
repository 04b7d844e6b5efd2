package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ledgerstack/ledgerstack/internal/models"
	"github.com/ledgerstack/ledgerstack/internal/repository"
	"github.com/ledgerstack/ledgerstack/internal/tracing"
	"github.com/ledgerstack/ledgerstack/internal/utils"
)

type UsersHandler struct {
	repos *repository.Repositories
}

func NewUsersHandler(repos *repository.Repositories) *UsersHandler {
	return &UsersHandler{repos: repos}
}

type registerUserRequest struct {
	FirebaseUID   string `json:"firebaseUid" binding:"required"`
	FullName      string `json:"fullName"`
	Email         string `json:"email" binding:"required,email"`
	Occupation    string `json:"occupation"`
	Salary        int    `json:"salary"`
	MaritalStatus string `json:"maritalStatus"`
	Gender        string `json:"gender"`
}

// Register creates a user profile for an already-authenticated identity
func (h *UsersHandler) Register() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracing.StartHttpServerTracerSpanWithHeader(c.Request.Context(), "RegisterUser", c.Request.Header)
		defer span.Finish()
		tracing.TagComponentRest(span)

		var request registerUserRequest
		if err := c.ShouldBindJSON(&request); err != nil {
			tracing.TraceErr(span, err)
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		existing, err := h.repos.User.GetByFirebaseUID(ctx, request.FirebaseUID)
		if err != nil {
			tracing.TraceErr(span, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if existing != nil {
			c.JSON(http.StatusConflict, gin.H{"error": "user already registered"})
			return
		}

		user := &models.UserProfile{
			FirebaseUID:   request.FirebaseUID,
			FullName:      request.FullName,
			Email:         request.Email,
			Occupation:    request.Occupation,
			Salary:        request.Salary,
			MaritalStatus: request.MaritalStatus,
			Gender:        request.Gender,
		}
		if err := h.repos.User.Create(ctx, user); err != nil {
			tracing.TraceErr(span, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusCreated, user)
	}
}

// Get returns a user profile by id
func (h *UsersHandler) Get() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracing.StartHttpServerTracerSpanWithHeader(c.Request.Context(), "GetUser", c.Request.Header)
		defer span.Finish()
		tracing.TagComponentRest(span)

		id := c.Param("id")
		tracing.TagUserId(span, id)

		user, err := h.repos.User.GetByID(ctx, id)
		if err != nil {
			tracing.TraceErr(span, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if user == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}

		c.JSON(http.StatusOK, user)
	}
}

type updateUserRequest struct {
	FullName      *string `json:"fullName"`
	Occupation    *string `json:"occupation"`
	Salary        *int    `json:"salary"`
	MaritalStatus *string `json:"maritalStatus"`
	Gender        *string `json:"gender"`
}

// Update changes the mutable profile fields
func (h *UsersHandler) Update() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracing.StartHttpServerTracerSpanWithHeader(c.Request.Context(), "UpdateUser", c.Request.Header)
		defer span.Finish()
		tracing.TagComponentRest(span)

		id := c.Param("id")
		tracing.TagUserId(span, id)

		user, err := h.repos.User.GetByID(ctx, id)
		if err != nil {
			tracing.TraceErr(span, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if user == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}

		var request updateUserRequest
		if err := c.ShouldBindJSON(&request); err != nil {
			tracing.TraceErr(span, err)
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		user.FullName = utils.GetOrDefault(request.FullName, user.FullName)
		user.Occupation = utils.GetOrDefault(request.Occupation, user.Occupation)
		user.Salary = utils.GetOrDefault(request.Salary, user.Salary)
		user.MaritalStatus = utils.GetOrDefault(request.MaritalStatus, user.MaritalStatus)
		user.Gender = utils.GetOrDefault(request.Gender, user.Gender)

		if err := h.repos.User.Update(ctx, user); err != nil {
			tracing.TraceErr(span, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, user)
	}
}
