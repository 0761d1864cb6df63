package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hesham156/wafarle/pkg/auth"
	"github.com/hesham156/wafarle/pkg/models"
	"github.com/hesham156/wafarle/pkg/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

type registerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone"`
	Password string `json:"password" binding:"required,min=8"`
}

func (s *Server) register(c *gin.Context) {
	var req registerRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := s.auth.Register(c.Request.Context(), req.Name, req.Email, req.Phone, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrEmailTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	go s.mongo.CreateAuditLog(context.Background(), &repository.AuditLog{
		Service:  "storefront",
		Action:   repository.AuditActionRegister,
		EntityID: user.ID,
		Data:     bson.M{"email": user.Email},
	})

	c.JSON(http.StatusCreated, gin.H{
		"id":      user.ID,
		"message": "User created successfully",
	})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (s *Server) login(c *gin.Context) {
	var req loginRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, user, err := s.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
		case errors.Is(err, auth.ErrUserInactive):
			c.JSON(http.StatusForbidden, gin.H{"error": "account disabled"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.SetCookie(sessionCookie, session.Token, cookieMaxAge, "/", "", false, true)

	go s.mongo.CreateAuditLog(context.Background(), &repository.AuditLog{
		Service:  "storefront",
		Action:   repository.AuditActionLogin,
		EntityID: user.ID,
		Data:     bson.M{"email": user.Email},
	})

	c.JSON(http.StatusOK, gin.H{
		"token": session.Token,
		"user": gin.H{
			"id":    user.ID,
			"name":  user.Name,
			"email": user.Email,
			"role":  user.Role,
		},
	})
}

func (s *Server) logout(c *gin.Context) {
	token := bearerToken(c)
	if token == "" {
		if cookie, err := c.Cookie(sessionCookie); err == nil {
			token = cookie
		}
	}
	if token != "" {
		if err := s.auth.Logout(c.Request.Context(), token); err != nil {
			s.logger.Warn("Failed to delete session", zap.Error(err))
		}
	}
	c.SetCookie(sessionCookie, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) currentUser(c *gin.Context) {
	session := s.session(c)

	var user models.User
	if err := s.db.WithContext(c.Request.Context()).Where("id = ?", session.UserID).First(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, user)
}
