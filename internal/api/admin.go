package api

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
)

type loginRequest struct {
	Secret string `json:"secret" binding:"required"`
}

func (s *Server) login(c *gin.Context) {
	if !s.guard.Enabled() {
		c.JSON(http.StatusOK, gin.H{"token": "", "expires_at": 0})
		return
	}
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	token, expiresAt, err := s.guard.Login(req.Secret)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid secret"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "expires_at": expiresAt})
}

type backupRequest struct {
	// Dir defaults to the runtime path's "backups" subdirectory when empty.
	Dir string `json:"dir"`
}

func (s *Server) backup(c *gin.Context) {
	var req backupRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	if req.Dir == "" {
		req.Dir = s.backupDir
	}
	path, err := s.f.BackupDB(req.Dir)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"path": path})
}

type restoreRequest struct {
	Path string `json:"path" binding:"required"`
}

func (s *Server) restore(c *gin.Context) {
	var req restoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if _, err := os.Stat(req.Path); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "backup file not found"})
		return
	}
	if err := s.f.RestoreDB(req.Path); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"restored_from": req.Path})
}
