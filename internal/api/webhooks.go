package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sifis-home/netspot-control/internal/webhook"
)

func (s *Server) addWebhook(c *gin.Context) {
	var w webhook.Webhook
	if err := c.ShouldBindJSON(&w); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	id, err := s.f.AddWebhook(w)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (s *Server) getWebhook(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		fail(c, err)
		return
	}
	w, err := s.f.GetWebhook(id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, w)
}

func (s *Server) setWebhook(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		fail(c, err)
		return
	}
	var w webhook.Webhook
	if err := c.ShouldBindJSON(&w); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	if err := s.f.SetWebhook(id, w); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id})
}

func (s *Server) deleteWebhook(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		fail(c, err)
		return
	}
	if err := s.f.DeleteWebhook(id); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id})
}

func (s *Server) listWebhooks(c *gin.Context) {
	items, err := s.f.ListWebhooks()
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}
