package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/sifis-home/netspot-control/internal/apierr"
	"github.com/sifis-home/netspot-control/internal/facade"
	"github.com/sifis-home/netspot-control/internal/netspotcfg"
	"github.com/sifis-home/netspot-control/internal/supervisor"
)

func idParam(c *gin.Context) (int, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return 0, apierr.Newf(apierr.InvalidRequest, "id must be an integer: %s", c.Param("id"))
	}
	return id, nil
}

func (s *Server) listProbes(c *gin.Context) {
	c.JSON(http.StatusOK, s.f.ListProbes())
}

func (s *Server) startAllProbes(c *gin.Context) {
	c.JSON(http.StatusOK, s.f.StartAllProbes())
}

func (s *Server) stopAllProbes(c *gin.Context) {
	c.JSON(http.StatusOK, s.f.StopAllProbes())
}

func (s *Server) restartAllProbes(c *gin.Context) {
	c.JSON(http.StatusOK, s.f.RestartAllProbes())
}

func (s *Server) probeStatus(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		fail(c, err)
		return
	}
	status, err := s.f.ProbeStatus(id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

func (s *Server) startProbe(c *gin.Context) {
	s.lifecycle(c, s.f.StartProbe)
}

func (s *Server) stopProbe(c *gin.Context) {
	s.lifecycle(c, s.f.StopProbe)
}

func (s *Server) restartProbe(c *gin.Context) {
	s.lifecycle(c, s.f.RestartProbe)
}

func (s *Server) lifecycle(c *gin.Context, op func(int) (supervisor.Status, error)) {
	id, err := idParam(c)
	if err != nil {
		fail(c, err)
		return
	}
	status, err := op(id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

func (s *Server) addProbe(c *gin.Context) {
	var cfg netspotcfg.ProbeConfig
	if err := c.ShouldBindJSON(&cfg); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	id, err := s.f.AddProbe(cfg)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (s *Server) getProbe(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		fail(c, err)
		return
	}
	cfg, err := s.f.GetProbeConfig(id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, cfg)
}

func (s *Server) setProbe(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		fail(c, err)
		return
	}
	var cfg netspotcfg.ProbeConfig
	if err := c.ShouldBindJSON(&cfg); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	if err := s.f.SetProbeConfig(id, cfg); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id})
}

func (s *Server) deleteProbe(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		fail(c, err)
		return
	}
	if err := s.f.DeleteProbe(id); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id})
}

func (s *Server) networkInterfaces(c *gin.Context) {
	names, err := facade.NetworkInterfaces()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, names)
}
