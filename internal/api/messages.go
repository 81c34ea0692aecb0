package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/sifis-home/netspot-control/internal/store"
	"github.com/sifis-home/netspot-control/internal/supervisor"
)

// timeAndLastParams parses the shared ?time&last query pair used by
// both the alarms and data routes. When neither is given, it defaults
// last to store.DefaultQueryLimit so an unqualified request returns
// the most recent rows instead of the entire retained history.
func timeAndLastParams(c *gin.Context) (after *int64, last *int, err error) {
	if raw := c.Query("time"); raw != "" {
		v, parseErr := strconv.ParseInt(raw, 10, 64)
		if parseErr != nil {
			return nil, nil, parseErr
		}
		after = &v
	}
	if raw := c.Query("last"); raw != "" {
		v, parseErr := strconv.Atoi(raw)
		if parseErr != nil {
			return nil, nil, parseErr
		}
		last = &v
	}
	if after == nil && last == nil {
		limit := store.DefaultQueryLimit
		last = &limit
	}
	return after, last, nil
}

func (s *Server) getAlarms(c *gin.Context) {
	after, last, err := timeAndLastParams(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	alarms, err := s.f.GetAlarms(after, last)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, alarms)
}

func (s *Server) getData(c *gin.Context) {
	after, last, err := timeAndLastParams(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	data, err := s.f.GetData(after, last)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, data)
}

func (s *Server) sendTestAlarm(c *gin.Context) {
	seed := supervisor.DefaultTestAlarmSeed()
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&seed); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
	}
	if !s.f.SendTestAlarm(seed) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "no subscriber for test alarm"})
		return
	}
	c.JSON(http.StatusCreated, seed)
}
