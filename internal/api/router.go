package api

import (
	"github.com/gin-gonic/gin"

	"github.com/sifis-home/netspot-control/internal/auth"
	"github.com/sifis-home/netspot-control/internal/facade"
)

// Server binds a Facade to a gin router implementing the control
// surface's REST routes under /v1.
type Server struct {
	f         *facade.Facade
	guard     *auth.Guard
	backupDir string
}

// New builds a Server. guard may be disabled (auth.New("")) to run
// the control surface unauthenticated. backupDir is the default
// destination for POST /v1/admin/backup when the request omits "dir".
func New(f *facade.Facade, guard *auth.Guard, backupDir string) *Server {
	return &Server{f: f, guard: guard, backupDir: backupDir}
}

// Router builds the gin.Engine with every route registered.
func (s *Server) Router() *gin.Engine {
	r := gin.Default()

	r.GET("/health", s.health)

	v1 := r.Group("/v1")
	{
		v1.POST("/admin/login", s.login)
		v1.POST("/admin/backup", s.guard.Middleware(), s.backup)
		v1.POST("/admin/restore", s.guard.Middleware(), s.restore)

		v1.GET("/netspots", s.listProbes)
		v1.GET("/netspots/start", s.guard.Middleware(), s.startAllProbes)
		v1.GET("/netspots/stop", s.guard.Middleware(), s.stopAllProbes)
		v1.GET("/netspots/restart", s.guard.Middleware(), s.restartAllProbes)
		v1.GET("/netspots/alarms", s.getAlarms)
		v1.GET("/netspots/data", s.getData)
		v1.POST("/netspots/test/alarm", s.guard.Middleware(), s.sendTestAlarm)

		v1.POST("/netspots/webhook", s.guard.Middleware(), s.addWebhook)
		v1.GET("/netspots/webhook/:id", s.getWebhook)
		v1.PUT("/netspots/webhook/:id", s.guard.Middleware(), s.setWebhook)
		v1.DELETE("/netspots/webhook/:id", s.guard.Middleware(), s.deleteWebhook)
		v1.GET("/netspots/webhooks", s.listWebhooks)

		v1.GET("/netspot/:id/status", s.probeStatus)
		v1.GET("/netspot/:id/start", s.guard.Middleware(), s.startProbe)
		v1.GET("/netspot/:id/stop", s.guard.Middleware(), s.stopProbe)
		v1.GET("/netspot/:id/restart", s.guard.Middleware(), s.restartProbe)
		v1.POST("/netspot", s.guard.Middleware(), s.addProbe)
		v1.GET("/netspot/:id", s.getProbe)
		v1.PUT("/netspot/:id", s.guard.Middleware(), s.setProbe)
		v1.DELETE("/netspot/:id", s.guard.Middleware(), s.deleteProbe)

		v1.GET("/network/interfaces", s.networkInterfaces)
	}

	return r
}

func (s *Server) health(c *gin.Context) {
	c.JSON(200, gin.H{"status": "healthy"})
}
