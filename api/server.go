// Package api implements the HTTP annotation backend: folder browsing,
// slice delivery for display, and CSV-backed landmark annotation
// persistence. The coordinate pipeline itself lives in the pkg packages;
// handlers only call into it through its public interfaces.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"spinemark/pkg/config"
)

// sessionHeader carries the token returned by POST /api/set-folder.
const sessionHeader = "X-Session-Token"

// Server is the annotation backend.
type Server struct {
	cfg      *config.Config
	sessions *SessionStore
	router   *gin.Engine
}

// NewServer builds the router with all endpoints registered.
func NewServer(cfg *config.Config) *Server {
	if cfg.Server.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		cfg:      cfg,
		sessions: NewSessionStore(),
		router:   gin.Default(),
	}
	s.router.Use(corsMiddleware())

	s.router.GET("/api/browse", s.handleBrowse)
	s.router.POST("/api/set-folder", s.handleSetFolder)
	s.router.GET("/api/images", s.handleListImages)
	s.router.GET("/api/image/:filename", s.handleGetSlice)
	s.router.GET("/api/image/:filename/info", s.handleGetInfo)
	s.router.POST("/api/annotations", s.handleSaveAnnotations)
	s.router.GET("/api/annotations/:filename", s.handleGetAnnotations)
	s.router.GET("/api/annotated-files", s.handleAnnotatedFiles)
	s.router.GET("/api/preview/:filename", s.handlePreview)

	return s
}

// Router exposes the gin engine, mainly for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Run starts the server on the configured listen address.
func (s *Server) Run() error {
	log.Info("[API] Listening on ", s.cfg.Server.ListenAddr)
	return s.router.Run(s.cfg.Server.ListenAddr)
}

// session resolves the request's session token. A missing or unknown token
// answers 400, matching the "folder not set yet" contract of the frontend.
func (s *Server) session(c *gin.Context) (*Session, bool) {
	token := c.GetHeader(sessionHeader)
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Folder not set yet"})
		return nil, false
	}
	sess, ok := s.sessions.Get(token)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Folder not set yet"})
		return nil, false
	}
	return sess, true
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+sessionHeader)
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
