package server

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/cryptocrystian/pravado-gateway/proxy"
)

// registerRoutes declares the inbound surface. Each route binds to one pool
// and one envelope policy; everything else is parameter plumbing.
func (s *Server) registerRoutes() {
	s.engine.GET("/ping", s.handlePing)

	api := s.engine.Group("/api")
	api.GET("/agents", s.handleListAgents)
	api.GET("/agents/:id", s.handleGetAgent)
	api.GET("/content/briefs", s.handleListBriefs)
	api.POST("/content/briefs/:id/queue", s.handleQueueBrief)
	api.GET("/personalities", s.handleListPersonalities)
	api.POST("/personalities/duplicates", s.handleFindDuplicates)

	pr := api.Group("/pr")
	pr.GET("/journalists", s.handleListJournalists)
	pr.POST("/journalists/graph", s.handleJournalistGraph)
	pr.GET("/outlets", s.handleListOutlets)
}

func (s *Server) handleListAgents(c *gin.Context) {
	s.forward(c, s.core, policyWrapped, "/api/v1/agents", nil)
}

func (s *Server) handleGetAgent(c *gin.Context) {
	s.withParam(c, policyWrapped, ginParam(c, "id"), func(id string) {
		s.forward(c, s.core, policyWrapped, "/api/v1/agents/"+url.PathEscape(id), nil)
	})
}

func (s *Server) handleListBriefs(c *gin.Context) {
	q := url.Values{}
	q.Set("limit", c.DefaultQuery("limit", "20"))
	if status := c.Query("status"); status != "" {
		q.Set("status", status)
	}
	s.forward(c, s.core, policyWrapped, "/api/v1/content/briefs?"+q.Encode(), nil)
}

func (s *Server) handleQueueBrief(c *gin.Context) {
	s.withParam(c, policyWrapped, ginParam(c, "id"), func(id string) {
		s.forward(c, s.core, policyWrapped, "/api/v1/content/briefs/"+url.PathEscape(id)+"/queue",
			&proxy.Options{Method: http.MethodPost})
	})
}

func (s *Server) handleListPersonalities(c *gin.Context) {
	q := url.Values{}
	q.Set("limit", c.DefaultQuery("limit", "50"))
	s.forward(c, s.core, policyWrapped, "/api/v1/personalities?"+q.Encode(), nil)
}

func (s *Server) handleFindDuplicates(c *gin.Context) {
	s.forward(c, s.core, policyWrapped, "/api/v1/personalities/duplicates",
		&proxy.Options{Method: http.MethodPost})
}

func (s *Server) handleListJournalists(c *gin.Context) {
	q := url.Values{}
	q.Set("limit", c.DefaultQuery("limit", "50"))
	s.forward(c, s.pr, policyPassthrough, "/api/v1/journalists?"+q.Encode(), nil)
}

func (s *Server) handleJournalistGraph(c *gin.Context) {
	body, err := readJSONBody(c)
	if err != nil {
		s.fail(c, policyPassthrough, &proxy.Error{Status: http.StatusBadRequest, Message: err.Error()})
		return
	}
	s.forward(c, s.pr, policyPassthrough, "/api/v1/journalists/graph",
		&proxy.Options{Method: http.MethodPost, Body: body})
}

func (s *Server) handleListOutlets(c *gin.Context) {
	s.forward(c, s.pr, policyPassthrough, "/api/v1/outlets", nil)
}
