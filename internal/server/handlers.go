package server

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/deusflow/ainews/internal/news"
)

const (
	maxClassifyTitles  = 500
	defaultDigestLimit = 10
)

func (s *Server) cacheControl() string {
	return fmt.Sprintf("public, s-maxage=%d, stale-while-revalidate=%d",
		int(s.opts.CacheTTL.Seconds()), int(s.opts.StaleTTL.Seconds()))
}

func cacheStatus(hit bool) string {
	if hit {
		return "HIT"
	}
	return "MISS"
}

func parseFilter(c *gin.Context) (news.Filter, error) {
	period, err := news.ParsePeriod(c.Query("period"))
	if err != nil {
		return news.Filter{}, err
	}
	hot, _ := strconv.ParseBool(c.DefaultQuery("hot", "false"))
	return news.Filter{
		Query:   c.Query("q"),
		Topic:   c.Query("topic"),
		Period:  period,
		HotOnly: hot,
	}, nil
}

// handleNews never fails without a body: upstream errors produce a 500 with
// the empty envelope so clients can render an empty state.
func (s *Server) handleNews(c *gin.Context) {
	filter, err := parseFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, hit, err := s.opts.Service.News(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, news.EmptyResponse(s.now()))
		return
	}

	c.Header("Cache-Control", s.cacheControl())
	c.Header("X-Cache", cacheStatus(hit))

	if filter.IsZero() {
		c.JSON(http.StatusOK, resp)
		return
	}

	now := s.now()
	filtered := filter.Apply(resp.Items, now)
	titles := make([]string, len(filtered))
	for i, it := range filtered {
		titles[i] = it.Title
	}
	counts := news.CountPeriods(resp.Items, now)

	c.JSON(http.StatusOK, &news.Response{
		Items:     filtered,
		Sources:   resp.Sources,
		Trending:  s.opts.Classifier.ExtractTrendingTopics(titles),
		FetchedAt: resp.FetchedAt,
		Counts:    &counts,
	})
}

func (s *Server) handleTrending(c *gin.Context) {
	resp, hit, err := s.opts.Service.News(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		empty := news.EmptyResponse(s.now())
		c.JSON(http.StatusInternalServerError, gin.H{"trending": empty.Trending, "fetchedAt": empty.FetchedAt})
		return
	}

	c.Header("Cache-Control", s.cacheControl())
	c.Header("X-Cache", cacheStatus(hit))
	c.JSON(http.StatusOK, gin.H{"trending": resp.Trending, "fetchedAt": resp.FetchedAt})
}

type classifyRequest struct {
	Titles []string `json:"titles" binding:"required"`
}

type classifyResult struct {
	Title     string `json:"title"`
	Related   bool   `json:"related"`
	Relevance int    `json:"relevance"`
}

func (s *Server) handleClassify(c *gin.Context) {
	var req classifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "body must be {\"titles\": [...]}"})
		return
	}
	if len(req.Titles) > maxClassifyTitles {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("at most %d titles per request", maxClassifyTitles)})
		return
	}

	results := make([]classifyResult, len(req.Titles))
	for i, title := range req.Titles {
		results[i] = classifyResult{
			Title:     title,
			Related:   s.opts.Classifier.IsDomainRelated(title),
			Relevance: s.opts.Classifier.ScoreRelevance(title),
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"results":  results,
		"trending": s.opts.Classifier.ExtractTrendingTopics(req.Titles),
	})
}

func (s *Server) handleDigest(c *gin.Context) {
	limit := defaultDigestLimit
	if v := strings.TrimSpace(c.Query("limit")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			c.String(http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	resp, _, err := s.opts.Service.News(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		c.String(http.StatusInternalServerError, "news is temporarily unavailable")
		return
	}

	c.Header("Cache-Control", s.cacheControl())
	c.String(http.StatusOK, news.FormatDigest(resp.Items, limit, s.now()))
}
