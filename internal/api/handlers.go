package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"SwingSentinel/internal/collector"
	"SwingSentinel/internal/model"
	"SwingSentinel/internal/profile"
)

func (s *Server) handleHealth(c *gin.Context) {
	inflight := 0
	if col := s.analyzer.Collector; col != nil {
		inflight = col.Sessions.Active()
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "inflight": inflight})
}

func (s *Server) handleListSymbols(c *gin.Context) {
	symbols := []string{}
	if s.symbols != nil {
		got, err := s.symbols.Symbols(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if got != nil {
			symbols = got
		}
	}
	c.JSON(http.StatusOK, gin.H{"symbols": symbols})
}

func (s *Server) handleListProfiles(c *gin.Context) {
	reg := s.analyzer.Profiles
	c.JSON(http.StatusOK, gin.H{
		"default":     reg.Default().ID,
		"assignments": reg.Assignments(),
		"profiles":    reg.List(),
	})
}

func (s *Server) handleGetProfile(c *gin.Context) {
	p, err := s.analyzer.Profiles.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) handleAnalyze(c *gin.Context) {
	symbol := strings.TrimSpace(c.Param("symbol"))
	if res, ok := s.cached(c, symbol); ok {
		c.Header("X-Cache", "hit")
		c.JSON(http.StatusOK, trimFrames(res, wantFrames(c)))
		return
	}
	res, err := s.analyzer.Analyze(c.Request.Context(), c.Query("session"), symbol, c.Query("profile"))
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, trimFrames(res, wantFrames(c)))
}

// cached returns a fresh cached result of symbol under the requested
// profile, or false when the request must be analyzed live.
func (s *Server) cached(c *gin.Context, symbol string) (*model.AnalysisResult, bool) {
	if s.cache == nil || s.maxAge <= 0 {
		return nil, false
	}
	if refresh, _ := strconv.ParseBool(c.Query("refresh")); refresh {
		return nil, false
	}
	res, at, ok := s.cache.Latest(symbol)
	if !ok || res == nil || time.Since(at) > s.maxAge {
		return nil, false
	}
	if id := c.Query("profile"); id != "" && !strings.EqualFold(id, res.ProfileID) {
		return nil, false
	}
	return res, true
}

// analysisRequest is the body of POST /v1/analysis.
type analysisRequest struct {
	Symbol  string       `json:"symbol"`
	Profile string       `json:"profile"`
	Bars    []requestBar `json:"bars"`
	Frames  bool         `json:"frames"`
}

// requestBar accepts the date as a day, an RFC 3339 time or unix seconds.
type requestBar struct {
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume float64 `json:"volume"`
}

func (s *Server) handleAnalyzeBars(c *gin.Context) {
	var req analysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	bars := make([]model.Bar, 0, len(req.Bars))
	for i, rb := range req.Bars {
		t, err := collector.ParseDate(rb.Date)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "bars[" + strconv.Itoa(i) + "]: " + err.Error()})
			return
		}
		bars = append(bars, model.Bar{Time: t, Open: rb.Open, High: rb.High, Low: rb.Low, Close: rb.Close, Volume: rb.Volume})
	}

	res, err := s.analyzer.AnalyzeBars(strings.ToUpper(strings.TrimSpace(req.Symbol)), req.Profile, bars)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, trimFrames(res, req.Frames || wantFrames(c)))
}

func wantFrames(c *gin.Context) bool {
	v, _ := strconv.ParseBool(c.Query("frames"))
	return v
}

// trimFrames keeps only the last frame unless all were requested.
func trimFrames(res *model.AnalysisResult, all bool) *model.AnalysisResult {
	if all || len(res.Frames) <= 1 {
		return res
	}
	out := *res
	out.Frames = res.Frames[len(res.Frames)-1:]
	return &out
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, profile.ErrUnknownProfile):
		return http.StatusNotFound
	case errors.Is(err, collector.ErrSuperseded):
		return http.StatusConflict
	default:
		return http.StatusBadGateway
	}
}
