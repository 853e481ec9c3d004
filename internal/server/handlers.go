package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hupe1980/dinecluster"
	"github.com/hupe1980/dinecluster/query"
	"github.com/hupe1980/dinecluster/table"
)

const maxPredictBody = 1 << 20

type healthResponse struct {
	Status  string    `json:"status"`
	Session string    `json:"session"`
	Created time.Time `json:"created_at"`
	Rows    int       `json:"rows"`
}

type clustersResponse struct {
	Session string                    `json:"session"`
	Created time.Time                 `json:"created_at"`
	Params  dinecluster.Params        `json:"params"`
	Model   *dinecluster.ClusterModel `json:"model"`
	Join    dinecluster.JoinReport    `json:"join"`
}

type filterResponse struct {
	Filter  query.Filter      `json:"filter"`
	Count   int               `json:"count"`
	Rows    table.JoinedTable `json:"rows"`
	Cuisine query.Breakdown   `json:"cuisine"`
	Cluster query.Breakdown   `json:"cluster"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.respond(w, http.StatusOK, healthResponse{
		Status:  "ok",
		Session: s.rec.ID(),
		Created: s.rec.CreatedAt(),
		Rows:    s.rec.Len(),
	})
}

func (s *Server) handleCities(w http.ResponseWriter, _ *http.Request) {
	s.respond(w, http.StatusOK, s.rec.Cities())
}

func (s *Server) handleCuisines(w http.ResponseWriter, _ *http.Request) {
	s.respond(w, http.StatusOK, s.rec.Cuisines())
}

func (s *Server) handleTop(w http.ResponseWriter, r *http.Request) {
	req, err := parseTop(r.URL.Query(), s.query.TopN)
	if err != nil {
		s.fail(w, http.StatusBadRequest, "invalid_parameter", err.Error())
		return
	}
	if err := s.validate.Struct(req); err != nil {
		s.fail(w, http.StatusBadRequest, "invalid_parameter", validationMessage(err))
		return
	}
	if req.N > s.query.MaxTopN {
		s.fail(w, http.StatusBadRequest, "invalid_parameter", fmt.Sprintf("N must be at most %d", s.query.MaxTopN))
		return
	}

	s.respond(w, http.StatusOK, s.rec.TopNByCity(req.City, req.N))
}

func (s *Server) handleFilter(w http.ResponseWriter, r *http.Request) {
	req, err := parseFilter(r.URL.Query())
	if err != nil {
		s.fail(w, http.StatusBadRequest, "invalid_parameter", strings.ReplaceAll(err.Error(), "\n", "; "))
		return
	}
	if err := s.validate.Struct(req); err != nil {
		s.fail(w, http.StatusBadRequest, "invalid_parameter", validationMessage(err))
		return
	}

	f := req.filter()
	rows := s.rec.FilterRecords(f)
	s.respond(w, http.StatusOK, filterResponse{
		Filter:  f,
		Count:   len(rows),
		Rows:    rows,
		Cuisine: query.CuisineBreakdown(rows),
		Cluster: query.ClusterBreakdown(rows),
	})
}

func (s *Server) handleClusters(w http.ResponseWriter, _ *http.Request) {
	s.respond(w, http.StatusOK, clustersResponse{
		Session: s.rec.ID(),
		Created: s.rec.CreatedAt(),
		Params:  s.rec.Params(),
		Model:   s.rec.Model(),
		Join:    s.rec.JoinReport(),
	})
}

func (s *Server) handlePoints(w http.ResponseWriter, r *http.Request) {
	x, y := r.URL.Query().Get("x"), r.URL.Query().Get("y")

	var (
		sc  dinecluster.Scatter
		err error
	)
	switch {
	case x == "" && y == "":
		sc, err = s.rec.DefaultScatter()
	case x == "" || y == "":
		s.fail(w, http.StatusBadRequest, "invalid_parameter", "x and y must be given together")
		return
	default:
		sc, err = s.rec.Scatter(x, y)
	}

	if errors.Is(err, dinecluster.ErrUnknownColumn) {
		s.fail(w, http.StatusNotFound, "unknown_column", err.Error())
		return
	}
	if err != nil {
		s.fail(w, http.StatusInternalServerError, "internal", err.Error())
		return
	}
	s.respond(w, http.StatusOK, sc)
}

func (s *Server) handleRestaurants(w http.ResponseWriter, _ *http.Request) {
	s.respond(w, http.StatusOK, s.rec.Records())
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxPredictBody))
	if err != nil {
		s.fail(w, http.StatusBadRequest, "invalid_body", err.Error())
		return
	}

	var req predictRequest
	if err := s.codec.Unmarshal(body, &req); err != nil {
		s.fail(w, http.StatusBadRequest, "invalid_body", err.Error())
		return
	}
	if err := s.validate.Struct(req); err != nil {
		s.fail(w, http.StatusBadRequest, "invalid_body", validationMessage(err))
		return
	}

	id, err := s.rec.Predict(req.Features)
	if err != nil {
		s.fail(w, http.StatusBadRequest, "invalid_features", err.Error())
		return
	}
	s.respond(w, http.StatusOK, predictResponse{Cluster: id})
}
