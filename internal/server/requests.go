package server

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/hupe1980/dinecluster/query"
)

type topRequest struct {
	City string `validate:"required"`
	N    int    `validate:"gte=1"`
}

type filterRequest struct {
	City      string  `validate:"required"`
	Cuisine   string  `validate:"max=128"`
	RatingMin float64 `validate:"gte=0,lte=5"`
	RatingMax float64 `validate:"gte=0,lte=5,gtefield=RatingMin"`
	CostMin   float64 `validate:"gte=0"`
	CostMax   float64 `validate:"gtefield=CostMin"`
	CountMin  int64   `validate:"gte=0"`
	CountMax  int64   `validate:"gtefield=CountMin"`
}

func (r filterRequest) filter() query.Filter {
	return query.Filter{
		City:        r.City,
		Cuisine:     r.Cuisine,
		Rating:      query.Range{Min: r.RatingMin, Max: r.RatingMax},
		Cost:        query.Range{Min: r.CostMin, Max: r.CostMax},
		RatingCount: query.IntRange{Min: r.CountMin, Max: r.CountMax},
	}
}

type predictRequest struct {
	Features map[string]float64 `json:"features" validate:"required,min=1"`
}

type predictResponse struct {
	Cluster int `json:"cluster"`
}

func parseTop(q url.Values, defaultN int) (topRequest, error) {
	req := topRequest{City: strings.TrimSpace(q.Get("city")), N: defaultN}
	if err := intParam(q, "n", &req.N); err != nil {
		return req, err
	}
	return req, nil
}

func parseFilter(q url.Values) (filterRequest, error) {
	d := query.DefaultFilter(strings.TrimSpace(q.Get("city")), strings.TrimSpace(q.Get("cuisine")))
	req := filterRequest{
		City:      d.City,
		Cuisine:   d.Cuisine,
		RatingMin: d.Rating.Min,
		RatingMax: d.Rating.Max,
		CostMin:   d.Cost.Min,
		CostMax:   d.Cost.Max,
		CountMin:  d.RatingCount.Min,
		CountMax:  d.RatingCount.Max,
	}

	err := errors.Join(
		floatParam(q, "rating_min", &req.RatingMin),
		floatParam(q, "rating_max", &req.RatingMax),
		floatParam(q, "cost_min", &req.CostMin),
		floatParam(q, "cost_max", &req.CostMax),
		int64Param(q, "count_min", &req.CountMin),
		int64Param(q, "count_max", &req.CountMax),
	)
	return req, err
}

func intParam(q url.Values, key string, dst *int) error {
	v := q.Get(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: not an integer: %q", key, v)
	}
	*dst = n
	return nil
}

func int64Param(q url.Values, key string, dst *int64) error {
	v := q.Get(key)
	if v == "" {
		return nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fmt.Errorf("%s: not an integer: %q", key, v)
	}
	*dst = n
	return nil
}

func floatParam(q url.Values, key string, dst *float64) error {
	v := q.Get(key)
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fmt.Errorf("%s: not a number: %q", key, v)
	}
	*dst = f
	return nil
}

// validationMessage flattens validator errors into one line.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}

	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s must satisfy %s=%s", fe.Field(), fe.Tag(), fe.Param()))
		} else {
			parts = append(parts, fmt.Sprintf("%s is %s", fe.Field(), fe.Tag()))
		}
	}
	return strings.Join(parts, "; ")
}
