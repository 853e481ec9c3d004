package dinecluster

import (
	"fmt"
	"slices"

	"github.com/hupe1980/dinecluster/internal/kmeans"
	"github.com/hupe1980/dinecluster/internal/scale"
)

// ColumnStats holds the fitted mean and population standard deviation of a
// feature column.
type ColumnStats = scale.Stats

// ClusterModel is a fitted clustering: the k-means centroids in scaled space
// plus the scaling statistics needed to label new raw feature vectors.
type ClusterModel struct {
	kmeans.Model

	// Columns lists the feature columns in centroid dimension order.
	Columns []string `json:"columns"`
	// Stats holds the per-column scaling statistics.
	Stats []ColumnStats `json:"stats"`
	// Degenerate lists zero-variance columns that were scaled to zero.
	Degenerate []string `json:"degenerate,omitempty"`

	scaler *scale.Scaler
}

func newClusterModel(m *kmeans.Model, s *scale.Scaler) *ClusterModel {
	return &ClusterModel{
		Model:      *m,
		Columns:    s.Columns(),
		Stats:      s.Stats(),
		Degenerate: s.Degenerate(),
		scaler:     s,
	}
}

// clone deep-copies the slices callers could mutate.
func (m *ClusterModel) clone() *ClusterModel {
	c := *m
	c.Centroids = slices.Clone(m.Centroids)
	c.Sizes = slices.Clone(m.Sizes)
	c.Columns = slices.Clone(m.Columns)
	c.Stats = slices.Clone(m.Stats)
	c.Degenerate = slices.Clone(m.Degenerate)
	return &c
}

// Predict returns the cluster of a raw feature vector given in Columns order.
func (m *ClusterModel) Predict(raw []float64) (int, error) {
	scaled, err := m.scaler.Apply(raw)
	if err != nil {
		return -1, translateError(err)
	}
	return m.Model.Predict(scaled)
}

// PredictNamed returns the cluster of a raw feature vector keyed by column
// name. Every model column must be present; unknown names are rejected.
func (m *ClusterModel) PredictNamed(raw map[string]float64) (int, error) {
	vec, err := m.vector(raw)
	if err != nil {
		return -1, err
	}
	return m.Predict(vec)
}

// Nearest returns the n clusters closest to a raw feature vector, closest first.
func (m *ClusterModel) Nearest(raw []float64, n int) ([]int, error) {
	scaled, err := m.scaler.Apply(raw)
	if err != nil {
		return nil, translateError(err)
	}
	return m.Model.Nearest(scaled, n)
}

func (m *ClusterModel) vector(raw map[string]float64) ([]float64, error) {
	for name := range raw {
		if !slices.Contains(m.Columns, name) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, name)
		}
	}
	vec := make([]float64, len(m.Columns))
	for i, name := range m.Columns {
		v, ok := raw[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrMissingFeature, name)
		}
		vec[i] = v
	}
	return vec, nil
}
