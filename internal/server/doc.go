// Package server exposes a Recommender over HTTP.
//
// Routes:
//
//	GET  /healthz
//	GET  /v1/cities
//	GET  /v1/cuisines
//	GET  /v1/top?city=&n=
//	GET  /v1/filter?city=&cuisine=&rating_min=&rating_max=&cost_min=&cost_max=&count_min=&count_max=
//	GET  /v1/clusters
//	GET  /v1/clusters/points?x=&y=
//	GET  /v1/restaurants
//	POST /v1/predict
//	GET  /metrics
//
// Errors are JSON bodies of the form {"error":{"status":400,"code":"...","message":"..."}}.
package server
