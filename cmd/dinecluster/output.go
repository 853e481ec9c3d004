package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/hupe1980/dinecluster"
	"github.com/hupe1980/dinecluster/codec"
	"github.com/hupe1980/dinecluster/query"
	"github.com/hupe1980/dinecluster/table"
)

type clusterSummary struct {
	Session string                    `json:"session"`
	Params  dinecluster.Params        `json:"params"`
	Model   *dinecluster.ClusterModel `json:"model"`
	Join    dinecluster.JoinReport    `json:"join"`
}

func writeJSON(w io.Writer, v any) error {
	return codec.EncodeIndent(w, codec.Default, v)
}

func newTabWriter(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func writeRows(w io.Writer, rows table.JoinedTable) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "no matching restaurants")
		return err
	}

	tw := newTabWriter(w)
	fmt.Fprintln(tw, "NAME\tCITY\tCUISINE\tRATING\tVOTES\tCOST\tCLUSTER")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%.1f\t%d\t%s\t%s\n",
			r.Name, r.City, r.Cuisine, r.Rating, r.RatingCount,
			strconv.FormatFloat(r.Cost, 'f', -1, 64), r.Cluster)
	}
	return tw.Flush()
}

func writeBreakdown(w io.Writer, title string, b query.Breakdown) error {
	if len(b) == 0 {
		return nil
	}
	tw := newTabWriter(w)
	fmt.Fprintf(tw, "%s\tCOUNT\tSHARE\n", strings.ToUpper(title))
	for _, s := range b {
		fmt.Fprintf(tw, "%s\t%d\t%.1f%%\n", s.Key, s.Count, 100*s.Proportion)
	}
	return tw.Flush()
}

func writeTop(w io.Writer, city string, res query.TopResult) error {
	if res.Empty() {
		_, err := fmt.Fprintf(w, "no restaurants in %q\n", city)
		return err
	}
	if err := writeRows(w, res.Rows); err != nil {
		return err
	}
	fmt.Fprintln(w)
	if err := writeBreakdown(w, "cuisine", res.Cuisine); err != nil {
		return err
	}
	fmt.Fprintln(w)
	return writeBreakdown(w, "cluster", res.Cluster)
}

func writeClusters(w io.Writer, rec *dinecluster.Recommender) error {
	m := rec.Model()
	p := rec.Params()
	j := rec.JoinReport()

	fmt.Fprintf(w, "session     %s\n", rec.ID())
	fmt.Fprintf(w, "k           %d (seed %d, n_init %d)\n", p.K, p.Seed, p.NInit)
	fmt.Fprintf(w, "iterations  %d (converged %t)\n", m.Iterations, m.Converged)
	fmt.Fprintf(w, "inertia     %.4f\n", m.Inertia)
	fmt.Fprintf(w, "columns     %s\n", strings.Join(m.Columns, ", "))
	if len(m.Degenerate) > 0 {
		fmt.Fprintf(w, "degenerate  %s\n", strings.Join(m.Degenerate, ", "))
	}
	fmt.Fprintf(w, "join        %d rows, %d duplicated, %d unmatched\n", j.Rows, j.Duplicated, j.Unmatched)
	fmt.Fprintln(w)

	tw := newTabWriter(w)
	fmt.Fprintf(tw, "CLUSTER\tSIZE\t%s\n", strings.ToUpper(strings.Join(m.Columns, "\t")))
	for c := 0; c < m.K; c++ {
		vals := make([]string, 0, m.Dim)
		for _, v := range m.Centroid(c) {
			vals = append(vals, strconv.FormatFloat(v, 'f', 3, 64))
		}
		fmt.Fprintf(tw, "%d\t%d\t%s\n", c, m.Sizes[c], strings.Join(vals, "\t"))
	}
	return tw.Flush()
}
