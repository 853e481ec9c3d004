package dinecluster_test

import (
	"context"
	"fmt"
	"log"

	"github.com/hupe1980/dinecluster"
	"github.com/hupe1980/dinecluster/query"
	"github.com/hupe1980/dinecluster/table"
)

func exampleTables() (table.CanonicalTable, table.FeatureTable) {
	canonical := table.CanonicalTable{
		{Name: "Truffles", City: "Bangalore", Cuisine: "Cafe", Rating: 4.7, RatingCount: 9000, Cost: 900},
		{Name: "Meghana Foods", City: "Bangalore", Cuisine: "Biryani", Rating: 4.5, RatingCount: 7000, Cost: 600},
		{Name: "Toit", City: "Bangalore", Cuisine: "Italian Bistro", Rating: 4.7, RatingCount: 9500, Cost: 1500},
		{Name: "Leopold", City: "Mumbai", Cuisine: "Continental", Rating: 4.1, RatingCount: 4000, Cost: 1300},
	}
	features := table.FeatureTable{
		Names: []string{"Truffles", "Meghana Foods", "Toit", "Leopold"},
		Columns: []table.Column{
			table.NumericColumn("feature1", 0.1, 0.2, 5.0, 5.1),
			table.NumericColumn("feature2", 1.0, 1.1, 7.0, 7.2),
		},
	}
	return canonical, features
}

// Example_recommender builds a session and asks for the best restaurants of a city.
func Example_recommender() {
	canonical, features := exampleTables()

	rec, err := dinecluster.New(context.Background(), canonical, features, dinecluster.WithK(2))
	if err != nil {
		log.Fatal(err)
	}

	for _, r := range rec.TopNByCity("Bangalore", 2).Rows {
		fmt.Println(r.Name, r.Rating)
	}
	// Output:
	// Toit 4.7
	// Truffles 4.7
}

// Example_filter shows the filter view with its default slider bounds.
func Example_filter() {
	canonical, features := exampleTables()

	assignment, _, err := dinecluster.Cluster(context.Background(), features, 2, 42)
	if err != nil {
		log.Fatal(err)
	}
	joined, report, err := dinecluster.Join(canonical, assignment)
	if err != nil {
		log.Fatal(err)
	}

	rows := dinecluster.FilterRecords(joined, query.DefaultFilter("Bangalore", "ital"))
	fmt.Println(len(rows), rows[0].Name, report.Duplicated)
	// Output: 1 Toit 0
}
