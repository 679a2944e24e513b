package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/stitch0212/CS5800-FinalProject/internal/model"
)

// WriteQueryCSV renders a query record as CSV for offline comparison of runs.
// One header row, one data row per query; route nodes are joined in a single
// column to keep the file spreadsheet-friendly.
func WriteQueryCSV(w io.Writer, recs []model.QueryRecord) error {
	cw := csv.NewWriter(w)
	header := []string{
		"query_id", "start_node", "end_node", "reason", "feasible",
		"distance_km", "travel_time_min", "energy_consumed_kwh",
		"solar_gained_kwh", "final_energy_kwh", "avg_solar_exposure", "route",
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, rec := range recs {
		m := rec.Result.Metrics
		route := ""
		for i, n := range rec.Result.Route {
			if i > 0 {
				route += " "
			}
			route += fmt.Sprintf("%d", n)
		}
		row := []string{
			rec.ID,
			fmt.Sprintf("%d", rec.StartNode),
			fmt.Sprintf("%d", rec.EndNode),
			rec.Result.Reason,
			fmt.Sprintf("%t", rec.Result.Feasible),
			fmt.Sprintf("%.4f", m.DistanceKm),
			fmt.Sprintf("%.2f", m.TravelTimeMinutes),
			fmt.Sprintf("%.4f", m.EnergyConsumedKwh),
			fmt.Sprintf("%.4f", m.SolarGainedKwh),
			fmt.Sprintf("%.4f", m.FinalEnergyKwh),
			fmt.Sprintf("%.1f", m.AvgSolarExposure),
			route,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
