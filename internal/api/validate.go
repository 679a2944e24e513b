package api

import (
	"fmt"

	"github.com/stitch0212/CS5800-FinalProject/internal/model"
)

func validateRouteRequest(req *model.RouteRequest) error {
	hasNodes := req.StartNode != 0 || req.EndNode != 0
	hasCoords := req.Start != nil || req.End != nil
	if !hasNodes && !hasCoords {
		return fmt.Errorf("start/end required (node ids or coordinates)")
	}
	if hasNodes && (req.StartNode == 0 || req.EndNode == 0) {
		return fmt.Errorf("both startNode and endNode required")
	}
	if hasCoords && !hasNodes {
		if req.Start == nil || req.End == nil {
			return fmt.Errorf("both start and end coordinates required")
		}
		for _, p := range []*model.GeoPoint{req.Start, req.End} {
			if p.Lat < -90 || p.Lat > 90 || p.Lng < -180 || p.Lng > 180 {
				return fmt.Errorf("coordinates out of range: (%v, %v)", p.Lat, p.Lng)
			}
		}
	}
	if req.Budget.InitialEnergyKwh < 0 {
		return fmt.Errorf("budget.initialEnergyKwh must be >= 0")
	}
	if req.Budget.ConsumptionRateKwhPerKm < 0 {
		return fmt.Errorf("budget.consumptionRateKwhPerKm must be >= 0")
	}
	if req.Budget.MinEnergyBufferKwh < 0 {
		return fmt.Errorf("budget.minEnergyBufferKwh must be >= 0")
	}
	if req.MaxCandidates < 0 {
		return fmt.Errorf("maxCandidates must be >= 0")
	}
	if req.Profile != "" && req.Profile != "standard" && req.Profile != "enhanced" {
		return fmt.Errorf("unknown profile: %s (allowed: standard, enhanced)", req.Profile)
	}
	return nil
}
