package model

// Core domain types shared by the routing engine, the HTTP API, and storage.

type GeoPoint struct {
    Lat float64 `json:"lat"`
    Lng float64 `json:"lng"`
}

// EnergyBudget describes the vehicle's energy state for a single query.
type EnergyBudget struct {
    InitialEnergyKwh        float64 `json:"initialEnergyKwh"`
    ConsumptionRateKwhPerKm float64 `json:"consumptionRateKwhPerKm"`
    MinEnergyBufferKwh      float64 `json:"minEnergyBufferKwh,omitempty"`
}

// SolarProfile is a named panel configuration shared by all evaluations in a run.
type SolarProfile struct {
    Name                   string  `json:"name,omitempty" yaml:"name"`
    PanelAreaM2            float64 `json:"panelAreaM2" yaml:"panelAreaM2"`
    PanelEfficiency        float64 `json:"panelEfficiency" yaml:"panelEfficiency"`
    SystemLosses           float64 `json:"systemLosses" yaml:"systemLosses"`
    EffectiveDaylightHours float64 `json:"effectiveDaylightHours" yaml:"effectiveDaylightHours"`
}

// StandardProfile mirrors a typical car-roof installation.
func StandardProfile() SolarProfile {
    return SolarProfile{Name: "standard", PanelAreaM2: 1.5, PanelEfficiency: 0.20, SystemLosses: 0.85, EffectiveDaylightHours: 4}
}

// EnhancedProfile uses high-end commercial panel parameters.
func EnhancedProfile() SolarProfile {
    return SolarProfile{Name: "enhanced", PanelAreaM2: 2.5, PanelEfficiency: 0.25, SystemLosses: 0.90, EffectiveDaylightHours: 5}
}

// PathMetrics summarizes one evaluated route. Immutable once computed.
// Invariant: FinalEnergyKwh == initial - EnergyConsumedKwh + SolarGainedKwh.
type PathMetrics struct {
    DistanceKm        float64 `json:"distanceKm"`
    EnergyConsumedKwh float64 `json:"energyConsumedKwh"`
    SolarGainedKwh    float64 `json:"solarGainedKwh"`
    FinalEnergyKwh    float64 `json:"finalEnergyKwh"`
    TravelTimeMinutes float64 `json:"travelTimeMinutes"`
    AvgSolarExposure  float64 `json:"avgSolarExposure"`
}

// RouteRequest is the body of POST /v1/route. Either node ids or coordinates
// may be given; coordinates are resolved via nearest-node lookup.
type RouteRequest struct {
    Start         *GeoPoint    `json:"start,omitempty"`
    End           *GeoPoint    `json:"end,omitempty"`
    StartNode     int64        `json:"startNode,omitempty"`
    EndNode       int64        `json:"endNode,omitempty"`
    Budget        EnergyBudget `json:"budget"`
    Profile       string       `json:"profile,omitempty"`
    MaxCandidates int          `json:"maxCandidates,omitempty"`
}

// RouteResult is the API-facing outcome of a query. On failure Route is empty,
// SolarGainedKwh and DistanceKm are zero, and FinalEnergyKwh equals the
// initial energy, unchanged.
type RouteResult struct {
    QueryID        string      `json:"queryId"`
    Route          []int64     `json:"route,omitempty"`
    Polyline       []GeoPoint  `json:"polyline,omitempty"`
    Metrics        PathMetrics `json:"metrics"`
    Reason         string      `json:"reason"`
    Feasible       bool        `json:"feasible"`
    SolarGainedKwh float64     `json:"solarGainedKwh"`
    DistanceKm     float64     `json:"distanceKm"`
    FinalEnergyKwh float64     `json:"finalEnergyKwh"`
}

// QueryRecord is the stored history entry for one routing query.
type QueryRecord struct {
    ID        string       `json:"id"`
    TenantID  string       `json:"tenantId,omitempty"`
    StartNode int64        `json:"startNode"`
    EndNode   int64        `json:"endNode"`
    Budget    EnergyBudget `json:"budget"`
    Profile   string       `json:"profile,omitempty"`
    Result    RouteResult  `json:"result"`
    CreatedAt string       `json:"createdAt"`
}

type SubscriptionRequest struct {
    TenantID string   `json:"tenantId"`
    URL      string   `json:"url"`
    Events   []string `json:"events"`
    Secret   string   `json:"secret"`
}

type Subscription struct {
    ID       string   `json:"id"`
    TenantID string   `json:"tenantId"`
    URL      string   `json:"url"`
    Events   []string `json:"events"`
    Secret   string   `json:"secret,omitempty"`
}

// SearchMetrics aggregates engine behavior for one query, for admin views.
type SearchMetrics struct {
    QueryID          string  `json:"queryId"`
    ShortestFeasible bool    `json:"shortestFeasible"`
    Candidates       int     `json:"candidates"`
    ParetoSize       int     `json:"paretoSize"`
    Expanded         int     `json:"expanded"`
    Outcome          string  `json:"outcome"`
    ElapsedMs        float64 `json:"elapsedMs"`
    CreatedAt        string  `json:"createdAt,omitempty"`
}
