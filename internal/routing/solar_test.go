package routing

import (
	"math"
	"testing"

	"github.com/stitch0212/CS5800-FinalProject/internal/model"
)

func TestSolarGainStandardProfile(t *testing.T) {
	p := model.StandardProfile()
	// 500 irradiance for 10 minutes: 500 * (10/60) * 1.5 * 0.20 * 0.85
	got := SolarGain(10, 500, p)
	want := 500 * (10.0 / 60.0) * 1.5 * 0.20 * 0.85
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("SolarGain = %v, want %v", got, want)
	}
}

func TestSolarGainShortSegmentIsZero(t *testing.T) {
	p := model.StandardProfile()
	if got := SolarGain(0.05, 900, p); got != 0 {
		t.Fatalf("below 6 seconds should yield 0, got %v", got)
	}
	if got := SolarGain(0.06, 900, p); got == 0 {
		t.Fatal("at the threshold the gain should be positive")
	}
}

func TestSolarGainMalformedIrradiance(t *testing.T) {
	p := model.StandardProfile()
	if got := SolarGain(10, math.NaN(), p); got != 0 {
		t.Fatalf("NaN irradiance should yield 0, got %v", got)
	}
	if got := SolarGain(10, -3, p); got != 0 {
		t.Fatalf("negative irradiance should yield 0, got %v", got)
	}
}

func TestEnhancedProfileGainsMore(t *testing.T) {
	std := SolarGain(30, 400, model.StandardProfile())
	enh := SolarGain(30, 400, model.EnhancedProfile())
	if enh <= std {
		t.Fatalf("enhanced profile should out-harvest standard: %v <= %v", enh, std)
	}
}

func TestEnergyCost(t *testing.T) {
	if got := EnergyCost(10, 0.17); math.Abs(got-1.7) > 1e-9 {
		t.Fatalf("EnergyCost = %v, want 1.7", got)
	}
	if got := EnergyCost(0, 0.17); got != 0 {
		t.Fatalf("zero distance should cost 0, got %v", got)
	}
}
