package element

import (
	"math"

	"airflownet/model"
)

// standard air
const (
	RhoAir = 1.20410     // density, kg/m^3
	SRho   = 1.097315    // sqrt(RhoAir)
	MuAir  = 1.81625e-5  // viscosity, kg/(m s)
	Sqrt2  = 1.414213562 // sqrt(2)

	// laminar-turbulent transition
	DPTMin       = 1.0e-10 // minimum transition dP, Pa
	ReTransition = 30.0

	DefaultExponent     = 0.65
	DefaultPressureDrop = 75.0 // Pa

	TypePowerLawTest   = "plr_test1"
	TypeLeakageArea    = "plr_leak2"
	dischargeCoef      = 0.6
	leakageRefPressure = 4.0 // Pa
)

// LaminarCoefficient derives the laminar coefficient of a power-law element from
// its turbulent coefficient ct and exponent n.
func LaminarCoefficient(ct, n float64) float64 {
	a := ct / (dischargeCoef * Sqrt2) // flow area
	d := math.Sqrt(a)                 // hydraulic diameter

	// Re = rho V D / mu and F = rho V A
	f := MuAir * ReTransition * a / d
	// F = Ct sqrt(rho) dP^n
	dp := math.Pow(f/(ct*SRho), 1.0/n)
	if dp < DPTMin {
		dp = DPTMin
	}
	// F = Clam (rho / mu) dP
	return (MuAir * f) / (RhoAir * dp)
}

// PowerLaw builds a power-law element from a volumetric leakage rate flow (m^3/h)
// measured at pressure drop dP (Pa) with flow exponent n. Nr is left to the caller.
func PowerLaw(name string, flow, n, dP float64) model.AirflowElement {
	f := RhoAir * flow / 3600.0 // kg/s
	ct := f / (SRho * math.Pow(dP, n))
	return model.AirflowElement{
		Name:  name,
		Type:  TypePowerLawTest,
		Lam:   LaminarCoefficient(ct, n),
		Turb:  ct,
		Expt:  n,
		DP:    dP,
		Flow:  f,
		UnitP: model.UnitPa,
		UnitF: model.UnitM3PerH,
	}
}

// LeakageArea builds a leakage element from an effective leakage area ela (m^2)
// at reference pressure dPref with discharge coefficient cd.
func LeakageArea(name string, ela, dPref, n, cd float64) model.AirflowElement {
	if dPref <= 0 {
		dPref = leakageRefPressure
	}
	ct := ela * cd * Sqrt2 * math.Pow(dPref, 0.5-n)
	return model.AirflowElement{
		Name:  name,
		Type:  TypeLeakageArea,
		Lam:   LaminarCoefficient(ct, n),
		Turb:  ct,
		Expt:  n,
		DP:    dPref,
		Flow:  ct * SRho * math.Pow(dPref, n),
		UnitP: model.UnitPa,
		UnitF: model.UnitM3PerH,
	}
}
