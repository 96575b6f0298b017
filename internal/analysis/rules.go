package analysis

// The factor tables below encode calibrated domain judgement for the target
// climate. Thresholds are evaluated top to bottom, first match wins; linear
// segments are explicit `1.0 - |deviation|*slope` ramps with a floor. Do not
// simplify or merge branches.

// ruleContext carries the limited cross-factor context some evaluators need.
type ruleContext struct {
	Temp       float64             // period mean temperature
	WindSpeed  float64             // period mean wind speed (risk only)
	TempMax    float64             // daily max temperature (risk only)
	WindEffect WindDirectionEffect // pool wind_direction factor
}

// weightedRule is one factor of an additive score: weight × multiplier(value).
type weightedRule struct {
	Weight int
	Eval   func(v float64, ctx ruleContext) float64
}

// penaltyRule is one factor of the inverted risk score; Eval returns <= 0.
type penaltyRule func(v float64, ctx ruleContext) float64

var poolRules = map[string]weightedRule{
	"temperature": {Weight: 20, Eval: func(v float64, _ ruleContext) float64 {
		if v < 25 || v > 35 {
			return 0.25
		}
		if v >= 28 && v <= 32 {
			return 1.0
		}
		if v < 28 {
			return max(0.25, 1.0-(28-v)*0.1)
		}
		return max(0.25, 1.0-(v-32)*0.075)
	}},
	"apparent_temp": {Weight: 18, Eval: func(v float64, _ ruleContext) float64 {
		if v >= 27 && v <= 31 {
			return 1.0
		}
		if v < 27 {
			return max(0, 1.0-(27-v)*0.083)
		}
		return max(0, 1.0-(v-31)*0.083)
	}},
	"wind": {Weight: 18, Eval: func(v float64, ctx ruleContext) float64 {
		switch {
		case v > 30:
			return 0
		case v > 25:
			return 0.28
		case ctx.Temp >= 30 && v >= 12 && v <= 22:
			return 1.0
		case ctx.Temp >= 30 && v < 10:
			return 0.55
		case ctx.Temp >= 28 && ctx.Temp < 30 && v >= 8 && v <= 18:
			return 1.0
		case ctx.Temp < 28 && v > 15:
			return 0.28
		case ctx.Temp < 28 && v <= 15:
			return 0.77
		default:
			return 0.55
		}
	}},
	"dew_point": {Weight: 15, Eval: func(v float64, _ ruleContext) float64 {
		switch {
		case v > 24:
			return 0
		case v > 22:
			return 0.27
		case v > 20:
			return 0.53
		case v > 18:
			return 0.8
		case v >= 13:
			return 1.0
		case v >= 10:
			return 0.67
		default:
			return 0.33
		}
	}},
	"uv": {Weight: 10, Eval: func(v float64, _ ruleContext) float64 {
		switch {
		case v > 11:
			return 0.2
		case v >= 9:
			return 0.5
		case v < 2:
			return 0.5
		case v >= 3 && v <= 7:
			return 1.0
		default:
			return 0.8
		}
	}},
	"clouds": {Weight: 8, Eval: func(v float64, ctx ruleContext) float64 {
		switch {
		case ctx.Temp > 32 && v < 20:
			return 0.25
		case ctx.Temp >= 28 && v >= 30 && v <= 60:
			return 1.0
		case v >= 10 && v < 30:
			return 0.875
		case v > 50 && v <= 70:
			return 0.75
		case v > 85:
			return 0.375
		default:
			return 0.875
		}
	}},
	// The only multiplier that can go negative: any meaningful rain actively
	// subtracts points before the availability cap is applied on top.
	"precipitation": {Weight: 8, Eval: func(v float64, _ ruleContext) float64 {
		if v > 0.3 {
			return -1.875
		}
		if v >= 0.2 {
			return -1.0
		}
		return 1.0
	}},
	"amplitude": {Weight: 5, Eval: func(v float64, _ ruleContext) float64 {
		switch {
		case v < 5:
			return 1.0
		case v <= 8:
			return 0.8
		case v <= 12:
			return 0.4
		default:
			return 0
		}
	}},
	"day_length": {Weight: 3, Eval: func(v float64, _ ruleContext) float64 {
		if v > 13 {
			return 1.0
		}
		if v >= 11 {
			return 0.67
		}
		return 0.33
	}},
	"wind_direction": {Weight: 5, Eval: func(_ float64, ctx ruleContext) float64 {
		if ctx.WindEffect == WindCooling && ctx.Temp > 28 {
			return 1.0
		}
		if ctx.WindEffect == WindHot && ctx.Temp > 28 {
			return 0.4
		}
		return 0.6
	}},
}

var workRules = map[string]weightedRule{
	"temperature": {Weight: 30, Eval: func(v float64, _ ruleContext) float64 {
		switch {
		case v < 12 || v > 35:
			return 0
		case v < 16 || v > 30:
			return 0.17
		case v < 18 || v > 28:
			return 0.33
		case v < 20 || v > 26:
			return 0.6
		case v >= 22 && v <= 24:
			return 1.0
		default:
			return 0.83
		}
	}},
	"wind": {Weight: 22, Eval: func(v float64, ctx ruleContext) float64 {
		switch {
		case v > 35:
			return 0
		case v > 25:
			return 0.23
		case v >= 15:
			if ctx.Temp > 28 {
				return 0.68
			}
			if ctx.Temp < 22 {
				return 0.36
			}
			return 0.55
		case v >= 10:
			if ctx.Temp > 28 {
				return 0.91
			}
			return 0.82
		default:
			return 1.0
		}
	}},
	"dew_point": {Weight: 20, Eval: func(v float64, _ ruleContext) float64 {
		switch {
		case v > 24:
			return 0
		case v > 22:
			return 0.25
		case v > 20:
			return 0.5
		case v > 18:
			return 0.8
		case v >= 13:
			return 1.0
		default:
			return 0.4
		}
	}},
	"pressure": {Weight: 15, Eval: func(v float64, _ ruleContext) float64 {
		switch {
		case v < 1000 || v > 1030:
			return 0
		case v < 1005 || v > 1025:
			return 0.33
		case v < 1010 || v > 1020:
			return 0.67
		default:
			return 1.0
		}
	}},
	"aqi": {Weight: 8, Eval: func(v float64, _ ruleContext) float64 {
		switch {
		case v > 200:
			return 0
		case v > 150:
			return 0.125
		case v > 100:
			return 0.375
		case v > 50:
			return 0.75
		default:
			return 1.0
		}
	}},
	"precipitation": {Weight: 5, Eval: func(v float64, _ ruleContext) float64 {
		switch {
		case v > 10:
			return 0
		case v > 5:
			return 0.2
		case v > 2:
			return 0.6
		default:
			return 1.0
		}
	}},
}

var riskPenalties = map[string]penaltyRule{
	"wind": func(v float64, ctx ruleContext) float64 {
		switch {
		case v > 90:
			return -100
		case v > 70:
			return -80
		case v > 50:
			return -50
		case ctx.WindSpeed > 50:
			return -40
		case ctx.WindSpeed > 35:
			return -25
		case ctx.WindSpeed > 25:
			return -10
		default:
			return 0
		}
	},
	"precipitation": func(v float64, _ ruleContext) float64 {
		switch {
		case v > 30:
			return -60
		case v > 20:
			return -40
		case v > 10:
			return -25
		case v > 5:
			return -10
		default:
			return 0
		}
	},
	"lightning": func(v float64, _ ruleContext) float64 {
		switch {
		case v > 80:
			return -50
		case v > 50:
			return -30
		case v > 20:
			return -15
		default:
			return 0
		}
	},
	"aqi": func(v float64, _ ruleContext) float64 {
		switch {
		case v > 200:
			return -40
		case v > 150:
			return -25
		case v > 100:
			return -10
		default:
			return 0
		}
	},
	"extreme_temp": func(v float64, ctx ruleContext) float64 {
		switch {
		case v < 5:
			return -30
		case v < 10:
			return -15
		case ctx.TempMax > 40:
			return -30
		case ctx.TempMax > 38:
			return -15
		default:
			return 0
		}
	},
	"uv": func(v float64, _ ruleContext) float64 {
		if v > 11 {
			return -10
		}
		return 0
	},
}

// poolFactorValue selects the aggregated metric each pool factor scores.
func poolFactorValue(name string, m *PeriodMetrics, day DaySummary) float64 {
	switch name {
	case "temperature":
		return m.AvgTemp
	case "apparent_temp":
		return m.AvgApparentTemp
	case "wind":
		return m.AvgWind
	case "dew_point":
		return m.AvgDewPoint
	case "uv":
		return m.MaxUV
	case "clouds":
		return m.AvgCloudCover * 100
	case "precipitation":
		return m.MaxPrecipHourly
	case "amplitude":
		return day.Amplitude
	case "day_length":
		return day.DayLengthHours
	case "wind_direction":
		return 0 // evaluated from context
	default:
		return 0
	}
}

// workFactorValue selects the aggregated metric each work factor scores.
func workFactorValue(name string, m *PeriodMetrics, _ DaySummary) float64 {
	switch name {
	case "temperature":
		return m.AvgTemp
	case "wind":
		return m.AvgWind
	case "dew_point":
		return m.AvgDewPoint
	case "pressure":
		return m.AvgPressure
	case "aqi":
		return m.AvgAQI
	case "precipitation":
		return m.TotalPrecipitation
	default:
		return 0
	}
}

// riskFactorValue selects the metric each risk penalty inspects.
func riskFactorValue(name string, m *PeriodMetrics, day DaySummary) float64 {
	switch name {
	case "wind":
		return m.MaxWindGust
	case "precipitation":
		return m.MaxPrecipHourly
	case "lightning":
		return m.MaxLightningPotential
	case "aqi":
		return m.AvgAQI
	case "extreme_temp":
		return day.TempMin
	case "uv":
		return m.MaxUV
	default:
		return 0
	}
}
