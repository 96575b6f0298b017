package analysis

import "math"

// DewComfort categorizes how the dew point feels.
type DewComfort string

const (
	DewVeryDry        DewComfort = "very dry"
	DewDryAir         DewComfort = "dry air"
	DewComfortable    DewComfort = "comfortable"
	DewMuggy          DewComfort = "muggy"
	DewExtremelyMuggy DewComfort = "extremely muggy"
)

// CloudEffect categorizes how cloud cover modulates the sun for the period.
type CloudEffect string

const (
	CloudScorchingSun CloudEffect = "scorching sun"
	CloudTemperedSun  CloudEffect = "tempered sun (ideal)"
	CloudOvercast     CloudEffect = "overcast"
	CloudNormal       CloudEffect = "normal"
)

// WindDirectionEffect categorizes the thermal effect of the prevailing wind.
type WindDirectionEffect string

const (
	WindNoEffect WindDirectionEffect = "no effect"
	WindCooling  WindDirectionEffect = "cooling"
	WindHot      WindDirectionEffect = "hot"
	WindNeutral  WindDirectionEffect = "neutral"
)

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// windChill applies the standard wind-chill regression. Identity above 24°C or
// below 5 km/h of wind, where the formula is not defined.
func windChill(temp, windKmh float64) float64 {
	if temp >= 24 || windKmh < 5 {
		return temp
	}
	w := math.Pow(windKmh, 0.16)
	return round2(13.12 + 0.6215*temp - 11.37*w + 0.3965*temp*w)
}

// heatIndex applies a Steadman-style regression in °C and relative humidity
// percent. Identity at or below 26°C or 50% humidity.
func heatIndex(temp, humidityPct float64) float64 {
	if temp <= 26 || humidityPct <= 50 {
		return temp
	}
	t2 := temp * temp
	h2 := humidityPct * humidityPct
	hi := -8.78469475556 +
		1.61139411*temp +
		2.33854883889*humidityPct +
		-0.14611605*temp*humidityPct +
		-0.012308094*t2 +
		-0.0164248277778*h2 +
		0.002211732*t2*humidityPct +
		0.00072546*temp*h2 +
		-0.000003582*t2*h2
	return round2(hi)
}

func dewPointComfort(dewPoint float64) DewComfort {
	switch {
	case dewPoint > 24:
		return DewExtremelyMuggy
	case dewPoint >= 20:
		return DewMuggy
	case dewPoint >= 13:
		return DewComfortable
	case dewPoint >= 10:
		return DewDryAir
	default:
		return DewVeryDry
	}
}

func cloudEffect(temp, cloudCoverPct float64) CloudEffect {
	switch {
	case temp > 32 && cloudCoverPct < 20:
		return CloudScorchingSun
	case temp >= 28 && cloudCoverPct >= 30 && cloudCoverPct <= 60:
		return CloudTemperedSun
	case cloudCoverPct > 85:
		return CloudOvercast
	default:
		return CloudNormal
	}
}

// windEffectThresholdKmh is the mean wind speed below which direction is irrelevant.
const windEffectThresholdKmh = 10

func windDirectionEffect(directionDeg, windSpeed float64) WindDirectionEffect {
	if windSpeed < windEffectThresholdKmh {
		return WindNoEffect
	}
	switch {
	case directionDeg >= 135 && directionDeg <= 225:
		return WindCooling
	case directionDeg >= 315 || directionDeg <= 45:
		return WindHot
	default:
		return WindNeutral
	}
}
