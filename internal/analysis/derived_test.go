package analysis

import (
	"math"
	"testing"
)

func approx(t *testing.T, got, want, tol float64) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Errorf("got %v, want %v (±%v)", got, want, tol)
	}
}

func TestWindChill(t *testing.T) {
	tests := []struct {
		name string
		temp float64
		wind float64
		want float64
	}{
		{name: "warm air returns temperature", temp: 25, wind: 30, want: 25},
		{name: "boundary 24 returns temperature", temp: 24, wind: 20, want: 24},
		{name: "calm wind returns temperature", temp: 5, wind: 4.9, want: 5},
		{name: "cold and windy feels colder", temp: 10, wind: 20, want: 7.38},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			approx(t, windChill(tt.temp, tt.wind), tt.want, 0.02)
		})
	}
}

func TestHeatIndex(t *testing.T) {
	tests := []struct {
		name     string
		temp     float64
		humidity float64
		want     float64
	}{
		{name: "mild temperature returns temperature", temp: 26, humidity: 90, want: 26},
		{name: "dry air returns temperature", temp: 35, humidity: 50, want: 35},
		{name: "hot and humid feels hotter", temp: 32, humidity: 70, want: 40.41},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			approx(t, heatIndex(tt.temp, tt.humidity), tt.want, 0.02)
		})
	}
}

func TestDewPointComfort(t *testing.T) {
	tests := []struct {
		dewPoint float64
		want     DewComfort
	}{
		{25, DewExtremelyMuggy},
		{24, DewMuggy},
		{20, DewMuggy},
		{19.9, DewComfortable},
		{13, DewComfortable},
		{12.9, DewDryAir},
		{10, DewDryAir},
		{9.9, DewVeryDry},
	}
	for _, tt := range tests {
		if got := dewPointComfort(tt.dewPoint); got != tt.want {
			t.Errorf("dewPointComfort(%v) = %q, want %q", tt.dewPoint, got, tt.want)
		}
	}
}

func TestCloudEffect(t *testing.T) {
	tests := []struct {
		name  string
		temp  float64
		cloud float64
		want  CloudEffect
	}{
		{name: "hot clear sky", temp: 33, cloud: 10, want: CloudScorchingSun},
		{name: "warm partial cover", temp: 29, cloud: 45, want: CloudTemperedSun},
		{name: "closed sky", temp: 20, cloud: 90, want: CloudOvercast},
		{name: "mild clear sky", temp: 22, cloud: 10, want: CloudNormal},
		{name: "hot but covered enough", temp: 33, cloud: 25, want: CloudNormal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cloudEffect(tt.temp, tt.cloud); got != tt.want {
				t.Errorf("cloudEffect(%v, %v) = %q, want %q", tt.temp, tt.cloud, got, tt.want)
			}
		})
	}
}

func TestWindDirectionEffect(t *testing.T) {
	tests := []struct {
		name      string
		direction float64
		speed     float64
		want      WindDirectionEffect
	}{
		{name: "light wind has no effect", direction: 180, speed: 9.9, want: WindNoEffect},
		{name: "southerly cools", direction: 180, speed: 15, want: WindCooling},
		{name: "south boundary low", direction: 135, speed: 15, want: WindCooling},
		{name: "south boundary high", direction: 225, speed: 15, want: WindCooling},
		{name: "northwesterly heats", direction: 330, speed: 15, want: WindHot},
		{name: "northeasterly heats", direction: 45, speed: 15, want: WindHot},
		{name: "easterly neutral", direction: 90, speed: 15, want: WindNeutral},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := windDirectionEffect(tt.direction, tt.speed); got != tt.want {
				t.Errorf("windDirectionEffect(%v, %v) = %q, want %q", tt.direction, tt.speed, got, tt.want)
			}
		})
	}
}
