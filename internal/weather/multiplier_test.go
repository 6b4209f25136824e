package weather

import (
	"testing"

	"github.com/dripline/dripline/internal/model"
)

func TestCalculateMultiplier(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		temperature float64
		humidity    float64
		want        float64
	}{
		{name: "mild and humid", temperature: 20, humidity: 60, want: 1.0},
		{name: "hot above 30", temperature: 31, humidity: 60, want: 1.3},
		{name: "warm above 25", temperature: 26, humidity: 60, want: 1.2},
		{name: "exactly 30 uses lower band", temperature: 30, humidity: 60, want: 1.2},
		{name: "exactly 25 is neutral", temperature: 25, humidity: 60, want: 1.0},
		{name: "cold below 10", temperature: 5, humidity: 60, want: 0.9},
		{name: "very dry", temperature: 20, humidity: 20, want: 1.15},
		{name: "moderately dry", temperature: 20, humidity: 40, want: 1.05},
		{name: "hot and very dry", temperature: 32, humidity: 20, want: 1.45},
		{name: "extreme heat and dryness", temperature: 40, humidity: 10, want: 1.45},
		{name: "cold and humid stays above floor", temperature: -5, humidity: 90, want: 0.9},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			snapshot := model.WeatherSnapshot{
				TemperatureC: tt.temperature,
				Humidity:     tt.humidity,
			}
			got := CalculateMultiplier(snapshot)
			if diff := got - tt.want; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("CalculateMultiplier(%v°C, %v%%) = %v, want %v", tt.temperature, tt.humidity, got, tt.want)
			}
		})
	}
}
