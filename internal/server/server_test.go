package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"bqmba/internal/gauge"
)

type MockGauge struct {
	Status *gauge.Status
	Err    error
}

func (m *MockGauge) GetStatus() (*gauge.Status, error) {
	return m.Status, m.Err
}

func TestRootHandler(t *testing.T) {
	tests := []struct {
		name           string
		gauge          *MockGauge
		expectedState  string
		expectedLevel  int
		expectedVol    float64
		expectedCharge bool
	}{
		{
			name: "Charging",
			gauge: &MockGauge{
				Status: &gauge.Status{Voltage: 16.4, Current: 2.1, SOC: 55},
			},
			expectedState:  "Charging",
			expectedLevel:  55,
			expectedVol:    16.4,
			expectedCharge: true,
		},
		{
			name: "Full Charge",
			gauge: &MockGauge{
				Status: &gauge.Status{Voltage: 17.4, SOC: 100, FullyCharged: true},
			},
			expectedState:  "Full",
			expectedLevel:  100,
			expectedVol:    17.4,
			expectedCharge: false,
		},
		{
			name: "Discharging",
			gauge: &MockGauge{
				Status: &gauge.Status{Voltage: 15.2, Current: -1.3, SOC: 40, Discharging: true},
			},
			expectedState:  "Discharging",
			expectedLevel:  40,
			expectedVol:    15.2,
			expectedCharge: false,
		},
		{
			name: "Not Charging (idle)",
			gauge: &MockGauge{
				Status: &gauge.Status{Voltage: 15.8, SOC: 62},
			},
			expectedState:  "Not Charging",
			expectedLevel:  62,
			expectedVol:    15.8,
			expectedCharge: false,
		},
		{
			name: "Gauge unreadable",
			gauge: &MockGauge{
				Err: errors.New("bus failure"),
			},
			expectedState:  "Discharging",
			expectedLevel:  0,
			expectedVol:    0,
			expectedCharge: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Server{
				gauge: tt.gauge,
			}

			req := httptest.NewRequest("GET", "/", nil)
			w := httptest.NewRecorder()

			s.rootHandler(w, req)

			resp := w.Result()
			if resp.StatusCode != http.StatusOK {
				t.Errorf("Expected status 200, got %d", resp.StatusCode)
			}

			var br BatteryResponse
			if err := json.NewDecoder(resp.Body).Decode(&br); err != nil {
				t.Fatalf("Failed to decode response: %v", err)
			}

			if br.State != tt.expectedState {
				t.Errorf("Expected State %s, got %s", tt.expectedState, br.State)
			}
			if br.Level != tt.expectedLevel {
				t.Errorf("Expected Level %d, got %d", tt.expectedLevel, br.Level)
			}
			if br.Voltage != tt.expectedVol {
				t.Errorf("Expected Voltage %f, got %f", tt.expectedVol, br.Voltage)
			}
			if br.IsCharging != tt.expectedCharge {
				t.Errorf("Expected IsCharging %v, got %v", tt.expectedCharge, br.IsCharging)
			}
		})
	}
}
