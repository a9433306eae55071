package api

import (
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteJSON(t *testing.T) {
	tests := map[string]struct {
		data         any
		expectedCode int
	}{
		"Encodable":   {data: map[string]float64{"sl": 80}, expectedCode: http.StatusOK},
		"NaN":         {data: map[string]float64{"sl": math.NaN()}, expectedCode: http.StatusInternalServerError},
		"Unsupported": {data: map[string]any{"ch": make(chan int)}, expectedCode: http.StatusInternalServerError},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeJSON(rec, http.StatusOK, tc.data)

			assert.Equal(t, tc.expectedCode, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			require.NotZero(t, rec.Body.Len())

			var body map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			if tc.expectedCode != http.StatusOK {
				assert.Equal(t, "Failed to encode response", body["error"])
			}
		})
	}
}
