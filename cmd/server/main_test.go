package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Skufu/heartrisk/internal/config"
	"github.com/Skufu/heartrisk/internal/features"
	"github.com/Skufu/heartrisk/internal/inference"
)

type fakeDB struct {
	err error
}

func (f fakeDB) Ping(ctx context.Context) error {
	return f.err
}

type fakePredictor struct {
	result inference.Result
	err    error
	seen   []features.Vector
}

func (f *fakePredictor) Predict(vec features.Vector) (inference.Result, error) {
	f.seen = append(f.seen, vec)
	return f.result, f.err
}

// thalliumAdapter is a real adapter whose decision value is thallium - 5.
func thalliumAdapter(t *testing.T) *inference.Adapter {
	t.Helper()
	names := features.ColumnNames()
	mean := make([]float64, len(names))
	scale := make([]float64, len(names))
	coef := make([]float64, len(names))
	for i := range scale {
		scale[i] = 1
	}
	coef[len(coef)-1] = 1

	scaler, err := inference.NewStandardScaler(names, mean, scale)
	if err != nil {
		t.Fatalf("scaler: %v", err)
	}
	model, err := inference.NewLogisticRegression(names, coef, -5, 0)
	if err != nil {
		t.Fatalf("model: %v", err)
	}
	adapter, err := inference.NewAdapter(scaler, model)
	if err != nil {
		t.Fatalf("adapter: %v", err)
	}
	return adapter
}

const scenarioA = `{
	"age": 50,
	"sex": "Male (1)",
	"chestPainType": "1 - Typical Angina",
	"restingBP": 130,
	"cholesterol": 240,
	"fastingBloodSugarHigh": "No (0)",
	"restingEKG": "0 - Normal",
	"maxHeartRate": 150,
	"exerciseInducedAngina": "No (0)",
	"stDepression": 1.0,
	"stSlope": "1 - Upsloping",
	"majorVesselsColored": 0,
	"thalliumResult": "3 - Normal"
}`

func postJSON(router http.Handler, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func TestRouterHealthz(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := setupRouter(zap.NewNop(), fakeDB{}, &fakePredictor{})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/healthz", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"status":"ok"`) {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
}

func TestRouterReadyz(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name      string
		db        HealthChecker
		predictor Predictor
		status    int
		body      string
	}{
		{"db disabled", nil, &fakePredictor{}, http.StatusOK, `"db":"disabled"`},
		{"db healthy", fakeDB{}, &fakePredictor{}, http.StatusOK, `"db":"ok"`},
		{"db down", fakeDB{err: errors.New("connection refused")}, &fakePredictor{}, http.StatusServiceUnavailable, `"status":"degraded"`},
		{"no artifacts", nil, nil, http.StatusServiceUnavailable, `"artifacts":"missing"`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router := setupRouter(zap.NewNop(), tc.db, tc.predictor)
			w := httptest.NewRecorder()
			req, _ := http.NewRequest("GET", "/readyz", nil)
			router.ServeHTTP(w, req)

			if w.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, w.Code)
			}
			if !strings.Contains(w.Body.String(), tc.body) {
				t.Fatalf("expected %s in body, got %s", tc.body, w.Body.String())
			}
		})
	}
}

func TestPredictJSONScenarios(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := setupRouter(zap.NewNop(), nil, thalliumAdapter(t))

	w := postJSON(router, "/api/predict", scenarioA)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var low predictResponse
	if err := json.Unmarshal(w.Body.Bytes(), &low); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	wantA := []float64{50, 1, 1, 130, 240, 0, 0, 150, 0, 1.0, 1, 0, 3}
	for i, v := range wantA {
		if low.Features.Values[i] != v {
			t.Fatalf("feature %d (%s): expected %g, got %g", i, low.Features.Names[i], v, low.Features.Values[i])
		}
	}
	if low.Risk != inference.RiskLow || low.Label != 0 {
		t.Fatalf("expected low risk for scenario A, got %+v", low)
	}

	w = postJSON(router, "/api/predict", strings.Replace(scenarioA, "3 - Normal", "7 - Reversible Defect", 1))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var high predictResponse
	if err := json.Unmarshal(w.Body.Bytes(), &high); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if high.Features.Values[12] != 7 {
		t.Fatalf("expected thallium 7, got %g", high.Features.Values[12])
	}
	if high.Risk != inference.RiskHigh || high.Label != 1 || high.Probability <= 0.5 || high.Probability > 1 {
		t.Fatalf("expected high risk for scenario B, got %+v", high)
	}
}

func TestPredictJSONValidation(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name   string
		body   string
		status int
	}{
		{"age out of range", strings.Replace(scenarioA, `"age": 50`, `"age": 120`, 1), http.StatusBadRequest},
		{"missing vessels", strings.Replace(scenarioA, `"majorVesselsColored": 0,`, ``, 1), http.StatusBadRequest},
		{"not json", `{"age":`, http.StatusBadRequest},
		{"unknown label", strings.Replace(scenarioA, `"Male (1)"`, `"Male"`, 1), http.StatusUnprocessableEntity},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			predictor := &fakePredictor{}
			router := setupRouter(zap.NewNop(), nil, predictor)
			w := postJSON(router, "/api/predict", tc.body)
			if w.Code != tc.status {
				t.Fatalf("expected %d, got %d: %s", tc.status, w.Code, w.Body.String())
			}
			if len(predictor.seen) != 0 {
				t.Fatal("predictor must not run on invalid input")
			}
		})
	}
}

func TestPredictJSONAcceptsZeroValuedMeasurements(t *testing.T) {
	gin.SetMode(gin.TestMode)
	predictor := &fakePredictor{result: inference.Result{Label: 0, Probability: 0.2}}
	router := setupRouter(zap.NewNop(), nil, predictor)

	w := postJSON(router, "/api/predict", strings.Replace(scenarioA, `"stDepression": 1.0`, `"stDepression": 0`, 1))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for stDepression 0, got %d: %s", w.Code, w.Body.String())
	}
	if v, _ := predictor.seen[0].Get(features.ColSTDepression); v != 0 {
		t.Fatalf("expected ST depression 0, got %g", v)
	}
}

func TestPredictMalformedLabelIsLoggedLoudly(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zap.ErrorLevel)
	router := setupRouter(zap.New(core), nil, &fakePredictor{})

	w := postJSON(router, "/api/predict", strings.Replace(scenarioA, `"3 - Normal"`, `"Normal"`, 1))
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", w.Code)
	}
	if logs.FilterMessage("option label outside the closed option set").Len() != 1 {
		t.Fatalf("expected the malformed label to be logged at error level, got %v", logs.All())
	}
}

func TestPredictShapeMismatchIsServerError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	predictor := &fakePredictor{err: inference.ErrFeatureShapeMismatch}
	router := setupRouter(zap.NewNop(), nil, predictor)

	w := postJSON(router, "/api/predict", scenarioA)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	if strings.Contains(w.Body.String(), "probability") {
		t.Fatalf("no prediction should be returned, got %s", w.Body.String())
	}
}

func TestPredictWithoutArtifactsIsRefused(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := setupRouter(zap.NewNop(), nil, nil)

	w := postJSON(router, "/api/predict", scenarioA)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
}

func TestOptionsEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := setupRouter(zap.NewNop(), nil, &fakePredictor{})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/options", nil)
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var body struct {
		Fields []struct {
			Field   string            `json:"field"`
			Options []features.Option `json:"options"`
		} `json:"fields"`
		Columns []string `json:"columns"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(body.Fields) != len(features.CategoricalFields()) || len(body.Columns) != features.NumFeatures {
		t.Fatalf("unexpected options body: %s", w.Body.String())
	}
	last := body.Fields[len(body.Fields)-1]
	if last.Field != "thalliumResult" || last.Options[2].Code != 7 {
		t.Fatalf("unexpected thallium options: %+v", last)
	}
}

func TestFormPages(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := setupRouter(zap.NewNop(), nil, thalliumAdapter(t))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/", nil)
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "Heart Disease Risk Prediction") {
		t.Fatalf("expected form page, got %d", w.Code)
	}

	form := url.Values{}
	def := features.DefaultForm()
	form.Set("age", "50")
	form.Set("sex", def.Sex)
	form.Set("chestPainType", def.ChestPainType)
	form.Set("restingBP", "130")
	form.Set("cholesterol", "240")
	form.Set("fastingBloodSugarHigh", def.FastingBloodSugarHigh)
	form.Set("restingEKG", def.RestingEKG)
	form.Set("maxHeartRate", "150")
	form.Set("exerciseInducedAngina", def.ExerciseAngina)
	form.Set("stDepression", "1.0")
	form.Set("stSlope", def.STSlope)
	form.Set("majorVesselsColored", "0")
	form.Set("thalliumResult", "7 - Reversible Defect")

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("POST", "/predict", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "High Risk of Heart Disease") {
		t.Fatal("expected high risk block in page")
	}

	form.Set("age", "5")
	w = httptest.NewRecorder()
	req, _ = http.NewRequest("POST", "/predict", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest || strings.Contains(w.Body.String(), "Risk of Heart Disease") {
		t.Fatalf("expected 400 without a result block, got %d", w.Code)
	}
}

// Ensure limitBodySize middleware allows small payloads and blocks large ones.
func TestLimitBodySize(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(limitBodySize(10))
	router.POST("/echo", func(c *gin.Context) {
		_, err := c.GetRawData()
		if err != nil {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "too large"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	t.Run("within limit", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/echo", strings.NewReader("12345"))
		router.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
	})

	t.Run("over limit", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/echo", strings.NewReader("01234567890"))
		router.ServeHTTP(w, req)
		if w.Code != http.StatusRequestEntityTooLarge {
			t.Fatalf("expected 413, got %d", w.Code)
		}
	})
}

func TestLoadAdapterFromShippedFiles(t *testing.T) {
	t.Setenv("ENABLE_DB", "false")
	t.Setenv("ARTIFACT_SOURCE", "file")
	t.Setenv("SCALER_PATH", "models/scaler.json")
	t.Setenv("MODEL_PATH", "models/heart_disease_model.json")
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	adapter, err := loadAdapter(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(adapter.FeatureNames()) != features.NumFeatures {
		t.Fatalf("unexpected feature names: %v", adapter.FeatureNames())
	}
}

func TestLoadAdapterFailsWithoutArtifacts(t *testing.T) {
	t.Setenv("ENABLE_DB", "false")
	t.Setenv("ARTIFACT_SOURCE", "file")
	t.Setenv("SCALER_PATH", "models/missing_scaler.json")
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = loadAdapter(context.Background(), cfg, nil)
	var loadErr *inference.ArtifactLoadError
	if !errors.As(err, &loadErr) {
		t.Fatalf("expected ArtifactLoadError, got %v", err)
	}
}
