package main

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Skufu/heartrisk/internal/features"
	"github.com/Skufu/heartrisk/internal/inference"
	"github.com/Skufu/heartrisk/internal/logging"
	"github.com/Skufu/heartrisk/internal/web"
)

var errNotReady = errors.New("model artifacts are not loaded")

type handler struct {
	log       *zap.Logger
	predictor Predictor
}

// predictRequest is the wire form of the thirteen inputs. Selections are
// sent as their display labels, exactly as listed by /api/options.
type predictRequest struct {
	Age                   int      `json:"age" form:"age" binding:"required,min=20,max=100"`
	Sex                   string   `json:"sex" form:"sex" binding:"required"`
	ChestPainType         string   `json:"chestPainType" form:"chestPainType" binding:"required"`
	RestingBP             int      `json:"restingBP" form:"restingBP" binding:"required,min=80,max=200"`
	Cholesterol           int      `json:"cholesterol" form:"cholesterol" binding:"required,min=100,max=400"`
	FastingBloodSugarHigh string   `json:"fastingBloodSugarHigh" form:"fastingBloodSugarHigh" binding:"required"`
	RestingEKG            string   `json:"restingEKG" form:"restingEKG" binding:"required"`
	MaxHeartRate          int      `json:"maxHeartRate" form:"maxHeartRate" binding:"required,min=60,max=220"`
	ExerciseAngina        string   `json:"exerciseInducedAngina" form:"exerciseInducedAngina" binding:"required"`
	STDepression          *float64 `json:"stDepression" form:"stDepression" binding:"required,min=0,max=10"`
	STSlope               string   `json:"stSlope" form:"stSlope" binding:"required"`
	MajorVessels          *int     `json:"majorVesselsColored" form:"majorVesselsColored" binding:"required,min=0,max=3"`
	Thallium              string   `json:"thalliumResult" form:"thalliumResult" binding:"required"`
}

func (r predictRequest) rawForm() features.RawForm {
	form := features.RawForm{
		Age:                   r.Age,
		Sex:                   r.Sex,
		ChestPainType:         r.ChestPainType,
		RestingBP:             r.RestingBP,
		Cholesterol:           r.Cholesterol,
		FastingBloodSugarHigh: r.FastingBloodSugarHigh,
		RestingEKG:            r.RestingEKG,
		MaxHeartRate:          r.MaxHeartRate,
		ExerciseAngina:        r.ExerciseAngina,
		STSlope:               r.STSlope,
		Thallium:              r.Thallium,
	}
	if r.STDepression != nil {
		form.STDepression = *r.STDepression
	}
	if r.MajorVessels != nil {
		form.MajorVessels = *r.MajorVessels
	}
	return form
}

type featuresBody struct {
	Names  []string  `json:"names"`
	Values []float64 `json:"values"`
}

type predictResponse struct {
	Risk        inference.Risk `json:"risk"`
	Label       int            `json:"label"`
	Probability float64        `json:"probability"`
	Features    featuresBody   `json:"features"`
}

type optionsField struct {
	Field   features.Field    `json:"field"`
	Options []features.Option `json:"options"`
}

func (h *handler) options(c *gin.Context) {
	fields := features.CategoricalFields()
	out := make([]optionsField, 0, len(fields))
	for _, field := range fields {
		opts, err := features.Options(field)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		out = append(out, optionsField{Field: field, Options: opts})
	}
	c.JSON(http.StatusOK, gin.H{
		"fields":   out,
		"defaults": features.DefaultForm(),
		"columns":  features.ColumnNames(),
	})
}

func (h *handler) predictJSON(c *gin.Context) {
	var req predictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload", "details": err.Error()})
		return
	}

	vec, res, err := h.predict(c, req.rawForm())
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, predictResponse{
		Risk:        res.Risk(),
		Label:       res.Label,
		Probability: res.Probability,
		Features:    featuresBody{Names: vec.Names(), Values: vec.Values()},
	})
}

func (h *handler) form(c *gin.Context) {
	c.HTML(http.StatusOK, web.PageTemplate, web.NewPage(features.DefaultForm()))
}

func (h *handler) predictForm(c *gin.Context) {
	var req predictRequest
	if err := c.ShouldBind(&req); err != nil {
		c.HTML(http.StatusBadRequest, web.PageTemplate, web.NewPage(req.rawForm()).WithError("Please check the entered values: "+err.Error()))
		return
	}

	form := req.rawForm()
	_, res, err := h.predict(c, form)
	if err != nil {
		c.HTML(statusFor(err), web.PageTemplate, web.NewPage(form).WithError(err.Error()))
		return
	}
	c.HTML(http.StatusOK, web.PageTemplate, web.NewPage(form).WithResult(res))
}

// predict runs encoder and adapter. Contract violations are logged at error
// level here so they are never lost behind a 4xx.
func (h *handler) predict(c *gin.Context, form features.RawForm) (features.Vector, inference.Result, error) {
	log := logging.RequestLogger(h.log, c)
	if h.predictor == nil {
		return features.Vector{}, inference.Result{}, errNotReady
	}

	vec, err := features.EncodeForm(form)
	if err != nil {
		if errors.Is(err, features.ErrMalformedInputLabel) {
			log.Error("option label outside the closed option set", zap.Error(err))
		}
		_ = c.Error(err)
		return features.Vector{}, inference.Result{}, err
	}

	res, err := h.predictor.Predict(vec)
	if err != nil {
		log.Error("prediction failed", zap.Error(err), zap.Stringer("vector", vec))
		_ = c.Error(err)
		return features.Vector{}, inference.Result{}, err
	}

	log.Debug("prediction",
		zap.String("risk", string(res.Risk())),
		zap.Float64("probability", res.Probability),
	)
	return vec, res, nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, errNotReady):
		return http.StatusServiceUnavailable
	case errors.Is(err, features.ErrMalformedInputLabel):
		return http.StatusUnprocessableEntity
	case errors.Is(err, features.ErrOutOfRange):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
