package api

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/saqibullah/symptom-disease-predictor/internal/app"
)

type PredictRequest struct {
	Symptoms []string `json:"symptoms" example:"fever,headache,fatigue"`
}

type PredictResponse struct {
	Success bool   `json:"success" example:"true"`
	Disease string `json:"disease" example:"Influenza"`
	// Confidence is null when the model cannot estimate it.
	Confidence        *float64 `json:"confidence" example:"62.5"`
	MatchedSymptoms   []string `json:"matched_symptoms"`
	UnmatchedSymptoms []string `json:"unmatched_symptoms"`
	Message           string   `json:"message"`
}

type ExtractRequest struct {
	Text string `json:"text" example:"I have had a high fever and a headache since Monday"`
}

type ExtractResponse struct {
	Success  bool     `json:"success" example:"true"`
	Symptoms []string `json:"symptoms"`
}

type SymptomsResponse struct {
	Success  bool     `json:"success" example:"true"`
	Symptoms []string `json:"symptoms"`
	Total    int      `json:"total" example:"132"`
}

type HealthResponse struct {
	Status        string `json:"status" example:"healthy"`
	ModelLoaded   bool   `json:"model_loaded" example:"true"`
	SymptomsCount int    `json:"symptoms_count" example:"132"`
}

type ErrorResponse struct {
	Success bool   `json:"success" example:"false"`
	Error   string `json:"error" example:"No symptoms provided"`
	// AvailableSymptoms is set only when no submitted symptom was recognized.
	AvailableSymptoms []string `json:"available_symptoms,omitempty"`
}

// Handlers serves the prediction API on top of a loaded App.
type Handlers struct {
	app *app.App
	log *slog.Logger
}

func NewHandlers(a *app.App, log *slog.Logger) *Handlers {
	return &Handlers{app: a, log: log}
}

// PredictHandler godoc
// @Summary     Predict a disease from symptoms
// @Description Symptom names are case-insensitive; spaces match underscores.
// @Tags        prediction
// @Accept      json
// @Produce     json
// @Param       request body     PredictRequest true "Reported symptoms"
// @Success     200     {object} PredictResponse
// @Failure     400     {object} ErrorResponse
// @Failure     500     {object} ErrorResponse
// @Router      /predict [post]
func (h *Handlers) PredictHandler(c *gin.Context) {
	var req PredictRequest
	if err := decodeBody(c, &req); err != nil {
		h.fail(c, err)
		return
	}

	p, err := h.app.Predict(c.Request.Context(), req.Symptoms)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, PredictResponse{
		Success:           true,
		Disease:           p.Disease,
		Confidence:        p.Confidence,
		MatchedSymptoms:   p.Matched,
		UnmatchedSymptoms: p.Unmatched,
		Message:           p.Message(),
	})
}

// ExtractHandler godoc
// @Summary     Find known symptoms in free text
// @Description The returned list can be posted to /predict as is.
// @Tags        prediction
// @Accept      json
// @Produce     json
// @Param       request body     ExtractRequest true "Patient description"
// @Success     200     {object} ExtractResponse
// @Failure     400     {object} ErrorResponse
// @Router      /extract [post]
func (h *Handlers) ExtractHandler(c *gin.Context) {
	var req ExtractRequest
	if err := decodeBody(c, &req); err != nil {
		h.fail(c, err)
		return
	}

	found, err := h.app.Extract(req.Text)
	if err != nil {
		h.fail(c, err)
		return
	}

	h.log.Debug("symptoms extracted", slog.Int("count", len(found)))
	c.JSON(http.StatusOK, ExtractResponse{Success: true, Symptoms: found})
}

// SymptomsHandler godoc
// @Summary  List recognized symptoms
// @Tags     metadata
// @Produce  json
// @Success  200 {object} SymptomsResponse
// @Router   /symptoms [get]
func (h *Handlers) SymptomsHandler(c *gin.Context) {
	symptoms := h.app.Symptoms()
	c.JSON(http.StatusOK, SymptomsResponse{
		Success:  true,
		Symptoms: symptoms,
		Total:    len(symptoms),
	})
}

// HealthHandler godoc
// @Summary  Service health
// @Tags     metadata
// @Produce  json
// @Success  200 {object} HealthResponse
// @Router   /health [get]
func (h *Handlers) HealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:        "healthy",
		ModelLoaded:   h.app.ModelLoaded(),
		SymptomsCount: h.app.SymptomCount(),
	})
}

var errNullBody = errors.New("request body must be a JSON object, got null")

// decodeBody binds a JSON object body into obj. An empty body leaves obj
// zero so the missing input is reported by the App. Any other body that
// does not decode is returned as is and surfaces as an internal fault.
func decodeBody(c *gin.Context, obj any) error {
	raw, err := c.GetRawData()
	if err != nil {
		return err
	}
	raw = bytes.TrimSpace(raw)
	switch {
	case len(raw) == 0:
		return nil
	case bytes.Equal(raw, []byte("null")):
		return errNullBody
	}
	return binding.JSON.BindBody(raw, obj)
}

func (h *Handlers) fail(c *gin.Context, err error) {
	var appErr *app.Error
	if !errors.As(err, &appErr) {
		appErr = &app.Error{Kind: app.KindInternalFault, Message: err.Error(), Err: err}
	}

	switch appErr.Kind {
	case app.KindInvalidInput:
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: appErr.Message})
	case app.KindNoMatch:
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:             appErr.Message,
			AvailableSymptoms: appErr.Hint,
		})
	default:
		h.log.Error("request failed",
			slog.String("path", c.FullPath()),
			slog.String("request_id", requestID(c)),
			slog.String("error", appErr.Message))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: appErr.Message})
	}
}
