package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/saqibullah/symptom-disease-predictor/api"
	_ "github.com/saqibullah/symptom-disease-predictor/docs/swagger"
	"github.com/saqibullah/symptom-disease-predictor/internal/app"
	"github.com/saqibullah/symptom-disease-predictor/internal/classifier"
	"github.com/saqibullah/symptom-disease-predictor/internal/features"
	"github.com/saqibullah/symptom-disease-predictor/internal/metrics"
	"github.com/saqibullah/symptom-disease-predictor/pkg/logger"
)

var tokens = []string{"fever", "headache", "fatigue", "cough"}

// fever decides between Influenza (3:1) and Migraine (4:1).
func treeClassifier() classifier.Classifier {
	clf, err := classifier.NewDecisionTree(classifier.Tree{
		ChildrenLeft:  []int{1, -1, -1},
		ChildrenRight: []int{2, -1, -1},
		Feature:       []int{0, -2, -2},
		Threshold:     []float64{0.5, -2, -2},
		Value:         [][]float64{{5, 5}, {4, 1}, {1, 3}},
	}, []string{"Migraine", "Influenza"}, len(tokens))
	Expect(err).NotTo(HaveOccurred())
	return clf
}

type failingClassifier struct{ panics bool }

func (f failingClassifier) NumFeatures() int { return len(tokens) }

func (f failingClassifier) Predict(context.Context, *features.Vector) (string, error) {
	if f.panics {
		panic("model exploded")
	}
	return "", errors.New("failed to connect to ML server")
}

func newRouter(clf classifier.Classifier, vocab []string) http.Handler {
	a, err := app.New(features.NewVocabulary(vocab), clf, logger.Discard())
	Expect(err).NotTo(HaveOccurred())
	return api.NewRouter(api.RouterOptions{App: a, Logger: logger.Discard()})
}

func do(h http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var out map[string]any
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		Expect(json.Unmarshal(rec.Body.Bytes(), &out)).To(Succeed())
	}
	return rec, out
}

var _ = Describe("Prediction API", func() {
	var router http.Handler

	BeforeEach(func() {
		router = newRouter(treeClassifier(), tokens)
	})

	Context("POST /predict", func() {
		It("predicts from recognized symptoms", func() {
			rec, body := do(router, http.MethodPost, "/predict",
				`{"symptoms": ["Fever", "Headache", "unknown_symptom"]}`)

			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(body["success"]).To(BeTrue())
			Expect(body["disease"]).To(Equal("Influenza"))
			Expect(body["confidence"]).To(BeNumerically("~", 75.0, 1e-9))
			Expect(body["matched_symptoms"]).To(Equal([]any{"fever", "headache"}))
			Expect(body["unmatched_symptoms"]).To(Equal([]any{"unknown_symptom"}))
			Expect(body["message"]).To(Equal(
				"Based on your symptoms, you may have: Influenza. Please consult a doctor for proper diagnosis."))
		})

		It("normalizes case and surrounding whitespace", func() {
			for _, s := range []string{`"Fever "`, `"fever"`, `"FEVER"`} {
				_, body := do(router, http.MethodPost, "/predict", `{"symptoms": [`+s+`]}`)
				Expect(body["matched_symptoms"]).To(Equal([]any{"fever"}))
				Expect(body["unmatched_symptoms"]).To(BeEmpty())
			}
		})

		It("partitions every input into matched or unmatched", func() {
			in := []string{"cough", "Cough", "dizziness", "fatigue", "rash"}
			payload, _ := json.Marshal(map[string]any{"symptoms": in})
			_, body := do(router, http.MethodPost, "/predict", string(payload))

			matched := body["matched_symptoms"].([]any)
			unmatched := body["unmatched_symptoms"].([]any)
			Expect(len(matched) + len(unmatched)).To(Equal(len(in)))
			Expect(matched).To(Equal([]any{"cough", "cough", "fatigue"}))
			Expect(unmatched).To(Equal([]any{"dizziness", "rash"}))
		})

		It("rejects an empty symptom list", func() {
			for _, payload := range []string{`{"symptoms": []}`, `{}`, ""} {
				rec, body := do(router, http.MethodPost, "/predict", payload)
				Expect(rec.Code).To(Equal(http.StatusBadRequest))
				Expect(body["success"]).To(BeFalse())
				Expect(body["error"]).To(Equal("No symptoms provided"))
			}
		})

		DescribeTable("reports undecodable bodies as internal errors",
			func(payload, message string) {
				rec, body := do(router, http.MethodPost, "/predict", payload)
				Expect(rec.Code).To(Equal(http.StatusInternalServerError))
				Expect(body["success"]).To(BeFalse())
				Expect(body["error"]).To(ContainSubstring(message))
			},
			Entry("truncated JSON", `{"symptoms": "fever"`, "unexpected EOF"),
			Entry("non-string symptoms", `{"symptoms": [1]}`, "cannot unmarshal number"),
			Entry("a JSON array", `["fever"]`, "cannot unmarshal array"),
			Entry("a null body", `null`, "got null"),
		)

		It("suggests symptoms when nothing is recognized", func() {
			vocab := make([]string, 25)
			for i := range vocab {
				vocab[i] = fmt.Sprintf("symptom_%02d", i)
			}
			clf, err := classifier.NewNearestCentroid([][]float64{make([]float64, 25)}, []string{"Cold"}, 25)
			Expect(err).NotTo(HaveOccurred())
			router := newRouter(clf, vocab)

			rec, body := do(router, http.MethodPost, "/predict", `{"symptoms": ["xyzabc"]}`)

			Expect(rec.Code).To(Equal(http.StatusBadRequest))
			Expect(body["error"]).To(Equal("No valid symptoms found. Please check symptom names."))
			Expect(body["available_symptoms"]).To(HaveLen(20))
			Expect(body["available_symptoms"].([]any)[0]).To(Equal("symptom_00"))
		})

		It("returns null confidence when the model cannot estimate it", func() {
			clf, err := classifier.NewNearestCentroid([][]float64{
				{1, 0, 0, 0},
				{0, 0, 0, 1},
			}, []string{"Flu", "Bronchitis"}, len(tokens))
			Expect(err).NotTo(HaveOccurred())

			rec, body := do(newRouter(clf, tokens), http.MethodPost, "/predict", `{"symptoms": ["cough"]}`)

			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(body["disease"]).To(Equal("Bronchitis"))
			Expect(body).To(HaveKeyWithValue("confidence", BeNil()))
		})

		It("reports classifier failures as internal errors", func() {
			rec, body := do(newRouter(failingClassifier{}, tokens), http.MethodPost, "/predict",
				`{"symptoms": ["fever"]}`)

			Expect(rec.Code).To(Equal(http.StatusInternalServerError))
			Expect(body["success"]).To(BeFalse())
			Expect(body["error"]).To(Equal("failed to connect to ML server"))
		})

		It("recovers from a panicking classifier", func() {
			rec, body := do(newRouter(failingClassifier{panics: true}, tokens), http.MethodPost, "/predict",
				`{"symptoms": ["fever"]}`)

			Expect(rec.Code).To(Equal(http.StatusInternalServerError))
			Expect(body["success"]).To(BeFalse())
			Expect(body["error"]).To(Equal("model exploded"))
		})
	})

	Context("POST /extract", func() {
		It("finds vocabulary symptoms in free text", func() {
			rec, body := do(router, http.MethodPost, "/extract",
				`{"text": "Bad COUGH for a week, now a fever too"}`)

			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(body["success"]).To(BeTrue())
			Expect(body["symptoms"]).To(Equal([]any{"fever", "cough"}))
		})

		It("returns an empty list when nothing is mentioned", func() {
			_, body := do(router, http.MethodPost, "/extract", `{"text": "feeling great"}`)
			Expect(body["symptoms"]).To(Equal([]any{}))
		})

		It("reports an undecodable body as an internal error", func() {
			rec, body := do(router, http.MethodPost, "/extract", `{"text": 7}`)
			Expect(rec.Code).To(Equal(http.StatusInternalServerError))
			Expect(body["error"]).To(ContainSubstring("cannot unmarshal number"))
		})

		It("rejects empty text", func() {
			rec, body := do(router, http.MethodPost, "/extract", `{"text": "  "}`)
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
			Expect(body["error"]).To(Equal("No text provided"))
		})
	})

	Context("GET /symptoms and /health", func() {
		It("lists the vocabulary", func() {
			rec, body := do(router, http.MethodGet, "/symptoms", "")

			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(body["success"]).To(BeTrue())
			Expect(body["symptoms"]).To(Equal([]any{"fever", "headache", "fatigue", "cough"}))
			Expect(body["total"]).To(BeNumerically("==", 4))
		})

		It("reports health consistent with the vocabulary", func() {
			rec, body := do(router, http.MethodGet, "/health", "")

			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(body["status"]).To(Equal("healthy"))
			Expect(body["model_loaded"]).To(BeTrue())
			Expect(body["symptoms_count"]).To(BeNumerically("==", len(tokens)))
		})
	})

	Context("cross-cutting behaviour", func() {
		It("assigns a request id", func() {
			rec, _ := do(router, http.MethodGet, "/health", "")
			Expect(rec.Header().Get(api.HeaderRequestID)).To(HaveLen(36))
		})

		It("echoes the caller's request id", func() {
			req := httptest.NewRequest(http.MethodGet, "/health", nil)
			req.Header.Set(api.HeaderRequestID, "abc-123")
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			Expect(rec.Header().Get(api.HeaderRequestID)).To(Equal("abc-123"))
		})

		It("allows cross-origin requests", func() {
			req := httptest.NewRequest(http.MethodOptions, "/predict", nil)
			req.Header.Set("Origin", "http://localhost:3000")
			req.Header.Set("Access-Control-Request-Method", http.MethodPost)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			Expect(rec.Code).To(Equal(http.StatusNoContent))
			Expect(rec.Header().Get("Access-Control-Allow-Origin")).To(Equal("*"))
		})

		It("exposes metrics and API docs when enabled", func() {
			a, err := app.New(features.NewVocabulary(tokens), treeClassifier(), logger.Discard())
			Expect(err).NotTo(HaveOccurred())
			collector := metrics.New()
			router := api.NewRouter(api.RouterOptions{
				App:            a,
				Logger:         logger.Discard(),
				Metrics:        collector,
				MetricsHandler: collector.Handler(),
				Swagger:        true,
			})

			do(router, http.MethodGet, "/health", "")

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Body.String()).To(ContainSubstring(`route="/health"`))

			rec = httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil))
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Body.String()).To(ContainSubstring(`"/predict"`))
		})

		It("counts CORS preflight requests", func() {
			a, err := app.New(features.NewVocabulary(tokens), treeClassifier(), logger.Discard())
			Expect(err).NotTo(HaveOccurred())
			collector := metrics.New()
			router := api.NewRouter(api.RouterOptions{
				App:            a,
				Logger:         logger.Discard(),
				Metrics:        collector,
				MetricsHandler: collector.Handler(),
			})

			req := httptest.NewRequest(http.MethodOptions, "/predict", nil)
			req.Header.Set("Origin", "http://localhost:3000")
			req.Header.Set("Access-Control-Request-Method", http.MethodPost)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			Expect(rec.Code).To(Equal(http.StatusNoContent))

			rec = httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
			Expect(rec.Body.String()).To(ContainSubstring(`method="OPTIONS",route="unmatched",status="204"`))
		})

		It("does not mount optional endpoints by default", func() {
			for _, path := range []string{"/metrics", "/swagger/index.html"} {
				rec := httptest.NewRecorder()
				router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, bytes.NewReader(nil)))
				Expect(rec.Code).To(Equal(http.StatusNotFound))
			}
		})
	})
})
