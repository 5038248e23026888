package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/saqibullah/symptom-disease-predictor/pkg/logger"
)

var _ = Describe("Logger", func() {
	ctx := context.Background()

	DescribeTable("level parsing",
		func(name string, want slog.Level) {
			Expect(logger.ParseLevel(name)).To(Equal(want))
		},
		Entry("debug", "debug", slog.LevelDebug),
		Entry("info", "INFO", slog.LevelInfo),
		Entry("warn", "warn", slog.LevelWarn),
		Entry("error", "error", slog.LevelError),
		Entry("unknown defaults to info", "verbose", slog.LevelInfo),
	)

	It("should respect the configured level", func() {
		log := logger.New("warn", false, "dev")

		Expect(log.Enabled(ctx, slog.LevelInfo)).To(BeFalse())
		Expect(log.Enabled(ctx, slog.LevelWarn)).To(BeTrue())
	})

	It("should write JSON with the environment attribute in prod", func() {
		var buf bytes.Buffer
		log := logger.NewWithWriter(&buf, "info", false, "prod")
		log.Info("model loaded", slog.Int("symptoms", 132))

		var rec map[string]any
		Expect(json.Unmarshal(buf.Bytes(), &rec)).To(Succeed())
		Expect(rec).To(HaveKeyWithValue("environment", "prod"))
		Expect(rec).To(HaveKeyWithValue("msg", "model loaded"))
		Expect(rec).To(HaveKeyWithValue("symptoms", BeNumerically("==", 132)))
	})

	It("should write text outside prod", func() {
		var buf bytes.Buffer
		log := logger.NewWithWriter(&buf, "info", false, "dev")
		log.Info("ready")

		Expect(buf.String()).To(ContainSubstring("msg=ready"))
		Expect(buf.String()).To(ContainSubstring("environment=dev"))
	})

	It("should discard everything", func() {
		Expect(logger.Discard()).NotTo(BeNil())
	})
})
