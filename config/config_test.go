package config_test

import (
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/saqibullah/symptom-disease-predictor/config"
)

var _ = Describe("Config", func() {
	var tempDir string

	BeforeEach(func() {
		tempDir = GinkgoT().TempDir()
	})

	setenv := func(key, value string) {
		Expect(os.Setenv(key, value)).To(Succeed())
		DeferCleanup(os.Unsetenv, key)
	}

	writeFile := func(name, content string) {
		Expect(os.WriteFile(filepath.Join(tempDir, name), []byte(content), 0o644)).To(Succeed())
	}

	Describe("Load", func() {
		Context("without a config file", func() {
			It("should use defaults", func() {
				cfg, err := config.Load(tempDir)
				Expect(err).NotTo(HaveOccurred())

				Expect(cfg.Server.Port).To(Equal("5000"))
				Expect(cfg.Addr()).To(Equal(":5000"))
				Expect(cfg.Server.Environment).To(Equal(config.EnvDev))
				Expect(cfg.Logging.Level).To(Equal(config.LogLevelInfo))
				Expect(cfg.Artifacts.Vocabulary).To(Equal("symptom_list.json"))
				Expect(cfg.Artifacts.Model).To(Equal("disease_model.json"))
				Expect(cfg.ArtifactTimeout()).To(Equal(30 * time.Second))
				Expect(cfg.CORS.AllowedOrigins).To(Equal([]string{"*"}))
				Expect(cfg.Metrics.Enabled).To(BeTrue())
				Expect(cfg.Swagger.Enabled).To(BeTrue())
				Expect(cfg.MinIO.UseSSL).To(BeTrue())
			})

			It("should take the port from PORT", func() {
				setenv("PORT", "8081")

				cfg, err := config.Load(tempDir)
				Expect(err).NotTo(HaveOccurred())
				Expect(cfg.Addr()).To(Equal(":8081"))
			})

			It("should map nested keys to environment variables", func() {
				setenv("ARTIFACTS_MODEL", "s3://ml/disease_model.json.zst")
				setenv("LOGGING_LEVEL", "debug")

				cfg, err := config.Load(tempDir)
				Expect(err).NotTo(HaveOccurred())
				Expect(cfg.Artifacts.Model).To(Equal("s3://ml/disease_model.json.zst"))
				Expect(cfg.Logging.Level).To(Equal("debug"))
			})
		})

		Context("with a config file", func() {
			BeforeEach(func() {
				writeFile("config.yaml", `
server:
  port: "7000"
  environment: "prod"
logging:
  level: "warn"
artifacts:
  vocabulary: "artifacts/symptom_list.json.gz"
  model: "artifacts/disease_model.json"
  timeout: "5s"
minio:
  endpoint: "localhost:9000"
  use_ssl: false
cors:
  allowed_origins:
    - "https://clinic.example.com"
metrics:
  enabled: false
`)
			})

			It("should load values from the file", func() {
				cfg, err := config.Load(tempDir)
				Expect(err).NotTo(HaveOccurred())

				Expect(cfg.Server.Port).To(Equal("7000"))
				Expect(cfg.Server.Environment).To(Equal(config.EnvProd))
				Expect(cfg.Logging.Level).To(Equal("warn"))
				Expect(cfg.Artifacts.Vocabulary).To(Equal("artifacts/symptom_list.json.gz"))
				Expect(cfg.ArtifactTimeout()).To(Equal(5 * time.Second))
				Expect(cfg.MinIO.Endpoint).To(Equal("localhost:9000"))
				Expect(cfg.MinIO.UseSSL).To(BeFalse())
				Expect(cfg.CORS.AllowedOrigins).To(ConsistOf("https://clinic.example.com"))
				Expect(cfg.Metrics.Enabled).To(BeFalse())
				Expect(cfg.Swagger.Enabled).To(BeTrue())
			})

			It("should let the environment override the file", func() {
				setenv("PORT", "9090")

				cfg, err := config.Load(tempDir)
				Expect(err).NotTo(HaveOccurred())
				Expect(cfg.Server.Port).To(Equal("9090"))
			})
		})

		Context("with a .env file", func() {
			It("should read variables from it", func() {
				writeFile(".env", "SERVER_ENVIRONMENT=staging\n")
				DeferCleanup(os.Unsetenv, "SERVER_ENVIRONMENT")

				cfg, err := config.Load(tempDir)
				Expect(err).NotTo(HaveOccurred())
				Expect(cfg.Server.Environment).To(Equal(config.EnvStaging))
			})
		})

		Context("with invalid values", func() {
			DescribeTable("should reject",
				func(key, value string) {
					setenv(key, value)

					_, err := config.Load(tempDir)
					Expect(err).To(HaveOccurred())
				},
				Entry("non-numeric port", "PORT", "http"),
				Entry("port out of range", "PORT", "70000"),
				Entry("unknown environment", "SERVER_ENVIRONMENT", "qa"),
				Entry("unknown log level", "LOGGING_LEVEL", "trace"),
				Entry("bad timeout", "ARTIFACTS_TIMEOUT", "soon"),
				Entry("bad minio endpoint", "MINIO_ENDPOINT", "local host:9000"),
			)

			It("should reject a malformed config file", func() {
				writeFile("config.yaml", "server: [unclosed")

				_, err := config.Load(tempDir)
				Expect(err).To(HaveOccurred())
			})
		})
	})
})
