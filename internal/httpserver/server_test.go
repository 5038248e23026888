package httpserver_test

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/saqibullah/symptom-disease-predictor/internal/httpserver"
	"github.com/saqibullah/symptom-disease-predictor/pkg/logger"
)

var noop = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

var _ = Describe("HTTP Server", func() {
	Context("server creation", func() {
		DescribeTable("accepts listen addresses",
			func(addr string) {
				srv, err := httpserver.New(addr, noop, logger.Discard())
				Expect(err).NotTo(HaveOccurred())
				Expect(srv.Addr()).To(Equal(addr))
			},
			Entry("hostname", "localhost:5000"),
			Entry("IP address", "127.0.0.1:5000"),
			Entry("port only", ":5000"),
		)

		DescribeTable("rejects malformed addresses",
			func(addr string) {
				srv, err := httpserver.New(addr, noop, logger.Discard())
				Expect(err).To(HaveOccurred())
				Expect(srv).To(BeNil())
			},
			Entry("too many colons", "invalid:host:port"),
			Entry("missing port", "localhost"),
			Entry("empty port", "localhost:"),
		)
	})

	Context("server lifecycle", func() {
		It("serves requests until the context is cancelled", func() {
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				_, _ = w.Write([]byte("healthy"))
			})
			srv, err := httpserver.New(":19997", handler, logger.Discard())
			Expect(err).NotTo(HaveOccurred())

			ctx, cancel := context.WithCancel(context.Background())
			done := make(chan error, 1)
			go func() { done <- srv.Run(ctx) }()

			Eventually(func() error {
				resp, err := http.Get("http://localhost:19997")
				if err != nil {
					return err
				}
				defer resp.Body.Close()
				body, _ := io.ReadAll(resp.Body)
				if string(body) != "healthy" {
					return fmt.Errorf("unexpected body %q", body)
				}
				return nil
			}).WithTimeout(2 * time.Second).Should(Succeed())

			cancel()
			Eventually(done).WithTimeout(shutdownWait).Should(Receive(BeNil()))
		})

		It("shuts down gracefully", func() {
			srv, err := httpserver.New(":19996", noop, logger.Discard())
			Expect(err).NotTo(HaveOccurred())

			go func() {
				_ = srv.Start()
			}()
			time.Sleep(100 * time.Millisecond)

			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			Expect(srv.Shutdown(ctx)).To(Succeed())
		})

		It("reports a port that is already taken", func() {
			first, err := httpserver.New(":19995", noop, logger.Discard())
			Expect(err).NotTo(HaveOccurred())
			go func() { _ = first.Start() }()
			DeferCleanup(func() { _ = first.Shutdown(context.Background()) })
			time.Sleep(100 * time.Millisecond)

			second, err := httpserver.New(":19995", noop, logger.Discard())
			Expect(err).NotTo(HaveOccurred())
			Expect(second.Run(context.Background())).To(HaveOccurred())
		})
	})
})

const shutdownWait = httpserver.ShutdownTimeout + time.Second
