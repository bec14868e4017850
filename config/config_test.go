package config_test

import (
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/angeloszaimis/keepalive/config"
)

var managedEnv = []string{
	"PORT",
	"SERVER_PORT",
	"SERVER_ENVIRONMENT",
	"LOGGING_LEVEL",
	"PINGER_EXTERNAL_INTERVAL",
	config.EnvRenderExternalURL,
	config.EnvKoyebPublicURL,
}

var _ = Describe("Config", func() {
	var (
		tempDir string
		origDir string
	)

	BeforeEach(func() {
		var err error
		origDir, err = os.Getwd()
		Expect(err).NotTo(HaveOccurred())

		tempDir, err = os.MkdirTemp("", "config-test-*")
		Expect(err).NotTo(HaveOccurred())
		Expect(os.Chdir(tempDir)).To(Succeed())

		for _, key := range managedEnv {
			os.Unsetenv(key)
		}
	})

	AfterEach(func() {
		Expect(os.Chdir(origDir)).To(Succeed())
		os.RemoveAll(tempDir)
		for _, key := range managedEnv {
			os.Unsetenv(key)
		}
	})

	Describe("Load", func() {
		Context("without a config file", func() {
			It("should use defaults", func() {
				cfg, err := config.Load()
				Expect(err).NotTo(HaveOccurred())
				Expect(cfg.Server.Port).To(Equal(8000))
				Expect(cfg.Address()).To(Equal("0.0.0.0:8000"))
				Expect(cfg.LocalInterval()).To(Equal(2 * time.Minute))
				Expect(cfg.ExternalInterval()).To(Equal(4 * time.Minute))
				Expect(cfg.VerifyInterval()).To(Equal(10 * time.Minute))
				Expect(cfg.VerifyTimeout()).To(Equal(3 * time.Second))
				Expect(cfg.RequestTimeout()).To(Equal(30 * time.Second))
				Expect(cfg.Breaker.FailureThreshold).To(Equal(3))
				Expect(cfg.InitialPublicURL()).To(BeEmpty())
			})
		})

		Context("with environment variables", func() {
			It("should honour PORT", func() {
				os.Setenv("PORT", "9090")
				cfg, err := config.Load()
				Expect(err).NotTo(HaveOccurred())
				Expect(cfg.Server.Port).To(Equal(9090))
			})

			It("should seed the public URL from Render", func() {
				os.Setenv(config.EnvRenderExternalURL, "https://bot.onrender.com/")
				cfg, err := config.Load()
				Expect(err).NotTo(HaveOccurred())
				Expect(cfg.InitialPublicURL()).To(Equal("https://bot.onrender.com"))
			})

			It("should prefer Koyeb over Render", func() {
				os.Setenv(config.EnvRenderExternalURL, "https://bot.onrender.com")
				os.Setenv(config.EnvKoyebPublicURL, "https://bot.koyeb.app")
				cfg, err := config.Load()
				Expect(err).NotTo(HaveOccurred())
				Expect(cfg.InitialPublicURL()).To(Equal("https://bot.koyeb.app"))
			})

			It("should map nested keys", func() {
				os.Setenv("PINGER_EXTERNAL_INTERVAL", "90s")
				cfg, err := config.Load()
				Expect(err).NotTo(HaveOccurred())
				Expect(cfg.ExternalInterval()).To(Equal(90 * time.Second))
			})

			It("should reject a malformed public URL hint", func() {
				os.Setenv(config.EnvKoyebPublicURL, "ftp://bot.koyeb.app")
				_, err := config.Load()
				Expect(err).To(HaveOccurred())
			})

			It("should reject an unknown environment", func() {
				os.Setenv("SERVER_ENVIRONMENT", "qa")
				_, err := config.Load()
				Expect(err).To(HaveOccurred())
			})
		})

		Context("with valid config file", func() {
			BeforeEach(func() {
				configContent := `
server:
  port: 8181
  environment: "prod"

logging:
  level: "debug"

pinger:
  local_interval: "30s"
  external_interval: "1m"

verifier:
  interval: "5m"
  timeout: "2s"
`
				err := os.WriteFile(filepath.Join(tempDir, "config.yaml"), []byte(configContent), 0644)
				Expect(err).NotTo(HaveOccurred())
			})

			It("should load configuration successfully", func() {
				cfg, err := config.Load()
				Expect(err).NotTo(HaveOccurred())
				Expect(cfg.Server.Port).To(Equal(8181))
				Expect(cfg.Server.Environment).To(Equal(config.EnvProd))
				Expect(cfg.Logging.Level).To(Equal(config.LogLevelDebug))
				Expect(cfg.LocalInterval()).To(Equal(30 * time.Second))
				Expect(cfg.ExternalInterval()).To(Equal(time.Minute))
				Expect(cfg.VerifyTimeout()).To(Equal(2 * time.Second))
			})

			It("should let the environment override the file", func() {
				os.Setenv("PORT", "7000")
				cfg, err := config.Load()
				Expect(err).NotTo(HaveOccurred())
				Expect(cfg.Server.Port).To(Equal(7000))
			})
		})
	})

	Describe("Validate", func() {
		var cfg *config.Config

		BeforeEach(func() {
			cfg = &config.Config{
				Server:   config.ServerConfig{Host: "0.0.0.0", Port: 8000, Environment: config.EnvDev},
				Logging:  config.LoggingConfig{Level: config.LogLevelInfo},
				Pinger:   config.PingerConfig{LocalInterval: "2m", ExternalInterval: "4m", RequestTimeout: "30s"},
				Verifier: config.VerifierConfig{Interval: "10m", Timeout: "3s"},
				Breaker:  config.BreakerConfig{FailureThreshold: 3},
			}
		})

		It("should accept a complete config", func() {
			Expect(cfg.Validate()).To(Succeed())
		})

		It("should reject sub-second intervals", func() {
			cfg.Pinger.LocalInterval = "500ms"
			Expect(cfg.Validate()).NotTo(Succeed())
		})

		It("should reject unparsable timeouts", func() {
			cfg.Verifier.Timeout = "soon"
			Expect(cfg.Validate()).NotTo(Succeed())
		})

		It("should reject out of range ports", func() {
			cfg.Server.Port = 70000
			Expect(cfg.Validate()).NotTo(Succeed())
		})

		It("should reject an unknown log level", func() {
			cfg.Logging.Level = "trace"
			Expect(cfg.Validate()).NotTo(Succeed())
		})

		It("should reject a zero failure threshold", func() {
			cfg.Breaker.FailureThreshold = 0
			Expect(cfg.Validate()).NotTo(Succeed())
		})

		It("should accept http and https hints", func() {
			cfg.PublicURL = config.PublicURLConfig{Render: "http://localhost:8000", Koyeb: "https://x.koyeb.app"}
			Expect(cfg.Validate()).To(Succeed())
		})
	})
})
