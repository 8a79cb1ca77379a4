// Package main populates a running revix API with sample analyses for one
// user. It signs a development session token with IDENTITY_JWT_SECRET, syncs
// the user through GET /api/users/me, submits the sample reviews and finally
// generates an "all time" report.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Piyushkr001/revix/internal/identity"
	pkgconfig "github.com/Piyushkr001/revix/pkg/config"
	"github.com/Piyushkr001/revix/pkg/httpclient"
	"github.com/Piyushkr001/revix/pkg/logger"
)

// --------------------------------------------------------------------------
// Configuration helpers
// --------------------------------------------------------------------------

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

// --------------------------------------------------------------------------
// HTTP helpers
// --------------------------------------------------------------------------

type seeder struct {
	client  httpclient.Doer
	baseURL string
	token   string
}

func (s *seeder) call(ctx context.Context, method, path string, body any) (json.RawMessage, int, error) {
	var reader io.Reader = http.NoBody
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, 0, fmt.Errorf("marshal body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, reader)
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.client.Do(ctx, req)
	if err != nil {
		return nil, 0, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return nil, resp.StatusCode, fmt.Errorf("%s %s: HTTP %d: %s", method, path, resp.StatusCode, respBody)
	}

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		return nil, resp.StatusCode, fmt.Errorf("unmarshal response: %w", err)
	}
	return envelope.Data, resp.StatusCode, nil
}

// --------------------------------------------------------------------------
// Sample data
// --------------------------------------------------------------------------

type sample struct {
	source  string
	product string
	url     string
	reviews string
	count   int
}

var samples = []sample{
	{"amazon", "Aurora Wireless Earbuds", "https://www.amazon.com/dp/B0AURORA01",
		"Great sound and excellent battery life. I love how light they are, perfect for running.", 412},
	{"amazon", "Aurora Wireless Earbuds", "https://www.amazon.com/dp/B0AURORA01",
		"Good value overall but the case hinge felt loose after a week.", 98},
	{"flipkart", "Nimbus Air Fryer 4L", "https://www.flipkart.com/nimbus-air-fryer/p/itm01",
		"Arrived damaged and the replacement took ages. Worst delivery delay ever, asked for a refund.", 57},
	{"flipkart", "Nimbus Air Fryer 4L", "https://www.flipkart.com/nimbus-air-fryer/p/itm01",
		"Cooks evenly and cleanup is simple. Amazing for quick dinners, worth every rupee.", 233},
	{"manual", "Atlas Standing Desk", "",
		"Sturdy frame, quiet motor. Assembly instructions were confusing but support helped.", 21},
	{"other", "Pebble Smart Thermostat", "https://shop.example.com/pebble",
		"Poor app experience, the schedule resets randomly. Considering a return.", 64},
	{"amazon", "Lumen Desk Lamp", "https://www.amazon.com/dp/B0LUMEN002",
		"Awesome brightness range and a great warm mode for evenings. Love the touch dimmer.", 145},
	{"manual", "Harbor Rain Jacket", "",
		"Keeps me dry on the commute. Sleeves run a little long, otherwise no complaints.", 12},
}

// --------------------------------------------------------------------------
// Main
// --------------------------------------------------------------------------

func main() {
	if err := pkgconfig.LoadDotEnv(".env"); err != nil {
		slog.Error("failed to read .env", slog.String("error", err.Error()))
		os.Exit(1)
	}
	log := logger.New("revix-seed", getEnv("LOG_LEVEL", "info"))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := run(ctx, log); err != nil {
		log.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, log *slog.Logger) error {
	userID := getEnv("SEED_USER_ID", "user_seed")
	rounds := getEnvInt("SEED_ROUNDS", 1)

	token, err := signToken(
		getEnv("IDENTITY_JWT_SECRET", "change-this-to-a-secure-secret"),
		getEnv("IDENTITY_ISSUER", ""),
		userID,
		getEnv("SEED_USER_EMAIL", "seed@example.com"),
	)
	if err != nil {
		return err
	}

	s := &seeder{
		client:  httpclient.New(httpclient.DefaultConfig()),
		baseURL: getEnv("REVIX_API_URL", "http://localhost:8080"),
		token:   token,
	}

	_, status, err := s.call(ctx, http.MethodGet, "/api/users/me", nil)
	if err != nil {
		return fmt.Errorf("sync user: %w", err)
	}
	log.Info("user synced", slog.String("user_id", userID), slog.Int("status", status))

	created := 0
	for round := 0; round < rounds; round++ {
		for _, smp := range samples {
			body := map[string]any{
				"source":      smp.source,
				"productName": smp.product,
				"reviewsText": smp.reviews,
				"reviewCount": smp.count,
			}
			if smp.url != "" {
				body["productUrl"] = smp.url
			}
			if _, _, err := s.call(ctx, http.MethodPost, "/api/analysis", body); err != nil {
				log.Warn("analysis not created",
					slog.String("product", smp.product),
					slog.String("error", err.Error()),
				)
				continue
			}
			created++
		}
	}
	log.Info("analyses submitted", slog.Int("created", created))

	data, _, err := s.call(ctx, http.MethodPost, "/api/reports/generate", map[string]string{
		"preset": "all",
		"title":  "Seed overview",
	})
	if err != nil {
		return fmt.Errorf("generate report: %w", err)
	}
	var report struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(data, &report); err != nil {
		return fmt.Errorf("decode report: %w", err)
	}
	log.Info("report generated", slog.String("report_id", report.ID))
	return nil
}

func signToken(secret, issuer, userID, email string) (string, error) {
	now := time.Now()
	claims := identity.Claims{
		Email: email,
		Name:  "Seed User",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return token, nil
}
