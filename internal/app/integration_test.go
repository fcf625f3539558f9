package app_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/coaching-backend/internal/app"
	"github.com/nekogravitycat/coaching-backend/internal/db"
	sessionHttp "github.com/nekogravitycat/coaching-backend/internal/session/http"
	userHttp "github.com/nekogravitycat/coaching-backend/internal/user/http"
)

// These tests run the full router against a real PostgreSQL database named by
// TEST_DB_DSN. They are skipped when it is unset.

var (
	testRouter *gin.Engine
	testPool   *pgxpool.Pool
)

func TestMain(m *testing.M) {
	if err := godotenv.Load("../../.env"); err != nil {
		log.Printf("No .env file found or failed to load: %v", err)
	}

	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		log.Print("TEST_DB_DSN not set, skipping integration tests")
		os.Exit(0)
	}

	if err := db.RunMigrations(dsn); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	ctx := context.Background()
	var err error
	testPool, err = db.NewPool(ctx, dsn)
	if err != nil {
		log.Fatalf("Unable to connect to database: %v", err)
	}

	gin.SetMode(gin.TestMode)

	uploadDir, err := os.MkdirTemp("", "coaching-uploads-*")
	if err != nil {
		log.Fatalf("temp dir: %v", err)
	}

	container, err := app.NewContainer(app.Config{
		DBPool:                    testPool,
		Logger:                    slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})),
		JWTSecret:                 "integration-secret",
		JWTTTL:                    30 * time.Minute,
		BcryptCost:                4,
		SessionRequireFutureStart: true,
		UploadDir:                 uploadDir,
		UploadMaxBytes:            1 << 20,
		AuthRatePerMinute:         6000,
		AuthRateBurst:             1000,
	})
	if err != nil {
		log.Fatalf("container: %v", err)
	}
	testRouter = container.Router

	exitCode := m.Run()

	container.Close()
	testPool.Close()
	os.RemoveAll(uploadDir)
	os.Exit(exitCode)
}

func clearTables(t *testing.T) {
	t.Helper()
	_, err := testPool.Exec(context.Background(),
		"TRUNCATE TABLE public.sessions, public.coach_availability, public.appointments, public.blog_posts, public.offerings, public.files, public.users CASCADE")
	require.NoError(t, err)
}

func executeRequest(method, path string, body any, token string) *httptest.ResponseRecorder {
	var reqBody []byte
	if body != nil {
		reqBody, _ = json.Marshal(body)
	}

	req := httptest.NewRequest(method, path, bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	testRouter.ServeHTTP(w, req)
	return w
}

func register(t *testing.T, name, email, role string) userHttp.AuthResponse {
	t.Helper()
	w := executeRequest(http.MethodPost, "/v1/auth/register", userHttp.RegisterRequest{
		Name: name, Email: email, Password: "password123", Role: role,
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp userHttp.AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

type bookBody struct {
	CoachID  string    `json:"coach_id"`
	Date     time.Time `json:"date"`
	Duration int       `json:"duration"`
}

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

// nextMonday returns 00:00 UTC of a Monday at least a week away.
func nextMonday() time.Time {
	d := time.Now().UTC().Truncate(24*time.Hour).AddDate(0, 0, 7)
	for d.Weekday() != time.Monday {
		d = d.AddDate(0, 0, 1)
	}
	return d
}

func TestBookingFlow(t *testing.T) {
	clearTables(t)

	coach := register(t, "Coach Carter", "coach@example.com", "coach")
	client := register(t, "Client Kim", "client@example.com", "client")
	monday := nextMonday()
	at := func(day, hour, minute int) time.Time {
		return monday.AddDate(0, 0, day).Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
	}

	t.Run("Set Availability", func(t *testing.T) {
		w := executeRequest(http.MethodPost, "/v1/availability", map[string]any{
			"coach_id":          coach.User.ID,
			"use_default_hours": true,
			"unavailable_dates": []string{at(2, 0, 0).Format("2006-01-02")},
		}, coach.AccessToken)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	})

	t.Run("Client Cannot Set Availability", func(t *testing.T) {
		w := executeRequest(http.MethodPost, "/v1/availability", map[string]any{
			"coach_id": coach.User.ID, "use_default_hours": true,
		}, client.AccessToken)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	var first sessionHttp.SessionResponse
	t.Run("Book Within Working Hours", func(t *testing.T) {
		w := executeRequest(http.MethodPost, "/v1/sessions", bookBody{CoachID: coach.User.ID, Date: at(0, 10, 0), Duration: 60}, client.AccessToken)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		first = decode[sessionHttp.SessionResponse](t, w)
		assert.Equal(t, "scheduled", first.Status)
		assert.Equal(t, "Coach Carter", first.Coach.Name)
	})

	t.Run("Overlap Is Rejected", func(t *testing.T) {
		w := executeRequest(http.MethodPost, "/v1/sessions", bookBody{CoachID: coach.User.ID, Date: at(0, 10, 30), Duration: 60}, client.AccessToken)
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "conflict", decode[errorBody](t, w).Code)
	})

	var adjacent sessionHttp.SessionResponse
	t.Run("Adjacent Slot Is Accepted", func(t *testing.T) {
		w := executeRequest(http.MethodPost, "/v1/sessions", bookBody{CoachID: coach.User.ID, Date: at(0, 11, 0), Duration: 60}, client.AccessToken)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		adjacent = decode[sessionHttp.SessionResponse](t, w)
	})

	t.Run("Calendar Rejections", func(t *testing.T) {
		cases := []struct {
			name string
			date time.Time
		}{
			{"weekend", at(5, 10, 0)},
			{"unavailable date", at(2, 10, 0)},
			{"before opening", at(1, 8, 59)},
		}
		for _, tc := range cases {
			w := executeRequest(http.MethodPost, "/v1/sessions", bookBody{CoachID: coach.User.ID, Date: tc.date, Duration: 60}, client.AccessToken)
			assert.Equal(t, http.StatusConflict, w.Code, tc.name)
			assert.Equal(t, "unavailable", decode[errorBody](t, w).Code, tc.name)
		}
	})

	t.Run("Concurrent Bookings Admit One", func(t *testing.T) {
		const n = 8
		codes := make([]int, n)
		var wg sync.WaitGroup
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				w := executeRequest(http.MethodPost, "/v1/sessions", bookBody{CoachID: coach.User.ID, Date: at(0, 14, 0), Duration: 60}, client.AccessToken)
				codes[i] = w.Code
			}(i)
		}
		wg.Wait()

		created := 0
		for _, c := range codes {
			if c == http.StatusCreated {
				created++
			} else {
				assert.Equal(t, http.StatusConflict, c)
			}
		}
		assert.Equal(t, 1, created)
	})

	t.Run("Cancel Frees The Slot", func(t *testing.T) {
		w := executeRequest(http.MethodPatch, "/v1/sessions/"+first.ID+"/cancel", map[string]string{"canceled_by": uuid.NewString()}, client.AccessToken)
		require.Equal(t, http.StatusNotFound, w.Code, w.Body.String())

		w = executeRequest(http.MethodPatch, "/v1/sessions/"+first.ID+"/cancel", map[string]string{"reason": "sick"}, client.AccessToken)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "canceled", decode[sessionHttp.SessionResponse](t, w).Status)

		w = executeRequest(http.MethodPost, "/v1/sessions", bookBody{CoachID: coach.User.ID, Date: at(0, 10, 0), Duration: 60}, client.AccessToken)
		assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	})

	t.Run("Reschedule", func(t *testing.T) {
		path := fmt.Sprintf("/v1/sessions/%s/reschedule", adjacent.ID)

		w := executeRequest(http.MethodPatch, path, map[string]time.Time{"date": at(0, 14, 30)}, client.AccessToken)
		assert.Equal(t, http.StatusConflict, w.Code, "moving onto the 14:00 session")

		w = executeRequest(http.MethodPatch, path, map[string]time.Time{"date": at(1, 11, 0)}, client.AccessToken)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		moved := decode[sessionHttp.SessionResponse](t, w)
		assert.Equal(t, "scheduled", moved.Status)
		require.NotNil(t, moved.RescheduledAt)
		require.NotNil(t, moved.PreviousDate)
		assert.True(t, moved.PreviousDate.Equal(at(0, 11, 0)))
	})

	t.Run("Slot Check", func(t *testing.T) {
		q := fmt.Sprintf("/v1/availability/%s/check?at=%s&duration=60", coach.User.ID, at(0, 11, 0).Format(time.RFC3339))
		w := executeRequest(http.MethodGet, q, nil, "")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Contains(t, w.Body.String(), `"available":true`)
	})

	t.Run("Strangers Cannot Read Sessions", func(t *testing.T) {
		other := register(t, "Other Person", "other@example.com", "client")
		w := executeRequest(http.MethodGet, "/v1/sessions/"+adjacent.ID, nil, other.AccessToken)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}
