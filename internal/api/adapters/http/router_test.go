package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apihttp "neurolearn/internal/api/adapters/http"
	"neurolearn/internal/api/adapters/http/middleware"
	"neurolearn/internal/api/domain/entities"
	"neurolearn/internal/api/domain/services"
	"neurolearn/internal/api/ports/api"
)

const (
	validToken  = "valid-token"
	frontendURL = "http://frontend.test"
)

var currentUser = &entities.User{ID: 42, Email: "alice@example.com", Provider: entities.ProviderEmail}

type testServer struct {
	app   *fiber.App
	auth  *mockAuthUseCase
	oauth *mockOAuthUseCase
	users *mockUserUseCase
	notes *mockNoteUseCase
}

func newTestServer(t *testing.T, readiness map[string]apihttp.Check) *testServer {
	t.Helper()

	registry := prometheus.NewRegistry()
	metrics, err := middleware.NewMetrics(registry)
	require.NoError(t, err)

	uploads := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(uploads, "page.png"), []byte("png-bytes"), 0o600))

	s := &testServer{
		auth:  new(mockAuthUseCase),
		oauth: new(mockOAuthUseCase),
		users: new(mockUserUseCase),
		notes: new(mockNoteUseCase),
	}
	s.auth.On("Authenticate", mock.Anything, validToken).Return(currentUser, nil).Maybe()

	s.app = apihttp.NewApp(fiber.Config{})
	apihttp.SetupRouter(s.app, apihttp.Dependencies{
		Auth:        s.auth,
		OAuth:       s.oauth,
		Users:       s.users,
		Notes:       s.notes,
		Metrics:     metrics,
		Gatherer:    registry,
		ServiceName: "neurolearn-api",
		FrontendURL: frontendURL,
		UploadDir:   uploads,
		PublicPath:  "/static/uploads",
		Readiness:   readiness,
	})
	return s
}

func (s *testServer) do(t *testing.T, req *http.Request) (*http.Response, []byte) {
	t.Helper()
	resp, err := s.app.Test(req)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	return resp, body
}

func authorized(req *http.Request) *http.Request {
	req.Header.Set("Authorization", "Bearer "+validToken)
	return req
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func detailOf(t *testing.T, body []byte) string {
	t.Helper()
	var payload struct {
		Detail string `json:"detail"`
	}
	require.NoError(t, json.Unmarshal(body, &payload))
	return payload.Detail
}

func TestPublicEndpoints(t *testing.T) {
	s := newTestServer(t, nil)

	resp, body := s.do(t, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"message":"Welcome to NeuroLearn API"}`, string(body))

	resp, body = s.do(t, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"active","service":"neurolearn-api"}`, string(body))

	resp, body = s.do(t, httptest.NewRequest(http.MethodGet, "/does-not-exist", nil))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Not Found", detailOf(t, body))

	resp, body = s.do(t, httptest.NewRequest(http.MethodGet, "/static/uploads/page.png", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "png-bytes", string(body))
}

func TestRequestID(t *testing.T) {
	s := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(middleware.HeaderRequestID, "req-123")
	resp, _ := s.do(t, req)
	assert.Equal(t, "req-123", resp.Header.Get(middleware.HeaderRequestID))

	resp, _ = s.do(t, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Len(t, resp.Header.Get(middleware.HeaderRequestID), 36)

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(middleware.HeaderRequestID, "not a safe id")
	resp, _ = s.do(t, req)
	assert.Len(t, resp.Header.Get(middleware.HeaderRequestID), 36)
}

func TestReadiness(t *testing.T) {
	t.Run("all dependencies up", func(t *testing.T) {
		s := newTestServer(t, map[string]apihttp.Check{
			"postgres": func(context.Context) error { return nil },
		})
		resp, body := s.do(t, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.JSONEq(t, `{"status":"ready","checks":{"postgres":"ok"}}`, string(body))
	})

	t.Run("dependency down", func(t *testing.T) {
		s := newTestServer(t, map[string]apihttp.Check{
			"postgres": func(context.Context) error { return nil },
			"redis":    func(context.Context) error { return errors.New("connection refused") },
		})
		resp, body := s.do(t, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		assert.JSONEq(t, `{"status":"degraded","checks":{"postgres":"ok","redis":"unavailable"}}`, string(body))
	})
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, nil)

	s.do(t, httptest.NewRequest(http.MethodGet, "/health", nil))
	resp, body := s.do(t, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `http_requests_total{method="GET",route="/health",status="200"} 1`)
	assert.Contains(t, string(body), "http_request_duration_seconds")
}

func TestRegisterHandler(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		setupMocks     func(s *testServer)
		expectedStatus int
		expectedBody   string
		expectedDetail string
	}{
		{
			name: "Success",
			body: `{"email":"bob@example.com","password":"pw"}`,
			setupMocks: func(s *testServer) {
				s.auth.On("Register", mock.Anything, "bob@example.com", "pw").Return(&entities.User{
					ID: 1, Email: "bob@example.com", Provider: entities.ProviderEmail,
				}, nil).Once()
			},
			expectedStatus: http.StatusCreated,
			expectedBody:   `{"id":1,"email":"bob@example.com","name":null,"avatar_url":null,"provider":"email"}`,
		},
		{
			name: "Email taken",
			body: `{"email":"bob@example.com","password":"pw"}`,
			setupMocks: func(s *testServer) {
				s.auth.On("Register", mock.Anything, "bob@example.com", "pw").
					Return(nil, fmt.Errorf("email already registered: %w", services.ErrEmailAlreadyExists)).Once()
			},
			expectedStatus: http.StatusBadRequest,
			expectedDetail: "Email already registered",
		},
		{
			name: "Invalid email",
			body: `{"email":"bob","password":"pw"}`,
			setupMocks: func(s *testServer) {
				s.auth.On("Register", mock.Anything, "bob", "pw").Return(nil, services.ErrInvalidEmail).Once()
			},
			expectedStatus: http.StatusBadRequest,
			expectedDetail: "Invalid email address",
		},
		{
			name:           "Malformed body",
			body:           `{"email":`,
			setupMocks:     func(*testServer) {},
			expectedStatus: http.StatusBadRequest,
			expectedDetail: "Invalid request body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, nil)
			tt.setupMocks(s)

			resp, body := s.do(t, jsonRequest(http.MethodPost, "/auth/register", tt.body))

			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
			if tt.expectedBody != "" {
				assert.JSONEq(t, tt.expectedBody, string(body))
			}
			if tt.expectedDetail != "" {
				assert.Equal(t, tt.expectedDetail, detailOf(t, body))
			}
			s.auth.AssertExpectations(t)
		})
	}
}

func TestLoginHandler(t *testing.T) {
	form := func(username, password string) *http.Request {
		values := url.Values{"username": {username}, "password": {password}}
		req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(values.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		return req
	}

	t.Run("Success", func(t *testing.T) {
		s := newTestServer(t, nil)
		s.auth.On("Login", mock.Anything, "alice@example.com", "pw").Return(&services.TokenResult{
			AccessToken: "jwt", TokenType: services.TokenTypeBearer, ExpiresAt: time.Now().Add(time.Hour),
		}, nil).Once()

		resp, body := s.do(t, form("alice@example.com", "pw"))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.JSONEq(t, `{"access_token":"jwt","token_type":"bearer"}`, string(body))
	})

	t.Run("Wrong password", func(t *testing.T) {
		s := newTestServer(t, nil)
		s.auth.On("Login", mock.Anything, "alice@example.com", "bad").
			Return(nil, fmt.Errorf("invalid credentials: %w", services.ErrInvalidCredentials)).Once()

		resp, body := s.do(t, form("alice@example.com", "bad"))

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "Bearer", resp.Header.Get("WWW-Authenticate"))
		assert.Equal(t, "Incorrect email or password", detailOf(t, body))
	})

	t.Run("Google account", func(t *testing.T) {
		s := newTestServer(t, nil)
		s.auth.On("Login", mock.Anything, "g@gmail.com", "pw").Return(nil, services.ErrProviderMismatch).Once()

		resp, body := s.do(t, form("g@gmail.com", "pw"))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "This email is linked to a Google account. Please login with Google.", detailOf(t, body))
	})

	t.Run("Missing fields", func(t *testing.T) {
		s := newTestServer(t, nil)

		resp, _ := s.do(t, form("", ""))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		s.auth.AssertNotCalled(t, "Login", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestBearerAuthentication(t *testing.T) {
	tests := []struct {
		name           string
		header         string
		setupMocks     func(s *testServer)
		expectedStatus int
		expectedDetail string
	}{
		{
			name:           "Valid token",
			header:         "Bearer " + validToken,
			setupMocks:     func(*testServer) {},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Missing header",
			setupMocks:     func(*testServer) {},
			expectedStatus: http.StatusUnauthorized,
			expectedDetail: "Could not validate credentials",
		},
		{
			name:           "Wrong scheme",
			header:         "Basic abc",
			setupMocks:     func(*testServer) {},
			expectedStatus: http.StatusUnauthorized,
			expectedDetail: "Could not validate credentials",
		},
		{
			name:   "Expired token",
			header: "Bearer expired",
			setupMocks: func(s *testServer) {
				s.auth.On("Authenticate", mock.Anything, "expired").Return(nil, services.ErrExpiredJWTToken).Once()
			},
			expectedStatus: http.StatusUnauthorized,
			expectedDetail: "Could not validate credentials",
		},
		{
			name:   "Deleted user",
			header: "Bearer orphan",
			setupMocks: func(s *testServer) {
				s.auth.On("Authenticate", mock.Anything, "orphan").Return(nil, services.ErrInvalidCredentials).Once()
			},
			expectedStatus: http.StatusUnauthorized,
			expectedDetail: "Could not validate credentials",
		},
		{
			name:   "Store unavailable",
			header: "Bearer db-down",
			setupMocks: func(s *testServer) {
				s.auth.On("Authenticate", mock.Anything, "db-down").Return(nil, errors.New("pool closed")).Once()
			},
			expectedStatus: http.StatusInternalServerError,
			expectedDetail: "Internal Server Error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, nil)
			tt.setupMocks(s)

			req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, body := s.do(t, req)

			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
			if tt.expectedDetail != "" {
				assert.Equal(t, tt.expectedDetail, detailOf(t, body))
			} else {
				assert.JSONEq(t,
					`{"id":42,"email":"alice@example.com","name":null,"avatar_url":null,"provider":"email"}`,
					string(body))
				s.auth.AssertCalled(t, "Authenticate", mock.Anything, validToken)
			}
		})
	}
}

func TestGoogleFlow(t *testing.T) {
	t.Run("login redirects to consent screen", func(t *testing.T) {
		s := newTestServer(t, nil)
		s.oauth.On("BeginGoogleLogin", mock.Anything).Return("https://accounts.google.com/auth?state=s1", nil).Once()

		resp, _ := s.do(t, httptest.NewRequest(http.MethodGet, "/auth/login/google", nil))

		assert.Equal(t, http.StatusFound, resp.StatusCode)
		assert.Equal(t, "https://accounts.google.com/auth?state=s1", resp.Header.Get("Location"))
	})

	t.Run("callback success carries token", func(t *testing.T) {
		s := newTestServer(t, nil)
		s.oauth.On("CompleteGoogleLogin", mock.Anything, "s1", "c1").
			Return(&services.TokenResult{AccessToken: "a.b.c", TokenType: services.TokenTypeBearer}, nil).Once()

		resp, _ := s.do(t, httptest.NewRequest(http.MethodGet, "/auth/callback?state=s1&code=c1", nil))

		assert.Equal(t, http.StatusFound, resp.StatusCode)
		assert.Equal(t, frontendURL+"/auth/google-success?token=a.b.c", resp.Header.Get("Location"))
	})

	t.Run("callback failure goes to error page", func(t *testing.T) {
		s := newTestServer(t, nil)
		s.oauth.On("CompleteGoogleLogin", mock.Anything, "forged", "c1").
			Return(nil, services.ErrInvalidOAuthState).Once()

		resp, _ := s.do(t, httptest.NewRequest(http.MethodGet, "/auth/callback?state=forged&code=c1", nil))

		assert.Equal(t, http.StatusFound, resp.StatusCode)
		assert.Equal(t, frontendURL+"/auth/error", resp.Header.Get("Location"))
	})

	t.Run("provider error skips exchange", func(t *testing.T) {
		s := newTestServer(t, nil)

		resp, _ := s.do(t, httptest.NewRequest(http.MethodGet, "/auth/callback?error=access_denied", nil))

		assert.Equal(t, http.StatusFound, resp.StatusCode)
		assert.Equal(t, frontendURL+"/auth/error", resp.Header.Get("Location"))
		s.oauth.AssertNotCalled(t, "CompleteGoogleLogin", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestUserHandlers(t *testing.T) {
	t.Run("get profile", func(t *testing.T) {
		s := newTestServer(t, nil)

		resp, body := s.do(t, authorized(httptest.NewRequest(http.MethodGet, "/user/me", nil)))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, string(body), `"email":"alice@example.com"`)
	})

	t.Run("update profile", func(t *testing.T) {
		s := newTestServer(t, nil)
		name := "Alice"
		s.users.On("UpdateProfile", mock.Anything, int64(42), mock.MatchedBy(func(u entities.ProfileUpdate) bool {
			return u.Name != nil && *u.Name == name && u.Email == nil
		})).Return(&entities.User{ID: 42, Email: "alice@example.com", Name: &name, Provider: entities.ProviderEmail}, nil).Once()

		resp, body := s.do(t, authorized(jsonRequest(http.MethodPut, "/user/me", `{"name":"Alice"}`)))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, string(body), `"name":"Alice"`)
		s.users.AssertExpectations(t)
	})

	t.Run("update to taken email", func(t *testing.T) {
		s := newTestServer(t, nil)
		s.users.On("UpdateProfile", mock.Anything, int64(42), mock.Anything).
			Return(nil, services.ErrEmailAlreadyExists).Once()

		resp, body := s.do(t, authorized(jsonRequest(http.MethodPut, "/user/me", `{"email":"bob@example.com"}`)))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "Email already registered", detailOf(t, body))
	})
}

func sampleNote() *entities.Note {
	url := "/static/uploads/note_42_x.png"
	return &entities.Note{
		ID:        7,
		Title:     "Lecture",
		OwnerID:   42,
		CreatedAt: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
		Pages: []entities.Page{{
			ID: 70, NoteID: 7, PageNumber: 1,
			BackgroundType: entities.BackgroundImage, BackgroundURL: &url,
			OverlayData: json.RawMessage(`{"strokes":[]}`),
		}},
	}
}

func TestNoteReadHandlers(t *testing.T) {
	t.Run("list", func(t *testing.T) {
		s := newTestServer(t, nil)
		s.notes.On("ListNotes", mock.Anything, int64(42)).Return([]*entities.Note{sampleNote()}, nil).Once()

		resp, body := s.do(t, authorized(httptest.NewRequest(http.MethodGet, "/notes", nil)))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.JSONEq(t, `[{"id":7,"title":"Lecture","created_at":"2025-03-01T10:00:00Z","pages":[
			{"id":70,"page_number":1,"background_type":"image",
			 "background_url":"/static/uploads/note_42_x.png","overlay_data":{"strokes":[]}}]}]`, string(body))
	})

	t.Run("empty list is an array", func(t *testing.T) {
		s := newTestServer(t, nil)
		s.notes.On("ListNotes", mock.Anything, int64(42)).Return([]*entities.Note{}, nil).Once()

		_, body := s.do(t, authorized(httptest.NewRequest(http.MethodGet, "/notes", nil)))

		assert.JSONEq(t, `[]`, string(body))
	})

	tests := []struct {
		name           string
		path           string
		setupMocks     func(s *testServer)
		expectedStatus int
		expectedDetail string
	}{
		{
			name: "found",
			path: "/notes/7",
			setupMocks: func(s *testServer) {
				s.notes.On("GetNote", mock.Anything, int64(42), int64(7)).Return(sampleNote(), nil).Once()
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "foreign",
			path: "/notes/8",
			setupMocks: func(s *testServer) {
				s.notes.On("GetNote", mock.Anything, int64(42), int64(8)).Return(nil, services.ErrForbidden).Once()
			},
			expectedStatus: http.StatusForbidden,
			expectedDetail: "Not authorized to access this note",
		},
		{
			name: "missing",
			path: "/notes/9",
			setupMocks: func(s *testServer) {
				s.notes.On("GetNote", mock.Anything, int64(42), int64(9)).
					Return(nil, fmt.Errorf("fetching note: %w", entities.ErrNoteNotFound)).Once()
			},
			expectedStatus: http.StatusNotFound,
			expectedDetail: "Note not found",
		},
		{
			name:           "not a number",
			path:           "/notes/abc",
			setupMocks:     func(*testServer) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedDetail: "Invalid identifier",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, nil)
			tt.setupMocks(s)

			resp, body := s.do(t, authorized(httptest.NewRequest(http.MethodGet, tt.path, nil)))

			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
			if tt.expectedDetail != "" {
				assert.Equal(t, tt.expectedDetail, detailOf(t, body))
			}
			s.notes.AssertExpectations(t)
		})
	}
}

func multipartRequest(t *testing.T, fields map[string]string, file []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	if file != nil {
		part, err := writer.CreateFormFile("file", "slides.pdf")
		require.NoError(t, err)
		_, err = part.Write(file)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/notes", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return authorized(req)
}

func TestCreateNoteHandler(t *testing.T) {
	t.Run("blank note", func(t *testing.T) {
		s := newTestServer(t, nil)
		s.notes.On("CreateNote", mock.Anything, int64(42), api.CreateNoteInput{Title: "Lecture", BackgroundType: "grid"}).
			Return(sampleNote(), nil).Once()

		resp, _ := s.do(t, multipartRequest(t, map[string]string{"title": "Lecture", "back_type": "grid"}, nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		s.notes.AssertExpectations(t)
	})

	t.Run("with document", func(t *testing.T) {
		s := newTestServer(t, nil)
		pdf := []byte("%PDF-1.4 test")
		s.notes.On("CreateNote", mock.Anything, int64(42), mock.MatchedBy(func(in api.CreateNoteInput) bool {
			return in.Title == "Slides" && bytes.Equal(in.Document, pdf)
		})).Return(sampleNote(), nil).Once()

		resp, _ := s.do(t, multipartRequest(t, map[string]string{"title": "Slides"}, pdf))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		s.notes.AssertExpectations(t)
	})

	t.Run("zero-byte upload", func(t *testing.T) {
		s := newTestServer(t, nil)

		resp, body := s.do(t, multipartRequest(t, map[string]string{"title": "Slides"}, []byte{}))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "Uploaded file is empty", detailOf(t, body))
		s.notes.AssertNotCalled(t, "CreateNote", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("empty title", func(t *testing.T) {
		s := newTestServer(t, nil)
		s.notes.On("CreateNote", mock.Anything, int64(42), mock.Anything).Return(nil, services.ErrEmptyTitle).Once()

		resp, body := s.do(t, multipartRequest(t, map[string]string{"title": ""}, nil))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "Title is required", detailOf(t, body))
	})

	t.Run("render failure is a server error", func(t *testing.T) {
		s := newTestServer(t, nil)
		s.notes.On("CreateNote", mock.Anything, int64(42), mock.Anything).
			Return(nil, fmt.Errorf("rendering document: %w: %w", services.ErrNoteCreationFailed, services.ErrRenderFailed)).Once()

		resp, body := s.do(t, multipartRequest(t, map[string]string{"title": "Broken"}, []byte("not a pdf")))

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		assert.True(t, strings.HasPrefix(detailOf(t, body), "Server Error: "))
	})
}

func TestUpdateOverlayHandler(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		s := newTestServer(t, nil)
		overlay := json.RawMessage(`{"strokes":[{"x":1}]}`)
		s.notes.On("UpdatePageOverlay", mock.Anything, int64(42), int64(70), overlay).
			Return(&entities.Page{ID: 70, PageNumber: 1, BackgroundType: entities.BackgroundPlain, OverlayData: overlay}, nil).Once()

		resp, body := s.do(t, authorized(jsonRequest(http.MethodPatch, "/notes/pages/70", `{"overlay_data":{"strokes":[{"x":1}]}}`)))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.JSONEq(t, `{"id":70,"page_number":1,"background_type":"plain","background_url":null,
			"overlay_data":{"strokes":[{"x":1}]}}`, string(body))
	})

	t.Run("unknown page", func(t *testing.T) {
		s := newTestServer(t, nil)
		s.notes.On("UpdatePageOverlay", mock.Anything, int64(42), int64(71), mock.Anything).
			Return(nil, entities.ErrPageNotFound).Once()

		resp, body := s.do(t, authorized(jsonRequest(http.MethodPatch, "/notes/pages/71", `{"overlay_data":{}}`)))

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "Page not found or unauthorized", detailOf(t, body))
	})

	t.Run("page of another user", func(t *testing.T) {
		s := newTestServer(t, nil)
		s.notes.On("UpdatePageOverlay", mock.Anything, int64(42), int64(72), mock.Anything).
			Return(nil, fmt.Errorf("updating page overlay: %w", services.ErrForbidden)).Once()

		resp, body := s.do(t, authorized(jsonRequest(http.MethodPatch, "/notes/pages/72", `{"overlay_data":{}}`)))

		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		assert.Equal(t, "Not authorized to access this note", detailOf(t, body))
	})

	t.Run("malformed body", func(t *testing.T) {
		s := newTestServer(t, nil)

		resp, body := s.do(t, authorized(jsonRequest(http.MethodPatch, "/notes/pages/70", `{"overlay_data":`)))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "Invalid overlay data", detailOf(t, body))
	})
}

func TestRecoveryFromPanic(t *testing.T) {
	s := newTestServer(t, nil)
	s.notes.On("ListNotes", mock.Anything, int64(42)).Run(func(mock.Arguments) {
		panic("boom")
	}).Return(nil, nil).Once()

	resp, body := s.do(t, authorized(httptest.NewRequest(http.MethodGet, "/notes", nil)))

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "Internal Server Error", detailOf(t, body))
}
