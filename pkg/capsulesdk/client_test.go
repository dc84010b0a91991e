package capsulesdk_test

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aussiebroadwan/timecapsule/pkg/capsulesdk"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T, h http.HandlerFunc) *capsulesdk.Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return capsulesdk.NewClient(srv.URL + "/")
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func TestRegister(t *testing.T) {
	client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/register", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req capsulesdk.RegisterRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, capsulesdk.RegisterRequest{Username: "alice", Email: "a@example.com", Password: "pw"}, req)

		writeJSON(w, http.StatusCreated, capsulesdk.MessageResponse{Message: "User registered successfully"})
	})

	err := client.Register(t.Context(), capsulesdk.RegisterRequest{Username: "alice", Email: "a@example.com", Password: "pw"})
	require.NoError(t, err)
}

func TestErrorsDecodeToAPIError(t *testing.T) {
	client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, capsulesdk.MessageResponse{Message: "Username or email already exists"})
	})

	err := client.Register(t.Context(), capsulesdk.RegisterRequest{})
	var apiErr *capsulesdk.APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	require.Equal(t, "Username or email already exists", apiErr.Message)
}

func TestErrorsWithoutBodyUseStatusText(t *testing.T) {
	client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.GetLiveness(t.Context())
	var apiErr *capsulesdk.APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, "Bad Gateway", apiErr.Message)
}

func TestLoginCredential(t *testing.T) {
	tests := []struct {
		name string
		resp capsulesdk.LoginResponse
		want string
	}{
		{
			name: "bare identifier",
			resp: capsulesdk.LoginResponse{Message: "Login successful", UserID: "01ARZ3NDEKTSV4RRFFQ69G5FAV"},
			want: "01ARZ3NDEKTSV4RRFFQ69G5FAV",
		},
		{
			name: "access token",
			resp: capsulesdk.LoginResponse{
				Message: "Login successful", UserID: "01ARZ3NDEKTSV4RRFFQ69G5FAV",
				AccessToken: "header.payload.sig", TokenType: "Bearer", ExpiresIn: 3600,
			},
			want: "header.payload.sig",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
				switch r.URL.Path {
				case "/login":
					writeJSON(w, http.StatusOK, tt.resp)
				case "/timecapsules":
					require.Equal(t, "Bearer "+tt.want, r.Header.Get("Authorization"))
					writeJSON(w, http.StatusOK, []capsulesdk.TimeCapsule{})
				default:
					t.Fatalf("unexpected path %s", r.URL.Path)
				}
			})

			session, err := client.Login(t.Context(), "alice", "pw")
			require.NoError(t, err)
			require.Equal(t, "01ARZ3NDEKTSV4RRFFQ69G5FAV", session.UserID())
			require.Equal(t, tt.want, session.Credential())

			capsules, err := session.ListCapsules(t.Context())
			require.NoError(t, err)
			require.Empty(t, capsules)
		})
	}
}

func TestCreateCapsuleSendsMultipart(t *testing.T) {
	image := "data"
	client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer cred", r.Header.Get("Authorization"))
		require.NoError(t, r.ParseMultipartForm(1<<20))

		require.Equal(t, "Open in 2035", r.FormValue("title"))
		require.Equal(t, "hello", r.FormValue("content"))
		require.Equal(t, "A,B", r.FormValue("recipients"))

		file, header, err := r.FormFile("image")
		require.NoError(t, err)
		defer file.Close()
		require.Equal(t, "image", header.Filename)
		data, err := io.ReadAll(file)
		require.NoError(t, err)
		require.Equal(t, []byte(image), data)

		writeJSON(w, http.StatusCreated, capsulesdk.TimeCapsule{
			ID: "C", Creator: "U", Title: "Open in 2035", Content: "hello", Recipients: []string{"A", "B"},
		})
	})

	created, err := client.NewSession("U", "cred").CreateCapsule(t.Context(), capsulesdk.CreateCapsuleRequest{
		Title:      "Open in 2035",
		Content:    "hello",
		Image:      []byte(image),
		Recipients: []string{"A", "B"},
	})
	require.NoError(t, err)
	require.Equal(t, "C", created.ID)
	require.Equal(t, []string{"A", "B"}, created.Recipients)
}

func TestCreateCapsuleWithoutImage(t *testing.T) {
	client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		_, _, err := r.FormFile("image")
		require.ErrorIs(t, err, http.ErrMissingFile)
		_, ok := r.MultipartForm.Value["recipients"]
		require.False(t, ok)

		writeJSON(w, http.StatusCreated, capsulesdk.TimeCapsule{ID: "C", Recipients: []string{}})
	})

	_, err := client.NewSession("U", "cred").CreateCapsule(t.Context(), capsulesdk.CreateCapsuleRequest{Title: "t", Content: "c"})
	require.NoError(t, err)
}
