package http

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/timecapsule/pkg/capsulesdk"
	"github.com/aussiebroadwan/timecapsule/pkg/idx"
	"github.com/stretchr/testify/require"
)

type formFile struct {
	name string
	data []byte
}

func multipartRequest(t *testing.T, fields map[string]string, file *formFile) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if file != nil {
		part, err := mw.CreateFormFile("image", file.name)
		require.NoError(t, err)
		_, err = part.Write(file.data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/timecapsules", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func withBearer(req *http.Request, credential string) *http.Request {
	req.Header.Set("Authorization", "Bearer "+credential)
	return req
}

func decodeCapsule(t *testing.T, rec *httptest.ResponseRecorder) capsulesdk.TimeCapsule {
	t.Helper()
	var c capsulesdk.TimeCapsule
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &c), rec.Body.String())
	return c
}

func (ts *testServer) list(t *testing.T, credential string) []capsulesdk.TimeCapsule {
	t.Helper()
	rec := ts.do(t, withBearer(httptest.NewRequest(http.MethodGet, "/timecapsules", nil), credential))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var out []capsulesdk.TimeCapsule
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestCapsules_RequireCredential(t *testing.T) {
	headers := []struct {
		name  string
		value string
	}{
		{"missing", ""},
		{"scheme only", "Bearer"},
		{"empty token", "Bearer "},
		{"no space", "Bearer01ARZ3NDEKTSV4RRFFQ69G5FAV"},
	}

	for _, h := range headers {
		for _, method := range []string{http.MethodGet, http.MethodPost} {
			t.Run(h.name+" "+method, func(t *testing.T) {
				ts := newTestServer(t)

				var req *http.Request
				if method == http.MethodGet {
					req = httptest.NewRequest(method, "/timecapsules", nil)
				} else {
					req = multipartRequest(t, map[string]string{"title": "t", "content": "c"}, nil)
				}
				if h.value != "" {
					req.Header.Set("Authorization", h.value)
				}

				rec := ts.do(t, req)
				require.Equal(t, http.StatusUnauthorized, rec.Code)
				require.Equal(t, "Unauthorized", decodeMessage(t, rec))
				require.False(t, ts.store.touched.Load(), "storage must not be reached")
			})
		}
	}
}

func TestCapsules_CreateAndList(t *testing.T) {
	ts := newTestServer(t)
	ts.router.CapsuleService.Now = clock(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	ts.register(t, "alice", "alice@example.com", "hunter2")
	alice := ts.login(t, "alice", "hunter2").UserID

	bob := idx.New().String()
	carol := idx.New().String()
	image := []byte{0x89, 'P', 'N', 'G', 0x00, 0xff}

	req := multipartRequest(t, map[string]string{
		"title":      "Open in 2035",
		"content":    "Dear future me",
		"recipients": bob + "," + carol,
		"creator":    idx.New().String(),
	}, &formFile{name: "photo.png", data: image})
	rec := ts.do(t, withBearer(req, alice))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	created := decodeCapsule(t, rec)
	require.NotEmpty(t, created.ID)
	require.Equal(t, alice, created.Creator, "creator comes from the credential, not the body")
	require.Equal(t, "Open in 2035", created.Title)
	require.Equal(t, "Dear future me", created.Content)
	require.Equal(t, []string{bob, carol}, created.Recipients)
	require.NotNil(t, created.Image)
	require.Equal(t, base64.StdEncoding.EncodeToString(image), *created.Image)
	require.False(t, created.CreatedAt.IsZero())

	second := ts.do(t, withBearer(multipartRequest(t, map[string]string{
		"title": "Later", "content": "more",
	}, nil), alice))
	require.Equal(t, http.StatusCreated, second.Code, second.Body.String())
	later := decodeCapsule(t, second)
	require.Nil(t, later.Image)
	require.NotNil(t, later.Recipients)
	require.Empty(t, later.Recipients)
	require.NotContains(t, second.Body.String(), `"image"`)

	listed := ts.list(t, alice)
	require.Len(t, listed, 2)
	require.Equal(t, later.ID, listed[0].ID, "newest first")
	require.Equal(t, created.ID, listed[1].ID)
	require.Equal(t, created.Recipients, listed[1].Recipients)
	require.Equal(t, created.Image, listed[1].Image)
}

func TestCapsules_ListIsScopedToCreator(t *testing.T) {
	ts := newTestServer(t)
	ts.register(t, "alice", "alice@example.com", "pw")
	ts.register(t, "bob", "bob@example.com", "pw")
	alice := ts.login(t, "alice", "pw").UserID
	bob := ts.login(t, "bob", "pw").UserID

	rec := ts.do(t, withBearer(multipartRequest(t, map[string]string{
		"title": "for bob", "content": "hi", "recipients": bob,
	}, nil), alice))
	require.Equal(t, http.StatusCreated, rec.Code)

	require.Len(t, ts.list(t, alice), 1)
	// Recipients do not see capsules addressed to them.
	require.Empty(t, ts.list(t, bob))
}

func TestCapsules_UnknownIdentifierListsEmpty(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, withBearer(httptest.NewRequest(http.MethodGet, "/timecapsules", nil), "not-a-user"))
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `[]`, rec.Body.String())
}

func TestCapsules_CreateFromURLEncodedForm(t *testing.T) {
	ts := newTestServer(t)
	owner := idx.New().String()

	form := url.Values{"title": {"form"}, "content": {"encoded"}}
	req := httptest.NewRequest(http.MethodPost, "/timecapsules", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := ts.do(t, withBearer(req, owner))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.Equal(t, owner, decodeCapsule(t, rec).Creator)
}

func TestCapsules_CreateFromJSON(t *testing.T) {
	ts := newTestServer(t)
	owner := idx.New().String()
	r1, r2 := idx.New().String(), idx.New().String()

	tests := []struct {
		name string
		body string
		want []string
	}{
		{"string recipients", `{"title":"a","content":"b","recipients":"` + r1 + `,` + r2 + `"}`, []string{r1, r2}},
		{"array recipients", `{"title":"a","content":"b","recipients":["` + r1 + `","` + r2 + `"]}`, []string{r1, r2}},
		{"no recipients", `{"title":"a","content":"b"}`, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/timecapsules", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")

			rec := ts.do(t, withBearer(req, owner))
			require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
			require.Equal(t, tt.want, decodeCapsule(t, rec).Recipients)
		})
	}
}

func TestCapsules_CreateRejectsInvalidInput(t *testing.T) {
	ts := newTestServer(t)
	owner := idx.New().String()

	tests := []struct {
		name   string
		fields map[string]string
		auth   string
		want   string
	}{
		{"missing title", map[string]string{"content": "c"}, owner, "title is required"},
		{"blank title", map[string]string{"title": "  ", "content": "c"}, owner, "title is required"},
		{"missing content", map[string]string{"title": "t"}, owner, "content is required"},
		{"malformed recipient", map[string]string{"title": "t", "content": "c", "recipients": "nope"}, owner, ""},
		{"creator not an id", map[string]string{"title": "t", "content": "c"}, "someone", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ts.do(t, withBearer(multipartRequest(t, tt.fields, nil), tt.auth))
			require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			if tt.want != "" {
				require.Equal(t, tt.want, decodeMessage(t, rec))
			}
		})
	}

	require.Empty(t, ts.list(t, owner), "rejected requests persist nothing")
}

func TestCapsules_StorageFailure(t *testing.T) {
	ts := newTestServer(t)
	owner := idx.New().String()
	require.NoError(t, ts.raw.Close())

	rec := ts.do(t, withBearer(httptest.NewRequest(http.MethodGet, "/timecapsules", nil), owner))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Equal(t, "Server error", decodeMessage(t, rec))

	rec = ts.do(t, withBearer(multipartRequest(t, map[string]string{"title": "t", "content": "c"}, nil), owner))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Equal(t, "Server error", decodeMessage(t, rec))
}

func TestCapsules_AccessTokenMode(t *testing.T) {
	ts := newTestServer(t, withJWT(t))
	ts.register(t, "alice", "alice@example.com", "pw")
	login := ts.login(t, "alice", "pw")

	// The bare id is not a credential once tokens are issued.
	rec := ts.do(t, withBearer(httptest.NewRequest(http.MethodGet, "/timecapsules", nil), login.UserID))
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = ts.do(t, withBearer(multipartRequest(t, map[string]string{"title": "t", "content": "c"}, nil), login.AccessToken))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.Equal(t, login.UserID, decodeCapsule(t, rec).Creator)

	require.Len(t, ts.list(t, login.AccessToken), 1)
}
