package capsulesdk

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"strings"
)

// Session performs requests as one user.
type Session struct {
	client     *Client
	userID     string
	credential string
}

// UserID is the id returned at login.
func (s *Session) UserID() string { return s.userID }

// Credential is the value sent after "Bearer " in the Authorization header.
func (s *Session) Credential() string { return s.credential }

func (s *Session) authHeaders(extra map[string]string) map[string]string {
	h := map[string]string{"Authorization": "Bearer " + s.credential}
	for k, v := range extra {
		h[k] = v
	}
	return h
}

// ListCapsules returns the capsules this user created, newest first.
func (s *Session) ListCapsules(ctx context.Context) ([]TimeCapsule, error) {
	resp, err := s.client.doRequest(ctx, http.MethodGet, "/timecapsules", nil, s.authHeaders(nil))
	if err != nil {
		return nil, err
	}

	var capsules []TimeCapsule
	if err := decodeJSON(resp, &capsules, http.StatusOK); err != nil {
		return nil, err
	}
	return capsules, nil
}

// CreateCapsule uploads a capsule as multipart/form-data.
func (s *Session) CreateCapsule(ctx context.Context, req CreateCapsuleRequest) (*TimeCapsule, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fields := [][2]string{
		{"title", req.Title},
		{"content", req.Content},
	}
	if len(req.Recipients) > 0 {
		fields = append(fields, [2]string{"recipients", strings.Join(req.Recipients, ",")})
	}
	for _, f := range fields {
		if err := mw.WriteField(f[0], f[1]); err != nil {
			return nil, err
		}
	}

	if req.Image != nil {
		name := req.ImageName
		if name == "" {
			name = "image"
		}
		part, err := mw.CreateFormFile("image", name)
		if err != nil {
			return nil, err
		}
		if _, err := part.Write(req.Image); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	resp, err := s.client.doRequest(ctx, http.MethodPost, "/timecapsules", &buf, s.authHeaders(map[string]string{
		"Content-Type": mw.FormDataContentType(),
	}))
	if err != nil {
		return nil, err
	}

	var capsule TimeCapsule
	if err := decodeJSON(resp, &capsule, http.StatusCreated); err != nil {
		return nil, err
	}
	return &capsule, nil
}
