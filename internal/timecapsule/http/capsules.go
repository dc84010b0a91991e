package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/timecapsule/internal/timecapsule/domain"
	"github.com/aussiebroadwan/timecapsule/internal/timecapsule/service"
	"github.com/aussiebroadwan/timecapsule/pkg/capsulesdk"
	"github.com/aussiebroadwan/timecapsule/pkg/httpx"
	"github.com/aussiebroadwan/timecapsule/pkg/slogx"
)

// maxMultipartMemory is how much of an upload is held in memory before
// spilling to temporary files.
const maxMultipartMemory = 32 << 20

type CapsulesHandler struct {
	CapsuleService *service.CapsuleService
}

// HandleList godoc
//
//	@Summary		List capsules
//	@Description	Return every capsule created by the authenticated user, newest first.
//	@Tags			Capsules
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{array}		capsulesdk.TimeCapsule
//	@Failure		401	{object}	capsulesdk.MessageResponse	"Unauthorized"
//	@Failure		500	{object}	capsulesdk.MessageResponse	"Server error"
//	@Router			/timecapsules [get].
func (h *CapsulesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, _ := httpx.UserIDFromContext(ctx)

	capsules, err := h.CapsuleService.ListOwnedBy(ctx, userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	resp := make([]capsulesdk.TimeCapsule, 0, len(capsules))
	for _, c := range capsules {
		resp = append(resp, toWireCapsule(c))
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

// HandleCreate godoc
//
//	@Summary		Create capsule
//	@Description	Store a capsule owned by the authenticated user. Any creator supplied in the body is ignored.
//	@Description	Recipients are user ids separated by commas.
//	@Tags			Capsules
//	@Accept			multipart/form-data
//	@Produce		json
//	@Security		BearerAuth
//	@Param			title		formData	string	true	"Capsule title"
//	@Param			content		formData	string	true	"Capsule content"
//	@Param			recipients	formData	string	false	"Comma separated recipient user ids"
//	@Param			image		formData	file	false	"Image, stored base64 encoded"
//	@Success		201			{object}	capsulesdk.TimeCapsule
//	@Failure		400			{object}	capsulesdk.MessageResponse	"Invalid input"
//	@Failure		401			{object}	capsulesdk.MessageResponse	"Unauthorized"
//	@Failure		500			{object}	capsulesdk.MessageResponse	"Server error"
//	@Router			/timecapsules [post].
func (h *CapsulesHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, _ := httpx.UserIDFromContext(ctx)

	in, err := readCapsuleInput(r)
	if err != nil {
		slogx.FromContext(ctx).Warn("invalid capsule body", "err", err)
		httpx.WriteMessage(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	capsule, err := h.CapsuleService.Create(ctx, userID, in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, toWireCapsule(capsule))
}

// readCapsuleInput accepts multipart and urlencoded forms as well as a JSON
// object with the same field names.
func readCapsuleInput(r *http.Request) (service.CreateCapsuleInput, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		return readCapsuleJSON(r.Body)
	}

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		if !errors.Is(err, http.ErrNotMultipart) {
			return service.CreateCapsuleInput{}, err
		}
		if err := r.ParseForm(); err != nil {
			return service.CreateCapsuleInput{}, err
		}
	}

	in := service.CreateCapsuleInput{
		Title:      r.FormValue("title"),
		Content:    r.FormValue("content"),
		Recipients: r.FormValue("recipients"),
	}

	file, _, err := r.FormFile("image")
	switch {
	case err == nil:
		defer file.Close()
		var buf bytes.Buffer
		if _, err := io.Copy(&buf, file); err != nil {
			return service.CreateCapsuleInput{}, err
		}
		in.Image = buf.Bytes()
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	default:
		return service.CreateCapsuleInput{}, err
	}

	return in, nil
}

type capsuleJSON struct {
	Title      string          `json:"title"`
	Content    string          `json:"content"`
	Recipients json.RawMessage `json:"recipients"`
}

func readCapsuleJSON(body io.Reader) (service.CreateCapsuleInput, error) {
	var req capsuleJSON
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		return service.CreateCapsuleInput{}, err
	}

	in := service.CreateCapsuleInput{Title: req.Title, Content: req.Content}
	if len(req.Recipients) == 0 || string(req.Recipients) == "null" {
		return in, nil
	}

	// recipients may be a comma separated string or an array of ids
	var joined string
	if err := json.Unmarshal(req.Recipients, &joined); err == nil {
		in.Recipients = joined
		return in, nil
	}
	var list []string
	if err := json.Unmarshal(req.Recipients, &list); err != nil {
		return service.CreateCapsuleInput{}, err
	}
	in.Recipients = strings.Join(list, ",")
	return in, nil
}

func toWireCapsule(c domain.TimeCapsule) capsulesdk.TimeCapsule {
	recipients := c.Recipients
	if recipients == nil {
		recipients = []string{}
	}
	return capsulesdk.TimeCapsule{
		ID:         c.ID,
		Creator:    c.CreatorID,
		Title:      c.Title,
		Content:    c.Content,
		Image:      c.Image,
		CreatedAt:  c.CreatedAt,
		Recipients: recipients,
	}
}
