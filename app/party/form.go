// Package party contains the party endpoints. Every query is scoped to the
// authenticated caller except the global listing.
package party

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"partyshare/party-api/internal"
	"partyshare/party-api/internal/service"
	"partyshare/party-api/pkg/middleware"
	"partyshare/party-api/pkg/respond"
	"partyshare/party-api/pkg/validators"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const msgFieldsMissing = "Please fill at least name, description and party date fields."

// flag accepts true/false, 1/0 and on/off from forms and JSON alike.
// Missing or empty means false.
type flag bool

func (f *flag) UnmarshalParam(s string) error {
	s = strings.ToLower(strings.TrimSpace(s))

	switch s {
	case "", "off":
		*f = false
		return nil
	case "on":
		*f = true
		return nil
	}

	b, err := strconv.ParseBool(s)
	if err != nil {
		return fmt.Errorf("invalid privacy value %q", s)
	}

	*f = flag(b)
	return nil
}

func (f *flag) UnmarshalJSON(b []byte) error {
	var v bool
	if err := json.Unmarshal(b, &v); err == nil {
		*f = flag(v)
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("invalid privacy value %s", b)
	}

	return f.UnmarshalParam(s)
}

type partyForm struct {
	Title       string `json:"title" form:"title"`
	Description string `json:"description" form:"description"`
	PartyDate   string `json:"partyDate" form:"partyDate"`
	Privacy     flag   `json:"privacy" form:"privacy"`
	UserID      string `json:"userId" form:"userId"`

	date time.Time
}

// bindPartyForm reads and validates the text fields and stages the
// uploaded photos. It writes the error response itself and returns
// ok == false when the request can't go on. A non nil batch must be
// closed by the caller.
func bindPartyForm(c *gin.Context, d *internal.Deps) (*partyForm, *service.Batch, bool) {
	requestID := c.MustGet("requestID").(string)

	var form partyForm
	if err := c.ShouldBind(&form); err != nil {
		if middleware.IsBodyTooLarge(err) {
			middleware.AbortBodyTooLarge(c)
			return nil, nil, false
		}

		respond.Error(c, http.StatusBadRequest, respond.KindValidation, "Invalid request body")

		zap.L().Debug("Can't bind request body", zap.Error(err), zap.String("requestID", requestID))
		return nil, nil, false
	}

	if err := validators.PartyFieldsValidator(form.Title, form.Description, form.PartyDate); err != nil {
		respond.Error(c, http.StatusBadRequest, respond.KindValidation, msgFieldsMissing)
		return nil, nil, false
	}

	date, err := validators.ParsePartyDate(form.PartyDate)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, respond.KindValidation, "Party date must be YYYY-MM-DD or an RFC3339 timestamp.")
		return nil, nil, false
	}

	form.date = date
	form.Title = strings.TrimSpace(form.Title)
	form.Description = strings.TrimSpace(form.Description)
	form.UserID = strings.TrimSpace(form.UserID)

	batch, code, err := d.Uploader.Stage(photoHeaders(c))
	if err != nil {
		photoError(c, d, code, err)
		return nil, nil, false
	}

	return &form, batch, true
}

// photoHeaders returns the uploaded photos, accepting both photos and
// photos[] as the field name. Non multipart requests carry none.
func photoHeaders(c *gin.Context) []*multipart.FileHeader {
	if c.Request.MultipartForm == nil {
		return nil
	}

	files := c.Request.MultipartForm.File
	return append(files["photos"], files["photos[]"]...)
}

func photoError(c *gin.Context, d *internal.Deps, code int, err error) {
	rules := d.Uploader.Rules

	var msg string
	switch {
	case errors.Is(err, validators.ErrTooManyFiles):
		msg = fmt.Sprintf("You can upload at most %d photos.", rules.MaxFiles)
	case errors.Is(err, validators.ErrFileTooLarge):
		msg = fmt.Sprintf("Each photo must be at most %d MB.", rules.MaxSize>>20)
	case errors.Is(err, validators.ErrFileTypeUnsupported):
		msg = "Only image files can be uploaded."
	case errors.Is(err, validators.ErrFileNameTooLong):
		msg = "Photo file name is too long."
	case errors.Is(err, validators.ErrNoFile):
		msg = "Photo file is missing."
	default:
		respond.Internal(c, "Failed to stage photos", err)
		return
	}

	kind := respond.KindValidation
	if code == http.StatusRequestEntityTooLarge {
		kind = respond.KindTooLarge
	}

	respond.Error(c, code, kind, msg)
}
