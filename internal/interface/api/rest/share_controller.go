package rest

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"json-share-api/internal/application/apperr"
	"json-share-api/internal/application/ports"
	"json-share-api/internal/application/validator"
	"json-share-api/internal/interface/api/rest/dto/share"
	"json-share-api/internal/interface/api/rest/middleware"
	"json-share-api/internal/interface/api/rest/response"
)

// multipart framing on top of the largest accepted file
const multipartOverhead = int64(1 << 20)

const (
	fieldExpiryDays = "expiryDays"
	maxFieldBytes   = 64
)

type ShareController struct {
	shareService ports.ShareService
	logger       *zap.Logger
	debug        bool
	maxBodyBytes int64
}

func NewShareController(
	r *gin.Engine,
	shareService ports.ShareService,
	logger *zap.Logger,
	limiter *middleware.RateLimiter,
	debug bool,
) *ShareController {
	sc := &ShareController{
		shareService: shareService,
		logger:       logger,
		debug:        debug,
		maxBodyBytes: validator.MaxUploadBytes + multipartOverhead,
	}

	owner := middleware.RequireOwner()
	create := []gin.HandlerFunc{owner, limiter.Middleware(), sc.CreateShareHandler}

	r.POST(RouteUpload, create...)
	r.POST(RouteShares, create...)
	r.GET(RouteShare, sc.GetShareHandler)
	r.GET(RouteShareAlt, sc.GetShareHandler)
	r.GET(RouteMyShares, owner, sc.ListMySharesHandler)
	r.DELETE(RouteShare, owner, sc.DeleteShareHandler)
	r.DELETE(RouteMyShare, owner, sc.DeleteShareHandler)

	return sc
}

func (sc *ShareController) CreateShareHandler(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, sc.maxBodyBytes)

	form, err := readUploadForm(c.Request)
	if err != nil {
		if isBodyTooLarge(err) {
			sc.fail(c, apperr.TooLarge("file size exceeds 50MB limit"))
			return
		}
		sc.fail(c, apperr.Validation("file data is missing"))
		return
	}
	if form.fileName == "" {
		sc.fail(c, apperr.Validation("file data is missing"))
		return
	}

	if err = validator.ValidateUpload(&validator.Upload{Filename: form.fileName, Size: int64(len(form.content))}); err != nil {
		sc.fail(c, err)
		return
	}

	receipt, err := sc.shareService.CreateShare(c.Request.Context(), middleware.OwnerID(c), ports.CreateShareInput{
		Content:    form.content,
		ExpiryDays: form.expiryDays,
		FileName:   form.fileName,
	})
	if err != nil {
		sc.fail(c, err)
		return
	}

	response.Created(c, share.ToResponseCreated(*receipt), "Share created successfully")
}

func (sc *ShareController) GetShareHandler(c *gin.Context) {
	view, err := sc.shareService.GetShare(c.Request.Context(), c.Param("share_id"))
	if err != nil {
		sc.fail(c, err)
		return
	}

	response.OK(c, share.ToResponseView(*view), "")
}

func (sc *ShareController) ListMySharesHandler(c *gin.Context) {
	shares, err := sc.shareService.ListMyShares(c.Request.Context(), middleware.OwnerID(c))
	if err != nil {
		sc.fail(c, err)
		return
	}

	response.OK(c, share.ToResponseSummaries(shares), "")
}

func (sc *ShareController) DeleteShareHandler(c *gin.Context) {
	err := sc.shareService.DeleteShare(c.Request.Context(), c.Param("share_id"), middleware.OwnerID(c))
	if err != nil {
		sc.fail(c, err)
		return
	}

	response.OK(c, nil, "Share deleted successfully")
}

// fail logs unexpected failures with their cause and writes the envelope.
func (sc *ShareController) fail(c *gin.Context, err error) {
	ae := apperr.As(err)
	if ae.Code == apperr.CodeServer || ae.Code == apperr.CodeTimeout {
		sc.logger.Error("request failed",
			zap.String("route", c.FullPath()),
			zap.String("code", string(ae.Code)),
			zap.Error(err),
		)
	}

	response.Fail(c, ae, sc.debug)
}

type uploadForm struct {
	fileName   string
	content    []byte
	expiryDays string
}

// readUploadForm streams the multipart body. The first part with a filename
// is the document regardless of its field name; further file parts are
// drained. File content is read up to MaxUploadBytes+1 so the caller can tell
// an oversize upload from one exactly at the limit.
func readUploadForm(req *http.Request) (*uploadForm, error) {
	mr, err := req.MultipartReader()
	if err != nil {
		return nil, err
	}

	form := &uploadForm{}
	found := false
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		switch {
		case part.FileName() != "" && !found:
			found = true
			form.fileName = part.FileName()
			form.content, err = io.ReadAll(io.LimitReader(part, validator.MaxUploadBytes+1))
		case part.FileName() == "" && part.FormName() == fieldExpiryDays:
			var v []byte
			v, err = io.ReadAll(io.LimitReader(part, maxFieldBytes))
			form.expiryDays = string(v)
		default:
			_, err = io.Copy(io.Discard, part)
		}
		_ = part.Close()
		if err != nil {
			return nil, err
		}
	}

	return form, nil
}

func isBodyTooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe) || strings.Contains(err.Error(), "request body too large")
}
