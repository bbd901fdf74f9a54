package handlers

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"resto_pos_backend/internal/models"
	"resto_pos_backend/internal/services"
	"resto_pos_backend/internal/spreadsheet"
	"resto_pos_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// ParseListOptions reads the shared collection query parameters. A
// missing limit falls back to the default page size; an explicit
// limit <= 0 requests the full unpaginated set. Malformed numbers are
// ignored rather than rejected.
func ParseListOptions(c *gin.Context) models.ListOptions {
	opts := models.ListOptions{
		Search: c.Query("search"),
		Sort:   c.Query("sort"),
		Limit:  models.DefaultLimit,
		Page:   1,
	}

	if limitStr := c.Query("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil {
			opts.Limit = limit
		}
	}
	if pageStr := c.Query("page"); pageStr != "" {
		if page, err := strconv.Atoi(pageStr); err == nil && page > 0 {
			opts.Page = page
		}
	}
	return opts
}

func parseIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		utils.RespondFail(c, http.StatusBadRequest, "invalid "+name+" parameter")
		return 0, false
	}
	return id, true
}

// listData is the payload shape for every collection endpoint.
func listData(items interface{}, total int, opts models.ListOptions) gin.H {
	return gin.H{
		"items": items,
		"pagination": models.Pagination{
			Total: total,
			Page:  opts.Page,
			Limit: opts.Limit,
		},
	}
}

// respondBindError reports a request-binding failure. Validation
// errors use 422, matching the rest of the validation surface.
func respondBindError(c *gin.Context, err error) {
	utils.RespondFail(c, http.StatusUnprocessableEntity, "invalid request payload: "+err.Error())
}

// respondServiceError maps service-level sentinel errors onto the
// envelope status codes. Anything unrecognized is a 500 with the
// detail kept out of the response body.
func respondServiceError(c *gin.Context, err error, logContext string) {
	utils.LogError(err, logContext)

	var status int
	switch {
	case errors.Is(err, services.ErrValidation):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, services.ErrTableBusy),
		errors.Is(err, spreadsheet.ErrUnsupportedFormat):
		status = http.StatusBadRequest
	case errors.Is(err, services.ErrInvalidCredentials):
		status = http.StatusUnauthorized
	case errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrRoleNotFound),
		errors.Is(err, services.ErrPermissionNotFound),
		errors.Is(err, services.ErrTableNotFound),
		errors.Is(err, services.ErrOrderNotFound),
		errors.Is(err, services.ErrDetailNotFound),
		errors.Is(err, services.ErrFoodNotFound),
		errors.Is(err, services.ErrCategoryNotFound),
		errors.Is(err, services.ErrTransactionNotFound):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrDuplicate):
		status = http.StatusConflict
	default:
		utils.RespondFail(c, http.StatusInternalServerError, "internal server error")
		return
	}
	utils.RespondFail(c, status, err.Error())
}

// exportFormat resolves the requested export format from the "format"
// query parameter.
func exportFormat(c *gin.Context) (string, bool) {
	format, err := spreadsheet.Normalize(c.Query("format"))
	if err != nil {
		utils.RespondFail(c, http.StatusBadRequest, err.Error())
		return "", false
	}
	return format, true
}

// serveExport streams a generated spreadsheet as a download.
func serveExport(c *gin.Context, format, base string, data []byte) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", spreadsheet.FileName(base, format)))
	c.Data(http.StatusOK, spreadsheet.ContentType(format), data)
}

// importUpload opens the uploaded "file" form field and infers the
// format from its extension.
func importUpload(c *gin.Context) (multipart.File, string, bool) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		utils.RespondFail(c, http.StatusBadRequest, "file upload is required")
		return nil, "", false
	}

	format, err := spreadsheet.Normalize(strings.TrimPrefix(filepath.Ext(fileHeader.Filename), "."))
	if err != nil {
		utils.RespondFail(c, http.StatusBadRequest, err.Error())
		return nil, "", false
	}

	file, err := fileHeader.Open()
	if err != nil {
		utils.LogError(err, "opening uploaded file")
		utils.RespondFail(c, http.StatusBadRequest, "cannot read uploaded file")
		return nil, "", false
	}
	return file, format, true
}
