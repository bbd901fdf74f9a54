package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"resto_pos_backend/internal/models"
	"resto_pos_backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func listOptionsForQuery(t *testing.T, rawQuery string) models.ListOptions {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/foods?"+rawQuery, nil)
	return ParseListOptions(c)
}

func TestParseListOptionsDefaults(t *testing.T) {
	opts := listOptionsForQuery(t, "")
	assert.Equal(t, models.DefaultLimit, opts.Limit)
	assert.Equal(t, 1, opts.Page)
	assert.Empty(t, opts.Search)
	assert.Empty(t, opts.Sort)
}

func TestParseListOptionsExplicit(t *testing.T) {
	opts := listOptionsForQuery(t, "search=soup&sort=-price&limit=50&page=4")
	assert.Equal(t, "soup", opts.Search)
	assert.Equal(t, "-price", opts.Sort)
	assert.Equal(t, 50, opts.Limit)
	assert.Equal(t, 4, opts.Page)
}

func TestParseListOptionsUnpaginated(t *testing.T) {
	// An explicit limit of zero or less asks for the whole set.
	opts := listOptionsForQuery(t, "limit=0")
	assert.Equal(t, 0, opts.Limit)

	opts = listOptionsForQuery(t, "limit=-5")
	assert.Equal(t, -5, opts.Limit)
}

func TestRespondServiceErrorStatuses(t *testing.T) {
	testCases := []struct {
		name     string
		err      error
		expected int
	}{
		{"validation errors are 422", fmt.Errorf("%w: qty must be positive", services.ErrValidation), http.StatusUnprocessableEntity},
		{"busy table is 400", services.ErrTableBusy, http.StatusBadRequest},
		{"bad credentials are 401", services.ErrInvalidCredentials, http.StatusUnauthorized},
		{"missing order is 404", services.ErrOrderNotFound, http.StatusNotFound},
		{"duplicate is 409", services.ErrDuplicate, http.StatusConflict},
		{"anything else is 500", errors.New("connection reset"), http.StatusInternalServerError},
	}

	gin.SetMode(gin.TestMode)
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			respondServiceError(c, tc.err, "test")
			assert.Equal(t, tc.expected, w.Code)
		})
	}
}

func TestRespondBindErrorIs422(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	respondBindError(c, errors.New("qty is required"))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "invalid request payload")
}

func TestParseListOptionsMalformedIgnored(t *testing.T) {
	opts := listOptionsForQuery(t, "limit=abc&page=xyz")
	assert.Equal(t, models.DefaultLimit, opts.Limit)
	assert.Equal(t, 1, opts.Page)

	opts = listOptionsForQuery(t, "page=0")
	assert.Equal(t, 1, opts.Page)
}
