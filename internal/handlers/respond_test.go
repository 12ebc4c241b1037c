package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"portfolio-tracker/internal/services"
)

func TestAbortWithError_StatusMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{services.ErrNotFound, http.StatusNotFound},
		{services.ErrInvalidSymbol, http.StatusBadRequest},
		{services.ErrInsufficientHoldings, http.StatusBadRequest},
		{services.ErrConflict, http.StatusConflict},
		{services.ErrRateLimited, http.StatusTooManyRequests},
		{services.ErrUpstream, http.StatusBadGateway},
		{services.ErrUnauthorized, http.StatusUnauthorized},
		{errors.New("something else"), http.StatusInternalServerError},
		// wrapped sentinels must map the same way
		{fmt.Errorf("%w: have 2, requested 5", services.ErrInsufficientHoldings), http.StatusBadRequest},
	}

	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		abortWithError(c, tc.err)
		if w.Code != tc.want {
			t.Errorf("abortWithError(%v) = %d, want %d", tc.err, w.Code, tc.want)
		}
	}
}
