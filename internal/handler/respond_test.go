package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"workorder-service/internal/service/workorder"
)

func TestWriteErrorMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()

	cases := []struct {
		name string
		err  error
		want int
	}{
		{"unauthorized", workorder.Unauthorized("start", "not your order"), http.StatusForbidden},
		{"invalid state", workorder.InvalidState("cancel", "already cancelled"), http.StatusConflict},
		{"validation", workorder.Validation("submitDelivery", "empty message"), http.StatusBadRequest},
		{"not found", workorder.NotFound("getWorkOrder", "no such order"), http.StatusNotFound},
		{"infrastructure", errors.New("connection refused"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			writeError(c, logger, "testCommand", tc.err)

			if w.Code != tc.want {
				t.Errorf("status = %d, want %d", w.Code, tc.want)
			}
		})
	}
}

// Internal errors must not leak their message to the client.
func TestWriteErrorHidesInternalDetail(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	writeError(c, zap.NewNop(), "testCommand", errors.New("dial tcp 10.0.0.5:5432: connection refused"))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	if body := w.Body.String(); body != `{"error":"internal error"}` {
		t.Errorf("internal detail leaked: %s", body)
	}
}
