package http

import (
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/dthai91/edx-platform/internal/platform/logger"
)

func TestServerRun_ListenerFailureSurfaces(t *testing.T) {
	gin.SetMode(gin.TestMode)
	s := NewServer(RouterConfig{Log: logger.NewNop()})
	if err := s.Run("127.0.0.1:-1"); err == nil {
		t.Fatal("expected a listen error for an invalid address")
	}
}
