package cli

import (
	"github.com/telemetrylint/eventcheck/internal/core"
	"github.com/telemetrylint/eventcheck/internal/observability"
	"github.com/telemetrylint/eventcheck/pkg/models"
)

// Service instances, set during app initialization in app.go.
var (
	BasePath string
	Config   *models.CheckConfig
	Scanner  core.Scanner
	RunLog   observability.RunLog
)
