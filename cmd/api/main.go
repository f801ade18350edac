// Command api is the process entrypoint: it loads local environment
// variables, wires the composition root, and runs the HTTP server, the
// outbox relay and the scheduler together until the process is killed.
// Grounded on the teacher's cmd/app/main.go
// (_examples/LerianStudio-midaz/components/audit/cmd/app/main.go).
package main

import (
	"github.com/corebank-platform/core/internal/bootstrap"
	"github.com/corebank-platform/core/pkg/config"
)

func main() {
	config.InitLocalEnvConfig()

	service := bootstrap.InitServices()

	defer func() {
		if err := service.Logger.Sync(); err != nil {
			service.Logger.Infof("failed to sync logger: %s", err)
		}
	}()

	service.Logger.Infof("launching %s", bootstrap.ApplicationName)

	service.Run()
}
