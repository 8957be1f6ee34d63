package main

import (
	"context"

	"gradescrape-backend/cmd/gradescrape-cli/commands"
	"gradescrape-backend/lib/serviceutil"
	"gradescrape-backend/lib/telemetry"
)

func main() {
	telemetry.SetupFromEnv(context.Background(), "gradescrape-cli")
	telemetry.InitSlog(true)

	ctx := serviceutil.SignalContext()
	telemetry.InstrumentPerfStats(ctx)
	commands.ExecuteContext(ctx)
}
