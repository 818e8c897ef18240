package version

// Name is the service identifier used for telemetry and logging.
const Name = "tradepost-lifecycled"

// Version is overridden at build time via -ldflags.
var Version = "dev"
