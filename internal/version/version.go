// Package version is stamped at build time:
//
//	go build -ldflags "-X product-api/internal/version.Version=v1.0.0 \
//	  -X product-api/internal/version.Commit=$(git rev-parse --short HEAD) \
//	  -X product-api/internal/version.BuildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
package version

var (
	Version   = "dev"
	Commit    = "none"
	BuildTime = "unknown"
)
