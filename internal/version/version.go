// Package version holds the build version and checks it against the latest
// published release.
package version

import (
	"context"
	"fmt"
	"net/http"
	"time"

	goversion "github.com/hashicorp/go-version"
	"github.com/nulzo/resto-analytics/internal/httpclient"
)

// AppVersion is overridden at build time with
// -ldflags "-X github.com/nulzo/resto-analytics/internal/version.AppVersion=v1.2.3".
var AppVersion = "v0.0.0"

type Release struct {
	TagName string `json:"tag_name"`
}

// Update describes a newer release than the running build.
type Update struct {
	Current string
	Latest  string
}

// Newer reports whether latest is a higher semantic version than current.
func Newer(current, latest string) (bool, error) {
	c, err := goversion.NewVersion(current)
	if err != nil {
		return false, fmt.Errorf("parse current version %q: %w", current, err)
	}
	l, err := goversion.NewVersion(latest)
	if err != nil {
		return false, fmt.Errorf("parse latest version %q: %w", latest, err)
	}
	return c.LessThan(l), nil
}

// CheckForUpdates fetches the latest release from a GitHub-style releases
// endpoint. It returns nil when the running build is current.
func CheckForUpdates(ctx context.Context, client *http.Client, url string) (*Update, error) {
	if client == nil {
		client = &http.Client{Timeout: 2 * time.Second}
	}

	var release Release
	if err := httpclient.SendRequest(ctx, client, http.MethodGet, url, nil, nil, &release); err != nil {
		return nil, fmt.Errorf("fetch latest release: %w", err)
	}

	newer, err := Newer(AppVersion, release.TagName)
	if err != nil || !newer {
		return nil, err
	}
	return &Update{Current: AppVersion, Latest: release.TagName}, nil
}
