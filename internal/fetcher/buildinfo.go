package fetcher

import (
	"encoding/json/jsontext"
	"encoding/json/v2"
	"fmt"
	"path/filepath"
	"time"

	"github.com/recipespark/content-core/internal/id"
)

// BuildInfoFile is the name of the file WriteBuildInfo writes.
const BuildInfoFile = "build-info.json"

// BuildInfo stamps a build so the deployed site can report what it runs.
type BuildInfo struct {
	Version        string `json:"version"`
	BuildDate      string `json:"buildDate"`
	BuildTimestamp int64  `json:"buildTimestamp"` // unix millis
	BuildID        string `json:"buildId"`
}

// NewBuildInfo stamps version at now.
func NewBuildInfo(version string, now time.Time) (BuildInfo, error) {
	buildID, err := id.BuildID()
	if err != nil {
		return BuildInfo{}, err
	}
	if version == "" {
		version = "0.0.0"
	}
	now = now.UTC()
	return BuildInfo{
		Version:        version,
		BuildDate:      now.Format("2006-01-02T15:04:05.000Z07:00"),
		BuildTimestamp: now.UnixMilli(),
		BuildID:        buildID,
	}, nil
}

// WriteBuildInfo writes build-info.json into dir.
func WriteBuildInfo(dir, version string) (BuildInfo, error) {
	info, err := NewBuildInfo(version, time.Now())
	if err != nil {
		return BuildInfo{}, err
	}
	data, err := json.Marshal(info, jsontext.WithIndent("  "))
	if err != nil {
		return BuildInfo{}, fmt.Errorf("encode build info: %w", err)
	}
	if err := WriteAtomic(filepath.Join(dir, BuildInfoFile), data); err != nil {
		return BuildInfo{}, fmt.Errorf("write build info: %w", err)
	}
	return info, nil
}
