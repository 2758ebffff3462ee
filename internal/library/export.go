package library

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

const (
	AppName       = "lnTracker"
	FormatVersion = 1
)

// ErrUnrecognizedImport is returned when a payload is neither an export
// file nor a raw library map.
var ErrUnrecognizedImport = errors.New("import file format not recognized")

// ExportFile is the on-disk export format.
type ExportFile struct {
	App        string  `json:"app"`
	Version    int     `json:"version"`
	ExportedAt string  `json:"exportedAt"`
	Data       Library `json:"data"`
}

// NewExport wraps lib in the export envelope.
func NewExport(lib Library, now time.Time) ExportFile {
	if lib == nil {
		lib = Library{}
	}

	return ExportFile{
		App:        AppName,
		Version:    FormatVersion,
		ExportedAt: FormatTime(now),
		Data:       lib,
	}
}

// ExportFilename is the default file name for an export taken at now.
func ExportFilename(now time.Time) string {
	return fmt.Sprintf("lnTracker-export-%s.json", now.UTC().Format("2006-01-02"))
}

// DecodeImport accepts either an export file or a raw library map.
func DecodeImport(payload []byte) (Library, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(payload, &probe); err != nil || probe == nil {
		return nil, ErrUnrecognizedImport
	}

	rawApp, hasApp := probe["app"]
	rawData, hasData := probe["data"]

	body := payload
	if hasApp && hasData {
		var env struct {
			App     string `json:"app"`
			Version int    `json:"version"`
		}
		if err := json.Unmarshal(payload, &env); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnrecognizedImport, err)
		}
		if env.App != AppName {
			return nil, fmt.Errorf("%w: app %s", ErrUnrecognizedImport, string(rawApp))
		}
		if env.Version > FormatVersion {
			return nil, fmt.Errorf("%w: unsupported version %d", ErrUnrecognizedImport, env.Version)
		}
		body = rawData
	}

	lib, _, err := Decode(body)
	if err != nil {
		return nil, ErrUnrecognizedImport
	}

	return lib, nil
}
