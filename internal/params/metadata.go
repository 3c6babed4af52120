package params

import (
	"strings"

	"github.com/brandon-tan-keysight/opentap/internal/model"
	"github.com/brandon-tan-keysight/opentap/internal/output"
)

// ParseMetadata parses repeatable "key=value" metadata strings into
// structured records.
//
// Malformed entries (missing "=") are dropped with a warning; they are
// never fatal, because metadata only annotates results and a bad entry
// should not cost the user a run. Each record is created with an empty
// namespace and the metadata flag set: namespacing belongs to plugins
// contributing their own records, not to this layer.
func ParseMetadata(entries []string) []model.MetadataRecord {
	var records []model.MetadataRecord

	for _, entry := range entries {
		key, value, found := strings.Cut(entry, "=")
		if !found {
			output.Logger.Warn("ignoring malformed metadata entry, expected key=value", "entry", entry)
			continue
		}
		records = append(records, model.MetadataRecord{
			Key:      key,
			Value:    value,
			Metadata: true,
		})
	}

	return records
}
