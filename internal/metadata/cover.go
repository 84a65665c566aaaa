// Package metadata reads the cloud-cover percentage of a product from its
// XML metadata file. The file is fetched into a scratch location that is
// always removed, whatever the outcome.
package metadata

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"path"
	"strconv"
	"strings"

	"github.com/beevik/etree"

	"github.com/tilefetch/tilefetch/internal/cloud"
	"github.com/tilefetch/tilefetch/internal/logger"
)

// DefaultFileName is the metadata file found at the top of every L2A product.
const DefaultFileName = "MTD_MSIL2A.xml"

// DefaultFields lists the cloud-cover fields in order of preference.
var DefaultFields = []string{
	"Cloud_Coverage_Assessment",
	"CLOUDY_PIXEL_OVER_LAND_PERCENTAGE",
	"CLOUDY_PIXEL_PERCENTAGE",
}

// Outcome says how a cloud-cover lookup ended.
type Outcome int

const (
	Found Outcome = iota
	FetchFailed
	ParseFailed
	FieldNotFound
	InvalidValue
)

func (o Outcome) String() string {
	switch o {
	case Found:
		return "found"
	case FetchFailed:
		return "fetch_failed"
	case ParseFailed:
		return "parse_failed"
	case FieldNotFound:
		return "field_not_found"
	case InvalidValue:
		return "invalid_value"
	default:
		return "unknown"
	}
}

// Reading is the result of a cloud-cover lookup. Percent is meaningful
// only when Known reports true.
type Reading struct {
	Percent float64
	Field   string
	Outcome Outcome
	Err     error
}

// Known reports whether a percentage was found.
func (r Reading) Known() bool {
	return r.Outcome == Found
}

// ExtractCloudCover parses an XML document and returns the value of the
// first field in fields present anywhere in it.
func ExtractCloudCover(r io.Reader, fields []string) Reading {
	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(r); err != nil {
		return Reading{Outcome: ParseFailed, Err: err}
	}
	if doc.Root() == nil {
		return Reading{Outcome: ParseFailed, Err: fmt.Errorf("document has no root element")}
	}

	for _, field := range fields {
		el := doc.FindElement(".//" + field)
		if el == nil {
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(el.Text()), 64)
		if err != nil {
			return Reading{Field: field, Outcome: InvalidValue, Err: err}
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Reading{Field: field, Outcome: InvalidValue, Err: fmt.Errorf("%s is not a finite number", field)}
		}
		return Reading{Percent: v, Field: field, Outcome: Found}
	}

	return Reading{Outcome: FieldNotFound, Err: fmt.Errorf("none of %v present", fields)}
}

// Fetcher downloads and reads product metadata through a Provider.
type Fetcher struct {
	provider cloud.Provider
	fileName string
	fields   []string
	log      *logger.Logger

	// ScratchDir holds the transient metadata copies. Empty means os.TempDir.
	ScratchDir string
}

// NewFetcher creates a Fetcher. Empty fileName and fields fall back to the
// L2A defaults.
func NewFetcher(provider cloud.Provider, fileName string, fields []string, log *logger.Logger) *Fetcher {
	if fileName == "" {
		fileName = DefaultFileName
	}
	if len(fields) == 0 {
		fields = DefaultFields
	}
	return &Fetcher{provider: provider, fileName: fileName, fields: fields, log: log}
}

// CloudCover fetches the metadata file of folderURI and extracts its
// cloud-cover percentage.
func (f *Fetcher) CloudCover(ctx context.Context, folderURI string) Reading {
	uri := strings.TrimSuffix(folderURI, "/") + "/" + f.fileName
	f.log.Infof("checking cloud cover in %s", uri)

	// fileName may be a sub-path of the product folder
	tmp, err := os.CreateTemp(f.ScratchDir, "tilefetch-*-"+path.Base(f.fileName))
	if err != nil {
		f.log.ErrorWith("cannot create scratch file", err, map[string]interface{}{"uri": uri})
		return Reading{Outcome: FetchFailed, Err: err}
	}
	scratch := tmp.Name()
	tmp.Close()
	defer os.Remove(scratch)

	if err := f.provider.Fetch(ctx, uri, scratch); err != nil {
		f.log.ErrorWith("failed to fetch metadata file", err, map[string]interface{}{"uri": uri})
		return Reading{Outcome: FetchFailed, Err: err}
	}

	file, err := os.Open(scratch)
	if err != nil {
		f.log.ErrorWith("failed to open fetched metadata", err, map[string]interface{}{"path": scratch})
		return Reading{Outcome: FetchFailed, Err: err}
	}
	defer file.Close()

	reading := ExtractCloudCover(file, f.fields)
	switch reading.Outcome {
	case Found:
		f.log.Infof("cloud cover %.2f%% from field %s", reading.Percent, reading.Field)
	case ParseFailed:
		f.log.ErrorWith("failed to parse metadata XML", reading.Err, map[string]interface{}{"uri": uri})
	case InvalidValue:
		f.log.ErrorWith("cloud cover field is not a number", reading.Err, map[string]interface{}{"uri": uri, "field": reading.Field})
	case FieldNotFound:
		f.log.WarnWith("no cloud cover field found", nil, map[string]interface{}{"uri": uri, "fields": f.fields})
	}
	return reading
}
