// Package tile models Sentinel-2 grid cells and the product folders
// published under them.
package tile

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"regexp"
	"strings"
)

// ErrNoDate is returned by ParseFolder when the folder name carries no
// acquisition date.
var ErrNoDate = errors.New("folder name has no acquisition date")

// DefaultSuffix marks a complete product package in a listing.
const DefaultSuffix = ".SAFE/"

var datePattern = regexp.MustCompile(`_(\d{8})T`)

// Code identifies a tile grid cell: UTM zone, latitude band and 100km square.
type Code struct {
	Zone   string
	Band   string
	Square string
}

// ParseCode builds a Code from a configuration triple.
func ParseCode(parts []string) (Code, error) {
	if len(parts) != 3 {
		return Code{}, fmt.Errorf("region code must have 3 parts, got %d: %v", len(parts), parts)
	}
	c := Code{Zone: strings.TrimSpace(parts[0]), Band: strings.TrimSpace(parts[1]), Square: strings.TrimSpace(parts[2])}
	if err := c.Validate(); err != nil {
		return Code{}, err
	}
	return c, nil
}

// ParseCodes converts every configured triple, failing on the first bad one.
func ParseCodes(raw [][]string) ([]Code, error) {
	codes := make([]Code, 0, len(raw))
	for _, parts := range raw {
		c, err := ParseCode(parts)
		if err != nil {
			return nil, err
		}
		codes = append(codes, c)
	}
	return codes, nil
}

// Validate rejects empty parts and parts that would escape the layout.
func (c Code) Validate() error {
	for _, p := range []string{c.Zone, c.Band, c.Square} {
		if p == "" {
			return fmt.Errorf("region code %s has an empty part", c)
		}
		if strings.ContainsAny(p, `/\`) || p == "." || p == ".." {
			return fmt.Errorf("region code %s has an invalid part %q", c, p)
		}
	}
	return nil
}

// String renders the code as zone/band/square.
func (c Code) String() string {
	return c.Zone + "/" + c.Band + "/" + c.Square
}

// RemotePrefix returns <bucketRoot>/<zone>/<band>/<square>/.
func (c Code) RemotePrefix(bucketRoot string) string {
	return strings.TrimSuffix(bucketRoot, "/") + "/" + c.String() + "/"
}

// LocalDir returns <outputRoot>/<zone>/<band>/<square>.
func (c Code) LocalDir(outputRoot string) string {
	return filepath.Join(outputRoot, c.Zone, c.Band, c.Square)
}

// Folder is a remote product folder found under a tile prefix.
type Folder struct {
	URI  string // as listed, including the trailing slash
	Name string // base name without the trailing slash
	Date string // acquisition date, YYYYMMDD
}

// ParseFolder derives the folder name and acquisition date from a listed URI.
func ParseFolder(uri string) (Folder, error) {
	name := FolderName(uri)
	m := datePattern.FindStringSubmatch(name)
	if m == nil {
		return Folder{URI: uri, Name: name}, ErrNoDate
	}
	return Folder{URI: uri, Name: name, Date: m[1]}, nil
}

// FolderName returns the last path element of a folder URI.
func FolderName(uri string) string {
	return path.Base(strings.TrimRight(strings.TrimSpace(uri), "/"))
}

// LocalPath returns where the folder lands under a tile's local directory.
func (f Folder) LocalPath(localDir string) string {
	return filepath.Join(localDir, f.Name)
}
