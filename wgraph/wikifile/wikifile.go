// Package wikifile describes the immutable input descriptor for a single
// Wikipedia SQL dump table file.
package wikifile

import (
	"fmt"
	"path/filepath"
	"regexp"
)

// FileType identifies which of the three consumed dump tables a WikiFile
// points at.
type FileType string

const (
	FileTypePage       FileType = "page"
	FileTypeLinkTarget FileType = "linktarget"
	FileTypePageLinks  FileType = "pagelinks"
)

// WikiFile is an immutable descriptor of one compressed dump file, per
// spec §3. Construct it with New or NewFromPath; do not mutate a WikiFile
// after construction.
type WikiFile struct {
	langCode  string
	date      string
	fileType  FileType
	dataPath  string
	indexPath string
}

// New constructs a WikiFile. indexPath may be empty, meaning no
// decompression index is configured.
func New(langCode, date string, fileType FileType, dataPath, indexPath string) WikiFile {
	return WikiFile{
		langCode:  langCode,
		date:      date,
		fileType:  fileType,
		dataPath:  dataPath,
		indexPath: indexPath,
	}
}

var dumpFilenamePattern = regexp.MustCompile(`^([a-z0-9]+)wiki-(\d{8})-(page|linktarget|pagelinks)\.sql\.gz$`)

// NewFromPath derives lang_code, date, and file_type from a dump filename
// following the `{lang}wiki-{YYYYMMDD}-{type}.sql.gz` convention from
// spec §6. indexPath defaults to dataPath+".gzi" when indexPathHint is
// empty.
func NewFromPath(dataPath string, indexPathHint string) (WikiFile, error) {
	base := filepath.Base(dataPath)
	m := dumpFilenamePattern.FindStringSubmatch(base)
	if m == nil {
		return WikiFile{}, fmt.Errorf("wikifile: %q does not match {lang}wiki-{YYYYMMDD}-{type}.sql.gz", base)
	}

	indexPath := indexPathHint
	if indexPath == "" {
		indexPath = dataPath + ".gzi"
	}

	return WikiFile{
		langCode:  m[1],
		date:      m[2],
		fileType:  FileType(m[3]),
		dataPath:  dataPath,
		indexPath: indexPath,
	}, nil
}

func (f WikiFile) LangCode() string   { return f.langCode }
func (f WikiFile) Date() string       { return f.date }
func (f WikiFile) FileType() FileType { return f.fileType }
func (f WikiFile) DataPath() string   { return f.dataPath }
func (f WikiFile) IndexPath() string  { return f.indexPath }

// HasIndex reports whether an index path is configured for this file.
func (f WikiFile) HasIndex() bool { return f.indexPath != "" }
