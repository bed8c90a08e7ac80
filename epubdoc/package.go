package epubdoc

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"io"
	"net/url"
	"path"
	"strings"
)

// Package-structure errors.
var (
	ErrNoContainer      = errors.New("epub: missing META-INF/container.xml")
	ErrInvalidContainer = errors.New("epub: invalid container.xml")
	ErrNoRootfile       = errors.New("epub: no rootfile found in container.xml")
	ErrNoOPF            = errors.New("epub: missing package document (OPF)")
	ErrInvalidOPF       = errors.New("epub: invalid package document")
	ErrEmptySpine       = errors.New("epub: no content in spine")
)

// containerXML represents the structure of META-INF/container.xml.
type containerXML struct {
	Rootfiles []rootfileXML `xml:"rootfiles>rootfile"`
}

type rootfileXML struct {
	FullPath  string `xml:"full-path,attr"`
	MediaType string `xml:"media-type,attr"`
}

// opfXML represents the OPF package document.
type opfXML struct {
	Version  string    `xml:"version,attr"`
	Title    []string  `xml:"metadata>title"`
	Language []string  `xml:"metadata>language"`
	Items    []itemXML `xml:"manifest>item"`
	ItemRefs []struct {
		IDRef  string `xml:"idref,attr"`
		Linear string `xml:"linear,attr"`
	} `xml:"spine>itemref"`
}

type itemXML struct {
	ID        string `xml:"id,attr"`
	Href      string `xml:"href,attr"`
	MediaType string `xml:"media-type,attr"`
}

// Package is the parsed OPF document: book metadata and the content
// documents in reading order.
type Package struct {
	Version  string
	Title    string
	Language string
	Spine    []SpineItem
}

// SpineItem is one content document of the reading order.
type SpineItem struct {
	ID        string
	Href      string // Path inside the archive
	MediaType string
	Linear    bool // false for auxiliary content such as footnotes
}

// readZipFile returns the content of the named archive entry. The bool is
// false when the entry is absent.
func readZipFile(zr *zip.Reader, name string) ([]byte, bool, error) {
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, true, err
		}
		defer rc.Close()
		data, err := io.ReadAll(rc)
		return data, true, err
	}
	return nil, false, nil
}

// parseContainer returns the path of the OPF package document.
func parseContainer(zr *zip.Reader) (string, error) {
	data, ok, err := readZipFile(zr, "META-INF/container.xml")
	if err != nil {
		return "", err
	}
	if !ok {
		return "", ErrNoContainer
	}

	var c containerXML
	if err := xml.Unmarshal(data, &c); err != nil {
		return "", ErrInvalidContainer
	}
	for _, rf := range c.Rootfiles {
		if rf.FullPath != "" && (rf.MediaType == "application/oebps-package+xml" || rf.MediaType == "") {
			return rf.FullPath, nil
		}
	}
	if len(c.Rootfiles) > 0 && c.Rootfiles[0].FullPath != "" {
		return c.Rootfiles[0].FullPath, nil
	}
	return "", ErrNoRootfile
}

// parseOPF parses the package document. Spine hrefs are resolved against
// the OPF's directory; entries missing from the manifest are skipped.
func parseOPF(zr *zip.Reader, opfPath string) (*Package, error) {
	data, ok, err := readZipFile(zr, opfPath)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNoOPF
	}

	var opf opfXML
	if err := xml.Unmarshal(data, &opf); err != nil {
		return nil, ErrInvalidOPF
	}

	pkg := &Package{Version: opf.Version}
	if len(opf.Title) > 0 {
		pkg.Title = strings.TrimSpace(opf.Title[0])
	}
	if len(opf.Language) > 0 {
		pkg.Language = strings.TrimSpace(opf.Language[0])
	}

	manifest := make(map[string]itemXML, len(opf.Items))
	for _, item := range opf.Items {
		manifest[item.ID] = item
	}
	baseDir := path.Dir(opfPath)
	for _, ref := range opf.ItemRefs {
		item, ok := manifest[ref.IDRef]
		if !ok {
			continue
		}
		pkg.Spine = append(pkg.Spine, SpineItem{
			ID:        item.ID,
			Href:      resolveHref(baseDir, item.Href),
			MediaType: item.MediaType,
			Linear:    ref.Linear != "no",
		})
	}

	if len(pkg.Spine) == 0 {
		return nil, ErrEmptySpine
	}
	return pkg, nil
}

// resolveHref resolves a manifest href against the OPF directory.
func resolveHref(baseDir, href string) string {
	if decoded, err := url.PathUnescape(href); err == nil {
		href = decoded
	}
	if baseDir == "." || baseDir == "" {
		return path.Clean(href)
	}
	return path.Join(baseDir, href)
}
