package epubdoc

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"strings"
)

// ErrDRMProtected is returned for books whose content is encrypted.
var ErrDRMProtected = errors.New("epub: DRM-protected content cannot be processed")

// encryptionXML represents the structure of META-INF/encryption.xml.
type encryptionXML struct {
	EncryptedData []struct {
		Method struct {
			Algorithm string `xml:"Algorithm,attr"`
		} `xml:"EncryptionMethod"`
		Reference struct {
			URI string `xml:"URI,attr"`
		} `xml:"CipherData>CipherReference"`
	} `xml:"EncryptedData"`
}

// checkForDRM rejects books with an Adobe rights file or encrypted content
// documents. Obfuscated fonts are allowed.
func checkForDRM(zr *zip.Reader) error {
	if _, ok, _ := readZipFile(zr, "META-INF/rights.xml"); ok {
		return ErrDRMProtected
	}

	data, ok, err := readZipFile(zr, "META-INF/encryption.xml")
	if !ok {
		return nil
	}
	if err != nil {
		return ErrDRMProtected
	}
	var enc encryptionXML
	if err := xml.Unmarshal(data, &enc); err != nil {
		return ErrDRMProtected // unreadable, assume the worst
	}
	for _, ed := range enc.EncryptedData {
		if isFontObfuscation(ed.Method.Algorithm) {
			continue
		}
		if isContentFile(ed.Reference.URI) {
			return ErrDRMProtected
		}
	}
	return nil
}

// isFontObfuscation reports whether algorithm is the Adobe or IDPF font
// obfuscation scheme.
func isFontObfuscation(algorithm string) bool {
	return (strings.Contains(algorithm, "adobe.com") || strings.Contains(algorithm, "idpf.org")) &&
		strings.Contains(algorithm, "obfuscation")
}

// isContentFile reports whether uri names a markup or style document.
func isContentFile(uri string) bool {
	uri = strings.ToLower(uri)
	for _, ext := range []string{".xhtml", ".html", ".htm", ".xml", ".css"} {
		if strings.HasSuffix(uri, ext) {
			return true
		}
	}
	return false
}
