package meca

import (
	"encoding/xml"
	"io"
	"net/url"
	"path"
	"strings"

	"emperror.dev/errors"
)

const (
	ManifestName = "manifest.xml"
	TransferName = "transfer.xml"

	ItemTypeArticle = "article-metadata"
)

type Instance struct {
	MediaType string `xml:"media-type,attr"`
	Href      string `xml:"http://www.w3.org/1999/xlink href,attr"`
}

// Path returns the archive path the instance points to, or "" for external
// references.
func (i *Instance) Path() string {
	href := strings.TrimSpace(i.Href)
	if href == "" {
		return ""
	}
	if u, err := url.Parse(href); err == nil {
		if u.Scheme != "" || u.Host != "" {
			return ""
		}
		href = u.Path
	}
	href = path.Clean(strings.TrimPrefix(href, "/"))
	if href == "." || strings.HasPrefix(href, "../") || href == ".." {
		return ""
	}
	return href
}

func (i *Instance) IsXML() bool {
	mt := strings.ToLower(strings.TrimSpace(i.MediaType))
	return mt == "application/xml" || mt == "text/xml" || strings.HasSuffix(mt, "+xml") ||
		(mt == "" && strings.HasSuffix(strings.ToLower(i.Path()), ".xml"))
}

type Item struct {
	ID          string      `xml:"id,attr"`
	Type        string      `xml:"item-type,attr"`
	Version     string      `xml:"item-version,attr"`
	Description string      `xml:"item-description"`
	FileOrder   string      `xml:"file-order"`
	Instances   []*Instance `xml:"instance"`
}

type Manifest struct {
	XMLName xml.Name `xml:"manifest"`
	Version string   `xml:"manifest-version,attr"`
	Items   []*Item  `xml:"item"`
}

func ParseManifest(r io.Reader) (*Manifest, error) {
	m := &Manifest{}
	if err := xml.NewDecoder(r).Decode(m); err != nil {
		return nil, errors.Wrap(err, "cannot decode manifest")
	}
	return m, nil
}

// Article returns the first xml instance of an article-metadata item.
func (m *Manifest) Article() *Instance {
	for _, item := range m.Items {
		if item.Type != ItemTypeArticle {
			continue
		}
		for _, inst := range item.Instances {
			if inst.IsXML() && inst.Path() != "" {
				return inst
			}
		}
	}
	return nil
}
