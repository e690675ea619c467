package davclient

import (
	"encoding/xml"
	"errors"
	"io"
	"net/url"
	"strconv"
	"strings"
)

// xmlNode is a generic element tree. Servers disagree on namespace prefixes
// (d:, D:, the DAV: uri, or none), so lookups compare local names only.
type xmlNode struct {
	XMLName  xml.Name
	Content  string     `xml:",chardata"`
	Children []*xmlNode `xml:",any"`
}

func (n *xmlNode) is(local string) bool {
	return strings.EqualFold(n.XMLName.Local, local)
}

// find returns the first descendant named local, in document order.
func (n *xmlNode) find(local string) *xmlNode {
	for _, child := range n.Children {
		if child.is(local) {
			return child
		}
		if res := child.find(local); res != nil {
			return res
		}
	}
	return nil
}

func (n *xmlNode) text() string {
	return strings.TrimSpace(n.Content)
}

func hrefName(href string) string {
	if idx := strings.LastIndex(href, "/"); idx >= 0 {
		href = href[idx+1:]
	}
	if name, err := url.PathUnescape(href); err == nil {
		return name
	}
	return href
}

func parseResponse(n *xmlNode) (*BackupFile, bool) {
	href := n.find("href")
	if href == nil {
		return nil, false
	}
	name := hrefName(href.text())
	if !IsBackupFileName(name) {
		return nil, false
	}
	file := &BackupFile{Name: name}
	propstat := n.find("propstat")
	if propstat == nil {
		return file, true
	}
	if node := propstat.find("getcontentlength"); node != nil {
		if size, err := strconv.ParseInt(node.text(), 10, 64); err == nil {
			file.Size = size
		}
	}
	if node := propstat.find("getlastmodified"); node != nil {
		file.LastModified = node.text()
	}
	return file, true
}

// parseMultistatus streams a multistatus document and collects backup entries.
// On a decode error the entries read so far are returned together with the error.
func parseMultistatus(r io.Reader) ([]*BackupFile, error) {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = func(_ string, input io.Reader) (io.Reader, error) {
		return input, nil
	}
	files := make([]*BackupFile, 0, 16)
	for {
		tk, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return files, err
		}
		se, ok := tk.(xml.StartElement)
		if !ok || !strings.EqualFold(se.Name.Local, "response") {
			continue
		}
		node := &xmlNode{}
		if err := dec.DecodeElement(node, &se); err != nil {
			return files, err
		}
		if file, ok := parseResponse(node); ok {
			files = append(files, file)
		}
	}
	return files, nil
}
