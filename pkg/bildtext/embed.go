package bildtext

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/barasher/go-exiftool"
	"github.com/otiai10/copy"
	"k8s.io/klog/v2"
)

// backupSuffix is appended to the original file when backups are enabled.
var backupSuffix = ".orig"

var xmpTemplate = `<?xpacket begin="" id="W5M0MpCehiHzreSzNTczkc9d"?>
<x:xmpmeta xmlns:x="adobe:ns:meta/" x:xmptk="bildtext">
 <rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#">
  <rdf:Description rdf:about="" xmlns:dc="http://purl.org/dc/elements/1.1/">
   <dc:description>
    <rdf:Alt>
     <rdf:li xml:lang="x-default">%s</rdf:li>
    </rdf:Alt>
   </dc:description>
  </rdf:Description>
 </rdf:RDF>
</x:xmpmeta>
<?xpacket end="w"?>
`

// Embedder writes captions into image metadata in place.
type Embedder struct {
	et     *exiftool.Exiftool
	Backup bool
}

// NewEmbedder starts an exiftool session for metadata writes.
func NewEmbedder(backup bool) (*Embedder, error) {
	et, err := exiftool.NewExiftool()
	if err != nil {
		return nil, fmt.Errorf("exiftool: %w", err)
	}

	return &Embedder{et: et, Backup: backup}, nil
}

// Close shuts down the exiftool session.
func (e *Embedder) Close() error {
	return e.et.Close()
}

// Embed writes the caption into the image's own metadata block. The write
// covers the EXIF, XMP and IPTC description fields so common readers agree
// on it. Pixel data is untouched.
func (e *Embedder) Embed(path string, caption string) error {
	if e.Backup {
		if err := copy.Copy(path, path+backupSuffix); err != nil {
			return fmt.Errorf("backup: %w", err)
		}
	}

	fms := e.et.ExtractMetadata(path)
	if fms[0].Err != nil {
		return fmt.Errorf("extract %q: %w", path, fms[0].Err)
	}

	fms[0].SetString("ImageDescription", caption)
	fms[0].SetString("Description", caption)
	fms[0].SetString("Caption-Abstract", caption)

	e.et.WriteMetadata(fms)
	if fms[0].Err != nil {
		return fmt.Errorf("write %q: %w", path, fms[0].Err)
	}

	klog.V(1).Infof("embedded caption into %s", path)
	return nil
}

// SidecarPath returns the XMP sidecar location for an image.
func SidecarPath(imagePath string) string {
	ext := filepath.Ext(imagePath)
	return strings.TrimSuffix(imagePath, ext) + ".xmp"
}

// WriteSidecar writes the caption as an XMP document next to the image.
func WriteSidecar(imagePath string, caption string) error {
	esc := &strings.Builder{}
	if err := xml.EscapeText(esc, []byte(caption)); err != nil {
		return fmt.Errorf("escape: %w", err)
	}

	out := SidecarPath(imagePath)
	doc := fmt.Sprintf(xmpTemplate, esc.String())

	if err := os.WriteFile(out, []byte(doc), 0o644); err != nil {
		return fmt.Errorf("write %q: %w", out, err)
	}

	klog.V(1).Infof("wrote sidecar %s", out)
	return nil
}
