package pptx

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"golang.org/x/net/html/charset"

	"github.com/hanpama/slidequiz/internal/document"
)

const (
	relTypeOfficeDocument = "/officeDocument"
	relTypeCoreProperties = "/core-properties"
	relTypeSlide          = "/slide"
)

// Reader provides access to the slides of a PresentationML package
type Reader struct {
	zipReader *zip.Reader
	parts     map[string]*zip.File // keyed by lower-cased part name
	mainPart  string
	slides    []string
	meta      document.Metadata
}

// Relationship is one entry of a part's .rels file
type Relationship struct {
	ID         string `xml:"Id,attr"`
	Type       string `xml:"Type,attr"`
	Target     string `xml:"Target,attr"`
	TargetMode string `xml:"TargetMode,attr"`
}

type relationshipsElement struct {
	XMLName xml.Name       `xml:"Relationships"`
	Items   []Relationship `xml:"Relationship"`
}

// Open opens a .pptx package and resolves its slide order
func Open(r io.ReaderAt, size int64) (*Reader, error) {
	zipReader, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("failed to open PPTX as ZIP: %w", err)
	}

	reader := &Reader{
		zipReader: zipReader,
		parts:     make(map[string]*zip.File, len(zipReader.File)),
	}
	for _, f := range zipReader.File {
		reader.parts[strings.ToLower(f.Name)] = f
	}

	if err := reader.validateContentTypes(); err != nil {
		return nil, err
	}

	if err := reader.locateMainPart(); err != nil {
		return nil, err
	}

	if err := reader.loadSlideOrder(); err != nil {
		return nil, err
	}

	reader.loadCoreProperties()

	return reader, nil
}

func newDecoder(r io.Reader) *xml.Decoder {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charset.NewReaderLabel
	return dec
}

func (r *Reader) open(name string) (io.ReadCloser, error) {
	f, ok := r.parts[strings.ToLower(strings.TrimPrefix(name, "/"))]
	if !ok {
		return nil, fmt.Errorf("part %s not found", name)
	}
	return f.Open()
}

func (r *Reader) readPart(name string) ([]byte, error) {
	rc, err := r.open(name)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func (r *Reader) decodePart(name string, v any) error {
	rc, err := r.open(name)
	if err != nil {
		return err
	}
	defer rc.Close()
	return newDecoder(rc).Decode(v)
}

func (r *Reader) validateContentTypes() error {
	var types struct {
		XMLName   xml.Name `xml:"Types"`
		Overrides []struct {
			PartName    string `xml:"PartName,attr"`
			ContentType string `xml:"ContentType,attr"`
		} `xml:"Override"`
	}
	if err := r.decodePart("[Content_Types].xml", &types); err != nil {
		return fmt.Errorf("failed to read [Content_Types].xml: %w", err)
	}

	for _, o := range types.Overrides {
		if isPresentationContentType(o.ContentType) {
			return nil
		}
	}
	return fmt.Errorf("invalid package: no presentation part declared in [Content_Types].xml")
}

func isPresentationContentType(ct string) bool {
	ct = strings.ToLower(ct)
	if !strings.HasSuffix(ct, ".main+xml") {
		return false
	}
	return strings.Contains(ct, "presentationml.") || strings.Contains(ct, "ms-powerpoint.")
}

func (r *Reader) locateMainPart() error {
	rels, err := r.relationships("")
	if err != nil {
		return fmt.Errorf("failed to read package relationships: %w", err)
	}
	for _, rel := range rels {
		if strings.HasSuffix(rel.Type, relTypeOfficeDocument) {
			r.mainPart = resolveTarget("", rel)
			return nil
		}
	}
	return fmt.Errorf("package has no officeDocument relationship")
}

func (r *Reader) loadSlideOrder() error {
	rc, err := r.open(r.mainPart)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", r.mainPart, err)
	}
	defer rc.Close()

	var ids []string
	dec := newDecoder(rc)
	for {
		token, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to parse %s: %w", r.mainPart, err)
		}
		elem, ok := token.(xml.StartElement)
		if !ok || elem.Name.Local != "sldId" {
			continue
		}
		for _, a := range elem.Attr {
			// r:id, not the numeric slide id
			if a.Name.Local == "id" && a.Name.Space != "" {
				ids = append(ids, a.Value)
			}
		}
	}

	rels, err := r.relationships(r.mainPart)
	if err != nil {
		return fmt.Errorf("failed to read %s relationships: %w", r.mainPart, err)
	}
	byID := make(map[string]Relationship, len(rels))
	for _, rel := range rels {
		byID[rel.ID] = rel
	}

	r.slides = make([]string, 0, len(ids))
	for _, id := range ids {
		rel, ok := byID[id]
		if !ok || !strings.HasSuffix(rel.Type, relTypeSlide) {
			return fmt.Errorf("slide relationship %s not found", id)
		}
		r.slides = append(r.slides, resolveTarget(r.mainPart, rel))
	}
	return nil
}

func (r *Reader) loadCoreProperties() {
	rels, err := r.relationships("")
	if err != nil {
		return
	}
	for _, rel := range rels {
		if !strings.HasSuffix(rel.Type, relTypeCoreProperties) {
			continue
		}
		var core struct {
			Title string `xml:"title"`
		}
		if err := r.decodePart(resolveTarget("", rel), &core); err == nil {
			r.meta.Title = strings.TrimSpace(core.Title)
		}
		return
	}
}

// relationships reads the .rels file belonging to part ("" for the package).
// A part without a .rels file has no relationships.
func (r *Reader) relationships(part string) ([]Relationship, error) {
	relsPath := path.Join(path.Dir(part), "_rels", path.Base(part)+".rels")
	if part == "" {
		relsPath = "_rels/.rels"
	}
	if _, ok := r.parts[strings.ToLower(relsPath)]; !ok {
		return nil, nil
	}
	var rels relationshipsElement
	if err := r.decodePart(relsPath, &rels); err != nil {
		return nil, err
	}
	return rels.Items, nil
}

// resolveTarget turns a relationship target into a package part name.
// External targets resolve to "".
func resolveTarget(source string, rel Relationship) string {
	if strings.EqualFold(rel.TargetMode, "External") {
		return ""
	}
	target := rel.Target
	if unescaped, err := url.PathUnescape(target); err == nil {
		target = unescaped
	}
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(path.Clean(target), "/")
	}
	return strings.TrimPrefix(path.Join(path.Dir(source), target), "/")
}

// Metadata returns document properties from docProps/core.xml.
func (r *Reader) Metadata() document.Metadata {
	return r.meta
}

// SlideCount returns the number of slides listed in the presentation
func (r *Reader) SlideCount() int {
	return len(r.slides)
}

// NewSlideScanner creates a SlideScanner over the slides in presentation order
func (r *Reader) NewSlideScanner() document.SlideScanner {
	return &SlideScanner{reader: r}
}
