// Package pptxtest builds minimal in-memory .pptx packages for tests.
package pptxtest

import (
	"archive/zip"
	"bytes"
	"fmt"
	"html"
	"image"
	"image/color"
	"image/png"
	"sort"
	"strings"
)

const (
	nsP = "http://schemas.openxmlformats.org/presentationml/2006/main"
	nsA = "http://schemas.openxmlformats.org/drawingml/2006/main"
	nsR = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	nsM = "http://schemas.openxmlformats.org/markup-compatibility/2006"

	relBase = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
)

// Slide describes one slide. Tree is the inner markup of p:spTree,
// Background the inner markup of p:bg, Media maps relationship ids to image
// bytes stored under ppt/media.
type Slide struct {
	Tree       string
	Background string
	Media      map[string][]byte
	External   map[string]string // relationship id -> external URL
}

// Text returns a p:sp with one a:p per paragraph.
func Text(name string, paragraphs ...string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, `<p:sp><p:nvSpPr><p:cNvPr id="2" name="%s"/><p:cNvSpPr/><p:nvPr/></p:nvSpPr><p:spPr/><p:txBody><a:bodyPr/><a:lstStyle/>`, html.EscapeString(name))
	for _, para := range paragraphs {
		sb.WriteString("<a:p>")
		for i, line := range strings.Split(para, "\n") {
			if i > 0 {
				sb.WriteString("<a:br/>")
			}
			fmt.Fprintf(&sb, `<a:r><a:rPr lang="en-US"/><a:t>%s</a:t></a:r>`, html.EscapeString(line))
		}
		sb.WriteString(`<a:endParaRPr lang="en-US"/></a:p>`)
	}
	sb.WriteString("</p:txBody></p:sp>")
	return sb.String()
}

// Shape returns a p:sp without a text body.
func Shape(name string) string {
	return fmt.Sprintf(`<p:sp><p:nvSpPr><p:cNvPr id="3" name="%s"/><p:cNvSpPr/><p:nvPr/></p:nvSpPr><p:spPr/></p:sp>`, html.EscapeString(name))
}

// Pic returns a p:pic embedding the image with relationship id rID.
func Pic(name, rID string) string {
	return fmt.Sprintf(`<p:pic><p:nvPicPr><p:cNvPr id="4" name="%s"/><p:cNvPicPr/><p:nvPr/></p:nvPicPr>`+
		`<p:blipFill><a:blip r:embed="%s"/><a:stretch><a:fillRect/></a:stretch></p:blipFill><p:spPr/></p:pic>`,
		html.EscapeString(name), rID)
}

// Group returns a p:grpSp around children.
func Group(name string, children ...string) string {
	return fmt.Sprintf(`<p:grpSp><p:nvGrpSpPr><p:cNvPr id="5" name="%s"/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr><p:grpSpPr/>%s</p:grpSp>`,
		html.EscapeString(name), strings.Join(children, ""))
}

// Alternate wraps choice and fallback markup in mc:AlternateContent.
func Alternate(choice, fallback string) string {
	return fmt.Sprintf(`<mc:AlternateContent><mc:Choice Requires="p14">%s</mc:Choice><mc:Fallback>%s</mc:Fallback></mc:AlternateContent>`, choice, fallback)
}

// ImageBackground returns p:bg markup with an image fill.
func ImageBackground(rID string) string {
	return fmt.Sprintf(`<p:bgPr><a:blipFill><a:blip r:embed="%s"/><a:stretch><a:fillRect/></a:stretch></a:blipFill><a:effectLst/></p:bgPr>`, rID)
}

// SolidBackground returns p:bg markup with a solid fill.
func SolidBackground() string {
	return `<p:bgPr><a:solidFill><a:srgbClr val="FFFFFF"/></a:solidFill><a:effectLst/></p:bgPr>`
}

// Build assembles a package. Slides are stored in reverse part order so that
// readers relying on file order instead of sldIdLst are caught.
func Build(title string, slides ...Slide) []byte {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	write := func(name, content string) {
		w, err := zw.Create(name)
		if err != nil {
			panic(err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			panic(err)
		}
	}

	var ct strings.Builder
	ct.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
	ct.WriteString(`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">`)
	ct.WriteString(`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>`)
	ct.WriteString(`<Default Extension="xml" ContentType="application/xml"/>`)
	ct.WriteString(`<Default Extension="png" ContentType="image/png"/>`)
	ct.WriteString(`<Override PartName="/ppt/presentation.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.presentation.main+xml"/>`)
	for i := range slides {
		fmt.Fprintf(&ct, `<Override PartName="/ppt/slides/slide%d.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.slide+xml"/>`, i+1)
	}
	ct.WriteString(`<Override PartName="/docProps/core.xml" ContentType="application/vnd.openxmlformats-package.core-properties+xml"/>`)
	ct.WriteString(`</Types>`)
	write("[Content_Types].xml", ct.String())

	write("_rels/.rels", `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`+
		`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`+
		`<Relationship Id="rId1" Type="`+relBase+`/officeDocument" Target="ppt/presentation.xml"/>`+
		`<Relationship Id="rId2" Type="http://schemas.openxmlformats.org/package/2006/relationships/metadata/core-properties" Target="docProps/core.xml"/>`+
		`</Relationships>`)

	write("docProps/core.xml", `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`+
		`<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties" xmlns:dc="http://purl.org/dc/elements/1.1/">`+
		`<dc:title>`+html.EscapeString(title)+`</dc:title></cp:coreProperties>`)

	var pres, presRels strings.Builder
	pres.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
	fmt.Fprintf(&pres, `<p:presentation xmlns:p="%s" xmlns:a="%s" xmlns:r="%s"><p:sldIdLst>`, nsP, nsA, nsR)
	presRels.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
	presRels.WriteString(`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`)
	presRels.WriteString(`<Relationship Id="rId1" Type="` + relBase + `/slideMaster" Target="slideMasters/slideMaster1.xml"/>`)
	for i := range slides {
		fmt.Fprintf(&pres, `<p:sldId id="%d" r:id="rId%d"/>`, 256+i, i+10)
		fmt.Fprintf(&presRels, `<Relationship Id="rId%d" Type="%s/slide" Target="slides/slide%d.xml"/>`, i+10, relBase, i+1)
	}
	pres.WriteString(`</p:sldIdLst><p:sldSz cx="9144000" cy="6858000"/></p:presentation>`)
	presRels.WriteString(`</Relationships>`)
	write("ppt/presentation.xml", pres.String())
	write("ppt/_rels/presentation.xml.rels", presRels.String())

	for i := len(slides) - 1; i >= 0; i-- {
		s := slides[i]
		n := i + 1

		var sx strings.Builder
		sx.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
		fmt.Fprintf(&sx, `<p:sld xmlns:p="%s" xmlns:a="%s" xmlns:r="%s" xmlns:mc="%s"><p:cSld>`, nsP, nsA, nsR, nsM)
		if s.Background != "" {
			sx.WriteString("<p:bg>" + s.Background + "</p:bg>")
		}
		sx.WriteString(`<p:spTree><p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr><p:grpSpPr/>`)
		sx.WriteString(s.Tree)
		sx.WriteString(`</p:spTree></p:cSld><p:clrMapOvr><a:masterClrMapping/></p:clrMapOvr></p:sld>`)
		write(fmt.Sprintf("ppt/slides/slide%d.xml", n), sx.String())

		var rels strings.Builder
		rels.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
		rels.WriteString(`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`)
		rels.WriteString(`<Relationship Id="rIdLayout" Type="` + relBase + `/slideLayout" Target="../slideLayouts/slideLayout1.xml"/>`)
		for _, id := range sortedKeys(s.Media) {
			media := fmt.Sprintf("s%d_%s.png", n, id)
			fmt.Fprintf(&rels, `<Relationship Id="%s" Type="%s/image" Target="../media/%s"/>`, id, relBase, media)
			w, err := zw.Create("ppt/media/" + media)
			if err != nil {
				panic(err)
			}
			if _, err := w.Write(s.Media[id]); err != nil {
				panic(err)
			}
		}
		for _, id := range sortedKeys(s.External) {
			fmt.Fprintf(&rels, `<Relationship Id="%s" Type="%s/image" Target="%s" TargetMode="External"/>`, id, relBase, html.EscapeString(s.External[id]))
		}
		rels.WriteString(`</Relationships>`)
		write(fmt.Sprintf("ppt/slides/_rels/slide%d.xml.rels", n), rels.String())
	}

	if err := zw.Close(); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// PNG returns a 2x2 PNG filled with c.
func PNG(c color.Color) []byte {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	for x := 0; x < 2; x++ {
		for y := 0; y < 2; y++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic(err)
	}
	return buf.Bytes()
}
