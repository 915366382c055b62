package pptx

import (
	"archive/zip"
	"bytes"
	"image/color"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hanpama/slidequiz/internal/document"
	"github.com/hanpama/slidequiz/internal/pptx/pptxtest"
)

func open(t *testing.T, data []byte) *Reader {
	t.Helper()
	r, err := Open(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	return r
}

func scanAll(t *testing.T, r *Reader) []*document.Slide {
	t.Helper()
	var slides []*document.Slide
	s := r.NewSlideScanner()
	for {
		slide, err := s.Next()
		if err == io.EOF {
			return slides
		}
		require.NoError(t, err)
		slides = append(slides, slide)
	}
}

func TestSlideOrderFollowsPresentation(t *testing.T) {
	data := pptxtest.Build("Trees",
		pptxtest.Slide{Tree: pptxtest.Text("t", "first")},
		pptxtest.Slide{Tree: pptxtest.Text("t", "second")},
		pptxtest.Slide{Tree: pptxtest.Text("t", "third")},
	)
	r := open(t, data)
	assert.Equal(t, 3, r.SlideCount())
	assert.Equal(t, "Trees", r.Metadata().Title)

	slides := scanAll(t, r)
	require.Len(t, slides, 3)
	for i, want := range []string{"first", "second", "third"} {
		assert.Equal(t, i+1, slides[i].Number)
		require.Len(t, slides[i].Shapes, 1)
		assert.Equal(t, want, slides[i].Shapes[0].(document.TextSource).ShapeText())
	}
}

func TestNestedGroup(t *testing.T) {
	img := pptxtest.PNG(color.White)
	data := pptxtest.Build("",
		pptxtest.Slide{
			Tree: pptxtest.Text("title", "") +
				pptxtest.Group("outer",
					pptxtest.Group("inner", pptxtest.Pic("photo", "rIdImg")),
					pptxtest.Text("caption", "Dub letní", "Quercus robur"),
				) +
				pptxtest.Shape("arrow"),
			Media: map[string][]byte{"rIdImg": img},
		},
	)
	slides := scanAll(t, open(t, data))
	require.Len(t, slides, 1)

	var names []string
	var pics [][]byte
	for shape := range document.WalkAll(slides[0].Shapes) {
		names = append(names, shape.ShapeName())
		if src, ok := shape.(document.ImageSource); ok {
			pics = append(pics, src.ImageData())
		}
	}
	assert.Equal(t, []string{"title", "outer", "inner", "photo", "caption", "arrow"}, names)
	require.Len(t, pics, 1)
	assert.Equal(t, img, pics[0])

	outer := slides[0].Shapes[1].(*document.Group)
	caption := outer.Shapes[1].(*document.TextShape)
	assert.Equal(t, "Dub letní\nQuercus robur", caption.Text)
	assert.IsType(t, &document.Other{}, slides[0].Shapes[2])
}

func TestLineBreakInsideParagraph(t *testing.T) {
	data := pptxtest.Build("", pptxtest.Slide{Tree: pptxtest.Text("t", "Fagus\nsylvatica")})
	slides := scanAll(t, open(t, data))
	assert.Equal(t, "Fagus\nsylvatica", slides[0].Shapes[0].(*document.TextShape).Text)
}

func TestBackgroundImage(t *testing.T) {
	bg := pptxtest.PNG(color.Black)
	data := pptxtest.Build("",
		pptxtest.Slide{
			Tree:       pptxtest.Text("t", "x"),
			Background: pptxtest.ImageBackground("rIdBg"),
			Media:      map[string][]byte{"rIdBg": bg},
		},
		pptxtest.Slide{Tree: pptxtest.Text("t", "y"), Background: pptxtest.SolidBackground()},
		pptxtest.Slide{Tree: pptxtest.Text("t", "z")},
	)
	slides := scanAll(t, open(t, data))
	require.Len(t, slides, 3)
	assert.Equal(t, document.FillImage, slides[0].Background.Kind)
	assert.Equal(t, bg, slides[0].Background.Image)
	assert.Equal(t, document.FillSolid, slides[1].Background.Kind)
	assert.Equal(t, document.FillNone, slides[2].Background.Kind)
}

func TestAlternateContentPrefersFallback(t *testing.T) {
	img := pptxtest.PNG(color.White)
	data := pptxtest.Build("",
		pptxtest.Slide{
			Tree: pptxtest.Alternate(
				pptxtest.Shape("ink"),
				pptxtest.Pic("fallback", "rIdImg"),
			) + pptxtest.Text("t", "Acer"),
			Media: map[string][]byte{"rIdImg": img},
		},
	)
	slides := scanAll(t, open(t, data))
	require.Len(t, slides[0].Shapes, 2)
	pic, ok := slides[0].Shapes[0].(*document.Picture)
	require.True(t, ok)
	assert.Equal(t, "fallback", pic.Name)
	assert.Equal(t, img, pic.Data)
}

func TestExternalPictureIsNotAnImage(t *testing.T) {
	data := pptxtest.Build("",
		pptxtest.Slide{
			Tree:     pptxtest.Pic("linked", "rIdExt"),
			External: map[string]string{"rIdExt": "http://example.com/a.png"},
		},
	)
	slides := scanAll(t, open(t, data))
	require.Len(t, slides[0].Shapes, 1)
	assert.Equal(t, &document.Other{Name: "linked"}, slides[0].Shapes[0])
}

func TestResolveTarget(t *testing.T) {
	tests := []struct {
		source string
		rel    Relationship
		want   string
	}{
		{"ppt/slides/slide1.xml", Relationship{Target: "../media/image1.png"}, "ppt/media/image1.png"},
		{"ppt/presentation.xml", Relationship{Target: "slides/slide2.xml"}, "ppt/slides/slide2.xml"},
		{"", Relationship{Target: "ppt/presentation.xml"}, "ppt/presentation.xml"},
		{"ppt/slides/slide1.xml", Relationship{Target: "/ppt/media/a%20b.png"}, "ppt/media/a b.png"},
		{"ppt/slides/slide1.xml", Relationship{Target: "http://x/y.png", TargetMode: "External"}, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, resolveTarget(tt.source, tt.rel), tt.rel.Target)
	}
}

func TestOpenRejectsNonPresentation(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("[Content_Types].xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
		`<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/></Types>`))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	_, err = Open(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	assert.ErrorContains(t, err, "no presentation part")
}

func TestOpenRejectsNonZip(t *testing.T) {
	data := []byte("definitely not a zip archive")
	_, err := Open(bytes.NewReader(data), int64(len(data)))
	assert.Error(t, err)
}

func TestBrokenSlideIsRecoverable(t *testing.T) {
	data := pptxtest.Build("",
		pptxtest.Slide{Tree: pptxtest.Text("t", "ok")},
		pptxtest.Slide{Tree: `<p:sp><p:nvSpPr>`},
		pptxtest.Slide{Tree: pptxtest.Text("t", "also ok")},
	)
	s := open(t, data).NewSlideScanner()

	first, err := s.Next()
	require.NoError(t, err)
	assert.Equal(t, 1, first.Number)

	_, err = s.Next()
	var se *document.SlideError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 2, se.Number)

	third, err := s.Next()
	require.NoError(t, err)
	assert.Equal(t, 3, third.Number)

	_, err = s.Next()
	assert.Equal(t, io.EOF, err)
}
