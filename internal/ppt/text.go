package ppt

import (
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// paragraph and vertical-tab separators used inside text atoms
var lineBreaks = strings.NewReplacer("\r\n", "\n", "\r", "\n", "\v", "\n")

func decodeUTF16(b []byte) string {
	if len(b)%2 == 1 {
		b = b[:len(b)-1]
	}
	out, err := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder().Bytes(b)
	if err != nil {
		return ""
	}
	return string(out)
}

func decodeLatin1(b []byte) string {
	out, err := charmap.ISO8859_1.NewDecoder().Bytes(b)
	if err != nil {
		return ""
	}
	return string(out)
}

// atomText decodes a TextCharsAtom or TextBytesAtom. ok is false for other
// record types.
func atomText(rec record) (string, bool) {
	var s string
	switch rec.Type {
	case rtTextCharsAtom:
		s = decodeUTF16(rec.Data)
	case rtTextBytesAtom:
		s = decodeLatin1(rec.Data)
	default:
		return "", false
	}
	s = strings.TrimRight(s, "\x00")
	return lineBreaks.Replace(s), true
}

// outlineText is one text body of a slide as stored in SlideListWithText.
type outlineText struct {
	textType uint32
	text     string
}

// readTextRun collects the text atoms following each TextHeaderAtom in a
// sequence of sibling records.
func readTextRun(recs []record) []outlineText {
	var out []outlineText
	for _, rec := range recs {
		switch rec.Type {
		case rtTextHeaderAtom:
			out = append(out, outlineText{textType: u32(rec.Data, 0)})
		case rtTextCharsAtom, rtTextBytesAtom:
			s, _ := atomText(rec)
			if len(out) == 0 {
				out = append(out, outlineText{})
			}
			out[len(out)-1].text += s
		}
	}
	return out
}
