package ppt

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/richardlehane/mscfb"
	"github.com/richardlehane/msoleps"

	"github.com/hanpama/slidequiz/internal/document"
)

const (
	streamDocument         = "PowerPoint Document"
	streamPictures         = "Pictures"
	streamCurrentUser      = "Current User"
	streamSummary          = "SummaryInformation"
	streamEncryptedSummary = "EncryptedSummary"
)

// Reader wraps an open PowerPoint 97-2003 presentation.
type Reader struct {
	doc      []byte
	pictures []byte
	User     CurrentUser
	persist  map[uint32]uint32
	bstore   []bstoreEntry
	slides   []slideEntry
	meta     document.Metadata
}

// slideEntry is one slide from the SlideListWithText in presentation order
type slideEntry struct {
	persistRef uint32
	id         uint32
	texts      []outlineText
}

// streams holds the raw OLE streams a presentation is built from
type streams struct {
	currentUser []byte
	document    []byte
	pictures    []byte
	encrypted   bool
	title       string
}

// OpenReader opens a .ppt file and returns a Reader.
func OpenReader(ra io.ReaderAt) (*Reader, error) {
	doc, err := mscfb.New(ra)
	if err != nil {
		return nil, fmt.Errorf("failed to open OLE container: %w", err)
	}

	var s streams
	for entry, err := doc.Next(); err == nil; entry, err = doc.Next() {
		if len(entry.Path) > 0 {
			continue
		}
		switch entry.Name {
		case streamDocument:
			s.document, err = io.ReadAll(entry)
		case streamPictures:
			s.pictures, err = io.ReadAll(entry)
		case streamCurrentUser:
			s.currentUser, err = io.ReadAll(entry)
		case streamEncryptedSummary:
			s.encrypted = true
		case streamSummary:
			if msoleps.IsMSOLEPS(entry.Initial) {
				s.title = readTitle(entry)
			}
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read stream %s: %w", entry.Name, err)
		}
	}

	if s.document == nil {
		return nil, fmt.Errorf("stream %s not found", streamDocument)
	}
	if s.currentUser == nil {
		return nil, fmt.Errorf("stream %s not found", streamCurrentUser)
	}
	return load(s)
}

func readTitle(r io.Reader) string {
	props, err := msoleps.NewFrom(r)
	if err != nil {
		return ""
	}
	for _, p := range props.Property {
		if p.Name == "Title" {
			return strings.TrimSpace(strings.TrimRight(p.String(), "\x00"))
		}
	}
	return ""
}

func load(s streams) (*Reader, error) {
	if s.encrypted {
		return nil, errEncrypted
	}

	r := &Reader{
		doc:      s.document,
		pictures: s.pictures,
		meta:     document.Metadata{Title: s.title},
	}

	var err error
	r.User, err = readCurrentUser(s.currentUser)
	if err != nil {
		return nil, fmt.Errorf("failed to read Current User: %w", err)
	}
	if r.User.Encrypted() {
		return nil, errEncrypted
	}

	persist, edit, err := loadPersistDirectory(r.doc, r.User.OffsetToCurrentEdit)
	if err != nil {
		return nil, fmt.Errorf("failed to read persist directory: %w", err)
	}
	if edit.EncryptSessionRef != 0 {
		if _, ok := persist[edit.EncryptSessionRef]; ok {
			return nil, errEncrypted
		}
	}
	r.persist = persist

	docRec, err := r.persistRecord(edit.DocPersistIDRef)
	if err != nil {
		return nil, fmt.Errorf("failed to read document container: %w", err)
	}
	if docRec.Type != rtDocument {
		return nil, fmt.Errorf("unexpected document record type 0x%04x", docRec.Type)
	}

	children, err := docRec.children()
	if err != nil {
		return nil, fmt.Errorf("failed to read document container: %w", err)
	}
	for _, child := range children {
		switch {
		case child.Type == rtPPDrawingGroup:
			r.bstore = readBStore(child)
		case child.Type == rtSlideListWithText && child.Instance == 0:
			if r.slides, err = readSlideList(child); err != nil {
				return nil, fmt.Errorf("failed to read slide list: %w", err)
			}
		}
	}
	return r, nil
}

// readSlideList returns slides in presentation order with the outline text
// that follows each SlidePersistAtom.
func readSlideList(list record) ([]slideEntry, error) {
	recs, err := list.children()
	if err != nil {
		return nil, err
	}

	var slides []slideEntry
	var run []record
	flush := func() {
		if len(slides) > 0 {
			slides[len(slides)-1].texts = readTextRun(run)
		}
		run = run[:0]
	}
	for _, rec := range recs {
		if rec.Type != rtSlidePersistAtom {
			run = append(run, rec)
			continue
		}
		flush()
		if len(rec.Data) < 16 {
			return nil, errors.New("slide persist atom too short")
		}
		slides = append(slides, slideEntry{
			persistRef: u32(rec.Data, 0),
			id:         u32(rec.Data, 12),
		})
	}
	flush()
	return slides, nil
}

// persistRecord resolves a persist object reference to its record.
func (r *Reader) persistRecord(ref uint32) (record, error) {
	off, ok := r.persist[ref]
	if !ok {
		return record{}, fmt.Errorf("persist object %d not found", ref)
	}
	return readRecordAt(r.doc, off)
}

// Metadata returns the SummaryInformation title.
func (r *Reader) Metadata() document.Metadata {
	return r.meta
}

// SlideCount returns the number of slides in presentation order
func (r *Reader) SlideCount() int {
	return len(r.slides)
}

// NewSlideScanner creates a SlideScanner over the slides in presentation order
func (r *Reader) NewSlideScanner() document.SlideScanner {
	return &SlideScanner{reader: r}
}
