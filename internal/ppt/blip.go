package ppt

import (
	"encoding/binary"
)

// blip record types
const (
	rtBlipEMF      = 0xF01A
	rtBlipWMF      = 0xF01B
	rtBlipPICT     = 0xF01C
	rtBlipJPEG     = 0xF01D
	rtBlipPNG      = 0xF01E
	rtBlipDIB      = 0xF01F
	rtBlipTIFF     = 0xF029
	rtBlipJPEGCMYK = 0xF02A
)

const (
	fbseHeaderSize = 36
	noDelay        = ^uint32(0)
)

// bstoreEntry is one FBSE of the drawing group's blip store. The image is
// either embedded after the header or stored in the Pictures stream at
// offset delay.
type bstoreEntry struct {
	embedded []byte
	delay    uint32
	size     uint32
	refs     uint32
}

// readBStore reads the blip store from a PPDrawingGroup record. pib values
// in shape properties are 1-based indexes into the result.
func readBStore(drawingGroup record) []bstoreEntry {
	dgg, ok := drawingGroup.child(rtDggContainer)
	if !ok {
		return nil
	}
	store, ok := dgg.child(rtBStoreContainer)
	if !ok {
		return nil
	}
	recs, _ := store.children()

	entries := make([]bstoreEntry, 0, len(recs))
	for _, rec := range recs {
		switch {
		case rec.Type == rtFBSE && len(rec.Data) >= fbseHeaderSize:
			e := bstoreEntry{
				size:  u32(rec.Data, 20),
				refs:  u32(rec.Data, 24),
				delay: u32(rec.Data, 28),
			}
			nameLen := int(rec.Data[33])
			if rest := fbseHeaderSize + nameLen; rest < len(rec.Data) {
				e.embedded = rec.Data[rest:]
			}
			entries = append(entries, e)
		case rec.Type >= rtBlipFirst && rec.Type <= rtBlipLast:
			entries = append(entries, bstoreEntry{embedded: encodeRecord(rec), delay: noDelay})
		default:
			// keep pib numbering aligned
			entries = append(entries, bstoreEntry{delay: noDelay})
		}
	}
	return entries
}

// encodeRecord re-serializes a record header in front of its payload.
func encodeRecord(rec record) []byte {
	out := make([]byte, recHeaderSize+len(rec.Data))
	binary.LittleEndian.PutUint16(out[0:], uint16(rec.Ver)|rec.Instance<<4)
	binary.LittleEndian.PutUint16(out[2:], rec.Type)
	binary.LittleEndian.PutUint32(out[4:], uint32(len(rec.Data)))
	copy(out[recHeaderSize:], rec.Data)
	return out
}

// blip returns the raster bytes for a 1-based pib, or nil when the entry is
// missing, empty, or a metafile.
func (r *Reader) blip(pib uint32) []byte {
	if pib == 0 || int(pib) > len(r.bstore) {
		return nil
	}
	e := r.bstore[pib-1]

	var raw []byte
	switch {
	case len(e.embedded) > 0:
		raw = e.embedded
	case e.delay != noDelay && uint64(e.delay) < uint64(len(r.pictures)):
		raw = r.pictures[e.delay:]
	default:
		return nil
	}
	rec, _, err := decodeRecord(raw)
	if err != nil {
		return nil
	}
	return blipPayload(rec)
}

// blipPayload strips the blip header from a raster blip record.
func blipPayload(rec record) []byte {
	uidLen := 16
	if rec.Instance&1 == 1 {
		uidLen = 32
	}

	switch rec.Type {
	case rtBlipJPEG, rtBlipJPEGCMYK, rtBlipPNG, rtBlipTIFF:
		if len(rec.Data) <= uidLen+1 {
			return nil
		}
		return rec.Data[uidLen+1:]
	case rtBlipDIB:
		if len(rec.Data) <= uidLen+1 {
			return nil
		}
		return dibToBMP(rec.Data[uidLen+1:])
	}
	// EMF, WMF and PICT are compressed vector formats
	return nil
}

// dibToBMP prefixes a packed device-independent bitmap with a BMP file
// header so it can be decoded as a regular BMP.
func dibToBMP(dib []byte) []byte {
	if len(dib) < 16 {
		return nil
	}
	headerSize := u32(dib, 0)
	if headerSize < 12 || uint64(headerSize) > uint64(len(dib)) {
		return nil
	}

	var palette uint32
	if headerSize >= 40 {
		bitCount := u16(dib, 14)
		compression := u32(dib, 16)
		colorsUsed := u32(dib, 32)
		switch {
		case colorsUsed != 0:
			palette = colorsUsed * 4
		case bitCount <= 8:
			palette = (1 << bitCount) * 4
		}
		if headerSize == 40 && (compression == 3 || compression == 6) {
			palette += 12
		}
	} else {
		bitCount := u16(dib, 10)
		if bitCount <= 8 {
			palette = (1 << bitCount) * 3
		}
	}

	const fileHeaderSize = 14
	out := make([]byte, fileHeaderSize+len(dib))
	out[0], out[1] = 'B', 'M'
	binary.LittleEndian.PutUint32(out[2:], uint32(len(out)))
	binary.LittleEndian.PutUint32(out[10:], fileHeaderSize+headerSize+palette)
	copy(out[fileHeaderSize:], dib)
	return out
}
