package ppt

import (
	"errors"
	"fmt"
)

const (
	headerTokenPlain     = 0xE391C05F
	headerTokenEncrypted = 0xF3D1C4DF
)

var errEncrypted = errors.New("password encrypted presentations are not supported")

// CurrentUser mirrors the CurrentUserAtom of the "Current User" stream.
type CurrentUser struct {
	HeaderToken         uint32
	OffsetToCurrentEdit uint32
	DocFileVersion      uint16
	MajorVersion        byte
	MinorVersion        byte
	UserName            string
}

func (c CurrentUser) Encrypted() bool { return c.HeaderToken == headerTokenEncrypted }

func (c CurrentUser) String() string {
	return fmt.Sprintf("%d.%d (file version 0x%04x)", c.MajorVersion, c.MinorVersion, c.DocFileVersion)
}

func readCurrentUser(stream []byte) (CurrentUser, error) {
	var cu CurrentUser
	rec, _, err := decodeRecord(stream)
	if err != nil {
		return cu, fmt.Errorf("read current user atom: %w", err)
	}
	if rec.Type != rtCurrentUserAtom {
		return cu, fmt.Errorf("unexpected record type 0x%04x in Current User stream", rec.Type)
	}
	if len(rec.Data) < 20 {
		return cu, fmt.Errorf("current user atom too short (%d bytes)", len(rec.Data))
	}

	cu.HeaderToken = u32(rec.Data, 4)
	if cu.HeaderToken != headerTokenPlain && cu.HeaderToken != headerTokenEncrypted {
		return cu, fmt.Errorf("unexpected header token 0x%08x", cu.HeaderToken)
	}
	cu.OffsetToCurrentEdit = u32(rec.Data, 8)
	nameLen := int(u16(rec.Data, 12))
	cu.DocFileVersion = u16(rec.Data, 14)
	cu.MajorVersion = rec.Data[16]
	cu.MinorVersion = rec.Data[17]
	if 20+nameLen <= len(rec.Data) {
		cu.UserName = decodeLatin1(rec.Data[20 : 20+nameLen])
	}
	return cu, nil
}

// userEdit mirrors a UserEditAtom. Edits form a chain from the newest save
// back to the first one through OffsetLastEdit.
type userEdit struct {
	LastSlideIDRef         uint32
	OffsetLastEdit         uint32
	OffsetPersistDirectory uint32
	DocPersistIDRef        uint32
	EncryptSessionRef      uint32
}

func readUserEdit(stream []byte, off uint32) (userEdit, error) {
	var ue userEdit
	rec, err := readRecordAt(stream, off)
	if err != nil {
		return ue, err
	}
	if rec.Type != rtUserEditAtom {
		return ue, fmt.Errorf("expected UserEditAtom at offset %d, found 0x%04x", off, rec.Type)
	}
	if len(rec.Data) < 28 {
		return ue, fmt.Errorf("user edit atom too short (%d bytes)", len(rec.Data))
	}
	ue.LastSlideIDRef = u32(rec.Data, 0)
	ue.OffsetLastEdit = u32(rec.Data, 8)
	ue.OffsetPersistDirectory = u32(rec.Data, 12)
	ue.DocPersistIDRef = u32(rec.Data, 16)
	if len(rec.Data) >= 32 {
		ue.EncryptSessionRef = u32(rec.Data, 28)
	}
	return ue, nil
}

// readPersistDirectory merges one PersistDirectoryAtom into dir. Entries
// already present come from a newer edit and are kept.
func readPersistDirectory(stream []byte, off uint32, dir map[uint32]uint32) error {
	rec, err := readRecordAt(stream, off)
	if err != nil {
		return err
	}
	if rec.Type != rtPersistDirectoryAtom {
		return fmt.Errorf("expected PersistDirectoryAtom at offset %d, found 0x%04x", off, rec.Type)
	}
	data := rec.Data
	for pos := 0; pos+4 <= len(data); {
		h := u32(data, pos)
		pos += 4
		first := h & 0xFFFFF
		count := int(h >> 20)
		if pos+4*count > len(data) {
			return fmt.Errorf("persist directory entry at %d: %w", pos, errTruncated)
		}
		for i := 0; i < count; i++ {
			id := first + uint32(i)
			if _, ok := dir[id]; !ok {
				dir[id] = u32(data, pos)
			}
			pos += 4
		}
	}
	return nil
}

// loadPersistDirectory follows the user edit chain starting at the current
// edit and returns the merged persist directory and the newest edit.
func loadPersistDirectory(stream []byte, currentEdit uint32) (map[uint32]uint32, userEdit, error) {
	dir := make(map[uint32]uint32)
	seen := make(map[uint32]bool)

	var newest userEdit
	off := currentEdit
	for first := true; ; first = false {
		if seen[off] {
			return nil, newest, fmt.Errorf("user edit chain loops at offset %d", off)
		}
		seen[off] = true

		ue, err := readUserEdit(stream, off)
		if err != nil {
			return nil, newest, err
		}
		if first {
			newest = ue
		}
		if err := readPersistDirectory(stream, ue.OffsetPersistDirectory, dir); err != nil {
			return nil, newest, err
		}
		if ue.OffsetLastEdit == 0 {
			return dir, newest, nil
		}
		off = ue.OffsetLastEdit
	}
}
