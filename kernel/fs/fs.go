// Package fs implements a flat in-memory file store with a fixed number of
// fixed-size slots. Lookups are linear scans over the directory.
package fs

import (
	"io"
	"minios/kernel"
	"minios/kernel/kfmt"
	"minios/kernel/mm"
)

const (
	// listNameWidth is the column width of names in List output.
	listNameWidth = 14

	// MaxFiles is the number of directory slots.
	MaxFiles = 16

	// MaxNameLen is the longest accepted file name.
	MaxNameLen = 11

	// FileSize is the capacity of each file in bytes.
	FileSize = 512

	// DataSize is the size of the data area backing all files.
	DataSize = MaxFiles * FileSize
)

var (
	ErrNotInitialized = &kernel.Error{Module: "fs", Message: "File system not initialized!"}
	ErrNameTooLong    = &kernel.Error{Module: "fs", Message: "Filename too long!"}
	ErrInvalidName    = &kernel.Error{Module: "fs", Message: "Invalid filename!"}
	ErrExists         = &kernel.Error{Module: "fs", Message: "File already exists!"}
	ErrNoFreeSlots    = &kernel.Error{Module: "fs", Message: "No free file slots!"}
	ErrNotFound       = &kernel.Error{Module: "fs", Message: "File not found!"}
	ErrTooLarge       = &kernel.Error{Module: "fs", Message: "Data too large! Max size: 512 bytes"}
	errShortDataArea  = &kernel.Error{Module: "fs", Message: "data area too small"}

	allocDataFn = mm.AllocBytes
	reserveFn   = mm.Reserve
)

// entry keeps its own copy of the file name so that callers may reuse the
// memory backing the name they passed in.
type entry struct {
	name    [MaxNameLen]byte
	nameLen uint8
	used    bool
	size    uint32
}

func (e *entry) setName(name string) {
	e.nameLen = uint8(copy(e.name[:], name))
}

// Store is a flat file store. Slot i owns bytes [i*FileSize, (i+1)*FileSize)
// of the data area.
type Store struct {
	files       [MaxFiles]entry
	data        []byte
	initialized bool
}

// Init attaches the store to data, which must hold at least DataSize bytes,
// and marks every slot as free.
func (s *Store) Init(data []byte) *kernel.Error {
	if len(data) < DataSize {
		return errShortDataArea
	}

	s.data = data[:DataSize]
	s.files = [MaxFiles]entry{}
	kernel.Memset(s.data, 0)
	s.initialized = true
	return nil
}

// Initialized returns true if the store has a data area.
func (s *Store) Initialized() bool {
	return s.initialized
}

// Create adds an empty file and returns its slot index.
func (s *Store) Create(name string) (int, *kernel.Error) {
	if !s.initialized {
		return -1, ErrNotInitialized
	}

	switch {
	case len(name) == 0:
		return -1, ErrInvalidName
	case len(name) > MaxNameLen:
		return -1, ErrNameTooLong
	}

	if s.lookup(name) >= 0 {
		return -1, ErrExists
	}

	for i := range s.files {
		if s.files[i].used {
			continue
		}

		s.files[i] = entry{used: true}
		s.files[i].setName(name)
		kernel.Memset(s.slot(i), 0)
		return i, nil
	}

	return -1, ErrNoFreeSlots
}

// Delete removes a file and wipes its data.
func (s *Store) Delete(name string) *kernel.Error {
	if !s.initialized {
		return ErrNotInitialized
	}

	i := s.lookup(name)
	if i < 0 {
		return ErrNotFound
	}

	s.files[i] = entry{}
	kernel.Memset(s.slot(i), 0)
	return nil
}

// Read copies up to len(buf) bytes of the file contents into buf and returns
// the number of bytes copied.
func (s *Store) Read(name string, buf []byte) (int, *kernel.Error) {
	if !s.initialized {
		return 0, ErrNotInitialized
	}

	i := s.lookup(name)
	if i < 0 {
		return 0, ErrNotFound
	}

	return copy(buf, s.slot(i)[:s.files[i].size]), nil
}

// Write replaces the file contents with data.
func (s *Store) Write(name string, data []byte) (int, *kernel.Error) {
	if !s.initialized {
		return 0, ErrNotInitialized
	}

	i := s.lookup(name)
	if i < 0 {
		return 0, ErrNotFound
	}

	if len(data) > FileSize {
		return 0, ErrTooLarge
	}

	copy(s.slot(i), data)
	s.files[i].size = uint32(len(data))
	return len(data), nil
}

// Visit invokes fn for every file in slot order. The name passed to fn is
// only valid for the duration of the call.
func (s *Store) Visit(fn func(name string, size uint32)) {
	for i := range s.files {
		if s.files[i].used {
			fn(s.files[i].nameString(), s.files[i].size)
		}
	}
}

// Count returns the number of files.
func (s *Store) Count() int {
	var n int
	for i := range s.files {
		if s.files[i].used {
			n++
		}
	}
	return n
}

// List writes a directory listing to w.
func (s *Store) List(w io.Writer) {
	if !s.initialized {
		kfmt.Fprintf(w, "%s\n", ErrNotInitialized.Message)
		return
	}

	kfmt.Fprintf(w, "Files in system:\n")
	kfmt.Fprintf(w, "Name            Size\n")
	kfmt.Fprintf(w, "----            ----\n")

	s.Visit(func(name string, size uint32) {
		kfmt.Fprintf(w, "%s", name)
		for i := len(name); i < listNameWidth; i++ {
			kfmt.Fprintf(w, " ")
		}
		kfmt.Fprintf(w, "  %d bytes\n", size)
	})

	if count := s.Count(); count == 0 {
		kfmt.Fprintf(w, "(No files)\n")
	} else {
		kfmt.Fprintf(w, "\nTotal: %d file(s)\n", count)
	}
}

func (s *Store) lookup(name string) int {
	for i := range s.files {
		if s.files[i].used && s.files[i].nameString() == name {
			return i
		}
	}
	return -1
}

func (s *Store) slot(i int) []byte {
	return s.data[i*FileSize : (i+1)*FileSize]
}

// Mount allocates the data area from the kernel heap, reserves it so that a
// heap reset keeps it, and initializes s.
func (s *Store) Mount() *kernel.Error {
	data, err := allocDataFn(DataSize)
	if err != nil {
		return err
	}

	if err = s.Init(data); err != nil {
		return err
	}

	reserveFn(dataAddr(data), DataSize)
	return nil
}
