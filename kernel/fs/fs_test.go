package fs

import (
	"bytes"
	"minios/kernel"
	"minios/kernel/mm"
	"strings"
	"testing"
	"unsafe"
)

func newStore(t *testing.T) *Store {
	var s Store
	if err := s.Init(make([]byte, DataSize)); err != nil {
		t.Fatal(err)
	}
	return &s
}

func TestUninitializedStore(t *testing.T) {
	var s Store

	if _, err := s.Create("a"); err != ErrNotInitialized {
		t.Errorf("expected ErrNotInitialized; got %v", err)
	}
	if err := s.Delete("a"); err != ErrNotInitialized {
		t.Errorf("expected ErrNotInitialized; got %v", err)
	}
	if _, err := s.Read("a", nil); err != ErrNotInitialized {
		t.Errorf("expected ErrNotInitialized; got %v", err)
	}
	if _, err := s.Write("a", nil); err != ErrNotInitialized {
		t.Errorf("expected ErrNotInitialized; got %v", err)
	}
	if err := s.Init(make([]byte, DataSize-1)); err != errShortDataArea {
		t.Errorf("expected errShortDataArea; got %v", err)
	}
}

func TestCreate(t *testing.T) {
	s := newStore(t)

	specs := []struct {
		name    string
		expSlot int
		expErr  *kernel.Error
	}{
		{"notes", 0, nil},
		{"notes", -1, ErrExists},
		{"hello.txt", 1, nil},
		{"abcdefghijk", 2, nil},
		{"abcdefghijkl", -1, ErrNameTooLong},
		{"", -1, ErrInvalidName},
	}

	for specIndex, spec := range specs {
		slot, err := s.Create(spec.name)
		if err != spec.expErr {
			t.Errorf("[spec %d] expected error %v; got %v", specIndex, spec.expErr, err)
			continue
		}
		if slot != spec.expSlot {
			t.Errorf("[spec %d] expected slot %d; got %d", specIndex, spec.expSlot, slot)
		}
	}

	if got := s.Count(); got != 3 {
		t.Errorf("expected 3 files; got %d", got)
	}
}

func TestCreateNoFreeSlots(t *testing.T) {
	s := newStore(t)

	for i := 0; i < MaxFiles; i++ {
		if _, err := s.Create(string([]byte{'f', 'a' + byte(i)})); err != nil {
			t.Fatalf("unexpected error creating file %d: %v", i, err)
		}
	}

	if _, err := s.Create("extra"); err != ErrNoFreeSlots {
		t.Fatalf("expected ErrNoFreeSlots; got %v", err)
	}

	// Deleting a file frees its slot for reuse.
	if err := s.Delete("fc"); err != nil {
		t.Fatal(err)
	}
	if slot, err := s.Create("extra"); err != nil || slot != 2 {
		t.Fatalf("expected slot 2 to be reused; got %d, %v", slot, err)
	}
}

func TestReadWrite(t *testing.T) {
	s := newStore(t)
	if _, err := s.Create("f"); err != nil {
		t.Fatal(err)
	}

	if _, err := s.Write("missing", []byte("x")); err != ErrNotFound {
		t.Errorf("expected ErrNotFound; got %v", err)
	}
	if _, err := s.Write("f", make([]byte, FileSize+1)); err != ErrTooLarge {
		t.Errorf("expected ErrTooLarge; got %v", err)
	}

	if n, err := s.Write("f", []byte("hello world")); err != nil || n != 11 {
		t.Fatalf("expected 11 bytes written; got %d, %v", n, err)
	}

	buf := make([]byte, FileSize)
	n, err := s.Read("f", buf)
	if err != nil {
		t.Fatal(err)
	}
	if exp := "hello world"; string(buf[:n]) != exp {
		t.Errorf("expected to read %q; got %q", exp, buf[:n])
	}

	// Short buffers receive a prefix.
	short := make([]byte, 5)
	if n, _ = s.Read("f", short); n != 5 || string(short) != "hello" {
		t.Errorf("expected to read %q; got %q", "hello", short[:n])
	}

	// Writes replace the previous contents.
	if _, err = s.Write("f", []byte("bye")); err != nil {
		t.Fatal(err)
	}
	if n, _ = s.Read("f", buf); string(buf[:n]) != "bye" {
		t.Errorf("expected to read %q; got %q", "bye", buf[:n])
	}

	if _, err = s.Read("missing", buf); err != ErrNotFound {
		t.Errorf("expected ErrNotFound; got %v", err)
	}
}

func TestDeleteWipesData(t *testing.T) {
	s := newStore(t)
	s.Create("f")
	s.Write("f", []byte("secret"))

	if err := s.Delete("f"); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete("f"); err != ErrNotFound {
		t.Errorf("expected ErrNotFound; got %v", err)
	}
	if !bytes.Equal(s.slot(0), make([]byte, FileSize)) {
		t.Error("expected deleted file data to be zeroed")
	}

	s.Create("g")
	buf := make([]byte, FileSize)
	if n, _ := s.Read("g", buf); n != 0 {
		t.Errorf("expected new file to be empty; got %d bytes", n)
	}
}

func TestVisit(t *testing.T) {
	s := newStore(t)
	s.Create("a")
	s.Create("b")
	s.Create("c")
	s.Write("b", []byte("12345"))
	s.Delete("a")

	var got []string
	var sizes []uint32
	s.Visit(func(name string, size uint32) {
		got = append(got, strings.Clone(name))
		sizes = append(sizes, size)
	})

	if len(got) != 2 || got[0] != "b" || got[1] != "c" {
		t.Fatalf("unexpected visit order: %v", got)
	}
	if sizes[0] != 5 || sizes[1] != 0 {
		t.Fatalf("unexpected sizes: %v", sizes)
	}
}

func TestCreateCopiesName(t *testing.T) {
	s := newStore(t)

	// The shell hands out names that reference its reusable line buffer.
	line := []byte("notes")
	if _, err := s.Create(unsafe.String(&line[0], len(line))); err != nil {
		t.Fatal(err)
	}
	copy(line, "xxxxx")

	if _, err := s.Write("notes", []byte("hi")); err != nil {
		t.Fatalf("expected the stored name to survive reuse of the caller buffer; got %v", err)
	}
	if _, err := s.Read("xxxxx", nil); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound for the overwritten name; got %v", err)
	}

	allocs := testing.AllocsPerRun(100, func() {
		s.Delete("tmp")
		s.Create("tmp")
		s.Write("tmp", line)
		s.Read("tmp", line)
	})
	if allocs != 0 {
		t.Fatalf("expected file operations not to allocate; got %v allocations per run", allocs)
	}
}

func TestList(t *testing.T) {
	var (
		s   Store
		buf bytes.Buffer
	)

	s.List(&buf)
	if exp := "File system not initialized!\n"; buf.String() != exp {
		t.Fatalf("expected %q; got %q", exp, buf.String())
	}

	s.Init(make([]byte, DataSize))
	buf.Reset()
	s.List(&buf)

	header := "Files in system:\nName            Size\n----            ----\n"
	if exp := header + "(No files)\n"; buf.String() != exp {
		t.Fatalf("expected %q; got %q", exp, buf.String())
	}

	s.Create("notes")
	s.Write("notes", []byte("hi"))
	s.Create("abcdefghijk")
	buf.Reset()
	s.List(&buf)

	exp := header +
		"notes           2 bytes\n" +
		"abcdefghijk     0 bytes\n" +
		"\nTotal: 2 file(s)\n"
	if buf.String() != exp {
		t.Fatalf("expected %q; got %q", exp, buf.String())
	}
}

func TestMount(t *testing.T) {
	defer func() {
		allocDataFn = mm.AllocBytes
		reserveFn = mm.Reserve
	}()

	t.Run("success", func(t *testing.T) {
		backing := make([]byte, DataSize)
		var (
			reservedAddr uintptr
			reservedSize mm.Size
		)

		allocDataFn = func(size mm.Size) ([]byte, *kernel.Error) {
			if size != DataSize {
				t.Errorf("expected allocation of %d bytes; got %d", DataSize, size)
			}
			return backing, nil
		}
		reserveFn = func(addr uintptr, size mm.Size) {
			reservedAddr, reservedSize = addr, size
		}

		var s Store
		if err := s.Mount(); err != nil {
			t.Fatal(err)
		}
		if !s.Initialized() {
			t.Fatal("expected store to be initialized")
		}
		if reservedAddr != dataAddr(backing) || reservedSize != DataSize {
			t.Errorf("expected data area to be reserved; got 0x%x/%d", reservedAddr, reservedSize)
		}
	})

	t.Run("allocation failure", func(t *testing.T) {
		allocDataFn = func(_ mm.Size) ([]byte, *kernel.Error) {
			return nil, mm.ErrOutOfMemory
		}
		reserveFn = func(_ uintptr, _ mm.Size) {
			t.Error("unexpected call to Reserve")
		}

		var s Store
		if err := s.Mount(); err != mm.ErrOutOfMemory {
			t.Fatalf("expected ErrOutOfMemory; got %v", err)
		}
		if s.Initialized() {
			t.Fatal("expected store to remain uninitialized")
		}
	})
}
