package kmain

import (
	"minios/kernel/gate"
	"minios/kernel/mm"
	"minios/multiboot"
	"unsafe"
)

const (
	vgaTextAddr    uintptr = 0xb8000
	vgaTextColumns         = 80
	vgaTextRows            = 25
)

// nativePlatform is filled in by NativePlatform.
var nativePlatform Platform

// NativePlatform describes the physical machine using the information block
// passed in by the bootloader. Without an EGA text framebuffer tag the
// standard VGA text buffer at 0xb8000 is assumed.
func NativePlatform(multibootInfoPtr uintptr, stubs *gate.StubTable) *Platform {
	multiboot.SetInfoPtr(multibootInfoPtr)

	var (
		fbAddr     = vgaTextAddr
		cols, rows = uint32(vgaTextColumns), uint32(vgaTextRows)
	)

	if fbInfo := multiboot.GetFramebufferInfo(); fbInfo != nil && fbInfo.Type == multiboot.FramebufferTypeEGA {
		fbAddr = uintptr(fbInfo.PhysAddr)
		cols, rows = fbInfo.Width, fbInfo.Height
	}

	nativePlatform = Platform{
		TextFramebuffer: unsafe.Slice((*uint16)(unsafe.Pointer(fbAddr)), int(cols*rows)),
		TextColumns:     cols,
		TextRows:        rows,
		HeapStart:       mm.DefaultRegionStart,
		HeapSize:        mm.DefaultRegionSize,
		Trampolines:     stubs,
		CmdLine:         *multiboot.GetBootCmdLine(),
	}
	return &nativePlatform
}
