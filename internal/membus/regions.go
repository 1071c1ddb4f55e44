package membus

// Region identifies one of the address-space regions the GBA bus routes
// accesses to. See the base/size table in SPEC_FULL.md §4.1.
type Region int

const (
	RegionUnmapped Region = iota
	RegionBIOS
	RegionEWRAM
	RegionIWRAM
	RegionIO
	RegionPalette
	RegionVRAM
	RegionOAM
	RegionPakROM
	RegionCartRAM
)

const (
	BIOSSize    = 16 * 1024
	EWRAMSize   = 256 * 1024
	IWRAMSize   = 32 * 1024
	IOSize      = 1024
	PaletteSize = 1024
	VRAMSize    = 96 * 1024
	OAMSize     = 1024
	MaxPakSize  = 32 * 1024 * 1024
	CartRAMSize = 64 * 1024

	vramObjBoundaryTile   = 0x10000
	vramObjBoundaryBitmap = 0x14000
)

// decode classifies addr into a region and an offset within that region,
// applying the mirroring rules of §4.1: bits 24-27 select the region
// (an address with any of bits 28-31 set is unmapped), bits 0-23 are the
// offset, masked to the region size for regions smaller than their 16MiB
// address window.
func decode(addr uint32) (Region, uint32) {
	top := (addr >> 24) & 0xFF
	switch top {
	case 0x00:
		if addr > BIOSSize-1 {
			return RegionUnmapped, addr
		}
		return RegionBIOS, addr
	case 0x02:
		return RegionEWRAM, addr % EWRAMSize
	case 0x03:
		return RegionIWRAM, addr % IWRAMSize
	case 0x04:
		off := addr & 0x00FFFFFF
		if off >= IOSize {
			// The real I/O block only occupies the first 1KiB of its
			// 16MiB window; unused addresses above it are unmapped.
			return RegionUnmapped, addr
		}
		return RegionIO, off
	case 0x05:
		return RegionPalette, (addr & 0x00FFFFFF) % PaletteSize
	case 0x06:
		return RegionVRAM, vramOffset(addr)
	case 0x07:
		return RegionOAM, (addr & 0x00FFFFFF) % OAMSize
	case 0x08, 0x09, 0x0A, 0x0B, 0x0C, 0x0D:
		return RegionPakROM, addr & 0x01FFFFFF
	case 0x0E, 0x0F:
		return RegionCartRAM, (addr & 0x00FFFFFF) % CartRAMSize
	default:
		return RegionUnmapped, addr
	}
}

// vramOffset folds the 96KiB VRAM region's quirky mirror (every 128KiB,
// with the top 32KiB of each 128KiB window re-mapped onto the last 32KiB
// bank) down to an offset in [0, VRAMSize).
func vramOffset(addr uint32) uint32 {
	off := addr & 0x1FFFF
	if off >= 0x18000 {
		off -= 0x8000
	}
	return off
}

// isObjVRAM reports whether offset (within VRAM) lies in the OBJ
// character/tile area, where byte writes are rejected per §4.1. The
// boundary depends on the active BG mode: 0x10000 in tile modes (0-2),
// 0x14000 in bitmap modes (3-5).
func isObjVRAM(offset uint32, bgMode uint32) bool {
	if bgMode >= 3 {
		return offset >= vramObjBoundaryBitmap
	}
	return offset >= vramObjBoundaryTile
}
