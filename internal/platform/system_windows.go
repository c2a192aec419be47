//go:build windows

package platform

import (
	"fmt"
	"image"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/obieFM/CursorBlur/internal/cursor"
)

var (
	user32   = windows.NewLazySystemDLL("user32.dll")
	gdi32    = windows.NewLazySystemDLL("gdi32.dll")
	dwmapi   = windows.NewLazySystemDLL("dwmapi.dll")
	kernel32 = windows.NewLazySystemDLL("kernel32.dll")

	procGetCursorPos                  = user32.NewProc("GetCursorPos")
	procGetCursorInfo                 = user32.NewProc("GetCursorInfo")
	procGetIconInfo                   = user32.NewProc("GetIconInfo")
	procDrawIconEx                    = user32.NewProc("DrawIconEx")
	procGetSystemMetrics              = user32.NewProc("GetSystemMetrics")
	procEnumDisplayDevicesW           = user32.NewProc("EnumDisplayDevicesW")
	procEnumDisplaySettingsW          = user32.NewProc("EnumDisplaySettingsW")
	procGetDC                         = user32.NewProc("GetDC")
	procReleaseDC                     = user32.NewProc("ReleaseDC")
	procSetProcessDPIAware            = user32.NewProc("SetProcessDPIAware")
	procSetProcessDpiAwarenessContext = user32.NewProc("SetProcessDpiAwarenessContext")

	procCreateCompatibleDC = gdi32.NewProc("CreateCompatibleDC")
	procCreateDIBSection   = gdi32.NewProc("CreateDIBSection")
	procSelectObject       = gdi32.NewProc("SelectObject")
	procDeleteObject       = gdi32.NewProc("DeleteObject")
	procDeleteDC           = gdi32.NewProc("DeleteDC")
	procGetObjectW         = gdi32.NewProc("GetObjectW")
	procGdiFlush           = gdi32.NewProc("GdiFlush")
	procGetStockObject     = gdi32.NewProc("GetStockObject")

	procCreateMutexW = kernel32.NewProc("CreateMutexW")
)

const (
	cursorShowing = 0x0001

	smXVirtualScreen  = 76
	smYVirtualScreen  = 77
	smCXVirtualScreen = 78
	smCYVirtualScreen = 79

	enumCurrentSettings = 0xFFFFFFFF

	diNormal     = 0x0003
	dibRGBColors = 0
	biRGB        = 0

	dpiAwarenessPerMonitorV2 = ^uintptr(3) // DPI_AWARENESS_CONTEXT(-4)
)

type wPoint struct {
	X, Y int32
}

type cursorInfo struct {
	CbSize    uint32
	Flags     uint32
	HCursor   windows.Handle
	ScreenPos wPoint
}

type iconInfo struct {
	FIcon    int32
	XHotspot uint32
	YHotspot uint32
	HbmMask  windows.Handle
	HbmColor windows.Handle
}

type gdiBitmap struct {
	Type       int32
	Width      int32
	Height     int32
	WidthBytes int32
	Planes     uint16
	BitsPixel  uint16
	Bits       uintptr
}

type bitmapInfoHeader struct {
	Size          uint32
	Width         int32
	Height        int32
	Planes        uint16
	BitCount      uint16
	Compression   uint32
	SizeImage     uint32
	XPelsPerMeter int32
	YPelsPerMeter int32
	ClrUsed       uint32
	ClrImportant  uint32
}

type bitmapInfo struct {
	Header bitmapInfoHeader
	Colors [1]uint32
}

type displayDevice struct {
	Cb           uint32
	DeviceName   [32]uint16
	DeviceString [128]uint16
	StateFlags   uint32
	DeviceID     [128]uint16
	DeviceKey    [128]uint16
}

type devMode struct {
	DeviceName       [32]uint16
	SpecVersion      uint16
	DriverVersion    uint16
	Size             uint16
	DriverExtra      uint16
	Fields           uint32
	PositionX        int32
	PositionY        int32
	Orientation      uint32
	FixedOutput      uint32
	Color            int16
	Duplex           int16
	YResolution      int16
	TTOption         int16
	Collate          int16
	FormName         [32]uint16
	LogPixels        uint16
	BitsPerPel       uint32
	PelsWidth        uint32
	PelsHeight       uint32
	DisplayFlags     uint32
	DisplayFrequency uint32
	ICMMethod        uint32
	ICMIntent        uint32
	MediaType        uint32
	DitherType       uint32
	Reserved1        uint32
	Reserved2        uint32
	PanningWidth     uint32
	PanningHeight    uint32
}

type winSystem struct{}

// NewSystem negotiates DPI awareness once and returns the Win32-backed
// platform services.
func NewSystem() (System, error) {
	if ret, _, _ := procSetProcessDpiAwarenessContext.Call(dpiAwarenessPerMonitorV2); ret == 0 {
		procSetProcessDPIAware.Call()
	}
	return winSystem{}, nil
}

func (winSystem) PointerState() (Pointer, error) {
	var pt wPoint
	if ret, _, _ := procGetCursorPos.Call(uintptr(unsafe.Pointer(&pt))); ret == 0 {
		return Pointer{}, fmt.Errorf("GetCursorPos failed")
	}

	p := Pointer{X: int(pt.X), Y: int(pt.Y)}

	var ci cursorInfo
	ci.CbSize = uint32(unsafe.Sizeof(ci))
	if ret, _, _ := procGetCursorInfo.Call(uintptr(unsafe.Pointer(&ci))); ret == 0 {
		return p, nil
	}
	if ci.Flags == cursorShowing && ci.HCursor != 0 {
		p.Visible = true
		p.GlyphID = uintptr(ci.HCursor)
	}
	return p, nil
}

func (winSystem) Info(id uintptr) (cursor.Glyph, error) {
	var ii iconInfo
	if ret, _, _ := procGetIconInfo.Call(id, uintptr(unsafe.Pointer(&ii))); ret == 0 {
		return cursor.Glyph{}, fmt.Errorf("GetIconInfo failed for glyph %#x", id)
	}
	defer func() {
		if ii.HbmMask != 0 {
			procDeleteObject.Call(uintptr(ii.HbmMask))
		}
		if ii.HbmColor != 0 {
			procDeleteObject.Call(uintptr(ii.HbmColor))
		}
	}()

	g := cursor.Glyph{
		ID:   id,
		HotX: int(ii.XHotspot),
		HotY: int(ii.YHotspot),
	}

	var bm gdiBitmap
	if ii.HbmColor != 0 {
		procGetObjectW.Call(uintptr(ii.HbmColor), unsafe.Sizeof(bm), uintptr(unsafe.Pointer(&bm)))
		g.Width = int(bm.Width)
		g.Height = int(bm.Height)
	} else if ii.HbmMask != 0 {
		// A monochrome cursor packs AND and XOR masks stacked vertically.
		procGetObjectW.Call(uintptr(ii.HbmMask), unsafe.Sizeof(bm), uintptr(unsafe.Pointer(&bm)))
		g.Width = int(bm.Width)
		g.Height = int(bm.Height) / 2
	}
	return g, nil
}

func (winSystem) Rasterize(g cursor.Glyph) (*image.RGBA, error) {
	w, h := g.Width, g.Height
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("degenerate glyph %dx%d", w, h)
	}

	screenDC, _, _ := procGetDC.Call(0)
	if screenDC == 0 {
		return nil, fmt.Errorf("GetDC failed")
	}
	defer procReleaseDC.Call(0, screenDC)

	memDC, _, _ := procCreateCompatibleDC.Call(screenDC)
	if memDC == 0 {
		return nil, fmt.Errorf("CreateCompatibleDC failed")
	}
	defer procDeleteDC.Call(memDC)

	bi := bitmapInfo{Header: bitmapInfoHeader{
		Width:       int32(w),
		Height:      -int32(h), // top-down rows
		Planes:      1,
		BitCount:    32,
		Compression: biRGB,
	}}
	bi.Header.Size = uint32(unsafe.Sizeof(bi.Header))

	var bits uintptr
	dib, _, _ := procCreateDIBSection.Call(screenDC, uintptr(unsafe.Pointer(&bi)),
		dibRGBColors, uintptr(unsafe.Pointer(&bits)), 0, 0)
	if dib == 0 || bits == 0 {
		return nil, fmt.Errorf("CreateDIBSection %dx%d failed", w, h)
	}
	defer procDeleteObject.Call(dib)

	old, _, _ := procSelectObject.Call(memDC, dib)
	defer procSelectObject.Call(memDC, old)

	if ret, _, _ := procDrawIconEx.Call(memDC, 0, 0, g.ID,
		uintptr(w), uintptr(h), 0, 0, diNormal); ret == 0 {
		return nil, fmt.Errorf("DrawIconEx failed for glyph %#x", g.ID)
	}
	procGdiFlush.Call()

	// The DIB holds premultiplied BGRA; swap to the RGBA byte order the
	// renderer composites in.
	src := unsafe.Slice((*byte)(unsafe.Pointer(bits)), w*h*4)
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i+3 < len(src); i += 4 {
		img.Pix[i+0] = src[i+2]
		img.Pix[i+1] = src[i+1]
		img.Pix[i+2] = src[i+0]
		img.Pix[i+3] = src[i+3]
	}
	return img, nil
}

func (winSystem) VirtualScreen() image.Rectangle {
	left, _, _ := procGetSystemMetrics.Call(smXVirtualScreen)
	top, _, _ := procGetSystemMetrics.Call(smYVirtualScreen)
	width, _, _ := procGetSystemMetrics.Call(smCXVirtualScreen)
	height, _, _ := procGetSystemMetrics.Call(smCYVirtualScreen)

	l, t := int(int32(left)), int(int32(top))
	return image.Rect(l, t, l+int(int32(width)), t+int(int32(height)))
}

func (winSystem) MaxRefreshHz() float64 {
	maxHz := 60.0

	var dd displayDevice
	dd.Cb = uint32(unsafe.Sizeof(dd))
	for i := 0; ; i++ {
		ret, _, _ := procEnumDisplayDevicesW.Call(0, uintptr(i),
			uintptr(unsafe.Pointer(&dd)), 0)
		if ret == 0 {
			break
		}

		var dm devMode
		dm.Size = uint16(unsafe.Sizeof(dm))
		ret, _, _ = procEnumDisplaySettingsW.Call(
			uintptr(unsafe.Pointer(&dd.DeviceName[0])),
			enumCurrentSettings,
			uintptr(unsafe.Pointer(&dm)))
		if ret != 0 && float64(dm.DisplayFrequency) > maxHz {
			maxHz = float64(dm.DisplayFrequency)
		}
	}
	return maxHz
}

type winLock struct {
	handle windows.Handle
}

// AcquireLock creates the named mutex enforcing a single overlay instance.
func AcquireLock(name string) (Lock, error) {
	name16, err := windows.UTF16PtrFromString(name)
	if err != nil {
		return nil, err
	}

	handle, _, lastErr := procCreateMutexW.Call(0, 1, uintptr(unsafe.Pointer(name16)))
	if handle == 0 {
		return nil, fmt.Errorf("CreateMutex: %w", lastErr)
	}
	if lastErr == windows.ERROR_ALREADY_EXISTS {
		windows.CloseHandle(windows.Handle(handle))
		return nil, ErrAlreadyRunning
	}
	return &winLock{handle: windows.Handle(handle)}, nil
}

func (l *winLock) Release() {
	if l.handle != 0 {
		windows.CloseHandle(l.handle)
		l.handle = 0
	}
}
