//go:build windows

package platform

import (
	"fmt"
	"image"
	"sync"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	procRegisterClassExW    = user32.NewProc("RegisterClassExW")
	procCreateWindowExW     = user32.NewProc("CreateWindowExW")
	procDefWindowProcW      = user32.NewProc("DefWindowProcW")
	procDestroyWindow       = user32.NewProc("DestroyWindow")
	procPeekMessageW        = user32.NewProc("PeekMessageW")
	procTranslateMessage    = user32.NewProc("TranslateMessage")
	procDispatchMessageW    = user32.NewProc("DispatchMessageW")
	procPostQuitMessage     = user32.NewProc("PostQuitMessage")
	procSetWindowPos        = user32.NewProc("SetWindowPos")
	procShowWindow          = user32.NewProc("ShowWindow")
	procUpdateLayeredWindow = user32.NewProc("UpdateLayeredWindow")
	procLoadCursorW         = user32.NewProc("LoadCursorW")

	procDwmSetWindowAttribute = dwmapi.NewProc("DwmSetWindowAttribute")
)

const (
	wsPopup = 0x80000000

	wsExTopmost     = 0x00000008
	wsExTransparent = 0x00000020
	wsExToolWindow  = 0x00000080
	wsExLayered     = 0x00080000
	wsExNoActivate  = 0x08000000

	wmDestroy     = 0x0002
	wmQuit        = 0x0012
	wmEraseBkgnd  = 0x0014
	pmRemove      = 0x0001
	swShowNA      = 8
	swpNoZOrder   = 0x0004
	swpNoActivate = 0x0010

	ulwAlpha             = 0x0002
	acSrcOver            = 0x00
	acSrcAlpha           = 0x01
	idcArrow             = 32512
	blackBrush           = 4
	dwmaExcludedFromPeek = 12
)

type wndClassEx struct {
	CbSize        uint32
	Style         uint32
	LpfnWndProc   uintptr
	CbClsExtra    int32
	CbWndExtra    int32
	HInstance     windows.Handle
	HIcon         windows.Handle
	HCursor       windows.Handle
	HbrBackground windows.Handle
	LpszMenuName  *uint16
	LpszClassName *uint16
	HIconSm       windows.Handle
}

type wMsg struct {
	Hwnd    windows.Handle
	Message uint32
	WParam  uintptr
	LParam  uintptr
	Time    uint32
	Pt      wPoint
}

type wSize struct {
	CX, CY int32
}

type blendFunction struct {
	BlendOp             byte
	BlendFlags          byte
	SourceConstantAlpha byte
	AlphaFormat         byte
}

var (
	registerOnce sync.Once
	classAtom    uintptr
	registerErr  error
)

func overlayWndProc(hwnd windows.Handle, msg uint32, wparam, lparam uintptr) uintptr {
	switch msg {
	case wmDestroy:
		procPostQuitMessage.Call(0)
		return 0
	case wmEraseBkgnd:
		// The layered surface is fully repainted each frame.
		return 1
	}
	ret, _, _ := procDefWindowProcW.Call(uintptr(hwnd), uintptr(msg), wparam, lparam)
	return ret
}

func registerOverlayClass() (uintptr, error) {
	registerOnce.Do(func() {
		hinst, err := windows.GetModuleHandle(nil)
		if err != nil {
			registerErr = err
			return
		}
		arrow, _, _ := procLoadCursorW.Call(0, idcArrow)
		brush, _, _ := procGetStockObject.Call(blackBrush)
		name, _ := windows.UTF16PtrFromString("CursorBlurOverlay")

		wc := wndClassEx{
			LpfnWndProc:   windows.NewCallback(overlayWndProc),
			HInstance:     hinst,
			HCursor:       windows.Handle(arrow),
			HbrBackground: windows.Handle(brush),
			LpszClassName: name,
		}
		wc.CbSize = uint32(unsafe.Sizeof(wc))

		atom, _, lastErr := procRegisterClassExW.Call(uintptr(unsafe.Pointer(&wc)))
		if atom == 0 {
			registerErr = fmt.Errorf("RegisterClassEx: %w", lastErr)
			return
		}
		classAtom = atom
	})
	return classAtom, registerErr
}

// winOverlay is the layered click-through window plus the GDI surface frames
// are staged in before UpdateLayeredWindow picks them up.
type winOverlay struct {
	hwnd     windows.Handle
	screenDC uintptr
	memDC    uintptr
	dib      uintptr
	oldBmp   uintptr
	bits     uintptr
	width    int
	height   int
}

// NewOverlay creates the transparent full-screen window covering the given
// virtual-screen rectangle. It never takes focus and passes clicks through.
func NewOverlay(vs image.Rectangle) (Overlay, error) {
	atom, err := registerOverlayClass()
	if err != nil {
		return nil, err
	}

	hinst, err := windows.GetModuleHandle(nil)
	if err != nil {
		return nil, err
	}

	exStyle := uintptr(wsExLayered | wsExTransparent | wsExToolWindow | wsExTopmost | wsExNoActivate)
	hwnd, _, lastErr := procCreateWindowExW.Call(
		exStyle,
		atom,
		0,
		wsPopup,
		uintptr(int32(vs.Min.X)), uintptr(int32(vs.Min.Y)),
		uintptr(int32(vs.Dx())), uintptr(int32(vs.Dy())),
		0, 0, uintptr(hinst), 0)
	if hwnd == 0 {
		return nil, fmt.Errorf("CreateWindowEx: %w", lastErr)
	}

	// Keep the trail on screen during Aero Peek. Failure is cosmetic.
	excluded := int32(1)
	procDwmSetWindowAttribute.Call(hwnd, dwmaExcludedFromPeek,
		uintptr(unsafe.Pointer(&excluded)), unsafe.Sizeof(excluded))

	screenDC, _, _ := procGetDC.Call(0)
	if screenDC == 0 {
		procDestroyWindow.Call(hwnd)
		return nil, fmt.Errorf("GetDC failed")
	}
	memDC, _, _ := procCreateCompatibleDC.Call(screenDC)
	if memDC == 0 {
		procReleaseDC.Call(0, screenDC)
		procDestroyWindow.Call(hwnd)
		return nil, fmt.Errorf("CreateCompatibleDC failed")
	}

	procShowWindow.Call(hwnd, swShowNA)

	return &winOverlay{
		hwnd:     windows.Handle(hwnd),
		screenDC: screenDC,
		memDC:    memDC,
	}, nil
}

func (o *winOverlay) Pump() bool {
	var msg wMsg
	for {
		ret, _, _ := procPeekMessageW.Call(uintptr(unsafe.Pointer(&msg)), 0, 0, 0, pmRemove)
		if ret == 0 {
			return false
		}
		if msg.Message == wmQuit {
			return true
		}
		procTranslateMessage.Call(uintptr(unsafe.Pointer(&msg)))
		procDispatchMessageW.Call(uintptr(unsafe.Pointer(&msg)))
	}
}

func (o *winOverlay) Move(r image.Rectangle) {
	procSetWindowPos.Call(uintptr(o.hwnd), 0,
		uintptr(int32(r.Min.X)), uintptr(int32(r.Min.Y)),
		uintptr(int32(r.Dx())), uintptr(int32(r.Dy())),
		swpNoZOrder|swpNoActivate)
}

// ensureStaging rebuilds the DIB staging surface when the frame size changes.
func (o *winOverlay) ensureStaging(w, h int) error {
	if o.dib != 0 && w == o.width && h == o.height {
		return nil
	}
	o.releaseStaging()

	bi := bitmapInfo{Header: bitmapInfoHeader{
		Width:       int32(w),
		Height:      -int32(h),
		Planes:      1,
		BitCount:    32,
		Compression: biRGB,
	}}
	bi.Header.Size = uint32(unsafe.Sizeof(bi.Header))

	var bits uintptr
	dib, _, _ := procCreateDIBSection.Call(o.screenDC, uintptr(unsafe.Pointer(&bi)),
		dibRGBColors, uintptr(unsafe.Pointer(&bits)), 0, 0)
	if dib == 0 || bits == 0 {
		return fmt.Errorf("CreateDIBSection %dx%d failed", w, h)
	}
	old, _, _ := procSelectObject.Call(o.memDC, dib)

	o.dib = dib
	o.oldBmp = old
	o.bits = bits
	o.width = w
	o.height = h
	return nil
}

func (o *winOverlay) releaseStaging() {
	if o.dib == 0 {
		return
	}
	procSelectObject.Call(o.memDC, o.oldBmp)
	procDeleteObject.Call(o.dib)
	o.dib = 0
	o.bits = 0
}

func (o *winOverlay) Present(img *image.RGBA, origin image.Point) error {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if err := o.ensureStaging(w, h); err != nil {
		return err
	}

	// Stage the premultiplied frame as BGRA.
	dst := unsafe.Slice((*byte)(unsafe.Pointer(o.bits)), w*h*4)
	src := img.Pix
	for i := 0; i+3 < len(dst); i += 4 {
		dst[i+0] = src[i+2]
		dst[i+1] = src[i+1]
		dst[i+2] = src[i+0]
		dst[i+3] = src[i+3]
	}

	pos := wPoint{X: int32(origin.X), Y: int32(origin.Y)}
	size := wSize{CX: int32(w), CY: int32(h)}
	zero := wPoint{}
	blend := blendFunction{
		BlendOp:             acSrcOver,
		SourceConstantAlpha: 255,
		AlphaFormat:         acSrcAlpha,
	}

	ret, _, lastErr := procUpdateLayeredWindow.Call(uintptr(o.hwnd), o.screenDC,
		uintptr(unsafe.Pointer(&pos)), uintptr(unsafe.Pointer(&size)),
		o.memDC, uintptr(unsafe.Pointer(&zero)),
		0, uintptr(unsafe.Pointer(&blend)), ulwAlpha)
	if ret == 0 {
		return fmt.Errorf("UpdateLayeredWindow: %w", lastErr)
	}
	return nil
}

func (o *winOverlay) Close() {
	o.releaseStaging()
	if o.memDC != 0 {
		procDeleteDC.Call(o.memDC)
		o.memDC = 0
	}
	if o.screenDC != 0 {
		procReleaseDC.Call(0, o.screenDC)
		o.screenDC = 0
	}
	if o.hwnd != 0 {
		procDestroyWindow.Call(uintptr(o.hwnd))
		o.hwnd = 0
	}
}
