package dosmouse

const (
	cursorSizeX  = 16
	cursorSizeY  = 16
	cursorSizeXY = cursorSizeX * cursorSizeY

	numButtons = 3
)

// CursorType selects how the cursor is drawn.
type CursorType uint8

const (
	CursorSoftware CursorType = 0
	CursorHardware CursorType = 1
	CursorText     CursorType = 2
)

// Event bits, compatible with the mask of function 0x0c.
const (
	EventMoved          uint8 = 1 << 0
	EventPressedLeft    uint8 = 1 << 1
	EventReleasedLeft   uint8 = 1 << 2
	EventPressedRight   uint8 = 1 << 3
	EventReleasedRight  uint8 = 1 << 4
	EventPressedMiddle  uint8 = 1 << 5
	EventReleasedMiddle uint8 = 1 << 6
	// EventWheelMoved shares bit 0 with EventMoved.
	EventWheelMoved uint8 = 1 << 0
)

const (
	defaultTextAndMask = 0x77ff
	defaultTextXorMask = 0x7700

	defaultDoubleSpeedThreshold = 64 // mickeys/s

	sensitivityNeutral = 50
	sensitivityMax     = 100

	callbackSegmentMagic = 0x6362
)

var defaultScreenMask = [cursorSizeY]uint16{
	0x3fff, 0x1fff, 0x0fff, 0x07ff, 0x03ff, 0x01ff, 0x00ff, 0x007f,
	0x003f, 0x001f, 0x01ff, 0x00ff, 0x30ff, 0xf87f, 0xf87f, 0xfcff,
}

var defaultCursorMask = [cursorSizeY]uint16{
	0x0000, 0x4000, 0x6000, 0x7000, 0x7800, 0x7c00, 0x7e00, 0x7f00,
	0x7f80, 0x7c00, 0x6c00, 0x4600, 0x0600, 0x0300, 0x0300, 0x0000,
}

// Background is the screen content saved under a drawn cursor.
type Background struct {
	Enabled bool
	PosX    uint16
	PosY    uint16
	Data    [cursorSizeXY]uint8
}

// State is the register-visible driver state. It is exactly what
// functions 0x16/0x17 transfer to and from guest memory, so it must only
// hold plain numbers; see codec.go for the wire layout.
type State struct {
	Enabled  bool
	WheelAPI bool

	TimesPressed  [numButtons]uint16
	TimesReleased [numButtons]uint16
	LastReleasedX [numButtons]uint16
	LastReleasedY [numButtons]uint16
	LastPressedX  [numButtons]uint16
	LastPressedY  [numButtons]uint16
	LastWheelX    uint16
	LastWheelY    uint16

	MickeyCounterX int16
	MickeyCounterY int16

	// sub-mickey remainders
	MickeyDeltaX float32
	MickeyDeltaY float32

	MickeysPerPixelX float32
	MickeysPerPixelY float32

	DoubleSpeedThreshold uint16 // mickeys/s

	GranularityX uint16
	GranularityY uint16

	UpdateRegionX [2]int16
	UpdateRegionY [2]int16

	Language uint16
	Mode     uint8

	SensitivityX uint8
	SensitivityY uint8
	Unknown01    uint8

	SensitivityCoeffX float32
	SensitivityCoeffY float32

	MinPosX int16
	MaxPosX int16
	MinPosY int16
	MaxPosY int16

	Page        uint8
	InhibitDraw bool
	Hidden      uint16
	OldHidden   uint16
	ClipX       int16
	ClipY       int16
	HotX        int16
	HotY        int16

	Background Background

	CursorType CursorType

	TextAndMask    uint16
	TextXorMask    uint16
	UserScreenMask bool
	UserCursorMask bool
	UserDefScreen  [cursorSizeY]uint16
	UserDefCursor  [cursorSizeY]uint16

	CallbackMask    uint16
	CallbackSegment uint16
	CallbackOffset  uint16
}

// inUpdateRegion reports whether (x, y) lies in the update-exclusion
// rectangle.
func (s *State) inUpdateRegion(x, y int32) bool {
	return y <= int32(s.UpdateRegionY[1]) && y >= int32(s.UpdateRegionY[0]) &&
		x <= int32(s.UpdateRegionX[1]) && x >= int32(s.UpdateRegionX[0])
}

func (s *State) screenMask() *[cursorSizeY]uint16 {
	if s.UserScreenMask {
		return &s.UserDefScreen
	}
	return &defaultScreenMask
}

func (s *State) cursorMask() *[cursorSizeY]uint16 {
	if s.UserCursorMask {
		return &s.UserDefCursor
	}
	return &defaultCursorMask
}
