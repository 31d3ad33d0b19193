package dualsense

const (
	DefaultVID           = 0x054C
	DefaultControllerPID = 0x0CE6
	DefaultConsolePID    = 0x0CF2
)

const (
	ReportIDInput   = 0x01
	ReportIDOutput  = 0x02
	ReportIDFeature = 0x03
)

// Feature report subcommands sent on the controller leg.
const (
	FeatureCalibrate         = 0x05
	FeaturePollInterval      = 0x10
	LowLatencyPollIntervalMs = 1
)

const (
	StateSize  = 33
	OutputSize = 15
)

const (
	ButtonCross    uint16 = 0x0001
	ButtonCircle   uint16 = 0x0002
	ButtonTriangle uint16 = 0x0004
	ButtonSquare   uint16 = 0x0008
	ButtonL1       uint16 = 0x0010
	ButtonR1       uint16 = 0x0020
	ButtonL2       uint16 = 0x0040
	ButtonR2       uint16 = 0x0080
	ButtonShare    uint16 = 0x0100
	ButtonOptions  uint16 = 0x0200
	ButtonL3       uint16 = 0x0400
	ButtonR3       uint16 = 0x0800
	ButtonPS       uint16 = 0x1000
	ButtonTouchpad uint16 = 0x2000
	ButtonMute     uint16 = 0x4000
)

const (
	TouchpadMaxX uint16 = 1920
	TouchpadMaxY uint16 = 1080
	TouchMaxID   uint8  = 0x7F

	TouchActiveFlag uint8 = 0x80
)

const (
	MaxBatteryLevel = 100
	MaxTemperature  = 100
	MaxVolume       = 100
)

const (
	DefaultLedRed        = 0x00
	DefaultLedGreen      = 0x00
	DefaultLedBlue       = 0x40
	DefaultSpeakerVolume = 64
	DefaultMicVolume     = 64
)

// Battery level bands used for the lightbar.
const (
	BatteryLow    = 20
	BatteryMedium = 50
)
