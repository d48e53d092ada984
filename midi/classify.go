package midi

/*
The functions in this file map a status byte (and for controllers the first
parameter) to the kind of message it starts. They are total: a value outside
the known tables classifies as an explicit Invalid or Unknown value and never
causes an error, so that malformed and vendor specific files still decode.
*/

// MessageKind discriminates the Message variants.
type MessageKind int

const (
	ChannelKind MessageKind = iota
	ControllerKind
	SystemCommonKind
	SystemRealtimeKind
	MetaKind
	SysExKind
)

var messageKindNames = [...]string{
	ChannelKind:        "Channel",
	ControllerKind:     "Controller",
	SystemCommonKind:   "SystemCommon",
	SystemRealtimeKind: "SystemRealtime",
	MetaKind:           "Meta",
	SysExKind:          "SysEx",
}

func (k MessageKind) String() string {
	if k < 0 || int(k) >= len(messageKindNames) {
		return "MessageKind(?)"
	}
	return messageKindNames[k]
}

// ChannelCommand is the high nibble of a channel voice status byte.
type ChannelCommand byte

// The following byte constants represent the set of Channel Voice
// events seen in a MIDI message TrackEvent.
const (
	NoteOffEvent          ChannelCommand = 0x80
	NoteOnEvent           ChannelCommand = 0x90
	PolyphonicKeyPressure ChannelCommand = 0xA0
	ControlChange         ChannelCommand = 0xB0
	ProgramChange         ChannelCommand = 0xC0
	ChannelPressure       ChannelCommand = 0xD0
	PitchWheelChange      ChannelCommand = 0xE0
	InvalidCommand        ChannelCommand = 0x00
)

func (c ChannelCommand) String() string {
	switch c {
	case NoteOffEvent:
		return "NoteOff"
	case NoteOnEvent:
		return "NoteOn"
	case PolyphonicKeyPressure:
		return "PolyphonicKeyPressure"
	case ControlChange:
		return "ControlChange"
	case ProgramChange:
		return "ProgramChange"
	case ChannelPressure:
		return "ChannelPressure"
	case PitchWheelChange:
		return "PitchWheelChange"
	}
	return "Invalid"
}

// SystemCommonType values are the status bytes they stand for.
type SystemCommonType byte

const (
	SystemCommonInvalid SystemCommonType = 0x00
	MtcQuarterFrame     SystemCommonType = 0xF1
	SongPositionPointer SystemCommonType = 0xF2
	SongSelect          SystemCommonType = 0xF3
	TuneRequest         SystemCommonType = 0xF4
)

func (t SystemCommonType) String() string {
	switch t {
	case MtcQuarterFrame:
		return "MtcQuarterFrame"
	case SongPositionPointer:
		return "SongPositionPointer"
	case SongSelect:
		return "SongSelect"
	case TuneRequest:
		return "TuneRequest"
	}
	return "Invalid"
}

// SystemRealtimeType values are the status bytes they stand for.
type SystemRealtimeType byte

const (
	SystemRealtimeInvalid SystemRealtimeType = 0x00
	Clock                 SystemRealtimeType = 0xF8
	Start                 SystemRealtimeType = 0xFA
	Continue              SystemRealtimeType = 0xFB
	Stop                  SystemRealtimeType = 0xFC
	ActiveSensing         SystemRealtimeType = 0xFE
	Reset                 SystemRealtimeType = 0xFF
)

func (t SystemRealtimeType) String() string {
	switch t {
	case Clock:
		return "Clock"
	case Start:
		return "Start"
	case Continue:
		return "Continue"
	case Stop:
		return "Stop"
	case ActiveSensing:
		return "ActiveSensing"
	case Reset:
		return "Reset"
	}
	return "Invalid"
}

// ControllerType is the controller number of a Control Change message.
type ControllerType int

const ControllerUnknown ControllerType = -1

const (
	BankSelect          ControllerType = 0
	ModulationWheel     ControllerType = 1
	BreathController    ControllerType = 2
	FootPedal           ControllerType = 4
	PortamentoTime      ControllerType = 5
	DataEntrySlider     ControllerType = 6
	Volume              ControllerType = 7
	Balance             ControllerType = 8
	Pan                 ControllerType = 10
	Expression          ControllerType = 11
	EffectControl1      ControllerType = 12
	EffectControl2      ControllerType = 13
	GeneralPurpose1     ControllerType = 16
	GeneralPurpose2     ControllerType = 17
	GeneralPurpose3     ControllerType = 18
	GeneralPurpose4     ControllerType = 19
	SustainPedal        ControllerType = 64
	Portamento          ControllerType = 65
	SostenutoPedal      ControllerType = 66
	SoftPedal           ControllerType = 67
	LegatoPedal         ControllerType = 68
	Hold2Pedal          ControllerType = 69
	SoundVariation      ControllerType = 70
	SoundTimbre         ControllerType = 71
	SoundReleaseTime    ControllerType = 72
	SoundAttackTime     ControllerType = 73
	SoundBrightness     ControllerType = 74
	SoundControl6       ControllerType = 75
	SoundControl7       ControllerType = 76
	SoundControl8       ControllerType = 77
	SoundControl9       ControllerType = 78
	SoundControl10      ControllerType = 79
	GeneralPurpose5     ControllerType = 80
	GeneralPurpose6     ControllerType = 81
	GeneralPurpose7     ControllerType = 82
	GeneralPurpose8     ControllerType = 83
	PortamentoControl   ControllerType = 84
	ReverbLevel         ControllerType = 91
	TremoloLevel        ControllerType = 92
	ChorusLevel         ControllerType = 93
	CelesteLevel        ControllerType = 94
	PhaserLevel         ControllerType = 95
	AllSoundOff         ControllerType = 120
	ResetAllControllers ControllerType = 121
	LocalControl        ControllerType = 122
	AllNotesOff         ControllerType = 123
	OmniModeOff         ControllerType = 124
	OmniModeOn          ControllerType = 125
	MonoModeOn          ControllerType = 126
	PolyModeOn          ControllerType = 127
)

var controllerNames = map[ControllerType]string{
	BankSelect:          "BankSelect",
	ModulationWheel:     "ModulationWheel",
	BreathController:    "BreathController",
	FootPedal:           "FootPedal",
	PortamentoTime:      "PortamentoTime",
	DataEntrySlider:     "DataEntrySlider",
	Volume:              "Volume",
	Balance:             "Balance",
	Pan:                 "Pan",
	Expression:          "Expression",
	EffectControl1:      "EffectControl1",
	EffectControl2:      "EffectControl2",
	GeneralPurpose1:     "GeneralPurpose1",
	GeneralPurpose2:     "GeneralPurpose2",
	GeneralPurpose3:     "GeneralPurpose3",
	GeneralPurpose4:     "GeneralPurpose4",
	SustainPedal:        "SustainPedal",
	Portamento:          "Portamento",
	SostenutoPedal:      "SostenutoPedal",
	SoftPedal:           "SoftPedal",
	LegatoPedal:         "LegatoPedal",
	Hold2Pedal:          "Hold2Pedal",
	SoundVariation:      "SoundVariation",
	SoundTimbre:         "SoundTimbre",
	SoundReleaseTime:    "SoundReleaseTime",
	SoundAttackTime:     "SoundAttackTime",
	SoundBrightness:     "SoundBrightness",
	SoundControl6:       "SoundControl6",
	SoundControl7:       "SoundControl7",
	SoundControl8:       "SoundControl8",
	SoundControl9:       "SoundControl9",
	SoundControl10:      "SoundControl10",
	GeneralPurpose5:     "GeneralPurpose5",
	GeneralPurpose6:     "GeneralPurpose6",
	GeneralPurpose7:     "GeneralPurpose7",
	GeneralPurpose8:     "GeneralPurpose8",
	PortamentoControl:   "PortamentoControl",
	ReverbLevel:         "ReverbLevel",
	TremoloLevel:        "TremoloLevel",
	ChorusLevel:         "ChorusLevel",
	CelesteLevel:        "CelesteLevel",
	PhaserLevel:         "PhaserLevel",
	AllSoundOff:         "AllSoundOff",
	ResetAllControllers: "ResetAllControllers",
	LocalControl:        "LocalControl",
	AllNotesOff:         "AllNotesOff",
	OmniModeOff:         "OmniModeOff",
	OmniModeOn:          "OmniModeOn",
	MonoModeOn:          "MonoModeOn",
	PolyModeOn:          "PolyModeOn",
}

func (c ControllerType) String() string {
	if name, ok := controllerNames[c]; ok {
		return name
	}
	return "Unknown"
}

// Classify returns the kind of short message status starts. Status bytes
// below 0x80 are not statuses at all and end up as invalid system common.
func Classify(status byte) MessageKind {
	switch {
	case status < 0x80:
		return SystemCommonKind
	case status&highOrderMask == byte(ControlChange):
		return ControllerKind
	case status < 0xF0:
		return ChannelKind
	case status < 0xF8:
		return SystemCommonKind
	}
	return SystemRealtimeKind
}

// ChannelCommandOf returns InvalidCommand for non channel statuses.
func ChannelCommandOf(status byte) ChannelCommand {
	if status < 0x80 || status >= 0xF0 {
		return InvalidCommand
	}
	return ChannelCommand(status & highOrderMask)
}

func ControllerTypeOf(param1 byte) ControllerType {
	c := ControllerType(param1)
	if _, ok := controllerNames[c]; ok {
		return c
	}
	return ControllerUnknown
}

func SystemCommonTypeOf(status byte) SystemCommonType {
	switch t := SystemCommonType(status); t {
	case MtcQuarterFrame, SongPositionPointer, SongSelect, TuneRequest:
		return t
	}
	return SystemCommonInvalid
}

func SystemRealtimeTypeOf(status byte) SystemRealtimeType {
	switch t := SystemRealtimeType(status); t {
	case Clock, Start, Continue, Stop, ActiveSensing, Reset:
		return t
	}
	return SystemRealtimeInvalid
}

/*
DataLength returns how many data bytes follow status in a short message.
Invalid statuses carry no data.
*/
func DataLength(status byte) int {
	switch ChannelCommandOf(status) {
	case NoteOffEvent, NoteOnEvent, PolyphonicKeyPressure, ControlChange, PitchWheelChange:
		return 2
	case ProgramChange, ChannelPressure:
		return 1
	}
	switch SystemCommonTypeOf(status) {
	case MtcQuarterFrame, SongSelect:
		return 1
	case SongPositionPointer:
		return 2
	}
	return 0
}
