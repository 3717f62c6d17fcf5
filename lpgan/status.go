package lpgan

import "strconv"

// StatusCode is the three digit outcome code carried by every response.
type StatusCode int

const (
	StatusOK             StatusCode = 600
	StatusSleeping       StatusCode = 602
	StatusWakeupPinHigh  StatusCode = 603
	StatusInvalidInput   StatusCode = 625
	StatusGPSDisabled    StatusCode = 632
	StatusGPSEnabled     StatusCode = 633
	StatusNotImplemented StatusCode = 634
	StatusSleepTooShort  StatusCode = 635
	StatusGenericError   StatusCode = 636
)

// StatusClass groups status codes by how a caller should treat them.
type StatusClass int

const (
	ClassError StatusClass = iota
	ClassSuccess
	ClassWarning
)

func (c StatusClass) String() string {
	switch c {
	case ClassSuccess:
		return "success"
	case ClassWarning:
		return "warning"
	default:
		return "error"
	}
}

var statusText = map[StatusCode]string{
	125: "Buffer Overflow",
	126: "Space found in command name",
	127: "No command name specified",
	128: "Generic unexpected character while parsing command name",
	129: "Invalid HEX value entered",
	130: "Unexpected character after space",
	131: "Unexpected character before HEX specifier",
	132: "Unexpected whitespace after HEX specifier",
	133: "Generic unexpected character found in keyword",
	134: "Unexpected character after keyword after space",
	135: "Generic unexpected character found parsing keyword",
	136: "Argument count exceeded",
	137: "Generic unexpected character found while parsing character",
	138: "Generic unexpected character found while parsing character",
	139: "End of command contained unexpected character",
	140: "Generic unexpected character error",
	141: "(internal) Unexpected string state",
	142: "(internal) Unexpected number state",
	143: "(internal) Unexpected keyword state",
	144: "(internal) Unexpected argument state",
	145: "(internal) Unexpected arguments finished state",
	146: "(internal) Unexpected state",
	147: "(internal) Unexpected hex number state",
	150: "Debug Message (Command parsing)",
	225: "HEX value not valid",
	226: "Unknown escape character",
	325: "Unknown keyword",
	350: "Debug Message (Argument conversion)",
	425: "Unknown command",
	426: "Too many or too little arguments passed to command",
	525: "Buffer overflow",
	600: "OK, input has been processed successfully",
	602: "Modem starting to sleep",
	603: "Cannot sleep (Wakeup pin is high)",
	625: "Invalid input",
	626: "(help command only) Unknown command",
	632: "GPS is disabled",
	633: "GPS is enabled",
	634: "Command not implemented",
	635: "Not going to sleep (wakeup within 2 seconds)",
	636: "Generic error code",
}

// StatusText returns the registry description of code.
func StatusText(code StatusCode) (string, bool) {
	text, ok := statusText[code]
	return text, ok
}

// Known reports whether c has a registry entry.
func (c StatusCode) Known() bool {
	_, ok := statusText[c]
	return ok
}

func (c StatusCode) String() string {
	if text, ok := statusText[c]; ok {
		return strconv.Itoa(int(c)) + " " + text
	}
	return strconv.Itoa(int(c)) + " unknown status"
}

// Class classifies c independently of the command it answered.
func (c StatusCode) Class() StatusClass {
	switch c {
	case StatusOK:
		return ClassSuccess
	case StatusSleeping, StatusWakeupPinHigh, StatusGPSDisabled, StatusGPSEnabled, StatusSleepTooShort:
		return ClassWarning
	default:
		return ClassError
	}
}
