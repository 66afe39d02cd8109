package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// schema warnings
	CfgInfo                Code = 1000
	CfgUnknownField        Code = 1001
	CfgUnknownFeature      Code = 1002
	CfgUnknownParserOption Code = 1003

	// schema errors
	CfgInvalidSeverity    Code = 2001
	CfgInvalidRuleSetting Code = 2002
	CfgInvalidSourceType  Code = 2003
	CfgInvalidEcmaVersion Code = 2004
	CfgInvalidType        Code = 2005
	CfgInvalidGlobal      Code = 2006
	CfgEmptyName          Code = 2007

	// merge
	MrgInfo         Code = 3000
	MrgEnvDowngrade Code = 3001

	// preset expansion
	PrsInfo          Code = 4000
	PrsCyclicPreset  Code = 4001
	PrsUnknownPreset Code = 4002

	IOLoadFileError Code = 5001
	IODecodeError   Code = 5002

	ObsInfo    Code = 6000
	ObsTimings Code = 6001
)

var (
	codeDescription = map[Code]string{
		UnknownCode:            "Unknown error",
		CfgInfo:                "Schema information",
		CfgUnknownField:        "Unknown field",
		CfgUnknownFeature:      "Unknown ecmaFeatures key",
		CfgUnknownParserOption: "Unknown parserOptions key",
		CfgInvalidSeverity:     "Invalid rule severity",
		CfgInvalidRuleSetting:  "Invalid rule setting",
		CfgInvalidSourceType:   "Invalid sourceType",
		CfgInvalidEcmaVersion:  "Invalid ecmaVersion",
		CfgInvalidType:         "Invalid value type",
		CfgInvalidGlobal:       "Invalid global access",
		CfgEmptyName:           "Empty name",
		MrgInfo:                "Merge information",
		MrgEnvDowngrade:        "Environment downgrade ignored",
		PrsInfo:                "Preset information",
		PrsCyclicPreset:        "Cyclic preset reference",
		PrsUnknownPreset:       "Unknown preset",
		IOLoadFileError:        "I/O load file error",
		IODecodeError:          "Declaration decode error",
		ObsInfo:                "Observability information",
		ObsTimings:             "Resolution timings",
	}

	codeKind = map[Code]string{
		CfgUnknownField:        "UnknownField",
		CfgUnknownFeature:      "UnknownFeature",
		CfgUnknownParserOption: "UnknownParserOption",
		CfgInvalidSeverity:     "InvalidSeverity",
		CfgInvalidRuleSetting:  "InvalidRuleSetting",
		CfgInvalidSourceType:   "InvalidSourceType",
		CfgInvalidEcmaVersion:  "InvalidEcmaVersion",
		CfgInvalidType:         "InvalidType",
		CfgInvalidGlobal:       "InvalidGlobal",
		CfgEmptyName:           "EmptyName",
		MrgEnvDowngrade:        "EnvDowngrade",
		PrsCyclicPreset:        "CyclicPreset",
		PrsUnknownPreset:       "UnknownPreset",
		IOLoadFileError:        "LoadFileError",
		IODecodeError:          "DecodeError",
		ObsTimings:             "Timings",
	}
)

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 3000:
		return fmt.Sprintf("CFG%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("MRG%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("PRS%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("OBS%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[Code(0)]
	}
	return desc
}

// Kind is the stable symbolic name reported to consumers ("CyclicPreset").
func (c Code) Kind() string {
	if k, ok := codeKind[c]; ok {
		return k
	}
	return "Unknown"
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
