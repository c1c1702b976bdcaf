package deviceconfig

import "fmt"

// DeviceClass selects which key groups a save run polls. Classes map to
// u-blox receiver generations; the catalog is pure data with no failure
// modes beyond an unknown class name.
type DeviceClass string

const (
	// ClassGen9 covers generation 9 receivers (NEO-M9N and friends).
	ClassGen9 DeviceClass = "gen9"
	// ClassGen9RTK covers generation 9 RTK receivers (ZED-F9P and friends),
	// which add time-mode and high-precision groups.
	ClassGen9RTK DeviceClass = "gen9-rtk"
	// ClassGen10 covers generation 10 receivers (MAX-M10S and friends).
	ClassGen10 DeviceClass = "gen10"
)

// DeviceClasses lists the supported classes in display order.
var DeviceClasses = []DeviceClass{ClassGen9, ClassGen9RTK, ClassGen10}

// ParseDeviceClass validates a class name from user input.
func ParseDeviceClass(s string) (DeviceClass, error) {
	for _, c := range DeviceClasses {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown device class %q (supported: gen9, gen9-rtk, gen10)", s)
}

// Configuration group ids, bits 16-23 of the member key ids.
// Names follow the interface description's CFG-* group naming.
var (
	groupTMODE     = KeyGroup{0x03, "CFG-TMODE"}
	groupTP        = KeyGroup{0x05, "CFG-TP"}
	groupNAVSPG    = KeyGroup{0x11, "CFG-NAVSPG"}
	groupNAVHPG    = KeyGroup{0x14, "CFG-NAVHPG"}
	groupRATE      = KeyGroup{0x21, "CFG-RATE"}
	groupODO       = KeyGroup{0x22, "CFG-ODO"}
	groupANA       = KeyGroup{0x23, "CFG-ANA"}
	groupGEOFENCE  = KeyGroup{0x24, "CFG-GEOFENCE"}
	groupMOT       = KeyGroup{0x25, "CFG-MOT"}
	groupBATCH     = KeyGroup{0x26, "CFG-BATCH"}
	groupSIGNAL    = KeyGroup{0x31, "CFG-SIGNAL"}
	groupSBAS      = KeyGroup{0x36, "CFG-SBAS"}
	groupQZSS      = KeyGroup{0x37, "CFG-QZSS"}
	groupITFM      = KeyGroup{0x41, "CFG-ITFM"}
	groupI2C       = KeyGroup{0x51, "CFG-I2C"}
	groupUART1     = KeyGroup{0x52, "CFG-UART1"}
	groupUART2     = KeyGroup{0x53, "CFG-UART2"}
	groupSPI       = KeyGroup{0x64, "CFG-SPI"}
	groupUSB       = KeyGroup{0x65, "CFG-USB"}
	groupMSGOUT    = KeyGroup{0x91, "CFG-MSGOUT"}
	groupINFMSG    = KeyGroup{0x92, "CFG-INFMSG"}
	groupNMEA      = KeyGroup{0x93, "CFG-NMEA"}
	groupHW        = KeyGroup{0xA3, "CFG-HW"}
	groupRINV      = KeyGroup{0xC7, "CFG-RINV"}
	groupPM        = KeyGroup{0xD0, "CFG-PM"}
	groupLOGFILTER = KeyGroup{0xDE, "CFG-LOGFILTER"}
	groupSEC       = KeyGroup{0xF6, "CFG-SEC"}
)

// gen9Groups is the shared base for generation 9 devices. Ordering is fixed:
// it determines file output ordering, nothing else.
var gen9Groups = []KeyGroup{
	groupNAVSPG,
	groupRATE,
	groupSIGNAL,
	groupSBAS,
	groupQZSS,
	groupITFM,
	groupODO,
	groupMOT,
	groupANA,
	groupBATCH,
	groupGEOFENCE,
	groupTP,
	groupI2C,
	groupUART1,
	groupUART2,
	groupSPI,
	groupUSB,
	groupMSGOUT,
	groupINFMSG,
	groupNMEA,
	groupHW,
	groupRINV,
	groupLOGFILTER,
	groupPM,
	groupSEC,
}

// gen9RTKExtra extends the base with the RTK-only groups.
var gen9RTKExtra = []KeyGroup{
	groupNAVHPG,
	groupTMODE,
}

// gen10Groups drops the interfaces and features M10 parts do not have.
var gen10Groups = []KeyGroup{
	groupNAVSPG,
	groupRATE,
	groupSIGNAL,
	groupSBAS,
	groupQZSS,
	groupITFM,
	groupODO,
	groupANA,
	groupBATCH,
	groupGEOFENCE,
	groupTP,
	groupI2C,
	groupUART1,
	groupSPI,
	groupUSB,
	groupMSGOUT,
	groupINFMSG,
	groupNMEA,
	groupHW,
	groupRINV,
	groupLOGFILTER,
	groupPM,
	groupSEC,
}

// allGroups indexes every known group by id for display lookups.
var allGroups = func() map[byte]KeyGroup {
	m := make(map[byte]KeyGroup)
	for _, g := range append(append([]KeyGroup{}, gen9Groups...), gen9RTKExtra...) {
		m[g.ID] = g
	}
	return m
}()

// GroupName returns the display name for a group id, or a hex placeholder
// for groups outside the catalog.
func GroupName(id byte) string {
	if g, ok := allGroups[id]; ok {
		return g.Name
	}
	return fmt.Sprintf("CFG-0x%02X", id)
}

// Groups returns the ordered key groups polled for a device class. The
// returned slice is a copy; callers may reorder or filter it freely.
func Groups(class DeviceClass) []KeyGroup {
	var src []KeyGroup
	switch class {
	case ClassGen9RTK:
		src = append(append([]KeyGroup{}, gen9Groups...), gen9RTKExtra...)
	case ClassGen10:
		src = gen10Groups
	default:
		src = gen9Groups
	}

	out := make([]KeyGroup, len(src))
	copy(out, src)
	return out
}
